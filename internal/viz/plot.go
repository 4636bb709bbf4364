package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/dyncontact/internal/scan"
)

// PlotScan plots the total and momentum costs of a scan against α.
func PlotScan(samples []scan.Sample, width, height int) string {
	if len(samples) == 0 {
		return ""
	}
	caption := fmt.Sprintf("cost over α ∈ [%g, %g]", samples[0].Alpha, samples[len(samples)-1].Alpha)
	return asciigraph.PlotMany([][]float64{scan.Costs(samples), scan.MomentumCosts(samples)},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.Yellow),
		asciigraph.SeriesLegends("cost", "momentum"),
	)
}

// PlotSlope plots dℓ/dα. The cost is convex, so the curve never goes down.
func PlotSlope(samples []scan.Sample, width, height int) string {
	if len(samples) == 0 {
		return ""
	}
	slopes := make([]float64, len(samples))
	for i, s := range samples {
		slopes[i] = s.Slope
	}
	return asciigraph.Plot(slopes,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("dℓ/dα"),
	)
}
