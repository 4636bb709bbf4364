// Package export writes scans and canvases as standalone SVG documents.
package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/dyncontact/internal/scan"
	"github.com/san-kum/dyncontact/internal/viz"
)

// CanvasToSVG draws every lit Braille dot of canvas as a circle, scale
// pixels apart.
func CanvasToSVG(canvas *viz.Canvas, scale float64, fg, bg string) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.PixelWidth()) * scale
	height := float64(canvas.PixelHeight()) * scale

	var sb strings.Builder
	writeHeader(&sb, width, height, bg)
	fmt.Fprintf(&sb, "<g fill=\"%s\">\n", fg)

	dotRadius := scale * 0.4
	for y := 0; y < canvas.PixelHeight(); y++ {
		for x := 0; x < canvas.PixelWidth(); x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
				float64(x)*scale+scale/2, float64(y)*scale+scale/2, dotRadius)
		}
	}

	sb.WriteString("</g>\n</svg>\n")
	return sb.String()
}

// Series is one polyline of a chart.
type Series struct {
	Name   string
	Color  string
	Values []float64
}

// ScanSVG charts the cost and momentum cost of a scan against α.
func ScanSVG(samples []scan.Sample, width, height int, theme viz.Theme) string {
	if len(samples) < 2 {
		return ""
	}
	alphas := make([]float64, len(samples))
	for i, s := range samples {
		alphas[i] = s.Alpha
	}
	return ChartSVG(alphas, []Series{
		{Name: "cost", Color: string(theme.Secondary), Values: scan.Costs(samples)},
		{Name: "momentum", Color: string(theme.Accent), Values: scan.MomentumCosts(samples)},
	}, width, height, string(theme.Muted))
}

// ChartSVG draws every series against xs on shared axes with 10% padding,
// inside a frame of the given color.
func ChartSVG(xs []float64, series []Series, width, height int, frame string) string {
	if len(xs) < 2 || len(series) == 0 {
		return ""
	}

	minX, maxX := bounds(xs)
	minY, maxY := bounds(series[0].Values)
	for _, s := range series[1:] {
		lo, hi := bounds(s.Values)
		minY, maxY = min(minY, lo), max(maxY, hi)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	writeHeader(&sb, float64(width), float64(height), "#0a0a0a")
	for i, s := range series {
		fmt.Fprintf(&sb, "<path fill=\"none\" stroke=\"%s\" stroke-width=\"1.5\" d=\"", s.Color)
		for j, v := range s.Values {
			x := (xs[j] - minX) / rangeX * float64(width)
			y := float64(height) - (v-minY)/rangeY*float64(height)
			if j == 0 {
				fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")
		fmt.Fprintf(&sb, "<text x=\"8\" y=\"%d\" fill=\"%s\" font-family=\"monospace\" font-size=\"12\">%s</text>\n",
			16*(i+1), s.Color, s.Name)
	}
	fmt.Fprintf(&sb, "<rect x=\"0.5\" y=\"0.5\" width=\"%d\" height=\"%d\" fill=\"none\" stroke=\"%s\"/>\n", width-1, height-1, frame)
	sb.WriteString("</svg>\n")
	return sb.String()
}

func writeHeader(sb *strings.Builder, width, height float64, bg string) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, bg)
}

func bounds(x []float64) (lo, hi float64) {
	if len(x) == 0 {
		return 0, 0
	}
	lo, hi = x[0], x[0]
	for _, v := range x {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}
