package viz

import (
	"math"
	"strings"
)

const brailleBlank = 0x2800

// Dot bits of a Braille cell, indexed by [row][column] of its 2×4 grid.
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a Width×Height grid of Braille cells, addressed in pixels of
// (2·Width)×(4·Height). y grows downwards.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

func (c *Canvas) PixelWidth() int  { return 2 * c.Width }
func (c *Canvas) PixelHeight() int { return 4 * c.Height }

// Set turns on pixel (x, y). Out of range pixels are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// IsSet reports whether pixel (x, y) is on.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a Bresenham line between two pixels.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Plot draws values as a polyline stretched over the full canvas, the
// lowest value on the bottom row. NaN and infinite values break the line.
func (c *Canvas) Plot(values []float64) {
	if len(values) == 0 {
		return
	}
	lo, hi, ok := finiteRange(values)
	if !ok {
		return
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	w, h := c.PixelWidth()-1, c.PixelHeight()-1
	px := func(i int) int {
		if len(values) == 1 {
			return 0
		}
		return i * w / (len(values) - 1)
	}
	py := func(v float64) int {
		return h - int((v-lo)/rng*float64(h)+0.5)
	}

	prev := -1
	for i, v := range values {
		if !isFinite(v) {
			prev = -1
			continue
		}
		if prev < 0 {
			c.Set(px(i), py(v))
		} else {
			c.DrawLine(px(prev), py(values[prev]), px(i), py(v))
		}
		prev = i
	}
}

// VLine draws a dotted vertical line at pixel column x.
func (c *Canvas) VLine(x int) {
	for y := 0; y < c.PixelHeight(); y += 2 {
		c.Set(x, y)
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func finiteRange(values []float64) (lo, hi float64, ok bool) {
	for _, v := range values {
		if !isFinite(v) {
			continue
		}
		if !ok {
			lo, hi, ok = v, v, true
			continue
		}
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi, ok
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
