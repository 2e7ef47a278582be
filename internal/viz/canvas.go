package viz

import (
	"strings"

	"github.com/san-kum/popsim/internal/analysis"
)

// Braille cells hold 2x4 dots:
//
//	1 4
//	2 5
//	3 6
//	7 8
var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

// Canvas is a Braille dot grid of Width x Height cells, so 2*Width by
// 4*Height dots.
type Canvas struct {
	Width, Height int
	grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, grid: make([][]rune, h)}
	for i := range c.grid {
		c.grid[i] = []rune(strings.Repeat(string(rune(brailleBlank)), w))
	}
	return c
}

// Set lights the dot at (x, y), with y growing downward.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return
	}
	c.grid[y/4][x/2] |= pixelMap[y%4][x%2]
}

// Line draws from (x0, y0) to (x1, y1) with Bresenham's algorithm.
func (c *Canvas) Line(x0, y0, x1, y1 int) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// PhasePlot joins consecutive points of the portrait on a Braille canvas.
func PhasePlot(p *analysis.PhasePortrait, width, height int) string {
	if len(p.Points) == 0 || width < 1 || height < 1 {
		return ""
	}
	minX, maxX, minY, maxY := p.Bounds()
	spanX, spanY := maxX-minX, maxY-minY
	if spanX == 0 {
		spanX = 1
	}
	if spanY == 0 {
		spanY = 1
	}

	c := NewCanvas(width, height)
	dotsX, dotsY := float64(2*width-1), float64(4*height-1)
	project := func(pt analysis.Point) (int, int) {
		return int((pt.X - minX) / spanX * dotsX), int(dotsY - (pt.Y-minY)/spanY*dotsY)
	}

	px, py := project(p.Points[0])
	c.Set(px, py)
	for _, pt := range p.Points[1:] {
		x, y := project(pt)
		c.Line(px, py, x, y)
		px, py = x, y
	}
	return c.String()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
