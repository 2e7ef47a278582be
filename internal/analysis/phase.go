package analysis

import (
	"fmt"
	"strings"

	"github.com/san-kum/popsim/internal/solution"
)

type Point struct{ X, Y float64 }

// PhasePortrait is one recorded key plotted against another.
type PhasePortrait struct {
	XKey, YKey string
	Points     []Point
}

// NewPhasePortrait pairs the two series step by step, skipping steps where
// either value is missing.
func NewPhasePortrait(tr *solution.Trace, xKey, yKey string) (*PhasePortrait, error) {
	for _, k := range []string{xKey, yKey} {
		if !tr.Has(k) {
			return nil, fmt.Errorf("no recorded key %q", k)
		}
	}

	xs, ys := tr.Series(xKey), tr.Series(yKey)
	p := &PhasePortrait{XKey: xKey, YKey: yKey, Points: make([]Point, 0, len(xs))}
	for i := range xs {
		if xs[i].Valid && ys[i].Valid {
			p.Points = append(p.Points, Point{X: xs[i].V, Y: ys[i].V})
		}
	}
	return p, nil
}

// Bounds returns the extent of the points.
func (p *PhasePortrait) Bounds() (minX, maxX, minY, maxY float64) {
	if len(p.Points) == 0 {
		return
	}
	minX, maxX = p.Points[0].X, p.Points[0].X
	minY, maxY = p.Points[0].Y, p.Points[0].Y
	for _, pt := range p.Points[1:] {
		minX = min(minX, pt.X)
		maxX = max(maxX, pt.X)
		minY = min(minY, pt.Y)
		maxY = max(maxY, pt.Y)
	}
	return
}

// ASCII draws the portrait on a width by height grid, with 10% padding on
// each side. The start of the trajectory is marked 'o'.
func (p *PhasePortrait) ASCII(width, height int) string {
	if len(p.Points) == 0 || width < 2 || height < 2 {
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
	minX -= spanX * 0.1
	minY -= spanY * 0.1
	spanX *= 1.2
	spanY *= 1.2

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	cell := func(pt Point) (int, int) {
		col := int((pt.X - minX) / spanX * float64(width-1))
		row := height - 1 - int((pt.Y-minY)/spanY*float64(height-1))
		return row, col
	}
	for _, pt := range p.Points {
		row, col := cell(pt)
		grid[row][col] = '•'
	}
	row, col := cell(p.Points[0])
	grid[row][col] = 'o'

	var sb strings.Builder
	for _, r := range grid {
		sb.WriteString(string(r))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Crossings returns the interpolated times at which values passes upward
// through threshold. Missing values break the series.
func Crossings(times []float64, values []solution.Value, threshold float64) []float64 {
	var out []float64
	for i := 1; i < len(values) && i < len(times); i++ {
		prev, cur := values[i-1], values[i]
		if !prev.Valid || !cur.Valid {
			continue
		}
		if prev.V < threshold && cur.V >= threshold {
			frac := (threshold - prev.V) / (cur.V - prev.V)
			out = append(out, times[i-1]+frac*(times[i]-times[i-1]))
		}
	}
	return out
}
