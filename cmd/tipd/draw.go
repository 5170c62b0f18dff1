package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vango-dev/tooltip/pkg/geometry"
	"github.com/vango-dev/tooltip/pkg/tooltip"
)

// Cell glyphs.
const (
	cellEmpty     = '·'
	cellContainer = ':'
	cellAnchor    = 'A'
	cellTip       = 'T'
)

var (
	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))

	legendStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	cellStyles = map[rune]lipgloss.Style{
		cellEmpty:     lipgloss.NewStyle().Foreground(lipgloss.Color("237")),
		cellContainer: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		cellAnchor:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		cellTip:       lipgloss.NewStyle().Foreground(lipgloss.Color("86")),
	}
	arrowStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
)

// arrowGlyph points from the tip toward the anchor.
func arrowGlyph(side geometry.Side) rune {
	switch side {
	case geometry.Top:
		return 'v'
	case geometry.Bottom:
		return '^'
	case geometry.Left:
		return '>'
	default:
		return '<'
	}
}

// grid rasterizes the viewport into cols x rows cells. A cell takes the
// glyph of the topmost rectangle covering its center.
func grid(s *scenario, p tooltip.Placement, cols, rows int) [][]rune {
	vp := s.Viewport
	cw, ch := vp.Width/float64(cols), vp.Height/float64(rows)

	covers := func(r geometry.Rect, x, y float64) bool {
		return x >= r.Left() && x < r.Right() && y >= r.Top() && y < r.Bottom()
	}

	g := make([][]rune, rows)
	for row := range g {
		g[row] = make([]rune, cols)
		for col := range g[row] {
			x := vp.X + (float64(col)+0.5)*cw
			y := vp.Y + (float64(row)+0.5)*ch
			switch {
			case covers(p.Rect, x, y):
				g[row][col] = cellTip
			case covers(s.Anchor, x, y):
				g[row][col] = cellAnchor
			case s.Container != nil && covers(*s.Container, x, y):
				g[row][col] = cellContainer
			default:
				g[row][col] = cellEmpty
			}
		}
	}

	arrowW := defaultArrowSize.Width
	if s.ArrowSize != nil {
		arrowW = s.ArrowSize.Width
	}
	if pt, ok := arrowPoint(p, arrowW); ok {
		col := int(math.Floor((pt.X - vp.X) / cw))
		row := int(math.Floor((pt.Y - vp.Y) / ch))
		if col >= 0 && col < cols && row >= 0 && row < rows {
			g[row][col] = arrowGlyph(p.Side)
		}
	}
	return g
}

// arrowPoint returns where the arrow meets the tip edge facing the anchor.
// The first arrow offset is the cross-axis position of the arrow box.
func arrowPoint(p tooltip.Placement, width float64) (geometry.Point, bool) {
	if len(p.Arrow) == 0 {
		return geometry.Point{}, false
	}
	cross := p.Arrow[0].Value + width/2
	r := p.Rect
	switch p.Side {
	case geometry.Top:
		return geometry.Point{X: r.X + cross, Y: r.Bottom() - 1}, true
	case geometry.Bottom:
		return geometry.Point{X: r.X + cross, Y: r.Top()}, true
	case geometry.Left:
		return geometry.Point{X: r.Right() - 1, Y: r.Y + cross}, true
	default:
		return geometry.Point{X: r.Left(), Y: r.Y + cross}, true
	}
}

// draw renders the placement as a framed terminal diagram.
func draw(s *scenario, p tooltip.Placement, cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		cols, rows = 64, 24
	}
	g := grid(s, p, cols, rows)
	arrow := arrowGlyph(p.Side)

	lines := make([]string, len(g))
	for i, row := range g {
		var b strings.Builder
		for _, c := range row {
			style, ok := cellStyles[c]
			if c == arrow && !ok {
				style = arrowStyle
			}
			b.WriteString(style.Render(string(c)))
		}
		lines[i] = b.String()
	}

	title := fmt.Sprintf("%s  %s", p.Side, formatStyles(p.TipStyles()))
	if p.Flipped() {
		title += fmt.Sprintf("  (flipped from %s)", p.Requested)
	}
	legend := fmt.Sprintf("A anchor  T tip  %c arrow  : container  viewport %s", arrow, formatRect(s.Viewport))

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		frameStyle.Render(strings.Join(lines, "\n")),
		legendStyle.Render(legend),
	)
}
