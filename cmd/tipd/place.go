package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	errs "github.com/vango-dev/tooltip/internal/errors"
	"github.com/vango-dev/tooltip/pkg/geometry"
	"github.com/vango-dev/tooltip/pkg/tooltip"
)

// scenario is one offline placement problem. It can be loaded from YAML
// and overridden by flags.
type scenario struct {
	Viewport     geometry.Rect  `yaml:"viewport"`
	Anchor       geometry.Rect  `yaml:"anchor"`
	Tip          geometry.Size  `yaml:"tip"`
	Container    *geometry.Rect `yaml:"container,omitempty"`
	Side         string         `yaml:"side,omitempty"`
	Padding      *float64       `yaml:"padding,omitempty"`
	BorderRadius *float64       `yaml:"borderRadius,omitempty"`
	Arrow        *bool          `yaml:"arrow,omitempty"`
	ArrowSize    *geometry.Size `yaml:"arrowSize,omitempty"`
}

// defaultArrowSize is the size of the built-in arrow graphic.
var defaultArrowSize = geometry.Size{Width: 16, Height: 6}

func loadScenario(path string) (*scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario %s: %w", path, err)
	}
	var s scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario %s: %w", path, err)
	}
	return &s, nil
}

// options resolves the scenario against defaults.
func (s *scenario) options(defaults tooltip.Options) (tooltip.Options, error) {
	p := tooltip.PartialOptions{}
	if s.Side != "" {
		side, err := geometry.ParseSide(s.Side)
		if err != nil {
			return tooltip.Options{}, errs.New("T040").Wrap(err)
		}
		p = p.WithSide(side)
	}
	if s.Padding != nil {
		p = p.WithPadding(*s.Padding)
	}
	if s.BorderRadius != nil {
		p = p.WithBorderRadius(*s.BorderRadius)
	}
	if s.Arrow != nil {
		if *s.Arrow {
			p = p.WithArrow(tooltip.DefaultArrow())
		} else {
			p = p.WithoutArrow()
		}
	}
	return tooltip.Resolve(&defaults, p), nil
}

func (s *scenario) measurements(opts tooltip.Options) tooltip.Measurements {
	m := tooltip.Measurements{
		Anchor:    s.Anchor,
		Tip:       s.Tip,
		Viewport:  s.Viewport,
		Container: s.Container,
	}
	if opts.Arrow != nil {
		m.Arrow = defaultArrowSize
		if s.ArrowSize != nil {
			m.Arrow = *s.ArrowSize
		}
	}
	return m
}

type placeFlags struct {
	scenario  string
	anchor    string
	tip       string
	viewport  string
	container string
	side      string
	padding   float64
	radius    float64
	noArrow   bool
	asJSON    bool
	draw      bool
	cols      int
	rows      int
}

func placeCmd(configPath *string) *cobra.Command {
	var f placeFlags

	cmd := &cobra.Command{
		Use:   "place",
		Short: "Compute one tooltip placement",
		Long: `Compute where a tooltip goes for a given layout and print it.

Rectangles are x,y,width,height and sizes are width,height, in page
pixels. A scenario file supplies the same values in YAML; flags given
on the command line override it. Options not given come from the
defaults section of the config.

Examples:
  tipd place --anchor 100,300,50,20 --tip 80,30 --viewport 800,600
  tipd place --anchor 100,20,50,20 --tip 80,30 --viewport 800,600 --draw
  tipd place --scenario corner.yaml --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defaults, err := cfg.Defaults.Options()
			if err != nil {
				return err
			}
			s, err := buildScenario(cmd, &f)
			if err != nil {
				return err
			}
			return runPlace(cmd.OutOrStdout(), s, defaults, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.scenario, "scenario", "", "YAML scenario file")
	flags.StringVar(&f.anchor, "anchor", "", "Anchor rectangle x,y,w,h")
	flags.StringVar(&f.tip, "tip", "", "Tip size w,h")
	flags.StringVar(&f.viewport, "viewport", "", "Viewport w,h or x,y,w,h")
	flags.StringVar(&f.container, "container", "", "Container rectangle x,y,w,h")
	flags.StringVar(&f.side, "side", "", "Preferred side: top, right, bottom or left")
	flags.Float64Var(&f.padding, "padding", 0, "Gap between anchor and tip")
	flags.Float64Var(&f.radius, "radius", 0, "Tip border radius")
	flags.BoolVar(&f.noArrow, "no-arrow", false, "Place without an arrow")
	flags.BoolVar(&f.asJSON, "json", false, "Print JSON")
	flags.BoolVar(&f.draw, "draw", false, "Draw the placement")
	flags.IntVar(&f.cols, "cols", 64, "Diagram width in cells")
	flags.IntVar(&f.rows, "rows", 24, "Diagram height in cells")

	return cmd
}

// buildScenario merges the scenario file with the flags that were set.
func buildScenario(cmd *cobra.Command, f *placeFlags) (*scenario, error) {
	s := &scenario{}
	if f.scenario != "" {
		loaded, err := loadScenario(f.scenario)
		if err != nil {
			return nil, err
		}
		s = loaded
	}

	changed := cmd.Flags().Changed
	var err error
	if f.anchor != "" {
		if s.Anchor, err = parseRect(f.anchor); err != nil {
			return nil, fmt.Errorf("--anchor: %w", err)
		}
	}
	if f.tip != "" {
		if s.Tip, err = parseSize(f.tip); err != nil {
			return nil, fmt.Errorf("--tip: %w", err)
		}
	}
	if f.viewport != "" {
		if s.Viewport, err = parseRect(f.viewport); err != nil {
			return nil, fmt.Errorf("--viewport: %w", err)
		}
	}
	if f.container != "" {
		c, err := parseRect(f.container)
		if err != nil {
			return nil, fmt.Errorf("--container: %w", err)
		}
		s.Container = &c
	}
	if f.side != "" {
		s.Side = f.side
	}
	if changed("padding") {
		s.Padding = &f.padding
	}
	if changed("radius") {
		s.BorderRadius = &f.radius
	}
	if f.noArrow {
		no := false
		s.Arrow = &no
	}

	if s.Viewport.IsEmpty() {
		return nil, fmt.Errorf("a viewport is required (--viewport or scenario)")
	}
	if s.Tip.IsEmpty() {
		return nil, fmt.Errorf("a tip size is required (--tip or scenario)")
	}
	return s, nil
}

func runPlace(w io.Writer, s *scenario, defaults tooltip.Options, f placeFlags) error {
	opts, err := s.options(defaults)
	if err != nil {
		return err
	}
	p, err := tooltip.Place(opts, s.measurements(opts))
	if err != nil {
		return err
	}

	switch {
	case f.asJSON:
		return writeJSON(w, p)
	case f.draw:
		fmt.Fprintln(w, draw(s, p, f.cols, f.rows))
		return nil
	default:
		writeText(w, p)
		return nil
	}
}

// placementJSON is the --json output.
type placementJSON struct {
	Side      string            `json:"side"`
	Requested string            `json:"requested"`
	Flipped   bool              `json:"flipped"`
	Degraded  bool              `json:"degraded"`
	Rect      geometry.Rect     `json:"rect"`
	Clip      geometry.Rect     `json:"clip"`
	Tip       map[string]string `json:"tip"`
	Arrow     map[string]string `json:"arrow,omitempty"`
}

func styleMap(styles []tooltip.Style) map[string]string {
	if len(styles) == 0 {
		return nil
	}
	m := make(map[string]string, len(styles))
	for _, s := range styles {
		m[s.Name] = s.Value
	}
	return m
}

func writeJSON(w io.Writer, p tooltip.Placement) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(placementJSON{
		Side:      p.Side.String(),
		Requested: p.Requested.String(),
		Flipped:   p.Flipped(),
		Degraded:  p.Degraded,
		Rect:      p.Rect,
		Clip:      p.Clip,
		Tip:       styleMap(p.TipStyles()),
		Arrow:     styleMap(p.ArrowStyles()),
	})
}

func writeText(w io.Writer, p tooltip.Placement) {
	side := p.Side.String()
	if p.Flipped() {
		side += " (flipped from " + p.Requested.String() + ")"
	}
	fmt.Fprintf(w, "side:   %s\n", side)
	fmt.Fprintf(w, "tip:    %s\n", formatStyles(p.TipStyles()))
	if arrow := p.ArrowStyles(); len(arrow) > 0 {
		fmt.Fprintf(w, "arrow:  %s\n", formatStyles(arrow))
	}
	fmt.Fprintf(w, "clip:   %s\n", formatRect(p.Clip))
	if p.Degraded {
		fmt.Fprintln(w, "note:   container is outside the viewport; clipped to the viewport")
	}
}

func formatStyles(styles []tooltip.Style) string {
	parts := make([]string, len(styles))
	for i, s := range styles {
		parts[i] = s.Name + ": " + s.Value
	}
	return strings.Join(parts, "; ")
}

func formatRect(r geometry.Rect) string {
	return fmt.Sprintf("%s,%s %sx%s", num(r.X), num(r.Y), num(r.Width), num(r.Height))
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// parseRect parses "x,y,w,h", or "w,h" for a rectangle at the origin.
func parseRect(s string) (geometry.Rect, error) {
	v, err := parseNumbers(s)
	if err != nil {
		return geometry.Rect{}, err
	}
	switch len(v) {
	case 2:
		return geometry.Rect{Width: v[0], Height: v[1]}, nil
	case 4:
		return geometry.Rect{X: v[0], Y: v[1], Width: v[2], Height: v[3]}, nil
	}
	return geometry.Rect{}, fmt.Errorf("want x,y,w,h or w,h, got %q", s)
}

// parseSize parses "w,h".
func parseSize(s string) (geometry.Size, error) {
	v, err := parseNumbers(s)
	if err != nil {
		return geometry.Size{}, err
	}
	if len(v) != 2 {
		return geometry.Size{}, fmt.Errorf("want w,h, got %q", s)
	}
	return geometry.Size{Width: v[0], Height: v[1]}, nil
}

func parseNumbers(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", p)
		}
		out[i] = v
	}
	return out, nil
}
