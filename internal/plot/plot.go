package plot

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	_ "gonum.org/v1/plot/vg/vgimg"
	_ "gonum.org/v1/plot/vg/vgpdf"
	_ "gonum.org/v1/plot/vg/vgsvg"

	"microgrid-sim/internal/sim"
)

var (
	colorPV      = color.NRGBA{B: 255, A: 128}
	colorBattery = color.NRGBA{G: 255, B: 255, A: 128}
	colorLoad    = color.NRGBA{R: 255, A: 128}
	colorNet     = color.NRGBA{G: 128, A: 128}
	colorSOC     = color.NRGBA{B: 255, A: 128}
)

// Options controls the figure. Zero values fall back to defaults.
type Options struct {
	// Location is the time zone used for axis labels. Default UTC.
	Location *time.Location
	// Resolution is shown next to the output panel title, e.g. "1 minute".
	Resolution string
	TimeFormat string
	Width      vg.Length
	Height     vg.Length
}

func (o *Options) setDefaults() {
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.TimeFormat == "" {
		o.TimeFormat = "15:04"
	}
	if o.Width == 0 {
		o.Width = 10 * vg.Inch
	}
	if o.Height == 0 {
		o.Height = 10 * vg.Inch
	}
}

// Save renders the figure to path. The format follows the extension
// (png, jpg, tif, svg, pdf).
func Save(path string, s sim.Series, opts Options) error {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if format == "" {
		return fmt.Errorf("plot path %q has no extension", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Render(f, format, s, opts); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Render draws the output and SOC panels stacked vertically and writes them in format.
func Render(w io.Writer, format string, s sim.Series, opts Options) error {
	if s.Len() == 0 {
		return errors.New("nothing to plot: empty series")
	}
	opts.setDefaults()

	c, err := draw.NewFormattedCanvas(opts.Width, opts.Height, format)
	if err != nil {
		return err
	}

	output, err := outputPanel(s, opts)
	if err != nil {
		return err
	}
	soc, err := socPanel(s, opts)
	if err != nil {
		return err
	}

	plots := [][]*plot.Plot{{output}, {soc}}
	tiles := draw.Tiles{
		Rows:      2,
		Cols:      1,
		PadX:      vg.Millimeter * 4,
		PadY:      vg.Millimeter * 8,
		PadTop:    vg.Millimeter * 4,
		PadBottom: vg.Millimeter * 4,
		PadLeft:   vg.Millimeter * 4,
		PadRight:  vg.Millimeter * 4,
	}
	canvases := plot.Align(plots, tiles, draw.New(c))
	output.Draw(canvases[0][0])
	soc.Draw(canvases[1][0])

	_, err = c.WriteTo(w)
	return err
}

func outputPanel(s sim.Series, opts Options) (*plot.Plot, error) {
	p := newTimePlot(opts)
	p.Title.Text = "Output profile"
	if opts.Resolution != "" {
		p.Title.Text += " (resolution: " + opts.Resolution + ")"
	}
	p.Y.Label.Text = "Output [kW]"

	// PV is drawn negated so generation and load sit on opposite sides of zero.
	lines := []struct {
		name  string
		ys    []float64
		scale float64
		color color.Color
	}{
		{"Load", s.Load, 1e-3, colorLoad},
		{"PV output", s.PV, -1e-3, colorPV},
		{"Battery output", s.Battery, 1e-3, colorBattery},
		{"Net load", s.Net, 1e-3, colorNet},
	}
	for _, l := range lines {
		line, err := plotter.NewLine(timeXYs(s.Time, l.ys, l.scale))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", l.name, err)
		}
		line.LineStyle.Color = l.color
		p.Add(line)
		p.Legend.Add(l.name, line)
	}
	return p, nil
}

func socPanel(s sim.Series, opts Options) (*plot.Plot, error) {
	p := newTimePlot(opts)
	p.Title.Text = "SOC profile"
	p.Y.Label.Text = "SOC [%]"

	line, err := plotter.NewLine(timeXYs(s.Time, s.SOC, 1))
	if err != nil {
		return nil, fmt.Errorf("SOC: %w", err)
	}
	line.LineStyle.Color = colorSOC
	p.Add(line)
	p.Legend.Add("SOC", line)
	return p, nil
}

func newTimePlot(opts Options) *plot.Plot {
	p := plot.New()
	p.X.Label.Text = "Time"
	p.X.Tick.Marker = plot.TimeTicks{
		Format: opts.TimeFormat,
		Time: func(t float64) time.Time {
			return time.Unix(int64(t), 0).In(opts.Location)
		},
	}
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())
	return p
}

// timeXYs uses unix seconds on the X axis. Samples without a timestamp fall
// back to their index in minutes from the epoch, which still keeps them ordered.
func timeXYs(ts []time.Time, ys []float64, scale float64) plotter.XYs {
	xys := make(plotter.XYs, len(ys))
	for i, y := range ys {
		x := float64(i * 60)
		if i < len(ts) && !ts[i].IsZero() {
			x = float64(ts[i].Unix())
		}
		xys[i].X = x
		xys[i].Y = y * scale
	}
	return xys
}
