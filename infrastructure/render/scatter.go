// Package render draws degree histograms with gonum/plot.
package render

import (
	"context"
	"image/color"
	"io"

	"loangraph/application/ports"
	"loangraph/domain/core/aggregates"
	apperrors "loangraph/pkg/errors"
	"loangraph/pkg/validation"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	// DefaultTitle is the caption used when none is configured
	DefaultTitle = "Degree distribution of loan data"

	// pixelsPerInch matches the vgimg canvas resolution, so widths in
	// pixels come out exact in PNG output
	pixelsPerInch = 96
)

var markerColor = color.RGBA{R: 255, A: 255}

// ScatterRenderer plots degree (x) against node count (y) as red filled circles
type ScatterRenderer struct {
	defaults ports.RenderOptions
}

var _ ports.DistributionRenderer = (*ScatterRenderer)(nil)

// NewScatterRenderer creates a renderer. Zero fields in the per-call options
// fall back to defaults.
func NewScatterRenderer(defaults ports.RenderOptions) *ScatterRenderer {
	if defaults.Format == "" {
		defaults.Format = ports.FormatPNG
	}
	if defaults.Width == 0 {
		defaults.Width = 800
	}
	if defaults.Height == 0 {
		defaults.Height = 600
	}
	if defaults.Title == "" {
		defaults.Title = DefaultTitle
	}
	return &ScatterRenderer{defaults: defaults}
}

// Defaults returns the options applied to unset fields
func (r *ScatterRenderer) Defaults() ports.RenderOptions {
	return r.defaults
}

// Render draws histogram into w
func (r *ScatterRenderer) Render(ctx context.Context, histogram aggregates.DegreeHistogram, opts ports.RenderOptions, w io.Writer) error {
	opts = r.resolve(opts)
	if err := validation.Default().Struct(opts); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return apperrors.NewRenderError(opts.Format, err)
	}

	p, err := newPlot(histogram, opts.Title)
	if err != nil {
		return apperrors.NewRenderError(opts.Format, err)
	}

	writer, err := p.WriterTo(pixels(opts.Width), pixels(opts.Height), opts.Format)
	if err != nil {
		return apperrors.NewRenderError(opts.Format, err)
	}
	if _, err := writer.WriteTo(w); err != nil {
		return apperrors.NewRenderError(opts.Format, err)
	}
	return nil
}

func (r *ScatterRenderer) resolve(opts ports.RenderOptions) ports.RenderOptions {
	if opts.Format == "" {
		opts.Format = r.defaults.Format
	}
	if opts.Width == 0 {
		opts.Width = r.defaults.Width
	}
	if opts.Height == 0 {
		opts.Height = r.defaults.Height
	}
	if opts.Title == "" {
		opts.Title = r.defaults.Title
	}
	return opts
}

func newPlot(histogram aggregates.DegreeHistogram, title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Degree"
	p.Y.Label.Text = "# of nodes"
	p.Add(plotter.NewGrid())

	entries := histogram.Entries()
	if len(entries) > 0 {
		pts := make(plotter.XYs, len(entries))
		for i, e := range entries {
			pts[i].X = float64(e.Degree)
			pts[i].Y = float64(e.Count)
		}

		s, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, err
		}
		s.GlyphStyle.Color = markerColor
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		s.GlyphStyle.Radius = vg.Points(4)
		p.Add(s)
	}

	// Axes always start at zero and end at the largest value
	p.X.Min, p.X.Max = 0, float64(max(histogram.MaxDegree(), 1))
	p.Y.Min, p.Y.Max = 0, float64(max(histogram.MaxCount(), 1))

	return p, nil
}

func pixels(n int) vg.Length {
	return vg.Length(n) * vg.Inch / pixelsPerInch
}
