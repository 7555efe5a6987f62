package queries

import (
	"io"

	"loangraph/application/ports"
	"loangraph/pkg/validation"
)

// RenderDistributionQuery asks for a plot of a record source's degree distribution
type RenderDistributionQuery struct {
	SourceName string    `json:"source_name,omitempty"`
	Body       io.Reader `json:"-"`
	Path       string    `json:"path,omitempty"`
	Format     string    `json:"format" validate:"oneof=png svg"`
	Width      int       `json:"width" validate:"min=100,max=4000"`
	Height     int       `json:"height" validate:"min=100,max=4000"`
	Title      string    `json:"title,omitempty" validate:"max=200"`
}

// Validate validates the query
func (q RenderDistributionQuery) Validate() error {
	if err := validateSource(q.Body, q.Path); err != nil {
		return err
	}
	return validation.Default().Struct(q)
}

// Options converts the query into renderer options
func (q RenderDistributionQuery) Options() ports.RenderOptions {
	return ports.RenderOptions{
		Format: q.Format,
		Width:  q.Width,
		Height: q.Height,
		Title:  q.Title,
	}
}

// RenderDistributionResult carries the encoded image and the analysis behind it
type RenderDistributionResult struct {
	ContentType string                    `json:"content_type"`
	Image       []byte                    `json:"-"`
	Analysis    AnalyzeDistributionResult `json:"analysis"`
}

// ContentTypeFor maps a plot format to its MIME type
func ContentTypeFor(format string) string {
	if format == ports.FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}
