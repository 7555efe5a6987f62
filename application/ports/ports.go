package ports

import (
	"context"
	"io"

	"loangraph/domain/core/aggregates"
	"loangraph/domain/core/entities"
)

// IngestReport summarizes one pass over a record source
type IngestReport struct {
	Source       string `json:"source"`
	Accepted     int    `json:"accepted"`
	Dropped      int    `json:"dropped"`
	DroppedLines []int  `json:"dropped_lines,omitempty"`
}

// RecordStore defines the interface for loading loan records.
// This is a port in hexagonal architecture - the domain doesn't know where records come from
type RecordStore interface {
	// Load reads every well-formed record from r. The name only labels logs and errors.
	Load(ctx context.Context, name string, r io.Reader) ([]entities.LoanRecord, IngestReport, error)

	// LoadFile opens path and reads it like Load
	LoadFile(ctx context.Context, path string) ([]entities.LoanRecord, IngestReport, error)
}

// Plot output formats
const (
	FormatPNG = "png"
	FormatSVG = "svg"
)

// RenderOptions controls the plotted image
type RenderOptions struct {
	Format string `validate:"oneof=png svg"`
	Width  int    `validate:"min=100,max=4000"`
	Height int    `validate:"min=100,max=4000"`
	Title  string `validate:"max=200"`
}

// DistributionRenderer draws a degree histogram as an image
type DistributionRenderer interface {
	Render(ctx context.Context, histogram aggregates.DegreeHistogram, opts RenderOptions, w io.Writer) error
}
