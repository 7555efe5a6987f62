package queries

import (
	"io"

	"loangraph/domain/core/aggregates"
	"loangraph/domain/core/valueobjects"
	apperrors "loangraph/pkg/errors"
)

// AnalyzeDistributionQuery asks for the degree distribution of a record source.
// Exactly one of Body or Path must be set.
type AnalyzeDistributionQuery struct {
	SourceName       string    `json:"source_name,omitempty"`
	Body             io.Reader `json:"-"`
	Path             string    `json:"path,omitempty"`
	IncludeAdjacency bool      `json:"include_adjacency"`
}

// Validate validates the query
func (q AnalyzeDistributionQuery) Validate() error {
	return validateSource(q.Body, q.Path)
}

func validateSource(body io.Reader, path string) error {
	switch {
	case body == nil && path == "":
		return apperrors.NewValidationError("a record source is required")
	case body != nil && path != "":
		return apperrors.NewValidationError("only one record source may be given")
	}
	return nil
}

// AnalyzeDistributionResult is the summary and histogram of one analysis run
type AnalyzeDistributionResult struct {
	RunID         string                                        `json:"run_id"`
	RecordCount   int                                           `json:"record_count"`
	DroppedRows   int                                           `json:"dropped_rows"`
	NodeCount     int                                           `json:"node_count"`
	EdgeCount     int                                           `json:"edge_count"`
	IsolatedCount int                                           `json:"isolated_count"`
	MaxDegree     int                                           `json:"max_degree"`
	MeanDegree    float64                                       `json:"mean_degree"`
	Distribution  []aggregates.DegreeCount                      `json:"distribution"`
	Adjacency     map[valueobjects.NodeID][]valueobjects.NodeID `json:"adjacency,omitempty"`
}
