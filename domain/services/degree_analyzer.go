package services

import (
	"loangraph/domain/core/aggregates"
	"loangraph/domain/core/valueobjects"
)

// GraphSummary contains whole-graph statistics reported next to the histogram
type GraphSummary struct {
	RecordCount   int     `json:"record_count"`
	NodeCount     int     `json:"node_count"`
	EdgeCount     int     `json:"edge_count"`
	IsolatedCount int     `json:"isolated_count"`
	MaxDegree     int     `json:"max_degree"`
	MeanDegree    float64 `json:"mean_degree"`
}

// DegreeAnalyzer computes the degree distribution of a similarity graph
type DegreeAnalyzer struct{}

// NewDegreeAnalyzer creates a new degree analyzer
func NewDegreeAnalyzer() *DegreeAnalyzer {
	return &DegreeAnalyzer{}
}

// Analyze counts, for every node present in the graph, its number of neighbors.
// Isolated records are not part of the graph and never produce a 0 bucket.
func (a *DegreeAnalyzer) Analyze(graph *aggregates.SimilarityGraph) aggregates.DegreeHistogram {
	counts := make(map[int]int)
	graph.ForEachNode(func(_ valueobjects.NodeID, degree int) {
		counts[degree]++
	})
	return aggregates.NewDegreeHistogram(counts)
}

// Summarize returns graph statistics, including the isolated record count
func (a *DegreeAnalyzer) Summarize(graph *aggregates.SimilarityGraph) GraphSummary {
	summary := GraphSummary{
		RecordCount:   graph.Size(),
		NodeCount:     graph.NodeCount(),
		EdgeCount:     graph.EdgeCount(),
		IsolatedCount: graph.IsolatedCount(),
	}

	graph.ForEachNode(func(_ valueobjects.NodeID, degree int) {
		if degree > summary.MaxDegree {
			summary.MaxDegree = degree
		}
	})
	if summary.NodeCount > 0 {
		summary.MeanDegree = float64(2*summary.EdgeCount) / float64(summary.NodeCount)
	}

	return summary
}

// ComputeDegreeDistribution is a shorthand for NewDegreeAnalyzer().Analyze
func ComputeDegreeDistribution(graph *aggregates.SimilarityGraph) aggregates.DegreeHistogram {
	return NewDegreeAnalyzer().Analyze(graph)
}
