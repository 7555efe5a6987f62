package services

import (
	"context"
	"fmt"

	"loangraph/domain/config"
	"loangraph/domain/core/aggregates"
	"loangraph/domain/core/entities"
	"loangraph/domain/core/valueobjects"

	"golang.org/x/sync/errgroup"
)

// GraphBuilder derives the similarity graph from an ordered record sequence.
//
// Every unordered pair (i, j) with i < j is compared exactly once with
// SharesEducationOrIntent. Node identities are record positions.
//
// Precondition: every record carries its education and loan-intent categories.
// Empty strings are not special-cased and connect to each other.
type GraphBuilder struct {
	config *config.DomainConfig
}

// NewGraphBuilder creates a new graph builder
func NewGraphBuilder(cfg *config.DomainConfig) *GraphBuilder {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &GraphBuilder{config: cfg}
}

// Build compares all record pairs and returns the resulting graph.
// It never fails and does not retain records.
func (b *GraphBuilder) Build(records []entities.LoanRecord) *aggregates.SimilarityGraph {
	graph, _ := b.BuildContext(context.Background(), records)
	return graph
}

// BuildContext is Build with cancellation. The context is checked before each
// outer row, so a cancelled build stops within one row of comparisons and
// returns ctx.Err() without a graph.
func (b *GraphBuilder) BuildContext(ctx context.Context, records []entities.LoanRecord) (*aggregates.SimilarityGraph, error) {
	adjacency := aggregates.NewAdjacencyBuilder(len(records))

	var err error
	if b.config.Parallel(len(records)) {
		err = b.buildParallel(ctx, records, adjacency)
	} else {
		err = buildSequential(ctx, records, adjacency)
	}
	if err != nil {
		return nil, err
	}

	return adjacency.Freeze(), nil
}

// BuildGraph builds a graph on the sequential path
func BuildGraph(records []entities.LoanRecord) *aggregates.SimilarityGraph {
	return NewGraphBuilder(config.SequentialDomainConfig()).Build(records)
}

func buildSequential(ctx context.Context, records []entities.LoanRecord, adjacency *aggregates.AdjacencyBuilder) error {
	for i := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		for j := i + 1; j < len(records); j++ {
			if SharesEducationOrIntent(&records[i], &records[j]) {
				connect(adjacency, edge{valueobjects.NodeID(i), valueobjects.NodeID(j)})
			}
		}
	}
	return nil
}

type edge struct {
	a, b valueobjects.NodeID
}

// buildParallel splits the outer index range into blocks of roughly equal
// pair counts. Workers only read records and collect matches locally; the
// adjacency is written afterwards by this goroutine, in block order.
func (b *GraphBuilder) buildParallel(ctx context.Context, records []entities.LoanRecord, adjacency *aggregates.AdjacencyBuilder) error {
	blocks := partitionRows(len(records), b.config.Workers)
	found := make([][]edge, len(blocks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.config.Workers)
	for k, block := range blocks {
		g.Go(func() error {
			var local []edge
			for i := block.start; i < block.end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				for j := i + 1; j < len(records); j++ {
					if SharesEducationOrIntent(&records[i], &records[j]) {
						local = append(local, edge{valueobjects.NodeID(i), valueobjects.NodeID(j)})
					}
				}
			}
			found[k] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, edges := range found {
		for _, e := range edges {
			connect(adjacency, e)
		}
	}
	return nil
}

// connect panics on an invalid edge; pair enumeration only yields i < j < n.
func connect(adjacency *aggregates.AdjacencyBuilder, e edge) {
	if err := adjacency.Connect(e.a, e.b); err != nil {
		panic(fmt.Sprintf("graph builder: %v", err))
	}
}

type rowBlock struct {
	start, end int
}

// partitionRows splits [0, n) into at most parts contiguous blocks whose
// pair counts (row i owns n-1-i pairs) are roughly balanced.
func partitionRows(n, parts int) []rowBlock {
	if n <= 0 {
		return nil
	}
	if parts < 1 {
		parts = 1
	}

	total := PairCount(n)
	target := (total + int64(parts) - 1) / int64(parts)

	blocks := make([]rowBlock, 0, parts)
	start := 0
	var acc int64
	for i := 0; i < n; i++ {
		acc += int64(n - 1 - i)
		if acc >= target && len(blocks) < parts-1 {
			blocks = append(blocks, rowBlock{start: start, end: i + 1})
			start = i + 1
			acc = 0
		}
	}
	if start < n {
		blocks = append(blocks, rowBlock{start: start, end: n})
	}
	return blocks
}
