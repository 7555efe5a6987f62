package aggregates

import (
	"testing"

	"loangraph/domain/core/valueobjects"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjacencyBuilder_Connect(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		a, b    valueobjects.NodeID
		wantErr string
	}{
		{name: "valid edge", size: 3, a: 0, b: 2},
		{name: "self loop", size: 3, a: 1, b: 1, wantErr: "itself"},
		{name: "out of range", size: 3, a: 0, b: 3, wantErr: "out of range"},
		{name: "negative id", size: 3, a: -1, b: 0, wantErr: "out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewAdjacencyBuilder(tt.size)
			err := b.Connect(tt.a, tt.b)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)

			g := b.Freeze()
			assert.True(t, g.Connected(tt.a, tt.b))
			assert.True(t, g.Connected(tt.b, tt.a))
			assert.Equal(t, 1, g.EdgeCount())
			assert.Equal(t, 2, g.NodeCount())
		})
	}
}

func TestAdjacencyBuilder_DuplicateEdgeIsNoop(t *testing.T) {
	b := NewAdjacencyBuilder(2)
	require.NoError(t, b.Connect(0, 1))
	require.NoError(t, b.Connect(1, 0))

	g := b.Freeze()
	assert.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, 1, g.Degree(0))
	assert.Equal(t, 1, g.Degree(1))
	require.NoError(t, g.Validate())
}

func TestAdjacencyBuilder_FrozenRejectsEdges(t *testing.T) {
	b := NewAdjacencyBuilder(2)
	g := b.Freeze()

	err := b.Connect(0, 1)
	require.Error(t, err)
	assert.Equal(t, 0, g.EdgeCount())
}

func TestSimilarityGraph_IsolatedNodesAbsent(t *testing.T) {
	b := NewAdjacencyBuilder(4)
	require.NoError(t, b.Connect(0, 1))
	g := b.Freeze()

	assert.Equal(t, 4, g.Size())
	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 2, g.IsolatedCount())
	assert.False(t, g.HasNode(2))
	assert.False(t, g.HasNode(3))
	assert.Nil(t, g.Neighbors(2))
	assert.Equal(t, 0, g.Degree(3))
	assert.False(t, g.HasNode(99))

	want := map[valueobjects.NodeID][]valueobjects.NodeID{
		0: {1},
		1: {0},
	}
	if diff := cmp.Diff(want, g.Adjacency()); diff != "" {
		t.Errorf("Adjacency() mismatch (-want +got):\n%s", diff)
	}
}

func TestSimilarityGraph_NeighborsSortedAndCopied(t *testing.T) {
	b := NewAdjacencyBuilder(5)
	require.NoError(t, b.Connect(0, 4))
	require.NoError(t, b.Connect(0, 2))
	require.NoError(t, b.Connect(0, 3))
	g := b.Freeze()

	neighbors := g.Neighbors(0)
	assert.Equal(t, []valueobjects.NodeID{2, 3, 4}, neighbors)

	neighbors[0] = 1
	assert.Equal(t, []valueobjects.NodeID{2, 3, 4}, g.Neighbors(0))
	assert.Equal(t, []valueobjects.NodeID{0, 2, 3, 4}, g.NodeIDs())
}

func TestSimilarityGraph_ForEachNode(t *testing.T) {
	b := NewAdjacencyBuilder(4)
	require.NoError(t, b.Connect(0, 1))
	require.NoError(t, b.Connect(0, 3))
	g := b.Freeze()

	degrees := map[valueobjects.NodeID]int{}
	g.ForEachNode(func(id valueobjects.NodeID, degree int) {
		degrees[id] = degree
	})
	assert.Equal(t, map[valueobjects.NodeID]int{0: 2, 1: 1, 3: 1}, degrees)
}

func TestSimilarityGraph_EmptyGraph(t *testing.T) {
	g := NewAdjacencyBuilder(0).Freeze()

	assert.Equal(t, 0, g.Size())
	assert.Equal(t, 0, g.NodeCount())
	assert.Empty(t, g.NodeIDs())
	assert.Empty(t, g.Adjacency())
	require.NoError(t, g.Validate())
}

func TestDegreeHistogram(t *testing.T) {
	h := NewDegreeHistogram(map[int]int{3: 1, 1: 4, 2: 0})

	assert.Equal(t, 2, h.Len())
	assert.Equal(t, 5, h.NodeCount())
	assert.Equal(t, 3, h.MaxDegree())
	assert.Equal(t, 4, h.MaxCount())
	assert.Equal(t, 0, h.Count(2))
	assert.Equal(t, []DegreeCount{{Degree: 1, Count: 4}, {Degree: 3, Count: 1}}, h.Entries())

	counts := h.AsMap()
	counts[1] = 100
	assert.Equal(t, 4, h.Count(1))
}

func TestDegreeHistogram_Empty(t *testing.T) {
	h := NewDegreeHistogram(nil)

	assert.True(t, h.IsEmpty())
	assert.Equal(t, 0, h.MaxDegree())
	assert.Equal(t, 0, h.MaxCount())
	assert.Empty(t, h.Entries())
}
