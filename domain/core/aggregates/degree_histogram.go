package aggregates

import (
	"sort"
)

// DegreeCount is one histogram bucket
type DegreeCount struct {
	Degree int `json:"degree"`
	Count  int `json:"count"`
}

// DegreeHistogram maps a degree to the number of nodes having exactly that degree.
// Only nodes present in a SimilarityGraph are counted, so degree 0 never appears.
type DegreeHistogram struct {
	counts map[int]int
}

// NewDegreeHistogram creates a histogram from degree counts.
// Buckets with a non-positive count are ignored.
func NewDegreeHistogram(counts map[int]int) DegreeHistogram {
	h := DegreeHistogram{counts: make(map[int]int, len(counts))}
	for degree, count := range counts {
		if count > 0 {
			h.counts[degree] = count
		}
	}
	return h
}

// Count returns the number of nodes with the given degree
func (h DegreeHistogram) Count(degree int) int {
	return h.counts[degree]
}

// Len returns the number of distinct degrees
func (h DegreeHistogram) Len() int {
	return len(h.counts)
}

// IsEmpty reports whether the histogram has no buckets
func (h DegreeHistogram) IsEmpty() bool {
	return len(h.counts) == 0
}

// NodeCount returns the sum of all bucket counts
func (h DegreeHistogram) NodeCount() int {
	total := 0
	for _, count := range h.counts {
		total += count
	}
	return total
}

// MaxDegree returns the highest degree present, 0 when empty
func (h DegreeHistogram) MaxDegree() int {
	max := 0
	for degree := range h.counts {
		if degree > max {
			max = degree
		}
	}
	return max
}

// MaxCount returns the largest bucket count, 0 when empty
func (h DegreeHistogram) MaxCount() int {
	max := 0
	for _, count := range h.counts {
		if count > max {
			max = count
		}
	}
	return max
}

// Entries returns the buckets sorted by degree ascending
func (h DegreeHistogram) Entries() []DegreeCount {
	entries := make([]DegreeCount, 0, len(h.counts))
	for degree, count := range h.counts {
		entries = append(entries, DegreeCount{Degree: degree, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Degree < entries[j].Degree })
	return entries
}

// AsMap returns a copy of the underlying counts
func (h DegreeHistogram) AsMap() map[int]int {
	counts := make(map[int]int, len(h.counts))
	for degree, count := range h.counts {
		counts[degree] = count
	}
	return counts
}
