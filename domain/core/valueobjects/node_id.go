package valueobjects

import "strconv"

// NodeID is the identity of an applicant in the similarity graph.
// It is the zero-based position of the record in the input sequence and is
// only meaningful within the build that produced it.
type NodeID int

// Int returns the record position
func (id NodeID) Int() int {
	return int(id)
}

// String returns the string representation of the NodeID
func (id NodeID) String() string {
	return strconv.Itoa(int(id))
}

// Equals checks if two NodeIDs are equal
func (id NodeID) Equals(other NodeID) bool {
	return id == other
}
