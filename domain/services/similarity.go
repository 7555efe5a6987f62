package services

import (
	"loangraph/domain/core/entities"
)

// SharesEducationOrIntent is the similarity predicate of the applicant graph.
// Two records are similar when their education categories are equal or their
// loan-intent categories are equal. Comparison is exact and case-sensitive;
// two empty categories are equal.
func SharesEducationOrIntent(a, b *entities.LoanRecord) bool {
	return a.Education() == b.Education() || a.Intent() == b.Intent()
}

// PairCount returns the number of unordered pairs among n records
func PairCount(n int) int64 {
	if n < 2 {
		return 0
	}
	return int64(n) * int64(n-1) / 2
}
