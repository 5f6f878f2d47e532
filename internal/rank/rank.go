package rank

import (
	"errors"
	"math"

	"medbud/internal/catalog"
)

// ErrEmptyCatalog is returned when ranking against a matrix with no rows.
var ErrEmptyCatalog = errors.New("rank: empty catalog")

// Best computes the cosine similarity between query and every row of m and
// returns the index of the maximum and that maximum value. Ties resolve to
// the first index achieving the maximum. A zero-magnitude operand scores 0.
func Best(query []float64, m *catalog.Matrix) (int, float64, error) {
	if m == nil || m.Rows == 0 {
		return 0, 0, ErrEmptyCatalog
	}
	qn2 := 0.0
	for _, v := range query {
		qn2 += v * v
	}
	bestIdx := 0
	bestScore := math.Inf(-1)
	for i := 0; i < m.Rows; i++ {
		score := cosine(query, qn2, m.Row(i))
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	return bestIdx, bestScore, nil
}

func cosine(query []float64, qn2 float64, row []float64) float64 {
	n := len(query)
	if len(row) < n {
		n = len(row)
	}
	dot := 0.0
	rn2 := 0.0
	for i := 0; i < n; i++ {
		dot += query[i] * row[i]
		rn2 += row[i] * row[i]
	}
	if qn2 == 0 || rn2 == 0 {
		return 0
	}
	return dot / math.Sqrt(qn2*rn2)
}
