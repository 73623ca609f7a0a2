package analysis

import (
	"fmt"
	"sort"
)

// Contribution is one (id, value) risk contribution, e.g. per-scenario or
// per-node impact.
type Contribution struct {
	ID    string  `json:"id"`
	Value float64 `json:"value"`
}

// ConcentrationResult holds portfolio-style concentration statistics.
type ConcentrationResult struct {
	// HerfindahlIndex is the sum of squared contribution shares, in
	// [1/n, 1] for n nonzero contributions.
	HerfindahlIndex float64 `json:"herfindahl_index"`
	// Top3Concentration is the summed share of the three largest
	// contributions, as a percentage.
	Top3Concentration float64 `json:"top_3_concentration"`
	// GiniCoefficient is 0 for perfectly equal contributions and
	// approaches 1 for maximal inequality.
	GiniCoefficient float64 `json:"gini_coefficient"`
}

// AnalyzeConcentration computes Herfindahl, top-3 share and Gini over a set
// of contributions. Negative values are invalid; an all-zero set fails with
// ErrDegenerateInput.
func AnalyzeConcentration(contributions []Contribution) (*ConcentrationResult, error) {
	total := 0.0
	for _, c := range contributions {
		if c.Value < 0 {
			return nil, invalidParam("contributions", "value for %s is negative", c.ID)
		}
		total += c.Value
	}
	if total <= 0 {
		return nil, fmt.Errorf("contributions sum to zero: %w", ErrDegenerateInput)
	}

	n := len(contributions)
	shares := make([]float64, n)
	for i, c := range contributions {
		shares[i] = c.Value / total
	}

	hhi := 0.0
	for _, s := range shares {
		hhi += s * s
	}

	// Top-3 share: descending sort, sum the first three (or fewer)
	descending := append([]float64(nil), shares...)
	sort.Sort(sort.Reverse(sort.Float64Slice(descending)))
	top3 := 0.0
	for i := 0; i < len(descending) && i < 3; i++ {
		top3 += descending[i]
	}

	return &ConcentrationResult{
		HerfindahlIndex:   hhi,
		Top3Concentration: top3 * 100,
		GiniCoefficient:   gini(shares),
	}, nil
}

// gini computes the discrete Gini coefficient from the Lorenz curve over
// ascending-sorted shares: G = (2*sum(i*s_i) - (n+1)) / n with 1-based i.
// Equal shares give exactly 0; a single dominant share approaches
// (n-1)/n.
func gini(shares []float64) float64 {
	n := len(shares)
	if n <= 1 {
		return 0
	}
	ascending := append([]float64(nil), shares...)
	sort.Float64s(ascending)

	weighted := 0.0
	for i, s := range ascending {
		weighted += float64(i+1) * s
	}
	g := (2*weighted - float64(n+1)) / float64(n)
	if g < 0 {
		g = 0
	}
	if g > 1 {
		g = 1
	}
	return g
}
