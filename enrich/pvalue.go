package enrich

import (
	"fmt"
	"sort"
)

// Hypothesis selects the tail(s) of the permutation test.
type Hypothesis int

const (
	// Greater tests for over-representation: the observed metric exceeding
	// the simulated distribution.
	Greater Hypothesis = iota
	// Less tests for under-representation.
	Less
	// TwoSided tests both tails.
	TwoSided
)

func (h Hypothesis) String() string {
	switch h {
	case Greater:
		return "greater"
	case Less:
		return "less"
	case TwoSided:
		return "two-sided"
	}
	return fmt.Sprintf("Hypothesis(%d)", int(h))
}

// ParseHypothesis converts a hypothesis name from the command line.
func ParseHypothesis(s string) (Hypothesis, error) {
	switch s {
	case "greater":
		return Greater, nil
	case "less":
		return Less, nil
	case "two-sided":
		return TwoSided, nil
	}
	return 0, fmt.Errorf("enrich: unknown hypothesis %q (want greater, less or two-sided)", s)
}

// permutationPValue converts the accumulated counters into an empirical
// p-value with the add-one (Laplace) correction, which avoids zero p-values:
//
//	pAbove = (countAbove + 1) / (n + 1)
//	pBelow = (countBelow + 1) / (n + 1)
//
// The two-sided value 2*min(pAbove, pBelow) is clipped to 1.0 so every
// p-value lands in (0, 1], which the downstream Benjamini-Hochberg step
// assumes.
func permutationPValue(countAbove, countBelow, simulations int64, h Hypothesis) float64 {
	pAbove := float64(countAbove+1) / float64(simulations+1)
	pBelow := float64(countBelow+1) / float64(simulations+1)
	switch h {
	case Greater:
		return pAbove
	case Less:
		return pBelow
	case TwoSided:
		p := 2 * pAbove
		if pBelow < pAbove {
			p = 2 * pBelow
		}
		if p > 1 {
			p = 1
		}
		return p
	}
	panic(h)
}

// AdjustBH applies the Benjamini-Hochberg step-up false-discovery-rate
// correction to a p-value vector, returning q-values in the same order as
// the input.  It is applied once across the full per-label vector at the end
// of a run, never per chunk.
func AdjustBH(pValues []float64) []float64 {
	n := len(pValues)
	if n == 0 {
		return nil
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return pValues[order[i]] < pValues[order[j]] })

	qValues := make([]float64, n)
	running := 1.0
	for rank := n - 1; rank >= 0; rank-- {
		idx := order[rank]
		q := pValues[idx] * float64(n) / float64(rank+1)
		if q < running {
			running = q
		}
		qValues[idx] = running
	}
	return qValues
}
