package matroid

import (
	"log"
	"strings"

	"github.com/limaJavier/matroids/pkg/combinatorics"
)

// CanonicityTester decides whether an indicator is the representative of its isomorphism class, that is, whether
// no relabeling of the ground set yields a lexicographically smaller indicator ('0' < '*').
// Implementations are safe for concurrent use.
type CanonicityTester interface {
	IsCanonical(indicator string) bool
}

// NewSearchTester returns a tester that builds relabelings one element at a time and cuts every branch as soon
// as the part of the relabeled indicator it determines differs from the original
func NewSearchTester(level *combinatorics.Level) CanonicityTester {
	bounds := make([]int, level.N()+1)
	for k := range bounds {
		bounds[k] = combinatorics.Binomial(k, level.R())
	}
	return &searchTester{level: level, bounds: bounds}
}

// NewExhaustiveTester returns a tester that scans the whole orbit of the indicator through the permutation table of
// the level. It fails when the table does not fit in memory
func NewExhaustiveTester(level *combinatorics.Level) (CanonicityTester, error) {
	table, err := level.PermutationTable()
	if err != nil {
		return nil, err
	}
	return &exhaustiveTester{level: level, table: table}, nil
}

// comparison of the relabeled symbol against the original one at the same position
type comparison int

const (
	equal   comparison = iota
	smaller            // relabeled '0' against original '*'
	larger             // relabeled '*' against original '0'
)

func compare(relabeled, original byte) comparison {
	switch {
	case relabeled == original:
		return equal
	case relabeled == NonBasis:
		return smaller
	default:
		return larger
	}
}

// sorted reports whether every '0' precedes every '*', which makes the indicator the smallest of its orbit
func sorted(indicator string) bool {
	first := strings.IndexByte(indicator, Basis)
	if first < 0 {
		return true
	}
	return strings.IndexByte(indicator[first+1:], NonBasis) < 0
}

func checkLength(level *combinatorics.Level, indicator string) {
	if len(indicator) != level.Size() {
		log.Panicf("indicator of length %d does not belong to level (%d, %d) of size %d", len(indicator), level.N(), level.R(), level.Size())
	}
}

type searchTester struct {
	level  *combinatorics.Level
	bounds []int // bounds[k] = C(k, r): subsets with maximum k occupy [bounds[k], bounds[k+1])
}

func (tester *searchTester) IsCanonical(indicator string) bool {
	checkLength(tester.level, indicator)
	if sorted(indicator) {
		return true
	}

	permutation := make([]int, tester.level.N())
	for i := range permutation {
		permutation[i] = combinatorics.Unassigned
	}
	return !tester.smallerRelabeling(indicator, permutation, 0, 0)
}

// smallerRelabeling extends a partial relabeling of {0, ..., element-1} (its images form used) and reports whether
// some completion yields an indicator smaller than the original
func (tester *searchTester) smallerRelabeling(indicator string, permutation []int, element int, used combinatorics.Subset) bool {
	if element == len(permutation) {
		return false // Identical relabeling
	}

	for image := range len(permutation) {
		if used.Contains(image) {
			continue
		}
		permutation[element] = image

		result := equal
		for j := tester.bounds[element]; j < tester.bounds[element+1] && result == equal; j++ {
			relabeled := tester.level.Index(tester.level.Subset(j).Image(permutation))
			result = compare(indicator[relabeled], indicator[j])
		}

		if result == smaller {
			permutation[element] = combinatorics.Unassigned
			return true
		}
		if result == equal && tester.smallerRelabeling(indicator, permutation, element+1, used.With(image)) {
			permutation[element] = combinatorics.Unassigned
			return true
		}
	}

	permutation[element] = combinatorics.Unassigned
	return false
}

type exhaustiveTester struct {
	level *combinatorics.Level
	table []uint16
}

func (tester *exhaustiveTester) IsCanonical(indicator string) bool {
	checkLength(tester.level, indicator)
	if sorted(indicator) {
		return true
	}

	size := tester.level.Size()
	for row := size; row < len(tester.table); row += size { // The first row is the identity
		relabeling := tester.table[row : row+size]
		for j, relabeled := range relabeling {
			result := compare(indicator[relabeled], indicator[j])
			if result == smaller {
				return false
			}
			if result == larger {
				break
			}
		}
	}
	return true
}
