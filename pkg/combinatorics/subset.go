package combinatorics

import (
	"math/bits"
	"strconv"
	"strings"
)

// Maximum size of the ground set a Subset can hold
const MaxElements = 16

// Subset is a set of ground elements stored as a bit vector (bit i stands for element i).
// Numeric order on subsets of equal cardinality is the colexicographic order.
type Subset uint32

func NewSubset(elements ...int) Subset {
	var subset Subset
	for _, element := range elements {
		subset = subset.With(element)
	}
	return subset
}

// Returns the ground set {0, ..., n-1}
func FullSet(n int) Subset {
	return Subset(1)<<n - 1
}

func (s Subset) Contains(element int) bool {
	return s&(1<<element) != 0
}

func (s Subset) With(element int) Subset {
	return s | 1<<element
}

func (s Subset) Without(element int) Subset {
	return s &^ (1 << element)
}

func (s Subset) Count() int {
	return bits.OnesCount32(uint32(s))
}

func (s Subset) IsSubsetOf(other Subset) bool {
	return s&other == s
}

// Returns the largest element or -1 for the empty set
func (s Subset) Max() int {
	return bits.Len32(uint32(s)) - 1
}

func (s Subset) Elements() []int {
	elements := make([]int, 0, s.Count())
	for rest := uint32(s); rest != 0; rest &= rest - 1 {
		elements = append(elements, bits.TrailingZeros32(rest))
	}
	return elements
}

// Image maps every element e of the subset to permutation[e]; all elements must be assigned
func (s Subset) Image(permutation []int) Subset {
	var image Subset
	for rest := uint32(s); rest != 0; rest &= rest - 1 {
		image = image.With(permutation[bits.TrailingZeros32(rest)])
	}
	return image
}

func (s Subset) String() string {
	var builder strings.Builder
	builder.WriteByte('{')
	for i, element := range s.Elements() {
		if i > 0 {
			builder.WriteByte(',')
		}
		builder.WriteString(strconv.Itoa(element))
	}
	builder.WriteByte('}')
	return builder.String()
}

// Combinations returns every r-subset of {0, ..., n-1} in colex order
func Combinations(n, r int) []Subset {
	if r < 0 || n < r || n > MaxElements {
		return nil
	}
	combinations := make([]Subset, 0, Binomial(n, r))
	if r == 0 {
		return append(combinations, 0)
	}

	// Gosper's hack enumerates words with r bits set in increasing numeric order
	limit := uint32(1) << n
	for word := uint32(1)<<r - 1; word < limit; {
		combinations = append(combinations, Subset(word))
		lowest := word & -word
		ripple := word + lowest
		word = ((ripple^word)>>2)/lowest | ripple
	}
	return combinations
}

// ColexRank returns the position of the subset among the subsets of equal cardinality in colex order
func ColexRank(s Subset) int {
	rank := 0
	for i, element := range s.Elements() {
		rank += Binomial(element, i+1)
	}
	return rank
}
