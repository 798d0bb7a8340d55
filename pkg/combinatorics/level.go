package combinatorics

import (
	"fmt"
	"sync"
)

// Upper bound on the number of entries of a permutation table (n! * C(n, r))
const MaxTableEntries = 1 << 26

// Level holds every table that depends only on (n, r). It is built by a single goroutine and is
// read-only afterwards, so it can be shared by all the workers processing the level.
//
// Since colex order is prefix-stable, the tables of level (n, r) also serve any matroid of rank r
// on fewer than n elements.
type Level struct {
	n, r int

	subsets     []Subset // index to r-subset of [n]
	index       []int32  // r-subset of [n] (as a word) to index, -1 elsewhere
	previous    []Subset // index to (r-1)-subset of [n-1]
	tabooFamily []Subset // r-subsets of [n-1] containing n-2

	permutationsOnce sync.Once
	permutationTable []uint16
	permutationErr   error
}

func NewLevel(n, r int) (*Level, error) {
	if err := Validate(n, r); err != nil {
		return nil, err
	}

	level := &Level{
		n:        n,
		r:        r,
		subsets:  Combinations(n, r),
		index:    make([]int32, 1<<n),
		previous: Combinations(n-1, r-1),
	}

	for i := range level.index {
		level.index[i] = -1
	}
	for i, subset := range level.subsets {
		level.index[subset] = int32(i)
	}

	if n >= 2 {
		for _, subset := range Combinations(n-1, r) {
			if subset.Contains(n - 2) {
				level.tabooFamily = append(level.tabooFamily, subset)
			}
		}
	}

	return level, nil
}

func (level *Level) N() int { return level.n }

func (level *Level) R() int { return level.r }

// C(n, r)
func (level *Level) Size() int { return len(level.subsets) }

// C(n-1, r): number of r-subsets avoiding the last element
func (level *Level) DeletionSize() int { return Binomial(level.n-1, level.r) }

// C(n-1, r-1): number of r-subsets containing the last element
func (level *Level) ContractionSize() int { return Binomial(level.n-1, level.r-1) }

func (level *Level) Subset(index int) Subset { return level.subsets[index] }

func (level *Level) Subsets() []Subset { return level.subsets }

// Index returns the position of an r-subset of [n] or -1 if the subset does not belong to the level
func (level *Level) Index(subset Subset) int {
	if int(subset) >= len(level.index) {
		return -1
	}
	return int(level.index[subset])
}

func (level *Level) PreviousSubsets() []Subset { return level.previous }

func (level *Level) TabooFamily() []Subset { return level.tabooFamily }

// PermutationTable returns a row-major table whose entry [i*Size() + j] is the index of the image of
// Subset(j) under the i-th permutation of [n] (lexicographic order, identity first).
// The table is built once; concurrent callers wait for the first build.
func (level *Level) PermutationTable() ([]uint16, error) {
	level.permutationsOnce.Do(func() {
		size := level.Size()
		rows := Factorial(level.n)
		if rows*size > MaxTableEntries {
			level.permutationErr = fmt.Errorf("%w: %d! * C(%d, %d) = %d entries", ErrTableTooLarge, level.n, level.n, level.r, rows*size)
			return
		}

		table := make([]uint16, 0, rows*size)
		for _, permutation := range Permutations(level.n) {
			for _, subset := range level.subsets {
				table = append(table, uint16(level.Index(subset.Image(permutation))))
			}
		}
		level.permutationTable = table
	})
	return level.permutationTable, level.permutationErr
}
