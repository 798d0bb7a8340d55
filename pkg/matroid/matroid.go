package matroid

import (
	"errors"
	"fmt"
	"strings"

	"github.com/limaJavier/matroids/pkg/combinatorics"
)

// Symbols of a basis indicator
const (
	Basis    byte = '*'
	NonBasis byte = '0'
)

var ErrMalformedIndicator = errors.New("malformed basis indicator")

type Subset = combinatorics.Subset

// Matroid is represented by its basis indicator: one symbol per r-subset of the ground set in colex order.
// Rank and closure queries are memoized on the instance, which must therefore be used by one goroutine at a time.
type Matroid struct {
	n, r      int
	indicator string
	level     *combinatorics.Level // any level of rank r covering at least n elements

	rankCache    map[Subset]int
	closureCache map[Subset]Subset
	lattice      *Lattice
	taboo        []int
	tabooReady   bool
}

func New(n, r int, indicator string, level *combinatorics.Level) (*Matroid, error) {
	if level == nil || level.R() != r || level.N() < n {
		return nil, fmt.Errorf("level does not cover a rank-%d matroid on %d elements", r, n)
	}
	if expected := combinatorics.Binomial(n, r); len(indicator) != expected {
		return nil, fmt.Errorf("%w: expected %d symbols but got %d", ErrMalformedIndicator, expected, len(indicator))
	}
	if strings.Trim(indicator, string([]byte{Basis, NonBasis})) != "" {
		return nil, fmt.Errorf("%w: only '%c' and '%c' are allowed: %q", ErrMalformedIndicator, Basis, NonBasis, indicator)
	}
	if strings.IndexByte(indicator, Basis) < 0 {
		return nil, fmt.Errorf("%w: a matroid has at least one basis", ErrMalformedIndicator)
	}

	return &Matroid{
		n:            n,
		r:            r,
		indicator:    indicator,
		level:        level,
		rankCache:    make(map[Subset]int),
		closureCache: make(map[Subset]Subset),
	}, nil
}

// Trivial returns the only matroid with r = 0 or n = r
func Trivial(n, r int, level *combinatorics.Level) (*Matroid, error) {
	return New(n, r, string(Basis), level)
}

func (m *Matroid) N() int { return m.n }

func (m *Matroid) R() int { return m.r }

func (m *Matroid) Indicator() string { return m.indicator }

func (m *Matroid) String() string {
	return fmt.Sprintf("M(%d, %d, %s)", m.n, m.r, m.indicator)
}

func (m *Matroid) Bases() []Subset {
	bases := make([]Subset, 0, strings.Count(m.indicator, string(Basis)))
	for i := range len(m.indicator) {
		if m.indicator[i] == Basis {
			bases = append(bases, m.level.Subset(i))
		}
	}
	return bases
}

// Rank returns max |F ∩ B| over all bases B
func (m *Matroid) Rank(f Subset) int {
	if rank, ok := m.rankCache[f]; ok {
		return rank
	}

	count := f.Count()
	rank := 0
	for i := range len(m.indicator) {
		if m.indicator[i] != Basis {
			continue
		}
		if intersection := (f & m.level.Subset(i)).Count(); intersection > rank {
			rank = intersection
			if rank == count {
				break
			}
		}
	}

	m.rankCache[f] = rank
	return rank
}

func (m *Matroid) IsIndependent(f Subset) bool {
	return m.Rank(f) == f.Count()
}

// Closure adds to F every element that does not increase its rank
func (m *Matroid) Closure(f Subset) Subset {
	if closure, ok := m.closureCache[f]; ok {
		return closure
	}

	closure := f
	rank := m.Rank(f)
	for element := range m.n {
		if !f.Contains(element) && m.Rank(f.With(element)) == rank {
			closure = closure.With(element)
		}
	}

	m.closureCache[f] = closure
	return closure
}

// Release drops the memoized rank, closure and lattice data once the matroid has been extended
func (m *Matroid) Release() {
	m.rankCache = make(map[Subset]int)
	m.closureCache = make(map[Subset]Subset)
	m.lattice = nil
	m.taboo = nil
	m.tabooReady = false
}
