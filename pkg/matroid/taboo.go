package matroid

import (
	"slices"

	"github.com/samber/lo"
)

// TabooHyperplanes returns the sorted indices (into Lattice().Hyperplanes) of the hyperplanes that can never be
// the ones left out of a new canonical extension. family holds the r-subsets of the ground set containing its
// last element, in colex order (see Level.TabooFamily of the extension level).
func (m *Matroid) TabooHyperplanes(family []Subset) []int {
	if m.tabooReady {
		return m.taboo
	}

	lattice := m.Lattice()
	taboo := make(map[int]bool)

	//** Hyperplanes of maximum size
	largest := lo.Max(lo.Map(lattice.Hyperplanes, func(hyperplane Subset, _ int) int { return hyperplane.Count() }))
	for i, hyperplane := range lattice.Hyperplanes {
		if hyperplane.Count() == largest {
			taboo[i] = true
		}
	}

	//** Hyperplanes spanned by the prefix of family whose extension symbols are forced to agree
	last := m.n - 1
	for _, subset := range family {
		reduced := subset.Without(last)
		if !m.IsIndependent(subset) {
			if !m.IsIndependent(reduced) {
				continue // Forced non-basis agreement
			}
			break
		}
		if index, ok := lattice.HyperplaneIndex[m.Closure(reduced)]; ok {
			taboo[index] = true
		}
	}

	m.taboo = lo.Keys(taboo)
	slices.Sort(m.taboo)
	m.tabooReady = true
	return m.taboo
}
