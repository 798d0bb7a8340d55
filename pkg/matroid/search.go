package matroid

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/limaJavier/matroids/pkg/combinatorics"
)

// node is a state of the linear-subclass search. A hyperplane is free, included or excluded (in neither set),
// a hyperline is covered by zero (lines0), one (lines1) or at least two included hyperplanes (in neither set)
type node struct {
	lattice  *Lattice
	free     *bitset.BitSet
	included *bitset.BitSet
	lines0   *bitset.BitSet
	lines1   *bitset.BitSet
}

func newNode(lattice *Lattice) *node {
	planes, lines := uint(len(lattice.Hyperplanes)), uint(len(lattice.Hyperlines))

	free := bitset.New(planes)
	for i := range planes {
		free.Set(i)
	}
	lines0 := bitset.New(lines)
	for i := range lines {
		lines0.Set(i)
	}

	return &node{
		lattice:  lattice,
		free:     free,
		included: bitset.New(planes),
		lines0:   lines0,
		lines1:   bitset.New(lines),
	}
}

func (n *node) clone() *node {
	return &node{
		lattice:  n.lattice,
		free:     n.free.Clone(),
		included: n.included.Clone(),
		lines0:   n.lines0.Clone(),
		lines1:   n.lines1.Clone(),
	}
}

// insert includes a free hyperplane together with every hyperplane it forces. It returns false when a forced
// hyperplane was already excluded, in which case the node is left inconsistent and must be discarded
func (n *node) insert(plane int) bool {
	planes := []int{plane}
	lines := make([]int, 0)
	n.free.Clear(uint(plane))
	n.included.Set(uint(plane))

	for len(planes) > 0 {
		for len(planes) > 0 {
			current := planes[0]
			planes = planes[1:]

			for _, line := range n.lattice.PlanesToLines[current] {
				if n.lines0.Test(uint(line)) {
					n.lines0.Clear(uint(line))
					n.lines1.Set(uint(line))
				} else if n.lines1.Test(uint(line)) {
					n.lines1.Clear(uint(line))
					lines = append(lines, line) // Committed: every plane through it must be included
				}
			}
		}

		for len(lines) > 0 {
			current := lines[0]
			lines = lines[1:]

			for _, other := range n.lattice.LinesToPlanes[current] {
				if n.included.Test(uint(other)) {
					continue
				}
				if !n.free.Test(uint(other)) {
					return false
				}
				n.free.Clear(uint(other))
				n.included.Set(uint(other))
				planes = append(planes, other)
			}
		}
	}

	return true
}

// exclude removes a free hyperplane from the search. A free hyperplane sharing a singly covered hyperline with
// an excluded one is excluded too, since including it would commit that line and force the excluded plane
func (n *node) exclude(plane int) {
	if !n.free.Test(uint(plane)) {
		return
	}

	planes := []int{plane}
	n.free.Clear(uint(plane))

	for len(planes) > 0 {
		current := planes[len(planes)-1]
		planes = planes[:len(planes)-1]

		for _, line := range n.lattice.PlanesToLines[current] {
			if !n.lines1.Test(uint(line)) {
				continue
			}
			for _, other := range n.lattice.LinesToPlanes[line] {
				if n.free.Test(uint(other)) {
					n.free.Clear(uint(other))
					planes = append(planes, other)
				}
			}
		}
	}
}

// selectFree returns the first free hyperplane or -1 when there is none
func (n *node) selectFree() int {
	if plane, ok := n.free.NextSet(0); ok {
		return int(plane)
	}
	return -1
}

func (n *node) planes() []int {
	planes := make([]int, 0, n.included.Count())
	for i, ok := n.included.NextSet(0); ok; i, ok = n.included.NextSet(i + 1) {
		planes = append(planes, int(i))
	}
	return planes
}

// VisitLinearSubclasses walks every linear subclass of m depth first (exclude branch before include branch)
// and hands the hyperplane indices of each one to visit. When excludeTaboo is set the taboo hyperplanes computed
// from the extension level are left out of every subclass.
func VisitLinearSubclasses(m *Matroid, level *combinatorics.Level, excludeTaboo bool, visit func(subclass []int)) {
	lattice := m.Lattice()
	root := newNode(lattice)

	if excludeTaboo {
		for _, plane := range m.TabooHyperplanes(level.TabooFamily()) {
			root.exclude(plane)
		}
	}

	search(root, visit)
}

// LinearSubclasses collects every linear subclass in discovery order
func LinearSubclasses(m *Matroid, level *combinatorics.Level, excludeTaboo bool) [][]int {
	subclasses := make([][]int, 0)
	VisitLinearSubclasses(m, level, excludeTaboo, func(subclass []int) {
		subclasses = append(subclasses, subclass)
	})
	return subclasses
}

func search(current *node, visit func(subclass []int)) {
	plane := current.selectFree()
	if plane == -1 {
		visit(current.planes())
		return
	}

	excluded := current.clone()
	excluded.exclude(plane)
	search(excluded, visit)

	if included := current.clone(); included.insert(plane) {
		search(included, visit)
	}
}
