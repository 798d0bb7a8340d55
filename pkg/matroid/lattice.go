package matroid

import (
	"log"
	"slices"

	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"
)

// Lattice holds the top of a matroid's lattice of flats: its hyperplanes (rank r-1), its hyperlines (rank r-2)
// and the incidence between them
type Lattice struct {
	Independent     []Subset // independent (r-1)-subsets in colex order
	Hyperplanes     []Subset
	HyperplaneIndex map[Subset]int
	Hyperlines      []Subset
	PlanesToLines   [][]int // hyperlines contained in each hyperplane
	LinesToPlanes   [][]int // hyperplanes containing each hyperline

	independent map[Subset]bool
}

// Lattice computes the flats of corank 1 and 2 once and caches them on the matroid
func (m *Matroid) Lattice() *Lattice {
	if m.lattice != nil {
		return m.lattice
	}

	lattice := &Lattice{
		HyperplaneIndex: make(map[Subset]int),
		independent:     make(map[Subset]bool),
	}

	//** Independent (r-1)-subsets: every basis minus one element
	for _, basis := range m.Bases() {
		for _, element := range basis.Elements() {
			subset := basis.Without(element)
			if !lattice.independent[subset] {
				lattice.independent[subset] = true
				lattice.Independent = append(lattice.Independent, subset)
			}
		}
	}
	slices.Sort(lattice.Independent) // Numeric order is colex order

	//** Hyperplanes: each one sits at the position of the colex-earliest independent subset spanning it
	for _, independent := range lattice.Independent {
		hyperplane := m.Closure(independent)
		if _, ok := lattice.HyperplaneIndex[hyperplane]; !ok {
			lattice.HyperplaneIndex[hyperplane] = len(lattice.Hyperplanes)
			lattice.Hyperplanes = append(lattice.Hyperplanes, hyperplane)
		}
	}

	//** Hyperlines: intersections of two hyperplanes with rank r-2
	seen := make(map[Subset]bool)
	for i, hyperplane1 := range lattice.Hyperplanes {
		for _, hyperplane2 := range lattice.Hyperplanes[i+1:] {
			intersection := hyperplane1 & hyperplane2
			if !seen[intersection] && intersection.Count() >= m.r-2 && m.Rank(intersection) == m.r-2 {
				seen[intersection] = true
				lattice.Hyperlines = append(lattice.Hyperlines, intersection)
			}
		}
	}

	lattice.buildIncidence()

	m.lattice = lattice
	return lattice
}

func (lattice *Lattice) IsIndependent(subset Subset) bool {
	return lattice.independent[subset]
}

// buildIncidence derives both adjacency lists from the bipartite containment graph
func (lattice *Lattice) buildIncidence() {
	lattice.PlanesToLines = make([][]int, len(lattice.Hyperplanes))
	lattice.LinesToPlanes = make([][]int, len(lattice.Hyperlines))

	contains := func(planeAny any, lineAny any) (bool, error) {
		plane := planeAny.(Subset)
		line := lineAny.(Subset)

		return line.IsSubsetOf(plane), nil
	}

	planesAny, linesAny := lo.Map(lattice.Hyperplanes, func(plane Subset, _ int) any { return plane }), lo.Map(lattice.Hyperlines, func(line Subset, _ int) any { return line })

	graph, err := bipartitegraph.NewBipartiteGraph(planesAny, linesAny, contains)
	if err != nil {
		log.Panicf("cannot build hyperplane/hyperline incidence: %v", err)
	}

	for _, edge := range graph.Edges {
		plane, line := edge.Node1, edge.Node2-len(lattice.Hyperplanes)

		lattice.PlanesToLines[plane] = append(lattice.PlanesToLines[plane], line)
		lattice.LinesToPlanes[line] = append(lattice.LinesToPlanes[line], plane)
	}
}
