package matroid

import (
	"fmt"
	"strings"

	"github.com/limaJavier/matroids/pkg/combinatorics"
)

// ExtendByLinearSubclass returns the indicator of the single-element extension of m determined by a linear
// subclass (indices into m.Lattice().Hyperplanes). level is the extension level (m.N()+1, m.R()).
// The new element joins an independent (r-1)-subset I into a basis iff I lies in no hyperplane of the subclass
func ExtendByLinearSubclass(m *Matroid, level *combinatorics.Level, subclass []int) string {
	lattice := m.Lattice()
	previous := level.PreviousSubsets()

	var builder strings.Builder
	builder.Grow(len(m.indicator) + len(previous))
	builder.WriteString(m.indicator)

	for _, subset := range previous {
		symbol := NonBasis
		if lattice.IsIndependent(subset) {
			symbol = Basis
			for _, plane := range subclass {
				if subset.IsSubsetOf(lattice.Hyperplanes[plane]) {
					symbol = NonBasis
					break
				}
			}
		}
		builder.WriteByte(symbol)
	}

	return builder.String()
}

// ExtendByColoop adds to m (rank r-1 on n-1 elements) a new element lying in every basis. level is (n, r)
func ExtendByColoop(m *Matroid, level *combinatorics.Level) (*Matroid, error) {
	if level.N() != m.n+1 || level.R() != m.r+1 {
		return nil, fmt.Errorf("coloop extension of %v needs level (%d, %d) but got (%d, %d)", m, m.n+1, m.r+1, level.N(), level.R())
	}
	indicator := strings.Repeat(string(NonBasis), level.DeletionSize()) + m.indicator
	return New(level.N(), level.R(), indicator, level)
}
