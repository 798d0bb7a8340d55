package combinatorics

// Marks a position of a partial assignment that has not been assigned yet
const Unassigned = -1

type PermutationGenerator interface {
	// Returns every assignment (one value per domain) that holds all the constraints, in lexicographic order.
	// All the constraints must take into account that if the value of assignment[i] (for all feasible i's) is Unassigned
	// then the assignment is not ready to be evaluated if this evaluation involves assignment[i]
	//
	// Example:
	//
	//	generator := combinatorics.NewPermutationGenerator(3, 3)
	//
	//	assignments := generator.ConstrainedPermutations([]func(assignment []int) bool{
	//				func(assignment []int) bool {
	//	       		// Verify "assignment[1] == Unassigned", since the predicate "assignment[1] == 1" relies in this index
	//					return assignment[1] == combinatorics.Unassigned || assignment[1] == 1
	//				},
	//			})
	ConstrainedPermutations(constraints []func(assignment []int) bool) [][]int
}

func NewPermutationGenerator(domains ...int) PermutationGenerator {
	return &permutationGeneratorImplementation{domains: domains}
}

// Permutations returns the n! permutations of [n] in lexicographic order
func Permutations(n int) [][]int {
	domains := make([]int, n)
	for i := range domains {
		domains[i] = n
	}
	return NewPermutationGenerator(domains...).ConstrainedPermutations([]func(assignment []int) bool{Injective})
}

// Injective holds whenever no two assigned positions share a value
func Injective(assignment []int) bool {
	var seen Subset
	for _, value := range assignment {
		if value == Unassigned {
			continue
		}
		if seen.Contains(value) {
			return false
		}
		seen = seen.With(value)
	}
	return true
}

type permutationGeneratorImplementation struct {
	domains []int
}

func (generator *permutationGeneratorImplementation) ConstrainedPermutations(constraints []func(assignment []int) bool) [][]int {
	assignments := make([][]int, 0)
	assignment := make([]int, len(generator.domains))
	for i := range assignment {
		assignment[i] = Unassigned
	}
	generator.constrainedPermutations(constraints, 0, assignment, &assignments)
	return assignments
}

func (generator *permutationGeneratorImplementation) constrainedPermutations(
	constraints []func(assignment []int) bool,
	currentDomain int,
	assignment []int,
	assignments *[][]int) {

	if currentDomain >= len(generator.domains) {
		assignmentCopy := make([]int, len(assignment))
		copy(assignmentCopy, assignment)
		*assignments = append(*assignments, assignmentCopy)
		return
	}

	for value := range generator.domains[currentDomain] {
		assignment[currentDomain] = value
		constraintViolated := false
		for _, constraint := range constraints {
			if !constraint(assignment) {
				constraintViolated = true
				break
			}
		}

		if constraintViolated {
			continue
		}

		generator.constrainedPermutations(constraints, currentDomain+1, assignment, assignments)
	}

	assignment[currentDomain] = Unassigned
}
