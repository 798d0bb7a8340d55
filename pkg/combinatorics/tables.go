package combinatorics

var (
	binomials  [MaxElements + 1][MaxElements + 1]int
	factorials [MaxElements + 1]int
)

// Pascal's triangle and factorials up to MaxElements
func init() {
	factorials[0] = 1
	for n := 0; n <= MaxElements; n++ {
		if n > 0 {
			factorials[n] = factorials[n-1] * n
		}
		binomials[n][0] = 1
		for k := 1; k <= n; k++ {
			binomials[n][k] = binomials[n-1][k-1] + binomials[n-1][k]
		}
	}
}

// Binomial returns C(n, k) and 0 whenever k < 0 or k > n
func Binomial(n, k int) int {
	if k < 0 || n < 0 || k > n {
		return 0
	}
	if n > MaxElements {
		return binomialSlow(n, k)
	}
	return binomials[n][k]
}

func Factorial(n int) int {
	if n < 0 {
		return 0
	}
	if n > MaxElements {
		result := factorials[MaxElements]
		for i := MaxElements + 1; i <= n; i++ {
			result *= i
		}
		return result
	}
	return factorials[n]
}

func binomialSlow(n, k int) int {
	result := 1
	for i := range k {
		result = result * (n - i) / (i + 1)
	}
	return result
}
