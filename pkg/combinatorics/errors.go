package combinatorics

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidParameters = errors.New("invalid enumeration parameters")
	ErrTableTooLarge     = errors.New("permutation table exceeds the allowed size")
)

type parametersError struct {
	n, r int
}

func (err parametersError) Error() string {
	if err.n > MaxElements {
		return fmt.Sprintf("%v: ground set of %d elements exceeds the maximum of %d", ErrInvalidParameters, err.n, MaxElements)
	}
	return fmt.Sprintf("%v: ensure that r >= 0 and n >= r (n = %d, r = %d)", ErrInvalidParameters, err.n, err.r)
}

func (err parametersError) Unwrap() error {
	return ErrInvalidParameters
}

// Validate rejects (n, r) pairs no level can be built for
func Validate(n, r int) error {
	if r < 0 || n < r || n > MaxElements {
		return parametersError{n: n, r: r}
	}
	return nil
}
