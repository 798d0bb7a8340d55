package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var errUsage = errors.New("usage: matroids [options] <n> <r> [<num_threads>] [--file] [--xz] [--exhaustive] [--verbose]")

type arguments struct {
	n, r       int
	threads    int // 0 when not given
	fileOutput bool
	compress   bool
	exhaustive bool
	verbose    bool
}

// Boolean flags accepted among the positional arguments, where the flag parser no longer sees them
var trailingFlags = map[string]func(parsed *arguments){
	"file":       func(parsed *arguments) { parsed.fileOutput = true },
	"xz":         func(parsed *arguments) { parsed.compress = true },
	"exhaustive": func(parsed *arguments) { parsed.exhaustive = true },
	"verbose":    func(parsed *arguments) { parsed.verbose = true },
	"v":          func(parsed *arguments) { parsed.verbose = true },
}

// parseArguments reads "<n> <r> [<num_threads>]" where the boolean flags may appear in any position
func parseArguments(positionals []string) (arguments, error) {
	var parsed arguments

	numbers := make([]int, 0, 3)
	for _, positional := range positionals {
		if strings.HasPrefix(positional, "-") {
			if set, ok := trailingFlags[strings.TrimLeft(positional, "-")]; ok {
				set(&parsed)
				continue
			}
			if strings.HasPrefix(positional, "--") {
				return arguments{}, fmt.Errorf("%w: unknown flag %q (flags taking a value go before <n>)", errUsage, positional)
			}
		}
		number, err := strconv.Atoi(positional)
		if err != nil {
			return arguments{}, fmt.Errorf("%w: %q is not an integer", errUsage, positional)
		}
		numbers = append(numbers, number)
	}

	if len(numbers) < 2 || len(numbers) > 3 {
		return arguments{}, errUsage
	}
	parsed.n, parsed.r = numbers[0], numbers[1]
	if len(numbers) == 3 {
		if numbers[2] < 1 {
			return arguments{}, fmt.Errorf("%w: the number of threads must be positive", errUsage)
		}
		parsed.threads = numbers[2]
	}
	return parsed, nil
}
