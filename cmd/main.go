package main

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"slices"

	"github.com/limaJavier/matroids/pkg/combinatorics"
	"github.com/limaJavier/matroids/pkg/generator"
	"github.com/limaJavier/matroids/pkg/matroid"
	"github.com/samber/lo"
)

// Number of isomorphism classes of matroids on n elements, indexed by rank
var KnownCounts = map[int][]int{
	4: {1, 4, 7, 4, 1},
	5: {1, 5, 13, 13, 5, 1},
	6: {1, 6, 23, 38, 23, 6, 1},
	7: {1, 7, 37, 108, 108, 37, 7, 1},
}

const MaxElements = 7

func main() {
	search := generator.NewGenerator(generator.Options{Threads: runtime.NumCPU()})
	exhaustive := generator.NewGenerator(generator.Options{Threads: runtime.NumCPU(), Exhaustive: true})

	for n := 4; n <= MaxElements; n++ {
		counts := make([]int, 0, n+1)
		for r := 0; r <= n; r++ {
			matroids, err := search.Generate(context.Background(), n, r)
			if err != nil {
				log.Fatal(err)
			}
			counts = append(counts, len(matroids))

			// Both canonicity tests must keep the same representatives
			reference, err := exhaustive.Generate(context.Background(), n, r)
			if err != nil {
				log.Fatal(err)
			}
			indicator := func(m *matroid.Matroid, _ int) string { return m.Indicator() }
			if !slices.Equal(lo.Map(matroids, indicator), lo.Map(reference, indicator)) {
				log.Fatalf("canonicity tests disagree on n = %v, r = %v", n, r)
			}

			for _, m := range matroids {
				if m.Rank(combinatorics.FullSet(n)) != r {
					log.Fatalf("%v does not have rank %v", m, r)
				}
			}
		}

		fmt.Printf("n = %v: %v\n", n, counts)
		if !slices.Equal(counts, KnownCounts[n]) {
			log.Fatalf("Verification failed: expected %v", KnownCounts[n])
		}
	}

	fmt.Println("Well done!")
}
