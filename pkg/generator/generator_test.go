package generator

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/limaJavier/matroids/pkg/combinatorics"
	"github.com/limaJavier/matroids/pkg/matroid"
	"github.com/limaJavier/matroids/pkg/storage"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// Number of isomorphism classes of matroids on n elements, indexed by rank
var knownCounts = map[int][]int{
	1: {1, 1},
	2: {1, 2, 1},
	3: {1, 3, 3, 1},
	4: {1, 4, 7, 4, 1},
	5: {1, 5, 13, 13, 5, 1},
	6: {1, 6, 23, 38, 23, 6, 1},
}

func newTestGenerator(threads int, exhaustive bool) Generator {
	return NewGenerator(Options{
		Threads:    threads,
		Exhaustive: exhaustive,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func indicators(matroids []*matroid.Matroid) []string {
	return lo.Map(matroids, func(m *matroid.Matroid, _ int) string { return m.Indicator() })
}

func TestGenerateCounts(t *testing.T) {
	for _, exhaustive := range []bool{false, true} {
		generator := newTestGenerator(4, exhaustive)

		for n, counts := range knownCounts {
			for r, expected := range counts {
				//** Act
				matroids, err := generator.Generate(context.Background(), n, r)

				//** Assert
				require.NoError(t, err)
				assert.Len(t, matroids, expected, "n = %d, r = %d, exhaustive = %v", n, r, exhaustive)
			}
		}
	}
}

func TestGenerateSmallLevels(t *testing.T) {
	generator := newTestGenerator(2, false)

	scenarios := []struct {
		n, r     int
		expected []string
	}{
		{n: 2, r: 1, expected: []string{"**", "0*"}},
		{n: 3, r: 1, expected: []string{"***", "0**", "00*"}},
		{n: 4, r: 2, expected: []string{"******", "0*****", "0****0", "00*0**", "000***", "0000**", "00000*"}},
		{n: 4, r: 0, expected: []string{"*"}},
		{n: 3, r: 3, expected: []string{"*"}},
	}

	for _, scenario := range scenarios {
		//** Act
		matroids, err := generator.Generate(context.Background(), scenario.n, scenario.r)

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, scenario.expected, indicators(matroids))
	}
}

func TestGenerateKeepsDiscoveryOrderWithinEachSource(t *testing.T) {
	//** Arrange
	expected := []string{
		"**********", "0*********", "0****0****", "00*0**0***", "000*******", "000******0",
		"0000**0***", "0000**0**0", "00000*00**", // Accepted extensions of the (4, 2) matroids
		"000000****", "0000000***", "00000000**", "000000000*", // Coloop extensions of the (4, 1) matroids
	}

	for _, threads := range []int{1, 4} {
		generator := newTestGenerator(threads, false)

		//** Act
		matroids, err := generator.Generate(context.Background(), 5, 2)

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, expected, indicators(matroids), "threads = %d", threads)
	}
}

func TestGeneratedMatroidsAreWellFormed(t *testing.T) {
	//** Arrange
	generator := newTestGenerator(3, false)
	n, r := 6, 3
	level, err := combinatorics.NewLevel(n, r)
	require.NoError(t, err)
	tester := matroid.NewSearchTester(level)

	//** Act
	matroids, err := generator.Generate(context.Background(), n, r)

	//** Assert
	require.NoError(t, err)
	assert.Len(t, lo.Uniq(indicators(matroids)), len(matroids))
	for _, m := range matroids {
		assert.Len(t, m.Indicator(), combinatorics.Binomial(n, r))
		assert.Equal(t, r, m.Rank(combinatorics.FullSet(n)))
		assert.True(t, tester.IsCanonical(m.Indicator()), m.Indicator())
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	//** Arrange
	sequential := newTestGenerator(1, false)
	parallel := newTestGenerator(8, false)

	for _, scenario := range [][2]int{{6, 2}, {6, 3}, {7, 3}} {
		n, r := scenario[0], scenario[1]

		//** Act
		expected, err := sequential.Generate(context.Background(), n, r)
		require.NoError(t, err)
		actual, err := parallel.Generate(context.Background(), n, r)
		require.NoError(t, err)

		//** Assert
		assert.Equal(t, indicators(expected), indicators(actual))
	}
}

func TestStreamMatchesGenerate(t *testing.T) {
	for _, scenario := range [][2]int{{5, 2}, {6, 3}, {5, 5}, {7, 2}} {
		n, r := scenario[0], scenario[1]

		//** Arrange
		generator := newTestGenerator(4, false)
		matroids, err := generator.Generate(context.Background(), n, r)
		require.NoError(t, err)
		expected := indicators(matroids)

		var output bytes.Buffer
		directory := filepath.Join(t.TempDir(), "output")

		//** Act
		memory, err := generator.Stream(context.Background(), n, r, storage.NewWriterSink(&output))
		require.NoError(t, err)
		file, err := generator.Stream(context.Background(), n, r, storage.NewFileSink(directory, n, r, true))
		require.NoError(t, err)

		//** Assert
		assert.Equal(t, expected, strings.Fields(output.String()))
		lines, err := storage.ReadLines(file.Path)
		require.NoError(t, err)
		assert.Equal(t, expected, lines)

		assert.Equal(t, memory.Digest, file.Digest)
		assert.Equal(t, len(expected), memory.Total())
		assert.Equal(t, memory.Extensions, file.Extensions)
		assert.LessOrEqual(t, memory.Rejected(), memory.Candidates)
	}
}

func TestGenerateRejectsInvalidParameters(t *testing.T) {
	generator := newTestGenerator(2, false)

	for _, scenario := range [][2]int{{3, 4}, {3, -1}} {
		_, err := generator.Generate(context.Background(), scenario[0], scenario[1])

		assert.ErrorIs(t, err, combinatorics.ErrInvalidParameters)
	}

	_, err := newTestGenerator(0, false).Generate(context.Background(), 4, 2)
	assert.ErrorIs(t, err, ErrInvalidThreads)
}

var errBrokenSink = errors.New("broken sink")

type brokenSink struct {
	storage.Sink
}

func (sink brokenSink) Append(int, storage.Record) error {
	return errBrokenSink
}

func TestStreamPropagatesWorkerErrors(t *testing.T) {
	//** Arrange
	generator := newTestGenerator(4, false)
	sink := brokenSink{Sink: storage.NewWriterSink(io.Discard)}

	//** Act
	_, err := generator.Stream(context.Background(), 6, 3, sink)

	//** Assert
	assert.ErrorIs(t, err, errBrokenSink)
}

func TestStreamDiscardsPartitionsOnFailure(t *testing.T) {
	//** Arrange
	generator := newTestGenerator(4, false)
	directory := t.TempDir()
	sink := brokenSink{Sink: storage.NewFileSink(directory, 6, 3, false)}

	//** Act
	_, err := generator.Stream(context.Background(), 6, 3, sink)

	//** Assert
	assert.ErrorIs(t, err, errBrokenSink)
	entries, err := os.ReadDir(directory)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
