package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/limaJavier/matroids/pkg/combinatorics"
	"github.com/limaJavier/matroids/pkg/matroid"
	"github.com/limaJavier/matroids/pkg/storage"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

var ErrInvalidThreads = errors.New("the number of threads must be positive")

type Generator interface {
	// Generate returns one representative of every isomorphism class of rank-r matroids on n elements:
	// the accepted extensions of the (n-1, r) matroids (by source, then discovery order) followed by the
	// coloop extensions of the (n-1, r-1) matroids
	Generate(ctx context.Context, n, r int) ([]*matroid.Matroid, error)
	// Stream produces the same sequence as Generate, writing the indicators of the last level through sink.
	// The sink is discarded when the level cannot be built
	Stream(ctx context.Context, n, r int, sink storage.Sink) (Summary, error)
}

type Options struct {
	Threads    int
	Exhaustive bool // Use the permutation-table canonicity test
	Logger     *slog.Logger
}

// Summary describes the construction of one level
type Summary struct {
	N, R       int
	Candidates int // Extensions submitted to the canonicity test
	Extensions int // Accepted extensions of (n-1, r) matroids
	Coloops    int // Coloop extensions of (n-1, r-1) matroids
	Duration   time.Duration
	Digest     uint64 // xxhash of the streamed output
	Path       string // Merged file, if any
}

func (summary Summary) Total() int {
	return summary.Extensions + summary.Coloops
}

func (summary Summary) Rejected() int {
	return max(summary.Candidates-summary.Extensions, 0)
}

func NewGenerator(options Options) Generator {
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	return &generatorImplementation{options: options}
}

type generatorImplementation struct {
	options Options
}

// run memoizes the levels computed during one top-level call
type run struct {
	options  Options
	levels   map[[2]int]*combinatorics.Level
	matroids map[[2]int][]*matroid.Matroid
}

func (generator *generatorImplementation) newRun(n, r int) (*run, error) {
	if err := combinatorics.Validate(n, r); err != nil {
		return nil, err
	}
	if generator.options.Threads < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidThreads, generator.options.Threads)
	}
	return &run{
		options:  generator.options,
		levels:   make(map[[2]int]*combinatorics.Level),
		matroids: make(map[[2]int][]*matroid.Matroid),
	}, nil
}

func (generator *generatorImplementation) Generate(ctx context.Context, n, r int) ([]*matroid.Matroid, error) {
	run, err := generator.newRun(n, r)
	if err != nil {
		return nil, err
	}
	return run.generate(ctx, n, r)
}

func (generator *generatorImplementation) Stream(ctx context.Context, n, r int, sink storage.Sink) (summary Summary, err error) {
	run, err := generator.newRun(n, r)
	if err != nil {
		return Summary{}, err
	}

	start := time.Now()
	summary = Summary{N: n, R: r}

	if err := sink.Open(run.options.Threads); err != nil {
		return Summary{}, err
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, sink.Discard())
		}
	}()

	trailer := []string{string(matroid.Basis)} // The trivial matroid
	if r != 0 && n != r {
		sources, coloops, err := run.previous(ctx, n, r)
		if err != nil {
			return Summary{}, err
		}
		trailer = lo.Map(coloops, func(m *matroid.Matroid, _ int) string { return m.Indicator() })
		summary.Coloops = len(coloops)

		level, err := run.level(n, r)
		if err != nil {
			return Summary{}, err
		}
		tester, err := run.tester(level)
		if err != nil {
			return Summary{}, err
		}

		var candidates atomic.Int64
		err = run.fanOut(ctx, len(sources), func(worker, index int) error {
			accepted, tried := run.extend(sources[index], level, tester)
			candidates.Add(int64(tried))
			for _, indicator := range accepted {
				if err := sink.Append(worker, storage.Record{Indicator: indicator, Source: index}); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return Summary{}, fmt.Errorf("cannot build level (%d, %d): %w", n, r, err)
		}
		summary.Candidates = int(candidates.Load())
	}

	result, err := sink.Merge(trailer)
	if err != nil {
		return Summary{}, err
	}

	summary.Extensions = result.Records - summary.Coloops
	summary.Digest = result.Digest
	summary.Path = result.Path
	summary.Duration = time.Since(start)
	run.record(summary)
	return summary, nil
}

// generate builds the level (n, r) in memory, reusing every level already built by this run
func (run *run) generate(ctx context.Context, n, r int) ([]*matroid.Matroid, error) {
	key := [2]int{n, r}
	if matroids, ok := run.matroids[key]; ok {
		return matroids, nil
	}

	level, err := run.level(n, r)
	if err != nil {
		return nil, err
	}

	if r == 0 || n == r {
		trivial, err := matroid.Trivial(n, r, level)
		if err != nil {
			return nil, err
		}
		run.matroids[key] = []*matroid.Matroid{trivial}
		return run.matroids[key], nil
	}

	start := time.Now()
	sources, coloops, err := run.previous(ctx, n, r)
	if err != nil {
		return nil, err
	}
	tester, err := run.tester(level)
	if err != nil {
		return nil, err
	}

	var candidates atomic.Int64
	slots := make([][]*matroid.Matroid, len(sources))
	err = run.fanOut(ctx, len(sources), func(_, index int) error {
		accepted, tried := run.extend(sources[index], level, tester)
		candidates.Add(int64(tried))

		slots[index] = make([]*matroid.Matroid, 0, len(accepted))
		for _, indicator := range accepted {
			extension, err := matroid.New(n, r, indicator, level)
			if err != nil {
				return err
			}
			slots[index] = append(slots[index], extension)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cannot build level (%d, %d): %w", n, r, err)
	}

	matroids := append(lo.Flatten(slots), coloops...)
	run.matroids[key] = matroids

	run.record(Summary{
		N:          n,
		R:          r,
		Candidates: int(candidates.Load()),
		Extensions: len(matroids) - len(coloops),
		Coloops:    len(coloops),
		Duration:   time.Since(start),
	})
	return matroids, nil
}

// previous returns the (n-1, r) matroids to extend and the coloop extensions of the (n-1, r-1) matroids
func (run *run) previous(ctx context.Context, n, r int) ([]*matroid.Matroid, []*matroid.Matroid, error) {
	sources, err := run.generate(ctx, n-1, r)
	if err != nil {
		return nil, nil, err
	}
	smaller, err := run.generate(ctx, n-1, r-1)
	if err != nil {
		return nil, nil, err
	}

	level, err := run.level(n, r)
	if err != nil {
		return nil, nil, err
	}
	coloops := make([]*matroid.Matroid, 0, len(smaller))
	for _, m := range smaller {
		coloop, err := matroid.ExtendByColoop(m, level)
		if err != nil {
			return nil, nil, err
		}
		coloops = append(coloops, coloop)
	}
	return sources, coloops, nil
}

func (run *run) level(n, r int) (*combinatorics.Level, error) {
	key := [2]int{n, r}
	if level, ok := run.levels[key]; ok {
		return level, nil
	}
	level, err := combinatorics.NewLevel(n, r)
	if err != nil {
		return nil, err
	}
	run.levels[key] = level
	return level, nil
}

func (run *run) tester(level *combinatorics.Level) (matroid.CanonicityTester, error) {
	if run.options.Exhaustive {
		return matroid.NewExhaustiveTester(level)
	}
	return matroid.NewSearchTester(level), nil
}

// extend returns the canonical single-element extensions of m in discovery order and the number of candidates
func (run *run) extend(m *matroid.Matroid, level *combinatorics.Level, tester matroid.CanonicityTester) ([]string, int) {
	accepted := make([]string, 0)
	candidates := 0
	matroid.VisitLinearSubclasses(m, level, true, func(subclass []int) {
		candidates++
		indicator := matroid.ExtendByLinearSubclass(m, level, subclass)
		if tester.IsCanonical(indicator) {
			accepted = append(accepted, indicator)
		}
	})
	m.Release()
	return accepted, candidates
}

// fanOut hands the indices 0..count-1 in increasing order to a fixed pool of workers, one index at a time.
// The first error stops the feeding and is returned once every worker has finished
func (run *run) fanOut(ctx context.Context, count int, work func(worker, index int) error) error {
	group, ctx := errgroup.WithContext(ctx)
	indices := make(chan int)

	group.Go(func() error {
		defer close(indices)
		for index := range count {
			select {
			case indices <- index:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for worker := range run.options.Threads {
		group.Go(func() error {
			for index := range indices {
				if err := work(worker, index); err != nil {
					return err
				}
			}
			return nil
		})
	}

	return group.Wait()
}

func (run *run) record(summary Summary) {
	label := levelLabel(summary.N, summary.R)
	candidatesTotal.WithLabelValues(label).Add(float64(summary.Candidates))
	rejectedTotal.WithLabelValues(label).Add(float64(summary.Rejected()))
	acceptedTotal.WithLabelValues(label, "extension").Add(float64(summary.Extensions))
	acceptedTotal.WithLabelValues(label, "coloop").Add(float64(summary.Coloops))
	levelDuration.WithLabelValues(label).Observe(summary.Duration.Seconds())

	run.options.Logger.Debug("level built",
		slog.Int("n", summary.N),
		slog.Int("r", summary.R),
		slog.Int("candidates", summary.Candidates),
		slog.Int("rejected", summary.Rejected()),
		slog.Int("accepted", summary.Total()),
		slog.Duration("duration", summary.Duration),
	)
}
