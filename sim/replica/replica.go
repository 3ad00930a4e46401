// Package replica runs independent, separately seeded copies of one lattice
// simulation concurrently. Replicas share nothing; results are returned in
// replica order and are not aggregated.
package replica

import (
	"context"
	"fmt"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/lattice-sim/lattice-sim/sim"
	"github.com/lattice-sim/lattice-sim/sim/trace"
)

// Factory builds the configuration and initial lattice for one replica from
// its seed. Presets that place cells at random consume the seed too.
type Factory func(seed int64) (sim.Config, *sim.Lattice, error)

// Options controls a replica batch.
type Options struct {
	Replicas    int               // number of replicas (>= 1)
	Parallelism int               // concurrent replicas; 0 means GOMAXPROCS
	Trace       trace.TraceConfig // per-replica step trace
}

// Result is the outcome of one replica.
type Result struct {
	Replica    int                    `json:"replica"`
	Seed       int64                  `json:"seed"`
	StopReason sim.StopReason         `json:"stop_reason"`
	Metrics    *sim.Metrics           `json:"metrics"`
	Final      sim.Snapshot           `json:"-"`
	Trace      *trace.SimulationTrace `json:"-"`
}

// Seeds derives one seed per replica from master. Replica 0 runs on master
// itself so a single-replica batch reproduces a plain run with that seed.
func Seeds(master int64, n int) []int64 {
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(master))
	seeds := make([]int64, n)
	for i := range seeds {
		if i == 0 {
			seeds[i] = master
			continue
		}
		seeds[i] = rng.ForSubsystem(sim.SubsystemReplica(i)).Int63()
	}
	return seeds
}

// Run executes opts.Replicas simulations with seeds derived from master. The
// first replica error cancels the others and is returned.
func Run(ctx context.Context, master int64, build Factory, opts Options) ([]Result, error) {
	if opts.Replicas < 1 {
		return nil, fmt.Errorf("replicas must be >= 1, got %d", opts.Replicas)
	}
	if opts.Parallelism < 0 {
		return nil, fmt.Errorf("parallelism must be >= 0, got %d", opts.Parallelism)
	}
	limit := opts.Parallelism
	if limit == 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	seeds := Seeds(master, opts.Replicas)
	results := make([]Result, opts.Replicas)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, seed := range seeds {
		i, seed := i, seed
		g.Go(func() error {
			res, err := runOne(gCtx, i, seed, build, opts.Trace)
			if err != nil {
				return fmt.Errorf("replica %d (seed %d): %w", i, seed, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runOne(ctx context.Context, i int, seed int64, build Factory, tc trace.TraceConfig) (Result, error) {
	cfg, lat, err := build(seed)
	if err != nil {
		return Result{}, err
	}
	cfg.Seed = seed
	s, err := sim.NewSimulator(cfg, lat)
	if err != nil {
		return Result{}, err
	}

	st := trace.NewSimulationTrace(tc)
	if st.Enabled() {
		s.AddObserver(Recorder(st))
	}

	logrus.Debugf("replica %d: seed %d", i, seed)
	reason, err := s.Run(ctx)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Replica:    i,
		Seed:       seed,
		StopReason: reason,
		Metrics:    s.Metrics,
		Final:      s.Snapshot(),
		Trace:      st,
	}, nil
}

// Recorder returns an observer that appends every step to st.
func Recorder(st *trace.SimulationTrace) sim.Observer {
	return sim.ObserverFunc(func(e sim.StepEvent) {
		st.RecordStep(trace.StepRecord{
			Step:    e.Step,
			Channel: int(e.Channel),
			Row:     e.Site.Row,
			Col:     e.Site.Col,
			Dwell:   e.Dwell,
			Time:    e.Time,
		})
	})
}
