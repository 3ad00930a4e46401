// sim/simulator.go
package sim

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
)

// StopReason tells why Run returned.
type StopReason int

const (
	StopNone StopReason = iota
	StopMaxSteps
	StopMaxTime
	StopStuck    // no channel enabled anywhere: total propensity is zero
	StopCanceled // context canceled between steps
)

func (r StopReason) String() string {
	switch r {
	case StopMaxSteps:
		return "max-steps"
	case StopMaxTime:
		return "max-time"
	case StopStuck:
		return "stuck"
	case StopCanceled:
		return "canceled"
	default:
		return "none"
	}
}

// MarshalText renders the reason by name in JSON output.
func (r StopReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// StepEvent is published to observers after every completed step.
type StepEvent struct {
	Step    int64     // 1-based iteration number
	Channel ChannelID // channel that fired
	Site    Site      // site it fired at
	Dwell   float64   // waiting time drawn for this step
	Time    float64   // simulated time after the step
}

// Observer receives a notification after each step. Observers must not mutate
// the simulator.
type Observer interface {
	OnStep(StepEvent)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(StepEvent)

// OnStep calls f.
func (f ObserverFunc) OnStep(e StepEvent) { f(e) }

// Snapshot is a consistent copy of the state between steps.
type Snapshot struct {
	Lattice *Lattice
	Time    float64
	Steps   int64
}

// Simulator is the core object that holds simulated time, the lattice, the
// event index and the sampler. It is owned by one goroutine; independent
// simulators share nothing and may run concurrently.
type Simulator struct {
	Clock    float64 // simulated time
	Steps    int64   // completed iterations
	MaxSteps int64
	MaxTime  float64

	model            Model
	lattice          *Lattice
	index            *EventIndex
	sampler          *Sampler
	uniform          Uniform
	rng              *PartitionedRNG
	checkConsistency bool
	broken           error // set once a consistency check fails

	observers []Observer
	Metrics   *Metrics
}

// NewSimulator validates cfg against the initial lattice and builds the event
// index from a private copy of it.
func NewSimulator(cfg Config, initial *Lattice) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if initial == nil {
		return nil, fmt.Errorf("%w: no initial lattice", ErrConfig)
	}
	if err := cfg.Model.CheckLattice(initial); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	sampler, err := NewSampler(cfg.Rates)
	if err != nil {
		return nil, err
	}

	lat := initial.Clone()
	rng := NewPartitionedRNG(NewSimulationKey(cfg.Seed))
	s := &Simulator{
		MaxSteps:         cfg.MaxSteps,
		MaxTime:          cfg.MaxTime,
		model:            cfg.Model,
		lattice:          lat,
		index:            BuildIndex(cfg.Model, lat),
		sampler:          sampler,
		uniform:          NewUniformSource(rng.ForSubsystem(SubsystemKinetics)),
		rng:              rng,
		checkConsistency: cfg.CheckConsistency,
		Metrics:          NewMetrics(len(cfg.Rates)),
	}
	return s, nil
}

// SetUniform replaces the random source. Tests use it to replay fixed draws.
func (sim *Simulator) SetUniform(u Uniform) { sim.uniform = u }

// AddObserver registers o for step notifications, in registration order.
func (sim *Simulator) AddObserver(o Observer) {
	sim.observers = append(sim.observers, o)
}

// RNG returns the partitioned RNG derived from Config.Seed.
func (sim *Simulator) RNG() *PartitionedRNG { return sim.rng }

// Model returns the channel set the simulator runs.
func (sim *Simulator) Model() Model { return sim.model }

// Index exposes the event index for read-only inspection.
func (sim *Simulator) Index() *EventIndex { return sim.index }

// Lattice exposes the live lattice for read-only inspection between steps.
func (sim *Simulator) Lattice() *Lattice { return sim.lattice }

// Snapshot copies the lattice together with the clock and step count.
func (sim *Simulator) Snapshot() Snapshot {
	return Snapshot{Lattice: sim.lattice.Clone(), Time: sim.Clock, Steps: sim.Steps}
}

// Propensity returns the current total propensity C.
func (sim *Simulator) Propensity() float64 {
	return sim.sampler.Propensity(sim.index.occurrences())
}

// Step performs Sample → Apply → RescanNeighborhood → clock advance. The bool
// is false when the simulation is stuck; the state is then left untouched.
//
// When CheckConsistency is on and the rebuilt index disagrees with the
// incremental one, the failing transition has already been applied to the
// lattice and index while Clock, Steps and Metrics still describe the previous
// step. The simulator is unusable from then on: every later Step returns the
// same error.
func (sim *Simulator) Step() (StepEvent, bool, error) {
	if sim.broken != nil {
		return StepEvent{}, false, sim.broken
	}
	d, ok, err := sim.sampler.Sample(sim.index, sim.uniform)
	if err != nil || !ok {
		return StepEvent{}, false, err
	}

	sim.model.Apply(sim.lattice, d.Channel, d.Site)
	sim.index.RescanNeighborhood(d.Site)
	if sim.checkConsistency {
		if err := sim.index.Verify(); err != nil {
			sim.broken = fmt.Errorf("step %d, channel %d at %v: %w", sim.Steps+1, d.Channel, d.Site, err)
			return StepEvent{}, false, sim.broken
		}
	}

	sim.Clock += d.Dwell
	sim.Steps++
	sim.Metrics.Record(d.Channel)

	ev := StepEvent{Step: sim.Steps, Channel: d.Channel, Site: d.Site, Dwell: d.Dwell, Time: sim.Clock}
	logrus.Tracef("[step %07d] t=%.6g channel=%d site=%v dwell=%.4g", ev.Step, ev.Time, ev.Channel, ev.Site, ev.Dwell)
	for _, o := range sim.observers {
		o.OnStep(ev)
	}
	return ev, true, nil
}

// budgetReached reports whether a configured step or time budget is exhausted.
func (sim *Simulator) budgetReached() (StopReason, bool) {
	if sim.MaxSteps > 0 && sim.Steps >= sim.MaxSteps {
		return StopMaxSteps, true
	}
	if sim.MaxTime > 0 && sim.Clock >= sim.MaxTime {
		return StopMaxTime, true
	}
	return StopNone, false
}

// cancelCheckInterval is how many steps run between context checks.
const cancelCheckInterval = 1024

// Run steps until a budget is reached, the simulation gets stuck, or ctx is
// canceled. Errors are fatal (domain or consistency violations).
func (sim *Simulator) Run(ctx context.Context) (StopReason, error) {
	start := time.Now()
	logrus.Infof("Starting %s simulation on %dx%d lattice, max steps=%d, max time=%v",
		sim.model.Name(), sim.lattice.Rows(), sim.lattice.Cols(), sim.MaxSteps, displayBudget(sim.MaxTime))

	reason, err := sim.loop(ctx)

	sim.Metrics.Finish(sim.Clock, sim.Steps, reason, time.Since(start))
	switch {
	case err != nil:
		logrus.Errorf("[step %07d] Simulation aborted: %v", sim.Steps, err)
	case reason == StopStuck:
		logrus.Warnf("[step %07d] Simulation stuck at t=%.6g: no channel enabled", sim.Steps, sim.Clock)
	default:
		logrus.Infof("[step %07d] Simulation ended at t=%.6g (%s)", sim.Steps, sim.Clock, reason)
	}
	return reason, err
}

func (sim *Simulator) loop(ctx context.Context) (StopReason, error) {
	for {
		if reason, done := sim.budgetReached(); done {
			return reason, nil
		}
		if sim.Steps%cancelCheckInterval == 0 && ctx.Err() != nil {
			return StopCanceled, nil
		}
		_, ok, err := sim.Step()
		if err != nil {
			return StopNone, err
		}
		if !ok {
			return StopStuck, nil
		}
	}
}

func displayBudget(v float64) any {
	if v == 0 {
		return math.Inf(1)
	}
	return v
}
