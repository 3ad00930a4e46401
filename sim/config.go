package sim

import (
	"fmt"
	"math"
)

// RateTable holds one rate constant per channel id, fixed for the run.
type RateTable []float64

// Validate rejects negative, NaN and infinite rates. Zero is allowed and
// switches a channel off.
func (rt RateTable) Validate() error {
	for c, k := range rt {
		if math.IsNaN(k) || math.IsInf(k, 0) {
			return fmt.Errorf("%w: rate[%d] = %v is not finite", ErrConfig, c, k)
		}
		if k < 0 {
			return fmt.Errorf("%w: rate[%d] = %v is negative", ErrConfig, c, k)
		}
	}
	return nil
}

// Config groups everything a Simulator needs besides the initial lattice.
type Config struct {
	Model Model     // channel set: rule evaluator and transition function
	Rates RateTable // one rate per channel of Model
	Seed  int64     // master seed; the sampler consumes SubsystemKinetics

	MaxSteps int64   // stop after this many steps (0 = unlimited)
	MaxTime  float64 // stop once simulated time reaches this value (0 = unlimited)

	// CheckConsistency rebuilds the event index after every step and fails the
	// run on divergence. Debug/testing aid; O(sites) per step.
	CheckConsistency bool
}

// NewConfig builds a Config with no budgets.
func NewConfig(model Model, rates RateTable, seed int64) Config {
	return Config{Model: model, Rates: rates, Seed: seed}
}

// Validate checks the model, rate table and budgets.
func (c Config) Validate() error {
	if c.Model == nil {
		return fmt.Errorf("%w: no model", ErrConfig)
	}
	if err := c.Model.Stencil().Validate(); err != nil {
		return err
	}
	n := len(c.Model.Channels())
	if n == 0 {
		return fmt.Errorf("%w: model %q has no channels", ErrConfig, c.Model.Name())
	}
	if len(c.Rates) != n {
		return fmt.Errorf("%w: rate table has %d entries, model %q emits %d channels",
			ErrConfig, len(c.Rates), c.Model.Name(), n)
	}
	if err := c.Rates.Validate(); err != nil {
		return err
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("%w: max steps must be non-negative, got %d", ErrConfig, c.MaxSteps)
	}
	if c.MaxTime < 0 || math.IsNaN(c.MaxTime) {
		return fmt.Errorf("%w: max time must be non-negative, got %v", ErrConfig, c.MaxTime)
	}
	return nil
}
