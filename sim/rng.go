package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two simulations with the same SimulationKey, initial lattice and configuration
// MUST produce bit-for-bit identical step sequences.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Subsystem Constants ===

const (
	// SubsystemKinetics is the stream consumed by the sampler (three draws per step).
	// Uses the master seed directly so a bare --seed reproduces older runs.
	SubsystemKinetics = "kinetics"

	// SubsystemLattice is the stream used by randomized initial-lattice presets.
	SubsystemLattice = "lattice"

	// SubsystemTransitions drives randomized transition sequences in consistency tests.
	SubsystemTransitions = "transitions"
)

// SubsystemReplica returns the subsystem name for replica N.
func SubsystemReplica(id int) string {
	return fmt.Sprintf("replica_%d", id)
}

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation formula:
//   - For SubsystemKinetics: uses masterSeed directly
//   - For all other subsystems: masterSeed XOR fnv1a64(subsystemName)
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}

	var derivedSeed int64
	if name == SubsystemKinetics {
		derivedSeed = int64(p.key)
	} else {
		derivedSeed = int64(p.key) ^ fnv1a64(name)
	}

	rng := rand.New(rand.NewSource(derivedSeed))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}

// === Uniform source ===

// Uniform yields independent draws strictly inside (0,1).
type Uniform interface {
	Uniform() float64
}

// UniformSource adapts a *rand.Rand to Uniform. Values lie on the midpoints of a
// 2^-52 grid, so 0 and 1 are unreachable by construction.
type UniformSource struct {
	rng *rand.Rand
}

// NewUniformSource wraps rng.
func NewUniformSource(rng *rand.Rand) *UniformSource {
	return &UniformSource{rng: rng}
}

const unitGrid = 1 << 52

// Uniform returns (k + 0.5) / 2^52 for a uniform k in [0, 2^52); both the sum
// and the quotient are exact in float64.
func (u *UniformSource) Uniform() float64 {
	return (float64(u.rng.Int63n(unitGrid)) + 0.5) / unitGrid
}
