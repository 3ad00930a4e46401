// Package sim provides the lattice kinetic Monte Carlo engine.
//
// # Reading Guide
//
// Start with these files to understand the kernel:
//   - lattice.go: the site grid and its boundary policy
//   - model.go: the Model contract (rule evaluator + transition function) and Stencil
//   - index.go: the event index, full build and incremental neighborhood rescan
//   - sampler.go: channel / waiting time / site draws
//   - simulator.go: the step loop, observers and snapshots
//
// # Architecture
//
// The sim package defines the Model interface; concrete channel sets live in
// sub-packages:
//   - sim/models/: pair, motor, tubulin and motubule models plus initial-lattice
//     presets
//   - sim/scenario/: YAML scenario files
//   - sim/trace/: step trace recording and summaries
//   - sim/replica/: concurrent independent replicas
//
// # Index invariant
//
// After every step the event index equals BuildIndex on the current lattice.
// RescanNeighborhood achieves this in time proportional to the rescan window,
// which is derived from the model's Stencil. Config.CheckConsistency turns the
// equality into a per-step assertion.
package sim
