// Package trace provides step-trace recording for post-run analysis of a
// lattice simulation. This package has no dependencies on sim/; it stores
// pure data types.
package trace

// StepRecord captures a single fired transition.
type StepRecord struct {
	Step    int64   `json:"step"`
	Channel int     `json:"channel"`
	Row     int     `json:"row"`
	Col     int     `json:"col"`
	Dwell   float64 `json:"dwell"` // waiting time drawn for this step
	Time    float64 `json:"time"`  // simulated time after the step
}
