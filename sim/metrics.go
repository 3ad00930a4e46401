// Tracks per-run counters such as channel firings and simulated end time.

package sim

import (
	"fmt"
	"io"
	"time"
)

// Metrics aggregates statistics about one simulation run for final reporting.
type Metrics struct {
	ChannelFires []int64       `json:"channel_fires"` // firings per channel id
	Steps        int64         `json:"steps"`
	SimEndedTime float64       `json:"sim_ended_time"`
	StopReason   StopReason    `json:"stop_reason"`
	WallTime     time.Duration `json:"wall_time_ns"`
}

// NewMetrics allocates counters for n channels.
func NewMetrics(n int) *Metrics {
	return &Metrics{ChannelFires: make([]int64, n)}
}

// Record counts one firing of c.
func (m *Metrics) Record(c ChannelID) {
	m.ChannelFires[c]++
}

// Finish stores the end-of-run values.
func (m *Metrics) Finish(clock float64, steps int64, reason StopReason, wall time.Duration) {
	m.SimEndedTime = clock
	m.Steps = steps
	m.StopReason = reason
	m.WallTime = wall
}

// Print writes a human-readable report. names labels channel ids; channels that
// never fired are omitted.
func (m *Metrics) Print(w io.Writer, names []string) {
	fmt.Fprintln(w, "=== Simulation Metrics ===")
	fmt.Fprintf(w, "Steps                : %d\n", m.Steps)
	fmt.Fprintf(w, "Simulated Time       : %.6g\n", m.SimEndedTime)
	fmt.Fprintf(w, "Stop Reason          : %s\n", m.StopReason)
	fmt.Fprintf(w, "Wall Time            : %s\n", m.WallTime.Round(time.Millisecond))
	if m.Steps > 0 {
		perStep := m.WallTime / time.Duration(m.Steps)
		fmt.Fprintf(w, "Wall Time per Step   : %s\n", perStep)
	}
	fmt.Fprintln(w, "--- Channel Firings ---")
	for c, n := range m.ChannelFires {
		if n == 0 {
			continue
		}
		name := fmt.Sprintf("channel_%d", c)
		if c < len(names) {
			name = names[c]
		}
		fmt.Fprintf(w, "%-28s : %d\n", name, n)
	}
}
