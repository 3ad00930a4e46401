package trace

import "gonum.org/v1/gonum/stat"

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalSteps    int         `json:"total_steps"`
	ChannelCounts map[int]int `json:"channel_counts"` // channel id → firings
	UniqueSites   int         `json:"unique_sites"`   // distinct sites that fired at least once
	DwellMean     float64     `json:"dwell_mean"`
	DwellStdDev   float64     `json:"dwell_std_dev"`
	EndTime       float64     `json:"end_time"`
	FluxChannel   int         `json:"flux_channel"`
	FluxByRow     map[int]int `json:"flux_by_row,omitempty"` // row → firings of FluxChannel
}

// Summarize computes aggregate statistics from a SimulationTrace. fluxChannel
// selects the channel whose firings are binned per row; a negative value
// disables flux counting. Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace, fluxChannel int) *TraceSummary {
	summary := &TraceSummary{
		ChannelCounts: make(map[int]int),
		FluxChannel:   fluxChannel,
	}
	if fluxChannel >= 0 {
		summary.FluxByRow = make(map[int]int)
	}
	if st == nil || len(st.Steps) == 0 {
		return summary
	}

	type site struct{ row, col int }
	sites := make(map[site]bool)
	dwells := make([]float64, len(st.Steps))
	for i, r := range st.Steps {
		summary.ChannelCounts[r.Channel]++
		sites[site{r.Row, r.Col}] = true
		dwells[i] = r.Dwell
		if r.Channel == fluxChannel {
			summary.FluxByRow[r.Row]++
		}
	}
	summary.TotalSteps = len(st.Steps)
	summary.UniqueSites = len(sites)
	summary.EndTime = st.Steps[len(st.Steps)-1].Time
	if len(dwells) > 1 {
		summary.DwellMean, summary.DwellStdDev = stat.MeanStdDev(dwells, nil)
	} else {
		summary.DwellMean = dwells[0]
	}
	return summary
}
