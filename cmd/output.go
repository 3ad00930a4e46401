package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/lattice-sim/lattice-sim/sim"
	"github.com/lattice-sim/lattice-sim/sim/replica"
	"github.com/lattice-sim/lattice-sim/sim/scenario"
	"github.com/lattice-sim/lattice-sim/sim/trace"
)

// RunOutput is the results file written by --results-path.
type RunOutput struct {
	Scenario   string          `json:"scenario"`
	MasterSeed int64           `json:"master_seed"`
	Model      string          `json:"model"`
	Channels   []string        `json:"channels"`
	Rows       int             `json:"rows"`
	Cols       int             `json:"cols"`
	Replicas   []ReplicaOutput `json:"replicas"`
}

// ReplicaOutput is one replica's entry in RunOutput.
type ReplicaOutput struct {
	replica.Result
	Time    float64             `json:"time"`
	Steps   int64               `json:"steps"`
	Lattice [][]sim.State       `json:"lattice"`
	Summary *trace.TraceSummary `json:"trace_summary,omitempty"`
}

// TraceOutput is one replica's entry in the --trace-path file.
type TraceOutput struct {
	Replica int                    `json:"replica"`
	Seed    int64                  `json:"seed"`
	Trace   *trace.SimulationTrace `json:"trace"`
}

func buildOutput(spec *scenario.ScenarioSpec, model sim.Model, results []replica.Result, fluxChannel int) RunOutput {
	out := RunOutput{
		Scenario:   scenarioPath,
		MasterSeed: spec.Seed,
		Model:      model.Name(),
		Channels:   model.Channels(),
	}
	for _, r := range results {
		ro := ReplicaOutput{
			Result:  r,
			Time:    r.Final.Time,
			Steps:   r.Final.Steps,
			Lattice: r.Final.Lattice.Grid(),
		}
		if r.Trace.Enabled() {
			ro.Summary = trace.Summarize(r.Trace, fluxChannel)
		}
		out.Rows, out.Cols = r.Final.Lattice.Rows(), r.Final.Lattice.Cols()
		out.Replicas = append(out.Replicas, ro)
	}
	return out
}

func traceOutput(results []replica.Result) []TraceOutput {
	out := make([]TraceOutput, len(results))
	for i, r := range results {
		out[i] = TraceOutput{Replica: r.Replica, Seed: r.Seed, Trace: r.Trace}
	}
	return out
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func parseModelParams(raw map[string]string) (map[string]float64, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	params := make(map[string]float64, len(raw))
	for k, v := range raw {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("parameter %s=%q is not a number", k, v)
		}
		params[k] = f
	}
	return params, nil
}

func printChannels(w io.Writer, model sim.Model) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tCHANNEL\n")
	for id, name := range model.Channels() {
		fmt.Fprintf(tw, "%d\t%s\n", id, name)
	}
	return tw.Flush()
}
