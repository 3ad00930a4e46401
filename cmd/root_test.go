package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lattice-sim/lattice-sim/sim/models"
	"github.com/lattice-sim/lattice-sim/sim/replica"
	"github.com/lattice-sim/lattice-sim/sim/scenario"
	"github.com/lattice-sim/lattice-sim/sim/trace"
)

const pairScenario = `
seed: 42
model: {name: pair}
lattice: {rows: 20, cols: 1, periodic_rows: true}
rates: {attach: 1, detach: 0.5}
run: {max_steps: 100}
`

func testFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
	registerRunFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestApplyOverrides_OnlyChangedFlags(t *testing.T) {
	// GIVEN a scenario with seed 42 and a 100-step budget
	spec, err := scenario.ParseScenarioSpec([]byte(pairScenario))
	require.NoError(t, err)

	// WHEN only --max-time is passed
	applyOverrides(testFlags(t, "--max-time=5"), spec)

	// THEN the scenario seed and step budget survive the flag defaults
	assert.Equal(t, int64(42), spec.Seed)
	assert.Equal(t, int64(100), spec.Run.MaxSteps)
	assert.Equal(t, 5.0, spec.Run.MaxTime)
}

func TestApplyOverrides_SeedAndBudgets(t *testing.T) {
	spec, err := scenario.ParseScenarioSpec([]byte(pairScenario))
	require.NoError(t, err)

	applyOverrides(testFlags(t, "--seed=100", "--max-steps=7", "--check-consistency"), spec)

	assert.Equal(t, int64(100), spec.Seed)
	assert.Equal(t, int64(7), spec.Run.MaxSteps)
	assert.True(t, spec.Run.CheckConsistency)
}

func TestApplyOverrides_TracePathEnablesTracing(t *testing.T) {
	spec, err := scenario.ParseScenarioSpec([]byte(pairScenario))
	require.NoError(t, err)

	applyOverrides(testFlags(t, "--trace-path="+filepath.Join(t.TempDir(), "t.json")), spec)
	assert.Equal(t, string(trace.TraceLevelSteps), spec.Trace.Level)
}

func TestSeedOverride_DifferentSeeds_DifferentRuns(t *testing.T) {
	// GIVEN the same scenario run under two CLI seeds
	run := func(s int64) []replica.Result {
		spec, err := scenario.ParseScenarioSpec([]byte(pairScenario))
		require.NoError(t, err)
		spec.Seed = s // simulates Changed("seed") → spec.Seed = s
		spec.Trace.Level = string(trace.TraceLevelSteps)
		res, err := replica.Run(context.Background(), spec.Seed, spec.Build, replica.Options{Replicas: 1, Trace: spec.Trace.TraceConfig()})
		require.NoError(t, err)
		return res
	}

	// THEN the step sequences differ, and repeat exactly for the same seed
	assert.NotEqual(t, run(100)[0].Trace.Steps, run(200)[0].Trace.Steps)
	assert.Equal(t, run(100)[0].Trace.Steps, run(100)[0].Trace.Steps)
}

func TestResultsJSON_ContainsLatticeMetricsAndSummary(t *testing.T) {
	// GIVEN a traced two-replica run with flux on detach
	spec, err := scenario.ParseScenarioSpec([]byte(pairScenario))
	require.NoError(t, err)
	spec.Trace.Level = string(trace.TraceLevelSteps)
	require.NoError(t, spec.Validate())
	model, err := models.New("pair", nil)
	require.NoError(t, err)
	results, err := replica.Run(context.Background(), spec.Seed, spec.Build, replica.Options{Replicas: 2, Trace: spec.Trace.TraceConfig()})
	require.NoError(t, err)

	// WHEN the results are written
	out := buildOutput(spec, model, results, int(models.PairDetach))
	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, writeJSON(path, out))

	// THEN the file decodes with per-replica lattice, metrics and summary
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "pair", decoded["model"])
	reps := decoded["replicas"].([]any)
	require.Len(t, reps, 2)
	first := reps[0].(map[string]any)
	assert.Equal(t, "max-steps", first["stop_reason"])
	assert.Len(t, first["lattice"], 20)
	assert.Contains(t, first, "metrics")
	summary := first["trace_summary"].(map[string]any)
	assert.EqualValues(t, 100, summary["total_steps"])
	assert.EqualValues(t, models.PairDetach, summary["flux_channel"])
}

func TestTraceJSON_OneEntryPerReplica(t *testing.T) {
	spec, err := scenario.ParseScenarioSpec([]byte(pairScenario))
	require.NoError(t, err)
	results, err := replica.Run(context.Background(), spec.Seed, spec.Build,
		replica.Options{Replicas: 3, Trace: trace.TraceConfig{Level: trace.TraceLevelSteps}})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "trace.json")
	require.NoError(t, writeJSON(path, traceOutput(results)))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded []TraceOutput
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 3)
	assert.Len(t, decoded[2].Trace.Steps, 100)
	assert.Equal(t, results[2].Seed, decoded[2].Seed)
}

func TestPrintChannels(t *testing.T) {
	m, err := models.New("motor", nil)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, printChannels(&buf, m))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "CHANNEL")
	assert.Contains(t, lines[4], "detach-one-head")
}

func TestParseModelParams(t *testing.T) {
	params, err := parseModelParams(map[string]string{"direction": "-1"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"direction": -1}, params)

	_, err = parseModelParams(map[string]string{"direction": "left"})
	assert.Error(t, err)

	params, err = parseModelParams(nil)
	assert.NoError(t, err)
	assert.Nil(t, params)
}

func TestChannelsCommand(t *testing.T) {
	var buf bytes.Buffer
	channelsCmd.SetOut(&buf)
	t.Cleanup(func() { channelsCmd.SetOut(nil) })
	require.NoError(t, channelsCmd.RunE(channelsCmd, []string{"pair"}))
	assert.Contains(t, buf.String(), "attach")
	assert.Contains(t, buf.String(), "detach")

	assert.Error(t, channelsCmd.RunE(channelsCmd, []string{"ising"}))
}
