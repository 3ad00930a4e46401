package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/lattice-sim/lattice-sim/sim"
	"github.com/lattice-sim/lattice-sim/sim/models"
	"github.com/lattice-sim/lattice-sim/sim/replica"
	"github.com/lattice-sim/lattice-sim/sim/scenario"
	"github.com/lattice-sim/lattice-sim/sim/trace"
)

var (
	// CLI flags for the run command
	scenarioPath     string  // Scenario YAML file
	seed             int64   // Master seed; overrides the scenario seed when set
	maxSteps         int64   // Step budget; overrides run.max_steps when set
	maxTime          float64 // Simulated-time budget; overrides run.max_time when set
	logLevel         string  // Log verbosity level
	checkConsistency bool    // Rebuild and compare the event index after every step
	replicas         int     // Number of independent replicas
	parallelism      int     // Replicas run concurrently (0 = GOMAXPROCS)
	traceLevel       string  // Trace verbosity; overrides trace.level when set
	resultsPath      string  // File to save results JSON
	tracePath        string  // File to save the step trace JSON

	// CLI flags for the channels command
	modelParams map[string]string // Model parameters as key=value
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "lattice-sim",
	Short: "Kinetic Monte Carlo simulator for particles on a lattice",
}

// runCmd executes a scenario using parameters from the scenario file and CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a lattice scenario",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		if scenarioPath == "" {
			logrus.Fatalf("Scenario file not provided (--scenario). Exiting simulation.")
		}
		spec, err := scenario.LoadScenarioSpec(scenarioPath)
		if err != nil {
			logrus.Fatalf("Failed to load scenario: %v", err)
		}
		applyOverrides(cmd.Flags(), spec)
		if err := spec.Validate(); err != nil {
			logrus.Fatalf("Invalid scenario %s: %v", scenarioPath, err)
		}
		model, err := models.New(spec.Model.Name, spec.Model.Params)
		if err != nil {
			logrus.Fatalf("Invalid model: %v", err)
		}
		fluxChannel := -1
		if spec.Trace.FluxChannel != "" {
			c, ok := sim.ChannelByName(model, spec.Trace.FluxChannel)
			if !ok {
				logrus.Fatalf("Unknown flux channel %q for model %s", spec.Trace.FluxChannel, model.Name())
			}
			fluxChannel = int(c)
		}

		logrus.Infof("Running %d replica(s) of %s (model %s, seed %d)", replicas, scenarioPath, model.Name(), spec.Seed)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		results, err := replica.Run(ctx, spec.Seed, spec.Build, replica.Options{
			Replicas:    replicas,
			Parallelism: parallelism,
			Trace:       spec.Trace.TraceConfig(),
		})
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}

		out := buildOutput(spec, model, results, fluxChannel)
		for i, r := range results {
			if len(results) > 1 {
				logrus.Infof("--- replica %d (seed %d) ---", r.Replica, r.Seed)
			}
			r.Metrics.Print(os.Stdout, out.Channels)
			if s := out.Replicas[i].Summary; s != nil {
				logrus.Infof("Trace: %d steps recorded, dwell %.4g ± %.4g", s.TotalSteps, s.DwellMean, s.DwellStdDev)
			}
		}

		if resultsPath != "" {
			if err := writeJSON(resultsPath, out); err != nil {
				logrus.Fatalf("Failed to write results: %v", err)
			}
			logrus.Infof("Results written to %s", resultsPath)
		}
		if tracePath != "" {
			if err := writeJSON(tracePath, traceOutput(results)); err != nil {
				logrus.Fatalf("Failed to write trace: %v", err)
			}
			logrus.Infof("Trace written to %s", tracePath)
		}

		logrus.Info("Simulation complete.")
	},
}

// channelsCmd prints the channel ids of a model
var channelsCmd = &cobra.Command{
	Use:   "channels <model>",
	Short: "List the reaction channels of a model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := parseModelParams(modelParams)
		if err != nil {
			return err
		}
		model, err := models.New(args[0], params)
		if err != nil {
			return err
		}
		return printChannels(cmd.OutOrStdout(), model)
	},
}

// applyOverrides copies explicitly set flags onto the scenario. Flags left at
// their defaults never override scenario values.
func applyOverrides(flags *pflag.FlagSet, spec *scenario.ScenarioSpec) {
	if flags.Changed("seed") {
		spec.Seed = seed
	}
	if flags.Changed("max-steps") {
		spec.Run.MaxSteps = maxSteps
	}
	if flags.Changed("max-time") {
		spec.Run.MaxTime = maxTime
	}
	if flags.Changed("check-consistency") {
		spec.Run.CheckConsistency = checkConsistency
	}
	if flags.Changed("trace-level") {
		spec.Trace.Level = traceLevel
	}
	if tracePath != "" && (spec.Trace.Level == "" || spec.Trace.Level == string(trace.TraceLevelNone)) {
		logrus.Infof("--trace-path given; enabling step tracing")
		spec.Trace.Level = string(trace.TraceLevelSteps)
	}
}

// registerRunFlags binds the run command's flags to fs.
func registerRunFlags(fs *pflag.FlagSet) {
	fs.StringVar(&scenarioPath, "scenario", "", "Path to the scenario YAML file")
	fs.Int64Var(&seed, "seed", 42, "Master seed (overrides the scenario seed)")
	fs.Int64Var(&maxSteps, "max-steps", 0, "Stop after this many steps (0 = unlimited; overrides run.max_steps)")
	fs.Float64Var(&maxTime, "max-time", 0, "Stop once simulated time reaches this value (0 = unlimited; overrides run.max_time)")
	fs.StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	fs.BoolVar(&checkConsistency, "check-consistency", false, "Verify the event index against a full rebuild after every step (slow)")
	fs.IntVar(&replicas, "replicas", 1, "Number of independent replicas")
	fs.IntVar(&parallelism, "parallelism", 0, "Replicas run concurrently (0 = GOMAXPROCS)")
	fs.StringVar(&traceLevel, "trace-level", "none", "Trace verbosity (none, steps; overrides trace.level)")
	fs.StringVar(&resultsPath, "results-path", "", "File to save results JSON (final lattice, metrics, trace summary)")
	fs.StringVar(&tracePath, "trace-path", "", "File to save the step trace JSON (enables step tracing)")
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	registerRunFlags(runCmd.Flags())
	channelsCmd.Flags().StringToStringVar(&modelParams, "param", nil, "Model parameter as key=value (repeatable)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(channelsCmd)
}
