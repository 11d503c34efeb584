package main

import (
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"couponprobe/internal/config"
	"couponprobe/internal/domain"
	"couponprobe/internal/generate"
	"couponprobe/internal/logging"
	"couponprobe/internal/orchestrator"
	"couponprobe/internal/pattern"
	"couponprobe/internal/probe"
	"couponprobe/internal/sink"
)

var runFlags struct {
	configPath string
	strategy   string
	workers    int
	rate       float64
	logLevel   string
	logFormat  string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the probe loop until exhaustion or interrupt",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runFlags.configPath, "config", "c", "couponprobe.yaml", "Path to run config (YAML or JSON)")
	runCmd.Flags().StringVar(&runFlags.strategy, "strategy", "", "Override enumeration strategy (random|odometer)")
	runCmd.Flags().IntVar(&runFlags.workers, "workers", 0, "Override worker count")
	runCmd.Flags().Float64Var(&runFlags.rate, "rate", -1, "Override target probes/second (0 = unlimited)")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	runCmd.Flags().StringVar(&runFlags.logFormat, "log-format", "text", "Log format (text|json)")
}

func runRun(cmd *cobra.Command, args []string) error {
	logging.Init(logging.ParseLevel(runFlags.logLevel), runFlags.logFormat)

	cfg, err := config.LoadFromPath(runFlags.configPath)
	if err != nil {
		return err
	}
	if runFlags.strategy != "" {
		cfg.Strategy = runFlags.strategy
	}
	if runFlags.workers > 0 {
		cfg.Workers = runFlags.workers
	}
	if runFlags.rate >= 0 {
		cfg.Rate = runFlags.rate
	}
	if details := cfg.NormalizeAndValidate(); len(details) > 0 {
		return configError(details)
	}

	patterns, err := parsePatterns(cfg.Patterns)
	if err != nil {
		return err
	}

	visited, err := generate.OpenVisited(filepath.Join(cfg.DataDir, cfg.VisitedFile))
	if err != nil {
		return err
	}
	defer visited.Close()

	var enum domain.Enumerator
	switch cfg.Strategy {
	case config.StrategyOdometer:
		enum = generate.NewOdometer(patterns[0], visited)
	default:
		enum, err = generate.NewRandom(patterns, visited)
		if err != nil {
			return err
		}
	}

	rec, err := sink.OpenRecorder(cfg.DataDir, sink.Paths{
		TestedFile:  cfg.TestedFile,
		SuccessFile: cfg.SuccessFile,
		MetaFile:    cfg.MetaFile,
		ShotsDir:    cfg.ShotsDir,
	})
	if err != nil {
		return err
	}
	defer rec.Close()

	total := totalCombinations(patterns)

	browserCfg := probe.BrowserConfig{
		Headless:   cfg.Headless,
		NavTimeout: time.Duration(cfg.NavTimeoutMs) * time.Millisecond,
		UserAgent:  cfg.UserAgent,
		Indicators: cfg.Indicators,
	}
	factory := func() domain.ProbeExecutor { return probe.NewBrowser(browserCfg) }

	o := orchestrator.New(orchestrator.Config{
		Workers:       cfg.Workers,
		Rate:          cfg.Rate,
		BatchCap:      cfg.BatchCap,
		StrictRate:    cfg.StrictRate,
		URLTemplate:   cfg.TargetURL,
		SettleDelay:   time.Duration(cfg.SettleMs) * time.Millisecond,
		DrainTimeout:  time.Duration(cfg.DrainTimeoutMs) * time.Millisecond,
		ProgressEvery: cfg.ProgressEvery,
		Screenshots:   cfg.Screenshots,
		Meta: domain.RunMeta{
			ID:                domain.NewRunID(),
			Patterns:          cfg.Patterns,
			Strategy:          cfg.Strategy,
			Workers:           cfg.Workers,
			Rate:              cfg.Rate,
			TotalCombinations: total.String(),
		},
	}, enum, factory, rec)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	snap, err := o.Run(ctx)
	if err != nil {
		return err
	}

	printSummary(cmd, snap, total, visited.Len())
	return nil
}

func parsePatterns(templates []string) ([]*pattern.Pattern, error) {
	out := make([]*pattern.Pattern, 0, len(templates))
	for _, tmpl := range templates {
		p, err := pattern.Parse(tmpl)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", tmpl, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func totalCombinations(patterns []*pattern.Pattern) *big.Int {
	total := new(big.Int)
	for _, p := range patterns {
		total.Add(total, p.Combinations())
	}
	return total
}

func printSummary(cmd *cobra.Command, snap domain.CountersSnapshot, total *big.Int, visited int) {
	remaining := new(big.Int).Sub(total, big.NewInt(int64(visited)))

	cmd.Printf("\nSession summary:\n")
	cmd.Printf("  Tested this run:     %d\n", snap.Tested)
	cmd.Printf("  Successes:           %d\n", snap.Successes)
	cmd.Printf("  Probe errors:        %d\n", snap.Errors)
	if snap.LastTested != "" {
		cmd.Printf("  Last tested:         %s\n", snap.LastTested)
	}
	cmd.Printf("  Total combinations:  %s\n", total.String())
	cmd.Printf("  Visited overall:     %d\n", visited)
	cmd.Printf("  Remaining:           %s\n", remaining.String())
}

func configError(details map[string]string) error {
	msg := "invalid config:"
	for field, problem := range details {
		msg += fmt.Sprintf("\n  %s: %s", field, problem)
	}
	return fmt.Errorf("%s", msg)
}
