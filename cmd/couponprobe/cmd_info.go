package main

import (
	"math/big"
	"path/filepath"

	"github.com/spf13/cobra"

	"couponprobe/internal/config"
	"couponprobe/internal/generate"
	"couponprobe/internal/pattern"
)

var infoFlags struct {
	configPath string
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print pattern combinatorics and visited progress without probing",
	RunE:  runInfo,
}

func init() {
	infoCmd.Flags().StringVarP(&infoFlags.configPath, "config", "c", "couponprobe.yaml", "Path to run config (YAML or JSON)")
}

func runInfo(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromPath(infoFlags.configPath)
	if err != nil {
		return err
	}
	if details := cfg.NormalizeAndValidate(); len(details) > 0 {
		return configError(details)
	}

	visited, err := generate.OpenVisited(filepath.Join(cfg.DataDir, cfg.VisitedFile))
	if err != nil {
		return err
	}
	defer visited.Close()

	total := new(big.Int)
	for _, tmpl := range cfg.Patterns {
		p, err := pattern.Parse(tmpl)
		if err != nil {
			return err
		}
		cmd.Printf("Pattern %s\n", tmpl)
		cmd.Printf("  Length:          %d\n", p.Len())
		cmd.Printf("  Variable slots:  %d\n", p.VariableCount())
		cmd.Printf("  Combinations:    %s\n", p.Combinations().String())
		total.Add(total, p.Combinations())
	}

	remaining := new(big.Int).Sub(total, big.NewInt(int64(visited.Len())))
	cmd.Printf("\nTotal combinations:  %s\n", total.String())
	cmd.Printf("Visited:             %d\n", visited.Len())
	cmd.Printf("Remaining:           %s\n", remaining.String())
	return nil
}
