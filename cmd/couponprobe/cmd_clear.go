package main

import (
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"

	"couponprobe/internal/config"
	"couponprobe/internal/generate"
)

var clearFlags struct {
	configPath string
	yes        bool
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the visited-candidate history",
	Long: "Deletes the persisted visited set. Future runs will no longer skip\n" +
		"previously probed candidates, so duplicates become possible.",
	RunE: runClear,
}

func init() {
	clearCmd.Flags().StringVarP(&clearFlags.configPath, "config", "c", "couponprobe.yaml", "Path to run config (YAML or JSON)")
	clearCmd.Flags().BoolVar(&clearFlags.yes, "yes", false, "Confirm deletion")
}

func runClear(cmd *cobra.Command, args []string) error {
	if !clearFlags.yes {
		return errors.New("refusing to clear visited history without --yes")
	}

	cfg, err := config.LoadFromPath(clearFlags.configPath)
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

	n := visited.Len()
	if err := visited.Clear(); err != nil {
		return err
	}
	cmd.Printf("Cleared %d visited candidates\n", n)
	return nil
}
