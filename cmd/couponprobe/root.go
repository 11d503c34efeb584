package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "couponprobe",
	Short: "Enumerate and probe candidate coupon codes against a target storefront",
	Long: "couponprobe expands code templates into a candidate space, probes each\n" +
		"candidate once through a headless browser under a concurrency and rate\n" +
		"budget, and persists progress so repeated runs never repeat work.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
