// Command layoutgen generates and validates floor-plan layouts from a
// YAML brief file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "layoutgen",
	Short: "Generate axis-aligned floor-plan layouts from a brief",
	Long: `layoutgen runs the floor-plan layout generation pipeline: topology
seeding, heuristic packing, local-search refinement, geometric repair,
scene lifting, rule validation, and candidate selection.

Use 'layoutgen generate' to produce a layout from a brief, and
'layoutgen validate' to evaluate an already-placed layout against the
rule catalog without running the full pipeline.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
