package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/archform/layoutgen/pkg/brief"
	"github.com/archform/layoutgen/pkg/pipeline"
)

var (
	genBriefPath    string
	genOutputPath   string
	genRulePaths    []string
	genTenantID     string
	genConsent      bool
	genSeedOverride uint64
	genVerbose      bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a floor-plan layout from a brief file",
	Example: `  layoutgen generate --brief house.yaml
  layoutgen generate --brief house.yaml --seed 12345 --output result.json
  layoutgen generate --brief house.yaml --rules catalog.json --tenant acme`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&genBriefPath, "brief", "", "Path to YAML brief file (required)")
	generateCmd.Flags().StringVar(&genOutputPath, "output", "", "Write the JSON response here instead of stdout")
	generateCmd.Flags().StringSliceVar(&genRulePaths, "rules", nil, "Rule catalog JSON file(s), tried in order; falls back to built-in defaults")
	generateCmd.Flags().StringVar(&genTenantID, "tenant", "", "Tenant ID recorded in governance.tenant_id")
	generateCmd.Flags().BoolVar(&genConsent, "consent-external", false, "Record governance.consent_external")
	generateCmd.Flags().Uint64Var(&genSeedOverride, "seed", 0, "Override the brief's seed (0 = use brief's own seed)")
	generateCmd.Flags().BoolVar(&genVerbose, "verbose", false, "Print progress and summary statistics")
	_ = generateCmd.MarkFlagRequired("brief")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	b, err := brief.LoadBriefFromFile(genBriefPath)
	if err != nil {
		return fmt.Errorf("loading brief: %w", err)
	}
	if genSeedOverride != 0 {
		b.Seed = genSeedOverride
	}

	if genVerbose {
		fmt.Fprintf(os.Stderr, "Generating layout for %d room(s), envelope %dx%d, seed %d\n", len(b.Rooms), b.W, b.H, b.Seed)
	}

	opts := pipeline.Options{
		RuleCatalogPaths: genRulePaths,
		TenantID:         genTenantID,
		ConsentExternal:  genConsent,
	}

	start := time.Now()
	resp, err := pipeline.Generate(context.Background(), b, opts)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}
	elapsed := time.Since(start)

	if genVerbose {
		fmt.Fprintf(os.Stderr, "Placed %d room(s), dropped %d, compliant=%v, cost.total=%.3f (%v)\n",
			len(resp.Layout.Rooms), len(resp.Layout.Dropped), resp.Validation.Compliant, resp.Cost.Total, elapsed)
	}

	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding response: %w", err)
	}

	if genOutputPath == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(genOutputPath, data, 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if genVerbose {
		fmt.Fprintf(os.Stderr, "Wrote %d bytes to %s\n", len(data), genOutputPath)
	}
	return nil
}
