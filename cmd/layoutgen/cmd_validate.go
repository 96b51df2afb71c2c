package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/archform/layoutgen/pkg/brief"
	"github.com/archform/layoutgen/pkg/layout"
	"github.com/archform/layoutgen/pkg/rules"
	"github.com/archform/layoutgen/pkg/scene"
)

var (
	valBriefPath  string
	valLayoutPath string
	valRulePaths  []string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Evaluate an already-placed layout against the rule catalog",
	Long: `validate lifts an existing room layout into a scene and runs the rule
validator (S9) against it, without running topology seeding, packing,
refinement, repair, or the critic. Useful for checking a layout edited by
hand or produced by an earlier generate run.`,
	Example: `  layoutgen validate --brief house.yaml --layout house.rooms.json`,
	RunE:    runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&valBriefPath, "brief", "", "Path to YAML brief file (required)")
	validateCmd.Flags().StringVar(&valLayoutPath, "layout", "", "Path to a JSON array of placed rooms (required)")
	validateCmd.Flags().StringSliceVar(&valRulePaths, "rules", nil, "Rule catalog JSON file(s), tried in order; falls back to built-in defaults")
	_ = validateCmd.MarkFlagRequired("brief")
	_ = validateCmd.MarkFlagRequired("layout")
}

func runValidate(cmd *cobra.Command, args []string) error {
	b, err := brief.LoadBriefFromFile(valBriefPath)
	if err != nil {
		return fmt.Errorf("loading brief: %w", err)
	}

	layoutData, err := os.ReadFile(valLayoutPath)
	if err != nil {
		return fmt.Errorf("reading layout file: %w", err)
	}
	var rooms []layout.PlacedRoom
	if err := json.Unmarshal(layoutData, &rooms); err != nil {
		return fmt.Errorf("parsing layout JSON: %w", err)
	}

	result := layout.NewResult()
	for _, r := range rooms {
		result.Upsert(r)
	}

	catalog := rules.LoadCatalog(valRulePaths)
	bld := scene.Lift(b, result)
	violations := rules.Evaluate(catalog, b, bld, result)

	out := struct {
		Compliant  bool     `json:"compliant"`
		Violations []string `json:"violations"`
	}{
		Compliant:  rules.Compliant(violations),
		Violations: make([]string, len(violations)),
	}
	for i, v := range violations {
		out.Violations[i] = v.String()
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	fmt.Println(string(data))

	if !out.Compliant {
		cmd.SilenceUsage = true
		return fmt.Errorf("layout is not compliant")
	}
	return nil
}
