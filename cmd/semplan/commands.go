package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kalambet/semplan/internal/api"
	"github.com/kalambet/semplan/internal/config"
	"github.com/kalambet/semplan/internal/export"
	"github.com/kalambet/semplan/internal/plan"
	"github.com/kalambet/semplan/internal/semapi"
)

// --- generate ---

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new campaign plan",
	Long: `Generate a new campaign plan on the running server.

Examples:
  semplan generate --brand https://acme.com --competitor https://rival.com \
    --seeds "running shoes, trail shoes" --locations Austin \
    --search-budget 500 --shopping-budget 300 --pmax-budget 200`,
	RunE: func(cmd *cobra.Command, args []string) error {
		form, err := formFromFlags(cmd)
		if err != nil {
			return err
		}
		if err := form.Validate(); err != nil {
			return err
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		printStep("Generating plan for %s...", form.BrandURL)
		s, err := generatePlan(cmd, client, form)
		if err != nil {
			return err
		}
		return writePlan(cmd, cmd.OutOrStdout(), s)
	},
}

func init() {
	f := generateCmd.Flags()
	f.String("brand", "", "brand website URL (required)")
	f.String("competitor", "", "competitor website URL (required)")
	f.String("seeds", "", "comma-separated seed keywords")
	f.String("locations", "", "comma-separated service locations")
	f.String("search-budget", "", "search campaign budget")
	f.String("shopping-budget", "", "shopping campaign budget")
	f.String("pmax-budget", "", "Performance Max budget")
	f.String("conversion-rate", plan.DefaultConversionRate, "conversion rate in percent")
	f.String("min-search-volume", plan.DefaultMinSearchVolume, "minimum monthly search volume")
	f.Bool("semantic-search", false, "include semantic search keyword ideas")
	f.Bool("ai-overviews", false, "include AI Overviews keyword ideas")
	f.Bool("json", false, "print the plan as JSON")
}

func formFromFlags(cmd *cobra.Command) (plan.FormInput, error) {
	f := cmd.Flags()
	form := plan.DefaultForm()
	fields := []struct {
		flag string
		dst  *string
	}{
		{"brand", &form.BrandURL},
		{"competitor", &form.CompetitorURL},
		{"seeds", &form.SeedKeywords},
		{"locations", &form.ServiceLocations},
		{"search-budget", &form.SearchBudget},
		{"shopping-budget", &form.ShoppingBudget},
		{"pmax-budget", &form.PMaxBudget},
		{"conversion-rate", &form.ConversionRate},
		{"min-search-volume", &form.MinSearchVolume},
	}
	for _, fl := range fields {
		v, err := f.GetString(fl.flag)
		if err != nil {
			return plan.FormInput{}, err
		}
		*fl.dst = v
	}
	form.IncludeSemanticSearch, _ = f.GetBool("semantic-search")
	form.IncludeAIOverviews, _ = f.GetBool("ai-overviews")
	return form, nil
}

func generatePlan(cmd *cobra.Command, client *apiClient, form plan.FormInput) (plan.Session, error) {
	resp, err := client.post(cmd.Context(), "/v1/plans", form)
	if err != nil {
		return plan.Session{}, err
	}
	var s plan.Session
	if err := decodeJSON(resp, &s); err != nil {
		return plan.Session{}, err
	}
	return s, nil
}

func writePlan(cmd *cobra.Command, w io.Writer, s plan.Session) error {
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}
	renderPlan(w, s)
	return nil
}

// --- show / save / load / reset ---

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/v1/plan")
		if err != nil {
			return err
		}
		var s plan.Session
		if err := decodeJSON(resp, &s); err != nil {
			return err
		}
		return writePlan(cmd, cmd.OutOrStdout(), s)
	},
}

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the current plan, replacing any previous save",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/v1/plan/save", nil)
		if err != nil {
			return err
		}
		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}
		printSuccess("Plan saved")
		return nil
	},
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Replace the current plan with the saved one",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/v1/plan/load", nil)
		if err != nil {
			return err
		}
		var s plan.Session
		if err := decodeJSON(resp, &s); err != nil {
			return err
		}
		printSuccess("Loaded plan with %d ad groups", len(s.AdGroups))
		return writePlan(cmd, cmd.OutOrStdout(), s)
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard the current plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/v1/plan/reset", nil)
		if err != nil {
			return err
		}
		var s plan.Session
		if err := decodeJSON(resp, &s); err != nil {
			return err
		}
		printSuccess("Plan reset")
		return nil
	},
}

func init() {
	showCmd.Flags().Bool("json", false, "print the plan as JSON")
	loadCmd.Flags().Bool("json", false, "print the plan as JSON")
}

// --- export ---

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the current plan as CSV or JSON",
	Long: `Export the current plan.

csv writes one row per keyword to ` + export.CSVFileName + `;
json writes the full plan to ` + export.JSONFileName + `.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		dir, _ := cmd.Flags().GetString("dir")

		path, name, err := exportTarget(format)
		if err != nil {
			return err
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), path)
		if err != nil {
			return err
		}
		data, err := readBody(resp)
		if err != nil {
			return err
		}

		out := filepath.Join(dir, name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("writing export: %w", err)
		}
		printSuccess("Plan exported to %s", out)
		return nil
	},
}

func exportTarget(format string) (path, name string, err error) {
	switch format {
	case "csv":
		return "/v1/plan/export.csv", export.CSVFileName, nil
	case "json":
		return "/v1/plan/export.json", export.JSONFileName, nil
	default:
		return "", "", fmt.Errorf("unknown format %q (want csv or json)", format)
	}
}

func init() {
	exportCmd.Flags().String("format", "csv", "export format: csv or json")
	exportCmd.Flags().String("dir", ".", "directory to write the export to")
}

// --- insights / shopping ---

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Show the most frequent keyword tokens in the current plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/v1/plan/insights")
		if err != nil {
			return err
		}
		var in api.InsightsResponse
		if err := decodeJSON(resp, &in); err != nil {
			return err
		}
		renderInsights(cmd.OutOrStdout(), in)
		return nil
	},
}

var shoppingCmd = &cobra.Command{
	Use:   "shopping",
	Short: "Show product-focused keywords for a Shopping campaign",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/v1/plan/shopping")
		if err != nil {
			return err
		}
		var sr api.ShoppingResponse
		if err := decodeJSON(resp, &sr); err != nil {
			return err
		}
		renderShopping(cmd.OutOrStdout(), sr.Groups)
		return nil
	},
}

// --- trends / optimize ---

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Show current search marketing trends",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/v1/trends")
		if err != nil {
			return err
		}
		var t semapi.Trends
		if err := decodeJSON(resp, &t); err != nil {
			return err
		}
		renderTrends(cmd.OutOrStdout(), t)
		return nil
	},
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Get campaign optimization suggestions for the current plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		targetROAS, _ := cmd.Flags().GetFloat64("target-roas")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/v1/plan/optimize", api.OptimizeRequest{TargetROAS: targetROAS})
		if err != nil {
			return err
		}
		var o semapi.Optimization
		if err := decodeJSON(resp, &o); err != nil {
			return err
		}
		renderOptimization(cmd.OutOrStdout(), o)
		return nil
	},
}

func init() {
	optimizeCmd.Flags().Float64("target-roas", 0, "target return on ad spend")
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a configuration value, restoring its default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.UnsetKey(args[0]); err != nil {
			return err
		}

		printSuccess("Unset %s", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
}
