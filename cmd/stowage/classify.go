package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stowage-labs/stowage/internal/model"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <description>",
		Short: "Classify one product description",
		Long: `Classify a product description into a container category and print the
result.

Examples:
  stowage classify "Segway Ninebot ES1 electric scooter"
  stowage classify "small box 10x8x4 inches, 5 lbs" --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: runClassify,
	}

	cmd.Flags().Bool("json", false, "print the full result as JSON")
	_ = viper.BindPFlag("classify.json", cmd.Flags().Lookup("json"))

	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	description := strings.TrimSpace(strings.Join(args, " "))
	if description == "" {
		return fmt.Errorf("description must not be empty")
	}

	store, err := initStore()
	if err != nil {
		return err
	}
	defer closeStore(store)

	classifier, err := buildClassifier(store)
	if err != nil {
		return err
	}

	result, err := classifier.Classify(ctx, description)
	if err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}

	if viper.GetBool("classify.json") {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		cmd.Println(string(out))
		return nil
	}

	cmd.Printf("Classification: %s (%s)\n", result.Classification, result.Classification.DisplayName())
	cmd.Printf("Confidence:     %d%%\n", result.Confidence)
	cmd.Printf("Reasoning:      %s\n", result.Reasoning)

	cmd.Println("Tools:")
	printTool(cmd, "lookup_known_product", result.ToolsUsed.LookupKnownProduct)
	printTool(cmd, "extract_explicit_dimensions", result.ToolsUsed.ExtractExplicitDimensions)

	return nil
}

func printTool(cmd *cobra.Command, name string, inv model.ToolInvocation) {
	if inv.Called {
		cmd.Printf("  %s: called (%s)\n", name, inv.Result)
	} else {
		cmd.Printf("  %s: not called (%s)\n", name, inv.Reason)
	}
}
