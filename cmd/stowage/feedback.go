package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func feedbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Inspect stored user feedback",
	}
	cmd.AddCommand(feedbackListCmd())
	return cmd
}

func feedbackListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent feedback entries",
		Long: `Print the most recent feedback entries, newest first.

Example:
  stowage feedback list --limit 50`,
		RunE: runFeedbackList,
	}

	cmd.Flags().IntP("limit", "n", 20, "maximum entries to show")
	_ = viper.BindPFlag("feedback.limit", cmd.Flags().Lookup("limit"))

	return cmd
}

func runFeedbackList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStore()
	if err != nil {
		return err
	}
	defer closeStore(store)

	limit := viper.GetInt("feedback.limit")
	if limit < 1 {
		limit = 20
	}

	entries, err := store.RecentFeedback(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to load feedback: %w", err)
	}
	if len(entries) == 0 {
		cmd.Println("No feedback recorded yet.")
		return nil
	}

	total, err := store.FeedbackCount(ctx)
	if err != nil {
		return fmt.Errorf("failed to count feedback: %w", err)
	}

	for _, entry := range entries {
		verdict := "incorrect"
		if entry.IsCorrect {
			verdict = "correct"
		}
		cmd.Printf("%s  %-9s  %-9s  %s\n",
			entry.Timestamp.Format("2006-01-02 15:04"),
			entry.Classification,
			verdict,
			truncate(entry.Description, 60))
	}
	cmd.Printf("\nShowing %d of %d entries\n", len(entries), total)
	return nil
}
