package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/doctriage/doctriage/internal/config"
	"github.com/doctriage/doctriage/internal/database"
	"github.com/doctriage/doctriage/internal/review"
)

var reviewStatus string

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Inspect the manual review queue",
}

var reviewListCmd = &cobra.Command{
	Use:   "list",
	Short: "List queued review items",
	RunE:  runReviewList,
}

var reviewResolveCmd = &cobra.Command{
	Use:   "resolve <id>",
	Short: "Mark a review item as resolved",
	Args:  cobra.ExactArgs(1),
	RunE:  runReviewResolve,
}

func init() {
	reviewListCmd.Flags().StringVar(&reviewStatus, "status", "", "Filter by status (pending, resolved)")
	reviewCmd.AddCommand(reviewListCmd)
	reviewCmd.AddCommand(reviewResolveCmd)
}

// openReviewDB connects to the configured database. The review queue only
// outlives a process when persistence is configured.
func openReviewDB(cmd *cobra.Command) (*database.DB, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("review queue requires database_url (or DATABASE_URL) to be configured")
	}
	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return database.New(cmd.Context(), cfg.DatabaseURL)
}

func runReviewList(cmd *cobra.Command, args []string) error {
	db, err := openReviewDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	params := database.ListReviewItemsParams{}
	if reviewStatus != "" {
		status := review.Status(reviewStatus)
		if status != review.StatusPending && status != review.StatusResolved {
			return fmt.Errorf("status must be 'pending' or 'resolved'")
		}
		params.Status = &status
	}

	items, err := db.ListReviewItems(cmd.Context(), params)
	if err != nil {
		return fmt.Errorf("list review items: %w", err)
	}
	if len(items) == 0 {
		fmt.Println("Review queue is empty.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFILE\tCATEGORY\tCONFIDENCE\tSTATUS\tQUEUED")
	for _, item := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\t%s\n",
			item.ID, item.FileID, item.Category, item.Confidence,
			item.Status, item.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func runReviewResolve(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid review item ID: %s", args[0])
	}

	db, err := openReviewDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	ok, err := db.UpdateReviewItemStatus(cmd.Context(), id, review.StatusResolved)
	if err != nil {
		return fmt.Errorf("update review item: %w", err)
	}
	if !ok {
		return fmt.Errorf("review item not found: %s", id)
	}
	fmt.Printf("Resolved %s\n", id)
	return nil
}
