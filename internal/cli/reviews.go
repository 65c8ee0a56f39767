package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/martijn/moviereview/internal/core/domain"
	"github.com/spf13/cobra"
)

var reviewsCmd = &cobra.Command{
	Use:   "reviews",
	Short: "Manage reviews",
}

var reviewsListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List reviews, optionally filtered by a search query",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := initServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		var reviews []*domain.Review
		if len(args) == 1 {
			reviews, err = services.ReviewService.Search(cmd.Context(), args[0])
		} else {
			reviews, err = services.ReviewService.List(cmd.Context())
		}
		if err != nil {
			return fmt.Errorf("failed to list reviews: %w", err)
		}

		if len(reviews) == 0 {
			fmt.Println("No reviews found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tYEAR\tRATING\tAUTHOR")
		for _, r := range reviews {
			author := r.Author
			if author == "" {
				author = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%d/10\t%s\n", r.ID, r.MovieTitle, r.YearReleased, r.UserRating, author)
		}
		w.Flush()

		return nil
	},
}

var reviewsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a review regardless of its author",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]

		if !confirm(fmt.Sprintf("Are you sure you want to delete review '%s'? (yes/no): ", id)) {
			fmt.Println("Cancelled")
			return nil
		}

		services, err := initServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		// Administrative delete, bypasses the ownership check
		if err := services.ReviewRepo.Delete(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to delete review: %w", err)
		}

		fmt.Printf("Review '%s' deleted\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reviewsCmd)
	reviewsCmd.AddCommand(reviewsListCmd)
	reviewsCmd.AddCommand(reviewsDeleteCmd)

	reviewsDeleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")
}
