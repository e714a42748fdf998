package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/shelfmark/internal/bookmarks"
	"github.com/user/shelfmark/internal/store"
)

var (
	addTitle  string
	addRating float64
	addHits   int
	addCover  string
)

var bookmarksCmd = &cobra.Command{
	Use:   "bookmarks",
	Short: "Manage the current account's bookmarks",
}

var bookmarksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved bookmarks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		list, err := a.marks.List()
		if err != nil {
			return bookmarkErr(err)
		}
		if len(list) == 0 {
			fmt.Println("No bookmarks saved.")
			return nil
		}
		client := a.catalogClient()
		for i, b := range list {
			fmt.Printf("%d. %s (%s)\n   rating %.2f (%d ratings)\n", i+1, b.Title, b.ID, b.RatingAverage, b.RatingCount)
			if cover := client.CoverURL(b.CoverID, "M"); cover != "" {
				fmt.Printf("   cover %s\n", cover)
			}
		}
		return nil
	},
}

var bookmarksAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Save a book by its catalog id",
	Long:  "Save a book from search output by its catalog id (e.g. /works/OL45883W), with the metadata passed via flags.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		b := store.Bookmark{
			ID:            args[0],
			Title:         addTitle,
			RatingAverage: addRating,
			RatingCount:   addHits,
			CoverID:       addCover,
		}
		if err := a.marks.Add(b); err != nil {
			return bookmarkErr(err)
		}

		fmt.Printf("Bookmarked %s\n", args[0])
		return nil
	},
}

var bookmarksRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a saved bookmark by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		removed, err := a.marks.RemoveByID(args[0])
		if err != nil {
			return bookmarkErr(err)
		}
		if !removed {
			fmt.Printf("No bookmark with id %s\n", args[0])
			return nil
		}

		fmt.Printf("Removed %s\n", args[0])
		return nil
	},
}

func bookmarkErr(err error) error {
	if errors.Is(err, bookmarks.ErrNoSession) {
		return errors.New("not logged in (run 'shelfmark login' first)")
	}
	return err
}

func init() {
	bookmarksAddCmd.Flags().StringVar(&addTitle, "title", "", "Book title")
	bookmarksAddCmd.Flags().Float64Var(&addRating, "rating", 0, "Average rating")
	bookmarksAddCmd.Flags().IntVar(&addHits, "hits", 0, "Rating count")
	bookmarksAddCmd.Flags().StringVar(&addCover, "cover", "", "Cover id")

	bookmarksCmd.AddCommand(bookmarksListCmd)
	bookmarksCmd.AddCommand(bookmarksAddCmd)
	bookmarksCmd.AddCommand(bookmarksRemoveCmd)
	rootCmd.AddCommand(bookmarksCmd)
}
