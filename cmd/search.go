package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/shelfmark/internal/catalog"
)

var (
	jsonOutput      bool
	plaintextOutput bool
	searchPages     int
	searchSort      string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the book catalog by title",
	Long:  "Search the Open Library catalog by title substring, optionally fetching several pages and sorting the combined results.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		searcher := catalog.NewSearcher(a.catalogClient(), a.cfg.Catalog.PageSize)

		var books []catalog.Book
		for i := 0; i < searchPages; i++ {
			page, err := searcher.Fetch(cmd.Context(), query, false)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			if len(page) == len(books) {
				break // no more results
			}
			books = page
		}

		switch searchSort {
		case "":
		case "title":
			searcher.SortByTitle()
		case "rating":
			searcher.SortByRating()
		case "hits":
			searcher.SortByHits()
		default:
			return fmt.Errorf("unknown sort key %q (want title, rating or hits)", searchSort)
		}
		books = searcher.Books()

		if jsonOutput {
			return outputJSON(books)
		}
		if plaintextOutput {
			return outputPlaintext(books)
		}
		return outputDefault(a, books)
	},
}

func outputJSON(books []catalog.Book) error {
	data, err := json.MarshalIndent(books, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func outputPlaintext(books []catalog.Book) error {
	for _, b := range books {
		fmt.Printf("%s\t%s\t%.2f\t%d\n", b.ID, b.Title, b.RatingAverage, b.RatingCount)
	}
	return nil
}

func outputDefault(a *app, books []catalog.Book) error {
	if len(books) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	client := a.catalogClient()
	for i, b := range books {
		fmt.Printf("%d. %s\n   %s\n", i+1, b.Title, client.BookURL(b.ID))
		if b.RatingCount > 0 {
			fmt.Printf("   rating %.2f (%d ratings)\n", b.RatingAverage, b.RatingCount)
		}
		if cover := client.CoverURL(b.CoverID, "M"); cover != "" {
			fmt.Printf("   cover %s\n", cover)
		}
		fmt.Println()
	}
	return nil
}

func init() {
	searchCmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	searchCmd.Flags().BoolVarP(&plaintextOutput, "plaintext", "p", false, "Output as plaintext")
	searchCmd.Flags().IntVar(&searchPages, "pages", 1, "Number of result pages to fetch")
	searchCmd.Flags().StringVar(&searchSort, "sort", "", "Sort combined results: title, rating or hits")
	rootCmd.AddCommand(searchCmd)
}
