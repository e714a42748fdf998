package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/shelfmark/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:   "shelfmark",
	Short: "Book search and bookmarking TUI",
	Long:  "Search the Open Library catalog, keep per-account bookmark lists, and browse them in a TUI.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		return tui.Run(a.cfg, a.logger, a.accounts, a.marks)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("data-dir", "", "Data directory (default: ~/.shelfmark)")
}
