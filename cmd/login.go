package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/shelfmark/internal/account"
)

var loginCmd = &cobra.Command{
	Use:   "login <email> <password>",
	Short: "Log in to an existing account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := a.accounts.Login(args[0], args[1])
		if err != nil {
			if errors.Is(err, account.ErrInvalidCredentials) {
				return errors.New("invalid email or password")
			}
			return fmt.Errorf("login failed: %w", err)
		}

		fmt.Printf("Logged in as %s\n", user.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out of the current account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		user, ok := a.accounts.Current()
		if !ok {
			fmt.Println("Not logged in.")
			return nil
		}
		if err := a.accounts.Logout(); err != nil {
			return fmt.Errorf("logout failed: %w", err)
		}

		fmt.Printf("Logged out %s\n", user.Email)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		user, ok := a.accounts.Current()
		if !ok {
			fmt.Println("Not logged in.")
			return nil
		}

		fmt.Printf("Logged in as %s (%s), %d bookmark(s)\n", user.Email, user.Country, len(user.Bookmarks))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)
}
