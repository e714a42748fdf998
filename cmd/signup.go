package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/shelfmark/internal/account"
	"github.com/user/shelfmark/internal/geo"
)

var signupCountry string

var signupCmd = &cobra.Command{
	Use:   "signup <email> <password>",
	Short: "Create a new account",
	Long:  "Create a local account and log in as it. Without --country the country is guessed from your IP.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		email, password := args[0], args[1]

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		country := signupCountry
		if country == "" {
			country = detectCountry(cmd.Context(), a)
		}

		user, err := a.accounts.Signup(email, password, country)
		if err != nil {
			var verr *account.ValidationError
			if errors.As(err, &verr) {
				return fmt.Errorf("invalid signup input (%v)", verr)
			}
			return fmt.Errorf("signup failed: %w", err)
		}

		fmt.Printf("Signed up and logged in as %s (%s)\n", user.Email, user.Country)
		return nil
	},
}

// detectCountry resolves a country name from the caller's IP. Failures
// just leave the country blank.
func detectCountry(ctx context.Context, a *app) string {
	gc := a.geoClient()
	code, err := gc.IPCountry(ctx)
	if err != nil {
		return ""
	}
	countries, err := gc.Countries(ctx)
	if err != nil {
		return ""
	}
	return geo.CountryByCode(countries, code)
}

func init() {
	signupCmd.Flags().StringVar(&signupCountry, "country", "", "Country of residence")
	rootCmd.AddCommand(signupCmd)
}
