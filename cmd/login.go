package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	loginHost     string
	loginToken    string
	loginInsecure bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Save controller host and token to the config file",
	Long: `Save connection settings to the config file.

The token is an OAuth2 personal access token created on the controller
(Users -> Tokens). Verifies the credentials before saving.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if loginHost != "" {
			cfg.Host = loginHost
		}
		if loginToken != "" {
			cfg.Token = loginToken
		}
		if cmd.Flags().Changed("insecure") {
			cfg.Insecure = loginInsecure
		}

		client, err := newClient()
		if err != nil {
			return err
		}
		if err := client.Ping(cmd.Context()); err != nil {
			return fmt.Errorf("credential check failed: %w", err)
		}

		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Printf("Logged in to %s (config: %s)\n", cfg.Host, cfg.Path)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginHost, "host", "", "controller URL (e.g. https://awx.example.com)")
	loginCmd.Flags().StringVar(&loginToken, "token", "", "OAuth2 personal access token")
	loginCmd.Flags().BoolVarP(&loginInsecure, "insecure", "k", false, "skip TLS certificate verification")
	RootCmd.AddCommand(loginCmd)
}
