// Package cmd implements the stromctl commands.
package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	apiKey    string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:          "stromctl",
	Short:        "Client for the strom streaming service",
	Long:         "stromctl opens streams on a strom server and prints chunks as they arrive.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", envOr("STROM_SERVER", "http://localhost:8000"), "server base URL")
	rootCmd.PersistentFlags().StringVarP(&apiKey, "api-key", "k", envOr("STROM_API_KEY", ""), "API key sent as X-API-Key")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print response metadata to stderr")

	rootCmd.AddCommand(streamCmd)
	rootCmd.AddCommand(healthCmd)
}

// SetVersion sets the version shown by --version.
func SetVersion(version string) {
	rootCmd.Version = version
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newClient() *client {
	return &client{
		baseURL: strings.TrimRight(serverURL, "/"),
		apiKey:  apiKey,
	}
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
