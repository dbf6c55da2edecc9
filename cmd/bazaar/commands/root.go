package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marshallshelly/bazaar/internal/config"
)

var (
	dbURL      string
	verbose    bool
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "bazaar",
	Short: "Bazaar - marketplace catalog backend",
	Long: `Bazaar serves a marketplace catalog: categories, products, ratings,
favorites and orders between buyers and sellers.

Settings come from BAZAAR_* environment variables. The --db and --verbose
flags override BAZAAR_DATABASE_URL and BAZAAR_LOG_LEVEL.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "Database connection URL (overrides BAZAAR_DATABASE_URL)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig() (*config.Config, error) {
	if dbURL != "" {
		if err := os.Setenv("BAZAAR_DATABASE_URL", dbURL); err != nil {
			return nil, err
		}
	}
	c, err := config.Load()
	if err != nil {
		return nil, err
	}
	if verbose {
		c.LogLevel = "debug"
	}
	return c, nil
}

// databaseURL returns --db or BAZAAR_DATABASE_URL.
func databaseURL() (string, error) {
	if dbURL != "" {
		return dbURL, nil
	}
	url, err := config.LoadDatabaseURL()
	if err != nil {
		return "", err
	}
	if url == "" {
		return "", fmt.Errorf("--db flag or BAZAAR_DATABASE_URL is required")
	}
	return url, nil
}
