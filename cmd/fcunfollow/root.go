package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fcunfollow",
	Short: "Farcaster unfollow recommendation service",
	Long: `fcunfollow analyzes a Farcaster user's following list via the Neynar
API and recommends accounts to unfollow based on inactivity and spam
signals.

Features:
  - Scans following lists with batched profile hydration
  - Ranks unfollow recommendations by inactivity
  - Per-client rate limiting on scans
  - Secure Neynar credential storage using the system keychain
  - Farcaster frame embed metadata

Run 'fcunfollow serve' to start the HTTP API.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is $HOME/.fcunfollow.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.SetVersionTemplate(`fcunfollow {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)
}

// globalFlags collects the persistent flags that were explicitly set
func globalFlags() map[string]interface{} {
	flags := make(map[string]interface{})
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	return flags
}
