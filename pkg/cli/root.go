package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// jsonOutput switches command results to JSON.
	jsonOutput bool

	// Version is injected during build.
	Version = "dev"
	// Commit is injected during build.
	Commit = "none"
	// BuildDate is injected during build.
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "visid",
	Short: "visid assigns consent-gated visitor identifiers",
	Long: `visid is a visitor identification service. It assigns each visitor a
pseudo-random 16-character identifier in a cookie, but only when the
consent management platform's performance category (C0002) has been
granted; withdrawing consent evicts the identifier again.

Configuration can be provided via flags or a YAML/JSON configuration file.`,
	SilenceUsage:  true,
	SilenceErrors: true, // errors are printed once, in Execute
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
}
