package cli

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print visid version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if jsonOutput {
			data, _ := json.MarshalIndent(map[string]string{
				"version":   Version,
				"commit":    Commit,
				"buildDate": BuildDate,
				"goVersion": runtime.Version(),
			}, "", "  ")
			fmt.Println(string(data))
			return
		}
		fmt.Printf("visid %s (commit %s, built %s, %s)\n", Version, Commit, BuildDate, runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
