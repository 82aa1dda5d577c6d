package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/getvisid/visid/internal/id"
)

var genCount int

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate visitor identifiers on stdout",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if genCount < 1 {
			return fmt.Errorf("count must be at least 1, got %d", genCount)
		}
		ids := make([]string, genCount)
		for i := range ids {
			ids[i] = id.New()
		}
		if jsonOutput {
			data, _ := json.MarshalIndent(ids, "", "  ")
			fmt.Println(string(data))
			return nil
		}
		for _, v := range ids {
			fmt.Println(v)
		}
		return nil
	},
}

var decodeCmd = &cobra.Command{
	Use:   "decode <identifier>",
	Short: "Show the generation timestamp inside a visitor identifier",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ts, err := id.Time(args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			data, _ := json.MarshalIndent(map[string]string{
				"identifier":  args[0],
				"generatedAt": ts.UTC().Format(time.RFC3339Nano),
			}, "", "  ")
			fmt.Println(string(data))
			return nil
		}
		fmt.Println(ts.UTC().Format(time.RFC3339Nano))
		return nil
	},
}

func init() {
	genCmd.Flags().IntVarP(&genCount, "count", "n", 1, "Number of identifiers to generate")
	rootCmd.AddCommand(genCmd)
	rootCmd.AddCommand(decodeCmd)
}
