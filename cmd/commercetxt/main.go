package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		code := 1
		var ee *exitError
		if errors.As(err, &ee) {
			code = ee.code
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(code)
	}
}

var rootCmd = &cobra.Command{
	Use:   "commercetxt [file]",
	Short: "Parse, validate, and resolve CommerceTXT documents",
	Long: `commercetxt parses a CommerceTXT document, validates it against the
protocol's rule set, merges any inherited commerce.txt ancestors found
in parent directories, and emits the result as a status line, JSON, or
a generated AI prompt.`,
	Args:          cobra.ExactArgs(1),
	RunE:          runParse,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().BoolVar(&flagJSON, "json", false, "emit the parsed result as JSON")
	rootCmd.Flags().BoolVar(&flagStrict, "strict", false, "enable strict mode (exit 1 on any error)")
	rootCmd.Flags().BoolVar(&flagPrompt, "prompt", false, "emit the generated AI prompt")
	rootCmd.Flags().StringVar(&flagGlob, "glob", "", "glob pattern (relative to the target file's directory) selecting sibling documents to batch into shard generation")
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "path to a YAML config file overriding resource limits and trusted review domains")
	rootCmd.AddCommand(shardsCmd)
}
