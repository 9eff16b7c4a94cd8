package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/opticshield/opticshield/internal/config"
)

var configSetURLCmd = &cobra.Command{
	Use:   "config:set-url <url>",
	Short: "Point the config file at another registry",
	Long: `Set base_url in the config file, keeping every other setting and comment,
and print the lines that changed.

A running UI with auto_reload enabled switches to the new registry.

Examples:
  opticshield config:set-url http://registry.local:5000
  opticshield -c ./dev.yaml config:set-url http://localhost:5000`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFilePath()
		before, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("reading config: %w", err)
		}
		if err := config.SaveBaseURL(path, strings.TrimRight(args[0], "/")); err != nil {
			return err
		}
		after, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", path)
		writeLineDiff(cmd.OutOrStdout(), string(before), string(after))
		return nil
	},
}

// writeLineDiff prints removed lines with "-" and added lines with "+".
func writeLineDiff(w io.Writer, before, after string) {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	for _, d := range diffs {
		prefix := ""
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		default:
			continue
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			fmt.Fprint(w, prefix+strings.TrimSuffix(line, "\n")+"\n")
		}
	}
}

func init() {
	rootCmd.AddCommand(configSetURLCmd)
}
