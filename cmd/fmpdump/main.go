// Command fmpdump exercises the decoder end to end: it opens a
// FileMaker file, discovers its metadata, and streams every row into a
// SQLite database. Argument parsing, caching, and output format beyond
// this one sink are intentionally thin.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bsm/fmp"
	"github.com/bsm/fmp/sink/sqlite"
)

var noCache bool

var rootCmd = &cobra.Command{
	Use:   "fmpdump <input> <output>",
	Short: "Dump a FileMaker Pro database file to a SQLite file",
	Args:  cobra.ExactArgs(2),
	RunE:  run,
}

func init() {
	rootCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the mapped backend's hot-block cache")
}

func run(cmd *cobra.Command, args []string) error {
	input, output := args[0], args[1]

	var opts []fmp.OpenOption
	if noCache {
		opts = append(opts, fmp.WithHotCacheSize(1))
	}

	f, err := fmp.Open(input, opts...)
	if err != nil {
		return fmt.Errorf("open %s: %w", input, err)
	}
	defer func() { _ = f.Close() }()

	metadata, err := f.DiscoverAllMetadata()
	if err != nil {
		return fmt.Errorf("discover metadata: %w", err)
	}

	out, err := sqlite.Open(output)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	defer func() { _ = out.Close() }()

	if err := out.CreateSchema(metadata); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	handle := func(tableIndex, row, column int, col fmp.Column, value string) fmp.HandlerStatus {
		if out.HandleValue(tableIndex, row, col, value) != 0 {
			return fmp.HandlerAbort
		}
		return fmp.HandlerOK
	}

	if err := f.ReadAllValues(metadata, handle); err != nil {
		return fmt.Errorf("read values: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "dumped %d table(s) from %s to %s\n", len(metadata.Tables), input, output)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
