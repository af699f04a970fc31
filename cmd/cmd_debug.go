// Copyright 2025 The MetaGeo Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/metageo/metageo/coords"
	"github.com/metageo/metageo/dates"
	"github.com/metageo/metageo/spatial"
	"github.com/spf13/cobra"
)

// isTerminal reports whether f is attached to a terminal. Pipes and files
// are not.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// eachLine calls fn with every stdin line, prompting first when stdin is a
// terminal.
func eachLine(prompt string, fn func(string)) error {
	input := os.Stdin
	if isTerminal(input) {
		fmt.Fprintln(os.Stderr, prompt)
	}

	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		fn(scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	return nil
}

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Dev tools",
}

var debugCoordsCmd = &cobra.Command{
	Use:   "coords",
	Short: "Parses one lat-lon per line",
	Long: `Reads one lat-lon value per line, and prints it followed by the rule that
recognized it and the decimal coordinate, or by the reason it was rejected.

$ echo "38.98 N 77.11 W" | metageo debug coords
38.98 N 77.11 W	four-token	38.98	-77.11
`,
	RunE: func(_ *cobra.Command, _ []string) error {
		return eachLine("Enter lat-lon values, one per line…", func(raw string) {
			res, err := coords.Parse(raw)
			if err != nil {
				kind, _ := coords.KindOf(err)
				fmt.Printf("%s\t%s\t%q\n", raw, kind, err)

				return
			}

			fmt.Printf("%s\t%s\t%s\t%s\n", raw, res.Rule,
				spatial.FormatDegrees(res.Point.Lat), spatial.FormatDegrees(res.Point.Lng))
		})
	},
}

var debugDatesCmd = &cobra.Command{
	Use:   "dates",
	Short: "Normalizes one collection date per line",
	Long: `Reads one collection date per line, and prints it followed by the
YYYY-MM-DD form and the layout that matched.

$ echo 30-Oct-1990 | metageo debug dates
30-Oct-1990	1990-10-30	day-month-year
`,
	RunE: func(_ *cobra.Command, _ []string) error {
		return eachLine("Enter dates, one per line…", func(raw string) {
			date, layout := dates.Match(raw)
			if layout == "" {
				layout = "-"
			}

			fmt.Printf("%s\t%s\t%s\n", raw, date, layout)
		})
	},
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.AddCommand(debugCoordsCmd)
	debugCmd.AddCommand(debugDatesCmd)
}
