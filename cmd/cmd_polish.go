// Copyright 2025 The MetaGeo Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/metageo/metageo/polish"
	"github.com/metageo/metageo/store"
	"github.com/spf13/cobra"
)

type polishOptions struct {
	Gazetteer string
	Out       string
	DbPath    string
	SinkBatch int
	polish.Options
}

var polishOpts = &polishOptions{}

var polishCmd = &cobra.Command{
	Use:   "polish [table]",
	Short: "Normalizes the coordinates and dates of a sample table",
	Long: `Reads a tab separated sample table (stdin when no file is given) and writes
every row whose position could be determined, with decimal coordinates and
the collection date split into year, month and day.

Rows without usable coordinates are resolved through the gazetteer built by
"gazetteer build" when --gazetteer is set. Resolved samples are also saved to
a duckdb database when --db is set.

$ metageo polish --gazetteer gazetteer.tsv samples.tsv > polished.tsv
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		opts := polishOpts

		ix, err := loadGazetteer(opts.Gazetteer)
		if err != nil {
			return err
		}

		var resolver polish.Resolver
		if ix != nil {
			resolver = ix
		} else {
			log.Printf("No gazetteer given, rows without coordinates will be dropped")
		}

		in := "-"
		if len(args) > 0 {
			in = args[0]
		}

		r, err := openInput(in)
		if err != nil {
			return fmt.Errorf("opening %s: %w", in, err)
		}
		defer r.Close()

		w, err := createOutput(opts.Out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", opts.Out, err)
		}
		defer w.Close()

		proc := polish.NewProcessor(resolver, opts.Options)

		var sink *store.Sink
		if opts.DbPath != "" {
			db, repo, err := openRepository(opts.DbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			sink = store.NewSink(repo, opts.SinkBatch)
			proc.WithSink(sink)
		}

		stats, err := proc.Process(r, w)
		if err != nil {
			return err
		}

		if sink != nil {
			if err := sink.Flush(); err != nil {
				return fmt.Errorf("saving samples: %w", err)
			}

			log.Printf("Saved %d samples to %s", sink.Saved(), opts.DbPath)
		}

		stats.Log()

		return nil
	},
}

func init() {
	rootCmd.AddCommand(polishCmd)

	polishCmd.PersistentFlags().StringVar(
		&polishOpts.Gazetteer,
		"gazetteer",
		"",
		"Index written by gazetteer build (env METAGEO_GAZETTEER)",
	)
	polishCmd.PersistentFlags().StringVarP(
		&polishOpts.Out,
		"out",
		"o",
		"-",
		"Where to write the polished table, - for stdout",
	)
	polishCmd.PersistentFlags().StringVar(
		&polishOpts.DbPath,
		"db",
		"",
		"duckdb database where resolved samples are saved (env METAGEO_DB)",
	)
	polishCmd.PersistentFlags().IntVar(
		&polishOpts.SinkBatch,
		"db-batch",
		0,
		"Samples saved per transaction. Defaults to 1000",
	)
	polishCmd.PersistentFlags().IntVar(
		&polishOpts.Workers,
		"workers",
		-1,
		"Rows normalized concurrently. Defaults to the number of CPUs (env METAGEO_WORKERS)",
	)
	polishCmd.PersistentFlags().IntVar(
		&polishOpts.BatchSize,
		"batch",
		0,
		"Rows read before they are handed to the workers",
	)
	polishCmd.PersistentFlags().BoolVar(
		&polishOpts.Progress,
		"progress",
		isTerminal(os.Stderr),
		"Show a progress bar",
	)
}
