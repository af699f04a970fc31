// Copyright 2025 The MetaGeo Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/metageo/metageo/spatial"
	"github.com/metageo/metageo/store"
	"github.com/spf13/cobra"
)

// openRepository opens (creating if needed) the sample database at path.
func openRepository(path string) (*sql.DB, store.SampleRepository, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	repo := store.NewSQLSampleRepository(db)
	if err := repo.CreateSchema(); err != nil {
		db.Close()

		return nil, nil, fmt.Errorf("creating schema: %w", err)
	}

	return db, repo, nil
}

var statsOptions = struct {
	DbPath string
	Res    int
	Limit  int
}{}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarizes the samples saved by polish --db",
	RunE: func(_ *cobra.Command, _ []string) error {
		if statsOptions.DbPath == "" {
			return fmt.Errorf("--db is required")
		}

		db, repo, err := openRepository(statsOptions.DbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		summary, err := repo.Summary()
		if err != nil {
			return err
		}

		fmt.Printf("Samples:\t%d\n", summary.Samples)
		fmt.Printf("Years:\t%d-%d\n", summary.FirstYear, summary.LastYear)
		fmt.Printf("Cells (res %d):\t%d\n", store.SummaryRes, summary.Cells)

		sources := make([]string, 0, len(summary.BySource))
		for source := range summary.BySource {
			sources = append(sources, source)
		}
		sort.Strings(sources)

		for _, source := range sources {
			fmt.Printf("  %-24s %d\n", source, summary.BySource[source])
		}

		cells, err := repo.TopCells(statsOptions.Res, statsOptions.Limit)
		if err != nil {
			return err
		}

		line := strings.Repeat("─", 44)
		fmt.Printf("\nBusiest cells at resolution %d\n%s\n", statsOptions.Res, line)

		for _, c := range cells {
			fmt.Printf("%016x  %8d  %s,%s\n", c.Cell, c.Samples,
				spatial.FormatDegrees(c.Center.Lat), spatial.FormatDegrees(c.Center.Lng))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.PersistentFlags().StringVar(
		&statsOptions.DbPath,
		"db",
		"",
		"duckdb database written by polish --db (env METAGEO_DB)",
	)
	statsCmd.PersistentFlags().IntVar(
		&statsOptions.Res,
		"res",
		store.SummaryRes,
		"H3 resolution of the cells, 1 to 8",
	)
	statsCmd.PersistentFlags().IntVar(
		&statsOptions.Limit,
		"limit",
		10,
		"Number of cells to list",
	)
}
