// Copyright 2025 The MetaGeo Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/metageo/metageo/gazetteer"
	"github.com/metageo/metageo/spatial"
	"github.com/metageo/metageo/utils/textutils"
	"github.com/spf13/cobra"
)

type gazetteerBuildOptions struct {
	Countries string
	Places    string
	Features  string
	Out       string
	Verbose   bool
	gazetteer.Options
}

var (
	gazetteerBuildOpts = &gazetteerBuildOptions{}
	gazetteerPath      string
)

// openInput opens path for reading; "-" is stdin.
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}

	return os.Open(path)
}

// createOutput opens path for writing; "-" is stdout.
func createOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}

	return os.Create(path)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// loadGazetteer reads a table written by "gazetteer build". An empty path
// means no gazetteer.
func loadGazetteer(path string) (*gazetteer.Index, error) {
	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening gazetteer: %w", err)
	}
	defer f.Close()

	ix, err := gazetteer.ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("loading gazetteer %s: %w", path, err)
	}

	log.Printf("Loaded %s gazetteer entries from %s", textutils.FormatInt(int64(ix.Len())), path)

	return ix, nil
}

var gazetteerCmd = &cobra.Command{
	Use:   "gazetteer",
	Short: "Build and query the place name index",
}

var gazetteerBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Builds the place name index from GeoNames dumps",
	Long: `Reads countryInfo.txt and a place dump (allCountries.txt or a per-country
file), keeps only the names that map to a single coordinate and writes the
index as "key<TAB>lat<TAB>lon" lines.

$ metageo gazetteer build --countries countryInfo.txt --places allCountries.txt --out gazetteer.tsv
`,
	RunE: func(_ *cobra.Command, _ []string) error {
		opts := gazetteerBuildOpts

		countries, err := os.Open(opts.Countries)
		if err != nil {
			return fmt.Errorf("opening country codes: %w", err)
		}
		defer countries.Close()

		places, err := openInput(opts.Places)
		if err != nil {
			return fmt.Errorf("opening place dump: %w", err)
		}
		defer places.Close()

		opts.Progress = true

		ix, stats, err := gazetteer.Build(countries, places, opts.Options)
		if err != nil {
			return err
		}

		stats.Log()

		if opts.Verbose {
			if err := writeBuildDetails(stats, opts.Features); err != nil {
				return err
			}
		}

		out, err := createOutput(opts.Out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", opts.Out, err)
		}

		if err := gazetteer.WriteTable(out, ix); err != nil {
			out.Close()

			return fmt.Errorf("writing gazetteer: %w", err)
		}

		if err := out.Close(); err != nil {
			return fmt.Errorf("closing %s: %w", opts.Out, err)
		}

		log.Printf("Wrote %s gazetteer entries", textutils.FormatInt(int64(ix.Len())))

		return nil
	},
}

func writeBuildDetails(stats *gazetteer.BuildStats, featuresPath string) error {
	names := map[string]string{}

	if featuresPath != "" {
		f, err := os.Open(featuresPath)
		if err != nil {
			return fmt.Errorf("opening feature codes: %w", err)
		}
		defer f.Close()

		if names, err = gazetteer.LoadFeatureCodes(f); err != nil {
			return err
		}
	}

	if err := stats.WriteFeatures(os.Stderr, names); err != nil {
		return err
	}

	return stats.WriteRegions(os.Stderr)
}

var gazetteerLookupCmd = &cobra.Command{
	Use:   "lookup [location...]",
	Short: "Resolves locations against a built index",
	Long: `Resolves each argument, or each stdin line when there are none, and prints
the location followed by the match kind, the matching key and the coordinate.

$ metageo gazetteer lookup --gazetteer gazetteer.tsv "Switzerland: Lake Geneva"
Switzerland: Lake Geneva	exact	Switzerland:Lake Geneva	46.45	6.53
`,
	RunE: func(_ *cobra.Command, args []string) error {
		ix, err := loadGazetteer(gazetteerPath)
		if err != nil {
			return err
		}

		if ix == nil {
			return fmt.Errorf("--gazetteer is required")
		}

		lookup := func(q string) {
			m, ok := ix.Resolve(q)
			if !ok {
				fmt.Printf("%s\tnot-found\n", q)

				return
			}

			fmt.Printf("%s\t%s\t%s\t%s\t%s\n", q, m.Kind, m.Key,
				spatial.FormatDegrees(m.Point.Lat), spatial.FormatDegrees(m.Point.Lng))
		}

		if len(args) > 0 {
			for _, q := range args {
				lookup(q)
			}

			return nil
		}

		if isTerminal(os.Stdin) {
			fmt.Fprintln(os.Stderr, "Enter locations to resolve, one per line…")
		}

		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if q := strings.TrimSpace(scanner.Text()); q != "" {
				lookup(q)
			}
		}

		return scanner.Err()
	},
}

func init() {
	rootCmd.AddCommand(gazetteerCmd)
	gazetteerCmd.AddCommand(gazetteerBuildCmd)
	gazetteerCmd.AddCommand(gazetteerLookupCmd)

	gazetteerBuildCmd.PersistentFlags().StringVar(
		&gazetteerBuildOpts.Countries,
		"countries",
		"countryInfo.txt",
		"GeoNames country table",
	)
	gazetteerBuildCmd.PersistentFlags().StringVar(
		&gazetteerBuildOpts.Places,
		"places",
		"allCountries.txt",
		"GeoNames place dump, - for stdin",
	)
	gazetteerBuildCmd.PersistentFlags().StringVar(
		&gazetteerBuildOpts.Features,
		"features",
		"",
		"GeoNames featureCodes_en.txt, names the feature codes printed by --verbose",
	)
	gazetteerBuildCmd.PersistentFlags().StringVarP(
		&gazetteerBuildOpts.Out,
		"out",
		"o",
		"-",
		"Where to write the index, - for stdout",
	)
	gazetteerBuildCmd.PersistentFlags().BoolVarP(
		&gazetteerBuildOpts.Verbose,
		"verbose",
		"v",
		false,
		"Print per feature code and per region row counts",
	)
	gazetteerBuildCmd.PersistentFlags().StringSliceVar(
		&gazetteerBuildOpts.RegionCountries,
		"regions",
		gazetteer.DefaultRegionCountries,
		"Countries whose admin1 regions become part of the keys",
	)
	gazetteerLookupCmd.PersistentFlags().StringVar(
		&gazetteerPath,
		"gazetteer",
		"",
		"Index written by gazetteer build (env METAGEO_GAZETTEER)",
	)
}
