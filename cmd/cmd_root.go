// Copyright 2025 The MetaGeo Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})
}

// envFlags are the flags that fall back to an environment variable (or .env
// entry) when not given on the command line.
var envFlags = map[string]string{
	"gazetteer": "METAGEO_GAZETTEER",
	"db":        "METAGEO_DB",
	"workers":   "METAGEO_WORKERS",
	"addr":      "METAGEO_ADDR",
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

func loadEnv(cmd *cobra.Command, _ []string) error {
	envFile := getenvDefault("METAGEO_ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", envFile, err)
	}

	var err error

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key, ok := envFlags[f.Name]
		if !ok || f.Changed || err != nil {
			return
		}

		if v := os.Getenv(key); v != "" {
			if e := f.Value.Set(v); e != nil {
				err = fmt.Errorf("%s=%q: %w", key, v, e)
			}
		}
	})

	return err
}

var rootCmd = &cobra.Command{
	Use:   "metageo",
	Short: "normalizes the location and date of sequencing sample metadata",
	Long: `
metageo turns the free-text lat-lon, location and collection date of sample
metadata into decimal coordinates and YYYY-MM-DD dates, falling back to a
GeoNames based gazetteer when the coordinates are missing or unreadable.
`,
	PersistentPreRunE: loadEnv,
	SilenceUsage:      true,
}

var Version = "dev"

func Execute(version string) {
	Version = version
	rootCmd.Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
