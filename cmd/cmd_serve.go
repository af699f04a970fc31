// Copyright 2025 The MetaGeo Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/gin-gonic/gin"
	"github.com/metageo/metageo/server"
	"github.com/metageo/metageo/store"
	"github.com/spf13/cobra"
)

var serveOptions = struct {
	Gazetteer string
	DbPath    string
	Debug     bool
	server.Options
}{}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the normalizers over HTTP",
	Long: `Starts an HTTP server exposing

  GET  /api/coords?raw=…          parse a lat-lon
  GET  /api/dates?raw=…           normalize a collection date
  GET  /api/locations?q=…         resolve a location (needs --gazetteer)
  POST /api/rows                  polish tab separated sample rows
  GET  /api/samples/summary       summarize saved samples (needs --db)
  GET  /metrics                   prometheus metrics
`,
	RunE: func(_ *cobra.Command, _ []string) error {
		if !serveOptions.Debug {
			gin.SetMode(gin.ReleaseMode)
		}

		ix, err := loadGazetteer(serveOptions.Gazetteer)
		if err != nil {
			return err
		}

		var repo store.SampleRepository

		if serveOptions.DbPath != "" {
			db, r, err := openRepository(serveOptions.DbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			repo = r
		}

		return server.NewServer(ix, repo, serveOptions.Options).Run()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.PersistentFlags().StringVar(
		&serveOptions.Addr,
		"addr",
		server.DefaultAddr,
		"Listen address (env METAGEO_ADDR)",
	)
	serveCmd.PersistentFlags().StringVar(
		&serveOptions.Gazetteer,
		"gazetteer",
		"",
		"Index written by gazetteer build (env METAGEO_GAZETTEER)",
	)
	serveCmd.PersistentFlags().StringVar(
		&serveOptions.DbPath,
		"db",
		"",
		"duckdb database written by polish --db (env METAGEO_DB)",
	)
	serveCmd.PersistentFlags().BoolVar(
		&serveOptions.Debug,
		"debug",
		false,
		"Run gin in debug mode",
	)
}
