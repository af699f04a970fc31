// Copyright 2025 The MetaGeo Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "metageo_requests_total",
		Help: "Total number of API requests by route and status",
	}, []string{"route", "status"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "metageo_request_duration_ms",
		Help:    "Request duration in milliseconds",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 50, 100, 500, 1000},
	}, []string{"route"})
	CoordParsesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "metageo_coord_parses_total",
		Help: "Coordinate parses by matching rule, or failure kind",
	}, []string{"result"})
	LocationResolvesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "metageo_location_resolves_total",
		Help: "Gazetteer lookups by match kind, or not-found",
	}, []string{"result"})
	RowOutcomesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "metageo_row_outcomes_total",
		Help: "Polished rows by source when resolved, or drop reason",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(CoordParsesTotal)
	prometheus.MustRegister(LocationResolvesTotal)
	prometheus.MustRegister(RowOutcomesTotal)
}

// Handler exposes the registered metrics.
func Handler() http.Handler { return promhttp.Handler() }
