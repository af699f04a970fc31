// Copyright 2025 The MetaGeo Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes the normalizers over HTTP.
package server

import (
	"bufio"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/metageo/metageo/coords"
	"github.com/metageo/metageo/dates"
	"github.com/metageo/metageo/gazetteer"
	"github.com/metageo/metageo/polish"
	"github.com/metageo/metageo/spatial"
	"github.com/metageo/metageo/store"
)

// DefaultAddr is the listen address when Options.Addr is empty.
const DefaultAddr = "localhost:8080"

// maxRows bounds a POST /api/rows body.
const maxRows = 10000

// Options configure the server.
type Options struct {
	Addr string
}

type Server struct {
	gaz  *gazetteer.Index
	proc *polish.Processor
	repo store.SampleRepository
	opts Options
}

// NewServer returns a server. gaz and repo may be nil; the endpoints that
// need them answer 503.
func NewServer(gaz *gazetteer.Index, repo store.SampleRepository, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}

	var resolver polish.Resolver
	if gaz != nil {
		resolver = gaz
	}

	return &Server{
		gaz:  gaz,
		proc: polish.NewProcessor(resolver, polish.Options{}),
		repo: repo,
		opts: opts,
	}
}

// Router registers every route on a new engine.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), observe)

	r.GET("/api/coords", s.parseCoords)
	r.GET("/api/dates", s.normalizeDate)
	r.GET("/api/locations", s.resolveLocation)
	r.POST("/api/rows", s.polishRows)
	r.GET("/api/samples/summary", s.samplesSummary)
	r.GET("/metrics", gin.WrapH(Handler()))

	return r
}

func (s *Server) Run() error {
	log.Printf("Listening on %s", s.opts.Addr)

	return s.Router().Run(s.opts.Addr)
}

func observe(ctx *gin.Context) {
	start := time.Now()

	ctx.Next()

	route := ctx.FullPath()
	if route == "" {
		route = "unmatched"
	}

	RequestsTotal.WithLabelValues(route, strconv.Itoa(ctx.Writer.Status())).Inc()
	RequestDurationMs.WithLabelValues(route).Observe(float64(time.Since(start).Microseconds()) / 1000)
}

type coordResponse struct {
	Raw   string         `json:"raw"`
	Point *spatial.Point `json:"point,omitempty"`
	Rule  string         `json:"rule,omitempty"`
	DMS   bool           `json:"dms,omitempty"`
	Range bool           `json:"range,omitempty"`
	Kind  string         `json:"kind,omitempty"`
	Error string         `json:"error,omitempty"`
}

func (s *Server) parseCoords(ctx *gin.Context) {
	raw, ok := ctx.GetQuery("raw")
	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "raw query parameter is required"})

		return
	}

	res, err := coords.Parse(raw)
	if err != nil {
		var pe *coords.ParseError
		if !errors.As(err, &pe) {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

			return
		}

		CoordParsesTotal.WithLabelValues(pe.Kind.String()).Inc()
		ctx.JSON(http.StatusUnprocessableEntity, coordResponse{
			Raw:   raw,
			Rule:  pe.Rule,
			Kind:  pe.Kind.String(),
			Error: err.Error(),
		})

		return
	}

	CoordParsesTotal.WithLabelValues(res.Rule).Inc()
	ctx.JSON(http.StatusOK, coordResponse{
		Raw:   raw,
		Point: &res.Point,
		Rule:  res.Rule,
		DMS:   res.DMS,
		Range: res.Range,
	})
}

func (s *Server) normalizeDate(ctx *gin.Context) {
	raw, ok := ctx.GetQuery("raw")
	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "raw query parameter is required"})

		return
	}

	date, layout := dates.Match(raw)
	y, m, d := dates.Split(date)

	ctx.JSON(http.StatusOK, gin.H{
		"raw":     raw,
		"date":    date,
		"layout":  layout,
		"year":    y,
		"month":   m,
		"day":     d,
		"unknown": dates.IsUnknown(date),
	})
}

func (s *Server) resolveLocation(ctx *gin.Context) {
	q := ctx.Query("q")
	if strings.TrimSpace(q) == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "q query parameter is required"})

		return
	}

	if s.gaz == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "no gazetteer loaded"})

		return
	}

	m, ok := s.gaz.Resolve(q)
	if !ok {
		LocationResolvesTotal.WithLabelValues("not-found").Inc()
		ctx.JSON(http.StatusNotFound, gin.H{"error": "location not found", "q": q})

		return
	}

	LocationResolvesTotal.WithLabelValues(m.Kind.String()).Inc()
	ctx.JSON(http.StatusOK, gin.H{
		"q":     q,
		"key":   m.Key,
		"kind":  m.Kind.String(),
		"point": m.Point,
	})
}

type rowOutcome struct {
	Line     int            `json:"line"`
	Resolved bool           `json:"resolved"`
	Source   string         `json:"source,omitempty"`
	Reason   string         `json:"reason,omitempty"`
	Point    *spatial.Point `json:"point,omitempty"`
	Date     string         `json:"date,omitempty"`
	Key      string         `json:"key,omitempty"`
	Row      string         `json:"row,omitempty"`
}

func (s *Server) polishRows(ctx *gin.Context) {
	scanner := bufio.NewScanner(ctx.Request.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		outcomes []rowOutcome
		stats    polish.Stats
		line     int
	)

	for scanner.Scan() {
		line++

		text := strings.TrimRight(scanner.Text(), "\r")
		if text == "" {
			continue
		}

		if len(outcomes) == maxRows {
			ctx.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "too many rows", "max": maxRows})

			return
		}

		fields := strings.Split(text, "\t")
		o := s.proc.Normalize(fields)
		stats.Add(o)

		out := rowOutcome{Line: line, Resolved: o.Resolved}
		if o.Resolved {
			out.Source = o.Source.String()
			out.Point = &o.Point
			out.Date = o.Date
			out.Key = o.Match.Key
			out.Row = polish.FormatRow(fields, o)
			RowOutcomesTotal.WithLabelValues(out.Source).Inc()
		} else {
			out.Reason = o.Reason.String()
			RowOutcomesTotal.WithLabelValues(out.Reason).Inc()
		}

		outcomes = append(outcomes, out)
	}

	if err := scanner.Err(); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"outcomes": outcomes,
		"total":    stats.Total,
		"resolved": stats.Resolved(),
		"dropped":  stats.Dropped(),
	})
}

func (s *Server) samplesSummary(ctx *gin.Context) {
	if s.repo == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "no sample database"})

		return
	}

	summary, err := s.repo.Summary()
	if err != nil {
		log.Printf("summary failed: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to summarize samples"})

		return
	}

	ctx.JSON(http.StatusOK, summary)
}
