// Copyright 2025 The MetaGeo Authors
// SPDX-License-Identifier: Apache-2.0

// Package polish turns extracted sample metadata rows into rows with decimal
// coordinates and split collection dates, dropping the rows that cannot be
// placed.
//
// Input rows are tab-delimited:
//
//	sample  alias  accession  taxonID  scientific name  lat-lon  date  source  location  sample type
//	  0       1        2         3            4            5      6      7        8          9
//
// The lat-lon column is replaced by two columns (lat, lon) and the date column
// by three (year, month, day). Everything else passes through.
package polish

import (
	"bufio"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"

	"github.com/metageo/metageo/coords"
	"github.com/metageo/metageo/dates"
	"github.com/metageo/metageo/gazetteer"
	"github.com/metageo/metageo/spatial"
	"github.com/metageo/metageo/utils/progress"
	"github.com/metageo/metageo/utils/textutils"
)

// Row column positions.
const (
	ColSample     = 0
	ColAccession  = 2
	ColTaxon      = 3
	ColName       = 4
	ColLatLon     = 5
	ColDate       = 6
	ColSource     = 7
	ColLocation   = 8
	ColSampleType = 9

	// MinColumns is the shortest row that carries a location.
	MinColumns = ColLocation + 1
)

const defaultBatchSize = 4096

// Resolver looks up free-text locations. *gazetteer.Index implements it.
type Resolver interface {
	Resolve(text string) (gazetteer.Match, bool)
}

// Options tune a run.
type Options struct {
	// Workers > 1 normalizes rows concurrently. Output order does not change.
	Workers int
	// BatchSize is the number of rows read before they are handed to workers.
	BatchSize int
	// Progress shows a progress bar when stderr is a terminal.
	Progress bool
}

// Sample is a resolved row, as handed to a Sink.
type Sample struct {
	ID         string
	Accession  string
	TaxonID    string
	Name       string
	Point      spatial.Point
	Source     Source
	Date       string
	IsolatedAt string
	Location   string
	SampleType string
}

// Sink receives every resolved row, in input order.
type Sink interface {
	Add(Sample) error
}

// Processor normalizes sample rows against an optional gazetteer.
type Processor struct {
	gaz  Resolver
	opts Options
	sink Sink
}

// NewProcessor returns a processor. A nil gaz disables the location fallback.
func NewProcessor(gaz Resolver, opts Options) *Processor {
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}

	if opts.Workers < 0 {
		opts.Workers = runtime.NumCPU()
	}

	return &Processor{gaz: gaz, opts: opts}
}

// WithSink sets the receiver of resolved rows.
func (p *Processor) WithSink(s Sink) *Processor {
	p.sink = s

	return p
}

// Normalize classifies a single row already split on tabs.
func (p *Processor) Normalize(fields []string) Outcome {
	if len(fields) < MinColumns {
		return dropped(ReasonNoSourcePosition)
	}

	var o Outcome

	res, err := coords.Parse(fields[ColLatLon])
	if err == nil {
		o = resolved(res.Point, SourceDirect)
		o.Coord = res
	} else {
		o = p.fallback(fields[ColLocation], err)
		o.Failure = err
	}

	if o.Resolved {
		o.Date = dates.Normalize(fields[ColDate])
	}

	return o
}

func (p *Processor) fallback(location string, parseErr error) Outcome {
	if p.gaz == nil || textutils.IsMissing(location) {
		kind, _ := coords.KindOf(parseErr)

		switch kind {
		case coords.FailVoid:
			return dropped(ReasonVoid)
		case coords.FailMissing:
			return dropped(ReasonMissingField)
		default:
			return dropped(ReasonUnrecognizedFormat)
		}
	}

	m, ok := p.gaz.Resolve(location)
	if !ok {
		if folded := textutils.ASCIIFold(location); folded != strings.TrimSpace(location) {
			m, ok = p.gaz.Resolve(folded)
		}
	}

	if !ok {
		return dropped(ReasonAmbiguousLocation)
	}

	src := SourceGazetteerExact
	if m.Kind == gazetteer.MatchCountryOnly {
		src = SourceGazetteerCountryOnly
	}

	o := resolved(m.Point, src)
	o.Match = m

	return o
}

// FormatRow renders a resolved row with the lat-lon column as "lat\tlon" and
// the date column as "year\tmonth\tday".
func FormatRow(fields []string, o Outcome) string {
	var sb strings.Builder

	for i, f := range fields {
		if i > 0 {
			sb.WriteByte('\t')
		}

		switch i {
		case ColLatLon:
			sb.WriteString(spatial.FormatDegrees(o.Point.Lat))
			sb.WriteByte('\t')
			sb.WriteString(spatial.FormatDegrees(o.Point.Lng))
		case ColDate:
			y, m, d := dates.Split(o.Date)
			sb.WriteString(y)
			sb.WriteByte('\t')
			sb.WriteString(m)
			sb.WriteByte('\t')
			sb.WriteString(d)
		default:
			sb.WriteString(f)
		}
	}

	return sb.String()
}

func sampleOf(fields []string, o Outcome) Sample {
	s := Sample{
		ID:         fields[ColSample],
		Accession:  fields[ColAccession],
		TaxonID:    fields[ColTaxon],
		Name:       fields[ColName],
		Point:      o.Point,
		Source:     o.Source,
		Date:       o.Date,
		IsolatedAt: fields[ColSource],
		Location:   fields[ColLocation],
	}

	if len(fields) > ColSampleType {
		s.SampleType = fields[ColSampleType]
	}

	return s
}

type rowResult struct {
	fields  []string
	outcome Outcome
}

// Process reads rows from r and writes the resolved ones to w. Blank lines
// are ignored. Errors are only returned for I/O failures.
func (p *Processor) Process(r io.Reader, w io.Writer) (*Stats, error) {
	var bar *progress.Bar
	if p.opts.Progress {
		bar = progress.New(-1, "polishing rows")
		defer bar.Finish()
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	bw := bufio.NewWriter(w)
	stats := &Stats{}
	batch := make([]string, 0, p.opts.BatchSize)

	flush := func() error {
		results, batchStats := p.normalizeBatch(batch)
		batch = batch[:0]

		stats.Merge(batchStats)

		for _, res := range results {
			if !res.outcome.Resolved {
				continue
			}

			if _, err := bw.WriteString(FormatRow(res.fields, res.outcome) + "\n"); err != nil {
				return fmt.Errorf("writing row: %w", err)
			}

			if p.sink != nil {
				if err := p.sink.Add(sampleOf(res.fields, res.outcome)); err != nil {
					return fmt.Errorf("saving sample %s: %w", res.fields[ColSample], err)
				}
			}
		}

		bar.Add(len(results))

		return nil
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}

		batch = append(batch, line)
		if len(batch) == p.opts.BatchSize {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("reading rows: %w", err)
	}

	if len(batch) > 0 {
		if err := flush(); err != nil {
			return stats, err
		}
	}

	if err := bw.Flush(); err != nil {
		return stats, fmt.Errorf("writing rows: %w", err)
	}

	return stats, nil
}

// normalizeBatch classifies lines keeping their order. With several workers
// the batch is cut into contiguous shards, each counting into its own Stats.
func (p *Processor) normalizeBatch(lines []string) ([]rowResult, *Stats) {
	results := make([]rowResult, len(lines))

	normalize := func(from, to int) *Stats {
		s := &Stats{}

		for i := from; i < to; i++ {
			fields := strings.Split(lines[i], "\t")
			results[i] = rowResult{fields: fields, outcome: p.Normalize(fields)}
			s.Add(results[i].outcome)
		}

		return s
	}

	workers := p.opts.Workers
	if workers <= 1 || len(lines) < 2 {
		return results, normalize(0, len(lines))
	}

	shard := (len(lines) + workers - 1) / workers

	var wg sync.WaitGroup

	semaphore := make(chan struct{}, workers)
	statsChan := make(chan *Stats, workers)

	for from := 0; from < len(lines); from += shard {
		to := min(from+shard, len(lines))

		wg.Add(1)

		go func(from, to int) {
			defer wg.Done()
			semaphore <- struct{}{}

			defer func() { <-semaphore }()

			statsChan <- normalize(from, to)
		}(from, to)
	}

	wg.Wait()
	close(statsChan)

	total := &Stats{}
	for s := range statsChan {
		total.Merge(s)
	}

	return results, total
}
