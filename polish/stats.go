// Copyright 2025 The MetaGeo Authors
// SPDX-License-Identifier: Apache-2.0

package polish

import (
	"log"

	"github.com/metageo/metageo/coords"
	"github.com/metageo/metageo/dates"
)

// Stats are the data quality counters of a run. Every row lands in exactly
// one source or reason bucket.
type Stats struct {
	Total   int
	Sources [numSources]int
	Reasons [numReasons]int

	// NotCoordinate counts the unrecognized-format drops whose coordinate
	// field held a known non-coordinate value.
	NotCoordinate int
	DMS           int
	Range         int
	// UnknownDates counts emitted rows whose date fell back to the sentinel.
	UnknownDates int
}

// Add counts one row outcome.
func (s *Stats) Add(o Outcome) {
	s.Total++

	if !o.Resolved {
		s.Reasons[o.Reason]++

		if kind, ok := coords.KindOf(o.Failure); ok && o.Reason == ReasonUnrecognizedFormat && kind == coords.FailNotCoordinate {
			s.NotCoordinate++
		}

		return
	}

	s.Sources[o.Source]++

	if o.Source == SourceDirect {
		if o.Coord.DMS {
			s.DMS++
		}

		if o.Coord.Range {
			s.Range++
		}
	}

	if dates.IsUnknown(o.Date) {
		s.UnknownDates++
	}
}

// Merge adds the counters of o into s.
func (s *Stats) Merge(o *Stats) *Stats {
	s.Total += o.Total

	for i := range s.Sources {
		s.Sources[i] += o.Sources[i]
	}

	for i := range s.Reasons {
		s.Reasons[i] += o.Reasons[i]
	}

	s.NotCoordinate += o.NotCoordinate
	s.DMS += o.DMS
	s.Range += o.Range
	s.UnknownDates += o.UnknownDates

	return s
}

// Resolved returns the number of emitted rows.
func (s *Stats) Resolved() int {
	n := 0
	for _, v := range s.Sources {
		n += v
	}

	return n
}

// Dropped returns the number of omitted rows.
func (s *Stats) Dropped() int {
	n := 0
	for _, v := range s.Reasons {
		n += v
	}

	return n
}

// Log writes the end of run report, one line per non-zero counter.
func (s *Stats) Log() {
	log.Printf("Counted %d entries, wrote %d entries", s.Total, s.Resolved())

	if n := s.Reasons[ReasonVoid]; n > 0 {
		log.Printf("%d entries had 'VOID' as lat-lon and no usable location, removed", n)
	}

	if n := s.Reasons[ReasonMissingField]; n > 0 {
		log.Printf("%d entries did not include lat-lon (missing, not collected, etc.), removed", n)
	}

	if s.NotCoordinate > 0 {
		log.Printf("%d entries had other values as lat-lon, removed", s.NotCoordinate)
	}

	if n := s.Reasons[ReasonUnrecognizedFormat] - s.NotCoordinate; n > 0 {
		log.Printf("%d entries had an unknown format of lat-lon, removed", n)
	}

	if n := s.Reasons[ReasonAmbiguousLocation]; n > 0 {
		log.Printf("%d entries had a location without a unique gazetteer match, removed", n)
	}

	if n := s.Reasons[ReasonNoSourcePosition]; n > 0 {
		log.Printf("%d entries had too few columns, removed", n)
	}

	if s.DMS > 0 {
		log.Printf("%d entries had lat-lon as deg-min-sec format, fixed", s.DMS)
	}

	if s.Range > 0 {
		log.Printf("%d entries had lat-lon as a range, fixed", s.Range)
	}

	if n := s.Sources[SourceGazetteerExact]; n > 0 {
		log.Printf("%d entries were placed from the location name", n)
	}

	if n := s.Sources[SourceGazetteerCountryOnly]; n > 0 {
		log.Printf("%d entries were placed at the country level only", n)
	}

	if s.UnknownDates > 0 {
		log.Printf("%d entries had an unrecognized date", s.UnknownDates)
	}
}
