// Copyright 2025 The MetaGeo Authors
// SPDX-License-Identifier: Apache-2.0

package polish

import (
	"fmt"

	"github.com/metageo/metageo/coords"
	"github.com/metageo/metageo/gazetteer"
	"github.com/metageo/metageo/spatial"
)

// Source tells where a resolved coordinate came from.
type Source int

const (
	SourceDirect Source = iota
	SourceGazetteerExact
	SourceGazetteerCountryOnly
	numSources
)

var sourceNames = [numSources]string{"direct-parse", "gazetteer-exact", "gazetteer-country-only"}

func (s Source) String() string {
	if s < 0 || s >= numSources {
		return fmt.Sprintf("Source(%d)", int(s))
	}

	return sourceNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Reason tells why a row was dropped.
type Reason int

const (
	ReasonVoid Reason = iota
	ReasonMissingField
	ReasonUnrecognizedFormat
	ReasonAmbiguousLocation
	ReasonNoSourcePosition
	numReasons
)

var reasonNames = [numReasons]string{
	"void", "missing-field", "unrecognized-format", "ambiguous-location", "no-source-position",
}

func (r Reason) String() string {
	if r < 0 || r >= numReasons {
		return fmt.Sprintf("Reason(%d)", int(r))
	}

	return reasonNames[r]
}

// MarshalText implements encoding.TextMarshaler.
func (r Reason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Outcome is the classification of one row. Exactly one of the resolved or
// dropped views applies, as told by Resolved.
type Outcome struct {
	Resolved bool
	Point    spatial.Point
	Source   Source
	Reason   Reason

	// Coord is the direct parse result when Source is SourceDirect.
	Coord coords.Result
	// Failure is the direct parse failure, if the coordinate text was not usable.
	Failure error
	// Match is the gazetteer hit when the location text resolved.
	Match gazetteer.Match
	// Date is the normalized "YYYY-MM-DD" collection date.
	Date string
}

func resolved(p spatial.Point, src Source) Outcome {
	return Outcome{Resolved: true, Point: p, Source: src}
}

func dropped(reason Reason) Outcome {
	return Outcome{Reason: reason}
}

func (o Outcome) String() string {
	if o.Resolved {
		return o.Source.String()
	}

	return "dropped: " + o.Reason.String()
}
