// Copyright 2025 The MetaGeo Authors
// SPDX-License-Identifier: Apache-2.0

package coords

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a raw lat-lon field could not be parsed.
type FailureKind int

const (
	// FailUnrecognized text present but no recognizer matched.
	FailUnrecognized FailureKind = iota
	// FailVoid the upstream extractor marked the field as VOID.
	FailVoid
	// FailMissing empty or one of the missing-data markers.
	FailMissing
	// FailNotCoordinate a value observed in the lat-lon column that is not a coordinate at all.
	FailNotCoordinate
	// FailHemisphere the 4-token layout carried a latitude hemisphere other than N or S.
	FailHemisphere
	// FailOutOfRange the parsed value lies outside [-90,90] x [-180,180].
	FailOutOfRange
)

var kindNames = map[FailureKind]string{
	FailUnrecognized:  "unrecognized",
	FailVoid:          "void",
	FailMissing:       "missing",
	FailNotCoordinate: "not-coordinate",
	FailHemisphere:    "hemisphere",
	FailOutOfRange:    "out-of-range",
}

func (k FailureKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}

	return fmt.Sprintf("FailureKind(%d)", int(k))
}

// ErrNoMatch is reported by a rule family when none of its rules matched.
var ErrNoMatch = errors.New("no rule matched")

// ParseError is returned by Parse for every input it cannot turn into a point.
type ParseError struct {
	Kind FailureKind
	Raw  string
	// Rule is set when a rule matched structurally but its value was rejected.
	Rule string
	Err  error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("lat-lon %q: %s", e.Raw, e.Kind)
	if e.Rule != "" {
		msg += " (" + e.Rule + ")"
	}

	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}

	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// KindOf returns the failure kind carried by err.
func KindOf(err error) (FailureKind, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind, true
	}

	return FailUnrecognized, false
}

// IsMissing reports whether err is a missing-field failure.
func IsMissing(err error) bool {
	k, ok := KindOf(err)

	return ok && k == FailMissing
}

// IsVoid reports whether err is a VOID failure.
func IsVoid(err error) bool {
	k, ok := KindOf(err)

	return ok && k == FailVoid
}
