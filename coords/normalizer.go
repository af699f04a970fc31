// Copyright 2025 The MetaGeo Authors
// SPDX-License-Identifier: Apache-2.0

// Package coords parses the free-text lat-lon field of sample metadata into
// signed decimal degrees.
//
// Input is split on whitespace and the token count picks a family of
// recognizers (4, 2, 6 or 1 tokens). Within a family the first matching rule
// wins. A family that produces values which are not plain signed decimals
// gets a last chance through the "weird 4-token" rules applied to the whole
// text.
package coords

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/metageo/metageo/spatial"
	"github.com/metageo/metageo/utils/textutils"
)

// Void is written by the upstream extractor when a sample has no lat-lon attribute.
const Void = "VOID"

// Rule name reported for the canonical "lat H lon H" layout.
const RuleFourToken = "four-token"

// notCoordinates are values found in the lat-lon column that are something else entirely.
var notCoordinates = map[string]struct{}{
	"large intestine": {},
	"blood":           {},
	"Vosges":          {},
	"V5-V9":           {},
	"Kolkata":         {},
	"diverse":         {},
	"bacteria":        {},
}

var signedDecimal = regexp.MustCompile(`^-?(?:\d+\.?\d*|\.\d+)$`)

// Result is a successfully parsed lat-lon.
type Result struct {
	Point spatial.Point
	// Rule names the recognizer that produced Point.
	Rule string
	// DMS is set when the text encoded minutes or seconds.
	DMS bool
	// Range is set when the text was a range and only its first bound was kept.
	Range bool
}

// Parse converts a raw lat-lon field. Every failure is a *ParseError.
func Parse(raw string) (Result, error) {
	switch {
	case raw == Void:
		return Result{}, &ParseError{Kind: FailVoid, Raw: raw}
	case textutils.IsMissing(raw) || strings.TrimSpace(raw) == "":
		return Result{}, &ParseError{Kind: FailMissing, Raw: raw}
	case isNotCoordinate(raw):
		return Result{}, &ParseError{Kind: FailNotCoordinate, Raw: raw}
	}

	tokens := strings.Fields(raw)
	text := strings.Join(tokens, " ")

	var (
		res      Result
		lat, lon string
		err      error
	)

	switch len(tokens) {
	case 4:
		lat, lon, res, err = parseFourTokens(tokens)
		if err != nil {
			return Result{}, &ParseError{Kind: FailHemisphere, Raw: raw, Rule: RuleFourToken, Err: err}
		}
	case 2:
		lat, lon, res, err = applyFamily(twoTokenRules, text)
	case 6:
		lat, lon, res, err = applyFamily(sixTokenRules, text)
	case 1:
		lat, lon, res, err = applyFamily(oneTokenRules, text)
	default:
		err = fmt.Errorf("%d tokens: %w", len(tokens), ErrNoMatch)
	}

	if err != nil {
		return Result{}, &ParseError{Kind: FailUnrecognized, Raw: raw, Rule: res.Rule, Err: err}
	}

	if !signedDecimal.MatchString(lat) || !signedDecimal.MatchString(lon) {
		first := res.Rule

		lat, lon, res, err = applyFamily(weirdFourTokenRules, text)
		if err != nil {
			return Result{}, &ParseError{
				Kind: FailUnrecognized,
				Raw:  raw,
				Rule: first,
				Err:  fmt.Errorf("not a signed decimal and no fallback matched: %w", err),
			}
		}
	}

	p, err := toPoint(lat, lon)
	if err != nil {
		return Result{}, &ParseError{Kind: FailUnrecognized, Raw: raw, Rule: res.Rule, Err: err}
	}

	if !p.Valid() {
		return Result{}, &ParseError{Kind: FailOutOfRange, Raw: raw, Rule: res.Rule}
	}

	res.Point = p

	return res, nil
}

func isNotCoordinate(raw string) bool {
	_, ok := notCoordinates[raw]

	return ok
}

func applyFamily(c Cascade, text string) (string, string, Result, error) {
	lat, lon, rule, err := c.Apply(text)

	var res Result
	if rule != nil {
		res.Rule = rule.Name
		res.DMS = rule.DMS
	}

	return lat, lon, res, err
}

// parseFourTokens handles "lat H lon H". The only error it returns is a
// latitude hemisphere other than N or S; malformed numbers are left for the
// signed-decimal check.
func parseFourTokens(tokens []string) (string, string, Result, error) {
	res := Result{Rule: RuleFourToken}

	lat, latDMS, latRange := expandNumber(strings.TrimRight(tokens[0], "?"))
	lon, lonDMS, lonRange := expandNumber(strings.TrimRight(tokens[2], "?"))
	res.DMS = latDMS || lonDMS
	res.Range = latRange || lonRange

	latHemi := strings.ReplaceAll(tokens[1], ",", "")
	if latHemi != "N" && latHemi != "S" {
		return "", "", res, fmt.Errorf("latitude hemisphere %q", tokens[1])
	}

	lonHemi := strings.TrimRight(tokens[3], ",.")

	return signed(lat, latHemi, "S"), signed(lon, lonHemi, "W"), res, nil
}

// expandNumber resolves "D-M-S", "D.M.S" and "a-b" ranges. A leading minus is
// a sign, not a separator.
func expandNumber(v string) (string, bool, bool) {
	body := strings.TrimPrefix(v, "-")

	switch {
	case strings.Count(body, "-") == 2:
		parts := strings.Split(v, "-")
		if strings.HasPrefix(v, "-") {
			parts = append([]string{"-" + parts[1]}, parts[2:]...)
		}

		if s, err := dms(parts[0], parts[1], parts[2]); err == nil {
			return s, true, false
		}

		return v, true, false
	case strings.Count(body, "-") == 1:
		i := strings.Index(body, "-")

		return v[:len(v)-len(body)+i], false, true
	case strings.Count(body, ".") == 2:
		parts := strings.Split(v, ".")
		if s, err := dms(parts[0], parts[1], parts[2]); err == nil {
			return s, true, false
		}

		return v, true, false
	}

	return v, false, false
}

func toPoint(lat, lon string) (spatial.Point, error) {
	y, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return spatial.Point{}, fmt.Errorf("latitude %q: %w", lat, err)
	}

	x, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return spatial.Point{}, fmt.Errorf("longitude %q: %w", lon, err)
	}

	return spatial.Point{Lat: y, Lng: x}, nil
}

// Format renders p in the canonical 4-token layout; Parse(Format(p)) yields p.
func Format(p spatial.Point) string {
	latHemi, lonHemi := "N", "E"
	if p.Lat < 0 {
		latHemi = "S"
	}

	if p.Lng < 0 {
		lonHemi = "W"
	}

	return spatial.FormatDegrees(math.Abs(p.Lat)) + " " + latHemi + " " +
		spatial.FormatDegrees(math.Abs(p.Lng)) + " " + lonHemi
}

// Families lists the rule cascades by name, for introspection.
func Families() map[string]Cascade {
	return map[string]Cascade{
		"two-token":   twoTokenRules,
		"six-token":   sixTokenRules,
		"one-token":   oneTokenRules,
		"weird-token": weirdFourTokenRules,
	}
}

// IsUnrecognized reports whether err means the text was present but unreadable.
func IsUnrecognized(err error) bool {
	k, ok := KindOf(err)
	if !ok {
		return false
	}

	switch k {
	case FailUnrecognized, FailHemisphere, FailOutOfRange, FailNotCoordinate:
		return true
	default:
		return false
	}
}
