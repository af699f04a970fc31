// Copyright 2025 The MetaGeo Authors
// SPDX-License-Identifier: Apache-2.0

// Package textutils holds the text helpers shared by the normalizers.
package textutils

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

func newFolder() transform.Transformer {
	return transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
}

// ASCIIFold removes diacritics and trims surrounding spaces, keeping case.
func ASCIIFold(s string) string {
	s = strings.TrimSpace(s)
	if isASCII(s) {
		return s
	}

	// chains keep state, one per call
	s, _, _ = transform.String(newFolder(), s)

	return s
}

// LowerASCIIFolding normalizes a string by removing accents, lowercasing, and trimming spaces.
func LowerASCIIFolding(s string) string {
	return ASCIIFold(strings.ToLower(s))
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}

	return true
}

// missingVariants are the spellings the sample metadata uses for "no value",
// typos included.
var missingVariants = map[string]struct{}{}

func init() {
	for _, s := range []string{
		"missing", "Missing", "MISSING",
		"NA", "N/A", "na", "n/a", "n/A",
		"NOT APPLICABLE", "Not Applicable", "Not applicable", "not applicable",
		"not recorded",
		"not collected", "Not collected", "Not Collected", "NOT COLLECTED",
		"not available", "Not available", "Not Available", "not availalble",
		"not provided",
		"Unknown", "unknown",
		"-", "None", "none",
		"missisng_1", "missisng_3", "missisng_4",
		"NULL", "?", "AE",
	} {
		missingVariants[s] = struct{}{}
	}
}

// IsMissing reports whether s is empty or one of the known missing-value markers.
// The comparison is exact: "NA" is missing, "Na" is not.
func IsMissing(s string) bool {
	if s == "" {
		return true
	}

	_, ok := missingVariants[s]

	return ok
}

// MissingVariants returns the known missing-value markers, in no particular order.
func MissingVariants() []string {
	ret := make([]string, 0, len(missingVariants))
	for s := range missingVariants {
		ret = append(ret, s)
	}

	return ret
}

// FormatInt formats an integer with commas for human readability.
func FormatInt(n int64) string {
	in := strconv.FormatInt(n, 10)

	numOfDigits := len(in)
	if n < 0 {
		numOfDigits-- // First character is the - sign (not a digit)
	}

	numOfCommas := (numOfDigits - 1) / 3

	out := make([]byte, len(in)+numOfCommas)
	if n < 0 {
		in, out[0] = in[1:], '-'
	}

	for i, j, k := len(in)-1, len(out)-1, 0; ; i, j = i-1, j-1 {
		out[j] = in[i]
		if i == 0 {
			return string(out)
		}

		if k++; k == 3 {
			j, k = j-1, 0
			out[j] = ','
		}
	}
}
