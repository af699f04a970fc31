// Copyright 2025 The MetaGeo Authors
// SPDX-License-Identifier: Apache-2.0

package coords

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Rule recognizes one lat-lon layout. Pattern is matched against the whole
// whitespace-normalized text; Convert turns the submatches into signed
// decimal strings that are validated afterwards.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	// DMS marks layouts that encode minutes (and seconds).
	DMS     bool
	Convert func(m []string) (lat, lon string, err error)
}

// Cascade is an ordered rule list; the first structural match wins.
type Cascade []Rule

// Apply returns the conversion of the first rule whose pattern matches.
// A matching rule that fails to convert ends the cascade.
func (c Cascade) Apply(text string) (string, string, *Rule, error) {
	for i := range c {
		r := &c[i]

		m := r.Pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		lat, lon, err := r.Convert(m)
		if err != nil {
			return "", "", r, fmt.Errorf("%s: %w", r.Name, err)
		}

		return lat, lon, r, nil
	}

	return "", "", nil, ErrNoMatch
}

var errUnknownHemisphere = errors.New("hemisphere cannot be determined")

// signed prefixes v with "-" when hemi is the negative hemisphere.
func signed(v, hemi, negative string) string {
	if hemi == negative {
		return "-" + v
	}

	return v
}

// dotJoin glues a degree and a minute field as "D.M". Several observed
// layouts are only decodable this way.
func dotJoin(deg, minutes string) string {
	return deg + "." + minutes
}

// lastTwoAsFraction turns "4075" into "40.75".
func lastTwoAsFraction(s string) string {
	cut := max(len(s)-2, 0)

	return s[:cut] + "." + s[cut:]
}

// dms computes deg + min/60 + sec/3600 keeping the sign of deg.
func dms(deg, minutes, seconds string) (string, error) {
	neg := strings.HasPrefix(deg, "-")

	d, err := strconv.ParseFloat(strings.TrimPrefix(deg, "-"), 64)
	if err != nil {
		return "", fmt.Errorf("degrees %q: %w", deg, err)
	}

	var m, s float64

	if minutes != "" {
		if m, err = strconv.ParseFloat(minutes, 64); err != nil {
			return "", fmt.Errorf("minutes %q: %w", minutes, err)
		}
	}

	if seconds != "" {
		if s, err = strconv.ParseFloat(seconds, 64); err != nil {
			return "", fmt.Errorf("seconds %q: %w", seconds, err)
		}
	}

	v := d + m/60 + s/3600
	if neg {
		v = -v
	}

	return strconv.FormatFloat(v, 'f', -1, 64), nil
}

// dmsPair converts two (deg, min, sec) triples and applies the hemispheres.
func dmsPair(latD, latM, latS, latH, lonD, lonM, lonS, lonH string) (string, string, error) {
	lat, err := dms(latD, latM, latS)
	if err != nil {
		return "", "", err
	}

	lon, err := dms(lonD, lonM, lonS)
	if err != nil {
		return "", "", err
	}

	return signed(lat, latH, "S"), signed(lon, lonH, "W"), nil
}

// twoTokenRules cover layouts that split into two whitespace tokens.
var twoTokenRules = Cascade{
	{
		// 60?58N, 7?31E
		Name:    "glyph-degree-minutes",
		Pattern: regexp.MustCompile(`^(\d+)\?(\d+)\??([NS]),? (\d+)\?(\d+)\??([EW])$`),
		Convert: func(m []string) (string, string, error) {
			return signed(dotJoin(m[1], m[2]), m[3], "S"), signed(dotJoin(m[4], m[5]), m[6], "W"), nil
		},
	},
	{
		// 34?35.80?N, 104?30.05?E
		Name:    "glyph-degree-decimal-minutes",
		Pattern: regexp.MustCompile(`^(\d+)\?(\d+\.\d+)\??([NS]),? (\d+)\?(\d+\.\d+)\??([EW])$`),
		DMS:     true,
		Convert: func(m []string) (string, string, error) {
			return dmsPair(m[1], m[2], "", m[3], m[4], m[5], "", m[6])
		},
	},
	{
		// 42?02?05?N 93?37?12?W
		Name:    "glyph-dms",
		Pattern: regexp.MustCompile(`^(\d+)\?(\d+)\?(\d+(?:\.\d+)?)\??([NS]),? (\d+)\?(\d+)\?(\d+(?:\.\d+)?)\??([EW])$`),
		DMS:     true,
		Convert: func(m []string) (string, string, error) {
			return dmsPair(m[1], m[2], m[3], m[4], m[5], m[6], m[7], m[8])
		},
	},
	{
		// 56.72?N, 111.40?W
		Name:    "glyph-hemisphere",
		Pattern: regexp.MustCompile(`^([.\d]+)\?([NS]),? ([.\d]+)\?([EW])$`),
		Convert: func(m []string) (string, string, error) {
			return signed(m[1], m[2], "S"), signed(m[3], m[4], "W"), nil
		},
	},
	{
		// 57.6526333?, -124.0236833? and 49.5134139o, 006.0179250o
		Name:    "glyph-pair",
		Pattern: regexp.MustCompile(`^(-?[.\d]+)[?,o]+ (-?[.\d]+)[?o]?$`),
		Convert: func(m []string) (string, string, error) {
			return m[1], m[2], nil
		},
	},
	{
		// 49.9642500A??, -116.0266500A??
		Name:    "packed-glyph-pair",
		Pattern: regexp.MustCompile(`^(-?[.\d]+)A\?\?,? (-?[.\d]+)A\?\?$`),
		Convert: func(m []string) (string, string, error) {
			return m[1], m[2], nil
		},
	},
	{
		// 73.3565 7.565
		Name:    "decimal-pair",
		Pattern: regexp.MustCompile(`^(-?[.\d]+),? (-?[.\d]+)$`),
		Convert: func(m []string) (string, string, error) {
			return m[1], m[2], nil
		},
	},
	{
		// 4075_N, 11188_W
		Name:    "underscore-minutes",
		Pattern: regexp.MustCompile(`^(\d+)_?([NS]), (\d+)_?([EW])$`),
		Convert: func(m []string) (string, string, error) {
			return signed(lastTwoAsFraction(m[1]), m[2], "S"), signed(lastTwoAsFraction(m[3]), m[4], "W"), nil
		},
	},
	{
		// 7649W, 2443N
		Name:    "swapped-hemispheres",
		Pattern: regexp.MustCompile(`^(\d+)_?([EW]), (\d+)_?([NS])$`),
		Convert: func(m []string) (string, string, error) {
			return signed(lastTwoAsFraction(m[3]), m[4], "S"), signed(lastTwoAsFraction(m[1]), m[2], "W"), nil
		},
	},
	{
		// 37o37N, 101o12E
		Name:    "o-glyph-degree-minutes",
		Pattern: regexp.MustCompile(`^(\d+)o(\d+)([NS]), (\d+)o(\d+)([EW])$`),
		Convert: func(m []string) (string, string, error) {
			return signed(dotJoin(m[1], m[2]), m[3], "S"), signed(dotJoin(m[4], m[5]), m[6], "W"), nil
		},
	},
	{
		// 60A??581.59N; 15A??4759.30E
		Name:    "packed-glyph-dms",
		Pattern: regexp.MustCompile(`^(\d+)A\?\?(\d{2})(\d{1,2}(?:\.\d+)?)([NS]);? (\d+)A\?\?(\d{2})(\d{1,2}(?:\.\d+)?)([EW])$`),
		DMS:     true,
		Convert: func(m []string) (string, string, error) {
			return dmsPair(m[1], m[2], m[3], m[4], m[5], m[6], m[7], m[8])
		},
	},
}

// sixTokenRules cover degree, minutes and seconds separated by spaces.
var sixTokenRules = Cascade{
	{
		// 63A? 33 23.4, 12A? 37 29.7
		Name:    "spaced-glyph-dms",
		Pattern: regexp.MustCompile(`^(\d+)A\? (\d+) ([.\d]+), (\d+)A\? (\d+) ([.\d]+)$`),
		DMS:     true,
		Convert: func(m []string) (string, string, error) {
			return dmsPair(m[1], m[2], m[3], "", m[4], m[5], m[6], "")
		},
	},
	{
		// 33A?? 406 Lat, 26A?? 410 Long: the samples are southern hemisphere
		// but nothing in the text says so.
		Name:    "labelled-lat-long",
		Pattern: regexp.MustCompile(`^(\d+)A\?\? (\d+) Lat, (\d+)A\?\? (\d+) Long$`),
		Convert: func(_ []string) (string, string, error) {
			return "", "", errUnknownHemisphere
		},
	},
	{
		// 42 30.5 N 71 10.2 W
		Name:    "spaced-degree-decimal-minutes",
		Pattern: regexp.MustCompile(`^(\d+) ([.\d]+) ([NS]),? (\d+) ([.\d]+) ([EW])$`),
		DMS:     true,
		Convert: func(m []string) (string, string, error) {
			return dmsPair(m[1], m[2], "", m[3], m[4], m[5], "", m[6])
		},
	},
}

// oneTokenRules cover layouts without any whitespace.
var oneTokenRules = Cascade{
	{
		// -36A??30.783,-73A??01.083
		Name:    "packed-glyph-decimal-minutes",
		Pattern: regexp.MustCompile(`^(-?\d+)A\?\?([.\d]+),(-?\d+)A\?\?([.\d]+)$`),
		DMS:     true,
		Convert: func(m []string) (string, string, error) {
			return dmsPair(m[1], m[2], "", "", m[3], m[4], "", "")
		},
	},
	{
		// 35.97730333/84.27347358
		Name:    "slash-pair",
		Pattern: regexp.MustCompile(`^(-?[.\d]+)/(-?[.\d]+)$`),
		Convert: func(m []string) (string, string, error) {
			return m[1], m[2], nil
		},
	},
	{
		// 34?2824.45S_58?358.42W
		Name:    "packed-dms-underscore",
		Pattern: regexp.MustCompile(`^(\d+)\?(\d{1,2})(\d{2}(?:\.\d+)?)([NS])_(\d+)\?(\d{1,2})(\d{2}(?:\.\d+)?)([EW])$`),
		DMS:     true,
		Convert: func(m []string) (string, string, error) {
			return dmsPair(m[1], m[2], m[3], m[4], m[5], m[6], m[7], m[8])
		},
	},
	{
		// 60?5318,14N,68?4205,75E
		Name:    "packed-dms-decimal-comma",
		Pattern: regexp.MustCompile(`^(\d+)\?(\d{1,2})(\d{2}),(\d+)([NS]),(\d+)\?(\d{1,2})(\d{2}),(\d+)([EW])$`),
		DMS:     true,
		Convert: func(m []string) (string, string, error) {
			return dmsPair(
				m[1], m[2], m[3]+"."+m[4], m[5],
				m[6], m[7], m[8]+"."+m[9], m[10],
			)
		},
	},
	{
		// 32?a?0?a?56.10-120?a?19?a?50.60
		// The longitude is computed from the latitude groups, as the
		// published dataset did. Kept until the intended reading of these
		// samples is confirmed.
		Name:    "a-glyph-dms",
		Pattern: regexp.MustCompile(`^(\d+)\?a\?(\d+)\?a\?([.\d]+)-(\d+)\?a\?(\d+)\?a\?([.\d]+)$`),
		DMS:     true,
		Convert: func(m []string) (string, string, error) {
			lat, err := dms(m[1], m[2], m[3])
			if err != nil {
				return "", "", err
			}

			return lat, lat, nil
		},
	},
}

// weirdFourTokenRules run on the raw text once a family produced values that
// are not plain signed decimals.
var weirdFourTokenRules = Cascade{
	{
		// 42?02?05? N, 93?37?12? W
		Name:    "weird-glyph-dms",
		Pattern: regexp.MustCompile(`^(\d+)\?(\d+)\?(\d+(?:\.\d+)?)\?? ?([NS]),? (\d+)\?(\d+)\?(\d+(?:\.\d+)?)\?? ?([EW])$`),
		DMS:     true,
		Convert: func(m []string) (string, string, error) {
			return dmsPair(m[1], m[2], m[3], m[4], m[5], m[6], m[7], m[8])
		},
	},
	{
		// 34?35.80? N, 104?30.05? E
		Name:    "weird-glyph-decimal-minutes",
		Pattern: regexp.MustCompile(`^(\d+)\?([.\d]+)\?? ?([NS]),? (\d+)\?([.\d]+)\?? ?([EW])$`),
		DMS:     true,
		Convert: func(m []string) (string, string, error) {
			return dmsPair(m[1], m[2], "", m[3], m[4], m[5], "", m[6])
		},
	},
	{
		// 42.02.05.5 N 93.37.12.0 W
		Name:    "weird-dot-dms",
		Pattern: regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+(?:\.\d+)?) ?([NS]),? (\d+)\.(\d+)\.(\d+(?:\.\d+)?) ?([EW])$`),
		DMS:     true,
		Convert: func(m []string) (string, string, error) {
			return dmsPair(m[1], m[2], m[3], m[4], m[5], m[6], m[7], m[8])
		},
	},
}
