// Copyright 2025 The MetaGeo Authors
// SPDX-License-Identifier: Apache-2.0

package coords

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/metageo/metageo/spatial"
	"github.com/metageo/metageo/utils/textutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw       string
		wantLat   float64
		wantLng   float64
		wantRule  string
		wantDMS   bool
		wantRange bool
	}{
		// 4 tokens
		{"38.98 N 77.11 W", 38.98, -77.11, RuleFourToken, false, false},
		{"46.512 N 6.587 E", 46.512, 6.587, RuleFourToken, false, false},
		{"12.5 S, 130.1 E", -12.5, 130.1, RuleFourToken, false, false},
		{"45.5081? N, 73.5550? W", 45.5081, -73.555, RuleFourToken, false, false},
		{"42-02-05 N, 93-37-12 W", 42.034722, -93.62, RuleFourToken, true, false},
		{"41.44-41.61 N 8.04-8.32 W", 41.44, -8.04, RuleFourToken, false, true},
		{"42.02.05 N 93.37.12 W", 42.034722, -93.62, RuleFourToken, true, false},
		{"38.98  N   77.11 W", 38.98, -77.11, RuleFourToken, false, false},
		// 2 tokens
		{"60?58N, 7?31E", 60.58, 7.31, "glyph-degree-minutes", false, false},
		{"77?30?S 106?00?E", -77.30, 106, "glyph-degree-minutes", false, false},
		{"34?35.80?N, 104?30.05?E", 34.596667, 104.500833, "glyph-degree-decimal-minutes", true, false},
		{"42?02?05?N 93?37?12?W", 42.034722, -93.62, "glyph-dms", true, false},
		{"56.72?N, 111.40?W", 56.72, -111.40, "glyph-hemisphere", false, false},
		{"57.6526333?, -124.0236833?", 57.6526333, -124.0236833, "glyph-pair", false, false},
		{"49.5134139o, 006.0179250o", 49.5134139, 6.017925, "glyph-pair", false, false},
		{"57.02, -111.55", 57.02, -111.55, "glyph-pair", false, false},
		{"49.9642500A??, -116.0266500A??", 49.96425, -116.02665, "packed-glyph-pair", false, false},
		{"73.3565 7.565", 73.3565, 7.565, "decimal-pair", false, false},
		{"4075_N, 11188_W", 40.75, -111.88, "underscore-minutes", false, false},
		{"7649W, 2443N", 24.43, -76.49, "swapped-hemispheres", false, false},
		{"37o37N, 101o12E", 37.37, 101.12, "o-glyph-degree-minutes", false, false},
		{"60A??581.59N; 15A??4759.30E", 60.967108, 15.799806, "packed-glyph-dms", true, false},
		// 6 tokens
		{"63A? 33 23.4, 12A? 37 29.7", 63.5565, 12.624917, "spaced-glyph-dms", true, false},
		{"42 30.5 N 71 10.2 W", 42.508333, -71.17, "spaced-degree-decimal-minutes", true, false},
		// 1 token
		{"-36A??30.783,-73A??01.083", -36.51305, -73.01805, "packed-glyph-decimal-minutes", true, false},
		{"35.97730333/84.27347358", 35.97730333, 84.27347358, "slash-pair", false, false},
		{"34?2824.45S_58?358.42W", -34.473458, -58.066228, "packed-dms-underscore", true, false},
		{"60?5318,14N,68?4205,75E", 60.888372, 68.701597, "packed-dms-decimal-comma", true, false},
		// second pass
		{"42?02?05? N, 93?37?12? W", 42.034722, -93.62, "weird-glyph-dms", true, false},
		{"34?35.80? N, 104?30.05? E", 34.596667, 104.500833, "weird-glyph-decimal-minutes", true, false},
		{"42.02.05.5 N 93.37.12 W", 42.034861, -93.62, "weird-dot-dms", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := Parse(tt.raw)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantLat, got.Point.Lat, 1e-6, "lat")
			assert.InDelta(t, tt.wantLng, got.Point.Lng, 1e-6, "lng")
			assert.Equal(t, tt.wantRule, got.Rule)
			assert.Equal(t, tt.wantDMS, got.DMS, "dms")
			assert.Equal(t, tt.wantRange, got.Range, "range")
		})
	}
}

func TestParseFailures(t *testing.T) {
	tests := []struct {
		raw      string
		wantKind FailureKind
		wantRule string
	}{
		{"VOID", FailVoid, ""},
		{"", FailMissing, ""},
		{"   ", FailMissing, ""},
		{"NOT APPLICABLE", FailMissing, ""},
		{"blood", FailNotCoordinate, ""},
		{"V5-V9", FailNotCoordinate, ""},
		{"36A? 37.669, -121A? 32.350", FailHemisphere, RuleFourToken},
		{"38.98 E 77.11 N", FailHemisphere, RuleFourToken},
		{"95 N 10 E", FailOutOfRange, RuleFourToken},
		{"10 N 190 E", FailOutOfRange, RuleFourToken},
		{"33A?? 406 Lat, 26A?? 410 Long", FailUnrecognized, "labelled-lat-long"},
		{"-17.4848-149.8336", FailUnrecognized, ""},
		{"N:E 42.4021:128.0947", FailUnrecognized, ""},
		{"15S 130-140E", FailUnrecognized, ""},
		{"~50S", FailUnrecognized, ""},
		{"1 2 3", FailUnrecognized, ""},
		{"abc N def W", FailUnrecognized, RuleFourToken},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			_, err := Parse(tt.raw)
			require.Error(t, err)

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.wantKind, pe.Kind, "got %v", err)
			assert.Equal(t, tt.wantRule, pe.Rule)
			assert.Equal(t, tt.raw, pe.Raw)
		})
	}
}

func TestParseMissingVariants(t *testing.T) {
	for _, raw := range textutils.MissingVariants() {
		t.Run(raw, func(t *testing.T) {
			_, err := Parse(raw)
			assert.True(t, IsMissing(err), "got %v", err)
			assert.False(t, IsUnrecognized(err))
		})
	}
}

func TestParseVoid(t *testing.T) {
	_, err := Parse(Void)
	assert.True(t, IsVoid(err))
	assert.False(t, IsMissing(err))
}

// The longitude of this layout is computed from the latitude fields. This
// test pins the current output until the intended reading is confirmed.
func TestParseAGlyphLongitudeMirrorsLatitude(t *testing.T) {
	got, err := Parse("32?a?0?a?56.10-120?a?19?a?50.60")
	require.NoError(t, err)
	assert.Equal(t, "a-glyph-dms", got.Rule)
	assert.InDelta(t, 32.015583, got.Point.Lat, 1e-6)
	assert.Equal(t, got.Point.Lat, got.Point.Lng)
}

func TestFormatFixedPoint(t *testing.T) {
	lats := []float64{0, 38.98, -38.98, 90, -90, 12.3456789, -0.5}
	lngs := []float64{0, 77.11, -77.11, 180, -180, 6.587, -0.25}

	for _, lat := range lats {
		for _, lng := range lngs {
			p := spatial.Point{Lat: lat, Lng: lng}
			s := Format(p)

			got, err := Parse(s)
			require.NoError(t, err, s)
			assert.Equal(t, RuleFourToken, got.Rule)

			if diff := cmp.Diff(p, got.Point); diff != "" {
				t.Errorf("Parse(Format(%v)) mismatch (-want +got):\n%s", p, diff)
			}

			again, err := Parse(Format(got.Point))
			require.NoError(t, err)
			assert.Equal(t, got.Point, again.Point)
		}
	}

	assert.Equal(t, "38.98 N 77.11 W", Format(spatial.Point{Lat: 38.98, Lng: -77.11}))
}

func TestCascadeFirstMatchWins(t *testing.T) {
	// matches both glyph-pair and decimal-pair
	lat, lon, rule, err := twoTokenRules.Apply("57.02, -111.55")
	require.NoError(t, err)
	assert.Equal(t, "glyph-pair", rule.Name)
	assert.Equal(t, "57.02", lat)
	assert.Equal(t, "-111.55", lon)

	_, _, rule, err = twoTokenRules.Apply("nothing here")
	require.ErrorIs(t, err, ErrNoMatch)
	assert.Nil(t, rule)
}

func TestFamiliesHaveUniqueRuleNames(t *testing.T) {
	seen := map[string]string{}

	for family, rules := range Families() {
		require.NotEmpty(t, rules, family)

		for _, r := range rules {
			other, dup := seen[r.Name]
			assert.False(t, dup, "rule %q in %s and %s", r.Name, family, other)
			seen[r.Name] = family
		}
	}
}

func TestFailureKindString(t *testing.T) {
	assert.Equal(t, "missing", FailMissing.String())
	assert.Equal(t, "out-of-range", FailOutOfRange.String())
	assert.Equal(t, "FailureKind(99)", FailureKind(99).String())
}
