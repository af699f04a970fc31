// Copyright 2025 The MetaGeo Authors
// SPDX-License-Identifier: Apache-2.0

package gazetteer

import (
	"strings"

	"github.com/metageo/metageo/spatial"
)

// MatchKind tells how precise a resolved location is.
type MatchKind int

const (
	// MatchExact a place key matched.
	MatchExact MatchKind = iota
	// MatchCountryOnly only the country could be identified.
	MatchCountryOnly
)

func (k MatchKind) String() string {
	if k == MatchCountryOnly {
		return "country-only"
	}

	return "exact"
}

// Match is a resolved location.
type Match struct {
	Point spatial.Point `json:"point"`
	Kind  MatchKind     `json:"-"`
	// Key is the index key that matched.
	Key string `json:"key"`
}

// Index is the immutable, filtered gazetteer. It is safe for concurrent use.
type Index struct {
	entries map[string]spatial.Point
}

// NewIndex wraps an already filtered key to coordinate map.
func NewIndex(entries map[string]spatial.Point) *Index {
	if entries == nil {
		entries = map[string]spatial.Point{}
	}

	return &Index{entries: entries}
}

// Len returns the number of keys.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Lookup returns the coordinate stored under key.
func (ix *Index) Lookup(key string) (spatial.Point, bool) {
	p, ok := ix.entries[key]

	return p, ok
}

// Each calls fn for every entry, in no particular order, until fn returns false.
func (ix *Index) Each(fn func(key string, p spatial.Point) bool) {
	for k, p := range ix.entries {
		if !fn(k, p) {
			return
		}
	}
}

// Unspecified is used by submitters in place of a place name.
const Unspecified = "Unspecified"

type resolver struct {
	ix *Index
}

func (r resolver) try(key string, kind MatchKind) (Match, bool) {
	if key == "" {
		return Match{}, false
	}

	p, ok := r.ix.entries[key]
	if !ok {
		return Match{}, false
	}

	return Match{Point: p, Kind: kind, Key: key}, true
}

// Resolve maps a free-text "Country: Place" location to a coordinate, trying
// candidate keys from the most specific to the country alone. Ambiguous names
// never made it into the index, so they miss like unknown ones.
func (ix *Index) Resolve(text string) (Match, bool) {
	r := resolver{ix: ix}

	text = strings.TrimSpace(text)
	if text == "" {
		return Match{}, false
	}

	if m, ok := r.try(text, MatchExact); ok {
		return m, true
	}

	country, place, _ := strings.Cut(text, ":")
	country = strings.TrimSpace(country)
	place = strings.TrimSpace(place)

	if place != "" {
		if m, ok := r.try(country+":"+place, MatchExact); ok {
			return m, true
		}
	}

	if place == country {
		if m, ok := r.try(country+":", MatchCountryOnly); ok {
			return m, true
		}
	}

	country = CanonicalCountry(country)

	if place == Unspecified {
		place = ""
	}

	if place != "" {
		if m, ok := r.resolvePlace(country, place); ok {
			return m, true
		}
	}

	return r.try(country+":", MatchCountryOnly)
}

func (r resolver) resolvePlace(country, place string) (Match, bool) {
	candidates := []string{
		place,
		country + ":" + place,
	}

	if country == "China" {
		candidates = append(candidates, country+":"+place+" Shi")
	}

	if strings.Contains(place, ",") {
		parts := splitTrim(place, ",")
		candidates = append(candidates,
			country+":"+parts[0],
			parts[len(parts)-1],
		)

		if country == "United States" && len(parts) > 1 {
			candidates = append(candidates, country+":"+parts[len(parts)-1]+","+parts[0])
		}
	}

	if strings.Contains(place, ":") {
		parts := splitTrim(place, ":")
		candidates = append(candidates,
			country+":"+parts[0],
			parts[len(parts)-1],
		)
	}

	for _, key := range candidates {
		if m, ok := r.try(key, MatchExact); ok {
			return m, true
		}
	}

	return Match{}, false
}

func splitTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	return parts
}
