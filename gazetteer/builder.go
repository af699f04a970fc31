// Copyright 2025 The MetaGeo Authors
// SPDX-License-Identifier: Apache-2.0

// Package gazetteer builds a place name to coordinate index from a GeoNames
// dump and resolves free-text sample locations against it.
//
// Only names that map to a single coordinate across the whole dump are kept.
// Alternate names are kept when every registration points at the same
// surviving canonical name. Capitals add country-level entries ("US:",
// "United States:") that bypass the filter.
package gazetteer

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/metageo/metageo/spatial"
	"github.com/metageo/metageo/utils/progress"
	"github.com/metageo/metageo/utils/textutils"
)

// Place dump column positions.
const (
	colName      = 1
	colASCIIName = 2
	colAlternate = 3
	colLat       = 4
	colLon       = 5
	colClass     = 6
	colCode      = 7
	colCountry   = 8
	colAdmin1    = 10
)

// DefaultRegionCountries are the countries whose admin1 regions become part
// of the keys ("United States:TX,Austin").
var DefaultRegionCountries = []string{"US", "CH"}

// Options tune the gazetteer build.
type Options struct {
	// RegionCountries lists ISO codes that get "Country:Region,Place" keys.
	// Nil means DefaultRegionCountries.
	RegionCountries []string
	// Progress shows a progress bar when stderr is a terminal.
	Progress bool
}

// Record is one row of the place dump.
type Record struct {
	Name           string
	ASCIIName      string
	AlternateNames []string
	Lat, Lon       string
	FeatureClass   string
	FeatureCode    string
	CountryCode    string
	Admin1         string
}

// Feature returns the combined "class.code" feature code.
func (r *Record) Feature() string {
	return r.FeatureClass + "." + r.FeatureCode
}

// BuildStats summarizes a gazetteer build.
type BuildStats struct {
	Rows         int
	Skipped      int // malformed rows
	NoCoordinate int
	NoCountry    int

	UniquePlaces         int
	RedundantPlaces      int
	UsableAliases        int
	RedundantAliases     int
	AliasesWithoutUnique int
	ShadowedAliases      int
	TopLevel             int

	Features map[string]int
	Regions  map[string]int
}

// Log writes the summary lines of the build.
func (s *BuildStats) Log() {
	log.Printf("%s place rows, %d malformed, %d without coordinates, %d without country",
		textutils.FormatInt(int64(s.Rows)), s.Skipped, s.NoCoordinate, s.NoCountry)
	log.Printf("%s unique, %s redundant places",
		textutils.FormatInt(int64(s.UniquePlaces)), textutils.FormatInt(int64(s.RedundantPlaces)))
	log.Printf("%s usable alternates, %s redundant alternates, %s alternates to non-unique main, %s shadowed",
		textutils.FormatInt(int64(s.UsableAliases)), textutils.FormatInt(int64(s.RedundantAliases)),
		textutils.FormatInt(int64(s.AliasesWithoutUnique)), textutils.FormatInt(int64(s.ShadowedAliases)))
	log.Printf("%d top level annotations", s.TopLevel)
}

// WriteFeatures writes "feature\tname\tcount" for every feature seen, sorted.
func (s *BuildStats) WriteFeatures(w io.Writer, names map[string]string) error {
	for _, f := range slices.Sorted(maps.Keys(s.Features)) {
		name, ok := names[f]
		if !ok {
			name = "-"
		}

		if _, err := fmt.Fprintf(w, "%s\t%s\t%d\n", f, name, s.Features[f]); err != nil {
			return err
		}
	}

	return nil
}

// WriteRegions writes "Country:admin1\tcount" for every region seen, sorted.
func (s *BuildStats) WriteRegions(w io.Writer) error {
	for _, r := range slices.Sorted(maps.Keys(s.Regions)) {
		if _, err := fmt.Fprintf(w, "%s\t%d\n", r, s.Regions[r]); err != nil {
			return err
		}
	}

	return nil
}

// interner stores every distinct string once; id 0 is "".
type interner struct {
	ids  map[string]uint32
	strs []string
}

func newInterner() interner {
	return interner{ids: map[string]uint32{"": 0}, strs: []string{""}}
}

func (in *interner) id(s string) uint32 {
	if id, ok := in.ids[s]; ok {
		return id
	}

	id := uint32(len(in.strs))
	in.ids[s] = id
	in.strs = append(in.strs, s)

	return id
}

// nameKey is a place key split into a shared prefix ("", "Country:" or
// "Country:Region,") and a name, so country-prefixed keys cost two ids
// instead of a new string.
type nameKey struct {
	prefix, name uint32
}

type placeAcc struct {
	p         spatial.Point
	ambiguous bool
}

type aliasAcc struct {
	target     nameKey
	conflicted bool
}

// Builder accumulates place dump rows. It is not safe for concurrent use and
// cannot be reused after Build.
type Builder struct {
	countries map[string]string
	regions   map[string]bool

	strs     interner
	places   map[nameKey]placeAcc
	aliases  map[nameKey]aliasAcc
	topLevel map[string]spatial.Point

	opts  Options
	stats BuildStats
}

// NewBuilder returns a builder resolving country codes with countries.
func NewBuilder(countries map[string]string, opts Options) *Builder {
	regionCountries := opts.RegionCountries
	if regionCountries == nil {
		regionCountries = DefaultRegionCountries
	}

	regions := make(map[string]bool, len(regionCountries))
	for _, cc := range regionCountries {
		regions[cc] = true
	}

	return &Builder{
		countries: countries,
		regions:   regions,
		strs:      newInterner(),
		places:    make(map[nameKey]placeAcc),
		aliases:   make(map[nameKey]aliasAcc),
		topLevel:  make(map[string]spatial.Point),
		opts:      opts,
		stats: BuildStats{
			Features: make(map[string]int),
			Regions:  make(map[string]int),
		},
	}
}

// LoadPlaces streams a GeoNames place dump (allCountries.txt layout).
func (b *Builder) LoadPlaces(r io.Reader) error {
	var bar *progress.Bar
	if b.opts.Progress {
		bar = progress.New(-1, "loading places")
		defer bar.Finish()
	}

	scanner := bufio.NewScanner(r)
	// alternate names run to several kilobytes
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	n := 0
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || line[0] == '#' {
			continue
		}

		n++
		if n%10000 == 0 {
			bar.Add(10000)
		}

		rec, ok := parseRecord(line)
		if !ok {
			b.stats.Rows++
			b.stats.Skipped++

			continue
		}

		b.Add(rec)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading place dump: %w", err)
	}

	return nil
}

func parseRecord(line string) (Record, bool) {
	cols := strings.Split(line, "\t")
	if len(cols) <= colAdmin1 {
		return Record{}, false
	}

	var alternates []string
	if cols[colAlternate] != "" {
		alternates = strings.Split(cols[colAlternate], ",")
	}

	return Record{
		Name:           cols[colName],
		ASCIIName:      cols[colASCIIName],
		AlternateNames: alternates,
		Lat:            cols[colLat],
		Lon:            cols[colLon],
		FeatureClass:   cols[colClass],
		FeatureCode:    cols[colCode],
		CountryCode:    cols[colCountry],
		Admin1:         cols[colAdmin1],
	}, true
}

// Add registers one place dump row.
func (b *Builder) Add(rec Record) {
	b.stats.Rows++

	feature := rec.Feature()
	b.stats.Features[feature]++

	if rec.CountryCode == "" {
		b.stats.NoCountry++
	}

	countryName, hasCountry := b.countries[rec.CountryCode]
	if hasCountry {
		b.stats.Regions[countryName+":"+rec.Admin1]++
	}

	alternates := dedupe(rec.AlternateNames)

	if feature == FeatureCountry {
		// no usable location, only teaches other spellings of the country
		if hasCountry {
			target := nameKey{name: b.strs.id(countryName)}
			b.alias(nameKey{name: b.strs.id(rec.ASCIIName)}, target)

			for _, alt := range alternates {
				b.alias(nameKey{name: b.strs.id(alt)}, target)
			}
		}

		return
	}

	p, ok := parsePoint(rec.Lat, rec.Lon)
	if !ok {
		b.stats.NoCoordinate++

		return
	}

	asciiID := b.strs.id(rec.ASCIIName)
	unicodeID := b.strs.id(rec.Name)
	altIDs := make([]uint32, len(alternates))

	for i, alt := range alternates {
		altIDs[i] = b.strs.id(alt)
	}

	b.register(0, asciiID, unicodeID, altIDs, p)

	if feature == FeatureCapital {
		if rec.CountryCode != "" {
			b.topLevel[rec.CountryCode+":"] = p
		}

		if hasCountry {
			b.topLevel[countryName+":"] = p
			b.topLevel[countryName+":"+rec.ASCIIName] = p
		}
	}

	if !hasCountry {
		return
	}

	b.register(b.strs.id(countryName+":"), asciiID, unicodeID, altIDs, p)

	if rec.Admin1 == "" || !b.regions[rec.CountryCode] {
		return
	}

	admKey := nameKey{prefix: b.strs.id(countryName + ":" + rec.Admin1 + ","), name: asciiID}
	b.place(admKey, p)

	labelPrefix := b.strs.id(countryName + ":" + RegionLabel(rec.CountryCode, rec.Admin1) + ",")
	if labelPrefix != admKey.prefix {
		b.place(nameKey{prefix: labelPrefix, name: asciiID}, p)
	}

	b.alias(nameKey{prefix: labelPrefix, name: unicodeID}, admKey)

	for _, id := range altIDs {
		b.alias(nameKey{prefix: labelPrefix, name: id}, admKey)
	}
}

// register adds prefix+ascii as a place and prefix+unicode/alternates as
// aliases of it.
func (b *Builder) register(prefix, asciiID, unicodeID uint32, altIDs []uint32, p spatial.Point) {
	key := nameKey{prefix: prefix, name: asciiID}
	b.place(key, p)
	b.alias(nameKey{prefix: prefix, name: unicodeID}, key)

	for _, id := range altIDs {
		b.alias(nameKey{prefix: prefix, name: id}, key)
	}
}

func (b *Builder) place(k nameKey, p spatial.Point) {
	a, ok := b.places[k]
	if !ok {
		b.places[k] = placeAcc{p: p}

		return
	}

	if !a.ambiguous && a.p != p {
		a.ambiguous = true
		b.places[k] = a
	}
}

func (b *Builder) alias(k, target nameKey) {
	if k.name == 0 {
		return
	}

	a, ok := b.aliases[k]
	if !ok {
		b.aliases[k] = aliasAcc{target: target}

		return
	}

	if !a.conflicted && a.target != target {
		a.conflicted = true
		b.aliases[k] = a
	}
}

func (b *Builder) key(k nameKey) string {
	return b.strs.strs[k.prefix] + b.strs.strs[k.name]
}

// Build applies the uniqueness filter, merges the country-level entries and
// releases the accumulators.
func (b *Builder) Build() *Index {
	entries := make(map[string]spatial.Point, len(b.places)/2)

	for k, a := range b.places {
		if a.ambiguous {
			b.stats.RedundantPlaces++

			continue
		}

		b.stats.UniquePlaces++
		entries[b.key(k)] = a.p
	}

	for k, a := range b.aliases {
		if a.conflicted {
			b.stats.RedundantAliases++

			continue
		}

		target, ok := b.places[a.target]
		if !ok || target.ambiguous {
			b.stats.AliasesWithoutUnique++

			continue
		}

		if _, canonical := b.places[k]; canonical {
			// an ascii name, unique or not, is never replaced by an alias
			b.stats.ShadowedAliases++

			continue
		}

		b.stats.UsableAliases++
		entries[b.key(k)] = target.p
	}

	for k, p := range b.topLevel {
		entries[k] = p
	}

	b.stats.TopLevel = len(b.topLevel)

	b.places = nil
	b.aliases = nil
	b.topLevel = nil
	b.strs = interner{}

	return NewIndex(entries)
}

// Stats returns the counters collected so far.
func (b *Builder) Stats() *BuildStats {
	return &b.stats
}

// Build loads both reference tables and returns the filtered index.
func Build(countryCodes, placeDump io.Reader, opts Options) (*Index, *BuildStats, error) {
	countries, err := LoadCountryCodes(countryCodes)
	if err != nil {
		return nil, nil, err
	}

	b := NewBuilder(countries, opts)
	if err := b.LoadPlaces(placeDump); err != nil {
		return nil, nil, err
	}

	ix := b.Build()

	return ix, b.Stats(), nil
}

func parsePoint(lat, lon string) (spatial.Point, bool) {
	if lat == "" || lon == "" {
		return spatial.Point{}, false
	}

	y, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return spatial.Point{}, false
	}

	x, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return spatial.Point{}, false
	}

	p := spatial.Point{Lat: y, Lng: x}

	return p, p.Valid()
}

func dedupe(names []string) []string {
	if len(names) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(names))
	ret := make([]string, 0, len(names))

	for _, n := range names {
		if n == "" {
			continue
		}

		if _, ok := seen[n]; ok {
			continue
		}

		seen[n] = struct{}{}
		ret = append(ret, n)
	}

	return ret
}
