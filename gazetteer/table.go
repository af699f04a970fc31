// Copyright 2025 The MetaGeo Authors
// SPDX-License-Identifier: Apache-2.0

package gazetteer

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/metageo/metageo/spatial"
)

// WriteTable writes the index as "key\tlat\tlon" lines sorted by key, the
// format ReadTable loads.
func WriteTable(w io.Writer, ix *Index) error {
	bw := bufio.NewWriter(w)

	for _, k := range slices.Sorted(maps.Keys(ix.entries)) {
		p := ix.entries[k]
		if _, err := fmt.Fprintf(bw, "%s\t%s\t%s\n", k, spatial.FormatDegrees(p.Lat), spatial.FormatDegrees(p.Lng)); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// ReadTable loads an index previously written by WriteTable.
func ReadTable(r io.Reader) (*Index, error) {
	entries := make(map[string]spatial.Point)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	n := 0
	for scanner.Scan() {
		n++

		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}

		// keys may hold tabs in theory, coordinates never do
		i := strings.LastIndexByte(line, '\t')
		if i < 0 {
			return nil, fmt.Errorf("line %d: expected key, lat and lon", n)
		}

		j := strings.LastIndexByte(line[:i], '\t')
		if j < 0 {
			return nil, fmt.Errorf("line %d: expected key, lat and lon", n)
		}

		lat, err := strconv.ParseFloat(line[j+1:i], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad latitude: %w", n, err)
		}

		lng, err := strconv.ParseFloat(line[i+1:], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad longitude: %w", n, err)
		}

		entries[line[:j]] = spatial.Point{Lat: lat, Lng: lng}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading gazetteer table: %w", err)
	}

	return NewIndex(entries), nil
}
