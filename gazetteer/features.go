// Copyright 2025 The MetaGeo Authors
// SPDX-License-Identifier: Apache-2.0

package gazetteer

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Feature codes with special meaning while building.
const (
	FeatureCountry = "A.PCLI" // independent political entity
	FeatureCapital = "P.PPLC" // capital of a political entity
)

var featureClasses = map[string]string{
	"A.": "administrative definition",
	"H.": "hydrological type",
	"L.": "land use type",
	"P.": "populated type",
	"R.": "road type",
	"S.": "spot building type",
	"T.": "terrain type",
	"U.": "undersea type",
	"V.": "vegetation type",
}

// LoadFeatureCodes reads featureCodes_en.txt ("class.code\tname\tdescription")
// and returns code to name, including the bare feature classes.
func LoadFeatureCodes(r io.Reader) (map[string]string, error) {
	ret := make(map[string]string, 700)
	for k, v := range featureClasses {
		ret[k] = v
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || line[0] == '#' {
			continue
		}

		cols := strings.Split(line, "\t")
		if len(cols) < 2 {
			continue
		}

		ret[cols[0]] = cols[1]
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading feature codes: %w", err)
	}

	return ret, nil
}
