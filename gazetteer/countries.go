// Copyright 2025 The MetaGeo Authors
// SPDX-License-Identifier: Apache-2.0

package gazetteer

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// countryOverrides seed the code to name map before countryInfo.txt is read.
var countryOverrides = map[string]string{
	"USA": "United States",
	"UK":  "United Kingdom",
	"UAE": "United Arab Emirates",
}

// LoadCountryCodes reads a GeoNames countryInfo.txt: column 0 is the ISO
// code and column 4 the display name. File rows overwrite the built-in
// overrides.
func LoadCountryCodes(r io.Reader) (map[string]string, error) {
	ret := make(map[string]string, 256)
	for code, name := range countryOverrides {
		ret[code] = name
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r\n")
		if line == "" || line[0] == '#' {
			continue
		}

		cols := strings.Split(line, "\t")
		if len(cols) < 5 {
			continue
		}

		code, name := strings.TrimSpace(cols[0]), strings.TrimSpace(cols[4])
		if code == "" || name == "" {
			continue
		}

		ret[code] = name
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading country codes: %w", err)
	}

	return ret, nil
}

// countryAliases map the country spellings found in sample metadata to the
// GeoNames display name.
var countryAliases = map[string]string{
	"US":                         "United States",
	"USA":                        "United States",
	"U.S.":                       "United States",
	"U.S.A.":                     "United States",
	"United States of America":   "United States",
	"UK":                         "United Kingdom",
	"U.K.":                       "United Kingdom",
	"Great Britain":              "United Kingdom",
	"Britain":                    "United Kingdom",
	"Korea":                      "South Korea",
	"Republic of Korea":          "South Korea",
	"Korea, Republic of":         "South Korea",
	"Russian Federation":         "Russia",
	"Viet Nam":                   "Vietnam",
	"Czech Republic":             "Czechia",
	"The Netherlands":            "Netherlands",
	"Holland":                    "Netherlands",
	"PRC":                        "China",
	"P.R. China":                 "China",
	"People's Republic of China": "China",
	"UAE":                        "United Arab Emirates",
}

// CanonicalCountry returns the gazetteer spelling of a country name.
func CanonicalCountry(name string) string {
	if c, ok := countryAliases[name]; ok {
		return c
	}

	return name
}

var usStates = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas",
	"CA": "California", "CO": "Colorado", "CT": "Connecticut", "DE": "Delaware",
	"FL": "Florida", "GA": "Georgia", "HI": "Hawaii", "ID": "Idaho",
	"IL": "Illinois", "IN": "Indiana", "IA": "Iowa", "KS": "Kansas",
	"KY": "Kentucky", "LA": "Louisiana", "ME": "Maine", "MD": "Maryland",
	"MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota", "MS": "Mississippi",
	"MO": "Missouri", "MT": "Montana", "NE": "Nebraska", "NV": "Nevada",
	"NH": "New Hampshire", "NJ": "New Jersey", "NM": "New Mexico", "NY": "New York",
	"NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio", "OK": "Oklahoma",
	"OR": "Oregon", "PA": "Pennsylvania", "RI": "Rhode Island", "SC": "South Carolina",
	"SD": "South Dakota", "TN": "Tennessee", "TX": "Texas", "UT": "Utah",
	"VT": "Vermont", "VA": "Virginia", "WA": "Washington", "WV": "West Virginia",
	"WI": "Wisconsin", "WY": "Wyoming",
	"DC": "Washington DC",
}

var chCantons = map[string]string{
	"ZH": "Zürich", "BE": "Bern", "LU": "Luzern", "UR": "Uri",
	"SZ": "Schwyz", "OW": "Obwalden", "NW": "Nidwalden", "GL": "Glarus",
	"ZG": "Zug", "FR": "Fribourg", "SO": "Solothurn", "BS": "Basel-Stadt",
	"BL": "Basel-Landschaft", "SH": "Schaffhausen", "AR": "Appenzell Ausserrhoden",
	"AI": "Appenzell Innerrhoden", "SG": "St. Gallen", "GR": "Graubünden",
	"AG": "Aargau", "TG": "Thurgau", "TI": "Ticino", "VD": "Vaud",
	"VS": "Valais", "NE": "Neuchâtel", "GE": "Geneva", "JU": "Jura",
}

// RegionLabel returns the human readable name of an admin1 code, or the code
// itself when none is known.
func RegionLabel(countryCode, admin1 string) string {
	switch countryCode {
	case "US":
		if s, ok := usStates[admin1]; ok {
			return s
		}
	case "CH":
		if s, ok := chCantons[admin1]; ok {
			return s
		}
	case "AU":
		return strings.TrimPrefix(admin1, "State of ")
	}

	return admin1
}
