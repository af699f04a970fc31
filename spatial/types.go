// Copyright 2025 The MetaGeo Authors
// SPDX-License-Identifier: Apache-2.0

// Package spatial holds the coordinate value shared by the normalizers.
package spatial

import (
	"fmt"
	"math"
	"strconv"
)

// Point is a signed decimal-degree coordinate. Hemisphere signs are always
// applied before a Point is built.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the point lies within [-90,90] x [-180,180].
func (p Point) Valid() bool {
	return !math.IsNaN(p.Lat) && !math.IsNaN(p.Lng) &&
		p.Lat >= -90 && p.Lat <= 90 &&
		p.Lng >= -180 && p.Lng <= 180
}

// String returns the WKT representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("POINT(%s %s)", FormatDegrees(p.Lng), FormatDegrees(p.Lat))
}

// FormatDegrees renders a degree value with the shortest exact representation.
func FormatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Scan implements sql.Scanner, reading the WKT written by String.
func (p *Point) Scan(value any) error {
	if value == nil {
		p.Lat, p.Lng = 0, 0

		return nil
	}

	switch v := value.(type) {
	case string:
		return p.scanWKT(v)
	case []byte:
		return p.scanWKT(string(v))
	case map[string]any:
		x, okX := v["x"].(float64)
		y, okY := v["y"].(float64)

		if !okX || !okY {
			return fmt.Errorf("spatial: invalid map for point: expected 'x' and 'y' float64 fields, got %+v", v)
		}

		p.Lng = x
		p.Lat = y

		return nil
	default:
		return fmt.Errorf("spatial: unsupported type for Point scan: %T", value)
	}
}

func (p *Point) scanWKT(s string) error {
	// both "POINT(x y)" and duckdb's "POINT (x y)"
	if _, err := fmt.Sscanf(s, "POINT(%g %g)", &p.Lng, &p.Lat); err == nil {
		return nil
	}

	_, err := fmt.Sscanf(s, "POINT (%g %g)", &p.Lng, &p.Lat)

	return err
}
