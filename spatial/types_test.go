// Copyright 2025 The MetaGeo Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointValid(t *testing.T) {
	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"origin", Point{0, 0}, true},
		{"corners", Point{-90, 180}, true},
		{"lat too big", Point{90.01, 0}, false},
		{"lng too small", Point{0, -180.5}, false},
		{"nan", Point{math.NaN(), 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.Valid())
		})
	}
}

func TestPointScan(t *testing.T) {
	p := Point{Lat: 46.512, Lng: 6.587}

	v := p.String()
	assert.Equal(t, "POINT(6.587 46.512)", v)

	var got Point
	require.NoError(t, got.Scan(v))
	assert.Equal(t, p, got)

	require.NoError(t, got.Scan([]byte("POINT (-77.11 38.98)")))
	assert.Equal(t, Point{Lat: 38.98, Lng: -77.11}, got)

	require.NoError(t, got.Scan(map[string]any{"x": 1.5, "y": 2.5}))
	assert.Equal(t, Point{Lat: 2.5, Lng: 1.5}, got)

	require.Error(t, got.Scan(42))
}

func TestCellsOf(t *testing.T) {
	cells, err := CellsOf(Point{Lat: 38.98, Lng: -77.11})
	require.NoError(t, err)

	for res := MinCellRes; res <= MaxCellRes; res++ {
		assert.NotZero(t, cells.At(res), "res %d", res)
	}

	assert.Zero(t, cells.At(0))
	assert.Zero(t, cells.At(MaxCellRes+1))

	_, err = CellsOf(Point{Lat: 120, Lng: 0})
	require.Error(t, err)
}
