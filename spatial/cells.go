// Copyright 2025 The MetaGeo Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"fmt"

	"github.com/uber/h3-go/v4"
)

// Resolutions of the H3 cells stored along every resolved sample.
const (
	MinCellRes = 1
	MaxCellRes = 8
)

// Cells holds the H3 cell of a point for each resolution in
// [MinCellRes, MaxCellRes]; index 0 is resolution MinCellRes.
type Cells [MaxCellRes - MinCellRes + 1]int64

// At returns the cell at the given resolution, or 0 when out of range.
func (c Cells) At(res int) int64 {
	if res < MinCellRes || res > MaxCellRes {
		return 0
	}

	return c[res-MinCellRes]
}

// CellsOf computes the H3 cells covering p.
func CellsOf(p Point) (Cells, error) {
	var ret Cells

	if !p.Valid() {
		return ret, fmt.Errorf("spatial: point out of range: %s", p)
	}

	latLng := h3.NewLatLng(p.Lat, p.Lng)
	for res := MinCellRes; res <= MaxCellRes; res++ {
		cell, err := h3.LatLngToCell(latLng, res)
		if err != nil {
			return ret, fmt.Errorf("error converting to h3 cell at res %d: %w", res, err)
		}

		ret[res-MinCellRes] = int64(cell)
	}

	return ret, nil
}
