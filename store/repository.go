// Copyright 2025 The MetaGeo Authors
// SPDX-License-Identifier: Apache-2.0

// Package store persists normalized samples in DuckDB, along with the H3
// cells of their coordinates for aggregation.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/metageo/metageo/dates"
	"github.com/metageo/metageo/polish"
	"github.com/metageo/metageo/spatial"
)

// SampleRepository defines the database operations on normalized samples.
type SampleRepository interface {
	// CreateSchema creates the database schema.
	CreateSchema() error
	// SaveSamples stores samples, replacing earlier rows with the same accession.
	SaveSamples(samples []polish.Sample) error
	// Summary aggregates the stored samples.
	Summary() (*Summary, error)
	// TopCells returns the most populated H3 cells at the given resolution.
	TopCells(res, limit int) ([]CellCount, error)
}

// Summary describes the stored samples.
type Summary struct {
	Samples   int            `json:"samples"`
	BySource  map[string]int `json:"by_source"`
	FirstYear int            `json:"first_year,omitempty"`
	LastYear  int            `json:"last_year,omitempty"`
	// Cells is the number of distinct H3 cells at SummaryRes.
	Cells int `json:"cells"`
}

// SummaryRes is the H3 resolution Summary counts cells at.
const SummaryRes = 4

// CellCount is the number of samples in one H3 cell.
type CellCount struct {
	Cell    int64         `json:"cell"`
	Samples int           `json:"samples"`
	Center  spatial.Point `json:"center"`
}

type sqlSampleRepository struct {
	db *sql.DB
}

// NewSQLSampleRepository returns a repository over an open duckdb handle.
func NewSQLSampleRepository(db *sql.DB) SampleRepository {
	return &sqlSampleRepository{db: db}
}

func (r *sqlSampleRepository) CreateSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS samples (
			sample_id VARCHAR NOT NULL,
			accession VARCHAR NOT NULL,
			taxon_id VARCHAR,
			scientific_name VARCHAR,
			lat DOUBLE NOT NULL,
			lon DOUBLE NOT NULL,
			position VARCHAR NOT NULL,
			source VARCHAR NOT NULL,
			date_year USMALLINT,
			date_month UTINYINT,
			date_day UTINYINT,
			isolation_source VARCHAR,
			location VARCHAR,
			sample_type VARCHAR,
			h3_res1 UBIGINT,
			h3_res2 UBIGINT,
			h3_res3 UBIGINT,
			h3_res4 UBIGINT,
			h3_res5 UBIGINT,
			h3_res6 UBIGINT,
			h3_res7 UBIGINT,
			h3_res8 UBIGINT
		);
	`)

	return err
}

// nve turns an empty or missing string into NULL.
func nve(v string) any {
	if v == "" || v == "NA" {
		return nil
	}

	return v
}

// datePart returns a non-zero date component or NULL.
func datePart(v string) any {
	n, err := strconv.Atoi(v)
	if err != nil || n == 0 {
		return nil
	}

	return n
}

func (r *sqlSampleRepository) SaveSamples(samples []polish.Sample) error {
	if len(samples) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Printf("failed to rollback sample transaction: %v", err)
		}
	}()

	del, err := tx.Prepare("DELETE FROM samples WHERE accession = ?")
	if err != nil {
		return fmt.Errorf("preparing delete: %w", err)
	}
	defer del.Close()

	stmt, err := tx.Prepare(`
		INSERT INTO samples (
			sample_id, accession, taxon_id, scientific_name,
			lat, lon, position, source,
			date_year, date_month, date_day,
			isolation_source, location, sample_type,
			h3_res1, h3_res2, h3_res3, h3_res4, h3_res5, h3_res6, h3_res7, h3_res8
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, s := range samples {
		cells, err := spatial.CellsOf(s.Point)
		if err != nil {
			return fmt.Errorf("sample %s: %w", s.Accession, err)
		}

		if _, err := del.Exec(s.Accession); err != nil {
			return fmt.Errorf("deleting sample %s: %w", s.Accession, err)
		}

		y, m, d := dates.Split(s.Date)

		if _, err := stmt.Exec(
			s.ID, s.Accession, nve(s.TaxonID), nve(s.Name),
			s.Point.Lat, s.Point.Lng, s.Point.String(), s.Source.String(),
			datePart(y), datePart(m), datePart(d),
			nve(s.IsolatedAt), nve(s.Location), nve(s.SampleType),
			uint64(cells.At(1)), uint64(cells.At(2)), uint64(cells.At(3)), uint64(cells.At(4)),
			uint64(cells.At(5)), uint64(cells.At(6)), uint64(cells.At(7)), uint64(cells.At(8)),
		); err != nil {
			return fmt.Errorf("inserting sample %s: %w", s.Accession, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing samples: %w", err)
	}

	return nil
}

func (r *sqlSampleRepository) Summary() (*Summary, error) {
	ret := &Summary{BySource: make(map[string]int)}

	var first, last sql.NullInt64

	err := r.db.QueryRow(fmt.Sprintf(`
		SELECT count(*), min(date_year), max(date_year), count(DISTINCT h3_res%d)
		FROM samples
	`, SummaryRes)).Scan(&ret.Samples, &first, &last, &ret.Cells)
	if err != nil {
		return nil, fmt.Errorf("querying summary: %w", err)
	}

	ret.FirstYear = int(first.Int64)
	ret.LastYear = int(last.Int64)

	rows, err := r.db.Query("SELECT source, count(*) FROM samples GROUP BY source")
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			source string
			n      int
		)

		if err := rows.Scan(&source, &n); err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}

		ret.BySource[source] = n
	}

	return ret, rows.Err()
}

func (r *sqlSampleRepository) TopCells(res, limit int) ([]CellCount, error) {
	if res < spatial.MinCellRes || res > spatial.MaxCellRes {
		return nil, fmt.Errorf("h3 resolution %d outside [%d, %d]", res, spatial.MinCellRes, spatial.MaxCellRes)
	}

	// res is validated above, column names cannot be bound
	rows, err := r.db.Query(fmt.Sprintf(`
		SELECT h3_res%[1]d, count(*) AS n, 'POINT(' || avg(lon) || ' ' || avg(lat) || ')'
		FROM samples
		GROUP BY h3_res%[1]d
		ORDER BY n DESC, h3_res%[1]d
		LIMIT ?
	`, res), limit)
	if err != nil {
		return nil, fmt.Errorf("querying cells: %w", err)
	}
	defer rows.Close()

	var ret []CellCount

	for rows.Next() {
		var (
			c    CellCount
			cell uint64
		)

		if err := rows.Scan(&cell, &c.Samples, &c.Center); err != nil {
			return nil, fmt.Errorf("scanning cell: %w", err)
		}

		c.Cell = int64(cell)
		ret = append(ret, c)
	}

	return ret, rows.Err()
}
