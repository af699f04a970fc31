// Copyright 2025 The MetaGeo Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"database/sql"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/metageo/metageo/polish"
	"github.com/metageo/metageo/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) (*sql.DB, SampleRepository) {
	t.Helper()

	db, err := sql.Open("duckdb", "")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewSQLSampleRepository(db)
	require.NoError(t, repo.CreateSchema())

	return db, repo
}

var (
	geneva = spatial.Point{Lat: 46.20222, Lng: 6.14569}
	ames   = spatial.Point{Lat: 42.034722, Lng: -93.62}
)

func testSamples() []polish.Sample {
	return []polish.Sample{
		{ID: "SRA1", Accession: "SRS1", TaxonID: "556182", Name: "freshwater sediment metagenome", Point: geneva,
			Source: polish.SourceDirect, Date: "2012-05-00", Location: "Switzerland: Lake Geneva"},
		{ID: "SRA1", Accession: "SRS2", Point: geneva, Source: polish.SourceGazetteerExact, Date: "1990-10-30"},
		{ID: "SRA2", Accession: "SRS3", Point: ames, Source: polish.SourceDirect, Date: "0000-00-00", Location: "NA"},
	}
}

func TestSQLRepository_SaveSamples(t *testing.T) {
	db, repo := setupTestDB(t)

	require.NoError(t, repo.SaveSamples(testSamples()))

	expected, err := spatial.CellsOf(geneva)
	require.NoError(t, err)

	var (
		lat, lon         float64
		year, month, day sql.NullInt64
		source           string
		location         sql.NullString
		res1, res8       uint64
		position         spatial.Point
	)

	err = db.QueryRow(`SELECT lat, lon, position, date_year, date_month, date_day, source, location, h3_res1, h3_res8
		FROM samples WHERE accession = 'SRS1'`).
		Scan(&lat, &lon, &position, &year, &month, &day, &source, &location, &res1, &res8)
	require.NoError(t, err)
	assert.Equal(t, geneva.Lat, lat)
	assert.Equal(t, geneva.Lng, lon)
	assert.Equal(t, geneva, position)
	assert.Equal(t, int64(2012), year.Int64)
	assert.Equal(t, int64(5), month.Int64)
	assert.False(t, day.Valid)
	assert.Equal(t, "direct-parse", source)
	assert.Equal(t, "Switzerland: Lake Geneva", location.String)
	assert.Equal(t, uint64(expected.At(1)), res1)
	assert.Equal(t, uint64(expected.At(8)), res8)

	err = db.QueryRow(`SELECT date_year, date_month, location FROM samples WHERE accession = 'SRS3'`).
		Scan(&year, &month, &location)
	require.NoError(t, err)
	assert.False(t, year.Valid)
	assert.False(t, month.Valid)
	assert.False(t, location.Valid)

	// saving again replaces by accession
	require.NoError(t, repo.SaveSamples(testSamples()[:1]))

	var stored, distinct int
	require.NoError(t, db.QueryRow(`SELECT count(*), count(DISTINCT accession) FROM samples`).Scan(&stored, &distinct))
	assert.Equal(t, 3, stored)
	assert.Equal(t, 3, distinct)
}

func TestSQLRepository_SaveSamplesRejectsInvalidPoint(t *testing.T) {
	db, repo := setupTestDB(t)

	samples := testSamples()
	samples[1].Point = spatial.Point{Lat: 91}

	require.Error(t, repo.SaveSamples(samples))

	var n int
	require.NoError(t, db.QueryRow(`SELECT count(*) FROM samples`).Scan(&n))
	assert.Zero(t, n, "transaction must roll back")
}

func TestSQLRepository_Summary(t *testing.T) {
	_, repo := setupTestDB(t)

	empty, err := repo.Summary()
	require.NoError(t, err)
	assert.Zero(t, empty.Samples)

	require.NoError(t, repo.SaveSamples(testSamples()))

	got, err := repo.Summary()
	require.NoError(t, err)
	assert.Equal(t, 3, got.Samples)
	assert.Equal(t, map[string]int{"direct-parse": 2, "gazetteer-exact": 1}, got.BySource)
	assert.Equal(t, 1990, got.FirstYear)
	assert.Equal(t, 2012, got.LastYear)
	assert.Equal(t, 2, got.Cells)
}

func TestSQLRepository_TopCells(t *testing.T) {
	_, repo := setupTestDB(t)
	require.NoError(t, repo.SaveSamples(testSamples()))

	cells, err := repo.TopCells(5, 10)
	require.NoError(t, err)
	require.Len(t, cells, 2)

	want, _ := spatial.CellsOf(geneva)
	assert.Equal(t, want.At(5), cells[0].Cell)
	assert.Equal(t, 2, cells[0].Samples)
	assert.InDelta(t, geneva.Lat, cells[0].Center.Lat, 1e-9)

	_, err = repo.TopCells(9, 10)
	require.Error(t, err)
}

func TestSink(t *testing.T) {
	_, repo := setupTestDB(t)

	sink := NewSink(repo, 2)
	for _, s := range testSamples() {
		require.NoError(t, sink.Add(s))
	}

	assert.Equal(t, 2, sink.Saved())
	require.NoError(t, sink.Flush())
	assert.Equal(t, 3, sink.Saved())

	got, err := repo.Summary()
	require.NoError(t, err)
	assert.Equal(t, 3, got.Samples)
}
