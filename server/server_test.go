// Copyright 2025 The MetaGeo Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/gin-gonic/gin"
	"github.com/metageo/metageo/gazetteer"
	"github.com/metageo/metageo/polish"
	"github.com/metageo/metageo/spatial"
	"github.com/metageo/metageo/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lakeGeneva = spatial.Point{Lat: 46.45, Lng: 6.53}

func setupServerTest(t *testing.T, repo store.SampleRepository) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ix := gazetteer.NewIndex(map[string]spatial.Point{
		"Switzerland:Lake Geneva": lakeGeneva,
		"Switzerland:":            {Lat: 46.94809, Lng: 7.44744},
	})

	return NewServer(ix, repo, Options{}).Router()
}

func get(t *testing.T, router *gin.Engine, path string, query url.Values) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, path+"?"+query.Encode(), nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())

	return w, body
}

func TestParseCoordsAPI(t *testing.T) {
	router := setupServerTest(t, nil)

	w, body := get(t, router, "/api/coords", url.Values{"raw": {"38.98 N 77.11 W"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "four-token", body["rule"])
	assert.Equal(t, map[string]any{"lat": 38.98, "lng": -77.11}, body["point"])

	w, body = get(t, router, "/api/coords", url.Values{"raw": {"42?02?05?N 93?37?12?W"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["dms"])

	w, body = get(t, router, "/api/coords", url.Values{"raw": {"NOT APPLICABLE"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "missing", body["kind"])

	w, body = get(t, router, "/api/coords", url.Values{"raw": {"95 N 10 E"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "out-of-range", body["kind"])
	assert.Equal(t, "four-token", body["rule"])

	w, _ = get(t, router, "/api/coords", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNormalizeDateAPI(t *testing.T) {
	router := setupServerTest(t, nil)

	w, body := get(t, router, "/api/dates", url.Values{"raw": {"30-Oct-1990"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1990-10-30", body["date"])
	assert.Equal(t, "day-month-year", body["layout"])
	assert.Equal(t, "10", body["month"])
	assert.Equal(t, false, body["unknown"])

	_, body = get(t, router, "/api/dates", url.Values{"raw": {"garbage"}})
	assert.Equal(t, "0000-00-00", body["date"])
	assert.Equal(t, true, body["unknown"])
}

func TestResolveLocationAPI(t *testing.T) {
	router := setupServerTest(t, nil)

	w, body := get(t, router, "/api/locations", url.Values{"q": {"Switzerland: Lake Geneva"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Switzerland:Lake Geneva", body["key"])
	assert.Equal(t, "exact", body["kind"])

	_, body = get(t, router, "/api/locations", url.Values{"q": {"Switzerland: Matterhorn"}})
	assert.Equal(t, "country-only", body["kind"])

	w, _ = get(t, router, "/api/locations", url.Values{"q": {"Atlantis"}})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = get(t, router, "/api/locations", url.Values{"q": {" "}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResolveLocationWithoutGazetteer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewServer(nil, nil, Options{}).Router()

	w, _ := get(t, router, "/api/locations", url.Values{"q": {"Switzerland"}})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w, _ = get(t, router, "/api/samples/summary", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestPolishRowsAPI(t *testing.T) {
	router := setupServerTest(t, nil)

	rows := strings.Join([]string{
		"SRA1\ta\tSRS1\t1\tsoil metagenome\tVOID\t2012\tsoil\tSwitzerland: Lake Geneva\tsoil metagenome",
		"SRA2\ta\tSRS2\t1\tsoil metagenome\tNA\tNA\tsoil\tNA\tsoil metagenome",
		"",
		"SRA3\ta\tSRS3\t1\tsoil metagenome\t46.512 N 6.587 E\tMay-2012\tsoil\tNA\tsoil metagenome",
	}, "\n")

	req, err := http.NewRequest(http.MethodPost, "/api/rows", strings.NewReader(rows))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Outcomes []rowOutcome `json:"outcomes"`
		Total    int          `json:"total"`
		Resolved int          `json:"resolved"`
		Dropped  int          `json:"dropped"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, 3, body.Total)
	assert.Equal(t, 2, body.Resolved)
	assert.Equal(t, 1, body.Dropped)
	require.Len(t, body.Outcomes, 3)

	assert.Equal(t, "gazetteer-exact", body.Outcomes[0].Source)
	assert.Equal(t, &lakeGeneva, body.Outcomes[0].Point)
	assert.Equal(t, "2012-00-00", body.Outcomes[0].Date)
	assert.Contains(t, body.Outcomes[0].Row, "\t46.45\t6.53\t2012\t00\t00\t")

	assert.Equal(t, "missing-field", body.Outcomes[1].Reason)
	assert.Equal(t, 4, body.Outcomes[2].Line)
	assert.Equal(t, "direct-parse", body.Outcomes[2].Source)
}

func TestSamplesSummaryAPI(t *testing.T) {
	db, err := sql.Open("duckdb", "")
	require.NoError(t, err)
	defer db.Close()

	repo := store.NewSQLSampleRepository(db)
	require.NoError(t, repo.CreateSchema())
	require.NoError(t, repo.SaveSamples([]polish.Sample{
		{ID: "SRA1", Accession: "SRS1", Point: lakeGeneva, Source: polish.SourceGazetteerExact, Date: "2012-00-00"},
	}))

	router := setupServerTest(t, repo)

	w, body := get(t, router, "/api/samples/summary", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), body["samples"])
	assert.Equal(t, map[string]any{"gazetteer-exact": float64(1)}, body["by_source"])
}

func TestMetricsEndpoint(t *testing.T) {
	router := setupServerTest(t, nil)

	get(t, router, "/api/coords", url.Values{"raw": {"38.98 N 77.11 W"}})

	req, err := http.NewRequest(http.MethodGet, "/metrics", nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `metageo_coord_parses_total{result="four-token"}`)
	assert.Contains(t, w.Body.String(), `metageo_requests_total{route="/api/coords",status="200"}`)
}
