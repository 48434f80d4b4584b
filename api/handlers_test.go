package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmarques/ivao-stats/charts"
	"github.com/tmarques/ivao-stats/classifier"
	"github.com/tmarques/ivao-stats/collector"
	"github.com/tmarques/ivao-stats/consolidation"
	"github.com/tmarques/ivao-stats/models"
)

type fakeConsolidator struct {
	live     *models.Statistics
	window   *models.Statistics
	lastWin  consolidation.Window
	sessions map[string]int
}

func (f *fakeConsolidator) Live() (*models.Statistics, error) { return f.live, nil }

func (f *fakeConsolidator) Statistics(w consolidation.Window) (*models.Statistics, error) {
	f.lastWin = w
	return f.window, nil
}

func (f *fakeConsolidator) SessionMinutes(callsigns []string) map[string]int {
	out := make(map[string]int, len(callsigns))
	for _, cs := range callsigns {
		out[cs] = f.sessions[cs]
	}
	return out
}

type fakeChartService struct {
	labels []string
	pilots []int
	atcs   []int
	path   string
}

func (f *fakeChartService) Series(t charts.WindowType) ([]string, []int, []int, error) {
	return f.labels, f.pilots, f.atcs, nil
}

func (f *fakeChartService) Generate(t charts.WindowType, output, colorPrimary, colorATC string) (string, error) {
	return f.path, nil
}

type fakeCollector struct{ stats collector.CollectionStats }

func (f *fakeCollector) GetStats() collector.CollectionStats { return f.stats }

type fakePrefixConfig struct{ prefixes classifier.Prefixes }

func (f *fakePrefixConfig) Prefixes() classifier.Prefixes { return f.prefixes }

func (f *fakePrefixConfig) SetPrefixes(prefixes []string) {
	f.prefixes = classifier.Prefixes(prefixes)
}

func newTestRouter(t *testing.T) (*fakeConsolidator, *fakeChartService, *fakePrefixConfig, http.Handler) {
	t.Helper()
	cons := &fakeConsolidator{sessions: map[string]int{"SCEL_TWR": 42}}
	ch := &fakeChartService{}
	cfg := &fakePrefixConfig{prefixes: classifier.Prefixes{"SC"}}
	h := &Handlers{
		Stats:     cons,
		Charts:    ch,
		Collector: &fakeCollector{stats: collector.CollectionStats{TotalSnapshots: 7}},
		Config:    cfg,
		ChartDir:  t.TempDir(),
	}
	return cons, ch, cfg, NewRouter(h)
}

func TestGetLiveStatisticsNoData(t *testing.T) {
	_, _, _, router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/statistics/live", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error": "No data found"}`, rec.Body.String())
}

func TestGetLiveStatistics(t *testing.T) {
	cons, _, _, router := newTestRouter(t)
	cons.live = &models.Statistics{TotalFlights: 3, UniquePilots: 2}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/statistics/live", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got models.Statistics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 3, got.TotalFlights)
	assert.Equal(t, 2, got.UniquePilots)
}

func TestGetWindowStatistics(t *testing.T) {
	cons, _, _, router := newTestRouter(t)
	cons.window = &models.Statistics{TotalFlights: 11}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/statistics/weekly", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, consolidation.WindowWeekly, cons.lastWin)
}

func TestGetWindowStatisticsInvalid(t *testing.T) {
	_, _, _, router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/statistics/yearly", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSessionMinutes(t *testing.T) {
	_, _, _, router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/sessions?callsigns=SCEL_TWR,SCFA_APP", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Sessions map[string]int `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 42, got.Sessions["SCEL_TWR"])
	assert.Equal(t, 0, got.Sessions["SCFA_APP"])
}

func TestGetSessionMinutesMissingParam(t *testing.T) {
	_, _, _, router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/sessions", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetChartSeries(t *testing.T) {
	_, ch, _, router := newTestRouter(t)
	ch.labels = []string{"12:00", "12:01"}
	ch.pilots = []int{5, 6}
	ch.atcs = []int{1, 1}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/charts/realtime/series", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Labels []string `json:"labels"`
		Pilots []int    `json:"pilots"`
		ATCs   []int    `json:"atcs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []string{"12:00", "12:01"}, got.Labels)
	assert.Equal(t, []int{5, 6}, got.Pilots)
	assert.Equal(t, []int{1, 1}, got.ATCs)
}

func TestGetChartInvalidType(t *testing.T) {
	_, _, _, router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/charts/hourly", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetChartNoData(t *testing.T) {
	_, _, _, router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/charts/weekly", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetChartServesFile(t *testing.T) {
	_, ch, _, router := newTestRouter(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "chart_realtime.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 fake"), 0o644))
	ch.path = path

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/charts/realtime", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
}

func TestGetCollectorStats(t *testing.T) {
	_, _, _, router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/collector/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got collector.CollectionStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(7), got.TotalSnapshots)
}

func TestPrefixRoundTrip(t *testing.T) {
	_, _, cfg, router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("PUT", "/api/config/prefixes",
		strings.NewReader(`{"prefixes": ["SA", "SU"]}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, classifier.Prefixes{"SA", "SU"}, cfg.prefixes)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/config/prefixes", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"prefixes": ["SA", "SU"]}`, rec.Body.String())
}

func TestUpdatePrefixesBadBody(t *testing.T) {
	_, _, _, router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("PUT", "/api/config/prefixes",
		strings.NewReader(`{"prefixes": []}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
