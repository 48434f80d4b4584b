package api

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tmarques/ivao-stats/charts"
	"github.com/tmarques/ivao-stats/classifier"
	"github.com/tmarques/ivao-stats/collector"
	"github.com/tmarques/ivao-stats/consolidation"
	"github.com/tmarques/ivao-stats/models"
)

// Consolidator is the consolidation facade the handlers serve from.
type Consolidator interface {
	Live() (*models.Statistics, error)
	Statistics(w consolidation.Window) (*models.Statistics, error)
	SessionMinutes(callsigns []string) map[string]int
}

// ChartService produces chart series and cached rendered artifacts.
type ChartService interface {
	Series(t charts.WindowType) ([]string, []int, []int, error)
	Generate(t charts.WindowType, output, colorPrimary, colorATC string) (string, error)
}

// CollectorStats exposes the collection counters.
type CollectorStats interface {
	GetStats() collector.CollectionStats
}

// PrefixConfig reads and replaces the country prefixes at runtime.
type PrefixConfig interface {
	Prefixes() classifier.Prefixes
	SetPrefixes(prefixes []string)
}

// NewRouter creates and configures a new router with all API endpoints.
func NewRouter(h *Handlers) *mux.Router {
	r := mux.NewRouter()
	r.Use(Logging)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/statistics/live", h.GetLiveStatistics).Methods("GET")
	api.HandleFunc("/statistics/{window}", h.GetWindowStatistics).Methods("GET")
	api.HandleFunc("/sessions", h.GetSessionMinutes).Methods("GET")
	api.HandleFunc("/charts/{type}/series", h.GetChartSeries).Methods("GET")
	api.HandleFunc("/charts/{type}", h.GetChart).Methods("GET")
	api.HandleFunc("/collector/stats", h.GetCollectorStats).Methods("GET")
	api.HandleFunc("/config/prefixes", h.GetPrefixes).Methods("GET")
	api.HandleFunc("/config/prefixes", h.UpdatePrefixes).Methods("PUT")

	r.Handle("/metrics", promhttp.Handler())

	return r
}
