package api

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
	"github.com/tmarques/ivao-stats/charts"
	"github.com/tmarques/ivao-stats/consolidation"
)

// Handlers bundles the services the API serves from.
type Handlers struct {
	Stats     Consolidator
	Charts    ChartService
	Collector CollectorStats
	Config    PrefixConfig

	// ChartDir is where rendered chart artifacts are written.
	ChartDir string
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(map[string]string{"error": "No data found"})
}

func (h *Handlers) GetLiveStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Stats.Live()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if stats == nil {
		writeNotFound(w)
		return
	}
	writeJSON(w, stats)
}

func (h *Handlers) GetWindowStatistics(w http.ResponseWriter, r *http.Request) {
	window, ok := consolidation.ParseWindow(mux.Vars(r)["window"])
	if !ok {
		http.Error(w, "Invalid window. Must be 'daily', 'weekly', or 'monthly'", http.StatusBadRequest)
		return
	}

	stats, err := h.Stats.Statistics(window)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if stats == nil {
		writeNotFound(w)
		return
	}
	writeJSON(w, stats)
}

func (h *Handlers) GetSessionMinutes(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("callsigns")
	if raw == "" {
		http.Error(w, "Missing 'callsigns' query parameter", http.StatusBadRequest)
		return
	}

	sessions := h.Stats.SessionMinutes(strings.Split(raw, ","))
	writeJSON(w, map[string]interface{}{"sessions": sessions})
}

func (h *Handlers) GetChartSeries(w http.ResponseWriter, r *http.Request) {
	windowType, ok := charts.ParseWindowType(mux.Vars(r)["type"])
	if !ok {
		http.Error(w, "Invalid chart type. Must be 'realtime', 'daily', 'weekly', or 'monthly'", http.StatusBadRequest)
		return
	}

	labels, pilots, atcs, err := h.Charts.Series(windowType)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{
		"labels": labels,
		"pilots": pilots,
		"atcs":   atcs,
	})
}

func (h *Handlers) GetChart(w http.ResponseWriter, r *http.Request) {
	windowType, ok := charts.ParseWindowType(mux.Vars(r)["type"])
	if !ok {
		http.Error(w, "Invalid chart type. Must be 'realtime', 'daily', 'weekly', or 'monthly'", http.StatusBadRequest)
		return
	}

	query := r.URL.Query()
	output := filepath.Join(h.ChartDir, "chart_"+string(windowType)+".pdf")
	path, err := h.Charts.Generate(windowType, output, query.Get("color"), query.Get("color_atc"))
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if path == "" {
		writeNotFound(w)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	http.ServeFile(w, r, path)
}

func (h *Handlers) GetCollectorStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Collector.GetStats())
}

func (h *Handlers) GetPrefixes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{"prefixes": h.Config.Prefixes()})
}

func (h *Handlers) UpdatePrefixes(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Prefixes []string `json:"prefixes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Prefixes) == 0 {
		http.Error(w, "Body must be {\"prefixes\": [\"XX\", ...]}", http.StatusBadRequest)
		return
	}

	h.Config.SetPrefixes(body.Prefixes)
	writeJSON(w, map[string]interface{}{"prefixes": h.Config.Prefixes()})
}
