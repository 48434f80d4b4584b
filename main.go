package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/tmarques/ivao-stats/api"
	"github.com/tmarques/ivao-stats/charts"
	"github.com/tmarques/ivao-stats/collector"
	"github.com/tmarques/ivao-stats/config"
	"github.com/tmarques/ivao-stats/consolidation"
	"github.com/tmarques/ivao-stats/db"
	"github.com/tmarques/ivao-stats/services/metar"
	"github.com/tmarques/ivao-stats/tracker"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg := config.FromEnv()

	// Initialize database connection
	store, err := db.Open()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	c := collector.New(cfg.WhazzupURL, store, cfg)

	sessions := tracker.New(store)
	stats := consolidation.New(store, sessions, cfg)
	if token := os.Getenv("AVWX_TOKEN"); token != "" && cfg.MetarStation != "" {
		stats = stats.WithMetar(metar.New(token), cfg.MetarStation)
	}

	chartSvc := charts.New(store, charts.RenderPDF)
	chartDir := os.Getenv("CHART_DIR")
	if chartDir == "" {
		chartDir = os.TempDir()
	}

	router := api.NewRouter(&api.Handlers{
		Stats:     stats,
		Charts:    chartSvc,
		Collector: c,
		Config:    cfg,
		ChartDir:  chartDir,
	})

	// Start the API server in a goroutine
	go func() {
		log.Printf("Starting API server on %s", cfg.ListenAddr)
		if err := http.ListenAndServe(cfg.ListenAddr, router); err != nil {
			log.Fatalf("Failed to start API server: %v", err)
		}
	}()

	go runMaintenance(stats)

	log.Printf("Starting IVAO data collector (update interval: %s)", cfg.Interval)

	// Initial collection
	if err := c.FetchAndStore(); err != nil {
		log.Printf("Error collecting data: %v", err)
	}

	// Continuous collection
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()
	for range ticker.C {
		if err := c.FetchAndStore(); err != nil {
			log.Printf("Error collecting data: %v", err)
		}
	}
}

// runMaintenance prunes the day partition hourly and empties the week and
// month partitions when their windows roll over at midnight UTC.
func runMaintenance(stats *consolidation.Service) {
	prune := time.NewTicker(time.Hour)
	defer prune.Stop()

	now := time.Now().UTC()
	midnight := time.After(time.Until(nextMidnight(now)))

	for {
		select {
		case <-prune.C:
			if err := stats.PruneDaily(); err != nil {
				log.Printf("Error pruning day partition: %v", err)
			}
		case <-midnight:
			now = time.Now().UTC()
			if now.Weekday() == time.Monday {
				if err := stats.ResetWeekly(); err != nil {
					log.Printf("Error resetting week partition: %v", err)
				}
			}
			if now.Day() == 1 {
				if err := stats.ResetMonthly(); err != nil {
					log.Printf("Error resetting month partition: %v", err)
				}
			}
			midnight = time.After(time.Until(nextMidnight(now)))
		}
	}
}

func nextMidnight(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return next.Add(24 * time.Hour)
}
