package collector

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/tmarques/ivao-stats/classifier"
	"github.com/tmarques/ivao-stats/models"
)

// Ingestor receives parsed snapshots for persistence.
type Ingestor interface {
	SaveSnapshot(snap *models.Snapshot) error
}

// PrefixSource yields the current country prefixes.
type PrefixSource interface {
	Prefixes() classifier.Prefixes
}

type CollectionStats struct {
	LastUpdate     time.Time `json:"last_update"`
	TotalSnapshots int64     `json:"total_snapshots"`
	ActivePilots   int       `json:"active_pilots"`
	ActiveATCs     int       `json:"active_atcs"`
	StartTime      time.Time `json:"start_time"`
}

// Collector fetches the whazzup feed on a fixed cadence, filters it down to
// in-country activity and hands the snapshot to the store.
type Collector struct {
	url      string
	client   *http.Client
	store    Ingestor
	prefixes PrefixSource

	lastUpdate time.Time

	mu    sync.Mutex
	stats CollectionStats
}

func New(url string, store Ingestor, prefixes PrefixSource) *Collector {
	return &Collector{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		store:    store,
		prefixes: prefixes,
		stats: CollectionStats{
			StartTime: time.Now(),
		},
	}
}

func (c *Collector) GetStats() CollectionStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *Collector) FetchAndStore() error {
	data, err := c.fetchData()
	if err != nil {
		fetchErrors.Inc()
		return fmt.Errorf("error fetching data: %v", err)
	}

	// The feed refreshes on its own schedule; don't store duplicates.
	if !data.UpdatedAt.IsZero() && data.UpdatedAt.Equal(c.lastUpdate) {
		return nil
	}

	snapshot := c.buildSnapshot(data)
	if err := c.store.SaveSnapshot(snapshot); err != nil {
		return fmt.Errorf("error storing snapshot: %v", err)
	}
	snapshotsStored.Inc()

	c.lastUpdate = data.UpdatedAt

	c.mu.Lock()
	c.stats.LastUpdate = time.Now()
	c.stats.TotalSnapshots++
	c.stats.ActivePilots = len(snapshot.Pilots)
	c.stats.ActiveATCs = len(snapshot.ATCs)
	running := time.Since(c.stats.StartTime).Round(time.Second)
	total := c.stats.TotalSnapshots
	c.mu.Unlock()

	log.Printf("Collection update: Pilots: %d, ATCs: %d, Total snapshots: %d, Running for: %v",
		len(snapshot.Pilots), len(snapshot.ATCs), total, running)

	return nil
}

func (c *Collector) fetchData() (*models.Whazzup, error) {
	resp, err := c.client.Get(c.url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var data models.Whazzup
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// buildSnapshot parses the feed into a snapshot, dropping malformed records
// and keeping only in-country pilots and controllers.
func (c *Collector) buildSnapshot(data *models.Whazzup) *models.Snapshot {
	prefixes := c.prefixes.Prefixes()
	snap := &models.Snapshot{Timestamp: time.Now().UTC()}

	for _, raw := range data.Clients.Pilots {
		pilot, ok := raw.Pilot()
		if !ok || !prefixes.InvolvesCountry(pilot) {
			continue
		}
		snap.Pilots = append(snap.Pilots, pilot)
	}

	for _, raw := range data.Clients.ATCs {
		atc, ok := raw.ATC()
		if !ok || !prefixes.IsCountryATC(atc) {
			continue
		}
		snap.ATCs = append(snap.ATCs, atc)
	}

	return snap
}
