// Package config holds the runtime configuration. Country prefixes are
// reloadable: callers take a snapshot per query instead of caching the set.
package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tmarques/ivao-stats/classifier"
)

const (
	defaultWhazzupURL = "https://api.ivao.aero/v2/tracker/whazzup"
	defaultInterval   = 60 * time.Second
	defaultListenAddr = ":8080"
)

type Config struct {
	WhazzupURL   string
	ListenAddr   string
	Interval     time.Duration
	MetarStation string

	mu       sync.RWMutex
	prefixes classifier.Prefixes
}

// FromEnv builds a Config from environment variables. COUNTRY_PREFIXES is a
// comma-separated list, e.g. "SC" or "SA,SU".
func FromEnv() *Config {
	c := &Config{
		WhazzupURL:   defaultWhazzupURL,
		ListenAddr:   defaultListenAddr,
		Interval:     defaultInterval,
		MetarStation: os.Getenv("METAR_STATION"),
	}

	if url := os.Getenv("WHAZZUP_URL"); url != "" {
		c.WhazzupURL = url
	}
	if addr := os.Getenv("LISTEN_ADDR"); addr != "" {
		c.ListenAddr = addr
	}
	if intervalStr := os.Getenv("UPDATE_INTERVAL"); intervalStr != "" {
		if interval, err := strconv.Atoi(intervalStr); err == nil && interval > 0 {
			c.Interval = time.Duration(interval) * time.Second
		}
	}
	c.SetPrefixes(strings.Split(os.Getenv("COUNTRY_PREFIXES"), ","))

	return c
}

// Prefixes returns a snapshot of the current country prefixes.
func (c *Config) Prefixes() classifier.Prefixes {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(classifier.Prefixes, len(c.prefixes))
	copy(out, c.prefixes)
	return out
}

// SetPrefixes replaces the country prefixes. Entries are trimmed and
// upper-cased; empty entries are dropped.
func (c *Config) SetPrefixes(prefixes []string) {
	cleaned := make(classifier.Prefixes, 0, len(prefixes))
	for _, p := range prefixes {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}

	c.mu.Lock()
	c.prefixes = cleaned
	c.mu.Unlock()
}
