package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tmarques/ivao-stats/classifier"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("WHAZZUP_URL", "")
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("UPDATE_INTERVAL", "")

	cfg := FromEnv()

	assert.Equal(t, "https://api.ivao.aero/v2/tracker/whazzup", cfg.WhazzupURL)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 60*time.Second, cfg.Interval)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("WHAZZUP_URL", "http://localhost:9999/whazzup")
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("UPDATE_INTERVAL", "15")
	t.Setenv("COUNTRY_PREFIXES", "sc, sa")

	cfg := FromEnv()

	assert.Equal(t, "http://localhost:9999/whazzup", cfg.WhazzupURL)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, 15*time.Second, cfg.Interval)
	assert.Equal(t, classifier.Prefixes{"SC", "SA"}, cfg.Prefixes())
}

func TestSetPrefixesCleansInput(t *testing.T) {
	cfg := FromEnv()
	cfg.SetPrefixes([]string{" sc ", "", "Sa"})

	assert.Equal(t, classifier.Prefixes{"SC", "SA"}, cfg.Prefixes())
}

func TestPrefixesReturnsCopy(t *testing.T) {
	cfg := FromEnv()
	cfg.SetPrefixes([]string{"SC"})

	snapshot := cfg.Prefixes()
	snapshot[0] = "XX"

	assert.Equal(t, classifier.Prefixes{"SC"}, cfg.Prefixes())
}
