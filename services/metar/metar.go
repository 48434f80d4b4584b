// Package metar fetches raw METAR text from the AVWX API, memoized per
// station for a few minutes.
package metar

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	baseURL         = "https://avwx.rest/api/metar/"
	refreshInterval = 5 * time.Minute
)

type Client struct {
	token  string
	client *http.Client

	mu    sync.Mutex
	cache map[string]cachedMetar
}

type cachedMetar struct {
	raw       string
	fetchedAt time.Time
}

// New returns a client. An empty token disables fetching: Metar then reports
// empty text, so the weather line simply stays absent.
func New(token string) *Client {
	return &Client{
		token: token,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache: make(map[string]cachedMetar),
	}
}

// Metar returns the raw METAR line for a station.
func (c *Client) Metar(station string) (string, error) {
	if c.token == "" {
		return "", nil
	}
	station = strings.ToUpper(strings.TrimSpace(station))
	if station == "" {
		return "", nil
	}

	now := time.Now()
	c.mu.Lock()
	cached, ok := c.cache[station]
	c.mu.Unlock()
	if ok && now.Sub(cached.fetchedAt) < refreshInterval {
		return cached.raw, nil
	}

	raw, err := c.fetch(station)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.cache[station] = cachedMetar{raw: raw, fetchedAt: now}
	c.mu.Unlock()

	return raw, nil
}

func (c *Client) fetch(station string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, baseURL+station, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error fetching METAR: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		log.Printf("METAR station %s not found", station)
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected METAR status %d", resp.StatusCode)
	}

	var payload struct {
		Raw string `json:"raw"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("error decoding METAR response: %v", err)
	}
	return payload.Raw, nil
}
