package charts

import (
	"fmt"
	"log"
	"os"
	"time"
)

const (
	// CacheTTL is how long a rendered artifact is reused before it is
	// recomputed.
	CacheTTL = 60 * time.Second

	sweepInterval = 5 * time.Minute
)

type cacheEntry struct {
	path       string
	renderedAt time.Time
}

// Default colors per window type. The realtime chart switches palette based
// on whether a controller is currently online.
const (
	colorRealtimeATC          = "#2FFF9A"
	colorRealtimeATCSecondary = "#A0FFD1"
	colorRealtimeIdle         = "#FF5250"
	colorRealtimeIdleSec      = "#FFA5A3"
	colorDailyPrimary         = "#007BFF"
	colorDailySecondary       = "#80DFFF"
	colorWeeklyPrimary        = "#8000FF"
	colorWeeklySecondary      = "#D580FF"
	colorMonthlyPrimary       = "#AAAAAA"
	colorMonthlySecondary     = "#FFFFFF"
)

// Generate renders the chart artifact for a window type into the output path,
// reusing the cached artifact when an identical request was rendered within
// the TTL. It returns the artifact path, or "" when the window has no data.
func (s *Service) Generate(windowType WindowType, output, colorPrimary, colorATC string) (string, error) {
	now := s.now()
	s.maybeSweep(now)

	key := fmt.Sprintf("%s_%s_%s_%s", windowType, output, colorPrimary, colorATC)
	if path, ok := s.cached(key, now); ok {
		return path, nil
	}

	labels, pilots, atcs, err := s.Series(windowType)
	if err != nil {
		return "", err
	}
	if len(labels) == 0 {
		return "", nil
	}

	// A single point cannot be drawn as a line; duplicate it.
	if len(labels) == 1 {
		labels = append(labels, labels[0])
		pilots = append(pilots, pilots[0])
		atcs = append(atcs, atcs[0])
	}

	primary, secondary := defaultColors(windowType, atcs)
	if colorPrimary != "" {
		primary = colorPrimary
	}
	if colorATC != "" {
		secondary = colorATC
	}

	s.renderMu.Lock()
	err = s.render(RenderRequest{
		Output:       output,
		Labels:       labels,
		Pilots:       pilots,
		ATCs:         atcs,
		ColorPrimary: primary,
		ColorATC:     secondary,
	})
	s.renderMu.Unlock()
	if err != nil {
		return "", fmt.Errorf("error rendering chart: %v", err)
	}

	s.mu.Lock()
	s.cache[key] = cacheEntry{path: output, renderedAt: now}
	s.mu.Unlock()

	return output, nil
}

func defaultColors(windowType WindowType, atcs []int) (string, string) {
	switch windowType {
	case Daily:
		return colorDailyPrimary, colorDailySecondary
	case Weekly:
		return colorWeeklyPrimary, colorWeeklySecondary
	case Monthly:
		return colorMonthlyPrimary, colorMonthlySecondary
	}
	if len(atcs) > 0 && atcs[len(atcs)-1] > 0 {
		return colorRealtimeATC, colorRealtimeATCSecondary
	}
	return colorRealtimeIdle, colorRealtimeIdleSec
}

func (s *Service) cached(key string, now time.Time) (string, bool) {
	s.mu.Lock()
	entry, ok := s.cache[key]
	s.mu.Unlock()

	if !ok || now.Sub(entry.renderedAt) >= CacheTTL {
		return "", false
	}
	if _, err := os.Stat(entry.path); err != nil {
		return "", false
	}
	return entry.path, true
}

// maybeSweep opportunistically evicts entries older than twice the TTL,
// removing their backing artifact files.
func (s *Service) maybeSweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastSweep) < sweepInterval {
		return
	}
	s.lastSweep = now

	for key, entry := range s.cache {
		if now.Sub(entry.renderedAt) <= 2*CacheTTL {
			continue
		}
		delete(s.cache, key)
		if err := os.Remove(entry.path); err != nil && !os.IsNotExist(err) {
			log.Printf("Error removing cached chart %s: %v", entry.path, err)
		}
	}
}
