package weather

import (
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/coolcity/heatscan/internal/model"
)

// atomFeed is the subset of a CAP/Atom alert feed the engine reads.
type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID       string `xml:"id"`
	Title    string `xml:"title"`
	Event    string `xml:"event"`
	Severity string `xml:"severity"`
	Expires  string `xml:"expires"`
}

// heatEventTerms are CAP event names that count as heat advisories. Matched
// case-insensitively against the entry title and event.
var heatEventTerms = []string{
	"heat advisory",
	"excessive heat",
	"extreme heat",
	"heat warning",
	"heat watch",
}

// Advisories fetches the configured CAP/Atom feed and returns its active
// heat-related entries. Returns an empty slice when no feed is configured.
func (c *client) Advisories(ctx context.Context, pt model.GeoPoint) ([]Advisory, error) {
	if c.alertFeedURL == "" {
		return nil, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "weather: rate limit")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.alertFeedURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "weather: build alert request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "weather: alert request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("weather: alert feed returned status %d", resp.StatusCode)
	}

	return parseAdvisories(resp.Body)
}

// parseAdvisories decodes an Atom feed, tolerating non-UTF-8 charsets, and
// keeps the heat-related entries.
func parseAdvisories(r io.Reader) ([]Advisory, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, eris.Wrapf(err, "weather: unsupported charset %q", charset)
		}
		return enc.NewDecoder().Reader(input), nil
	}

	var feed atomFeed
	if err := decoder.Decode(&feed); err != nil {
		return nil, eris.Wrap(err, "weather: parse alert feed")
	}

	var advisories []Advisory
	for _, entry := range feed.Entries {
		if !isHeatEvent(entry) {
			continue
		}
		adv := Advisory{
			ID:       entry.ID,
			Title:    entry.Title,
			Severity: entry.Severity,
		}
		if ts, err := time.Parse(time.RFC3339, entry.Expires); err == nil {
			adv.Expires = ts
		}
		advisories = append(advisories, adv)
	}
	return advisories, nil
}

func isHeatEvent(entry atomEntry) bool {
	haystack := strings.ToLower(entry.Event + " " + entry.Title)
	for _, term := range heatEventTerms {
		if strings.Contains(haystack, term) {
			return true
		}
	}
	return false
}
