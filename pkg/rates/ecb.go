package rates

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// HistoricalURL serves the full EUR reference rate history.
	HistoricalURL = "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-hist.xml"
	// NinetyDayURL serves the last 90 days of EUR reference rates.
	NinetyDayURL = "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-hist-90d.xml"
)

// ECBClient fetches EUR foreign exchange reference rates from the European
// Central Bank.
type ECBClient struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewECBClient creates an ECB feed client. A nil httpClient gets a 30 second
// timeout; a nil logger falls back to slog's default.
func NewECBClient(httpClient *http.Client, logger *slog.Logger) *ECBClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ECBClient{httpClient: httpClient, logger: logger}
}

// FetchDays downloads and parses one of the ECB reference rate feeds.
func (c *ECBClient) FetchDays(ctx context.Context, url string) ([]Day, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ECB rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ECB feed %s returned status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read ECB feed: %w", err)
	}

	days, err := ParseEuroFXRef(data)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("Fetched ECB reference rates", "url", url, "days", len(days))
	return days, nil
}

type ecbEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Days    []ecbDay `xml:"Cube>Cube"`
}

type ecbDay struct {
	Time  string    `xml:"time,attr"`
	Rates []ecbRate `xml:"Cube"`
}

type ecbRate struct {
	Currency string `xml:"currency,attr"`
	Rate     string `xml:"rate,attr"`
}

// ParseEuroFXRef parses an ECB eurofxref XML document into rate days.
func ParseEuroFXRef(data []byte) ([]Day, error) {
	var envelope ecbEnvelope
	if err := xml.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse ECB XML: %w", err)
	}

	days := make([]Day, 0, len(envelope.Days))
	for _, node := range envelope.Days {
		if node.Time == "" {
			continue
		}
		day := Day{Date: node.Time, Rates: make(map[string]decimal.Decimal, len(node.Rates))}
		for _, entry := range node.Rates {
			if entry.Currency == "" {
				continue
			}
			rate, err := decimal.NewFromString(entry.Rate)
			if err != nil {
				return nil, fmt.Errorf("invalid rate %q for %s on %s: %w", entry.Rate, entry.Currency, node.Time, err)
			}
			day.Rates[entry.Currency] = rate
		}
		days = append(days, day)
	}
	return days, nil
}

// Sync brings the store up to date: an empty store is filled from the full
// history feed, an initialized one from the 90-day feed, skipping days it
// already has. Returns the number of rates written and the latest rate date.
func Sync(ctx context.Context, store *Store, client *ECBClient) (int, string, error) {
	last, err := store.LastUpdate()
	if err != nil {
		return 0, "", err
	}

	url := NinetyDayURL
	if last == "" {
		url = HistoricalURL
	}

	days, err := client.FetchDays(ctx, url)
	if err != nil {
		return 0, "", err
	}

	imported, latest, err := store.ImportDays(days, last)
	if err != nil {
		return 0, "", err
	}
	if latest == "" {
		latest = last
	}
	return imported, latest, nil
}
