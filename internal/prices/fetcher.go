package prices

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"mandi/server/internal/gateway"
	"mandi/server/internal/models"
)

// Filters narrows a dataset query. Empty fields are not sent.
type Filters struct {
	State     string `form:"state" json:"state"`
	Commodity string `form:"crop" json:"crop"`
}

type FetcherOptions struct {
	URL      string
	Key      string
	PageSize int
	Timeout  time.Duration
}

// Fetcher pages through the mandi price dataset
type Fetcher struct {
	logger *logrus.Logger
	client *http.Client
	opts   FetcherOptions
}

func NewFetcher(logger *logrus.Logger, opts FetcherOptions) *Fetcher {
	if opts.PageSize <= 0 {
		opts.PageSize = 1000
	}
	return &Fetcher{
		logger: logger,
		client: &http.Client{Timeout: opts.Timeout},
		opts:   opts,
	}
}

// WithHTTPClient swaps the underlying client
func (f *Fetcher) WithHTTPClient(client *http.Client) *Fetcher {
	f.client = client
	return f
}

type page struct {
	Records []map[string]any `json:"records"`
}

// FetchAll requests pages until one comes back empty. Any failed page aborts
// the whole fetch.
func (f *Fetcher) FetchAll(ctx context.Context, filters Filters) ([]models.RawPriceRecord, error) {
	var all []models.RawPriceRecord

	for offset := 0; ; offset += f.opts.PageSize {
		records, err := f.fetchPage(ctx, filters, offset)
		if err != nil {
			return nil, err
		}

		f.logger.WithFields(logrus.Fields{
			"offset":  offset,
			"records": len(records),
			"state":   filters.State,
			"crop":    filters.Commodity,
		}).Debug("Fetched price page")

		if len(records) == 0 {
			break
		}
		all = append(all, records...)
	}

	f.logger.WithField("records", len(all)).Info("Fetched price records")
	return all, nil
}

func (f *Fetcher) fetchPage(ctx context.Context, filters Filters, offset int) ([]models.RawPriceRecord, error) {
	params := url.Values{
		"api-key": []string{f.opts.Key},
		"format":  []string{"json"},
		"offset":  []string{strconv.Itoa(offset)},
		"limit":   []string{strconv.Itoa(f.opts.PageSize)},
	}
	if filters.State != "" {
		params.Set("filters[state]", filters.State)
	}
	if filters.Commodity != "" {
		params.Set("filters[commodity]", filters.Commodity)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.opts.URL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("price request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &gateway.APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}

	var p page
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	records := make([]models.RawPriceRecord, 0, len(p.Records))
	for _, r := range p.Records {
		records = append(records, models.RawPriceRecord{
			State:       field(r, "state"),
			District:    field(r, "district"),
			Market:      field(r, "market"),
			Commodity:   field(r, "commodity"),
			Variety:     field(r, "variety"),
			ArrivalDate: field(r, "arrival_date"),
			MinPrice:    field(r, "min_price"),
			MaxPrice:    field(r, "max_price"),
			ModalPrice:  field(r, "modal_price"),
		})
	}
	return records, nil
}

// field reads a value that the dataset may send as a string or a number
func field(record map[string]any, key string) string {
	switch v := record[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
