package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mandi/server/internal/gateway"
)

func recordsPage(n, start int) map[string]any {
	records := make([]map[string]any, n)
	for i := range records {
		records[i] = map[string]any{
			"state":        "Maharashtra",
			"district":     "Pune",
			"market":       fmt.Sprintf("Market %d", start+i),
			"commodity":    "Onion",
			"variety":      "Red",
			"arrival_date": "14/10/2026",
			"min_price":    "1200",
			"max_price":    1800,
			"modal_price":  "1500",
		}
	}
	return map[string]any{"records": records}
}

func newTestFetcher(url string) *Fetcher {
	return NewFetcher(logrus.New(), FetcherOptions{URL: url, Key: "test-key", PageSize: 1000, Timeout: time.Second})
}

func TestFetcher_StopsOnEmptyPage(t *testing.T) {
	var mu sync.Mutex
	var offsets []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		mu.Lock()
		offsets = append(offsets, q.Get("offset"))
		mu.Unlock()

		assert.Equal(t, "test-key", q.Get("api-key"))
		assert.Equal(t, "json", q.Get("format"))
		assert.Equal(t, "1000", q.Get("limit"))

		offset, _ := strconv.Atoi(q.Get("offset"))
		if offset == 0 {
			json.NewEncoder(w).Encode(recordsPage(1000, 0))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"records": []any{}})
	}))
	defer server.Close()

	records, err := newTestFetcher(server.URL).FetchAll(context.Background(), Filters{})

	require.NoError(t, err)
	assert.Len(t, records, 1000)
	assert.Equal(t, []string{"0", "1000"}, offsets)
	assert.Equal(t, "Market 0", records[0].Market)
	assert.Equal(t, "1800", records[0].MaxPrice, "numeric fields are read as text")
}

func TestFetcher_MissingRecordsEndsPagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	records, err := newTestFetcher(server.URL).FetchAll(context.Background(), Filters{})

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFetcher_SendsFilters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "Maharashtra", q.Get("filters[state]"))
		assert.Equal(t, "Onion", q.Get("filters[commodity]"))
		w.Write([]byte(`{"records":[]}`))
	}))
	defer server.Close()

	_, err := newTestFetcher(server.URL).FetchAll(context.Background(), Filters{State: "Maharashtra", Commodity: "Onion"})
	require.NoError(t, err)
}

func TestFetcher_FailedPageAborts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("offset") == "0" {
			json.NewEncoder(w).Encode(recordsPage(1000, 0))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	records, err := newTestFetcher(server.URL).FetchAll(context.Background(), Filters{})

	assert.Nil(t, records, "no partial results")
	var apiErr *gateway.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
}

func TestFetcher_Cancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(recordsPage(1, 0))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestFetcher(server.URL).FetchAll(ctx, Filters{})
	assert.ErrorIs(t, err, context.Canceled)
}
