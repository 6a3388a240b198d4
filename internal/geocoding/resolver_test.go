package geocoding

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mandi/server/internal/gateway"
	"mandi/server/internal/models"
)

// fakeCaller answers search queries from a table keyed by the q parameter
type fakeCaller struct {
	mu        sync.Mutex
	responses map[string]string
	errs      map[string]error
	queries   []string
	paths     []string
}

func newFakeCaller(responses map[string]string) *fakeCaller {
	return &fakeCaller{responses: responses, errs: map[string]error{}}
}

func (f *fakeCaller) Call(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	q := u.Query().Get("q")

	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	f.paths = append(f.paths, u.Path)

	if err := f.errs[q]; err != nil {
		return nil, err
	}
	if body, ok := f.responses[q]; ok {
		return []byte(body), nil
	}
	if body, ok := f.responses[u.Path]; ok {
		return []byte(body), nil
	}
	return []byte(`[]`), nil
}

func (f *fakeCaller) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func newTestResolver(t *testing.T, caller Caller) (*Resolver, *MemoryStore) {
	t.Helper()
	store, err := NewMemoryStore(64)
	require.NoError(t, err)
	r, err := NewResolver(logrus.New(), caller, store, Options{
		BaseURL:     "https://geocoder.test/v1",
		Key:         "test-key",
		CountryCode: "in",
	})
	require.NoError(t, err)
	return r, store
}

func TestResolver_CityOnlyFallback(t *testing.T) {
	caller := newFakeCaller(map[string]string{
		"pune": `[{"lat":"18.5204","lon":"73.8567"}]`,
	})
	r, store := newTestResolver(t, caller)

	coords, err := r.Resolve(context.Background(), "Pune, Maharashtra")

	require.NoError(t, err)
	require.NotNil(t, coords)
	assert.InDelta(t, 18.5204, coords.Lat, 0.0001)
	assert.InDelta(t, 73.8567, coords.Lon, 0.0001)
	assert.Equal(t, []string{"pune, maharashtra", "pune"}, caller.queries)

	cached, ok, err := store.Get("pune, maharashtra")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, coords, cached)
}

func TestResolver_CacheIdempotence(t *testing.T) {
	tests := []struct {
		name      string
		responses map[string]string
		first     string
		second    string
		wantNil   bool
	}{
		{
			name:      "found result",
			responses: map[string]string{"nashik": `[{"lat":"19.9975","lon":"73.7898"}]`},
			first:     "Nashik",
			second:    "  NASHIK  ",
		},
		{
			name:    "remembered failure",
			first:   "Atlantis, Nowhere",
			second:  "atlantis,   nowhere",
			wantNil: true,
		},
		{
			name:      "parenthetical qualifiers share a key",
			responses: map[string]string{"lasalgaon": `[{"lat":"20.15","lon":"74.23"}]`},
			first:     "Lasalgaon (Onion Market)",
			second:    "lasalgaon",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller := newFakeCaller(tt.responses)
			r, _ := newTestResolver(t, caller)

			first, err := r.Resolve(context.Background(), tt.first)
			require.NoError(t, err)
			calls := caller.callCount()
			assert.Greater(t, calls, 0)

			second, err := r.Resolve(context.Background(), tt.second)
			require.NoError(t, err)

			assert.Equal(t, calls, caller.callCount(), "second lookup must not hit the network")
			assert.Equal(t, first, second)
			if tt.wantNil {
				assert.Nil(t, second)
			} else {
				assert.NotNil(t, second)
			}
		})
	}
}

func TestResolver_StrategyErrorsFallThrough(t *testing.T) {
	caller := newFakeCaller(map[string]string{
		"maharashtra": `[{"lat":"19.75","lon":"75.71"}]`,
	})
	caller.errs["kopargaon, maharashtra"] = gateway.ErrNotFound
	caller.errs["kopargaon"] = &gateway.APIError{StatusCode: 500, Message: "Internal Server Error"}
	r, _ := newTestResolver(t, caller)

	coords, err := r.Resolve(context.Background(), "Kopargaon, Maharashtra")

	require.NoError(t, err)
	require.NotNil(t, coords)
	assert.InDelta(t, 19.75, coords.Lat, 0.0001)
	assert.Equal(t, "maharashtra", caller.queries[len(caller.queries)-1])
}

func TestResolver_DeviceFastPath(t *testing.T) {
	caller := newFakeCaller(nil)
	r, store := newTestResolver(t, caller)

	// Without a device position the label is geocoded like any other text
	coords, err := r.Resolve(context.Background(), "Maharashtra (Auto-detected)")
	require.NoError(t, err)
	assert.Nil(t, coords)
	assert.Greater(t, caller.callCount(), 0)

	device := models.Coordinates{Lat: 18.52, Lon: 73.85}
	r.SetDeviceLocation(device)
	calls := caller.callCount()
	entries := store.Len()

	coords, err = r.Resolve(context.Background(), "Maharashtra (Auto-detected)")
	require.NoError(t, err)
	assert.Equal(t, &device, coords)
	assert.Equal(t, calls, caller.callCount())
	assert.Equal(t, entries, store.Len())
}

func TestResolver_BlankAddress(t *testing.T) {
	caller := newFakeCaller(nil)
	r, _ := newTestResolver(t, caller)

	coords, err := r.Resolve(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, coords)
	assert.Zero(t, caller.callCount())
}

func TestResolver_CancelledLookupIsNotCached(t *testing.T) {
	caller := newFakeCaller(nil)
	r, store := newTestResolver(t, caller)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	coords, err := r.Resolve(ctx, "Pune")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, coords)
	assert.Zero(t, store.Len())
}

// stallingCaller blocks its first call until ctx ends, later calls answer
// from the embedded table
type stallingCaller struct {
	*fakeCaller
	once    sync.Once
	entered chan struct{}
}

func (s *stallingCaller) Call(ctx context.Context, rawURL string) ([]byte, error) {
	first := false
	s.once.Do(func() { first = true })
	if first {
		close(s.entered)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.fakeCaller.Call(ctx, rawURL)
}

func TestResolver_SharedLookupOutlivesCancelledCaller(t *testing.T) {
	caller := &stallingCaller{
		fakeCaller: newFakeCaller(map[string]string{
			"pune": `[{"lat":"18.5204","lon":"73.8567"}]`,
		}),
		entered: make(chan struct{}),
	}
	r, _ := newTestResolver(t, caller)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := r.Resolve(ctxA, "Pune")
		errA <- err
	}()
	<-caller.entered

	type result struct {
		coords *models.Coordinates
		err    error
	}
	resB := make(chan result, 1)
	go func() {
		coords, err := r.Resolve(context.Background(), "Pune")
		resB <- result{coords, err}
	}()

	// let the second caller join the running lookup
	time.Sleep(50 * time.Millisecond)
	cancelA()

	assert.ErrorIs(t, <-errA, context.Canceled)

	select {
	case res := <-resB:
		require.NoError(t, res.err)
		require.NotNil(t, res.coords)
		assert.InDelta(t, 18.5204, res.coords.Lat, 0.0001)
	case <-time.After(2 * time.Second):
		t.Fatal("second caller did not finish")
	}
}

func TestResolver_ReverseState(t *testing.T) {
	caller := newFakeCaller(map[string]string{
		"/v1/reverse.php": `{"lat":"18.52","lon":"73.85","address":{"state":"Maharashtra"}}`,
	})
	r, _ := newTestResolver(t, caller)

	state := r.ReverseState(context.Background(), models.Coordinates{Lat: 18.52, Lon: 73.85})
	assert.Equal(t, "maharashtra", state)

	failing := newFakeCaller(nil)
	failing.errs[""] = errors.New("boom")
	r, _ = newTestResolver(t, failing)
	assert.Equal(t, "", r.ReverseState(context.Background(), models.Coordinates{Lat: 1, Lon: 2}))
}

func TestResolver_Suggest(t *testing.T) {
	caller := newFakeCaller(map[string]string{
		"pun": `[
			{"display_name":"Pune, Pune District, Maharashtra, India","lat":"18.52","lon":"73.85","class":"place","type":"city",
			 "address":{"city":"Pune","state_district":"Pune District","state":"Maharashtra"}},
			{"display_name":"Punjab, India","lat":"30.84","lon":"75.41","class":"boundary","type":"administrative",
			 "address":{"state":"Punjab"}},
			{"display_name":"Shaniwar Wada, Pune, Maharashtra, India","lat":"18.51","lon":"73.85","class":"historic","type":"castle",
			 "address":{"city":"Pune","state":"Maharashtra"}},
			{"display_name":"Broken","lat":"x","lon":"y","class":"place","type":"city","address":{}}
		]`,
	})
	r, _ := newTestResolver(t, caller)

	suggestions := r.Suggest(context.Background(), "pun")
	require.Len(t, suggestions, 3)

	assert.Equal(t, "Pune", suggestions[0].Name)
	assert.Equal(t, models.SuggestionCity, suggestions[0].Type)
	assert.Equal(t, "Pune, Pune District, Maharashtra", suggestions[0].DisplayName)
	assert.Equal(t, models.SuggestionAddress, suggestions[1].Type)
	assert.Equal(t, "Punjab", suggestions[1].DisplayName)
	assert.Equal(t, models.SuggestionLandmark, suggestions[2].Type)
	assert.Equal(t, "Pune, Maharashtra", suggestions[2].DisplayName)

	calls := caller.callCount()
	again := r.Suggest(context.Background(), " PUN ")
	assert.Equal(t, calls, caller.callCount())
	assert.Equal(t, suggestions, again)

	assert.Nil(t, r.Suggest(context.Background(), "p"))
	assert.Equal(t, calls, caller.callCount())
}

func TestResolver_WithGateway(t *testing.T) {
	var mu sync.Mutex
	var queries []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query().Get("q")
		mu.Lock()
		queries = append(queries, q)
		mu.Unlock()
		if q == "dehradun, uttarakhand" {
			w.Write([]byte(`[{"lat":"30.3165","lon":"78.0322"}]`))
			return
		}
		// The upstream answers unknown places with 404
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	g := gateway.New(logrus.New(), gateway.Options{
		MaxRetries:        2,
		BackoffBase:       time.Millisecond,
		BackoffCap:        time.Millisecond,
		NetworkRetryDelay: time.Millisecond,
		Timeout:           time.Second,
	})
	store, err := NewMemoryStore(16)
	require.NoError(t, err)
	r, err := NewResolver(logrus.New(), g, store, Options{BaseURL: server.URL, Key: "k", CountryCode: "in"})
	require.NoError(t, err)

	coords, err := r.Resolve(context.Background(), "Dehradun, Uttrakhand")
	require.NoError(t, err)
	require.NotNil(t, coords)
	assert.InDelta(t, 30.3165, coords.Lat, 0.0001)

	mu.Lock()
	assert.Equal(t, []string{"dehradun, uttrakhand", "dehradun, uttarakhand"}, queries)
	mu.Unlock()
	assert.Equal(t, 2, g.Stats().Calls)
}
