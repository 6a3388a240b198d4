package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"mandi/server/internal/models"
)

// AutoDetectedMarker tags a location label produced from the device position
const AutoDetectedMarker = "(Auto-detected)"

// Caller performs a paced GET and returns the body
type Caller interface {
	Call(ctx context.Context, rawURL string) ([]byte, error)
}

type Options struct {
	BaseURL             string
	Key                 string
	CountryCode         string
	SuggestionLimit     int
	SuggestionCacheSize int
}

// Resolver turns place names into coordinates for one session
type Resolver struct {
	logger *logrus.Logger
	caller Caller
	store  Store
	opts   Options

	suggestions *lru.Cache[string, []models.LocationSuggestion]
	inflight    singleflight.Group

	deviceLock sync.RWMutex
	device     *models.Coordinates
}

func NewResolver(logger *logrus.Logger, caller Caller, store Store, opts Options) (*Resolver, error) {
	if opts.SuggestionCacheSize <= 0 {
		opts.SuggestionCacheSize = 256
	}
	if opts.SuggestionLimit <= 0 {
		opts.SuggestionLimit = 8
	}
	suggestions, err := lru.New[string, []models.LocationSuggestion](opts.SuggestionCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create suggestion cache: %w", err)
	}

	return &Resolver{
		logger:      logger,
		caller:      caller,
		store:       store,
		opts:        opts,
		suggestions: suggestions,
	}, nil
}

// SetDeviceLocation remembers the position reported by the browser
func (r *Resolver) SetDeviceLocation(coords models.Coordinates) {
	r.deviceLock.Lock()
	r.device = &coords
	r.deviceLock.Unlock()
}

func (r *Resolver) deviceLocation() *models.Coordinates {
	r.deviceLock.RLock()
	defer r.deviceLock.RUnlock()
	return r.device
}

// Resolve returns the coordinates of address, or nil when no rewrite of it
// can be geocoded. An error is only returned when ctx ends first.
func (r *Resolver) Resolve(ctx context.Context, address string) (*models.Coordinates, error) {
	if strings.TrimSpace(address) == "" {
		return nil, nil
	}

	if strings.Contains(address, AutoDetectedMarker) {
		if device := r.deviceLocation(); device != nil {
			return device, nil
		}
	}

	key := Normalize(address)
	if key == "" {
		return nil, nil
	}
	if coords, ok := r.cached(key); ok {
		return coords, nil
	}

	for {
		v, err, _ := r.inflight.Do(key, func() (interface{}, error) {
			if coords, ok := r.cached(key); ok {
				return coords, nil
			}
			return r.resolveUncached(ctx, key)
		})
		if err == nil {
			return v.(*models.Coordinates), nil
		}
		// The shared lookup ran on another caller's context. Start a fresh
		// one when that context ended but ours is still live.
		if isContextError(err) && ctx.Err() == nil {
			r.inflight.Forget(key)
			continue
		}
		return nil, err
	}
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (r *Resolver) cached(key string) (*models.Coordinates, bool) {
	coords, ok, err := r.store.Get(key)
	if err != nil {
		r.logger.WithError(err).WithField("address", key).Warn("Geocode cache read failed")
		return nil, false
	}
	if ok {
		r.logger.WithFields(logrus.Fields{
			"address": key,
			"found":   coords != nil,
			"source":  "cache",
		}).Debug("Found address in cache")
	}
	return coords, ok
}

func (r *Resolver) resolveUncached(ctx context.Context, key string) (*models.Coordinates, error) {
	r.logger.WithField("address", key).Info("Geocoding address")

	for _, strategy := range Strategies(key) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		coords, err := r.search(ctx, strategy)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			r.logger.WithError(err).WithField("strategy", strategy).Debug("Geocoding strategy failed")
			continue
		}
		if coords == nil {
			continue
		}

		r.logger.WithFields(logrus.Fields{
			"address":   key,
			"strategy":  strategy,
			"latitude":  coords.Lat,
			"longitude": coords.Lon,
		}).Info("Successfully geocoded address")
		r.remember(key, coords)
		return coords, nil
	}

	r.logger.WithField("address", key).Warn("All geocoding strategies failed")
	r.remember(key, nil)
	return nil, nil
}

func (r *Resolver) remember(key string, coords *models.Coordinates) {
	if err := r.store.Put(key, coords); err != nil {
		r.logger.WithError(err).WithField("address", key).Warn("Geocode cache write failed")
	}
}

func (r *Resolver) search(ctx context.Context, query string) (*models.Coordinates, error) {
	params := url.Values{
		"key":            []string{r.opts.Key},
		"q":              []string{query},
		"format":         []string{"json"},
		"countrycodes":   []string{r.opts.CountryCode},
		"limit":          []string{"1"},
		"addressdetails": []string{"1"},
	}

	body, err := r.caller.Call(ctx, r.endpoint("search.php", params))
	if err != nil {
		return nil, err
	}

	var results []models.RawGeocodeResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	return parseCoordinates(results[0].Lat, results[0].Lon)
}

// ReverseState returns the lowercase state containing coords, or "" when the
// lookup fails for any reason
func (r *Resolver) ReverseState(ctx context.Context, coords models.Coordinates) string {
	params := url.Values{
		"key":            []string{r.opts.Key},
		"lat":            []string{strconv.FormatFloat(coords.Lat, 'f', -1, 64)},
		"lon":            []string{strconv.FormatFloat(coords.Lon, 'f', -1, 64)},
		"format":         []string{"json"},
		"addressdetails": []string{"1"},
	}

	body, err := r.caller.Call(ctx, r.endpoint("reverse.php", params))
	if err != nil {
		r.logger.WithError(err).Info("Failed to get user state")
		return ""
	}

	var result models.RawReverseResult
	if err := json.Unmarshal(body, &result); err != nil {
		r.logger.WithError(err).Info("Failed to parse reverse geocoding response")
		return ""
	}
	return strings.ToLower(strings.TrimSpace(result.Address.State))
}

// Suggest returns autocomplete suggestions for a partial location. Failures
// yield an empty list.
func (r *Resolver) Suggest(ctx context.Context, input string) []models.LocationSuggestion {
	if utf8.RuneCountInString(input) < 2 {
		return nil
	}

	key := strings.ToLower(strings.TrimSpace(input))
	if cached, ok := r.suggestions.Get(key); ok {
		return cached
	}

	params := url.Values{
		"key":            []string{r.opts.Key},
		"q":              []string{input},
		"limit":          []string{strconv.Itoa(r.opts.SuggestionLimit)},
		"format":         []string{"json"},
		"countrycodes":   []string{r.opts.CountryCode},
		"addressdetails": []string{"1"},
	}

	body, err := r.caller.Call(ctx, r.endpoint("autocomplete.php", params))
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			r.logger.WithError(err).WithField("input", input).Error("Error fetching location suggestions")
		}
		return nil
	}

	var raw []models.RawAutocompleteResult
	if err := json.Unmarshal(body, &raw); err != nil {
		r.logger.WithError(err).WithField("input", input).Error("Failed to parse location suggestions")
		return nil
	}

	suggestions := make([]models.LocationSuggestion, 0, len(raw))
	for _, item := range raw {
		suggestion, ok := toSuggestion(item)
		if !ok {
			continue
		}
		suggestions = append(suggestions, suggestion)
	}

	r.suggestions.Add(key, suggestions)
	return suggestions
}

func (r *Resolver) endpoint(path string, params url.Values) string {
	return strings.TrimRight(r.opts.BaseURL, "/") + "/" + path + "?" + params.Encode()
}

func toSuggestion(item models.RawAutocompleteResult) (models.LocationSuggestion, bool) {
	coords, err := parseCoordinates(item.Lat, item.Lon)
	if err != nil {
		return models.LocationSuggestion{}, false
	}

	var parts []string
	add := func(part string) {
		if part == "" {
			return
		}
		for _, p := range parts {
			if p == part {
				return
			}
		}
		parts = append(parts, part)
	}
	add(firstNonEmpty(item.Address.City, item.Address.Town, item.Address.Village))
	add(item.Address.StateDistrict)
	add(item.Address.State)

	return models.LocationSuggestion{
		Name:        strings.TrimSpace(strings.SplitN(item.DisplayName, ",", 2)[0]),
		Type:        suggestionType(item.Class, item.Type),
		DisplayName: strings.Join(parts, ", "),
		FullAddress: item.DisplayName,
		Coordinates: *coords,
	}, true
}

func suggestionType(class, kind string) models.SuggestionType {
	switch class {
	case "place":
		switch kind {
		case "city", "town":
			return models.SuggestionCity
		case "state":
			return models.SuggestionState
		case "county":
			return models.SuggestionDistrict
		}
	case "tourism", "historic":
		return models.SuggestionLandmark
	}
	return models.SuggestionAddress
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func parseCoordinates(lat, lon string) (*models.Coordinates, error) {
	latitude, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude %q: %w", lat, err)
	}
	longitude, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude %q: %w", lon, err)
	}
	return &models.Coordinates{Lat: latitude, Lon: longitude}, nil
}
