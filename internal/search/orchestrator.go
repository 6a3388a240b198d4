package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"mandi/server/internal/models"
	"mandi/server/internal/prices"
	"mandi/server/internal/processor"
)

type Resolver interface {
	Resolve(ctx context.Context, address string) (*models.Coordinates, error)
	ReverseState(ctx context.Context, coords models.Coordinates) string
}

type Fetcher interface {
	FetchAll(ctx context.Context, filters prices.Filters) ([]models.RawPriceRecord, error)
}

type Options struct {
	Timeout       time.Duration
	MaxCandidates int
	TopN          int
	Batch         processor.Options
}

func DefaultOptions() Options {
	return Options{
		Timeout:       45 * time.Second,
		MaxCandidates: 50,
		TopN:          15,
		Batch:         processor.DefaultOptions(),
	}
}

// Result is a finished smart search. Empty is set when no market survived
// geocoding, Mandis is then nil.
type Result struct {
	Mandis          []models.PriceRecord `json:"mandis"`
	Empty           bool                 `json:"empty"`
	UserCoordinates models.Coordinates   `json:"user_coordinates"`
	HomeState       string               `json:"home_state,omitempty"`
	Candidates      int                  `json:"candidates"`
}

// Orchestrator runs the smart search pipeline for one session
type Orchestrator struct {
	logger   *logrus.Logger
	resolver Resolver
	fetcher  Fetcher
	batches  *processor.BatchGeocoder
	opts     Options
	now      func() time.Time
}

func NewOrchestrator(resolver Resolver, fetcher Fetcher, opts Options, logger *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		logger:   logger,
		resolver: resolver,
		fetcher:  fetcher,
		batches:  processor.NewBatchGeocoder(resolver, opts.Batch, logger),
		opts:     opts,
		now:      time.Now,
	}
}

type outcome struct {
	result *Result
	err    error
}

// SmartSearch finds the nearest high-priced markets for crop around location.
// The pipeline runs in its own goroutine so the timeout wins over any stage;
// cancelling ctx yields ErrCancelled.
func (o *Orchestrator) SmartSearch(ctx context.Context, location, crop string, progress processor.ProgressFunc) (*Result, error) {
	location, crop = strings.TrimSpace(location), strings.TrimSpace(crop)
	if location == "" || crop == "" {
		return nil, fmt.Errorf("%w: location and crop are required", ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeoutCause(ctx, o.opts.Timeout, ErrTimeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		result, err := o.run(ctx, location, crop, progress)
		done <- outcome{result: result, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil && ctx.Err() != nil {
			return nil, interrupted(ctx)
		}
		return out.result, out.err
	case <-ctx.Done():
		err := interrupted(ctx)
		o.logger.WithFields(logrus.Fields{
			"location": location,
			"crop":     crop,
		}).WithError(err).Warn("Smart search interrupted")
		return nil, err
	}
}

func (o *Orchestrator) run(ctx context.Context, location, crop string, progress processor.ProgressFunc) (*Result, error) {
	log := o.logger.WithFields(logrus.Fields{"location": location, "crop": crop})

	userCoords, err := o.resolver.Resolve(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve location: %w", err)
	}
	if userCoords == nil {
		return nil, fmt.Errorf("%w: %s", ErrLocationNotFound, location)
	}

	raw, err := o.fetcher.FetchAll(ctx, prices.Filters{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices: %w", err)
	}
	matching := prices.FilterCommodity(prices.Validate(raw, o.now()), crop)
	if len(matching) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoDataForCrop, crop)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	homeState := o.resolver.ReverseState(ctx, *userCoords)

	candidates := Prioritize(matching, homeState)
	if len(candidates) > o.opts.MaxCandidates {
		candidates = candidates[:o.opts.MaxCandidates]
	}

	log.WithFields(logrus.Fields{
		"records":    len(raw),
		"matching":   len(matching),
		"candidates": len(candidates),
		"home_state": homeState,
	}).Info("Geocoding candidate markets")

	kept, err := o.batches.Process(ctx, candidates, *userCoords, progress)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to geocode candidates: %w", err)
	}

	result := &Result{
		UserCoordinates: *userCoords,
		HomeState:       homeState,
		Candidates:      len(candidates),
	}
	if len(kept) == 0 {
		result.Empty = true
		log.Info("No markets found within radius")
		return result, nil
	}

	sortByDistance(kept)
	if len(kept) > o.opts.TopN {
		kept = kept[:o.opts.TopN]
	}
	result.Mandis = kept

	log.WithField("results", len(kept)).Info("Smart search complete")
	return result, nil
}
