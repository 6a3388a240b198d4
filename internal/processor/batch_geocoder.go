package processor

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"mandi/server/internal/geometry"
	"mandi/server/internal/models"
)

// Geocoder resolves a free-text address, nil coordinates mean not found
type Geocoder interface {
	Resolve(ctx context.Context, address string) (*models.Coordinates, error)
}

// ProgressFunc receives the kept count after every batch
type ProgressFunc func(models.SearchProgress)

type Options struct {
	BatchSize     int
	Stagger       time.Duration
	BatchPause    time.Duration
	TargetResults int
	MaxRadiusKm   float64
}

func DefaultOptions() Options {
	return Options{
		BatchSize:     3,
		Stagger:       500 * time.Millisecond,
		BatchPause:    time.Second,
		TargetResults: 25,
		MaxRadiusKm:   500,
	}
}

// BatchGeocoder geocodes candidate markets in small staggered batches and
// keeps the ones within range of an origin
type BatchGeocoder struct {
	logger   *logrus.Logger
	geocoder Geocoder
	opts     Options
}

// NewBatchGeocoder creates a new batch geocoder instance
func NewBatchGeocoder(geocoder Geocoder, opts Options, logger *logrus.Logger) *BatchGeocoder {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 1
	}
	return &BatchGeocoder{
		logger:   logger,
		geocoder: geocoder,
		opts:     opts,
	}
}

// Process walks candidates batch by batch until they run out or the target
// is reached. The returned records carry distance and coordinates, in
// candidate order. Only context errors are returned.
func (p *BatchGeocoder) Process(ctx context.Context, candidates []models.PriceRecord, origin models.Coordinates, progress ProgressFunc) ([]models.PriceRecord, error) {
	target := p.opts.TargetResults
	seen := newLocationSet()
	kept := make([]models.PriceRecord, 0, target)

	p.report(ctx, progress, 0)

	for start := 0; start < len(candidates) && len(kept) < target; start += p.opts.BatchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := min(start+p.opts.BatchSize, len(candidates))
		found, err := p.processBatch(ctx, candidates[start:end], origin, seen)
		if err != nil {
			return nil, err
		}

		for _, r := range found {
			if len(kept) == target {
				break
			}
			kept = append(kept, r)
		}

		p.logger.WithFields(logrus.Fields{
			"batch":     start/p.opts.BatchSize + 1,
			"found":     len(found),
			"kept":      len(kept),
			"attempted": seen.Len(),
		}).Info("Processed geocoding batch")

		p.report(ctx, progress, len(kept))

		if len(kept) >= target {
			p.logger.WithField("kept", len(kept)).Info("Reached target results, stopping early")
			break
		}

		if end < len(candidates) {
			if err := sleep(ctx, p.opts.BatchPause); err != nil {
				return nil, err
			}
		}
	}

	return kept, nil
}

func (p *BatchGeocoder) processBatch(ctx context.Context, batch []models.PriceRecord, origin models.Coordinates, seen *locationSet) ([]models.PriceRecord, error) {
	results := make([]*models.PriceRecord, len(batch))
	g, gctx := errgroup.WithContext(ctx)

	for i, record := range batch {
		i, record := i, record
		g.Go(func() error {
			if err := sleep(gctx, time.Duration(i)*p.opts.Stagger); err != nil {
				return err
			}
			if !seen.Add(locationKey(record)) {
				return nil
			}

			r, err := p.geocodeOne(gctx, record, origin)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				p.logger.WithError(err).WithFields(logrus.Fields{
					"market": record.Market,
					"state":  record.State,
				}).Info("Failed to geocode market")
				return nil
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	var found []models.PriceRecord
	for _, r := range results {
		if r != nil {
			found = append(found, *r)
		}
	}
	return found, nil
}

func (p *BatchGeocoder) geocodeOne(ctx context.Context, record models.PriceRecord, origin models.Coordinates) (*models.PriceRecord, error) {
	coords, err := p.geocoder.Resolve(ctx, fmt.Sprintf("%s, %s", record.Market, record.State))
	if err != nil {
		return nil, err
	}
	if coords == nil {
		return nil, nil
	}

	distance := geometry.DistanceKm(origin, *coords)
	if math.IsInf(distance, 0) || math.IsNaN(distance) || distance > p.opts.MaxRadiusKm {
		p.logger.WithFields(logrus.Fields{
			"market":   record.Market,
			"distance": distance,
		}).Debug("Market outside search radius")
		return nil, nil
	}

	r := record.WithLocation(*coords, geometry.RoundKm(distance))
	return &r, nil
}

// report skips the callback once the search is over so a late batch cannot
// overwrite the progress of a newer one
func (p *BatchGeocoder) report(ctx context.Context, progress ProgressFunc, kept int) {
	if progress == nil || ctx.Err() != nil {
		return
	}
	progress(models.SearchProgress{Current: min(kept, p.opts.TargetResults), Total: p.opts.TargetResults})
}

func locationKey(r models.PriceRecord) string {
	return strings.ToLower(strings.TrimSpace(r.Market)) + ", " + strings.ToLower(strings.TrimSpace(r.State))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// locationSet is a thread-safe set of market keys already attempted
type locationSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func newLocationSet() *locationSet {
	return &locationSet{seen: make(map[string]struct{})}
}

// Add reports whether the key was newly added
func (s *locationSet) Add(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.seen[key]; exists {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

func (s *locationSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}
