package geometry

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"mandi/server/config"
	"mandi/server/internal/models"
)

// Tier buckets a distance for display
type Tier string

const (
	TierNear    Tier = "near"
	TierMid     Tier = "mid"
	TierFar     Tier = "far"
	TierUnknown Tier = "unknown"
)

const (
	nearKm = 50.0
	midKm  = 200.0

	earthRadiusKm = 6371.0
)

var nonWord = regexp.MustCompile(`[^\w\s]`)

// DistanceKm is the great-circle distance between two positions on a sphere
// of radius 6371 km. orb measures on the WGS84 equatorial radius, so its
// result is rescaled.
func DistanceKm(a, b models.Coordinates) float64 {
	return geo.DistanceHaversine(a.Point(), b.Point()) / orb.EarthRadius * earthRadiusKm
}

// RoundKm rounds to one decimal place
func RoundKm(km float64) float64 {
	return math.Round(km*10) / 10
}

// TierFor classifies a distance, negative means no distance is known
func TierFor(km float64) Tier {
	switch {
	case km < 0 || math.IsNaN(km):
		return TierUnknown
	case km < nearKm:
		return TierNear
	case km < midKm:
		return TierMid
	default:
		return TierFar
	}
}

type stateBound struct {
	state string
	bound orb.Bound
}

var stateBounds = func() []stateBound {
	out := make([]stateBound, len(config.StateRanges))
	for i, r := range config.StateRanges {
		out[i] = stateBound{
			state: r.State,
			bound: orb.Bound{
				Min: orb.Point{r.LonMin, r.LatMin},
				Max: orb.Point{r.LonMax, r.LatMax},
			},
		}
	}
	return out
}()

// StateAt names the state whose bounding box holds the point. The boxes
// overlap, the first listed wins. Empty when nothing matches.
func StateAt(coords models.Coordinates) string {
	p := coords.Point()
	for _, b := range stateBounds {
		if b.bound.Contains(p) {
			return b.state
		}
	}
	return ""
}

// cityNames are sorted so substring matches do not depend on map order
var cityNames = func() []string {
	names := make([]string, 0, len(config.CityCentroids))
	for name := range config.CityCentroids {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}()

// ApproximatePosition guesses where a market is from the static centroid
// tables: exact city name, then a city contained in the market name (or the
// other way round), then the state centre.
func ApproximatePosition(market, state string) *models.Coordinates {
	key := strings.TrimSpace(nonWord.ReplaceAllString(strings.ToLower(market), ""))

	if key != "" {
		if c, ok := config.CityCentroids[key]; ok {
			return &models.Coordinates{Lat: c.Lat, Lon: c.Lon}
		}
		for _, name := range cityNames {
			if strings.Contains(key, name) || strings.Contains(name, key) {
				c := config.CityCentroids[name]
				return &models.Coordinates{Lat: c.Lat, Lon: c.Lon}
			}
		}
	}

	if c, ok := config.StateCentroids[strings.ToLower(strings.TrimSpace(state))]; ok {
		return &models.Coordinates{Lat: c.Lat, Lon: c.Lon}
	}
	return nil
}
