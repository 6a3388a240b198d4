package ranking

import (
	"fmt"

	"github.com/paulmach/orb/geojson"

	"mandi/server/internal/models"
	"mandi/server/internal/search"
)

const (
	noResultsTitle = "No mandis found within 500km radius"
	noResultsHint  = "Try searching for a different location or crop, or check back later for updated data."
)

type RankedEntry struct {
	Rank          int                 `json:"rank"`
	Market        string              `json:"market"`
	District      string              `json:"district"`
	State         string              `json:"state"`
	Commodity     string              `json:"commodity"`
	Variety       string              `json:"variety,omitempty"`
	DistanceKm    float64             `json:"distance_km"`
	Distance      string              `json:"distance"`
	ModalPrice    string              `json:"modal_price"`
	ArrivalDate   string              `json:"arrival_date,omitempty"`
	Coordinates   *models.Coordinates `json:"coordinates,omitempty"`
	DirectionsURL string              `json:"directions_url"`
}

// RankedResponse is the smart search result as shown to the user
type RankedResponse struct {
	Entries         []RankedEntry      `json:"entries"`
	Summary         string             `json:"summary"`
	Empty           bool               `json:"empty"`
	Hint            string             `json:"hint,omitempty"`
	UserCoordinates models.Coordinates `json:"user_coordinates"`
	HomeState       string             `json:"home_state,omitempty"`
}

// RankedView numbers the ranked mandis and writes the summary line
func RankedView(result *search.Result, crop string) RankedResponse {
	resp := RankedResponse{
		Entries:         []RankedEntry{},
		UserCoordinates: result.UserCoordinates,
		HomeState:       result.HomeState,
	}

	if result.Empty || len(result.Mandis) == 0 {
		resp.Empty = true
		resp.Summary = noResultsTitle
		resp.Hint = fmt.Sprintf("%s Searched nearby regions for %q within 500km of your location.", noResultsHint, crop)
		return resp
	}

	for i, m := range result.Mandis {
		entry := RankedEntry{
			Rank:        i + 1,
			Market:      m.Market,
			District:    m.District,
			State:       m.State,
			Commodity:   m.Commodity,
			Variety:     m.Variety,
			DistanceKm:  m.DistanceKm(),
			Distance:    FormatDistance(m.DistanceKm()),
			ModalPrice:  FormatRupees(m.ModalPrice),
			Coordinates: m.Coordinates,
		}
		if m.ArrivalDate != nil {
			entry.ArrivalDate = m.ArrivalDate.Format("2006-01-02")
		}
		if m.Coordinates != nil {
			entry.DirectionsURL = DirectionsURL(*m.Coordinates)
		} else {
			entry.DirectionsURL = DirectionsURLForPlace(m.Market + ", " + m.State + ", India")
		}
		resp.Entries = append(resp.Entries, entry)
	}

	resp.Summary = fmt.Sprintf("Showing top %d mandis with highest prices within 500km radius", len(resp.Entries))
	return resp
}

// FeatureCollection renders the ranked mandis as points, the user position
// included as the first feature
func FeatureCollection(result *search.Result) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	user := geojson.NewFeature(result.UserCoordinates.Point())
	user.Properties = geojson.Properties{"kind": "user"}
	if result.HomeState != "" {
		user.Properties["state"] = result.HomeState
	}
	fc.Append(user)

	for i, m := range result.Mandis {
		if m.Coordinates == nil {
			continue
		}
		f := geojson.NewFeature(m.Coordinates.Point())
		f.Properties = geojson.Properties{
			"kind":        "mandi",
			"rank":        i + 1,
			"market":      m.Market,
			"state":       m.State,
			"commodity":   m.Commodity,
			"distance_km": m.DistanceKm(),
			"modal_price": m.ModalPrice.InexactFloat64(),
		}
		fc.Append(f)
	}
	return fc
}
