package ranking

import (
	"fmt"
	"strings"

	"mandi/server/config"
	"mandi/server/internal/geometry"
	"mandi/server/internal/models"
	"mandi/server/internal/prices"
)

type TableRow struct {
	Market        string        `json:"market"`
	District      string        `json:"district"`
	State         string        `json:"state"`
	Commodity     string        `json:"commodity"`
	Variety       string        `json:"variety,omitempty"`
	ArrivalDate   string        `json:"arrival_date,omitempty"`
	MinPrice      string        `json:"min_price"`
	MaxPrice      string        `json:"max_price"`
	ModalPrice    string        `json:"modal_price"`
	Distance      string        `json:"distance"`
	Tier          geometry.Tier `json:"tier"`
	DirectionsURL string        `json:"directions_url"`
}

type TableResponse struct {
	Rows    []TableRow `json:"rows"`
	Summary string     `json:"summary"`
}

// TableView renders validated records for the simple price table. Distances
// come from the static centroid tables and are approximate.
func TableView(records []models.PriceRecord, filters prices.Filters, user *models.Coordinates) TableResponse {
	resp := TableResponse{Rows: make([]TableRow, 0, len(records))}

	for _, r := range records {
		km := -1.0
		if user != nil {
			if pos := geometry.ApproximatePosition(r.Market, r.State); pos != nil {
				km = geometry.DistanceKm(*user, *pos)
			}
		}

		row := TableRow{
			Market:        r.Market,
			District:      r.District,
			State:         r.State,
			Commodity:     r.Commodity,
			Variety:       r.Variety,
			MinPrice:      FormatRupees(r.MinPrice),
			MaxPrice:      FormatRupees(r.MaxPrice),
			ModalPrice:    FormatRupees(r.ModalPrice),
			Distance:      FormatDistance(km),
			Tier:          geometry.TierFor(km),
			DirectionsURL: DirectionsURLForPlace(r.Market + ", " + r.State + ", India"),
		}
		if r.ArrivalDate != nil {
			row.ArrivalDate = r.ArrivalDate.Format("2006-01-02")
		}
		resp.Rows = append(resp.Rows, row)
	}

	resp.Summary = tableSummary(len(records), filters)
	return resp
}

func tableSummary(n int, filters prices.Filters) string {
	crop := strings.TrimSpace(filters.Commodity)
	state := strings.TrimSpace(filters.State)
	if state == config.AllStates {
		state = ""
	}

	if n == 0 {
		what := crop
		if what == "" {
			what = "selected criteria"
		}
		if state != "" {
			return fmt.Sprintf("No records found for %s in %s", what, state)
		}
		return "No records found for " + what
	}

	summary := fmt.Sprintf("Found %d records", n)
	if crop != "" {
		summary += " for " + crop
	}
	if state != "" {
		summary += " in " + state
	}
	return summary
}
