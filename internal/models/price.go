package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawPriceRecord is a row exactly as the price dataset API returns it
type RawPriceRecord struct {
	State       string `json:"state"`
	District    string `json:"district"`
	Market      string `json:"market"`
	Commodity   string `json:"commodity"`
	Variety     string `json:"variety"`
	ArrivalDate string `json:"arrival_date"`
	MinPrice    string `json:"min_price"`
	MaxPrice    string `json:"max_price"`
	ModalPrice  string `json:"modal_price"`
}

// PriceRecord is a validated mandi price in rupees per quintal
type PriceRecord struct {
	State       string          `json:"state"`
	District    string          `json:"district"`
	Market      string          `json:"market"`
	Commodity   string          `json:"commodity"`
	Variety     string          `json:"variety"`
	ArrivalDate *time.Time      `json:"arrival_date,omitempty"`
	MinPrice    decimal.Decimal `json:"min_price"`
	MaxPrice    decimal.Decimal `json:"max_price"`
	ModalPrice  decimal.Decimal `json:"modal_price"`
	Distance    *float64        `json:"distance,omitempty"`
	Coordinates *Coordinates    `json:"coordinates,omitempty"`
}

// WithLocation returns a copy of the record enriched with its position
func (r PriceRecord) WithLocation(coords Coordinates, distanceKm float64) PriceRecord {
	r.Coordinates = &coords
	r.Distance = &distanceKm
	return r
}

// DistanceKm returns the derived distance or -1 when none is attached
func (r PriceRecord) DistanceKm() float64 {
	if r.Distance == nil {
		return -1
	}
	return *r.Distance
}
