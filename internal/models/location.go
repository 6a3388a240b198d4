package models

import "github.com/paulmach/orb"

// Coordinates is a WGS84 position in degrees
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Point converts the coordinates to an orb point (lon, lat order)
func (c Coordinates) Point() orb.Point {
	return orb.Point{c.Lon, c.Lat}
}

// SuggestionType categorises an autocomplete suggestion
type SuggestionType string

const (
	SuggestionCity     SuggestionType = "city"
	SuggestionDistrict SuggestionType = "district"
	SuggestionState    SuggestionType = "state"
	SuggestionLandmark SuggestionType = "landmark"
	SuggestionAddress  SuggestionType = "address"
)

type LocationSuggestion struct {
	Name        string         `json:"name"`
	Type        SuggestionType `json:"type"`
	DisplayName string         `json:"display_name"`
	FullAddress string         `json:"full_address"`
	Coordinates Coordinates    `json:"coordinates"`
}

// RawAddress is the address breakdown shared by the geocoder responses
type RawAddress struct {
	City          string `json:"city"`
	Town          string `json:"town"`
	Village       string `json:"village"`
	StateDistrict string `json:"state_district"`
	State         string `json:"state"`
}

// RawAutocompleteResult is one entry of the autocomplete response
type RawAutocompleteResult struct {
	DisplayName string     `json:"display_name"`
	Lat         string     `json:"lat"`
	Lon         string     `json:"lon"`
	Class       string     `json:"class"`
	Type        string     `json:"type"`
	Address     RawAddress `json:"address"`
}

// RawGeocodeResult is one entry of the forward search response
type RawGeocodeResult struct {
	Lat     string     `json:"lat"`
	Lon     string     `json:"lon"`
	Address RawAddress `json:"address"`
}

// RawReverseResult is the reverse geocoding response
type RawReverseResult struct {
	Lat     string     `json:"lat"`
	Lon     string     `json:"lon"`
	Address RawAddress `json:"address"`
}

// SearchProgress reports how far a smart search has come
type SearchProgress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}
