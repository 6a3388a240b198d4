package config

import "strings"

// AllStates is the selector value meaning no state filter
const AllStates = "All States"

// States lists the state filter options shown by the price table
var States = []string{
	AllStates,
	"Andhra Pradesh",
	"Arunachal Pradesh",
	"Assam",
	"Bihar",
	"Chhattisgarh",
	"Goa",
	"Gujarat",
	"Haryana",
	"Himachal Pradesh",
	"Jharkhand",
	"Karnataka",
	"Kerala",
	"Madhya Pradesh",
	"Maharashtra",
	"Manipur",
	"Meghalaya",
	"Mizoram",
	"Nagaland",
	"Odisha",
	"Punjab",
	"Rajasthan",
	"Sikkim",
	"Tamil Nadu",
	"Telangana",
	"Tripura",
	"Uttar Pradesh",
	"Uttarakhand",
	"West Bengal",
}

// stateProximity lists neighbouring states, nearest first
var stateProximity = map[string][]string{
	"haryana":        {"delhi", "punjab", "uttar pradesh", "rajasthan", "himachal pradesh"},
	"delhi":          {"haryana", "uttar pradesh", "punjab", "rajasthan"},
	"uttar pradesh":  {"delhi", "haryana", "rajasthan", "madhya pradesh", "bihar", "uttarakhand"},
	"punjab":         {"haryana", "delhi", "himachal pradesh", "jammu and kashmir", "rajasthan"},
	"rajasthan":      {"haryana", "delhi", "uttar pradesh", "madhya pradesh", "gujarat", "punjab"},
	"gujarat":        {"rajasthan", "madhya pradesh", "maharashtra"},
	"maharashtra":    {"gujarat", "madhya pradesh", "karnataka", "telangana", "goa"},
	"karnataka":      {"maharashtra", "telangana", "andhra pradesh", "tamil nadu", "kerala", "goa"},
	"tamil nadu":     {"karnataka", "andhra pradesh", "kerala", "telangana"},
	"andhra pradesh": {"telangana", "karnataka", "tamil nadu", "odisha"},
	"telangana":      {"andhra pradesh", "maharashtra", "karnataka", "odisha", "chhattisgarh"},
	"west bengal":    {"odisha", "jharkhand", "bihar", "sikkim", "assam"},
	"odisha":         {"west bengal", "jharkhand", "chhattisgarh", "andhra pradesh", "telangana"},
	"bihar":          {"uttar pradesh", "west bengal", "jharkhand", "nepal"},
	"jharkhand":      {"bihar", "west bengal", "odisha", "chhattisgarh"},
	"madhya pradesh": {"uttar pradesh", "rajasthan", "gujarat", "maharashtra", "chhattisgarh"},
	"chhattisgarh":   {"madhya pradesh", "odisha", "jharkhand", "telangana", "maharashtra"},
}

// NearbyStates returns the neighbours of a lowercase state name, nearest first
func NearbyStates(state string) []string {
	nearby := stateProximity[strings.ToLower(strings.TrimSpace(state))]
	out := make([]string, len(nearby))
	copy(out, nearby)
	return out
}

// StateRange is a rough bounding box used to name the state of a device position
type StateRange struct {
	State  string
	LatMin float64
	LatMax float64
	LonMin float64
	LonMax float64
}

// StateRanges is checked in order, the first box containing a point wins
var StateRanges = []StateRange{
	{State: "Rajasthan", LatMin: 23.0, LatMax: 30.2, LonMin: 69.5, LonMax: 78.2},
	{State: "Maharashtra", LatMin: 15.6, LatMax: 22.0, LonMin: 72.6, LonMax: 80.9},
	{State: "Uttar Pradesh", LatMin: 23.8, LatMax: 30.4, LonMin: 77.1, LonMax: 84.6},
	{State: "Gujarat", LatMin: 20.1, LatMax: 24.7, LonMin: 68.2, LonMax: 74.5},
	{State: "Karnataka", LatMin: 11.5, LatMax: 18.5, LonMin: 74.1, LonMax: 78.6},
	{State: "Andhra Pradesh", LatMin: 12.6, LatMax: 19.9, LonMin: 77.0, LonMax: 84.8},
	{State: "Tamil Nadu", LatMin: 8.1, LatMax: 13.6, LonMin: 76.2, LonMax: 80.3},
	{State: "Madhya Pradesh", LatMin: 21.1, LatMax: 26.9, LonMin: 74.0, LonMax: 82.8},
	{State: "West Bengal", LatMin: 21.5, LatMax: 27.2, LonMin: 85.8, LonMax: 89.9},
	{State: "Bihar", LatMin: 24.3, LatMax: 27.5, LonMin: 83.3, LonMax: 88.1},
	{State: "Punjab", LatMin: 29.5, LatMax: 32.5, LonMin: 73.9, LonMax: 76.9},
	{State: "Haryana", LatMin: 27.4, LatMax: 30.9, LonMin: 74.5, LonMax: 77.6},
	{State: "Kerala", LatMin: 8.2, LatMax: 12.8, LonMin: 74.9, LonMax: 77.4},
	{State: "Odisha", LatMin: 17.8, LatMax: 22.6, LonMin: 81.4, LonMax: 87.5},
	{State: "Telangana", LatMin: 15.8, LatMax: 19.9, LonMin: 77.3, LonMax: 81.8},
	{State: "Assam", LatMin: 24.2, LatMax: 28.2, LonMin: 89.7, LonMax: 96.0},
	{State: "Jharkhand", LatMin: 21.9, LatMax: 25.3, LonMin: 83.3, LonMax: 87.6},
	{State: "Chhattisgarh", LatMin: 17.8, LatMax: 24.1, LonMin: 80.2, LonMax: 84.4},
	{State: "Himachal Pradesh", LatMin: 30.2, LatMax: 33.2, LonMin: 75.5, LonMax: 79.0},
	{State: "Uttarakhand", LatMin: 28.4, LatMax: 31.4, LonMin: 77.6, LonMax: 81.0},
}
