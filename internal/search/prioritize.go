package search

import (
	"sort"
	"strings"

	"mandi/server/config"
	"mandi/server/internal/models"
)

// Prioritize orders records by closeness of their state to homeState: its
// neighbours in adjacency order first, then every other state, the home state
// included. Inside each group the highest modal price comes first. The input
// is not modified.
func Prioritize(records []models.PriceRecord, homeState string) []models.PriceRecord {
	home := strings.ToLower(strings.TrimSpace(homeState))
	nearby := config.NearbyStates(home)

	rank := make(map[string]int, len(nearby))
	for i, s := range nearby {
		if _, ok := rank[s]; !ok {
			rank[s] = i
		}
	}
	other := len(nearby)

	rankOf := func(state string) int {
		if r, ok := rank[strings.ToLower(strings.TrimSpace(state))]; ok {
			return r
		}
		return other
	}

	out := make([]models.PriceRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := rankOf(out[i].State), rankOf(out[j].State)
		if ri != rj {
			return ri < rj
		}
		return out[i].ModalPrice.GreaterThan(out[j].ModalPrice)
	})
	return out
}

// sortByDistance orders nearest first, the higher modal price winning ties
func sortByDistance(records []models.PriceRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		di, dj := records[i].DistanceKm(), records[j].DistanceKm()
		if di != dj {
			return di < dj
		}
		return records[i].ModalPrice.GreaterThan(records[j].ModalPrice)
	})
}
