package prices

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"mandi/server/internal/models"
)

const (
	// MaxPlausiblePrice is the sanity ceiling in rupees per quintal
	MaxPlausiblePrice = 50000

	// MaxRecordAge drops stale arrivals
	MaxRecordAge = 30 * 24 * time.Hour
)

var priceCeiling = decimal.NewFromInt(MaxPlausiblePrice)

// arrivalLayouts are tried in order, the dataset itself uses dd/mm/yyyy
var arrivalLayouts = []string{"02/01/2006", "2006-01-02", time.RFC3339}

// Validate drops malformed, stale and implausible records and orders the rest
// newest first. It never fails.
func Validate(raw []models.RawPriceRecord, now time.Time) []models.PriceRecord {
	cutoff := now.Add(-MaxRecordAge)
	valid := make([]models.PriceRecord, 0, len(raw))

	for _, r := range raw {
		record, ok := normalize(r)
		if !ok {
			continue
		}
		if record.ArrivalDate != nil && record.ArrivalDate.Before(cutoff) {
			continue
		}
		valid = append(valid, record)
	}

	sort.SliceStable(valid, func(i, j int) bool {
		a, b := valid[i].ArrivalDate, valid[j].ArrivalDate
		if a == nil || b == nil {
			return false
		}
		return a.After(*b)
	})

	return valid
}

func normalize(r models.RawPriceRecord) (models.PriceRecord, bool) {
	record := models.PriceRecord{
		State:     strings.TrimSpace(r.State),
		District:  strings.TrimSpace(r.District),
		Market:    strings.TrimSpace(r.Market),
		Commodity: strings.TrimSpace(r.Commodity),
		Variety:   strings.TrimSpace(r.Variety),
	}
	if record.Commodity == "" || record.Market == "" || record.State == "" {
		return record, false
	}

	record.MinPrice = ParsePrice(r.MinPrice)
	record.MaxPrice = ParsePrice(r.MaxPrice)
	record.ModalPrice = ParsePrice(r.ModalPrice)

	prices := []decimal.Decimal{record.MinPrice, record.MaxPrice, record.ModalPrice}
	positive := false
	for _, p := range prices {
		if p.GreaterThan(priceCeiling) {
			return record, false
		}
		if p.IsPositive() {
			positive = true
		}
	}
	if !positive {
		return record, false
	}

	record.ArrivalDate = ParseArrivalDate(r.ArrivalDate)
	return record, true
}

// ParsePrice reads a price string, unparseable input is zero
func ParsePrice(s string) decimal.Decimal {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseArrivalDate returns nil for empty or malformed dates
func ParseArrivalDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range arrivalLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// FilterCommodity keeps the records whose commodity equals crop, ignoring
// case and surrounding space
func FilterCommodity(records []models.PriceRecord, crop string) []models.PriceRecord {
	// Casers are stateful, one per call
	fold := cases.Fold()
	want := fold.String(strings.TrimSpace(crop))
	var matched []models.PriceRecord
	for _, r := range records {
		if fold.String(strings.TrimSpace(r.Commodity)) == want {
			matched = append(matched, r)
		}
	}
	return matched
}
