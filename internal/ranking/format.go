package ranking

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"mandi/server/internal/models"
)

const directionsBase = "https://www.google.com/maps/dir/?api=1"

// FormatRupees renders a price with Indian digit grouping, e.g. ₹1,23,456.5
func FormatRupees(d decimal.Decimal) string {
	return "₹" + GroupIndian(d)
}

// GroupIndian groups the last three integer digits, then pairs
func GroupIndian(d decimal.Decimal) string {
	s := d.Round(2).String()
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")
	if len(whole) > 3 {
		head, tail := whole[:len(whole)-3], whole[len(whole)-3:]
		var groups []string
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		if head != "" {
			groups = append([]string{head}, groups...)
		}
		whole = strings.Join(append(groups, tail), ",")
	}

	if frac != "" {
		return sign + whole + "." + frac
	}
	return sign + whole
}

// FormatDistance renders kilometres with one decimal, "N/A" when unknown
func FormatDistance(km float64) string {
	if km < 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.1f km", km)
}

// DirectionsURL links to driving directions to a coordinate
func DirectionsURL(coords models.Coordinates) string {
	return fmt.Sprintf("%s&destination=%s,%s&travelmode=driving", directionsBase,
		decimal.NewFromFloat(coords.Lat).String(), decimal.NewFromFloat(coords.Lon).String())
}

// DirectionsURLForPlace links to directions to a free-text destination
func DirectionsURLForPlace(place string) string {
	return directionsBase + "&destination=" + url.QueryEscape(place)
}
