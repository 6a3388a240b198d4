package ranking

import (
	"sort"
	"strings"

	"mandi/server/config"
)

const maxCropSuggestions = 8

// CropSuggestions matches input against the crop list, earliest match first
// and shorter names before longer ones
func CropSuggestions(input string) []string {
	needle := strings.ToLower(strings.TrimSpace(input))
	if needle == "" {
		return []string{}
	}

	type match struct {
		crop  string
		index int
	}
	var matches []match
	for _, crop := range config.Crops {
		if i := strings.Index(strings.ToLower(crop), needle); i >= 0 {
			matches = append(matches, match{crop: crop, index: i})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].index != matches[j].index {
			return matches[i].index < matches[j].index
		}
		return len(matches[i].crop) < len(matches[j].crop)
	})

	out := make([]string, 0, maxCropSuggestions)
	for _, m := range matches {
		if len(out) == maxCropSuggestions {
			break
		}
		out = append(out, m.crop)
	}
	return out
}
