package geocoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Pune", "pune"},
		{"  Pune,   Maharashtra ", "pune, maharashtra"},
		{"Koyambedu (Uzhavar Sandhai), Tamil Nadu", "koyambedu , tamil nadu"},
		{"Lasalgaon(Vinchur) Market", "lasalgaon market"},
		{"(naveen mandi sthal)", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestStrategies(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "city and state",
			input:    "pune, maharashtra",
			expected: []string{"pune, maharashtra", "pune", "pune,maharashtra", "maharashtra"},
		},
		{
			name:  "misspelled state",
			input: "dehradun, uttrakhand",
			expected: []string{
				"dehradun, uttrakhand",
				"dehradun, uttarakhand",
				"dehradun",
				"dehradun,uttrakhand",
				"uttrakhand",
			},
		},
		{
			name:     "alternate state name",
			input:    "cuttack, odisha",
			expected: []string{"cuttack, odisha", "cuttack, orissa", "cuttack", "cuttack,odisha", "odisha"},
		},
		{
			name:     "hyphenated single name",
			input:    "sri-ganganagar",
			expected: []string{"sri-ganganagar", "sri ganganagar"},
		},
		{
			name:     "single word",
			input:    "nashik",
			expected: []string{"nashik"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Strategies(tt.input))
		})
	}
}
