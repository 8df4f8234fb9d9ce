package login

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountryName_KnownCodes(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"251", "Ethiopia"},
		{"1", "United States"},
		{"44", "United Kingdom"},
		{"91", "India"},
		{"86", "China"},
		{"49", "Germany"},
		{"33", "France"},
		{"39", "Italy"},
		{"34", "Spain"},
		{"7", "Russia"},
		{"81", "Japan"},
		{"82", "South Korea"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, CountryName(tt.code))
		})
	}
}

func TestCountryName_IsTotal(t *testing.T) {
	// Unknown codes resolve to the default instead of failing
	for _, code := range []string{"999", "0", "", "abc", "+1", "1 "} {
		assert.Equal(t, defaultCountryName, CountryName(code), "code %q", code)
	}

	// Every table entry is a usable, non-empty search string
	for code, name := range countryNames {
		assert.NotEmpty(t, name, "code %q", code)
	}
}
