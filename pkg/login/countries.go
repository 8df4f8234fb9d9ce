package login

// countryNames maps calling codes to the display names Telegram's
// country picker matches on.
var countryNames = map[string]string{
	"251": "Ethiopia",
	"1":   "United States",
	"44":  "United Kingdom",
	"91":  "India",
	"86":  "China",
	"49":  "Germany",
	"33":  "France",
	"39":  "Italy",
	"34":  "Spain",
	"7":   "Russia",
	"81":  "Japan",
	"82":  "South Korea",
}

// defaultCountryName is used for any calling code missing from the
// table, so resolution always yields a usable picker search string.
const defaultCountryName = "Ethiopia"

// CountryName resolves a calling code to a picker display name. It is
// total: unknown codes fall back to the default rather than failing.
func CountryName(code string) string {
	if name, ok := countryNames[code]; ok {
		return name
	}
	return defaultCountryName
}
