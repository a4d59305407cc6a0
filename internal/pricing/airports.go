package pricing

import "tourbackend/internal/utils"

// airportCities maps known airport names (normalized) to their home city.
var airportCities = map[string]string{
	"fiumicino":          "rome",
	"fiumicino airport":  "rome",
	"rome fiumicino":     "rome",
	"fco":                "rome",
	"ciampino":           "rome",
	"ciampino airport":   "rome",
	"rome airport":       "rome",
	"malpensa":           "milan",
	"malpensa airport":   "milan",
	"mxp":                "milan",
	"linate":             "milan",
	"linate airport":     "milan",
	"milan airport":      "milan",
	"naples airport":     "naples",
	"capodichino":        "naples",
	"florence airport":   "florence",
	"peretola":           "florence",
	"venice airport":     "venice",
	"marco polo":         "venice",
	"marco polo airport": "venice",
}

// cityAliases folds common spellings into a canonical city key.
var cityAliases = map[string]string{
	"rome":     "rome",
	"roma":     "rome",
	"milan":    "milan",
	"milano":   "milan",
	"naples":   "naples",
	"napoli":   "naples",
	"florence": "florence",
	"firenze":  "florence",
	"venice":   "venice",
	"venezia":  "venice",
}

// IsAirport reports whether the location resolves to a known airport.
func IsAirport(location string) bool {
	_, ok := airportCities[utils.NormalizeCity(location)]
	return ok
}

// AirportCity returns the canonical city an airport belongs to, or "".
func AirportCity(location string) string {
	return airportCities[utils.NormalizeCity(location)]
}

// SameCity reports whether a location resolves to the given canonical city
// through the alias set.
func SameCity(city, location string) bool {
	if city == "" {
		return false
	}
	return cityAliases[utils.NormalizeCity(location)] == city
}
