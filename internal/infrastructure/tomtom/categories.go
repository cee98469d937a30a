package tomtom

// TomTom POI category codes:
// https://developer.tomtom.com/search-api/documentation/search-service/points-of-interest-categories
var categorySets = map[string]string{
	"restaurant":  "7315",    // Restaurant
	"cafe":        "9376003", // Coffee Shop
	"atm":         "7397",    // ATM
	"pharmacy":    "7326",    // Pharmacy
	"hospital":    "7321",    // Hospital
	"bank":        "7328",    // Bank
	"fuel":        "7311",    // Petrol Station
	"parking":     "7369",    // Parking Garage
	"market":      "7332025", // Supermarket
	"bus_station": "7380",    // Public Transport Stop
	"library":     "9913",    // Library
	"tourist":     "7376",    // Tourist Attraction
}

// CategorySet maps an application category id to a TomTom categorySet
// code. Unknown categories fall back to Restaurant.
func CategorySet(category string) string {
	if code, ok := categorySets[category]; ok {
		return code
	}
	return "7315"
}
