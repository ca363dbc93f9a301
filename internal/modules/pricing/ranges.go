package pricing

import "convoyage-platform/internal/models"

// distanceRanges is the fixed catalog of 17 distance bands used by every
// price lookup. Bands up to 100 km carry a flat fee; bands beyond 100 km
// store a per-kilometer rate. The list must stay in strict ascending
// order of LowerKm, contiguous, with the final band unbounded.
var distanceRanges = []models.DistanceRange{
	{ID: "1-10", Label: "1 à 10 km", LowerKm: 1, UpperKm: 10},
	{ID: "11-20", Label: "11 à 20 km", LowerKm: 11, UpperKm: 20},
	{ID: "21-30", Label: "21 à 30 km", LowerKm: 21, UpperKm: 30},
	{ID: "31-40", Label: "31 à 40 km", LowerKm: 31, UpperKm: 40},
	{ID: "41-50", Label: "41 à 50 km", LowerKm: 41, UpperKm: 50},
	{ID: "51-60", Label: "51 à 60 km", LowerKm: 51, UpperKm: 60},
	{ID: "61-70", Label: "61 à 70 km", LowerKm: 61, UpperKm: 70},
	{ID: "71-80", Label: "71 à 80 km", LowerKm: 71, UpperKm: 80},
	{ID: "81-90", Label: "81 à 90 km", LowerKm: 81, UpperKm: 90},
	{ID: "91-100", Label: "91 à 100 km", LowerKm: 91, UpperKm: 100},
	{ID: "101-200", Label: "101 à 200 km (prix/km)", LowerKm: 101, UpperKm: 200, PerKilometer: true},
	{ID: "201-300", Label: "201 à 300 km (prix/km)", LowerKm: 201, UpperKm: 300, PerKilometer: true},
	{ID: "301-400", Label: "301 à 400 km (prix/km)", LowerKm: 301, UpperKm: 400, PerKilometer: true},
	{ID: "401-500", Label: "401 à 500 km (prix/km)", LowerKm: 401, UpperKm: 500, PerKilometer: true},
	{ID: "501-600", Label: "501 à 600 km (prix/km)", LowerKm: 501, UpperKm: 600, PerKilometer: true},
	{ID: "601-700", Label: "601 à 700 km (prix/km)", LowerKm: 601, UpperKm: 700, PerKilometer: true},
	{ID: "701+", Label: "701 km et plus (prix/km)", LowerKm: 701, PerKilometer: true},
}

// Ranges returns the ordered distance band catalog. Callers receive a
// copy so nobody can reorder or mutate the shared table.
func Ranges() []models.DistanceRange {
	out := make([]models.DistanceRange, len(distanceRanges))
	copy(out, distanceRanges)
	return out
}

// RangeByID looks a band up by identifier.
func RangeByID(id string) (models.DistanceRange, bool) {
	for _, r := range distanceRanges {
		if r.ID == id {
			return r, true
		}
	}
	return models.DistanceRange{}, false
}
