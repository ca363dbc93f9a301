package pricing

// defaultGridVersion identifies the canonical default price table below.
// Bump it when the defaults change so environments can tell which seed
// they were initialized with.
const defaultGridVersion = "2025-01"

// defaultPrices is the canonical default price table, one row per
// vehicle type, one column per distance band in catalog order. The ten
// first values are flat fees in euros HT; the seven last are per-km
// rates in euros HT. Seeding is deterministic: the same table produces
// the same grid in every environment.
//
// citadine and berline are intentionally identical: they form a price
// group and stay synchronized on every edit (see PriceGroups).
var defaultPrices = map[string][17]string{
	"citadine": {
		"90.00", "110.00", "130.00", "150.00", "170.00",
		"190.00", "210.00", "230.00", "250.00", "270.00",
		"1.60", "1.45", "1.30", "1.20", "1.10", "1.05", "1.00",
	},
	"berline": {
		"90.00", "110.00", "130.00", "150.00", "170.00",
		"190.00", "210.00", "230.00", "250.00", "270.00",
		"1.60", "1.45", "1.30", "1.20", "1.10", "1.05", "1.00",
	},
	"break": {
		"100.00", "120.00", "140.00", "160.00", "180.00",
		"200.00", "220.00", "240.00", "260.00", "280.00",
		"1.70", "1.55", "1.40", "1.28", "1.18", "1.12", "1.06",
	},
	"suv": {
		"110.00", "130.00", "150.00", "170.00", "190.00",
		"210.00", "230.00", "250.00", "270.00", "290.00",
		"1.80", "1.65", "1.50", "1.36", "1.26", "1.18", "1.12",
	},
	"utilitaire": {
		"120.00", "140.00", "160.00", "180.00", "200.00",
		"220.00", "240.00", "260.00", "280.00", "300.00",
		"1.95", "1.80", "1.62", "1.48", "1.36", "1.28", "1.20",
	},
	"premium": {
		"150.00", "175.00", "200.00", "225.00", "250.00",
		"275.00", "300.00", "325.00", "350.00", "375.00",
		"2.40", "2.20", "2.00", "1.84", "1.70", "1.60", "1.50",
	},
}

// PriceGroups lists the vehicle types that must stay price-synchronized.
// Saving a price for any member propagates the same price to the rest of
// its group. Adding a new paired group is a configuration change here,
// not a code change in the save path.
var PriceGroups = [][]string{
	{"citadine", "berline"},
}

// groupFor returns every vehicle type sharing a price group with the
// given one, including itself.
func groupFor(vehicleTypeID string) []string {
	for _, group := range PriceGroups {
		for _, member := range group {
			if member == vehicleTypeID {
				return group
			}
		}
	}
	return []string{vehicleTypeID}
}
