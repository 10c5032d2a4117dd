package discovery

// BusinessTypeOther is the sentinel category for unclassifiable businesses.
const BusinessTypeOther = "other"

// typeLabels maps Google place type tags to display categories.
var typeLabels = map[string]string{
	"restaurant":         "Gastronomie",
	"cafe":               "Gastronomie",
	"bar":                "Gastronomie",
	"store":              "Einzelhandel",
	"doctor":             "Arzt/Gesundheit",
	"dentist":            "Arzt/Gesundheit",
	"lawyer":             "Rechtsanwalt",
	"accounting":         "Steuerberater",
	"real_estate_agency": "Immobilien",
	"hair_care":          "Dienstleistung",
	"beauty_salon":       "Dienstleistung",
	"gym":                "Fitness/Sport",
	"lodging":            "Hotel/Unterkunft",
	"car_repair":         "Handwerk/KFZ",
	"plumber":            "Handwerk",
	"electrician":        "Handwerk",
	"painter":            "Handwerk",
}

// ClassifyTypes maps a list of place type tags to a single display category.
// Tags are scanned in the order provided; the first tag present in the
// mapping table wins. An unmapped list falls back to its first tag verbatim.
func ClassifyTypes(types []string) string {
	if len(types) == 0 {
		return BusinessTypeOther
	}
	for _, t := range types {
		if label, ok := typeLabels[t]; ok {
			return label
		}
	}
	if types[0] == "" {
		return BusinessTypeOther
	}
	return types[0]
}
