package vat

import "strings"

// cyprusPlaces holds lower-case place names that identify a property in Cyprus.
var cyprusPlaces = []string{
	"cyprus",
	"nicosia", "lefkosia",
	"limassol", "lemesos",
	"larnaca", "larnaka",
	"paphos", "pafos",
	"famagusta", "ammochostos",
	"kyrenia", "keryneia",
	"ayia napa", "agia napa",
	"protaras",
	"paralimni",
	"strovolos",
	"aglantzia",
	"germasogeia",
	"mesa geitonia",
	"polis chrysochous",
	"peyia", "pegeia",
	"troodos",
	"κύπρος", "λευκωσία", "λεμεσός", "λάρνακα", "πάφος", "αμμόχωστος",
}

// IsCyprusProperty reports whether a free-text location mentions a Cyprus
// place name. Matching is a case-insensitive substring search.
func IsCyprusProperty(location string) bool {
	normalized := strings.ToLower(strings.TrimSpace(location))
	if normalized == "" {
		return false
	}
	for _, place := range cyprusPlaces {
		if strings.Contains(normalized, place) {
			return true
		}
	}
	return false
}
