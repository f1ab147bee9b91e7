package destination

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Place categories.
const (
	CategoryMuseum        = "Museum"
	CategoryReligiousSite = "Religious Site"
	CategoryTheater       = "Theater"
	CategoryBridge        = "Bridge"
	CategoryTower         = "Tower"
	CategoryMonument      = "Monument"
	CategoryCastle        = "Castle"
	CategoryGarden        = "Garden"
	CategoryPark          = "Park"
	CategoryHistoricSite  = "Historic Site"
	CategoryArchaeology   = "Archaeological Site"
	CategoryArchitecture  = "Architecture"
	CategoryGallery       = "Gallery"
	CategoryPalace        = "Palace"
	CategoryNaturalSite   = "Natural Site"
	CategoryAttraction    = "Attraction"
)

// kindCategories maps OpenTripMap kinds to categories. Order is priority: first match wins.
var kindCategories = []struct {
	kind     string
	category string
}{
	{"museums", CategoryMuseum},
	{"churches", CategoryReligiousSite},
	{"theatres", CategoryTheater},
	{"bridges", CategoryBridge},
	{"towers", CategoryTower},
	{"monuments_and_memorials", CategoryMonument},
	{"castles", CategoryCastle},
	{"gardens", CategoryGarden},
	{"parks", CategoryPark},
	{"historic", CategoryHistoricSite},
	{"archaeology", CategoryArchaeology},
	{"architecture", CategoryArchitecture},
	{"galleries", CategoryGallery},
	{"palaces", CategoryPalace},
	{"natural", CategoryNaturalSite},
}

// categoryWeights orders categories for display; lower comes first.
var categoryWeights = map[string]int{
	CategoryMonument:      1,
	CategoryMuseum:        2,
	CategoryHistoricSite:  3,
	CategoryCastle:        4,
	CategoryPalace:        5,
	CategoryReligiousSite: 6,
	CategoryTower:         7,
	CategoryBridge:        8,
	CategoryGallery:       9,
	CategoryTheater:       10,
	CategoryPark:          11,
	CategoryGarden:        12,
	CategoryArchitecture:  13,
	CategoryNaturalSite:   14,
	CategoryAttraction:    15,
}

// Categories returns the closed category vocabulary in keyword priority
// order, ending with the default Attraction.
func Categories() []string {
	out := make([]string, 0, len(kindCategories)+1)
	for _, kc := range kindCategories {
		out = append(out, kc.category)
	}
	return append(out, CategoryAttraction)
}

// MatchesCategory reports whether needle is a case-insensitive substring of
// some category in the vocabulary.
func MatchesCategory(needle string) bool {
	needle = strings.ToLower(needle)
	for _, c := range Categories() {
		if strings.Contains(strings.ToLower(c), needle) {
			return true
		}
	}
	return false
}

// CategoryWeight returns the display weight of category.
func CategoryWeight(category string) int {
	if w, ok := categoryWeights[category]; ok {
		return w
	}
	return 16
}

func categorize(kinds string) string {
	for _, kc := range kindCategories {
		if strings.Contains(kinds, kc.kind) {
			return kc.category
		}
	}
	return CategoryAttraction
}

// rating converts an OpenTripMap rate (1..3) into a 3.0..5.0 score.
func rating(rate int, kinds string) float64 {
	if rate <= 0 {
		return 4.0
	}
	r := float64(rate) / 3 * 5
	if strings.Contains(kinds, "museums") || strings.Contains(kinds, "monuments_and_memorials") {
		r += 0.3
	}
	if strings.Contains(kinds, "historic") || strings.Contains(kinds, "architecture") {
		r += 0.2
	}
	return roundRating(math.Min(5.0, math.Max(3.0, r)))
}

func roundRating(r float64) float64 {
	return math.Round(r*10) / 10
}

func formatAddress(road, city, country string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{road, city, country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

var categoryDescriptions = map[string]string{
	CategoryMuseum:        "Explore the collections and exhibits at %s.",
	CategoryReligiousSite: "Visit the historic %s.",
	CategoryPark:          "Enjoy nature and relaxation at %s.",
	CategoryMonument:      "Discover the historic %s.",
	CategoryCastle:        "Experience history at %s.",
	CategoryBridge:        "Cross the famous %s.",
	CategoryTower:         "Get views from %s.",
	CategoryGallery:       "View art at %s.",
	CategoryTheater:       "Catch a performance at %s.",
	CategoryPalace:        "Tour the magnificent %s.",
}

const maxDescription = 200

// describe picks the provider extract when present, else a category sentence.
func describe(extract, name, category string) string {
	extract = strings.TrimSpace(extract)
	if extract != "" {
		runes := []rune(extract)
		if len(runes) > maxDescription {
			return string(runes[:maxDescription]) + "..."
		}
		return extract
	}
	if tmpl, ok := categoryDescriptions[category]; ok {
		return strings.Replace(tmpl, "%s", name, 1)
	}
	return "Visit the notable " + name + "."
}

var openingHours = map[string][]string{
	CategoryMuseum:        {"9:00 AM - 5:00 PM", "10:00 AM - 6:00 PM", "9:30 AM - 5:30 PM", "10:00 AM - 5:00 PM"},
	CategoryReligiousSite: {"6:00 AM - 8:00 PM", "7:00 AM - 7:00 PM", "6:30 AM - 8:30 PM", "24 hours"},
	CategoryPark:          {"6:00 AM - 10:00 PM", "5:00 AM - 11:00 PM", "24 hours", "6:00 AM - 9:00 PM"},
	CategoryMonument:      {"9:00 AM - 6:00 PM", "8:00 AM - 7:00 PM", "10:00 AM - 5:00 PM", "9:30 AM - 6:30 PM"},
	CategoryCastle:        {"9:00 AM - 5:00 PM", "10:00 AM - 6:00 PM", "9:30 AM - 5:30 PM"},
	CategoryTower:         {"9:00 AM - 6:00 PM", "10:00 AM - 7:00 PM", "8:30 AM - 6:30 PM"},
	CategoryGallery:       {"10:00 AM - 6:00 PM", "11:00 AM - 7:00 PM", "10:00 AM - 5:00 PM"},
	CategoryTheater:       {"Box office: 10:00 AM - 8:00 PM", "Shows: 7:30 PM - 10:30 PM", "Varies by show schedule"},
	CategoryPalace:        {"9:00 AM - 5:00 PM", "10:00 AM - 4:00 PM", "9:30 AM - 5:30 PM"},
	CategoryBridge:        {"24 hours", "Open access", "Always accessible"},
	CategoryHistoricSite:  {"9:00 AM - 6:00 PM", "8:00 AM - 7:00 PM", "10:00 AM - 5:00 PM"},
	CategoryGarden:        {"8:00 AM - 6:00 PM", "7:00 AM - 7:00 PM", "6:00 AM - 8:00 PM"},
}

var defaultOpeningHours = []string{"9:00 AM - 5:00 PM", "10:00 AM - 6:00 PM"}

// OpeningHoursFor returns the candidate opening hours for category.
func OpeningHoursFor(category string) []string {
	if hours, ok := openingHours[category]; ok {
		return hours
	}
	return defaultOpeningHours
}

var ticketPrices = map[string][]string{
	CategoryMuseum:        {"€8", "€12", "€15", "€18", "€22", "Free"},
	CategoryReligiousSite: {"Free", "Free", "Donation welcome", "€3", "€5"},
	CategoryPark:          {"Free", "Free", "€2", "€5"},
	CategoryMonument:      {"€5", "€8", "€12", "€15", "€18"},
	CategoryCastle:        {"€12", "€15", "€18", "€22", "€25"},
	CategoryTower:         {"€10", "€15", "€20", "€25"},
	CategoryGallery:       {"€6", "€10", "€12", "€15", "Free"},
	CategoryTheater:       {"€25", "€35", "€45", "€55", "€75"},
	CategoryPalace:        {"€15", "€20", "€25", "€30"},
	CategoryBridge:        {"Free", "Free"},
	CategoryHistoricSite:  {"€5", "€8", "€10", "€12", "€15"},
	CategoryGarden:        {"Free", "€3", "€5", "€8"},
}

var defaultTicketPrices = []string{"€8", "€12", "€15"}

// TicketPricesFor returns the candidate prices for a category at the given rating.
// Highly rated places draw from the top of the range, low rated ones from the bottom.
func TicketPricesFor(category string, rating float64) []string {
	prices, ok := ticketPrices[category]
	if !ok {
		prices = defaultTicketPrices
	}
	switch {
	case rating >= 4.5 && len(prices) > 3:
		return prices[len(prices)-3:]
	case rating <= 3.5 && len(prices) > 3:
		return prices[:3]
	}
	return prices
}

// DedupKey lowercases name and drops every rune that is not a letter or digit.
func DedupKey(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// dedupe keeps the first place for each DedupKey.
func dedupe(places []Place) []Place {
	seen := make(map[string]bool, len(places))
	out := make([]Place, 0, len(places))
	for _, p := range places {
		key := DedupKey(p.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}

const maxPlaces = 25

// rank orders places by category weight then descending rating and keeps the top 25.
func rank(places []Place) []Place {
	sort.SliceStable(places, func(i, j int) bool {
		wi, wj := CategoryWeight(places[i].Category), CategoryWeight(places[j].Category)
		if wi != wj {
			return wi < wj
		}
		return ratingOrDefault(places[i].Rating) > ratingOrDefault(places[j].Rating)
	})
	if len(places) > maxPlaces {
		places = places[:maxPlaces]
	}
	return places
}

func ratingOrDefault(r float64) float64 {
	if r == 0 {
		return 3.5
	}
	return r
}
