package destination

import (
	"strconv"
	"strings"
)

type fallbackEntry struct {
	name, category, address, description string
	rating                               float64
}

type fallbackCity struct {
	center  Coordinates
	entries []fallbackEntry
}

var fallbackCities = map[string]fallbackCity{
	"paris": {Coordinates{48.8566, 2.3522}, []fallbackEntry{
		{"Eiffel Tower", CategoryTower, "Champ de Mars, Paris", "Iconic iron tower and symbol of Paris.", 4.5},
		{"Louvre Museum", CategoryMuseum, "Rue de Rivoli, Paris", "World's largest art museum, home to the Mona Lisa.", 4.6},
		{"Notre-Dame Cathedral", CategoryReligiousSite, "Île de la Cité, Paris", "Gothic masterpiece on the Seine River.", 4.4},
		{"Arc de Triomphe", CategoryMonument, "Place Charles de Gaulle, Paris", "Triumphal arch honoring French military victories.", 4.5},
		{"Sacré-Cœur Basilica", CategoryReligiousSite, "Montmartre, Paris", "Beautiful basilica atop Montmartre hill.", 4.4},
	}},
	"london": {Coordinates{51.5074, -0.1278}, []fallbackEntry{
		{"Big Ben", CategoryTower, "Westminster, London", "Iconic clock tower at the Palace of Westminster.", 4.5},
		{"Tower of London", CategoryCastle, "Tower Hill, London", "Historic castle housing the Crown Jewels.", 4.4},
		{"London Eye", CategoryAttraction, "South Bank, London", "Giant observation wheel with city views.", 4.3},
		{"British Museum", CategoryMuseum, "Great Russell St, London", "World-renowned museum of human history.", 4.6},
		{"Tower Bridge", CategoryBridge, "Tower Bridge Rd, London", "Victorian bridge with glass floor walkway.", 4.5},
	}},
	"tokyo": {Coordinates{35.6762, 139.6503}, []fallbackEntry{
		{"Senso-ji Temple", CategoryReligiousSite, "Asakusa, Tokyo", "Ancient Buddhist temple in Asakusa district.", 4.3},
		{"Tokyo Skytree", CategoryTower, "Sumida, Tokyo", "Tallest structure in Japan with observation decks.", 4.2},
		{"Meiji Shrine", CategoryReligiousSite, "Shibuya, Tokyo", "Shinto shrine surrounded by forest in the city.", 4.4},
		{"Imperial Palace", CategoryPalace, "Chiyoda, Tokyo", "Primary residence of the Emperor of Japan.", 4.0},
		{"Shibuya Crossing", CategoryAttraction, "Shibuya, Tokyo", "World's busiest pedestrian crossing.", 4.3},
	}},
	"new york": {Coordinates{40.7128, -74.0060}, []fallbackEntry{
		{"Statue of Liberty", CategoryMonument, "Liberty Island, NY", "Symbol of freedom and democracy.", 4.5},
		{"Central Park", CategoryPark, "Manhattan, New York", "Large public park in the heart of Manhattan.", 4.6},
		{"Times Square", CategoryAttraction, "Manhattan, New York", "Bright lights and Broadway theaters.", 4.2},
		{"Empire State Building", CategoryTower, "Midtown Manhattan, NY", "Art Deco skyscraper with city views.", 4.4},
		{"Brooklyn Bridge", CategoryBridge, "Brooklyn, New York", "Historic suspension bridge over East River.", 4.5},
	}},
	"rome": {Coordinates{41.9028, 12.4964}, []fallbackEntry{
		{"Colosseum", CategoryHistoricSite, "Rome, Italy", "Ancient amphitheater, symbol of Imperial Rome.", 4.6},
		{"Vatican City", CategoryReligiousSite, "Vatican City", "Papal residence with Sistine Chapel.", 4.7},
		{"Trevi Fountain", CategoryMonument, "Rome, Italy", "Baroque fountain, famous for coin tossing.", 4.5},
		{"Pantheon", CategoryHistoricSite, "Rome, Italy", "Best-preserved Roman building.", 4.6},
		{"Roman Forum", CategoryHistoricSite, "Rome, Italy", "Center of ancient Roman public life.", 4.4},
	}},
	"barcelona": {Coordinates{41.3874, 2.1686}, []fallbackEntry{
		{"Sagrada Familia", CategoryReligiousSite, "Barcelona, Spain", "Gaudí's unfinished masterpiece basilica.", 4.6},
		{"Park Güell", CategoryPark, "Barcelona, Spain", "Colorful mosaic park by Gaudí.", 4.4},
		{"Casa Batlló", CategoryArchitecture, "Barcelona, Spain", "Gaudí's fantastical modernist house.", 4.5},
		{"La Rambla", CategoryAttraction, "Barcelona, Spain", "Famous tree-lined pedestrian street.", 4.2},
		{"Gothic Quarter", CategoryHistoricSite, "Barcelona, Spain", "Medieval neighborhood with narrow streets.", 4.3},
	}},
}

func genericFallback(city string) []fallbackEntry {
	return []fallbackEntry{
		{"City Center", CategoryAttraction, "Downtown " + city, "Main commercial and cultural district.", 4.0},
		{"Historic Old Town", CategoryHistoricSite, city, "Historic heart of the city.", 4.1},
		{"Main Square", CategoryAttraction, "Central " + city, "Central meeting place and landmark.", 4.1},
		{"City Museum", CategoryMuseum, city, "Local history and culture museum.", 4.0},
	}
}

// FallbackNames returns the names served for city when no provider data is available.
func FallbackNames(city string) []string {
	entries := genericFallback(city)
	if fc, ok := fallbackCities[strings.ToLower(strings.TrimSpace(city))]; ok {
		entries = fc.entries
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names
}

// fallbackPlaces builds the synthetic place list for city. Coordinates are
// jittered around center, or around the table's own centre when center is zero.
func fallbackPlaces(city string, center Coordinates, rnd Rand) []Place {
	key := strings.ToLower(strings.TrimSpace(city))
	entries := genericFallback(city)
	if fc, ok := fallbackCities[key]; ok {
		entries = fc.entries
		if center.IsZero() {
			center = fc.center
		}
	}

	places := make([]Place, 0, len(entries))
	for i, e := range entries {
		r := roundRating(e.rating)
		p := Place{
			ID:           "fallback-" + key + "-" + strconv.Itoa(i),
			Name:         e.name,
			Category:     e.category,
			Address:      e.address,
			Description:  e.description,
			Rating:       r,
			ReviewCount:  100 + rnd.IntN(1000),
			OpeningHours: pick(rnd, OpeningHoursFor(e.category)),
			TicketPrice:  pick(rnd, TicketPricesFor(e.category, r)),
			Source:       SourceFallback,
		}
		if !center.IsZero() {
			p.Coordinates = jitter(center, rnd)
			p.DistanceKm = distanceKm(center, p.Coordinates)
		}
		places = append(places, p)
	}
	return places
}
