package destination

// Coordinates is a WGS84 point. The zero value means "unresolved".
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsZero reports whether both components are zero.
func (c Coordinates) IsZero() bool {
	return c.Lat == 0 && c.Lng == 0
}

// Status describes where a component's output came from.
type Status string

const (
	// StatusLive means the output is provider data only.
	StatusLive Status = "live"
	// StatusPartial means provider data padded with synthetic entries.
	StatusPartial Status = "partial"
	// StatusUnconfigured means no credential was set, so synthetic data was used without a call.
	StatusUnconfigured Status = "unconfigured"
	// StatusFallback means the provider failed or returned nothing useful.
	StatusFallback Status = "fallback"
)

// WeatherData holds current weather conditions for a city.
type WeatherData struct {
	Temperature int     `json:"temperature"`
	Description string  `json:"description"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"`
	Icon        string  `json:"icon"`
}

// Photo is one gallery image.
type Photo struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail"`
	Alt       string `json:"alt"`
}

// Place sources.
const (
	SourceOpenTripMap = "OpenTripMap"
	SourceFallback    = "Fallback"
)

// Place is a point of interest in or near a city.
type Place struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Category     string      `json:"category"`
	Address      string      `json:"address"`
	Description  string      `json:"description"`
	Rating       float64     `json:"rating"`
	ReviewCount  int         `json:"reviewCount"`
	Coordinates  Coordinates `json:"coordinates"`
	DistanceKm   float64     `json:"distanceKm,omitempty"`
	OpeningHours string      `json:"openingHours"`
	TicketPrice  string      `json:"ticketPrice"`
	Website      *string     `json:"website"`
	Image        *string     `json:"image"`
	Source       string      `json:"source"`
}

// Sources reports the status of each component of a Destination.
type Sources struct {
	Weather Status `json:"weather"`
	Photos  Status `json:"photos"`
	Places  Status `json:"places"`
}

// Destination is the request-scoped aggregate rendered for one page view.
type Destination struct {
	LookupID    string      `json:"lookupId,omitempty"`
	Name        string      `json:"name"`
	Country     string      `json:"country"`
	Description string      `json:"description"`
	Coordinates Coordinates `json:"coordinates"`
	Weather     WeatherData `json:"weather"`
	Photos      []Photo     `json:"photos"`
	Places      []Place     `json:"places"`
	Sources     Sources     `json:"sources"`
}

// Featured is a curated destination shown on the home page.
type Featured struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Country     string  `json:"country"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
}

// Coordinates returns the featured destination's centre.
func (f Featured) Coordinates() Coordinates {
	return Coordinates{Lat: f.Lat, Lng: f.Lng}
}

// Lookup is one audit record of an aggregate request.
type Lookup struct {
	ID         string
	City       string
	Sources    Sources
	PhotoCount int
	PlaceCount int
	DurationMS int64
}
