package destination

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	nominatimDefaultURL = "https://nominatim.openstreetmap.org/search"
	geocodeTimeout      = 5 * time.Second
)

// Geocoder resolves free-text place names to coordinates using Nominatim.
type Geocoder struct {
	baseURL string
	client  *http.Client
	log     *slog.Logger
}

// NewGeocoder constructs a Geocoder using the public Nominatim endpoint.
func NewGeocoder(log *slog.Logger) *Geocoder {
	return NewGeocoderWithURL(nominatimDefaultURL, log)
}

// NewGeocoderWithURL constructs a Geocoder pointing at a custom base URL (for tests).
func NewGeocoderWithURL(baseURL string, log *slog.Logger) *Geocoder {
	return &Geocoder{baseURL: baseURL, client: newHTTPClient(geocodeTimeout), log: log}
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Locate returns the first match for name, or the zero Coordinates when the
// lookup fails or finds nothing. It never returns an error.
func (g *Geocoder) Locate(ctx context.Context, name string) Coordinates {
	endpoint := g.baseURL + "?format=json&limit=1&addressdetails=1&q=" + url.QueryEscape(name)

	var raw []nominatimResult
	if err := doGet(ctx, g.client, endpoint, nil, &raw); err != nil {
		g.log.Warn("geocoding failed", "city", name, "provider", "nominatim", "err", err)
		return Coordinates{}
	}
	if len(raw) == 0 {
		g.log.Warn("geocoding found no match", "city", name, "provider", "nominatim")
		return Coordinates{}
	}

	lat, err := strconv.ParseFloat(raw[0].Lat, 64)
	if err != nil {
		g.log.Warn("geocoding returned bad latitude", "city", name, "value", raw[0].Lat)
		return Coordinates{}
	}
	lng, err := strconv.ParseFloat(raw[0].Lon, 64)
	if err != nil {
		g.log.Warn("geocoding returned bad longitude", "city", name, "value", raw[0].Lon)
		return Coordinates{}
	}

	g.log.Debug("geocoded city", "city", name, "lat", lat, "lng", lng)
	return Coordinates{Lat: lat, Lng: lng}
}
