package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/travel-explorer/internal/api"
	"github.com/neexbeast/travel-explorer/internal/destination"
	"github.com/neexbeast/travel-explorer/internal/history"
)

// ---- mock implementations ----

type mockFetcher struct {
	got []destination.Request
}

func (m *mockFetcher) FetchAll(_ context.Context, req destination.Request) *destination.Destination {
	m.got = append(m.got, req)
	return &destination.Destination{
		Name:        req.Name,
		Country:     req.Country,
		Description: req.Description,
		Coordinates: req.Coordinates,
		Photos:      []destination.Photo{{ID: "p1"}},
		Places:      samplePlaces(),
		Sources: destination.Sources{
			Weather: destination.StatusLive,
			Photos:  destination.StatusPartial,
			Places:  destination.StatusFallback,
		},
	}
}

type mockPlaces struct {
	status       destination.Status
	findCities   []string
	nearbyLabels []string
	nearbyAt     []destination.Coordinates
}

func (m *mockPlaces) Find(_ context.Context, city string, _ destination.Coordinates) ([]destination.Place, destination.Status) {
	m.findCities = append(m.findCities, city)
	return samplePlaces(), m.status
}

func (m *mockPlaces) Nearby(_ context.Context, label string, center destination.Coordinates) []destination.Place {
	m.nearbyLabels = append(m.nearbyLabels, label)
	m.nearbyAt = append(m.nearbyAt, center)
	return nil
}

type failingCatalog struct{}

func (failingCatalog) ListFeatured(context.Context) ([]destination.Featured, error) {
	return nil, fmt.Errorf("db down")
}

func (failingCatalog) FindFeatured(context.Context, string) (*destination.Featured, error) {
	return nil, fmt.Errorf("db down")
}

type mockHistory struct {
	recorded []string
	err      error
}

func (m *mockHistory) Record(_ context.Context, city string) error {
	m.recorded = append(m.recorded, city)
	return m.err
}

func (m *mockHistory) Recent(context.Context, int) ([]string, error) {
	return nil, m.err
}

func (m *mockHistory) Popular(context.Context, int) ([]history.Search, error) {
	return nil, m.err
}

type mockLookups struct {
	got []destination.Lookup
	err error
}

func (m *mockLookups) RecordLookup(_ context.Context, l destination.Lookup) error {
	m.got = append(m.got, l)
	return m.err
}

// blockingFetcher waits for the request deadline, then answers like a
// degraded aggregate would.
type blockingFetcher struct {
	hadDeadline bool
}

func (b *blockingFetcher) FetchAll(ctx context.Context, req destination.Request) *destination.Destination {
	_, b.hadDeadline = ctx.Deadline()
	<-ctx.Done()
	return &destination.Destination{Name: req.Name, Sources: destination.Sources{
		Weather: destination.StatusFallback,
		Photos:  destination.StatusFallback,
		Places:  destination.StatusFallback,
	}}
}

// ctxLookups records the context error seen at write time.
type ctxLookups struct {
	ctxErr []error
}

func (c *ctxLookups) RecordLookup(ctx context.Context, _ destination.Lookup) error {
	c.ctxErr = append(c.ctxErr, ctx.Err())
	return nil
}

type mockPinger struct{ err error }

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

type storePinger interface {
	Ping(ctx context.Context) error
}

// ---- helpers ----

const testToken = "secret-token"

type deps struct {
	fetcher api.DestinationFetcher
	places  api.PlacesFinder
	catalog api.FeaturedCatalog
	history api.SearchHistory
	lookups api.LookupRecorder
	keys    api.KeyStatus
	db      storePinger
	redis   storePinger
	token   string
	timeout time.Duration
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func buildRouter(d deps) http.Handler {
	if d.fetcher == nil {
		d.fetcher = &mockFetcher{}
	}
	if d.places == nil {
		d.places = &mockPlaces{status: destination.StatusLive}
	}
	if d.catalog == nil {
		d.catalog = destination.StaticCatalog{}
	}
	log := discardLogger()
	handlers := api.NewHandlers(d.fetcher, d.places, d.catalog, d.history, d.lookups, d.keys, log)
	return api.NewRouter(handlers, d.token, d.timeout, d.db, d.redis, log)
}

func samplePlaces() []destination.Place {
	return []destination.Place{
		{Name: "Eiffel Tower", Category: destination.CategoryTower, Rating: 4.5, Source: destination.SourceOpenTripMap},
		{Name: "Louvre", Category: destination.CategoryMuseum, Rating: 4.8, Source: destination.SourceOpenTripMap},
		{Name: "Notre-Dame", Category: destination.CategoryReligiousSite, Rating: 4.4, Source: destination.SourceOpenTripMap},
		{Name: "Old Town", Category: destination.CategoryHistoricSite, Rating: 4.1, Source: destination.SourceOpenTripMap},
	}
}

func doGet(t *testing.T, h http.Handler, path string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if len(header) == 2 {
		req.Header.Set(header[0], header[1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}

type placesBody struct {
	City     string              `json:"city"`
	Category string              `json:"category"`
	Places   []destination.Place `json:"places"`
	Count    int                 `json:"count"`
	Status   string              `json:"status"`
	Source   string              `json:"source"`
}

// ---- GET /api/v1/featured ----

func TestFeatured(t *testing.T) {
	w := doGet(t, buildRouter(deps{}), "/api/v1/featured")

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode[struct {
		Destinations []destination.Featured `json:"destinations"`
		Count        int                    `json:"count"`
	}](t, w)
	assert.Equal(t, 4, body.Count)
	require.Len(t, body.Destinations, 4)
	assert.Equal(t, "Paris", body.Destinations[0].Name)
}

func TestFeatured_CatalogueErrorServesBuiltIn(t *testing.T) {
	w := doGet(t, buildRouter(deps{catalog: failingCatalog{}}), "/api/v1/featured")

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.EqualValues(t, 4, body["count"])
}

// ---- GET /api/v1/destinations/{city} ----

func TestGetDestination_Featured(t *testing.T) {
	fetcher := &mockFetcher{}
	hist := &mockHistory{}
	lookups := &mockLookups{}
	router := buildRouter(deps{fetcher: fetcher, history: hist, lookups: lookups})

	w := doGet(t, router, "/api/v1/destinations/new-york")
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, fetcher.got, 1)
	assert.Equal(t, destination.Request{
		Name:        "New York",
		Country:     "USA",
		Description: "The city that never sleeps, iconic skyline and culture.",
		Coordinates: destination.Coordinates{Lat: 40.7128, Lng: -74.0060},
	}, fetcher.got[0])

	got := decode[destination.Destination](t, w)
	assert.Equal(t, "New York", got.Name)
	_, err := uuid.Parse(got.LookupID)
	require.NoError(t, err)
	assert.Len(t, got.Places, 4)
	assert.Equal(t, destination.StatusPartial, got.Sources.Photos)

	assert.Equal(t, []string{"new york"}, hist.recorded)
	require.Len(t, lookups.got, 1)
	assert.Equal(t, got.LookupID, lookups.got[0].ID)
	assert.Equal(t, "New York", lookups.got[0].City)
	assert.Equal(t, got.Sources, lookups.got[0].Sources)
	assert.Equal(t, 1, lookups.got[0].PhotoCount)
	assert.Equal(t, 4, lookups.got[0].PlaceCount)
}

func TestGetDestination_UnknownCity(t *testing.T) {
	fetcher := &mockFetcher{}
	w := doGet(t, buildRouter(deps{fetcher: fetcher}), "/api/v1/destinations/san-sebasti%C3%A1n")

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, fetcher.got, 1)
	req := fetcher.got[0]
	assert.Equal(t, "San Sebastián", req.Name)
	assert.Equal(t, "Unknown", req.Country)
	assert.Equal(t, "Explore the beautiful city of San Sebastián.", req.Description)
	assert.True(t, req.Coordinates.IsZero())
}

func TestGetDestination_CityWithCountry(t *testing.T) {
	fetcher := &mockFetcher{}
	w := doGet(t, buildRouter(deps{fetcher: fetcher}), "/api/v1/destinations/porto,%20portugal")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Porto, Portugal", fetcher.got[0].Name)
}

func TestGetDestination_InvalidCity(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"single letter", "/api/v1/destinations/x"},
		{"digits", "/api/v1/destinations/paris123"},
		{"symbols", "/api/v1/destinations/paris%3Bdrop"},
		{"only hyphens", "/api/v1/destinations/---"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &mockFetcher{}
			w := doGet(t, buildRouter(deps{fetcher: fetcher}), tt.path)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Empty(t, fetcher.got, "fetcher must not run for invalid input")
			assert.Contains(t, decode[map[string]string](t, w)["error"], "city")
		})
	}
}

func TestGetDestination_StoreFailuresDoNotFailRequest(t *testing.T) {
	router := buildRouter(deps{
		catalog: failingCatalog{},
		history: &mockHistory{err: fmt.Errorf("redis down")},
		lookups: &mockLookups{err: fmt.Errorf("db down")},
	})

	w := doGet(t, router, "/api/v1/destinations/paris")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[destination.Destination](t, w)
	assert.Equal(t, "Paris", got.Name)
	assert.Equal(t, "Unknown", got.Country, "catalogue failure treats the city as unknown")
}

func TestGetDestination_UpstreamDeadline(t *testing.T) {
	fetcher := &blockingFetcher{}
	lookups := &ctxLookups{}
	router := buildRouter(deps{fetcher: fetcher, lookups: lookups, timeout: 20 * time.Millisecond})

	w := doGet(t, router, "/api/v1/destinations/paris")

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, fetcher.hadDeadline)
	got := decode[destination.Destination](t, w)
	assert.Equal(t, destination.StatusFallback, got.Sources.Places)
	require.Len(t, lookups.ctxErr, 1)
	assert.NoError(t, lookups.ctxErr[0], "lookup log must not inherit the expired deadline")
}

func TestGetDestination_WithoutStores(t *testing.T) {
	w := doGet(t, buildRouter(deps{}), "/api/v1/destinations/rome")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetDestination_EndToEndUnconfigured(t *testing.T) {
	log := discardLogger()
	geoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("featured city should not be geocoded")
	}))
	defer geoSrv.Close()

	geo := destination.NewGeocoderWithURL(geoSrv.URL, log)
	places := destination.NewPlacesClient("", geo, destination.PlacesOptions{}, destination.DefaultRand(), log)
	fetcher := destination.NewFetcher(
		destination.NewWeatherClient("", destination.DefaultRand(), log),
		destination.NewPhotoClient("", 0, log),
		places,
		destination.DefaultRand(),
		log,
	)

	w := doGet(t, buildRouter(deps{fetcher: fetcher, places: places}), "/api/v1/destinations/paris")
	require.Equal(t, http.StatusOK, w.Code)

	got := decode[destination.Destination](t, w)
	assert.Equal(t, "France", got.Country)
	assert.Len(t, got.Photos, 8)
	assert.Equal(t, destination.FallbackNames("Paris"), placeNames(got.Places))
	assert.Equal(t, destination.Sources{
		Weather: destination.StatusUnconfigured,
		Photos:  destination.StatusUnconfigured,
		Places:  destination.StatusUnconfigured,
	}, got.Sources)
	assert.Contains(t, destination.MockWeather(), got.Weather)
}

func placeNames(places []destination.Place) []string {
	names := make([]string, len(places))
	for i, p := range places {
		names[i] = p.Name
	}
	return names
}

// ---- places endpoints ----

func TestPlaces(t *testing.T) {
	places := &mockPlaces{status: destination.StatusLive}
	w := doGet(t, buildRouter(deps{places: places}), "/api/v1/places/buenos-aires")

	require.Equal(t, http.StatusOK, w.Code)
	body := decode[placesBody](t, w)
	assert.Equal(t, "buenos aires", body.City)
	assert.Equal(t, 4, body.Count)
	assert.Equal(t, "live", body.Status)
	assert.Equal(t, destination.SourceOpenTripMap, body.Source)
	assert.Equal(t, []string{"buenos aires"}, places.findCities)
}

func TestPlacesByCategory(t *testing.T) {
	tests := []struct {
		category string
		want     []string
	}{
		{"MUSEUM", []string{"Louvre"}},
		{"site", []string{"Notre-Dame", "Old Town"}},
		{"castle", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			w := doGet(t, buildRouter(deps{}), "/api/v1/places/paris/category/"+tt.category)

			require.Equal(t, http.StatusOK, w.Code)
			body := decode[placesBody](t, w)
			assert.Equal(t, tt.category, body.Category)
			assert.Equal(t, tt.want, placeNames(body.Places))
			assert.Equal(t, len(tt.want), body.Count)
		})
	}
}

func TestPlacesByCategory_Unknown(t *testing.T) {
	places := &mockPlaces{}
	w := doGet(t, buildRouter(deps{places: places}), "/api/v1/places/paris/category/shopping")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, places.findCities)
}

func TestPlaces_InvalidCity(t *testing.T) {
	w := doGet(t, buildRouter(deps{}), "/api/v1/places/1234")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchPlaces_Coordinates(t *testing.T) {
	places := &mockPlaces{}
	w := doGet(t, buildRouter(deps{places: places}), "/api/v1/search-places?lat=48.85&lng=2.35")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Location"}, places.nearbyLabels)
	assert.Equal(t, []destination.Coordinates{{Lat: 48.85, Lng: 2.35}}, places.nearbyAt)
	assert.Empty(t, places.findCities)

	body := decode[placesBody](t, w)
	assert.NotNil(t, body.Places)
	assert.Equal(t, 0, body.Count)
}

func TestSearchPlaces_CoordinatesWithLabel(t *testing.T) {
	places := &mockPlaces{}
	w := doGet(t, buildRouter(deps{places: places}), "/api/v1/search-places?city=Lyon&lat=45.76&lng=4.83")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Lyon"}, places.nearbyLabels)
}

func TestSearchPlaces_CityOnly(t *testing.T) {
	places := &mockPlaces{status: destination.StatusLive}
	w := doGet(t, buildRouter(deps{places: places}), "/api/v1/search-places?city=Lisbon&lat=38.7")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Lisbon"}, places.findCities)
	assert.Empty(t, places.nearbyLabels, "a lone lat is not a coordinate")
	assert.Equal(t, 4, decode[placesBody](t, w).Count)
}

func TestSearchPlaces_BadRequests(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"nothing", ""},
		{"lat only", "?lat=10"},
		{"bad lat", "?lat=north&lng=2"},
		{"lat out of range", "?lat=91&lng=2"},
		{"lng out of range", "?lat=10&lng=-181"},
		{"bad city", "?city=%3Cscript%3E"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			places := &mockPlaces{}
			w := doGet(t, buildRouter(deps{places: places}), "/api/v1/search-places"+tt.query)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Empty(t, places.findCities)
			assert.Empty(t, places.nearbyLabels)
		})
	}
}

// ---- search history ----

func TestSearches_RecordedByDestinationLookups(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	router := buildRouter(deps{history: history.New(client)})
	for _, slug := range []string{"paris", "rome", "Paris"} {
		require.Equal(t, http.StatusOK, doGet(t, router, "/api/v1/destinations/"+slug).Code)
	}

	w := doGet(t, router, "/api/v1/searches/recent")
	require.Equal(t, http.StatusOK, w.Code)
	recent := decode[struct {
		Searches []string `json:"searches"`
		Enabled  bool     `json:"enabled"`
	}](t, w)
	assert.True(t, recent.Enabled)
	assert.Equal(t, []string{"paris", "rome"}, recent.Searches)

	w = doGet(t, router, "/api/v1/searches/popular?limit=1")
	require.Equal(t, http.StatusOK, w.Code)
	popular := decode[struct {
		Searches []history.Search `json:"searches"`
	}](t, w)
	assert.Equal(t, []history.Search{{City: "paris", Count: 2}}, popular.Searches)
}

func TestSearches_Disabled(t *testing.T) {
	router := buildRouter(deps{})

	for _, path := range []string{"/api/v1/searches/recent", "/api/v1/searches/popular"} {
		w := doGet(t, router, path)
		require.Equal(t, http.StatusOK, w.Code, path)
		body := decode[map[string]any](t, w)
		assert.Equal(t, false, body["enabled"])
		assert.Empty(t, body["searches"])
	}
}

func TestSearches_StoreError(t *testing.T) {
	router := buildRouter(deps{history: &mockHistory{err: fmt.Errorf("redis down")}})

	assert.Equal(t, http.StatusServiceUnavailable, doGet(t, router, "/api/v1/searches/recent").Code)
	assert.Equal(t, http.StatusServiceUnavailable, doGet(t, router, "/api/v1/searches/popular").Code)
}

func TestPopularSearches_BadLimit(t *testing.T) {
	router := buildRouter(deps{history: &mockHistory{}})

	for _, limit := range []string{"0", "51", "ten"} {
		w := doGet(t, router, "/api/v1/searches/popular?limit="+limit)
		assert.Equal(t, http.StatusBadRequest, w.Code, limit)
	}
}

// ---- GET /api/v1/diagnostics/places ----

func TestDiagnostics(t *testing.T) {
	places := &mockPlaces{status: destination.StatusFallback}
	router := buildRouter(deps{places: places, token: testToken, keys: api.KeyStatus{Places: true}})

	w := doGet(t, router, "/api/v1/diagnostics/places", "Authorization", "Bearer "+testToken)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, []string{"paris", "london", "tokyo", "new york", "rome"}, places.findCities)

	body := decode[struct {
		Results map[string]struct {
			Count  int    `json:"count"`
			Status string `json:"status"`
			Source string `json:"source"`
			Sample []struct {
				Name string `json:"name"`
			} `json:"sample"`
		} `json:"results"`
		APIs map[string]string `json:"apis"`
	}](t, w)

	require.Len(t, body.Results, 5)
	rome := body.Results["rome"]
	assert.Equal(t, 4, rome.Count)
	assert.Equal(t, "fallback", rome.Status)
	assert.Len(t, rome.Sample, 3)
	assert.Equal(t, map[string]string{"weather": "missing", "photos": "missing", "places": "configured"}, body.APIs)
}

func TestDiagnostics_DisabledWithoutToken(t *testing.T) {
	w := doGet(t, buildRouter(deps{}), "/api/v1/diagnostics/places")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ---- GET /api/v1/health ----

func TestHealth_OK(t *testing.T) {
	router := buildRouter(deps{db: &mockPinger{}, redis: &mockPinger{}, keys: api.KeyStatus{Weather: true}})
	w := doGet(t, router, "/api/v1/health")

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode[struct {
		Status string            `json:"status"`
		DB     string            `json:"db"`
		Redis  string            `json:"redis"`
		APIs   map[string]string `json:"apis"`
	}](t, w)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "ok", body.DB)
	assert.Equal(t, "ok", body.Redis)
	assert.Equal(t, "configured", body.APIs["weather"])
	assert.Equal(t, "missing", body.APIs["photos"])
}

func TestHealth_StoresDisabled(t *testing.T) {
	w := doGet(t, buildRouter(deps{}), "/api/v1/health")

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "disabled", body["db"])
	assert.Equal(t, "disabled", body["redis"])
}

func TestHealth_DBDown(t *testing.T) {
	router := buildRouter(deps{db: &mockPinger{err: fmt.Errorf("db unreachable")}, redis: &mockPinger{}})
	w := doGet(t, router, "/api/v1/health")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "error", body["db"])
}

func TestHealth_RedisDown(t *testing.T) {
	router := buildRouter(deps{redis: &mockPinger{err: fmt.Errorf("redis unreachable")}})
	w := doGet(t, router, "/api/v1/health")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

// ---- Auth middleware ----

func TestBearerAuth_NoHeader(t *testing.T) {
	w := doGet(t, buildRouter(deps{token: testToken}), "/api/v1/diagnostics/places")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerAuth_WrongToken(t *testing.T) {
	w := doGet(t, buildRouter(deps{token: testToken}), "/api/v1/diagnostics/places", "Authorization", "Bearer wrong-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerAuth_MissingBearerPrefix(t *testing.T) {
	w := doGet(t, buildRouter(deps{token: testToken}), "/api/v1/diagnostics/places", "Authorization", testToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerAuth_PublicRoutesNoAuth(t *testing.T) {
	router := buildRouter(deps{token: testToken})
	for _, path := range []string{"/api/v1/health", "/api/v1/featured", "/api/v1/destinations/paris", "/api/v1/places/paris"} {
		assert.Equal(t, http.StatusOK, doGet(t, router, path).Code, path)
	}
}
