package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/neexbeast/travel-explorer/internal/destination"
	"github.com/neexbeast/travel-explorer/internal/history"
)

const (
	defaultPopularLimit = 10
	maxPopularLimit     = 50
	sampleSize          = 3
	storeTimeout        = 3 * time.Second
)

// diagnosticCities are checked by the diagnostics endpoint, in order.
var diagnosticCities = []string{"paris", "london", "tokyo", "new york", "rome"}

// KeyStatus reports which provider credentials are configured.
type KeyStatus struct {
	Weather bool
	Photos  bool
	Places  bool
}

func (k KeyStatus) report() map[string]string {
	state := func(ok bool) string {
		if ok {
			return "configured"
		}
		return "missing"
	}
	return map[string]string{
		"weather": state(k.Weather),
		"photos":  state(k.Photos),
		"places":  state(k.Places),
	}
}

// Handlers holds the dependencies for all HTTP handlers.
// history and lookups may be nil when Redis or PostgreSQL are not configured.
type Handlers struct {
	fetcher DestinationFetcher
	places  PlacesFinder
	catalog FeaturedCatalog
	history SearchHistory
	lookups LookupRecorder
	keys    KeyStatus
	log     *slog.Logger
}

// NewHandlers constructs Handlers with all required dependencies.
func NewHandlers(
	fetcher DestinationFetcher,
	places PlacesFinder,
	catalog FeaturedCatalog,
	hist SearchHistory,
	lookups LookupRecorder,
	keys KeyStatus,
	log *slog.Logger,
) *Handlers {
	return &Handlers{
		fetcher: fetcher,
		places:  places,
		catalog: catalog,
		history: hist,
		lookups: lookups,
		keys:    keys,
		log:     log,
	}
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Featured handles GET /api/v1/featured.
// A catalogue failure falls back to the built-in list.
func (h *Handlers) Featured(w http.ResponseWriter, r *http.Request) {
	list, err := h.catalog.ListFeatured(r.Context())
	if err != nil {
		h.log.Warn("featured list failed, serving built-in list", "err", err)
		list, _ = destination.StaticCatalog{}.ListFeatured(r.Context())
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"destinations": list,
		"count":        len(list),
	})
}

// GetDestination handles GET /api/v1/destinations/{city}.
// Featured cities use their stored details and coordinates; anything else is
// geocoded by the places component. The response is always a full aggregate.
func (h *Handlers) GetDestination(w http.ResponseWriter, r *http.Request) {
	city := cityFromSlug(chi.URLParam(r, "city"))
	if err := validateCity(city); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	req := h.request(ctx, city)

	start := time.Now()
	dest := h.fetcher.FetchAll(ctx, req)
	elapsed := time.Since(start)

	dest.LookupID = uuid.NewString()

	// The upstream deadline may have expired; bookkeeping gets its own budget.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
	defer cancel()
	h.recordSearch(ctx, city)
	h.recordLookup(ctx, destination.Lookup{
		ID:         dest.LookupID,
		City:       dest.Name,
		Sources:    dest.Sources,
		PhotoCount: len(dest.Photos),
		PlaceCount: len(dest.Places),
		DurationMS: elapsed.Milliseconds(),
	})

	writeJSON(w, http.StatusOK, dest)
}

func (h *Handlers) request(ctx context.Context, city string) destination.Request {
	f, err := h.catalog.FindFeatured(ctx, city)
	if err != nil {
		h.log.Warn("featured lookup failed", "city", city, "stage", "catalogue", "err", err)
	}
	if f != nil {
		return destination.Request{
			Name:        f.Name,
			Country:     f.Country,
			Description: f.Description,
			Coordinates: f.Coordinates(),
		}
	}
	return destination.Request{
		Name:        displayName(city),
		Country:     "Unknown",
		Description: "Explore the beautiful city of " + displayName(city) + ".",
	}
}

func (h *Handlers) recordSearch(ctx context.Context, city string) {
	if h.history == nil {
		return
	}
	if err := h.history.Record(ctx, city); err != nil {
		h.log.Warn("recording search failed", "city", city, "err", err)
	}
}

func (h *Handlers) recordLookup(ctx context.Context, l destination.Lookup) {
	if h.lookups == nil {
		return
	}
	if err := h.lookups.RecordLookup(ctx, l); err != nil {
		h.log.Warn("recording lookup failed", "city", l.City, "err", err)
	}
}

// Places handles GET /api/v1/places/{city}.
func (h *Handlers) Places(w http.ResponseWriter, r *http.Request) {
	city := cityFromSlug(chi.URLParam(r, "city"))
	if err := validateCity(city); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	places, status := h.places.Find(r.Context(), city, destination.Coordinates{})
	writeJSON(w, http.StatusOK, map[string]any{
		"city":   city,
		"places": places,
		"count":  len(places),
		"status": status,
		"source": sourceOf(places),
	})
}

// PlacesByCategory handles GET /api/v1/places/{city}/category/{category}.
// The category matches case-insensitively as a substring and must match
// something in the category vocabulary.
func (h *Handlers) PlacesByCategory(w http.ResponseWriter, r *http.Request) {
	city := cityFromSlug(chi.URLParam(r, "city"))
	if err := validateCity(city); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	category := strings.TrimSpace(chi.URLParam(r, "category"))
	if category == "" {
		writeError(w, http.StatusBadRequest, "category is required")
		return
	}
	if !destination.MatchesCategory(category) {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}

	all, status := h.places.Find(r.Context(), city, destination.Coordinates{})
	filtered := filterCategory(all, category)

	writeJSON(w, http.StatusOK, map[string]any{
		"city":     city,
		"category": category,
		"places":   filtered,
		"count":    len(filtered),
		"status":   status,
	})
}

func filterCategory(places []destination.Place, category string) []destination.Place {
	needle := strings.ToLower(category)
	out := []destination.Place{}
	for _, p := range places {
		if strings.Contains(strings.ToLower(p.Category), needle) {
			out = append(out, p)
		}
	}
	return out
}

// SearchPlaces handles GET /api/v1/search-places?city=&lat=&lng=.
// Coordinates search around that point; a city alone runs the full lookup.
func (h *Handlers) SearchPlaces(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	city := strings.TrimSpace(q.Get("city"))
	latRaw, lngRaw := q.Get("lat"), q.Get("lng")
	hasCoords := latRaw != "" && lngRaw != ""

	if city == "" && !hasCoords {
		writeError(w, http.StatusBadRequest, "either city name or coordinates (lat, lng) are required")
		return
	}
	if city != "" {
		if err := validateCity(city); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	query := map[string]any{"city": city}
	var places []destination.Place

	if hasCoords {
		center, err := parseCoordinates(latRaw, lngRaw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		label := city
		if label == "" {
			label = "Location"
		}
		query["lat"], query["lng"] = center.Lat, center.Lng
		places = h.places.Nearby(r.Context(), label, center)
	} else {
		places, _ = h.places.Find(r.Context(), city, destination.Coordinates{})
	}

	if places == nil {
		places = []destination.Place{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":  query,
		"places": places,
		"count":  len(places),
	})
}

func parseCoordinates(latRaw, lngRaw string) (destination.Coordinates, error) {
	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil || lat < -90 || lat > 90 {
		return destination.Coordinates{}, errors.New("lat must be a number between -90 and 90")
	}
	lng, err := strconv.ParseFloat(lngRaw, 64)
	if err != nil || lng < -180 || lng > 180 {
		return destination.Coordinates{}, errors.New("lng must be a number between -180 and 180")
	}
	return destination.Coordinates{Lat: lat, Lng: lng}, nil
}

// RecentSearches handles GET /api/v1/searches/recent.
func (h *Handlers) RecentSearches(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeJSON(w, http.StatusOK, map[string]any{"searches": []string{}, "enabled": false})
		return
	}

	recent, err := h.history.Recent(r.Context(), history.MaxRecent)
	if err != nil {
		h.log.Error("reading recent searches failed", "err", err)
		writeError(w, http.StatusServiceUnavailable, "search history unavailable")
		return
	}
	if recent == nil {
		recent = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"searches": recent, "enabled": true})
}

// PopularSearches handles GET /api/v1/searches/popular?limit=.
func (h *Handlers) PopularSearches(w http.ResponseWriter, r *http.Request) {
	limit := defaultPopularLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPopularLimit {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and "+strconv.Itoa(maxPopularLimit))
			return
		}
		limit = n
	}

	if h.history == nil {
		writeJSON(w, http.StatusOK, map[string]any{"searches": []history.Search{}, "enabled": false})
		return
	}

	popular, err := h.history.Popular(r.Context(), limit)
	if err != nil {
		h.log.Error("reading popular searches failed", "err", err)
		writeError(w, http.StatusServiceUnavailable, "search history unavailable")
		return
	}
	if popular == nil {
		popular = []history.Search{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"searches": popular, "enabled": true})
}

type placeSample struct {
	Name        string                  `json:"name"`
	Category    string                  `json:"category"`
	Rating      float64                 `json:"rating"`
	Coordinates destination.Coordinates `json:"coordinates"`
}

type cityDiagnostic struct {
	Count  int                `json:"count"`
	Status destination.Status `json:"status"`
	Source string             `json:"source"`
	Sample []placeSample      `json:"sample"`
}

// PlacesDiagnostics handles GET /api/v1/diagnostics/places. It runs the places
// lookup for a fixed set of cities, one after another.
func (h *Handlers) PlacesDiagnostics(w http.ResponseWriter, r *http.Request) {
	results := make(map[string]cityDiagnostic, len(diagnosticCities))

	for _, city := range diagnosticCities {
		if r.Context().Err() != nil {
			break
		}
		places, status := h.places.Find(r.Context(), city, destination.Coordinates{})

		sample := make([]placeSample, 0, sampleSize)
		for _, p := range places[:min(sampleSize, len(places))] {
			sample = append(sample, placeSample{Name: p.Name, Category: p.Category, Rating: p.Rating, Coordinates: p.Coordinates})
		}
		results[city] = cityDiagnostic{Count: len(places), Status: status, Source: sourceOf(places), Sample: sample}
		h.log.Info("places diagnostic", "city", city, "count", len(places), "status", status)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"apis":    h.keys.report(),
	})
}

func sourceOf(places []destination.Place) string {
	if len(places) == 0 {
		return "Unknown"
	}
	return places[0].Source
}

// pinger is satisfied by *pgxpool.Pool and *history.History.
type pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlerFunc returns an http.HandlerFunc that reports key configuration
// and pings whichever data stores are configured. A nil pinger is reported as
// "disabled"; a failing one makes the response 503.
func HealthHandlerFunc(db, redis pinger, keys KeyStatus, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		check := func(name string, p pinger) string {
			if p == nil {
				return "disabled"
			}
			if err := p.Ping(ctx); err != nil {
				log.Error("health check: ping failed", "store", name, "err", err)
				status = http.StatusServiceUnavailable
				return "error"
			}
			return "ok"
		}

		dbStatus := check("db", db)
		redisStatus := check("redis", redis)

		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}

		writeJSON(w, status, map[string]any{
			"status": overall,
			"db":     dbStatus,
			"redis":  redisStatus,
			"apis":   keys.report(),
		})
	}
}
