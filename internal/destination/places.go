package destination

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"
)

const (
	otmDefaultURL = "https://api.opentripmap.com/0.1/en/places"
	placesTimeout = 10 * time.Second
	detailTimeout = 8 * time.Second

	searchRadiusMeters = 15000
	hitsPerTier        = 15
	detailsPerTier     = 10
	maxDetails         = 30
)

// rateTiers are OpenTripMap "rate" filters, most interesting first.
var rateTiers = []int{3, 2, 1}

// PlacesOptions tune how hard the aggregator pushes OpenTripMap.
type PlacesOptions struct {
	// DetailDelay is the pause between detail-fetch batches.
	DetailDelay time.Duration
	// TierDelay is the pause between rate tiers.
	TierDelay time.Duration
	// DetailConcurrency is the number of detail fetches in flight at once. Values below 1 mean 1.
	DetailConcurrency int
}

// DefaultPlacesOptions returns sequential fetching with short courtesy pauses.
func DefaultPlacesOptions() PlacesOptions {
	return PlacesOptions{DetailDelay: 100 * time.Millisecond, TierDelay: 300 * time.Millisecond, DetailConcurrency: 1}
}

type geocoder interface {
	Locate(ctx context.Context, name string) Coordinates
}

// PlacesClient finds notable places from OpenTripMap with a hardcoded fallback.
type PlacesClient struct {
	apiKey       string
	baseURL      string
	opts         PlacesOptions
	geo          geocoder
	client       *http.Client
	detailClient *http.Client
	rnd          Rand
	log          *slog.Logger
}

// NewPlacesClient constructs a PlacesClient using the production OpenTripMap URL.
func NewPlacesClient(apiKey string, geo geocoder, opts PlacesOptions, rnd Rand, log *slog.Logger) *PlacesClient {
	return NewPlacesClientWithURL(otmDefaultURL, apiKey, geo, opts, rnd, log)
}

// NewPlacesClientWithURL constructs a PlacesClient pointing at a custom base URL (for tests).
func NewPlacesClientWithURL(baseURL, apiKey string, geo geocoder, opts PlacesOptions, rnd Rand, log *slog.Logger) *PlacesClient {
	if opts.DetailConcurrency < 1 {
		opts.DetailConcurrency = 1
	}
	return &PlacesClient{
		apiKey:       apiKey,
		baseURL:      strings.TrimRight(baseURL, "/"),
		opts:         opts,
		geo:          geo,
		client:       newHTTPClient(placesTimeout),
		detailClient: newHTTPClient(detailTimeout),
		rnd:          rnd,
		log:          log,
	}
}

// otmRate accepts both the numeric rate of search results and the "3h" style string of detail records.
type otmRate int

func (r *otmRate) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*r = 0
		return nil
	}
	if n, err := strconv.Atoi(s[:1]); err == nil {
		*r = otmRate(n)
		return nil
	}
	return fmt.Errorf("unexpected rate %s", b)
}

type otmPoint struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

type otmHit struct {
	XID   string  `json:"xid"`
	Name  string  `json:"name"`
	Kinds string  `json:"kinds"`
	Rate  otmRate `json:"rate"`
}

type otmDetail struct {
	XID     string    `json:"xid"`
	Name    string    `json:"name"`
	Kinds   string    `json:"kinds"`
	Rate    otmRate   `json:"rate"`
	URL     string    `json:"url"`
	Image   string    `json:"image"`
	Point   *otmPoint `json:"point"`
	Address struct {
		Road    string `json:"road"`
		City    string `json:"city"`
		Country string `json:"country"`
	} `json:"address"`
	Preview struct {
		Source string `json:"source"`
	} `json:"preview"`
	WikipediaExtracts struct {
		Text string `json:"text"`
		HTML string `json:"html"`
	} `json:"wikipedia_extracts"`
}

// Find returns up to 25 ranked places for city. It never returns an empty list:
// when the provider yields nothing a fallback set is served instead.
func (c *PlacesClient) Find(ctx context.Context, city string, coords Coordinates) ([]Place, Status) {
	if coords.IsZero() {
		coords = c.geo.Locate(ctx, city)
	}
	if coords.IsZero() {
		c.log.Warn("no coordinates for city, using fallback places", "city", city, "stage", "resolve")
		return fallbackPlaces(city, coords, c.rnd), StatusFallback
	}

	if c.apiKey == "" {
		c.log.Info("opentripmap key not configured, using fallback places", "city", city)
		return fallbackPlaces(city, coords, c.rnd), StatusUnconfigured
	}

	places := c.Nearby(ctx, city, coords)
	if len(places) == 0 {
		c.log.Warn("no places found, using fallback places", "city", city, "stage", "candidates")
		return fallbackPlaces(city, coords, c.rnd), StatusFallback
	}

	c.log.Info("fetched places", "city", city, "count", len(places))
	return places, StatusLive
}

// Nearby runs the tiered search around center and returns deduplicated, ranked
// places. It may return an empty list; label is only used for logging.
func (c *PlacesClient) Nearby(ctx context.Context, label string, center Coordinates) []Place {
	var places []Place

	for i, tier := range rateTiers {
		if len(places) >= maxDetails {
			break
		}
		if i > 0 {
			pause(ctx, c.opts.TierDelay)
		}

		hits, err := c.radius(ctx, center, tier)
		if err != nil {
			c.log.Warn("places tier failed", "city", label, "provider", "opentripmap", "rate", tier, "err", err)
			continue
		}
		c.log.Debug("places tier fetched", "city", label, "rate", tier, "hits", len(hits))

		if len(hits) > detailsPerTier {
			hits = hits[:detailsPerTier]
		}
		places = append(places, c.details(ctx, label, center, hits, maxDetails-len(places))...)
	}

	return rank(dedupe(places))
}

// details fetches detail records for hits in batches of DetailConcurrency,
// stopping once budget places have been accepted.
func (c *PlacesClient) details(ctx context.Context, label string, center Coordinates, hits []otmHit, budget int) []Place {
	var accepted []Place

	for start := 0; start < len(hits) && len(accepted) < budget; {
		if start > 0 {
			pause(ctx, c.opts.DetailDelay)
		}

		n := min(c.opts.DetailConcurrency, budget-len(accepted), len(hits)-start)
		batch := hits[start : start+n]
		start += n

		records := make([]*otmDetail, len(batch))
		var g errgroup.Group
		for i, hit := range batch {
			g.Go(func() error {
				d, err := c.fetchDetail(ctx, hit.XID)
				if err != nil {
					c.log.Warn("place detail failed", "city", label, "provider", "opentripmap", "xid", hit.XID, "name", hit.Name, "err", err)
					return nil
				}
				records[i] = d
				return nil
			})
		}
		_ = g.Wait()

		// Normalization draws from c.rnd, so it stays on this goroutine.
		for i, d := range records {
			if d == nil {
				continue
			}
			if p := c.toPlace(batch[i].XID, d, center); p != nil {
				accepted = append(accepted, *p)
			}
		}
	}

	return accepted
}

func (c *PlacesClient) radius(ctx context.Context, center Coordinates, rate int) ([]otmHit, error) {
	endpoint := fmt.Sprintf(
		"%s/radius?radius=%d&lon=%f&lat=%f&rate=%d&limit=%d&format=json&apikey=%s",
		c.baseURL, searchRadiusMeters, center.Lng, center.Lat, rate, hitsPerTier, url.QueryEscape(c.apiKey),
	)

	var hits []otmHit
	if err := doGet(ctx, c.client, endpoint, nil, &hits); err != nil {
		return nil, fmt.Errorf("opentripmap radius rate %d: %w", rate, err)
	}
	return hits, nil
}

func (c *PlacesClient) fetchDetail(ctx context.Context, xid string) (*otmDetail, error) {
	endpoint := c.baseURL + "/xid/" + url.PathEscape(xid) + "?apikey=" + url.QueryEscape(c.apiKey)

	var d otmDetail
	if err := doGet(ctx, c.detailClient, endpoint, nil, &d); err != nil {
		return nil, fmt.Errorf("opentripmap detail %s: %w", xid, err)
	}
	return &d, nil
}

// toPlace normalizes a detail record. It returns nil for malformed records.
func (c *PlacesClient) toPlace(xid string, d *otmDetail, center Coordinates) *Place {
	name := strings.TrimSpace(d.Name)
	if len([]rune(name)) < 3 || d.Point == nil {
		c.log.Debug("skipping malformed place", "xid", xid, "name", name)
		return nil
	}

	category := categorize(d.Kinds)
	r := rating(int(d.Rate), d.Kinds)
	coords := Coordinates{Lat: d.Point.Lat, Lng: d.Point.Lon}

	if d.XID != "" {
		xid = d.XID
	}
	return &Place{
		ID:           xid,
		Name:         name,
		Category:     category,
		Address:      formatAddress(d.Address.Road, d.Address.City, d.Address.Country),
		Description:  describe(extractText(d.WikipediaExtracts.Text, d.WikipediaExtracts.HTML), name, category),
		Rating:       r,
		Coordinates:  coords,
		DistanceKm:   distanceKm(center, coords),
		OpeningHours: pick(c.rnd, OpeningHoursFor(category)),
		TicketPrice:  pick(c.rnd, TicketPricesFor(category, r)),
		Website:      optional(d.URL),
		Image:        optional(firstNonEmpty(d.Preview.Source, d.Image)),
		Source:       SourceOpenTripMap,
	}
}

// extractText prefers the plain extract and reduces the HTML one to text otherwise.
func extractText(text, html string) string {
	if strings.TrimSpace(text) != "" || html == "" {
		return text
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
