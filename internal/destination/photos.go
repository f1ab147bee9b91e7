package destination

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	unsplashDefaultURL = "https://api.unsplash.com/search/photos"
	photoTimeout       = 10 * time.Second

	photoTarget  = 8
	photoMinimum = 6
)

var descriptorSuffix = regexp.MustCompile(`(?i)\s+(travel|city|tourism|attractions|landmarks).*$`)

// excludedPhotoTerms marks results that are clearly not about the place.
var excludedPhotoTerms = []string{
	"food", "meal", "dish", "recipe", "cooking", "restaurant menu",
	"portrait", "selfie", "headshot", "face close", "person looking",
	"animal", "pet", "dog", "cat", "bird", "wildlife",
	"flower close", "plant macro", "leaf detail", "garden flower",
	"bedroom", "kitchen interior", "bathroom", "living room",
	"office desk", "workplace", "computer screen", "laptop",
	"abstract pattern", "texture close", "wallpaper design",
}

var cityPhotoTerms = []string{
	"city", "urban", "downtown", "street", "building", "architecture",
	"skyline", "view", "landscape", "aerial", "panorama",
	"landmark", "monument", "bridge", "tower", "square", "plaza",
	"historic", "tourism", "travel", "destination", "sight",
}

var genericPhotos = []struct {
	id, image, suffix string
}{
	{"generic1", "photo-1449824913935-59a10b8d2000", "urban view"},
	{"generic2", "photo-1477959858617-67f85cf4f1df", "cityscape"},
	{"generic3", "photo-1444723121867-7a241cacace9", "skyline"},
	{"generic4", "photo-1486299267070-83823f5448dd", "street scene"},
	{"generic5", "photo-1506905925346-21bda4d32df4", "architecture"},
	{"generic6", "photo-1480714378408-67cf0d13bc1f", "buildings"},
	{"generic7", "photo-1514565131-fce0801e5785", "downtown"},
	{"generic8", "photo-1496442226666-8d4d0e62e6e9", "city view"},
}

// GenericPhotos returns the first count stock city photos captioned for name.
func GenericPhotos(name string, count int) []Photo {
	if count > len(genericPhotos) {
		count = len(genericPhotos)
	}
	photos := make([]Photo, 0, count)
	for _, g := range genericPhotos[:count] {
		base := "https://images.unsplash.com/" + g.image
		photos = append(photos, Photo{
			ID:        g.id,
			URL:       base + "?w=800",
			Thumbnail: base + "?w=300",
			Alt:       name + " " + g.suffix,
		})
	}
	return photos
}

// SubjectName strips trailing descriptor words from a photo query and lowercases it.
func SubjectName(query string) string {
	return strings.TrimSpace(strings.ToLower(descriptorSuffix.ReplaceAllString(query, "")))
}

// PhotoClient assembles a photo gallery from Unsplash search results.
type PhotoClient struct {
	accessKey string
	baseURL   string
	delay     time.Duration
	client    *http.Client
	log       *slog.Logger
}

// NewPhotoClient constructs a PhotoClient. An empty key serves generic photos only.
func NewPhotoClient(accessKey string, delay time.Duration, log *slog.Logger) *PhotoClient {
	return NewPhotoClientWithURL(unsplashDefaultURL, accessKey, delay, log)
}

// NewPhotoClientWithURL constructs a PhotoClient pointing at a custom base URL (for tests).
func NewPhotoClientWithURL(baseURL, accessKey string, delay time.Duration, log *slog.Logger) *PhotoClient {
	return &PhotoClient{accessKey: accessKey, baseURL: baseURL, delay: delay, client: newHTTPClient(photoTimeout), log: log}
}

type unsplashResponse struct {
	Results []unsplashPhoto `json:"results"`
}

type unsplashPhoto struct {
	ID             string `json:"id"`
	Description    string `json:"description"`
	AltDescription string `json:"alt_description"`
	URLs           struct {
		Full    string `json:"full"`
		Regular string `json:"regular"`
		Small   string `json:"small"`
		Thumb   string `json:"thumb"`
	} `json:"urls"`
}

// searchStrategies returns the query variants for name, broadest first.
func searchStrategies(name string) [][]string {
	return [][]string{
		{name},
		{name + " city", name + " tourism"},
		{name + " architecture", name + " landmark", name + " building"},
		{name + " travel", name + " destination", name + " sightseeing"},
	}
}

// relevant reports whether p passes the filter for the given strategy.
func relevant(p unsplashPhoto, strategy int, query string) bool {
	text := strings.ToLower(p.Description + " " + p.AltDescription)
	for _, term := range excludedPhotoTerms {
		if strings.Contains(text, term) {
			return false
		}
	}
	if strategy == 0 {
		return true
	}
	for _, term := range cityPhotoTerms {
		if strings.Contains(text, term) || strings.Contains(query, term) {
			return true
		}
	}
	return false
}

// Fetch returns between 6 and 8 photos for query, padding with generic imagery.
func (c *PhotoClient) Fetch(ctx context.Context, query string) ([]Photo, Status) {
	name := SubjectName(query)

	if c.accessKey == "" {
		c.log.Info("unsplash key not configured, using generic photos", "city", name)
		return GenericPhotos(name, photoTarget), StatusUnconfigured
	}

	var photos []Photo
	seen := make(map[string]bool)
	calls := 0

	for strategy, queries := range searchStrategies(name) {
		if len(photos) >= photoTarget {
			break
		}
		for _, q := range queries {
			if len(photos) >= photoTarget {
				break
			}
			if calls > 0 {
				pause(ctx, c.delay)
			}
			calls++

			results, err := c.search(ctx, q)
			if err != nil {
				c.log.Warn("photo query failed", "city", name, "provider", "unsplash", "query", q, "err", err)
				continue
			}

			for _, p := range results {
				if len(photos) >= photoTarget {
					break
				}
				if p.ID == "" || seen[p.ID] || !relevant(p, strategy, q) {
					continue
				}
				seen[p.ID] = true
				photos = append(photos, toPhoto(p, name))
			}
			c.log.Debug("photo query done", "city", name, "query", q, "strategy", strategy+1, "collected", len(photos))
		}
	}

	switch {
	case len(photos) >= photoMinimum:
		return photos, StatusLive
	case len(photos) > 0:
		c.log.Info("padding photos with generic images", "city", name, "found", len(photos))
		return append(photos, GenericPhotos(name, photoTarget-len(photos))...), StatusPartial
	default:
		c.log.Warn("no relevant photos found, using generic images", "city", name, "provider", "unsplash")
		return GenericPhotos(name, photoTarget), StatusFallback
	}
}

func (c *PhotoClient) search(ctx context.Context, q string) ([]unsplashPhoto, error) {
	endpoint := c.baseURL + "?query=" + url.QueryEscape(q) + "&per_page=30&client_id=" + url.QueryEscape(c.accessKey)

	var raw unsplashResponse
	if err := doGet(ctx, c.client, endpoint, http.Header{"Accept-Version": {"v1"}}, &raw); err != nil {
		return nil, fmt.Errorf("unsplash search %q: %w", q, err)
	}
	return raw.Results, nil
}

func toPhoto(p unsplashPhoto, name string) Photo {
	full := p.URLs.Regular
	if full == "" {
		full = p.URLs.Full
	}
	thumb := p.URLs.Small
	if thumb == "" {
		thumb = p.URLs.Thumb
	}
	alt := p.AltDescription
	if alt == "" {
		alt = p.Description
	}
	if alt == "" {
		alt = name + " view"
	}
	return Photo{ID: p.ID, URL: full, Thumbnail: thumb, Alt: alt}
}
