package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/neexbeast/travel-explorer/internal/destination"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port          string
	DatabaseURL   string
	RedisURL      string
	MigrationsDir string
	// BearerToken guards the diagnostics endpoint. Empty disables it.
	BearerToken string

	WeatherKey     string
	UnsplashKey    string
	OpenTripMapKey string

	Places     destination.PlacesOptions
	PhotoDelay time.Duration
	// UpstreamTimeout bounds the provider work behind one request. Components
	// degrade to fallback data when it expires.
	UpstreamTimeout time.Duration
}

const (
	defaultPhotoDelay      = 200 * time.Millisecond
	defaultUpstreamTimeout = 60 * time.Second
)

// Load reads the configuration. Provider keys and the data stores are
// optional; only malformed values are errors.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		MigrationsDir:  getEnv("MIGRATIONS_DIR", ""),
		BearerToken:    os.Getenv("BEARER_TOKEN"),
		WeatherKey:     firstEnv("OPENWEATHER_API_KEY", "WEATHER_API_KEY"),
		UnsplashKey:    firstEnv("UNSPLASH_ACCESS_KEY", "UNSPLASH_API_KEY"),
		OpenTripMapKey: os.Getenv("OPENTRIPMAP_API_KEY"),
		Places:         destination.DefaultPlacesOptions(),
		PhotoDelay:     defaultPhotoDelay,

		UpstreamTimeout: defaultUpstreamTimeout,
	}

	var err error
	if cfg.Places.DetailDelay, err = durationEnv("PLACES_DETAIL_DELAY", cfg.Places.DetailDelay); err != nil {
		return nil, err
	}
	if cfg.Places.TierDelay, err = durationEnv("PLACES_TIER_DELAY", cfg.Places.TierDelay); err != nil {
		return nil, err
	}
	if cfg.PhotoDelay, err = durationEnv("PHOTO_QUERY_DELAY", cfg.PhotoDelay); err != nil {
		return nil, err
	}
	if cfg.UpstreamTimeout, err = durationEnv("UPSTREAM_TIMEOUT", cfg.UpstreamTimeout); err != nil {
		return nil, err
	}
	if cfg.UpstreamTimeout == 0 {
		return nil, fmt.Errorf("UPSTREAM_TIMEOUT must be positive")
	}
	if cfg.Places.DetailConcurrency, err = intEnv("PLACES_DETAIL_CONCURRENCY", cfg.Places.DetailConcurrency); err != nil {
		return nil, err
	}
	if cfg.Places.DetailConcurrency < 1 {
		return nil, fmt.Errorf("PLACES_DETAIL_CONCURRENCY must be at least 1, got %d", cfg.Places.DetailConcurrency)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %s", key, v)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return n, nil
}
