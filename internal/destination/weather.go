package destination

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"time"
)

const (
	owmDefaultURL  = "https://api.openweathermap.org/data/2.5/weather"
	weatherTimeout = 8 * time.Second
)

// mockWeather is the fixed pool served when the provider is unconfigured or failing.
var mockWeather = []WeatherData{
	{Temperature: 22, Description: "partly cloudy", Humidity: 65, WindSpeed: 3.2, Icon: "02d"},
	{Temperature: 18, Description: "light rain", Humidity: 80, WindSpeed: 2.1, Icon: "10d"},
	{Temperature: 25, Description: "clear sky", Humidity: 45, WindSpeed: 1.5, Icon: "01d"},
	{Temperature: 15, Description: "scattered clouds", Humidity: 70, WindSpeed: 4.0, Icon: "03d"},
	{Temperature: 28, Description: "sunny", Humidity: 40, WindSpeed: 2.8, Icon: "01d"},
}

// MockWeather returns a copy of the mock weather pool.
func MockWeather() []WeatherData {
	return append([]WeatherData(nil), mockWeather...)
}

// WeatherClient fetches current weather from OpenWeatherMap and falls back
// to a mock reading when it cannot.
type WeatherClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	rnd     Rand
	log     *slog.Logger
}

// NewWeatherClient constructs a WeatherClient with the given API key. An empty key enables mock mode.
func NewWeatherClient(apiKey string, rnd Rand, log *slog.Logger) *WeatherClient {
	return NewWeatherClientWithURL(owmDefaultURL, apiKey, rnd, log)
}

// NewWeatherClientWithURL constructs a WeatherClient pointing at a custom base URL (for tests).
func NewWeatherClientWithURL(baseURL, apiKey string, rnd Rand, log *slog.Logger) *WeatherClient {
	return &WeatherClient{apiKey: apiKey, baseURL: baseURL, client: newHTTPClient(weatherTimeout), rnd: rnd, log: log}
}

type owmResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// Fetch retrieves weather for the given city. It always returns a reading.
func (c *WeatherClient) Fetch(ctx context.Context, city string) (WeatherData, Status) {
	if c.apiKey == "" {
		c.log.Info("weather key not configured, using mock data", "city", city)
		return pick(c.rnd, mockWeather), StatusUnconfigured
	}

	endpoint := c.baseURL + "?q=" + url.QueryEscape(city) + "&appid=" + url.QueryEscape(c.apiKey) + "&units=metric"

	var raw owmResponse
	if err := doGet(ctx, c.client, endpoint, nil, &raw); err != nil {
		var se *StatusError
		switch {
		case errors.As(err, &se) && se.Code == http.StatusUnauthorized:
			c.log.Error("weather API key rejected", "city", city, "provider", "openweathermap")
		case errors.As(err, &se) && se.Code == http.StatusNotFound:
			c.log.Warn("weather city not found", "city", city, "provider", "openweathermap")
		default:
			c.log.Warn("weather fetch failed", "city", city, "provider", "openweathermap", "err", err)
		}
		return pick(c.rnd, mockWeather), StatusFallback
	}

	if len(raw.Weather) == 0 {
		c.log.Warn("weather response has no conditions", "city", city, "provider", "openweathermap")
		return pick(c.rnd, mockWeather), StatusFallback
	}

	return WeatherData{
		Temperature: int(math.Round(raw.Main.Temp)),
		Description: raw.Weather[0].Description,
		Humidity:    raw.Main.Humidity,
		WindSpeed:   math.Round(raw.Wind.Speed*10) / 10,
		Icon:        raw.Weather[0].Icon,
	}, StatusLive
}
