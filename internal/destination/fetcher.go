package destination

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// weatherFetcher is the interface satisfied by WeatherClient.
type weatherFetcher interface {
	Fetch(ctx context.Context, city string) (WeatherData, Status)
}

// photoFetcher is the interface satisfied by PhotoClient.
type photoFetcher interface {
	Fetch(ctx context.Context, query string) ([]Photo, Status)
}

// placesFetcher is the interface satisfied by PlacesClient.
type placesFetcher interface {
	Find(ctx context.Context, city string, coords Coordinates) ([]Place, Status)
}

// Request describes the destination to aggregate. Coordinates may be zero.
type Request struct {
	Name        string
	Country     string
	Description string
	Coordinates Coordinates
}

// Fetcher aggregates weather, photos and places for a destination in parallel.
type Fetcher struct {
	weather weatherFetcher
	photos  photoFetcher
	places  placesFetcher
	rnd     Rand
	log     *slog.Logger
}

// NewFetcher constructs a Fetcher from the three component clients.
func NewFetcher(w weatherFetcher, ph photoFetcher, pl placesFetcher, rnd Rand, log *slog.Logger) *Fetcher {
	return &Fetcher{weather: w, photos: ph, places: pl, rnd: rnd, log: log}
}

// FetchAll runs the three components concurrently and joins their results.
// Each component degrades to synthetic data on its own, so FetchAll always
// returns a complete Destination.
func (f *Fetcher) FetchAll(ctx context.Context, req Request) *Destination {
	var g errgroup.Group

	dest := &Destination{
		Name:        req.Name,
		Country:     req.Country,
		Description: req.Description,
		Coordinates: req.Coordinates,
	}

	g.Go(func() error {
		defer f.recoverWith("weather", req.Name, func() {
			dest.Weather, dest.Sources.Weather = pick(f.rnd, mockWeather), StatusFallback
		})
		dest.Weather, dest.Sources.Weather = f.weather.Fetch(ctx, req.Name)
		return nil
	})

	g.Go(func() error {
		defer f.recoverWith("photos", req.Name, func() {
			dest.Photos, dest.Sources.Photos = GenericPhotos(SubjectName(req.Name), photoTarget), StatusFallback
		})
		dest.Photos, dest.Sources.Photos = f.photos.Fetch(ctx, req.Name+" travel city")
		return nil
	})

	g.Go(func() error {
		defer f.recoverWith("places", req.Name, func() {
			dest.Places, dest.Sources.Places = fallbackPlaces(req.Name, req.Coordinates, f.rnd), StatusFallback
		})
		dest.Places, dest.Sources.Places = f.places.Find(ctx, req.Name, req.Coordinates)
		return nil
	})

	_ = g.Wait()

	f.log.Info("destination assembled",
		"city", req.Name,
		"weather", dest.Sources.Weather,
		"photos", len(dest.Photos),
		"places", len(dest.Places),
	)
	return dest
}

// recoverWith turns a panic in one branch into that branch's fallback output.
func (f *Fetcher) recoverWith(component, city string, fallback func()) {
	if r := recover(); r != nil {
		f.log.Error("component panicked", "component", component, "city", city, "recover", r)
		fallback()
	}
}
