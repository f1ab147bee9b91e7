package api

import (
	"context"

	"github.com/neexbeast/travel-explorer/internal/destination"
	"github.com/neexbeast/travel-explorer/internal/history"
)

// DestinationFetcher defines the aggregation needed by handlers.
type DestinationFetcher interface {
	FetchAll(ctx context.Context, req destination.Request) *destination.Destination
}

// PlacesFinder defines the places lookups needed by handlers.
type PlacesFinder interface {
	Find(ctx context.Context, city string, coords destination.Coordinates) ([]destination.Place, destination.Status)
	Nearby(ctx context.Context, label string, center destination.Coordinates) []destination.Place
}

// FeaturedCatalog defines the featured destination reads needed by handlers.
type FeaturedCatalog interface {
	ListFeatured(ctx context.Context) ([]destination.Featured, error)
	FindFeatured(ctx context.Context, name string) (*destination.Featured, error)
}

// SearchHistory defines the search history operations needed by handlers.
type SearchHistory interface {
	Record(ctx context.Context, city string) error
	Recent(ctx context.Context, n int) ([]string, error)
	Popular(ctx context.Context, n int) ([]history.Search, error)
}

// LookupRecorder defines the lookup log write needed by handlers.
type LookupRecorder interface {
	RecordLookup(ctx context.Context, l destination.Lookup) error
}
