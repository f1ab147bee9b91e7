package destination

import (
	"context"
	"strings"
)

var featured = []Featured{
	{
		ID:          "paris",
		Name:        "Paris",
		Country:     "France",
		Description: "The City of Light, famous for its art, fashion, and romance.",
		Image:       "https://images.unsplash.com/photo-1502602898657-3e91760cbb34?ixlib=rb-1.2.1&w=1000&q=80",
		Lat:         48.8566,
		Lng:         2.3522,
	},
	{
		ID:          "tokyo",
		Name:        "Tokyo",
		Country:     "Japan",
		Description: "A bustling metropolis blending traditional and modern culture.",
		Image:       "https://images.unsplash.com/photo-1540959733332-eab4deabeeaf?w=500",
		Lat:         35.6762,
		Lng:         139.6503,
	},
	{
		ID:          "new-york",
		Name:        "New York",
		Country:     "USA",
		Description: "The city that never sleeps, iconic skyline and culture.",
		Image:       "https://images.unsplash.com/photo-1496442226666-8d4d0e62e6e9?w=500",
		Lat:         40.7128,
		Lng:         -74.0060,
	},
	{
		ID:          "london",
		Name:        "London",
		Country:     "England",
		Description: "Historic city with royal palaces, museums, and tea culture.",
		Image:       "https://images.unsplash.com/photo-1513635269975-59663e0ac1ad?w=500",
		Lat:         51.5074,
		Lng:         -0.1278,
	},
}

// StaticCatalog serves the built-in featured destinations. It is used when no
// database is configured.
type StaticCatalog struct{}

// ListFeatured returns the built-in featured destinations.
func (StaticCatalog) ListFeatured(_ context.Context) ([]Featured, error) {
	return append([]Featured(nil), featured...), nil
}

// FindFeatured returns the featured destination named name, or nil, nil when there is none.
func (StaticCatalog) FindFeatured(_ context.Context, name string) (*Featured, error) {
	for _, f := range featured {
		if strings.EqualFold(f.Name, strings.TrimSpace(name)) {
			return &f, nil
		}
	}
	return nil, nil
}
