package history

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const (
	recentKey  = "searches:recent"
	popularKey = "searches:popular"

	// MaxRecent is the number of recent searches kept.
	MaxRecent = 5
)

// Search is a city together with how often it has been searched.
type Search struct {
	City  string `json:"city"`
	Count int64  `json:"count"`
}

// History records destination searches in Redis: a capped list of the most
// recent distinct cities and a sorted set counting every search.
type History struct {
	client *redis.Client
}

// New constructs a History on top of client.
func New(client *redis.Client) *History {
	return &History{client: client}
}

func normalize(city string) string {
	return strings.Join(strings.Fields(strings.ToLower(city)), " ")
}

// Record notes one search for city. Blank names are ignored.
func (h *History) Record(ctx context.Context, city string) error {
	c := normalize(city)
	if c == "" {
		return nil
	}

	_, err := h.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LRem(ctx, recentKey, 0, c)
		p.LPush(ctx, recentKey, c)
		p.LTrim(ctx, recentKey, 0, MaxRecent-1)
		p.ZIncrBy(ctx, popularKey, 1, c)
		return nil
	})
	if err != nil {
		return fmt.Errorf("recording search for city %s: %w", c, err)
	}
	return nil
}

// Recent returns up to n recent cities, newest first.
func (h *History) Recent(ctx context.Context, n int) ([]string, error) {
	if n <= 0 || n > MaxRecent {
		n = MaxRecent
	}
	cities, err := h.client.LRange(ctx, recentKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading recent searches: %w", err)
	}
	return cities, nil
}

// Popular returns the n most searched cities, most frequent first.
func (h *History) Popular(ctx context.Context, n int) ([]Search, error) {
	if n <= 0 {
		return []Search{}, nil
	}
	zs, err := h.client.ZRevRangeWithScores(ctx, popularKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading popular searches: %w", err)
	}

	out := make([]Search, 0, len(zs))
	for _, z := range zs {
		city, _ := z.Member.(string)
		out = append(out, Search{City: city, Count: int64(z.Score)})
	}
	return out, nil
}

// Ping reports whether Redis is reachable.
func (h *History) Ping(ctx context.Context) error {
	return h.client.Ping(ctx).Err()
}
