package youtube

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/windoze95/dishfinder-api/internal/cache"
	"github.com/windoze95/dishfinder-api/internal/logger"
	"github.com/windoze95/dishfinder-api/internal/metrics"
	"github.com/windoze95/dishfinder-api/internal/models"
	"go.uber.org/zap"
)

// ErrChannelNotFound is returned when no channel matches the configured name.
var ErrChannelNotFound = errors.New("youtube channel not found")

const videoCacheTTL = 6 * time.Hour

// Options configures a Client.
type Options struct {
	ChannelName   string
	ChannelHandle string
	CacheTTL      time.Duration
}

// Client searches one channel's recipe videos by dish name.
type Client struct {
	api     SearchAPI
	cache   cache.Cache
	opts    Options
	breaker *gobreaker.CircuitBreaker[[]models.VideoInfo]

	// channelID is resolved on first use and kept for the process lifetime.
	// Concurrent first calls may both resolve it; they store the same value.
	channelID atomic.Pointer[string]
}

// NewClient creates a Client. A nil cache disables result caching.
func NewClient(api SearchAPI, c cache.Cache, opts Options) *Client {
	if c == nil {
		c = cache.Nop{}
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = videoCacheTTL
	}
	return &Client{
		api:     api,
		cache:   c,
		opts:    opts,
		breaker: newBreaker("youtube"),
	}
}

func newBreaker(name string) *gobreaker.CircuitBreaker[[]models.VideoInfo] {
	return gobreaker.NewCircuitBreaker[[]models.VideoInfo](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		// A caller giving up is not an upstream failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			logger.Get().Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

// SearchRecipeVideos returns up to limit videos from the configured channel
// for "<dish> recipe". The returned slice is never nil; on error it is empty.
func (c *Client) SearchRecipeVideos(ctx context.Context, dish string, limit int) ([]models.VideoInfo, error) {
	dish = strings.TrimSpace(dish)
	if dish == "" || limit <= 0 {
		return []models.VideoInfo{}, nil
	}
	if limit > maxResultsPerCall {
		limit = maxResultsPerCall
	}

	key := fmt.Sprintf("videos:%s:%d", strings.ToLower(dish), limit)
	var cached []models.VideoInfo
	ok, err := c.cache.Get(ctx, key, &cached)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues("videos", "error").Inc()
		logger.FromContext(ctx).Warn("video cache read failed", zap.String("key", key), zap.Error(err))
	case ok:
		metrics.CacheLookups.WithLabelValues("videos", "hit").Inc()
		if cached == nil {
			cached = []models.VideoInfo{}
		}
		return cached, nil
	default:
		metrics.CacheLookups.WithLabelValues("videos", "miss").Inc()
	}

	channelID, err := c.resolveChannel(ctx)
	if err != nil {
		return []models.VideoInfo{}, err
	}

	videos, err := c.breaker.Execute(func() ([]models.VideoInfo, error) {
		return c.api.SearchVideos(ctx, channelID, dish+" recipe", int64(limit))
	})
	if err != nil {
		return []models.VideoInfo{}, err
	}
	if videos == nil {
		videos = []models.VideoInfo{}
	}

	if err := c.cache.Set(ctx, key, videos, c.opts.CacheTTL); err != nil {
		logger.FromContext(ctx).Warn("video cache write failed", zap.String("key", key), zap.Error(err))
	}
	return videos, nil
}

// resolveChannel looks up the channel ID once. Failures are not cached, so
// the next call tries again.
func (c *Client) resolveChannel(ctx context.Context) (string, error) {
	if id := c.channelID.Load(); id != nil {
		return *id, nil
	}

	var (
		channels []Channel
		err      error
	)
	for _, query := range []string{c.opts.ChannelName, c.opts.ChannelHandle} {
		if query == "" {
			continue
		}
		channels, err = c.api.SearchChannels(ctx, query)
		if err != nil {
			return "", fmt.Errorf("failed to resolve channel: %w", err)
		}
		if len(channels) > 0 {
			break
		}
	}
	if len(channels) == 0 {
		return "", ErrChannelNotFound
	}

	id := pickChannel(channels, c.opts.ChannelName)
	c.channelID.Store(&id)
	logger.FromContext(ctx).Info("resolved youtube channel",
		zap.String("channel_id", id),
		zap.String("channel_name", c.opts.ChannelName),
	)
	return id, nil
}

// pickChannel prefers an exact case-insensitive title match and otherwise
// takes the first hit.
func pickChannel(channels []Channel, name string) string {
	for _, ch := range channels {
		if strings.EqualFold(strings.TrimSpace(ch.Title), strings.TrimSpace(name)) {
			return ch.ID
		}
	}
	return channels[0].ID
}
