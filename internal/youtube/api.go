package youtube

import (
	"context"
	"fmt"

	"github.com/windoze95/dishfinder-api/internal/models"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

// maxResultsPerCall is the YouTube Data API page size limit.
const maxResultsPerCall = 50

// Channel is a channel search hit.
type Channel struct {
	ID    string
	Title string
}

// SearchAPI is the subset of the YouTube Data API the client needs.
type SearchAPI interface {
	SearchChannels(ctx context.Context, query string) ([]Channel, error)
	SearchVideos(ctx context.Context, channelID, query string, limit int64) ([]models.VideoInfo, error)
}

// GoogleSearchAPI implements SearchAPI with the YouTube Data API v3.
type GoogleSearchAPI struct {
	svc *yt.Service
}

// NewGoogleSearchAPI creates an API-key authenticated YouTube service.
func NewGoogleSearchAPI(ctx context.Context, apiKey string) (*GoogleSearchAPI, error) {
	svc, err := yt.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	return &GoogleSearchAPI{svc: svc}, nil
}

// SearchChannels implements SearchAPI.
func (g *GoogleSearchAPI) SearchChannels(ctx context.Context, query string) ([]Channel, error) {
	resp, err := g.svc.Search.List([]string{"id", "snippet"}).
		Q(query).
		Type("channel").
		MaxResults(10).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("youtube channel search failed: %w", err)
	}

	channels := make([]Channel, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.ChannelId == "" {
			continue
		}
		title := ""
		if item.Snippet != nil {
			title = item.Snippet.Title
		}
		channels = append(channels, Channel{ID: item.Id.ChannelId, Title: title})
	}
	return channels, nil
}

// SearchVideos implements SearchAPI.
func (g *GoogleSearchAPI) SearchVideos(ctx context.Context, channelID, query string, limit int64) ([]models.VideoInfo, error) {
	resp, err := g.svc.Search.List([]string{"id", "snippet"}).
		Q(query).
		ChannelId(channelID).
		Type("video").
		Order("relevance").
		MaxResults(limit).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("youtube video search failed: %w", err)
	}

	videos := make([]models.VideoInfo, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}
		videos = append(videos, models.VideoInfo{
			VideoID:      item.Id.VideoId,
			Title:        item.Snippet.Title,
			URL:          WatchURL(item.Id.VideoId),
			PublishedAt:  item.Snippet.PublishedAt,
			ChannelTitle: item.Snippet.ChannelTitle,
			ThumbnailURL: thumbnailURL(item.Snippet.Thumbnails),
		})
	}
	return videos, nil
}

// WatchURL returns the public watch page for a video.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

func thumbnailURL(t *yt.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	for _, th := range []*yt.Thumbnail{t.High, t.Medium, t.Default} {
		if th != nil && th.Url != "" {
			return th.Url
		}
	}
	return ""
}
