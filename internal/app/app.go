// Package app builds the service graph shared by the API server and the
// ingestion command.
package app

import (
	"context"
	"fmt"

	"github.com/windoze95/dishfinder-api/internal/ai"
	"github.com/windoze95/dishfinder-api/internal/cache"
	"github.com/windoze95/dishfinder-api/internal/calendar"
	"github.com/windoze95/dishfinder-api/internal/config"
	"github.com/windoze95/dishfinder-api/internal/db"
	"github.com/windoze95/dishfinder-api/internal/handlers"
	"github.com/windoze95/dishfinder-api/internal/logger"
	"github.com/windoze95/dishfinder-api/internal/s3"
	"github.com/windoze95/dishfinder-api/internal/service"
	"github.com/windoze95/dishfinder-api/internal/source"
	"github.com/windoze95/dishfinder-api/internal/vectorstore"
	"github.com/windoze95/dishfinder-api/internal/youtube"
	"go.uber.org/zap"
)

const cachePrefix = "dishfinder:"

// App holds the wired services.
type App struct {
	Config   *config.Config
	Embedder ai.EmbeddingProvider
	Vision   ai.VisionProvider
	Index    vectorstore.Index
	Cache    cache.Cache
	Videos   *youtube.Client
	Matcher  *service.MatcherService
	Festival *service.FestivalService
	Calendar *calendar.Service
	Ingest   *service.IngestService
	Archive  *s3.Archive

	closers []func() error
}

// New connects to every backing service named in cfg.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}
	env := cfg.EnvVars

	a.Embedder = ai.NewEmbeddingProvider(env.OpenAIAPIKey)
	a.Vision = ai.NewAnthropicProvider(env.AnthropicAPIKey, cfg.Prompts)
	textProvider := ai.NewAnthropicLightProvider(env.AnthropicAPIKey, cfg.Prompts)

	index, err := a.openIndex(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Index = index

	a.Cache = cache.Nop{}
	if env.RedisURL != "" {
		redisCache, err := cache.NewRedis(ctx, env.RedisURL, cachePrefix)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Cache = redisCache
		a.closers = append(a.closers, redisCache.Close)
	}

	searchAPI, err := youtube.NewGoogleSearchAPI(ctx, env.YoutubeAPIKey)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Videos = youtube.NewClient(searchAPI, a.Cache, youtube.Options{
		ChannelName:   env.YoutubeChannelName,
		ChannelHandle: env.YoutubeChannelHandle,
	})

	calendarKey := env.GoogleCalendarKey
	if calendarKey == "" {
		calendarKey = env.YoutubeAPIKey
	}
	eventsAPI, err := calendar.NewGoogleEventsAPI(ctx, calendarKey)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Calendar = calendar.NewService(eventsAPI, a.Cache, env.GoogleCalendarID)

	if env.S3Bucket != "" {
		archive, err := s3.NewArchive(ctx, cfg)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Archive = archive
	}

	a.Matcher = service.NewMatcherService(a.Embedder, a.Index, a.Videos, service.NewNormalizeService(textProvider))
	a.Festival = service.NewFestivalService(textProvider, a.Matcher)
	a.Ingest = service.NewIngestService(
		source.NewContentClient(env.RecipeSourceURL, env.RecipeSourceKey, env.RecipeSiteBase),
		a.Embedder,
		a.Index,
	)

	return a, nil
}

func (a *App) openIndex(ctx context.Context) (vectorstore.Index, error) {
	env := a.Config.EnvVars
	switch env.VectorBackend {
	case config.BackendPgVector:
		database, err := db.New(a.Config)
		if err != nil {
			return nil, err
		}
		sqlDB, err := database.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		a.closers = append(a.closers, sqlDB.Close)
		index, err := vectorstore.NewPgVectorIndex(database, ai.EmbeddingDimensions)
		if err != nil {
			return nil, err
		}
		return index, nil
	case config.BackendQdrant:
		index, err := vectorstore.NewQdrantIndex(ctx, vectorstore.QdrantConfig{
			Host:       env.QdrantHost,
			Port:       env.QdrantPort,
			APIKey:     env.QdrantAPIKey,
			UseTLS:     env.QdrantUseTLS,
			Collection: env.QdrantCollection,
			Dimensions: ai.EmbeddingDimensions,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, index.Close)
		return index, nil
	default:
		return nil, fmt.Errorf("unknown vector backend %q", env.VectorBackend)
	}
}

// UploadArchive returns the photo archive, or nil when none is configured.
func (a *App) UploadArchive() handlers.UploadArchive {
	if a.Archive == nil {
		return nil
	}
	return a.Archive
}

// Close releases connections in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Get().Warn("failed to close resource", zap.Error(err))
		}
	}
	a.closers = nil
}
