package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/windoze95/dishfinder-api/internal/models"
	"github.com/windoze95/dishfinder-api/internal/vectorstore"
)

// --- MockTextProvider ---

// MockTextProvider is a mock implementation of ai.TextProvider.
type MockTextProvider struct {
	ExtractDishNameFunc       func(ctx context.Context, query string) (string, error)
	SuggestFestivalDishesFunc func(ctx context.Context, festival string, count int) (string, error)
}

func (m *MockTextProvider) ExtractDishName(ctx context.Context, query string) (string, error) {
	if m.ExtractDishNameFunc != nil {
		return m.ExtractDishNameFunc(ctx, query)
	}
	return "", fmt.Errorf("ExtractDishName not configured")
}

func (m *MockTextProvider) SuggestFestivalDishes(ctx context.Context, festival string, count int) (string, error) {
	if m.SuggestFestivalDishesFunc != nil {
		return m.SuggestFestivalDishesFunc(ctx, festival, count)
	}
	return "", fmt.Errorf("SuggestFestivalDishes not configured")
}

// --- MockVisionProvider ---

// MockVisionProvider is a mock implementation of ai.VisionProvider.
type MockVisionProvider struct {
	DetectIngredientsFunc func(ctx context.Context, imageData []byte) ([]string, error)
}

func (m *MockVisionProvider) DetectIngredients(ctx context.Context, imageData []byte) ([]string, error) {
	if m.DetectIngredientsFunc != nil {
		return m.DetectIngredientsFunc(ctx, imageData)
	}
	return nil, fmt.Errorf("DetectIngredients not configured")
}

// --- MockEmbeddingProvider ---

// MockEmbeddingProvider is a mock implementation of ai.EmbeddingProvider.
// It records every text it was asked to embed.
type MockEmbeddingProvider struct {
	GenerateEmbeddingFunc func(ctx context.Context, text string) ([]float32, error)

	mu    sync.Mutex
	Texts []string
}

func (m *MockEmbeddingProvider) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.Texts = append(m.Texts, text)
	m.mu.Unlock()
	if m.GenerateEmbeddingFunc != nil {
		return m.GenerateEmbeddingFunc(ctx, text)
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

// Calls returns how many times GenerateEmbedding was called.
func (m *MockEmbeddingProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Texts)
}

// --- MockIndex ---

// MockIndex is an in-memory vectorstore.Index.
type MockIndex struct {
	QueryFunc  func(ctx context.Context, vector []float32, topK int) ([]vectorstore.Hit, error)
	UpsertFunc func(ctx context.Context, record *models.RecipeRecord, vector []float32) error

	mu      sync.Mutex
	Records map[string]models.RecipeRecord
	TopKs   []int
}

// NewMockIndex creates an empty MockIndex.
func NewMockIndex() *MockIndex {
	return &MockIndex{Records: make(map[string]models.RecipeRecord)}
}

func (m *MockIndex) Upsert(ctx context.Context, record *models.RecipeRecord, vector []float32) error {
	if m.UpsertFunc != nil {
		if err := m.UpsertFunc(ctx, record, vector); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records[record.ID] = *record
	return nil
}

func (m *MockIndex) Query(ctx context.Context, vector []float32, topK int) ([]vectorstore.Hit, error) {
	m.mu.Lock()
	m.TopKs = append(m.TopKs, topK)
	m.mu.Unlock()
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, vector, topK)
	}
	return nil, nil
}

// --- MockVideoSearcher ---

// MockVideoSearcher is a mock implementation of service.VideoSearcher.
type MockVideoSearcher struct {
	SearchRecipeVideosFunc func(ctx context.Context, dish string, limit int) ([]models.VideoInfo, error)

	mu     sync.Mutex
	Dishes []string
	Limits []int
}

func (m *MockVideoSearcher) SearchRecipeVideos(ctx context.Context, dish string, limit int) ([]models.VideoInfo, error) {
	m.mu.Lock()
	m.Dishes = append(m.Dishes, dish)
	m.Limits = append(m.Limits, limit)
	m.mu.Unlock()
	if m.SearchRecipeVideosFunc != nil {
		return m.SearchRecipeVideosFunc(ctx, dish, limit)
	}
	return []models.VideoInfo{}, nil
}
