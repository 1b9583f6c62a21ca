package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/windoze95/dishfinder-api/internal/models"
	"github.com/windoze95/dishfinder-api/internal/testutil"
)

type fakeSource struct {
	records  []models.RecipeRecord
	fetchErr error

	mu    sync.Mutex
	pages []string
}

func (f *fakeSource) FetchRecipes(ctx context.Context) ([]models.RecipeRecord, error) {
	return f.records, f.fetchErr
}

func (f *fakeSource) VideoLink(ctx context.Context, pageURL string) (string, error) {
	f.mu.Lock()
	f.pages = append(f.pages, pageURL)
	f.mu.Unlock()
	if pageURL == "https://www.example.com/recipes/no-video" {
		return "", errors.New("page timeout")
	}
	return "https://www.youtube.com/embed/abc", nil
}

func TestIngestAll_CountsOutcomes(t *testing.T) {
	good := testutil.TestRecipeRecord("Paneer Tikka")
	good.SourceVideoURL = ""

	noVideo := testutil.TestRecipeRecord("Poha")
	noVideo.SourceVideoURL = ""
	noVideo.SourceRecipeURL = "https://www.example.com/recipes/no-video"

	noIngredients := testutil.TestRecipeRecord("Mystery Dish")
	noIngredients.Ingredients = nil

	badURL := testutil.TestRecipeRecord("Upma")
	badURL.SourceRecipeURL = "not a url"

	embedFails := testutil.TestRecipeRecord("Idli")
	embedFails.Ingredients = []string{"unembeddable"}

	source := &fakeSource{records: []models.RecipeRecord{good, noVideo, noIngredients, badURL, embedFails}}
	embedder := &testutil.MockEmbeddingProvider{
		GenerateEmbeddingFunc: func(ctx context.Context, text string) ([]float32, error) {
			if text == "unembeddable" {
				return nil, errors.New("rate limited")
			}
			return []float32{0.5, 0.5}, nil
		},
	}
	index := testutil.NewMockIndex()
	svc := NewIngestService(source, embedder, index)

	summary, err := svc.IngestAll(context.Background())
	if err != nil {
		t.Fatalf("IngestAll error: %v", err)
	}

	want := IngestSummary{Fetched: 5, Stored: 2, Skipped: 2, Failed: 1}
	if *summary != want {
		t.Errorf("summary = %+v, want %+v", *summary, want)
	}

	stored, ok := index.Records["paneer-tikka"]
	if !ok {
		t.Fatal("Paneer Tikka should be stored")
	}
	if stored.SourceVideoURL != "https://www.youtube.com/embed/abc" {
		t.Errorf("SourceVideoURL = %q, want scraped link", stored.SourceVideoURL)
	}
	if poha, ok := index.Records["poha"]; !ok || poha.SourceVideoURL != "" {
		t.Errorf("recipe should be stored without a video when scraping fails, got %+v", poha)
	}
}

func TestIngestAll_KeepsKnownVideoLink(t *testing.T) {
	record := testutil.TestRecipeRecord("Rasam")
	source := &fakeSource{records: []models.RecipeRecord{record}}
	index := testutil.NewMockIndex()
	svc := NewIngestService(source, &testutil.MockEmbeddingProvider{}, index)

	if _, err := svc.IngestAll(context.Background()); err != nil {
		t.Fatalf("IngestAll error: %v", err)
	}
	if len(source.pages) != 0 {
		t.Errorf("pages scraped = %v, want none", source.pages)
	}
	if index.Records["rasam"].SourceVideoURL != record.SourceVideoURL {
		t.Error("existing video link should be kept")
	}
}

func TestIngestAll_EmbedsJoinedIngredients(t *testing.T) {
	record := testutil.TestRecipeRecord("Kheer")
	record.Ingredients = []string{"rice", "milk", "sugar"}
	embedder := &testutil.MockEmbeddingProvider{}
	svc := NewIngestService(&fakeSource{records: []models.RecipeRecord{record}}, embedder, testutil.NewMockIndex())

	if _, err := svc.IngestAll(context.Background()); err != nil {
		t.Fatalf("IngestAll error: %v", err)
	}
	if len(embedder.Texts) != 1 || embedder.Texts[0] != "rice milk sugar" {
		t.Errorf("embedded texts = %v, want [rice milk sugar]", embedder.Texts)
	}
}

func TestIngestAll_FetchError(t *testing.T) {
	svc := NewIngestService(&fakeSource{fetchErr: errors.New("feed down")}, &testutil.MockEmbeddingProvider{}, testutil.NewMockIndex())

	summary, err := svc.IngestAll(context.Background())
	if err == nil {
		t.Fatal("expected error when the feed cannot be fetched")
	}
	if summary != nil {
		t.Errorf("summary = %+v, want nil", summary)
	}
}
