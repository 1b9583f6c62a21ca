package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validEnvVars() EnvVars {
	return EnvVars{
		Port:                 "8080",
		JwtSecretKey:         "secret",
		AnthropicAPIKey:      "anthropic",
		OpenAIAPIKey:         "openai",
		YoutubeAPIKey:        "youtube",
		YoutubeChannelName:   "India Food Network",
		YoutubeChannelHandle: "@Indiafoodnetwork",
		GoogleCalendarID:     "en.indian#holiday@group.v.calendar.google.com",
		VectorBackend:        BackendQdrant,
		QdrantHost:           "localhost",
		QdrantPort:           6334,
		QdrantCollection:     "ifn-recipe-search",
		RecipeSourceURL:      "https://example.com/content",
		RecipeSiteBase:       "https://www.example.com",
		PromptsPath:          "configs/prompts.yaml",
		RateLimitRPS:         5,
	}
}

func TestCheckConfigEnvFields_AllRequiredSet(t *testing.T) {
	cfg := &Config{EnvVars: validEnvVars()}
	if err := cfg.CheckConfigEnvFields(); err != nil {
		t.Errorf("CheckConfigEnvFields() error: %v", err)
	}
}

func TestCheckConfigEnvFields_MissingRequired(t *testing.T) {
	env := validEnvVars()
	env.YoutubeAPIKey = ""
	cfg := &Config{EnvVars: env}

	err := cfg.CheckConfigEnvFields()
	if err == nil {
		t.Fatal("CheckConfigEnvFields() should fail when YOUTUBE_API_KEY is missing")
	}
	if !strings.Contains(err.Error(), "YoutubeAPIKey") {
		t.Errorf("error should name the missing field, got %q", err.Error())
	}
}

func TestValidate_Backends(t *testing.T) {
	env := validEnvVars()
	cfg := &Config{EnvVars: env}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() qdrant error: %v", err)
	}

	env.QdrantHost = ""
	cfg = &Config{EnvVars: env}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should fail for qdrant without a host")
	}

	env.VectorBackend = BackendPgVector
	cfg = &Config{EnvVars: env}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should fail for pgvector without DATABASE_URL")
	}

	env.DatabaseUrl = "postgres://localhost/recipes"
	cfg = &Config{EnvVars: env}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() pgvector error: %v", err)
	}

	env.VectorBackend = "faiss"
	cfg = &Config{EnvVars: env}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should reject an unknown backend")
	}
}

func TestValidate_S3RequiresRegion(t *testing.T) {
	env := validEnvVars()
	env.S3Bucket = "uploads"
	cfg := &Config{EnvVars: env}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should fail when S3_BUCKET is set without AWS_REGION")
	}
}

func TestLoadPrompts_RepositoryFile(t *testing.T) {
	prompts, err := LoadPrompts(filepath.Join("..", "..", "configs", "prompts.yaml"))
	if err != nil {
		t.Fatalf("LoadPrompts error: %v", err)
	}
	if prompts.DishName.System == "" || prompts.DishName.User == "" {
		t.Error("dish_name prompts should be populated")
	}
	if prompts.FestivalDishes.User == "" {
		t.Error("festival_dishes.user should be populated")
	}
	if prompts.IngredientDetector.System == "" {
		t.Error("ingredient_detector.system should be populated")
	}
}

func TestLoadPrompts_MissingFile(t *testing.T) {
	if _, err := LoadPrompts(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadPrompts should fail for a missing file")
	}
}

func TestLoadPrompts_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("dish_name: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPrompts(path); err == nil {
		t.Error("LoadPrompts should fail for invalid YAML")
	}
}

func TestRenderPrompt(t *testing.T) {
	got, err := RenderPrompt("List {{.Count}} dishes for {{.Festival}}.", map[string]interface{}{
		"Count":    5,
		"Festival": "Diwali",
	})
	if err != nil {
		t.Fatalf("RenderPrompt error: %v", err)
	}
	if got != "List 5 dishes for Diwali." {
		t.Errorf("RenderPrompt = %q", got)
	}
}

func TestRenderPrompt_BadTemplate(t *testing.T) {
	if _, err := RenderPrompt("{{.Broken", nil); err == nil {
		t.Error("RenderPrompt should fail for an unparseable template")
	}
}
