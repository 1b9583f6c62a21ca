package config

import (
	"fmt"
	"reflect"

	"github.com/caarlos0/env/v11"
)

// Vector index backends.
const (
	BackendQdrant   = "qdrant"
	BackendPgVector = "pgvector"
)

// Config holds the application configuration.
type Config struct {
	EnvVars EnvVars  `json:"env"`
	Prompts *Prompts `json:"-"`
}

// EnvVars holds environment variables required by the application.
// Fields tagged `optional:"true"` are skipped by CheckConfigEnvFields.
type EnvVars struct {
	Port                 string `env:"PORT" envDefault:"8080"`
	JwtSecretKey         string `env:"JWT_SECRET_KEY"`
	AnthropicAPIKey      string `env:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey         string `env:"OPENAI_API_KEY"`
	YoutubeAPIKey        string `env:"YOUTUBE_API_KEY"`
	YoutubeChannelName   string `env:"YOUTUBE_CHANNEL_NAME" envDefault:"India Food Network"`
	YoutubeChannelHandle string `env:"YOUTUBE_CHANNEL_HANDLE" envDefault:"@Indiafoodnetwork"`
	GoogleCalendarKey    string `env:"GOOGLE_CALENDAR_KEY" optional:"true"`
	GoogleCalendarID     string `env:"GOOGLE_CALENDAR_ID" envDefault:"en.indian#holiday@group.v.calendar.google.com"`
	VectorBackend        string `env:"VECTOR_BACKEND" envDefault:"qdrant"`
	QdrantHost           string `env:"QDRANT_HOST" optional:"true"`
	QdrantPort           int    `env:"QDRANT_PORT" envDefault:"6334"`
	QdrantAPIKey         string `env:"QDRANT_API_KEY" optional:"true"`
	QdrantUseTLS         bool   `env:"QDRANT_USE_TLS" optional:"true"`
	QdrantCollection     string `env:"QDRANT_COLLECTION" envDefault:"ifn-recipe-search"`
	DatabaseUrl          string `env:"DATABASE_URL" optional:"true"`
	RedisURL             string `env:"REDIS_URL" optional:"true"`
	AWSRegion            string `env:"AWS_REGION" optional:"true"`
	AWSAccessKeyID       string `env:"AWS_ACCESS_KEY_ID" optional:"true"`
	AWSSecretAccessKey   string `env:"AWS_SECRET_ACCESS_KEY" optional:"true"`
	S3Bucket             string `env:"S3_BUCKET" optional:"true"`
	RecipeSourceURL      string `env:"RECIPE_SOURCE_URL" envDefault:"https://indiafoodnetwork.in/dev/h-api/content"`
	RecipeSourceKey      string `env:"RECIPE_SOURCE_KEY" optional:"true"`
	RecipeSiteBase       string `env:"RECIPE_SITE_BASE" envDefault:"https://www.indiafoodnetwork.in"`
	PromptsPath          string `env:"PROMPTS_PATH" envDefault:"configs/prompts.yaml"`
	RateLimitRPS         int    `env:"RATE_LIMIT_RPS" envDefault:"5"`
}

// LoadConfig parses environment variables into the Config struct.
func LoadConfig() (*Config, error) {
	var config Config
	if err := env.Parse(&config.EnvVars); err != nil {
		return nil, err
	}
	return &config, nil
}

// CheckConfigEnvFields validates that all required EnvVars fields are set.
func (c *Config) CheckConfigEnvFields() error {
	return checkFieldsRecursive(reflect.ValueOf(c.EnvVars))
}

// Validate checks settings that depend on each other, such as the
// connection details required by the selected vector backend.
func (c *Config) Validate() error {
	switch c.EnvVars.VectorBackend {
	case BackendQdrant:
		if c.EnvVars.QdrantHost == "" {
			return fmt.Errorf("$QDRANT_HOST must be set when VECTOR_BACKEND=%s", BackendQdrant)
		}
	case BackendPgVector:
		if c.EnvVars.DatabaseUrl == "" {
			return fmt.Errorf("$DATABASE_URL must be set when VECTOR_BACKEND=%s", BackendPgVector)
		}
	default:
		return fmt.Errorf("unknown VECTOR_BACKEND %q", c.EnvVars.VectorBackend)
	}
	if c.EnvVars.S3Bucket != "" && c.EnvVars.AWSRegion == "" {
		return fmt.Errorf("$AWS_REGION must be set when S3_BUCKET is set")
	}
	return nil
}

func checkFieldsRecursive(v reflect.Value) error {
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := v.Type().Field(i)
		if fieldType.Tag.Get("optional") == "true" {
			continue
		}
		if isZeroValue(field) {
			return fmt.Errorf("$%s must be set", fieldType.Name)
		}
		if field.Kind() == reflect.Struct {
			if err := checkFieldsRecursive(field); err != nil {
				return err
			}
		}
	}
	return nil
}

func isZeroValue(v reflect.Value) bool {
	return v.Interface() == reflect.Zero(v.Type()).Interface()
}
