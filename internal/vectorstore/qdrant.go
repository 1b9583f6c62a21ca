package vectorstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"github.com/windoze95/dishfinder-api/internal/logger"
	"github.com/windoze95/dishfinder-api/internal/models"
	"go.uber.org/zap"
)

// Payload keys stored with every point.
const (
	payloadRecipeID     = "recipe_id"
	payloadDishName     = "dish_name"
	payloadIngredients  = "ingredients"
	payloadCookingSteps = "cooking_steps"
	payloadStory        = "story"
	payloadThumbnail    = "thumbnail_url"
	payloadRecipeURL    = "recipe_url"
	payloadVideoURL     = "youtube_link"
)

// QdrantConfig holds connection settings for QdrantIndex.
type QdrantConfig struct {
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Collection string
	Dimensions uint64
}

// QdrantIndex implements Index on a Qdrant collection with cosine distance.
type QdrantIndex struct {
	client     *qdrant.Client
	collection string
}

// NewQdrantIndex connects to Qdrant and creates the collection when it does
// not exist yet.
func NewQdrantIndex(ctx context.Context, cfg QdrantConfig) (*QdrantIndex, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	exists, err := client.CollectionExists(ctx, cfg.Collection)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to check Qdrant collection %q: %w", cfg.Collection, err)
	}
	if !exists {
		logger.Get().Info("creating qdrant collection",
			zap.String("collection", cfg.Collection),
			zap.Uint64("dimensions", cfg.Dimensions),
		)
		err = client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: cfg.Collection,
			VectorsConfig: &qdrant.VectorsConfig{Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     cfg.Dimensions,
					Distance: qdrant.Distance_Cosine,
				},
			}},
		})
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to create Qdrant collection %q: %w", cfg.Collection, err)
		}
	}

	return &QdrantIndex{client: client, collection: cfg.Collection}, nil
}

// Close closes the gRPC connection.
func (q *QdrantIndex) Close() error {
	return q.client.Close()
}

// Upsert implements Index. The point ID is a name-based UUID of the recipe
// ID, so re-ingesting a dish overwrites its point.
func (q *QdrantIndex) Upsert(ctx context.Context, record *models.RecipeRecord, vector []float32) error {
	wait := true
	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collection,
		Wait:           &wait,
		Points: []*qdrant.PointStruct{{
			Id: &qdrant.PointId{
				PointIdOptions: &qdrant.PointId_Uuid{Uuid: pointID(record.ID)},
			},
			Vectors: &qdrant.Vectors{VectorsOptions: &qdrant.Vectors_Vector{Vector: &qdrant.Vector{Data: vector}}},
			Payload: recordToPayload(record),
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert recipe %q: %w", record.ID, err)
	}
	return nil
}

// Query implements Index.
func (q *QdrantIndex) Query(ctx context.Context, vector []float32, topK int) ([]Hit, error) {
	limit := uint64(topK)
	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query: &qdrant.Query{
			Variant: &qdrant.Query_Nearest{
				Nearest: &qdrant.VectorInput{
					Variant: &qdrant.VectorInput_Dense{
						Dense: &qdrant.DenseVector{Data: vector},
					},
				},
			},
		},
		Limit: &limit,
		WithPayload: &qdrant.WithPayloadSelector{
			SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query collection %q: %w", q.collection, err)
	}

	hits := make([]Hit, 0, len(points))
	for _, p := range points {
		record := payloadToRecord(p.GetPayload())
		hits = append(hits, Hit{
			ID:     record.ID,
			Score:  clampScore(float64(p.GetScore())),
			Record: record,
		})
	}
	return hits, nil
}

func pointID(recipeID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(recipeID)).String()
}

func stringValue(s string) *qdrant.Value {
	return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: s}}
}

func listValue(items []string) *qdrant.Value {
	list := &qdrant.ListValue{Values: make([]*qdrant.Value, 0, len(items))}
	for _, item := range items {
		list.Values = append(list.Values, stringValue(item))
	}
	return &qdrant.Value{Kind: &qdrant.Value_ListValue{ListValue: list}}
}

func recordToPayload(r *models.RecipeRecord) map[string]*qdrant.Value {
	return map[string]*qdrant.Value{
		payloadRecipeID:     stringValue(r.ID),
		payloadDishName:     stringValue(r.DishName),
		payloadIngredients:  listValue(r.Ingredients),
		payloadCookingSteps: listValue(r.CookingSteps),
		payloadStory:        stringValue(r.Story),
		payloadThumbnail:    stringValue(r.ThumbnailURL),
		payloadRecipeURL:    stringValue(r.SourceRecipeURL),
		payloadVideoURL:     stringValue(r.SourceVideoURL),
	}
}

func payloadToRecord(payload map[string]*qdrant.Value) models.RecipeRecord {
	str := func(key string) string {
		return payload[key].GetStringValue()
	}
	list := func(key string) []string {
		values := payload[key].GetListValue().GetValues()
		out := make([]string, 0, len(values))
		for _, v := range values {
			out = append(out, v.GetStringValue())
		}
		return out
	}
	return models.RecipeRecord{
		ID:              str(payloadRecipeID),
		DishName:        str(payloadDishName),
		Ingredients:     list(payloadIngredients),
		CookingSteps:    list(payloadCookingSteps),
		Story:           str(payloadStory),
		ThumbnailURL:    str(payloadThumbnail),
		SourceRecipeURL: str(payloadRecipeURL),
		SourceVideoURL:  str(payloadVideoURL),
	}
}
