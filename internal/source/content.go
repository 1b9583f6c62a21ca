package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/windoze95/dishfinder-api/internal/models"
)

const maxPageSize = 2 * 1024 * 1024

// iframeSrc matches the src attribute of an embedded YouTube player.
var iframeSrc = regexp.MustCompile(`(?is)<iframe[^>]+src\s*=\s*["']([^"']*youtube\.com/embed/[^"']+)["']`)

// ContentClient reads recipes from the publisher's content API and scrapes
// recipe pages for their embedded video.
type ContentClient struct {
	endpoint   string
	key        string
	siteBase   string
	httpClient *http.Client
}

// NewContentClient creates a ContentClient. siteBase is prefixed to the
// relative recipe paths returned by the API.
func NewContentClient(endpoint, key, siteBase string) *ContentClient {
	return &ContentClient{
		endpoint: endpoint,
		key:      key,
		siteBase: strings.TrimRight(siteBase, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type contentResponse struct {
	News []contentItem `json:"news"`
}

type contentItem struct {
	Heading     string        `json:"heading"`
	URL         string        `json:"url"`
	Story       string        `json:"story"`
	ThumbImage  string        `json:"thumbImage"`
	Ingredient  []contentText `json:"ingredient"`
	CookingStep []contentStep `json:"cookingstep"`
}

type contentText struct {
	Heading string `json:"heading"`
}

type contentStep struct {
	UID         json.Number `json:"uid"`
	Description string      `json:"description"`
}

// FetchRecipes returns every recipe in the content feed. Video links are not
// resolved here; see VideoLink.
func (c *ContentClient) FetchRecipes(ctx context.Context) ([]models.RecipeRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create content request: %w", err)
	}
	req.Header.Set("Accept", "*/*")
	if c.key != "" {
		req.Header.Set("s-id", c.key)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("content request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("content API returned status %d", resp.StatusCode)
	}

	var body contentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to parse content response: %w", err)
	}

	records := make([]models.RecipeRecord, 0, len(body.News))
	for _, item := range body.News {
		records = append(records, c.toRecord(item))
	}
	return records, nil
}

func (c *ContentClient) toRecord(item contentItem) models.RecipeRecord {
	ingredients := make([]string, 0, len(item.Ingredient))
	for _, ing := range item.Ingredient {
		if h := strings.TrimSpace(ing.Heading); h != "" {
			ingredients = append(ingredients, h)
		}
	}

	steps := append([]contentStep(nil), item.CookingStep...)
	sort.SliceStable(steps, func(i, j int) bool {
		return stepOrder(steps[i]) < stepOrder(steps[j])
	})
	cookingSteps := make([]string, 0, len(steps))
	for _, s := range steps {
		if d := strings.TrimSpace(s.Description); d != "" {
			cookingSteps = append(cookingSteps, d)
		}
	}

	dish := strings.TrimSpace(item.Heading)
	return models.RecipeRecord{
		ID:              models.RecipeID(dish),
		DishName:        dish,
		Ingredients:     ingredients,
		CookingSteps:    cookingSteps,
		Story:           item.Story,
		ThumbnailURL:    item.ThumbImage,
		SourceRecipeURL: c.siteBase + item.URL,
	}
}

func stepOrder(s contentStep) float64 {
	f, err := s.UID.Float64()
	if err != nil {
		return 0
	}
	return f
}

// VideoLink fetches a recipe page and returns the first embedded YouTube
// player URL without its query string. A page with no player yields "".
func (c *ContentClient) VideoLink(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create page request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("page request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return "", fmt.Errorf("failed to read page body: %w", err)
	}
	return ExtractYouTubeEmbed(string(body)), nil
}

// ExtractYouTubeEmbed returns the src of the first YouTube iframe in html
// with any query string removed.
func ExtractYouTubeEmbed(html string) string {
	m := iframeSrc.FindStringSubmatch(html)
	if m == nil {
		return ""
	}
	link, _, _ := strings.Cut(m[1], "?")
	if strings.HasPrefix(link, "//") {
		link = "https:" + link
	}
	return link
}
