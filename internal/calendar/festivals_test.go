package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/windoze95/dishfinder-api/internal/models"
)

type fakeEventsAPI struct {
	mu     sync.Mutex
	events []Event
	err    error
	calls  int
	calID  string
	from   time.Time
	to     time.Time
}

func (f *fakeEventsAPI) ListEvents(ctx context.Context, calendarID string, from, to time.Time) ([]Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.calID = calendarID
	f.from = from
	f.to = to
	return f.events, f.err
}

// jsonCache round-trips values through JSON the way the Redis cache does.
type jsonCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
}

func newJSONCache() *jsonCache {
	return &jsonCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *jsonCache) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *jsonCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	c.ttls[key] = ttl
	return nil
}

func TestNormalizeFestivalName(t *testing.T) {
	tests := map[string]string{
		"Eid al-Fitr":            "Eid Recipes",
		"Milad un-Nabi":          "Eid Recipes",
		"Diwali/Deepavali":       "Diwali Recipes",
		"Durga Ashtami":          "durga-puja",
		"Onam":                   "Onam recipes",
		"Navratri begins":        "Navratri Recipes",
		"Raksha Bandhan (Rakhi)": "Raksha Bandhan Recipes",
		"Holi":                   "Holi",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeFestivalName(in), in)
	}
}

func TestGroupByMonth(t *testing.T) {
	events := []Event{
		{Summary: "Diwali", Date: "2025-10-20"},
		{Summary: "Dussehra", Date: "2025-10-02"},
		{Summary: "Diwali/Deepavali", Date: "2025-10-21"},
		{Summary: "Onam", Date: "2025-09-05"},
		{Summary: "", Date: "2025-09-06"},
		{Summary: "Broken", Date: "sometime"},
		{Summary: "Diwali", Date: "2026-11-08"},
	}

	got := GroupByMonth(events)

	require.Len(t, got, 3)
	assert.Equal(t, []models.Festival{
		{Name: "Dussehra", Date: "2025-10-02"},
		{Name: "Diwali Recipes", Date: "2025-10-20"},
	}, got["October 2025"])
	assert.Equal(t, []models.Festival{{Name: "Onam recipes", Date: "2025-09-05"}}, got["September 2025"])
	assert.Equal(t, []models.Festival{{Name: "Diwali Recipes", Date: "2026-11-08"}}, got["November 2026"])
}

func TestGetFestivalsForYear_FetchesAndCaches(t *testing.T) {
	api := &fakeEventsAPI{events: []Event{
		{Summary: "Holi", Date: "2025-03-14"},
		{Summary: "Eid ul-Fitr", Date: "2025-03-31"},
	}}
	c := newJSONCache()
	svc := NewService(api, c, "en.indian#holiday@group.v.calendar.google.com")

	got, err := svc.GetFestivalsForYear(context.Background(), 2025)
	require.NoError(t, err)
	assert.Len(t, got["March 2025"], 2)
	assert.Equal(t, "en.indian#holiday@group.v.calendar.google.com", api.calID)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), api.from)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), api.to)
	assert.Equal(t, festivalCacheTTL, c.ttls["festivals:2025"])

	again, err := svc.GetFestivalsForYear(context.Background(), 2025)
	require.NoError(t, err)
	assert.Equal(t, got, again)
	assert.Equal(t, 1, api.calls, "second lookup should come from cache")
}

func TestGetFestivalsForYear_EmptyResultNotCached(t *testing.T) {
	api := &fakeEventsAPI{}
	c := newJSONCache()
	svc := NewService(api, c, "cal")

	got, err := svc.GetFestivalsForYear(context.Background(), 2024)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotContains(t, c.data, "festivals:2024")

	_, err = svc.GetFestivalsForYear(context.Background(), 2024)
	require.NoError(t, err)
	assert.Equal(t, 2, api.calls)
}

func TestGetFestivalsForYear_UpstreamError(t *testing.T) {
	svc := NewService(&fakeEventsAPI{err: errors.New("quota exceeded")}, nil, "cal")

	_, err := svc.GetFestivalsForYear(context.Background(), 2025)
	assert.Error(t, err)
}

func TestGetFestivalsForMonth(t *testing.T) {
	api := &fakeEventsAPI{events: []Event{
		{Summary: "Raksha Bandhan", Date: "2025-08-09"},
		{Summary: "Independence Day", Date: "2025-08-15"},
	}}
	svc := NewService(api, nil, "cal")

	aug, err := svc.GetFestivalsForMonth(context.Background(), 2025, time.August)
	require.NoError(t, err)
	assert.Equal(t, []models.Festival{
		{Name: "Raksha Bandhan Recipes", Date: "2025-08-09"},
		{Name: "Independence Day", Date: "2025-08-15"},
	}, aug)

	feb, err := svc.GetFestivalsForMonth(context.Background(), 2025, time.February)
	require.NoError(t, err)
	assert.NotNil(t, feb)
	assert.Empty(t, feb)
}
