package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/dishfinder-api/internal/models"
	"github.com/windoze95/dishfinder-api/internal/service"
)

type fakeCalendar struct {
	byMonth map[time.Month][]models.Festival
	err     error
	year    int
	month   time.Month
}

func (f *fakeCalendar) GetFestivalsForYear(ctx context.Context, year int) (map[string][]models.Festival, error) {
	f.year = year
	if f.err != nil {
		return nil, f.err
	}
	out := map[string][]models.Festival{}
	for m, festivals := range f.byMonth {
		out[m.String()+" 2025"] = festivals
	}
	return out, nil
}

func (f *fakeCalendar) GetFestivalsForMonth(ctx context.Context, year int, month time.Month) ([]models.Festival, error) {
	f.year = year
	f.month = month
	if f.err != nil {
		return nil, f.err
	}
	if festivals, ok := f.byMonth[month]; ok {
		return festivals, nil
	}
	return []models.Festival{}, nil
}

type fakeResolver struct {
	festivals []models.Festival
	dishes    int
	recipes   int
}

func (f *fakeResolver) Resolve(ctx context.Context, festivals []models.Festival, dishesPerFestival, recipesPerDish int) map[string][]models.MatchResult {
	f.festivals = festivals
	f.dishes = dishesPerFestival
	f.recipes = recipesPerDish
	out := map[string][]models.MatchResult{}
	for _, fest := range festivals {
		out[fest.Name] = []models.MatchResult{{DishName: fest.Name + " special"}}
	}
	return out
}

func newTestFestivalHandler(cal *fakeCalendar, resolver *fakeResolver) *FestivalHandler {
	h := NewFestivalHandler(cal, resolver)
	h.now = func() time.Time { return time.Date(2025, time.October, 3, 12, 0, 0, 0, time.UTC) }
	return h
}

func octoberCalendar() *fakeCalendar {
	return &fakeCalendar{byMonth: map[time.Month][]models.Festival{
		time.October: {
			{Name: "Dussehra", Date: "2025-10-02"},
			{Name: "Diwali Recipes", Date: "2025-10-20"},
		},
	}}
}

func TestListFestivals_Month(t *testing.T) {
	cal := octoberCalendar()
	h := newTestFestivalHandler(cal, &fakeResolver{})

	r := gin.New()
	r.GET("/festivals", h.ListFestivals)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/festivals?year=2025&month=10", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d. body: %s", w.Code, http.StatusOK, w.Body.String())
	}
	var body struct {
		Month     string            `json:"month"`
		Festivals []models.Festival `json:"festivals"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body.Month != "October 2025" {
		t.Errorf("month = %q, want October 2025", body.Month)
	}
	if len(body.Festivals) != 2 {
		t.Errorf("festivals = %d, want 2", len(body.Festivals))
	}
}

func TestListFestivals_WholeYearDefaultsToCurrentYear(t *testing.T) {
	cal := octoberCalendar()
	h := newTestFestivalHandler(cal, &fakeResolver{})

	r := gin.New()
	r.GET("/festivals", h.ListFestivals)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/festivals", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if cal.year != 2025 {
		t.Errorf("year = %d, want 2025", cal.year)
	}
	var body struct {
		Festivals map[string][]models.Festival `json:"festivals"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if len(body.Festivals["October 2025"]) != 2 {
		t.Errorf("festivals = %v", body.Festivals)
	}
}

func TestListFestivals_InvalidMonth(t *testing.T) {
	h := newTestFestivalHandler(octoberCalendar(), &fakeResolver{})

	r := gin.New()
	r.GET("/festivals", h.ListFestivals)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/festivals?month=13", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestListFestivals_CalendarFailure(t *testing.T) {
	h := newTestFestivalHandler(&fakeCalendar{err: errors.New("quota")}, &fakeResolver{})

	r := gin.New()
	r.GET("/festivals", h.ListFestivals)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/festivals?month=1", nil))
	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadGateway)
	}
}

func TestFestivalRecipes_DefaultsToCurrentMonth(t *testing.T) {
	cal := octoberCalendar()
	resolver := &fakeResolver{}
	h := newTestFestivalHandler(cal, resolver)

	r := gin.New()
	r.GET("/festivals/recipes", h.FestivalRecipes)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/festivals/recipes", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d. body: %s", w.Code, http.StatusOK, w.Body.String())
	}
	if cal.month != time.October || cal.year != 2025 {
		t.Errorf("looked up %v %d, want October 2025", cal.month, cal.year)
	}
	if resolver.dishes != service.DefaultDishesPerFestival || resolver.recipes != service.DefaultRecipesPerDish {
		t.Errorf("resolver got dishes=%d recipes=%d, want defaults", resolver.dishes, resolver.recipes)
	}
	if len(resolver.festivals) != 2 {
		t.Errorf("resolver got %d festivals, want 2", len(resolver.festivals))
	}

	var body struct {
		Recipes map[string][]models.MatchResult `json:"recipes"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if len(body.Recipes["Diwali Recipes"]) != 1 {
		t.Errorf("recipes = %v", body.Recipes)
	}
}

func TestFestivalRecipes_CustomCounts(t *testing.T) {
	resolver := &fakeResolver{}
	h := newTestFestivalHandler(octoberCalendar(), resolver)

	r := gin.New()
	r.GET("/festivals/recipes", h.FestivalRecipes)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/festivals/recipes?year=2025&month=10&dishes=2&recipes=4", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if resolver.dishes != 2 || resolver.recipes != 4 {
		t.Errorf("resolver got dishes=%d recipes=%d, want 2 and 4", resolver.dishes, resolver.recipes)
	}
}

func TestFestivalRecipes_NoFestivals(t *testing.T) {
	resolver := &fakeResolver{}
	h := newTestFestivalHandler(octoberCalendar(), resolver)

	r := gin.New()
	r.GET("/festivals/recipes", h.FestivalRecipes)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/festivals/recipes?month=2", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if resolver.festivals != nil {
		t.Error("resolver should not run without festivals")
	}
}
