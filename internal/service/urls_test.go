package service

import "testing"

func TestNormalizeRecipeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://x.com/category/indian/recipes/butter-chicken-123", "https://x.com/recipes/butter-chicken-123"},
		{"https://x.com/recipes/butter-chicken-123", "https://x.com/recipes/butter-chicken-123"},
		{"https://www.indiafoodnetwork.in/festive/diwali/recipes/kaju-katli/", "https://www.indiafoodnetwork.in/recipes/kaju-katli"},
		{"https://x.com/recipes/butter-chicken?ref=home", "https://x.com/recipes/butter-chicken?ref=home"},
		{"https://x.com/about", "https://x.com/about"},
		{"https://x.com/", "https://x.com/"},
		{"not a url", "not a url"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeRecipeURL(tt.in); got != tt.want {
			t.Errorf("NormalizeRecipeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeRecipeURL_Idempotent(t *testing.T) {
	inputs := []string{
		"https://x.com/category/indian/recipes/butter-chicken-123",
		"https://www.indiafoodnetwork.in/a/b/c/recipes/dal",
		"https://x.com/about",
		"::bad",
	}
	for _, in := range inputs {
		once := NormalizeRecipeURL(in)
		twice := NormalizeRecipeURL(once)
		if once != twice {
			t.Errorf("NormalizeRecipeURL not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
