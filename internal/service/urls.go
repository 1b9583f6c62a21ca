package service

import (
	"net/url"
	"strings"
)

// NormalizeRecipeURL rewrites a recipe link to its canonical form
// <scheme>://<host>/recipes/<slug>, dropping the category segments the source
// site inserts before /recipes/. Links without a /recipes/<slug> tail, and
// links that fail to parse, are returned unchanged. The rewrite is idempotent.
func NormalizeRecipeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return raw
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	n := len(segments)
	if n < 2 || segments[n-2] != "recipes" || segments[n-1] == "" {
		return raw
	}

	u.Path = "/recipes/" + segments[n-1]
	u.RawPath = ""
	return u.String()
}
