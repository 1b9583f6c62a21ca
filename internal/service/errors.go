package service

import "fmt"

// InvalidInputError is returned when a request cannot be processed as given.
// It is raised before any upstream call is made.
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string {
	return e.Message
}

// EmbeddingError wraps a failure of the embedding provider. Terminal for the
// request.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed: %v", e.Err)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Err
}

// SearchError wraps a failure of the similarity index. Terminal for the
// request.
type SearchError struct {
	Err error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("similarity search failed: %v", e.Err)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// EnrichmentError wraps a failed video lookup for one dish. It is logged and
// absorbed; the result keeps an empty video list.
type EnrichmentError struct {
	Dish string
	Err  error
}

func (e *EnrichmentError) Error() string {
	return fmt.Sprintf("video enrichment for %q failed: %v", e.Dish, e.Err)
}

func (e *EnrichmentError) Unwrap() error {
	return e.Err
}

// NormalizationError records why the LLM dish-name extraction was not used.
// It is logged and absorbed; the regex fallback runs instead.
type NormalizationError struct {
	Query string
	Err   error
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("dish name extraction for %q failed: %v", e.Query, e.Err)
}

func (e *NormalizationError) Unwrap() error {
	return e.Err
}
