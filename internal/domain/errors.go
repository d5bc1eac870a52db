package domain

import "errors"

var (
	// ErrCorpusUnavailable means the corpus search backend cannot be reached.
	ErrCorpusUnavailable = errors.New("corpus backend unavailable")

	// ErrEmbeddingProviderError means the embedding provider returned an error
	// (maps to 502 in transport).
	ErrEmbeddingProviderError = errors.New("embedding provider error")

	// ErrSectionNotFound means a passage references an unknown corpus section.
	ErrSectionNotFound = errors.New("section not found")
)
