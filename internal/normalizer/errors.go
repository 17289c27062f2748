package normalizer

import "errors"

var (
	// ErrEmptyURL indicates an empty or whitespace-only URL string.
	ErrEmptyURL = errors.New("empty URL")
	// ErrMissingHost indicates a URL with no host component.
	ErrMissingHost = errors.New("URL has no host")
)
