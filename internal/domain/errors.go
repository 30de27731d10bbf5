package domain

import "errors"

var (
	// ErrCacheMiss is returned when a key is absent or expired in the cache store
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when the cache store cannot be reached
	ErrCacheUnavailable = errors.New("cache service unavailable")

	// ErrCatalogAPIFailure is returned when a product catalog request fails
	ErrCatalogAPIFailure = errors.New("catalog API request failed")

	// ErrItemNotFound is returned when the catalog response carries no usable item
	ErrItemNotFound = errors.New("item not found in catalog response")

	// ErrInvalidSigningInput is returned when a request cannot be signed
	ErrInvalidSigningInput = errors.New("invalid signing input")

	// ErrPageNotFound is returned when a gift page does not exist
	ErrPageNotFound = errors.New("gift page not found")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrDatasetInvalid is returned when the import dataset cannot be read
	ErrDatasetInvalid = errors.New("dataset is empty or malformed")
)
