package domain

import "errors"

var (
	// ErrAllSourcesFailed is returned when every search strategy failed and no
	// candidate URL could be produced at all.
	ErrAllSourcesFailed = errors.New("all search sources failed")

	// ErrSearchAPIFailure is returned when a search API request fails.
	ErrSearchAPIFailure = errors.New("search API request failed")

	// ErrFetchFailed is returned when a retailer page could not be fetched.
	ErrFetchFailed = errors.New("page fetch failed")

	// ErrNoPriceFound is returned when a fetched page yielded no parseable price.
	ErrNoPriceFound = errors.New("no price found on page")

	// ErrInvalidRequest is returned when request parameters are invalid.
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache.
	ErrCacheMiss = errors.New("cache miss")

	// ErrCategoryStoreUnavailable is returned when the category store cannot be read.
	ErrCategoryStoreUnavailable = errors.New("category store unavailable")
)
