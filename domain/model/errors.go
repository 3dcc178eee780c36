package model

import "errors"

var (
	// ErrConfiguration is returned when the YouTube credential is missing or invalid.
	ErrConfiguration = errors.New("configuration error")
	// ErrValidation is returned for research queries rejected before any network call.
	ErrValidation = errors.New("validation error")
	// ErrService wraps every failure of the YouTube Data API.
	ErrService = errors.New("youtube service error")
	// ErrQuotaExceeded marks quota and rate limit rejections. Always wrapped together with ErrService.
	ErrQuotaExceeded = errors.New("youtube quota exceeded")
	// ErrEmptyResponse marks a lookup that returned no items.
	ErrEmptyResponse = errors.New("empty response")
	// ErrNotFound is returned by local repositories.
	ErrNotFound = errors.New("not found")
)

// ErrUnavailable is returned when an optional backing store is not configured.
var ErrUnavailable = errors.New("storage unavailable")
