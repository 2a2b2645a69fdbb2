package domain

import "errors"

var (
	// ErrHeroNotFound indicates the referenced hero slug has no record.
	ErrHeroNotFound = errors.New("hero not found")
	// ErrUnauthenticated is returned when no user identity can be resolved.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrUpstreamGeneration indicates the text-generation service failed.
	ErrUpstreamGeneration = errors.New("upstream generation failed")
)
