package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrAlreadyRunning        = errors.New("sync run already in progress")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// Pipeline error taxonomy. Mapping and provider errors are matchup- or
	// conference-level and are collected into the run's error list; store
	// errors abort the enclosing scope; configuration errors abort the run.
	ErrMapping       = errors.New("roster mapping error")
	ErrProvider      = errors.New("scoring provider error")
	ErrStore         = errors.New("store error")
	ErrConfiguration = errors.New("configuration error")
)
