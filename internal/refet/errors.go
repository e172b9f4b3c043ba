package refet

import "errors"

// Sentinel errors returned by engine construction and output dispatch.
// Callers match with errors.Is.
var (
	// ErrInvalidConfiguration marks a bad method, rso type, or input set,
	// detected before any field math runs.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrUnsupportedSurface marks a reference surface name outside the
	// known alias groups.
	ErrUnsupportedSurface = errors.New("unsupported surface type")
)
