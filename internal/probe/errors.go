package probe

import "errors"

// Sentinel kinds for probe failures.
var (
	ErrUnhealthy    = errors.New("backend unhealthy")
	ErrInconsistent = errors.New("backend responses inconsistent")
	ErrNoSamples    = errors.New("no samples to save")
)
