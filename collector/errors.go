package collector

import (
	"errors"
	"fmt"
)

// Error kinds a probe can report. They all end up as "N/A" in the snapshot;
// the kind only matters for logging and the GPU attempt trail.
var (
	// ErrNotInstalled means the backend library or tool is absent.
	ErrNotInstalled = errors.New("not installed")
	// ErrUnavailable means the backend works but does not expose the metric here.
	ErrUnavailable = errors.New("unavailable")
	// ErrQuery means the backend was applicable but the call failed.
	ErrQuery = errors.New("query failed")
)

// ProbeError is the only error type probes return.
type ProbeError struct {
	Probe string
	Kind  error
	Err   error
}

func (e *ProbeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Probe, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Probe, e.Kind, e.Err)
}

// Is makes errors.Is(err, ErrQuery) and friends work on the kind.
func (e *ProbeError) Is(target error) bool {
	return target == e.Kind
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

func notInstalled(probe string) error {
	return &ProbeError{Probe: probe, Kind: ErrNotInstalled}
}

func unavailable(probe string, cause error) error {
	return &ProbeError{Probe: probe, Kind: ErrUnavailable, Err: cause}
}

func queryFailed(probe string, cause error) error {
	return &ProbeError{Probe: probe, Kind: ErrQuery, Err: cause}
}

// KindOf classifies err. Anything that is not a known kind counts as a
// query failure.
func KindOf(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotInstalled):
		return ErrNotInstalled
	case errors.Is(err, ErrUnavailable):
		return ErrUnavailable
	default:
		return ErrQuery
	}
}
