package models

import "fmt"

// NotAvailable is shown in place of any metric that could not be sampled.
const NotAvailable = "N/A"

// Reading is a metric value that may be missing for the current tick.
type Reading[T any] struct {
	Value     T    `json:"value"`
	Available bool `json:"available"`
}

// Available wraps a sampled value.
func Available[T any](v T) Reading[T] {
	return Reading[T]{Value: v, Available: true}
}

// Unavailable returns the marker for a metric that could not be sampled.
func Unavailable[T any]() Reading[T] {
	return Reading[T]{}
}

// Get returns the value and whether it was sampled.
func (r Reading[T]) Get() (T, bool) {
	return r.Value, r.Available
}

func (r Reading[T]) String() string {
	if !r.Available {
		return NotAvailable
	}
	return fmt.Sprint(r.Value)
}
