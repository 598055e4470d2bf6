package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"devmon/log"
	"devmon/models"
)

// GPUStrategy is one way of asking about the first GPU. Each method returns
// the value as display text or a *ProbeError.
type GPUStrategy interface {
	Source() string
	Name(ctx context.Context) (string, error)
	Utilization(ctx context.Context) (string, error)
	Temperature(ctx context.Context) (string, error)
}

// Outcome of trying one strategy for one field.
type Outcome string

const (
	OutcomeFound        Outcome = "found"
	OutcomeNotInstalled Outcome = "not installed"
	OutcomeEmpty        Outcome = "no result"
	OutcomeError        Outcome = "error"
)

// Attempt records what a strategy produced during one resolution.
type Attempt struct {
	Source  string
	Outcome Outcome
	Err     error
}

type gpuField struct {
	name  string
	query func(GPUStrategy, context.Context) (string, error)
}

var (
	fieldName        = gpuField{"name", GPUStrategy.Name}
	fieldUtilization = gpuField{"utilization", GPUStrategy.Utilization}
	fieldTemperature = gpuField{"temperature", GPUStrategy.Temperature}
)

// GPUResolver asks each strategy in order and keeps the first present
// answer. All three fields share the same precedence.
type GPUResolver struct {
	strategies []GPUStrategy
}

func NewGPUResolver(strategies ...GPUStrategy) *GPUResolver {
	return &GPUResolver{strategies: strategies}
}

func (r *GPUResolver) ResolveName(ctx context.Context) models.Reading[string] {
	return r.resolveLogged(ctx, fieldName)
}

func (r *GPUResolver) ResolveUsage(ctx context.Context) models.Reading[string] {
	return r.resolveLogged(ctx, fieldUtilization)
}

func (r *GPUResolver) ResolveTemp(ctx context.Context) models.Reading[string] {
	return r.resolveLogged(ctx, fieldTemperature)
}

func (r *GPUResolver) resolveLogged(ctx context.Context, field gpuField) models.Reading[string] {
	value, attempts := r.resolve(ctx, field)
	for _, a := range attempts {
		if a.Outcome == OutcomeFound || a.Outcome == OutcomeNotInstalled {
			continue
		}
		log.Debug().Str("field", field.name).Str("source", a.Source).
			Str("outcome", string(a.Outcome)).Err(a.Err).Msg("GPU strategy gave no value")
	}
	return value
}

// resolve walks the strategies and stops at the first one that yields a
// non-empty value. Every strategy consulted is listed in the attempt trail.
func (r *GPUResolver) resolve(ctx context.Context, field gpuField) (models.Reading[string], []Attempt) {
	attempts := make([]Attempt, 0, len(r.strategies))
	for _, s := range r.strategies {
		value, err := queryStrategy(ctx, s, field)
		value = strings.TrimSpace(value)

		switch {
		case err == nil && value != "":
			attempts = append(attempts, Attempt{Source: s.Source(), Outcome: OutcomeFound})
			return models.Available(value), attempts
		case err == nil:
			attempts = append(attempts, Attempt{Source: s.Source(), Outcome: OutcomeEmpty})
		case errors.Is(err, ErrNotInstalled):
			attempts = append(attempts, Attempt{Source: s.Source(), Outcome: OutcomeNotInstalled})
		case errors.Is(err, ErrUnavailable):
			attempts = append(attempts, Attempt{Source: s.Source(), Outcome: OutcomeEmpty, Err: err})
		default:
			attempts = append(attempts, Attempt{Source: s.Source(), Outcome: OutcomeError, Err: err})
		}
	}
	return models.Unavailable[string](), attempts
}

func queryStrategy(ctx context.Context, s GPUStrategy, field gpuField) (value string, err error) {
	defer func() {
		if r := recover(); r != nil {
			value, err = "", queryFailed(s.Source(), fmt.Errorf("panic: %v", r))
		}
	}()
	return field.query(s, ctx)
}
