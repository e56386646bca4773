package registry

import (
	"context"

	"github.com/jmanzanog/bond-tracker/internal/domain"
)

// Lookup outcomes reported to metrics.
const (
	OutcomeFound       = "found"
	OutcomeNotFound    = "not_found"
	OutcomeUnavailable = "unavailable"
)

// Provider resolves bond identifiers against an external reference registry.
type Provider interface {
	// Lookup returns the first registry record for cval. It fails with a
	// RegistryUnavailable or NotFoundInRegistry ValidationError.
	Lookup(ctx context.Context, cval string) (domain.ReferenceRecord, error)
	// IsMatching reports whether the registry knows cval. Unlike Lookup, an
	// unknown identifier is not an error.
	IsMatching(ctx context.Context, cval string) (bool, error)
}

// Outcome classifies a Lookup result for metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeFound
	case domain.IsValidationKind(err, domain.KindNotFoundInRegistry):
		return OutcomeNotFound
	default:
		return OutcomeUnavailable
	}
}
