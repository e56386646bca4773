package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmanzanog/bond-tracker/internal/domain"
	"github.com/jmanzanog/bond-tracker/internal/infrastructure/registry"
)

const unavailableMessage = "Error occurred while validating ISIN."

// CheckCompleteness verifies that every registry field is present and
// non-empty in record. On success it returns the record's non-nil entries as
// canonical strings, extra registry fields included.
func CheckCompleteness(record domain.ReferenceRecord) (domain.FieldSet, error) {
	var missing []string
	for _, field := range domain.RegistryFields {
		if domain.IsEmptyValue(record[field]) {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, domain.NewValidationError(domain.KindIncompleteRegistryData,
			"CDCP data is missing or contains empty values for the following fields: "+strings.Join(missing, ", "))
	}

	cleaned := make(domain.FieldSet, len(record))
	for key, value := range record {
		if s, ok := domain.CanonicalValue(value); ok {
			cleaned[key] = s
		}
	}
	return cleaned, nil
}

// Reconcile merges reference into a copy of target. A non-empty target value
// that differs from the reference wins; every other key takes the reference
// value. Neither input is modified. Keys are visited in sorted order so
// discrepancies are logged deterministically.
func Reconcile(reference, target domain.FieldSet) domain.FieldSet {
	result := target.Clone()
	for _, key := range reference.Keys() {
		refValue := reference[key]
		existing := target[key]
		if existing != "" && !domain.SameFieldValue(key, existing, refValue) {
			slog.Debug("registry data differs, keeping submitted value",
				"field", key, "submitted", existing, "registry", refValue)
			continue
		}
		result[key] = refValue
	}
	return result
}

// LookupRecorder receives the outcome of every registry lookup.
type LookupRecorder interface {
	RegistryLookup(outcome string, start time.Time)
}

// BondValidator runs the identifier pipeline: shape check, registry fetch,
// completeness check and reconciliation. It keeps no state between calls.
type BondValidator struct {
	registry registry.Provider
	recorder LookupRecorder
}

func NewBondValidator(provider registry.Provider, recorder LookupRecorder) *BondValidator {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &BondValidator{
		registry: provider,
		recorder: recorder,
	}
}

// Validate returns submitted reconciled with the registry record for its
// cval. A set without cval is returned unchanged.
func (v *BondValidator) Validate(ctx context.Context, submitted domain.FieldSet) (domain.FieldSet, error) {
	cval, ok := submitted[domain.FieldCVal]
	if !ok {
		slog.DebugContext(ctx, "no cval submitted, skipping registry validation")
		return submitted.Clone(), nil
	}

	if err := domain.ValidateCVal(cval); err != nil {
		return nil, err
	}

	record, err := v.lookup(ctx, cval)
	if err != nil {
		return nil, err
	}

	reference, err := CheckCompleteness(record)
	if err != nil {
		slog.ErrorContext(ctx, "incomplete registry record", "cval", cval, "error", err)
		return nil, err
	}

	if registered := reference[domain.FieldCVal]; registered != cval {
		slog.WarnContext(ctx, "registry returned a record for another identifier",
			"cval", cval, "registry_cval", registered)
		return nil, domain.NewValidationError(domain.KindNotFoundInRegistry,
			fmt.Sprintf("ISIN %s not found in CDCP data.", cval))
	}

	reconciled := Reconcile(reference, submitted)
	slog.DebugContext(ctx, "bond data reconciled with registry", "cval", cval)
	return reconciled, nil
}

// IsMatching asks the registry whether it knows cval.
func (v *BondValidator) IsMatching(ctx context.Context, cval string) (bool, error) {
	if err := domain.ValidateCVal(cval); err != nil {
		return false, err
	}

	start := time.Now()
	matching, err := v.registry.IsMatching(ctx, cval)
	switch {
	case err != nil:
		v.recorder.RegistryLookup(registry.Outcome(err), start)
		return false, asUnavailable(err)
	case matching:
		v.recorder.RegistryLookup(registry.OutcomeFound, start)
	default:
		v.recorder.RegistryLookup(registry.OutcomeNotFound, start)
	}
	return matching, nil
}

func (v *BondValidator) lookup(ctx context.Context, cval string) (domain.ReferenceRecord, error) {
	start := time.Now()
	record, err := v.registry.Lookup(ctx, cval)
	v.recorder.RegistryLookup(registry.Outcome(err), start)
	if err != nil {
		return nil, asUnavailable(err)
	}
	return record, nil
}

// asUnavailable keeps ValidationErrors as they are and classifies anything
// else the registry returns as RegistryUnavailable.
func asUnavailable(err error) error {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return err
	}
	return domain.WrapValidationError(domain.KindRegistryUnavailable, unavailableMessage,
		fmt.Errorf("registry lookup: %w", err))
}
