package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jmanzanog/bond-tracker/internal/domain"
)

// fakeRegistry serves canned records keyed by cval.
type fakeRegistry struct {
	mu      sync.Mutex
	records map[string]domain.ReferenceRecord
	err     error
	calls   int
}

func newFakeRegistry(records ...domain.ReferenceRecord) *fakeRegistry {
	r := &fakeRegistry{records: make(map[string]domain.ReferenceRecord)}
	for _, rec := range records {
		r.records[fmt.Sprint(rec["cval"])] = rec
	}
	return r
}

// serve answers lookups for cval with rec, whatever identifier rec carries.
func (r *fakeRegistry) serve(cval string, rec domain.ReferenceRecord) *fakeRegistry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[cval] = rec
	return r
}

func (r *fakeRegistry) Lookup(ctx context.Context, cval string) (domain.ReferenceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	rec, ok := r.records[cval]
	if !ok {
		return nil, domain.NewValidationError(domain.KindNotFoundInRegistry,
			fmt.Sprintf("ISIN %s not found in CDCP data.", cval))
	}
	return rec, nil
}

func (r *fakeRegistry) IsMatching(ctx context.Context, cval string) (bool, error) {
	rec, err := r.Lookup(ctx, cval)
	if err != nil {
		if domain.IsValidationKind(err, domain.KindNotFoundInRegistry) {
			return false, nil
		}
		return false, err
	}
	return rec["cval"] == cval, nil
}

func (r *fakeRegistry) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type recordedLookup struct {
	outcome string
}

type fakeRecorder struct {
	mu      sync.Mutex
	lookups []recordedLookup
	created int
	updated int
	deleted int
}

func (r *fakeRecorder) RegistryLookup(outcome string, _ time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups = append(r.lookups, recordedLookup{outcome: outcome})
}

func (r *fakeRecorder) BondCreated() { r.mu.Lock(); r.created++; r.mu.Unlock() }
func (r *fakeRecorder) BondUpdated() { r.mu.Lock(); r.updated++; r.mu.Unlock() }
func (r *fakeRecorder) BondDeleted() { r.mu.Lock(); r.deleted++; r.mu.Unlock() }

func czechBondRecord() domain.ReferenceRecord {
	return domain.ReferenceRecord{
		"cval":  "CZ0003551251",
		"ison":  "Státní dluhopis 2,50/28",
		"tval":  "1000.00",
		"pdcp":  "CDCP",
		"regdt": "2019-03-15T00:00:00",
		"eico":  "00006947",
		"ename": "Česká republika - Ministerstvo financí",
		"elei":  "31570010000000043842",
	}
}

// userFields are the fields a user supplies on top of the registry data.
func userFields() domain.FieldSet {
	return domain.FieldSet{
		domain.FieldCVal:              "CZ0003551251",
		domain.FieldPurchaseDate:      "2024-01-01",
		domain.FieldMaturityDate:      "2028-08-25",
		domain.FieldInterestRate:      "2.50",
		domain.FieldInterestFrequency: "annual",
	}
}
