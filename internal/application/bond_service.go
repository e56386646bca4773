package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmanzanog/bond-tracker/internal/domain"
	"github.com/jmanzanog/bond-tracker/internal/infrastructure/registry"
)

type BondService struct {
	repo      domain.BondRepository
	validator *BondValidator
	recorder  Recorder
	now       func() time.Time
}

// NewBondService wires the bond use cases. recorder may be nil.
func NewBondService(repo domain.BondRepository, provider registry.Provider, recorder Recorder) *BondService {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &BondService{
		repo:      repo,
		validator: NewBondValidator(provider, recorder),
		recorder:  recorder,
		now:       time.Now,
	}
}

// CreateBond validates submitted against the registry and persists the
// result for ownerID. Nothing is stored when validation fails.
func (s *BondService) CreateBond(ctx context.Context, ownerID string, submitted domain.FieldSet) (*domain.Bond, error) {
	fields, err := s.validator.Validate(ctx, submitted)
	if err != nil {
		return nil, err
	}

	bond, err := domain.NewBond(ownerID, fields, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, bond); err != nil {
		return nil, fmt.Errorf("failed to save bond: %w", err)
	}
	s.recorder.BondCreated()

	slog.InfoContext(ctx, "bond created", "bond_id", bond.ID, "cval", bond.CVal, "user_id", ownerID)
	return bond, nil
}

// UpdateBond replaces (partial == false) or patches (partial == true) a bond
// owned by ownerID. A patch is validated as the stored fields overlaid with
// the submitted ones.
func (s *BondService) UpdateBond(ctx context.Context, ownerID, id string, submitted domain.FieldSet, partial bool) (*domain.Bond, error) {
	existing, err := s.repo.FindByIDForOwner(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	target := submitted.Clone()
	if partial {
		target = existing.Fields()
		for k, v := range submitted {
			target[k] = v
		}
	}

	fields, err := s.validator.Validate(ctx, target)
	if err != nil {
		return nil, err
	}

	updated, err := domain.NewBond(ownerID, fields, existing.CreatedAt)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to update bond: %w", err)
	}
	s.recorder.BondUpdated()

	slog.InfoContext(ctx, "bond updated", "bond_id", updated.ID, "cval", updated.CVal, "user_id", ownerID)
	return updated, nil
}

func (s *BondService) GetBond(ctx context.Context, ownerID, id string) (*domain.Bond, error) {
	return s.repo.FindByIDForOwner(ctx, ownerID, id)
}

func (s *BondService) ListBonds(ctx context.Context, ownerID string) ([]domain.Bond, error) {
	bonds, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bonds: %w", err)
	}
	return bonds, nil
}

func (s *BondService) DeleteBond(ctx context.Context, ownerID, id string) error {
	if err := s.repo.DeleteForOwner(ctx, ownerID, id); err != nil {
		return err
	}
	s.recorder.BondDeleted()

	slog.InfoContext(ctx, "bond deleted", "bond_id", id, "user_id", ownerID)
	return nil
}

// AnalyzePortfolio summarizes every bond owned by ownerID as of today.
func (s *BondService) AnalyzePortfolio(ctx context.Context, ownerID string) (*domain.PortfolioAnalysis, error) {
	bonds, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bonds: %w", err)
	}

	analysis, err := domain.AnalyzePortfolio(bonds, domain.DateOf(s.now()))
	if err != nil {
		return nil, fmt.Errorf("failed to analyze portfolio: %w", err)
	}
	return &analysis, nil
}

// VerifyIdentifier reports whether the registry knows cval.
func (s *BondService) VerifyIdentifier(ctx context.Context, cval string) (bool, error) {
	return s.validator.IsMatching(ctx, cval)
}
