package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jmanzanog/bond-tracker/internal/domain"
)

type BondRepository struct {
	mu    sync.RWMutex
	bonds map[string]domain.Bond
}

func NewBondRepository() *BondRepository {
	return &BondRepository{
		bonds: make(map[string]domain.Bond),
	}
}

func (r *BondRepository) Create(ctx context.Context, bond *domain.Bond) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.bonds[bond.ID] = *bond
	return nil
}

func (r *BondRepository) Update(ctx context.Context, bond *domain.Bond) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.bonds[bond.ID]
	if !exists || existing.OwnerID != bond.OwnerID {
		return domain.ErrBondNotFound
	}

	r.bonds[bond.ID] = *bond
	return nil
}

func (r *BondRepository) FindByIDForOwner(ctx context.Context, ownerID, id string) (*domain.Bond, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bond, exists := r.bonds[id]
	if !exists || bond.OwnerID != ownerID {
		return nil, domain.ErrBondNotFound
	}

	return &bond, nil
}

func (r *BondRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Bond, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bonds := make([]domain.Bond, 0)
	for _, b := range r.bonds {
		if b.OwnerID == ownerID {
			bonds = append(bonds, b)
		}
	}

	sort.Slice(bonds, func(i, j int) bool {
		if !bonds[i].CreatedAt.Equal(bonds[j].CreatedAt) {
			return bonds[i].CreatedAt.Before(bonds[j].CreatedAt)
		}
		return bonds[i].ID < bonds[j].ID
	})

	return bonds, nil
}

func (r *BondRepository) DeleteForOwner(ctx context.Context, ownerID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	bond, exists := r.bonds[id]
	if !exists || bond.OwnerID != ownerID {
		return domain.ErrBondNotFound
	}

	delete(r.bonds, id)
	return nil
}

// Count returns the number of stored bonds across all owners.
func (r *BondRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.bonds)
}
