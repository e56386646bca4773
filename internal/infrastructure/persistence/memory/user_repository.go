package memory

import (
	"context"
	"sync"

	"github.com/jmanzanog/bond-tracker/internal/domain"
)

type UserRepository struct {
	mu         sync.RWMutex
	byUsername map[string]domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byUsername: make(map[string]domain.User),
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUsername[user.Username]; exists {
		return domain.ErrUserExists
	}

	r.byUsername[user.Username] = *user
	return nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.byUsername[username]
	if !exists {
		return nil, domain.ErrUserNotFound
	}

	return &user, nil
}
