package domain

import (
	"context"
	"time"
)

// BondRepository persists bonds. Every read and write is scoped to the owning
// user; a bond owned by someone else is reported as ErrBondNotFound.
type BondRepository interface {
	Create(ctx context.Context, bond *Bond) error
	Update(ctx context.Context, bond *Bond) error
	FindByIDForOwner(ctx context.Context, ownerID, id string) (*Bond, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Bond, error)
	DeleteForOwner(ctx context.Context, ownerID, id string) error
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByUsername(ctx context.Context, username string) (*User, error)
}

type SessionRepository interface {
	Save(ctx context.Context, session *Session) error
	FindByID(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
