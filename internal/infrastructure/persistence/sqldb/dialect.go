package sqldb

import (
	"context"
	"database/sql"

	"github.com/jmanzanog/bond-tracker/internal/domain"
)

type Dialect interface {
	Name() string
	Migrate(ctx context.Context, db *sql.DB) error
	UpsertBond(ctx context.Context, tx *sql.Tx, b *domain.Bond) error
	IsUniqueViolation(err error) bool
}
