package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmanzanog/bond-tracker/internal/domain"
)

const bondColumns = `id, cval, ison, tval, pdcp, regdt, eico, ename, elei,
	purchase_date, maturity_date, interest_rate, interest_frequency,
	owner_id, created_at, updated_at`

type BondRepository struct {
	db *DB
}

func NewBondRepository(db *DB) *BondRepository {
	return &BondRepository{db: db}
}

func (r *BondRepository) Create(ctx context.Context, b *domain.Bond) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := r.db.Dialect.UpsertBond(ctx, tx, b); err != nil {
			slog.Error("Failed to save bond", "bond_id", b.ID, "error", err)
			return fmt.Errorf("upsert bond: %w", err)
		}
		return nil
	})
}

// Update overwrites a bond that already belongs to b.OwnerID.
func (r *BondRepository) Update(ctx context.Context, b *domain.Bond) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := r.db.rebind("SELECT id FROM bonds WHERE id = $1 AND owner_id = $2")

		var id string
		if err := tx.QueryRowContext(ctx, query, b.ID, b.OwnerID).Scan(&id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrBondNotFound
			}
			return fmt.Errorf("checking bond ownership: %w", err)
		}

		if err := r.db.Dialect.UpsertBond(ctx, tx, b); err != nil {
			slog.Error("Failed to update bond", "bond_id", b.ID, "error", err)
			return fmt.Errorf("upsert bond: %w", err)
		}
		return nil
	})
}

func (r *BondRepository) FindByIDForOwner(ctx context.Context, ownerID, id string) (*domain.Bond, error) {
	query := r.db.rebind("SELECT " + bondColumns + " FROM bonds WHERE id = $1 AND owner_id = $2")

	b, err := scanBond(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			slog.Debug("Bond not found", "bond_id", id, "user_id", ownerID)
			return nil, domain.ErrBondNotFound
		}
		return nil, fmt.Errorf("querying bond: %w", err)
	}
	return b, nil
}

func (r *BondRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Bond, error) {
	query := r.db.rebind("SELECT " + bondColumns + " FROM bonds WHERE owner_id = $1 ORDER BY created_at, id")

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying bonds: %w", err)
	}
	defer func(rows *sql.Rows) {
		err := rows.Close()
		if err != nil {
			slog.Error("Failed to close rows", "error", err)
		}
	}(rows)

	bonds := make([]domain.Bond, 0)
	for rows.Next() {
		b, err := scanBond(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		bonds = append(bonds, *b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bonds, nil
}

func (r *BondRepository) DeleteForOwner(ctx context.Context, ownerID, id string) error {
	query := r.db.rebind("DELETE FROM bonds WHERE id = $1 AND owner_id = $2")

	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete bond: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete bond: %w", err)
	}
	if affected == 0 {
		return domain.ErrBondNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBond(row rowScanner) (*domain.Bond, error) {
	var b domain.Bond
	err := row.Scan(
		&b.ID, &b.CVal, &b.IssueName, &b.TotalValue, &b.Channel, &b.RegistrationDate,
		&b.IssuerCode, &b.IssuerName, &b.IssuerLEI, &b.PurchaseDate, &b.MaturityDate,
		&b.InterestRate, &b.InterestFrequency, &b.OwnerID, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
