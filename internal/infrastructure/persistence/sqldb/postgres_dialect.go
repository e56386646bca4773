package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"

	"github.com/jmanzanog/bond-tracker/internal/domain"
	"github.com/jmanzanog/bond-tracker/internal/infrastructure/persistence/sqldb/migrations"
)

const pgUniqueViolation = "23505"

type PostgresDialect struct{}

func (d *PostgresDialect) Name() string { return "postgres" }

func (d *PostgresDialect) Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.PostgresFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "postgres"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}

func (d *PostgresDialect) UpsertBond(ctx context.Context, tx *sql.Tx, b *domain.Bond) error {
	query := `
		INSERT INTO bonds (id, cval, ison, tval, pdcp, regdt, eico, ename, elei,
			purchase_date, maturity_date, interest_rate, interest_frequency,
			owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO UPDATE SET
			cval = EXCLUDED.cval,
			ison = EXCLUDED.ison,
			tval = EXCLUDED.tval,
			pdcp = EXCLUDED.pdcp,
			regdt = EXCLUDED.regdt,
			eico = EXCLUDED.eico,
			ename = EXCLUDED.ename,
			elei = EXCLUDED.elei,
			purchase_date = EXCLUDED.purchase_date,
			maturity_date = EXCLUDED.maturity_date,
			interest_rate = EXCLUDED.interest_rate,
			interest_frequency = EXCLUDED.interest_frequency,
			updated_at = EXCLUDED.updated_at
	`
	_, err := tx.ExecContext(ctx, query,
		b.ID, b.CVal, b.IssueName, b.TotalValue, b.Channel, b.RegistrationDate,
		b.IssuerCode, b.IssuerName, b.IssuerLEI, b.PurchaseDate, b.MaturityDate,
		b.InterestRate, b.InterestFrequency, b.OwnerID, b.CreatedAt, b.UpdatedAt,
	)
	return err
}

func (d *PostgresDialect) IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
