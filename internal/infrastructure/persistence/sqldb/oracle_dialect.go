package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmanzanog/bond-tracker/internal/domain"
	"github.com/jmanzanog/bond-tracker/internal/infrastructure/persistence/sqldb/migrations"
)

type OracleDialect struct{}

func (d *OracleDialect) Name() string { return "oracle" }

func (d *OracleDialect) Migrate(ctx context.Context, db *sql.DB) error {
	// goose has no Oracle dialect; the script is split on '/' and run statement by statement.
	content, err := migrations.OracleFS.ReadFile("oracle/20240101000000_init.sql")
	if err != nil {
		return fmt.Errorf("reading migration file: %w", err)
	}

	statements := strings.Split(string(content), "/")

	for _, stmt := range statements {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}

		if _, err := db.ExecContext(ctx, stmt); err != nil {
			// ORA-00955: name is already used by an existing object
			if !strings.Contains(err.Error(), "ORA-00955") {
				return fmt.Errorf("migrating: %s: %w", stmt, err)
			}
		}
	}
	return nil
}

func (d *OracleDialect) UpsertBond(ctx context.Context, tx *sql.Tx, b *domain.Bond) error {
	query := `MERGE INTO bonds t
             USING (SELECT :1 as id_val FROM dual) s
             ON (t.id = s.id_val)
             WHEN MATCHED THEN
               UPDATE SET
                 cval = :2, ison = :3, tval = :4, pdcp = :5, regdt = :6,
                 eico = :7, ename = :8, elei = :9, purchase_date = :10,
                 maturity_date = :11, interest_rate = :12,
                 interest_frequency = :13, updated_at = :14
             WHEN NOT MATCHED THEN
               INSERT (id, cval, ison, tval, pdcp, regdt, eico, ename, elei,
                       purchase_date, maturity_date, interest_rate, interest_frequency,
                       owner_id, created_at, updated_at)
               VALUES (:15, :16, :17, :18, :19, :20, :21, :22, :23, :24, :25, :26, :27, :28, :29, :30)`

	_, err := tx.ExecContext(ctx, query,
		b.ID,                // 1 (s.id_val)
		b.CVal,              // 2 (UPDATE)
		b.IssueName,         // 3
		b.TotalValue,        // 4
		b.Channel,           // 5
		b.RegistrationDate,  // 6
		b.IssuerCode,        // 7
		b.IssuerName,        // 8
		b.IssuerLEI,         // 9
		b.PurchaseDate,      // 10
		b.MaturityDate,      // 11
		b.InterestRate,      // 12
		b.InterestFrequency, // 13
		b.UpdatedAt,         // 14
		b.ID,                // 15 (INSERT)
		b.CVal,              // 16
		b.IssueName,         // 17
		b.TotalValue,        // 18
		b.Channel,           // 19
		b.RegistrationDate,  // 20
		b.IssuerCode,        // 21
		b.IssuerName,        // 22
		b.IssuerLEI,         // 23
		b.PurchaseDate,      // 24
		b.MaturityDate,      // 25
		b.InterestRate,      // 26
		b.InterestFrequency, // 27
		b.OwnerID,           // 28
		b.CreatedAt,         // 29
		b.UpdatedAt,         // 30
	)
	return err
}

// IsUniqueViolation matches ORA-00001: unique constraint violated.
func (d *OracleDialect) IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "ORA-00001")
}
