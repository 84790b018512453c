package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS account_snapshots (
	namespace    TEXT PRIMARY KEY,
	account      JSONB NOT NULL,
	transactions JSONB NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresRepository keeps each namespace in a single row, so one upsert
// replaces account and transactions together.
type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Migrate creates the snapshot table if it does not exist.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, snapshotSchema)
	return err
}

type snapshotRow struct {
	Account      []byte `db:"account"`
	Transactions []byte `db:"transactions"`
}

func (r *PostgresRepository) Load(ctx context.Context, namespace string) (Record, error) {
	var row snapshotRow
	err := r.db.GetContext(ctx, &row, `
		SELECT account, transactions
		FROM account_snapshots
		WHERE namespace = $1
	`, namespace)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrRecordNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("postgres load %s: %w", namespace, err)
	}
	return Record{Account: row.Account, Transactions: row.Transactions}, nil
}

func (r *PostgresRepository) Save(ctx context.Context, namespace string, rec Record) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO account_snapshots (namespace, account, transactions, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (namespace) DO UPDATE
		SET account = EXCLUDED.account,
			transactions = EXCLUDED.transactions,
			updated_at = now()
	`, namespace, string(rec.Account), string(rec.Transactions))
	if err != nil {
		return fmt.Errorf("postgres save %s: %w", namespace, err)
	}

	return tx.Commit()
}

func (r *PostgresRepository) Delete(ctx context.Context, namespace string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM account_snapshots WHERE namespace = $1`, namespace)
	return err
}

func (r *PostgresRepository) Namespaces(ctx context.Context) ([]string, error) {
	var out []string
	err := r.db.SelectContext(ctx, &out, `SELECT namespace FROM account_snapshots ORDER BY namespace`)
	return out, err
}
