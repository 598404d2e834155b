// Package migrate brings a PostgreSQL database up to the authored schema. It
// creates the database when missing, keeps a ledger of applied migrations and
// applies the pending ones in order, one transaction each.
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"

	"github.com/Paulaf319/sas-db-generator/internal/schema"
)

var (
	ErrUnreachable      = errors.New("migrate: database unreachable")
	ErrChecksumMismatch = errors.New("migrate: applied migration differs from its definition")
	ErrUnknownApplied   = errors.New("migrate: ledger holds a migration unknown to this build")
)

const (
	pgDuplicateDatabase = "42P04"
	pgDuplicateTable    = "42P07"
	pgUniqueViolation   = "23505"
)

// LedgerTable records every fully applied migration.
const LedgerTable = "schema_migrations"

const createLedgerSQL = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		id          varchar(100) NOT NULL PRIMARY KEY,
		description varchar(255) NOT NULL,
		checksum    char(64)     NOT NULL,
		applied_at  timestamptz  NOT NULL DEFAULT now()
	);
`

// StepError reports the migration, and the statement within it, that failed.
// Statement is -1 when the failure happened outside the statements themselves.
type StepError struct {
	Migration string
	Statement int
	Err       error
}

func (e *StepError) Error() string {
	if e.Statement < 0 {
		return fmt.Sprintf("migrate: migration %s failed: %v", e.Migration, e.Err)
	}
	return fmt.Sprintf("migrate: migration %s failed at statement %d: %v", e.Migration, e.Statement+1, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// EnsureDatabase creates the database name through a connection to the
// maintenance database unless it already exists. It reports whether it created
// it. Losing a creation race to another instance counts as already existing.
func EnsureDatabase(ctx context.Context, admin *sql.DB, name string) (bool, error) {
	if err := admin.PingContext(ctx); err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	var exists bool
	err := admin.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1);`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("migrate: EnsureDatabase failed to look up %q: %w", name, err)
	}
	if exists {
		return false, nil
	}
	if _, err := admin.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(name)); err != nil {
		if pqCode(err) == pgDuplicateDatabase {
			return false, nil
		}
		return false, fmt.Errorf("migrate: EnsureDatabase failed to create %q: %w", name, err)
	}
	return true, nil
}

// Applied is one row of the ledger.
type Applied struct {
	ID          string    `json:"id" yaml:"id"`
	Description string    `json:"description" yaml:"description"`
	Checksum    string    `json:"checksum" yaml:"checksum"`
	AppliedAt   time.Time `json:"applied_at" yaml:"applied_at"`
}

// Status compares the ledger against the authored migrations.
type Status struct {
	Applied []Applied `json:"applied" yaml:"applied"`
	Pending []string  `json:"pending" yaml:"pending"`
}

// Runner applies an ordered list of migrations to one database.
type Runner struct {
	db         *sql.DB
	migrations []schema.Migration
	logger     *log.Logger

	// LogStatements logs every statement before it runs.
	LogStatements bool
}

func NewRunner(db *sql.DB, migrations []schema.Migration, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{db: db, migrations: migrations, logger: logger}
}

// EnsureLedger creates the ledger table if needed. Two instances racing on
// CREATE TABLE IF NOT EXISTS can still collide in the catalog; the loser treats
// that as success.
func (r *Runner) EnsureLedger(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createLedgerSQL); err != nil {
		switch pqCode(err) {
		case pgDuplicateTable, pgUniqueViolation:
			return nil
		}
		return fmt.Errorf("migrate: EnsureLedger failed: %w", err)
	}
	return nil
}

// Applied reads the ledger in id order.
func (r *Runner) Applied(ctx context.Context) ([]Applied, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, description, checksum, applied_at FROM schema_migrations ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("migrate: failed to read ledger: %w", err)
	}
	defer rows.Close()

	applied := []Applied{}
	for rows.Next() {
		var a Applied
		if err := rows.Scan(&a.ID, &a.Description, &a.Checksum, &a.AppliedAt); err != nil {
			return nil, fmt.Errorf("migrate: failed to scan ledger row: %w", err)
		}
		applied = append(applied, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("migrate: ledger iteration error: %w", err)
	}
	return applied, nil
}

func (r *Runner) Status(ctx context.Context) (*Status, error) {
	applied, err := r.Applied(ctx)
	if err != nil {
		return nil, err
	}
	done := make(map[string]bool, len(applied))
	for _, a := range applied {
		done[a.ID] = true
	}
	st := &Status{Applied: applied, Pending: []string{}}
	for _, m := range r.migrations {
		if !done[m.ID] {
			st.Pending = append(st.Pending, m.ID)
		}
	}
	return st, nil
}

// verify checks that every ledger row matches the migration this build would
// have applied under the same id.
func (r *Runner) verify(applied []Applied) (map[string]bool, error) {
	known := make(map[string]schema.Migration, len(r.migrations))
	for _, m := range r.migrations {
		known[m.ID] = m
	}
	done := make(map[string]bool, len(applied))
	for _, a := range applied {
		m, ok := known[a.ID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownApplied, a.ID)
		}
		if m.Checksum() != a.Checksum {
			return nil, fmt.Errorf("%w: %s", ErrChecksumMismatch, a.ID)
		}
		done[a.ID] = true
	}
	return done, nil
}

// Run applies every pending migration in authored order and returns the ids it
// applied itself. The ledger is read on every call. Cancelling ctx stops the run
// before the next migration; a migration already started always finishes or
// rolls back on its own.
func (r *Runner) Run(ctx context.Context) ([]string, error) {
	if err := r.EnsureLedger(ctx); err != nil {
		return nil, err
	}
	applied, err := r.Applied(ctx)
	if err != nil {
		return nil, err
	}
	done, err := r.verify(applied)
	if err != nil {
		return nil, err
	}

	ran := []string{}
	for _, m := range r.migrations {
		if done[m.ID] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return ran, fmt.Errorf("migrate: stopped before %s: %w", m.ID, err)
		}
		start := time.Now()
		ok, err := r.apply(context.WithoutCancel(ctx), m)
		if err != nil {
			return ran, err
		}
		if !ok {
			r.logger.Printf("INFO: migration %s already applied by another instance, skipping", m.ID)
			continue
		}
		ran = append(ran, m.ID)
		r.logger.Printf("INFO: applied migration %s (%s) in %s", m.ID, m.Description, time.Since(start).Round(time.Millisecond))
	}
	return ran, nil
}

// apply runs one migration in its own transaction. The ledger row goes in first:
// a concurrent instance applying the same migration blocks on that key until
// this transaction ends, then inserts nothing and skips.
func (r *Runner) apply(ctx context.Context, m schema.Migration) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, &StepError{Migration: m.ID, Statement: -1, Err: err}
	}
	rollback := func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			r.logger.Printf("WARN: rollback of migration %s failed: %v", m.ID, rbErr)
		}
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (id, description, checksum) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING;`,
		m.ID, m.Description, m.Checksum())
	if err != nil {
		rollback()
		return false, &StepError{Migration: m.ID, Statement: -1, Err: err}
	}
	n, err := result.RowsAffected()
	if err != nil {
		rollback()
		return false, &StepError{Migration: m.ID, Statement: -1, Err: err}
	}
	if n == 0 {
		rollback()
		return false, nil
	}

	for i, stmt := range m.Statements {
		if r.LogStatements {
			r.logger.Printf("DEBUG: %s[%d]: %s", m.ID, i+1, stmt)
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			rollback()
			return false, &StepError{Migration: m.ID, Statement: i, Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return false, &StepError{Migration: m.ID, Statement: -1, Err: err}
	}
	return true, nil
}
