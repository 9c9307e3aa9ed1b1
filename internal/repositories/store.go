package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

var (
	// ErrStorage marks I/O, driver and corruption faults. Everything else the
	// repositories report is an ordinary outcome.
	ErrStorage = errors.New("storage fault")
	// ErrNotFound is returned by single-row lookups that matched nothing.
	ErrNotFound = errors.New("not found")
)

func fault(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repos bundles the repositories bound to one connection or transaction.
type Repos struct {
	Accounts AccountRepository
	Tasks    TaskRepository
}

func newRepos(db DBTX) Repos {
	return Repos{
		Accounts: NewAccountRepository(db),
		Tasks:    NewTaskRepository(db),
	}
}

// Store owns the database handle. Queries use $N placeholders, which both
// Postgres and SQLite understand, so only the DDL differs per driver.
type Store struct {
	DB      *sql.DB
	dialect dialect
}

// Open connects to a "sqlite" file store or a "postgres" server.
func Open(driver, dsn string, busyTimeoutMS int) (*Store, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("database url is required")
	}
	db, err := sql.Open(d.driverName, d.dsn(dsn, busyTimeoutMS))
	if err != nil {
		return nil, fault("open", err)
	}
	if d.singleConn {
		// one writer per process; other processes wait on busy_timeout
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fault("ping", err)
	}
	log.Printf("[store][open] driver=%s", driver)
	return &Store{DB: db, dialect: d}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

// Repos returns repositories that run each statement on its own.
func (s *Store) Repos() Repos {
	return newRepos(s.DB)
}

// InTx runs fn inside a single transaction. It commits when fn returns nil
// and rolls back otherwise, so nothing fn wrote is visible on failure.
func (s *Store) InTx(ctx context.Context, fn func(r Repos) error) error {
	return s.inTx(ctx, func(tx DBTX) error { return fn(newRepos(tx)) })
}

func (s *Store) inTx(ctx context.Context, fn func(tx DBTX) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fault("begin", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Printf("[store][tx] rollback failed: %v", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fault("commit", err)
	}
	return nil
}

// Migrate creates the tables if needed and brings stores written by older
// versions up to the current columns. It is safe to run on every start, also
// from several processes at once: the whole upgrade is one write transaction.
func (s *Store) Migrate(ctx context.Context) error {
	return s.inTx(ctx, func(tx DBTX) error {
		if s.dialect.migrateLock != "" {
			if _, err := tx.ExecContext(ctx, s.dialect.migrateLock); err != nil {
				return fault("migrate lock", err)
			}
		}
		for _, stmt := range s.dialect.schema {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fault("migrate", err)
			}
		}
		if err := s.ensureColumn(ctx, tx, "tarefas", "prioridade", "INTEGER DEFAULT 0"); err != nil {
			return err
		}
		return s.ensureColumn(ctx, tx, "usuarios", "papel", "TEXT NOT NULL DEFAULT 'padrao'")
	})
}

// ensureColumn adds a column that older schemas lack.
func (s *Store) ensureColumn(ctx context.Context, tx DBTX, table, column, def string) error {
	var n int
	if err := tx.QueryRowContext(ctx, s.dialect.columnExists, table, column).Scan(&n); err != nil {
		return fault("migrate "+table+"."+column, err)
	}
	if n > 0 {
		return nil
	}
	stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, def)
	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return fault("migrate "+table+"."+column, err)
	}
	log.Printf("[store][migrate] added %s.%s", table, column)
	return nil
}
