// Package sqlstore implements the repository on database/sql for SQLite and MySQL.
//
// Both dialects share the queries below: '?' placeholders, explicit transactions for
// multi-row writes and timestamps written from Go in UTC.
package sqlstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/repository"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const slowQuery = 100 * time.Millisecond

// SQLite's built-in LOWER only folds ASCII.
const sqliteLower = "unicode_lower"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(sqliteLower, 1,
		func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			switch v := args[0].(type) {
			case string:
				return strings.ToLower(v), nil
			case []byte:
				return strings.ToLower(string(v)), nil
			}
			return args[0], nil
		})
}

type Storage struct {
	db      *sql.DB
	dialect repository.Type
}

// Open connects to the given backend; dsn is a file path for sqlite and a
// go-sql-driver DSN for mysql.
func Open(ctx context.Context, dialect repository.Type, dsn string) (*Storage, error) {
	var (
		driver string
		err    error
	)
	switch dialect {
	case repository.TypeSQLite:
		driver = "sqlite"
		dsn = sqliteDSN(dsn)
	case repository.TypeMySQL:
		driver = "mysql"
		dsn, err = mysqlDSN(dsn)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("sqlstore: unsupported dialect %q", dialect)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		logger.Error("Repository: opening database failed", err)
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if dialect == repository.TypeSQLite {
		// one writer at a time, avoids SQLITE_BUSY between pooled connections
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		logger.Error("Repository: ping failed", err)
		return nil, fmt.Errorf("ping: %w", err)
	}

	logger.Info("Repository: connected", zap.String("dialect", string(dialect)))
	return New(db, dialect), nil
}

// lower wraps expr in the dialect's Unicode-aware lowercase function.
func (s *Storage) lower(expr string) string {
	if s.dialect == repository.TypeSQLite {
		return sqliteLower + "(" + expr + ")"
	}
	return "LOWER(" + expr + ")"
}

func New(db *sql.DB, dialect repository.Type) *Storage {
	return &Storage{db: db, dialect: dialect}
}

func sqliteDSN(path string) string {
	params := url.Values{}
	params.Add("_pragma", "foreign_keys(1)")
	params.Add("_pragma", "busy_timeout(5000)")
	params.Set("_time_format", "sqlite")
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + params.Encode()
}

func mysqlDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parsing mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

func (s *Storage) Close() error {
	if err := s.db.Close(); err != nil {
		logger.Warn("Repository: closing database", zap.Error(err))
		return fmt.Errorf("closing database: %w", err)
	}
	logger.Info("Repository: database closed", zap.String("dialect", string(s.dialect)))
	return nil
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		logger.Error("Repository: ping failed", err)
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// insertIgnore starts an INSERT that skips rows violating a unique key.
func (s *Storage) insertIgnore() string {
	if s.dialect == repository.TypeMySQL {
		return "INSERT IGNORE INTO"
	}
	return "INSERT OR IGNORE INTO"
}

func (s *Storage) isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}

func (s *Storage) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Warn("Repository: rollback failed", zap.Error(rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func logSlow(operation string, start time.Time) {
	if elapsed := time.Since(start); elapsed > slowQuery {
		logger.Warn("Repository: slow query",
			zap.String("operation", operation),
			zap.Duration("ms", elapsed))
	}
}

// placeholders returns "?, ?, ?" and the ids as query args.
func placeholders(ids []int64) (string, []any) {
	marks := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		marks[i] = "?"
		args[i] = id
	}
	return strings.Join(marks, ", "), args
}

func now() time.Time {
	return time.Now().UTC()
}

type scanner interface {
	Scan(dest ...any) error
}
