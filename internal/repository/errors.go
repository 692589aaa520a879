package repository

import "errors"

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// Type names a repository backend in configuration.
type Type string

const (
	TypePostgres Type = "postgres"
	TypeSQLite   Type = "sqlite"
	TypeMySQL    Type = "mysql"
	TypeInMemory Type = "inmemory"
)

func (t Type) Valid() bool {
	switch t {
	case TypePostgres, TypeSQLite, TypeMySQL, TypeInMemory:
		return true
	}
	return false
}
