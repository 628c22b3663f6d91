package database

import (
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Dialect defines the interface for database-specific operations
type Dialect interface {
	// Name identifies the dialect in logs and configuration
	Name() string

	// DriverName returns the driver name for sql.Open
	DriverName() string

	// DSN returns the data source name for the connection
	DSN(config DialectConfig) string

	// RewriteQuery converts placeholder syntax if needed (e.g., ? to $1 for postgres)
	RewriteQuery(query string) string

	// SupportsLastInsertId returns true if the driver supports LastInsertId()
	SupportsLastInsertId() bool

	// ConfigureConnection applies any database-specific connection settings
	ConfigureConnection(db *sql.DB) error

	// MigrationsSubdir returns the subdirectory name for migrations (e.g., "sqlite", "postgres")
	MigrationsSubdir() string

	// CreateMigrationsTableQuery returns the SQL to create the migrations tracking table
	CreateMigrationsTableQuery() string

	// BoolValue returns the SQL representation of a boolean value
	BoolValue(b bool) string

	// IncrementOnConflict returns an INSERT of keyColumns plus column that, when
	// the key already exists, adds the inserted value to the stored one instead.
	// touchColumns are set to the current timestamp on conflict.
	IncrementOnConflict(table string, keyColumns []string, column string, touchColumns ...string) string

	// InsertIgnore returns an INSERT that silently skips rows violating a unique key
	InsertIgnore(table string, columns []string) string

	// ResetSequence returns the statement that realigns an identity sequence
	// after rows were inserted with explicit ids, or "" if none is needed
	ResetSequence(table string) string
}

// DialectConfig holds configuration for database connection
type DialectConfig struct {
	// For SQLite
	Path string

	// For PostgreSQL/MySQL
	URL string
}

// placeholders returns "?, ?, ?" for n columns
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func insertPrefix(verb, table string, columns []string) string {
	return verb + " " + table + " (" + strings.Join(columns, ", ") + ") VALUES (" + placeholders(len(columns)) + ")"
}

// conflictIncrement builds the ON CONFLICT form shared by SQLite and PostgreSQL
func conflictIncrement(table string, keyColumns []string, column string, touchColumns []string) string {
	cols := append(append([]string{}, keyColumns...), column)
	sets := []string{column + " = " + table + "." + column + " + excluded." + column}
	for _, c := range touchColumns {
		sets = append(sets, c+" = CURRENT_TIMESTAMP")
	}
	return insertPrefix("INSERT INTO", table, cols) +
		" ON CONFLICT (" + strings.Join(keyColumns, ", ") + ") DO UPDATE SET " + strings.Join(sets, ", ")
}

// rebind converts ? placeholders to the bind style of the driver
func rebind(bindType int, query string) string {
	if bindType == sqlx.QUESTION || bindType == sqlx.UNKNOWN {
		return query
	}
	return sqlx.Rebind(bindType, query)
}
