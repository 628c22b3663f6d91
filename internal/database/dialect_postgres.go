package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// postgresSQL holds the SQL generation shared by both PostgreSQL drivers
type postgresSQL struct{}

func (postgresSQL) RewriteQuery(query string) string {
	// PostgreSQL uses $1, $2, etc. instead of ?
	return rebind(sqlx.DOLLAR, query)
}

func (postgresSQL) SupportsLastInsertId() bool {
	// PostgreSQL doesn't support LastInsertId(), needs RETURNING clause
	return false
}

func (postgresSQL) ConfigureConnection(db *sql.DB) error {
	// Configure connection pool for PostgreSQL
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	// PostgreSQL has foreign keys enabled by default, no pragma needed
	return nil
}

func (postgresSQL) MigrationsSubdir() string {
	return "postgres"
}

func (postgresSQL) CreateMigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id BIGSERIAL PRIMARY KEY,
			filename TEXT UNIQUE NOT NULL,
			executed_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		);
	`
}

func (postgresSQL) BoolValue(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func (postgresSQL) IncrementOnConflict(table string, keyColumns []string, column string, touchColumns ...string) string {
	return conflictIncrement(table, keyColumns, column, touchColumns)
}

func (postgresSQL) InsertIgnore(table string, columns []string) string {
	return insertPrefix("INSERT INTO", table, columns) + " ON CONFLICT DO NOTHING"
}

func (postgresSQL) ResetSequence(table string) string {
	return fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE((SELECT MAX(id) FROM %s), 0) + 1, false)", table, table)
}

// PostgresDialect implements Dialect for PostgreSQL through lib/pq
type PostgresDialect struct {
	postgresSQL
}

// NewPostgresDialect creates a new PostgreSQL dialect
func NewPostgresDialect() *PostgresDialect {
	return &PostgresDialect{}
}

func (d *PostgresDialect) Name() string {
	return "postgres"
}

func (d *PostgresDialect) DriverName() string {
	return "postgres"
}

func (d *PostgresDialect) DSN(config DialectConfig) string {
	return config.URL
}

// PgxDialect implements Dialect for PostgreSQL through the pgx stdlib driver
type PgxDialect struct {
	postgresSQL
}

// NewPgxDialect creates a new pgx-backed PostgreSQL dialect
func NewPgxDialect() *PgxDialect {
	return &PgxDialect{}
}

func (d *PgxDialect) Name() string {
	return "pgx"
}

func (d *PgxDialect) DriverName() string {
	return "pgx"
}

func (d *PgxDialect) DSN(config DialectConfig) string {
	return config.URL
}
