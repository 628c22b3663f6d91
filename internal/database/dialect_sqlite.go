package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// sqliteBusyTimeoutMS lets writers queue behind an immediate transaction
// instead of failing with SQLITE_BUSY
const sqliteBusyTimeoutMS = 5000

// sqliteSQL holds the SQL generation shared by both SQLite drivers
type sqliteSQL struct{}

func (sqliteSQL) RewriteQuery(query string) string {
	// SQLite uses ? placeholders, no rewrite needed
	return query
}

func (sqliteSQL) SupportsLastInsertId() bool {
	return true
}

func (sqliteSQL) ConfigureConnection(db *sql.DB) error {
	// Configure connection pool. Pragmas travel in the DSN so every
	// pooled connection gets them.
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)
	return nil
}

func (sqliteSQL) MigrationsSubdir() string {
	return "sqlite"
}

func (sqliteSQL) CreateMigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			filename TEXT UNIQUE NOT NULL,
			executed_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`
}

func (sqliteSQL) BoolValue(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func (sqliteSQL) IncrementOnConflict(table string, keyColumns []string, column string, touchColumns ...string) string {
	return conflictIncrement(table, keyColumns, column, touchColumns)
}

func (sqliteSQL) InsertIgnore(table string, columns []string) string {
	return insertPrefix("INSERT OR IGNORE INTO", table, columns)
}

func (sqliteSQL) ResetSequence(string) string {
	return ""
}

// SQLiteDialect implements Dialect for SQLite through the cgo driver
type SQLiteDialect struct {
	sqliteSQL
}

// NewSQLiteDialect creates a new SQLite dialect
func NewSQLiteDialect() *SQLiteDialect {
	return &SQLiteDialect{}
}

func (d *SQLiteDialect) Name() string {
	return "sqlite"
}

func (d *SQLiteDialect) DriverName() string {
	return "sqlite3"
}

func (d *SQLiteDialect) DSN(config DialectConfig) string {
	return fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on&_journal_mode=WAL&_txlock=immediate",
		config.Path, sqliteBusyTimeoutMS)
}

// PureSQLiteDialect implements Dialect for SQLite through the pure Go driver
type PureSQLiteDialect struct {
	sqliteSQL
}

// NewPureSQLiteDialect creates a new cgo-free SQLite dialect
func NewPureSQLiteDialect() *PureSQLiteDialect {
	return &PureSQLiteDialect{}
}

func (d *PureSQLiteDialect) Name() string {
	return "sqlite-pure"
}

func (d *PureSQLiteDialect) DriverName() string {
	return "sqlite"
}

func (d *PureSQLiteDialect) DSN(config DialectConfig) string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_txlock=immediate",
		config.Path, sqliteBusyTimeoutMS)
}
