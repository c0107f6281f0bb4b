package store

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// timeLayout is fixed-width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type Options struct {
	// MaxOpenConns caps the reader pool (and the writer pool on Postgres).
	// Zero picks a default.
	MaxOpenConns int
}

// Store is the SQL persistence for the ledger. On SQLite all writes go through
// a single connection; reads use a separate pool.
type Store struct {
	writer  *sql.DB
	reader  *sql.DB
	dialect dialect
}

// Open connects to driver ("sqlite" or "postgres") and migrates the schema.
// For SQLite, source is a file path.
func Open(driver, source string, opts Options) (*Store, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}

	dsn := source
	if d.driver == DriverSQLite {
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)", source)
	}

	readers := opts.MaxOpenConns
	if readers <= 0 {
		readers = runtime.NumCPU()
	}

	writer, err := sql.Open(d.sqlDriver(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}
	if d.driver == DriverSQLite {
		writer.SetMaxOpenConns(1)
	} else {
		writer.SetMaxOpenConns(readers)
	}

	reader, err := sql.Open(d.sqlDriver(), dsn)
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("open reader: %w", err)
	}
	reader.SetMaxOpenConns(readers)

	s := &Store{writer: writer, reader: reader, dialect: d}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.migrate(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// OpenSQLite opens a SQLite database at path with default options.
func OpenSQLite(path string) (*Store, error) {
	return Open(string(DriverSQLite), path, Options{})
}

func (s *Store) Driver() Driver {
	return s.dialect.driver
}

func (s *Store) Ping(ctx context.Context) error {
	return s.reader.PingContext(ctx)
}

func (s *Store) Close() error {
	err1 := s.writer.Close()
	err2 := s.reader.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// q rebinds a query written with ? placeholders for the active driver.
func (s *Store) q(query string) string {
	return s.dialect.rebind(query)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// nullable maps "" to NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
