package store

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

type dialect struct {
	driver Driver
}

func dialectFor(name string) (dialect, error) {
	switch Driver(strings.ToLower(name)) {
	case DriverSQLite, "sqlite3", "":
		return dialect{driver: DriverSQLite}, nil
	case DriverPostgres, "postgresql", "pg":
		return dialect{driver: DriverPostgres}, nil
	default:
		return dialect{}, fmt.Errorf("unsupported database driver %q", name)
	}
}

// sqlDriver is the database/sql driver name registered by the imported package.
func (d dialect) sqlDriver() string {
	return string(d.driver)
}

// rebind rewrites ? placeholders to $1, $2, ... for Postgres.
func (d dialect) rebind(query string) string {
	if d.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// forShare is the row lock taken on accounts read during posting. SQLite
// serializes writers already and has no row locks.
func (d dialect) forShare() string {
	if d.driver == DriverPostgres {
		return " FOR SHARE"
	}
	return ""
}

// isUniqueViolation reports whether err came from a unique or primary key
// constraint.
func (d dialect) isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		code := sqErr.Code()
		switch code {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
		// Primary result code only, when extended codes are off.
		return code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sqErr.Error(), "UNIQUE constraint failed")
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
