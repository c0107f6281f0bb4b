package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/simonvc/ledgercore/internal/ledger"
)

const entityColumns = `id, scope, company_id, name, base_currency, created_at`

// GetEntityByScope returns the entity owning scope, or ledger.ErrEntityNotFound.
func (s *Store) GetEntityByScope(ctx context.Context, scope ledger.Scope) (*ledger.Entity, error) {
	row := s.reader.QueryRowContext(ctx,
		s.q(`SELECT `+entityColumns+` FROM entities WHERE scope = ? AND company_id = ?`),
		string(scope.Kind()), scope.CompanyID())
	return scanEntity(row)
}

func (s *Store) GetEntity(ctx context.Context, id string) (*ledger.Entity, error) {
	row := s.reader.QueryRowContext(ctx,
		s.q(`SELECT `+entityColumns+` FROM entities WHERE id = ?`), id)
	return scanEntity(row)
}

// CreateEntity inserts a new entity for scope. If another caller created it
// first, the error wraps ledger.ErrConflict.
func (s *Store) CreateEntity(ctx context.Context, scope ledger.Scope, name, baseCurrency string) (*ledger.Entity, error) {
	e := &ledger.Entity{
		ID:           uuid.Must(uuid.NewV7()).String(),
		Scope:        scope,
		Name:         name,
		BaseCurrency: baseCurrency,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := s.writer.ExecContext(ctx,
		s.q(`INSERT INTO entities (`+entityColumns+`) VALUES (?, ?, ?, ?, ?, ?)`),
		e.ID, string(scope.Kind()), scope.CompanyID(), e.Name, e.BaseCurrency, formatTime(e.CreatedAt),
	)
	if err != nil {
		if s.dialect.isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: entity for %s already exists", ledger.ErrConflict, scope)
		}
		return nil, ledger.StorageError("insert entity", err)
	}
	return e, nil
}

func (s *Store) ListEntities(ctx context.Context) ([]ledger.Entity, error) {
	rows, err := s.reader.QueryContext(ctx,
		`SELECT `+entityColumns+` FROM entities ORDER BY scope DESC, company_id`)
	if err != nil {
		return nil, ledger.StorageError("list entities", err)
	}
	defer rows.Close()

	var entities []ledger.Entity
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		entities = append(entities, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.StorageError("list entities", err)
	}
	return entities, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntity(row rowScanner) (*ledger.Entity, error) {
	var e ledger.Entity
	var kind, companyID, createdAt string
	err := row.Scan(&e.ID, &kind, &companyID, &e.Name, &e.BaseCurrency, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrEntityNotFound
	}
	if err != nil {
		return nil, ledger.StorageError("scan entity", err)
	}
	e.Scope, err = ledger.ScopeFrom(kind, companyID)
	if err != nil {
		return nil, ledger.StorageError("scan entity", fmt.Errorf("corrupt scope %q/%q", kind, companyID))
	}
	e.CreatedAt = parseTime(createdAt)
	return &e, nil
}
