package accounting

import (
	"context"
	"errors"

	"github.com/simonvc/ledgercore/internal/ledger"
	"github.com/sirupsen/logrus"
)

type EntityStore interface {
	GetEntity(ctx context.Context, id string) (*ledger.Entity, error)
	GetEntityByScope(ctx context.Context, scope ledger.Scope) (*ledger.Entity, error)
	CreateEntity(ctx context.Context, scope ledger.Scope, name, baseCurrency string) (*ledger.Entity, error)
	ListEntities(ctx context.Context) ([]ledger.Entity, error)
}

// Resolver maps a scope to its entity, creating the entity on first use.
type Resolver struct {
	store        EntityStore
	baseCurrency string
	logger       logrus.FieldLogger
}

func NewResolver(st EntityStore, baseCurrency string, logger logrus.FieldLogger) *Resolver {
	return &Resolver{store: st, baseCurrency: baseCurrency, logger: logger}
}

func (r *Resolver) ResolveEntityID(ctx context.Context, scope ledger.Scope) (string, error) {
	e, err := r.ResolveEntity(ctx, scope)
	if err != nil {
		return "", err
	}
	return e.ID, nil
}

// ResolveEntity is get-or-create. When a concurrent caller inserts first, the
// unique key rejects our insert and we read the winner's row.
func (r *Resolver) ResolveEntity(ctx context.Context, scope ledger.Scope) (*ledger.Entity, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	e, err := r.store.GetEntityByScope(ctx, scope)
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, ledger.ErrNotFound) {
		return nil, err
	}

	e, err = r.store.CreateEntity(ctx, scope, ledger.DefaultEntityName(scope), r.baseCurrency)
	switch {
	case err == nil:
		r.logger.WithFields(logrus.Fields{"entity_id": e.ID, "scope": scope.String()}).Info("entity created")
		return e, nil
	case errors.Is(err, ledger.ErrConflict):
		return r.store.GetEntityByScope(ctx, scope)
	default:
		return nil, err
	}
}

// Entity loads an existing entity by id.
func (r *Resolver) Entity(ctx context.Context, id string) (*ledger.Entity, error) {
	if id == "" {
		return nil, ledger.ErrMissingEntityID
	}
	return r.store.GetEntity(ctx, id)
}

// ListEntities returns every set of books created so far, global first.
func (r *Resolver) ListEntities(ctx context.Context) ([]ledger.Entity, error) {
	entities, err := r.store.ListEntities(ctx)
	if err != nil {
		return nil, err
	}
	if entities == nil {
		entities = []ledger.Entity{}
	}
	return entities, nil
}
