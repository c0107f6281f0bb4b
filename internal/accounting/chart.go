package accounting

import (
	"context"
	"strings"

	"github.com/simonvc/ledgercore/internal/ledger"
	"github.com/simonvc/ledgercore/internal/store"
	"github.com/sirupsen/logrus"
)

type ChartStore interface {
	EntityStore
	CountAccounts(ctx context.Context, entityID string) (int, error)
	ImportStandardAccounts(ctx context.Context, entityID string, catalog []ledger.StandardAccount) (int, error)
	CreateAccount(ctx context.Context, na ledger.NewAccount) (*ledger.Account, error)
	GetAccount(ctx context.Context, id string) (*ledger.Account, error)
	ListAccounts(ctx context.Context, filter store.AccountFilter) ([]ledger.Account, error)
	SetAccountStandard(ctx context.Context, accountID string, standardID *string) (*ledger.Account, error)
	SetAccountActive(ctx context.Context, accountID string, active bool) (*ledger.Account, error)
	ListStandardAccounts(ctx context.Context) ([]ledger.StandardAccount, error)

	ListPolicies(ctx context.Context, entityID string) ([]ledger.AccountPolicy, error)
	GetCodePolicies(ctx context.Context, entityID, code string) (ledger.CodePolicies, error)
	UpsertPolicy(ctx context.Context, p ledger.AccountPolicy) error
	DeletePolicy(ctx context.Context, entityID, code string, name ledger.PolicyName) error

	GetEntitySettings(ctx context.Context, entityID string) (*ledger.EntitySettings, error)
	UpsertEntitySettings(ctx context.Context, es ledger.EntitySettings) (*ledger.EntitySettings, error)
}

// Chart manages each entity's chart of accounts, its posting policies and
// its control account settings.
type Chart struct {
	store    ChartStore
	resolver *Resolver
	logger   logrus.FieldLogger
}

func NewChart(st ChartStore, resolver *Resolver, logger logrus.FieldLogger) *Chart {
	return &Chart{store: st, resolver: resolver, logger: logger}
}

// CreateOrImportEntityChart resolves the scope's entity and, if it has no
// accounts yet, copies the standard catalog into it. The entity's accounts
// are returned either way.
func (c *Chart) CreateOrImportEntityChart(ctx context.Context, scope ledger.Scope) ([]ledger.Account, error) {
	e, err := c.resolver.ResolveEntity(ctx, scope)
	if err != nil {
		return nil, err
	}

	n, err := c.store.CountAccounts(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		inserted, err := c.store.ImportStandardAccounts(ctx, e.ID, ledger.StandardCatalog())
		if err != nil {
			return nil, err
		}
		if inserted > 0 {
			c.logger.WithFields(logrus.Fields{"entity_id": e.ID, "accounts": inserted}).Info("standard chart imported")
		}
	}

	return c.store.ListAccounts(ctx, store.AccountFilter{EntityID: e.ID, IncludeInactive: true})
}

func (c *Chart) CreateAccountForEntity(ctx context.Context, na ledger.NewAccount) (*ledger.Account, error) {
	na.Normalize()
	if err := na.Validate(); err != nil {
		return nil, err
	}
	return c.store.CreateAccount(ctx, na)
}

// MapAccountToStandard points the account at a standard account for rollup,
// or clears the pointer when standardID is nil.
func (c *Chart) MapAccountToStandard(ctx context.Context, accountID string, standardID *string) (*ledger.Account, error) {
	if standardID != nil {
		id := strings.TrimSpace(*standardID)
		if id == "" {
			standardID = nil
		} else {
			standardID = &id
		}
	}
	return c.store.SetAccountStandard(ctx, accountID, standardID)
}

func (c *Chart) ListStandardAccounts(ctx context.Context) ([]ledger.StandardAccount, error) {
	return c.store.ListStandardAccounts(ctx)
}

func (c *Chart) ListAccounts(ctx context.Context, entityID string, includeInactive bool) ([]ledger.Account, error) {
	if _, err := c.resolver.Entity(ctx, entityID); err != nil {
		return nil, err
	}
	return c.store.ListAccounts(ctx, store.AccountFilter{EntityID: entityID, IncludeInactive: includeInactive})
}

func (c *Chart) GetAccount(ctx context.Context, id string) (*ledger.Account, error) {
	return c.store.GetAccount(ctx, id)
}

// SetAccountActive deactivates or reactivates an account. Posted history is
// untouched; inactive accounts only refuse new lines.
func (c *Chart) SetAccountActive(ctx context.Context, accountID string, active bool) (*ledger.Account, error) {
	acct, err := c.store.SetAccountActive(ctx, accountID, active)
	if err != nil {
		return nil, err
	}
	c.logger.WithFields(logrus.Fields{"account_id": acct.ID, "code": acct.Code, "active": active}).Info("account status changed")
	return acct, nil
}

func (c *Chart) ListPolicies(ctx context.Context, entityID string) ([]ledger.AccountPolicy, error) {
	if _, err := c.resolver.Entity(ctx, entityID); err != nil {
		return nil, err
	}
	return c.store.ListPolicies(ctx, entityID)
}

func (c *Chart) CodePolicies(ctx context.Context, entityID, code string) (ledger.CodePolicies, error) {
	if _, err := c.resolver.Entity(ctx, entityID); err != nil {
		return ledger.CodePolicies{}, err
	}
	return c.store.GetCodePolicies(ctx, entityID, code)
}

func (c *Chart) SetPolicy(ctx context.Context, p ledger.AccountPolicy) error {
	p.Value = strings.ToUpper(strings.TrimSpace(p.Value))
	if err := p.Validate(); err != nil {
		return err
	}
	if _, err := c.resolver.Entity(ctx, p.EntityID); err != nil {
		return err
	}
	return c.store.UpsertPolicy(ctx, p)
}

func (c *Chart) DeletePolicy(ctx context.Context, entityID, code string, name ledger.PolicyName) error {
	if _, err := c.resolver.Entity(ctx, entityID); err != nil {
		return err
	}
	return c.store.DeletePolicy(ctx, entityID, code, name)
}

func (c *Chart) EntitySettings(ctx context.Context, entityID string) (*ledger.EntitySettings, error) {
	return c.store.GetEntitySettings(ctx, entityID)
}

// SetEntitySettings replaces the entity's control accounts. Slots left empty
// are cleared.
func (c *Chart) SetEntitySettings(ctx context.Context, es ledger.EntitySettings) (*ledger.EntitySettings, error) {
	es.Normalize()
	if err := es.Validate(); err != nil {
		return nil, err
	}
	saved, err := c.store.UpsertEntitySettings(ctx, es)
	if err != nil {
		return nil, err
	}
	c.logger.WithField("entity_id", saved.EntityID).Info("entity settings saved")
	return saved, nil
}
