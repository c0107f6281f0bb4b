package accounting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simonvc/ledgercore/internal/config"
	"github.com/simonvc/ledgercore/internal/events"
	"github.com/simonvc/ledgercore/internal/ledger"
	"github.com/sirupsen/logrus"
)

const publishTimeout = 5 * time.Second

type JournalStore interface {
	GetEntity(ctx context.Context, id string) (*ledger.Entity, error)
	GetAccountByCode(ctx context.Context, entityID, code string) (*ledger.Account, error)
	PostJournal(ctx context.Context, nj ledger.NewJournal) (*ledger.Journal, error)
	GetJournal(ctx context.Context, id string) (*ledger.Journal, error)
	ListJournals(ctx context.Context, filter ledger.JournalFilter) ([]ledger.Journal, error)
}

// Poster validates and posts journals. Posted journals are never changed;
// Reverse is the only correction.
type Poster struct {
	store        JournalStore
	publisher    events.Publisher
	baseCurrency string
	logger       logrus.FieldLogger
}

func NewPoster(st JournalStore, publisher events.Publisher, baseCurrency string, logger logrus.FieldLogger) *Poster {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Poster{store: st, publisher: publisher, baseCurrency: baseCurrency, logger: logger}
}

// PostJournal checks the journal's structure, then hands it to the store,
// which checks accounts, balance and policies and writes it atomically.
func (p *Poster) PostJournal(ctx context.Context, nj ledger.NewJournal) (*ledger.Journal, error) {
	if err := p.prepare(ctx, &nj); err != nil {
		return nil, err
	}
	if err := nj.ValidateStructure(); err != nil {
		return nil, err
	}

	j, err := p.store.PostJournal(ctx, nj)
	if err != nil {
		return nil, err
	}

	p.logger.WithFields(logrus.Fields{
		"journal_id": j.ID,
		"journal_no": j.JournalNo,
		"entity_id":  j.EntityID,
		"lines":      len(j.Lines),
	}).Info("journal posted")

	// The journal has committed; a caller going away must not drop its event.
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := p.publisher.PublishJournalPosted(pctx, events.NewJournalPosted(j)); err != nil {
		config.LogError(p.logger, "accounting", "PostJournal", "publish journal posted", j.ID, err)
	}
	return j, nil
}

// prepare trims header fields and fills defaults from the entity. An unknown
// entity is left for the store to report, after structural checks.
func (p *Poster) prepare(ctx context.Context, nj *ledger.NewJournal) error {
	nj.EntityID = strings.TrimSpace(nj.EntityID)
	nj.JournalType = strings.TrimSpace(nj.JournalType)
	nj.Reference = strings.TrimSpace(nj.Reference)

	var entity *ledger.Entity
	if nj.EntityID != "" {
		e, err := p.store.GetEntity(ctx, nj.EntityID)
		switch {
		case err == nil:
			entity = e
		case !errors.Is(err, ledger.ErrNotFound):
			return err
		}
	}

	if strings.TrimSpace(nj.Currency) == "" {
		if entity != nil {
			nj.Currency = entity.BaseCurrency
		} else {
			nj.Currency = p.baseCurrency
		}
	}
	nj.Currency = strings.ToUpper(strings.TrimSpace(nj.Currency))

	if entity != nil && !entity.Scope.IsGlobal() {
		for i := range nj.Lines {
			if nj.Lines[i].Dimensions.CompanyID == "" {
				nj.Lines[i].Dimensions.CompanyID = entity.CompanyID()
			}
		}
	}
	return nil
}

func (p *Poster) GetJournal(ctx context.Context, id string) (*ledger.Journal, error) {
	return p.store.GetJournal(ctx, id)
}

func (p *Poster) ListJournals(ctx context.Context, filter ledger.JournalFilter) ([]ledger.Journal, error) {
	if err := ledger.CheckRange(filter.From, filter.To); err != nil {
		return nil, err
	}
	return p.store.ListJournals(ctx, filter)
}

// Reverse posts a new journal that cancels journalID. A zero date means today.
func (p *Poster) Reverse(ctx context.Context, journalID string, date ledger.Date, description string) (*ledger.Journal, error) {
	orig, err := p.store.GetJournal(ctx, journalID)
	if err != nil {
		return nil, err
	}
	if date.IsZero() {
		date = ledger.Today()
	}
	if date.Before(orig.Date) {
		return nil, &ledger.FieldError{Field: "date", Err: fmt.Errorf("%w: reversal dated before %s", ledger.ErrInvalidDate, orig.Date)}
	}
	return p.PostJournal(ctx, ledger.Reversal(orig, date, description))
}

type TemplateRequest struct {
	EntityID    string
	Template    string
	Amount      decimal.Decimal
	Date        ledger.Date
	Description string
	Reference   string
	CreatedBy   string
}

// PostTemplate builds a journal from a named template, resolving each
// template line to the entity's account with that standard code.
func (p *Poster) PostTemplate(ctx context.Context, req TemplateRequest) (*ledger.Journal, error) {
	tmpl, ok := ledger.LookupTemplate(req.Template)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ledger.ErrUnknownTemplate, req.Template)
	}
	lines, err := tmpl.Build(req.Amount, func(code string) (string, error) {
		acct, err := p.store.GetAccountByCode(ctx, req.EntityID, code)
		if err != nil {
			return "", err
		}
		return acct.ID, nil
	})
	if err != nil {
		return nil, err
	}

	description := req.Description
	if description == "" {
		description = tmpl.Name
	}
	return p.PostJournal(ctx, ledger.NewJournal{
		EntityID:    req.EntityID,
		JournalType: ledger.JournalTypeGeneral,
		Date:        req.Date,
		Description: description,
		Reference:   req.Reference,
		CreatedBy:   req.CreatedBy,
		Lines:       lines,
	})
}
