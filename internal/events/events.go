package events

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simonvc/ledgercore/internal/ledger"
)

// JournalPosted is emitted once a journal has committed.
type JournalPosted struct {
	JournalID   string          `json:"journal_id"`
	EntityID    string          `json:"entity_id"`
	JournalNo   string          `json:"journal_no"`
	JournalType string          `json:"journal_type"`
	Date        ledger.Date     `json:"date"`
	Currency    string          `json:"currency"`
	Amount      decimal.Decimal `json:"amount"`
	LineCount   int             `json:"line_count"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

func NewJournalPosted(j *ledger.Journal) JournalPosted {
	debit, _ := j.Totals()
	return JournalPosted{
		JournalID:   j.ID,
		EntityID:    j.EntityID,
		JournalNo:   j.JournalNo,
		JournalType: j.JournalType,
		Date:        j.Date,
		Currency:    j.Currency,
		Amount:      debit,
		LineCount:   len(j.Lines),
		OccurredAt:  j.CreatedAt,
	}
}

type Publisher interface {
	PublishJournalPosted(ctx context.Context, e JournalPosted) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) PublishJournalPosted(context.Context, JournalPosted) error { return nil }
func (Nop) Close() error                                               { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []JournalPosted
	Err    error
}

func (r *Recorder) PublishJournalPosted(_ context.Context, e JournalPosted) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []JournalPosted {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]JournalPosted, len(r.events))
	copy(out, r.events)
	return out
}
