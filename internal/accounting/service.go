package accounting

import (
	"github.com/simonvc/ledgercore/internal/events"
	"github.com/simonvc/ledgercore/internal/store"
	"github.com/sirupsen/logrus"
)

type Options struct {
	BaseCurrency   string
	SummaryEntries int
	Publisher      events.Publisher
}

// Service wires the ledger components over one store.
type Service struct {
	Resolver *Resolver
	Chart    *Chart
	Poster   *Poster
	Reports  *Reports
	FailSoft *FailSoftReports
}

func NewService(st *store.Store, opts Options, logger logrus.FieldLogger) *Service {
	resolver := NewResolver(st, opts.BaseCurrency, logger)
	reports := NewReports(st, opts.SummaryEntries)
	return &Service{
		Resolver: resolver,
		Chart:    NewChart(st, resolver, logger),
		Poster:   NewPoster(st, opts.Publisher, opts.BaseCurrency, logger),
		Reports:  reports,
		FailSoft: NewFailSoftReports(reports, logger),
	}
}
