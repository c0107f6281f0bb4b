package server

import (
	"net"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/simonvc/ledgercore/internal/accounting"
	"github.com/sirupsen/logrus"
)

type Server struct {
	svc      *accounting.Service
	router   chi.Router
	addr     string
	logger   logrus.FieldLogger
	validate *validator.Validate
}

func New(svc *accounting.Service, addr string, logger logrus.FieldLogger) *Server {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	r := chi.NewRouter()
	s := &Server{
		svc:      svc,
		router:   r,
		addr:     addr,
		logger:   logger,
		validate: validate,
	}

	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		// Entities and charts
		r.Get("/entities", s.listEntities)
		r.Post("/entities/resolve", s.resolveEntity)
		r.Get("/standard-accounts", s.listStandardAccounts)
		r.Post("/charts/import", s.importChart)

		r.Route("/entities/{entityID}", func(r chi.Router) {
			r.Get("/accounts", s.listAccounts)
			r.Post("/accounts", s.createAccount)

			r.Get("/policies", s.listPolicies)
			r.Get("/policies/{code}", s.getCodePolicies)
			r.Put("/policies/{code}/{setting}", s.upsertPolicy)
			r.Delete("/policies/{code}/{setting}", s.deletePolicy)

			r.Get("/settings", s.getEntitySettings)
			r.Put("/settings", s.upsertEntitySettings)
		})

		// Accounts
		r.Get("/accounts/{id}", s.getAccount)
		r.Put("/accounts/{id}/standard", s.mapAccountToStandard)
		r.Put("/accounts/{id}/active", s.setAccountActive)

		// Journals
		r.Post("/journals", s.postJournal)
		r.Get("/journals", s.listJournals)
		r.Post("/journals/template", s.postTemplate)
		r.Get("/journals/{id}", s.getJournal)
		r.Post("/journals/{id}/reverse", s.reverseJournal)

		// Reports
		r.Get("/reports/trial-balance", s.trialBalance)
		r.Get("/reports/balance-sheet", s.balanceSheet)
		r.Get("/reports/cash-flow", s.cashFlow)
		r.Get("/reports/profit-and-loss", s.profitAndLoss)
		r.Get("/reports/account-statement", s.accountStatement)
		r.Get("/reports/summary", s.summary)

		r.Get("/templates", s.listTemplates)
	})

	return s
}

// requestLogger logs one line per request once the response is written.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.WithFields(logrus.Fields{
				"request_id": middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start).String(),
			}).Info("request")
		}()
		next.ServeHTTP(ww, r)
	})
}

func (s *Server) ListenAndServe() error {
	s.logger.WithField("addr", s.addr).Info("ledgercore server listening")
	return http.ListenAndServe(s.addr, s.router)
}

func (s *Server) Serve(ln net.Listener) error {
	s.logger.WithField("addr", ln.Addr().String()).Info("ledgercore server listening")
	return http.Serve(ln, s.router)
}

func (s *Server) Handler() http.Handler {
	return s.router
}
