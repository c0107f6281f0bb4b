package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/simonvc/ledgercore/internal/config"
	"github.com/simonvc/ledgercore/internal/ledger"
)

const degradedHeader = "X-Ledger-Degraded"

type errorResponse struct {
	Error     string            `json:"error"`
	Kind      ledger.Kind       `json:"kind"`
	Line      int               `json:"line,omitempty"`
	AccountID string            `json:"account_id,omitempty"`
	Field     string            `json:"field,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

// requestError reports a malformed or invalid request body. Details maps
// field names to the failed rule.
type requestError struct {
	msg     string
	details map[string]string
}

func (e *requestError) Error() string { return e.msg }

func (e *requestError) Unwrap() error { return ledger.ErrValidation }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func statusFor(kind ledger.Kind) int {
	switch kind {
	case ledger.KindValidation:
		return http.StatusBadRequest
	case ledger.KindNotFound:
		return http.StatusNotFound
	case ledger.KindConflict:
		return http.StatusConflict
	case ledger.KindUnauthorized:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// mapError builds the response for err. Storage and unclassified errors are
// reported opaquely.
func mapError(err error) (int, errorResponse) {
	kind := ledger.KindOf(err)
	status := statusFor(kind)
	if status == http.StatusInternalServerError {
		return status, errorResponse{Error: "internal error", Kind: kind}
	}

	resp := errorResponse{Error: err.Error(), Kind: kind}
	var le *ledger.LineError
	if errors.As(err, &le) {
		resp.Line = le.Line
		resp.AccountID = le.AccountID
	}
	var fe *ledger.FieldError
	if errors.As(err, &fe) {
		resp.Field = fe.Field
	}
	var re *requestError
	if errors.As(err, &re) {
		resp.Details = re.details
	}
	return status, resp
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := mapError(err)
	if status == http.StatusInternalServerError {
		config.LogError(s.logger, "server", "writeError", r.Method+" "+r.URL.Path, middleware.GetReqID(r.Context()), err)
	}
	writeJSON(w, status, resp)
}

// decode reads a JSON body into v and runs its validate tags.
func (s *Server) decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &requestError{msg: "invalid JSON: " + err.Error()}
	}
	if err := s.validate.Struct(v); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			return &requestError{msg: err.Error()}
		}
		details := make(map[string]string, len(ve))
		for _, fe := range ve {
			details[fe.Field()] = fe.Tag()
		}
		return &requestError{msg: "invalid request", details: details}
	}
	return nil
}

// decodeOptional is decode for endpoints whose body may be omitted.
func (s *Server) decodeOptional(r *http.Request, v any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return &requestError{msg: "read body: " + err.Error()}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	return s.decode(r, v)
}

func queryDate(r *http.Request, name string) (ledger.Date, error) {
	d, err := ledger.ParseDate(r.URL.Query().Get(name))
	if err != nil {
		return ledger.Date{}, &ledger.FieldError{Field: name, Err: err}
	}
	return d, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, &ledger.FieldError{Field: name, Err: fmt.Errorf("%w: %q is not a non-negative integer", ledger.ErrValidation, raw)}
	}
	return n, nil
}

func queryBool(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return b
}

func markDegraded(w http.ResponseWriter, degraded bool) {
	if degraded {
		w.Header().Set(degradedHeader, "true")
	}
}
