package ledger

import (
	"fmt"
	"strings"
)

type ScopeKind string

const (
	ScopeGlobal  ScopeKind = "global"
	ScopeCompany ScopeKind = "company"
)

// Scope selects which books an operation targets: the single global entity
// or the entity of one company. The zero value is invalid.
type Scope struct {
	kind      ScopeKind
	companyID string
}

func GlobalScope() Scope {
	return Scope{kind: ScopeGlobal}
}

// CompanyScope returns the scope for a company's books. A blank id is rejected.
func CompanyScope(companyID string) (Scope, error) {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return Scope{}, ErrMissingCompanyID
	}
	return Scope{kind: ScopeCompany, companyID: companyID}, nil
}

// ScopeFrom builds a scope from a loose kind string and company id, as they
// arrive from request bodies and query strings.
func ScopeFrom(kind, companyID string) (Scope, error) {
	switch ScopeKind(strings.ToLower(strings.TrimSpace(kind))) {
	case ScopeGlobal:
		return GlobalScope(), nil
	case ScopeCompany:
		return CompanyScope(companyID)
	default:
		return Scope{}, fmt.Errorf("%w: %q", ErrInvalidScope, kind)
	}
}

// ParseScope parses "global" or "company:<id>".
func ParseScope(s string) (Scope, error) {
	kind, id, _ := strings.Cut(strings.TrimSpace(s), ":")
	if ScopeKind(strings.ToLower(kind)) == ScopeGlobal && id != "" {
		return Scope{}, fmt.Errorf("%w: %q", ErrInvalidScope, s)
	}
	return ScopeFrom(kind, id)
}

func (s Scope) Kind() ScopeKind   { return s.kind }
func (s Scope) CompanyID() string { return s.companyID }
func (s Scope) IsGlobal() bool    { return s.kind == ScopeGlobal }

// Validate rejects the zero scope and company scopes without an id.
func (s Scope) Validate() error {
	switch s.kind {
	case ScopeGlobal:
		return nil
	case ScopeCompany:
		if s.companyID == "" {
			return ErrMissingCompanyID
		}
		return nil
	default:
		return ErrInvalidScope
	}
}

func (s Scope) String() string {
	if s.kind == ScopeCompany {
		return string(ScopeCompany) + ":" + s.companyID
	}
	return string(s.kind)
}

func (s Scope) MarshalText() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return []byte(s.String()), nil
}

func (s *Scope) UnmarshalText(b []byte) error {
	parsed, err := ParseScope(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
