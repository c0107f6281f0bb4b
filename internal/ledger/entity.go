package ledger

import "time"

const (
	GlobalEntityName  = "Global Books"
	CompanyEntityName = "Company Books"
)

// Entity is a set of books. There is one global entity and at most one
// entity per company.
type Entity struct {
	ID           string    `json:"id"`
	Scope        Scope     `json:"scope"`
	Name         string    `json:"name"`
	BaseCurrency string    `json:"base_currency"`
	CreatedAt    time.Time `json:"created_at"`
}

// CompanyID returns the owning company, or "" for the global entity.
func (e *Entity) CompanyID() string {
	return e.Scope.CompanyID()
}

// DefaultEntityName is the name given to lazily created books.
func DefaultEntityName(s Scope) string {
	if s.IsGlobal() {
		return GlobalEntityName
	}
	return CompanyEntityName
}
