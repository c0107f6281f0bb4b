package ledger

import (
	_ "embed"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// StandardAccount is an immutable entry of the standard chart of accounts.
type StandardAccount struct {
	ID            string        `json:"id" yaml:"-"`
	Code          string        `json:"code" yaml:"code"`
	Name          string        `json:"name" yaml:"name"`
	Type          AccountType   `json:"type" yaml:"type"`
	SubType       string        `json:"sub_type,omitempty" yaml:"sub_type"`
	NormalBalance NormalBalance `json:"normal_balance" yaml:"normal_balance"`
	Description   string        `json:"description,omitempty" yaml:"description"`
}

//go:embed catalog.yaml
var catalogYAML []byte

// standardNamespace seeds the name-based ids of standard accounts, so every
// database assigns the same id to the same code.
var standardNamespace = uuid.MustParse("6f1d0c1e-5a43-4c4b-9d7e-3b8f3c2a9e11")

var standardCatalog = mustParseCatalog(catalogYAML)

// StandardAccountID returns the stable id of the standard account with code.
func StandardAccountID(code string) string {
	return uuid.NewSHA1(standardNamespace, []byte(code)).String()
}

// ParseCatalog decodes a YAML chart. Missing normal balances default from the
// account type.
func ParseCatalog(data []byte) ([]StandardAccount, error) {
	var doc struct {
		Accounts []StandardAccount `yaml:"accounts"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	seen := make(map[string]bool, len(doc.Accounts))
	for i := range doc.Accounts {
		sa := &doc.Accounts[i]
		if sa.Code == "" || sa.Name == "" {
			return nil, fmt.Errorf("catalog entry %d: code and name are required", i)
		}
		if seen[sa.Code] {
			return nil, fmt.Errorf("catalog entry %d: duplicate code %s", i, sa.Code)
		}
		seen[sa.Code] = true
		if !sa.Type.Valid() {
			return nil, fmt.Errorf("catalog entry %s: %w: %q", sa.Code, ErrInvalidAccountType, sa.Type)
		}
		if sa.NormalBalance == "" {
			sa.NormalBalance = DefaultNormalBalance(sa.Type)
		}
		if !sa.NormalBalance.Valid() {
			return nil, fmt.Errorf("catalog entry %s: %w", sa.Code, ErrInvalidNormalBalance)
		}
		sa.ID = StandardAccountID(sa.Code)
	}
	return doc.Accounts, nil
}

func mustParseCatalog(data []byte) []StandardAccount {
	accounts, err := ParseCatalog(data)
	if err != nil {
		panic(err)
	}
	return accounts
}

// StandardCatalog returns a copy of the built-in standard chart, ordered by code.
func StandardCatalog() []StandardAccount {
	out := make([]StandardAccount, len(standardCatalog))
	copy(out, standardCatalog)
	return out
}

// LookupStandard finds a standard account by code.
func LookupStandard(code string) (StandardAccount, bool) {
	for _, sa := range standardCatalog {
		if sa.Code == code {
			return sa, true
		}
	}
	return StandardAccount{}, false
}

// AccountFromStandard is the entity account a chart import creates for sa.
func AccountFromStandard(entityID string, sa StandardAccount) NewAccount {
	id := sa.ID
	return NewAccount{
		EntityID:          entityID,
		Code:              sa.Code,
		Name:              sa.Name,
		Type:              sa.Type,
		SubType:           sa.SubType,
		NormalBalance:     sa.NormalBalance,
		StandardAccountID: &id,
	}
}
