package store

import (
	"context"
	"database/sql"

	"github.com/simonvc/ledgercore/internal/ledger"
)

func (s *Store) ListPolicies(ctx context.Context, entityID string) ([]ledger.AccountPolicy, error) {
	rows, err := s.reader.QueryContext(ctx,
		s.q(`SELECT entity_id, code, policy, value FROM account_policies WHERE entity_id = ? ORDER BY code, policy`), entityID)
	if err != nil {
		return nil, ledger.StorageError("list policies", err)
	}
	defer rows.Close()

	policies := []ledger.AccountPolicy{}
	for rows.Next() {
		var p ledger.AccountPolicy
		if err := rows.Scan(&p.EntityID, &p.Code, &p.Policy, &p.Value); err != nil {
			return nil, ledger.StorageError("scan policy", err)
		}
		policies = append(policies, p)
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.StorageError("list policies", err)
	}
	return policies, nil
}

// GetCodePolicies resolves the policies for one code, with defaults for
// anything unset.
func (s *Store) GetCodePolicies(ctx context.Context, entityID, code string) (ledger.CodePolicies, error) {
	cp := ledger.DefaultCodePolicies(code)

	rows, err := s.reader.QueryContext(ctx,
		s.q(`SELECT entity_id, code, policy, value FROM account_policies WHERE entity_id = ? AND code = ?`), entityID, code)
	if err != nil {
		return cp, ledger.StorageError("get code policies", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p ledger.AccountPolicy
		if err := rows.Scan(&p.EntityID, &p.Code, &p.Policy, &p.Value); err != nil {
			return cp, ledger.StorageError("scan code policy", err)
		}
		cp.Apply(p)
	}
	if err := rows.Err(); err != nil {
		return cp, ledger.StorageError("get code policies", err)
	}
	return cp, nil
}

func (s *Store) UpsertPolicy(ctx context.Context, p ledger.AccountPolicy) error {
	_, err := s.writer.ExecContext(ctx,
		s.q(`INSERT INTO account_policies (entity_id, code, policy, value) VALUES (?, ?, ?, ?)
		 ON CONFLICT (entity_id, code, policy) DO UPDATE SET value = excluded.value`),
		p.EntityID, p.Code, string(p.Policy), p.Value,
	)
	if err != nil {
		return ledger.StorageError("upsert policy", err)
	}
	return nil
}

func (s *Store) DeletePolicy(ctx context.Context, entityID, code string, name ledger.PolicyName) error {
	_, err := s.writer.ExecContext(ctx,
		s.q(`DELETE FROM account_policies WHERE entity_id = ? AND code = ? AND policy = ?`),
		entityID, code, string(name))
	if err != nil {
		return ledger.StorageError("delete policy", err)
	}
	return nil
}

// loadPolicies resolves every policy of the entity, keyed by account code.
func (s *Store) loadPolicies(ctx context.Context, tx *sql.Tx, entityID string) (map[string]ledger.CodePolicies, error) {
	rows, err := tx.QueryContext(ctx,
		s.q(`SELECT entity_id, code, policy, value FROM account_policies WHERE entity_id = ?`), entityID)
	if err != nil {
		return nil, ledger.StorageError("load policies", err)
	}
	defer rows.Close()

	out := map[string]ledger.CodePolicies{}
	for rows.Next() {
		var p ledger.AccountPolicy
		if err := rows.Scan(&p.EntityID, &p.Code, &p.Policy, &p.Value); err != nil {
			return nil, ledger.StorageError("scan policy", err)
		}
		cp, ok := out[p.Code]
		if !ok {
			cp = ledger.DefaultCodePolicies(p.Code)
		}
		cp.Apply(p)
		out[p.Code] = cp
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.StorageError("load policies", err)
	}
	return out, nil
}
