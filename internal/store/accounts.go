package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/simonvc/ledgercore/internal/ledger"
)

type AccountFilter struct {
	EntityID        string
	Type            ledger.AccountType
	IncludeInactive bool
}

const accountColumns = `id, entity_id, code, name, type, sub_type, normal_balance, standard_account_id, is_active, created_at`

// CountAccounts returns how many accounts the entity owns, active or not.
func (s *Store) CountAccounts(ctx context.Context, entityID string) (int, error) {
	var n int
	err := s.reader.QueryRowContext(ctx,
		s.q(`SELECT COUNT(*) FROM accounts WHERE entity_id = ?`), entityID).Scan(&n)
	if err != nil {
		return 0, ledger.StorageError("count accounts", err)
	}
	return n, nil
}

// ImportStandardAccounts copies catalog entries into the entity's chart in one
// transaction. Codes the entity already has are skipped, so concurrent imports
// converge. It returns the number of accounts inserted.
func (s *Store) ImportStandardAccounts(ctx context.Context, entityID string, catalog []ledger.StandardAccount) (int, error) {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return 0, ledger.StorageError("begin tx", err)
	}
	defer tx.Rollback()

	if err := s.requireEntity(ctx, tx, entityID); err != nil {
		return 0, err
	}

	stmt := s.q(`INSERT INTO accounts (` + accountColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?)
		ON CONFLICT (entity_id, code) DO NOTHING`)
	now := formatTime(time.Now())

	inserted := 0
	for _, sa := range catalog {
		res, err := tx.ExecContext(ctx, stmt,
			uuid.Must(uuid.NewV7()).String(), entityID, sa.Code, sa.Name, string(sa.Type),
			sa.SubType, string(sa.NormalBalance), sa.ID, now,
		)
		if err != nil {
			return 0, ledger.StorageError("import account "+sa.Code, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, ledger.StorageError("commit", err)
	}
	return inserted, nil
}

// CreateAccount inserts an entity-specific account. The input must already be
// validated.
func (s *Store) CreateAccount(ctx context.Context, na ledger.NewAccount) (*ledger.Account, error) {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return nil, ledger.StorageError("begin tx", err)
	}
	defer tx.Rollback()

	if err := s.requireEntity(ctx, tx, na.EntityID); err != nil {
		return nil, err
	}
	if na.StandardAccountID != nil {
		if err := s.requireStandard(ctx, tx, *na.StandardAccountID, na.Type); err != nil {
			return nil, err
		}
	}

	acct := &ledger.Account{
		ID:                uuid.Must(uuid.NewV7()).String(),
		EntityID:          na.EntityID,
		Code:              na.Code,
		Name:              na.Name,
		Type:              na.Type,
		SubType:           na.SubType,
		NormalBalance:     na.NormalBalance,
		StandardAccountID: na.StandardAccountID,
		IsActive:          true,
		CreatedAt:         time.Now().UTC(),
	}
	_, err = tx.ExecContext(ctx,
		s.q(`INSERT INTO accounts (`+accountColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		acct.ID, acct.EntityID, acct.Code, acct.Name, string(acct.Type), acct.SubType,
		string(acct.NormalBalance), acct.StandardAccountID, boolToInt(acct.IsActive), formatTime(acct.CreatedAt),
	)
	if err != nil {
		if s.dialect.isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", ledger.ErrDuplicateAccount, acct.Code)
		}
		return nil, ledger.StorageError("insert account", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, ledger.StorageError("commit", err)
	}
	return acct, nil
}

func (s *Store) GetAccount(ctx context.Context, id string) (*ledger.Account, error) {
	row := s.reader.QueryRowContext(ctx,
		s.q(`SELECT `+accountColumns+` FROM accounts WHERE id = ?`), id)
	return scanAccount(row)
}

func (s *Store) GetAccountByCode(ctx context.Context, entityID, code string) (*ledger.Account, error) {
	row := s.reader.QueryRowContext(ctx,
		s.q(`SELECT `+accountColumns+` FROM accounts WHERE entity_id = ? AND code = ?`), entityID, code)
	return scanAccount(row)
}

func (s *Store) ListAccounts(ctx context.Context, filter AccountFilter) ([]ledger.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE 1=1`
	args := []any{}

	if filter.EntityID != "" {
		query += ` AND entity_id = ?`
		args = append(args, filter.EntityID)
	}
	if filter.Type != "" {
		query += ` AND type = ?`
		args = append(args, string(filter.Type))
	}
	if !filter.IncludeInactive {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY entity_id, code`

	rows, err := s.reader.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, ledger.StorageError("list accounts", err)
	}
	defer rows.Close()

	accounts := []ledger.Account{}
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *acct)
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.StorageError("list accounts", err)
	}
	return accounts, nil
}

// SetAccountStandard sets or clears the account's rollup pointer. Nothing
// else about the account changes.
func (s *Store) SetAccountStandard(ctx context.Context, accountID string, standardID *string) (*ledger.Account, error) {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return nil, ledger.StorageError("begin tx", err)
	}
	defer tx.Rollback()

	acct, err := scanAccount(tx.QueryRowContext(ctx,
		s.q(`SELECT `+accountColumns+` FROM accounts WHERE id = ?`), accountID))
	if err != nil {
		return nil, err
	}
	if standardID != nil {
		if err := s.requireStandard(ctx, tx, *standardID, acct.Type); err != nil {
			return nil, err
		}
	}

	if _, err := tx.ExecContext(ctx,
		s.q(`UPDATE accounts SET standard_account_id = ? WHERE id = ?`), standardID, accountID); err != nil {
		return nil, ledger.StorageError("map account", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, ledger.StorageError("commit", err)
	}

	acct.StandardAccountID = standardID
	return acct, nil
}

func (s *Store) SetAccountActive(ctx context.Context, accountID string, active bool) (*ledger.Account, error) {
	res, err := s.writer.ExecContext(ctx,
		s.q(`UPDATE accounts SET is_active = ? WHERE id = ?`), boolToInt(active), accountID)
	if err != nil {
		return nil, ledger.StorageError("set account active", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ledger.ErrAccountNotFound
	}
	return s.getAccountForWrite(ctx, accountID)
}

// getAccountForWrite reads through the writer so the caller sees its own write.
func (s *Store) getAccountForWrite(ctx context.Context, id string) (*ledger.Account, error) {
	row := s.writer.QueryRowContext(ctx,
		s.q(`SELECT `+accountColumns+` FROM accounts WHERE id = ?`), id)
	return scanAccount(row)
}

func (s *Store) ListStandardAccounts(ctx context.Context) ([]ledger.StandardAccount, error) {
	rows, err := s.reader.QueryContext(ctx,
		`SELECT id, code, name, type, sub_type, normal_balance, description FROM standard_accounts ORDER BY code`)
	if err != nil {
		return nil, ledger.StorageError("list standard accounts", err)
	}
	defer rows.Close()

	var out []ledger.StandardAccount
	for rows.Next() {
		var sa ledger.StandardAccount
		if err := rows.Scan(&sa.ID, &sa.Code, &sa.Name, &sa.Type, &sa.SubType, &sa.NormalBalance, &sa.Description); err != nil {
			return nil, ledger.StorageError("scan standard account", err)
		}
		out = append(out, sa)
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.StorageError("list standard accounts", err)
	}
	return out, nil
}

func (s *Store) requireEntity(ctx context.Context, tx *sql.Tx, entityID string) error {
	var one int
	err := tx.QueryRowContext(ctx, s.q(`SELECT 1 FROM entities WHERE id = ?`), entityID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ledger.ErrEntityNotFound, entityID)
	}
	if err != nil {
		return ledger.StorageError("check entity", err)
	}
	return nil
}

// requireStandard checks the standard account exists and has the same type
// as the account being mapped to it.
func (s *Store) requireStandard(ctx context.Context, tx *sql.Tx, standardID string, accountType ledger.AccountType) error {
	var code string
	var stdType ledger.AccountType
	err := tx.QueryRowContext(ctx, s.q(`SELECT code, type FROM standard_accounts WHERE id = ?`), standardID).Scan(&code, &stdType)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ledger.ErrStandardAccountNotFound, standardID)
	}
	if err != nil {
		return ledger.StorageError("check standard account", err)
	}
	if stdType != accountType {
		return &ledger.FieldError{
			Field: "standard_account_id",
			Err:   fmt.Errorf("%w: %s is %s, account is %s", ledger.ErrStandardTypeMismatch, code, stdType, accountType),
		}
	}
	return nil
}

func scanAccount(row rowScanner) (*ledger.Account, error) {
	var acct ledger.Account
	var standardID sql.NullString
	var isActive int
	var createdAt string
	err := row.Scan(&acct.ID, &acct.EntityID, &acct.Code, &acct.Name, &acct.Type, &acct.SubType,
		&acct.NormalBalance, &standardID, &isActive, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrAccountNotFound
	}
	if err != nil {
		return nil, ledger.StorageError("scan account", err)
	}
	if standardID.Valid {
		acct.StandardAccountID = &standardID.String
	}
	acct.IsActive = isActive == 1
	acct.CreatedAt = parseTime(createdAt)
	return &acct, nil
}
