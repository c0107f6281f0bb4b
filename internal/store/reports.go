package store

import (
	"context"
	"fmt"

	"github.com/simonvc/ledgercore/internal/ledger"
)

// ActivityFilter selects the posted lines aggregated by AccountActivity.
// Zero fields do not filter.
type ActivityFilter struct {
	EntityID  string
	AccountID string
	From      ledger.Date // inclusive
	To        ledger.Date // inclusive
	Before    ledger.Date // exclusive
	BranchID  string
	VendorID  string

	ActiveOnly bool
	CashOnly   bool
	// CashCounterparts keeps only non-cash lines of journals that also have a
	// cash or bank line.
	CashCounterparts bool
}

const cashSubTypes = `('cash','bank')`

// AccountActivity sums posted debits and credits per account. Only accounts
// with at least one matching line are returned, ordered by code.
func (s *Store) AccountActivity(ctx context.Context, f ActivityFilter) ([]ledger.AccountActivity, error) {
	query := `SELECT a.id, a.entity_id, a.code, a.name, a.type, a.sub_type, a.normal_balance,
			COALESCE(sa.code, ''), COALESCE(sa.name, ''),
			COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
		FROM journal_lines l
		JOIN journals j ON j.id = l.journal_id AND j.posted = 1
		JOIN accounts a ON a.id = l.account_id
		LEFT JOIN standard_accounts sa ON sa.id = a.standard_account_id
		WHERE 1=1`
	args := []any{}

	if f.EntityID != "" {
		query += ` AND l.entity_id = ?`
		args = append(args, f.EntityID)
	}
	if f.AccountID != "" {
		query += ` AND l.account_id = ?`
		args = append(args, f.AccountID)
	}
	if !f.From.IsZero() {
		query += ` AND j.entry_date >= ?`
		args = append(args, f.From.String())
	}
	if !f.To.IsZero() {
		query += ` AND j.entry_date <= ?`
		args = append(args, f.To.String())
	}
	if !f.Before.IsZero() {
		query += ` AND j.entry_date < ?`
		args = append(args, f.Before.String())
	}
	if f.BranchID != "" {
		query += ` AND l.branch_id = ?`
		args = append(args, f.BranchID)
	}
	if f.VendorID != "" {
		query += ` AND l.vendor_id = ?`
		args = append(args, f.VendorID)
	}
	if f.ActiveOnly {
		query += ` AND a.is_active = 1`
	}
	if f.CashOnly {
		query += ` AND a.sub_type IN ` + cashSubTypes
	}
	if f.CashCounterparts {
		query += ` AND a.sub_type NOT IN ` + cashSubTypes + `
		AND EXISTS (
			SELECT 1 FROM journal_lines cl
			JOIN accounts ca ON ca.id = cl.account_id
			WHERE cl.journal_id = l.journal_id AND ca.sub_type IN ` + cashSubTypes + `
		)`
	}

	query += `
		GROUP BY a.id, a.entity_id, a.code, a.name, a.type, a.sub_type, a.normal_balance, sa.code, sa.name
		ORDER BY a.code, a.entity_id`

	rows, err := s.reader.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, ledger.StorageError("account activity", err)
	}
	defer rows.Close()

	out := []ledger.AccountActivity{}
	for rows.Next() {
		var a ledger.AccountActivity
		var debit, credit int64
		if err := rows.Scan(&a.AccountID, &a.EntityID, &a.Code, &a.Name, &a.Type, &a.SubType, &a.NormalBalance,
			&a.StandardCode, &a.StandardName, &debit, &credit); err != nil {
			return nil, ledger.StorageError("scan account activity", err)
		}
		a.Debit = ledger.FromScaled(debit)
		a.Credit = ledger.FromScaled(credit)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.StorageError("account activity", err)
	}
	return out, nil
}

// CountJournals counts posted journals, for one entity or all of them.
func (s *Store) CountJournals(ctx context.Context, entityID string) (int, error) {
	query := `SELECT COUNT(*) FROM journals WHERE posted = 1`
	args := []any{}
	if entityID != "" {
		query += ` AND entity_id = ?`
		args = append(args, entityID)
	}
	var n int
	if err := s.reader.QueryRowContext(ctx, s.q(query), args...).Scan(&n); err != nil {
		return 0, ledger.StorageError("count journals", err)
	}
	return n, nil
}

// RecentEntries returns the newest posted lines, each with the running
// balance of its account after that line, signed by the account's normal
// balance.
func (s *Store) RecentEntries(ctx context.Context, entityID string, limit int) ([]ledger.LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	where := `j.posted = 1`
	args := []any{}
	if entityID != "" {
		where += ` AND l.entity_id = ?`
		args = append(args, entityID)
	}
	args = append(args, limit)

	query := `SELECT journal_id, journal_no, entity_id, entry_date, description, line_no,
			account_id, account_code, account_name, normal_balance, debit, credit, running
		FROM (
			SELECT j.id AS journal_id, j.journal_no, j.entity_id, j.entry_date, j.description, j.created_at,
				l.line_no, a.id AS account_id, a.code AS account_code, a.name AS account_name,
				a.normal_balance, l.debit, l.credit,
				SUM(l.debit - l.credit) OVER (
					PARTITION BY l.account_id
					ORDER BY j.entry_date, j.created_at, j.id, l.line_no
					ROWS BETWEEN UNBOUNDED PRECEDING AND CURRENT ROW
				) AS running
			FROM journal_lines l
			JOIN journals j ON j.id = l.journal_id
			JOIN accounts a ON a.id = l.account_id
			WHERE ` + where + `
		) entries
		ORDER BY entry_date DESC, created_at DESC, journal_id DESC, line_no
		LIMIT ?`

	rows, err := s.reader.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, ledger.StorageError("recent entries", err)
	}
	defer rows.Close()

	out := []ledger.LedgerEntry{}
	for rows.Next() {
		var e ledger.LedgerEntry
		var date string
		var normal ledger.NormalBalance
		var debit, credit, running int64
		if err := rows.Scan(&e.JournalID, &e.JournalNo, &e.EntityID, &date, &e.Description, &e.LineNo,
			&e.AccountID, &e.AccountCode, &e.AccountName, &normal, &debit, &credit, &running); err != nil {
			return nil, ledger.StorageError("scan entry", err)
		}
		e.Date, _ = ledger.ParseDate(date)
		e.Debit = ledger.FromScaled(debit)
		e.Credit = ledger.FromScaled(credit)
		e.RunningBalance = ledger.FromScaled(running)
		if normal == ledger.NormalCredit {
			e.RunningBalance = e.RunningBalance.Neg()
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.StorageError("recent entries", err)
	}
	return out, nil
}

// AccountEntries returns an account's posted lines within [from, to] in date
// order. RunningBalance is left for the caller.
func (s *Store) AccountEntries(ctx context.Context, accountID string, from, to ledger.Date) ([]ledger.LedgerEntry, error) {
	query := `SELECT j.id, j.journal_no, j.entity_id, j.entry_date, j.description, l.line_no,
			a.id, a.code, a.name, l.debit, l.credit
		FROM journal_lines l
		JOIN journals j ON j.id = l.journal_id AND j.posted = 1
		JOIN accounts a ON a.id = l.account_id
		WHERE l.account_id = ?`
	args := []any{accountID}
	if !from.IsZero() {
		query += ` AND j.entry_date >= ?`
		args = append(args, from.String())
	}
	if !to.IsZero() {
		query += ` AND j.entry_date <= ?`
		args = append(args, to.String())
	}
	query += ` ORDER BY j.entry_date, j.created_at, j.id, l.line_no`

	rows, err := s.reader.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, ledger.StorageError("account entries", err)
	}
	defer rows.Close()

	out := []ledger.LedgerEntry{}
	for rows.Next() {
		var e ledger.LedgerEntry
		var date string
		var debit, credit int64
		if err := rows.Scan(&e.JournalID, &e.JournalNo, &e.EntityID, &date, &e.Description, &e.LineNo,
			&e.AccountID, &e.AccountCode, &e.AccountName, &debit, &credit); err != nil {
			return nil, ledger.StorageError("scan entry", err)
		}
		if e.Date, err = ledger.ParseDate(date); err != nil {
			return nil, ledger.StorageError("scan entry", fmt.Errorf("corrupt entry_date %q", date))
		}
		e.Debit = ledger.FromScaled(debit)
		e.Credit = ledger.FromScaled(credit)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.StorageError("account entries", err)
	}
	return out, nil
}
