package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simonvc/ledgercore/internal/ledger"
)

// PostJournal writes a structurally valid journal as one atomic unit. Inside
// the transaction it checks that every line's account belongs to the entity
// and is active, that the journal balances, and that the entity's posting
// policies hold. The header is inserted unposted, lines are added, and the
// final UPDATE to posted fires the database's balance guard. Any failure
// leaves no rows behind.
func (s *Store) PostJournal(ctx context.Context, nj ledger.NewJournal) (*ledger.Journal, error) {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return nil, ledger.StorageError("begin tx", err)
	}
	defer tx.Rollback()

	if err := s.requireEntity(ctx, tx, nj.EntityID); err != nil {
		return nil, err
	}

	accounts := make(map[string]*ledger.Account, len(nj.Lines))
	for i, l := range nj.Lines {
		acct, ok := accounts[l.AccountID]
		if !ok {
			acct, err = s.lockAccount(ctx, tx, nj.EntityID, l.AccountID)
			if err != nil {
				return nil, &ledger.LineError{Line: i + 1, AccountID: l.AccountID, Err: err}
			}
			accounts[l.AccountID] = acct
		}
		if !acct.IsActive {
			return nil, &ledger.LineError{Line: i + 1, AccountID: l.AccountID, Err: ledger.ErrInactiveAccount}
		}
	}

	if err := nj.CheckBalance(); err != nil {
		return nil, err
	}

	if err := s.checkPolicies(ctx, tx, nj, accounts); err != nil {
		return nil, err
	}

	j := &ledger.Journal{
		ID:          uuid.Must(uuid.NewV7()).String(),
		EntityID:    nj.EntityID,
		JournalType: nj.JournalType,
		Date:        nj.Date,
		Description: nj.Description,
		Reference:   nj.Reference,
		Currency:    nj.Currency,
		CreatedBy:   nj.CreatedBy,
		CreatedAt:   time.Now().UTC(),
	}
	j.JournalNo = ledger.JournalNumber(nj.Reference, nj.Date, j.ID)

	_, err = tx.ExecContext(ctx,
		s.q(`INSERT INTO journals (id, entity_id, journal_no, journal_type, entry_date, description, reference, currency, created_by, posted, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?)`),
		j.ID, j.EntityID, j.JournalNo, j.JournalType, j.Date.String(), j.Description, j.Reference,
		j.Currency, j.CreatedBy, formatTime(j.CreatedAt),
	)
	if err != nil {
		return nil, ledger.StorageError("insert journal", err)
	}

	lineStmt := s.q(`INSERT INTO journal_lines (id, journal_id, line_no, entity_id, account_id, debit, credit, description,
		company_id, branch_id, vendor_id, employee_id, project_id, cost_center)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	for i, l := range nj.Lines {
		debit, err := ledger.ToScaled(l.Debit)
		if err != nil {
			return nil, &ledger.LineError{Line: i + 1, AccountID: l.AccountID, Err: err}
		}
		credit, err := ledger.ToScaled(l.Credit)
		if err != nil {
			return nil, &ledger.LineError{Line: i + 1, AccountID: l.AccountID, Err: err}
		}
		line := ledger.JournalLine{
			ID:          uuid.Must(uuid.NewV7()).String(),
			JournalID:   j.ID,
			LineNo:      i + 1,
			AccountID:   l.AccountID,
			AccountCode: accounts[l.AccountID].Code,
			Debit:       ledger.FromScaled(debit),
			Credit:      ledger.FromScaled(credit),
			Description: l.Description,
			Dimensions:  l.Dimensions,
		}
		d := line.Dimensions
		_, err = tx.ExecContext(ctx, lineStmt,
			line.ID, j.ID, line.LineNo, j.EntityID, line.AccountID, debit, credit, line.Description,
			nullable(d.CompanyID), nullable(d.BranchID), nullable(d.VendorID),
			nullable(d.EmployeeID), nullable(d.ProjectID), nullable(d.CostCenter),
		)
		if err != nil {
			return nil, ledger.StorageError(fmt.Sprintf("insert line %d", i+1), err)
		}
		j.Lines = append(j.Lines, line)
	}

	// Finalize - trigger re-checks balance and line count
	if _, err := tx.ExecContext(ctx, s.q(`UPDATE journals SET posted = 1 WHERE id = ?`), j.ID); err != nil {
		return nil, ledger.StorageError("finalize journal", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, ledger.StorageError("commit", err)
	}
	return j, nil
}

// lockAccount reads an account of entityID, holding a share lock on Postgres
// so it cannot be deactivated before the journal commits.
func (s *Store) lockAccount(ctx context.Context, tx *sql.Tx, entityID, accountID string) (*ledger.Account, error) {
	row := tx.QueryRowContext(ctx,
		s.q(`SELECT `+accountColumns+` FROM accounts WHERE id = ? AND entity_id = ?`+s.dialect.forShare()),
		accountID, entityID)
	return scanAccount(row)
}

func (s *Store) checkPolicies(ctx context.Context, tx *sql.Tx, nj ledger.NewJournal, accounts map[string]*ledger.Account) error {
	policies, err := s.loadPolicies(ctx, tx, nj.EntityID)
	if err != nil {
		return err
	}
	if len(policies) == 0 {
		return nil
	}

	delta := map[string][2]decimal.Decimal{}
	for i, l := range nj.Lines {
		acct := accounts[l.AccountID]
		p, ok := policies[acct.Code]
		if !ok {
			continue
		}
		if err := p.CheckLine(l); err != nil {
			return &ledger.LineError{Line: i + 1, AccountID: l.AccountID, Err: err}
		}
		d := delta[l.AccountID]
		delta[l.AccountID] = [2]decimal.Decimal{d[0].Add(l.Debit), d[1].Add(l.Credit)}
	}

	for accountID, d := range delta {
		acct := accounts[accountID]
		p := policies[acct.Code]
		if !p.BlockInverted {
			continue
		}
		var debit, credit int64
		err := tx.QueryRowContext(ctx,
			s.q(`SELECT COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
			FROM journal_lines l
			JOIN journals j ON j.id = l.journal_id
			WHERE l.account_id = ? AND j.posted = 1`), accountID,
		).Scan(&debit, &credit)
		if err != nil {
			return ledger.StorageError("account totals", err)
		}
		totalDebit := ledger.FromScaled(debit).Add(d[0])
		totalCredit := ledger.FromScaled(credit).Add(d[1])
		if err := p.CheckResultingBalance(acct.NormalBalance, totalDebit, totalCredit); err != nil {
			return &ledger.LineError{Line: firstLineFor(nj, accountID), AccountID: accountID, Err: err}
		}
	}
	return nil
}

func firstLineFor(nj ledger.NewJournal, accountID string) int {
	for i, l := range nj.Lines {
		if l.AccountID == accountID {
			return i + 1
		}
	}
	return 0
}

func (s *Store) GetJournal(ctx context.Context, id string) (*ledger.Journal, error) {
	row := s.reader.QueryRowContext(ctx,
		s.q(`SELECT `+journalColumns+` FROM journals WHERE id = ? AND posted = 1`), id)
	j, err := scanJournal(row)
	if err != nil {
		return nil, err
	}

	lines, err := s.getLinesForJournal(ctx, id)
	if err != nil {
		return nil, err
	}
	j.Lines = lines
	return j, nil
}

func (s *Store) ListJournals(ctx context.Context, filter ledger.JournalFilter) ([]ledger.Journal, error) {
	query := `SELECT ` + journalColumns + ` FROM journals WHERE posted = 1`
	args := []any{}

	if filter.EntityID != "" {
		query += ` AND entity_id = ?`
		args = append(args, filter.EntityID)
	}
	if !filter.From.IsZero() {
		query += ` AND entry_date >= ?`
		args = append(args, filter.From.String())
	}
	if !filter.To.IsZero() {
		query += ` AND entry_date <= ?`
		args = append(args, filter.To.String())
	}
	query += ` ORDER BY entry_date DESC, created_at DESC`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(` OFFSET %d`, filter.Offset)
		}
	}

	rows, err := s.reader.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, ledger.StorageError("list journals", err)
	}
	defer rows.Close()

	journals := []ledger.Journal{}
	for rows.Next() {
		j, err := scanJournal(rows)
		if err != nil {
			return nil, err
		}
		journals = append(journals, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.StorageError("list journals", err)
	}
	rows.Close()

	for i := range journals {
		lines, err := s.getLinesForJournal(ctx, journals[i].ID)
		if err != nil {
			return nil, err
		}
		journals[i].Lines = lines
	}
	return journals, nil
}

// CountRows reports the number of journal headers and lines, posted or not.
func (s *Store) CountRows(ctx context.Context) (journals, lines int, err error) {
	if err = s.reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM journals`).Scan(&journals); err != nil {
		return 0, 0, ledger.StorageError("count journals", err)
	}
	if err = s.reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM journal_lines`).Scan(&lines); err != nil {
		return 0, 0, ledger.StorageError("count lines", err)
	}
	return journals, lines, nil
}

const journalColumns = `id, entity_id, journal_no, journal_type, entry_date, description, reference, currency, created_by, created_at`

func scanJournal(row rowScanner) (*ledger.Journal, error) {
	var j ledger.Journal
	var date, createdAt string
	err := row.Scan(&j.ID, &j.EntityID, &j.JournalNo, &j.JournalType, &date, &j.Description,
		&j.Reference, &j.Currency, &j.CreatedBy, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrJournalNotFound
	}
	if err != nil {
		return nil, ledger.StorageError("scan journal", err)
	}
	if j.Date, err = ledger.ParseDate(date); err != nil {
		return nil, ledger.StorageError("scan journal", fmt.Errorf("corrupt entry_date %q", date))
	}
	j.CreatedAt = parseTime(createdAt)
	return &j, nil
}

func (s *Store) getLinesForJournal(ctx context.Context, journalID string) ([]ledger.JournalLine, error) {
	rows, err := s.reader.QueryContext(ctx,
		s.q(`SELECT l.id, l.journal_id, l.line_no, l.account_id, a.code, l.debit, l.credit, l.description,
			l.company_id, l.branch_id, l.vendor_id, l.employee_id, l.project_id, l.cost_center
		FROM journal_lines l
		JOIN accounts a ON a.id = l.account_id
		WHERE l.journal_id = ?
		ORDER BY l.line_no`), journalID)
	if err != nil {
		return nil, ledger.StorageError("get lines", err)
	}
	defer rows.Close()

	lines := []ledger.JournalLine{}
	for rows.Next() {
		var l ledger.JournalLine
		var debit, credit int64
		var company, branch, vendor, employee, project, costCenter sql.NullString
		if err := rows.Scan(&l.ID, &l.JournalID, &l.LineNo, &l.AccountID, &l.AccountCode, &debit, &credit,
			&l.Description, &company, &branch, &vendor, &employee, &project, &costCenter); err != nil {
			return nil, ledger.StorageError("scan line", err)
		}
		l.Debit = ledger.FromScaled(debit)
		l.Credit = ledger.FromScaled(credit)
		l.Dimensions = ledger.Dimensions{
			CompanyID:  company.String,
			BranchID:   branch.String,
			VendorID:   vendor.String,
			EmployeeID: employee.String,
			ProjectID:  project.String,
			CostCenter: costCenter.String,
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.StorageError("get lines", err)
	}
	return lines, nil
}
