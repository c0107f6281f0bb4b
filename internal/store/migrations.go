package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/simonvc/ledgercore/internal/ledger"
)

func (s *Store) migrate(ctx context.Context) error {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)
	`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	var version int
	err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version < 1 {
		stmts := append([]string{}, schemaV1...)
		if s.dialect.driver == DriverPostgres {
			stmts = append(stmts, postgresGuardsV1...)
		} else {
			stmts = append(stmts, sqliteGuardsV1...)
		}
		stmts = append(stmts, `INSERT INTO schema_version (version) VALUES (1)`)
		if err := execAll(ctx, tx, stmts); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	if version < 2 {
		stmts := append([]string{}, schemaV2...)
		stmts = append(stmts, `INSERT INTO schema_version (version) VALUES (2)`)
		if err := execAll(ctx, tx, stmts); err != nil {
			return fmt.Errorf("migration v2: %w", err)
		}
	}

	if err := s.seedStandardAccounts(ctx, tx); err != nil {
		return err
	}

	return tx.Commit()
}

func execAll(ctx context.Context, tx *sql.Tx, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			head := stmt
			if len(head) > 60 {
				head = head[:60]
			}
			return fmt.Errorf("exec %q: %w", head, err)
		}
	}
	return nil
}

// seedStandardAccounts inserts catalog entries missing from the table. It runs
// on every open so new catalog codes reach existing databases.
func (s *Store) seedStandardAccounts(ctx context.Context, tx *sql.Tx) error {
	stmt := s.q(`INSERT INTO standard_accounts (id, code, name, type, sub_type, normal_balance, description)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (code) DO NOTHING`)
	for _, sa := range ledger.StandardCatalog() {
		_, err := tx.ExecContext(ctx, stmt,
			sa.ID, sa.Code, sa.Name, string(sa.Type), sa.SubType, string(sa.NormalBalance), sa.Description)
		if err != nil {
			return fmt.Errorf("seed standard account %s: %w", sa.Code, err)
		}
	}
	return nil
}

// schemaV1 is portable between SQLite and Postgres. Amounts are integers at
// ledger.AmountScale; dates are YYYY-MM-DD text; timestamps are fixed-width text.
var schemaV1 = []string{
	`CREATE TABLE IF NOT EXISTS standard_accounts (
		id             TEXT PRIMARY KEY,
		code           TEXT NOT NULL UNIQUE,
		name           TEXT NOT NULL,
		type           TEXT NOT NULL CHECK (type IN ('asset','liability','equity','income','expense')),
		sub_type       TEXT NOT NULL DEFAULT '',
		normal_balance TEXT NOT NULL CHECK (normal_balance IN ('debit','credit')),
		description    TEXT NOT NULL DEFAULT ''
	)`,

	// company_id is '' for the global entity so the unique key covers it.
	`CREATE TABLE IF NOT EXISTS entities (
		id            TEXT PRIMARY KEY,
		scope         TEXT NOT NULL CHECK (scope IN ('global','company')),
		company_id    TEXT NOT NULL DEFAULT '',
		name          TEXT NOT NULL,
		base_currency TEXT NOT NULL,
		created_at    TEXT NOT NULL,
		UNIQUE (scope, company_id),
		CHECK ((scope = 'global' AND company_id = '') OR (scope = 'company' AND company_id <> ''))
	)`,

	`CREATE TABLE IF NOT EXISTS accounts (
		id                  TEXT PRIMARY KEY,
		entity_id           TEXT NOT NULL REFERENCES entities(id),
		code                TEXT NOT NULL,
		name                TEXT NOT NULL,
		type                TEXT NOT NULL CHECK (type IN ('asset','liability','equity','income','expense')),
		sub_type            TEXT NOT NULL DEFAULT '',
		normal_balance      TEXT NOT NULL CHECK (normal_balance IN ('debit','credit')),
		standard_account_id TEXT REFERENCES standard_accounts(id),
		is_active           INTEGER NOT NULL DEFAULT 1,
		created_at          TEXT NOT NULL,
		UNIQUE (entity_id, code)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_accounts_standard ON accounts(standard_account_id)`,

	`CREATE TABLE IF NOT EXISTS journals (
		id           TEXT PRIMARY KEY,
		entity_id    TEXT NOT NULL REFERENCES entities(id),
		journal_no   TEXT NOT NULL,
		journal_type TEXT NOT NULL,
		entry_date   TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		reference    TEXT NOT NULL DEFAULT '',
		currency     TEXT NOT NULL,
		created_by   TEXT NOT NULL DEFAULT '',
		posted       INTEGER NOT NULL DEFAULT 0,
		created_at   TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_journals_entity_date ON journals(entity_id, entry_date)`,
	`CREATE INDEX IF NOT EXISTS idx_journals_no ON journals(journal_no)`,

	`CREATE TABLE IF NOT EXISTS journal_lines (
		id          TEXT PRIMARY KEY,
		journal_id  TEXT NOT NULL REFERENCES journals(id),
		line_no     INTEGER NOT NULL,
		entity_id   TEXT NOT NULL REFERENCES entities(id),
		account_id  TEXT NOT NULL REFERENCES accounts(id),
		debit       BIGINT NOT NULL DEFAULT 0 CHECK (debit >= 0),
		credit      BIGINT NOT NULL DEFAULT 0 CHECK (credit >= 0),
		description TEXT NOT NULL DEFAULT '',
		company_id  TEXT,
		branch_id   TEXT,
		vendor_id   TEXT,
		employee_id TEXT,
		project_id  TEXT,
		cost_center TEXT,
		UNIQUE (journal_id, line_no),
		CHECK ((debit = 0) <> (credit = 0))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_lines_account ON journal_lines(account_id)`,
	`CREATE INDEX IF NOT EXISTS idx_lines_entity ON journal_lines(entity_id)`,
	`CREATE INDEX IF NOT EXISTS idx_lines_branch ON journal_lines(branch_id)`,
	`CREATE INDEX IF NOT EXISTS idx_lines_vendor ON journal_lines(vendor_id)`,

	`CREATE TABLE IF NOT EXISTS account_policies (
		entity_id TEXT NOT NULL REFERENCES entities(id),
		code      TEXT NOT NULL,
		policy    TEXT NOT NULL,
		value     TEXT NOT NULL,
		PRIMARY KEY (entity_id, code, policy)
	)`,
}

// schemaV2 adds the per-entity control account settings.
var schemaV2 = []string{
	`CREATE TABLE IF NOT EXISTS entity_settings (
		entity_id                    TEXT PRIMARY KEY REFERENCES entities(id),
		ar_control_account_id        TEXT REFERENCES accounts(id),
		ap_control_account_id        TEXT REFERENCES accounts(id),
		cash_account_id              TEXT REFERENCES accounts(id),
		bank_clearing_account_id     TEXT REFERENCES accounts(id),
		revenue_account_id           TEXT REFERENCES accounts(id),
		cogs_account_id              TEXT REFERENCES accounts(id),
		inventory_account_id         TEXT REFERENCES accounts(id),
		vat_output_account_id        TEXT REFERENCES accounts(id),
		vat_input_account_id         TEXT REFERENCES accounts(id),
		discount_given_account_id    TEXT REFERENCES accounts(id),
		discount_received_account_id TEXT REFERENCES accounts(id),
		rounding_account_id          TEXT REFERENCES accounts(id),
		updated_at                   TEXT NOT NULL
	)`,
}

// sqliteGuardsV1 enforce balance on finalize and immutability after it.
var sqliteGuardsV1 = []string{
	`CREATE TRIGGER IF NOT EXISTS trg_journal_finalize
	BEFORE UPDATE OF posted ON journals
	WHEN NEW.posted = 1 AND OLD.posted = 0
	BEGIN
		SELECT CASE
			WHEN (SELECT COUNT(*) FROM journal_lines WHERE journal_id = NEW.id) < 2
			THEN RAISE(ABORT, 'journal must have at least 2 lines')
		END;
		SELECT CASE
			WHEN (SELECT COALESCE(SUM(debit), 0) - COALESCE(SUM(credit), 0) FROM journal_lines WHERE journal_id = NEW.id) != 0
			THEN RAISE(ABORT, 'journal lines do not balance')
		END;
	END`,

	`CREATE TRIGGER IF NOT EXISTS trg_journal_immutable_update
	BEFORE UPDATE ON journals
	WHEN OLD.posted = 1
	BEGIN
		SELECT RAISE(ABORT, 'posted journals are immutable');
	END`,

	`CREATE TRIGGER IF NOT EXISTS trg_journal_immutable_delete
	BEFORE DELETE ON journals
	WHEN OLD.posted = 1
	BEGIN
		SELECT RAISE(ABORT, 'posted journals are immutable');
	END`,

	`CREATE TRIGGER IF NOT EXISTS trg_lines_immutable_insert
	BEFORE INSERT ON journal_lines
	WHEN (SELECT posted FROM journals WHERE id = NEW.journal_id) = 1
	BEGIN
		SELECT RAISE(ABORT, 'cannot add lines to a posted journal');
	END`,

	`CREATE TRIGGER IF NOT EXISTS trg_lines_immutable_update
	BEFORE UPDATE ON journal_lines
	WHEN (SELECT posted FROM journals WHERE id = OLD.journal_id) = 1
	BEGIN
		SELECT RAISE(ABORT, 'cannot modify lines of a posted journal');
	END`,

	`CREATE TRIGGER IF NOT EXISTS trg_lines_immutable_delete
	BEFORE DELETE ON journal_lines
	WHEN (SELECT posted FROM journals WHERE id = OLD.journal_id) = 1
	BEGIN
		SELECT RAISE(ABORT, 'cannot remove lines from a posted journal');
	END`,

	`CREATE TRIGGER IF NOT EXISTS trg_lines_entity_match
	BEFORE INSERT ON journal_lines
	WHEN NEW.entity_id IS NOT (SELECT entity_id FROM journals WHERE id = NEW.journal_id)
		OR NEW.entity_id IS NOT (SELECT entity_id FROM accounts WHERE id = NEW.account_id)
	BEGIN
		SELECT RAISE(ABORT, 'line account does not belong to the journal entity');
	END`,
}

var postgresGuardsV1 = []string{
	`CREATE OR REPLACE FUNCTION ledger_journal_update() RETURNS trigger AS $$
	BEGIN
		IF OLD.posted = 1 THEN
			RAISE EXCEPTION 'posted journals are immutable';
		END IF;
		IF NEW.posted = 1 THEN
			IF (SELECT COUNT(*) FROM journal_lines WHERE journal_id = NEW.id) < 2 THEN
				RAISE EXCEPTION 'journal must have at least 2 lines';
			END IF;
			IF (SELECT COALESCE(SUM(debit), 0) - COALESCE(SUM(credit), 0) FROM journal_lines WHERE journal_id = NEW.id) <> 0 THEN
				RAISE EXCEPTION 'journal lines do not balance';
			END IF;
		END IF;
		RETURN NEW;
	END
	$$ LANGUAGE plpgsql`,
	`CREATE TRIGGER trg_journal_update BEFORE UPDATE ON journals
		FOR EACH ROW EXECUTE FUNCTION ledger_journal_update()`,

	`CREATE OR REPLACE FUNCTION ledger_journal_delete() RETURNS trigger AS $$
	BEGIN
		IF OLD.posted = 1 THEN
			RAISE EXCEPTION 'posted journals are immutable';
		END IF;
		RETURN OLD;
	END
	$$ LANGUAGE plpgsql`,
	`CREATE TRIGGER trg_journal_delete BEFORE DELETE ON journals
		FOR EACH ROW EXECUTE FUNCTION ledger_journal_delete()`,

	`CREATE OR REPLACE FUNCTION ledger_lines_guard() RETURNS trigger AS $$
	BEGIN
		IF TG_OP <> 'INSERT' THEN
			IF (SELECT posted FROM journals WHERE id = OLD.journal_id) = 1 THEN
				RAISE EXCEPTION 'cannot change lines of a posted journal';
			END IF;
		END IF;
		IF TG_OP = 'DELETE' THEN
			RETURN OLD;
		END IF;
		IF (SELECT posted FROM journals WHERE id = NEW.journal_id) = 1 THEN
			RAISE EXCEPTION 'cannot add lines to a posted journal';
		END IF;
		IF NEW.entity_id IS DISTINCT FROM (SELECT entity_id FROM journals WHERE id = NEW.journal_id)
			OR NEW.entity_id IS DISTINCT FROM (SELECT entity_id FROM accounts WHERE id = NEW.account_id) THEN
			RAISE EXCEPTION 'line account does not belong to the journal entity';
		END IF;
		RETURN NEW;
	END
	$$ LANGUAGE plpgsql`,
	`CREATE TRIGGER trg_lines_guard BEFORE INSERT OR UPDATE OR DELETE ON journal_lines
		FOR EACH ROW EXECUTE FUNCTION ledger_lines_guard()`,
}
