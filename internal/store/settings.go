package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/simonvc/ledgercore/internal/ledger"
)

// settingsSlotColumns follows ledger.EntitySettings.Slots order.
func settingsSlotColumns() []string {
	var es ledger.EntitySettings
	slots := es.Slots()
	cols := make([]string, len(slots))
	for i, slot := range slots {
		cols[i] = slot.Field
	}
	return cols
}

func settingsColumns() string {
	return "entity_id, " + strings.Join(settingsSlotColumns(), ", ") + ", updated_at"
}

// GetEntitySettings returns the entity's control accounts. An entity that
// never saved settings gets an empty record.
func (s *Store) GetEntitySettings(ctx context.Context, entityID string) (*ledger.EntitySettings, error) {
	es, err := scanSettings(s.reader.QueryRowContext(ctx,
		s.q(`SELECT `+settingsColumns()+` FROM entity_settings WHERE entity_id = ?`), entityID))
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := s.GetEntity(ctx, entityID); err != nil {
			return nil, err
		}
		return &ledger.EntitySettings{EntityID: entityID}, nil
	}
	if err != nil {
		return nil, err
	}
	return es, nil
}

// ListEntitySettings returns saved settings keyed by entity. An empty
// entityID covers every entity.
func (s *Store) ListEntitySettings(ctx context.Context, entityID string) (map[string]ledger.EntitySettings, error) {
	query := `SELECT ` + settingsColumns() + ` FROM entity_settings`
	var args []any
	if entityID != "" {
		query += ` WHERE entity_id = ?`
		args = append(args, entityID)
	}
	rows, err := s.reader.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, ledger.StorageError("list entity settings", err)
	}
	defer rows.Close()

	out := map[string]ledger.EntitySettings{}
	for rows.Next() {
		es, err := scanSettings(rows)
		if err != nil {
			return nil, err
		}
		out[es.EntityID] = *es
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.StorageError("list entity settings", err)
	}
	return out, nil
}

// UpsertEntitySettings replaces the entity's settings. Every configured
// account must belong to the entity and match the type its slot requires.
func (s *Store) UpsertEntitySettings(ctx context.Context, es ledger.EntitySettings) (*ledger.EntitySettings, error) {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return nil, ledger.StorageError("begin tx", err)
	}
	defer tx.Rollback()

	if err := s.requireEntity(ctx, tx, es.EntityID); err != nil {
		return nil, err
	}

	args := []any{es.EntityID}
	for _, slot := range es.Slots() {
		if err := s.checkSettingsAccount(ctx, tx, es.EntityID, slot); err != nil {
			return nil, err
		}
		args = append(args, nullable(*slot.AccountID))
	}
	es.UpdatedAt = time.Now().UTC()
	args = append(args, formatTime(es.UpdatedAt))

	cols := settingsSlotColumns()
	updates := make([]string, 0, len(cols)+1)
	for _, c := range append(cols, "updated_at") {
		updates = append(updates, c+" = excluded."+c)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", ")
	if _, err := tx.ExecContext(ctx, s.q(`INSERT INTO entity_settings (`+settingsColumns()+`)
		VALUES (`+placeholders+`)
		ON CONFLICT (entity_id) DO UPDATE SET `+strings.Join(updates, ", ")), args...); err != nil {
		return nil, ledger.StorageError("upsert entity settings", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, ledger.StorageError("commit", err)
	}
	return &es, nil
}

func (s *Store) checkSettingsAccount(ctx context.Context, tx *sql.Tx, entityID string, slot ledger.SettingsSlot) error {
	id := *slot.AccountID
	if id == "" {
		return nil
	}
	var owner string
	var typ ledger.AccountType
	err := tx.QueryRowContext(ctx, s.q(`SELECT entity_id, type FROM accounts WHERE id = ?`), id).Scan(&owner, &typ)
	if errors.Is(err, sql.ErrNoRows) {
		return &ledger.FieldError{Field: slot.Field, Err: fmt.Errorf("%w: %s", ledger.ErrAccountNotFound, id)}
	}
	if err != nil {
		return ledger.StorageError("check settings account", err)
	}
	if owner != entityID {
		return &ledger.FieldError{Field: slot.Field, Err: fmt.Errorf("%w: %s", ledger.ErrSettingsForeignAccount, id)}
	}
	if slot.Type != "" && typ != slot.Type {
		return &ledger.FieldError{
			Field: slot.Field,
			Err:   fmt.Errorf("%w: %s is %s, want %s", ledger.ErrSettingsAccountType, id, typ, slot.Type),
		}
	}
	return nil
}

func scanSettings(row rowScanner) (*ledger.EntitySettings, error) {
	var es ledger.EntitySettings
	slots := es.Slots()
	ids := make([]sql.NullString, len(slots))
	var updatedAt string

	dest := []any{&es.EntityID}
	for i := range ids {
		dest = append(dest, &ids[i])
	}
	dest = append(dest, &updatedAt)

	err := row.Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, ledger.StorageError("scan entity settings", err)
	}
	for i, slot := range slots {
		*slot.AccountID = ids[i].String
	}
	es.UpdatedAt = parseTime(updatedAt)
	return &es, nil
}
