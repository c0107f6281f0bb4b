package ledger

import (
	"errors"
	"fmt"
)

// Error kinds. Every error produced by the ledger wraps exactly one of these,
// so callers can classify with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrStorage      = errors.New("storage failure")
)

var (
	ErrInvalidScope         = fmt.Errorf("%w: invalid scope", ErrValidation)
	ErrMissingCompanyID     = fmt.Errorf("%w: company id is required for company scope", ErrValidation)
	ErrInvalidAccountType   = fmt.Errorf("%w: invalid account type", ErrValidation)
	ErrInvalidNormalBalance = fmt.Errorf("%w: normal balance must be debit or credit", ErrValidation)
	ErrInvalidAccountCode   = fmt.Errorf("%w: account code is required", ErrValidation)
	ErrEmptyAccountName     = fmt.Errorf("%w: account name is required", ErrValidation)
	ErrInvalidCurrency      = fmt.Errorf("%w: invalid or unsupported currency code", ErrValidation)
	ErrInvalidDate          = fmt.Errorf("%w: invalid date", ErrValidation)
	ErrInvalidDateRange     = fmt.Errorf("%w: from date is after to date", ErrValidation)
	ErrMissingEntityID      = fmt.Errorf("%w: entity id is required", ErrValidation)
	ErrMissingJournalType   = fmt.Errorf("%w: journal type is required", ErrValidation)
	ErrMissingJournalDate   = fmt.Errorf("%w: journal date is required", ErrValidation)
	ErrTooFewLines          = fmt.Errorf("%w: journal must have at least 2 lines", ErrValidation)
	ErrMissingAccountID     = fmt.Errorf("%w: line account id is required", ErrValidation)
	ErrNegativeAmount       = fmt.Errorf("%w: line amounts must not be negative", ErrValidation)
	ErrLineSides            = fmt.Errorf("%w: line must carry exactly one of debit or credit", ErrValidation)
	ErrAmountPrecision      = fmt.Errorf("%w: amount exceeds currency precision", ErrValidation)
	ErrAmountOverflow       = fmt.Errorf("%w: amount out of range", ErrValidation)
	ErrUnbalancedJournal    = fmt.Errorf("%w: journal lines do not balance", ErrValidation)
	ErrInactiveAccount      = fmt.Errorf("%w: account is inactive", ErrValidation)
	ErrInvertedBalance      = fmt.Errorf("%w: journal would invert the account's normal balance", ErrValidation)
	ErrEntryDirection       = fmt.Errorf("%w: line violates the account's entry direction", ErrValidation)
	ErrInvalidPolicy        = fmt.Errorf("%w: invalid posting policy", ErrValidation)
	ErrUnknownTemplate      = fmt.Errorf("%w: unknown journal template", ErrValidation)
	ErrInvalidTemplate      = fmt.Errorf("%w: template cannot be applied", ErrValidation)
	ErrStandardTypeMismatch = fmt.Errorf("%w: standard account type differs from the account type", ErrValidation)

	ErrSettingsForeignAccount = fmt.Errorf("%w: settings account belongs to another entity", ErrValidation)
	ErrSettingsAccountType    = fmt.Errorf("%w: settings account has the wrong type", ErrValidation)

	ErrEntityNotFound          = fmt.Errorf("entity %w", ErrNotFound)
	ErrAccountNotFound         = fmt.Errorf("account %w", ErrNotFound)
	ErrStandardAccountNotFound = fmt.Errorf("standard account %w", ErrNotFound)
	ErrJournalNotFound         = fmt.Errorf("journal %w", ErrNotFound)

	ErrDuplicateAccount = fmt.Errorf("%w: account code already exists in entity", ErrConflict)
)

// LineError pins a posting failure to a single journal line.
type LineError struct {
	Line      int // 1-based
	AccountID string
	Err       error
}

func (e *LineError) Error() string {
	if e.AccountID == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d (account %s): %v", e.Line, e.AccountID, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// FieldError names the request field that failed validation.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string { return fmt.Sprintf("%s: %v", e.Field, e.Err) }

func (e *FieldError) Unwrap() error { return e.Err }

// StorageError marks err as an unexpected backend failure during op.
func StorageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

// Kind is the coarse classification of a ledger error.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindUnauthorized Kind = "unauthorized"
	KindStorage      Kind = "storage"
	KindInternal     Kind = "internal"
)

// KindOf classifies err. Errors that wrap no known kind are internal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrStorage):
		return KindStorage
	default:
		return KindInternal
	}
}
