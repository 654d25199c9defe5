package interfaces

import (
	"context"
	"errors"

	"github.com/bobmcallan/finplan-portal/internal/finance/ledger"
)

var (
	// ErrNotFound means there is no user record for the email. Callers treat
	// it as an empty portfolio or empty profile.
	ErrNotFound = errors.New("user record not found")
	// ErrAlreadyExists is returned when creating a record that exists.
	ErrAlreadyExists = errors.New("user record already exists")
)

// InvestmentsColumn is the user record column holding the ledger document.
const InvestmentsColumn = "existing_investments"

// Record is a user row as flat columns.
type Record map[string]any

// UserStore is the per-user record store, keyed by email. Implementations can
// be swapped (in-memory, SQLite, hosted PostgREST).
type UserStore interface {
	// ReadInvestments returns the user's ledger. A user with no ledger yet
	// reads as an empty ledger.
	ReadInvestments(ctx context.Context, email string) (ledger.Ledger, error)
	// WriteInvestments overwrites the whole ledger. Last writer wins.
	WriteInvestments(ctx context.Context, email string, l ledger.Ledger) error
	// ReadUserRecord returns every flat column of the user's record.
	ReadUserRecord(ctx context.Context, email string) (Record, error)
	// UpdateUserRecord merges fields into the record. A nil value clears a column.
	UpdateUserRecord(ctx context.Context, email string, fields Record) error
	// CreateUserRecord inserts a new record.
	CreateUserRecord(ctx context.Context, email string, fields Record) error
	Close() error
}
