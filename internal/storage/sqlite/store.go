package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/finplan-portal/internal/common"
	"github.com/bobmcallan/finplan-portal/internal/finance/ledger"
	"github.com/bobmcallan/finplan-portal/internal/interfaces"
)

// Store implements interfaces.UserStore on SQLite. Flat columns are kept in
// a JSON object; the ledger document has its own column.
type Store struct {
	db     *sql.DB
	logger *common.Logger
}

func key(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// ReadInvestments returns the user's ledger.
func (s *Store) ReadInvestments(ctx context.Context, email string) (ledger.Ledger, error) {
	var raw sql.NullString
	err := s.db.QueryRowContext(ctx, "SELECT investments FROM users WHERE email = ?", key(email)).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read investments: %w", err)
	}
	return ledger.Decode([]byte(raw.String))
}

// WriteInvestments overwrites the user's ledger.
func (s *Store) WriteInvestments(ctx context.Context, email string, l ledger.Ledger) error {
	data, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("failed to encode investments: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET investments = ?, updated_at = ? WHERE email = ?",
		string(data), now(), key(email))
	if err != nil {
		return fmt.Errorf("failed to write investments: %w", err)
	}
	return requireRow(res)
}

// ReadUserRecord returns the user's flat columns plus the ledger column.
func (s *Store) ReadUserRecord(ctx context.Context, email string) (interfaces.Record, error) {
	var fields string
	var investments sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT fields, investments FROM users WHERE email = ?", key(email)).Scan(&fields, &investments)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user record: %w", err)
	}

	rec := interfaces.Record{}
	if err := json.Unmarshal([]byte(fields), &rec); err != nil {
		return nil, fmt.Errorf("failed to decode user record: %w", err)
	}
	rec["email"] = key(email)
	if investments.Valid {
		rec[interfaces.InvestmentsColumn] = json.RawMessage(investments.String)
	}
	return rec, nil
}

// UpdateUserRecord merges fields into the stored columns. Null values remove
// a column.
func (s *Store) UpdateUserRecord(ctx context.Context, email string, fields interfaces.Record) error {
	if l, ok := fields[interfaces.InvestmentsColumn]; ok {
		fields = without(fields, interfaces.InvestmentsColumn)
		data, err := json.Marshal(l)
		if err != nil {
			return fmt.Errorf("failed to encode investments: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, "UPDATE users SET investments = ? WHERE email = ?", string(data), key(email)); err != nil {
			return fmt.Errorf("failed to write investments: %w", err)
		}
	}

	patch, err := json.Marshal(without(fields, "email"))
	if err != nil {
		return fmt.Errorf("failed to encode user record: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET fields = json_patch(fields, ?), updated_at = ? WHERE email = ?",
		string(patch), now(), key(email))
	if err != nil {
		return fmt.Errorf("failed to update user record: %w", err)
	}
	return requireRow(res)
}

// CreateUserRecord inserts a new user.
func (s *Store) CreateUserRecord(ctx context.Context, email string, fields interfaces.Record) error {
	clean := interfaces.Record{}
	for k, v := range without(without(fields, "email"), interfaces.InvestmentsColumn) {
		if v != nil {
			clean[k] = v
		}
	}
	data, err := json.Marshal(clean)
	if err != nil {
		return fmt.Errorf("failed to encode user record: %w", err)
	}

	ts := now()
	res, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO users (email, fields, created_at, updated_at) VALUES (?, ?, ?, ?)",
		key(email), string(data), ts, ts)
	if err != nil {
		return fmt.Errorf("failed to create user record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return interfaces.ErrAlreadyExists
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}

func without(fields interfaces.Record, name string) interfaces.Record {
	if _, ok := fields[name]; !ok {
		return fields
	}
	out := make(interfaces.Record, len(fields))
	for k, v := range fields {
		if k != name {
			out[k] = v
		}
	}
	return out
}
