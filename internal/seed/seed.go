// Package seed registers development users at startup, optionally with a
// sample portfolio, from the configuration and import/users.json.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bobmcallan/finplan-portal/internal/common"
	"github.com/bobmcallan/finplan-portal/internal/config"
	"github.com/bobmcallan/finplan-portal/internal/finance/ledger"
	"github.com/bobmcallan/finplan-portal/internal/interfaces"
)

const (
	seedRetryAttempts = 3
	seedTimeout       = 10 * time.Second
	usersFileName     = "import/users.json"
)

// seedRetryDelay is a var so tests can shorten it.
var seedRetryDelay = 2 * time.Second

// User is one account to seed. Investments, when present, is written as the
// user's ledger unless they already have one.
type User struct {
	Email       string        `json:"email"`
	Password    string        `json:"password"`
	Name        string        `json:"name"`
	Investments ledger.Ledger `json:"existing_investments,omitempty"`
}

// Registrar creates accounts without the sign-up form.
type Registrar interface {
	Seed(ctx context.Context, email, password, name string) error
}

// usersFile is the JSON structure for the users seed file.
type usersFile struct {
	Users []User `json:"users"`
}

// DevUsers seeds the configured users plus any found in import/users.json.
// Non-fatal: store failures are retried and then logged.
func DevUsers(logger *common.Logger, reg Registrar, store interfaces.UserStore, configured []config.DevUser) {
	users := FromConfig(configured)

	if path := findUsersFile(); path != "" {
		fileUsers, err := loadUsersFile(path)
		if err != nil {
			logger.Error().Err(err).Str("path", path).Msg("seed: failed to load users file")
		} else {
			users = append(users, fileUsers...)
		}
	}

	if len(users) == 0 {
		logger.Debug().Msg("seed: no dev users configured")
		return
	}
	seedWithRetry(reg, store, users, logger)
}

// FromConfig converts configured dev users.
func FromConfig(configured []config.DevUser) []User {
	users := make([]User, 0, len(configured))
	for _, u := range configured {
		users = append(users, User{Email: u.Email, Password: u.Password, Name: u.Name})
	}
	return users
}

// findUsersFile searches for import/users.json relative to the executable
// directory first, then falls back to the current working directory.
func findUsersFile() string {
	if exe, err := os.Executable(); err == nil {
		p := filepath.Join(filepath.Dir(exe), usersFileName)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if _, err := os.Stat(usersFileName); err == nil {
		return usersFileName
	}

	return ""
}

// loadUsersFile reads and parses the users JSON file. Entries without an
// email or password are rejected.
func loadUsersFile(path string) ([]User, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var f usersFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}

	for i, u := range f.Users {
		if strings.TrimSpace(u.Email) == "" || u.Password == "" {
			return nil, fmt.Errorf("user %d: email and password are required", i)
		}
	}
	return f.Users, nil
}

// seedWithRetry seeds users, retrying the ones that failed.
func seedWithRetry(reg Registrar, store interfaces.UserStore, users []User, logger *common.Logger) {
	pending := users
	for attempt := 1; attempt <= seedRetryAttempts; attempt++ {
		pending = seedAll(reg, store, pending, logger)
		if len(pending) == 0 {
			logger.Info().Int("users", len(users)).Msg("seed: dev users seeded successfully")
			return
		}
		logger.Warn().
			Int("attempt", attempt).
			Int("max_attempts", seedRetryAttempts).
			Int("pending", len(pending)).
			Msg("seed: failed to seed users, retrying")
		if attempt < seedRetryAttempts {
			time.Sleep(seedRetryDelay)
		}
	}

	logger.Warn().
		Int("attempts", seedRetryAttempts).
		Int("pending", len(pending)).
		Msg("seed: failed to seed dev users after retries, continuing without them")
}

// seedAll seeds each user and returns the ones that failed.
func seedAll(reg Registrar, store interfaces.UserStore, users []User, logger *common.Logger) []User {
	var failed []User
	for _, u := range users {
		if err := seedOne(reg, store, u); err != nil {
			logger.Debug().Str("email", u.Email).Err(err).Msg("seed: user failed")
			failed = append(failed, u)
			continue
		}
		logger.Debug().Str("email", u.Email).Msg("seed: seeded user")
	}
	return failed
}

func seedOne(reg Registrar, store interfaces.UserStore, u User) error {
	ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
	defer cancel()

	if err := reg.Seed(ctx, u.Email, u.Password, u.Name); err != nil {
		return err
	}
	if len(u.Investments) == 0 || store == nil {
		return nil
	}

	existing, err := store.ReadInvestments(ctx, u.Email)
	if err != nil && !errors.Is(err, interfaces.ErrNotFound) {
		return fmt.Errorf("read investments: %w", err)
	}
	if existing.ItemCount() > 0 {
		return nil
	}
	if err := store.WriteInvestments(ctx, u.Email, u.Investments); err != nil {
		return fmt.Errorf("write investments: %w", err)
	}
	return nil
}
