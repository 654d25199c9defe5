package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/bobmcallan/finplan-portal/internal/common"
	"github.com/bobmcallan/finplan-portal/internal/interfaces"
	"github.com/bobmcallan/finplan-portal/internal/models"
)

// LocalProvider keeps bcrypt credentials in memory and issues HS256 session
// tokens. On registration it creates the user's record in the data store.
type LocalProvider struct {
	users    *CredentialStore
	sessions *SessionStore
	tokens   *TokenManager
	store    interfaces.UserStore
	logger   *common.Logger
	cost     int
}

// NewLocalProvider creates a provider. store may be nil, in which case no
// user record is created on registration.
func NewLocalProvider(logger *common.Logger, store interfaces.UserStore, secret string, ttl time.Duration) *LocalProvider {
	return &LocalProvider{
		users:    NewCredentialStore(),
		sessions: NewSessionStore(),
		tokens:   NewTokenManager(secret, ttl),
		store:    store,
		logger:   logger,
		cost:     bcrypt.DefaultCost,
	}
}

// SetCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (p *LocalProvider) SetCost(cost int) {
	p.cost = cost
}

func (p *LocalProvider) addUser(email, password, name string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &models.User{
		Email:        normalizeEmail(email),
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	if !p.users.Add(user) {
		return nil, ErrEmailTaken
	}
	return user, nil
}

// ensureRecord creates the user's store record, merging into one that
// already exists from an earlier run.
func (p *LocalProvider) ensureRecord(ctx context.Context, email string, fields interfaces.Record) error {
	if p.store == nil {
		return nil
	}
	err := p.store.CreateUserRecord(ctx, email, fields)
	if errors.Is(err, interfaces.ErrAlreadyExists) {
		return p.store.UpdateUserRecord(ctx, email, fields)
	}
	return err
}

// Seed registers an account without the sign-up form. Used for configured
// dev users. Seeding an existing account keeps its credentials and only
// makes sure the store record exists, so a failed seed can be retried.
func (p *LocalProvider) Seed(ctx context.Context, email, password, name string) error {
	user, err := p.addUser(email, password, name)
	if errors.Is(err, ErrEmailTaken) {
		user, _ = p.users.Get(normalizeEmail(email))
	} else if err != nil {
		return err
	}
	if err := p.ensureRecord(ctx, user.Email, interfaces.Record{"name": user.Name}); err != nil {
		return fmt.Errorf("failed to create user record: %w", err)
	}
	p.logger.Info().Str("email", user.Email).Msg("seeded user")
	return nil
}

// Register validates reg, creates the account and its store record, and
// logs the user in. The account is withdrawn if the record cannot be
// created, so the registration can be retried.
func (p *LocalProvider) Register(ctx context.Context, reg Registration) (string, *models.User, error) {
	if err := reg.Validate(); err != nil {
		return "", nil, err
	}

	user, err := p.addUser(reg.Email, reg.Password, reg.Name)
	if err != nil {
		return "", nil, err
	}

	fields := interfaces.Record{
		"name":    user.Name,
		"dob":     reg.DOB,
		"country": reg.Country,
		"mobile":  reg.Mobile,
	}
	if err := p.ensureRecord(ctx, user.Email, fields); err != nil {
		p.users.Delete(user.Email)
		p.logger.Error().Str("email", user.Email).Err(err).Msg("failed to create user record")
		return "", nil, fmt.Errorf("failed to create user record: %w", err)
	}

	p.logger.Info().Str("email", user.Email).Msg("user registered")
	return p.startSession(user)
}

// Login verifies credentials and starts a session.
func (p *LocalProvider) Login(_ context.Context, email, password string) (string, *models.User, error) {
	if err := ValidateLogin(email, password); err != nil {
		return "", nil, err
	}

	user, ok := p.users.Get(email)
	if !ok {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	return p.startSession(user)
}

func (p *LocalProvider) startSession(user *models.User) (string, *models.User, error) {
	token, sess, err := p.tokens.Issue(user)
	if err != nil {
		return "", nil, err
	}
	p.sessions.Put(sess)
	return token, user, nil
}

// Logout ends the session carried by token.
func (p *LocalProvider) Logout(_ context.Context, token string) error {
	claims, err := p.tokens.Parse(token)
	if err != nil {
		return nil
	}
	p.sessions.Delete(claims.ID)
	p.logger.Info().Str("email", claims.Email).Msg("user logged out")
	return nil
}

// CurrentUser resolves token to its user.
func (p *LocalProvider) CurrentUser(_ context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	claims, err := p.tokens.Parse(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	if _, ok := p.sessions.Get(claims.ID); !ok {
		return nil, ErrUnauthenticated
	}
	user, ok := p.users.Get(claims.Email)
	if !ok {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

// Cleanup drops expired sessions and returns how many it dropped.
func (p *LocalProvider) Cleanup() int {
	return p.sessions.Cleanup()
}

// SignedIn reports whether email holds any live session.
func (p *LocalProvider) SignedIn(email string) bool {
	return p.sessions.Live(normalizeEmail(email)) > 0
}
