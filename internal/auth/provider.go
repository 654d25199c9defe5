// Package auth provides the injected identity provider: registration,
// login, logout and current-user lookup over signed session tokens.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/bobmcallan/finplan-portal/internal/models"
	"github.com/bobmcallan/finplan-portal/internal/validator"
)

var (
	// ErrInvalidCredentials is returned by Login for an unknown email or a
	// wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnauthenticated is returned when a token is missing, invalid,
	// expired or logged out.
	ErrUnauthenticated = errors.New("not logged in")
	// ErrEmailTaken is returned by Register for an existing account.
	ErrEmailTaken = errors.New("email address already registered")
)

// Provider is the identity capability handed to handlers and tools.
type Provider interface {
	// Register creates an account and logs it in.
	Register(ctx context.Context, reg Registration) (token string, user *models.User, err error)
	// Login verifies credentials and starts a session.
	Login(ctx context.Context, email, password string) (token string, user *models.User, err error)
	// Logout ends the session carried by token. Unknown tokens are ignored.
	Logout(ctx context.Context, token string) error
	// CurrentUser resolves token to its user, or ErrUnauthenticated.
	CurrentUser(ctx context.Context, token string) (*models.User, error)
}

// Registration is the sign-up form.
type Registration struct {
	Name            string `json:"name"`
	DOB             string `json:"dob"`
	Country         string `json:"country"`
	Mobile          string `json:"mobile"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm"`
}

// Validate checks every field is present, the email is well formed, the dob
// is a YYYY-MM-DD date and the passwords match.
func (r Registration) Validate() error {
	v := validator.New()
	v.Required(r.Name, "name", "your Full Name")
	v.Check(r.DOB != "", "dob", "Please select your Date of Birth!")
	if r.DOB != "" {
		_, err := time.Parse("2006-01-02", r.DOB)
		v.Check(err == nil, "dob", "must be a date in YYYY-MM-DD format")
	}
	v.Check(r.Country != "", "country", "Please select your Country!")
	v.Required(r.Mobile, "mobile", "your Mobile Number")
	v.Required(r.Email, "email", "your Email")
	if r.Email != "" {
		v.Email(r.Email, "email")
	}
	v.Required(r.Password, "password", "your Password")
	v.Check(r.ConfirmPassword != "", "confirm", "Please confirm your password!")
	if r.ConfirmPassword != "" {
		v.Check(r.Password == r.ConfirmPassword, "confirm", "The two passwords that you entered do not match!")
	}
	return v.Err()
}

// ValidateLogin checks the login form.
func ValidateLogin(email, password string) error {
	v := validator.New()
	v.Required(email, "email", "your Email")
	if email != "" {
		v.Email(email, "email")
	}
	v.Required(password, "password", "your Password")
	return v.Err()
}
