package handlers

import (
	"net/http"
	"testing"

	"github.com/bobmcallan/finplan-portal/internal/auth"
)

func registration() auth.Registration {
	return auth.Registration{
		Name:            "Asha Rao",
		DOB:             "1990-04-01",
		Country:         "India",
		Mobile:          "9876543210",
		Email:           "asha@example.com",
		Password:        "s3cret",
		ConfirmPassword: "s3cret",
	}
}

func TestAuthHandler_RegisterSetsCookie(t *testing.T) {
	env := newTestEnv(t)

	w := doRequest(env.auth.HandleRegister, "POST", "/api/auth/register", registration(), "")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookie {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value == "" || !cookie.HttpOnly {
		t.Fatalf("expected HttpOnly session cookie, got %+v", cookie)
	}

	me := doRequest(env.auth.HandleMe, "GET", "/api/auth/me", nil, cookie.Value)
	if me.Code != http.StatusOK {
		t.Errorf("expected me 200 after register, got %d", me.Code)
	}
}

func TestAuthHandler_RegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	reg := registration()
	reg.ConfirmPassword = "different"

	w := doRequest(env.auth.HandleRegister, "POST", "/api/auth/register", reg, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	var body struct {
		Fields map[string]string `json:"fields"`
	}
	decodeBody(t, w, &body)
	if body.Fields["confirm"] == "" {
		t.Errorf("expected confirm field error, got %v", body.Fields)
	}
}

func TestAuthHandler_RegisterDuplicate(t *testing.T) {
	env := newTestEnv(t)
	reg := registration()
	reg.Email = testEmail

	w := doRequest(env.auth.HandleRegister, "POST", "/api/auth/register", reg, "")
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		body     loginRequest
		wantCode int
	}{
		{"valid", loginRequest{Email: testEmail, Password: "password"}, http.StatusOK},
		{"wrong password", loginRequest{Email: testEmail, Password: "nope"}, http.StatusUnauthorized},
		{"missing fields", loginRequest{}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(env.auth.HandleLogin, "POST", "/api/auth/login", tt.body, "")
			if w.Code != tt.wantCode {
				t.Errorf("expected %d, got %d: %s", tt.wantCode, w.Code, w.Body.String())
			}
		})
	}
}

func TestAuthHandler_LoginRejectsBadJSON(t *testing.T) {
	env := newTestEnv(t)
	w := doRequest(env.auth.HandleLogin, "POST", "/api/auth/login", "not an object", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_LogoutEndsSession(t *testing.T) {
	env := newTestEnv(t)
	var dropped string
	env.auth.SetLogoutHook(func(email string) { dropped = email })

	w := env.do(env.auth.HandleLogout, "POST", "/api/auth/logout", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if dropped != testEmail {
		t.Errorf("logout hook email = %q", dropped)
	}

	me := env.do(env.auth.HandleMe, "GET", "/api/auth/me", nil)
	if me.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", me.Code)
	}
}

func TestAuthHandler_MeRequiresLogin(t *testing.T) {
	env := newTestEnv(t)
	w := doRequest(env.auth.HandleMe, "GET", "/api/auth/me", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}
