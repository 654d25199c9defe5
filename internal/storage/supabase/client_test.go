package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bobmcallan/finplan-portal/internal/common"
	"github.com/bobmcallan/finplan-portal/internal/finance/ledger"
	"github.com/bobmcallan/finplan-portal/internal/interfaces"
)

func newTestClient(url string) *Client {
	return NewClient(common.NewSilentLogger(), url, "anon-key", "users", 5*time.Second)
}

func TestReadInvestments_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if got := r.URL.Query().Get("email"); got != "eq.alice@example.com" {
			t.Errorf("email filter = %q", got)
		}
		if got := r.URL.Query().Get("select"); got != interfaces.InvestmentsColumn {
			t.Errorf("select = %q", got)
		}
		if r.Header.Get("apikey") != "anon-key" {
			t.Error("expected apikey header")
		}
		if r.Header.Get("Authorization") != "Bearer anon-key" {
			t.Error("expected bearer authorization header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"existing_investments":{"Equity":[{"type":"Direct Stocks","invested_amount":"100000","current_value":120000}]}}]`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	l, err := c.ReadInvestments(context.Background(), "Alice@Example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	items := l[ledger.CategoryEquity]
	if len(items) != 1 {
		t.Fatalf("expected 1 equity item, got %d", len(items))
	}
	if items[0].Value() != 120000 {
		t.Errorf("expected current value 120000, got %v", items[0].Value())
	}
}

func TestReadInvestments_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.ReadInvestments(context.Background(), "nobody@example.com")
	if !errors.Is(err, interfaces.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReadInvestments_NullColumnIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"existing_investments":null}]`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	l, err := c.ReadInvestments(context.Background(), "a@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(l) != 0 {
		t.Errorf("expected empty ledger, got %v", l)
	}
}

func TestReadInvestments_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"database down"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.ReadInvestments(context.Background(), "a@example.com")
	if err == nil {
		t.Fatal("expected error for server error")
	}
	if errors.Is(err, interfaces.ErrNotFound) {
		t.Error("server error must not read as not found")
	}
}

func TestWriteInvestments_PatchesColumn(t *testing.T) {
	var body map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("expected PATCH, got %s", r.Method)
		}
		if r.Header.Get("Prefer") != "return=representation" {
			t.Errorf("Prefer = %q", r.Header.Get("Prefer"))
		}
		data, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(data, &body); err != nil {
			t.Errorf("bad body: %v", err)
		}
		w.Write([]byte(`[{"email":"a@example.com"}]`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	err := c.WriteInvestments(context.Background(), "a@example.com", ledger.Ledger{
		ledger.CategoryCash: {{Type: ledger.TypeSavingsAccounts, InvestedAmount: ledger.NewNumber(5000)}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := body[interfaces.InvestmentsColumn]; !ok {
		t.Errorf("expected %s in patch body, got %v", interfaces.InvestmentsColumn, body)
	}
}

func TestWriteInvestments_MissingRowIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	err := c.WriteInvestments(context.Background(), "ghost@example.com", ledger.Ledger{})
	if !errors.Is(err, interfaces.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReadUserRecord_DropsNullColumns(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("select"); got != "*" {
			t.Errorf("select = %q", got)
		}
		w.Write([]byte(`[{"email":"a@example.com","name":"Asha","dob":null,"professionalIncome":85000}]`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	rec, err := c.ReadUserRecord(context.Background(), "a@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec["name"] != "Asha" {
		t.Errorf("name = %v", rec["name"])
	}
	if _, ok := rec["dob"]; ok {
		t.Error("null columns should be omitted")
	}
	if rec["professionalIncome"] != float64(85000) {
		t.Errorf("professionalIncome = %v", rec["professionalIncome"])
	}
}

func TestUpdateUserRecord_IgnoresEmail(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		w.Write([]byte(`[{"email":"a@example.com"}]`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	err := c.UpdateUserRecord(context.Background(), "a@example.com", interfaces.Record{
		"email": "other@example.com",
		"name":  "Asha",
		"dob":   nil,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := body["email"]; ok {
		t.Error("email must not be patched")
	}
	if v, ok := body["dob"]; !ok || v != nil {
		t.Errorf("dob should be sent as null, got %v (present=%v)", v, ok)
	}
}

func TestCreateUserRecord(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"created", http.StatusCreated, nil},
		{"conflict", http.StatusConflict, interfaces.ErrAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]any
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}
				json.NewDecoder(r.Body).Decode(&body)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := newTestClient(srv.URL)
			err := c.CreateUserRecord(context.Background(), "New@Example.com", interfaces.Record{"name": "New"})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if body["email"] != "new@example.com" {
				t.Errorf("email = %v, want lowercased", body["email"])
			}
		})
	}
}

func TestClient_UnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := newTestClient(url)
	_, err := c.ReadUserRecord(context.Background(), "a@example.com")
	if err == nil {
		t.Fatal("expected error for unreachable host")
	}
}
