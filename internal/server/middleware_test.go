package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bobmcallan/finplan-portal/internal/common"
)

func newTestServer() *Server {
	return &Server{logger: common.NewSilentLogger()}
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// --- Correlation ID Middleware ---

func TestCorrelationIDMiddleware_GeneratesID(t *testing.T) {
	s := newTestServer()

	var seen string
	handler := s.correlationIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CorrelationID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	if seen == "" {
		t.Fatal("expected correlation ID in context")
	}
	if w.Header().Get("X-Correlation-ID") != seen {
		t.Errorf("header %q does not match context %q", w.Header().Get("X-Correlation-ID"), seen)
	}
}

func TestCorrelationIDMiddleware_AttachesRequestLogger(t *testing.T) {
	s := newTestServer()

	var scoped *common.Logger
	handler := s.correlationIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scoped = common.LoggerFromContext(r.Context(), nil)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/test", nil))

	if scoped == nil {
		t.Fatal("expected a request-scoped logger in context")
	}
	if scoped == s.logger {
		t.Error("expected a derived logger, not the server logger")
	}
}

func TestCorrelationIDMiddleware_UsesProvidedID(t *testing.T) {
	tests := []struct {
		header string
		value  string
	}{
		{"X-Request-ID", "test-request-id"},
		{"X-Correlation-ID", "existing-correlation-id"},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			s := newTestServer()
			handler := s.correlationIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if id := CorrelationID(r.Context()); id != tt.value {
					t.Errorf("expected %s, got %s", tt.value, id)
				}
			}))

			req := httptest.NewRequest("GET", "/test", nil)
			req.Header.Set(tt.header, tt.value)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Header().Get("X-Correlation-ID") != tt.value {
				t.Errorf("expected X-Correlation-ID=%s, got %s", tt.value, w.Header().Get("X-Correlation-ID"))
			}
		})
	}
}

// --- CORS Middleware ---

func TestCORSMiddleware_SetsHeaders(t *testing.T) {
	s := newTestServer()
	handler := s.corsMiddleware(http.HandlerFunc(okHandler))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS origin header")
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Headers"), "Authorization") {
		t.Error("expected Authorization in allowed headers")
	}
}

func TestCORSMiddleware_HandlesPreflight(t *testing.T) {
	s := newTestServer()
	handler := s.corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not be called for OPTIONS")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("OPTIONS", "/api/portfolio", nil))

	if w.Code != http.StatusNoContent {
		t.Errorf("expected status 204 for preflight, got %d", w.Code)
	}
}

func TestCORSMiddleware_AllowedOrigins(t *testing.T) {
	s := newTestServer()
	s.origins = map[string]bool{"https://plan.example.com": true}
	handler := s.corsMiddleware(http.HandlerFunc(okHandler))

	tests := []struct {
		origin      string
		wantOrigin  string
		credentials string
	}{
		{"https://plan.example.com", "https://plan.example.com", "true"},
		{"https://evil.example.com", "", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/api/dashboard", nil)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
			t.Errorf("origin %q: allow-origin = %q, want %q", tt.origin, got, tt.wantOrigin)
		}
		if got := w.Header().Get("Access-Control-Allow-Credentials"); got != tt.credentials {
			t.Errorf("origin %q: credentials = %q, want %q", tt.origin, got, tt.credentials)
		}
		if w.Header().Get("Vary") != "Origin" {
			t.Errorf("origin %q: expected Vary: Origin", tt.origin)
		}
	}
}

// --- Recovery Middleware ---

func TestRecoveryMiddleware_CatchesPanic(t *testing.T) {
	s := newTestServer()
	handler := s.recoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/panic", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500 after panic, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected JSON error body: %v", err)
	}
	if strings.Contains(body["error"], "test panic") {
		t.Error("panic value should not reach the client")
	}
}

func TestRecoveryMiddleware_PassesThrough(t *testing.T) {
	s := newTestServer()
	handler := s.recoveryMiddleware(http.HandlerFunc(okHandler))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/normal", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}

// --- Logging Middleware ---

func TestLoggingMiddleware_CapturesStatusCode(t *testing.T) {
	s := newTestServer()

	for _, code := range []int{http.StatusCreated, http.StatusNotFound, http.StatusBadGateway} {
		handler := s.loggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
			w.Write([]byte("body"))
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("POST", "/test", nil))

		if w.Code != code {
			t.Errorf("expected status %d, got %d", code, w.Code)
		}
	}
}

// --- responseWriter ---

func TestResponseWriter_CapturesBytes(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	data := []byte("hello world")
	n, err := rw.Write(data)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != len(data) || rw.bytesWritten != len(data) {
		t.Errorf("expected %d bytes, got n=%d bytesWritten=%d", len(data), n, rw.bytesWritten)
	}

	rw.Flush()
	if !rec.Flushed {
		t.Error("expected Flush to reach the underlying writer")
	}
}

// --- Security Headers Middleware ---

func TestSecurityHeadersMiddleware_SetsAllHeaders(t *testing.T) {
	s := newTestServer()
	handler := s.securityHeadersMiddleware(http.HandlerFunc(okHandler))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	want := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
		"Cache-Control":          "no-store",
	}
	for k, v := range want {
		if got := w.Header().Get(k); got != v {
			t.Errorf("expected %s=%s, got %s", k, v, got)
		}
	}
	if !strings.Contains(w.Header().Get("Content-Security-Policy"), "default-src 'none'") {
		t.Error("expected restrictive CSP")
	}
}

// --- Max Body Size Middleware ---

func TestMaxBodySizeMiddleware_AllowsSmallBody(t *testing.T) {
	s := newTestServer()
	handler := s.maxBodySizeMiddleware(1024)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("failed to read body: %v", err)
		}
		if string(body) != "small payload" {
			t.Errorf("expected body 'small payload', got '%s'", string(body))
		}
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("POST", "/test", strings.NewReader("small payload")))

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}

func TestMaxBodySizeMiddleware_RejectsOversizedBody(t *testing.T) {
	s := newTestServer()
	handler := s.maxBodySizeMiddleware(10)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err == nil {
			t.Error("expected error reading oversized body")
		}
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("POST", "/test", strings.NewReader(strings.Repeat("x", 100))))
}
