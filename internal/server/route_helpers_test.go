package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMethods_Dispatch(t *testing.T) {
	var hit string
	m := methods{
		"GET":    func(w http.ResponseWriter, r *http.Request) { hit = "get" },
		"DELETE": func(w http.ResponseWriter, r *http.Request) { hit = "delete" },
	}

	tests := []struct {
		method string
		want   string
		code   int
	}{
		{"GET", "get", http.StatusOK},
		{"HEAD", "get", http.StatusOK},
		{"DELETE", "delete", http.StatusOK},
		{"POST", "", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		hit = ""
		w := httptest.NewRecorder()
		m.ServeHTTP(w, httptest.NewRequest(tt.method, "/x", nil))
		if hit != tt.want || w.Code != tt.code {
			t.Errorf("%s: hit=%q code=%d, want %q %d", tt.method, hit, w.Code, tt.want, tt.code)
		}
	}
}

func TestMethods_NotAllowedIsJSONWithAllow(t *testing.T) {
	m := methods{
		"PUT":    func(w http.ResponseWriter, r *http.Request) {},
		"DELETE": func(w http.ResponseWriter, r *http.Request) {},
	}

	w := httptest.NewRecorder()
	m.ServeHTTP(w, httptest.NewRequest("GET", "/x", nil))

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON 405, got Content-Type %q", ct)
	}
	if got := w.Header().Get("Allow"); got != "DELETE, PUT" {
		t.Errorf("expected Allow %q, got %q", "DELETE, PUT", got)
	}
}

func TestSubtree(t *testing.T) {
	var hit string
	collection := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hit = "collection" })
	member := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hit = "member" })
	h := subtree("/api/items/", collection, member)

	for path, want := range map[string]string{
		"/api/items/":    "collection",
		"/api/items/abc": "member",
	} {
		hit = ""
		h(httptest.NewRecorder(), httptest.NewRequest("POST", path, nil))
		if hit != want {
			t.Errorf("%s: expected %s, got %q", path, want, hit)
		}
	}
}
