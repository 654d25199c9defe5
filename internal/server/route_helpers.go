package server

import (
	"net/http"
	"slices"
	"strings"

	"github.com/bobmcallan/finplan-portal/internal/handlers"
)

// methods serves one path, dispatching on the request method. HEAD falls back
// to GET when listed.
type methods map[string]http.HandlerFunc

func (m methods) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h, ok := m[r.Method]
	if !ok && r.Method == http.MethodHead {
		h, ok = m[http.MethodGet]
	}
	if !ok {
		w.Header().Set("Allow", m.allow())
		handlers.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	h(w, r)
}

func (m methods) allow() string {
	names := make([]string, 0, len(m))
	for method := range m {
		names = append(names, method)
	}
	slices.Sort(names)
	return strings.Join(names, ", ")
}

// subtree routes a mux subtree pattern such as "/api/portfolio/items/": the
// bare prefix goes to collection, anything below it to member.
func subtree(prefix string, collection, member http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.TrimPrefix(r.URL.Path, prefix) == "" {
			collection.ServeHTTP(w, r)
			return
		}
		member.ServeHTTP(w, r)
	}
}
