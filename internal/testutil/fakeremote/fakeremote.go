// Package fakeremote is an in-memory implementation of the building service
// REST API for tests. It serves every standard collection under /api/v1,
// applies the same payload rules as the real service, counts calls per route
// and can be told to fail upcoming requests.
package fakeremote

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/mesh-intelligence/concierge/pkg/types"
)

// Server is the fake service. The zero value is not usable; call New.
type Server struct {
	router chi.Router

	mu          sync.Mutex
	token       string
	calls       map[string]int
	failures    map[string][]failure
	lastRequest http.Header
	now         func() time.Time
}

type failure struct {
	status int
	detail string
}

// New returns a Server with the four standard collections registered.
func New() *Server {
	s := &Server{
		calls:    make(map[string]int),
		failures: make(map[string][]failure),
		now:      time.Now,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.record)
	r.Use(s.authorize)
	r.Use(s.inject)
	s.router = r

	Register[types.Resident, types.CreateResidentRequest, types.UpdateResidentRequest](s, types.ResidentsCollection)
	Register[types.Package, types.CreatePackageRequest, types.UpdatePackageRequest](s, types.PackagesCollection)
	Register[types.Notification, types.CreateNotificationRequest, types.UpdateNotificationRequest](s, types.NotificationsCollection)
	Register[types.Post, types.CreatePostRequest, types.UpdatePostRequest](s, types.PostsCollection)
	return s
}

// Start serves s on a local httptest server that is closed when t ends.
func Start(t testing.TB) (*Server, *httptest.Server) {
	t.Helper()
	s := New()
	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)
	return s, ts
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// RequireToken makes every request without "Bearer <token>" fail with 401.
func (s *Server) RequireToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// FailNext makes the next request with method on collection fail with status
// and a problem details body carrying detail. An empty detail sends a body
// without one. Calls queue up.
func (s *Server) FailNext(method, collection string, status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := routeKey(method, collection)
	s.failures[key] = append(s.failures[key], failure{status: status, detail: detail})
}

// Calls returns how many requests with method reached collection, including
// the ones that were made to fail.
func (s *Server) Calls(method, collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[routeKey(method, collection)]
}

// LastRequestHeader returns the headers of the most recent request.
func (s *Server) LastRequestHeader() http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRequest.Clone()
}

// Register mounts a collection of E under /api/v1/<name.Plural>. Create and
// Update build entities through the payload types, so validation matches the
// local backend.
func Register[E types.Entity, C types.Creator[E], U types.Patcher[E]](s *Server, name types.CollectionName) {
	c := &collection[E, C, U]{server: s, name: name, items: []E{}}
	s.router.Route("/api/v1/"+name.Plural, func(r chi.Router) {
		r.Get("/", c.list)
		r.Post("/", c.create)
		r.Patch("/{id}", c.update)
		r.Delete("/{id}", c.remove)
	})
}

// record counts the call and keeps its headers.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[routeKey(r.Method, collectionOf(r.URL.Path))]++
		s.lastRequest = r.Header.Clone()
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		token := s.token
		s.mu.Unlock()
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			writeProblem(w, http.StatusUnauthorized, "Missing or invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// inject serves a queued failure in place of the real handler.
func (s *Server) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := routeKey(r.Method, collectionOf(r.URL.Path))
		s.mu.Lock()
		queue := s.failures[key]
		var f *failure
		if len(queue) > 0 {
			f = &queue[0]
			s.failures[key] = queue[1:]
		}
		s.mu.Unlock()

		if f != nil {
			writeProblem(w, f.status, f.detail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func routeKey(method, collection string) string {
	return strings.ToUpper(method) + " " + collection
}

// collectionOf extracts <plural> from /api/v1/<plural>[/<id>].
func collectionOf(path string) string {
	rest, ok := strings.CutPrefix(path, "/api/v1/")
	if !ok {
		return ""
	}
	name, _, _ := strings.Cut(rest, "/")
	return name
}

type collection[E types.Entity, C types.Creator[E], U types.Patcher[E]] struct {
	server *Server
	name   types.CollectionName

	mu    sync.Mutex
	items []E
}

func (c *collection[E, C, U]) list(w http.ResponseWriter, r *http.Request) {
	c.mu.Lock()
	items := make([]E, len(c.items))
	copy(items, c.items)
	c.mu.Unlock()

	writeJSON(w, http.StatusOK, types.ListResponse[E]{Items: items, Total: len(items)})
}

func (c *collection[E, C, U]) create(w http.ResponseWriter, r *http.Request) {
	var payload C
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeProblem(w, http.StatusBadRequest, fmt.Sprintf("malformed %s payload", c.name.Singular))
		return
	}
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	e, err := payload.New(id.String(), c.server.now().UTC())
	if err != nil {
		writeError(w, err)
		return
	}

	c.mu.Lock()
	c.items = append(c.items, e)
	c.mu.Unlock()

	writeJSON(w, http.StatusCreated, e)
}

func (c *collection[E, C, U]) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var payload U
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeProblem(w, http.StatusBadRequest, fmt.Sprintf("malformed %s payload", c.name.Singular))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].EntityID() != id {
			continue
		}
		if err := payload.ApplyTo(&c.items[i]); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c.items[i])
		return
	}
	writeError(w, fmt.Errorf("%w: %s %s", types.ErrNotFound, c.name.Singular, id))
}

func (c *collection[E, C, U]) remove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].EntityID() == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, fmt.Errorf("%w: %s %s", types.ErrNotFound, c.name.Singular, id))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	p := types.ProblemFromError(err)
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

func writeProblem(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ProblemDetail{
		Type:   "about:blank",
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	})
}
