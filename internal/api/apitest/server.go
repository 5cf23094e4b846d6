// Package apitest provides an in-memory implementation of the store-rating
// REST API for tests. It enforces the server-side rules the client relies
// on: field validation, role checks, delete guards, rating cascade and
// per-user rating upsert.
package apitest

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"runtime/debug"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Sahithee-Vadali/Roxiler-Systems-client/internal/domain"
	"github.com/Sahithee-Vadali/Roxiler-Systems-client/pkg/logger"
)

// Request is a request as observed by the server.
type Request struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	RequestID     string
	TraceParent   string
}

type user struct {
	id       int
	name     string
	email    string
	password string
	address  string
	role     domain.Role
}

type store struct {
	id      int
	name    string
	email   string
	address string
	ownerID int
}

type rating struct {
	id      int
	userID  int
	storeID int
	value   int
	seq     int
}

type failure struct {
	status  int
	message string
	body    *string
}

// Server is a fake API server backed by httptest.Server.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	users    map[int]*user
	stores   map[int]*store
	ratings  map[int]*rating
	nextID   int
	seq      int
	requests []Request
	failures map[string]failure
	holds    map[string]chan struct{}

	secret []byte
	logger *slog.Logger
}

// New starts a fake server and stops it when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		users:    make(map[int]*user),
		stores:   make(map[int]*store),
		ratings:  make(map[int]*rating),
		failures: make(map[string]failure),
		holds:    make(map[string]chan struct{}),
		secret:   []byte("apitest-secret"),
		logger:   logger.Discard(),
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.recoverer, s.record, s.inject)

	r.Post("/login", s.handleLogin)
	r.Get("/stores", s.handleSearchStores)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Post("/stores/{id}/rate", s.handleRate)

		r.Route("/owner", func(r chi.Router) {
			r.Use(requireRole(domain.RoleOwner))
			r.Get("/stores", s.handleOwnerStores)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireRole(domain.RoleAdmin))
			r.Post("/signup", s.handleSignup)
			r.Post("/stores", s.handleCreateStore)
			r.Get("/admin/dashboard", s.handleDashboard)
			r.Get("/admin/users", s.handleListUsers)
			r.Put("/admin/users/{id}", s.handleUpdateUser)
			r.Delete("/admin/users/{id}", s.handleDeleteUser)
			r.Get("/admin/stores", s.handleListStores)
			r.Put("/admin/stores/{id}", s.handleUpdateStore)
			r.Delete("/admin/stores/{id}", s.handleDeleteStore)
		})
	})
	return r
}

// ============================================================================
// Middleware
// ============================================================================

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered",
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())),
					slog.String("path", r.URL.Path),
				)
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
			TraceParent:   r.Header.Get("Traceparent"),
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// inject applies failures registered with Fail and holds registered with Hold.
func (s *Server) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		s.mu.Lock()
		f, failing := s.failures[key]
		hold, holding := s.holds[key]
		s.mu.Unlock()

		if holding {
			select {
			case <-hold:
			case <-r.Context().Done():
				return
			}
		}
		if failing && f.body != nil {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(f.status)
			_, _ = io.WriteString(w, *f.body)
			return
		}
		if failing {
			writeError(w, f.status, f.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ============================================================================
// Test controls
// ============================================================================

// Fail makes every request to method and path answer status with message
// until ClearFailures is called.
func (s *Server) Fail(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, message: message}
}

// FailWithBody is Fail with a raw, non-JSON body such as a proxy's HTML
// error page. An empty body sends no content at all.
func (s *Server) FailWithBody(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, body: &body}
}

// ClearFailures removes all registered failures.
func (s *Server) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]failure)
}

// Hold blocks requests to method and path until the returned release
// function is called or the request is cancelled by the client.
func (s *Server) Hold(method, path string) (release func()) {
	ch := make(chan struct{})
	key := method + " " + path
	s.mu.Lock()
	s.holds[key] = ch
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.holds, key)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Count returns how many requests matched method and path.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// ResetRequests forgets recorded requests.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// ============================================================================
// Seeding
// ============================================================================

// UserSeed describes a user inserted directly, bypassing validation.
type UserSeed struct {
	Name     string
	Email    string
	Password string
	Address  string
	Role     domain.Role
}

// StoreSeed describes a store inserted directly, bypassing validation.
type StoreSeed struct {
	Name    string
	Email   string
	Address string
	OwnerID domain.ID
}

// AddUser inserts a user and returns its id.
func (s *Server) AddUser(seed UserSeed) domain.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &user{
		id:       s.allocID(),
		name:     seed.Name,
		email:    seed.Email,
		password: seed.Password,
		address:  seed.Address,
		role:     seed.Role,
	}
	s.users[u.id] = u
	return toID(u.id)
}

// AddStore inserts a store and returns its id.
func (s *Server) AddStore(seed StoreSeed) domain.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := &store{
		id:      s.allocID(),
		name:    seed.Name,
		email:   seed.Email,
		address: seed.Address,
		ownerID: fromID(seed.OwnerID),
	}
	s.stores[st.id] = st
	return toID(st.id)
}

// AddRating records userID's rating of storeID, replacing an earlier one.
func (s *Server) AddRating(userID, storeID domain.ID, value int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertRating(fromID(userID), fromID(storeID), value)
}

// TokenFor issues a valid token for an existing user.
func (s *Server) TokenFor(id domain.ID) string {
	s.mu.Lock()
	u, ok := s.users[fromID(id)]
	s.mu.Unlock()
	if !ok {
		return ""
	}
	return s.signToken(u.id, u.role, time.Now().Add(TokenExpiry))
}

// ExpiredTokenFor issues a token for id that expired an hour ago.
func (s *Server) ExpiredTokenFor(id domain.ID) string {
	s.mu.Lock()
	u, ok := s.users[fromID(id)]
	s.mu.Unlock()
	if !ok {
		return ""
	}
	return s.signToken(u.id, u.role, time.Now().Add(-time.Hour))
}

// User returns the admin projection of a user.
func (s *Server) User(id domain.ID) (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[fromID(id)]
	if !ok {
		return domain.User{}, false
	}
	return s.userView(u), true
}

// Store returns the projection of a store including its ratings.
func (s *Server) Store(id domain.ID) (domain.Store, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stores[fromID(id)]
	if !ok {
		return domain.Store{}, false
	}
	return s.storeView(st, true), true
}

// RatingCount returns the number of ratings held by the server.
func (s *Server) RatingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ratings)
}

// ============================================================================
// Internal helpers (callers hold s.mu)
// ============================================================================

func (s *Server) allocID() int {
	s.nextID++
	return s.nextID
}

func (s *Server) upsertRating(userID, storeID, value int) {
	s.seq++
	for _, r := range s.ratings {
		if r.userID == userID && r.storeID == storeID {
			r.value = value
			r.seq = s.seq
			return
		}
	}
	r := &rating{id: s.allocID(), userID: userID, storeID: storeID, value: value, seq: s.seq}
	s.ratings[r.id] = r
}

func (s *Server) userByEmail(email string) *user {
	for _, u := range s.users {
		if u.email == email {
			return u
		}
	}
	return nil
}

func (s *Server) userView(u *user) domain.User {
	var counts domain.UserCounts
	for _, r := range s.ratings {
		if r.userID == u.id {
			counts.Ratings++
		}
	}
	for _, st := range s.stores {
		if st.ownerID == u.id {
			counts.Stores++
		}
	}
	return domain.User{
		ID:      toID(u.id),
		Name:    u.name,
		Email:   u.email,
		Address: u.address,
		Role:    u.role,
		Count:   counts,
	}
}

// storeView projects a store. Ratings are listed most recent first when
// withRatings is set.
func (s *Server) storeView(st *store, withRatings bool) domain.Store {
	var rs []*rating
	for _, r := range s.ratings {
		if r.storeID == st.id {
			rs = append(rs, r)
		}
	}
	sort.Slice(rs, func(i, j int) bool { return rs[i].seq > rs[j].seq })

	out := domain.Store{
		ID:           toID(st.id),
		Name:         st.name,
		Email:        st.email,
		Address:      st.address,
		OwnerID:      toID(st.ownerID),
		TotalRatings: len(rs),
	}
	if owner, ok := s.users[st.ownerID]; ok {
		out.Owner = &domain.Owner{ID: toID(owner.id), Name: owner.name, Email: owner.email}
	}

	sum := 0
	for _, r := range rs {
		sum += r.value
	}
	if len(rs) > 0 {
		out.AverageRating = float64(sum) / float64(len(rs))
	}

	if withRatings {
		out.Ratings = make([]domain.Rating, 0, len(rs))
		for _, r := range rs {
			item := domain.Rating{
				ID:      toID(r.id),
				UserID:  toID(r.userID),
				StoreID: toID(r.storeID),
				Value:   r.value,
			}
			if u, ok := s.users[r.userID]; ok {
				item.User = &domain.RaterRef{Name: u.name}
			}
			out.Ratings = append(out.Ratings, item)
		}
	}
	return out
}

func sortedStores(m map[int]*store) []*store {
	out := make([]*store, 0, len(m))
	for _, st := range m {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func sortedUsers(m map[int]*user) []*user {
	out := make([]*user, 0, len(m))
	for _, u := range m {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func toID(id int) domain.ID {
	if id == 0 {
		return ""
	}
	return domain.ID(strconv.Itoa(id))
}

func fromID(id domain.ID) int {
	n, err := strconv.Atoi(id.String())
	if err != nil {
		return 0
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
