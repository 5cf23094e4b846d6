package apitest

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Sahithee-Vadali/Roxiler-Systems-client/internal/domain"
)

// topStoresLimit is how many stores the dashboard ranks.
const topStoresLimit = 5

func decode(r *http.Request, v any) bool {
	return json.NewDecoder(r.Body).Decode(v) == nil
}

func pathID(r *http.Request) int {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return 0
	}
	return id
}

// ============================================================================
// Auth
// ============================================================================

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decode(r, &req) {
		writeError(w, http.StatusBadRequest, MsgBadBody)
		return
	}

	s.mu.Lock()
	u := s.userByEmail(strings.TrimSpace(req.Email))
	s.mu.Unlock()
	if u == nil || u.password != req.Password {
		writeError(w, http.StatusUnauthorized, MsgBadCredentials)
		return
	}

	writeJSON(w, http.StatusOK, domain.LoginResponse{
		Token: s.TokenFor(toID(u.id)),
		User: domain.Session{
			UserID: toID(u.id),
			Name:   u.name,
			Email:  u.email,
			Role:   u.role,
		},
	})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var in domain.UserInput
	if !decode(r, &in) {
		writeError(w, http.StatusBadRequest, MsgBadBody)
		return
	}
	if in.Role == "" {
		in.Role = domain.RoleUser
	}
	if msg := firstProblem(
		checkName(in.Name),
		checkEmail(in.Email),
		checkPassword(in.Password),
		checkAddress(in.Address, false),
		checkRole(in.Role),
	); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userByEmail(in.Email) != nil {
		writeError(w, http.StatusBadRequest, MsgEmailTaken)
		return
	}
	u := &user{
		id:       s.allocID(),
		name:     strings.TrimSpace(in.Name),
		email:    in.Email,
		password: in.Password,
		address:  in.Address,
		role:     in.Role,
	}
	s.users[u.id] = u
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"user":    s.userView(u),
	})
}

// ============================================================================
// Admin
// ============================================================================

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := domain.DashboardStats{
		TotalUsers:   len(s.users),
		TotalStores:  len(s.stores),
		TotalRatings: len(s.ratings),
		UsersByRole:  make(map[domain.Role]int),
		TopStores:    []domain.TopStore{},
	}
	for _, u := range s.users {
		stats.UsersByRole[u.role]++
	}

	var rated []domain.Store
	for _, st := range sortedStores(s.stores) {
		if v := s.storeView(st, false); v.TotalRatings > 0 {
			rated = append(rated, v)
		}
	}
	sort.SliceStable(rated, func(i, j int) bool { return rated[i].AverageRating > rated[j].AverageRating })
	if len(rated) > topStoresLimit {
		rated = rated[:topStoresLimit]
	}
	for _, st := range rated {
		stats.TopStores = append(stats.TopStores, domain.TopStore{
			ID:            st.ID,
			Name:          st.Name,
			Owner:         st.OwnerName(),
			AverageRating: st.AverageRating,
			TotalRatings:  st.TotalRatings,
		})
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	role := domain.Role(r.URL.Query().Get("role"))

	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.User{}
	for _, u := range sortedUsers(s.users) {
		if role != "" && u.role != role {
			continue
		}
		out = append(out, s.userView(u))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var in domain.UserInput
	if !decode(r, &in) {
		writeError(w, http.StatusBadRequest, MsgBadBody)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[pathID(r)]
	if !ok {
		writeError(w, http.StatusNotFound, MsgUserNotFound)
		return
	}
	if in.Role == "" {
		in.Role = u.role
	}
	pwProblem := ""
	if in.Password != "" {
		pwProblem = checkPassword(in.Password)
	}
	if msg := firstProblem(
		checkName(in.Name),
		checkEmail(in.Email),
		pwProblem,
		checkAddress(in.Address, false),
		checkRole(in.Role),
	); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if other := s.userByEmail(in.Email); other != nil && other.id != u.id {
		writeError(w, http.StatusBadRequest, MsgEmailTaken)
		return
	}

	u.name = strings.TrimSpace(in.Name)
	u.email = in.Email
	u.role = in.Role
	if in.Address != "" {
		u.address = in.Address
	}
	if in.Password != "" {
		u.password = in.Password
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "User updated successfully",
		"user":    s.userView(u),
	})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[pathID(r)]
	if !ok {
		writeError(w, http.StatusNotFound, MsgUserNotFound)
		return
	}
	if !s.userView(u).Deletable() {
		writeError(w, http.StatusBadRequest, MsgUserInUse)
		return
	}
	delete(s.users, u.id)
	writeMessage(w, http.StatusOK, "User deleted successfully")
}

func (s *Server) handleListStores(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Store{}
	for _, st := range sortedStores(s.stores) {
		out = append(out, s.storeView(st, false))
	}
	writeJSON(w, http.StatusOK, out)
}

// checkStoreInput validates a store payload. Callers hold s.mu.
func (s *Server) checkStoreInput(in domain.StoreInput) string {
	ownerProblem := MsgOwnerInvalid
	if owner, ok := s.users[fromID(in.OwnerID)]; ok && owner.role == domain.RoleOwner {
		ownerProblem = ""
	}
	emailProblem := ""
	if in.Email != "" {
		emailProblem = checkEmail(in.Email)
	}
	return firstProblem(
		checkName(in.Name),
		emailProblem,
		checkAddress(in.Address, true),
		ownerProblem,
	)
}

func (s *Server) handleCreateStore(w http.ResponseWriter, r *http.Request) {
	var in domain.StoreInput
	if !decode(r, &in) {
		writeError(w, http.StatusBadRequest, MsgBadBody)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if msg := s.checkStoreInput(in); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	st := &store{
		id:      s.allocID(),
		name:    strings.TrimSpace(in.Name),
		email:   in.Email,
		address: in.Address,
		ownerID: fromID(in.OwnerID),
	}
	s.stores[st.id] = st
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Store created successfully",
		"store":   s.storeView(st, false),
	})
}

func (s *Server) handleUpdateStore(w http.ResponseWriter, r *http.Request) {
	var in domain.StoreInput
	if !decode(r, &in) {
		writeError(w, http.StatusBadRequest, MsgBadBody)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stores[pathID(r)]
	if !ok {
		writeError(w, http.StatusNotFound, MsgStoreNotFound)
		return
	}
	if msg := s.checkStoreInput(in); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	st.name = strings.TrimSpace(in.Name)
	st.email = in.Email
	st.address = in.Address
	st.ownerID = fromID(in.OwnerID)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Store updated successfully",
		"store":   s.storeView(st, false),
	})
}

func (s *Server) handleDeleteStore(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stores[pathID(r)]
	if !ok {
		writeError(w, http.StatusNotFound, MsgStoreNotFound)
		return
	}
	for id, rt := range s.ratings {
		if rt.storeID == st.id {
			delete(s.ratings, id)
		}
	}
	delete(s.stores, st.id)
	writeMessage(w, http.StatusOK, "Store deleted successfully")
}

// ============================================================================
// Stores and ratings
// ============================================================================

func (s *Server) handleSearchStores(w http.ResponseWriter, r *http.Request) {
	term := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("search")))

	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Store{}
	for _, st := range sortedStores(s.stores) {
		if term != "" &&
			!strings.Contains(strings.ToLower(st.name), term) &&
			!strings.Contains(strings.ToLower(st.address), term) {
			continue
		}
		out = append(out, s.storeView(st, false))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	var in domain.RateInput
	if !decode(r, &in) {
		writeError(w, http.StatusBadRequest, MsgBadBody)
		return
	}
	if !domain.ValidRatingValue(in.Rating) {
		writeError(w, http.StatusBadRequest, MsgRatingRange)
		return
	}

	c := callerFrom(r.Context())
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stores[pathID(r)]
	if !ok {
		writeError(w, http.StatusNotFound, MsgStoreNotFound)
		return
	}
	if _, ok := s.users[c.id]; !ok {
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	s.upsertRating(c.id, st.id, in.Rating)
	writeMessage(w, http.StatusOK, "Rating submitted successfully")
}

func (s *Server) handleOwnerStores(w http.ResponseWriter, r *http.Request) {
	c := callerFrom(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Store{}
	for _, st := range sortedStores(s.stores) {
		if st.ownerID == c.id {
			out = append(out, s.storeView(st, true))
		}
	}
	writeJSON(w, http.StatusOK, out)
}
