// Package fakeapi is an in-process stand-in for the remote habit service,
// used by tests to exercise the client end to end.
package fakeapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/julianstephens/habitsync/internal/models"
)

var jwtKey = []byte("fakeapi-signing-key")

type ctxKey string

const userIDKey ctxKey = "userId"

type user struct {
	id           string
	username     string
	email        string
	passwordHash string
}

type logEntry struct {
	id     string
	date   string
	status bool
}

// Failure is a canned error response for one route.
type Failure struct {
	Status  int
	Message string
}

// Recorded is one request the server received.
type Recorded struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
	Body          []byte
}

// Server is a fake habit service backed by memory.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	users    map[string]*user // by username
	habits   map[string]models.Habit
	order    []string
	logs     map[string][]logEntry // by habit id
	failures map[string]Failure    // by "METHOD route-template"
	requests []Recorded

	onUpdate         func(h *models.Habit)
	progressOverride func(p *models.HabitProgress)
}

// New starts a fake server. Callers should Close it.
func New() *Server {
	s := &Server{
		users:    make(map[string]*user),
		habits:   make(map[string]models.Habit),
		logs:     make(map[string][]logEntry),
		failures: make(map[string]Failure),
	}

	router := mux.NewRouter()
	router.Use(s.record, s.inject)
	router.HandleFunc("/signup", s.signup).Methods(http.MethodPost)
	router.HandleFunc("/login", s.login).Methods(http.MethodPost)

	authed := router.NewRoute().Subrouter()
	authed.Use(s.authenticate)
	authed.HandleFunc("/habits", s.listHabits).Methods(http.MethodGet)
	authed.HandleFunc("/habits", s.createHabit).Methods(http.MethodPost)
	authed.HandleFunc("/habits/{id}", s.updateHabit).Methods(http.MethodPut)
	authed.HandleFunc("/habits/{id}", s.deleteHabit).Methods(http.MethodDelete)
	authed.HandleFunc("/habits/{id}/log", s.logHabit).Methods(http.MethodPost)
	authed.HandleFunc("/habits/{id}/progress", s.progress).Methods(http.MethodGet)

	s.Server = httptest.NewServer(router)
	return s
}

// Fail makes every request matching method and route template (for example
// "DELETE", "/habits/{id}") answer with status and message until cleared.
func (s *Server) Fail(method, route string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+route] = Failure{Status: status, Message: message}
}

// OnUpdate installs a hook that may rewrite a habit after an update is
// applied and before it is stored and returned.
func (s *Server) OnUpdate(fn func(h *models.Habit)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUpdate = fn
}

// OverrideProgress installs a hook that may rewrite computed progress
// snapshots before they are returned.
func (s *Server) OverrideProgress(fn func(p *models.HabitProgress)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progressOverride = fn
}

// ClearFailures removes all canned failures.
func (s *Server) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]Failure)
}

// Requests returns a copy of every request received so far.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Recorded, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent request matching method and path.
func (s *Server) LastRequest(method, path string) (Recorded, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.requests) - 1; i >= 0; i-- {
		r := s.requests[i]
		if r.Method == method && r.Path == path {
			return r, true
		}
	}
	return Recorded{}, false
}

// AddUser registers an account directly and returns its id.
func (s *Server) AddUser(username, email, password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	u := &user{id: uuid.NewString(), username: username, email: email, passwordHash: string(hash)}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username] = u
	return u.id
}

// TokenFor signs a session token for userID that expires after ttl.
func TokenFor(userID string, ttl time.Duration) string {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtKey)
	if err != nil {
		panic(err)
	}
	return token
}

// AddHabit stores a habit for ownerID directly and returns it.
func (s *Server) AddHabit(ownerID, title, description string, frequency models.Frequency) models.Habit {
	h := models.Habit{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Frequency:   frequency,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.habits[h.ID] = h
	s.order = append(s.order, h.ID)
	return h
}

// Habits returns the stored habits for ownerID in insertion order.
func (s *Server) Habits(ownerID string) []models.Habit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.habitsFor(ownerID)
}

func (s *Server) habitsFor(ownerID string) []models.Habit {
	out := []models.Habit{}
	for _, id := range s.order {
		if h, ok := s.habits[id]; ok && h.OwnerID == ownerID {
			out = append(out, h)
		}
	}
	return out
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// record keeps a copy of each request for assertions.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = readAll(r)
		}
		s.mu.Lock()
		s.requests = append(s.requests, Recorded{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
			Body:          body,
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// inject answers with a canned failure when one is registered for the route.
func (s *Server) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := mux.CurrentRoute(r)
		if route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				s.mu.Lock()
				f, ok := s.failures[r.Method+" "+tmpl]
				s.mu.Unlock()
				if ok {
					respondWithJSON(w, f.Status, f.Message)
					return
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			respondWithJSON(w, http.StatusUnauthorized, "Missing authorization header")
			return
		}

		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return jwtKey, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			respondWithJSON(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func currentUser(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithJSON(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	s.mu.Lock()
	for _, u := range s.users {
		if u.username == req.Username || u.email == req.Email {
			s.mu.Unlock()
			respondWithJSON(w, http.StatusConflict, "Username or email already exists")
			return
		}
	}
	s.mu.Unlock()

	id := s.AddUser(req.Username, req.Email, req.Password)
	respondWithJSON(w, http.StatusCreated, models.AuthResponse{Token: TokenFor(id, 24*time.Hour), UserID: id})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithJSON(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	s.mu.Lock()
	u, ok := s.users[req.Username]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(req.Password)) != nil {
		respondWithJSON(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	respondWithJSON(w, http.StatusOK, models.AuthResponse{Token: TokenFor(u.id, 24*time.Hour), UserID: u.id})
}

func (s *Server) listHabits(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, s.Habits(currentUser(r)))
}

func (s *Server) createHabit(w http.ResponseWriter, r *http.Request) {
	var req models.HabitCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithJSON(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	h := s.AddHabit(currentUser(r), req.Title, req.Description, req.Frequency)
	respondWithJSON(w, http.StatusCreated, h)
}

// ownedHabit looks up the {id} habit for the current user. The caller must
// hold s.mu.
func (s *Server) ownedHabit(r *http.Request) (models.Habit, bool) {
	h, ok := s.habits[mux.Vars(r)["id"]]
	if !ok || h.OwnerID != currentUser(r) {
		return models.Habit{}, false
	}
	return h, true
}

func (s *Server) updateHabit(w http.ResponseWriter, r *http.Request) {
	var req models.HabitUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithJSON(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.ownedHabit(r)
	if !ok {
		respondWithJSON(w, http.StatusNotFound, "Habit not found")
		return
	}
	if req.Title != nil {
		h.Title = *req.Title
	}
	if req.Description != nil {
		h.Description = *req.Description
	}
	if req.Frequency != nil {
		h.Frequency = *req.Frequency
	}
	if s.onUpdate != nil {
		s.onUpdate(&h)
	}
	s.habits[h.ID] = h
	respondWithJSON(w, http.StatusOK, h)
}

func (s *Server) deleteHabit(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h, ok := s.ownedHabit(r); ok {
		delete(s.habits, h.ID)
		delete(s.logs, h.ID)
		for i, id := range s.order {
			if id == h.ID {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) logHabit(w http.ResponseWriter, r *http.Request) {
	var req models.LogCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithJSON(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		respondWithJSON(w, http.StatusBadRequest, "Invalid date")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.ownedHabit(r)
	if !ok {
		respondWithJSON(w, http.StatusNotFound, "Habit not found")
		return
	}

	entries := s.logs[h.ID]
	for i, e := range entries {
		if e.date == req.Date {
			entries[i].status = req.Status
			respondWithJSON(w, http.StatusCreated, models.HabitLog{ID: e.id, HabitID: h.ID, Date: e.date, Status: req.Status})
			return
		}
	}
	e := logEntry{id: uuid.NewString(), date: req.Date, status: req.Status}
	s.logs[h.ID] = append(entries, e)
	respondWithJSON(w, http.StatusCreated, models.HabitLog{ID: e.id, HabitID: h.ID, Date: e.date, Status: e.status})
}

func (s *Server) progress(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.ownedHabit(r)
	if !ok {
		respondWithJSON(w, http.StatusNotFound, "Habit not found")
		return
	}

	p := models.HabitProgress{HabitID: h.ID}
	for _, e := range s.logs[h.ID] {
		p.TotalDays++
		if e.status {
			p.CompletedDays++
		}
	}
	p.CompletionPercentage = p.ExpectedPercentage()
	if s.progressOverride != nil {
		s.progressOverride(&p)
	}
	respondWithJSON(w, http.StatusOK, p)
}
