// Package apitest runs an in-memory stand-in for the story-sharing API.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"snooze/internal/domain/story"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var secret = []byte("apitest-secret")

type account struct {
	username  string
	password  string
	name      string
	createdAt time.Time
	favorites []string
}

// Server is a fake API. The zero value is not usable; call NewServer.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	accounts map[string]*account
	stories  []story.Story
	calls    map[string]int
	outage   bool
	delay    time.Duration
}

// NewServer starts a fake API. Close it when done.
func NewServer() *Server {
	s := &Server{
		accounts: map[string]*account{},
		calls:    map[string]int{},
	}

	r := chi.NewRouter()
	r.Use(s.track)
	r.Get("/stories", s.listStories)
	r.Post("/stories", s.createStory)
	r.Post("/signup", s.signup)
	r.Post("/login", s.login)
	r.Get("/users/{username}", s.getUser)
	r.Post("/users/{username}/favorites/{storyId}", s.addFavorite)
	r.Delete("/users/{username}/favorites/{storyId}", s.removeFavorite)

	s.Server = httptest.NewServer(r)
	return s
}

// AddUser creates an account and returns a valid token for it.
func (s *Server) AddUser(username, password, name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[username] = &account{
		username:  username,
		password:  password,
		name:      name,
		createdAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	return issueToken(username)
}

// AddStory appends a story as if submitted earlier, so it lands at the end of the list.
func (s *Server) AddStory(st story.Story) story.Story {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	if st.CreatedAt.IsZero() {
		st.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	s.stories = append(s.stories, st)
	return st
}

// SetOutage makes every request answer 503.
func (s *Server) SetOutage(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outage = down
}

// SetDelay holds every response for d.
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// Calls returns how many requests hit method and route pattern, e.g. "POST /stories".
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

func (s *Server) track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		outage, delay := s.outage, s.delay
		s.mu.Unlock()

		if delay > 0 {
			time.Sleep(delay)
		}
		if outage {
			s.count(r)
			writeError(w, http.StatusServiceUnavailable, "service unavailable")
			return
		}

		next.ServeHTTP(w, r)
		s.count(r)
	})
}

func (s *Server) count(r *http.Request) {
	route := r.URL.Path
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		route = rctx.RoutePattern()
	}
	s.mu.Lock()
	s.calls[r.Method+" "+route]++
	s.mu.Unlock()
}

func (s *Server) listStories(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"stories": s.stories})
}

func (s *Server) createStory(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token string      `json:"token"`
		Story story.Draft `json:"story"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.authorize(w, body.Token, "")
	if !ok {
		return
	}
	if body.Story.Title == "" || body.Story.Author == "" || body.Story.URL == "" {
		writeError(w, http.StatusBadRequest, "story requires title, author and url")
		return
	}

	created := story.Story{
		ID:        uuid.NewString(),
		Title:     body.Story.Title,
		Author:    body.Story.Author,
		URL:       body.Story.URL,
		Username:  acc.username,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	s.stories = append([]story.Story{created}, s.stories...)
	writeJSON(w, http.StatusCreated, map[string]any{"story": created})
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		User struct {
			Username string `json:"username"`
			Password string `json:"password"`
			Name     string `json:"name"`
		} `json:"user"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	if body.User.Username == "" || body.User.Password == "" || body.User.Name == "" {
		writeError(w, http.StatusBadRequest, "user requires username, password and name")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[body.User.Username]; exists {
		writeError(w, http.StatusConflict, fmt.Sprintf("There already exists a user with username '%s'", body.User.Username))
		return
	}

	acc := &account{
		username:  body.User.Username,
		password:  body.User.Password,
		name:      body.User.Name,
		createdAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	s.accounts[acc.username] = acc
	writeJSON(w, http.StatusCreated, map[string]any{"user": s.userJSON(acc), "token": issueToken(acc.username)})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		User struct {
			Username string `json:"username"`
			Password string `json:"password"`
		} `json:"user"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[body.User.Username]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("No user: %s", body.User.Username))
		return
	}
	if acc.password != body.User.Password {
		writeError(w, http.StatusUnauthorized, "Invalid password")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": s.userJSON(acc), "token": issueToken(acc.username)})
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.authorize(w, r.URL.Query().Get("token"), chi.URLParam(r, "username"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": s.userJSON(acc)})
}

func (s *Server) addFavorite(w http.ResponseWriter, r *http.Request) {
	s.favorite(w, r, func(acc *account, id string) {
		for _, fav := range acc.favorites {
			if fav == id {
				return
			}
		}
		acc.favorites = append(acc.favorites, id)
	})
}

func (s *Server) removeFavorite(w http.ResponseWriter, r *http.Request) {
	s.favorite(w, r, func(acc *account, id string) {
		kept := acc.favorites[:0]
		for _, fav := range acc.favorites {
			if fav != id {
				kept = append(kept, fav)
			}
		}
		acc.favorites = kept
	})
}

func (s *Server) favorite(w http.ResponseWriter, r *http.Request, apply func(*account, string)) {
	var body struct {
		Token string `json:"token"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.authorize(w, body.Token, chi.URLParam(r, "username"))
	if !ok {
		return
	}

	id := chi.URLParam(r, "storyId")
	if _, found := s.find(id); !found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("No such story: %s", id))
		return
	}

	apply(acc, id)
	writeJSON(w, http.StatusOK, map[string]any{"message": "ok", "user": s.userJSON(acc)})
}

// authorize resolves token to an account; when username is set the token must belong to it.
func (s *Server) authorize(w http.ResponseWriter, token, username string) (*account, bool) {
	holder, err := parseToken(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "A valid token must be provided")
		return nil, false
	}
	if username != "" && holder != username {
		if _, exists := s.accounts[username]; !exists {
			writeError(w, http.StatusNotFound, fmt.Sprintf("No user: %s", username))
			return nil, false
		}
		writeError(w, http.StatusUnauthorized, "Cannot access another user's data")
		return nil, false
	}
	acc, ok := s.accounts[holder]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("No user: %s", holder))
		return nil, false
	}
	return acc, true
}

func (s *Server) find(id string) (story.Story, bool) {
	for _, st := range s.stories {
		if st.ID == id {
			return st, true
		}
	}
	return story.Story{}, false
}

func (s *Server) userJSON(acc *account) map[string]any {
	favorites := []story.Story{}
	for _, id := range acc.favorites {
		if st, ok := s.find(id); ok {
			favorites = append(favorites, st)
		}
	}
	own := []story.Story{}
	for _, st := range s.stories {
		if st.Username == acc.username {
			own = append(own, st)
		}
	}
	return map[string]any{
		"username":  acc.username,
		"name":      acc.name,
		"createdAt": acc.createdAt,
		"favorites": favorites,
		"stories":   own,
	}
}

func issueToken(username string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": username,
		"iat":      time.Now().Unix(),
	})
	signed, err := token.SignedString(secret)
	if err != nil {
		panic(err)
	}
	return signed
}

func parseToken(raw string) (string, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	username, _ := claims["username"].(string)
	if username == "" {
		return "", fmt.Errorf("token has no username")
	}
	return username, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"status":  status,
			"title":   http.StatusText(status),
			"message": message,
		},
	})
}
