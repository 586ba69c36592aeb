// Package devserver is a local stand-in for the authentication backend. It
// serves the same login contract the client consumes, for demos and tests.
package devserver

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"
)

const (
	LoginPath  = "/api/auth/login"
	HealthPath = "/health"

	DefaultTokenTTL = time.Hour
)

// Seed is a user known to the server.
type Seed struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// ParseSeed reads "name:email:password". The password may contain colons.
func ParseSeed(s string) (Seed, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 3)
	if len(parts) != 3 {
		return Seed{}, oops.In("devserver").Code("devserver.seed").Errorf("seed %q: want name:email:password", s)
	}
	seed := Seed{Name: strings.TrimSpace(parts[0]), Email: strings.TrimSpace(parts[1]), Password: parts[2]}
	if err := validate.Struct(seed); err != nil {
		return Seed{}, oops.In("devserver").Code("devserver.seed").With("email", seed.Email).Wrap(err)
	}
	return seed, nil
}

type Config struct {
	Seeds []Seed
	// Secret signs issued tokens; a random one is generated when empty.
	Secret   []byte
	TokenTTL time.Duration
	Logger   zerolog.Logger
	// Cost is the bcrypt cost; tests lower it.
	Cost int
}

type userRecord struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	passwordHash []byte
}

type Server struct {
	mu    sync.RWMutex
	users map[string]userRecord

	secret []byte
	ttl    time.Duration
	log    zerolog.Logger
	cost   int
	now    func() time.Time
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func New(cfg Config) (*Server, error) {
	s := &Server{
		users:  map[string]userRecord{},
		secret: cfg.Secret,
		ttl:    cfg.TokenTTL,
		log:    cfg.Logger.With().Str("component", "devserver").Logger(),
		cost:   cfg.Cost,
		now:    time.Now,
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTokenTTL
	}
	if s.cost == 0 {
		s.cost = bcrypt.DefaultCost
	}
	if len(s.secret) == 0 {
		s.secret = make([]byte, 32)
		if _, err := rand.Read(s.secret); err != nil {
			return nil, oops.In("devserver").Code("devserver.secret").Wrap(err)
		}
	}
	for _, seed := range cfg.Seeds {
		if err := s.AddUser(seed); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// AddUser registers a user, replacing any user with the same email.
func (s *Server) AddUser(seed Seed) error {
	if err := validate.Struct(seed); err != nil {
		return oops.In("devserver").Code("devserver.seed").With("email", seed.Email).Wrap(err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), s.cost)
	if err != nil {
		return oops.In("devserver").Code("devserver.hash").Wrap(err)
	}
	key := emailKey(seed.Email)
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	if prev, ok := s.users[key]; ok {
		id = prev.ID
	}
	s.users[key] = userRecord{ID: id, Name: seed.Name, Email: strings.TrimSpace(seed.Email), passwordHash: hash}
	return nil
}

// Emails lists the seeded accounts, sorted.
func (s *Server) Emails() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.Email)
	}
	slices.Sort(out)
	return out
}

func emailKey(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc(LoginPath, s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc(HealthPath, s.handleHealth).Methods(http.MethodGet)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
	})
	// mux runs r.Use middleware only for matched routes, so 404 and 405 would
	// go unlogged.
	return s.logRequests(r)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string     `json:"token"`
	User  userRecord `json:"user"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed request body"})
		return
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "email and password are required"})
		return
	}

	s.mu.RLock()
	u, ok := s.users[emailKey(req.Email)]
	s.mu.RUnlock()
	if !ok || bcrypt.CompareHashAndPassword(u.passwordHash, []byte(req.Password)) != nil {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Invalid email or password"})
		return
	}

	token, err := s.issueToken(u)
	if err != nil {
		s.log.Error().Err(err).Msg("issue token")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: u})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Claims are the claims carried by issued tokens.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwtlib.RegisteredClaims
}

func (s *Server) issueToken(u userRecord) (string, error) {
	now := s.now()
	claims := Claims{
		Email: u.Email,
		Name:  u.Name,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    "usermanager-devserver",
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.secret)
}

// ParseToken verifies a token issued by this server.
func (s *Server) ParseToken(token string) (*Claims, error) {
	var claims Claims
	_, err := jwtlib.ParseWithClaims(token, &claims, func(t *jwtlib.Token) (any, error) {
		if t.Method != jwtlib.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwtlib.WithTimeFunc(s.now))
	if err != nil {
		return nil, oops.In("devserver").Code("devserver.token").Wrap(err)
	}
	return &claims, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Str("request_id", r.Header.Get("X-Request-ID")).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

