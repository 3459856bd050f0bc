// Package debugserver exposes ADSC's debug dump (spec.md §6) and a small
// control surface over HTTP: a gorilla/mux router serving /debug,
// /evaluate, /validation-failed, and /health, with all but /health guarded
// by a bcrypt-hashed bearer key rather than a raw string compare.
package debugserver

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/sim-autonomy/adsc/pkg/adsc"
	"github.com/sim-autonomy/adsc/pkg/engine"
	"github.com/sim-autonomy/adsc/pkg/logx"
)

// Server serves the debug/control HTTP surface.
type Server struct {
	engine      *engine.Engine
	logger      *logx.Logger
	authKeyHash []byte
	router      *mux.Router
}

// New creates a Server. authKey, if non-empty, is hashed with bcrypt and
// required as a Bearer token on every route except /health; an empty authKey disables
// authentication (intended for local/dev use only).
func New(eng *engine.Engine, logger *logx.Logger, authKey string) (*Server, error) {
	s := &Server{engine: eng, logger: logger}

	if authKey != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(authKey), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		s.authKeyHash = hash
	}

	r := mux.NewRouter()
	r.HandleFunc("/debug", s.authenticate(s.handleDebug)).Methods(http.MethodGet)
	r.HandleFunc("/evaluate", s.authenticate(s.handleEvaluate)).Methods(http.MethodPost)
	r.HandleFunc("/validation-failed", s.authenticate(s.handleValidationFailed)).Methods(http.MethodPost)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router = r

	return s, nil
}

// Handler returns the HTTP handler to mount (e.g. via http.ListenAndServe).
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(s.authKeyHash) == 0 {
			next(w, r)
			return
		}

		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" || bcrypt.CompareHashAndPassword(s.authKeyHash, []byte(token)) != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleDebug(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(s.engine.Debug()))
}

// handleEvaluate triggers a manual re-evaluation, mirroring adscctl's
// operator-facing "re-check now" command.
func (s *Server) handleEvaluate(w http.ResponseWriter, _ *http.Request) {
	s.engine.PostEvent(adsc.Evaluate("manual"))
	w.WriteHeader(http.StatusAccepted)
}

// handleValidationFailed is the Switcher's feedback hook for a failed
// validation attempt (spec.md §4.4, §6), reachable over HTTP for Switchers
// that run out-of-process from adscd.
func (s *Server) handleValidationFailed(w http.ResponseWriter, _ *http.Request) {
	s.engine.OnValidationFailed()
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
