// Package server exposes the login automation over a small HTTP control
// surface: submit a phone number, poll status, submit the one-time code,
// list persisted accounts.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"telegate/pkg/login"
	"telegate/pkg/store"
)

// LoginService is the slice of the login manager the handlers use.
type LoginService interface {
	Status() string
	SubmitPhone(countryCode, phoneNumber string) (*login.Task, error)
	SubmitCode(code string) (*login.Task, error)
}

// AccountLister reads back persisted account records.
type AccountLister interface {
	List(ctx context.Context) ([]store.AccountRecord, error)
}

// Server wires the control API's handlers together.
type Server struct {
	svc      LoginService
	accounts AccountLister
	webDir   string
	log      *slog.Logger
}

// New creates a server. accounts may be nil when no store is configured;
// webDir may be empty to disable the static pages.
func New(svc LoginService, accounts AccountLister, webDir string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		svc:      svc,
		accounts: accounts,
		webDir:   webDir,
		log:      log.With("component", "server"),
	}
}

// Router builds the route table. OPTIONS is registered on the API routes
// so the CORS middleware can answer preflight requests.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(corsMiddleware)

	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/accounts", s.handleAccounts).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/phone", s.handlePhone).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/code", s.handleCode).Methods(http.MethodPost, http.MethodOptions)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	if s.webDir != "" {
		r.HandleFunc("/", s.servePage("form.html")).Methods(http.MethodGet)
		r.HandleFunc("/home1", s.servePage("home1.html")).Methods(http.MethodGet)
	}

	return r
}

func (s *Server) servePage(name string) http.HandlerFunc {
	path := filepath.Join(s.webDir, name)
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, path)
	}
}

// corsMiddleware sets permissive CORS headers on every response and
// short-circuits preflight requests.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
