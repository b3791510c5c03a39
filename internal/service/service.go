// Package service exposes the HTTP API: authentication, ledger CRUD, and the
// analytics endpoints built on the insights engine.
package service

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/patrickmn/go-cache"

	"github.com/fincast/fincast/internal/auth"
	"github.com/fincast/fincast/internal/store"
)

// FinanceService wires the store, auth, cache, and email delivery behind the
// HTTP handlers.
type FinanceService struct {
	store       store.Store
	auth        *auth.AuthService
	cache       *cache.Cache
	email       EmailService
	log         *slog.Logger
	digestToken string
}

// Option configures optional service collaborators.
type Option func(*FinanceService)

// WithEmailService overrides the digest email sender.
func WithEmailService(email EmailService) Option {
	return func(s *FinanceService) { s.email = email }
}

// WithDigestToken sets the shared secret for the digest trigger endpoint.
func WithDigestToken(token string) Option {
	return func(s *FinanceService) { s.digestToken = token }
}

func NewFinanceService(st store.Store, authService *auth.AuthService, insightsCache *cache.Cache, log *slog.Logger, opts ...Option) *FinanceService {
	s := &FinanceService{
		store: st,
		auth:  authService,
		cache: insightsCache,
		email: &MockEmailService{log: log},
		log:   log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// storeError maps storage failures onto HTTP statuses.
func (s *FinanceService) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.log.Error("store operation failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
