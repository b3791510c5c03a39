package service

import (
	"net/http"
	"strings"
	"time"

	"github.com/fincast/fincast/internal/auth"
	"github.com/fincast/fincast/internal/model"
)

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

const minPasswordLength = 8

// HandleRegister creates a user account and returns a fresh bearer token.
func (s *FinanceService) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	if len(req.Password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		s.log.Error("hashing password", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	now := time.Now().UTC()
	user := &model.User{
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateUser(r.Context(), user); err != nil {
		writeError(w, http.StatusConflict, "an account with that email already exists")
		return
	}

	token, err := s.auth.GenerateToken(user.ID)
	if err != nil {
		s.log.Error("issuing token", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.log.Info("user registered", "userId", user.ID)
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

// HandleLogin exchanges credentials for a bearer token.
func (s *FinanceService) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err := s.auth.CompareHashAndPassword(user.PasswordHash, req.Password); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := s.auth.GenerateToken(user.ID)
	if err != nil {
		s.log.Error("issuing token", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

// HandleMe returns the authenticated user's profile.
func (s *FinanceService) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.GetUser(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type updateProfileRequest struct {
	DisplayName  *string `json:"displayName"`
	WeeklyDigest *bool   `json:"weeklyDigest"`
}

// HandleUpdateMe updates mutable profile fields, including the weekly digest
// opt-in.
func (s *FinanceService) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	user, err := s.store.GetUser(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		s.storeError(w, err)
		return
	}
	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if req.WeeklyDigest != nil {
		user.WeeklyDigest = *req.WeeklyDigest
	}
	user.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateUser(r.Context(), user); err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
