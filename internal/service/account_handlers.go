package service

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fincast/fincast/internal/auth"
	"github.com/fincast/fincast/internal/model"
)

func (s *FinanceService) HandleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var account model.Account
	if !decodeBody(w, r, &account) {
		return
	}
	if account.Name == "" {
		writeError(w, http.StatusBadRequest, "account name is required")
		return
	}

	now := time.Now().UTC()
	account.ID = ""
	account.UserID = auth.UserID(r.Context())
	account.CreatedAt = now
	account.UpdatedAt = now
	if err := s.store.CreateAccount(r.Context(), &account); err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

func (s *FinanceService) HandleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.store.ListAccounts(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		s.storeError(w, err)
		return
	}
	if accounts == nil {
		accounts = []*model.Account{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (s *FinanceService) HandleGetAccount(w http.ResponseWriter, r *http.Request) {
	account, ok := s.ownedAccount(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *FinanceService) HandleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	existing, ok := s.ownedAccount(w, r)
	if !ok {
		return
	}

	var update model.Account
	if !decodeBody(w, r, &update) {
		return
	}
	existing.Name = update.Name
	existing.Kind = update.Kind
	existing.OpeningBalance = update.OpeningBalance
	existing.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateAccount(r.Context(), existing); err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, existing)
}

func (s *FinanceService) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.ownedAccount(w, r); !ok {
		return
	}
	if err := s.store.DeleteAccount(r.Context(), chi.URLParam(r, "accountID")); err != nil {
		s.storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ownedAccount loads the path account and verifies it belongs to the caller.
// Foreign records 404 rather than 403 so IDs are not probeable.
func (s *FinanceService) ownedAccount(w http.ResponseWriter, r *http.Request) (*model.Account, bool) {
	account, err := s.store.GetAccount(r.Context(), chi.URLParam(r, "accountID"))
	if err != nil {
		s.storeError(w, err)
		return nil, false
	}
	if account.UserID != auth.UserID(r.Context()) {
		writeError(w, http.StatusNotFound, "account not found")
		return nil, false
	}
	return account, true
}
