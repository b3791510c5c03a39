package service

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fincast/fincast/internal/auth"
	"github.com/fincast/fincast/internal/model"
)

func (s *FinanceService) HandleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var budget model.Budget
	if !decodeBody(w, r, &budget) {
		return
	}
	if budget.Name == "" {
		writeError(w, http.StatusBadRequest, "budget name is required")
		return
	}
	if budget.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "budget amount must be positive")
		return
	}
	if !budget.EndDate.After(budget.StartDate) {
		writeError(w, http.StatusBadRequest, "endDate must be after startDate")
		return
	}

	now := time.Now().UTC()
	budget.ID = ""
	budget.UserID = auth.UserID(r.Context())
	budget.IsActive = true
	budget.CreatedAt = now
	budget.UpdatedAt = now
	if err := s.store.CreateBudget(r.Context(), &budget); err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, budget)
}

type listBudgetsResponse struct {
	Budgets       []*model.Budget `json:"budgets"`
	NextPageToken string          `json:"nextPageToken,omitempty"`
}

func (s *FinanceService) HandleListBudgets(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("includeInactive") == "true"
	budgets, nextToken, err := s.store.ListBudgets(r.Context(), auth.UserID(r.Context()), includeInactive, 0, r.URL.Query().Get("pageToken"))
	if err != nil {
		s.storeError(w, err)
		return
	}
	if budgets == nil {
		budgets = []*model.Budget{}
	}
	writeJSON(w, http.StatusOK, listBudgetsResponse{Budgets: budgets, NextPageToken: nextToken})
}

func (s *FinanceService) HandleGetBudget(w http.ResponseWriter, r *http.Request) {
	budget, ok := s.ownedBudget(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, budget)
}

func (s *FinanceService) HandleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	existing, ok := s.ownedBudget(w, r)
	if !ok {
		return
	}

	var update model.Budget
	if !decodeBody(w, r, &update) {
		return
	}
	existing.Name = update.Name
	existing.CategoryIDs = update.CategoryIDs
	existing.Amount = update.Amount
	existing.StartDate = update.StartDate
	existing.EndDate = update.EndDate
	existing.IsActive = update.IsActive
	existing.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateBudget(r.Context(), existing); err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, existing)
}

func (s *FinanceService) HandleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.ownedBudget(w, r); !ok {
		return
	}
	if err := s.store.DeleteBudget(r.Context(), chi.URLParam(r, "budgetID")); err != nil {
		s.storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *FinanceService) HandleGetBudgetProgress(w http.ResponseWriter, r *http.Request) {
	budget, ok := s.ownedBudget(w, r)
	if !ok {
		return
	}
	progress, err := s.store.GetBudgetProgress(r.Context(), budget.ID, time.Now().UTC())
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (s *FinanceService) ownedBudget(w http.ResponseWriter, r *http.Request) (*model.Budget, bool) {
	budget, err := s.store.GetBudget(r.Context(), chi.URLParam(r, "budgetID"))
	if err != nil {
		s.storeError(w, err)
		return nil, false
	}
	if budget.UserID != auth.UserID(r.Context()) {
		writeError(w, http.StatusNotFound, "budget not found")
		return nil, false
	}
	return budget, true
}
