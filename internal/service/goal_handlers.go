package service

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fincast/fincast/internal/auth"
	"github.com/fincast/fincast/internal/model"
)

func (s *FinanceService) HandleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var goal model.Goal
	if !decodeBody(w, r, &goal) {
		return
	}
	if goal.Name == "" {
		writeError(w, http.StatusBadRequest, "goal name is required")
		return
	}
	if goal.TargetAmount <= 0 {
		writeError(w, http.StatusBadRequest, "targetAmount must be positive")
		return
	}

	now := time.Now().UTC()
	goal.ID = ""
	goal.UserID = auth.UserID(r.Context())
	if goal.Status == "" {
		goal.Status = model.GoalStatusActive
	}
	if goal.StartDate.IsZero() {
		goal.StartDate = now
	}
	goal.CreatedAt = now
	goal.UpdatedAt = now
	if err := s.store.CreateGoal(r.Context(), &goal); err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, goal)
}

type listGoalsResponse struct {
	Goals         []*model.Goal `json:"goals"`
	NextPageToken string        `json:"nextPageToken,omitempty"`
}

func (s *FinanceService) HandleListGoals(w http.ResponseWriter, r *http.Request) {
	status := model.GoalStatus(r.URL.Query().Get("status"))
	goals, nextToken, err := s.store.ListGoals(r.Context(), auth.UserID(r.Context()), status, 0, r.URL.Query().Get("pageToken"))
	if err != nil {
		s.storeError(w, err)
		return
	}
	if goals == nil {
		goals = []*model.Goal{}
	}
	writeJSON(w, http.StatusOK, listGoalsResponse{Goals: goals, NextPageToken: nextToken})
}

func (s *FinanceService) HandleGetGoal(w http.ResponseWriter, r *http.Request) {
	goal, ok := s.ownedGoal(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

func (s *FinanceService) HandleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	existing, ok := s.ownedGoal(w, r)
	if !ok {
		return
	}

	var update model.Goal
	if !decodeBody(w, r, &update) {
		return
	}
	existing.Name = update.Name
	existing.TargetAmount = update.TargetAmount
	existing.CurrentAmount = update.CurrentAmount
	existing.TargetDate = update.TargetDate
	if update.Status != "" {
		existing.Status = update.Status
	}
	// Hitting the target flips the goal to achieved automatically.
	if existing.TargetAmount > 0 && existing.CurrentAmount >= existing.TargetAmount {
		existing.Status = model.GoalStatusAchieved
	}
	existing.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateGoal(r.Context(), existing); err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, existing)
}

func (s *FinanceService) HandleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.ownedGoal(w, r); !ok {
		return
	}
	if err := s.store.DeleteGoal(r.Context(), chi.URLParam(r, "goalID")); err != nil {
		s.storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *FinanceService) HandleGetGoalProgress(w http.ResponseWriter, r *http.Request) {
	goal, ok := s.ownedGoal(w, r)
	if !ok {
		return
	}
	progress, err := s.store.GetGoalProgress(r.Context(), goal.ID, time.Now().UTC())
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (s *FinanceService) ownedGoal(w http.ResponseWriter, r *http.Request) (*model.Goal, bool) {
	goal, err := s.store.GetGoal(r.Context(), chi.URLParam(r, "goalID"))
	if err != nil {
		s.storeError(w, err)
		return nil, false
	}
	if goal.UserID != auth.UserID(r.Context()) {
		writeError(w, http.StatusNotFound, "goal not found")
		return nil, false
	}
	return goal, true
}
