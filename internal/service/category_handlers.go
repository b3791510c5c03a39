package service

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fincast/fincast/internal/auth"
	"github.com/fincast/fincast/internal/model"
)

func (s *FinanceService) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var category model.Category
	if !decodeBody(w, r, &category) {
		return
	}
	if category.Name == "" {
		writeError(w, http.StatusBadRequest, "category name is required")
		return
	}

	now := time.Now().UTC()
	category.ID = ""
	category.UserID = auth.UserID(r.Context())
	category.CreatedAt = now
	category.UpdatedAt = now
	if err := s.store.CreateCategory(r.Context(), &category); err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (s *FinanceService) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.store.ListCategories(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		s.storeError(w, err)
		return
	}
	if categories == nil {
		categories = []*model.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *FinanceService) HandleGetCategory(w http.ResponseWriter, r *http.Request) {
	category, ok := s.ownedCategory(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (s *FinanceService) HandleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	existing, ok := s.ownedCategory(w, r)
	if !ok {
		return
	}

	var update model.Category
	if !decodeBody(w, r, &update) {
		return
	}
	existing.Name = update.Name
	existing.Kind = update.Kind
	existing.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateCategory(r.Context(), existing); err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, existing)
}

func (s *FinanceService) HandleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.ownedCategory(w, r); !ok {
		return
	}
	if err := s.store.DeleteCategory(r.Context(), chi.URLParam(r, "categoryID")); err != nil {
		s.storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *FinanceService) ownedCategory(w http.ResponseWriter, r *http.Request) (*model.Category, bool) {
	category, err := s.store.GetCategory(r.Context(), chi.URLParam(r, "categoryID"))
	if err != nil {
		s.storeError(w, err)
		return nil, false
	}
	if category.UserID != auth.UserID(r.Context()) {
		writeError(w, http.StatusNotFound, "category not found")
		return nil, false
	}
	return category, true
}
