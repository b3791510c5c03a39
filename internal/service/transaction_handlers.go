package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fincast/fincast/internal/auth"
	"github.com/fincast/fincast/internal/model"
	"github.com/fincast/fincast/internal/store"
)

const dateLayout = "2006-01-02"

func (s *FinanceService) HandleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var txn model.Transaction
	if !decodeBody(w, r, &txn) {
		return
	}
	if !txn.Type.Valid() {
		writeError(w, http.StatusBadRequest, "type must be INCOME, EXPENSE, or TRANSFER")
		return
	}
	if txn.Amount < 0 {
		writeError(w, http.StatusBadRequest, "amount must be non-negative")
		return
	}
	if txn.Date.IsZero() {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}

	now := time.Now().UTC()
	txn.ID = ""
	txn.UserID = auth.UserID(r.Context())
	txn.CreatedAt = now
	txn.UpdatedAt = now
	if err := s.store.CreateTransaction(r.Context(), &txn); err != nil {
		s.storeError(w, err)
		return
	}
	s.invalidateInsights(txn.UserID)
	writeJSON(w, http.StatusCreated, txn)
}

type listTransactionsResponse struct {
	Transactions  []*model.Transaction `json:"transactions"`
	NextPageToken string               `json:"nextPageToken,omitempty"`
}

func (s *FinanceService) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var filter store.TransactionFilter
	filter.AccountID = q.Get("accountId")
	filter.CategoryID = q.Get("categoryId")
	if typ := q.Get("type"); typ != "" {
		t := model.TransactionType(typ)
		if !t.Valid() {
			writeError(w, http.StatusBadRequest, "unknown transaction type")
			return
		}
		filter.Type = t
	}
	if from := q.Get("from"); from != "" {
		t, err := time.Parse(dateLayout, from)
		if err != nil {
			writeError(w, http.StatusBadRequest, "from must be YYYY-MM-DD")
			return
		}
		filter.StartDate = &t
	}
	if to := q.Get("to"); to != "" {
		t, err := time.Parse(dateLayout, to)
		if err != nil {
			writeError(w, http.StatusBadRequest, "to must be YYYY-MM-DD")
			return
		}
		filter.EndDate = &t
	}

	pageSize := int32(0)
	if raw := q.Get("pageSize"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "pageSize must be a non-negative integer")
			return
		}
		pageSize = int32(n)
	}

	txns, nextToken, err := s.store.ListTransactions(r.Context(), auth.UserID(r.Context()), filter, pageSize, q.Get("pageToken"))
	if err != nil {
		s.storeError(w, err)
		return
	}
	if txns == nil {
		txns = []*model.Transaction{}
	}
	writeJSON(w, http.StatusOK, listTransactionsResponse{Transactions: txns, NextPageToken: nextToken})
}

func (s *FinanceService) HandleGetTransaction(w http.ResponseWriter, r *http.Request) {
	txn, ok := s.ownedTransaction(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

func (s *FinanceService) HandleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	existing, ok := s.ownedTransaction(w, r)
	if !ok {
		return
	}

	var update model.Transaction
	if !decodeBody(w, r, &update) {
		return
	}
	if !update.Type.Valid() {
		writeError(w, http.StatusBadRequest, "type must be INCOME, EXPENSE, or TRANSFER")
		return
	}
	if update.Amount < 0 {
		writeError(w, http.StatusBadRequest, "amount must be non-negative")
		return
	}

	existing.AccountID = update.AccountID
	existing.CategoryID = update.CategoryID
	existing.Payee = update.Payee
	existing.Description = update.Description
	existing.Amount = update.Amount
	existing.Type = update.Type
	if !update.Date.IsZero() {
		existing.Date = update.Date
	}
	existing.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateTransaction(r.Context(), existing); err != nil {
		s.storeError(w, err)
		return
	}
	s.invalidateInsights(existing.UserID)
	writeJSON(w, http.StatusOK, existing)
}

func (s *FinanceService) HandleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.ownedTransaction(w, r); !ok {
		return
	}
	if err := s.store.DeleteTransaction(r.Context(), chi.URLParam(r, "transactionID")); err != nil {
		s.storeError(w, err)
		return
	}
	s.invalidateInsights(auth.UserID(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

func (s *FinanceService) ownedTransaction(w http.ResponseWriter, r *http.Request) (*model.Transaction, bool) {
	txn, err := s.store.GetTransaction(r.Context(), chi.URLParam(r, "transactionID"))
	if err != nil {
		s.storeError(w, err)
		return nil, false
	}
	if txn.UserID != auth.UserID(r.Context()) {
		writeError(w, http.StatusNotFound, "transaction not found")
		return nil, false
	}
	return txn, true
}
