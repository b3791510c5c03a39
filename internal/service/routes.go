package service

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes assembles the API router. Everything under /api except auth and the
// digest trigger requires a bearer token.
func (s *FinanceService) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.HandleRegister)
		r.Post("/auth/login", s.HandleLogin)

		r.Post("/digest/run", s.HandleRunDigest)

		r.Group(func(r chi.Router) {
			r.Use(s.auth.Middleware)

			r.Get("/auth/me", s.HandleMe)
			r.Patch("/auth/me", s.HandleUpdateMe)

			r.Route("/accounts", func(r chi.Router) {
				r.Post("/", s.HandleCreateAccount)
				r.Get("/", s.HandleListAccounts)
				r.Get("/{accountID}", s.HandleGetAccount)
				r.Put("/{accountID}", s.HandleUpdateAccount)
				r.Delete("/{accountID}", s.HandleDeleteAccount)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Post("/", s.HandleCreateCategory)
				r.Get("/", s.HandleListCategories)
				r.Get("/{categoryID}", s.HandleGetCategory)
				r.Put("/{categoryID}", s.HandleUpdateCategory)
				r.Delete("/{categoryID}", s.HandleDeleteCategory)
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Post("/", s.HandleCreateTransaction)
				r.Get("/", s.HandleListTransactions)
				r.Get("/{transactionID}", s.HandleGetTransaction)
				r.Put("/{transactionID}", s.HandleUpdateTransaction)
				r.Delete("/{transactionID}", s.HandleDeleteTransaction)
			})

			r.Route("/budgets", func(r chi.Router) {
				r.Post("/", s.HandleCreateBudget)
				r.Get("/", s.HandleListBudgets)
				r.Get("/{budgetID}", s.HandleGetBudget)
				r.Put("/{budgetID}", s.HandleUpdateBudget)
				r.Delete("/{budgetID}", s.HandleDeleteBudget)
				r.Get("/{budgetID}/progress", s.HandleGetBudgetProgress)
			})

			r.Route("/goals", func(r chi.Router) {
				r.Post("/", s.HandleCreateGoal)
				r.Get("/", s.HandleListGoals)
				r.Get("/{goalID}", s.HandleGetGoal)
				r.Put("/{goalID}", s.HandleUpdateGoal)
				r.Delete("/{goalID}", s.HandleDeleteGoal)
				r.Get("/{goalID}/progress", s.HandleGetGoalProgress)
			})

			r.Get("/insights", s.HandleGetInsights)
			r.Get("/insights/advanced", s.HandleGetAdvancedInsights)
		})
	})

	return r
}

func (s *FinanceService) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"requestId", middleware.GetReqID(r.Context()),
		)
	})
}
