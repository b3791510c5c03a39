package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/time/rate"

	"github.com/fincast/fincast/internal/auth"
	"github.com/fincast/fincast/internal/config"
	"github.com/fincast/fincast/internal/logger"
	"github.com/fincast/fincast/internal/service"
	"github.com/fincast/fincast/internal/store"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded", "method", r.Method, "path", r.URL.Path, "remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Fincast server starting...")

	if len(config.Cfg.JWTSecret) < 32 {
		log.Fatal("JWT_SECRET must be at least 32 bytes")
	}

	var storeImpl store.Store
	if config.Cfg.UseMemoryStore {
		logger.L.Info("Using in-memory store for local development")
		storeImpl = store.NewMemoryStore()
	} else {
		sqliteStore, err := store.NewSQLiteStore(config.Cfg.DatabasePath)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer sqliteStore.Close()
		logger.L.Info("Database initialized", "path", config.Cfg.DatabasePath)
		storeImpl = sqliteStore
	}

	authService := auth.NewAuthService(config.Cfg.JWTSecret, config.Cfg.AccessTokenExpiry)
	insightsCache := cache.New(config.Cfg.InsightsCacheTTL, 2*config.Cfg.InsightsCacheTTL)
	emailService := service.NewEmailService(service.MailgunConfig{
		Domain:        config.Cfg.MailgunDomain,
		PrivateAPIKey: config.Cfg.MailgunPrivateAPIKey,
		SenderEmail:   config.Cfg.SenderEmail,
		SenderName:    config.Cfg.SenderName,
	}, logger.L)

	financeService := service.NewFinanceService(storeImpl, authService, insightsCache, logger.L,
		service.WithEmailService(emailService),
		service.WithDigestToken(config.Cfg.DigestRunToken),
	)

	c := cors.New(cors.Options{
		AllowedOrigins: config.Cfg.CORSAllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Digest-Token"},
		AllowCredentials: true,
	})

	handler := c.Handler(rateLimitMiddleware(financeService.Routes()))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", config.Cfg.Port),
		Handler:      h2c.NewHandler(handler, &http2.Server{}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "port", config.Cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
