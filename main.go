package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/tradefolio/backend/src/config"
	"github.com/username/tradefolio/backend/src/database"
	"github.com/username/tradefolio/backend/src/handlers"
	"github.com/username/tradefolio/backend/src/logger"
	"github.com/username/tradefolio/backend/src/parsers"
	"github.com/username/tradefolio/backend/src/processors"
	"github.com/username/tradefolio/backend/src/security"
	"github.com/username/tradefolio/backend/src/services"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:3000": true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Requested-With, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "ETag")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Tradefolio backend server starting...")

	if config.Cfg.JWTSecret == "" || len(config.Cfg.JWTSecret) < 32 {
		logger.L.Error("JWT_SECRET configuration invalid. Must be at least 32 bytes.")
		os.Exit(1)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	reportCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)

	logger.L.Info("Initializing services and handlers...")
	authService := security.NewAuthService(config.Cfg.JWTSecret)
	userHandler := handlers.NewUserHandler(authService)

	importService := services.NewImportService(
		parsers.NewTSVParser(),
		processors.NewTradeConsolidator(),
		processors.NewPnlWindowCalculator(),
		processors.NewWinLossCalculator(),
		processors.NewPnlSummaryCalculator(),
		reportCache,
	)

	uploadHandler := handlers.NewUploadHandler(importService)
	tradeHandler := handlers.NewTradeHandler(importService)
	analyticsHandler := handlers.NewAnalyticsHandler(importService)
	ruleHandler := handlers.NewRuleHandler(services.NewRuleService())

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	apiRouter.HandleFunc("POST /api/auth/register", userHandler.RegisterUserHandler)
	apiRouter.HandleFunc("POST /api/auth/login", userHandler.LoginUserHandler)
	apiRouter.Handle("POST /api/auth/logout", userHandler.AuthMiddleware(http.HandlerFunc(userHandler.LogoutUserHandler)))
	apiRouter.Handle("GET /api/auth/profile", userHandler.AuthMiddleware(http.HandlerFunc(userHandler.ProfileHandler)))

	withAuth := func(handler http.HandlerFunc) http.Handler {
		return userHandler.AuthMiddleware(handler)
	}

	apiRouter.Handle("POST /api/trades/upload", withAuth(uploadHandler.HandleUpload))
	apiRouter.Handle("GET /api/trades", withAuth(tradeHandler.HandleGetTrades))
	apiRouter.Handle("GET /api/trades/{id}", withAuth(tradeHandler.HandleGetTradeByID))
	apiRouter.Handle("DELETE /api/trades", withAuth(tradeHandler.HandleDeleteAllTrades))
	apiRouter.Handle("GET /api/analytics/pnl-windows", withAuth(analyticsHandler.HandleGetPnlWindows))
	apiRouter.Handle("GET /api/analytics/winloss", withAuth(analyticsHandler.HandleGetWinLossRatio))
	apiRouter.Handle("GET /api/analytics/pnl-summary", withAuth(analyticsHandler.HandleGetPnlSummary))
	apiRouter.Handle("GET /api/analytics/total-pnl", withAuth(analyticsHandler.HandleGetTotalPnl))
	apiRouter.Handle("POST /api/rule-lists", withAuth(ruleHandler.HandleCreateRuleList))
	apiRouter.Handle("GET /api/rule-lists", withAuth(ruleHandler.HandleGetRuleLists))
	apiRouter.Handle("GET /api/rule-lists/disabled", withAuth(ruleHandler.HandleGetDisabledRuleLists))
	apiRouter.Handle("GET /api/rule-lists/{id}", withAuth(ruleHandler.HandleGetRuleListByID))
	apiRouter.Handle("PUT /api/rule-lists/{id}", withAuth(ruleHandler.HandleUpdateRuleList))
	apiRouter.Handle("PUT /api/rule-lists/{id}/disable", withAuth(ruleHandler.HandleDisableRuleList))

	rootMux.Handle("/api/", apiRouter)

	rootMux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "TRADEFOLIO Backend is running"})
		} else if !strings.HasPrefix(r.URL.Path, "/api/") {
			logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
			http.NotFound(w, r)
		}
	})

	logger.L.Info("Applying global middleware...")
	finalHandler := enableCORS(rateLimitMiddleware(rootMux))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
