package main

import (
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/branyang02/smart-oh-ws-server/internal/auth"
	"github.com/branyang02/smart-oh-ws-server/internal/config"
	"github.com/branyang02/smart-oh-ws-server/internal/database"
	"github.com/branyang02/smart-oh-ws-server/internal/handlers"
	ws "github.com/branyang02/smart-oh-ws-server/internal/websocket"
	"github.com/branyang02/smart-oh-ws-server/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize the auth provider's database. Without a DATABASE_URL the
	// server still runs, accepting dev tokens only.
	var db database.Database
	if cfg.Database.URL != "" {
		pg, err := database.NewPostgresDB(cfg.Database.URL)
		if err != nil {
			logger.Fatal("Failed to connect to database: %v", err)
		}
		defer pg.Close()
		db = pg
	} else {
		logger.Info("No DATABASE_URL set; running with dev-token auth only")
	}

	if db == nil && len(cfg.JWT.Secret) == 0 {
		logger.Fatal("Neither DATABASE_URL nor JWT_SECRET is set; no way to authenticate connections")
	}

	// Initialize services
	authService := auth.NewService(db, cfg)

	// Initialize the per-class room hubs
	hubManager := ws.NewManager()

	// Initialize handlers
	wsHandlers := handlers.NewWebSocketHandlers(authService, hubManager, cfg.Server.AllowedOrigins)
	httpHandlers := handlers.NewHTTPHandlers(authService, hubManager)

	// Setup routes
	mux := http.NewServeMux()
	mux.HandleFunc("/", httpHandlers.Home)
	mux.HandleFunc("/classes/", httpHandlers.ClassState)
	mux.HandleFunc("/ws/", wsHandlers.HandleWebSocket)

	// Create server
	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      corsMiddleware(mux, cfg.Server.AllowedOrigins),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	logger.Info("Server started on http://localhost%s", cfg.Server.Port)
	logger.Info("WebSocket endpoint: ws://localhost%s/ws/{class_id}", cfg.Server.Port)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Server shutting down...")
}

func corsMiddleware(next http.Handler, allowedOrigins []string) http.Handler {
	allowAll := false
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case allowAll:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "":
			for _, o := range allowedOrigins {
				if strings.EqualFold(o, origin) {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
