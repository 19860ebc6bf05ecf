package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"filmcraft-chat/internal/config"
	"filmcraft-chat/internal/gateway"
	"filmcraft-chat/internal/handlers"
	"filmcraft-chat/internal/invite"
	"filmcraft-chat/internal/metrics"
	"filmcraft-chat/internal/roster"
	"filmcraft-chat/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Roster store (read-only view of the production document store)
	store, err := roster.NewPostgresStore(cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to roster database: %v", err)
	}
	defer store.Close()

	// Chat gateway: one event loop owns all room and presence state
	gw := gateway.New()
	go gw.Run()
	defer gw.Shutdown()

	// Services and handlers
	inviteService := invite.NewService(cfg)
	wsHandlers := handlers.NewWebSocketHandlers(gw)
	rosterHandlers := handlers.NewRosterHandlers(store)
	inviteHandlers := handlers.NewInviteHandlers(inviteService)

	// Setup routes
	mux := http.NewServeMux()
	setupRoutes(mux, wsHandlers, rosterHandlers, inviteHandlers)

	// Create server
	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      corsMiddleware(mux),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	logger.Info("🎬 Chat server started on http://localhost%s", cfg.Server.Port)
	logger.Info("📡 WebSocket endpoint: ws://localhost%s/ws", cfg.Server.Port)
	printAPIEndpoints()

	// Graceful shutdown
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

func setupRoutes(mux *http.ServeMux, wsHandlers *handlers.WebSocketHandlers, rosterHandlers *handlers.RosterHandlers, inviteHandlers *handlers.InviteHandlers) {
	// WebSocket route
	mux.HandleFunc("/ws", wsHandlers.HandleWebSocket)

	// Crew roster for the identity picker and DM targets
	mux.HandleFunc("/roster", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		rosterHandlers.ListCrew(w, r)
	})

	// Invite links
	mux.HandleFunc("/invites", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		inviteHandlers.CreateInvite(w, r)
	})
	mux.HandleFunc("/invites/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		inviteHandlers.ResolveInvite(w, r)
	})

	// Operational endpoints
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func printAPIEndpoints() {
	logger.Info("🔗 API endpoints:")
	logger.Info("   GET  /roster?projectId=")
	logger.Info("   POST /invites")
	logger.Info("   GET  /invites/{token}")
	logger.Info("   GET  /metrics")
	logger.Info("   GET  /health")
}
