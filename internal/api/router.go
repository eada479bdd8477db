package api

import (
	"net/http"
	"strings"

	"github.com/SkyOps/skyops/internal/auth"
	"github.com/SkyOps/skyops/internal/controller"
	"log/slog"
)

// SetupRoutes configures all API routes
func SetupRoutes(mux *http.ServeMux, ctrl *controller.Controller, authConfig auth.Config, topN int, logger *slog.Logger) {
	handler := NewHandler(ctrl, topN, logger)
	authHandler := NewAuthHandler(authConfig, logger)

	authMiddleware := auth.Middleware(authConfig)

	// Authentication routes
	mux.HandleFunc("/api/auth/login", authHandler.Login)
	mux.HandleFunc("/api/auth/validate", func(w http.ResponseWriter, r *http.Request) {
		authMiddleware(http.HandlerFunc(authHandler.ValidateToken)).ServeHTTP(w, r)
	})

	// Fleet routes (public for reading)
	mux.HandleFunc("/api/pilots", handler.GetPilotsHandler)
	mux.HandleFunc("/api/drones", handler.GetDronesHandler)
	mux.HandleFunc("/api/missions", handler.GetMissionsHandler)

	// Bulk assignment (requires auth); registered before the subtree so the
	// exact pattern wins over /api/missions/
	mux.HandleFunc("/api/missions/assign-all", func(w http.ResponseWriter, r *http.Request) {
		authMiddleware(http.HandlerFunc(handler.AssignAllHandler)).ServeHTTP(w, r)
	})

	// Per-mission routes
	mux.HandleFunc("/api/missions/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/missions/" {
			http.NotFound(w, r)
			return
		}

		// Mutating operations require auth
		if r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/assign") {
			authMiddleware(http.HandlerFunc(handler.AssignMissionHandler)).ServeHTTP(w, r)
			return
		}
		if r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/reassign") {
			authMiddleware(http.HandlerFunc(handler.ReassignMissionHandler)).ServeHTTP(w, r)
			return
		}

		// Read-only analysis
		if r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/recommendations") {
			handler.GetRecommendationsHandler(w, r)
			return
		}
		if r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/conflicts") {
			handler.GetConflictsHandler(w, r)
			return
		}

		http.Error(w, "Not found", http.StatusNotFound)
	})

	// Assignment reporting routes
	mux.HandleFunc("/api/assignments", handler.GetAssignmentsHandler)
	mux.HandleFunc("/api/assignments/history", handler.GetHistoryHandler)

	// Reassignment routes
	mux.HandleFunc("/api/reassignments/run", func(w http.ResponseWriter, r *http.Request) {
		authMiddleware(http.HandlerFunc(handler.RunReassignmentsHandler)).ServeHTTP(w, r)
	})
	mux.HandleFunc("/api/reassignments/log", handler.GetReassignmentLogHandler)

	// System routes
	mux.HandleFunc("/api/status", handler.GetStatusHandler)
	mux.HandleFunc("/api/refresh", func(w http.ResponseWriter, r *http.Request) {
		authMiddleware(http.HandlerFunc(handler.RefreshHandler)).ServeHTTP(w, r)
	})
	mux.HandleFunc("/healthz", handler.HealthHandler)
}
