package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/SkyOps/skyops/internal/controller"
	"log/slog"
)

type Handler struct {
	controller *controller.Controller
	logger     *slog.Logger
	topN       int
	startTime  time.Time
}

func NewHandler(ctrl *controller.Controller, topN int, logger *slog.Logger) *Handler {
	return &Handler{
		controller: ctrl,
		logger:     logger,
		topN:       topN,
		startTime:  time.Now(),
	}
}

// GetPilotsHandler handles GET /api/pilots
func (h *Handler) GetPilotsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	pilots := h.controller.Pilots()
	writeJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"pilots": pilots,
		"count":  len(pilots),
	})
}

// GetDronesHandler handles GET /api/drones
func (h *Handler) GetDronesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	drones := h.controller.Drones()
	writeJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"drones": drones,
		"count":  len(drones),
	})
}

// GetMissionsHandler handles GET /api/missions
func (h *Handler) GetMissionsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	missions := h.controller.Missions()
	writeJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"missions": missions,
		"count":    len(missions),
	})
}

// AssignMissionHandler handles POST /api/missions/:id/assign
func (h *Handler) AssignMissionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	missionID := pathSegment(r.URL.Path, 3)
	if missionID == "" {
		http.Error(w, "Mission ID required", http.StatusBadRequest)
		return
	}

	result, err := h.controller.ProcessMissionAssignment(r.Context(), missionID)
	if err != nil {
		h.logger.Error("assignment failed", "mission_id", missionID, "error", err)
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	status := http.StatusOK
	if result.Status != controller.OutcomeAssigned {
		status = http.StatusConflict
	}
	writeJSON(w, h.logger, status, result)
}

// AssignAllHandler handles POST /api/missions/assign-all
func (h *Handler) AssignAllHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	results := h.controller.ProcessUnassignedMissions(r.Context())
	assigned := 0
	for _, res := range results {
		if res.Status == controller.OutcomeAssigned {
			assigned++
		}
	}

	writeJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"processed": len(results),
		"assigned":  assigned,
		"results":   results,
	})
}

// GetRecommendationsHandler handles GET /api/missions/:id/recommendations
func (h *Handler) GetRecommendationsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	missionID := pathSegment(r.URL.Path, 3)
	if missionID == "" {
		http.Error(w, "Mission ID required", http.StatusBadRequest)
		return
	}

	topN := h.topN
	if v := r.URL.Query().Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "Invalid top parameter", http.StatusBadRequest)
			return
		}
		topN = n
	}

	rec, err := h.controller.RecommendAssignments(missionID, topN)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, rec)
}

// GetConflictsHandler handles GET /api/missions/:id/conflicts
func (h *Handler) GetConflictsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	missionID := pathSegment(r.URL.Path, 3)
	if missionID == "" {
		http.Error(w, "Mission ID required", http.StatusBadRequest)
		return
	}

	report, err := h.controller.AnalyzeMissionConflicts(missionID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, report)
}

// ReassignMissionHandler handles POST /api/missions/:id/reassign
func (h *Handler) ReassignMissionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	missionID := pathSegment(r.URL.Path, 3)
	if missionID == "" {
		http.Error(w, "Mission ID required", http.StatusBadRequest)
		return
	}

	result, err := h.controller.HandleUrgentReassignment(r.Context(), missionID)
	if err != nil {
		h.logger.Error("reassignment failed", "mission_id", missionID, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, result)
}

// RunReassignmentsHandler handles POST /api/reassignments/run
func (h *Handler) RunReassignmentsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	summary, err := h.controller.HandleAllUrgentReassignments(r.Context())
	if err != nil {
		h.logger.Error("reassignment scan failed", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, summary)
}

// GetReassignmentLogHandler handles GET /api/reassignments/log
func (h *Handler) GetReassignmentLogHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	log := h.controller.ReassignmentLog()
	writeJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"entries": log,
		"count":   len(log),
	})
}

// GetAssignmentsHandler handles GET /api/assignments
func (h *Handler) GetAssignmentsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, h.controller.AssignmentReport())
}

// GetHistoryHandler handles GET /api/assignments/history
func (h *Handler) GetHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "Invalid limit parameter", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries := h.controller.History(limit)
	writeJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	})
}

// GetStatusHandler handles GET /api/status
func (h *Handler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, h.controller.Status())
}

// RefreshHandler handles POST /api/refresh
func (h *Handler) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.controller.Refresh(r.Context()); err != nil {
		h.logger.Error("roster refresh failed", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]string{"status": "refreshed"})
}

// HealthHandler handles GET /healthz
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(h.startTime).String(),
	})
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

// pathSegment returns the nth slash-separated segment of the path, or the
// empty string if the path is shorter.
func pathSegment(path string, n int) string {
	parts := strings.Split(path, "/")
	if len(parts) <= n {
		return ""
	}
	return parts[n]
}
