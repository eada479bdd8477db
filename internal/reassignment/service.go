// Package reassignment implements the repair loop for priority missions:
// re-validate existing assignments, and replace the resources held by
// invalid ones through the decision engine and assignment manager.
package reassignment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SkyOps/skyops/internal/assignment"
	"github.com/SkyOps/skyops/internal/conflict"
	"github.com/SkyOps/skyops/internal/decision"
	"github.com/SkyOps/skyops/internal/models"
)

// Service re-validates and repairs priority-mission assignments. It owns the
// append-only reassignment log; every processed mission produces exactly one
// log entry regardless of outcome.
type Service struct {
	store     models.RosterStore
	conflicts *conflict.Engine
	decisions *decision.Engine
	manager   *assignment.Manager
	logger    *slog.Logger
	log       []models.ReassignmentResult
}

// NewService creates the reassignment service. The assignment manager is the
// shared process-wide instance, not a private copy.
func NewService(store models.RosterStore, conflicts *conflict.Engine, decisions *decision.Engine, manager *assignment.Manager, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		conflicts: conflicts,
		decisions: decisions,
		manager:   manager,
		logger:    logger,
	}
}

// Validity is the outcome of re-checking a mission's current assignment.
type Validity struct {
	Valid     bool              `json:"valid"`
	Conflicts []models.Conflict `json:"conflicts"`
	Reason    string            `json:"reason"`
}

// CheckMissionValidity re-validates the resources a mission currently holds.
// Unassigned missions are valid (they are waiting for the general assignment
// workflow, which is not this service's job). The conflict checks run
// without sibling-mission context: the assigned mission is itself the
// reference point here.
func (s *Service) CheckMissionValidity(mission *models.Mission, pilots []models.Pilot, drones []models.Drone) Validity {
	if mission.IsUnassigned() {
		return Validity{Valid: true, Reason: "Mission is unassigned (not yet assigned)"}
	}

	pilot := findPilot(pilots, mission.AssignedPilot)
	drone := findDrone(drones, mission.AssignedDrone)

	if pilot == nil || drone == nil {
		var conflicts []models.Conflict
		if pilot == nil {
			conflicts = append(conflicts, models.Conflict{
				Category:  models.ConflictAvailability,
				Severity:  models.SeverityCritical,
				Code:      models.CodeMissingPilot,
				Message:   fmt.Sprintf("Assigned pilot %s not found in roster", mission.AssignedPilot),
				MissionID: mission.ID,
			})
		}
		if drone == nil {
			conflicts = append(conflicts, models.Conflict{
				Category:  models.ConflictAvailability,
				Severity:  models.SeverityCritical,
				Code:      models.CodeMissingDrone,
				Message:   fmt.Sprintf("Assigned drone %s not found in roster", mission.AssignedDrone),
				MissionID: mission.ID,
			})
		}
		return Validity{
			Valid:     false,
			Conflicts: conflicts,
			Reason:    "Assigned resource not found in current roster",
		}
	}

	pilotConflicts := s.conflicts.CheckPilotAssignment(pilot, mission, nil)
	droneConflicts := s.conflicts.CheckDroneAssignment(drone, mission, nil)

	all := append(pilotConflicts, droneConflicts...)
	return Validity{
		Valid:     len(pilotConflicts) == 0 && len(droneConflicts) == 0,
		Conflicts: all,
		Reason:    fmt.Sprintf("Pilot valid: %t, Drone valid: %t", len(pilotConflicts) == 0, len(droneConflicts) == 0),
	}
}

// HandleUrgentMission re-validates one mission and repairs it if invalid.
// Internal faults are contained here and become an ERROR log entry, so a
// batch scan always continues to the next mission.
func (s *Service) HandleUrgentMission(ctx context.Context, missionID string, pilots []models.Pilot, drones []models.Drone, missions []models.Mission) (result models.ReassignmentResult) {
	defer func() {
		if rec := recover(); rec != nil {
			result = s.append(models.ReassignmentResult{
				Status:    models.ReassignError,
				MissionID: missionID,
				Reason:    fmt.Sprintf("Internal fault during reassignment: %v", rec),
				Timestamp: time.Now(),
			})
		}
	}()

	mission := findMission(missions, missionID)
	if mission == nil {
		return s.append(models.ReassignmentResult{
			Status:    models.ReassignError,
			MissionID: missionID,
			Reason:    fmt.Sprintf("Mission %s not found", missionID),
			Timestamp: time.Now(),
		})
	}

	if !mission.IsPriority() {
		return s.append(models.ReassignmentResult{
			Status:    models.ReassignNoAction,
			MissionID: missionID,
			Priority:  mission.Priority,
			Reason:    "Mission is not high or urgent priority - urgent reassignment not required",
			Timestamp: time.Now(),
		})
	}

	validity := s.CheckMissionValidity(mission, pilots, drones)
	if validity.Valid {
		return s.append(models.ReassignmentResult{
			Status:        models.ReassignNoAction,
			MissionID:     missionID,
			Priority:      mission.Priority,
			PreviousPilot: mission.AssignedPilot,
			PreviousDrone: mission.AssignedDrone,
			Reason:        validity.Reason,
			Timestamp:     time.Now(),
		})
	}

	s.logger.Warn("invalid assignment detected",
		"mission_id", missionID,
		"reason", validity.Reason,
		"conflicts", len(validity.Conflicts),
	)

	// Exclude the currently held resources from the replacement pool.
	candidatePilots := s.manager.AvailablePilots(mission, excludePilot(pilots, mission.AssignedPilot))
	candidateDrones := s.manager.AvailableDrones(mission, excludeDrone(drones, mission.AssignedDrone))

	if len(candidatePilots) == 0 || len(candidateDrones) == 0 {
		return s.append(models.ReassignmentResult{
			Status:        models.ReassignUnassignable,
			MissionID:     missionID,
			Priority:      mission.Priority,
			PreviousPilot: mission.AssignedPilot,
			PreviousDrone: mission.AssignedDrone,
			Conflicts:     validity.Conflicts,
			Reason:        fmt.Sprintf("No available pilots (%d) or drones (%d)", len(candidatePilots), len(candidateDrones)),
			Timestamp:     time.Now(),
		})
	}

	best := s.decisions.FindBestAssignment(mission, candidatePilots, candidateDrones, nil, nil)
	if best == nil {
		return s.append(models.ReassignmentResult{
			Status:        models.ReassignUnassignable,
			MissionID:     missionID,
			Priority:      mission.Priority,
			PreviousPilot: mission.AssignedPilot,
			PreviousDrone: mission.AssignedDrone,
			Conflicts:     validity.Conflicts,
			Reason:        "No suitable replacement assignment found",
			Timestamp:     time.Now(),
		})
	}

	// Build a fresh mission value carrying the new resources; the input
	// snapshot is never mutated in place.
	updated := *mission
	updated.Status = models.MissionAssigned
	updated.AssignedPilot = best.Pilot.ID
	updated.AssignedDrone = best.Drone.ID

	commit := s.manager.Reassign(updated, best.Pilot, best.Drone, best.CombinedScore)
	if !commit.Success {
		return s.append(models.ReassignmentResult{
			Status:        models.ReassignError,
			MissionID:     missionID,
			Priority:      mission.Priority,
			PreviousPilot: mission.AssignedPilot,
			PreviousDrone: mission.AssignedDrone,
			Conflicts:     validity.Conflicts,
			Reason:        fmt.Sprintf("Reassignment rejected: %s", commit.Message),
			Timestamp:     time.Now(),
		})
	}

	// The in-memory state is already committed; a failed roster write
	// leaves the two systems inconsistent until a refresh-and-recheck
	// pass reconciles them.
	if err := s.store.PersistAssignment(ctx, missionID, best.Pilot.ID, best.Drone.ID); err != nil {
		s.logger.Warn("roster write failed after in-memory reassignment",
			"mission_id", missionID,
			"error", err,
		)
	}

	return s.append(models.ReassignmentResult{
		Status:        models.ReassignReassigned,
		MissionID:     missionID,
		Priority:      mission.Priority,
		PreviousPilot: mission.AssignedPilot,
		PreviousDrone: mission.AssignedDrone,
		NewPilot:      best.Pilot.ID,
		NewDrone:      best.Drone.ID,
		PilotScore:    best.PilotScore,
		DroneScore:    best.DroneScore,
		CombinedScore: best.CombinedScore,
		Conflicts:     validity.Conflicts,
		Reason:        fmt.Sprintf("Reassigned due to: %s", describeConflicts(validity.Conflicts)),
		Timestamp:     time.Now(),
	})
}

// HandleAllPriorityMissions scans every High or Urgent mission, repairing
// each as needed. The scan runs to completion for all missions regardless
// of individual failures.
func (s *Service) HandleAllPriorityMissions(ctx context.Context, pilots []models.Pilot, drones []models.Drone, missions []models.Mission) models.ReassignmentSummary {
	summary := models.ReassignmentSummary{Results: []models.ReassignmentResult{}}

	for i := range missions {
		if !missions[i].IsPriority() {
			continue
		}
		summary.TotalChecked++

		result := s.HandleUrgentMission(ctx, missions[i].ID, pilots, drones, missions)
		summary.Results = append(summary.Results, result)

		switch result.Status {
		case models.ReassignReassigned:
			summary.Reassigned++
		case models.ReassignUnassignable:
			summary.Unassignable++
		case models.ReassignNoAction:
			summary.NoAction++
		case models.ReassignError:
			summary.Errors++
		}
	}

	s.logger.Info("urgent reassignment scan complete",
		"total_checked", summary.TotalChecked,
		"reassigned", summary.Reassigned,
		"no_action", summary.NoAction,
		"unassignable", summary.Unassignable,
		"errors", summary.Errors,
	)

	return summary
}

// Log returns all reassignment events recorded so far.
func (s *Service) Log() []models.ReassignmentResult {
	return s.log
}

// ClearLog discards the reassignment log.
func (s *Service) ClearLog() {
	s.log = nil
}

func (s *Service) append(result models.ReassignmentResult) models.ReassignmentResult {
	s.log = append(s.log, result)
	return result
}

func describeConflicts(conflicts []models.Conflict) string {
	if len(conflicts) == 0 {
		return "no recorded conflicts"
	}
	codes := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		codes = append(codes, c.Code)
	}
	return strings.Join(codes, ", ")
}

func findPilot(pilots []models.Pilot, id string) *models.Pilot {
	for i := range pilots {
		if pilots[i].ID == id {
			return &pilots[i]
		}
	}
	return nil
}

func findDrone(drones []models.Drone, id string) *models.Drone {
	for i := range drones {
		if drones[i].ID == id {
			return &drones[i]
		}
	}
	return nil
}

func findMission(missions []models.Mission, id string) *models.Mission {
	for i := range missions {
		if missions[i].ID == id {
			return &missions[i]
		}
	}
	return nil
}

func excludePilot(pilots []models.Pilot, id string) []models.Pilot {
	var out []models.Pilot
	for _, p := range pilots {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

func excludeDrone(drones []models.Drone, id string) []models.Drone {
	var out []models.Drone
	for _, d := range drones {
		if d.ID != id {
			out = append(out, d)
		}
	}
	return out
}
