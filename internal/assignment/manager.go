// Package assignment owns the live assignment map and its change history.
// The Manager is the single source of truth for which pilot and drone hold
// each mission, and re-checks double-booking at commit time independently of
// the decision engine's pre-filtering.
//
// The Manager is not safe for concurrent use. The design is single-writer;
// callers introducing concurrency must serialize access externally (the
// controller holds the process-wide lock).
package assignment

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/SkyOps/skyops/internal/decision"
	"github.com/SkyOps/skyops/internal/models"
)

// Manager tracks live assignments and their append-only history.
type Manager struct {
	assignments map[string]models.Assignment
	history     []models.HistoryEntry
	decision    *decision.Engine
	logger      *slog.Logger
}

// NewManager creates an empty assignment manager.
func NewManager(decisionEngine *decision.Engine, logger *slog.Logger) *Manager {
	return &Manager{
		assignments: make(map[string]models.Assignment),
		decision:    decisionEngine,
		logger:      logger,
	}
}

// AssignedMissions returns every live mission held by the pilot.
func (m *Manager) AssignedMissions(pilotID string) []models.Mission {
	var missions []models.Mission
	for _, a := range m.assignments {
		if a.Pilot.ID == pilotID {
			missions = append(missions, a.Mission)
		}
	}
	return missions
}

// AssignedMissionsForDrone returns every live mission held by the drone.
func (m *Manager) AssignedMissionsForDrone(droneID string) []models.Mission {
	var missions []models.Mission
	for _, a := range m.assignments {
		if a.Drone.ID == droneID {
			missions = append(missions, a.Mission)
		}
	}
	return missions
}

// Window is one occupied date range in a resource's schedule.
type Window struct {
	MissionID string    `json:"mission_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
}

// PilotSchedule returns the pilot's occupied date ranges, ordered by start.
func (m *Manager) PilotSchedule(pilotID string) []Window {
	return schedule(m.AssignedMissions(pilotID))
}

// DroneSchedule returns the drone's occupied date ranges, ordered by start.
func (m *Manager) DroneSchedule(droneID string) []Window {
	return schedule(m.AssignedMissionsForDrone(droneID))
}

func schedule(missions []models.Mission) []Window {
	windows := make([]Window, 0, len(missions))
	for _, mission := range missions {
		windows = append(windows, Window{
			MissionID: mission.ID,
			Start:     mission.StartDate,
			End:       mission.EndDate,
		})
	}
	sort.Slice(windows, func(i, j int) bool {
		return windows[i].Start.Before(windows[j].Start)
	})
	return windows
}

// IsPilotAvailable reports whether the pilot holds no live mission
// overlapping the candidate mission's date range.
func (m *Manager) IsPilotAvailable(pilotID string, mission *models.Mission) bool {
	for _, held := range m.AssignedMissions(pilotID) {
		if mission.OverlapsWith(&held) {
			return false
		}
	}
	return true
}

// IsDroneAvailable reports whether the drone holds no live mission
// overlapping the candidate mission's date range.
func (m *Manager) IsDroneAvailable(droneID string, mission *models.Mission) bool {
	for _, held := range m.AssignedMissionsForDrone(droneID) {
		if mission.OverlapsWith(&held) {
			return false
		}
	}
	return true
}

// AvailablePilots returns pilots with no live schedule conflict against the mission.
func (m *Manager) AvailablePilots(mission *models.Mission, pilots []models.Pilot) []models.Pilot {
	var available []models.Pilot
	for _, pilot := range pilots {
		if m.IsPilotAvailable(pilot.ID, mission) {
			available = append(available, pilot)
		}
	}
	return available
}

// AvailableDrones returns drones with no live schedule conflict against the mission.
func (m *Manager) AvailableDrones(mission *models.Mission, drones []models.Drone) []models.Drone {
	var available []models.Drone
	for _, drone := range drones {
		if m.IsDroneAvailable(drone.ID, mission) {
			available = append(available, drone)
		}
	}
	return available
}

// Assign commits a pilot and drone to a mission, recording the combined
// match score alongside. The live map is re-checked for schedule conflicts
// on both sides because state may have changed since candidate selection.
// Assigning over an already-assigned mission fails; Reassign is the only
// overwrite path.
func (m *Manager) Assign(mission models.Mission, pilot models.Pilot, drone models.Drone, score float64) models.AssignResult {
	if _, exists := m.assignments[mission.ID]; exists {
		return models.AssignResult{
			Status:    models.StatusAlreadyAssigned,
			MissionID: mission.ID,
			Message:   fmt.Sprintf("Mission %s is already assigned; use reassign", mission.ID),
		}
	}

	if !m.IsPilotAvailable(pilot.ID, &mission) {
		return models.AssignResult{
			Status:    models.StatusScheduleClash,
			MissionID: mission.ID,
			PilotID:   pilot.ID,
			Message:   fmt.Sprintf("Pilot %s has a schedule conflict", pilot.Name),
		}
	}

	if !m.IsDroneAvailable(drone.ID, &mission) {
		return models.AssignResult{
			Status:    models.StatusScheduleClash,
			MissionID: mission.ID,
			DroneID:   drone.ID,
			Message:   fmt.Sprintf("Drone %s has a schedule conflict", drone.ID),
		}
	}

	m.assignments[mission.ID] = models.Assignment{
		Mission:    mission,
		Pilot:      pilot,
		Drone:      drone,
		AssignedAt: time.Now(),
		Score:      score,
	}
	m.record(models.ActionAssign, mission.ID, pilot.ID, drone.ID)

	m.logger.Info("mission assigned",
		"mission_id", mission.ID,
		"pilot_id", pilot.ID,
		"drone_id", drone.ID,
	)

	return models.AssignResult{
		Success:   true,
		Status:    models.StatusAssigned,
		MissionID: mission.ID,
		PilotID:   pilot.ID,
		DroneID:   drone.ID,
		Message:   fmt.Sprintf("Successfully assigned %s + %s to %s", pilot.Name, drone.ID, mission.ID),
	}
}

// Unassign retires a mission's live assignment.
func (m *Manager) Unassign(missionID string) models.AssignResult {
	existing, ok := m.assignments[missionID]
	if !ok {
		return models.AssignResult{
			Status:    models.StatusNotAssigned,
			MissionID: missionID,
			Message:   fmt.Sprintf("Mission %s is not assigned", missionID),
		}
	}

	delete(m.assignments, missionID)
	m.record(models.ActionUnassign, missionID, existing.Pilot.ID, existing.Drone.ID)

	m.logger.Info("mission unassigned",
		"mission_id", missionID,
		"pilot_id", existing.Pilot.ID,
		"drone_id", existing.Drone.ID,
	)

	return models.AssignResult{
		Success:   true,
		Status:    models.StatusUnassigned,
		MissionID: missionID,
		PilotID:   existing.Pilot.ID,
		DroneID:   existing.Drone.ID,
		Message:   fmt.Sprintf("Successfully unassigned mission %s", missionID),
	}
}

// Reassign retires any existing assignment for the mission, then assigns
// the new resources. Observable in history as an Unassign/Assign pair, even
// when the new resources equal the old ones.
func (m *Manager) Reassign(mission models.Mission, pilot models.Pilot, drone models.Drone, score float64) models.AssignResult {
	if _, ok := m.assignments[mission.ID]; ok {
		m.Unassign(mission.ID)
	}
	return m.Assign(mission, pilot, drone, score)
}

// Assignment returns the live assignment for a mission, if any.
func (m *Manager) Assignment(missionID string) (models.Assignment, bool) {
	a, ok := m.assignments[missionID]
	return a, ok
}

// AllAssignments returns every live assignment, ordered by mission ID for
// stable output.
func (m *Manager) AllAssignments() []models.Assignment {
	all := make([]models.Assignment, 0, len(m.assignments))
	for _, a := range m.assignments {
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Mission.ID < all[j].Mission.ID
	})
	return all
}

// FindBestAssignmentForMission narrows the candidate pools to resources with
// no live schedule conflict, then delegates scoring to the decision engine.
// Pilots and drones holding any other live assignment are withheld entirely,
// a broader exclusion than a pure date check, so one resource is never
// offered to two simultaneous decisions.
func (m *Manager) FindBestAssignmentForMission(mission *models.Mission, pilots []models.Pilot, drones []models.Drone) *decision.Option {
	availablePilots := m.AvailablePilots(mission, pilots)
	availableDrones := m.AvailableDrones(mission, drones)

	if len(availablePilots) == 0 || len(availableDrones) == 0 {
		return nil
	}

	assignedPilots := make(map[string]models.Mission)
	assignedDrones := make(map[string]models.Mission)
	for _, a := range m.assignments {
		assignedPilots[a.Pilot.ID] = a.Mission
		assignedDrones[a.Drone.ID] = a.Mission
	}

	pilotPool := make([]models.Pilot, 0, len(availablePilots))
	for _, pilot := range availablePilots {
		if _, held := assignedPilots[pilot.ID]; !held {
			pilotPool = append(pilotPool, pilot)
		}
	}
	dronePool := make([]models.Drone, 0, len(availableDrones))
	for _, drone := range availableDrones {
		if _, held := assignedDrones[drone.ID]; !held {
			dronePool = append(dronePool, drone)
		}
	}

	return m.decision.FindBestAssignment(mission, pilotPool, dronePool, assignedPilots, assignedDrones)
}

// Report summarizes all live assignments with the distinct pilots and
// drones currently utilized.
func (m *Manager) Report() models.AssignmentReport {
	report := models.AssignmentReport{
		Timestamp:      time.Now(),
		PilotsUtilized: []string{},
		DronesUtilized: []string{},
	}

	pilots := make(map[string]bool)
	drones := make(map[string]bool)

	for _, a := range m.AllAssignments() {
		report.TotalAssignments++
		report.Assignments = append(report.Assignments, models.AssignmentSummary{
			MissionID:  a.Mission.ID,
			Client:     a.Mission.Client,
			PilotID:    a.Pilot.ID,
			PilotName:  a.Pilot.Name,
			DroneID:    a.Drone.ID,
			Score:      a.Score,
			AssignedAt: a.AssignedAt,
		})
		if !pilots[a.Pilot.ID] {
			pilots[a.Pilot.ID] = true
			report.PilotsUtilized = append(report.PilotsUtilized, a.Pilot.ID)
		}
		if !drones[a.Drone.ID] {
			drones[a.Drone.ID] = true
			report.DronesUtilized = append(report.DronesUtilized, a.Drone.ID)
		}
	}

	sort.Strings(report.PilotsUtilized)
	sort.Strings(report.DronesUtilized)

	return report
}

// History returns the assignment change log, most recent last. A positive
// limit returns only the latest entries.
func (m *Manager) History(limit int) []models.HistoryEntry {
	if limit > 0 && len(m.history) > limit {
		return m.history[len(m.history)-limit:]
	}
	return m.history
}

func (m *Manager) record(action models.HistoryAction, missionID, pilotID, droneID string) {
	m.history = append(m.history, models.HistoryEntry{
		ID:        uuid.New().String(),
		Action:    action,
		MissionID: missionID,
		PilotID:   pilotID,
		DroneID:   droneID,
		Timestamp: time.Now(),
	})
}
