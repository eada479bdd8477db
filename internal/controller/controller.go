// Package controller composes the decision, conflict, assignment, and
// reassignment components over the external roster store. It holds the
// single process-wide lock: the core below it is single-writer by design and
// carries no locking of its own.
package controller

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/SkyOps/skyops/internal/assignment"
	"github.com/SkyOps/skyops/internal/conflict"
	"github.com/SkyOps/skyops/internal/decision"
	"github.com/SkyOps/skyops/internal/metrics"
	"github.com/SkyOps/skyops/internal/models"
	"github.com/SkyOps/skyops/internal/reassignment"
)

// Controller orchestrates mission assignment over a roster snapshot.
type Controller struct {
	mu sync.Mutex

	store     models.RosterStore
	conflicts *conflict.Engine
	decisions *decision.Engine
	manager   *assignment.Manager
	urgent    *reassignment.Service
	collector *metrics.Collector
	logger    *slog.Logger

	pilots   []models.Pilot
	drones   []models.Drone
	missions []models.Mission
}

// New creates a controller and loads the initial roster snapshot.
func New(ctx context.Context, store models.RosterStore, conflicts *conflict.Engine, decisions *decision.Engine, manager *assignment.Manager, urgent *reassignment.Service, collector *metrics.Collector, logger *slog.Logger) (*Controller, error) {
	c := &Controller{
		store:     store,
		conflicts: conflicts,
		decisions: decisions,
		manager:   manager,
		urgent:    urgent,
		collector: collector,
		logger:    logger,
	}
	if err := c.Refresh(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Refresh reloads the roster snapshot from the store.
func (c *Controller) Refresh(ctx context.Context) error {
	pilots, drones, missions, err := c.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load roster: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pilots = pilots
	c.drones = drones
	c.missions = missions

	c.logger.Info("roster loaded",
		"pilots", len(pilots),
		"drones", len(drones),
		"missions", len(missions),
	)
	return nil
}

// MissionOutcome is the result status of one assignment attempt.
type MissionOutcome string

const (
	OutcomeAssigned     MissionOutcome = "ASSIGNED"
	OutcomeFailed       MissionOutcome = "FAILED"
	OutcomeUnassignable MissionOutcome = "UNASSIGNABLE"
)

// MissionResult describes what happened to one mission, with either the
// committed assignment or the conflict report explaining why none exists.
type MissionResult struct {
	MissionID  string             `json:"mission_id"`
	Client     string             `json:"client"`
	Status     MissionOutcome     `json:"status"`
	Assignment *AssignmentDetails `json:"assignment,omitempty"`
	Conflicts  *conflict.Report   `json:"conflicts,omitempty"`
	Message    string             `json:"message"`
}

// AssignmentDetails carries the committed resources and their scores.
type AssignmentDetails struct {
	PilotID   string  `json:"pilot_id"`
	PilotName string  `json:"pilot_name"`
	DroneID   string  `json:"drone_id"`
	PilotCost float64 `json:"pilot_cost"`
	Score     float64 `json:"score"`
}

// ProcessMissionAssignment finds and commits the best assignment for one
// mission, or explains via a conflict report why none is possible.
func (c *Controller) ProcessMissionAssignment(ctx context.Context, missionID string) (MissionResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	mission := c.findMission(missionID)
	if mission == nil {
		return MissionResult{}, fmt.Errorf("mission %s not found", missionID)
	}
	return c.assignLocked(ctx, mission), nil
}

// ProcessUnassignedMissions assigns every unassigned mission in turn. The
// result list carries one entry per mission; failures do not abort the pass.
func (c *Controller) ProcessUnassignedMissions(ctx context.Context) []MissionResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	var results []MissionResult
	for i := range c.missions {
		if !c.missions[i].IsUnassigned() {
			continue
		}
		results = append(results, c.assignLocked(ctx, &c.missions[i]))
	}
	return results
}

func (c *Controller) assignLocked(ctx context.Context, mission *models.Mission) MissionResult {
	result := MissionResult{MissionID: mission.ID, Client: mission.Client}

	best := c.manager.FindBestAssignmentForMission(mission, c.pilots, c.drones)
	if best == nil {
		report := c.conflicts.GenerateConflictReport(mission, c.pilots, c.drones, c.missions)
		result.Status = OutcomeUnassignable
		result.Conflicts = &report
		result.Message = fmt.Sprintf("No valid assignment: %d critical blocks", report.Summary.CriticalBlocks)
		c.collector.RecordAssignment(string(OutcomeUnassignable))
		return result
	}

	committed := *mission
	committed.Status = models.MissionAssigned
	committed.AssignedPilot = best.Pilot.ID
	committed.AssignedDrone = best.Drone.ID

	commit := c.manager.Assign(committed, best.Pilot, best.Drone, best.CombinedScore)
	if !commit.Success {
		result.Status = OutcomeFailed
		result.Message = commit.Message
		c.collector.RecordAssignment(string(OutcomeFailed))
		return result
	}

	c.applyMissionUpdate(committed)
	c.persistAssignment(ctx, committed, best.Pilot.ID, best.Drone.ID)

	result.Status = OutcomeAssigned
	result.Assignment = &AssignmentDetails{
		PilotID:   best.Pilot.ID,
		PilotName: best.Pilot.Name,
		DroneID:   best.Drone.ID,
		PilotCost: best.PilotCost,
		Score:     best.CombinedScore,
	}
	result.Message = commit.Message
	c.collector.RecordAssignment(string(OutcomeAssigned))
	return result
}

// persistAssignment writes the committed assignment to the system of record.
// Resource statuses stay untouched: availability for other missions is
// date-based, and an assignment must never invalidate itself on the next
// roster read. The in-memory commit has already happened; a write failure
// leaves the systems inconsistent and is surfaced as a warning for a later
// refresh-and-recheck pass.
func (c *Controller) persistAssignment(ctx context.Context, mission models.Mission, pilotID, droneID string) {
	if err := c.store.PersistAssignment(ctx, mission.ID, pilotID, droneID); err != nil {
		c.logger.Warn("assignment persisted in memory but roster write failed",
			"mission_id", mission.ID,
			"error", err,
		)
	}
}

func (c *Controller) applyMissionUpdate(updated models.Mission) {
	for i := range c.missions {
		if c.missions[i].ID == updated.ID {
			c.missions[i] = updated
			return
		}
	}
}

// AnalyzeMissionConflicts returns the full conflict report for a mission.
func (c *Controller) AnalyzeMissionConflicts(missionID string) (conflict.Report, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	mission := c.findMission(missionID)
	if mission == nil {
		return conflict.Report{}, fmt.Errorf("mission %s not found", missionID)
	}
	return c.conflicts.GenerateConflictReport(mission, c.pilots, c.drones, c.missions), nil
}

// Recommendations holds the top-ranked pilot-drone combinations for a mission.
type Recommendations struct {
	MissionID string            `json:"mission_id"`
	Client    string            `json:"client"`
	Options   []decision.Option `json:"options"`
	Reason    string            `json:"reason,omitempty"`
}

// RecommendAssignments ranks the best pilot-drone combinations for a mission
// without committing anything.
func (c *Controller) RecommendAssignments(missionID string, topN int) (Recommendations, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	mission := c.findMission(missionID)
	if mission == nil {
		return Recommendations{}, fmt.Errorf("mission %s not found", missionID)
	}

	availablePilots := c.manager.AvailablePilots(mission, c.pilots)
	availableDrones := c.manager.AvailableDrones(mission, c.drones)

	rec := Recommendations{MissionID: mission.ID, Client: mission.Client, Options: []decision.Option{}}
	if len(availablePilots) == 0 || len(availableDrones) == 0 {
		rec.Reason = "Insufficient available resources"
		return rec, nil
	}

	rec.Options = c.decisions.RankAssignments(mission, availablePilots, availableDrones, nil, nil, topN)
	return rec, nil
}

// SystemStatus is a point-in-time snapshot of fleet and mission state.
type SystemStatus struct {
	TotalPilots        int                        `json:"total_pilots"`
	AvailablePilots    int                        `json:"available_pilots"`
	TotalDrones        int                        `json:"total_drones"`
	AvailableDrones    int                        `json:"available_drones"`
	TotalMissions      int                        `json:"total_missions"`
	AssignedMissions   int                        `json:"assigned_missions"`
	UnassignedMissions int                        `json:"unassigned_missions"`
	RecentAssignments  []models.AssignmentSummary `json:"recent_assignments"`
	HistorySize        int                        `json:"history_size"`
}

// Status returns counts by state plus recent assignment activity.
func (c *Controller) Status() SystemStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	status := SystemStatus{
		TotalPilots:   len(c.pilots),
		TotalDrones:   len(c.drones),
		TotalMissions: len(c.missions),
		HistorySize:   len(c.manager.History(0)),
	}
	for i := range c.pilots {
		if c.pilots[i].IsAvailable() {
			status.AvailablePilots++
		}
	}
	for i := range c.drones {
		if c.drones[i].IsAvailable() {
			status.AvailableDrones++
		}
	}
	for i := range c.missions {
		if c.missions[i].IsUnassigned() {
			status.UnassignedMissions++
		}
	}

	report := c.manager.Report()
	status.AssignedMissions = report.TotalAssignments

	// Most recently committed last, regardless of mission ID order.
	recent := make([]models.AssignmentSummary, len(report.Assignments))
	copy(recent, report.Assignments)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].AssignedAt.Before(recent[j].AssignedAt)
	})
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	status.RecentAssignments = recent

	return status
}

// AssignmentReport returns the manager's full live-assignment report.
func (c *Controller) AssignmentReport() models.AssignmentReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.manager.Report()
}

// History returns the assignment change log, newest last.
func (c *Controller) History(limit int) []models.HistoryEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.manager.History(limit)
}

// Pilots returns the current pilot snapshot.
func (c *Controller) Pilots() []models.Pilot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pilots
}

// Drones returns the current drone snapshot.
func (c *Controller) Drones() []models.Drone {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drones
}

// Missions returns the current mission snapshot.
func (c *Controller) Missions() []models.Mission {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.missions
}

// HandleUrgentReassignment refreshes the roster, runs the repair workflow
// for one mission, and refreshes again so reads reflect the repair.
func (c *Controller) HandleUrgentReassignment(ctx context.Context, missionID string) (models.ReassignmentResult, error) {
	if err := c.Refresh(ctx); err != nil {
		return models.ReassignmentResult{}, err
	}

	c.mu.Lock()
	result := c.urgent.HandleUrgentMission(ctx, missionID, c.pilots, c.drones, c.missions)
	c.collector.RecordReassignment(string(result.Status))
	c.mu.Unlock()

	if err := c.Refresh(ctx); err != nil {
		c.logger.Warn("failed to refresh roster after reassignment", "error", err)
	}
	return result, nil
}

// HandleAllUrgentReassignments runs the repair workflow over every High or
// Urgent priority mission.
func (c *Controller) HandleAllUrgentReassignments(ctx context.Context) (models.ReassignmentSummary, error) {
	if err := c.Refresh(ctx); err != nil {
		return models.ReassignmentSummary{}, err
	}

	c.mu.Lock()
	summary := c.urgent.HandleAllPriorityMissions(ctx, c.pilots, c.drones, c.missions)
	for _, r := range summary.Results {
		c.collector.RecordReassignment(string(r.Status))
	}
	c.mu.Unlock()

	if err := c.Refresh(ctx); err != nil {
		c.logger.Warn("failed to refresh roster after reassignment scan", "error", err)
	}
	return summary, nil
}

// ReassignmentLog returns every reassignment event recorded so far.
func (c *Controller) ReassignmentLog() []models.ReassignmentResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.urgent.Log()
}

func (c *Controller) findMission(id string) *models.Mission {
	for i := range c.missions {
		if c.missions[i].ID == id {
			return &c.missions[i]
		}
	}
	return nil
}
