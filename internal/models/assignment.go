package models

import (
	"time"
)

// Assignment records the pilot and drone currently holding a mission.
// At most one live assignment exists per mission at any time.
type Assignment struct {
	Mission    Mission   `json:"mission"`
	Pilot      Pilot     `json:"pilot"`
	Drone      Drone     `json:"drone"`
	AssignedAt time.Time `json:"assigned_at"`
	Score      float64   `json:"score"`
}

// HistoryAction identifies the kind of assignment change.
type HistoryAction string

const (
	ActionAssign   HistoryAction = "ASSIGN"
	ActionUnassign HistoryAction = "UNASSIGN"
)

// HistoryEntry is an append-only record of one assignment change.
// Entries are never mutated or deleted.
type HistoryEntry struct {
	ID        string        `json:"id"`
	Action    HistoryAction `json:"action"`
	MissionID string        `json:"mission_id"`
	PilotID   string        `json:"pilot_id"`
	DroneID   string        `json:"drone_id"`
	Timestamp time.Time     `json:"timestamp"`
}

// AssignResult reports the outcome of an assign, unassign, or reassign call.
type AssignResult struct {
	Success   bool         `json:"success"`
	Status    AssignStatus `json:"status"`
	MissionID string       `json:"mission_id"`
	PilotID   string       `json:"pilot_id,omitempty"`
	DroneID   string       `json:"drone_id,omitempty"`
	Message   string       `json:"message"`
}

// AssignStatus is a machine-readable outcome code for assignment operations.
type AssignStatus string

const (
	StatusAssigned        AssignStatus = "ASSIGNED"
	StatusUnassigned      AssignStatus = "UNASSIGNED"
	StatusScheduleClash   AssignStatus = "SCHEDULE_CONFLICT"
	StatusNotAssigned     AssignStatus = "NOT_ASSIGNED"
	StatusAlreadyAssigned AssignStatus = "ALREADY_ASSIGNED"
)

// AssignmentReport summarizes all live assignments.
type AssignmentReport struct {
	Timestamp        time.Time           `json:"timestamp"`
	TotalAssignments int                 `json:"total_assignments"`
	Assignments      []AssignmentSummary `json:"assignments"`
	PilotsUtilized   []string            `json:"pilots_utilized"`
	DronesUtilized   []string            `json:"drones_utilized"`
}

// AssignmentSummary is one row of an AssignmentReport.
type AssignmentSummary struct {
	MissionID  string    `json:"mission_id"`
	Client     string    `json:"client"`
	PilotID    string    `json:"pilot_id"`
	PilotName  string    `json:"pilot_name"`
	DroneID    string    `json:"drone_id"`
	Score      float64   `json:"score"`
	AssignedAt time.Time `json:"assigned_at"`
}
