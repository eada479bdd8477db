package models

import (
	"time"
)

// ReassignmentStatus is the outcome of one urgent-reassignment check.
type ReassignmentStatus string

const (
	// ReassignNoAction means the mission needed no repair.
	ReassignNoAction ReassignmentStatus = "NO_ACTION"
	// ReassignReassigned means new resources were committed.
	ReassignReassigned ReassignmentStatus = "REASSIGNED"
	// ReassignUnassignable means the assignment is invalid but no
	// replacement exists; the mission is left in its invalid state.
	ReassignUnassignable ReassignmentStatus = "UNASSIGNABLE"
	// ReassignError means an internal fault interrupted the repair.
	ReassignError ReassignmentStatus = "ERROR"
)

// ReassignmentResult is the append-only log record produced for every
// mission processed by the urgent reassignment workflow.
type ReassignmentResult struct {
	Status        ReassignmentStatus `json:"status"`
	MissionID     string             `json:"mission_id"`
	Priority      MissionPriority    `json:"priority,omitempty"`
	PreviousPilot string             `json:"previous_pilot,omitempty"`
	PreviousDrone string             `json:"previous_drone,omitempty"`
	NewPilot      string             `json:"new_pilot,omitempty"`
	NewDrone      string             `json:"new_drone,omitempty"`
	PilotScore    float64            `json:"pilot_score,omitempty"`
	DroneScore    float64            `json:"drone_score,omitempty"`
	CombinedScore float64            `json:"combined_score,omitempty"`
	Conflicts     []Conflict         `json:"conflicts,omitempty"`
	Reason        string             `json:"reason"`
	Timestamp     time.Time          `json:"timestamp"`
}

// ReassignmentSummary aggregates a batch urgent-reassignment scan.
type ReassignmentSummary struct {
	TotalChecked int                  `json:"total_checked"`
	Reassigned   int                  `json:"reassigned"`
	Unassignable int                  `json:"unassignable"`
	NoAction     int                  `json:"no_action"`
	Errors       int                  `json:"errors"`
	Results      []ReassignmentResult `json:"results"`
}
