package models

import (
	"time"
)

// Mission represents a time-bounded job requiring one pilot and one drone.
// Dates are inclusive on both ends; StartDate <= EndDate holds for every
// mission that passes boundary parsing.
type Mission struct {
	ID                     string          `json:"mission_id"`
	Client                 string          `json:"client"`
	Location               string          `json:"location"`
	StartDate              time.Time       `json:"start_date"`
	EndDate                time.Time       `json:"end_date"`
	RequiredSkills         []string        `json:"required_skills"`
	RequiredCertifications []string        `json:"required_certifications"`
	Budget                 float64         `json:"budget"`
	Priority               MissionPriority `json:"priority"`
	Status                 MissionStatus   `json:"status"`
	AssignedPilot          string          `json:"assigned_pilot,omitempty"`
	AssignedDrone          string          `json:"assigned_drone,omitempty"`
}

// MissionPriority orders missions by urgency.
type MissionPriority string

const (
	PriorityLow    MissionPriority = "Low"
	PriorityMedium MissionPriority = "Medium"
	PriorityHigh   MissionPriority = "High"
	PriorityUrgent MissionPriority = "Urgent"
)

// MissionStatus represents the assignment lifecycle of a mission.
type MissionStatus string

const (
	MissionUnassigned MissionStatus = "Unassigned"
	MissionAssigned   MissionStatus = "Assigned"
	MissionInProgress MissionStatus = "InProgress"
	MissionCompleted  MissionStatus = "Completed"
)

// IsUnassigned reports whether the mission is waiting for resources.
func (m *Mission) IsUnassigned() bool {
	return m.Status == MissionUnassigned
}

// IsAssigned reports whether the mission currently holds resources.
func (m *Mission) IsAssigned() bool {
	return m.Status == MissionAssigned
}

// IsPriority reports whether the mission qualifies for the urgent
// reassignment workflow (High or Urgent priority).
func (m *Mission) IsPriority() bool {
	return m.Priority == PriorityHigh || m.Priority == PriorityUrgent
}

// DurationDays returns the mission length in days. The range is inclusive,
// so a single-day mission has duration 1.
func (m *Mission) DurationDays() int {
	return int(m.EndDate.Sub(m.StartDate).Hours()/24) + 1
}

// OverlapsWith reports whether two missions have overlapping date ranges.
func (m *Mission) OverlapsWith(other *Mission) bool {
	return DatesOverlap(m.StartDate, m.EndDate, other.StartDate, other.EndDate)
}

// DatesOverlap reports whether two inclusive date ranges intersect:
// start1 <= end2 && start2 <= end1. Ranges sharing a boundary day overlap.
func DatesOverlap(start1, end1, start2, end2 time.Time) bool {
	return !start1.After(end2) && !start2.After(end1)
}
