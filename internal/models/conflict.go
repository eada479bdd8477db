package models

// ConflictCategory identifies the constraint a conflict violates.
type ConflictCategory string

const (
	ConflictAvailability   ConflictCategory = "AVAILABILITY"
	ConflictSkills         ConflictCategory = "SKILLS"
	ConflictCertifications ConflictCategory = "CERTIFICATIONS"
	ConflictBudget         ConflictCategory = "BUDGET"
	ConflictDoubleBooking  ConflictCategory = "DOUBLE_BOOKING"
	ConflictLocation       ConflictCategory = "LOCATION"
	ConflictMaintenance    ConflictCategory = "MAINTENANCE"
	ConflictWeather        ConflictCategory = "WEATHER"
)

// ConflictSeverity classifies how strongly a conflict blocks assignment.
type ConflictSeverity string

const (
	// SeverityCritical blocks assignment outright.
	SeverityCritical ConflictSeverity = "CRITICAL"
	// SeverityHigh strongly discourages assignment but does not block it
	// on its own.
	SeverityHigh ConflictSeverity = "HIGH"
	// SeverityWarning is informational only.
	SeverityWarning ConflictSeverity = "WARNING"
)

// IsCritical reports whether the severity blocks assignment.
func (s ConflictSeverity) IsCritical() bool {
	return s == SeverityCritical
}

// Conflict describes one violated constraint for one candidate against one
// mission. Conflicts are values, not errors, so callers can aggregate and
// report them.
type Conflict struct {
	Category ConflictCategory `json:"category"`
	Severity ConflictSeverity `json:"severity"`
	Code     string           `json:"code"`
	Message  string           `json:"message"`

	PilotName string `json:"pilot,omitempty"`
	DroneID   string `json:"drone,omitempty"`
	MissionID string `json:"mission,omitempty"`

	// Missing carries the unmet skill or certification tags.
	Missing []string `json:"missing,omitempty"`

	// Budget detail fields.
	Cost           float64 `json:"cost,omitempty"`
	Budget         float64 `json:"budget,omitempty"`
	Overage        float64 `json:"overage,omitempty"`
	OveragePercent float64 `json:"overage_percent,omitempty"`

	// MaintenanceHours carries the outstanding maintenance backlog.
	MaintenanceHours int `json:"maintenance_hours,omitempty"`

	// Overlaps lists the missions colliding with the requested date range.
	Overlaps []MissionWindow `json:"overlaps,omitempty"`
}

// MissionWindow identifies one colliding mission and its date range.
type MissionWindow struct {
	MissionID string `json:"mission_id"`
	Client    string `json:"client,omitempty"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

// Conflict codes, one per distinct rejection reason.
const (
	CodePilotNotAvailable   = "PILOT_NOT_AVAILABLE"
	CodeSkillMismatch       = "SKILL_MISMATCH"
	CodeCertMismatch        = "CERT_MISMATCH"
	CodeBudgetOverrun       = "BUDGET_OVERRUN"
	CodeDateOverlap         = "DATE_OVERLAP"
	CodeLocationMismatch    = "LOCATION_MISMATCH"
	CodeDroneNotAvailable   = "DRONE_NOT_AVAILABLE"
	CodeMaintenanceRequired = "MAINTENANCE_REQUIRED"
	CodeDroneDateOverlap    = "DRONE_DATE_OVERLAP"
	CodeMissingPilot        = "MISSING_PILOT"
	CodeMissingDrone        = "MISSING_DRONE"
)
