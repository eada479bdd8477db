// Package conflict detects constraint violations that prevent pilot or
// drone assignment. Checks are pure: they return Conflict values instead of
// errors so callers can aggregate and report them.
package conflict

import (
	"fmt"
	"math"
	"time"

	"github.com/SkyOps/skyops/internal/models"
)

// Engine runs constraint checks for candidate assignments.
type Engine struct{}

// NewEngine creates a conflict engine.
func NewEngine() *Engine {
	return &Engine{}
}

// CheckPilotAvailability returns a critical conflict when the pilot is not
// in Available status.
func (e *Engine) CheckPilotAvailability(pilot *models.Pilot) *models.Conflict {
	if pilot.IsAvailable() {
		return nil
	}
	return &models.Conflict{
		Category:  models.ConflictAvailability,
		Severity:  models.SeverityCritical,
		Code:      models.CodePilotNotAvailable,
		Message:   fmt.Sprintf("Pilot %s is %s", pilot.Name, pilot.Status),
		PilotName: pilot.Name,
	}
}

// CheckSkillsMatch returns a critical conflict listing the required skills
// the pilot is missing.
func (e *Engine) CheckSkillsMatch(pilot *models.Pilot, mission *models.Mission) *models.Conflict {
	missing := pilot.MissingSkills(mission.RequiredSkills)
	if len(missing) == 0 {
		return nil
	}
	return &models.Conflict{
		Category:  models.ConflictSkills,
		Severity:  models.SeverityCritical,
		Code:      models.CodeSkillMismatch,
		Message:   fmt.Sprintf("Pilot %s missing skills: %v", pilot.Name, missing),
		PilotName: pilot.Name,
		MissionID: mission.ID,
		Missing:   missing,
	}
}

// CheckCertificationsMatch returns a critical conflict listing the required
// certifications the pilot is missing.
func (e *Engine) CheckCertificationsMatch(pilot *models.Pilot, mission *models.Mission) *models.Conflict {
	missing := pilot.MissingCertifications(mission.RequiredCertifications)
	if len(missing) == 0 {
		return nil
	}
	return &models.Conflict{
		Category:  models.ConflictCertifications,
		Severity:  models.SeverityCritical,
		Code:      models.CodeCertMismatch,
		Message:   fmt.Sprintf("Pilot %s missing certs: %v", pilot.Name, missing),
		PilotName: pilot.Name,
		MissionID: mission.ID,
		Missing:   missing,
	}
}

// CheckPilotBudget returns a high-severity conflict when the pilot's cost
// over the full mission duration exceeds the mission budget. The range is
// inclusive, so cost = daily rate * ((end - start) + 1 days).
func (e *Engine) CheckPilotBudget(pilot *models.Pilot, mission *models.Mission) *models.Conflict {
	cost := PilotCost(pilot.DailyRate, mission.DurationDays())
	if WithinBudget(mission.Budget, cost) {
		return nil
	}

	overagePercent := 0.0
	if mission.Budget > 0 {
		overagePercent = round2((cost/mission.Budget - 1) * 100)
	}

	return &models.Conflict{
		Category:       models.ConflictBudget,
		Severity:       models.SeverityHigh,
		Code:           models.CodeBudgetOverrun,
		Message:        fmt.Sprintf("Pilot %s costs ₹%.0f, mission budget ₹%.0f", pilot.Name, cost, mission.Budget),
		PilotName:      pilot.Name,
		MissionID:      mission.ID,
		Cost:           cost,
		Budget:         mission.Budget,
		Overage:        cost - mission.Budget,
		OveragePercent: overagePercent,
	}
}

// CheckPilotDateOverlap returns a critical conflict collecting every sibling
// mission whose date range collides with the candidate mission.
func (e *Engine) CheckPilotDateOverlap(pilot *models.Pilot, mission *models.Mission, siblings []models.Mission) *models.Conflict {
	overlaps := collectOverlaps(mission, siblings)
	if len(overlaps) == 0 {
		return nil
	}
	return &models.Conflict{
		Category:  models.ConflictDoubleBooking,
		Severity:  models.SeverityCritical,
		Code:      models.CodeDateOverlap,
		Message:   fmt.Sprintf("Pilot %s has schedule conflicts", pilot.Name),
		PilotName: pilot.Name,
		MissionID: mission.ID,
		Overlaps:  overlaps,
	}
}

// CheckLocationMismatch returns a warning when the pilot is based away from
// the mission location. Location never blocks assignment.
func (e *Engine) CheckLocationMismatch(pilot *models.Pilot, mission *models.Mission) *models.Conflict {
	if pilot.Location == mission.Location {
		return nil
	}
	return &models.Conflict{
		Category:  models.ConflictLocation,
		Severity:  models.SeverityWarning,
		Code:      models.CodeLocationMismatch,
		Message:   fmt.Sprintf("Pilot in %s, mission in %s", pilot.Location, mission.Location),
		PilotName: pilot.Name,
		MissionID: mission.ID,
	}
}

// CheckDroneAvailability returns a critical conflict when the drone is not
// in Available status.
func (e *Engine) CheckDroneAvailability(drone *models.Drone) *models.Conflict {
	if drone.IsAvailable() {
		return nil
	}
	return &models.Conflict{
		Category: models.ConflictAvailability,
		Severity: models.SeverityCritical,
		Code:     models.CodeDroneNotAvailable,
		Message:  fmt.Sprintf("Drone %s is %s", drone.ID, drone.Status),
		DroneID:  drone.ID,
	}
}

// CheckDroneMaintenance returns a high-severity conflict when the drone has
// outstanding maintenance hours.
func (e *Engine) CheckDroneMaintenance(drone *models.Drone, mission *models.Mission) *models.Conflict {
	if !drone.NeedsMaintenance() {
		return nil
	}
	return &models.Conflict{
		Category:         models.ConflictMaintenance,
		Severity:         models.SeverityHigh,
		Code:             models.CodeMaintenanceRequired,
		Message:          fmt.Sprintf("Drone %s requires %dh maintenance", drone.ID, drone.MaintenanceHours),
		DroneID:          drone.ID,
		MissionID:        mission.ID,
		MaintenanceHours: drone.MaintenanceHours,
	}
}

// CheckDroneDateOverlap returns a critical conflict collecting every sibling
// mission whose date range collides with the candidate mission.
func (e *Engine) CheckDroneDateOverlap(drone *models.Drone, mission *models.Mission, siblings []models.Mission) *models.Conflict {
	overlaps := collectOverlaps(mission, siblings)
	if len(overlaps) == 0 {
		return nil
	}
	return &models.Conflict{
		Category:  models.ConflictDoubleBooking,
		Severity:  models.SeverityCritical,
		Code:      models.CodeDroneDateOverlap,
		Message:   fmt.Sprintf("Drone %s has schedule conflicts", drone.ID),
		DroneID:   drone.ID,
		MissionID: mission.ID,
		Overlaps:  overlaps,
	}
}

// CheckWeatherCompatibility always passes. Real forecast data does not exist
// yet, so weather is an extension point rather than a live constraint.
func (e *Engine) CheckWeatherCompatibility(drone *models.Drone, mission *models.Mission) *models.Conflict {
	return nil
}

// CheckPilotAssignment runs every pilot check for a mission. An unavailable
// pilot short-circuits: the availability conflict is returned alone and no
// further checks run. Otherwise skills, certifications, budget, and schedule
// overlap run independently, followed by the location warning.
func (e *Engine) CheckPilotAssignment(pilot *models.Pilot, mission *models.Mission, siblings []models.Mission) []models.Conflict {
	var conflicts []models.Conflict

	if c := e.CheckPilotAvailability(pilot); c != nil {
		return append(conflicts, *c)
	}

	if c := e.CheckSkillsMatch(pilot, mission); c != nil {
		conflicts = append(conflicts, *c)
	}
	if c := e.CheckCertificationsMatch(pilot, mission); c != nil {
		conflicts = append(conflicts, *c)
	}
	if c := e.CheckPilotBudget(pilot, mission); c != nil {
		conflicts = append(conflicts, *c)
	}
	if c := e.CheckPilotDateOverlap(pilot, mission, siblings); c != nil {
		conflicts = append(conflicts, *c)
	}
	if c := e.CheckLocationMismatch(pilot, mission); c != nil {
		conflicts = append(conflicts, *c)
	}

	return conflicts
}

// CheckDroneAssignment runs every drone check for a mission, with the same
// availability short-circuit as CheckPilotAssignment.
func (e *Engine) CheckDroneAssignment(drone *models.Drone, mission *models.Mission, siblings []models.Mission) []models.Conflict {
	var conflicts []models.Conflict

	if c := e.CheckDroneAvailability(drone); c != nil {
		return append(conflicts, *c)
	}

	if c := e.CheckDroneMaintenance(drone, mission); c != nil {
		conflicts = append(conflicts, *c)
	}
	if c := e.CheckDroneDateOverlap(drone, mission, siblings); c != nil {
		conflicts = append(conflicts, *c)
	}
	if c := e.CheckWeatherCompatibility(drone, mission); c != nil {
		conflicts = append(conflicts, *c)
	}

	return conflicts
}

// CandidateAnalysis is the per-candidate section of a conflict report.
type CandidateAnalysis struct {
	Viable    bool              `json:"viable"`
	Conflicts []models.Conflict `json:"conflicts"`
}

// ReportSummary tallies a conflict report across the whole candidate pool.
type ReportSummary struct {
	TotalPilots    int `json:"total_pilots"`
	TotalDrones    int `json:"total_drones"`
	ViablePilots   int `json:"viable_pilots"`
	ViableDrones   int `json:"viable_drones"`
	CriticalBlocks int `json:"critical_blocks"`
	Warnings       int `json:"warnings"`
}

// Report is the full diagnostic surface returned when no assignment is
// possible for a mission.
type Report struct {
	MissionID     string                       `json:"mission_id"`
	Client        string                       `json:"client"`
	GeneratedAt   time.Time                    `json:"generated_at"`
	PilotAnalysis map[string]CandidateAnalysis `json:"pilot_analysis"`
	DroneAnalysis map[string]CandidateAnalysis `json:"drone_analysis"`
	Summary       ReportSummary                `json:"summary"`
}

// GenerateConflictReport checks every candidate pilot and drone against the
// mission, partitions them into viable and non-viable, and tallies critical
// findings versus warnings across the pool.
func (e *Engine) GenerateConflictReport(mission *models.Mission, pilots []models.Pilot, drones []models.Drone, siblings []models.Mission) Report {
	report := Report{
		MissionID:     mission.ID,
		Client:        mission.Client,
		GeneratedAt:   time.Now(),
		PilotAnalysis: make(map[string]CandidateAnalysis, len(pilots)),
		DroneAnalysis: make(map[string]CandidateAnalysis, len(drones)),
		Summary: ReportSummary{
			TotalPilots: len(pilots),
			TotalDrones: len(drones),
		},
	}

	for i := range pilots {
		conflicts := e.CheckPilotAssignment(&pilots[i], mission, siblings)
		report.PilotAnalysis[pilots[i].ID] = CandidateAnalysis{
			Viable:    len(conflicts) == 0,
			Conflicts: conflicts,
		}
		if len(conflicts) == 0 {
			report.Summary.ViablePilots++
		}
		tally(&report.Summary, conflicts)
	}

	for i := range drones {
		conflicts := e.CheckDroneAssignment(&drones[i], mission, siblings)
		report.DroneAnalysis[drones[i].ID] = CandidateAnalysis{
			Viable:    len(conflicts) == 0,
			Conflicts: conflicts,
		}
		if len(conflicts) == 0 {
			report.Summary.ViableDrones++
		}
		tally(&report.Summary, conflicts)
	}

	return report
}

func tally(summary *ReportSummary, conflicts []models.Conflict) {
	for _, c := range conflicts {
		if c.Severity.IsCritical() {
			summary.CriticalBlocks++
		} else {
			summary.Warnings++
		}
	}
}

func collectOverlaps(mission *models.Mission, siblings []models.Mission) []models.MissionWindow {
	var overlaps []models.MissionWindow
	for i := range siblings {
		other := &siblings[i]
		if other.ID == mission.ID {
			continue
		}
		if mission.OverlapsWith(other) {
			overlaps = append(overlaps, models.MissionWindow{
				MissionID: other.ID,
				Client:    other.Client,
				Start:     other.StartDate.Format("2006-01-02"),
				End:       other.EndDate.Format("2006-01-02"),
			})
		}
	}
	return overlaps
}

// PilotCost is the total pilot cost for a mission: daily rate times the
// inclusive duration in days. Negative inputs cost nothing.
func PilotCost(dailyRate float64, durationDays int) float64 {
	if dailyRate < 0 || durationDays < 0 {
		return 0
	}
	return dailyRate * float64(durationDays)
}

// WithinBudget reports whether a cost fits a mission budget.
func WithinBudget(budget, cost float64) bool {
	if budget < 0 || cost < 0 {
		return false
	}
	return cost <= budget
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
