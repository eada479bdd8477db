package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/SkyOps/skyops/internal/models"
)

// PostgresRoster is the system-of-record store for pilots, drones, and
// missions. Rows are parsed into strict models at this boundary; no
// loosely typed record ever crosses into the core.
type PostgresRoster struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresRoster creates a roster store backed by Postgres.
func NewPostgresRoster(db *sql.DB, logger *slog.Logger) *PostgresRoster {
	return &PostgresRoster{db: db, logger: logger}
}

// LoadAll returns a bulk snapshot of the full roster.
func (r *PostgresRoster) LoadAll(ctx context.Context) ([]models.Pilot, []models.Drone, []models.Mission, error) {
	pilots, err := r.Pilots(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	drones, err := r.Drones(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	missions, err := r.Missions(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return pilots, drones, missions, nil
}

// Pilots returns all pilots ordered by identity.
func (r *PostgresRoster) Pilots(ctx context.Context) ([]models.Pilot, error) {
	query := `
		SELECT pilot_id, name, location, skills, certifications, status, current_mission, daily_rate
		FROM pilots
		ORDER BY pilot_id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query pilots: %w", err)
	}
	defer rows.Close()

	var pilots []models.Pilot
	for rows.Next() {
		var p models.Pilot
		var status string
		if err := rows.Scan(&p.ID, &p.Name, &p.Location, pq.Array(&p.Skills), pq.Array(&p.Certifications), &status, &p.CurrentMission, &p.DailyRate); err != nil {
			return nil, fmt.Errorf("failed to scan pilot: %w", err)
		}
		p.Status = parsePilotStatus(status)
		pilots = append(pilots, p)
	}
	return pilots, rows.Err()
}

// Drones returns all drones ordered by identity.
func (r *PostgresRoster) Drones(ctx context.Context) ([]models.Drone, error) {
	query := `
		SELECT drone_id, model, location, status, capabilities, weather_resistance, maintenance_hours, current_mission
		FROM drones
		ORDER BY drone_id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query drones: %w", err)
	}
	defer rows.Close()

	var drones []models.Drone
	for rows.Next() {
		var d models.Drone
		var status, weather string
		if err := rows.Scan(&d.ID, &d.Model, &d.Location, &status, pq.Array(&d.Capabilities), &weather, &d.MaintenanceHours, &d.CurrentMission); err != nil {
			return nil, fmt.Errorf("failed to scan drone: %w", err)
		}
		d.Status = parseDroneStatus(status)
		d.WeatherResistance = models.WeatherResistance(weather)
		drones = append(drones, d)
	}
	return drones, rows.Err()
}

// Missions returns all missions ordered by start date.
func (r *PostgresRoster) Missions(ctx context.Context) ([]models.Mission, error) {
	query := `
		SELECT mission_id, client, location, start_date, end_date,
		       required_skills, required_certifications, budget, priority, status,
		       assigned_pilot, assigned_drone
		FROM missions
		ORDER BY start_date, mission_id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query missions: %w", err)
	}
	defer rows.Close()

	var missions []models.Mission
	for rows.Next() {
		var m models.Mission
		var priority, status string
		if err := rows.Scan(&m.ID, &m.Client, &m.Location, &m.StartDate, &m.EndDate,
			pq.Array(&m.RequiredSkills), pq.Array(&m.RequiredCertifications), &m.Budget, &priority, &status,
			&m.AssignedPilot, &m.AssignedDrone); err != nil {
			return nil, fmt.Errorf("failed to scan mission: %w", err)
		}
		m.Priority = parsePriority(priority)
		m.Status = parseMissionStatus(status)

		if m.EndDate.Before(m.StartDate) {
			r.logger.Warn("skipping mission with inverted date range", "mission_id", m.ID)
			continue
		}
		missions = append(missions, m)
	}
	return missions, rows.Err()
}

// PersistAssignment records a mission's assigned resources, flips the
// mission to Assigned, and best-effort updates the back-references on the
// pilot and drone rows.
func (r *PostgresRoster) PersistAssignment(ctx context.Context, missionID, pilotID, droneID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE missions
		SET assigned_pilot = $2, assigned_drone = $3, status = $4
		WHERE mission_id = $1
	`, missionID, pilotID, droneID, string(models.MissionAssigned))
	if err != nil {
		return fmt.Errorf("failed to update mission %s: %w", missionID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("mission %s not found", missionID)
	}

	// Back-references are best-effort: a missing pilot or drone row does
	// not fail the assignment write.
	if _, err := tx.ExecContext(ctx, `UPDATE pilots SET current_mission = $2 WHERE pilot_id = $1`, pilotID, missionID); err != nil {
		return fmt.Errorf("failed to update pilot back-reference: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE drones SET current_mission = $2 WHERE drone_id = $1`, droneID, missionID); err != nil {
		return fmt.Errorf("failed to update drone back-reference: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit assignment: %w", err)
	}
	return nil
}

// PersistStatus updates one entity's availability or lifecycle status.
func (r *PostgresRoster) PersistStatus(ctx context.Context, kind models.EntityKind, id, status string) error {
	var query string
	switch kind {
	case models.EntityPilot:
		query = `UPDATE pilots SET status = $2 WHERE pilot_id = $1`
	case models.EntityDrone:
		query = `UPDATE drones SET status = $2 WHERE drone_id = $1`
	case models.EntityMission:
		query = `UPDATE missions SET status = $2 WHERE mission_id = $1`
	default:
		return fmt.Errorf("unknown entity kind: %s", kind)
	}

	res, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update %s status: %w", kind, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%s %s not found", kind, id)
	}
	return nil
}

func parsePilotStatus(raw string) models.PilotStatus {
	switch models.PilotStatus(raw) {
	case models.PilotAvailable, models.PilotOnLeave, models.PilotUnavailable:
		return models.PilotStatus(raw)
	case "":
		return models.PilotAvailable
	default:
		return models.PilotUnavailable
	}
}

func parseDroneStatus(raw string) models.DroneStatus {
	switch models.DroneStatus(raw) {
	case models.DroneAvailable, models.DroneDeployed, models.DroneMaintenance:
		return models.DroneStatus(raw)
	case "":
		return models.DroneAvailable
	default:
		return models.DroneMaintenance
	}
}

func parsePriority(raw string) models.MissionPriority {
	switch models.MissionPriority(raw) {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityUrgent:
		return models.MissionPriority(raw)
	default:
		return models.PriorityMedium
	}
}

func parseMissionStatus(raw string) models.MissionStatus {
	switch models.MissionStatus(raw) {
	case models.MissionUnassigned, models.MissionAssigned, models.MissionInProgress, models.MissionCompleted:
		return models.MissionStatus(raw)
	default:
		return models.MissionUnassigned
	}
}
