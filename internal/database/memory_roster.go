package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/SkyOps/skyops/internal/models"
)

// MemoryRoster is an in-memory RosterStore used in mock mode and tests.
// Unlike the core, it locks internally: it stands in for an external system
// that can be hit from multiple goroutines.
type MemoryRoster struct {
	mu       sync.Mutex
	pilots   []models.Pilot
	drones   []models.Drone
	missions []models.Mission

	// FailWrites forces persistence calls to fail, for exercising the
	// partial-commit path.
	FailWrites bool
}

// NewMemoryRoster creates a roster store holding the given snapshot.
func NewMemoryRoster(pilots []models.Pilot, drones []models.Drone, missions []models.Mission) *MemoryRoster {
	return &MemoryRoster{pilots: pilots, drones: drones, missions: missions}
}

// NewSeededRoster returns a memory roster preloaded with a small demo
// fleet, used when the service runs without a database.
func NewSeededRoster() *MemoryRoster {
	date := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	return NewMemoryRoster(
		[]models.Pilot{
			{ID: "P001", Name: "Raj Kumar", Location: "Delhi", Skills: []string{"Thermal Imaging", "LiDAR"}, Certifications: []string{"DGCA Level 2", "Advanced Operations"}, Status: models.PilotAvailable, DailyRate: 5000},
			{ID: "P002", Name: "Priya Singh", Location: "Mumbai", Skills: []string{"Aerial Photography", "Video"}, Certifications: []string{"DGCA Level 1"}, Status: models.PilotAvailable, DailyRate: 4000},
			{ID: "P003", Name: "Anand Verma", Location: "Bangalore", Skills: []string{"Thermal Imaging", "GIS"}, Certifications: []string{"DGCA Level 2"}, Status: models.PilotOnLeave, DailyRate: 6000},
		},
		[]models.Drone{
			{ID: "DJI-001", Model: "Phantom 4 Pro", Location: "Delhi", Status: models.DroneAvailable, Capabilities: []string{"Thermal Imaging"}, WeatherResistance: models.WeatherIP67},
			{ID: "DJI-002", Model: "Matrice 300 RTK", Location: "Mumbai", Status: models.DroneAvailable, Capabilities: []string{"LiDAR"}, WeatherResistance: models.WeatherIP45},
			{ID: "DJI-003", Model: "Air 2S", Location: "Bangalore", Status: models.DroneMaintenance, Capabilities: []string{"Aerial Photography"}, WeatherResistance: models.WeatherIP54, MaintenanceHours: 24},
		},
		[]models.Mission{
			{ID: "M001", Client: "Dam Inspection", Location: "Delhi", StartDate: date(2026, 2, 20), EndDate: date(2026, 2, 22), RequiredSkills: []string{"Thermal Imaging"}, RequiredCertifications: []string{"DGCA Level 2"}, Budget: 50000, Priority: models.PriorityHigh, Status: models.MissionUnassigned},
			{ID: "M002", Client: "Site Survey", Location: "Mumbai", StartDate: date(2026, 3, 1), EndDate: date(2026, 3, 3), RequiredSkills: []string{"Aerial Photography"}, RequiredCertifications: []string{"DGCA Level 1"}, Budget: 35000, Priority: models.PriorityMedium, Status: models.MissionUnassigned},
		},
	)
}

// LoadAll returns a copy of the current snapshot.
func (r *MemoryRoster) LoadAll(ctx context.Context) ([]models.Pilot, []models.Drone, []models.Mission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pilots := make([]models.Pilot, len(r.pilots))
	copy(pilots, r.pilots)
	drones := make([]models.Drone, len(r.drones))
	copy(drones, r.drones)
	missions := make([]models.Mission, len(r.missions))
	copy(missions, r.missions)
	return pilots, drones, missions, nil
}

// PersistAssignment records a mission's assigned resources.
func (r *MemoryRoster) PersistAssignment(ctx context.Context, missionID, pilotID, droneID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailWrites {
		return fmt.Errorf("roster write unavailable")
	}

	for i := range r.missions {
		if r.missions[i].ID == missionID {
			r.missions[i].AssignedPilot = pilotID
			r.missions[i].AssignedDrone = droneID
			r.missions[i].Status = models.MissionAssigned
			for j := range r.pilots {
				if r.pilots[j].ID == pilotID {
					r.pilots[j].CurrentMission = missionID
				}
			}
			for j := range r.drones {
				if r.drones[j].ID == droneID {
					r.drones[j].CurrentMission = missionID
				}
			}
			return nil
		}
	}
	return fmt.Errorf("mission %s not found", missionID)
}

// PersistStatus updates one entity's status.
func (r *MemoryRoster) PersistStatus(ctx context.Context, kind models.EntityKind, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailWrites {
		return fmt.Errorf("roster write unavailable")
	}

	switch kind {
	case models.EntityPilot:
		for i := range r.pilots {
			if r.pilots[i].ID == id {
				r.pilots[i].Status = models.PilotStatus(status)
				return nil
			}
		}
	case models.EntityDrone:
		for i := range r.drones {
			if r.drones[i].ID == id {
				r.drones[i].Status = models.DroneStatus(status)
				return nil
			}
		}
	case models.EntityMission:
		for i := range r.missions {
			if r.missions[i].ID == id {
				r.missions[i].Status = models.MissionStatus(status)
				return nil
			}
		}
	default:
		return fmt.Errorf("unknown entity kind: %s", kind)
	}
	return fmt.Errorf("%s %s not found", kind, id)
}
