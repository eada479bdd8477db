package models

// Drone represents an aircraft in the fleet.
type Drone struct {
	ID                string            `json:"drone_id"`
	Model             string            `json:"model"`
	Location          string            `json:"location"`
	Status            DroneStatus       `json:"status"`
	Capabilities      []string          `json:"capabilities"`
	WeatherResistance WeatherResistance `json:"weather_resistance"`
	MaintenanceHours  int               `json:"maintenance_hours"`
	CurrentMission    string            `json:"current_mission,omitempty"`
}

// DroneStatus represents drone availability.
type DroneStatus string

const (
	DroneAvailable   DroneStatus = "Available"
	DroneDeployed    DroneStatus = "Deployed"
	DroneMaintenance DroneStatus = "Maintenance"
)

// WeatherResistance is an ordered ingress-protection rating.
// IP20 < IP45 < IP54 < IP67 < Waterproof.
type WeatherResistance string

const (
	WeatherIP20       WeatherResistance = "IP20"
	WeatherIP45       WeatherResistance = "IP45"
	WeatherIP54       WeatherResistance = "IP54"
	WeatherIP67       WeatherResistance = "IP67"
	WeatherWaterproof WeatherResistance = "Waterproof"
)

// IsAvailable reports whether the drone can accept new assignments.
func (d *Drone) IsAvailable() bool {
	return d.Status == DroneAvailable
}

// NeedsMaintenance reports whether the drone has outstanding maintenance hours.
func (d *Drone) NeedsMaintenance() bool {
	return d.MaintenanceHours > 0
}

// TierScore maps the resistance rating to its matching-score contribution.
// Unknown ratings fall back to a middle score.
func (w WeatherResistance) TierScore() float64 {
	switch w {
	case WeatherIP20:
		return 10
	case WeatherIP45:
		return 20
	case WeatherIP54:
		return 25
	case WeatherIP67:
		return 30
	case WeatherWaterproof:
		return 30
	default:
		return 15
	}
}
