package models

// Pilot represents a drone pilot with the skills, certifications, and rates
// used during mission matching.
type Pilot struct {
	ID             string      `json:"pilot_id"`
	Name           string      `json:"name"`
	Location       string      `json:"location"`
	Skills         []string    `json:"skills"`
	Certifications []string    `json:"certifications"`
	Status         PilotStatus `json:"status"`
	CurrentMission string      `json:"current_mission,omitempty"`
	DailyRate      float64     `json:"daily_rate"`
}

// PilotStatus represents pilot availability.
type PilotStatus string

const (
	PilotAvailable   PilotStatus = "Available"
	PilotOnLeave     PilotStatus = "On Leave"
	PilotUnavailable PilotStatus = "Unavailable"
)

// IsAvailable reports whether the pilot can accept new assignments.
func (p *Pilot) IsAvailable() bool {
	return p.Status == PilotAvailable
}

// HasAllSkills reports whether the pilot covers every required skill.
func (p *Pilot) HasAllSkills(required []string) bool {
	return len(p.MissingSkills(required)) == 0
}

// HasAllCertifications reports whether the pilot covers every required certification.
func (p *Pilot) HasAllCertifications(required []string) bool {
	return len(p.MissingCertifications(required)) == 0
}

// MissingSkills returns the required skills the pilot does not have,
// in the order they were required.
func (p *Pilot) MissingSkills(required []string) []string {
	return missingTags(required, p.Skills)
}

// MissingCertifications returns the required certifications the pilot does not have.
func (p *Pilot) MissingCertifications(required []string) []string {
	return missingTags(required, p.Certifications)
}

func missingTags(required, held []string) []string {
	var missing []string
	for _, tag := range required {
		found := false
		for _, h := range held {
			if h == tag {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, tag)
		}
	}
	return missing
}
