package decision

import (
	"testing"
	"time"

	"github.com/SkyOps/skyops/internal/models"
)

func day(d string) time.Time {
	t, err := time.Parse("2006-01-02", d)
	if err != nil {
		panic(err)
	}
	return t
}

func inspectionMission() models.Mission {
	return models.Mission{
		ID:                     "M001",
		Client:                 "Dam Inspection",
		Location:               "Delhi",
		StartDate:              day("2026-02-20"),
		EndDate:                day("2026-02-22"),
		RequiredSkills:         []string{"Thermal Imaging"},
		RequiredCertifications: []string{"DGCA Level 2"},
		Budget:                 50000,
		Priority:               models.PriorityHigh,
		Status:                 models.MissionUnassigned,
	}
}

func fleetPilots() []models.Pilot {
	return []models.Pilot{
		{
			ID:             "P001",
			Name:           "Raj Kumar",
			Location:       "Delhi",
			Skills:         []string{"Thermal Imaging", "LiDAR"},
			Certifications: []string{"DGCA Level 2"},
			Status:         models.PilotAvailable,
			DailyRate:      5000,
		},
		{
			ID:             "P002",
			Name:           "Priya Singh",
			Location:       "Mumbai",
			Skills:         []string{"Thermal Imaging", "Photogrammetry"},
			Certifications: []string{"DGCA Level 2"},
			Status:         models.PilotAvailable,
			DailyRate:      4000,
		},
		{
			ID:             "P003",
			Name:           "Anand Verma",
			Location:       "Bangalore",
			Skills:         []string{"Thermal Imaging"},
			Certifications: []string{"DGCA Level 2"},
			Status:         models.PilotOnLeave,
			DailyRate:      6000,
		},
	}
}

func fleetDrones() []models.Drone {
	return []models.Drone{
		{
			ID:                "DJI-001",
			Model:             "Phantom 4 Pro",
			Location:          "Delhi",
			Status:            models.DroneAvailable,
			WeatherResistance: models.WeatherIP67,
		},
		{
			ID:                "DJI-002",
			Model:             "Matrice 300 RTK",
			Location:          "Mumbai",
			Status:            models.DroneAvailable,
			WeatherResistance: models.WeatherIP45,
		},
		{
			ID:                "DJI-003",
			Model:             "Air 2S",
			Location:          "Bangalore",
			Status:            models.DroneMaintenance,
			WeatherResistance: models.WeatherIP54,
			MaintenanceHours:  24,
		},
	}
}

func TestMatchPilotsFiltersAndSortsByCost(t *testing.T) {
	engine := NewEngine()
	mission := inspectionMission()

	matches := engine.MatchPilots(&mission, fleetPilots(), nil)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches (P003 on leave), got %d", len(matches))
	}

	// Cheapest first: P002 at 4000/day over 3 days = 12000.
	if matches[0].Pilot.ID != "P002" {
		t.Errorf("expected P002 first (cheapest), got %s", matches[0].Pilot.ID)
	}
	if matches[0].Cost != 12000 {
		t.Errorf("expected P002 cost 12000, got %v", matches[0].Cost)
	}
	if matches[1].Pilot.ID != "P001" {
		t.Errorf("expected P001 second, got %s", matches[1].Pilot.ID)
	}
	if matches[1].Cost != 15000 {
		t.Errorf("expected P001 cost 15000, got %v", matches[1].Cost)
	}
}

func TestMatchPilotsRejections(t *testing.T) {
	engine := NewEngine()
	mission := inspectionMission()

	tests := []struct {
		name   string
		mutate func(*models.Pilot)
	}{
		{name: "missing skill", mutate: func(p *models.Pilot) { p.Skills = []string{"LiDAR"} }},
		{name: "missing certification", mutate: func(p *models.Pilot) { p.Certifications = nil }},
		{name: "over budget", mutate: func(p *models.Pilot) { p.DailyRate = 20000 }},
		{name: "unavailable", mutate: func(p *models.Pilot) { p.Status = models.PilotUnavailable }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pilot := fleetPilots()[0]
			tt.mutate(&pilot)

			matches := engine.MatchPilots(&mission, []models.Pilot{pilot}, nil)
			if len(matches) != 0 {
				t.Errorf("expected pilot rejected, got %v", matches)
			}
		})
	}
}

func TestMatchPilotsExcludesOverlappingAssignment(t *testing.T) {
	engine := NewEngine()
	mission := inspectionMission()
	pilots := fleetPilots()[:1]

	overlapping := models.Mission{
		ID:        "M009",
		StartDate: day("2026-02-22"),
		EndDate:   day("2026-02-24"),
	}
	assigned := map[string]models.Mission{"P001": overlapping}

	if matches := engine.MatchPilots(&mission, pilots, assigned); len(matches) != 0 {
		t.Errorf("expected pilot with overlapping assignment rejected, got %v", matches)
	}

	// A disjoint existing assignment does not block the pilot.
	disjoint := models.Mission{
		ID:        "M010",
		StartDate: day("2026-03-10"),
		EndDate:   day("2026-03-12"),
	}
	assigned = map[string]models.Mission{"P001": disjoint}

	if matches := engine.MatchPilots(&mission, pilots, assigned); len(matches) != 1 {
		t.Errorf("expected pilot with disjoint assignment accepted, got %v", matches)
	}
}

func TestPilotScoreComponents(t *testing.T) {
	engine := NewEngine()
	mission := inspectionMission()

	matches := engine.MatchPilots(&mission, fleetPilots(), nil)
	for _, m := range matches {
		if m.Score < 0 || m.Score > 100 {
			t.Errorf("pilot %s score %v out of [0,100]", m.Pilot.ID, m.Score)
		}
	}

	// P001: full skills (40) + full certs (30) + (1 - 15000/50000)*20 = 14
	// + same-city bonus 10 = 94.
	for _, m := range matches {
		if m.Pilot.ID == "P001" && m.Score != 94 {
			t.Errorf("expected P001 score 94, got %v", m.Score)
		}
	}
}

func TestPilotScoreEmptyRequirementsFullCredit(t *testing.T) {
	engine := NewEngine()
	mission := inspectionMission()
	mission.RequiredSkills = nil
	mission.RequiredCertifications = nil

	pilot := models.Pilot{
		ID:        "P004",
		Name:      "Kiran Rao",
		Location:  "Delhi",
		Status:    models.PilotAvailable,
		DailyRate: 0,
	}

	matches := engine.MatchPilots(&mission, []models.Pilot{pilot}, nil)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	// 40 + 30 + 20 (zero cost) + 10 (same city) = 100.
	if matches[0].Score != 100 {
		t.Errorf("expected perfect score 100, got %v", matches[0].Score)
	}
}

func TestMatchDronesSortsByScoreDescending(t *testing.T) {
	engine := NewEngine()
	mission := inspectionMission()

	matches := engine.MatchDrones(&mission, fleetDrones(), nil)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches (DJI-003 in maintenance), got %d", len(matches))
	}

	// DJI-001: 50 + 30 (IP67) + 20 (Delhi) = 100.
	// DJI-002: 50 + 20 (IP45) + 10 (Mumbai) = 80.
	if matches[0].Drone.ID != "DJI-001" || matches[0].Score != 100 {
		t.Errorf("expected DJI-001 first with score 100, got %s/%v", matches[0].Drone.ID, matches[0].Score)
	}
	if matches[1].Drone.ID != "DJI-002" || matches[1].Score != 80 {
		t.Errorf("expected DJI-002 second with score 80, got %s/%v", matches[1].Drone.ID, matches[1].Score)
	}
}

func TestMatchDronesRejectsMaintenanceBacklog(t *testing.T) {
	engine := NewEngine()
	mission := inspectionMission()

	drone := fleetDrones()[0]
	drone.MaintenanceHours = 8

	if matches := engine.MatchDrones(&mission, []models.Drone{drone}, nil); len(matches) != 0 {
		t.Errorf("expected drone with maintenance backlog rejected, got %v", matches)
	}
}

func TestFindBestAssignment(t *testing.T) {
	engine := NewEngine()
	mission := inspectionMission()

	best := engine.FindBestAssignment(&mission, fleetPilots(), fleetDrones(), nil, nil)
	if best == nil {
		t.Fatal("expected an assignment")
	}

	// Cheapest pilot and best-scoring drone are chosen independently.
	if best.Pilot.ID != "P002" {
		t.Errorf("expected cheapest pilot P002, got %s", best.Pilot.ID)
	}
	if best.Drone.ID != "DJI-001" {
		t.Errorf("expected best drone DJI-001, got %s", best.Drone.ID)
	}
	if best.CombinedScore != (best.PilotScore+best.DroneScore)/2 {
		t.Errorf("combined score %v is not the average of %v and %v",
			best.CombinedScore, best.PilotScore, best.DroneScore)
	}
}

func TestFindBestAssignmentNilWhenPoolEmpty(t *testing.T) {
	engine := NewEngine()
	mission := inspectionMission()

	if best := engine.FindBestAssignment(&mission, nil, fleetDrones(), nil, nil); best != nil {
		t.Errorf("expected nil with no pilots, got %+v", best)
	}
	if best := engine.FindBestAssignment(&mission, fleetPilots(), nil, nil, nil); best != nil {
		t.Errorf("expected nil with no drones, got %+v", best)
	}
}

func TestRankAssignments(t *testing.T) {
	engine := NewEngine()
	mission := inspectionMission()

	options := engine.RankAssignments(&mission, fleetPilots(), fleetDrones(), nil, nil, 3)
	if len(options) != 3 {
		t.Fatalf("expected 3 options (2x2 cross product truncated), got %d", len(options))
	}

	for i := 1; i < len(options); i++ {
		if options[i].CombinedScore > options[i-1].CombinedScore {
			t.Errorf("options not sorted descending at index %d", i)
		}
	}

	all := engine.RankAssignments(&mission, fleetPilots(), fleetDrones(), nil, nil, 0)
	if len(all) != 4 {
		t.Errorf("expected full cross product of 4 with topN=0, got %d", len(all))
	}
}
