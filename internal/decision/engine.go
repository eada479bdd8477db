// Package decision turns the universe of pilots and drones into a ranked,
// constraint-feasible shortlist for a mission. Matching is independent of
// live assignment state; callers pass the already-assigned maps to exclude.
package decision

import (
	"math"
	"sort"

	"github.com/SkyOps/skyops/internal/conflict"
	"github.com/SkyOps/skyops/internal/models"
)

// PilotMatch is one surviving pilot candidate with its cost and score.
type PilotMatch struct {
	Pilot models.Pilot `json:"pilot"`
	Cost  float64      `json:"cost"`
	Score float64      `json:"score"`
}

// DroneMatch is one surviving drone candidate with its score.
type DroneMatch struct {
	Drone models.Drone `json:"drone"`
	Score float64      `json:"score"`
}

// Option is a pilot-drone pairing with its combined score.
type Option struct {
	Pilot         models.Pilot `json:"pilot"`
	Drone         models.Drone `json:"drone"`
	PilotCost     float64      `json:"pilot_cost"`
	PilotScore    float64      `json:"pilot_score"`
	DroneScore    float64      `json:"drone_score"`
	CombinedScore float64      `json:"combined_score"`
}

// Engine implements candidate filtering, scoring, and ranking.
type Engine struct{}

// NewEngine creates a decision engine.
func NewEngine() *Engine {
	return &Engine{}
}

// MatchPilots filters pilots against the mission's hard constraints and
// returns the survivors sorted by cost, cheapest first. Pilot ordering is
// cost-driven, not score-driven.
//
// Rejection order: availability, skills, certifications, schedule overlap
// against assignedPilots (pilot ID -> the mission that pilot holds), budget.
func (e *Engine) MatchPilots(mission *models.Mission, pilots []models.Pilot, assignedPilots map[string]models.Mission) []PilotMatch {
	var matches []PilotMatch

	for i := range pilots {
		pilot := &pilots[i]

		if !pilot.IsAvailable() {
			continue
		}
		if !pilot.HasAllSkills(mission.RequiredSkills) {
			continue
		}
		if !pilot.HasAllCertifications(mission.RequiredCertifications) {
			continue
		}

		if other, ok := assignedPilots[pilot.ID]; ok {
			if mission.OverlapsWith(&other) {
				continue
			}
		}

		cost := conflict.PilotCost(pilot.DailyRate, mission.DurationDays())
		if !conflict.WithinBudget(mission.Budget, cost) {
			continue
		}

		matches = append(matches, PilotMatch{
			Pilot: *pilot,
			Cost:  cost,
			Score: e.pilotScore(pilot, mission, cost),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Cost < matches[j].Cost
	})

	return matches
}

// pilotScore computes the 0-100 match score:
// skill overlap 40% + certification overlap 30% + cost efficiency 20% +
// location bonus 10 (same location) or 5. Missions requiring no skills or
// certifications grant full credit for the respective component.
func (e *Engine) pilotScore(pilot *models.Pilot, mission *models.Mission, cost float64) float64 {
	score := overlapFraction(mission.RequiredSkills, pilot.Skills) * 40
	score += overlapFraction(mission.RequiredCertifications, pilot.Certifications) * 30

	costRatio := math.Min(cost/math.Max(mission.Budget, 1), 1.0)
	score += (1 - costRatio) * 20

	if pilot.Location == mission.Location {
		score += 10
	} else {
		score += 5
	}

	return round2(score)
}

// MatchDrones filters drones against the mission's hard constraints and
// returns the survivors sorted by score, best first. Drone ordering is
// quality-driven, the opposite of pilot ordering.
func (e *Engine) MatchDrones(mission *models.Mission, drones []models.Drone, assignedDrones map[string]models.Mission) []DroneMatch {
	var matches []DroneMatch

	for i := range drones {
		drone := &drones[i]

		if !drone.IsAvailable() {
			continue
		}
		if !weatherCompatible(drone, mission) {
			continue
		}

		if other, ok := assignedDrones[drone.ID]; ok {
			if mission.OverlapsWith(&other) {
				continue
			}
		}

		if drone.NeedsMaintenance() {
			continue
		}

		matches = append(matches, DroneMatch{
			Drone: *drone,
			Score: e.droneScore(drone, mission),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	return matches
}

// weatherCompatible always passes until real forecast data exists.
func weatherCompatible(drone *models.Drone, mission *models.Mission) bool {
	return true
}

// droneScore computes the 0-100 match score: capability flat 50 +
// weather-rating tier + location bonus 20 (same location) or 10.
func (e *Engine) droneScore(drone *models.Drone, mission *models.Mission) float64 {
	score := 50.0
	score += drone.WeatherResistance.TierScore()

	if drone.Location == mission.Location {
		score += 20
	} else {
		score += 10
	}

	return round2(score)
}

// FindBestAssignment pairs the cheapest valid pilot with the best-scoring
// valid drone. The two resource types are optimized independently, not as a
// joint optimum over all pairs. Returns nil when either list is empty.
func (e *Engine) FindBestAssignment(mission *models.Mission, pilots []models.Pilot, drones []models.Drone, assignedPilots, assignedDrones map[string]models.Mission) *Option {
	validPilots := e.MatchPilots(mission, pilots, assignedPilots)
	validDrones := e.MatchDrones(mission, drones, assignedDrones)

	if len(validPilots) == 0 || len(validDrones) == 0 {
		return nil
	}

	best := Option{
		Pilot:      validPilots[0].Pilot,
		Drone:      validDrones[0].Drone,
		PilotCost:  validPilots[0].Cost,
		PilotScore: validPilots[0].Score,
		DroneScore: validDrones[0].Score,
	}
	best.CombinedScore = (best.PilotScore + best.DroneScore) / 2

	return &best
}

// RankAssignments scores the full cross product of valid pilots and drones,
// sorted by combined score descending and truncated to topN. Used for
// recommendations rather than auto-assignment.
func (e *Engine) RankAssignments(mission *models.Mission, pilots []models.Pilot, drones []models.Drone, assignedPilots, assignedDrones map[string]models.Mission, topN int) []Option {
	validPilots := e.MatchPilots(mission, pilots, assignedPilots)
	validDrones := e.MatchDrones(mission, drones, assignedDrones)

	options := make([]Option, 0, len(validPilots)*len(validDrones))
	for _, p := range validPilots {
		for _, d := range validDrones {
			options = append(options, Option{
				Pilot:         p.Pilot,
				Drone:         d.Drone,
				PilotCost:     p.Cost,
				PilotScore:    p.Score,
				DroneScore:    d.Score,
				CombinedScore: (p.Score + d.Score) / 2,
			})
		}
	}

	sort.SliceStable(options, func(i, j int) bool {
		return options[i].CombinedScore > options[j].CombinedScore
	})

	if topN > 0 && len(options) > topN {
		options = options[:topN]
	}

	return options
}

func overlapFraction(required, held []string) float64 {
	if len(required) == 0 {
		return 1.0
	}
	matching := 0
	for _, tag := range required {
		for _, h := range held {
			if h == tag {
				matching++
				break
			}
		}
	}
	return float64(matching) / float64(len(required))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
