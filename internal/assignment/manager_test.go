package assignment

import (
	"io"
	"testing"
	"time"

	"log/slog"

	"github.com/SkyOps/skyops/internal/decision"
	"github.com/SkyOps/skyops/internal/models"
)

func day(d string) time.Time {
	t, err := time.Parse("2006-01-02", d)
	if err != nil {
		panic(err)
	}
	return t
}

func newTestManager() *Manager {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewManager(decision.NewEngine(), logger)
}

func mission(id, start, end string) models.Mission {
	return models.Mission{
		ID:        id,
		Client:    "Client " + id,
		Location:  "Delhi",
		StartDate: day(start),
		EndDate:   day(end),
		Budget:    50000,
		Status:    models.MissionUnassigned,
	}
}

func pilot(id string) models.Pilot {
	return models.Pilot{
		ID:        id,
		Name:      "Pilot " + id,
		Location:  "Delhi",
		Status:    models.PilotAvailable,
		DailyRate: 5000,
	}
}

func drone(id string) models.Drone {
	return models.Drone{
		ID:                id,
		Location:          "Delhi",
		Status:            models.DroneAvailable,
		WeatherResistance: models.WeatherIP67,
	}
}

func TestAssignAndQuery(t *testing.T) {
	m := newTestManager()

	result := m.Assign(mission("M001", "2026-02-20", "2026-02-22"), pilot("P001"), drone("D001"), 92.5)
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.Status != models.StatusAssigned {
		t.Errorf("expected status %s, got %s", models.StatusAssigned, result.Status)
	}

	a, ok := m.Assignment("M001")
	if !ok {
		t.Fatal("expected live assignment for M001")
	}
	if a.Pilot.ID != "P001" || a.Drone.ID != "D001" {
		t.Errorf("unexpected resources: %s/%s", a.Pilot.ID, a.Drone.ID)
	}
	if a.Score != 92.5 {
		t.Errorf("expected score 92.5, got %.2f", a.Score)
	}

	history := m.History(0)
	if len(history) != 1 || history[0].Action != models.ActionAssign {
		t.Errorf("expected single assign history entry, got %v", history)
	}
}

func TestAssignRejectsDoubleBooking(t *testing.T) {
	m := newTestManager()

	if r := m.Assign(mission("M001", "2026-02-20", "2026-02-22"), pilot("P001"), drone("D001"), 90); !r.Success {
		t.Fatalf("setup assign failed: %+v", r)
	}

	// Same pilot, overlapping dates.
	result := m.Assign(mission("M002", "2026-02-22", "2026-02-24"), pilot("P001"), drone("D002"), 90)
	if result.Success {
		t.Fatal("expected schedule clash")
	}
	if result.Status != models.StatusScheduleClash {
		t.Errorf("expected status %s, got %s", models.StatusScheduleClash, result.Status)
	}

	// The failed attempt must not mutate state.
	if _, ok := m.Assignment("M002"); ok {
		t.Error("failed assignment must not be recorded")
	}
	if len(m.History(0)) != 1 {
		t.Errorf("failed assignment must not append history, got %d entries", len(m.History(0)))
	}

	// Same drone, overlapping dates.
	result = m.Assign(mission("M003", "2026-02-21", "2026-02-21"), pilot("P002"), drone("D001"), 90)
	if result.Success || result.Status != models.StatusScheduleClash {
		t.Errorf("expected drone schedule clash, got %+v", result)
	}

	// Disjoint dates are fine for the same resources.
	result = m.Assign(mission("M004", "2026-03-01", "2026-03-03"), pilot("P001"), drone("D001"), 90)
	if !result.Success {
		t.Errorf("disjoint reuse of resources must succeed, got %+v", result)
	}
}

func TestAssignRejectsAlreadyAssignedMission(t *testing.T) {
	m := newTestManager()

	if r := m.Assign(mission("M001", "2026-02-20", "2026-02-22"), pilot("P001"), drone("D001"), 90); !r.Success {
		t.Fatalf("setup assign failed: %+v", r)
	}

	result := m.Assign(mission("M001", "2026-02-20", "2026-02-22"), pilot("P002"), drone("D002"), 90)
	if result.Success {
		t.Fatal("expected already-assigned rejection")
	}
	if result.Status != models.StatusAlreadyAssigned {
		t.Errorf("expected status %s, got %s", models.StatusAlreadyAssigned, result.Status)
	}

	// Original assignment stays intact.
	a, _ := m.Assignment("M001")
	if a.Pilot.ID != "P001" {
		t.Errorf("original assignment mutated: %s", a.Pilot.ID)
	}
}

func TestReassignReplacesResources(t *testing.T) {
	m := newTestManager()

	if r := m.Assign(mission("M001", "2026-02-20", "2026-02-22"), pilot("P001"), drone("D001"), 85); !r.Success {
		t.Fatalf("setup assign failed: %+v", r)
	}

	result := m.Reassign(mission("M001", "2026-02-20", "2026-02-22"), pilot("P002"), drone("D002"), 88)
	if !result.Success {
		t.Fatalf("reassign failed: %+v", result)
	}

	a, _ := m.Assignment("M001")
	if a.Pilot.ID != "P002" || a.Drone.ID != "D002" {
		t.Errorf("expected new resources, got %s/%s", a.Pilot.ID, a.Drone.ID)
	}
	if a.Score != 88 {
		t.Errorf("expected replacement score 88, got %.2f", a.Score)
	}

	// Exactly one live assignment; history shows assign, unassign, assign.
	if got := len(m.AllAssignments()); got != 1 {
		t.Errorf("expected 1 live assignment, got %d", got)
	}
	history := m.History(0)
	if len(history) != 3 {
		t.Fatalf("expected 3 history entries, got %d", len(history))
	}
	if history[1].Action != models.ActionUnassign || history[2].Action != models.ActionAssign {
		t.Errorf("expected unassign/assign pair, got %s/%s", history[1].Action, history[2].Action)
	}
}

func TestReassignSameResources(t *testing.T) {
	m := newTestManager()

	if r := m.Assign(mission("M001", "2026-02-20", "2026-02-22"), pilot("P001"), drone("D001"), 85); !r.Success {
		t.Fatalf("setup assign failed: %+v", r)
	}

	// Reassigning onto the identical pilot and drone must succeed; the
	// transient unassign must not trip the double-booking check.
	result := m.Reassign(mission("M001", "2026-02-20", "2026-02-22"), pilot("P001"), drone("D001"), 85)
	if !result.Success {
		t.Fatalf("same-resource reassign failed: %+v", result)
	}

	a, ok := m.Assignment("M001")
	if !ok || a.Pilot.ID != "P001" || a.Drone.ID != "D001" {
		t.Errorf("expected P001/D001 still held, got %+v", a)
	}
	if got := len(m.AllAssignments()); got != 1 {
		t.Errorf("expected 1 live assignment, got %d", got)
	}

	// Still observable in history as an unassign/assign pair.
	history := m.History(0)
	if len(history) != 3 {
		t.Fatalf("expected 3 history entries, got %d", len(history))
	}
	if history[1].Action != models.ActionUnassign || history[2].Action != models.ActionAssign {
		t.Errorf("expected unassign/assign pair, got %s/%s", history[1].Action, history[2].Action)
	}
}

func TestReassignUnassignedMissionActsAsAssign(t *testing.T) {
	m := newTestManager()

	result := m.Reassign(mission("M001", "2026-02-20", "2026-02-22"), pilot("P001"), drone("D001"), 90)
	if !result.Success {
		t.Fatalf("reassign of unassigned mission failed: %+v", result)
	}
	if len(m.History(0)) != 1 {
		t.Errorf("expected single history entry, got %d", len(m.History(0)))
	}
}

func TestUnassignMissing(t *testing.T) {
	m := newTestManager()

	result := m.Unassign("M404")
	if result.Success {
		t.Fatal("expected failure for unknown mission")
	}
	if result.Status != models.StatusNotAssigned {
		t.Errorf("expected status %s, got %s", models.StatusNotAssigned, result.Status)
	}
}

func TestSchedulesAndAvailability(t *testing.T) {
	m := newTestManager()

	m.Assign(mission("M002", "2026-03-01", "2026-03-03"), pilot("P001"), drone("D001"), 90)
	m.Assign(mission("M001", "2026-02-20", "2026-02-22"), pilot("P001"), drone("D002"), 90)

	windows := m.PilotSchedule("P001")
	if len(windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(windows))
	}
	if windows[0].MissionID != "M001" {
		t.Errorf("expected windows ordered by start, got %s first", windows[0].MissionID)
	}

	probe := mission("M005", "2026-02-21", "2026-02-21")
	if m.IsPilotAvailable("P001", &probe) {
		t.Error("P001 must be busy on 2026-02-21")
	}
	if !m.IsDroneAvailable("D001", &probe) {
		t.Error("D001 holds only the March mission and must be free")
	}

	free := mission("M006", "2026-04-01", "2026-04-02")
	if !m.IsPilotAvailable("P001", &free) {
		t.Error("P001 must be free in April")
	}
}

func TestFindBestAssignmentForMissionWithholdsBusyResources(t *testing.T) {
	m := newTestManager()

	m.Assign(mission("M001", "2026-02-20", "2026-02-22"), pilot("P001"), drone("D001"), 90)

	// Even for a disjoint window, a resource holding any live assignment is
	// not offered again; P002/D002 must be chosen.
	target := mission("M002", "2026-03-10", "2026-03-12")
	pilots := []models.Pilot{pilot("P001"), pilot("P002")}
	drones := []models.Drone{drone("D001"), drone("D002")}

	best := m.FindBestAssignmentForMission(&target, pilots, drones)
	if best == nil {
		t.Fatal("expected an assignment")
	}
	if best.Pilot.ID != "P002" || best.Drone.ID != "D002" {
		t.Errorf("expected unheld resources P002/D002, got %s/%s", best.Pilot.ID, best.Drone.ID)
	}
}

func TestReport(t *testing.T) {
	m := newTestManager()

	m.Assign(mission("M002", "2026-03-01", "2026-03-03"), pilot("P002"), drone("D001"), 87.5)
	m.Assign(mission("M001", "2026-02-20", "2026-02-22"), pilot("P001"), drone("D001"), 91)

	report := m.Report()
	if report.TotalAssignments != 2 {
		t.Errorf("expected 2 assignments, got %d", report.TotalAssignments)
	}
	if len(report.Assignments) != 2 || report.Assignments[0].MissionID != "M001" {
		t.Errorf("expected assignments ordered by mission ID, got %v", report.Assignments)
	}
	if report.Assignments[0].Score != 91 || report.Assignments[1].Score != 87.5 {
		t.Errorf("expected scores 91/87.5, got %.2f/%.2f", report.Assignments[0].Score, report.Assignments[1].Score)
	}
	if len(report.PilotsUtilized) != 2 {
		t.Errorf("expected 2 distinct pilots, got %v", report.PilotsUtilized)
	}
	if len(report.DronesUtilized) != 1 || report.DronesUtilized[0] != "D001" {
		t.Errorf("expected single distinct drone D001, got %v", report.DronesUtilized)
	}
}

func TestHistoryLimit(t *testing.T) {
	m := newTestManager()

	m.Assign(mission("M001", "2026-02-20", "2026-02-22"), pilot("P001"), drone("D001"), 90)
	m.Assign(mission("M002", "2026-03-01", "2026-03-03"), pilot("P002"), drone("D002"), 90)
	m.Unassign("M001")

	recent := m.History(2)
	if len(recent) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(recent))
	}
	if recent[1].Action != models.ActionUnassign || recent[1].MissionID != "M001" {
		t.Errorf("expected most recent entry last, got %+v", recent[1])
	}
}
