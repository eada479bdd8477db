package controller

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/SkyOps/skyops/internal/assignment"
	"github.com/SkyOps/skyops/internal/conflict"
	"github.com/SkyOps/skyops/internal/database"
	"github.com/SkyOps/skyops/internal/decision"
	"github.com/SkyOps/skyops/internal/metrics"
	"github.com/SkyOps/skyops/internal/models"
	"github.com/SkyOps/skyops/internal/reassignment"
)

func newTestController(t *testing.T) (*Controller, *database.MemoryRoster) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := database.NewSeededRoster()
	conflicts := conflict.NewEngine()
	decisions := decision.NewEngine()
	manager := assignment.NewManager(decisions, logger)
	urgent := reassignment.NewService(store, conflicts, decisions, manager, logger)

	collector, err := metrics.NewCollector()
	if err != nil {
		t.Fatalf("metrics.NewCollector: %v", err)
	}

	ctrl, err := New(context.Background(), store, conflicts, decisions, manager, urgent, collector, logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return ctrl, store
}

func TestProcessMissionAssignment(t *testing.T) {
	ctrl, store := newTestController(t)
	ctx := context.Background()

	result, err := ctrl.ProcessMissionAssignment(ctx, "M001")
	if err != nil {
		t.Fatalf("ProcessMissionAssignment: %v", err)
	}
	if result.Status != OutcomeAssigned {
		t.Fatalf("status = %s (%s), want %s", result.Status, result.Message, OutcomeAssigned)
	}
	if result.Assignment == nil {
		t.Fatal("assigned result carries no assignment details")
	}
	// The seeded fleet has exactly one pilot matching the dam inspection's
	// thermal-imaging and certification requirements.
	if result.Assignment.PilotID != "P001" || result.Assignment.DroneID != "DJI-001" {
		t.Errorf("resources = %s/%s, want P001/DJI-001", result.Assignment.PilotID, result.Assignment.DroneID)
	}
	if result.Assignment.PilotCost != 15000 {
		t.Errorf("pilot cost = %.0f, want 15000", result.Assignment.PilotCost)
	}
	if result.Assignment.Score != 97 {
		t.Errorf("combined score = %.2f, want 97", result.Assignment.Score)
	}

	// The commit is written through to the roster. Resource statuses stay
	// untouched; availability for other missions is date-based.
	pilots, drones, missions, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	for _, m := range missions {
		if m.ID == "M001" {
			if m.AssignedPilot != "P001" || m.Status != models.MissionAssigned {
				t.Errorf("roster mission = %s/%s", m.AssignedPilot, m.Status)
			}
		}
	}
	for _, p := range pilots {
		if p.ID == "P001" && p.Status != models.PilotAvailable {
			t.Errorf("pilot status = %s, want %s", p.Status, models.PilotAvailable)
		}
	}
	for _, d := range drones {
		if d.ID == "DJI-001" && d.Status != models.DroneAvailable {
			t.Errorf("drone status = %s, want %s", d.Status, models.DroneAvailable)
		}
	}
}

func TestProcessMissionAssignmentUnknownMission(t *testing.T) {
	ctrl, _ := newTestController(t)

	_, err := ctrl.ProcessMissionAssignment(context.Background(), "M999")
	if err == nil {
		t.Fatal("expected error for unknown mission")
	}
	if !strings.Contains(err.Error(), "M999") {
		t.Errorf("error = %v", err)
	}
}

func TestProcessMissionAssignmentExhaustedPool(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()

	if first, err := ctrl.ProcessMissionAssignment(ctx, "M001"); err != nil || first.Status != OutcomeAssigned {
		t.Fatalf("first attempt: %v / %+v", err, first)
	}

	// P001 and DJI-001 are now held and the remaining pilots cannot meet
	// the mission requirements, so a repeat attempt has no viable pool.
	second, err := ctrl.ProcessMissionAssignment(ctx, "M001")
	if err != nil {
		t.Fatalf("second attempt: %v", err)
	}
	if second.Status != OutcomeUnassignable {
		t.Fatalf("status = %s, want %s", second.Status, OutcomeUnassignable)
	}
	if second.Conflicts == nil {
		t.Fatal("unassignable result carries no conflict report")
	}
	if second.Conflicts.Summary.CriticalBlocks == 0 {
		t.Error("conflict report shows zero critical blocks")
	}
}

func TestProcessUnassignedMissions(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()

	results := ctrl.ProcessUnassignedMissions(ctx)
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}

	byMission := map[string]MissionResult{}
	for _, r := range results {
		byMission[r.MissionID] = r
	}
	if r := byMission["M001"]; r.Status != OutcomeAssigned || r.Assignment.PilotID != "P001" {
		t.Errorf("M001 = %+v", r)
	}
	// The site survey needs aerial photography; only the Mumbai pilot
	// qualifies, and the Mumbai drone outranks the remote one.
	if r := byMission["M002"]; r.Status != OutcomeAssigned || r.Assignment.PilotID != "P002" || r.Assignment.DroneID != "DJI-002" {
		t.Errorf("M002 = %+v", r)
	}

	// Nothing left to process.
	if again := ctrl.ProcessUnassignedMissions(ctx); len(again) != 0 {
		t.Errorf("second pass processed %d missions", len(again))
	}
}

func TestAnalyzeMissionConflicts(t *testing.T) {
	ctrl, _ := newTestController(t)

	report, err := ctrl.AnalyzeMissionConflicts("M001")
	if err != nil {
		t.Fatalf("AnalyzeMissionConflicts: %v", err)
	}
	if report.MissionID != "M001" {
		t.Errorf("mission ID = %s", report.MissionID)
	}
	if report.Summary.TotalPilots != 3 || report.Summary.TotalDrones != 3 {
		t.Errorf("pool sizes = %d/%d, want 3/3", report.Summary.TotalPilots, report.Summary.TotalDrones)
	}
	if report.Summary.ViablePilots != 1 {
		t.Errorf("viable pilots = %d, want 1", report.Summary.ViablePilots)
	}
	if report.Summary.CriticalBlocks == 0 {
		t.Error("expected critical blocks for the non-viable candidates")
	}

	if _, err := ctrl.AnalyzeMissionConflicts("M999"); err == nil {
		t.Error("expected error for unknown mission")
	}
}

func TestRecommendAssignments(t *testing.T) {
	ctrl, _ := newTestController(t)

	rec, err := ctrl.RecommendAssignments("M001", 2)
	if err != nil {
		t.Fatalf("RecommendAssignments: %v", err)
	}
	// One qualified pilot crossed with the two available drones.
	if len(rec.Options) != 2 {
		t.Fatalf("options = %d, want 2", len(rec.Options))
	}
	if rec.Options[0].Pilot.ID != "P001" || rec.Options[0].Drone.ID != "DJI-001" {
		t.Errorf("top option = %s/%s", rec.Options[0].Pilot.ID, rec.Options[0].Drone.ID)
	}
	if rec.Options[0].CombinedScore < rec.Options[1].CombinedScore {
		t.Error("options not ordered by combined score")
	}
}

func TestStatus(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()

	before := ctrl.Status()
	if before.TotalPilots != 3 || before.AvailablePilots != 2 {
		t.Errorf("pilots = %d/%d, want 3 total 2 available", before.TotalPilots, before.AvailablePilots)
	}
	if before.TotalDrones != 3 || before.AvailableDrones != 2 {
		t.Errorf("drones = %d/%d, want 3 total 2 available", before.TotalDrones, before.AvailableDrones)
	}
	if before.UnassignedMissions != 2 || before.AssignedMissions != 0 {
		t.Errorf("missions = %d unassigned %d assigned", before.UnassignedMissions, before.AssignedMissions)
	}

	ctrl.ProcessUnassignedMissions(ctx)

	after := ctrl.Status()
	if after.AssignedMissions != 2 || after.UnassignedMissions != 0 {
		t.Errorf("after assignment: %d assigned %d unassigned", after.AssignedMissions, after.UnassignedMissions)
	}
	if after.HistorySize != 2 {
		t.Errorf("history size = %d, want 2", after.HistorySize)
	}
	if len(after.RecentAssignments) != 2 {
		t.Errorf("recent assignments = %d, want 2", len(after.RecentAssignments))
	}
}

func TestHealthyAssignmentSurvivesUrgentSweep(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()

	first, err := ctrl.ProcessMissionAssignment(ctx, "M001")
	if err != nil {
		t.Fatalf("ProcessMissionAssignment: %v", err)
	}
	if first.Status != OutcomeAssigned {
		t.Fatalf("status = %s (%s), want %s", first.Status, first.Message, OutcomeAssigned)
	}

	// The repair workflow refreshes from the roster before validating. A
	// commit the controller itself just made must still read as valid.
	check, err := ctrl.HandleUrgentReassignment(ctx, "M001")
	if err != nil {
		t.Fatalf("HandleUrgentReassignment: %v", err)
	}
	if check.Status != models.ReassignNoAction {
		t.Fatalf("status = %s (%s), want %s", check.Status, check.Reason, models.ReassignNoAction)
	}

	report := ctrl.AssignmentReport()
	if report.TotalAssignments != 1 {
		t.Fatalf("TotalAssignments = %d, want 1", report.TotalAssignments)
	}
	if a := report.Assignments[0]; a.MissionID != "M001" || a.PilotID != "P001" || a.DroneID != "DJI-001" {
		t.Errorf("assignment after sweep = %+v", a)
	}
}

func TestStatusRecentAssignmentsOrderedByCommitTime(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()

	// Commit in the reverse of mission ID order.
	if r, err := ctrl.ProcessMissionAssignment(ctx, "M002"); err != nil || r.Status != OutcomeAssigned {
		t.Fatalf("M002: %v / %+v", err, r)
	}
	if r, err := ctrl.ProcessMissionAssignment(ctx, "M001"); err != nil || r.Status != OutcomeAssigned {
		t.Fatalf("M001: %v / %+v", err, r)
	}

	recent := ctrl.Status().RecentAssignments
	if len(recent) != 2 {
		t.Fatalf("recent assignments = %d, want 2", len(recent))
	}
	if recent[0].MissionID != "M002" || recent[1].MissionID != "M001" {
		t.Errorf("order = %s, %s; want M002, M001", recent[0].MissionID, recent[1].MissionID)
	}
}

func TestHandleUrgentReassignmentUnassignedMission(t *testing.T) {
	ctrl, _ := newTestController(t)

	// M001 is high priority but not yet assigned, so the repair workflow
	// leaves it for the normal assignment path.
	result, err := ctrl.HandleUrgentReassignment(context.Background(), "M001")
	if err != nil {
		t.Fatalf("HandleUrgentReassignment: %v", err)
	}
	if result.Status != models.ReassignNoAction {
		t.Errorf("status = %s, want %s", result.Status, models.ReassignNoAction)
	}
	if len(ctrl.ReassignmentLog()) != 1 {
		t.Errorf("log entries = %d, want 1", len(ctrl.ReassignmentLog()))
	}
}

func TestHandleAllUrgentReassignments(t *testing.T) {
	ctrl, _ := newTestController(t)

	summary, err := ctrl.HandleAllUrgentReassignments(context.Background())
	if err != nil {
		t.Fatalf("HandleAllUrgentReassignments: %v", err)
	}
	// Only the dam inspection is high priority in the seed data.
	if summary.TotalChecked != 1 {
		t.Errorf("TotalChecked = %d, want 1", summary.TotalChecked)
	}
	if summary.NoAction != 1 {
		t.Errorf("NoAction = %d, want 1", summary.NoAction)
	}
}

func TestAssignmentReportAndHistory(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctrl.ProcessUnassignedMissions(context.Background())

	report := ctrl.AssignmentReport()
	if report.TotalAssignments != 2 {
		t.Fatalf("TotalAssignments = %d, want 2", report.TotalAssignments)
	}
	if len(report.PilotsUtilized) != 2 || len(report.DronesUtilized) != 2 {
		t.Errorf("utilized = %v / %v", report.PilotsUtilized, report.DronesUtilized)
	}

	if got := ctrl.History(1); len(got) != 1 {
		t.Errorf("History(1) = %d entries", len(got))
	}
	if got := ctrl.History(0); len(got) != 2 {
		t.Errorf("History(0) = %d entries", len(got))
	}
}
