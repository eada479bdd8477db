package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/SkyOps/skyops/internal/controller"
	"github.com/SkyOps/skyops/internal/models"
)

// ReassignmentScheduler periodically sweeps every High and Urgent mission
// through the reassignment workflow so broken assignments get repaired
// without an operator request.
type ReassignmentScheduler struct {
	controller    *controller.Controller
	logger        *slog.Logger
	stopChan      chan struct{}
	checkInterval time.Duration
}

// NewReassignmentScheduler creates a scheduler sweeping at the given interval.
func NewReassignmentScheduler(ctrl *controller.Controller, interval time.Duration, logger *slog.Logger) *ReassignmentScheduler {
	return &ReassignmentScheduler{
		controller:    ctrl,
		logger:        logger,
		stopChan:      make(chan struct{}),
		checkInterval: interval,
	}
}

// Start begins the scheduler loop
func (s *ReassignmentScheduler) Start(ctx context.Context) {
	s.logger.Info("[REASSIGNMENT SCHEDULER] Starting", "check_interval", s.checkInterval)
	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	// Run once immediately on start
	s.logger.Info("[REASSIGNMENT SCHEDULER] Running initial sweep")
	s.sweep(ctx)

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopChan:
			s.logger.Info("[REASSIGNMENT SCHEDULER] Stopped")
			return
		case <-ctx.Done():
			s.logger.Info("[REASSIGNMENT SCHEDULER] Stopping due to context cancellation")
			return
		}
	}
}

// Stop stops the scheduler
func (s *ReassignmentScheduler) Stop() {
	close(s.stopChan)
}

func (s *ReassignmentScheduler) sweep(ctx context.Context) {
	summary, err := s.controller.HandleAllUrgentReassignments(ctx)
	if err != nil {
		s.logger.Error("[REASSIGNMENT SCHEDULER] Sweep failed", "error", err)
		return
	}

	if summary.TotalChecked == 0 {
		s.logger.Info("[REASSIGNMENT SCHEDULER] No priority missions to check")
		return
	}

	s.logger.Info("[REASSIGNMENT SCHEDULER] Sweep complete",
		"checked", summary.TotalChecked,
		"reassigned", summary.Reassigned,
		"unassignable", summary.Unassignable,
		"errors", summary.Errors,
	)

	for _, r := range summary.Results {
		if r.Status == models.ReassignNoAction {
			continue
		}
		s.logger.Info("Priority mission handled",
			"mission_id", r.MissionID,
			"status", r.Status,
			"new_pilot", r.NewPilot,
			"new_drone", r.NewDrone,
		)
	}
}
