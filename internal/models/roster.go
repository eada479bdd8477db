package models

import (
	"context"
)

// EntityKind identifies which roster entity a status update targets.
type EntityKind string

const (
	EntityPilot   EntityKind = "pilot"
	EntityDrone   EntityKind = "drone"
	EntityMission EntityKind = "mission"
)

// RosterStore is the external system of record for pilots, drones, and
// missions. The core reads bulk snapshots from it and writes assignment and
// status changes back; it never caches writes.
type RosterStore interface {
	// LoadAll returns a bulk snapshot of the full roster.
	LoadAll(ctx context.Context) ([]Pilot, []Drone, []Mission, error)

	// PersistAssignment durably records a mission's assigned pilot and
	// drone, flipping the mission to Assigned and, best-effort, the
	// resources' current-assignment back-references.
	PersistAssignment(ctx context.Context, missionID, pilotID, droneID string) error

	// PersistStatus updates one entity's availability or lifecycle status.
	PersistStatus(ctx context.Context, kind EntityKind, id, status string) error
}
