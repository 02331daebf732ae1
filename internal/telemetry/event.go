package telemetry

import "time"

type EventType string

const (
	EventTaskCreated        EventType = "task_created"
	EventTaskCompleted      EventType = "task_completed"
	EventTaskReopened       EventType = "task_reopened"
	EventWaitingPromoted    EventType = "waiting_promoted"
	EventDependencyAdded    EventType = "dependency_added"
	EventDependencyRejected EventType = "dependency_rejected"
	EventRecurrenceSpawned  EventType = "recurrence_spawned"
	EventReviewSweep        EventType = "review_sweep"
	EventSnapshotExported   EventType = "snapshot_exported"
	EventSnapshotImported   EventType = "snapshot_imported"
)

type Event struct {
	ID        int       `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Metadata  string    `json:"metadata"`
}

type EventMetadata map[string]interface{}
