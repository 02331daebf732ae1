package telemetry

import (
	"encoding/json"
	"time"
)

// Stats is the usage summary carried in the export snapshot and served at
// /api/stats.
type Stats struct {
	Period             string            `json:"period"`
	EventCounts        map[EventType]int `json:"event_counts"`
	TasksCreated       int               `json:"tasks_created"`
	TasksCompleted     int               `json:"tasks_completed"`
	WaitingPromotions  int               `json:"waiting_promotions"`
	RecurrenceSpawns   int               `json:"recurrence_spawns"`
	DependencyRejects  int               `json:"dependency_rejects"`
	ReviewSweeps       int               `json:"review_sweeps"`
	CompletionsPerDay  float64           `json:"completions_per_day"`
	CompletionContexts map[string]int    `json:"completion_contexts"`
}

// CalculateStats aggregates usage events since the given time.
func CalculateStats(events []Event, since time.Time) (Stats, error) {
	stats := Stats{
		Period:             since.Format("2006-01-02"),
		EventCounts:        make(map[EventType]int),
		CompletionContexts: make(map[string]int),
	}

	for _, event := range events {
		stats.EventCounts[event.Type]++

		var metadata EventMetadata
		if err := json.Unmarshal([]byte(event.Metadata), &metadata); err != nil {
			continue
		}

		switch event.Type {
		case EventTaskCreated:
			stats.TasksCreated++
		case EventTaskCompleted:
			stats.TasksCompleted++
			if contexts, ok := metadata["contexts"].([]interface{}); ok {
				for _, c := range contexts {
					if s, ok := c.(string); ok {
						stats.CompletionContexts[s]++
					}
				}
			}
		case EventWaitingPromoted:
			stats.WaitingPromotions++
		case EventRecurrenceSpawned:
			stats.RecurrenceSpawns++
		case EventDependencyRejected:
			stats.DependencyRejects++
		case EventReviewSweep:
			stats.ReviewSweeps++
		}
	}

	days := time.Since(since).Hours() / 24
	if days >= 1 {
		stats.CompletionsPerDay = float64(stats.TasksCompleted) / days
	} else {
		stats.CompletionsPerDay = float64(stats.TasksCompleted)
	}

	return stats, nil
}
