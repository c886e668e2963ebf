package telemetry

import "time"

type Stats struct {
	Since         string            `json:"since"`
	EventCounts   map[EventType]int `json:"event_counts"`
	TasksCreated  int               `json:"tasks_created"`
	Completions   int               `json:"completions"`
	Reopenings    int               `json:"reopenings"`
	TasksDeleted  int               `json:"tasks_deleted"`
	CommentsAdded int               `json:"comments_added"`
}

// CalculateStats aggregates an owner's event slice into counters. Bulk
// clears contribute their record count to TasksDeleted.
func CalculateStats(events []Event, since time.Time) Stats {
	stats := Stats{
		Since:       since.Format("2006-01-02"),
		EventCounts: make(map[EventType]int),
	}

	for _, event := range events {
		stats.EventCounts[event.Type]++

		switch event.Type {
		case EventTaskCreated:
			stats.TasksCreated++
		case EventTaskCompleted:
			stats.Completions++
		case EventTaskReopened:
			stats.Reopenings++
		case EventTaskDeleted:
			stats.TasksDeleted++
		case EventCommentAdded:
			stats.CommentsAdded++
		case EventCompletedCleared:
			stats.TasksDeleted += event.Count
		}
	}
	return stats
}
