package telemetry

import "time"

type EventType string

const (
	EventTaskCreated      EventType = "task_created"
	EventTaskCompleted    EventType = "task_completed"
	EventTaskReopened     EventType = "task_reopened"
	EventTaskDeleted      EventType = "task_deleted"
	EventCommentAdded     EventType = "comment_added"
	EventCompletedCleared EventType = "completed_cleared"
)

type Event struct {
	ID        int       `json:"id"`
	Owner     string    `json:"owner"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	TaskID    int       `json:"taskId,omitempty"`
	Count     int       `json:"count,omitempty"`
}
