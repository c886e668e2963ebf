package model

import "time"

// Task is a single tracked item. ID, Owner, and CreatedAt are fixed at
// creation; Completed toggles and Comments only ever grow.
type Task struct {
	ID          int       `json:"id"`
	Owner       string    `json:"owner"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	Comments    []string  `json:"comments,omitempty"`
}
