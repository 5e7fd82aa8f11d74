package models

import "time"

// ActivityEntry is one audit log record.
type ActivityEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
	Origin    string    `json:"ip,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
