package domain

import "time"

// Notification is a one-way persisted message to a trip owner. Records are
// created once and never mutated.
type Notification struct {
	ID        string    `json:"id"`
	ToUserID  string    `json:"toUserId"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
