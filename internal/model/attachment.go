package model

import "time"

// Attachment represents a stored file in the system.
// This is a pure domain model with no database-specific dependencies or tags.
// Key is the logical storage key; the storage adapter resolves it against its
// configured prefix, so the same row works for any prefix configuration.
type Attachment struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	Key         string    `json:"key"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}
