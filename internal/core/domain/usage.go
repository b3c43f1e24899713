package domain

import "time"

// ActionBackgroundRemoval is the only processing action the product ships
// today; the usage log schema is deliberately action-agnostic.
const ActionBackgroundRemoval = "background_removal"

// UsageRecord is one completed processing action, appended to the remote log
// for later analytics. Append-only: this layer never mutates or deletes one.
// Metadata is opaque free-form data (file type, size, output format, engine,
// processing duration) carried along for the dashboard.
type UsageRecord struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Action    string         `json:"action"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata_json,omitempty"`
}
