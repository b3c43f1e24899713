package domain

// DateCount is one calendar-date bucket of the usage log.
type DateCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// ActionCount is one action-name bucket of the usage log.
type ActionCount struct {
	Action string `json:"action"`
	Count  int    `json:"count"`
}

// AnalyticsSnapshot is the derived dashboard view of the usage log. It is
// ephemeral: recomputed wholesale on every fetch, never persisted.
//
// UsageByDate and UsageByAction are ordered by first appearance in the log,
// so the same input always yields the same snapshot. RecentActivity holds at
// most the 10 newest records, newest first. MetadataStats maps each metadata
// key seen anywhere in the log to a frequency table of its values.
type AnalyticsSnapshot struct {
	TotalUsage     int                       `json:"total_usage"`
	UsageByDate    []DateCount               `json:"usage_by_date"`
	UsageByAction  []ActionCount             `json:"usage_by_action"`
	RecentActivity []UsageRecord             `json:"recent_activity"`
	MetadataStats  map[string]map[string]int `json:"metadata_stats"`
}
