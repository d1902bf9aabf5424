package models

// EventType names a change pushed on the realtime activity feed
type EventType string

const (
	EventDailyActivityCreated EventType = "daily_activity.created"
	EventDailyActivityUpdated EventType = "daily_activity.updated"
	EventDailyActivityDeleted EventType = "daily_activity.deleted"
	EventManualEntryCreated   EventType = "manual_entry.created"
	EventManualEntryUpdated   EventType = "manual_entry.updated"
	EventManualEntryDeleted   EventType = "manual_entry.deleted"
)

// ActivityEvent is the message written to realtime subscribers
type ActivityEvent struct {
	Type EventType   `json:"type"`
	Data interface{} `json:"data"`
}

// DeletedRecord is the event payload for a removed row
type DeletedRecord struct {
	ID uint `json:"id"`
}
