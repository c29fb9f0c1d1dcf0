package domain

type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

// Event announces a committed change to a resource row.
type Event struct {
	Type     EventType `json:"type"`
	Resource string    `json:"resource"`
	Key      Fields    `json:"key"`
	Row      any       `json:"row,omitempty"`
}
