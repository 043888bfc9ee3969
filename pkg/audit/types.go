package audit

import "time"

// ActionType identifies what kind of event an audit record captures.
type ActionType string

const (
	ActionCreate       ActionType = "CREATE"
	ActionUpdate       ActionType = "UPDATE"
	ActionDelete       ActionType = "DELETE"
	ActionGet          ActionType = "GET"
	ActionAccessDenied ActionType = "ACCESS_DENIED"
	ActionLoginSuccess ActionType = "LOGIN_SUCCESS"
	ActionLoginFailed  ActionType = "LOGIN_FAILED"
)

// Record is a single audit trail entry. EntityID is the identifier of the
// affected entity when one is known, otherwise a generated UUID so the
// record still has a stable handle.
type Record struct {
	ID         int64          `json:"id,omitempty"`
	ActionType ActionType     `json:"action_type"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Actor      string         `json:"actor"`
	Timestamp  time.Time      `json:"timestamp"`
	Payload    map[string]any `json:"payload,omitempty"`
}
