package api

// Event is the inbound Trusted Advisor notification envelope. Two shapes are
// accepted: the full EventBridge wrapping (DetailType present) and a
// simplified flat shape used by tests and manual invocations.
type Event struct {
	DetailType string       `json:"detail-type,omitempty"`
	Account    string       `json:"account,omitempty"`
	Time       string       `json:"time,omitempty"`
	Detail     *EventDetail `json:"detail"`
}

// EventDetail carries the check result itself.
type EventDetail struct {
	CheckName string `json:"check-name,omitempty"`
	Status    string `json:"status,omitempty"`
	// CheckItemDetail holds finding-specific keys ("Bucket Name",
	// "DB Instance Name", ...). Values may arrive as strings or numbers.
	CheckItemDetail map[string]any `json:"check-item-detail,omitempty"`
}
