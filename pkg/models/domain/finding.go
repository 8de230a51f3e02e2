package domain

// CheckStatus is the severity signal Trusted Advisor attaches to a check result.
type CheckStatus string

const (
	StatusOK      CheckStatus = "OK"
	StatusWarn    CheckStatus = "WARN"
	StatusError   CheckStatus = "ERROR"
	StatusUnknown CheckStatus = "UNKNOWN"
)

// ParseCheckStatus maps the raw envelope status onto a known CheckStatus.
func ParseCheckStatus(raw string) CheckStatus {
	switch raw {
	case "OK", "ok":
		return StatusOK
	case "WARN", "warning":
		return StatusWarn
	case "ERROR", "error":
		return StatusError
	default:
		return StatusUnknown
	}
}

// Scope identifies the provider context a finding belongs to.
type Scope struct {
	Region    string
	AccountID string
}

// Finding is the unit of work for one pipeline invocation. It is built once
// by the event decoder and never mutated afterwards.
type Finding struct {
	CheckName  string
	ResourceID string
	Scope      Scope
	// MeasuredValue carries the numeric measurement of the check
	// (e.g. days since last connection) when the check reports one.
	MeasuredValue *int
	Status        CheckStatus
	// Detail keeps every check-item-detail field verbatim so individual
	// remediators can pick up the keys they need.
	Detail       map[string]string
	DiscoveredAt string
}

// DetailValue returns the named check-item-detail field, or "" when absent.
func (f Finding) DetailValue(key string) string {
	return f.Detail[key]
}
