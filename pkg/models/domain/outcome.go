package domain

// ActionTaken describes what a remediator did with a finding.
type ActionTaken string

const (
	ActionNone                  ActionTaken = "NONE"
	ActionSkippedBelowThreshold ActionTaken = "SKIPPED_BELOW_THRESHOLD"
	ActionSkippedExcluded       ActionTaken = "SKIPPED_EXCLUDED"
	ActionSkippedAlreadyAbsent  ActionTaken = "SKIPPED_ALREADY_ABSENT"
	ActionSkippedAlreadyCorrect ActionTaken = "SKIPPED_ALREADY_CORRECT"
	ActionSkippedNotWarn        ActionTaken = "SKIPPED_NOT_WARN"
	ActionApplied               ActionTaken = "APPLIED"
)

// RemediationOutcome is the result of running a remediator over a finding.
// Action == ActionApplied means the resource state was changed exactly once
// during the invocation; every other value means no mutation happened.
type RemediationOutcome struct {
	Action  ActionTaken
	Message string
}

// Applied reports whether the remediator actually mutated the resource.
func (o RemediationOutcome) Applied() bool {
	return o.Action == ActionApplied
}
