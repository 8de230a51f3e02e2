package remediation

import (
	"fmt"
	"strings"

	"github.com/vanhoangkha/trusted-advisor-tools/pkg/models/domain"
)

// Decision is the idempotency guard's verdict for one finding. A skip is a
// successful outcome, not a failure.
type Decision struct {
	Proceed bool
	Skip    domain.ActionTaken
	Reason  string
}

// Proceed is the decision to carry on with the corrective action.
func Proceed() Decision {
	return Decision{Proceed: true}
}

// SkipWith builds a skip decision carrying the outcome and its explanation.
func SkipWith(action domain.ActionTaken, format string, args ...any) Decision {
	return Decision{Skip: action, Reason: fmt.Sprintf(format, args...)}
}

// Outcome converts a skip decision into the RemediationOutcome reported to
// the caller.
func (d Decision) Outcome() domain.RemediationOutcome {
	return domain.RemediationOutcome{Action: d.Skip, Message: d.Reason}
}

// Policy is a pure predicate over already-fetched provider state.
type Policy func() Decision

// Evaluate composes policies by short-circuit AND: the first skip wins.
func Evaluate(policies ...Policy) Decision {
	for _, policy := range policies {
		if d := policy(); !d.Proceed {
			return d
		}
	}
	return Proceed()
}

// Threshold skips when the measured value has not reached the minimum age.
// A finding without a measurement counts as zero.
func Threshold(measured *int, min int) Policy {
	return func() Decision {
		value := 0
		if measured != nil {
			value = *measured
		}
		if value < min {
			return SkipWith(domain.ActionSkippedBelowThreshold,
				"measured value %d below threshold %d, no action taken", value, min)
		}
		return Proceed()
	}
}

// StatusGate skips every finding whose own check status is not WARN.
func StatusGate(status domain.CheckStatus) Policy {
	return func() Decision {
		if status != domain.StatusWarn {
			return SkipWith(domain.ActionSkippedNotWarn,
				"check status is %s, no action needed", status)
		}
		return Proceed()
	}
}

// ExclusionKey skips when the resource carries the configured opt-out tag key,
// regardless of its value.
func ExclusionKey(tags map[string]string, key string) Policy {
	return func() Decision {
		if _, ok := tags[key]; ok {
			return SkipWith(domain.ActionSkippedExcluded, "resource excluded by tag %q", key)
		}
		return Proceed()
	}
}

// ExclusionTag skips when the resource carries the configured opt-out tag
// key with a matching value (value comparison is case-insensitive).
func ExclusionTag(tags map[string]string, key, value string) Policy {
	return func() Decision {
		if got, ok := tags[key]; ok && strings.EqualFold(got, value) {
			return SkipWith(domain.ActionSkippedExcluded,
				"resource excluded by tag %s=%s", key, got)
		}
		return Proceed()
	}
}
