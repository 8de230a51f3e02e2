package remediation

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// ValidationError marks a malformed or incomplete inbound event. It is fatal
// and propagated to the invoking system without any provider call being made.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid event: %s", e.Reason)
}

// NewValidationError builds a ValidationError with a formatted reason.
func NewValidationError(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err (or anything it wraps) is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ErrorCode extracts the provider error code from an AWS SDK error, or ""
// when the error did not come from the provider API.
func ErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

var notFoundCodes = map[string]struct{}{
	"DBInstanceNotFound":           {},
	"DBInstanceNotFoundFault":      {},
	"InvalidAddress.NotFound":      {},
	"NoSuchBucket":                 {},
	"NoSuchEntity":                 {},
	"NoSuchTagSet":                 {},
	"NoSuchLifecycleConfiguration": {},
}

// IsNotFound reports whether the provider said the target resource (or the
// attribute being read) no longer exists. Treated as a successful no-op.
func IsNotFound(err error) bool {
	_, ok := notFoundCodes[ErrorCode(err)]
	return ok
}

// IsAlreadyDesired reports whether the provider rejected the mutation because
// the resource is already in the requested state.
func IsAlreadyDesired(err error) bool {
	switch ErrorCode(err) {
	case "InvalidDBInstanceState", "InvalidDBInstanceStateFault":
		return true
	}
	return false
}

// IsDryRun reports the EC2 "DryRunOperation" response, which signals the call
// would have succeeded had DryRun been disabled.
func IsDryRun(err error) bool {
	return ErrorCode(err) == "DryRunOperation"
}

// IsAccessDenied reports whether the provider refused access to the resource.
func IsAccessDenied(err error) bool {
	switch ErrorCode(err) {
	case "AccessDenied", "AccessDeniedException", "UnauthorizedOperation":
		return true
	}
	return false
}
