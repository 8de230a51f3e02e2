package remediators

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/rs/zerolog"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/models/domain"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/services/event"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/services/remediation"
)

// PasswordPolicyAPI is the IAM surface the password-policy remediator
// depends on.
type PasswordPolicyAPI interface {
	GetAccountPasswordPolicy(ctx context.Context, params *iam.GetAccountPasswordPolicyInput,
		optFns ...func(*iam.Options)) (*iam.GetAccountPasswordPolicyOutput, error)
	UpdateAccountPasswordPolicy(ctx context.Context, params *iam.UpdateAccountPasswordPolicyInput,
		optFns ...func(*iam.Options)) (*iam.UpdateAccountPasswordPolicyOutput, error)
}

// PasswordPolicySettings are the defaults used only for fields the account
// administrator has never set.
type PasswordPolicySettings struct {
	MinLength       int32
	MaxAge          int32
	ReusePrevention int32
}

// PasswordPolicy merge-updates the account password policy when the check
// status is WARN: every field the administrator already set is preserved and
// only absent fields are filled with the configured defaults. This is a
// read-modify-write, not an overwrite.
type PasswordPolicy struct {
	settings PasswordPolicySettings
	client   PasswordPolicyAPI
}

func NewPasswordPolicy(settings PasswordPolicySettings, client PasswordPolicyAPI) *PasswordPolicy {
	return &PasswordPolicy{settings: settings, client: client}
}

func (r *PasswordPolicy) Name() string { return "password-policy" }

func (r *PasswordPolicy) Subject(finding domain.Finding) string {
	return fmt.Sprintf("IAM Password Policy Updated (%s)", finding.Scope.AccountID)
}

func (r *PasswordPolicy) Decode(raw []byte) (domain.Finding, error) {
	// Account-scoped check: no check-item-detail keys are required.
	return event.Decode(raw, event.Mapping{})
}

func (r *PasswordPolicy) Remediate(ctx context.Context, finding domain.Finding) (domain.RemediationOutcome, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("status", string(finding.Status)).Msg("processing password policy check")

	if decision := remediation.Evaluate(
		remediation.StatusGate(finding.Status),
	); !decision.Proceed {
		return decision.Outcome(), nil
	}

	current, err := r.currentPolicy(ctx)
	if err != nil {
		return domain.RemediationOutcome{}, err
	}

	_, err = r.client.UpdateAccountPasswordPolicy(ctx, &iam.UpdateAccountPasswordPolicyInput{
		MinimumPasswordLength:      aws.Int32(orDefaultInt32(current.MinimumPasswordLength, r.settings.MinLength)),
		RequireSymbols:             true,
		RequireNumbers:             true,
		RequireUppercaseCharacters: true,
		RequireLowercaseCharacters: true,
		AllowUsersToChangePassword: orDefaultBool(current.AllowUsersToChangePassword, true),
		PasswordReusePrevention:    aws.Int32(orDefaultInt32(current.PasswordReusePrevention, r.settings.ReusePrevention)),
		MaxPasswordAge:             aws.Int32(orDefaultInt32(current.MaxPasswordAge, r.settings.MaxAge)),
		HardExpiry:                 aws.Bool(orDefaultBool(current.HardExpiry, false)),
	})
	if err != nil {
		return domain.RemediationOutcome{}, fmt.Errorf("failed to update password policy: %w", err)
	}

	return domain.RemediationOutcome{
		Action:  domain.ActionApplied,
		Message: "Password policy updated",
	}, nil
}

// currentPolicy reads the existing policy; a missing policy is an empty one.
func (r *PasswordPolicy) currentPolicy(ctx context.Context) (domain.PasswordPolicy, error) {
	out, err := r.client.GetAccountPasswordPolicy(ctx, &iam.GetAccountPasswordPolicyInput{})
	if err != nil {
		if remediation.IsNotFound(err) {
			zerolog.Ctx(ctx).Info().Msg("no existing password policy found")
			return domain.PasswordPolicy{}, nil
		}
		return domain.PasswordPolicy{}, fmt.Errorf("failed to get password policy: %w", err)
	}

	policy := out.PasswordPolicy
	return domain.PasswordPolicy{
		MinimumPasswordLength:      policy.MinimumPasswordLength,
		AllowUsersToChangePassword: aws.Bool(policy.AllowUsersToChangePassword),
		PasswordReusePrevention:    policy.PasswordReusePrevention,
		MaxPasswordAge:             policy.MaxPasswordAge,
		HardExpiry:                 policy.HardExpiry,
	}, nil
}

func orDefaultInt32(value *int32, fallback int32) int32 {
	if value != nil {
		return *value
	}
	return fallback
}

func orDefaultBool(value *bool, fallback bool) bool {
	if value != nil {
		return *value
	}
	return fallback
}
