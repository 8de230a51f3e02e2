package remediators

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/models/domain"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/services/event"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/services/remediation"
)

const lifecycleRuleID = "AbortIncompleteMultipartUploads"

// handledLifecycleChecks are the only check names this remediator acts on.
var handledLifecycleChecks = map[string]struct{}{
	"Amazon S3 Bucket Lifecycle Configuration":                  {},
	"Amazon S3 Incomplete Multipart Upload Abort Configuration": {},
}

// BucketLifecycleAPI is the S3 surface the lifecycle remediator depends on.
type BucketLifecycleAPI interface {
	GetBucketLifecycleConfiguration(ctx context.Context, params *s3.GetBucketLifecycleConfigurationInput,
		optFns ...func(*s3.Options)) (*s3.GetBucketLifecycleConfigurationOutput, error)
	PutBucketLifecycleConfiguration(ctx context.Context, params *s3.PutBucketLifecycleConfigurationInput,
		optFns ...func(*s3.Options)) (*s3.PutBucketLifecycleConfigurationOutput, error)
}

// LifecycleClientFactory yields an S3 client scoped to the bucket's owning
// account, assuming the cross-account role when that account is not our own.
type LifecycleClientFactory func(ctx context.Context, accountID string) (BucketLifecycleAPI, error)

// BucketLifecycleSettings configures the multipart upload abort rule.
type BucketLifecycleSettings struct {
	// AbortDays is the DaysAfterInitiation value of the appended rule. An
	// existing rule with this exact value makes the bucket already correct.
	AbortDays int32
}

// BucketLifecycle appends an abort-incomplete-multipart-uploads rule to the
// flagged bucket's lifecycle configuration, preserving whatever rules are
// already there.
type BucketLifecycle struct {
	settings BucketLifecycleSettings
	clients  LifecycleClientFactory
}

func NewBucketLifecycle(settings BucketLifecycleSettings, clients LifecycleClientFactory) *BucketLifecycle {
	return &BucketLifecycle{settings: settings, clients: clients}
}

func (r *BucketLifecycle) Name() string { return "s3-lifecycle" }

func (r *BucketLifecycle) Subject(finding domain.Finding) string {
	return fmt.Sprintf("S3 Incomplete Multipart Upload Abort Rule Applied (%s)", finding.Scope.AccountID)
}

func (r *BucketLifecycle) Decode(raw []byte) (domain.Finding, error) {
	return event.Decode(raw, event.Mapping{ResourceKey: "Bucket Name"})
}

func (r *BucketLifecycle) Remediate(ctx context.Context, finding domain.Finding) (domain.RemediationOutcome, error) {
	logger := zerolog.Ctx(ctx)

	if finding.CheckName != "" {
		if _, ok := handledLifecycleChecks[finding.CheckName]; !ok {
			logger.Info().Str("check_name", finding.CheckName).Msg("ignoring check")
			return domain.RemediationOutcome{
				Action:  domain.ActionNone,
				Message: fmt.Sprintf("Ignoring check: %s", finding.CheckName),
			}, nil
		}
	}

	if decision := remediation.Evaluate(
		remediation.StatusGate(finding.Status),
	); !decision.Proceed {
		return decision.Outcome(), nil
	}

	client, err := r.clients(ctx, finding.Scope.AccountID)
	if err != nil {
		// Degrade to a skip: the trust relationship may simply not be set
		// up for this account yet.
		logger.Warn().Err(err).Msg("failed to obtain cross-account client")
		return domain.RemediationOutcome{
			Action:  domain.ActionNone,
			Message: fmt.Sprintf("Bucket %s not accessible in account %s", finding.ResourceID, finding.Scope.AccountID),
		}, nil
	}

	return r.applyRule(ctx, client, finding.ResourceID)
}

func (r *BucketLifecycle) applyRule(ctx context.Context, client BucketLifecycleAPI, bucket string) (domain.RemediationOutcome, error) {
	rules, err := r.existingRules(ctx, client, bucket)
	if err != nil {
		return domain.RemediationOutcome{}, err
	}

	// Rules match on the abort-after-days value only, never on rule ID.
	for _, rule := range rules {
		abort := rule.AbortIncompleteMultipartUpload
		if abort != nil && aws.ToInt32(abort.DaysAfterInitiation) == r.settings.AbortDays {
			return domain.RemediationOutcome{
				Action:  domain.ActionSkippedAlreadyCorrect,
				Message: fmt.Sprintf("Bucket %s already aborts incomplete uploads after %d days", bucket, r.settings.AbortDays),
			}, nil
		}
	}

	rules = append(rules, s3types.LifecycleRule{
		ID:     aws.String(lifecycleRuleID),
		Status: s3types.ExpirationStatusEnabled,
		Filter: &s3types.LifecycleRuleFilter{},
		AbortIncompleteMultipartUpload: &s3types.AbortIncompleteMultipartUpload{
			DaysAfterInitiation: aws.Int32(r.settings.AbortDays),
		},
	})

	_, err = client.PutBucketLifecycleConfiguration(ctx, &s3.PutBucketLifecycleConfigurationInput{
		Bucket:                 aws.String(bucket),
		LifecycleConfiguration: &s3types.BucketLifecycleConfiguration{Rules: rules},
	})
	if err != nil {
		return domain.RemediationOutcome{}, fmt.Errorf("failed to apply lifecycle policy to %s: %w", bucket, err)
	}

	return domain.RemediationOutcome{
		Action:  domain.ActionApplied,
		Message: fmt.Sprintf("Applied incomplete multipart upload abort rule to bucket %s", bucket),
	}, nil
}

func (r *BucketLifecycle) existingRules(ctx context.Context, client BucketLifecycleAPI, bucket string) ([]s3types.LifecycleRule, error) {
	out, err := client.GetBucketLifecycleConfiguration(ctx, &s3.GetBucketLifecycleConfigurationInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		if remediation.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get lifecycle configuration of %s: %w", bucket, err)
	}
	return out.Rules, nil
}
