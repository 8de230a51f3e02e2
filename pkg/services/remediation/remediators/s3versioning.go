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

// BucketVersioningAPI is the S3 surface the versioning remediator depends on.
type BucketVersioningAPI interface {
	GetBucketTagging(ctx context.Context, params *s3.GetBucketTaggingInput,
		optFns ...func(*s3.Options)) (*s3.GetBucketTaggingOutput, error)
	PutBucketVersioning(ctx context.Context, params *s3.PutBucketVersioningInput,
		optFns ...func(*s3.Options)) (*s3.PutBucketVersioningOutput, error)
}

// BucketVersioningSettings configures the versioning remediator.
type BucketVersioningSettings struct {
	// ExcludeTag is the bucket tag key that opts a bucket out, whatever its value.
	ExcludeTag string
}

// BucketVersioning enables versioning on buckets flagged by the S3 bucket
// versioning check, unless the bucket is tagged as intentionally unversioned.
type BucketVersioning struct {
	settings BucketVersioningSettings
	client   BucketVersioningAPI
}

func NewBucketVersioning(settings BucketVersioningSettings, client BucketVersioningAPI) *BucketVersioning {
	return &BucketVersioning{settings: settings, client: client}
}

func (r *BucketVersioning) Name() string { return "s3-versioning" }

func (r *BucketVersioning) Subject(finding domain.Finding) string {
	return fmt.Sprintf("S3 Bucket Versioning Enabled (%s)", finding.Scope.AccountID)
}

func (r *BucketVersioning) Decode(raw []byte) (domain.Finding, error) {
	return event.Decode(raw, event.Mapping{ResourceKey: "Bucket Name"})
}

func (r *BucketVersioning) Remediate(ctx context.Context, finding domain.Finding) (domain.RemediationOutcome, error) {
	logger := zerolog.Ctx(ctx)
	bucket := finding.ResourceID

	if decision := remediation.Evaluate(
		remediation.ExclusionKey(r.bucketTags(ctx, bucket), r.settings.ExcludeTag),
	); !decision.Proceed {
		logger.Info().Msg("bucket excluded by tag")
		return domain.RemediationOutcome{
			Action:  domain.ActionSkippedExcluded,
			Message: fmt.Sprintf("Bucket versioning intentionally disabled for %s", bucket),
		}, nil
	}

	_, err := r.client.PutBucketVersioning(ctx, &s3.PutBucketVersioningInput{
		Bucket: aws.String(bucket),
		VersioningConfiguration: &s3types.VersioningConfiguration{
			Status: s3types.BucketVersioningStatusEnabled,
		},
	})
	switch {
	case err == nil:
		return domain.RemediationOutcome{
			Action:  domain.ActionApplied,
			Message: fmt.Sprintf("Bucket versioning enabled for %s", bucket),
		}, nil
	case remediation.IsNotFound(err), remediation.IsAccessDenied(err):
		// Best-effort handler: a vanished or unreachable bucket is not a failure.
		logger.Warn().Str("error_code", remediation.ErrorCode(err)).Msg("bucket not accessible")
		return domain.RemediationOutcome{
			Action:  domain.ActionNone,
			Message: fmt.Sprintf("Bucket %s not accessible: %s", bucket, remediation.ErrorCode(err)),
		}, nil
	default:
		return domain.RemediationOutcome{}, fmt.Errorf("failed to enable versioning on %s: %w", bucket, err)
	}
}

// bucketTags reads the bucket tag set; NoSuchTagSet and any other read
// failure both mean "no exclusion".
func (r *BucketVersioning) bucketTags(ctx context.Context, bucket string) map[string]string {
	out, err := r.client.GetBucketTagging(ctx, &s3.GetBucketTaggingInput{Bucket: aws.String(bucket)})
	if err != nil {
		return nil
	}

	tags := make(map[string]string, len(out.TagSet))
	for _, tag := range out.TagSet {
		tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	return tags
}
