package remediators

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/rs/zerolog"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/models/domain"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/services/event"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/services/remediation"
)

// AddressAPI is the EC2 surface the Elastic IP remediator depends on.
type AddressAPI interface {
	DescribeAddresses(ctx context.Context, params *ec2.DescribeAddressesInput,
		optFns ...func(*ec2.Options)) (*ec2.DescribeAddressesOutput, error)
	DescribeTags(ctx context.Context, params *ec2.DescribeTagsInput,
		optFns ...func(*ec2.Options)) (*ec2.DescribeTagsOutput, error)
	ReleaseAddress(ctx context.Context, params *ec2.ReleaseAddressInput,
		optFns ...func(*ec2.Options)) (*ec2.ReleaseAddressOutput, error)
}

// AddressClientFactory yields an EC2 client bound to the finding's region.
type AddressClientFactory func(region string) AddressAPI

// ElasticIPSettings configures the unassociated address remediator.
type ElasticIPSettings struct {
	ExcludeTagKey   string
	ExcludeTagValue string
	DryRun          bool
}

// ElasticIP releases Elastic IP addresses flagged as unassociated, honoring
// the tag-based opt-out and the dry-run mode.
type ElasticIP struct {
	settings ElasticIPSettings
	clients  AddressClientFactory
}

func NewElasticIP(settings ElasticIPSettings, clients AddressClientFactory) *ElasticIP {
	return &ElasticIP{settings: settings, clients: clients}
}

func (r *ElasticIP) Name() string { return "elastic-ip" }

func (r *ElasticIP) Subject(finding domain.Finding) string {
	return fmt.Sprintf("Unassociated Elastic IP Released (%s)", finding.Scope.AccountID)
}

func (r *ElasticIP) Decode(raw []byte) (domain.Finding, error) {
	return event.Decode(raw, event.Mapping{
		ResourceKey:  "IP Address",
		RequiredKeys: []string{"Region"},
	})
}

func (r *ElasticIP) Remediate(ctx context.Context, finding domain.Finding) (domain.RemediationOutcome, error) {
	logger := zerolog.Ctx(ctx)
	ip := finding.ResourceID
	client := r.clients(finding.Scope.Region)

	allocationID, found, err := r.lookupAllocation(ctx, client, ip)
	if err != nil {
		return domain.RemediationOutcome{}, err
	}
	if !found {
		logger.Warn().Msg("elastic IP not found")
		return domain.RemediationOutcome{
			Action:  domain.ActionSkippedAlreadyAbsent,
			Message: fmt.Sprintf("Elastic IP %s not found", ip),
		}, nil
	}

	tags := r.allocationTags(ctx, client, allocationID)
	if decision := remediation.Evaluate(
		remediation.ExclusionTag(tags, r.settings.ExcludeTagKey, r.settings.ExcludeTagValue),
	); !decision.Proceed {
		logger.Info().Str("allocation_id", allocationID).Msg("elastic IP excluded by tag")
		return decision.Outcome(), nil
	}

	return r.release(ctx, client, ip, allocationID)
}

func (r *ElasticIP) lookupAllocation(ctx context.Context, client AddressAPI, ip string) (string, bool, error) {
	out, err := client.DescribeAddresses(ctx, &ec2.DescribeAddressesInput{
		PublicIps: []string{ip},
	})
	if err != nil {
		if remediation.IsNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to describe address %s: %w", ip, err)
	}
	if len(out.Addresses) == 0 {
		return "", false, nil
	}
	return aws.ToString(out.Addresses[0].AllocationId), true, nil
}

// allocationTags fetches the allocation's tags. A lookup failure yields no
// tags, so a tag-read error never blocks the release.
func (r *ElasticIP) allocationTags(ctx context.Context, client AddressAPI, allocationID string) map[string]string {
	out, err := client.DescribeTags(ctx, &ec2.DescribeTagsInput{
		Filters: []ec2types.Filter{
			{Name: aws.String("resource-id"), Values: []string{allocationID}},
		},
	})
	if err != nil {
		return nil
	}

	tags := make(map[string]string, len(out.Tags))
	for _, tag := range out.Tags {
		tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	return tags
}

func (r *ElasticIP) release(ctx context.Context, client AddressAPI, ip, allocationID string) (domain.RemediationOutcome, error) {
	_, err := client.ReleaseAddress(ctx, &ec2.ReleaseAddressInput{
		AllocationId: aws.String(allocationID),
		DryRun:       aws.Bool(r.settings.DryRun),
	})
	switch {
	case err == nil:
		return domain.RemediationOutcome{
			Action:  domain.ActionApplied,
			Message: fmt.Sprintf("Elastic IP %s released", ip),
		}, nil
	case remediation.IsDryRun(err):
		// The provider confirmed the release would succeed; nothing changed.
		return domain.RemediationOutcome{
			Action:  domain.ActionNone,
			Message: fmt.Sprintf("DryRun: would release Elastic IP %s", ip),
		}, nil
	case remediation.IsNotFound(err):
		return domain.RemediationOutcome{
			Action:  domain.ActionSkippedAlreadyAbsent,
			Message: fmt.Sprintf("Elastic IP %s not found", ip),
		}, nil
	default:
		return domain.RemediationOutcome{}, fmt.Errorf("failed to release address %s: %w", ip, err)
	}
}
