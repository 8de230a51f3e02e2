package remediators

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudtrail"
	cttypes "github.com/aws/aws-sdk-go-v2/service/cloudtrail/types"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/rs/zerolog"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/models/domain"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/services/event"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/services/remediation"
)

const (
	activityWindow  = 24 * time.Hour
	maxTrailEvents  = 50
	topSummaryItems = 10
)

const securityTemplate = `At %s the IAM access key %s for user %s on account %s was deleted after it was found to have been exposed at the URL %s.
Below are summaries of the most recent actions, resource names, and resource types associated with this user over the last 24 hours.

Actions:
%s

Resource Names:
%s

Resource Types:
%s

These are summaries of only the most recent API calls made by this user. Please ensure your account remains secure by further reviewing the API calls made by this user in CloudTrail.`

// AccessKeyAPI is the IAM surface the exposed-key remediator depends on.
type AccessKeyAPI interface {
	DeleteAccessKey(ctx context.Context, params *iam.DeleteAccessKeyInput,
		optFns ...func(*iam.Options)) (*iam.DeleteAccessKeyOutput, error)
}

// ActivityAPI is the CloudTrail surface used to summarize the exposed user's
// recent activity for the security notification.
type ActivityAPI interface {
	LookupEvents(ctx context.Context, params *cloudtrail.LookupEventsInput,
		optFns ...func(*cloudtrail.Options)) (*cloudtrail.LookupEventsOutput, error)
}

// ExposedKey deletes an access key pair that Trusted Advisor found exposed
// in a public location, then builds the security-team notification body from
// the user's recent CloudTrail activity.
type ExposedKey struct {
	keys  AccessKeyAPI
	trail ActivityAPI
}

func NewExposedKey(keys AccessKeyAPI, trail ActivityAPI) *ExposedKey {
	return &ExposedKey{keys: keys, trail: trail}
}

func (r *ExposedKey) Name() string { return "exposed-access-key" }

func (r *ExposedKey) Subject(finding domain.Finding) string {
	return fmt.Sprintf("Security Alert! IAM Access Key Exposed For User %s On Account %s!!",
		finding.DetailValue("User Name (IAM or Root)"), finding.Scope.AccountID)
}

func (r *ExposedKey) Decode(raw []byte) (domain.Finding, error) {
	return event.Decode(raw, event.Mapping{
		ResourceKey:  "Access Key ID",
		RequiredKeys: []string{"User Name (IAM or Root)"},
	})
}

func (r *ExposedKey) Remediate(ctx context.Context, finding domain.Finding) (domain.RemediationOutcome, error) {
	username := finding.DetailValue("User Name (IAM or Root)")
	accessKeyID := finding.ResourceID
	location := finding.DetailValue("Location")

	logger := zerolog.Ctx(ctx).With().
		Str("username", username).
		Str("access_key_id", MaskSecret(accessKeyID)).
		Str("exposed_location", location).
		Logger()
	logger.Info().Msg("processing exposed key deletion")

	_, err := r.keys.DeleteAccessKey(ctx, &iam.DeleteAccessKeyInput{
		UserName:    aws.String(username),
		AccessKeyId: aws.String(accessKeyID),
	})
	switch {
	case err == nil:
		logger.Info().Msg("access key deleted")
	case remediation.IsNotFound(err):
		logger.Warn().Msg("access key already absent")
		return domain.RemediationOutcome{
			Action:  domain.ActionSkippedAlreadyAbsent,
			Message: fmt.Sprintf("Access key %s for user %s not found", MaskSecret(accessKeyID), username),
		}, nil
	default:
		return domain.RemediationOutcome{}, fmt.Errorf(
			"failed to delete access key %s: %w", MaskSecret(accessKeyID), err)
	}

	events, resources, types := r.recentActivity(ctx, username)

	return domain.RemediationOutcome{
		Action: domain.ActionApplied,
		Message: fmt.Sprintf(securityTemplate,
			finding.DiscoveredAt, accessKeyID, username, finding.Scope.AccountID, location,
			formatSummary(events), formatSummary(resources), formatSummary(types)),
	}, nil
}

// recentActivity summarizes the user's last 24 hours of CloudTrail events.
// The key is already gone at this point, so a lookup failure only degrades
// the notification body and is not allowed to fail the invocation.
func (r *ExposedKey) recentActivity(ctx context.Context, username string) (events, resources, types []summaryItem) {
	logger := zerolog.Ctx(ctx)
	end := time.Now()
	start := end.Add(-activityWindow)

	out, err := r.trail.LookupEvents(ctx, &cloudtrail.LookupEventsInput{
		LookupAttributes: []cttypes.LookupAttribute{{
			AttributeKey:   cttypes.LookupAttributeKeyUsername,
			AttributeValue: aws.String(username),
		}},
		StartTime:  aws.Time(start),
		EndTime:    aws.Time(end),
		MaxResults: aws.Int32(maxTrailEvents),
	})
	if err != nil {
		logger.Warn().Err(err).Msg("cloudtrail lookup failed, activity summary omitted")
		return nil, nil, nil
	}

	eventNames := map[string]int{}
	resourceNames := map[string]int{}
	resourceTypes := map[string]int{}
	for _, ev := range out.Events {
		eventNames[aws.ToString(ev.EventName)]++
		for _, res := range ev.Resources {
			resourceNames[aws.ToString(res.ResourceName)]++
			resourceTypes[aws.ToString(res.ResourceType)]++
		}
	}

	return mostCommon(eventNames, topSummaryItems),
		mostCommon(resourceNames, topSummaryItems),
		mostCommon(resourceTypes, topSummaryItems)
}

type summaryItem struct {
	Name  string
	Count int
}

func mostCommon(counts map[string]int, limit int) []summaryItem {
	items := make([]summaryItem, 0, len(counts))
	for name, count := range counts {
		if name == "" {
			continue
		}
		items = append(items, summaryItem{Name: name, Count: count})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Name < items[j].Name
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

func formatSummary(items []summaryItem) string {
	if len(items) == 0 {
		return "\tnone recorded"
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("%s: %d", item.Name, item.Count)
	}
	return "\t" + strings.Join(lines, "\n\t")
}

// MaskSecret exposes only the first 8 characters of a credential identifier,
// enough to correlate with the provider console without logging the secret.
func MaskSecret(s string) string {
	if len(s) <= 8 {
		return s + "***"
	}
	return s[:8] + "***"
}
