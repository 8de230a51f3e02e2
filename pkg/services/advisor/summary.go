// Package advisor aggregates account-wide Trusted Advisor check results into
// a short digest for the notification channels.
package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/support"
)

const maxCriticalListed = 10

// SupportAPI is the Support surface the summary service depends on.
type SupportAPI interface {
	DescribeTrustedAdvisorChecks(ctx context.Context, params *support.DescribeTrustedAdvisorChecksInput,
		optFns ...func(*support.Options)) (*support.DescribeTrustedAdvisorChecksOutput, error)
	DescribeTrustedAdvisorCheckSummaries(ctx context.Context, params *support.DescribeTrustedAdvisorCheckSummariesInput,
		optFns ...func(*support.Options)) (*support.DescribeTrustedAdvisorCheckSummariesOutput, error)
}

// Summary is the aggregated state of every Trusted Advisor check.
type Summary struct {
	Critical         int
	Warnings         int
	OK               int
	Categories       map[string]int
	CriticalChecks   []string
	EstimatedSavings float64
}

type Service struct {
	client SupportAPI
}

func NewService(client SupportAPI) *Service {
	return &Service{client: client}
}

// Summarize fetches every check and its summary and rolls them up.
func (s *Service) Summarize(ctx context.Context) (Summary, error) {
	checks, err := s.client.DescribeTrustedAdvisorChecks(ctx, &support.DescribeTrustedAdvisorChecksInput{
		Language: aws.String("en"),
	})
	if err != nil {
		return Summary{}, fmt.Errorf("failed to describe trusted advisor checks: %w", err)
	}

	type checkInfo struct{ name, category string }
	checkIDs := make([]string, 0, len(checks.Checks))
	infoByID := make(map[string]checkInfo, len(checks.Checks))
	for _, check := range checks.Checks {
		id := aws.ToString(check.Id)
		checkIDs = append(checkIDs, id)
		infoByID[id] = checkInfo{
			name:     aws.ToString(check.Name),
			category: aws.ToString(check.Category),
		}
	}

	result, err := s.client.DescribeTrustedAdvisorCheckSummaries(ctx,
		&support.DescribeTrustedAdvisorCheckSummariesInput{CheckIds: aws.StringSlice(checkIDs)})
	if err != nil {
		return Summary{}, fmt.Errorf("failed to describe check summaries: %w", err)
	}

	summary := Summary{Categories: map[string]int{}}
	for _, cs := range result.Summaries {
		switch aws.ToString(cs.Status) {
		case "ok":
			summary.OK++
		case "warning":
			summary.Warnings++
		case "error":
			summary.Critical++
			info := infoByID[aws.ToString(cs.CheckId)]
			category := info.category
			if category == "" {
				category = "unknown"
			}
			summary.Categories[category]++
			summary.CriticalChecks = append(summary.CriticalChecks,
				fmt.Sprintf("[%s] %s", category, info.name))
		}

		if cost := cs.CategorySpecificSummary; cost != nil && cost.CostOptimizing != nil {
			summary.EstimatedSavings += cost.CostOptimizing.EstimatedMonthlySavings
		}
	}

	return summary, nil
}

// Format renders the digest sent to the notification channel.
func (s Summary) Format() string {
	lines := []string{
		"=== Trusted Advisor Summary ===",
		"",
		fmt.Sprintf("Critical: %d", s.Critical),
		fmt.Sprintf("Warnings: %d", s.Warnings),
		fmt.Sprintf("OK: %d", s.OK),
		"",
		fmt.Sprintf("Estimated Monthly Savings: $%.2f", s.EstimatedSavings),
		"",
	}

	if len(s.CriticalChecks) > 0 {
		lines = append(lines, "Critical Findings:")
		listed := s.CriticalChecks
		if len(listed) > maxCriticalListed {
			listed = listed[:maxCriticalListed]
		}
		for _, check := range listed {
			lines = append(lines, fmt.Sprintf("  - %s", check))
		}
	}

	return strings.Join(lines, "\n")
}
