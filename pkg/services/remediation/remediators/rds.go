// Package remediators contains one Action Executor per Trusted Advisor
// finding type. Each remediator is a linear decode -> guard -> act sequence
// over a narrow slice of the provider API, injected as an interface so the
// logic is testable without a live network dependency.
package remediators

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/rs/zerolog"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/models/domain"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/services/event"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/services/remediation"
)

// DBInstanceAPI is the RDS surface the idle-instance remediator depends on.
type DBInstanceAPI interface {
	StopDBInstance(ctx context.Context, params *rds.StopDBInstanceInput,
		optFns ...func(*rds.Options)) (*rds.StopDBInstanceOutput, error)
	DeleteDBInstance(ctx context.Context, params *rds.DeleteDBInstanceInput,
		optFns ...func(*rds.Options)) (*rds.DeleteDBInstanceOutput, error)
}

// DBClientFactory yields an RDS client bound to the finding's region.
type DBClientFactory func(region string) DBInstanceAPI

// IdleDBSettings configures the idle-database remediator.
type IdleDBSettings struct {
	// MinAge is the minimum number of idle days before any action is taken.
	MinAge int
	// TerminationMethod is "stop" or "delete"; delete keeps a final snapshot.
	TerminationMethod string
}

// IdleDB stops or deletes RDS instances the "Amazon RDS Idle DB Instances"
// check flagged as idle beyond the configured threshold.
type IdleDB struct {
	settings IdleDBSettings
	clients  DBClientFactory
}

func NewIdleDB(settings IdleDBSettings, clients DBClientFactory) *IdleDB {
	return &IdleDB{settings: settings, clients: clients}
}

func (r *IdleDB) Name() string { return "rds-idle" }

func (r *IdleDB) Subject(finding domain.Finding) string {
	return fmt.Sprintf("RDS Idle Database Termination Notification (%s)", finding.Scope.AccountID)
}

func (r *IdleDB) Decode(raw []byte) (domain.Finding, error) {
	return event.Decode(raw, event.Mapping{
		ResourceKey:  "DB Instance Name",
		MeasuredKey:  "Days Since Last Connection",
		RequiredKeys: []string{"Region"},
	})
}

func (r *IdleDB) Remediate(ctx context.Context, finding domain.Finding) (domain.RemediationOutcome, error) {
	logger := zerolog.Ctx(ctx)
	daysIdle := 0
	if finding.MeasuredValue != nil {
		daysIdle = *finding.MeasuredValue
	}
	logger.Info().
		Int("days_idle", daysIdle).
		Int("min_age_threshold", r.settings.MinAge).
		Msg("processing idle RDS instance")

	if decision := remediation.Evaluate(
		remediation.Threshold(finding.MeasuredValue, r.settings.MinAge),
	); !decision.Proceed {
		return decision.Outcome(), nil
	}

	client := r.clients(finding.Scope.Region)
	if r.settings.TerminationMethod == "delete" {
		return r.deleteInstance(ctx, client, finding.ResourceID)
	}
	return r.stopInstance(ctx, client, finding.ResourceID)
}

func (r *IdleDB) stopInstance(ctx context.Context, client DBInstanceAPI, name string) (domain.RemediationOutcome, error) {
	_, err := client.StopDBInstance(ctx, &rds.StopDBInstanceInput{
		DBInstanceIdentifier: aws.String(name),
	})
	switch {
	case err == nil:
		return domain.RemediationOutcome{
			Action:  domain.ActionApplied,
			Message: fmt.Sprintf("Database instance %s has been stopped.", name),
		}, nil
	case remediation.IsNotFound(err):
		return domain.RemediationOutcome{
			Action:  domain.ActionSkippedAlreadyAbsent,
			Message: fmt.Sprintf("DB instance %s not found", name),
		}, nil
	case remediation.IsAlreadyDesired(err):
		return domain.RemediationOutcome{
			Action:  domain.ActionSkippedAlreadyCorrect,
			Message: fmt.Sprintf("DB instance %s already stopped", name),
		}, nil
	default:
		return domain.RemediationOutcome{}, fmt.Errorf("failed to stop database instance %s: %w", name, err)
	}
}

func (r *IdleDB) deleteInstance(ctx context.Context, client DBInstanceAPI, name string) (domain.RemediationOutcome, error) {
	snapshotID := fmt.Sprintf("%s-final-snapshot", name)
	_, err := client.DeleteDBInstance(ctx, &rds.DeleteDBInstanceInput{
		DBInstanceIdentifier:      aws.String(name),
		FinalDBSnapshotIdentifier: aws.String(snapshotID),
	})
	switch {
	case err == nil:
		return domain.RemediationOutcome{
			Action: domain.ActionApplied,
			Message: fmt.Sprintf("Database instance %s has been deleted.\nFinal snapshot: %s",
				name, snapshotID),
		}, nil
	case remediation.IsNotFound(err):
		return domain.RemediationOutcome{
			Action:  domain.ActionSkippedAlreadyAbsent,
			Message: fmt.Sprintf("DB instance %s not found", name),
		}, nil
	default:
		return domain.RemediationOutcome{}, fmt.Errorf("failed to delete database instance %s: %w", name, err)
	}
}
