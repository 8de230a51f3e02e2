// Package bootstrap wires the process-wide dependencies: AWS clients built
// once from the default credential chain, the notification channels, and the
// remediator registry the pipeline dispatches over.
package bootstrap

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/services/advisor"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/services/awsclients"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/services/config"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/services/credentials"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/services/notify"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/services/remediation"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/services/remediation/remediators"
)

// Runtime bundles everything a frontend (web server or CLI) needs.
type Runtime struct {
	Registry remediation.Registry
	Pipeline *remediation.Pipeline
	Notifier *notify.Service
	Webhook  *notify.WebhookPusher
	Advisor  *advisor.Service
}

// New builds the runtime from the environment configuration.
func New(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	base, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	stsProvider, err := credentials.NewSTSProvider(ctx,
		awsclients.NewFactory(base, nil).STS(), cfg.CrossAccountRoleName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize credential provider: %w", err)
	}
	clients := awsclients.NewFactory(base, stsProvider)

	webhook, err := notify.NewWebhookPusher(cfg.SlackWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("failed to configure webhook: %w", err)
	}
	notifier := notify.NewService(
		notify.NewTopicPublisher(clients.SNS(), cfg.SNSTopicARN),
		webhook,
	)

	registry := remediation.NewRegistry()
	all := []remediation.Remediator{
		remediators.NewIdleDB(
			remediators.IdleDBSettings{MinAge: cfg.MinAge, TerminationMethod: cfg.TerminationMethod},
			func(region string) remediators.DBInstanceAPI { return clients.RDS(region) },
		),
		remediators.NewElasticIP(
			remediators.ElasticIPSettings{
				ExcludeTagKey:   cfg.ExcludeTagKey,
				ExcludeTagValue: cfg.ExcludeTagValue,
				DryRun:          cfg.DryRun,
			},
			func(region string) remediators.AddressAPI { return clients.EC2(region) },
		),
		remediators.NewBucketVersioning(
			remediators.BucketVersioningSettings{ExcludeTag: cfg.ExcludeTag},
			clients.S3(),
		),
		remediators.NewBucketLifecycle(
			remediators.BucketLifecycleSettings{AbortDays: cfg.MPUAbortDays},
			func(ctx context.Context, accountID string) (remediators.BucketLifecycleAPI, error) {
				return clients.S3ForAccount(ctx, accountID)
			},
		),
		remediators.NewExposedKey(clients.IAM(), clients.CloudTrail()),
		remediators.NewPasswordPolicy(
			remediators.PasswordPolicySettings{
				MinLength:       cfg.MinPasswordLength,
				MaxAge:          cfg.MaxPasswordAge,
				ReusePrevention: cfg.PasswordReusePrevention,
			},
			clients.IAM(),
		),
	}
	for _, rem := range all {
		if err := registry.Register(rem); err != nil {
			return nil, fmt.Errorf("failed to register remediator: %w", err)
		}
	}

	return &Runtime{
		Registry: registry,
		Pipeline: remediation.NewPipeline(registry, notifier),
		Notifier: notifier,
		Webhook:  webhook,
		Advisor:  advisor.NewService(clients.Support()),
	}, nil
}
