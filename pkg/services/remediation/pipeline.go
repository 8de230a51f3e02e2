package remediation

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/models/api"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/models/domain"
)

// Notifier publishes a human-readable summary of an applied remediation.
// Delivery is best-effort: implementations must absorb their own failures.
type Notifier interface {
	Notify(ctx context.Context, subject, body string)
}

// Pipeline runs one finding through decode -> guard -> act -> notify -> report.
// Every invocation is stateless and independent.
type Pipeline struct {
	registry Registry
	notifier Notifier
}

// NewPipeline wires the pipeline to its remediator registry and notifier.
func NewPipeline(registry Registry, notifier Notifier) *Pipeline {
	return &Pipeline{registry: registry, notifier: notifier}
}

// Run executes the named remediator against a raw event envelope. The error
// is non-nil only for the fatal categories: unknown remediator, malformed
// input, or an unexpected provider failure. Skips are successes.
func (p *Pipeline) Run(ctx context.Context, name string, raw []byte) (api.Result, error) {
	logger := zerolog.Ctx(ctx).With().
		Str("remediator", name).
		Str("invocation_id", uuid.NewString()).
		Logger()
	ctx = logger.WithContext(ctx)

	rem, err := p.registry.Get(name)
	if err != nil {
		return api.Result{}, err
	}

	finding, err := rem.Decode(raw)
	if err != nil {
		logger.Error().Err(err).Msg("failed to decode event")
		return api.Result{}, err
	}

	logger = logger.With().
		Str("resource_id", finding.ResourceID).
		Str("region", finding.Scope.Region).
		Str("account", finding.Scope.AccountID).
		Logger()
	ctx = logger.WithContext(ctx)

	outcome, err := rem.Remediate(ctx, finding)
	if err != nil {
		logger.Error().Err(err).Str("error_code", ErrorCode(err)).Msg("remediation failed")
		return api.Result{}, err
	}

	logger.Info().
		Str("action", string(outcome.Action)).
		Msg(outcome.Message)

	if outcome.Applied() && p.notifier != nil {
		p.notifier.Notify(ctx, rem.Subject(finding), outcome.Message)
	}

	return Report(outcome), nil
}

// Report maps a remediation outcome onto the result handed back to the
// invoking system. Every modeled outcome, skips included, is a success.
func Report(outcome domain.RemediationOutcome) api.Result {
	return api.OK(outcome.Message)
}
