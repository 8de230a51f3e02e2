package commands

import (
	"fmt"
	"time"

	"github.com/vanhoangkha/trusted-advisor-tools/pkg/runtime/terminal/export"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/services/advisor"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/services/notify"

	"github.com/spf13/cobra"
)

type SummaryCmd struct {
	push     bool
	timeout  time.Duration
	advisor  *advisor.Service
	webhook  *notify.WebhookPusher
	reporter *export.Reporter
}

// NewSummaryCmd prints the account-wide Trusted Advisor digest, optionally
// pushing it to the configured webhook.
func NewSummaryCmd(service *advisor.Service, webhook *notify.WebhookPusher, reporter *export.Reporter) *cobra.Command {
	sc := &SummaryCmd{advisor: service, webhook: webhook, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarize Trusted Advisor checks across the account",
		RunE:  sc.run,
	}

	cmd.Flags().BoolVar(&sc.push, "push", false, "Push the digest to the configured webhook")
	cmd.Flags().DurationVar(&sc.timeout, "timeout", 60*time.Second, "Overall invocation timeout")

	return cmd
}

func (sc *SummaryCmd) run(cmd *cobra.Command, args []string) error {
	ctx, cancel := contextWithTimeout(cmd, sc.timeout)
	defer cancel()

	summary, err := sc.advisor.Summarize(ctx)
	if err != nil {
		return fmt.Errorf("failed to summarize trusted advisor checks: %w", err)
	}

	digest := summary.Format()
	if err := sc.reporter.Print(digest); err != nil {
		return err
	}

	if sc.push {
		if err := sc.webhook.Publish(ctx, "", digest); err != nil {
			return fmt.Errorf("failed to push digest: %w", err)
		}
	}

	return nil
}
