package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/vanhoangkha/trusted-advisor-tools/pkg/runtime/terminal/export"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/services/remediation"

	"github.com/spf13/cobra"
)

type RemediateCmd struct {
	remediator string
	eventPath  string
	timeout    time.Duration
	pipeline   *remediation.Pipeline
	reporter   *export.Reporter
}

// NewRemediateCmd runs a single Trusted Advisor event through the pipeline.
func NewRemediateCmd(pipeline *remediation.Pipeline, reporter *export.Reporter) *cobra.Command {
	rc := &RemediateCmd{pipeline: pipeline, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "remediate",
		Short: "Run one advisory event through a remediator",
		RunE:  rc.run,
	}

	cmd.Flags().StringVar(&rc.remediator, "remediator", "", "Remediator to dispatch the event to")
	cmd.Flags().StringVar(&rc.eventPath, "event", "", "Path to the event JSON file ('-' reads stdin)")
	cmd.Flags().DurationVar(&rc.timeout, "timeout", 60*time.Second, "Overall invocation timeout")

	_ = cmd.MarkFlagRequired("remediator")
	_ = cmd.MarkFlagRequired("event")

	return cmd
}

func (rc *RemediateCmd) run(cmd *cobra.Command, args []string) error {
	ctx, cancel := contextWithTimeout(cmd, rc.timeout)
	defer cancel()

	raw, err := rc.readEvent()
	if err != nil {
		return fmt.Errorf("failed to read event: %w", err)
	}

	result, err := rc.pipeline.Run(ctx, rc.remediator, raw)
	if err != nil {
		return fmt.Errorf("remediation failed: %w", err)
	}

	return rc.reporter.Handle(result)
}

func (rc *RemediateCmd) readEvent() ([]byte, error) {
	if rc.eventPath == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(rc.eventPath)
}
