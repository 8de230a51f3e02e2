package commands

import (
	"context"
	"time"

	"github.com/vanhoangkha/trusted-advisor-tools/pkg/runtime/terminal/export"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/services/remediation"

	"github.com/spf13/cobra"
)

// NewRemediatorsCmd lists the registered remediators.
func NewRemediatorsCmd(registry remediation.Registry, reporter *export.Reporter) *cobra.Command {
	return &cobra.Command{
		Use:   "remediators",
		Short: "List registered remediators",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range registry.List() {
				if err := reporter.Print(name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func contextWithTimeout(cmd *cobra.Command, timeout time.Duration) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, timeout)
}
