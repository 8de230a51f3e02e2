package terminal

import (
	"context"
	"io"
	"os"

	"github.com/vanhoangkha/trusted-advisor-tools/pkg/runtime/terminal/commands"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/runtime/terminal/export"

	"github.com/spf13/cobra"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/services/advisor"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/services/notify"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/services/remediation"
)

// CLI represents the command-line interface
type CLI struct {
	pipeline *remediation.Pipeline
	registry remediation.Registry
	advisor  *advisor.Service
	webhook  *notify.WebhookPusher
	reporter *export.Reporter
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Pipeline *remediation.Pipeline
	Registry remediation.Registry
	Advisor  *advisor.Service
	Webhook  *notify.WebhookPusher
	Output   io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		pipeline: opts.Pipeline,
		registry: opts.Registry,
		advisor:  opts.Advisor,
		webhook:  opts.Webhook,
		reporter: export.NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

// ExecuteContext runs the CLI with a parent context, so command timeouts and
// the context logger propagate into the pipeline.
func (cli *CLI) ExecuteContext(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(ctx)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ta-remediate",
		Short: "Trusted Advisor remediation tool",
	}

	cmd.AddCommand(commands.NewRemediateCmd(cli.pipeline, cli.reporter))
	cmd.AddCommand(commands.NewRemediatorsCmd(cli.registry, cli.reporter))
	cmd.AddCommand(commands.NewSummaryCmd(cli.advisor, cli.webhook, cli.reporter))

	return cmd
}
