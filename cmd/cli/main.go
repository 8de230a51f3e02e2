package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/runtime/bootstrap"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/runtime/terminal"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/services/config"
)

func main() {
	if err := godotenv.Load(); err == nil {
		fmt.Fprintln(os.Stderr, "Loaded configuration from .env")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	runtime, err := bootstrap.New(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cli := terminal.NewCLI(terminal.Options{
		Pipeline: runtime.Pipeline,
		Registry: runtime.Registry,
		Advisor:  runtime.Advisor,
		Webhook:  runtime.Webhook,
		Output:   os.Stdout,
	})

	if err := cli.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
