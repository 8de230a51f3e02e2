package main

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/runtime/bootstrap"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/server"
	"github.com/vanhoangkha/trusted-advisor-tools/pkg/services/config"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "web",
		Short: "Start the event intake server for Trusted Advisor remediation",
		RunE:  runServer,
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	runtime, err := bootstrap.New(ctx, cfg)
	if err != nil {
		return err
	}

	logger.Info().Strs("remediators", runtime.Registry.List()).Msg("remediators registered")

	if cfg.ServerHost == "" || cfg.ServerPort == "" {
		logger.Error().Msg("missing SERVER_HOST/SERVER_PORT configuration")
		os.Exit(1)
	}

	addr := net.JoinHostPort(cfg.ServerHost, cfg.ServerPort)
	api := server.NewWebAPI(logger, server.Config{
		Addr:            addr,
		ShutdownTimeout: 10 * time.Second,
		Dependencies: server.Dependencies{
			Pipeline: runtime.Pipeline,
			Registry: runtime.Registry,
			Logger:   logger,
		},
	})

	return api.Start()
}
