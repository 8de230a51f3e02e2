// Package notify delivers best-effort, human-readable summaries of applied
// remediations. Delivery failures are logged and never gate the pipeline.
package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// Publisher is one outbound notification channel.
type Publisher interface {
	Publish(ctx context.Context, subject, body string) error
}

// Service fans a notification out to every configured channel.
type Service struct {
	publishers []Publisher
}

func NewService(publishers ...Publisher) *Service {
	return &Service{publishers: publishers}
}

// Notify sends subject+body to all channels. Failures are logged at warn
// level and absorbed; the pipeline's result never depends on delivery.
func (s *Service) Notify(ctx context.Context, subject, body string) {
	logger := zerolog.Ctx(ctx)

	for _, publisher := range s.publishers {
		if err := publisher.Publish(ctx, subject, body); err != nil {
			logger.Warn().Err(err).Msg("notification delivery failed")
			continue
		}
	}
}
