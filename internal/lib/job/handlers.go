package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/deppfellow/natours/internal/config"
	"github.com/deppfellow/natours/internal/lib/email"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// WelcomeSender delivers welcome emails. *email.Client implements it.
type WelcomeSender interface {
	SendWelcomeEmail(to, name string) error
}

// InitHandlers builds the dependencies job handlers need.
func (j *JobService) InitHandlers(cfg *config.Config, logger *zerolog.Logger) {
	j.mailer = email.NewClient(cfg, logger)
}

// handleWelcomeEmailTask decodes the payload and sends the email.
// A returned error makes asynq retry the task.
func (j *JobService) handleWelcomeEmailTask(_ context.Context, t *asynq.Task) error {
	var p WelcomeEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal welcome email payload: %w: %w", err, asynq.SkipRetry)
	}

	if j.mailer == nil {
		return fmt.Errorf("welcome email handler has no mailer")
	}

	j.logger.Info().
		Str("type", "welcome").
		Str("to", p.To).
		Msg("Processing welcome email task")

	if err := j.mailer.SendWelcomeEmail(p.To, p.Name); err != nil {
		j.logger.Error().
			Str("type", "welcome").
			Str("to", p.To).
			Err(err).
			Msg("Failed to send welcome email")
		return err
	}

	j.logger.Info().
		Str("type", "welcome").
		Str("to", p.To).
		Msg("Successfully sent welcome email")

	return nil
}
