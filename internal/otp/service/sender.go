package service

import (
	"context"
	"log/slog"

	"civicfund/internal/otp/models"
)

// LogSender writes codes to the debug log. It is the only delivery channel;
// there is no SMS or email integration.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (l *LogSender) SendCode(ctx context.Context, c *models.Challenge, code string) error {
	l.logger.DebugContext(ctx, "verification code issued",
		"challenge_id", c.ID.String(),
		"user_id", c.UserID.String(),
		"code", code,
		"expires_at", c.ExpiresAt,
	)
	return nil
}
