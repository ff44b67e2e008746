package service

import (
	"context"
	"time"

	"interview-prep/internal/domain"
	"interview-prep/internal/logger"

	"go.uber.org/zap"
)

// LogOTPSender writes reset codes to the log instead of mailing them.
type LogOTPSender struct{}

func NewLogOTPSender() *LogOTPSender {
	return &LogOTPSender{}
}

func (LogOTPSender) SendOTP(ctx context.Context, email, code string, ttl time.Duration) error {
	logger.Get().Info("Password reset code issued", zap.String("email", email), zap.Duration("ttl", ttl))
	logger.Get().Debug("Password reset code", zap.String("email", email), zap.String("code", code))
	return nil
}

var _ domain.OTPSender = LogOTPSender{}
