package domain

import (
	"context"
	"time"
)

// OTPSender delivers a one-time code to the account holder.
type OTPSender interface {
	SendOTP(ctx context.Context, email, code string, ttl time.Duration) error
}
