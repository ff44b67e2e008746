package cache

import (
	"strings"
)

const (
	GlobalKeyPrefix = "interviewprep"

	serviceAuth      = "auth"
	serviceYouTube   = "youtube"
	serviceAnalytics = "analytics"
)

// GenerateCacheKey generates a cache key for a given service, object type, and identifier.
// If paramsKey are provided, they are joined by "_" and appended to the cache key.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// OTPKey is the hash holding the pending reset code for an email.
func OTPKey(email string) string {
	return GenerateCacheKey(serviceAuth, "otp", normalizeEmail(email))
}

// OTPBlockKey exists while password reset is locked for an email.
func OTPBlockKey(email string) string {
	return GenerateCacheKey(serviceAuth, "otp_block", normalizeEmail(email))
}

// VideoKey caches metadata for one video id.
func VideoKey(videoID string) string {
	return GenerateCacheKey(serviceYouTube, "video", videoID)
}

// ReportKey caches an analytics report for a time range.
func ReportKey(report, timeRange string) string {
	return GenerateCacheKey(serviceAnalytics, "report", report, timeRange)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
