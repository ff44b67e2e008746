package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCacheKey(t *testing.T) {
	tests := []struct {
		name        string
		serviceName string
		objectType  string
		identifier  string
		paramsKey   []string
		expectedKey string
	}{
		{
			name:        "without paramsKey",
			serviceName: "auth",
			objectType:  "otp",
			identifier:  "a@b.c",
			expectedKey: "interviewprep:auth:otp:a@b.c",
		},
		{
			name:        "with empty paramsKey",
			serviceName: "auth",
			objectType:  "otp",
			identifier:  "a@b.c",
			paramsKey:   []string{},
			expectedKey: "interviewprep:auth:otp:a@b.c",
		},
		{
			name:        "with multiple paramsKey",
			serviceName: "analytics",
			objectType:  "report",
			identifier:  "overview",
			paramsKey:   []string{"7d", "v2"},
			expectedKey: "interviewprep:analytics:report:overview:7d_v2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedKey, GenerateCacheKey(tt.serviceName, tt.objectType, tt.identifier, tt.paramsKey...))
		})
	}
}

func TestDomainKeys(t *testing.T) {
	assert.Equal(t, "interviewprep:auth:otp:user@example.com", OTPKey("  User@Example.com "))
	assert.Equal(t, "interviewprep:auth:otp_block:user@example.com", OTPBlockKey("USER@example.com"))
	assert.Equal(t, "interviewprep:youtube:video:dQw4w9WgXcQ", VideoKey("dQw4w9WgXcQ"))
	assert.Equal(t, "interviewprep:analytics:report:overview:30d", ReportKey("overview", "30d"))
}
