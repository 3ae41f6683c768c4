package config

import (
	"strconv"
	"strings"
	"time"
)

const (
	jwtSecretEnvVar          = "JWT_SECRET"
	accessTokenExpiryEnvVar  = "JWT_EXPIRES_IN"
	refreshTokenExpiryEnvVar = "REFRESH_TOKEN_EXPIRES_IN"

	// DefaultSigningSecret is only suitable for local development.
	DefaultSigningSecret = "your-super-secret-key-change-in-production"
)

type OAuthConfig interface {
	GetSigningSecret() string
	GetAuthCodeTimeout() time.Duration
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
	GetRefreshRecordExpiry() time.Duration
}

type OAuth struct{}

var _ OAuthConfig = OAuth{}

func (OAuth) GetSigningSecret() string {
	return GetEnv(jwtSecretEnvVar, DefaultSigningSecret)
}

func (OAuth) GetAuthCodeTimeout() time.Duration {
	return 10 * time.Minute
}

// GetAccessTokenExpiry is the lifetime embedded in signed access tokens.
func (OAuth) GetAccessTokenExpiry() time.Duration {
	return ParseLifetime(GetEnv(accessTokenExpiryEnvVar, ""), time.Hour)
}

// GetRefreshTokenExpiry is the lifetime embedded in signed refresh tokens.
func (OAuth) GetRefreshTokenExpiry() time.Duration {
	return ParseLifetime(GetEnv(refreshTokenExpiryEnvVar, ""), 7*24*time.Hour)
}

// GetRefreshRecordExpiry is the server-side lifetime of a stored refresh token record.
// It is independent of GetRefreshTokenExpiry; both are enforced.
func (OAuth) GetRefreshRecordExpiry() time.Duration {
	return 7 * 24 * time.Hour
}

// ParseLifetime accepts Go durations ("90m", "1h30m") and the short day form "7d".
// Empty, malformed or non-positive values yield defaultValue.
func ParseLifetime(value string, defaultValue time.Duration) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return defaultValue
	}
	if days, ok := strings.CutSuffix(value, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return defaultValue
		}
		return time.Duration(n) * 24 * time.Hour
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
