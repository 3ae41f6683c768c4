package config

const (
	rateLimitRPSEnvVar   = "RATE_LIMIT_RPS"
	rateLimitBurstEnvVar = "RATE_LIMIT_BURST"
)

type SecurityConfig interface {
	GetEnableRateLimiting() bool
	GetRateLimitRPS() int
	GetRateLimitBurst() int
}

type Security struct{}

var _ SecurityConfig = Security{}

func (s Security) GetEnableRateLimiting() bool {
	return s.GetRateLimitRPS() > 0
}

// GetRateLimitRPS is the sustained number of /login and /token requests allowed per client IP.
func (Security) GetRateLimitRPS() int {
	return GetEnvInt(rateLimitRPSEnvVar, 10)
}

func (Security) GetRateLimitBurst() int {
	return GetEnvInt(rateLimitBurstEnvVar, 20)
}
