package clients

import (
	"os"
	"strconv"
	"time"
)

type AnalyzerConfig struct {
	EndpointURL      string
	BearerToken      string
	RequestTimeout   time.Duration
	ConnectTimeout   time.Duration
	ReadTimeout      time.Duration
	MaxRetries       int
	RetryBaseDelay   time.Duration
	BreakerThreshold int
	BreakerCooldown  time.Duration
	StrictLabels     bool
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func GetAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		EndpointURL:      getEnv("SENTIMENT_API_URL", "http://localhost:8080/analyze"),
		BearerToken:      getEnv("SENTIMENT_API_TOKEN", ""),
		RequestTimeout:   time.Duration(getEnvInt("SENTIMENT_REQUEST_TIMEOUT_SECONDS", 60)) * time.Second,
		ConnectTimeout:   time.Duration(getEnvInt("SENTIMENT_CONNECT_TIMEOUT_SECONDS", 10)) * time.Second,
		ReadTimeout:      time.Duration(getEnvInt("SENTIMENT_READ_TIMEOUT_SECONDS", 30)) * time.Second,
		MaxRetries:       getEnvInt("SENTIMENT_MAX_RETRIES", 3),
		RetryBaseDelay:   time.Duration(getEnvInt("SENTIMENT_RETRY_BASE_DELAY_SECONDS", 1)) * time.Second,
		BreakerThreshold: getEnvInt("CIRCUIT_BREAKER_FAILURE_THRESHOLD", 5),
		BreakerCooldown:  time.Duration(getEnvInt("CIRCUIT_BREAKER_COOLDOWN_SECONDS", 60)) * time.Second,
		StrictLabels:     getEnv("SENTIMENT_STRICT_LABELS", "false") == "true",
	}
}
