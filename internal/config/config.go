// Package config loads the process settings from the environment, an optional
// .env file and an optional SSM Parameter Store path.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultRegion               = "us-east-1"
	DefaultTableName            = "Portfolios"
	DefaultPort                 = 8080
	DefaultEnv                  = "development"
	DefaultMaxNameLength        = 100
	DefaultMaxDescriptionLength = 1000
	DefaultMaxSkills            = 50
	DefaultMaxSkillLength       = 50
	DefaultStaticDir            = "public"
	DefaultExportPrefix         = "portfolio-exports/"
	DefaultRateLimitBurst       = 10
)

// Settings is built once at process start and passed to every component
// that needs it. Treat it as read-only.
type Settings struct {
	Env       string
	Port      int
	LogLevel  string
	StaticDir string

	AWS       AWSConfig
	DynamoDB  DynamoDBConfig
	Limits    Limits
	Events    EventsConfig
	Export    ExportConfig
	RateLimit RateLimitConfig

	// ParameterPath is the SSM path overlaid on top of the environment.
	ParameterPath string
}

// AWSConfig holds the SDK settings.
type AWSConfig struct {
	Region string
	// DynamoEndpoint overrides the DynamoDB endpoint (DynamoDB Local).
	DynamoEndpoint string
}

// DynamoDBConfig holds the table settings.
type DynamoDBConfig struct {
	TableName string
}

// Limits bounds the portfolio fields.
type Limits struct {
	MaxNameLength        int
	MaxDescriptionLength int
	MaxSkills            int
	MaxSkillLength       int
}

// EventsConfig holds the change notification target. Empty disables it.
type EventsConfig struct {
	TopicArn string
}

// ExportConfig holds the snapshot export target.
type ExportConfig struct {
	Bucket string
	Prefix string
}

// RateLimitConfig configures the per-key limiter of the HTTP server.
// RPS <= 0 disables it.
type RateLimitConfig struct {
	RPS   int
	Burst int
}

// DefaultLimits returns the built-in field limits.
func DefaultLimits() Limits {
	return Limits{
		MaxNameLength:        DefaultMaxNameLength,
		MaxDescriptionLength: DefaultMaxDescriptionLength,
		MaxSkills:            DefaultMaxSkills,
		MaxSkillLength:       DefaultMaxSkillLength,
	}
}

// Addr returns the listen address for the HTTP server.
func (s Settings) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// IsDevelopment reports whether the environment label is "development".
func (s Settings) IsDevelopment() bool {
	return strings.EqualFold(s.Env, DefaultEnv)
}

// Load reads .env (if present) and the environment.
func Load() (Settings, error) {
	if err := godotenv.Load(); err != nil {
		// .env is optional
		if !os.IsNotExist(err) {
			return Settings{}, fmt.Errorf("error loading .env file: %w", err)
		}
	}
	return fromLookup(os.Getenv), nil
}

func fromLookup(lookup func(string) string) Settings {
	s := Settings{
		Env:       getEnv(lookup, "APP_ENV", DefaultEnv),
		Port:      getEnvAsInt(lookup, "PORT", DefaultPort),
		StaticDir: getEnv(lookup, "STATIC_DIR", DefaultStaticDir),
		AWS: AWSConfig{
			Region:         getEnv(lookup, "AWS_REGION", DefaultRegion),
			DynamoEndpoint: getEnv(lookup, "DYNAMODB_ENDPOINT", ""),
		},
		DynamoDB: DynamoDBConfig{
			TableName: getEnv(lookup, "DYNAMODB_TABLE_NAME", DefaultTableName),
		},
		Limits: Limits{
			MaxNameLength:        getEnvAsInt(lookup, "MAX_NAME_LENGTH", DefaultMaxNameLength),
			MaxDescriptionLength: getEnvAsInt(lookup, "MAX_DESCRIPTION_LENGTH", DefaultMaxDescriptionLength),
			MaxSkills:            getEnvAsInt(lookup, "MAX_SKILLS", DefaultMaxSkills),
			MaxSkillLength:       getEnvAsInt(lookup, "MAX_SKILL_LENGTH", DefaultMaxSkillLength),
		},
		Events: EventsConfig{
			TopicArn: getEnv(lookup, "PORTFOLIO_EVENTS_TOPIC_ARN", ""),
		},
		Export: ExportConfig{
			Bucket: getEnv(lookup, "EXPORT_BUCKET", ""),
			Prefix: getEnv(lookup, "EXPORT_PREFIX", DefaultExportPrefix),
		},
		RateLimit: RateLimitConfig{
			RPS:   getEnvAsNonNegativeInt(lookup, "RATE_LIMIT_RPS", 0),
			Burst: getEnvAsInt(lookup, "RATE_LIMIT_BURST", DefaultRateLimitBurst),
		},
		ParameterPath: getEnv(lookup, "CONFIG_SSM_PATH", ""),
	}

	logLevel := "info"
	if s.IsDevelopment() {
		logLevel = "debug"
	}
	s.LogLevel = getEnv(lookup, "LOG_LEVEL", logLevel)
	return s
}

func getEnv(lookup func(string) string, key, defaultValue string) string {
	if value := strings.TrimSpace(lookup(key)); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt falls back to the default on parse errors and non-positive values.
func getEnvAsInt(lookup func(string) string, key string, defaultValue int) int {
	valueStr := getEnv(lookup, key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func getEnvAsNonNegativeInt(lookup func(string) string, key string, defaultValue int) int {
	valueStr := getEnv(lookup, key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil || value < 0 {
		return defaultValue
	}
	return value
}
