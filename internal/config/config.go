// Package config defines the global configuration structure for the FloodRoute
// platform. Configuration is loaded once at process initialization and is
// immutable thereafter. It follows 12-Factor App principles by strictly
// separating code from configuration.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File (Lowest)
//
// Any missing required value or invalid format causes the application to fail
// immediately on startup.
package config

import (
	"time"

	"floodroute/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type used
// throughout configuration to prevent accidental logging of sensitive values.
type SecretString = types.SecretString

// Config is the top-level configuration struct for the FloodRoute platform.
// It is populated once during process initialization and never modified.
// Sub-components receive only the specific config subsets they require.
type Config struct {
	// System Metadata
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"floodroute"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Domain Configurations
	Server        ServerConfig
	Database      DatabaseConfig
	Met           MetConfig
	Routing       RoutingConfig
	Hazard        HazardConfig
	Queue         QueueConfig
	Kafka         KafkaConfig
	Security      SecurityConfig
	Observability ObservabilityConfig
	Archive       ArchiveConfig
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`
	RequestTimeout  time.Duration `envconfig:"SERVER_REQUEST_TIMEOUT" default:"29s"`
}

// DatabaseConfig holds database connection and pool tuning parameters.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL" validate:"required"`

	// Tuning Parameters
	MaxConns          int           `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns          int           `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	AcquireTimeout    time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"2s"`
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"`
}

// MetConfig holds the meteorological warning source configuration.
type MetConfig struct {
	BaseURL string        `envconfig:"MET_BASE_URL" default:"https://api.met.gov.my/v2.1"`
	APIKey  SecretString  `envconfig:"MET_GOV_KEY" validate:"required"`
	Timeout time.Duration `envconfig:"MET_TIMEOUT" default:"30s"`
}

// RoutingConfig holds the routing and geocoding provider configuration.
// Both ride on the same Google Maps Platform key.
type RoutingConfig struct {
	RoutesURL  string        `envconfig:"ROUTES_URL" default:"https://routes.googleapis.com/directions/v2:computeRoutes"`
	GeocodeURL string        `envconfig:"GEOCODE_URL" default:"https://maps.googleapis.com/maps/api/geocode/json"`
	APIKey     SecretString  `envconfig:"GOOGLE_API_KEY" validate:"required"`
	Region     string        `envconfig:"GEOCODE_REGION" default:"my"`
	Timeout    time.Duration `envconfig:"ROUTING_TIMEOUT" default:"15s"`
}

// HazardConfig holds per-level base hazard radii in meters and the hazard
// window size (how many recent assessments form the active hazard set).
type HazardConfig struct {
	RadiusLowM      int `envconfig:"HAZARD_RADIUS_LOW" default:"1500" validate:"gt=0"`
	RadiusModerateM int `envconfig:"HAZARD_RADIUS_MEDIUM" default:"3000" validate:"gt=0"`
	RadiusHighM     int `envconfig:"HAZARD_RADIUS_HIGH" default:"6000" validate:"gt=0"`
	RadiusCriticalM int `envconfig:"HAZARD_RADIUS_CRITICAL" default:"10000" validate:"gt=0"`
	RecentWindow    int `envconfig:"HAZARD_RECENT_WINDOW" default:"5" validate:"gt=0,lte=50"`
}

// QueueConfig holds the SQS queue used for asynchronous report scoring.
type QueueConfig struct {
	ReportQueueURL string `envconfig:"SQS_REPORT_QUEUE" validate:"omitempty,url"`
	AWSRegion      string `envconfig:"AWS_REGION" default:"us-east-1"`
	// LocalStack Support (Empty in Prod)
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL"`
}

// KafkaConfig holds the assessment event stream configuration.
// Publishing is disabled when Brokers is empty.
type KafkaConfig struct {
	Brokers         []string `envconfig:"KAFKA_BROKERS"`
	AssessmentTopic string   `envconfig:"KAFKA_ASSESSMENT_TOPIC" default:"floodroute.assessments"`
}

// SecurityConfig holds API access configuration.
type SecurityConfig struct {
	AdminAPIKey        SecretString `envconfig:"ADMIN_API_KEY" validate:"required"`
	CorsAllowedOrigins []string     `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// ObservabilityConfig holds telemetry settings.
type ObservabilityConfig struct {
	MetricNamespace string `envconfig:"METRIC_NAMESPACE" default:"FloodRoute"`
}

// ArchiveConfig holds assessment archival settings.
type ArchiveConfig struct {
	Retention time.Duration `envconfig:"ARCHIVE_RETENTION" default:"720h"`
	BatchSize int           `envconfig:"ARCHIVE_BATCH_SIZE" default:"500" validate:"gt=0"`
	OutputDir string        `envconfig:"ARCHIVE_OUTPUT_DIR" default:"/var/lib/floodroute/archive"`
}
