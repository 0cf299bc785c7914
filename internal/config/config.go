package config

import (
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string
	Timezone    string

	Telemetry TelemetryConfig

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBSQLitePath      string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	Notify    NotifyConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Scheduler SchedulerConfig
}

// TelemetryConfig drives logging and trace export.
type TelemetryConfig struct {
	LogLevel      string
	LogFormat     string
	TraceEnabled  bool
	OTLPEndpoint  string
	OTLPProtocol  string
	SamplingRatio float64
}

// RedisConfig is optional; an empty Addr turns off rate limiting and
// scheduler locks.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	ApplicationsPerHour float64
	ApplicationBurst    int
}

type SchedulerConfig struct {
	Enabled  bool
	Interval time.Duration
}

type NotifyConfig struct {
	Transport  string
	Recipients []string
	Workers    int
	QueueSize  int

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	NATSURL           string
	NATSSubjectPrefix string
}

const (
	NotifyTransportLog  = "log"
	NotifyTransportSMTP = "smtp"
	NotifyTransportNATS = "nats"
)

var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(ProvideSettingsHolder),
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:           getenv("APP_SERVICE", "volunteer-portal"),
		AppVersion:        getenv("APP_VERSION", "0.1.0"),
		Environment:       getenv("ENVIRONMENT", "development"),
		HTTPAddr:          getenv("HTTP_ADDR", ":8080"),
		Timezone:          getenv("TIMEZONE", "America/Los_Angeles"),
		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "portal"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBSQLitePath:      getenv("DATABASE_SQLITE_PATH", "portal.db"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),
		Telemetry: TelemetryConfig{
			LogLevel:      strings.ToLower(getenv("LOG_LEVEL", "info")),
			LogFormat:     strings.ToLower(getenv("LOG_FORMAT", "json")),
			TraceEnabled:  getenvBool("OTEL_ENABLED", false),
			OTLPEndpoint:  getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			OTLPProtocol:  strings.ToLower(getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")),
			SamplingRatio: getenvFloat("OTEL_SAMPLING_RATIO", 0.1),
		},
		Notify: NotifyConfig{
			Transport:         strings.ToLower(getenv("NOTIFY_TRANSPORT", NotifyTransportLog)),
			Recipients:        parseList(getenv("NOTIFY_RECIPIENTS", "")),
			Workers:           getenvInt("NOTIFY_WORKERS", 2),
			QueueSize:         getenvInt("NOTIFY_QUEUE_SIZE", 256),
			SMTPHost:          getenv("SMTP_HOST", "localhost"),
			SMTPPort:          getenvInt("SMTP_PORT", 1025),
			SMTPUsername:      getenv("SMTP_USERNAME", ""),
			SMTPPassword:      getenv("SMTP_PASSWORD", ""),
			SMTPFrom:          getenv("SMTP_FROM", "portal@localhost"),
			NATSURL:           getenv("NATS_URL", "nats://127.0.0.1:4222"),
			NATSSubjectPrefix: strings.TrimSuffix(getenv("NATS_SUBJECT_PREFIX", "portal"), "."),
		},
		Redis: RedisConfig{
			Addr:     getenv("REDIS_ADDR", ""),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getenvInt("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			ApplicationsPerHour: getenvFloat("RATE_LIMIT_APPLICATIONS_PER_HOUR", 10),
			ApplicationBurst:    getenvInt("RATE_LIMIT_APPLICATION_BURST", 3),
		},
		Scheduler: SchedulerConfig{
			Enabled:  getenvBool("SCHEDULER_ENABLED", true),
			Interval: getenvDuration("SCHEDULER_INTERVAL", 15*time.Minute),
		},
	}
}

// Location returns the organization timezone used to decide what "today" is.
// Unknown zones fall back to UTC.
func (c Config) Location() *time.Location {
	name := strings.TrimSpace(c.Timezone)
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvBool(key string, def bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func parseList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
