package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (policy constants, timeouts), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server ServerConfig
	DB     DBConfig
	CORS   CORSConfig
	Log    LogConfig
	JWT    JWTConfig
	Cookie CookieConfig
	SMTP   SMTPConfig
	Policy PolicyConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"Asia/Manila"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"Asia/Manila"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"28800"` // 8*60*60
}

type JWTConfig struct {
	Secret   string        `envconfig:"JWT_SECRET" required:"true"`
	Duration time.Duration `envconfig:"JWT_DURATION" default:"24h"`
}

type CookieConfig struct {
	Domain   string `envconfig:"COOKIE_DOMAIN" default:""`
	Secure   bool   `envconfig:"COOKIE_SECURE" default:"false"`
	SameSite string `envconfig:"COOKIE_SAME_SITE" default:"Lax"`
}

type SMTPConfig struct {
	Enabled  bool   `envconfig:"SMTP_ENABLED" default:"false"`
	Host     string `envconfig:"SMTP_HOST" default:"localhost"`
	Port     int    `envconfig:"SMTP_PORT" default:"587"`
	Username string `envconfig:"SMTP_USERNAME" default:""`
	Password string `envconfig:"SMTP_PASSWORD" default:""`
	From     string `envconfig:"SMTP_FROM" default:"no-reply@lgu-facilities.local"`
	FromName string `envconfig:"SMTP_FROM_NAME" default:"LGU Facilities Reservation"`
}

// PolicyConfig carries every tunable admission/lifecycle constant. Nothing in
// the engine hard-codes these values.
type PolicyConfig struct {
	ActiveReservationCap  int     `envconfig:"ACTIVE_RESERVATION_CAP" default:"3"`
	RollingWindowDays     int     `envconfig:"ROLLING_WINDOW_DAYS" default:"30"`
	MaxAdvanceDays        int     `envconfig:"MAX_ADVANCE_DAYS" default:"60"`
	PerDayCap             int     `envconfig:"PER_DAY_CAP" default:"1"`
	AutoApproveMaxHours   float64 `envconfig:"AUTO_APPROVE_MAX_HOURS" default:"4"`
	MinDurationMinutes    int     `envconfig:"MIN_DURATION_MINUTES" default:"30"`
	MaxDurationHours      float64 `envconfig:"MAX_DURATION_HOURS" default:"12"`
	RescheduleMinLeadDays int     `envconfig:"RESCHEDULE_MIN_LEAD_DAYS" default:"3"`
	MaxReschedules        int     `envconfig:"MAX_RESCHEDULES" default:"1"`
	PendingTTLHours       int     `envconfig:"PENDING_TTL_HOURS" default:"48"`
	OperatingStart        string  `envconfig:"OPERATING_START" default:"08:00"`
	OperatingEnd          string  `envconfig:"OPERATING_END" default:"21:00"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	cfg := Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "Asia/Manila",
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "Asia/Manila",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 28800,
		},
		JWT: JWTConfig{
			Secret:   "test-secret",
			Duration: time.Hour,
		},
	}
	cfg.Policy = DefaultPolicy()
	return cfg
}

func DefaultPolicy() PolicyConfig {
	return PolicyConfig{
		ActiveReservationCap:  3,
		RollingWindowDays:     30,
		MaxAdvanceDays:        60,
		PerDayCap:             1,
		AutoApproveMaxHours:   4,
		MinDurationMinutes:    30,
		MaxDurationHours:      12,
		RescheduleMinLeadDays: 3,
		MaxReschedules:        1,
		PendingTTLHours:       48,
		OperatingStart:        "08:00",
		OperatingEnd:          "21:00",
	}
}
