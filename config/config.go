package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Config is built once at startup and passed by pointer; nothing reads it globally.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	DB       DatabaseConfig `mapstructure:"db"`
	RabbitMQ RabbitConfig   `mapstructure:"rabbitmq"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
	Calendar CalendarConfig `mapstructure:"calendar"`
}

type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	APIPrefix      string        `mapstructure:"api_prefix"`
	CORSOrigins    []string      `mapstructure:"cors_origins"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	// RateLimit is requests per second per client IP; zero disables limiting.
	RateLimit float64 `mapstructure:"rate_limit"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres | sqlite
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	SQLitePath      string        `mapstructure:"sqlite_path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// DSN returns the Postgres connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

type RabbitConfig struct {
	// URL empty disables lifecycle event publishing.
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
	Queue    string `mapstructure:"queue"`
}

type AuthConfig struct {
	AdminUsername     string        `mapstructure:"admin_username"`
	AdminPassword     string        `mapstructure:"admin_password"`
	AdminPasswordHash string        `mapstructure:"admin_password_hash"`
	JWTSecret         string        `mapstructure:"jwt_secret"`
	SessionTTL        time.Duration `mapstructure:"session_ttl"`
	SweepSchedule     string        `mapstructure:"sweep_schedule"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TierRate is one pricing schedule. The total is always Food + Cleaning.
type TierRate struct {
	Food        float64 `mapstructure:"food" json:"food"`
	Cleaning    float64 `mapstructure:"cleaning" json:"cleaning"`
	Description string  `mapstructure:"description" json:"description"`
}

func (r TierRate) Total() float64 { return r.Food + r.Cleaning }

type PricingConfig struct {
	Weekday    TierRate `mapstructure:"weekday" json:"weekday"`
	Weekend    TierRate `mapstructure:"weekend" json:"weekend"`
	LastNights TierRate `mapstructure:"last_nights" json:"last10nights"`
}

type CalendarConfig struct {
	Pricing       PricingConfig `mapstructure:"pricing"`
	WeekdayGuests int           `mapstructure:"weekday_guests"`
	WeekendGuests int           `mapstructure:"weekend_guests"`
	// LastNights lists the ISO dates priced at the last-nights tier.
	LastNights      []string `mapstructure:"last_nights"`
	OrgSponsorLabel string   `mapstructure:"org_sponsor_label"`
	ZelleAddress    string   `mapstructure:"zelle_address"`
	Year            int      `mapstructure:"year"`
	ReligiousYear   int      `mapstructure:"religious_year"`
}

const sponsorshipDescription = "Iftar Sponsorship: $1,500 ($1,400 Food + $100 Cleanup)"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.api_prefix", "/api/v1")
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000", "https://heathrowmcc.org", "https://www.heathrowmcc.org"})
	v.SetDefault("server.request_timeout", "15s")
	v.SetDefault("server.rate_limit", 20)

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.name", "hmcc_calendar")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.sqlite_path", "hmcc_calendar.db")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", "5m")
	v.SetDefault("db.conn_max_idle_time", "1m")

	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("rabbitmq.exchange", "calendar")
	v.SetDefault("rabbitmq.queue", "calendar.notifications")

	v.SetDefault("auth.admin_username", "hmcc_admin")
	v.SetDefault("auth.admin_password", "")
	v.SetDefault("auth.admin_password_hash", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.session_ttl", "24h")
	v.SetDefault("auth.sweep_schedule", "@every 1h")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	for _, tier := range []string{"weekday", "weekend", "last_nights"} {
		v.SetDefault("calendar.pricing."+tier+".food", 1400)
		v.SetDefault("calendar.pricing."+tier+".cleaning", 100)
		v.SetDefault("calendar.pricing."+tier+".description", sponsorshipDescription)
	}
	v.SetDefault("calendar.weekday_guests", 100)
	v.SetDefault("calendar.weekend_guests", 100)
	v.SetDefault("calendar.last_nights", []string{"2026-03-10", "2026-03-12", "2026-03-14", "2026-03-16", "2026-03-18"})
	v.SetDefault("calendar.org_sponsor_label", "HMCC - Heathrow Muslim Community Center")
	v.SetDefault("calendar.zelle_address", "Hmccoppexp@yahoo.com")
	v.SetDefault("calendar.year", 2026)
	v.SetDefault("calendar.religious_year", 1447)
}

// Load reads defaults, then an optional config file, then the environment.
// A .env file in the working directory is loaded first when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.Auth.AdminPasswordHash == "" && cfg.Auth.AdminPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Auth.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
		cfg.Auth.AdminPasswordHash = string(hash)
	}
	cfg.Auth.AdminPassword = ""

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("config: server.port is required")
	}
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unsupported db.driver %q", c.DB.Driver)
	}
	if len(c.Auth.JWTSecret) < 16 {
		return errors.New("config: auth.jwt_secret must be at least 16 characters")
	}
	if c.Auth.AdminUsername == "" || c.Auth.AdminPasswordHash == "" {
		return errors.New("config: admin credentials are required (auth.admin_password or auth.admin_password_hash)")
	}
	if c.Auth.SessionTTL <= 0 {
		return errors.New("config: auth.session_ttl must be positive")
	}
	return c.Calendar.Validate()
}

func (c *CalendarConfig) Validate() error {
	for name, r := range map[string]TierRate{
		"weekday":     c.Pricing.Weekday,
		"weekend":     c.Pricing.Weekend,
		"last_nights": c.Pricing.LastNights,
	} {
		if r.Food < 0 || r.Cleaning < 0 {
			return fmt.Errorf("config: calendar.pricing.%s amounts must be non-negative", name)
		}
	}
	if c.WeekdayGuests < 0 || c.WeekendGuests < 0 {
		return errors.New("config: guest capacity must be non-negative")
	}
	for _, d := range c.LastNights {
		if _, err := time.Parse(time.DateOnly, d); err != nil {
			return fmt.Errorf("config: calendar.last_nights entry %q is not an ISO date", d)
		}
	}
	return nil
}
