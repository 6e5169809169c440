package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	Driver  string `mapstructure:"driver"` // sqlite | postgres
	Path    string `mapstructure:"path"`
	DSN     string `mapstructure:"dsn"`
	LogMode bool   `mapstructure:"log_mode"`
}

type JWTConfig struct {
	Secret          string `mapstructure:"secret"`
	Issuer          string `mapstructure:"issuer"`
	ExpireHours     int    `mapstructure:"expire_hours"`
	VerifyWithStore bool   `mapstructure:"verify_with_store"`
	CookieSecure    bool   `mapstructure:"cookie_secure"`
}

type SecurityConfig struct {
	BcryptCost    int    `mapstructure:"bcrypt_cost"`
	EncryptionKey string `mapstructure:"encryption_key"`
}

type EmailConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	From    string        `mapstructure:"from"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	File   string `mapstructure:"file"`
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text | json
}

type BackupConfig struct {
	Dir string `mapstructure:"dir"`
}

type JobsConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	ReminderCron       string `mapstructure:"reminder_cron"`
	ReminderWindowDays int    `mapstructure:"reminder_window_days"`
	LeaseExpiryCron    string `mapstructure:"lease_expiry_cron"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Security SecurityConfig `mapstructure:"security"`
	Email    EmailConfig    `mapstructure:"email"`
	Log      LogConfig      `mapstructure:"log"`
	Backup   BackupConfig   `mapstructure:"backup"`
	Jobs     JobsConfig     `mapstructure:"jobs"`
}

// EnvPrefix prefixes every environment override, e.g. REX_JWT_SECRET.
const EnvPrefix = "REX"

// ErrMissingSecret is returned when no token signing secret is configured.
var ErrMissingSecret = errors.New("jwt.secret is required (set REX_JWT_SECRET)")

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.cors_origins", []string{})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/rentexpress.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.log_mode", false)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "rentexpress")
	v.SetDefault("jwt.expire_hours", 24)
	v.SetDefault("jwt.verify_with_store", true)
	v.SetDefault("jwt.cookie_secure", false)

	v.SetDefault("security.bcrypt_cost", 12)
	v.SetDefault("security.encryption_key", "")

	v.SetDefault("email.api_key", "")
	v.SetDefault("email.from", "RentExpress <no-reply@rentexpress.local>")
	v.SetDefault("email.base_url", "https://api.resend.com/emails")
	v.SetDefault("email.timeout", 10*time.Second)

	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("backup.dir", "data/backups")

	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.reminder_cron", "0 8 * * *")
	v.SetDefault("jobs.reminder_window_days", 3)
	v.SetDefault("jobs.lease_expiry_cron", "5 0 * * *")
}

// Load reads configuration from the given YAML file (optional), then .env,
// then REX_* environment variables, in increasing precedence.
// If path is empty, config.yaml in the working directory is tried.
func Load(path string) (*Config, error) {
	// .env is optional; a missing file is not an error
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path == "" {
		path = "config.yaml"
	}
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects configurations the service cannot safely start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return ErrMissingSecret
	}
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return errors.New("database.path is required for sqlite")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return errors.New("database.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	if c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31 {
		return fmt.Errorf("security.bcrypt_cost out of range: %d", c.Security.BcryptCost)
	}
	return nil
}

// TokenTTL is the configured token lifetime.
func (c *Config) TokenTTL() time.Duration {
	if c.JWT.ExpireHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.JWT.ExpireHours) * time.Hour
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
