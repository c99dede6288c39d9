package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Database DatabaseConfig `mapstructure:"database"`
	Notes    NotesConfig    `mapstructure:"notes"`
	Bot      BotConfig      `mapstructure:"bot"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token"`
	// Timeout is the long polling timeout in seconds.
	Timeout int  `mapstructure:"timeout"`
	Debug   bool `mapstructure:"debug"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	// Path is the database file for sqlite3.
	Path string `mapstructure:"path"`
}

type NotesConfig struct {
	MaxPerChat        int  `mapstructure:"max_per_chat"`
	NotifyOnFallback  bool `mapstructure:"notify_on_fallback"`
	SettingsCacheSize int  `mapstructure:"settings_cache_size"`
}

type BotConfig struct {
	Workers      int           `mapstructure:"workers"`
	RoleCacheTTL time.Duration `mapstructure:"role_cache_ttl"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
	Dev   bool   `mapstructure:"dev"`
}

func parseDatabaseURL(dbURL string) (DatabaseConfig, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, err
	}

	switch u.Scheme {
	case "sqlite", "sqlite3", "file":
		path := u.Opaque
		if path == "" {
			path = u.Host + u.Path
		}
		return DatabaseConfig{Driver: DriverSQLite, Path: path}, nil
	case "postgres", "postgresql":
	default:
		return DatabaseConfig{}, fmt.Errorf("unsupported database scheme %q", u.Scheme)
	}

	password, _ := u.User.Password()
	port := 5432 // default PostgreSQL port
	if u.Port() != "" {
		if _, err := fmt.Sscanf(u.Port(), "%d", &port); err != nil {
			return DatabaseConfig{}, fmt.Errorf("invalid port %q", u.Port())
		}
	}

	sslMode := u.Query().Get("sslmode")
	if sslMode == "" {
		sslMode = "disable"
	}

	return DatabaseConfig{
		Driver:   DriverPostgres,
		Host:     u.Hostname(),
		Port:     port,
		User:     u.User.Username(),
		Password: password,
		DBName:   strings.TrimPrefix(u.Path, "/"),
		SSLMode:  sslMode,
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.timeout", 60)
	v.SetDefault("telegram.debug", false)

	v.SetDefault("database.driver", DriverMemory)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "notes")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "notes.db")

	v.SetDefault("notes.max_per_chat", 1000)
	v.SetDefault("notes.notify_on_fallback", false)
	v.SetDefault("notes.settings_cache_size", 1000)

	v.SetDefault("bot.workers", 16)
	v.SetDefault("bot.role_cache_ttl", 30*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.dev", false)
}

// LoadDotEnv loads the first .env file found among paths into the process
// environment. Missing files are not an error.
func LoadDotEnv(paths ...string) string {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err == nil {
			return path
		}
	}
	return ""
}

// LoadConfig reads the YAML file at path, when given, and applies
// environment overrides. TELEGRAM_TOKEN, DATABASE_URL and any key in
// SECTION_KEY form (e.g. NOTES_MAX_PER_CHAT) are honoured.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Enable environment variable support
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	// Check for DATABASE_URL environment variable
	if dbURL := v.GetString("DATABASE_URL"); dbURL != "" {
		dbConfig, err := parseDatabaseURL(dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		config.Database = dbConfig
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.DBName == "" {
			errs = append(errs, errors.New("database.host and database.dbname are required for postgres"))
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			errs = append(errs, errors.New("database.path is required for sqlite3"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown database.driver %q", c.Database.Driver))
	}

	if c.Notes.MaxPerChat <= 0 {
		errs = append(errs, errors.New("notes.max_per_chat must be positive"))
	}
	if c.Notes.SettingsCacheSize < 0 {
		errs = append(errs, errors.New("notes.settings_cache_size must not be negative"))
	}
	if c.Bot.Workers <= 0 {
		errs = append(errs, errors.New("bot.workers must be positive"))
	}
	if c.Telegram.Timeout < 0 {
		errs = append(errs, errors.New("telegram.timeout must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// RequireToken is checked only by commands that talk to Telegram.
func (c *Config) RequireToken() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return errors.New("telegram.token (or TELEGRAM_TOKEN) is required")
	}
	return nil
}
