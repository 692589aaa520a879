package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"taskManager/internal/repository"

	"github.com/go-sql-driver/mysql"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFile = "config.yml"
	envPrefix   = "TASKS"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
	Database   DatabaseConfig   `mapstructure:"database" yaml:"database"`
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`
	Repository RepositoryConfig `mapstructure:"repository" yaml:"repository"`
	HTTP       HTTPConfig       `mapstructure:"http" yaml:"http"`
	Tasks      TasksConfig      `mapstructure:"tasks" yaml:"tasks"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port" yaml:"port"`
	Host            string        `mapstructure:"host" yaml:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url" yaml:"url"`
	MaxConnections int32         `mapstructure:"max_connections" yaml:"max_connections"`
	MinConnections int32         `mapstructure:"min_connections" yaml:"min_connections"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	AutoMigrate    bool          `mapstructure:"auto_migrate" yaml:"auto_migrate"`
}

type LoggingConfig struct {
	Development bool `mapstructure:"development" yaml:"development"`
}

// RepositoryConfig.Type is one of postgres, sqlite, mysql or inmemory.
type RepositoryConfig struct {
	Type string `mapstructure:"type" yaml:"type"`
}

type HTTPConfig struct {
	RateLimit          int      `mapstructure:"rate_limit" yaml:"rate_limit"`
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins" yaml:"cors_allowed_origins"`
}

type TasksConfig struct {
	StrictAssignment         bool `mapstructure:"strict_assignment" yaml:"strict_assignment"`
	ClearCompletedAtOnReopen bool `mapstructure:"clear_completed_at_on_reopen" yaml:"clear_completed_at_on_reopen"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.min_connections", 2)
	v.SetDefault("database.idle_timeout", 5*time.Minute)
	v.SetDefault("database.auto_migrate", false)

	v.SetDefault("logging.development", false)
	v.SetDefault("repository.type", string(repository.TypeInMemory))

	v.SetDefault("http.rate_limit", 100)
	v.SetDefault("http.cors_allowed_origins", []string{})

	v.SetDefault("tasks.strict_assignment", false)
	v.SetDefault("tasks.clear_completed_at_on_reopen", false)
}

// Load reads the YAML file at path and applies TASKS_* environment overrides,
// e.g. TASKS_REPOSITORY_TYPE=postgres. A missing file leaves the defaults in place.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = DefaultFile
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func (c *Config) Validate() error {
	if !repository.Type(c.Repository.Type).Valid() {
		return fmt.Errorf("config: unknown repository type %q", c.Repository.Type)
	}
	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("config: invalid server port %q", c.Server.Port)
	}
	if c.RepositoryType() != repository.TypeInMemory && c.Database.URL == "" {
		return fmt.Errorf("config: database.url is required for %s", c.Repository.Type)
	}
	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("config: min_connections %d exceeds max_connections %d",
			c.Database.MinConnections, c.Database.MaxConnections)
	}
	return nil
}

func (c *Config) RepositoryType() repository.Type {
	return repository.Type(c.Repository.Type)
}

func (c *Config) GetServerAddr() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}

const maskedPassword = "xxxxx"

// Redacted returns a copy whose database password is masked, for printing.
func (c *Config) Redacted() *Config {
	out := *c
	out.Database.URL = redactDSN(c.RepositoryType(), c.Database.URL)
	return &out
}

func redactDSN(repoType repository.Type, dsn string) string {
	if repoType == repository.TypeMySQL && !strings.Contains(dsn, "://") {
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return maskedPassword
		}
		if cfg.Passwd != "" {
			cfg.Passwd = maskedPassword
		}
		return cfg.FormatDSN()
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return maskedPassword
	}
	if u.User == nil {
		return dsn
	}
	return u.Redacted()
}

// YAML renders the effective configuration.
func (c *Config) YAML() ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(c); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return buf.Bytes(), nil
}
