package config

import (
	"fmt"
	"os"
	"time"
)

const (
	defaultServiceName  = "blog-publisher"
	defaultVersion      = "0.1.0"
	defaultPort         = 8080
	defaultMaxBodyBytes = 1 << 20

	defaultPostsDir  = "content/posts"
	defaultExtension = ".mdx"

	defaultMirrorBranch     = "main"
	defaultMirrorPrefix     = "posts"
	defaultCommitterName    = "blog-publisher"
	defaultCommitterEmail   = "blog-publisher@users.noreply.github.com"
	defaultMirrorTimeout    = 10 * time.Second
	defaultFailureThreshold = 5
	defaultOpenTimeout      = time.Minute

	defaultDBHost    = "localhost"
	defaultDBPort    = 5432
	defaultDBUser    = "postgres"
	defaultDBName    = "blog"
	defaultDBSSLMode = "disable"

	defaultRedisAddr = "localhost:6379"
	defaultCacheTTL  = 5 * time.Minute

	defaultLogLevel  = "info"
	defaultLogFormat = "json"
)

type Config struct {
	Service  ServiceConfig  `yaml:"service"`
	Posts    PostsConfig    `yaml:"posts"`
	Mirror   MirrorConfig   `yaml:"mirror"`
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServiceConfig struct {
	Name         string `yaml:"name"`
	Version      string `yaml:"version"`
	Port         int    `env:"PORT"           yaml:"port"`
	Debug        bool   `env:"APP_DEBUG"      yaml:"debug"`
	AdminToken   string `env:"ADMIN_TOKEN"    yaml:"admin_token"`
	MaxBodyBytes int64  `env:"MAX_BODY_BYTES" yaml:"max_body_bytes"`
}

// PostsConfig locates the local post store.
type PostsConfig struct {
	Dir       string `env:"POSTS_DIR"       yaml:"dir"`
	Extension string `env:"POSTS_EXTENSION" yaml:"extension"`
}

// MirrorConfig configures the GitHub mirror. An empty token, owner or repo disables it.
type MirrorConfig struct {
	Token            string        `env:"GITHUB_TOKEN"           yaml:"token"`
	Owner            string        `env:"GITHUB_OWNER"           yaml:"owner"`
	Repo             string        `env:"GITHUB_REPO"            yaml:"repo"`
	Branch           string        `env:"GITHUB_BRANCH"          yaml:"branch"`
	PathPrefix       string        `env:"GITHUB_PATH_PREFIX"     yaml:"path_prefix"`
	APIURL           string        `env:"GITHUB_API_URL"         yaml:"api_url"`
	CommitterName    string        `env:"GITHUB_COMMITTER_NAME"  yaml:"committer_name"`
	CommitterEmail   string        `env:"GITHUB_COMMITTER_EMAIL" yaml:"committer_email"`
	Timeout          time.Duration `env:"GITHUB_TIMEOUT"         yaml:"timeout"`
	FailureThreshold int           `yaml:"failure_threshold"`
	OpenTimeout      time.Duration `yaml:"open_timeout"`
}

// Configured reports whether the mirror has the credentials it needs.
func (m *MirrorConfig) Configured() bool {
	return m.Token != "" && m.Owner != "" && m.Repo != ""
}

type DatabaseConfig struct {
	Enabled  bool   `env:"DB_ENABLED"  yaml:"enabled"`
	Host     string `env:"DB_HOST"     yaml:"host"`
	Port     int    `env:"DB_PORT"     yaml:"port"`
	User     string `env:"DB_USER"     yaml:"user"`
	Password string `env:"DB_PASSWORD" yaml:"password"`
	Database string `env:"DB_NAME"     yaml:"database"`
	SSLMode  string `env:"DB_SSLMODE"  yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode)
}

type CacheConfig struct {
	Enabled  bool          `env:"CACHE_ENABLED"  yaml:"enabled"`
	Addr     string        `env:"REDIS_ADDR"     yaml:"addr"`
	Password string        `env:"REDIS_PASSWORD" yaml:"password"`
	DB       int           `env:"REDIS_DB"       yaml:"db"`
	TTL      time.Duration `env:"CACHE_TTL"      yaml:"ttl"`
}

type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// Load reads path (if present), applies defaults and then environment overrides.
func Load(path string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, fmt.Errorf("load environment files: %w", err)
	}

	cfg := &Config{}
	if err := readYAML(path, cfg); err != nil {
		return nil, err
	}
	setDefaults(cfg)
	applyEnvOverrides(cfg, os.Getenv)
	return cfg, nil
}

func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setPostsDefaults(&cfg.Posts)
	setMirrorDefaults(&cfg.Mirror)
	setDatabaseDefaults(&cfg.Database)
	setCacheDefaults(&cfg.Cache)
	setLoggingDefaults(&cfg.Logging)
}

func setServiceDefaults(svc *ServiceConfig) {
	if svc.Name == "" {
		svc.Name = defaultServiceName
	}
	if svc.Version == "" {
		svc.Version = defaultVersion
	}
	if svc.Port == 0 {
		svc.Port = defaultPort
	}
	if svc.MaxBodyBytes == 0 {
		svc.MaxBodyBytes = defaultMaxBodyBytes
	}
}

func setPostsDefaults(p *PostsConfig) {
	if p.Dir == "" {
		p.Dir = defaultPostsDir
	}
	if p.Extension == "" {
		p.Extension = defaultExtension
	}
}

func setMirrorDefaults(m *MirrorConfig) {
	if m.Branch == "" {
		m.Branch = defaultMirrorBranch
	}
	if m.PathPrefix == "" {
		m.PathPrefix = defaultMirrorPrefix
	}
	if m.CommitterName == "" {
		m.CommitterName = defaultCommitterName
	}
	if m.CommitterEmail == "" {
		m.CommitterEmail = defaultCommitterEmail
	}
	if m.Timeout == 0 {
		m.Timeout = defaultMirrorTimeout
	}
	if m.FailureThreshold == 0 {
		m.FailureThreshold = defaultFailureThreshold
	}
	if m.OpenTimeout == 0 {
		m.OpenTimeout = defaultOpenTimeout
	}
}

func setDatabaseDefaults(db *DatabaseConfig) {
	if db.Host == "" {
		db.Host = defaultDBHost
	}
	if db.Port == 0 {
		db.Port = defaultDBPort
	}
	if db.User == "" {
		db.User = defaultDBUser
	}
	if db.Database == "" {
		db.Database = defaultDBName
	}
	if db.SSLMode == "" {
		db.SSLMode = defaultDBSSLMode
	}
}

func setCacheDefaults(c *CacheConfig) {
	if c.Addr == "" {
		c.Addr = defaultRedisAddr
	}
	if c.TTL == 0 {
		c.TTL = defaultCacheTTL
	}
}

func setLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = defaultLogLevel
	}
	if l.Format == "" {
		l.Format = defaultLogFormat
	}
}

// ValidationError names the offending config field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	if c.Service.Port < 1 || c.Service.Port > 65535 {
		return &ValidationError{Field: "service.port", Message: "must be between 1 and 65535"}
	}
	if c.Service.AdminToken == "" {
		return &ValidationError{Field: "service.admin_token", Message: "is required"}
	}
	if c.Service.MaxBodyBytes < 0 {
		return &ValidationError{Field: "service.max_body_bytes", Message: "must not be negative"}
	}
	if c.Mirror.Timeout <= 0 {
		return &ValidationError{Field: "mirror.timeout", Message: "must be positive"}
	}
	if c.Mirror.OpenTimeout <= 0 {
		return &ValidationError{Field: "mirror.open_timeout", Message: "must be positive"}
	}
	if c.Mirror.FailureThreshold <= 0 {
		return &ValidationError{Field: "mirror.failure_threshold", Message: "must be positive"}
	}
	if c.Posts.Extension[0] != '.' {
		return &ValidationError{Field: "posts.extension", Message: "must start with a dot"}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Field: "logging.level", Message: "must be one of: debug, info, warn, error"}
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return &ValidationError{Field: "logging.format", Message: "must be json or text"}
	}
	return nil
}
