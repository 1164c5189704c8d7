package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/spf13/viper"
)

const VERSION = "1.4"

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Backend     BackendConfig
	Editor      EditorConfig
	Tracing     TracingConfig
	Environment string
	LogLevel    string
	Version     string
}

type ServerConfig struct {
	Port int
	Host string
	SSL  SSLConfig
	// CORSAllowOrigin is echoed in Access-Control-Allow-Origin
	CORSAllowOrigin string
}

type SSLConfig struct {
	Enabled  bool
	CertFile string
	KeyFile  string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// BackendConfig points at the templates service the editor loads from and
// saves to
type BackendConfig struct {
	TemplatesURL string
	Timeout      time.Duration
	CSRFToken    string
}

type EditorConfig struct {
	HistoryLimit     int
	DragThreshold    float64
	AutoScrollEdge   float64
	AutoScrollSpeed  float64
	AutosaveInterval time.Duration
	SessionTTL       time.Duration
	// DraftRetention is how long an autosaved draft survives without updates
	DraftRetention time.Duration
	PreviewTimeout time.Duration
}

type TracingConfig struct {
	Enabled             bool
	ServiceName         string
	SamplingProbability float64
	TraceExporter       string
	MetricsExporter     string
	JaegerEndpoint      string
	ZipkinEndpoint      string
	PrometheusPort      int
}

// LoadOptions contains options for loading configuration
type LoadOptions struct {
	EnvFile string // Optional environment file to load (e.g., ".env", ".env.test")
}

// Load loads the configuration with default options
func Load() (*Config, error) {
	// Try to load .env file but don't require it
	return LoadWithOptions(LoadOptions{EnvFile: ".env"})
}

// LoadWithOptions loads the configuration with the specified options
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("CORS_ALLOW_ORIGIN", "*")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "visualeditor")
	v.SetDefault("DB_SSLMODE", "require")
	v.SetDefault("ENVIRONMENT", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("VERSION", VERSION)

	// Templates backend
	v.SetDefault("TEMPLATES_API_TIMEOUT", "10s")

	// Editor tunables
	v.SetDefault("EDITOR_HISTORY_LIMIT", 50)
	v.SetDefault("EDITOR_DRAG_THRESHOLD", 5.0)
	v.SetDefault("EDITOR_AUTOSCROLL_EDGE", 40.0)
	v.SetDefault("EDITOR_AUTOSCROLL_SPEED", 12.0)
	v.SetDefault("EDITOR_AUTOSAVE_INTERVAL", "30s")
	v.SetDefault("EDITOR_SESSION_TTL", "2h")
	v.SetDefault("EDITOR_DRAFT_RETENTION", "168h")
	v.SetDefault("EDITOR_PREVIEW_TIMEOUT", "5s")

	// Tracing
	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("TRACING_SERVICE_NAME", "visualeditor")
	v.SetDefault("TRACING_SAMPLING_PROBABILITY", 0.1)
	v.SetDefault("TRACING_TRACE_EXPORTER", "none")
	v.SetDefault("TRACING_METRICS_EXPORTER", "none")
	v.SetDefault("TRACING_PROMETHEUS_PORT", 9464)

	// Load environment file if specified
	if opts.EnvFile != "" {
		v.SetConfigName(opts.EnvFile)
		v.SetConfigType("env")

		currentPath, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("error getting current directory: %w", err)
		}

		v.AddConfigPath(currentPath)

		if err := v.ReadInConfig(); err != nil {
			// It's okay if config file doesn't exist
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	// Read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	templatesURL := strings.TrimRight(v.GetString("TEMPLATES_API_URL"), "/")
	if templatesURL == "" {
		return nil, fmt.Errorf("TEMPLATES_API_URL is required")
	}
	if !govalidator.IsURL(templatesURL) {
		return nil, fmt.Errorf("TEMPLATES_API_URL is not a valid URL: %s", templatesURL)
	}

	config := &Config{
		Server: ServerConfig{
			Port: v.GetInt("SERVER_PORT"),
			Host: v.GetString("SERVER_HOST"),
			SSL: SSLConfig{
				Enabled:  v.GetBool("SSL_ENABLED"),
				CertFile: v.GetString("SSL_CERT_FILE"),
				KeyFile:  v.GetString("SSL_KEY_FILE"),
			},
			CORSAllowOrigin: v.GetString("CORS_ALLOW_ORIGIN"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Backend: BackendConfig{
			TemplatesURL: templatesURL,
			Timeout:      v.GetDuration("TEMPLATES_API_TIMEOUT"),
			CSRFToken:    v.GetString("CSRF_TOKEN"),
		},
		Editor: EditorConfig{
			HistoryLimit:     v.GetInt("EDITOR_HISTORY_LIMIT"),
			DragThreshold:    v.GetFloat64("EDITOR_DRAG_THRESHOLD"),
			AutoScrollEdge:   v.GetFloat64("EDITOR_AUTOSCROLL_EDGE"),
			AutoScrollSpeed:  v.GetFloat64("EDITOR_AUTOSCROLL_SPEED"),
			AutosaveInterval: v.GetDuration("EDITOR_AUTOSAVE_INTERVAL"),
			SessionTTL:       v.GetDuration("EDITOR_SESSION_TTL"),
			DraftRetention:   v.GetDuration("EDITOR_DRAFT_RETENTION"),
			PreviewTimeout:   v.GetDuration("EDITOR_PREVIEW_TIMEOUT"),
		},
		Tracing: TracingConfig{
			Enabled:             v.GetBool("TRACING_ENABLED"),
			ServiceName:         v.GetString("TRACING_SERVICE_NAME"),
			SamplingProbability: v.GetFloat64("TRACING_SAMPLING_PROBABILITY"),
			TraceExporter:       v.GetString("TRACING_TRACE_EXPORTER"),
			MetricsExporter:     v.GetString("TRACING_METRICS_EXPORTER"),
			JaegerEndpoint:      v.GetString("TRACING_JAEGER_ENDPOINT"),
			ZipkinEndpoint:      v.GetString("TRACING_ZIPKIN_ENDPOINT"),
			PrometheusPort:      v.GetInt("TRACING_PROMETHEUS_PORT"),
		},
		Environment: v.GetString("ENVIRONMENT"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		Version:     v.GetString("VERSION"),
	}

	if config.Editor.HistoryLimit <= 0 {
		return nil, fmt.Errorf("EDITOR_HISTORY_LIMIT must be positive, got %d", config.Editor.HistoryLimit)
	}

	return config, nil
}

// IsDevelopment returns true if the environment is set to development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
