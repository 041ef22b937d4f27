package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment   string
	LogLevel      string
	Server        ServerConfig
	Database      DatabaseConfig
	Admin         AdminConfig
	Webhooks      WebhookConfig
	Observability ObservabilityConfig
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	Path      string
	LogTiming bool
}

type AdminConfig struct {
	Token string
}

type WebhookConfig struct {
	ToleranceSeconds int
	RotationGrace    time.Duration
}

type ObservabilityConfig struct {
	Enabled           bool
	OTLPEndpoint      string
	OTLPTraceHeaders  map[string]string
	OTLPMetricHeaders map[string]string
	ServiceName       string
	ServiceVer        string
	SamplingRatio     float64
	MetricsConsole    bool
}

func Load() (Config, error) {
	return load(true)
}

// LoadForTool loads config for CLI tools that never serve the admin API.
func LoadForTool() (Config, error) {
	return load(false)
}

func load(requireAdminToken bool) (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("hooksig_env", "")
	v.SetDefault("app_env", "")
	v.SetDefault("go_env", "")
	v.SetDefault("hooksig_log_level", "info")
	v.SetDefault("hooksig_port", 8080)
	v.SetDefault("hooksig_db_path", "data/hooksig")
	v.SetDefault("hooksig_db_timing", false)
	v.SetDefault("hooksig_admin_token", "")
	v.SetDefault("hooksig_tolerance_seconds", 300)
	v.SetDefault("hooksig_rotation_grace", "24h")
	v.SetDefault("hooksig_otel_enabled", false)
	v.SetDefault("otel_exporter_otlp_endpoint", "")
	v.SetDefault("otel_exporter_otlp_headers", "")
	v.SetDefault("otel_exporter_otlp_traces_headers", "")
	v.SetDefault("otel_exporter_otlp_metrics_headers", "")
	v.SetDefault("otel_service_name", "hooksig")
	v.SetDefault("hooksig_service_name", "hooksig")
	v.SetDefault("hooksig_version", "dev")
	v.SetDefault("otel_service_version", "")
	v.SetDefault("hooksig_otel_sampling_ratio", 1.0)
	v.SetDefault("hooksig_otel_metrics_console", false)

	env := resolveEnvironment(v)
	port := v.GetInt("hooksig_port")
	if port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("invalid HOOKSIG_PORT: %d", port)
	}

	samplingRatio := v.GetFloat64("hooksig_otel_sampling_ratio")
	if samplingRatio < 0 {
		samplingRatio = 0
	}
	if samplingRatio > 1 {
		samplingRatio = 1
	}

	tolerance := v.GetInt("hooksig_tolerance_seconds")
	if tolerance <= 0 {
		tolerance = 300
	}
	if tolerance > 3600 {
		tolerance = 3600
	}

	grace := v.GetDuration("hooksig_rotation_grace")
	if grace < 0 {
		grace = 0
	}

	serviceName := strings.TrimSpace(v.GetString("otel_service_name"))
	if serviceName == "" {
		serviceName = strings.TrimSpace(v.GetString("hooksig_service_name"))
	}
	if serviceName == "" {
		serviceName = "hooksig"
	}

	serviceVersion := strings.TrimSpace(v.GetString("hooksig_version"))
	if serviceVersion == "" {
		serviceVersion = strings.TrimSpace(v.GetString("otel_service_version"))
	}
	if serviceVersion == "" {
		serviceVersion = "dev"
	}

	otlpEndpoint := strings.TrimSpace(v.GetString("otel_exporter_otlp_endpoint"))
	otlpCommonHeaders := parseOTLPHeaders(v.GetString("otel_exporter_otlp_headers"))
	otlpTraceHeaders := parseOTLPHeaders(v.GetString("otel_exporter_otlp_traces_headers"))
	otlpMetricHeaders := parseOTLPHeaders(v.GetString("otel_exporter_otlp_metrics_headers"))
	metricsConsole := v.GetBool("hooksig_otel_metrics_console")
	otelEnabled := v.GetBool("hooksig_otel_enabled") || otlpEndpoint != "" || metricsConsole
	traceHeaders := mergeHeaderMaps(otlpCommonHeaders, otlpTraceHeaders)
	metricHeaders := mergeHeaderMaps(otlpCommonHeaders, otlpMetricHeaders)

	cfg := Config{
		Environment: env,
		LogLevel:    strings.TrimSpace(v.GetString("hooksig_log_level")),
		Server:      ServerConfig{Port: port},
		Database: DatabaseConfig{
			Path:      strings.TrimSpace(v.GetString("hooksig_db_path")),
			LogTiming: v.GetBool("hooksig_db_timing"),
		},
		Admin: AdminConfig{
			Token: strings.TrimSpace(v.GetString("hooksig_admin_token")),
		},
		Webhooks: WebhookConfig{
			ToleranceSeconds: tolerance,
			RotationGrace:    grace,
		},
		Observability: ObservabilityConfig{
			Enabled:           otelEnabled,
			OTLPEndpoint:      otlpEndpoint,
			OTLPTraceHeaders:  traceHeaders,
			OTLPMetricHeaders: metricHeaders,
			ServiceName:       serviceName,
			ServiceVer:        serviceVersion,
			SamplingRatio:     samplingRatio,
			MetricsConsole:    metricsConsole,
		},
	}

	if strings.TrimSpace(cfg.Database.Path) == "" {
		cfg.Database.Path = "data/hooksig"
	}
	if requireAdminToken && !cfg.IsLocalDevelopment() && cfg.Admin.Token == "" {
		return Config{}, fmt.Errorf("HOOKSIG_ADMIN_TOKEN is required outside local/dev environments")
	}

	return cfg, nil
}

func parseOTLPHeaders(raw string) map[string]string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	out := make(map[string]string)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		pair := strings.SplitN(part, "=", 2)
		if len(pair) != 2 {
			continue
		}
		key := strings.TrimSpace(pair[0])
		value := strings.TrimSpace(pair[1])
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func mergeHeaderMaps(base, override map[string]string) map[string]string {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

func (c Config) IsLocalDevelopment() bool {
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "", "local", "dev", "development", "test":
		return true
	default:
		return false
	}
}

// Tolerance is the accepted distance between a delivery timestamp and now.
func (c Config) Tolerance() time.Duration {
	return time.Duration(c.Webhooks.ToleranceSeconds) * time.Second
}

func resolveEnvironment(v *viper.Viper) string {
	for _, key := range []string{"hooksig_env", "app_env", "go_env"} {
		value := strings.TrimSpace(v.GetString(key))
		if value != "" {
			return strings.ToLower(value)
		}
	}
	return ""
}
