package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/baselinehq/tennis-league/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"

	BackendMemory = "memory"
	BackendMongo  = "mongo"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	CORSAllowedOrigins []string
	LogLevel           logging.Level

	DocstoreBackend string
	MongoURI        string
	MongoDatabase   string
	MongoTimeout    time.Duration

	CacheTTL time.Duration

	AuthBaseURL        string
	AuthIntrospectPath string
	AuthTimeout        time.Duration

	EmailEnabled              bool
	EmailEndpoint             string
	EmailAPIKey               string
	EmailTimeout              time.Duration
	EmailRatePerSecond        float64
	EmailBurst                int
	EmailCircuitEnabled       bool
	EmailCircuitFailureCount  int
	EmailCircuitOpenTimeout   time.Duration
	EmailCircuitHalfOpenMaxRq int

	PointsDefaultWin  int
	PointsWinByMonth  map[time.Month]int
	PointsBonusPerSet float64
	PointsBonusCapPct float64
	StandingsEpsilon  float64

	MigrationBlobName   string
	MigrationBackupName string
	MigrationBatchSize  int
	MigrationWorkers    int

	InternalJobToken string

	PprofEnabled bool
	PprofAddr    string

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := time.ParseDuration(getEnv("HTTP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse HTTP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("HTTP_WRITE_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse HTTP_WRITE_TIMEOUT: %w", err)
	}

	backend := strings.ToLower(strings.TrimSpace(getEnv("DOCSTORE_BACKEND", BackendMemory)))
	switch backend {
	case BackendMemory, BackendMongo:
	default:
		return Config{}, fmt.Errorf("invalid DOCSTORE_BACKEND %q: valid values are %s, %s", backend, BackendMemory, BackendMongo)
	}
	mongoURI := strings.TrimSpace(getEnv("MONGO_URI", ""))
	if backend == BackendMongo && mongoURI == "" {
		return Config{}, fmt.Errorf("MONGO_URI is required when DOCSTORE_BACKEND=mongo")
	}
	mongoTimeout, err := time.ParseDuration(getEnv("MONGO_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse MONGO_TIMEOUT: %w", err)
	}

	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "1m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}

	authTimeout, err := time.ParseDuration(getEnv("AUTH_TIMEOUT", "5s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse AUTH_TIMEOUT: %w", err)
	}

	emailEnabled, err := strconv.ParseBool(getEnv("EMAIL_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse EMAIL_ENABLED: %w", err)
	}
	emailEndpoint := strings.TrimSpace(getEnv("EMAIL_ENDPOINT", ""))
	if emailEnabled && emailEndpoint == "" {
		return Config{}, fmt.Errorf("EMAIL_ENDPOINT is required when EMAIL_ENABLED=true")
	}
	emailTimeout, err := time.ParseDuration(getEnv("EMAIL_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse EMAIL_TIMEOUT: %w", err)
	}
	emailRate, err := getEnvAsFloat("EMAIL_RATE_PER_SECOND", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse EMAIL_RATE_PER_SECOND: %w", err)
	}
	emailBurst, err := getEnvAsInt("EMAIL_BURST", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse EMAIL_BURST: %w", err)
	}
	emailCircuitEnabled, err := strconv.ParseBool(getEnv("EMAIL_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse EMAIL_CIRCUIT_ENABLED: %w", err)
	}
	emailCircuitFailures, err := getEnvAsInt("EMAIL_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse EMAIL_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	emailCircuitOpenTimeout, err := time.ParseDuration(getEnv("EMAIL_CIRCUIT_OPEN_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse EMAIL_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	emailCircuitHalfOpen, err := getEnvAsInt("EMAIL_CIRCUIT_HALF_OPEN_MAX_REQ", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse EMAIL_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}

	pointsDefaultWin, err := getEnvAsInt("POINTS_DEFAULT_WIN", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse POINTS_DEFAULT_WIN: %w", err)
	}
	pointsWinByMonth, err := parseMonthPoints(getEnv("POINTS_WIN_BY_MONTH", "january:4"))
	if err != nil {
		return Config{}, fmt.Errorf("parse POINTS_WIN_BY_MONTH: %w", err)
	}
	pointsBonusPerSet, err := getEnvAsFloat("POINTS_BONUS_PER_SET", 0.5)
	if err != nil {
		return Config{}, fmt.Errorf("parse POINTS_BONUS_PER_SET: %w", err)
	}
	pointsBonusCapPct, err := getEnvAsFloat("POINTS_BONUS_CAP_RATIO", 0.25)
	if err != nil {
		return Config{}, fmt.Errorf("parse POINTS_BONUS_CAP_RATIO: %w", err)
	}
	standingsEpsilon, err := getEnvAsFloat("STANDINGS_EPSILON", 0.001)
	if err != nil {
		return Config{}, fmt.Errorf("parse STANDINGS_EPSILON: %w", err)
	}

	migrationBatchSize, err := getEnvAsInt("MIGRATION_BATCH_SIZE", 500)
	if err != nil {
		return Config{}, fmt.Errorf("parse MIGRATION_BATCH_SIZE: %w", err)
	}
	migrationWorkers, err := getEnvAsInt("MIGRATION_WORKERS", 8)
	if err != nil {
		return Config{}, fmt.Errorf("parse MIGRATION_WORKERS: %w", err)
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}

	serviceName := getEnv("SERVICE_NAME", "tennis-league")

	return Config{
		AppEnv:             appEnv,
		ServiceName:        serviceName,
		ServiceVersion:     getEnv("SERVICE_VERSION", "dev"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:           parseLogLevel(getEnv("LOG_LEVEL", "info")),

		DocstoreBackend: backend,
		MongoURI:        mongoURI,
		MongoDatabase:   getEnv("MONGO_DATABASE", "tennis_league"),
		MongoTimeout:    mongoTimeout,

		CacheTTL: cacheTTL,

		AuthBaseURL:        strings.TrimSpace(getEnv("AUTH_BASE_URL", "")),
		AuthIntrospectPath: getEnv("AUTH_INTROSPECT_PATH", "/oauth/introspect"),
		AuthTimeout:        authTimeout,

		EmailEnabled:              emailEnabled,
		EmailEndpoint:             emailEndpoint,
		EmailAPIKey:               strings.TrimSpace(getEnv("EMAIL_API_KEY", "")),
		EmailTimeout:              emailTimeout,
		EmailRatePerSecond:        emailRate,
		EmailBurst:                emailBurst,
		EmailCircuitEnabled:       emailCircuitEnabled,
		EmailCircuitFailureCount:  emailCircuitFailures,
		EmailCircuitOpenTimeout:   emailCircuitOpenTimeout,
		EmailCircuitHalfOpenMaxRq: emailCircuitHalfOpen,

		PointsDefaultWin:  pointsDefaultWin,
		PointsWinByMonth:  pointsWinByMonth,
		PointsBonusPerSet: pointsBonusPerSet,
		PointsBonusCapPct: pointsBonusCapPct,
		StandingsEpsilon:  standingsEpsilon,

		MigrationBlobName:   getEnv("MIGRATION_BLOB_NAME", "matches"),
		MigrationBackupName: getEnv("MIGRATION_BACKUP_NAME", ""),
		MigrationBatchSize:  migrationBatchSize,
		MigrationWorkers:    migrationWorkers,

		InternalJobToken: strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),

		PprofEnabled: pprofEnabled,
		PprofAddr:    pprofAddr,

		UptraceEnabled: uptraceEnabled,
		UptraceDSN:     uptraceDSN,

		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAppName:           getEnv("PYROSCOPE_APP_NAME", serviceName),
		PyroscopeAuthToken:         getEnv("PYROSCOPE_AUTH_TOKEN", ""),
		PyroscopeBasicAuthUser:     getEnv("PYROSCOPE_BASIC_AUTH_USER", ""),
		PyroscopeBasicAuthPassword: getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", ""),
		PyroscopeUploadRate:        pyroscopeUploadRate,
	}, nil
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

// parseMonthPoints reads "january:4,february:3" style overrides for the
// per-month win point values.
func parseMonthPoints(raw string) (map[time.Month]int, error) {
	out := make(map[time.Month]int)
	for _, part := range strings.Split(raw, ",") {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}

		segments := strings.SplitN(item, ":", 2)
		if len(segments) != 2 {
			return nil, fmt.Errorf("invalid item %q, expected month:points", item)
		}

		month, err := parseMonth(segments[0])
		if err != nil {
			return nil, err
		}
		points, err := strconv.Atoi(strings.TrimSpace(segments[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid points in item %q: %w", item, err)
		}
		if points <= 0 {
			return nil, fmt.Errorf("points must be > 0 in item %q", item)
		}

		out[month] = points
	}
	return out, nil
}

func parseMonth(raw string) (time.Month, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	for m := time.January; m <= time.December; m++ {
		if strings.ToLower(m.String()) == value {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown month %q", raw)
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsFloat(key string, fallback float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}
