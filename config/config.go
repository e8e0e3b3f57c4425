package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	// serverlessSQLitePath is the only writable location on the serverless host.
	serverlessSQLitePath = "/tmp/mediscribe.db"
)

// Config holds application configuration loaded from environment variables
// Provide sane defaults for local development.
type Config struct {
	AppName string
	Env     string // development, staging, production
	Port    string
	GinMode string

	// Storage
	DBDriver      string // sqlite or postgres
	SQLitePath    string
	Serverless    bool // VERCEL deployment flag
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	DBMaxConns    int32
	DBMinConns    int32
	DBMaxConnLife time.Duration

	// JWT
	JWTSecret string
	AccessTTL time.Duration

	// Gemini
	GeminiAPIKey        string
	GeminiModel         string
	AIPollInterval      time.Duration
	AIProcessingTimeout time.Duration

	// Uploads
	AudioTmpDir   string
	MaxAudioBytes int64

	// Redis (rate limiting)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Elasticsearch (history search)
	ElasticsearchAddrs   string // comma-separated
	ElasticsearchUser    string
	ElasticsearchPass    string
	ESConsultationsIndex string

	// RabbitMQ (consultation events)
	RabbitMQURL               string
	RabbitMQConsultationQueue string

	// Mailgun (notifier worker)
	MailgunDomain   string
	MailgunAPIKey   string
	MailgunSender   string
	MailSendEnabled bool

	// Google Cloud Storage (malformed output quarantine)
	GCSBucket              string
	GCSCredentialsJSONPath string // optional; if empty, Application Default Credentials are used

	// CORS
	CORSAllowedOrigins string // comma-separated

	// HTTP access log toggle
	HTTPLogEnabled bool
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %v, using default %v", key, err, def)
			return def
		}
		return b
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid int for %s: %v, using default %d", key, err, def)
			return def
		}
		return i
	}
	return def
}

func getint64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			log.Printf("invalid int for %s: %v, using default %d", key, err, def)
			return def
		}
		return i
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			log.Printf("invalid duration for %s: %q, using default %v", key, v, def)
			return def
		}
		return d
	}
	return def
}

// Load loads configuration from environment variables
func Load() *Config {
	// VERCEL is set to "1" on the hosted deployment; any non-empty value counts.
	serverless := os.Getenv("VERCEL") != ""

	return &Config{
		AppName: getenv("APP_NAME", "mediscribe"),
		Env:     getenv("APP_ENV", "development"),
		Port:    getenv("PORT", "8000"),
		GinMode: getenv("GIN_MODE", "release"),

		DBDriver:      strings.ToLower(getenv("DB_DRIVER", DriverSQLite)),
		SQLitePath:    getenv("SQLITE_PATH", "./mediscribe.db"),
		Serverless:    serverless,
		DBHost:        getenv("DB_HOST", "localhost"),
		DBPort:        getenv("DB_PORT", "5432"),
		DBUser:        getenv("DB_USER", "postgres"),
		DBPassword:    getenv("DB_PASSWORD", "postgres"),
		DBName:        getenv("DB_NAME", "mediscribe"),
		DBSSLMode:     getenv("DB_SSLMODE", "disable"),
		DBMaxConns:    int32(getint("DB_MAX_CONNS", 10)),
		DBMinConns:    int32(getint("DB_MIN_CONNS", 2)),
		DBMaxConnLife: getdur("DB_MAX_CONN_LIFETIME", time.Hour),

		JWTSecret: getenv("JWT_SECRET", "devaccesssecret"),
		AccessTTL: getdur("JWT_ACCESS_TTL", 300*time.Minute),

		GeminiAPIKey:        getenv("GEMINI_API_KEY", ""),
		GeminiModel:         getenv("GEMINI_MODEL", "gemini-2.5-flash"),
		AIPollInterval:      getdur("AI_POLL_INTERVAL", time.Second),
		AIProcessingTimeout: getdur("AI_PROCESSING_TIMEOUT", 10*time.Minute),

		AudioTmpDir:   getenv("AUDIO_TMP_DIR", os.TempDir()),
		MaxAudioBytes: getint64("MAX_AUDIO_BYTES", 25<<20),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getint("REDIS_DB", 0),

		ElasticsearchAddrs:   getenv("ELASTICSEARCH_ADDRS", ""),
		ElasticsearchUser:    getenv("ELASTICSEARCH_USERNAME", ""),
		ElasticsearchPass:    getenv("ELASTICSEARCH_PASSWORD", ""),
		ESConsultationsIndex: getenv("ES_CONSULTATIONS_INDEX", "consultations"),

		RabbitMQURL:               getenv("RABBITMQ_URL", ""),
		RabbitMQConsultationQueue: getenv("RABBITMQ_CONSULTATION_QUEUE", "consultations.recorded"),

		MailgunDomain:   getenv("MAILGUN_DOMAIN", ""),
		MailgunAPIKey:   getenv("MAILGUN_API_KEY", ""),
		MailgunSender:   getenv("MAILGUN_SENDER", ""),
		MailSendEnabled: getbool("MAIL_SEND_ENABLED", false),

		GCSBucket:              getenv("GCS_BUCKET", ""),
		GCSCredentialsJSONPath: getenv("GCS_CREDENTIALS_JSON", ""),

		CORSAllowedOrigins: getenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,https://mediscribe-project.vercel.app"),

		HTTPLogEnabled: getbool("HTTP_LOG_ENABLED", false),
	}
}

// DatabasePath returns the SQLite file location for the current deployment mode.
func (c *Config) DatabasePath() string {
	if c.Serverless {
		return serverlessSQLitePath
	}
	return c.SQLitePath
}

// PostgresDSN returns a DSN compatible with pgx
func (c *Config) PostgresDSN() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName + "?sslmode=" + c.DBSSLMode
}

// CORSOrigins returns the allowed origins as slice
func (c *Config) CORSOrigins() []string {
	return splitList(c.CORSAllowedOrigins)
}

// ESAddrs returns Elasticsearch addresses as a slice
func (c *Config) ESAddrs() []string {
	return splitList(c.ElasticsearchAddrs)
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}
