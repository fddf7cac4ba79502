package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Backend names accepted by SNAPSTASH_BACKEND.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request deadline, covers backend writes

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Persistence
	Backend    string // memory | redis | sqlite | file
	SQLitePath string // database file for the sqlite backend
	DataFile   string // JSON document for the file backend

	// Record store
	MaxPreviewLength int           // stored titles are truncated to this many characters
	MaxHistory       int           // 0 = unbounded undo history
	HistoryMaxAge    time.Duration // 0 = history entries never expire
	PruneInterval    time.Duration // how often the history pruner runs when HistoryMaxAge > 0

	// Categories
	CategoryFile   string        // optional YAML file, empty = built-in categories
	ReloadInterval time.Duration // interval to reload the category file

	// Redis (only read when Backend == "redis")
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisKeyPrefix        string        // key namespace, ex: "snapstash:"
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	// Access restrictions
	AllowedHosts   []string // optional, restrict access to specific Host headers
	AllowedCIDRS   []string // optional, restrict admin endpoints to specific IPs/CIDRs
	AllowedOrigins []string // CORS origins, ex: "chrome-extension://abcdef"
	TrustProxy     bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)

	// Rate limiting on mutating endpoints
	RateLimitBurst     int // bucket size per client IP
	RateLimitPerMinute int // refill rate per client IP
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present; real env vars win.
func Load() *Config {
	_ = godotenv.Load() // Ignore error if .env not found (e.g. prod)

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("SNAPSTASH_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("SNAPSTASH_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("SNAPSTASH_REQUEST_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("SNAPSTASH_LOG_LEVEL", "info"),
		PrettyLog: mustBool("SNAPSTASH_PRETTY_LOG", true),

		// Persistence
		Backend:    strings.ToLower(getenv("SNAPSTASH_BACKEND", BackendMemory)),
		SQLitePath: getenv("SNAPSTASH_SQLITE_PATH", "snapstash.db"),
		DataFile:   getenv("SNAPSTASH_DATA_FILE", "snapstash.json"),

		// Record store
		MaxPreviewLength: getenvInt("SNAPSTASH_MAX_PREVIEW_LENGTH", 50),
		MaxHistory:       getenvInt("SNAPSTASH_MAX_HISTORY", 0),
		HistoryMaxAge:    mustDuration("SNAPSTASH_HISTORY_MAX_AGE", 0),
		PruneInterval:    mustDuration("SNAPSTASH_PRUNE_INTERVAL", time.Hour),

		// Categories
		CategoryFile:   getenv("SNAPSTASH_CATEGORY_FILE", ""),
		ReloadInterval: mustDuration("SNAPSTASH_RELOAD_INTERVAL", 24*time.Hour),

		// Access restrictions
		AllowedHosts:   splitAndTrim(getenv("SNAPSTASH_ALLOWED_HOSTS", "")),
		AllowedCIDRS:   parseAllowedIPs(getenv("SNAPSTASH_ALLOWED_CIDRS", "")),
		AllowedOrigins: splitAndTrim(getenv("SNAPSTASH_ALLOWED_ORIGINS", "*")),
		TrustProxy:     mustBool("SNAPSTASH_TRUST_PROXY", false),

		RateLimitBurst:     getenvInt("SNAPSTASH_RATE_LIMIT_BURST", 30),
		RateLimitPerMinute: getenvInt("SNAPSTASH_RATE_LIMIT_PER_MINUTE", 120),
	}

	switch cfg.Backend {
	case BackendMemory, BackendSQLite, BackendFile:
	case BackendRedis:
		loadRedis(cfg)
	default:
		panic(fmt.Sprintf("❌ FATAL: Unknown SNAPSTASH_BACKEND %q (want memory, redis, sqlite or file)", cfg.Backend))
	}

	if cfg.MaxHistory < 0 {
		panic(fmt.Sprintf("❌ FATAL: SNAPSTASH_MAX_HISTORY must be >= 0, got %d", cfg.MaxHistory))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfg.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

func loadRedis(cfg *Config) {
	cfg.RedisAddr = requireEnv("SNAPSTASH_REDIS_ADDR")
	cfg.RedisUser = getenv("SNAPSTASH_REDIS_USERNAME", "")
	cfg.RedisPasswordRequired = mustBool("SNAPSTASH_REDIS_PASSWORD_REQUIRED", false)
	cfg.RedisPassword = getenv("SNAPSTASH_REDIS_PASSWORD", "")
	cfg.RedisDB = requireEnvInt("SNAPSTASH_REDIS_DB")
	cfg.RedisKeyPrefix = getenv("SNAPSTASH_REDIS_PREFIX", "snapstash:")
	cfg.RedisDT = mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second)
	cfg.RedisRT = mustDuration("REDIS_READ_TIMEOUT", 3*time.Second)
	cfg.RedisWT = mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second)
	cfg.RedisMaxWait = mustDuration("REDIS_MAX_WAIT", 10*time.Second)
	cfg.RedisPingTimeout = mustDuration("REDIS_PING_TIMEOUT", 5*time.Second)
	cfg.RedisPoolSize = getenvInt("REDIS_POOL_SIZE", 10)
	cfg.RedisConnectTimeout = mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second)
	cfg.RedisRetryInterval = mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second)
	cfg.RedisWarnThreshold = getenvInt("REDIS_WARN_THRESHOLD", 3)

	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: SNAPSTASH_REDIS_PASSWORD is required when SNAPSTASH_REDIS_PASSWORD_REQUIRED=true")
	}
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func requireEnvInt(key string) int {
	v := requireEnv(key)
	i, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid integer value for %s: %s", key, v))
	}
	return i
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
