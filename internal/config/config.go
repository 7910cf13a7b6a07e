package config

import (
	"errors"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
)

// Handoff drivers.
const (
	HandoffSQLite = "sqlite"
	HandoffMemory = "memory"
)

// Config holds all service settings, populated from an optional .env file
// and environment variables.
type Config struct {
	SourceURL      string
	FetchTimeout   time.Duration
	FetchUserAgent string

	// Nominatim geocoding configuration.
	GeocodingEnabled   bool
	NominatimURL       string
	NominatimUserAgent string
	NominatimTimeout   time.Duration
	NominatimCacheSize int
	NominatimCacheTTL  time.Duration
	NominatimRateLimit float64 // lookups per second, 0 disables limiting

	// Blob storage. AccountKey is only needed by the load stage.
	BlobEndpoint  string
	BlobAccount   string
	AccountKey    string
	BlobContainer string
	BlobPrefix    string
	BlobUseSSL    bool

	HandoffDriver string
	HandoffPath   string

	RunID           string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

var defaults = map[string]any{
	"SOURCE_URL":           "https://en.wikipedia.org/wiki/List_of_association_football_stadiums_by_capacity",
	"FETCH_TIMEOUT":        "10s",
	"FETCH_USER_AGENT":     "stadium-data-etl/1.0",
	"GEOCODING_ENABLED":    "true",
	"NOMINATIM_URL":        "https://nominatim.openstreetmap.org",
	"NOMINATIM_USER_AGENT": "stadiums-de",
	"NOMINATIM_TIMEOUT":    "5s",
	"NOMINATIM_CACHE_SIZE": "1000",
	"NOMINATIM_CACHE_TTL":  "1h",
	"NOMINATIM_RATE_LIMIT": "0",
	"BLOB_ENDPOINT":        "localhost:9000",
	"BLOB_ACCOUNT":         "stadiumsdataengineering",
	"BLOB_CONTAINER":       "stadiumsdataengineering",
	"BLOB_PREFIX":          "data/",
	"BLOB_USE_SSL":         "true",
	"HANDOFF_DRIVER":       HandoffSQLite,
	"HANDOFF_PATH":         "handoff.db",
	"HTTP_ADDR":            ":8080",
	"LOG_LEVEL":            "info",
	"LOG_FORMAT":           "json",
	"SHUTDOWN_TIMEOUT":     "10s",
}

// Load reads configuration from the file named by ENV_FILE (default .env),
// overlaid by environment variables, applying defaults where unset.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("ENV_FILE", ".env")
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	// Explicit binds so keys without a default (ACCOUNT_KEY, RUN_ID) are
	// still read from the environment.
	for _, k := range []string{"ENV_FILE", "ACCOUNT_KEY", "RUN_ID"} {
		_ = v.BindEnv(k)
	}
	v.AutomaticEnv()

	v.SetConfigFile(v.GetString("ENV_FILE"))
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
		return nil, eris.Wrap(err, "config: read env file")
	}

	p := parser{v: v}
	cfg := &Config{
		SourceURL:      v.GetString("SOURCE_URL"),
		FetchTimeout:   p.duration("FETCH_TIMEOUT"),
		FetchUserAgent: v.GetString("FETCH_USER_AGENT"),

		GeocodingEnabled:   p.bool("GEOCODING_ENABLED"),
		NominatimURL:       strings.TrimRight(v.GetString("NOMINATIM_URL"), "/"),
		NominatimUserAgent: v.GetString("NOMINATIM_USER_AGENT"),
		NominatimTimeout:   p.duration("NOMINATIM_TIMEOUT"),
		NominatimCacheSize: p.positiveInt("NOMINATIM_CACHE_SIZE"),
		NominatimCacheTTL:  p.duration("NOMINATIM_CACHE_TTL"),
		NominatimRateLimit: p.nonNegativeFloat("NOMINATIM_RATE_LIMIT"),

		BlobEndpoint:  v.GetString("BLOB_ENDPOINT"),
		BlobAccount:   v.GetString("BLOB_ACCOUNT"),
		AccountKey:    v.GetString("ACCOUNT_KEY"),
		BlobContainer: v.GetString("BLOB_CONTAINER"),
		BlobPrefix:    v.GetString("BLOB_PREFIX"),
		BlobUseSSL:    p.bool("BLOB_USE_SSL"),

		HandoffDriver: strings.ToLower(v.GetString("HANDOFF_DRIVER")),
		HandoffPath:   v.GetString("HANDOFF_PATH"),

		RunID:           v.GetString("RUN_ID"),
		HTTPAddr:        v.GetString("HTTP_ADDR"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogFormat:       v.GetString("LOG_FORMAT"),
		ShutdownTimeout: p.duration("SHUTDOWN_TIMEOUT"),
	}
	if p.err != nil {
		return nil, p.err
	}

	if cfg.SourceURL == "" {
		return nil, eris.New("SOURCE_URL is required")
	}
	if cfg.GeocodingEnabled && cfg.NominatimURL == "" {
		return nil, eris.New("GEOCODING_ENABLED is true but NOMINATIM_URL is not set")
	}
	if cfg.BlobContainer == "" {
		return nil, eris.New("BLOB_CONTAINER is required")
	}
	switch cfg.HandoffDriver {
	case HandoffSQLite:
		if cfg.HandoffPath == "" {
			return nil, eris.New("HANDOFF_PATH is required for the sqlite handoff driver")
		}
	case HandoffMemory:
	default:
		return nil, eris.Errorf("invalid HANDOFF_DRIVER %q (want %s or %s)", cfg.HandoffDriver, HandoffSQLite, HandoffMemory)
	}

	return cfg, nil
}

func isNotFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf) || errors.Is(err, fs.ErrNotExist)
}

// parser records the first invalid variable; later calls become no-ops.
type parser struct {
	v   *viper.Viper
	err error
}

func (p *parser) duration(key string) time.Duration {
	if p.err != nil {
		return 0
	}
	d, err := time.ParseDuration(p.v.GetString(key))
	if err != nil || d <= 0 {
		p.err = eris.Errorf("invalid %s: %q", key, p.v.GetString(key))
		return 0
	}
	return d
}

func (p *parser) bool(key string) bool {
	if p.err != nil {
		return false
	}
	b, err := strconv.ParseBool(p.v.GetString(key))
	if err != nil {
		p.err = eris.Errorf("invalid %s: %q", key, p.v.GetString(key))
	}
	return b
}

func (p *parser) positiveInt(key string) int {
	if p.err != nil {
		return 0
	}
	n, err := strconv.Atoi(p.v.GetString(key))
	if err != nil || n <= 0 {
		p.err = eris.Errorf("invalid %s: %q", key, p.v.GetString(key))
		return 0
	}
	return n
}

func (p *parser) nonNegativeFloat(key string) float64 {
	if p.err != nil {
		return 0
	}
	f, err := strconv.ParseFloat(p.v.GetString(key), 64)
	if err != nil || f < 0 {
		p.err = eris.Errorf("invalid %s: %q", key, p.v.GetString(key))
		return 0
	}
	return f
}
