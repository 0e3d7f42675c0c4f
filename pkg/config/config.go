package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"liyu1981.xyz/energy-dashboard-service/pkg/common"
)

const (
	KeyHTTPHostPort   = "HTTP_HOST_PORT"
	KeyStoreType      = "STORE_TYPE"
	KeySqlitePath     = "SQLITE_PATH"
	KeyPostgresDSN    = "POSTGRES_DSN"
	KeyMongoURI       = "MONGODB_URI"
	KeyMongoDatabase  = "MONGODB_DATABASE"
	KeyAuthSqlitePath = "AUTH_SQLITE_PATH"
	KeyQueryTimeout   = "QUERY_TIMEOUT"
	KeyRateLimit      = "RATE_LIMIT"
	KeyRateBurst      = "RATE_BURST"
	KeyRateOverrides  = "RATE_LIMIT_OVERRIDES"
	KeyNILMAPIURL     = "NILM_API_URL"
	KeyPVAPIURL       = "PV_API_URL"
	KeyChatbotAPIURL  = "CHATBOT_API_URL"
	KeyGatewayTimeout = "GATEWAY_TIMEOUT"
	KeyHealthTimeout  = "HEALTH_TIMEOUT"
	KeyNILMDataDir    = "NILM_DATA_DIR"
	KeyPVCSVPath      = "PV_CSV_PATH"
	KeySessionTTL     = "SESSION_TTL"
	KeyAdminEmails    = "ADMIN_EMAILS"
)

type StoreType string

const (
	StoreFile     StoreType = "file"
	StoreMemory   StoreType = "memory"
	StorePostgres StoreType = "postgres"
	StoreMongo    StoreType = "mongo"
)

type Config struct {
	Env          string
	HTTPHostPort string

	StoreType      StoreType
	SqlitePath     string
	PostgresDSN    string
	MongoURI       string
	MongoDatabase  string
	AuthSqlitePath string

	QueryTimeout time.Duration
	RateLimit    float64
	RateBurst    int
	// RateOverrides replace the default bucket for specific client IPs.
	RateOverrides []RateOverride

	NILMAPIURL     string
	PVAPIURL       string
	ChatbotAPIURL  string
	GatewayTimeout time.Duration
	HealthTimeout  time.Duration

	NILMDataDir string
	PVCSVPath   string
	LogDir      string

	SessionTTL  time.Duration
	AdminEmails []string
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func defaults(v *viper.Viper) {
	v.SetDefault(common.EnvKeyGoEnv, "development")
	v.SetDefault(KeyHTTPHostPort, ":3001")
	v.SetDefault(KeyStoreType, string(StoreFile))
	v.SetDefault(KeySqlitePath, "energy.db")
	v.SetDefault(KeyPostgresDSN, "")
	v.SetDefault(KeyMongoURI, "mongodb://localhost:27017")
	v.SetDefault(KeyMongoDatabase, "energy-dashboard")
	v.SetDefault(KeyAuthSqlitePath, "auth.db")
	v.SetDefault(KeyQueryTimeout, "10s")
	v.SetDefault(KeyRateLimit, 0)
	v.SetDefault(KeyRateBurst, 20)
	v.SetDefault(KeyRateOverrides, "")
	v.SetDefault(KeyNILMAPIURL, "http://localhost:5001")
	v.SetDefault(KeyPVAPIURL, "http://localhost:5002")
	v.SetDefault(KeyChatbotAPIURL, "http://localhost:5003")
	v.SetDefault(KeyGatewayTimeout, "60s")
	v.SetDefault(KeyHealthTimeout, "3s")
	v.SetDefault(KeyNILMDataDir, "data/nilm")
	v.SetDefault(KeyPVCSVPath, "data/pv/pv_data.csv")
	v.SetDefault(common.EnvKeyLogDir, "logs")
	v.SetDefault(KeySessionTTL, "720h")
	v.SetDefault(KeyAdminEmails, "")
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	defaults(v)
	v.AutomaticEnv()

	return FromViper(v)
}

func FromViper(v *viper.Viper) (*Config, error) {
	var errs []error

	duration := func(key string) time.Duration {
		d, err := time.ParseDuration(strings.TrimSpace(v.GetString(key)))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
		return d
	}

	c := &Config{
		Env:            strings.TrimSpace(v.GetString(common.EnvKeyGoEnv)),
		HTTPHostPort:   strings.TrimSpace(v.GetString(KeyHTTPHostPort)),
		StoreType:      StoreType(strings.ToLower(strings.TrimSpace(v.GetString(KeyStoreType)))),
		SqlitePath:     v.GetString(KeySqlitePath),
		PostgresDSN:    v.GetString(KeyPostgresDSN),
		MongoURI:       v.GetString(KeyMongoURI),
		MongoDatabase:  v.GetString(KeyMongoDatabase),
		AuthSqlitePath: v.GetString(KeyAuthSqlitePath),
		QueryTimeout:   duration(KeyQueryTimeout),
		NILMAPIURL:     v.GetString(KeyNILMAPIURL),
		PVAPIURL:       v.GetString(KeyPVAPIURL),
		ChatbotAPIURL:  v.GetString(KeyChatbotAPIURL),
		GatewayTimeout: duration(KeyGatewayTimeout),
		HealthTimeout:  duration(KeyHealthTimeout),
		NILMDataDir:    v.GetString(KeyNILMDataDir),
		PVCSVPath:      v.GetString(KeyPVCSVPath),
		LogDir:         v.GetString(common.EnvKeyLogDir),
		SessionTTL:     duration(KeySessionTTL),
	}

	var err error
	if c.RateLimit, err = parseFloat(v.GetString(KeyRateLimit)); err != nil || c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("%s: invalid rate %q", KeyRateLimit, v.GetString(KeyRateLimit)))
	}
	if c.RateBurst, err = parseInt(v.GetString(KeyRateBurst)); err != nil || c.RateBurst < 1 {
		errs = append(errs, fmt.Errorf("%s: invalid burst %q", KeyRateBurst, v.GetString(KeyRateBurst)))
	}

	if c.RateOverrides, err = parseRateOverrides(v.GetString(KeyRateOverrides)); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", KeyRateOverrides, err))
	} else if len(c.RateOverrides) > 0 && c.RateLimit == 0 {
		errs = append(errs, fmt.Errorf("%s requires %s > 0", KeyRateOverrides, KeyRateLimit))
	}

	for _, e := range strings.Split(v.GetString(KeyAdminEmails), ",") {
		if e = strings.TrimSpace(e); e != "" {
			c.AdminEmails = append(c.AdminEmails, e)
		}
	}

	switch c.StoreType {
	case StoreFile, StoreMemory, StoreMongo:
	case StorePostgres:
		if c.PostgresDSN == "" {
			errs = append(errs, fmt.Errorf("%s is required when %s=postgres", KeyPostgresDSN, KeyStoreType))
		}
	default:
		errs = append(errs, fmt.Errorf("%s: unknown store type %q", KeyStoreType, c.StoreType))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}
