package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Href         HrefConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PRODINV_APP_ENV" required:"true"`
	Port         string `envconfig:"PRODINV_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PRODINV_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PRODINV_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"PRODINV_DB_DSN"`

	LegacyHost     string `envconfig:"PRODINV_DB_HOST"`
	LegacyPort     int    `envconfig:"PRODINV_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PRODINV_DB_USER"`
	LegacyPassword string `envconfig:"PRODINV_DB_PASSWORD"`
	LegacyName     string `envconfig:"PRODINV_DB_NAME"`
	LegacySSLMode  string `envconfig:"PRODINV_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PRODINV_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PRODINV_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PRODINV_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PRODINV_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PRODINV_REDIS_URL" required:"true"`
	PoolSize     int           `envconfig:"PRODINV_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PRODINV_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PRODINV_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PRODINV_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PRODINV_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// HrefConfig drives canonical resource identifier construction. The href
// assigned at product creation is <BasePath><ProductPath>/<ident>.
type HrefConfig struct {
	BasePath    string `envconfig:"PRODINV_HREF_BASE_PATH" default:"https://api.example.com"`
	ProductPath string `envconfig:"PRODINV_HREF_PRODUCT_PATH" default:"/productInventory/v1/product"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"PRODINV_CRON_INTERVAL" default:"24h"`
	LockTTL  time.Duration `envconfig:"PRODINV_CRON_LOCK_TTL" default:"25h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PRODINV_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
