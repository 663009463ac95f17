// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for the instafram
// account service. These are loaded via WAFFLE's config system with
// support for:
//   - Config files: mongo_uri, redis_addr, etc.
//   - Environment variables: INSTAFRAM_MONGO_URI, INSTAFRAM_REDIS_ADDR, etc.
//   - Command-line flags: --mongo_uri, --redis_addr, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "instafram", Desc: "MongoDB database name"},

	// Redis cache
	{Name: "redis_addr", Default: "localhost:6379", Desc: "Redis address (host:port)"},
	{Name: "redis_password", Default: "", Desc: "Redis password (blank for none)"},
	{Name: "redis_db", Default: 0, Desc: "Redis logical database number"},
	{Name: "cache_ttl_min", Default: "10m", Desc: "Lower bound of the randomized cache TTL"},
	{Name: "cache_ttl_max", Default: "20m", Desc: "Upper bound of the randomized cache TTL"},

	// Media storage (S3-compatible)
	{Name: "media_endpoint", Default: "", Desc: "S3-compatible endpoint for profile images"},
	{Name: "media_access_key", Default: "", Desc: "Media storage access key"},
	{Name: "media_secret_key", Default: "", Desc: "Media storage secret key"},
	{Name: "media_bucket", Default: "instafram", Desc: "Media storage bucket"},
	{Name: "media_use_ssl", Default: true, Desc: "Use TLS for the media endpoint"},

	// Graph mutation tuning
	{Name: "follow_retry_attempts", Default: 3, Desc: "Bounded retries for the second write of a follow/unfollow pair"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "INSTAFRAM", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:      appValues.String("mongo_uri"),
		MongoDatabase: appValues.String("mongo_database"),

		RedisAddr:     appValues.String("redis_addr"),
		RedisPassword: appValues.String("redis_password"),
		RedisDB:       appValues.Int("redis_db"),
		CacheTTLMin:   appValues.Duration("cache_ttl_min", 10*time.Minute),
		CacheTTLMax:   appValues.Duration("cache_ttl_max", 20*time.Minute),

		MediaEndpoint:  appValues.String("media_endpoint"),
		MediaAccessKey: appValues.String("media_access_key"),
		MediaSecretKey: appValues.String("media_secret_key"),
		MediaBucket:    appValues.String("media_bucket"),
		MediaUseSSL:    appValues.Bool("media_use_ssl"),

		FollowRetryAttempts: appValues.Int("follow_retry_attempts"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.CacheTTLMin <= 0 || appCfg.CacheTTLMax <= appCfg.CacheTTLMin {
		return fmt.Errorf("cache TTL bounds must satisfy 0 < cache_ttl_min < cache_ttl_max (got %s, %s)",
			appCfg.CacheTTLMin, appCfg.CacheTTLMax)
	}

	if appCfg.FollowRetryAttempts < 0 {
		return fmt.Errorf("follow_retry_attempts must be >= 0 (got %d)", appCfg.FollowRetryAttempts)
	}

	return nil
}
