// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS,
// logging level, request limits). AppConfig is everything specific to
// the instafram account service: backend connection strings, cache
// tuning, and media storage credentials.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI      string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase string // Database name within MongoDB

	// Redis cache configuration. The cache is advisory: when Redis is
	// unreachable the service runs with caching disabled.
	RedisAddr     string // host:port of the Redis server
	RedisPassword string // Redis AUTH password (blank for none)
	RedisDB       int    // Redis logical database number

	// Cache TTL jitter bounds. Every populated key gets a TTL drawn
	// uniformly from [CacheTTLMin, CacheTTLMax) so keys written at the
	// same moment do not all expire at the same moment.
	CacheTTLMin time.Duration
	CacheTTLMax time.Duration

	// Media (S3-compatible) storage for profile images.
	MediaEndpoint  string // e.g., "play.min.io" or "s3.amazonaws.com"
	MediaAccessKey string
	MediaSecretKey string
	MediaBucket    string // bucket holding uploaded profile images
	MediaUseSSL    bool   // connect to the media endpoint over TLS

	// FollowRetryAttempts bounds how many times the second write of a
	// symmetric follow/unfollow pair is retried before the operation is
	// reported as an integrity violation.
	FollowRetryAttempts int
}
