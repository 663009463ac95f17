// internal/app/bootstrap/connect.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"github.com/go-redis/redis/v8"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/dalemusser/instafram/internal/app/system/media"
)

// ConnectDB establishes the backend connections the app depends on.
//
// MongoDB is authoritative and a failed connection aborts startup.
// Redis is advisory: a failed ping is logged and the service runs with
// caching disabled. The media client is constructed lazily-validated;
// a missing endpoint just disables profile image updates.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	var deps DBDeps

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(appCfg.MongoURI))
	if err != nil {
		return deps, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return deps, fmt.Errorf("mongo ping: %w", err)
	}
	deps.MongoClient = client
	deps.MongoDatabase = client.Database(appCfg.MongoDatabase)
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	rdb := redis.NewClient(&redis.Options{
		Addr:     appCfg.RedisAddr,
		Password: appCfg.RedisPassword,
		DB:       appCfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, running without cache",
			zap.String("addr", appCfg.RedisAddr), zap.Error(err))
		_ = rdb.Close()
	} else {
		deps.Redis = rdb
		logger.Info("connected to Redis", zap.String("addr", appCfg.RedisAddr))
	}

	if appCfg.MediaEndpoint != "" {
		mc, err := minio.New(appCfg.MediaEndpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(appCfg.MediaAccessKey, appCfg.MediaSecretKey, ""),
			Secure: appCfg.MediaUseSSL,
		})
		if err != nil {
			return deps, fmt.Errorf("media client: %w", err)
		}
		deps.Media, err = media.NewClient(ctx, mc, appCfg.MediaBucket)
		if err != nil {
			return deps, fmt.Errorf("media bucket: %w", err)
		}
		logger.Info("connected to media storage",
			zap.String("endpoint", appCfg.MediaEndpoint),
			zap.String("bucket", appCfg.MediaBucket))
	} else {
		logger.Warn("no media endpoint configured, profile image updates disabled")
	}

	return deps, nil
}
