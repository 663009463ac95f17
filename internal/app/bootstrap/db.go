// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	"github.com/dalemusser/instafram/internal/app/system/indexes"
)

// EnsureSchema reconciles the index set the store adapters rely on.
// Uniqueness of email and alias, and the name+alias text index used by
// user search, are enforced here rather than by runtime validation.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	return indexes.EnsureAll(ctx, deps.MongoDatabase)
}
