// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	healthfeature "github.com/dalemusser/instafram/internal/app/features/health"
	usersfeature "github.com/dalemusser/instafram/internal/app/features/users"
	userstore "github.com/dalemusser/instafram/internal/app/store/users"
	"github.com/dalemusser/instafram/internal/app/system/cache"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. The users feature owns the whole
// account/social-graph API surface; health serves load balancers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	store := userstore.New(deps.MongoDatabase)
	cch := cache.New(deps.Redis, appCfg.CacheTTLMin, appCfg.CacheTTLMax, logger)

	var med usersfeature.Media
	if deps.Media != nil {
		med = deps.Media
	}

	svc := usersfeature.NewService(store, cch, med, usersfeature.ServiceOptions{
		FollowRetryAttempts: appCfg.FollowRetryAttempts,
	}, logger)

	r := chi.NewRouter()

	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Redis, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	usersHandler := usersfeature.NewHandler(svc, logger)
	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/users", usersfeature.Routes(usersHandler))
	})

	return r, nil
}
