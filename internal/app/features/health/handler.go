package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/dalemusser/instafram/internal/app/system/timeouts"
)

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client *mongo.Client
	Redis  *redis.Client
	Log    *zap.Logger
}

// NewHandler constructs a health Handler. redisClient may be nil when
// the service is running without a cache.
func NewHandler(client *mongo.Client, redisClient *redis.Client, logger *zap.Logger) *Handler {
	return &Handler{
		Client: client,
		Redis:  redisClient,
		Log:    logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// MongoDB is authoritative, so a failed ping returns 503. The cache is
// advisory: a failed or absent Redis is reported in the body but keeps
// the status 200 — the service degrades to uncached reads.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
		Cache:    "connected",
	}

	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	if h.Redis == nil {
		resp.Cache = "disabled"
	} else if err := h.Redis.Ping(ctx).Err(); err != nil {
		h.Log.Warn("health-check: redis ping failed", zap.Error(err))
		resp.Cache = "disconnected"
	}

	_ = json.NewEncoder(w).Encode(resp)
}
