package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/slabworks/slabdesk-backend/api/responses"
	"github.com/slabworks/slabdesk-backend/pkg/config"
	"github.com/slabworks/slabdesk-backend/pkg/db"
	pkgerrors "github.com/slabworks/slabdesk-backend/pkg/errors"
	"github.com/slabworks/slabdesk-backend/pkg/logger"
	"github.com/slabworks/slabdesk-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SlabDesk-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when both postgres and redis answer a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, cache redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SlabDesk-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if dbP != nil {
			if err := dbP.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "postgres ping"))
				return
			}
		}
		if cache != nil {
			if err := cache.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis ping"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
