package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/feriavirtual/feriavirtual-backend/api/responses"
	"github.com/feriavirtual/feriavirtual-backend/pkg/config"
	pkgerrors "github.com/feriavirtual/feriavirtual-backend/pkg/errors"
	"github.com/feriavirtual/feriavirtual-backend/pkg/logger"
)

const envHeader = "X-FeriaVirtual-Env"

// Pinger is anything readiness can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when the database and redis both answer.
func HealthReady(cfg *config.Config, logg *logger.Logger, db Pinger, cache Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := map[string]string{}
		failed := false

		if db == nil {
			checks["db"] = "not configured"
			failed = true
		} else if err := db.Ping(ctx); err != nil {
			checks["db"] = err.Error()
			failed = true
		} else {
			checks["db"] = "ok"
		}

		if cache == nil {
			checks["redis"] = "not configured"
			failed = true
		} else if err := cache.Ping(ctx); err != nil {
			checks["redis"] = err.Error()
			failed = true
		} else {
			checks["redis"] = "ok"
		}

		if failed {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
