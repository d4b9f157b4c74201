package middleware

import (
	"net/http"
	"time"

	"github.com/feriavirtual/feriavirtual-backend/api/responses"
	"github.com/feriavirtual/feriavirtual-backend/pkg/config"
	pkgerrors "github.com/feriavirtual/feriavirtual-backend/pkg/errors"
	"github.com/feriavirtual/feriavirtual-backend/pkg/logger"
	"github.com/feriavirtual/feriavirtual-backend/pkg/session"
)

const sessionHeader = "X-FV-Session"

// Session attaches an anonymous browsing session to the request. A valid
// token is verified and its session id carried into the context; a missing
// or invalid token mints a fresh session, returned to the client in the
// response header. There is no user account behind the token, it only keys
// the cart store.
func Session(cfg config.SessionConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if raw := r.Header.Get(sessionHeader); raw != "" {
				claims, err := session.Parse(cfg, raw)
				if err == nil {
					w.Header().Set(sessionHeader, raw)
					ctx = withSessionID(ctx, claims.SessionID)
					if logg != nil {
						ctx = logg.WithSessionID(ctx, claims.SessionID.String())
					}
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
				if logg != nil {
					logg.Warn(ctx, "rejecting session token: "+err.Error())
				}
			}

			token, sessionID, err := session.Mint(cfg, time.Now())
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting session"))
				return
			}

			w.Header().Set(sessionHeader, token)
			ctx = withSessionID(ctx, sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
