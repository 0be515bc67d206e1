package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/vouchlyhq/vouchly-backend/api/responses"
	pkgerrors "github.com/vouchlyhq/vouchly-backend/pkg/errors"
	"github.com/vouchlyhq/vouchly-backend/pkg/logger"
)

const sweepSecretHeader = "X-Sweep-Secret"

// SweepSecret guards scheduler-facing endpoints with a shared secret. When no
// secret is configured the guard is a pass-through, for deployments that gate
// the route at the network layer instead.
func SweepSecret(logg *logger.Logger, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				next.ServeHTTP(w, r)
				return
			}

			provided := r.Header.Get(sweepSecretHeader)
			if provided == "" {
				provided = r.URL.Query().Get("secret")
			}
			if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid sweep secret"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
