package http

import (
	"net/http"

	"github.com/MKhiriev/go-flock-keeper/internal/logger"
	"github.com/MKhiriev/go-flock-keeper/internal/utils"
)

// auth is an HTTP middleware that enforces bearer JWT authentication.
//
// The token must be signed with the configured key and carry the configured
// issuer, an expiry and a non-empty subject. On success the subject (the
// client installation) is stored in the request context via
// [utils.WithPrincipal]. Every rejection is a 401 Unauthorized.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)
		traceID := w.Header().Get(traceIDHeader)

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			log.Err(ErrEmptyAuthorizationHeader).Str("func", "Handler.auth").Send()
			utils.WriteError(w, ErrEmptyAuthorizationHeader.Error(), traceID, http.StatusUnauthorized)
			return
		}

		tokenString, err := utils.ParseBearerToken(authHeader)
		if err != nil {
			log.Err(err).Str("func", "Handler.auth").Send()
			utils.WriteError(w, err.Error(), traceID, http.StatusUnauthorized)
			return
		}

		token, err := utils.ValidateAndParseJWTToken(tokenString, h.app.TokenSignKey, h.app.TokenIssuer)
		if err != nil {
			log.Err(err).Str("func", "Handler.auth").Msg("error occurred during parsing token")
			utils.WriteError(w, http.StatusText(http.StatusUnauthorized), traceID, http.StatusUnauthorized)
			return
		}

		ctx := utils.WithPrincipal(r.Context(), token.Principal)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
