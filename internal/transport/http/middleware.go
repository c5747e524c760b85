package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-relay/internal/auth"
)

var (
	errMissingToken     = errors.New("missing token")
	errBadAuthHeader    = errors.New("invalid authorization header format")
	errTokenNotAccepted = errors.New("invalid token")
)

type identityKey struct{}

// withIdentity stores the authenticated display name on the request context.
func withIdentity(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, identityKey{}, name)
}

// identityFrom returns the display name set by the token gate, or "".
func identityFrom(ctx context.Context) string {
	name, _ := ctx.Value(identityKey{}).(string)
	return name
}

// authenticate checks the request's token and returns the caller's display name.
// Browsers cannot set headers on websocket upgrades, so ?token= is accepted too.
func authenticate(verifier *auth.Verifier, r *http.Request, logger *zerolog.Logger) (string, error) {
	token := r.URL.Query().Get("token")
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			logger.Debug().Msg("invalid authorization header format")
			return "", errBadAuthHeader
		}
		token = parts[1]
	}
	if token == "" {
		logger.Debug().Msg("missing token")
		return "", errMissingToken
	}

	claims, err := verifier.Verify(token)
	if err != nil {
		logger.Debug().Err(err).Msg("invalid token")
		return "", errTokenNotAccepted
	}
	return claims.DisplayName(), nil
}

// AuthMiddleware validates tokens on gin routes when a verifier is configured.
func AuthMiddleware(verifier *auth.Verifier, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if verifier == nil {
			c.Next()
			return
		}

		name, err := authenticate(verifier, c.Request, logger)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
			return
		}

		c.Request = c.Request.WithContext(withIdentity(c.Request.Context(), name))
		c.Next()
	}
}

// RequireToken is AuthMiddleware for plain net/http handlers. The websocket
// endpoint needs it because it must own the raw ResponseWriter to hijack it.
func RequireToken(verifier *auth.Verifier, logger *zerolog.Logger, next http.Handler) http.Handler {
	if verifier == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name, err := authenticate(verifier, r, logger)
		if err != nil {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error()})
			return
		}
		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), name)))
	})
}

// LoggerMiddleware creates a middleware that logs HTTP requests.
func LoggerMiddleware(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Msg("http request")
	}
}
