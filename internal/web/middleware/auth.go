package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/blockedby/dosimetria-portal/internal/logger"
	"github.com/blockedby/dosimetria-portal/internal/models"
	"github.com/blockedby/dosimetria-portal/internal/repository"
)

// AccessTokenCookie carries the session token for browser requests.
const AccessTokenCookie = "access_token"

// MsgAccessDenied is the body of every 403.
const MsgAccessDenied = "Acceso denegado"

type ctxKey int

const (
	subjectKey ctxKey = iota
	profileKey
)

// ProfileLookup loads a profile by identity subject.
type ProfileLookup interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
}

// Authenticate verifies an HS256 token from the Authorization header or the
// access_token cookie and stores its subject in the request context.
// An empty secret rejects every request.
func Authenticate(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := tokenFromRequest(r)
			if raw == "" || len(secret) == 0 {
				writeError(w, http.StatusUnauthorized, "token requerido")
				return
			}

			claims := &jwt.RegisteredClaims{}
			token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
				return secret, nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid || claims.Subject == "" {
				logger.Get().Debug().Err(err).Msg("rejected access token")
				writeError(w, http.StatusUnauthorized, "token inválido o expirado")
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole loads the caller's profile and lets through only the given
// roles. With no roles any known profile passes.
func RequireRole(profiles ProfileLookup, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sub, ok := Subject(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "token requerido")
				return
			}

			profile, err := profiles.GetByID(r.Context(), sub)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					writeError(w, http.StatusForbidden, MsgAccessDenied)
					return
				}
				logger.Get().Error().Err(err).Str("subject", sub).Msg("load profile")
				writeError(w, http.StatusInternalServerError, "error interno")
				return
			}

			if len(roles) > 0 && !slices.Contains(roles, profile.EffectiveRole()) {
				writeError(w, http.StatusForbidden, MsgAccessDenied)
				return
			}

			ctx := context.WithValue(r.Context(), profileKey, profile)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Subject returns the authenticated identity, if any.
func Subject(ctx context.Context) (string, bool) {
	sub, ok := ctx.Value(subjectKey).(string)
	return sub, ok && sub != ""
}

// ProfileFrom returns the profile loaded by RequireRole.
func ProfileFrom(ctx context.Context) (*models.Profile, bool) {
	p, ok := ctx.Value(profileKey).(*models.Profile)
	return p, ok && p != nil
}

func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(tok)
		}
		return ""
	}
	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		return c.Value
	}
	return ""
}
