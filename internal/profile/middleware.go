package profile

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/techpostia/techpost/internal/auth"
	"github.com/techpostia/techpost/internal/models"
)

type dbContextKey string

const (
	profileContextKey dbContextKey = "db_profile"
)

func GetProfileFromContext(ctx context.Context) (*models.Profile, bool) {
	p, ok := ctx.Value(profileContextKey).(*models.Profile)
	return p, ok
}

func WithProfile(ctx context.Context, p *models.Profile) context.Context {
	return context.WithValue(ctx, profileContextKey, p)
}

// Middleware loads (or lazily creates) the caller's profile. It must run after
// auth.RequireUser.
func Middleware(svc Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.GetUserFromRequest(r)
			if !ok {
				http.Error(w, "Unauthorized: User not found in context", http.StatusUnauthorized)
				return
			}

			p, err := svc.GetOrCreate(r.Context(), user)
			if err != nil {
				log.Error().Err(err).Str("userID", user.ID).Msg("Failed to get or create profile")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithProfile(r.Context(), p)))
		})
	}
}
