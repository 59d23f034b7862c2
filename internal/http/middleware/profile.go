package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nurpe/contracts-ledger/internal/auth"
	"github.com/nurpe/contracts-ledger/internal/model"
	"github.com/nurpe/contracts-ledger/internal/repository"
)

const (
	ProfileHeader = "profile_id"
	profileKey    = "profile"
)

type ProfileLoader interface {
	GetProfile(ctx context.Context, id uint) (*model.Profile, error)
}

// Profile resolves the caller from the profile_id header, or from a bearer
// token when the parser has a secret, and stores the loaded profile on the
// context. Unknown callers are rejected with 401.
func Profile(loader ProfileLoader, tokens *auth.Parser, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := callerID(c, tokens)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		profile, err := loader.GetProfile(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
				return
			}
			log.Error().Err(err).Uint("profile_id", id).Msg("load caller profile failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Set(profileKey, profile)
		c.Next()
	}
}

func MustProfile(c *gin.Context) (*model.Profile, bool) {
	value, ok := c.Get(profileKey)
	if !ok {
		return nil, false
	}
	profile, ok := value.(*model.Profile)
	return profile, ok && profile != nil
}

func callerID(c *gin.Context, tokens *auth.Parser) (uint, bool) {
	if header := c.GetHeader("Authorization"); tokens != nil && tokens.Enabled() && strings.HasPrefix(header, "Bearer ") {
		id, err := tokens.Parse(strings.TrimPrefix(header, "Bearer "))
		return id, err == nil
	}

	raw := strings.TrimSpace(c.GetHeader(ProfileHeader))
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
