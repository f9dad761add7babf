package middlewares

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/kedar94c/whatsapp-crm-backend/pkg/models"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/repositories"
)

type MiddlewareConfig struct {
	RedisClient *redis.Client
	DB          *gorm.DB
}

const businessCacheTTL = 10 * time.Minute

// BusinessCacheKey is the redis key holding the cached business record for
// an API key. Settings updates must purge it or bookings would run against
// stale capacity settings for up to the TTL.
func BusinessCacheKey(apiKey string) string {
	return fmt.Sprintf("business:apikey:%s", apiKey)
}

// NewAuthMiddleware resolves the calling business from the X-API-Key header
// and stores it in the gin context. Lookups are cached in redis so the hot
// path skips postgres.
func NewAuthMiddleware(cfg *MiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		apiKey := c.GetHeader("X-API-Key")

		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing API key"})
			return
		}

		cacheKey := BusinessCacheKey(apiKey)
		if val, err := cfg.RedisClient.Get(ctx, cacheKey).Result(); err == nil && val != "" {
			var business models.Business
			if err := json.Unmarshal([]byte(val), &business); err == nil && business.ID != uuid.Nil {
				c.Set("business", &business)
				c.Next()
				return
			}
		}

		repo := repositories.NewBusinessRepository(cfg.DB)
		business, err := repo.GetByAPIKey(apiKey)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
			return
		}

		if data, err := json.Marshal(business); err == nil {
			cfg.RedisClient.Set(ctx, cacheKey, data, businessCacheTTL)
		}

		c.Set("business", business)
		c.Next()
	}
}

// RequireOwner gates mutating catalog and settings routes. The role header
// is trusted as written; the chat channel never reaches these routes.
func RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-Role") != "owner" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "operation requires the owner role"})
			return
		}
		c.Next()
	}
}

// BusinessFromContext pulls the business stored by NewAuthMiddleware.
func BusinessFromContext(c *gin.Context) (*models.Business, bool) {
	val, ok := c.Get("business")
	if !ok {
		return nil, false
	}
	business, ok := val.(*models.Business)
	return business, ok
}
