package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/posledger/backend/internal/infrastructure/logger"
	"github.com/posledger/backend/internal/interfaces/http/dto"
)

// Tenant context and header keys
const (
	TenantIDKey          = "tenant_id"
	UserIDKey            = "user_id"
	TenantHeaderKey      = "X-Tenant-ID"
	UserHeaderKey        = "X-User-ID"
	IdempotencyKeyHeader = "Idempotency-Key"
)

// TenantConfig holds configuration for the tenant middleware
type TenantConfig struct {
	// HeaderEnabled accepts X-Tenant-ID / X-User-ID when no token was
	// presented. Disable it when JWT is required.
	HeaderEnabled bool
	// SkipPaths are paths that don't need a tenant (ops endpoints)
	SkipPaths []string
}

// Tenant resolves the tenant and acting user of the request, JWT claims
// first and headers second, and stores them as uuid.UUID under TenantIDKey
// and UserIDKey. A request without a tenant is rejected with 401.
func Tenant(cfg TenantConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if slices.Contains(cfg.SkipPaths, c.Request.URL.Path) {
			c.Next()
			return
		}

		tenantRaw, userRaw := GetJWTTenantID(c), GetJWTUserID(c)
		if tenantRaw == "" && cfg.HeaderEnabled {
			tenantRaw = c.GetHeader(TenantHeaderKey)
			userRaw = c.GetHeader(UserHeaderKey)
		}
		if tenantRaw == "" {
			abortWithError(c, http.StatusUnauthorized, dto.KindUnauthorized, dto.ErrCodeTenantRequired, "Tenant context is required")
			return
		}

		tenantID, err := uuid.Parse(tenantRaw)
		if err != nil || tenantID == uuid.Nil {
			abortWithError(c, http.StatusUnauthorized, dto.KindUnauthorized, dto.ErrCodeTenantRequired, "Invalid tenant ID format")
			return
		}
		userID := uuid.Nil
		if userRaw != "" {
			if userID, err = uuid.Parse(userRaw); err != nil {
				abortWithError(c, http.StatusBadRequest, dto.KindValidation, dto.ErrCodeInvalidID, "Invalid user ID format")
				return
			}
		}

		c.Set(TenantIDKey, tenantID)
		c.Set(UserIDKey, userID)

		actor := ""
		if userID != uuid.Nil {
			actor = userID.String()
		}
		ctx := logger.WithActor(c.Request.Context(), tenantID.String(), actor)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetTenantID returns the tenant resolved by Tenant
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(TenantIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// GetUserID returns the acting user resolved by Tenant, or uuid.Nil
func GetUserID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(UserIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}
