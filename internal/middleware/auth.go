package middleware

import (
	"net/http"
	"strings"

	"encomendas_backend/internal/auth"
	"encomendas_backend/internal/logger"
	"encomendas_backend/internal/models"
	"encomendas_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// Ключи gin.Context
const (
	CtxUserID        = "userID"
	CtxRole          = "role"
	CtxCondominiumID = "condominiumID"
	CtxUserName      = "userName"
)

// AuthMiddleware - middleware проверки JWT
func AuthMiddleware(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearerToken(c)
		if !ok {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authorization header missing or invalid"))
			return
		}

		claims, err := tokens.ParseToken(tokenStr)
		if err != nil {
			code := apperrors.CodeInvalidToken
			if err == auth.ErrTokenExpired {
				code = apperrors.CodeTokenExpired
			}
			apperrors.HandleError(c, apperrors.New(code, "auth", err.Error(), http.StatusUnauthorized))
			return
		}

		// Сохраняем claims в контекст
		c.Set(CtxUserID, claims.UserID())
		c.Set(CtxRole, models.UserRole(claims.Role))
		c.Set(CtxCondominiumID, claims.CondominiumID)
		c.Set(CtxUserName, claims.FullName)

		ctx := logger.WithUserID(c.Request.Context(), claims.UserID())
		ctx = logger.WithCondominiumID(ctx, claims.CondominiumID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// bearerToken достает токен из заголовка, для websocket - из query ?token=
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		return token, token != ""
	}
	if token := c.Query("token"); token != "" {
		return token, true
	}
	return "", false
}

// RequireRoles - middleware для проверки нескольких возможных ролей
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]bool)
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		if !roleSet[GetRole(c)] {
			apperrors.HandleError(c, apperrors.ErrInsufficientPermissions)
			return
		}
		c.Next()
	}
}

// RequirePermission - проверка разрешения роли (см. auth.Permissions)
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !auth.HasPermission(GetRole(c), permission) {
			apperrors.HandleError(c, apperrors.ErrInsufficientPermissions)
			return
		}
		c.Next()
	}
}

// GetUserID извлекает ID пользователя из контекста
func GetUserID(c *gin.Context) string {
	return c.GetString(CtxUserID)
}

func GetRole(c *gin.Context) models.UserRole {
	roleVal, exists := c.Get(CtxRole)
	if !exists {
		return ""
	}
	switch role := roleVal.(type) {
	case models.UserRole:
		return role
	case string:
		return models.UserRole(role)
	default:
		return ""
	}
}

func GetCondominiumID(c *gin.Context) string {
	return c.GetString(CtxCondominiumID)
}

func GetUserName(c *gin.Context) string {
	return c.GetString(CtxUserName)
}
