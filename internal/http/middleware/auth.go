package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/roxaimboy784-wq/AdCashy/internal/domain"
	"github.com/roxaimboy784-wq/AdCashy/internal/logger"
	"github.com/roxaimboy784-wq/AdCashy/internal/service"
)

const userKey = "user"

// Session пропускает запрос, только если токен валиден и его sub совпадает
// с текущим пользователем документа. После logout все токены недействительны
func Session(sessions *service.SessionService, auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		userID, err := sessions.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		user := auth.CurrentUser()
		if user == nil || user.ID != userID {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": service.ErrInvalidSession.Error()})
			return
		}

		c.Set(userKey, user)
		ctx := service.WithActor(c.Request.Context(), user.ID)
		ctx = service.WithRequestInfo(ctx, c.ClientIP(), c.Request.UserAgent())
		ctx = logger.NewContext(ctx, logger.With("user_id", user.ID))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// токен из заголовка Authorization или из query (для websocket)
func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if strings.HasPrefix(h, "Bearer ") {
			return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		}
		return ""
	}
	return c.Query("token")
}

// CurrentUser пользователь, положенный Session
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*domain.User)
	return u, ok
}

// AdminOnly после Session, только для роли admin
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok || !u.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// Maintenance закрывает изменяющие запросы обычных пользователей,
// пока в настройках включён режим обслуживания
func Maintenance(settings func() domain.Settings) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		if u, ok := CurrentUser(c); ok && u.IsAdmin() {
			c.Next()
			return
		}
		if settings().AppMaintenance {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "App is under maintenance. Please try again later."})
			return
		}
		c.Next()
	}
}
