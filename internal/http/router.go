package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roxaimboy784-wq/AdCashy/internal/http/handlers"
	"github.com/roxaimboy784-wq/AdCashy/internal/http/middleware"
)

// RouterConfig то, что роутеру нужно помимо обработчиков
type RouterConfig struct {
	Version       string
	AllowedOrigin string
	// лимитер для входа, регистрации и OTP; nil отключает ограничение
	AuthLimiter middleware.RateLimiter
}

// NewRouter собирает gin engine со всеми маршрутами
func NewRouter(h *handlers.Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.CORS(cfg.AllowedOrigin))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": cfg.Version,
			"time":    time.Now().UTC(),
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	RegisterRoutes(r, h, cfg)
	return r
}

func RegisterRoutes(r *gin.Engine, h *handlers.Handler, cfg RouterConfig) {
	maintenance := middleware.Maintenance(h.Admin.Settings)
	session := middleware.Session(h.Sessions, h.Auth)

	auth := r.Group("/api/auth")
	if cfg.AuthLimiter != nil {
		auth.Use(middleware.RateLimit(cfg.AuthLimiter))
	}
	{
		auth.POST("/signup", maintenance, h.Signup)
		auth.POST("/login", h.Login)
		auth.POST("/otp/verify", h.VerifyOTP)
		auth.POST("/admin/login", h.AdminLogin)
	}
	r.POST("/api/auth/logout", session, h.Logout)

	// websocket: токен передаётся в query
	r.GET("/ws/ads", session, maintenanceWS(h), h.WatchAd)

	api := r.Group("/api", session, maintenance)
	{
		api.GET("/me", h.Me)
		api.PATCH("/me", h.UpdateMe)
		api.GET("/ads/progress", h.AdProgress)
		api.POST("/ads/start", h.StartAd)
		api.POST("/ads/complete", h.CompleteAd)
		api.GET("/wallet/withdrawals", h.MyWithdrawals)
		api.POST("/wallet/withdrawals", h.RequestWithdrawal)
		api.GET("/history", h.History)
		api.GET("/referrals", h.Referrals)
		api.GET("/settings", h.PublicSettings)
	}

	admin := r.Group("/api/admin", session, middleware.AdminOnly())
	{
		admin.GET("/stats", h.AdminStats)
		admin.GET("/users", h.AdminUsers)
		admin.GET("/users/:id", h.AdminUser)
		admin.POST("/users/:id/block", h.AdminBlockUser)
		admin.POST("/users/:id/unblock", h.AdminUnblockUser)
		admin.POST("/users/:id/bonus", h.AdminBonus)
		admin.GET("/withdrawals", h.AdminWithdrawals)
		admin.POST("/withdrawals/:id/approve", h.AdminApproveWithdrawal)
		admin.POST("/withdrawals/:id/reject", h.AdminRejectWithdrawal)
		admin.GET("/settings", h.AdminSettings)
		admin.PATCH("/settings", h.AdminUpdateSettings)
		admin.GET("/audit", h.AdminAudit)
	}
}

// просмотр рекламы начисляет деньги, поэтому в режиме обслуживания закрыт и websocket
func maintenanceWS(h *handlers.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if u, ok := middleware.CurrentUser(c); ok && !u.IsAdmin() && h.Admin.Settings().AppMaintenance {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "App is under maintenance. Please try again later."})
			return
		}
		c.Next()
	}
}
