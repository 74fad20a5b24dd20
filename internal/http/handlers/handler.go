package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roxaimboy784-wq/AdCashy/internal/adplayer"
	"github.com/roxaimboy784-wq/AdCashy/internal/domain"
	"github.com/roxaimboy784-wq/AdCashy/internal/http/middleware"
	"github.com/roxaimboy784-wq/AdCashy/internal/logger"
	"github.com/roxaimboy784-wq/AdCashy/internal/service"
)

type Handler struct {
	Auth     *service.AuthService
	OTP      *service.OTPService // nil, если вход без одноразового кода
	Sessions *service.SessionService
	Rewards  *service.RewardService
	Wallet   *service.WalletService
	Profile  *service.ProfileService
	Admin    *service.AdminService
	Audit    *service.AuditService
	Player   *adplayer.Player

	// ALLOWED_ORIGIN для websocket
	AllowedOrigin string
}

func getUser(c *gin.Context) (*domain.User, bool) {
	return middleware.CurrentUser(c)
}

// statusFor переводит ошибку сервиса в http статус
func statusFor(err error) int {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, service.ErrInvalidSignup),
		errors.Is(err, service.ErrInvalidProfile),
		errors.Is(err, service.ErrInvalidSettings),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidMethod),
		errors.Is(err, service.ErrMissingAccountDetails),
		errors.Is(err, service.ErrBelowMinWithdrawal),
		errors.Is(err, service.ErrInsufficientBalance),
		errors.Is(err, service.ErrInvalidDecision),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidOTP),
		errors.Is(err, adplayer.ErrAdNotFinished):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrNotAdmin),
		errors.Is(err, service.ErrInvalidSession),
		errors.Is(err, service.ErrChallengeNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrAccountBlocked),
		errors.Is(err, service.ErrCannotBlockAdmin):
		return http.StatusForbidden
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrWithdrawalNotFound),
		errors.Is(err, adplayer.ErrAdSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrDuplicateRegistration),
		errors.Is(err, service.ErrWithdrawalProcessed):
		return http.StatusConflict
	case errors.Is(err, service.ErrDailyLimitReached):
		return http.StatusTooManyRequests
	case errors.Is(err, service.ErrAuditUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError единый ответ об ошибке. Внутренние ошибки наружу не отдаём
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.WithContext(c.Request.Context()).Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
}

// пароль админа наружу не отдаём
func withoutSecrets(u *domain.User) *domain.User {
	cp := *u
	cp.Password = ""
	return &cp
}
