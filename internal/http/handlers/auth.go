package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/roxaimboy784-wq/AdCashy/internal/domain"
	"github.com/roxaimboy784-wq/AdCashy/internal/service"
)

type signupRequest struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	ReferralCode string `json:"referralCode"`
}

type loginRequest struct {
	Identifier string `json:"identifier"` // телефон или email
	Password   string `json:"password"`
}

type verifyRequest struct {
	ChallengeID string `json:"challengeId"`
	Code        string `json:"code"`
}

// ответ с сессией после успешного входа
func (h *Handler) issueSession(c *gin.Context, status int, u *domain.User) {
	token, expires, err := h.Sessions.Issue(u)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, gin.H{
		"token":     token,
		"expiresAt": expires,
		"user":      withoutSecrets(u),
	})
}

// Регистрация. С OTP возвращает challenge, без него сразу создаёт пользователя
func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	sreq := service.SignupRequest{
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        req.Email,
		ReferralCode: req.ReferralCode,
	}
	ctx := service.WithRequestInfo(c.Request.Context(), c.ClientIP(), c.Request.UserAgent())

	if h.OTP != nil {
		issue, err := h.OTP.IssueSignup(ctx, sreq)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, issue)
		return
	}

	u, err := h.Auth.Signup(ctx, sreq)
	if err != nil {
		respondError(c, err)
		return
	}
	h.issueSession(c, http.StatusCreated, u)
}

// Вход по телефону или email
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Identifier) == "" {
		badRequest(c)
		return
	}
	ctx := service.WithRequestInfo(c.Request.Context(), c.ClientIP(), c.Request.UserAgent())

	if h.OTP != nil {
		issue, err := h.OTP.Issue(ctx, req.Identifier, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, issue)
		return
	}

	u, err := h.Auth.Login(ctx, req.Identifier, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	h.issueSession(c, http.StatusOK, u)
}

// Второй шаг: проверка кода
func (h *Handler) VerifyOTP(c *gin.Context) {
	if h.OTP == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "otp is disabled"})
		return
	}
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ChallengeID == "" {
		badRequest(c)
		return
	}
	ctx := service.WithRequestInfo(c.Request.Context(), c.ClientIP(), c.Request.UserAgent())

	u, err := h.OTP.Verify(ctx, req.ChallengeID, strings.TrimSpace(req.Code))
	if err != nil {
		respondError(c, err)
		return
	}
	h.issueSession(c, http.StatusOK, u)
}

// Вход в админку без OTP
func (h *Handler) AdminLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	ctx := service.WithRequestInfo(c.Request.Context(), c.ClientIP(), c.Request.UserAgent())

	u, err := h.Auth.AdminLogin(ctx, req.Identifier, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	h.issueSession(c, http.StatusOK, u)
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.Auth.Logout(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
