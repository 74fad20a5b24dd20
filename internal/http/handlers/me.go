package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roxaimboy784-wq/AdCashy/internal/domain"
)

// Текущий профиль вместе с дневным прогрессом
func (h *Handler) Me(c *gin.Context) {
	user, ok := getUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	progress, err := h.Rewards.DailyProgress(user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":     withoutSecrets(user),
		"progress": progress,
	})
}

func (h *Handler) UpdateMe(c *gin.Context) {
	user, ok := getUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var patch domain.UserPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c)
		return
	}
	updated, err := h.Profile.UpdateUser(c.Request.Context(), user.ID, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, withoutSecrets(updated))
}

// История операций, последние первыми
func (h *Handler) History(c *gin.Context) {
	user, ok := getUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": h.Profile.History(user.ID)})
}

func (h *Handler) Referrals(c *gin.Context) {
	user, ok := getUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	info, err := h.Profile.Referrals(user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// Настройки платформы, которые видит приложение пользователя
func (h *Handler) PublicSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.Admin.Settings())
}
