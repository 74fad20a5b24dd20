package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/roxaimboy784-wq/AdCashy/internal/logger"
	"github.com/roxaimboy784-wq/AdCashy/internal/ws"
)

// Дневной прогресс просмотров
func (h *Handler) AdProgress(c *gin.Context) {
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
	c.JSON(http.StatusOK, progress)
}

// Начало просмотра: сервер запоминает время, награда после ReadyAt
func (h *Handler) StartAd(c *gin.Context) {
	user, ok := getUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	session, err := h.Player.Start(user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"sessionId": session.ID,
		"startedAt": session.StartedAt,
		"readyAt":   session.ReadyAt,
		"duration":  int(h.Player.Duration().Seconds()),
	})
}

func (h *Handler) CompleteAd(c *gin.Context) {
	user, ok := getUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		SessionID string `json:"sessionId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.SessionID == "" {
		badRequest(c)
		return
	}
	res, err := h.Player.Complete(c.Request.Context(), user.ID, req.SessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// WatchAd websocket с отсчётом на сервере. Токен передаётся в query
func (h *Handler) WatchAd(c *gin.Context) {
	user, ok := getUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	allowedOrigin := h.AllowedOrigin
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("ws upgrade error", "user_id", user.ID, "error", err)
		return
	}

	// контекст запроса несёт actor для аудита и метрик
	ws.NewClient(user.ID, conn, h.Player).Run(c.Request.Context())
}
