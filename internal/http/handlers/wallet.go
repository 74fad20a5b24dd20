package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roxaimboy784-wq/AdCashy/internal/domain"
)

// Заявка на вывод
func (h *Handler) RequestWithdrawal(c *gin.Context) {
	user, ok := getUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req domain.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	w, err := h.Wallet.RequestWithdrawal(c.Request.Context(), user.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

func (h *Handler) MyWithdrawals(c *gin.Context) {
	user, ok := getUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": h.Wallet.Withdrawals(user.ID)})
}
