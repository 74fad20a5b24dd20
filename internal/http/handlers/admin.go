package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/roxaimboy784-wq/AdCashy/internal/domain"
	"github.com/roxaimboy784-wq/AdCashy/internal/service"
)

// Статистика платформы
func (h *Handler) AdminStats(c *gin.Context) {
	stats, err := h.Admin.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) AdminUsers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"users": h.Admin.ListUsers()})
}

func (h *Handler) AdminUser(c *gin.Context) {
	u, err := h.Admin.GetUser(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, withoutSecrets(u))
}

func (h *Handler) AdminBlockUser(c *gin.Context) {
	h.setUserStatus(c, domain.UserStatusBlocked)
}

func (h *Handler) AdminUnblockUser(c *gin.Context) {
	h.setUserStatus(c, domain.UserStatusActive)
}

func (h *Handler) setUserStatus(c *gin.Context, status domain.UserStatus) {
	u, err := h.Admin.SetUserStatus(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, withoutSecrets(u))
}

// Начисление бонуса пользователю
func (h *Handler) AdminBonus(c *gin.Context) {
	var req struct {
		Amount domain.Amount `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	u, err := h.Admin.CreditBonus(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, withoutSecrets(u))
}

// Заявки на вывод. ?status=pending оставляет только ожидающие
func (h *Handler) AdminWithdrawals(c *gin.Context) {
	onlyPending := c.Query("status") == string(domain.WithdrawalStatusPending)
	list := h.Admin.ListWithdrawals(onlyPending)
	if list == nil {
		list = []service.WithdrawalView{}
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": list})
}

func (h *Handler) AdminApproveWithdrawal(c *gin.Context) {
	w, err := h.Admin.ApproveWithdrawal(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *Handler) AdminRejectWithdrawal(c *gin.Context) {
	w, err := h.Admin.RejectWithdrawal(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *Handler) AdminSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.Admin.Settings())
}

func (h *Handler) AdminUpdateSettings(c *gin.Context) {
	var patch domain.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c)
		return
	}
	settings, err := h.Admin.UpdateSettings(c.Request.Context(), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// Журнал аудита из postgres. ?user=<id>&limit=N
func (h *Handler) AdminAudit(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	logs, err := h.Audit.Recent(c.Request.Context(), c.Query("user"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
