package domain

import "time"

// Журнал важных действий
type AuditLog struct {
	ID        int64          `json:"id"`
	UserID    string         `json:"user_id"`
	Action    string         `json:"action"`
	Category  string         `json:"category"`
	Details   map[string]any `json:"details"`
	IP        string         `json:"ip,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Категории действий
const (
	AuditCategoryAuth       = "auth"
	AuditCategoryReward     = "reward"
	AuditCategoryWithdrawal = "withdrawal"
	AuditCategoryAdmin      = "admin"
	AuditCategoryProfile    = "profile"
)

const (
	// Авторизация
	AuditActionSignup = "signup"
	AuditActionLogin  = "login"
	AuditActionLogout = "logout"

	// Вывод средств
	AuditActionWithdrawRequest = "withdraw_request"
	AuditActionWithdrawApprove = "withdraw_approve"
	AuditActionWithdrawReject  = "withdraw_reject"

	// Профиль
	AuditActionProfileUpdate = "profile_update"

	// Действия админов
	AuditActionAdminBonus       = "admin_bonus"
	AuditActionAdminBlockUser   = "admin_block_user"
	AuditActionAdminUnblockUser = "admin_unblock_user"
	AuditActionAdminSettings    = "admin_settings"
)
