package domain

import "time"

// Тип записи истории. ad - начисление (реклама, бонус, возврат), withdrawal - списание
type HistoryType string

const (
	HistoryAd         HistoryType = "ad"
	HistoryWithdrawal HistoryType = "withdrawal"
)

// Детали записей истории, отображаются пользователю как есть
const (
	DetailAdminBonus        = "Admin Bonus Credited"
	DetailRefund            = "Refund: Withdrawal Rejected"
	DetailWithdrawalApprove = "Withdrawal Approved & Processed"
)

type HistoryRecord struct {
	ID     string      `json:"id"`
	UserID string      `json:"userId"`
	Type   HistoryType `json:"type"`
	Amount Amount      `json:"amount"` // знак определяется типом
	Date   time.Time   `json:"date"`
	Detail string      `json:"detail"`
}

// IsCredit true для начислений
func (h HistoryRecord) IsCredit() bool {
	return h.Type == HistoryAd
}
