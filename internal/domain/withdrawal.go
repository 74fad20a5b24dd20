package domain

import (
	"strings"
	"time"
)

type PayoutMethod string

const (
	PayoutUPI   PayoutMethod = "upi"
	PayoutPaytm PayoutMethod = "paytm"
	PayoutBank  PayoutMethod = "bank"
)

func (m PayoutMethod) Valid() bool {
	switch m {
	case PayoutUPI, PayoutPaytm, PayoutBank:
		return true
	}
	return false
}

// Label название метода для истории: "UPI", "PAYTM", "BANK"
func (m PayoutMethod) Label() string {
	return strings.ToUpper(string(m))
}

// Статус заявки на вывод. pending -> approved | rejected, оба конечные
type WithdrawalStatus string

const (
	WithdrawalStatusPending  WithdrawalStatus = "pending"
	WithdrawalStatusApproved WithdrawalStatus = "approved"
	WithdrawalStatusRejected WithdrawalStatus = "rejected"
)

type Withdrawal struct {
	ID             string           `json:"id"`
	UserID         string           `json:"userId"`
	Amount         Amount           `json:"amount"`
	Method         PayoutMethod     `json:"method"`
	AccountDetails string           `json:"accountDetails"`
	Status         WithdrawalStatus `json:"status"`
	Date           time.Time        `json:"date"`
}

func (w *Withdrawal) IsPending() bool {
	return w.Status == WithdrawalStatusPending
}

// Решение админа по заявке
type Decision string

const (
	DecisionApprove Decision = "approved"
	DecisionReject  Decision = "rejected"
)

func (d Decision) Valid() bool {
	return d == DecisionApprove || d == DecisionReject
}

// Заявка на вывод от пользователя
type WithdrawRequest struct {
	Amount         Amount       `json:"amount"`
	Method         PayoutMethod `json:"method"`
	AccountDetails string       `json:"accountDetails"`
}
