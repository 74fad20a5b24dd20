package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/roxaimboy784-wq/AdCashy/internal/domain"
	"github.com/roxaimboy784-wq/AdCashy/internal/logger"
	"github.com/roxaimboy784-wq/AdCashy/internal/metrics"
	"github.com/roxaimboy784-wq/AdCashy/internal/store"
)

// WithdrawalNotification данные новой заявки для уведомления админов
type WithdrawalNotification struct {
	Withdrawal domain.Withdrawal
	UserName   string
	UserPhone  string
	Balance    domain.Amount
}

// WalletService заявки на вывод от пользователей
type WalletService struct {
	store *store.Store
	audit *AuditService

	mu             sync.RWMutex
	notifyCallback func(WithdrawalNotification)
}

func NewWalletService(st *store.Store, audit *AuditService) *WalletService {
	return &WalletService{store: st, audit: audit}
}

// SetWithdrawalNotifyCallback устанавливает callback для уведомления админов о новых заявках
func (s *WalletService) SetWithdrawalNotifyCallback(callback func(WithdrawalNotification)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifyCallback = callback
}

// RequestWithdrawal списывает сумму с баланса и создаёт заявку pending.
// Списание, заявка и запись истории сохраняются одной мутацией
func (s *WalletService) RequestWithdrawal(ctx context.Context, userID string, req domain.WithdrawRequest) (*domain.Withdrawal, error) {
	req.AccountDetails = strings.TrimSpace(req.AccountDetails)
	req.Method = domain.PayoutMethod(strings.ToLower(string(req.Method)))

	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if !req.Method.Valid() {
		return nil, ErrInvalidMethod
	}
	if req.AccountDetails == "" {
		return nil, ErrMissingAccountDetails
	}

	now := s.store.Now()
	var (
		w      domain.Withdrawal
		notice WithdrawalNotification
	)
	err := s.store.Update(ctx, func(doc *domain.Document) error {
		u := doc.UserByID(userID)
		if u == nil {
			return ErrUserNotFound
		}
		if u.IsBlocked() {
			return ErrAccountBlocked
		}
		// нехватка баланса важнее минимальной суммы
		if req.Amount.GreaterThan(u.Balance) {
			return ErrInsufficientBalance
		}
		if req.Amount.LessThan(doc.Settings.MinWithdrawal) {
			return fmt.Errorf("%w: minimum is ₹%s", ErrBelowMinWithdrawal, doc.Settings.MinWithdrawal.String())
		}

		u.Balance = u.Balance.Sub(req.Amount)

		w = domain.Withdrawal{
			ID:             NewID("wd"),
			UserID:         u.ID,
			Amount:         req.Amount,
			Method:         req.Method,
			AccountDetails: req.AccountDetails,
			Status:         domain.WithdrawalStatusPending,
			Date:           now,
		}
		doc.Withdrawals = append(doc.Withdrawals, w)
		doc.History = append(doc.History, domain.HistoryRecord{
			ID:     NewID("hist"),
			UserID: u.ID,
			Type:   domain.HistoryWithdrawal,
			Amount: req.Amount,
			Date:   now,
			Detail: fmt.Sprintf("Withdrawal via %s (Pending)", req.Method.Label()),
		})

		notice = WithdrawalNotification{
			Withdrawal: w,
			UserName:   u.Name,
			UserPhone:  u.Phone,
			Balance:    u.Balance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.WithdrawalsRequested.WithLabelValues(string(w.Method)).Inc()
	s.audit.LogWithdrawRequest(ctx, &w)
	logger.Info("новая заявка на вывод", "withdrawal_id", w.ID, "user_id", userID, "amount", w.Amount.String())

	s.mu.RLock()
	cb := s.notifyCallback
	s.mu.RUnlock()
	// уведомление админов не должно задерживать ответ пользователю
	if cb != nil {
		go cb(notice)
	}
	return &w, nil
}

// Withdrawals заявки пользователя, последние первыми
func (s *WalletService) Withdrawals(userID string) []domain.Withdrawal {
	out := []domain.Withdrawal{}
	s.store.View(func(doc *domain.Document) {
		for i := len(doc.Withdrawals) - 1; i >= 0; i-- {
			if doc.Withdrawals[i].UserID == userID {
				out = append(out, doc.Withdrawals[i])
			}
		}
	})
	return out
}
