package service

import (
	"context"
	"fmt"

	"github.com/roxaimboy784-wq/AdCashy/internal/domain"
	"github.com/roxaimboy784-wq/AdCashy/internal/metrics"
	"github.com/roxaimboy784-wq/AdCashy/internal/store"
)

// предоставляет административную статистику и операции
type AdminService struct {
	store *store.Store
	audit *AuditService
}

// создает новый административный сервис
func NewAdminService(st *store.Store, audit *AuditService) *AdminService {
	return &AdminService{store: st, audit: audit}
}

// представляет статистику платформы
type Stats struct {
	TotalUsers      int           `json:"totalUsers"`
	ActiveToday     int           `json:"activeToday"` // смотрели рекламу сегодня
	BlockedUsers    int           `json:"blockedUsers"`
	TotalAdsWatched int           `json:"totalAdsWatched"`
	TotalEarnings   domain.Amount `json:"totalEarnings"` // начислено пользователям за всё время
	PendingToday    int           `json:"pendingToday"`  // заявки pending от сегодняшнего дня
	PendingTotal    int           `json:"pendingTotal"`
	PendingAmount   domain.Amount `json:"pendingAmount"`
}

// возвращает статистику платформы
func (s *AdminService) Stats(ctx context.Context) (*Stats, error) {
	today := s.store.Today()
	stats := &Stats{}

	s.store.View(func(doc *domain.Document) {
		for i := range doc.Users {
			u := &doc.Users[i]
			if u.IsAdmin() {
				continue
			}
			stats.TotalUsers++
			if u.LastWatchedDate == today {
				stats.ActiveToday++
			}
			if u.IsBlocked() {
				stats.BlockedUsers++
			}
			stats.TotalAdsWatched += u.AdsWatched
			stats.TotalEarnings = stats.TotalEarnings.Add(u.TotalEarnings)
		}
		for i := range doc.Withdrawals {
			w := &doc.Withdrawals[i]
			if !w.IsPending() {
				continue
			}
			stats.PendingTotal++
			stats.PendingAmount = stats.PendingAmount.Add(w.Amount)
			if domain.DayKey(w.Date.In(s.store.Now().Location())) == today {
				stats.PendingToday++
			}
		}
	})
	return stats, nil
}

// возвращает обычных пользователей в порядке регистрации
func (s *AdminService) ListUsers() []domain.User {
	var out []domain.User
	s.store.View(func(doc *domain.Document) {
		for i := range doc.Users {
			if doc.Users[i].IsAdmin() {
				continue
			}
			u := doc.Users[i]
			u.Password = ""
			u.Referrals = append([]string{}, u.Referrals...)
			out = append(out, u)
		}
	})
	return out
}

// возвращает пользователя по id
func (s *AdminService) GetUser(id string) (*domain.User, error) {
	var out *domain.User
	s.store.View(func(doc *domain.Document) {
		if u := doc.UserByID(id); u != nil {
			cp := *u
			cp.Password = ""
			cp.Referrals = append([]string{}, u.Referrals...)
			out = &cp
		}
	})
	if out == nil {
		return nil, ErrUserNotFound
	}
	return out, nil
}

// представляет заявку на вывод вместе с данными пользователя
type WithdrawalView struct {
	domain.Withdrawal
	UserName  string `json:"userName"`
	UserPhone string `json:"userPhone"`
}

// возвращает заявки на вывод, последние первыми. onlyPending оставляет только ожидающие
func (s *AdminService) ListWithdrawals(onlyPending bool) []WithdrawalView {
	var out []WithdrawalView
	s.store.View(func(doc *domain.Document) {
		for i := len(doc.Withdrawals) - 1; i >= 0; i-- {
			w := doc.Withdrawals[i]
			if onlyPending && !w.IsPending() {
				continue
			}
			v := WithdrawalView{Withdrawal: w}
			if u := doc.UserByID(w.UserID); u != nil {
				v.UserName = u.Name
				v.UserPhone = u.Phone
			}
			out = append(out, v)
		}
	})
	return out
}

// ResolveWithdrawal одобряет или отклоняет заявку.
// Обработанная заявка не меняется, повторный вызов возвращает ErrWithdrawalProcessed
func (s *AdminService) ResolveWithdrawal(ctx context.Context, id string, decision domain.Decision) (*domain.Withdrawal, error) {
	if !decision.Valid() {
		return nil, ErrInvalidDecision
	}

	now := s.store.Now()
	var out domain.Withdrawal
	err := s.store.Update(ctx, func(doc *domain.Document) error {
		w := doc.WithdrawalByID(id)
		if w == nil {
			return ErrWithdrawalNotFound
		}
		if !w.IsPending() {
			return fmt.Errorf("%w (status: %s)", ErrWithdrawalProcessed, w.Status)
		}

		rec := domain.HistoryRecord{
			ID:     NewID("hist"),
			UserID: w.UserID,
			Amount: w.Amount,
			Date:   now,
		}
		switch decision {
		case domain.DecisionApprove:
			w.Status = domain.WithdrawalStatusApproved
			rec.Type = domain.HistoryWithdrawal
			rec.Detail = domain.DetailWithdrawalApprove
		case domain.DecisionReject:
			w.Status = domain.WithdrawalStatusRejected
			// возвращаем сумму, если пользователь ещё существует
			if u := doc.UserByID(w.UserID); u != nil {
				u.Balance = u.Balance.Add(w.Amount)
			}
			rec.Type = domain.HistoryAd
			rec.Detail = domain.DetailRefund
		}
		doc.History = append(doc.History, rec)
		out = *w
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.WithdrawalsResolved.WithLabelValues(string(decision)).Inc()
	s.audit.LogWithdrawResolve(ctx, &out)
	return &out, nil
}

// одобряет вывод средств, баланс не меняется
func (s *AdminService) ApproveWithdrawal(ctx context.Context, id string) (*domain.Withdrawal, error) {
	return s.ResolveWithdrawal(ctx, id, domain.DecisionApprove)
}

// отклоняет вывод средств и возвращает сумму на баланс
func (s *AdminService) RejectWithdrawal(ctx context.Context, id string) (*domain.Withdrawal, error) {
	return s.ResolveWithdrawal(ctx, id, domain.DecisionReject)
}

// начисляет бонус на баланс и в общий заработок
func (s *AdminService) CreditBonus(ctx context.Context, userID string, amount domain.Amount) (*domain.User, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	now := s.store.Now()
	var out domain.User
	err := s.store.Update(ctx, func(doc *domain.Document) error {
		u := doc.UserByID(userID)
		if u == nil {
			return ErrUserNotFound
		}
		u.Balance = u.Balance.Add(amount)
		u.TotalEarnings = u.TotalEarnings.Add(amount)
		doc.History = append(doc.History, domain.HistoryRecord{
			ID:     NewID("hist"),
			UserID: u.ID,
			Type:   domain.HistoryAd,
			Amount: amount,
			Date:   now,
			Detail: domain.DetailAdminBonus,
		})
		out = *u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.LogAdminAction(ctx, domain.AuditActionAdminBonus, userID, map[string]any{"amount": amount.String()})
	return &out, nil
}

// блокирует или разблокирует пользователя. админов блокировать нельзя
func (s *AdminService) SetUserStatus(ctx context.Context, userID string, status domain.UserStatus) (*domain.User, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	var out domain.User
	err := s.store.Update(ctx, func(doc *domain.Document) error {
		u := doc.UserByID(userID)
		if u == nil {
			return ErrUserNotFound
		}
		if u.IsAdmin() && status == domain.UserStatusBlocked {
			return ErrCannotBlockAdmin
		}
		u.Status = status
		out = *u
		return nil
	})
	if err != nil {
		return nil, err
	}

	action := domain.AuditActionAdminUnblockUser
	if status == domain.UserStatusBlocked {
		action = domain.AuditActionAdminBlockUser
	}
	s.audit.LogAdminAction(ctx, action, userID, nil)
	return &out, nil
}

// возвращает текущие настройки
func (s *AdminService) Settings() domain.Settings {
	var out domain.Settings
	s.store.View(func(doc *domain.Document) { out = doc.Settings })
	return out
}

// накладывает заданные поля на настройки
func (s *AdminService) UpdateSettings(ctx context.Context, patch domain.SettingsPatch) (*domain.Settings, error) {
	if err := patch.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	if patch.Empty() {
		settings := s.Settings()
		return &settings, nil
	}

	var out domain.Settings
	err := s.store.Update(ctx, func(doc *domain.Document) error {
		patch.Apply(&doc.Settings)
		out = doc.Settings
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, ActorFromContext(ctx), domain.AuditActionAdminSettings, domain.AuditCategoryAdmin, map[string]any{"settings": out})
	return &out, nil
}
