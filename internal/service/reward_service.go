package service

import (
	"context"
	"fmt"

	"github.com/roxaimboy784-wq/AdCashy/internal/domain"
	"github.com/roxaimboy784-wq/AdCashy/internal/metrics"
	"github.com/roxaimboy784-wq/AdCashy/internal/store"
)

// DailyProgress сколько рекламы пользователь посмотрел сегодня
type DailyProgress struct {
	Date        string        `json:"date"`
	Watched     int           `json:"watched"`
	Limit       int           `json:"limit"`
	Remaining   int           `json:"remaining"`
	CanWatch    bool          `json:"canWatch"`
	RewardPerAd domain.Amount `json:"rewardPerAd"`
}

func progressFor(u *domain.User, settings domain.Settings, today string) DailyProgress {
	watched := u.AdsToday(today)
	remaining := settings.DailyAdLimit - watched
	if remaining < 0 {
		remaining = 0
	}
	return DailyProgress{
		Date:        today,
		Watched:     watched,
		Limit:       settings.DailyAdLimit,
		Remaining:   remaining,
		CanWatch:    remaining > 0 && !u.IsBlocked(),
		RewardPerAd: settings.RewardPerAd,
	}
}

// RewardResult итог начисления за просмотр
type RewardResult struct {
	Amount   domain.Amount        `json:"amount"`
	Balance  domain.Amount        `json:"balance"`
	Record   domain.HistoryRecord `json:"record"`
	Progress DailyProgress        `json:"progress"`
}

// RewardService начисления за просмотр рекламы
type RewardService struct {
	store *store.Store
}

func NewRewardService(st *store.Store) *RewardService {
	return &RewardService{store: st}
}

// GrantAdReward начисляет награду за одну просмотренную рекламу.
// Сброс дневного счётчика и проверка лимита делаются в той же мутации
func (s *RewardService) GrantAdReward(ctx context.Context, userID string) (*RewardResult, error) {
	now := s.store.Now()
	today := domain.DayKey(now)

	var res RewardResult
	err := s.store.Update(ctx, func(doc *domain.Document) error {
		u := doc.UserByID(userID)
		if u == nil {
			return ErrUserNotFound
		}
		if u.IsBlocked() {
			return ErrAccountBlocked
		}
		if u.LastWatchedDate != today {
			u.DailyAdsCount = 0
		}
		settings := doc.Settings
		if u.DailyAdsCount >= settings.DailyAdLimit {
			return ErrDailyLimitReached
		}

		reward := settings.RewardPerAd
		u.DailyAdsCount++
		u.AdsWatched++
		u.Balance = u.Balance.Add(reward)
		u.TotalEarnings = u.TotalEarnings.Add(reward)
		u.LastWatchedDate = today

		rec := domain.HistoryRecord{
			ID:     NewID("hist"),
			UserID: u.ID,
			Type:   domain.HistoryAd,
			Amount: reward,
			Date:   now,
			Detail: fmt.Sprintf("Watched Video Ad (%s)", settings.Network()),
		}
		doc.History = append(doc.History, rec)

		res = RewardResult{
			Amount:   reward,
			Balance:  u.Balance,
			Record:   rec,
			Progress: progressFor(u, settings, today),
		}
		return nil
	})
	if err != nil {
		metrics.AdRewardsTotal.WithLabelValues(rewardOutcome(err)).Inc()
		return nil, err
	}

	metrics.AdRewardsTotal.WithLabelValues("granted").Inc()
	return &res, nil
}

func rewardOutcome(err error) string {
	switch err {
	case ErrDailyLimitReached:
		return "limit"
	case ErrAccountBlocked:
		return "blocked"
	case ErrUserNotFound:
		return "unknown_user"
	}
	return "error"
}

// DailyProgress только читает документ, счётчик не сбрасывает
func (s *RewardService) DailyProgress(userID string) (*DailyProgress, error) {
	today := s.store.Today()
	var (
		p     DailyProgress
		found bool
	)
	s.store.View(func(doc *domain.Document) {
		u := doc.UserByID(userID)
		if u == nil {
			return
		}
		found = true
		p = progressFor(u, doc.Settings, today)
	})
	if !found {
		return nil, ErrUserNotFound
	}
	return &p, nil
}
