package adplayer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/roxaimboy784-wq/AdCashy/internal/logger"
	"github.com/roxaimboy784-wq/AdCashy/internal/service"
)

const DefaultDuration = 15 * time.Second

var (
	ErrAdNotFinished     = errors.New("ad has not finished playing yet")
	ErrAdSessionNotFound = errors.New("ad session not found or already completed")
)

// Rewarder то, что Player нужно от сервиса наград
type Rewarder interface {
	GrantAdReward(ctx context.Context, userID string) (*service.RewardResult, error)
	DailyProgress(userID string) (*service.DailyProgress, error)
}

// Session начатый просмотр рекламы
type Session struct {
	ID        string    `json:"sessionId"`
	UserID    string    `json:"-"`
	StartedAt time.Time `json:"startedAt"`
	ReadyAt   time.Time `json:"readyAt"`
}

// Player имитирует воспроизведение рекламы: отсчёт на сервере, затем награда
type Player struct {
	rewards  Rewarder
	duration time.Duration
	now      func() time.Time
	// ожидание одного тика, подменяется в тестах
	tick func(ctx context.Context) error

	mu       sync.Mutex
	sessions map[string]Session
}

func NewPlayer(rewards Rewarder, duration time.Duration) *Player {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Player{
		rewards:  rewards,
		duration: duration,
		now:      time.Now,
		tick:     sleepSecond,
		sessions: make(map[string]Session),
	}
}

func sleepSecond(ctx context.Context) error {
	t := time.NewTimer(time.Second)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Player) Duration() time.Duration { return p.duration }

func (p *Player) checkLimit(userID string) error {
	progress, err := p.rewards.DailyProgress(userID)
	if err != nil {
		return err
	}
	if !progress.CanWatch {
		if progress.Remaining == 0 {
			return service.ErrDailyLimitReached
		}
		return service.ErrAccountBlocked
	}
	return nil
}

// Watch отсчитывает длительность рекламы, вызывая onTick каждую секунду, и начисляет награду.
// Если ctx отменён до конца отсчёта, ничего не начисляется
func (p *Player) Watch(ctx context.Context, userID string, onTick func(remaining int) error) (*service.RewardResult, error) {
	if err := p.checkLimit(userID); err != nil {
		return nil, err
	}

	remaining := int(p.duration / time.Second)
	for remaining > 0 {
		if onTick != nil {
			if err := onTick(remaining); err != nil {
				return nil, err
			}
		}
		if err := p.tick(ctx); err != nil {
			logger.Debug("просмотр рекламы прерван", "user_id", userID, "remaining", remaining)
			return nil, err
		}
		remaining--
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.rewards.GrantAdReward(ctx, userID)
}

// Start начинает просмотр для REST клиента
func (p *Player) Start(userID string) (*Session, error) {
	if err := p.checkLimit(userID); err != nil {
		return nil, err
	}
	now := p.now()
	s := Session{
		ID:        service.NewID("ad"),
		UserID:    userID,
		StartedAt: now,
		ReadyAt:   now.Add(p.duration),
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	// у пользователя одна активная сессия
	for id, old := range p.sessions {
		if old.UserID == userID {
			delete(p.sessions, id)
		}
	}
	p.sessions[s.ID] = s
	return &s, nil
}

// Complete начисляет награду, если реклама досмотрена. Сессия закрывается один раз
func (p *Player) Complete(ctx context.Context, userID, sessionID string) (*service.RewardResult, error) {
	p.mu.Lock()
	s, ok := p.sessions[sessionID]
	if !ok || s.UserID != userID {
		p.mu.Unlock()
		return nil, ErrAdSessionNotFound
	}
	if p.now().Before(s.ReadyAt) {
		p.mu.Unlock()
		return nil, ErrAdNotFinished
	}
	delete(p.sessions, sessionID)
	p.mu.Unlock()

	return p.rewards.GrantAdReward(ctx, userID)
}
