package service

import (
	"sync"
	"time"

	"github.com/roxaimboy784-wq/AdCashy/internal/domain"
	"github.com/roxaimboy784-wq/AdCashy/internal/logger"
	"github.com/roxaimboy784-wq/AdCashy/internal/store"
)

// PendingReminder заявки, которые ждут решения дольше порога
type PendingReminder struct {
	Withdrawals []domain.Withdrawal
	OldestAge   time.Duration
}

// PendingWatcher периодически напоминает админам о зависших заявках на вывод.
// О каждой заявке напоминает один раз
type PendingWatcher struct {
	store       *store.Store
	remindAfter time.Duration
	interval    time.Duration

	mu             sync.Mutex
	stop           chan struct{}
	running        bool
	reminded       map[string]struct{}
	notifyCallback func(PendingReminder)
}

// NewPendingWatcher создает watcher для ожидающих заявок
func NewPendingWatcher(st *store.Store, remindAfter, interval time.Duration) *PendingWatcher {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &PendingWatcher{
		store:       st,
		remindAfter: remindAfter,
		interval:    interval,
		stop:        make(chan struct{}),
		reminded:    make(map[string]struct{}),
	}
}

// SetNotifyCallback устанавливает callback для напоминаний админам
func (w *PendingWatcher) SetNotifyCallback(callback func(PendingReminder)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.notifyCallback = callback
}

// Start запускает watcher, блокирует до Stop
func (w *PendingWatcher) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	log := logger.With("component", "pending_watcher")
	log.Info("запуск pending watcher", "remind_after", w.remindAfter, "interval", w.interval)

	w.Check()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Check()
		case <-w.stop:
			log.Info("остановка pending watcher")
			return
		}
	}
}

// Stop останавливает watcher
func (w *PendingWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stop)
		w.running = false
	}
}

// Check один проход: находит новые просроченные заявки и вызывает callback
func (w *PendingWatcher) Check() *PendingReminder {
	now := w.store.Now()

	w.mu.Lock()
	var stale []domain.Withdrawal
	var oldest time.Duration
	pending := make(map[string]struct{})

	w.store.View(func(doc *domain.Document) {
		for _, wd := range doc.Withdrawals {
			if !wd.IsPending() {
				continue
			}
			pending[wd.ID] = struct{}{}
			age := now.Sub(wd.Date)
			if age < w.remindAfter {
				continue
			}
			if _, done := w.reminded[wd.ID]; done {
				continue
			}
			stale = append(stale, wd)
			if age > oldest {
				oldest = age
			}
		}
	})

	// решённые заявки больше не отслеживаем
	for id := range w.reminded {
		if _, ok := pending[id]; !ok {
			delete(w.reminded, id)
		}
	}
	for _, wd := range stale {
		w.reminded[wd.ID] = struct{}{}
	}
	cb := w.notifyCallback
	w.mu.Unlock()

	if len(stale) == 0 {
		return nil
	}

	reminder := PendingReminder{Withdrawals: stale, OldestAge: oldest}
	logger.Info("pending watcher: заявки ждут решения", "count", len(stale), "oldest", oldest)
	if cb != nil {
		cb(reminder)
	}
	return &reminder
}
