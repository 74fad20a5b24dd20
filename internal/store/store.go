package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/roxaimboy784-wq/AdCashy/internal/domain"
	"github.com/roxaimboy784-wq/AdCashy/internal/logger"
	"github.com/roxaimboy784-wq/AdCashy/internal/repository"
)

// данные сидированного администратора
const (
	AdminID           = "admin_1"
	AdminName         = "System Admin"
	AdminPhone        = "0000000000"
	AdminPassword     = "admin"
	AdminInviteCode   = "ADMINVIP"
	DefaultAdminEmail = "admin@earnads.com"
)

var ErrCorruptDocument = repository.ErrCorruptDocument

// Clock источник текущего времени, подменяется в тестах
type Clock func() time.Time

type Options struct {
	// начать с пустого документа, если сохранённый не читается
	ResetCorrupt bool
	AdminEmail   string
	Clock        Clock
	// вызывается после каждой записи документа
	OnPersist func(d time.Duration, err error)
}

// Store владеет единственным документом приложения.
// Все изменения проходят через Update и сохраняются целиком.
type Store struct {
	repo *repository.DocumentRepository
	opts Options
	log  *slog.Logger

	mu  sync.RWMutex
	doc *domain.Document
}

// Open загружает документ. Если его нет, создаёт документ по умолчанию и сразу сохраняет
func Open(ctx context.Context, repo *repository.DocumentRepository, opts Options) (*Store, error) {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.AdminEmail == "" {
		opts.AdminEmail = DefaultAdminEmail
	}
	s := &Store{
		repo: repo,
		opts: opts,
		log:  logger.With("component", "store"),
	}

	doc, err := repo.Load(ctx)
	switch {
	case err == nil:
		s.doc = doc
		return s, nil
	case errors.Is(err, repository.ErrCorruptDocument) && opts.ResetCorrupt:
		s.log.Warn("сохранённый документ повреждён, начинаем с пустого", "key", repo.Key(), "error", err)
	case errors.Is(err, repository.ErrNotFound):
		s.log.Info("документ не найден, создаём новый", "key", repo.Key())
	default:
		return nil, fmt.Errorf("load document: %w", err)
	}

	doc = domain.NewDocument()
	if err := s.persist(ctx, doc); err != nil {
		return nil, fmt.Errorf("persist default document: %w", err)
	}
	s.doc = doc
	return s, nil
}

// Bootstrap создаёт администратора, если в документе нет ни одного.
// Повторный вызов ничего не меняет и не пишет в хранилище
func (s *Store) Bootstrap(ctx context.Context) error {
	s.mu.RLock()
	hasAdmin := s.doc.HasAdmin()
	s.mu.RUnlock()
	if hasAdmin {
		return nil
	}

	return s.Update(ctx, func(doc *domain.Document) error {
		if doc.HasAdmin() {
			return nil
		}
		doc.Users = append(doc.Users, domain.User{
			ID:            AdminID,
			Name:          AdminName,
			Phone:         AdminPhone,
			Email:         s.opts.AdminEmail,
			Password:      AdminPassword,
			Role:          domain.RoleAdmin,
			Balance:       domain.Amount{},
			TotalEarnings: domain.Amount{},
			Referrals:     []string{},
			InviteCode:    AdminInviteCode,
			Status:        domain.UserStatusActive,
			CreatedAt:     s.Now(),
		})
		s.log.Info("создан администратор по умолчанию", "email", s.opts.AdminEmail)
		return nil
	})
}

// View даёт доступ на чтение. Документ нельзя менять и нельзя сохранять ссылки на него
func (s *Store) View(fn func(doc *domain.Document)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.doc)
}

// Snapshot глубокая копия текущего документа
func (s *Store) Snapshot() *domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// Update применяет fn к копии документа и сохраняет её целиком.
// Если fn вернула ошибку или запись не удалась, документ не меняется
func (s *Store) Update(ctx context.Context, fn func(doc *domain.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.doc.Clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := s.persist(ctx, next); err != nil {
		s.log.Error("не удалось сохранить документ", "error", err)
		return fmt.Errorf("persist document: %w", err)
	}
	s.doc = next
	return nil
}

func (s *Store) persist(ctx context.Context, doc *domain.Document) error {
	start := time.Now()
	err := s.repo.Save(ctx, doc)
	if s.opts.OnPersist != nil {
		s.opts.OnPersist(time.Since(start), err)
	}
	return err
}

// Now текущее время по часам стора
func (s *Store) Now() time.Time {
	return s.opts.Clock()
}

// Today ключ текущего дня для дневного лимита
func (s *Store) Today() string {
	return domain.DayKey(s.Now())
}
