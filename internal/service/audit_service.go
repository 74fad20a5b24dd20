package service

import (
	"context"

	"github.com/roxaimboy784-wq/AdCashy/internal/domain"
	"github.com/roxaimboy784-wq/AdCashy/internal/logger"
	"github.com/roxaimboy784-wq/AdCashy/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

// куда пишутся записи аудита
type AuditSink interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// обрабатывает логирование аудита. без базы записи уходят в лог
type AuditService struct {
	sink AuditSink
}

// создает сервис аудита поверх postgres; db == nil значит только лог
func NewAuditService(db *pgxpool.Pool) *AuditService {
	if db == nil {
		return &AuditService{}
	}
	return &AuditService{sink: repository.NewAuditRepository(db)}
}

// создает сервис аудита с произвольным приёмником
func NewAuditServiceWithSink(sink AuditSink) *AuditService {
	return &AuditService{sink: sink}
}

// создает новую запись в журнале аудита. ошибки записи не возвращаются вызывающему
func (s *AuditService) Log(ctx context.Context, userID, action, category string, details map[string]any) {
	s.write(ctx, &domain.AuditLog{
		UserID:   userID,
		Action:   action,
		Category: category,
		Details:  details,
	})
}

func (s *AuditService) write(ctx context.Context, log *domain.AuditLog) {
	if s == nil {
		return
	}
	if actor := ActorFromContext(ctx); actor != "" && actor != log.UserID {
		if log.Details == nil {
			log.Details = make(map[string]any)
		}
		log.Details["actor"] = actor
	}
	if log.IP == "" && log.UserAgent == "" {
		log.IP, log.UserAgent = requestInfoFromContext(ctx)
	}

	if s.sink == nil {
		logger.Info("audit", "user_id", log.UserID, "action", log.Action, "category", log.Category, "details", log.Details)
		return
	}
	if err := s.sink.Create(ctx, log); err != nil {
		logger.Error("не удалось создать запись аудита", "error", err, "action", log.Action, "user_id", log.UserID)
	}
}

// логирует вход пользователя
func (s *AuditService) LogLogin(ctx context.Context, userID string) {
	s.Log(ctx, userID, domain.AuditActionLogin, domain.AuditCategoryAuth, nil)
}

// логирует выход
func (s *AuditService) LogLogout(ctx context.Context, userID string) {
	s.Log(ctx, userID, domain.AuditActionLogout, domain.AuditCategoryAuth, nil)
}

// логирует регистрацию
func (s *AuditService) LogSignup(ctx context.Context, userID, referralCode string) {
	var details map[string]any
	if referralCode != "" {
		details = map[string]any{"referral_code": referralCode}
	}
	s.Log(ctx, userID, domain.AuditActionSignup, domain.AuditCategoryAuth, details)
}

// логирует запрос на вывод средств
func (s *AuditService) LogWithdrawRequest(ctx context.Context, w *domain.Withdrawal) {
	details := map[string]any{
		"withdrawal_id": w.ID,
		"amount":        w.Amount.String(),
		"method":        string(w.Method),
	}
	s.Log(ctx, w.UserID, domain.AuditActionWithdrawRequest, domain.AuditCategoryWithdrawal, details)
}

// логирует решение по выводу
func (s *AuditService) LogWithdrawResolve(ctx context.Context, w *domain.Withdrawal) {
	action := domain.AuditActionWithdrawApprove
	if w.Status == domain.WithdrawalStatusRejected {
		action = domain.AuditActionWithdrawReject
	}
	details := map[string]any{
		"withdrawal_id": w.ID,
		"amount":        w.Amount.String(),
	}
	s.Log(ctx, w.UserID, action, domain.AuditCategoryWithdrawal, details)
}

// логирует действие администратора над пользователем
func (s *AuditService) LogAdminAction(ctx context.Context, action, targetUserID string, details map[string]any) {
	if details == nil {
		details = make(map[string]any)
	}
	details["target_user_id"] = targetUserID
	s.Log(ctx, targetUserID, action, domain.AuditCategoryAdmin, details)
}

// логирует изменение профиля
func (s *AuditService) LogProfileUpdate(ctx context.Context, userID string, fields []string) {
	s.Log(ctx, userID, domain.AuditActionProfileUpdate, domain.AuditCategoryProfile, map[string]any{"fields": fields})
}

// чтение журнала, есть только у postgres
type AuditReader interface {
	GetRecent(ctx context.Context, limit int) ([]*domain.AuditLog, error)
	GetByUserID(ctx context.Context, userID string, limit int) ([]*domain.AuditLog, error)
}

// возвращает последние записи журнала, для userID != "" только по пользователю
func (s *AuditService) Recent(ctx context.Context, userID string, limit int) ([]*domain.AuditLog, error) {
	reader, ok := s.sink.(AuditReader)
	if !ok {
		return nil, ErrAuditUnavailable
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if userID != "" {
		return reader.GetByUserID(ctx, userID, limit)
	}
	return reader.GetRecent(ctx, limit)
}
