package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/roxaimboy784-wq/AdCashy/internal/domain"
	"github.com/roxaimboy784-wq/AdCashy/internal/logger"
)

const DefaultOTPTTL = 5 * time.Minute

// OTPIssue выданный код. SMS не отправляется, код показывается в приложении
type OTPIssue struct {
	ChallengeID string    `json:"challengeId"`
	Code        string    `json:"code"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// OTPService второй шаг входа и регистрации: проверка одноразового кода
type OTPService struct {
	auth       *AuthService
	challenges ChallengeStore
	ttl        time.Duration
	now        func() time.Time
	code       func() string
}

func NewOTPService(auth *AuthService, challenges ChallengeStore, ttl time.Duration) *OTPService {
	if ttl <= 0 {
		ttl = DefaultOTPTTL
	}
	return &OTPService{
		auth:       auth,
		challenges: challenges,
		ttl:        ttl,
		now:        time.Now,
		code:       NewOTPCode,
	}
}

// Issue создаёт challenge для входа. Данные проверяются только в Verify
func (s *OTPService) Issue(ctx context.Context, identifier, password string) (*OTPIssue, error) {
	return s.issue(ctx, Challenge{
		Kind:       ChallengeLogin,
		Identifier: identifier,
		Password:   password,
	})
}

// IssueSignup создаёт challenge для регистрации
func (s *OTPService) IssueSignup(ctx context.Context, req SignupRequest) (*OTPIssue, error) {
	req.normalize()
	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignup, err)
	}
	return s.issue(ctx, Challenge{Kind: ChallengeSignup, Signup: &req})
}

func (s *OTPService) issue(ctx context.Context, ch Challenge) (*OTPIssue, error) {
	ch.ID = NewID("otp")
	ch.Code = s.code()
	ch.ExpiresAt = s.now().Add(s.ttl)
	if err := s.challenges.Save(ctx, ch); err != nil {
		return nil, err
	}
	logger.Debug("otp выдан", "challenge_id", ch.ID, "kind", ch.Kind)
	return &OTPIssue{ChallengeID: ch.ID, Code: ch.Code, ExpiresAt: ch.ExpiresAt}, nil
}

// Verify проверяет код и выполняет отложенную операцию.
// При неверном коде challenge остаётся, при успехе удаляется
func (s *OTPService) Verify(ctx context.Context, challengeID, code string) (*domain.User, error) {
	ch, err := s.challenges.Get(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(ch.Code), []byte(code)) != 1 {
		return nil, ErrInvalidOTP
	}
	if err := s.challenges.Delete(ctx, challengeID); err != nil {
		logger.Warn("не удалось удалить otp challenge", "challenge_id", challengeID, "error", err)
	}

	switch ch.Kind {
	case ChallengeSignup:
		if ch.Signup == nil {
			return nil, ErrChallengeNotFound
		}
		return s.auth.Signup(ctx, *ch.Signup)
	default:
		return s.auth.Login(ctx, ch.Identifier, ch.Password)
	}
}
