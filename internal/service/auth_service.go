package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/roxaimboy784-wq/AdCashy/internal/domain"
	"github.com/roxaimboy784-wq/AdCashy/internal/metrics"
	"github.com/roxaimboy784-wq/AdCashy/internal/store"
)

// SignupRequest данные формы регистрации
type SignupRequest struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	ReferralCode string `json:"referralCode"`
}

func (r *SignupRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Email = strings.TrimSpace(r.Email)
	r.ReferralCode = strings.ToUpper(strings.TrimSpace(r.ReferralCode))
}

func (r SignupRequest) validate() error {
	switch {
	case r.Name == "":
		return &domain.ValidationError{Field: "name", Reason: "must not be empty"}
	case !domain.ValidPhone(r.Phone):
		return &domain.ValidationError{Field: "phone", Reason: "must contain digits only"}
	case !domain.ValidEmail(r.Email):
		return &domain.ValidationError{Field: "email", Reason: "must be an email address"}
	}
	return nil
}

// AuthService вход, выход, регистрация и текущая сессия
type AuthService struct {
	store *store.Store
	audit *AuditService

	inviteCode func() string
}

func NewAuthService(st *store.Store, audit *AuditService) *AuthService {
	return &AuthService{
		store:      st,
		audit:      audit,
		inviteCode: NewInviteCode,
	}
}

// Login ищет пользователя по email (если есть "@") или телефону.
// Пароль проверяется только у админа, заблокированные не входят
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*domain.User, error) {
	var out domain.User
	err := s.store.Update(ctx, func(doc *domain.Document) error {
		var u *domain.User
		if strings.Contains(identifier, "@") {
			u = doc.UserByEmail(identifier)
		} else {
			u = doc.UserByPhone(identifier)
		}
		if u == nil {
			return ErrInvalidCredentials
		}
		if u.IsAdmin() && password != store.AdminPassword {
			return ErrInvalidCredentials
		}
		if u.IsBlocked() {
			return ErrAccountBlocked
		}
		doc.SetCurrentUser(u.ID)
		out = *u
		return nil
	})
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(loginOutcome(err)).Inc()
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.audit.LogLogin(ctx, out.ID)
	return &out, nil
}

// AdminLogin вход только для администратора
func (s *AuthService) AdminLogin(ctx context.Context, identifier, password string) (*domain.User, error) {
	var isAdmin bool
	s.store.View(func(doc *domain.Document) {
		if u := doc.UserByEmail(identifier); u != nil {
			isAdmin = u.IsAdmin()
		} else if u := doc.UserByPhone(identifier); u != nil {
			isAdmin = u.IsAdmin()
		}
	})
	if !isAdmin {
		metrics.LoginsTotal.WithLabelValues("not_admin").Inc()
		return nil, ErrNotAdmin
	}
	u, err := s.Login(ctx, identifier, password)
	if errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrAccountBlocked) {
		return nil, ErrNotAdmin
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func loginOutcome(err error) string {
	switch err {
	case ErrAccountBlocked:
		return "blocked"
	case ErrInvalidCredentials:
		return "invalid"
	}
	return "error"
}

// Logout сбрасывает текущую сессию
func (s *AuthService) Logout(ctx context.Context) error {
	var prev string
	err := s.store.Update(ctx, func(doc *domain.Document) error {
		prev = doc.CurrentUserID()
		doc.ClearCurrentUser()
		return nil
	})
	if err != nil {
		return err
	}
	if prev != "" {
		s.audit.LogLogout(ctx, prev)
	}
	return nil
}

// CurrentUser копия текущего пользователя; nil, если сессии нет
// или она указывает на несуществующего пользователя
func (s *AuthService) CurrentUser() *domain.User {
	var out *domain.User
	s.store.View(func(doc *domain.Document) {
		id := doc.CurrentUserID()
		if id == "" {
			return
		}
		if u := doc.UserByID(id); u != nil {
			cp := *u
			cp.Referrals = append([]string{}, u.Referrals...)
			out = &cp
		}
	})
	return out
}

// Signup создаёт пользователя и сразу делает его текущим
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*domain.User, error) {
	req.normalize()
	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignup, err)
	}

	var out domain.User
	err := s.store.Update(ctx, func(doc *domain.Document) error {
		if doc.UserByPhone(req.Phone) != nil || doc.UserByEmail(req.Email) != nil {
			return ErrDuplicateRegistration
		}

		code, err := s.uniqueInviteCode(doc)
		if err != nil {
			return err
		}

		u := domain.User{
			ID:            NewID("user"),
			Name:          req.Name,
			Phone:         req.Phone,
			Email:         req.Email,
			Role:          domain.RoleUser,
			Referrals:     []string{},
			InviteCode:    code,
			ReferredBy:    req.ReferralCode,
			Status:        domain.UserStatusActive,
			CreatedAt:     s.store.Now(),
			DailyAdsCount: 0,
		}

		if referrer := doc.UserByInviteCode(req.ReferralCode); referrer != nil {
			referrer.Referrals = append(referrer.Referrals, u.ID)
		}

		doc.Users = append(doc.Users, u)
		doc.SetCurrentUser(u.ID)
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.SignupsTotal.Inc()
	s.audit.LogSignup(ctx, out.ID, req.ReferralCode)
	return &out, nil
}

func (s *AuthService) uniqueInviteCode(doc *domain.Document) (string, error) {
	for i := 0; i < inviteCodeAttempts; i++ {
		code := s.inviteCode()
		if doc.UserByInviteCode(code) == nil {
			return code, nil
		}
	}
	return "", ErrInviteCodeExhausted
}
