package service

import (
	"context"
	"fmt"

	"github.com/roxaimboy784-wq/AdCashy/internal/domain"
	"github.com/roxaimboy784-wq/AdCashy/internal/store"
)

// ProfileService профиль, история и рефералы пользователя
type ProfileService struct {
	store *store.Store
	audit *AuditService
}

func NewProfileService(st *store.Store, audit *AuditService) *ProfileService {
	return &ProfileService{store: st, audit: audit}
}

// UpdateUser меняет поля профиля. Телефон и email не должны совпадать с чужими
func (s *ProfileService) UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	if err := patch.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}

	var out domain.User
	err := s.store.Update(ctx, func(doc *domain.Document) error {
		u := doc.UserByID(id)
		if u == nil {
			return ErrUserNotFound
		}
		if patch.Phone != nil {
			if other := doc.UserByPhone(*patch.Phone); other != nil && other.ID != id {
				return ErrDuplicateRegistration
			}
		}
		if patch.Email != nil {
			if other := doc.UserByEmail(*patch.Email); other != nil && other.ID != id {
				return ErrDuplicateRegistration
			}
		}
		patch.Apply(u)
		out = *u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.LogProfileUpdate(ctx, id, patchFields(patch))
	return &out, nil
}

func patchFields(p domain.UserPatch) []string {
	var fields []string
	if p.Name != nil {
		fields = append(fields, "name")
	}
	if p.Phone != nil {
		fields = append(fields, "phone")
	}
	if p.Email != nil {
		fields = append(fields, "email")
	}
	if p.UPIID != nil {
		fields = append(fields, "upiId")
	}
	if p.BankDetails != nil {
		fields = append(fields, "bankDetails")
	}
	return fields
}

// History записи пользователя, последние первыми
func (s *ProfileService) History(userID string) []domain.HistoryRecord {
	var out []domain.HistoryRecord
	s.store.View(func(doc *domain.Document) {
		out = doc.HistoryFor(userID)
	})
	if out == nil {
		out = []domain.HistoryRecord{}
	}
	return out
}

// ReferralInfo данные страницы приглашений
type ReferralInfo struct {
	InviteCode         string              `json:"inviteCode"`
	Count              int                 `json:"count"`
	Referrals          []domain.PublicUser `json:"referrals"`
	ReferralPercentage domain.Amount       `json:"referralPercentage"` // только показывается
}

// Referrals приглашённые пользователем, в порядке регистрации
func (s *ProfileService) Referrals(userID string) (*ReferralInfo, error) {
	var (
		info  ReferralInfo
		found bool
	)
	s.store.View(func(doc *domain.Document) {
		u := doc.UserByID(userID)
		if u == nil {
			return
		}
		found = true
		info.InviteCode = u.InviteCode
		info.Count = len(u.Referrals)
		info.ReferralPercentage = doc.Settings.ReferralPercentage
		info.Referrals = make([]domain.PublicUser, 0, len(u.Referrals))
		for _, id := range u.Referrals {
			if ref := doc.UserByID(id); ref != nil {
				info.Referrals = append(info.Referrals, ref.Public())
			}
		}
	})
	if !found {
		return nil, ErrUserNotFound
	}
	return &info, nil
}
