package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type UserStatus string

const (
	UserStatusActive  UserStatus = "active"
	UserStatusBlocked UserStatus = "blocked"
)

func (s UserStatus) Valid() bool {
	return s == UserStatusActive || s == UserStatusBlocked
}

type User struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Phone           string     `json:"phone"`
	Email           string     `json:"email"`
	Password        string     `json:"password,omitempty"` // только у сидированного админа
	Role            Role       `json:"role"`
	Balance         Amount     `json:"balance"`
	TotalEarnings   Amount     `json:"totalEarnings"`
	AdsWatched      int        `json:"adsWatched"`
	Referrals       []string   `json:"referrals"`
	InviteCode      string     `json:"inviteCode"`
	ReferredBy      string     `json:"referredBy,omitempty"` // invite code пригласившего, не владение
	Status          UserStatus `json:"status"`
	CreatedAt       time.Time  `json:"createdAt"`
	DailyAdsCount   int        `json:"dailyAdsCount"`
	LastWatchedDate string     `json:"lastWatchedDate,omitempty"` // маркер сброса дневного счётчика
	UPIID           string     `json:"upiId,omitempty"`
	BankDetails     string     `json:"bankDetails,omitempty"`
}

func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u *User) IsBlocked() bool { return u.Status == UserStatusBlocked }

// AdsToday возвращает дневной счётчик с учётом смены дня.
// Если маркер устарел, счётчик считается нулевым.
func (u *User) AdsToday(today string) int {
	if u.LastWatchedDate != today {
		return 0
	}
	return u.DailyAdsCount
}

// PublicUser то, что видят другие пользователи (рефералы) и админка
type PublicUser struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Phone      string     `json:"phone"`
	Status     UserStatus `json:"status"`
	AdsWatched int        `json:"adsWatched"`
	Balance    Amount     `json:"balance"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Name:       u.Name,
		Phone:      u.Phone,
		Status:     u.Status,
		AdsWatched: u.AdsWatched,
		Balance:    u.Balance,
		CreatedAt:  u.CreatedAt,
	}
}

// UserPatch поля профиля, которые разрешено менять пользователю.
// Баланс и статус меняются только отдельными мутаторами.
type UserPatch struct {
	Name        *string `json:"name"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	UPIID       *string `json:"upiId"`
	BankDetails *string `json:"bankDetails"`
}

func (p UserPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if p.Phone != nil && !ValidPhone(*p.Phone) {
		return &ValidationError{Field: "phone", Reason: "must contain digits only"}
	}
	if p.Email != nil && !ValidEmail(*p.Email) {
		return &ValidationError{Field: "email", Reason: "must be an email address"}
	}
	return nil
}

// Apply применяет заданные поля к пользователю. Validate вызывается раньше.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = strings.TrimSpace(*p.Name)
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.UPIID != nil {
		u.UPIID = strings.TrimSpace(*p.UPIID)
	}
	if p.BankDetails != nil {
		u.BankDetails = strings.TrimSpace(*p.BankDetails)
	}
}

func ValidPhone(phone string) bool {
	if len(phone) < 4 || len(phone) > 15 {
		return false
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func ValidEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t")
}
