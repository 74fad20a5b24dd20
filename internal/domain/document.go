package domain

import "time"

// Document корневой документ: всё состояние приложения целиком.
// Порядок в срезах хронологический (порядок вставки).
type Document struct {
	Users       []User          `json:"users"`
	CurrentUser *string         `json:"currentUser"`
	Withdrawals []Withdrawal    `json:"withdrawals"`
	History     []HistoryRecord `json:"history"`
	Settings    Settings        `json:"settings"`
}

// NewDocument документ по умолчанию: пустые коллекции, настройки по умолчанию, без сессии
func NewDocument() *Document {
	return &Document{
		Users:       []User{},
		Withdrawals: []Withdrawal{},
		History:     []HistoryRecord{},
		Settings:    DefaultSettings(),
	}
}

// Normalize заменяет nil-срезы пустыми, чтобы документ сериализовался стабильно
func (d *Document) Normalize() {
	if d.Users == nil {
		d.Users = []User{}
	}
	if d.Withdrawals == nil {
		d.Withdrawals = []Withdrawal{}
	}
	if d.History == nil {
		d.History = []HistoryRecord{}
	}
	for i := range d.Users {
		if d.Users[i].Referrals == nil {
			d.Users[i].Referrals = []string{}
		}
	}
}

// Clone глубокая копия документа
func (d *Document) Clone() *Document {
	out := &Document{
		Users:       make([]User, len(d.Users)),
		Withdrawals: make([]Withdrawal, len(d.Withdrawals)),
		History:     make([]HistoryRecord, len(d.History)),
		Settings:    d.Settings,
	}
	copy(out.Users, d.Users)
	for i := range out.Users {
		out.Users[i].Referrals = append([]string{}, d.Users[i].Referrals...)
	}
	copy(out.Withdrawals, d.Withdrawals)
	copy(out.History, d.History)
	if d.CurrentUser != nil {
		id := *d.CurrentUser
		out.CurrentUser = &id
	}
	return out
}

func (d *Document) SetCurrentUser(id string) {
	d.CurrentUser = &id
}

func (d *Document) ClearCurrentUser() {
	d.CurrentUser = nil
}

// CurrentUserID пустая строка, если сессии нет
func (d *Document) CurrentUserID() string {
	if d.CurrentUser == nil {
		return ""
	}
	return *d.CurrentUser
}

// UserByID указатель внутрь d.Users, nil если не найден
func (d *Document) UserByID(id string) *User {
	for i := range d.Users {
		if d.Users[i].ID == id {
			return &d.Users[i]
		}
	}
	return nil
}

func (d *Document) UserByEmail(email string) *User {
	for i := range d.Users {
		if d.Users[i].Email == email {
			return &d.Users[i]
		}
	}
	return nil
}

func (d *Document) UserByPhone(phone string) *User {
	for i := range d.Users {
		if d.Users[i].Phone == phone {
			return &d.Users[i]
		}
	}
	return nil
}

func (d *Document) UserByInviteCode(code string) *User {
	if code == "" {
		return nil
	}
	for i := range d.Users {
		if d.Users[i].InviteCode == code {
			return &d.Users[i]
		}
	}
	return nil
}

// HasAdmin есть ли хотя бы один пользователь с ролью admin
func (d *Document) HasAdmin() bool {
	for i := range d.Users {
		if d.Users[i].IsAdmin() {
			return true
		}
	}
	return false
}

func (d *Document) WithdrawalByID(id string) *Withdrawal {
	for i := range d.Withdrawals {
		if d.Withdrawals[i].ID == id {
			return &d.Withdrawals[i]
		}
	}
	return nil
}

// HistoryFor записи пользователя, последние первыми
func (d *Document) HistoryFor(userID string) []HistoryRecord {
	var out []HistoryRecord
	for i := len(d.History) - 1; i >= 0; i-- {
		if d.History[i].UserID == userID {
			out = append(out, d.History[i])
		}
	}
	return out
}

// DayKey календарная дата, используемая как маркер дневного сброса
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
