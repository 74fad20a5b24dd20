package domain

import "strings"

// Глобальные настройки приложения, меняет только админ
type Settings struct {
	DailyAdLimit       int    `json:"dailyAdLimit"`
	RewardPerAd        Amount `json:"rewardPerAd"`
	MinWithdrawal      Amount `json:"minWithdrawal"`
	AppMaintenance     bool   `json:"appMaintenance"`     // хранится, ядро его не проверяет
	ReferralPercentage Amount `json:"referralPercentage"` // только для отображения, к балансу не применяется
	AdNetwork          string `json:"adNetwork,omitempty"`
}

const DefaultAdNetwork = "AdMob"

// DefaultSettings значения для нового документа
func DefaultSettings() Settings {
	return Settings{
		DailyAdLimit:       20,
		RewardPerAd:        NewAmount("2.5"),
		MinWithdrawal:      NewAmount("100"),
		AppMaintenance:     false,
		ReferralPercentage: NewAmount("10"),
		AdNetwork:          DefaultAdNetwork,
	}
}

// Network название рекламной сети для истории
func (s Settings) Network() string {
	if s.AdNetwork == "" {
		return DefaultAdNetwork
	}
	return s.AdNetwork
}

// SettingsPatch частичное обновление настроек
type SettingsPatch struct {
	DailyAdLimit       *int    `json:"dailyAdLimit"`
	RewardPerAd        *Amount `json:"rewardPerAd"`
	MinWithdrawal      *Amount `json:"minWithdrawal"`
	AppMaintenance     *bool   `json:"appMaintenance"`
	ReferralPercentage *Amount `json:"referralPercentage"`
	AdNetwork          *string `json:"adNetwork"`
}

func (p SettingsPatch) Empty() bool {
	return p.DailyAdLimit == nil && p.RewardPerAd == nil && p.MinWithdrawal == nil &&
		p.AppMaintenance == nil && p.ReferralPercentage == nil && p.AdNetwork == nil
}

func (p SettingsPatch) Validate() error {
	if p.DailyAdLimit != nil && *p.DailyAdLimit <= 0 {
		return &ValidationError{Field: "dailyAdLimit", Reason: "must be positive"}
	}
	if p.RewardPerAd != nil && !p.RewardPerAd.IsPositive() {
		return &ValidationError{Field: "rewardPerAd", Reason: "must be positive"}
	}
	if p.MinWithdrawal != nil && !p.MinWithdrawal.IsPositive() {
		return &ValidationError{Field: "minWithdrawal", Reason: "must be positive"}
	}
	if p.ReferralPercentage != nil {
		if p.ReferralPercentage.IsNegative() || p.ReferralPercentage.GreaterThan(NewAmount("100")) {
			return &ValidationError{Field: "referralPercentage", Reason: "must be between 0 and 100"}
		}
	}
	return nil
}

// Apply накладывает заданные поля поверх текущих настроек
func (p SettingsPatch) Apply(s *Settings) {
	if p.DailyAdLimit != nil {
		s.DailyAdLimit = *p.DailyAdLimit
	}
	if p.RewardPerAd != nil {
		s.RewardPerAd = *p.RewardPerAd
	}
	if p.MinWithdrawal != nil {
		s.MinWithdrawal = *p.MinWithdrawal
	}
	if p.AppMaintenance != nil {
		s.AppMaintenance = *p.AppMaintenance
	}
	if p.ReferralPercentage != nil {
		s.ReferralPercentage = *p.ReferralPercentage
	}
	if p.AdNetwork != nil {
		s.AdNetwork = strings.TrimSpace(*p.AdNetwork)
	}
}
