package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestDocumentJSONLayout(t *testing.T) {
	doc := NewDocument()
	b, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	for _, key := range []string{`"users":[]`, `"currentUser":null`, `"withdrawals":[]`, `"history":[]`, `"rewardPerAd":2.5`, `"dailyAdLimit":20`, `"minWithdrawal":100`, `"referralPercentage":10`, `"appMaintenance":false`} {
		if !strings.Contains(s, key) {
			t.Errorf("expected %s in %s", key, s)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	doc := NewDocument()
	doc.Users = append(doc.Users, User{ID: "u1", Referrals: []string{"a"}, Balance: NewAmount("5")})
	doc.SetCurrentUser("u1")

	cp := doc.Clone()
	cp.Users[0].Referrals[0] = "changed"
	cp.Users[0].Balance = NewAmount("7")
	*cp.CurrentUser = "u2"
	cp.Settings.DailyAdLimit = 1

	if doc.Users[0].Referrals[0] != "a" {
		t.Fatalf("referrals shared between clone and original")
	}
	if !doc.Users[0].Balance.Equal(NewAmount("5")) {
		t.Fatalf("balance changed in original")
	}
	if doc.CurrentUserID() != "u1" {
		t.Fatalf("current user changed in original: %s", doc.CurrentUserID())
	}
	if doc.Settings.DailyAdLimit != 20 {
		t.Fatalf("settings shared between clone and original")
	}
}

func TestAdsToday(t *testing.T) {
	u := User{DailyAdsCount: 7, LastWatchedDate: "2026-10-15"}
	if got := u.AdsToday("2026-10-15"); got != 7 {
		t.Fatalf("same day: got %d, want 7", got)
	}
	if got := u.AdsToday("2026-10-16"); got != 0 {
		t.Fatalf("next day: got %d, want 0", got)
	}
}

func TestSettingsPatchValidate(t *testing.T) {
	zero := 0
	neg := NewAmount("-1")
	big := NewAmount("150")
	ok := 5
	tests := []struct {
		name    string
		patch   SettingsPatch
		wantErr bool
	}{
		{"empty", SettingsPatch{}, false},
		{"zero limit", SettingsPatch{DailyAdLimit: &zero}, true},
		{"negative reward", SettingsPatch{RewardPerAd: &neg}, true},
		{"negative min withdrawal", SettingsPatch{MinWithdrawal: &neg}, true},
		{"percentage over 100", SettingsPatch{ReferralPercentage: &big}, true},
		{"valid limit", SettingsPatch{DailyAdLimit: &ok}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.patch.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSettingsPatchApplyIsShallowMerge(t *testing.T) {
	s := DefaultSettings()
	limit := 5
	on := true
	SettingsPatch{DailyAdLimit: &limit, AppMaintenance: &on}.Apply(&s)

	if s.DailyAdLimit != 5 || !s.AppMaintenance {
		t.Fatalf("patched fields not applied: %+v", s)
	}
	if !s.RewardPerAd.Equal(NewAmount("2.5")) || !s.MinWithdrawal.Equal(NewAmount("100")) {
		t.Fatalf("untouched fields changed: %+v", s)
	}
}

func TestUserPatchValidate(t *testing.T) {
	empty := " "
	badPhone := "99-00"
	badEmail := "nope"
	good := "asha@x.com"
	if err := (UserPatch{Name: &empty}).Validate(); err == nil {
		t.Errorf("expected error for empty name")
	}
	if err := (UserPatch{Phone: &badPhone}).Validate(); err == nil {
		t.Errorf("expected error for bad phone")
	}
	if err := (UserPatch{Email: &badEmail}).Validate(); err == nil {
		t.Errorf("expected error for bad email")
	}
	if err := (UserPatch{Email: &good}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestHistoryForLatestFirst(t *testing.T) {
	doc := NewDocument()
	now := time.Now()
	doc.History = []HistoryRecord{
		{ID: "h1", UserID: "u1", Date: now},
		{ID: "h2", UserID: "u2", Date: now},
		{ID: "h3", UserID: "u1", Date: now},
	}
	got := doc.HistoryFor("u1")
	if len(got) != 2 || got[0].ID != "h3" || got[1].ID != "h1" {
		t.Fatalf("unexpected order: %+v", got)
	}
}
