package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/roxaimboy784-wq/AdCashy/internal/domain"
	"github.com/roxaimboy784-wq/AdCashy/internal/store"
)

func requestWithdrawal(t *testing.T, f *fixture, userID, amt string) *domain.Withdrawal {
	t.Helper()
	w, err := f.wallet.RequestWithdrawal(context.Background(), userID, domain.WithdrawRequest{
		Amount: amount(amt), Method: domain.PayoutUPI, AccountDetails: "x@upi",
	})
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	return w
}

func TestApproveWithdrawal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.signup(t, "Asha", "9876543210", "asha@x.com", "")
	f.setBalance(t, u.ID, "300")
	w := requestWithdrawal(t, f, u.ID, "100")

	got, err := f.admin.ApproveWithdrawal(ctx, w.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got.Status != domain.WithdrawalStatusApproved {
		t.Fatalf("status = %s", got.Status)
	}
	if bal := f.user(t, u.ID).Balance; !bal.Equal(amount("200")) {
		t.Fatalf("approve changed balance: %s", bal)
	}
	h := f.profile.History(u.ID)
	if h[0].Detail != domain.DetailWithdrawalApprove || h[0].Type != domain.HistoryWithdrawal {
		t.Fatalf("unexpected history head: %+v", h[0])
	}
}

func TestRejectWithdrawalRefunds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.signup(t, "Asha", "9876543210", "asha@x.com", "")
	f.setBalance(t, u.ID, "300")
	w := requestWithdrawal(t, f, u.ID, "150")

	got, err := f.admin.RejectWithdrawal(ctx, w.ID)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if got.Status != domain.WithdrawalStatusRejected {
		t.Fatalf("status = %s", got.Status)
	}
	if bal := f.user(t, u.ID).Balance; !bal.Equal(amount("300")) {
		t.Fatalf("balance after refund = %s", bal)
	}
	h := f.profile.History(u.ID)
	if h[0].Detail != domain.DetailRefund || h[0].Type != domain.HistoryAd || !h[0].Amount.Equal(amount("150")) {
		t.Fatalf("unexpected refund record: %+v", h[0])
	}
}

func TestResolveWithdrawalTwiceIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.signup(t, "Asha", "9876543210", "asha@x.com", "")
	f.setBalance(t, u.ID, "300")
	w := requestWithdrawal(t, f, u.ID, "100")

	if _, err := f.admin.RejectWithdrawal(ctx, w.ID); err != nil {
		t.Fatalf("reject: %v", err)
	}
	before := f.store.Snapshot()

	for _, d := range []domain.Decision{domain.DecisionReject, domain.DecisionApprove} {
		if _, err := f.admin.ResolveWithdrawal(ctx, w.ID, d); !errors.Is(err, ErrWithdrawalProcessed) {
			t.Fatalf("expected ErrWithdrawalProcessed, got %v", err)
		}
	}
	after := f.store.Snapshot()
	if !after.UserByID(u.ID).Balance.Equal(before.UserByID(u.ID).Balance) {
		t.Fatal("second resolution refunded again")
	}
	if len(after.History) != len(before.History) || after.WithdrawalByID(w.ID).Status != domain.WithdrawalStatusRejected {
		t.Fatal("second resolution changed the document")
	}
}

func TestResolveWithdrawalErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.admin.ResolveWithdrawal(ctx, "wd_missing", domain.DecisionApprove); !errors.Is(err, ErrWithdrawalNotFound) {
		t.Fatalf("expected ErrWithdrawalNotFound, got %v", err)
	}
	if _, err := f.admin.ResolveWithdrawal(ctx, "wd_missing", "maybe"); !errors.Is(err, ErrInvalidDecision) {
		t.Fatalf("expected ErrInvalidDecision, got %v", err)
	}
}

func TestCreditBonus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.signup(t, "Asha", "9876543210", "asha@x.com", "")

	if _, err := f.admin.CreditBonus(ctx, u.ID, amount("0")); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := f.admin.CreditBonus(ctx, "nobody", amount("5")); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	got, err := f.admin.CreditBonus(WithActor(ctx, store.AdminID), u.ID, amount("50"))
	if err != nil {
		t.Fatalf("bonus: %v", err)
	}
	if !got.Balance.Equal(amount("50")) || !got.TotalEarnings.Equal(amount("50")) {
		t.Fatalf("unexpected user: %+v", got)
	}
	h := f.profile.History(u.ID)
	if len(h) != 1 || h[0].Detail != domain.DetailAdminBonus || h[0].Type != domain.HistoryAd {
		t.Fatalf("history = %+v", h)
	}

	last := f.sink.logs[len(f.sink.logs)-1]
	if last.Action != domain.AuditActionAdminBonus || last.Details["actor"] != store.AdminID {
		t.Fatalf("unexpected audit record: %+v", last)
	}
}

func TestSetUserStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.signup(t, "Asha", "9876543210", "asha@x.com", "")

	if _, err := f.admin.SetUserStatus(ctx, store.AdminID, domain.UserStatusBlocked); !errors.Is(err, ErrCannotBlockAdmin) {
		t.Fatalf("expected ErrCannotBlockAdmin, got %v", err)
	}
	if _, err := f.admin.SetUserStatus(ctx, u.ID, "frozen"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	got, err := f.admin.SetUserStatus(ctx, u.ID, domain.UserStatusBlocked)
	if err != nil || !got.IsBlocked() {
		t.Fatalf("block: %v %+v", err, got)
	}
	got, err = f.admin.SetUserStatus(ctx, u.ID, domain.UserStatusActive)
	if err != nil || got.IsBlocked() {
		t.Fatalf("unblock: %v %+v", err, got)
	}
}

func TestListUsersExcludesAdmin(t *testing.T) {
	f := newFixture(t)
	a := f.signup(t, "Asha", "9000000001", "a@x.com", "")
	b := f.signup(t, "Bala", "9000000002", "b@x.com", "")

	users := f.admin.ListUsers()
	if len(users) != 2 || users[0].ID != a.ID || users[1].ID != b.ID {
		t.Fatalf("users = %+v", users)
	}
	if _, err := f.admin.GetUser(store.AdminID); err != nil {
		t.Fatalf("get admin: %v", err)
	}
	if admin, _ := f.admin.GetUser(store.AdminID); admin.Password != "" {
		t.Fatal("password leaked")
	}
}

func TestListWithdrawalsLatestFirst(t *testing.T) {
	f := newFixture(t)
	u := f.signup(t, "Asha", "9000000001", "a@x.com", "")
	f.setBalance(t, u.ID, "1000")
	w1 := requestWithdrawal(t, f, u.ID, "100")
	w2 := requestWithdrawal(t, f, u.ID, "200")
	_, _ = f.admin.ApproveWithdrawal(context.Background(), w1.ID)

	all := f.admin.ListWithdrawals(false)
	if len(all) != 2 || all[0].ID != w2.ID || all[0].UserName != "Asha" {
		t.Fatalf("all = %+v", all)
	}
	pending := f.admin.ListWithdrawals(true)
	if len(pending) != 1 || pending[0].ID != w2.ID {
		t.Fatalf("pending = %+v", pending)
	}
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.signup(t, "Asha", "9000000001", "a@x.com", "")
	b := f.signup(t, "Bala", "9000000002", "b@x.com", "")
	f.setBalance(t, b.ID, "500")

	_, _ = f.reward.GrantAdReward(ctx, a.ID)
	_, _ = f.reward.GrantAdReward(ctx, a.ID)
	requestWithdrawal(t, f, b.ID, "100")
	f.clock.Advance(24 * time.Hour)
	requestWithdrawal(t, f, b.ID, "150")

	stats, err := f.admin.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalUsers != 2 || stats.TotalAdsWatched != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	// реклама смотрелась вчера
	if stats.ActiveToday != 0 {
		t.Fatalf("activeToday = %d", stats.ActiveToday)
	}
	if stats.PendingTotal != 2 || stats.PendingToday != 1 || !stats.PendingAmount.Equal(amount("250")) {
		t.Fatalf("unexpected pending stats: %+v", stats)
	}
	if !stats.TotalEarnings.Equal(amount("5")) {
		t.Fatalf("totalEarnings = %s", stats.TotalEarnings)
	}
}

func TestUpdateSettings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bad := 0
	if _, err := f.admin.UpdateSettings(ctx, domain.SettingsPatch{DailyAdLimit: &bad}); !errors.Is(err, ErrInvalidSettings) {
		t.Fatalf("expected ErrInvalidSettings, got %v", err)
	}

	on := true
	minW := amount("50")
	got, err := f.admin.UpdateSettings(ctx, domain.SettingsPatch{AppMaintenance: &on, MinWithdrawal: &minW})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !got.AppMaintenance || !got.MinWithdrawal.Equal(minW) || got.DailyAdLimit != 20 {
		t.Fatalf("unexpected settings: %+v", got)
	}
	if s := f.admin.Settings(); !s.AppMaintenance {
		t.Fatal("settings not stored")
	}
}
