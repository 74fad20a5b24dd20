package service

import (
	"context"
	"testing"
	"time"

	"github.com/roxaimboy784-wq/AdCashy/internal/domain"
	"github.com/roxaimboy784-wq/AdCashy/internal/repository"
	"github.com/roxaimboy784-wq/AdCashy/internal/store"
)

type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time { return c.t }

func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	store   *store.Store
	clock   *testClock
	audit   *AuditService
	sink    *memorySink
	auth    *AuthService
	reward  *RewardService
	wallet  *WalletService
	admin   *AdminService
	profile *ProfileService
}

type memorySink struct {
	logs []*domain.AuditLog
}

func (m *memorySink) Create(_ context.Context, log *domain.AuditLog) error {
	m.logs = append(m.logs, log)
	return nil
}

func (m *memorySink) actions() []string {
	out := make([]string, 0, len(m.logs))
	for _, l := range m.logs {
		out = append(out, l.Action)
	}
	return out
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := &testClock{t: time.Date(2026, 10, 16, 10, 0, 0, 0, time.Local)}
	repo := repository.NewDocumentRepository(repository.NewMemoryBackend(), "")
	st, err := store.Open(context.Background(), repo, store.Options{Clock: clock.Now})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := st.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	sink := &memorySink{}
	audit := NewAuditServiceWithSink(sink)
	return &fixture{
		store:   st,
		clock:   clock,
		audit:   audit,
		sink:    sink,
		auth:    NewAuthService(st, audit),
		reward:  NewRewardService(st),
		wallet:  NewWalletService(st, audit),
		admin:   NewAdminService(st, audit),
		profile: NewProfileService(st, audit),
	}
}

func (f *fixture) signup(t *testing.T, name, phone, email, ref string) *domain.User {
	t.Helper()
	u, err := f.auth.Signup(context.Background(), SignupRequest{Name: name, Phone: phone, Email: email, ReferralCode: ref})
	if err != nil {
		t.Fatalf("signup %s: %v", email, err)
	}
	return u
}

// setBalance кладёт деньги напрямую, минуя мутаторы
func (f *fixture) setBalance(t *testing.T, userID, amount string) {
	t.Helper()
	err := f.store.Update(context.Background(), func(doc *domain.Document) error {
		doc.UserByID(userID).Balance = domain.NewAmount(amount)
		return nil
	})
	if err != nil {
		t.Fatalf("set balance: %v", err)
	}
}

func (f *fixture) user(t *testing.T, id string) domain.User {
	t.Helper()
	var out domain.User
	f.store.View(func(doc *domain.Document) {
		u := doc.UserByID(id)
		if u == nil {
			t.Fatalf("user %s not found", id)
		}
		out = *u
	})
	return out
}

func amount(s string) domain.Amount { return domain.NewAmount(s) }
