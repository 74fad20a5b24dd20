package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/roxaimboy784-wq/AdCashy/internal/adplayer"
	"github.com/roxaimboy784-wq/AdCashy/internal/http/handlers"
	"github.com/roxaimboy784-wq/AdCashy/internal/http/middleware"
	"github.com/roxaimboy784-wq/AdCashy/internal/repository"
	"github.com/roxaimboy784-wq/AdCashy/internal/service"
	"github.com/roxaimboy784-wq/AdCashy/internal/store"
)

type testServer struct {
	engine *gin.Engine
	store  *store.Store
}

type options struct {
	otp        bool
	limiter    middleware.RateLimiter
	adDuration time.Duration
}

func newTestServer(t *testing.T, opts options) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx := context.Background()
	repo := repository.NewDocumentRepository(repository.NewMemoryBackend(), "")
	st, err := store.Open(ctx, repo, store.Options{})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := st.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	audit := service.NewAuditService(nil)
	auth := service.NewAuthService(st, audit)
	rewards := service.NewRewardService(st)
	if opts.adDuration == 0 {
		opts.adDuration = time.Hour
	}
	h := &handlers.Handler{
		Auth:     auth,
		Sessions: service.NewSessionService("test-secret", time.Hour),
		Rewards:  rewards,
		Wallet:   service.NewWalletService(st, audit),
		Profile:  service.NewProfileService(st, audit),
		Admin:    service.NewAdminService(st, audit),
		Audit:    audit,
		Player:   adplayer.NewPlayer(rewards, opts.adDuration),
	}
	if opts.otp {
		h.OTP = service.NewOTPService(auth, service.NewMemoryChallengeStore(), time.Minute)
	}
	engine := NewRouter(h, RouterConfig{Version: "test", AuthLimiter: opts.limiter})
	return &testServer{engine: engine, store: st}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func (s *testServer) signup(t *testing.T, name, phone, email string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{"name": name, "phone": phone, "email": email})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return decode(t, w)["token"].(string)
}

func (s *testServer) adminToken(t *testing.T) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth/admin/login", "", gin.H{"identifier": store.DefaultAdminEmail, "password": store.AdminPassword})
	if w.Code != http.StatusOK {
		t.Fatalf("admin login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	return decode(t, w)["token"].(string)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, options{})
	w := s.do(t, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestSignupAndMe(t *testing.T) {
	s := newTestServer(t, options{})
	token := s.signup(t, "Asha", "9876543210", "asha@example.com")

	w := s.do(t, http.MethodGet, "/api/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	user := decode(t, w)["user"].(map[string]any)
	if user["email"] != "asha@example.com" {
		t.Errorf("unexpected user: %v", user)
	}

	if w := s.do(t, http.MethodGet, "/api/me", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}
}

func TestDuplicateSignupConflict(t *testing.T) {
	s := newTestServer(t, options{})
	s.signup(t, "Asha", "9876543210", "asha@example.com")

	w := s.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{"name": "Other", "phone": "9876543210", "email": "other@example.com"})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	if msg := decode(t, w)["error"]; msg != service.ErrDuplicateRegistration.Error() {
		t.Errorf("unexpected error message %q", msg)
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	s := newTestServer(t, options{})
	token := s.signup(t, "Asha", "9876543210", "asha@example.com")

	if w := s.do(t, http.MethodPost, "/api/auth/logout", token, nil); w.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", w.Code)
	}
	if w := s.do(t, http.MethodGet, "/api/me", token, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", w.Code)
	}
}

func TestLoginSwitchesCurrentUser(t *testing.T) {
	s := newTestServer(t, options{})
	first := s.signup(t, "Asha", "9876543210", "asha@example.com")
	s.signup(t, "Ravi", "9123456780", "ravi@example.com")

	// сессия одна на документ, первый токен больше не действует
	if w := s.do(t, http.MethodGet, "/api/me", first, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for replaced session, got %d", w.Code)
	}

	w := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"identifier": "9876543210"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	token := decode(t, w)["token"].(string)
	if w := s.do(t, http.MethodGet, "/api/me", token, nil); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	s := newTestServer(t, options{})
	w := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"identifier": "nobody@example.com"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t, options{})
	token := s.signup(t, "Asha", "9876543210", "asha@example.com")
	if w := s.do(t, http.MethodGet, "/api/admin/stats", token, nil); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for user, got %d", w.Code)
	}

	admin := s.adminToken(t)
	w := s.do(t, http.MethodGet, "/api/admin/stats", admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", w.Code)
	}
	if got := decode(t, w)["totalUsers"]; got != float64(1) {
		t.Errorf("totalUsers = %v, want 1", got)
	}
}

func TestAdminLoginRejectsUser(t *testing.T) {
	s := newTestServer(t, options{})
	s.signup(t, "Asha", "9876543210", "asha@example.com")

	w := s.do(t, http.MethodPost, "/api/auth/admin/login", "", gin.H{"identifier": "asha@example.com"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if msg := decode(t, w)["error"]; msg != service.ErrNotAdmin.Error() {
		t.Errorf("unexpected error %q", msg)
	}
}

func TestWithdrawalInsufficientBalance(t *testing.T) {
	s := newTestServer(t, options{})
	token := s.signup(t, "Asha", "9876543210", "asha@example.com")

	w := s.do(t, http.MethodPost, "/api/wallet/withdrawals", token, gin.H{
		"amount": 150, "method": "upi", "accountDetails": "asha@upi",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if msg := decode(t, w)["error"]; msg != service.ErrInsufficientBalance.Error() {
		t.Errorf("unexpected error %q", msg)
	}
}

func TestMaintenanceBlocksUserMutations(t *testing.T) {
	s := newTestServer(t, options{})
	s.signup(t, "Asha", "9876543210", "asha@example.com")

	admin := s.adminToken(t)
	w := s.do(t, http.MethodPatch, "/api/admin/settings", admin, gin.H{"appMaintenance": true})
	if w.Code != http.StatusOK {
		t.Fatalf("update settings: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"identifier": "asha@example.com"})
	if w.Code != http.StatusOK {
		t.Fatalf("login during maintenance: expected 200, got %d", w.Code)
	}
	token := decode(t, w)["token"].(string)

	if w := s.do(t, http.MethodGet, "/api/me", token, nil); w.Code != http.StatusOK {
		t.Errorf("reads stay open, got %d", w.Code)
	}
	if w := s.do(t, http.MethodPost, "/api/ads/start", token, nil); w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestAdStartAndComplete(t *testing.T) {
	s := newTestServer(t, options{adDuration: 20 * time.Millisecond})
	token := s.signup(t, "Asha", "9876543210", "asha@example.com")

	w := s.do(t, http.MethodPost, "/api/ads/start", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("start: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	sessionID := decode(t, w)["sessionId"].(string)

	if w := s.do(t, http.MethodPost, "/api/ads/complete", token, gin.H{"sessionId": sessionID}); w.Code != http.StatusBadRequest {
		t.Fatalf("early complete: expected 400, got %d", w.Code)
	}

	time.Sleep(40 * time.Millisecond)
	w = s.do(t, http.MethodPost, "/api/ads/complete", token, gin.H{"sessionId": sessionID})
	if w.Code != http.StatusOK {
		t.Fatalf("complete: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := decode(t, w)["balance"]; got != 2.5 {
		t.Errorf("balance = %v, want 2.5", got)
	}

	if w := s.do(t, http.MethodPost, "/api/ads/complete", token, gin.H{"sessionId": sessionID}); w.Code != http.StatusNotFound {
		t.Errorf("second complete: expected 404, got %d", w.Code)
	}
}

func TestOTPLoginFlow(t *testing.T) {
	s := newTestServer(t, options{otp: true})

	w := s.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{"name": "Asha", "phone": "9876543210", "email": "asha@example.com"})
	if w.Code != http.StatusAccepted {
		t.Fatalf("signup: expected 202, got %d: %s", w.Code, w.Body.String())
	}
	issue := decode(t, w)

	w = s.do(t, http.MethodPost, "/api/auth/otp/verify", "", gin.H{"challengeId": issue["challengeId"], "code": "0000"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("wrong code: expected 400, got %d", w.Code)
	}

	w = s.do(t, http.MethodPost, "/api/auth/otp/verify", "", gin.H{"challengeId": issue["challengeId"], "code": issue["code"]})
	if w.Code != http.StatusOK {
		t.Fatalf("verify: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	token := decode(t, w)["token"].(string)
	if w := s.do(t, http.MethodGet, "/api/me", token, nil); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestAuthRateLimit(t *testing.T) {
	s := newTestServer(t, options{limiter: middleware.NewMemoryRateLimiter(2, time.Minute)})

	for i := 0; i < 2; i++ {
		w := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"identifier": "nobody@example.com"})
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i, w.Code)
		}
	}
	w := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"identifier": "nobody@example.com"})
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
}

func TestAdminAuditUnavailableWithoutPostgres(t *testing.T) {
	s := newTestServer(t, options{})
	admin := s.adminToken(t)
	if w := s.do(t, http.MethodGet, "/api/admin/audit", admin, nil); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}
