package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"photohire-backend/internal/account"

	"github.com/gin-gonic/gin"
)

func seedAccount(t *testing.T, store *account.MemoryStore, a account.Account) {
	t.Helper()
	if err := store.Create(context.Background(), a); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func protectedRouter(m *Manager, store *account.MemoryStore, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{RequireAccessToken(m, store)}, extra...)
	handlers = append(handlers, func(c *gin.Context) { c.Status(200) })
	r.GET("/x", handlers...)
	return r
}

func doGet(r *gin.Engine, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAccessToken_MissingHeader(t *testing.T) {
	m := newTestManager(t)
	r := protectedRouter(m, account.NewMemoryStore())
	if w := doGet(r, ""); w.Code != 401 {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireAccessToken_RefreshTokenRejected(t *testing.T) {
	m := newTestManager(t)
	store := account.NewMemoryStore()
	seedAccount(t, store, account.Account{ID: "1", Email: "a@example.com", IsActive: true})

	pair, err := m.IssuePair(time.Now(), "a@example.com", false)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	r := protectedRouter(m, store)
	if w := doGet(r, pair.RefreshToken); w.Code != 401 {
		t.Fatalf("expected 401 for refresh token on access endpoint, got %d", w.Code)
	}
	if w := doGet(r, pair.AccessToken); w.Code != 200 {
		t.Fatalf("expected 200 for access token, got %d", w.Code)
	}
}

func TestRequireAccessToken_UnknownSubjectLooksLikeBadToken(t *testing.T) {
	m := newTestManager(t)
	store := account.NewMemoryStore()

	pair, err := m.IssuePair(time.Now(), "ghost@example.com", false)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	r := protectedRouter(m, store)
	w := doGet(r, pair.AccessToken)
	if w.Code != 401 {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	// Same body as an invalid signature, so callers cannot probe for emails.
	if got := w.Body.String(); got != `{"error":"could not validate credentials"}` {
		t.Fatalf("unexpected body: %s", got)
	}
}

func TestRequireActiveAccount_InactiveRejected(t *testing.T) {
	m := newTestManager(t)
	store := account.NewMemoryStore()
	seedAccount(t, store, account.Account{ID: "1", Email: "a@example.com", IsActive: false})

	pair, _ := m.IssuePair(time.Now(), "a@example.com", false)

	r := protectedRouter(m, store, RequireActiveAccount())
	if w := doGet(r, pair.AccessToken); w.Code != 400 {
		t.Fatalf("expected 400 for inactive account, got %d", w.Code)
	}
}

func TestRequireAdmin_UsesTokenSnapshot(t *testing.T) {
	m := newTestManager(t)
	store := account.NewMemoryStore()
	seedAccount(t, store, account.Account{ID: "1", Email: "a@example.com", IsActive: true})

	plain, _ := m.IssuePair(time.Now(), "a@example.com", false)
	admin, _ := m.IssuePair(time.Now(), "a@example.com", true)

	r := protectedRouter(m, store, RequireActiveAccount(), RequireAdmin())
	if w := doGet(r, plain.AccessToken); w.Code != 403 {
		t.Fatalf("expected 403 for non-admin token, got %d", w.Code)
	}
	if w := doGet(r, admin.AccessToken); w.Code != 200 {
		t.Fatalf("expected 200 for admin token, got %d", w.Code)
	}
}

// Full lifecycle: login-shaped issuance, forbidden admin call, elevation in
// the store, then refresh picks up the new admin flag.
func TestAdminElevationVisibleAfterRefresh(t *testing.T) {
	m := newTestManager(t)
	store := account.NewMemoryStore()
	seedAccount(t, store, account.Account{
		ID: "1", Email: "alice@example.com", UserType: account.UserTypeCustomer, IsActive: true,
	})

	pair, err := m.IssuePair(time.Now(), "alice@example.com", false)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	r := protectedRouter(m, store, RequireActiveAccount(), RequireAdmin())
	if w := doGet(r, pair.AccessToken); w.Code != 403 {
		t.Fatalf("expected 403 before elevation, got %d", w.Code)
	}

	a, _ := store.FindByEmail(context.Background(), "alice@example.com")
	a.IsAdmin = true
	if err := store.Update(context.Background(), a); err != nil {
		t.Fatalf("update: %v", err)
	}

	fresh, err := NewRefresher(m, store).Exchange(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if w := doGet(r, fresh.AccessToken); w.Code != 200 {
		t.Fatalf("expected 200 after refresh with elevated account, got %d", w.Code)
	}
}
