package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"photohire-backend/internal/account"
	"photohire-backend/internal/auth"
	"photohire-backend/internal/booking"
	"photohire-backend/internal/chat"
	"photohire-backend/internal/config"
	"photohire-backend/internal/photographer"

	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T) (*gin.Engine, *account.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	manager, err := auth.NewManager(config.AuthConfig{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  30 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}

	accountStore := account.NewMemoryStore()
	h := Handlers{
		Auth:          manager,
		Refresher:     auth.NewRefresher(manager, accountStore),
		Accounts:      account.NewService(accountStore, auth.Hasher{Cost: 4}),
		Bookings:      booking.NewService(booking.NewMemoryStore(), nil, log),
		Photographers: photographer.NewMemoryStore(),
		Chat:          chat.NewService(chat.NewMemoryStore()),
	}

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.Refresh)

	v1 := r.Group("/v1")
	v1.Use(auth.RequireAccessToken(manager, accountStore), auth.RequireActiveAccount())
	{
		v1.GET("/me", h.Me)
		v1.GET("/photographers", h.ListPhotographers)
		v1.GET("/photographers/:id", h.GetPhotographer)
		v1.POST("/bookings", h.CreateBooking)
		v1.GET("/bookings/:id", h.GetBooking)
		v1.PATCH("/bookings/:id/status", h.UpdateBookingStatus)
		v1.POST("/chat/send", h.SendMessage)
		v1.GET("/chat/:peer_id", h.ChatHistory)
	}
	return r, accountStore
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
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
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

// register a user and log them in, returning the access token.
func loginAs(t *testing.T, r *gin.Engine, email, userType string) (string, string) {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/auth/register", "", gin.H{
		"email":     email,
		"full_name": "Test User",
		"password":  "hunter22",
		"user_type": userType,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", email, w.Code, w.Body.String())
	}
	id := decode[map[string]any](t, w)["id"].(string)

	w = doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{"email": email, "password": "hunter22"})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", email, w.Code, w.Body.String())
	}
	pair := decode[auth.TokenPair](t, w)
	if pair.TokenType != auth.TokenType {
		t.Fatalf("token_type = %q", pair.TokenType)
	}
	return pair.AccessToken, id
}

func TestRegisterLoginMe(t *testing.T) {
	r, _ := newTestRouter(t)
	token, _ := loginAs(t, r, "alice@example.com", "customer")

	w := doJSON(t, r, http.MethodGet, "/v1/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me: status %d body %s", w.Code, w.Body.String())
	}
	me := decode[map[string]any](t, w)
	if me["email"] != "alice@example.com" || me["user_type"] != "customer" {
		t.Fatalf("unexpected me payload: %v", me)
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	r, _ := newTestRouter(t)
	loginAs(t, r, "alice@example.com", "customer")

	w := doJSON(t, r, http.MethodPost, "/auth/register", "", gin.H{
		"email":     "alice@example.com",
		"full_name": "Other",
		"password":  "hunter22",
		"user_type": "customer",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	r, _ := newTestRouter(t)
	loginAs(t, r, "alice@example.com", "customer")

	w := doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{"email": "alice@example.com", "password": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestBookingLifecycleOverHTTP(t *testing.T) {
	r, _ := newTestRouter(t)
	customerToken, _ := loginAs(t, r, "customer@example.com", "customer")
	photographerToken, photographerID := loginAs(t, r, "photo@example.com", "photographer")

	w := doJSON(t, r, http.MethodPost, "/v1/bookings", customerToken, gin.H{
		"photographer_id": photographerID,
		"booking_date":    time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"duration_hours":  2,
		"location":        gin.H{"latitude": 52.52, "longitude": 13.405},
		"total_amount":    240,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create booking: status %d body %s", w.Code, w.Body.String())
	}
	created := decode[map[string]any](t, w)
	id := created["id"].(string)
	if created["status"] != "pending" {
		t.Fatalf("new booking status = %v", created["status"])
	}

	// The photographer confirms.
	w = doJSON(t, r, http.MethodPatch, "/v1/bookings/"+id+"/status", photographerToken, gin.H{"status": "confirmed"})
	if w.Code != http.StatusOK {
		t.Fatalf("confirm: status %d body %s", w.Code, w.Body.String())
	}

	// Completed bookings cannot be re-confirmed.
	w = doJSON(t, r, http.MethodPatch, "/v1/bookings/"+id+"/status", photographerToken, gin.H{"status": "completed"})
	if w.Code != http.StatusOK {
		t.Fatalf("complete: status %d body %s", w.Code, w.Body.String())
	}
	w = doJSON(t, r, http.MethodPatch, "/v1/bookings/"+id+"/status", photographerToken, gin.H{"status": "confirmed"})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 on terminal transition, got %d", w.Code)
	}

	// A third party cannot read the booking.
	outsiderToken, _ := loginAs(t, r, "outsider@example.com", "customer")
	w = doJSON(t, r, http.MethodGet, "/v1/bookings/"+id, outsiderToken, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-participant, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/v1/bookings/"+id, customerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("participant get: status %d", w.Code)
	}
}

func TestChatSendAndHistory(t *testing.T) {
	r, _ := newTestRouter(t)
	aliceToken, _ := loginAs(t, r, "alice@example.com", "customer")
	bobToken, bobID := loginAs(t, r, "bob@example.com", "photographer")

	for i := 0; i < 3; i++ {
		w := doJSON(t, r, http.MethodPost, "/v1/chat/send", aliceToken, gin.H{
			"receiver_id": bobID,
			"message":     fmt.Sprintf("hello %d", i),
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("send %d: status %d body %s", i, w.Code, w.Body.String())
		}
	}

	w := doJSON(t, r, http.MethodGet, "/v1/me", bobToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me: %d", w.Code)
	}
	aliceID := ""
	{
		// Resolve alice's id from her own /me.
		w := doJSON(t, r, http.MethodGet, "/v1/me", aliceToken, nil)
		aliceID = decode[map[string]any](t, w)["id"].(string)
	}

	w = doJSON(t, r, http.MethodGet, "/v1/chat/"+aliceID, bobToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("history: status %d body %s", w.Code, w.Body.String())
	}
	msgs := decode[[]map[string]any](t, w)
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	// Newest first.
	if msgs[0]["message"] != "hello 2" {
		t.Fatalf("expected newest first, got %v", msgs[0]["message"])
	}
}

func TestPhotographerNotFound(t *testing.T) {
	r, _ := newTestRouter(t)
	token, _ := loginAs(t, r, "alice@example.com", "customer")

	w := doJSON(t, r, http.MethodGet, "/v1/photographers/nope", token, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
