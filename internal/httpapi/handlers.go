package httpapi

import (
	"errors"
	"net/http"
	"time"

	"photohire-backend/internal/account"
	"photohire-backend/internal/auth"
	"photohire-backend/internal/booking"
	"photohire-backend/internal/chat"
	"photohire-backend/internal/dashboard"
	"photohire-backend/internal/photographer"
	"photohire-backend/internal/realtime"
	"photohire-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

type Handlers struct {
	Auth          *auth.Manager
	Google        *auth.GoogleVerifier
	Refresher     *auth.Refresher
	Accounts      *account.Service
	Bookings      *booking.Service
	Photographers photographer.Store
	Chat          *chat.Service
	Stats         *dashboard.StatsService
	Hub           *realtime.Hub
}

// --- Views ---
// Domain models carry no JSON tags; the wire shapes live here.

type accountView struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	UserType string `json:"user_type"`
	IsActive bool   `json:"is_active"`
	IsAdmin  bool   `json:"is_admin"`
}

func newAccountView(a account.Account) accountView {
	return accountView{
		ID:       a.ID,
		Email:    a.Email,
		FullName: a.FullName,
		UserType: string(a.UserType),
		IsActive: a.IsActive,
		IsAdmin:  a.IsAdmin,
	}
}

type bookingView struct {
	ID             string           `json:"id"`
	CustomerID     string           `json:"customer_id"`
	PhotographerID string           `json:"photographer_id"`
	BookingDate    time.Time        `json:"booking_date"`
	DurationHours  float64          `json:"duration_hours"`
	Status         string           `json:"status"`
	Location       booking.Location `json:"location"`
	TotalAmount    float64          `json:"total_amount"`
	Notes          string           `json:"notes,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

func newBookingView(b booking.Booking) bookingView {
	return bookingView{
		ID:             b.ID,
		CustomerID:     b.CustomerID,
		PhotographerID: b.PhotographerID,
		BookingDate:    b.BookingDate,
		DurationHours:  b.DurationHours,
		Status:         string(b.Status),
		Location:       b.Location,
		TotalAmount:    b.TotalAmount,
		Notes:          b.Notes,
		CreatedAt:      b.CreatedAt,
	}
}

type profileView struct {
	UserID          string                 `json:"user_id"`
	PortfolioURLs   []string               `json:"portfolio_urls"`
	Specialties     []string               `json:"specialties"`
	HourlyRate      float64                `json:"hourly_rate"`
	City            string                 `json:"city"`
	CurrentLocation *photographer.GeoPoint `json:"current_location,omitempty"`
	Rating          *float64               `json:"rating,omitempty"`
	TotalBookings   int                    `json:"total_bookings"`
}

func newProfileView(p photographer.Profile) profileView {
	return profileView{
		UserID:          p.UserID,
		PortfolioURLs:   p.PortfolioURLs,
		Specialties:     p.Specialties,
		HourlyRate:      p.HourlyRate,
		City:            p.City,
		CurrentLocation: p.CurrentLocation,
		Rating:          p.Rating,
		TotalBookings:   p.TotalBookings,
	}
}

type messageView struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Message    string    `json:"message"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
}

func newMessageView(m chat.Message) messageView {
	return messageView{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Message:    m.Body,
		IsRead:     m.IsRead,
		CreatedAt:  m.CreatedAt,
	}
}

// --- Auth ---

type registerRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
	UserType string `json:"user_type"`
}

func (h Handlers) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	a, err := h.Accounts.Register(c.Request.Context(), account.RegisterInput{
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
		UserType: account.UserType(req.UserType),
	})
	if err != nil {
		if errors.Is(err, account.ErrEmailTaken) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Photographers get an empty profile to fill in later; listing and
	// location updates need the row to exist.
	if a.UserType == account.UserTypePhotographer {
		p := photographer.Profile{
			UserID:        a.ID,
			PortfolioURLs: []string{},
			Specialties:   []string{},
			CreatedAt:     a.CreatedAt,
			UpdatedAt:     a.CreatedAt,
		}
		if err := h.Photographers.Create(c.Request.Context(), p); err != nil {
			logger.FromGin(c).Warn("photographer profile not provisioned", "user_id", a.ID, "err", err)
		}
	}
	c.JSON(http.StatusCreated, newAccountView(a))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies the password and issues a token pair. Unknown email and
// wrong password surface as the same rejection.
func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	a, err := h.Accounts.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, account.ErrInvalidCredentials) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "incorrect email or password"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), a.Email, a.IsAdmin)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, pair)
}

type googleLoginRequest struct {
	IDToken string `json:"id_token"`
}

// GoogleLogin exchanges a verified Google ID token for a platform token
// pair, provisioning a customer account on first sign-in.
func (h Handlers) GoogleLogin(c *gin.Context) {
	if h.Google == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "google sign-in not configured"})
		return
	}
	var req googleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IDToken == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "id_token required"})
		return
	}
	claims, err := h.Google.Verify(c.Request.Context(), req.IDToken)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid google token"})
		return
	}
	a, err := h.Accounts.FindOrCreateByIdentity(c.Request.Context(), claims.Email, claims.FullName)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "sign-in failed"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), a.Email, a.IsAdmin)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, pair)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h Handlers) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "refresh_token required"})
		return
	}
	pair, err := h.Refresher.Exchange(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (h Handlers) Me(c *gin.Context) {
	a, ok := auth.AccountFromGin(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
		return
	}
	c.JSON(http.StatusOK, newAccountView(a))
}

// --- Photographers ---

func (h Handlers) ListPhotographers(c *gin.Context) {
	profiles, err := h.Photographers.ListByCity(c.Request.Context(), c.Query("city"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
		return
	}
	views := make([]profileView, 0, len(profiles))
	for _, p := range profiles {
		views = append(views, newProfileView(p))
	}
	c.JSON(http.StatusOK, views)
}

func (h Handlers) GetPhotographer(c *gin.Context) {
	p, err := h.Photographers.GetByUserID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, photographer.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "photographer not found"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, newProfileView(p))
}

type updateLocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// UpdateLocation persists the caller's position and mirrors it to the
// realtime location room.
func (h Handlers) UpdateLocation(c *gin.Context) {
	a, ok := auth.AccountFromGin(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
		return
	}
	if a.UserType != account.UserTypePhotographer {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "only photographers publish locations"})
		return
	}
	var req updateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	loc := photographer.GeoPoint{Latitude: req.Latitude, Longitude: req.Longitude}
	if err := h.Photographers.UpdateLocation(c.Request.Context(), a.ID, loc); err != nil {
		if errors.Is(err, photographer.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "photographer profile not found"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "location update failed"})
		return
	}
	if h.Hub != nil {
		h.Hub.BroadcastLocation(a.ID, req.Latitude, req.Longitude)
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// --- Bookings ---

type createBookingRequest struct {
	PhotographerID string           `json:"photographer_id"`
	BookingDate    time.Time        `json:"booking_date"`
	DurationHours  float64          `json:"duration_hours"`
	Location       booking.Location `json:"location"`
	TotalAmount    float64          `json:"total_amount"`
	Notes          string           `json:"notes"`
}

func (h Handlers) CreateBooking(c *gin.Context) {
	a, ok := auth.AccountFromGin(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	b, err := h.Bookings.Create(c.Request.Context(), booking.CreateInput{
		CustomerID:     a.ID,
		PhotographerID: req.PhotographerID,
		BookingDate:    req.BookingDate,
		DurationHours:  req.DurationHours,
		Location:       req.Location,
		TotalAmount:    req.TotalAmount,
		Notes:          req.Notes,
	})
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, newBookingView(b))
}

func (h Handlers) GetBooking(c *gin.Context) {
	a, ok := auth.AccountFromGin(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
		return
	}
	b, err := h.Bookings.Get(c.Request.Context(), c.Param("id"), a.ID)
	if err != nil {
		h.abortBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingView(b))
}

type updateBookingStatusRequest struct {
	Status string `json:"status"`
}

func (h Handlers) UpdateBookingStatus(c *gin.Context) {
	a, ok := auth.AccountFromGin(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
		return
	}
	var req updateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	b, err := h.Bookings.Transition(c.Request.Context(), c.Param("id"), a.ID, booking.Status(req.Status))
	if err != nil {
		h.abortBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingView(b))
}

func (h Handlers) abortBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, booking.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "booking not found"})
	case errors.Is(err, booking.ErrNotParticipant):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not a participant of this booking"})
	case errors.Is(err, booking.ErrBadTransition):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrInvalidInput), errors.Is(err, booking.ErrDateInPast):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "booking operation failed"})
	}
}

// --- Chat ---

type sendMessageRequest struct {
	ReceiverID string `json:"receiver_id"`
	Message    string `json:"message"`
}

// SendMessage is the REST fallback for clients without a live realtime
// connection: persist first, then best-effort live delivery.
func (h Handlers) SendMessage(c *gin.Context) {
	a, ok := auth.AccountFromGin(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
		return
	}
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	m, err := h.Chat.Save(c.Request.Context(), a.ID, req.ReceiverID, req.Message)
	if err != nil {
		if errors.Is(err, chat.ErrInvalidMessage) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "receiver_id and message required"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "message not sent"})
		return
	}
	if h.Hub != nil {
		h.Hub.SendMessage(m.SenderID, m.ReceiverID, m.Body)
	}
	c.JSON(http.StatusCreated, newMessageView(m))
}

func (h Handlers) ChatHistory(c *gin.Context) {
	a, ok := auth.AccountFromGin(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
		return
	}
	msgs, err := h.Chat.History(c.Request.Context(), a.ID, c.Param("peer_id"), 50)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "history lookup failed"})
		return
	}
	views := make([]messageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, newMessageView(m))
	}
	c.JSON(http.StatusOK, views)
}

// --- Dashboard (admin only, gated in routes) ---

func (h Handlers) DashboardStats(c *gin.Context) {
	stats, err := h.Stats.PlatformStats(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "stats unavailable"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h Handlers) BookingMetrics(c *gin.Context) {
	m, err := h.Stats.BookingMetrics(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "metrics unavailable"})
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h Handlers) PhotographerMetrics(c *gin.Context) {
	m, err := h.Stats.PhotographerMetrics(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "metrics unavailable"})
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h Handlers) UserActivity(c *gin.Context) {
	a, err := h.Stats.UserActivity(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "activity unavailable"})
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h Handlers) RevenueChart(c *gin.Context) {
	series, err := h.Stats.RevenueChart(c.Request.Context(), c.DefaultQuery("timeframe", "week"))
	if err != nil {
		if errors.Is(err, dashboard.ErrInvalidTimeframe) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "timeframe must be week, month or year"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "revenue unavailable"})
		return
	}
	c.JSON(http.StatusOK, series)
}
