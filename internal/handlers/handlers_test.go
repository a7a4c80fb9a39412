package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/parkingly/parkingly-server/internal/clock"
	"github.com/parkingly/parkingly-server/internal/domain"
	"github.com/parkingly/parkingly-server/internal/qr"
	"github.com/parkingly/parkingly-server/internal/repository/memory"
	"github.com/parkingly/parkingly-server/internal/service"
	"github.com/parkingly/parkingly-server/pkg/events"
)

const testSecret = "handler-test-secret"

type apiFixture struct {
	router     chi.Router
	clk        *clock.Fake
	wallets    *memory.WalletRepository
	userToken  string
	adminToken string
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	clk := clock.NewFake(time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC))
	spots := memory.NewSpotRepository(8, domain.DefaultFirstHourRate)
	bookings := memory.NewBookingRepository()
	wallets := memory.NewWalletRepository()
	history := memory.NewHistoryRepository()
	users := memory.NewUserRepository()
	bus := events.NewNoopBus()

	parkingService := service.NewParkingService(
		spots, bookings, wallets, history, users,
		qr.NewIssuer(30*time.Minute, clk), clk, domain.DefaultPricing(), bus,
	)
	walletService := service.NewWalletService(wallets, clk, bus)
	authService := service.NewAuthService(users, testSecret, time.Hour)

	if err := service.SeedAdmin(context.Background(), users, "Operator", "admin@example.com", "admin-pass123"); err != nil {
		t.Fatalf("seeding admin: %v", err)
	}

	h := New(authService, parkingService, walletService, testSecret)
	f := &apiFixture{
		router:  h.Routes(nil),
		clk:     clk,
		wallets: wallets,
	}

	f.register(t, "Rina", "rina@example.com", "secret-pass")
	f.userToken = f.login(t, "rina@example.com", "secret-pass")
	f.adminToken = f.login(t, "admin@example.com", "admin-pass123")
	return f
}

func (f *apiFixture) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) register(t *testing.T, name, email, password string) {
	t.Helper()
	rec := f.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": password,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d, body %s", email, rec.Code, rec.Body.String())
	}
}

func (f *apiFixture) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := f.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": email, "password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d, body %s", email, rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	decode(t, rec, &resp)
	if resp.Token == "" {
		t.Fatal("login returned empty token")
	}
	return resp.Token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
}

func errCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Code string `json:"code"`
	}
	decode(t, rec, &resp)
	return resp.Code
}

func TestRegisterValidationOverHTTP(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "X", "email": "x@example.com", "password": "short",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("short password: status %d, want 400", rec.Code)
	}

	rec = f.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Rina Again", "email": "rina@example.com", "password": "secret-pass",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate email: status %d, want 409", rec.Code)
	}
	if code := errCode(t, rec); code != "EMAIL_EXISTS" {
		t.Errorf("duplicate email code = %s, want EMAIL_EXISTS", code)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "rina@example.com", "password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status %d, want 401", rec.Code)
	}
}

func TestEndpointsRequireAuth(t *testing.T) {
	f := newAPIFixture(t)

	paths := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/parking/spots"},
		{http.MethodPost, "/api/parking/book"},
		{http.MethodGet, "/api/parking/active"},
		{http.MethodGet, "/api/wallet/"},
		{http.MethodGet, "/api/admin/reports"},
	}
	for _, p := range paths {
		rec := f.do(p.method, p.path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token: status %d, want 401", p.method, p.path, rec.Code)
		}
	}
}

func TestAdminEndpointsRejectUsers(t *testing.T) {
	f := newAPIFixture(t)

	for _, path := range []string{"/api/admin/reports", "/api/admin/spots"} {
		rec := f.do(http.MethodGet, path, f.userToken, nil)
		if rec.Code != http.StatusForbidden {
			t.Errorf("GET %s as user: status %d, want 403", path, rec.Code)
		}
	}

	rec := f.do(http.MethodPost, "/api/admin/scan", f.userToken, map[string]string{
		"token": "whatever", "action": "enter",
	})
	if rec.Code != http.StatusForbidden {
		t.Errorf("POST /api/admin/scan as user: status %d, want 403", rec.Code)
	}
}

func TestSelfServiceScanAlwaysRefused(t *testing.T) {
	f := newAPIFixture(t)

	// Gate scanning never happens from the user app, not even for admins.
	for _, token := range []string{f.userToken, f.adminToken} {
		for _, path := range []string{"/api/parking/scan-entry", "/api/parking/scan-exit"} {
			rec := f.do(http.MethodPost, path, token, map[string]string{"token": "abc"})
			if rec.Code != http.StatusForbidden {
				t.Errorf("POST %s: status %d, want 403", path, rec.Code)
			}
		}
	}
}

func TestFullParkingFlowOverHTTP(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(http.MethodPost, "/api/wallet/topup", f.userToken, map[string]int64{"amount": 20000})
	if rec.Code != http.StatusOK {
		t.Fatalf("topup: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec = f.do(http.MethodPost, "/api/parking/book", f.userToken, map[string]string{"spotId": "S1"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("book: status %d, body %s", rec.Code, rec.Body.String())
	}
	var bookResp struct {
		Booking struct {
			ID     int64  `json:"id"`
			Status string `json:"status"`
			QR     struct {
				Token string `json:"token"`
			} `json:"qr"`
		} `json:"booking"`
	}
	decode(t, rec, &bookResp)
	if bookResp.Booking.Status != "pending" || bookResp.Booking.QR.Token == "" {
		t.Fatalf("unexpected booking payload: %+v", bookResp.Booking)
	}
	qrToken := bookResp.Booking.QR.Token

	// The spot list reflects the hold.
	rec = f.do(http.MethodGet, "/api/parking/spots", f.userToken, nil)
	var spotsResp struct {
		Spots []struct {
			ID          string `json:"id"`
			IsAvailable bool   `json:"isAvailable"`
		} `json:"spots"`
	}
	decode(t, rec, &spotsResp)
	for _, s := range spotsResp.Spots {
		if s.ID == "S1" && s.IsAvailable {
			t.Error("S1 still available after booking")
		}
	}

	rec = f.do(http.MethodPost, "/api/admin/scan", f.adminToken, map[string]string{
		"token": qrToken, "action": "enter",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("scan enter: status %d, body %s", rec.Code, rec.Body.String())
	}

	f.clk.Advance(90 * time.Minute)

	rec = f.do(http.MethodPost, "/api/admin/scan", f.adminToken, map[string]string{
		"token": qrToken, "action": "exit",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("scan exit: status %d, body %s", rec.Code, rec.Body.String())
	}
	var exitResp struct {
		Cost    int64 `json:"cost"`
		Booking struct {
			Status        string `json:"status"`
			DurationHours int    `json:"durationHours"`
		} `json:"booking"`
	}
	decode(t, rec, &exitResp)
	if exitResp.Cost != 15000 || exitResp.Booking.DurationHours != 2 {
		t.Errorf("exit settled (%d, %dh), want (15000, 2h)", exitResp.Cost, exitResp.Booking.DurationHours)
	}
	if exitResp.Booking.Status != "completed" {
		t.Errorf("status after exit = %s, want completed", exitResp.Booking.Status)
	}

	rec = f.do(http.MethodGet, "/api/wallet/", f.userToken, nil)
	var walletResp struct {
		Balance int64 `json:"balance"`
	}
	decode(t, rec, &walletResp)
	if walletResp.Balance != 5000 {
		t.Errorf("balance = %d, want 5000", walletResp.Balance)
	}

	rec = f.do(http.MethodGet, "/api/parking/history", f.userToken, nil)
	var historyResp struct {
		History []struct {
			SpotName string `json:"spotName"`
			Cost     int64  `json:"cost"`
		} `json:"history"`
	}
	decode(t, rec, &historyResp)
	if len(historyResp.History) != 1 || historyResp.History[0].Cost != 15000 {
		t.Fatalf("history = %+v, want one 15000 entry", historyResp.History)
	}

	rec = f.do(http.MethodGet, "/api/admin/reports", f.adminToken, nil)
	var reports struct {
		TodayRevenue int64 `json:"todayRevenue"`
		TodayExits   int   `json:"todayExits"`
	}
	decode(t, rec, &reports)
	if reports.TodayRevenue != 15000 || reports.TodayExits != 1 {
		t.Errorf("reports = %+v, want todayRevenue=15000 todayExits=1", reports)
	}
}

func TestExpiredBookingOverHTTP(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(http.MethodPost, "/api/parking/book", f.userToken, map[string]string{"spotId": "S2"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("book: status %d", rec.Code)
	}

	f.clk.Advance(31 * time.Minute)

	rec = f.do(http.MethodGet, "/api/parking/active", f.userToken, nil)
	var activeResp struct {
		Booking *struct {
			Status string `json:"status"`
		} `json:"booking"`
	}
	decode(t, rec, &activeResp)
	if activeResp.Booking == nil || activeResp.Booking.Status != "expired" {
		t.Fatalf("active after 31m = %+v, want status expired", activeResp.Booking)
	}

	// The expired booking is terminal; the next read comes back empty.
	rec = f.do(http.MethodGet, "/api/parking/active", f.userToken, nil)
	activeResp.Booking = nil
	decode(t, rec, &activeResp)
	if activeResp.Booking != nil {
		t.Errorf("second active read = %+v, want null", activeResp.Booking)
	}
}

func TestBookValidationOverHTTP(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(http.MethodPost, "/api/parking/book", f.userToken, map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing spotId: status %d, want 400", rec.Code)
	}

	rec = f.do(http.MethodPost, "/api/parking/book", f.userToken, map[string]string{"spotId": "S99"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown spot: status %d, want 404", rec.Code)
	}

	rec = f.do(http.MethodPost, "/api/parking/book", f.userToken, map[string]string{"spotId": "S5"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("restricted spot: status %d, want 400", rec.Code)
	}
	if code := errCode(t, rec); code != "SPOT_NOT_BOOKABLE" {
		t.Errorf("restricted spot code = %s, want SPOT_NOT_BOOKABLE", code)
	}
}

func TestCancelWithoutBookingOverHTTP(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(http.MethodPost, "/api/parking/cancel", f.userToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status %d, want 404", rec.Code)
	}
	if code := errCode(t, rec); code != "NO_CANCELLABLE_BOOKING" {
		t.Errorf("code = %s, want NO_CANCELLABLE_BOOKING", code)
	}
}

func TestTopUpValidationOverHTTP(t *testing.T) {
	f := newAPIFixture(t)

	for _, amount := range []int64{0, -500} {
		rec := f.do(http.MethodPost, "/api/wallet/topup", f.userToken, map[string]int64{"amount": amount})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("topup %d: status %d, want 400", amount, rec.Code)
		}
	}
}

func TestScanRejectsUnknownAction(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(http.MethodPost, "/api/admin/scan", f.adminToken, map[string]string{
		"token": "abc", "action": "teleport",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status %d, want 400", rec.Code)
	}
}

func TestInsufficientBalanceOverHTTP(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(http.MethodPost, "/api/parking/book", f.userToken, map[string]string{"spotId": "S1"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("book: status %d", rec.Code)
	}
	var bookResp struct {
		Booking struct {
			QR struct {
				Token string `json:"token"`
			} `json:"qr"`
		} `json:"booking"`
	}
	decode(t, rec, &bookResp)

	rec = f.do(http.MethodPost, "/api/admin/scan", f.adminToken, map[string]string{
		"token": bookResp.Booking.QR.Token, "action": "enter",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("scan enter: status %d", rec.Code)
	}

	rec = f.do(http.MethodPost, "/api/admin/scan", f.adminToken, map[string]string{
		"token": bookResp.Booking.QR.Token, "action": "exit",
	})
	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("exit with empty wallet: status %d, want 402, body %s", rec.Code, rec.Body.String())
	}
	if code := errCode(t, rec); code != "INSUFFICIENT_BALANCE" {
		t.Errorf("code = %s, want INSUFFICIENT_BALANCE", code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("healthz: status %d, want 200", rec.Code)
	}
}
