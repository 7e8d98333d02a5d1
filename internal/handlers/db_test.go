package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/BruksfildServices01/hospital-device-booking/internal/audit"
	"github.com/BruksfildServices01/hospital-device-booking/internal/auth"
	"github.com/BruksfildServices01/hospital-device-booking/internal/config"
	"github.com/BruksfildServices01/hospital-device-booking/internal/db"
	"github.com/BruksfildServices01/hospital-device-booking/internal/httperr"
	"github.com/BruksfildServices01/hospital-device-booking/internal/models"
)

func liveDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Skipf("skip: db not available: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

// seedUser stores an active user whose email is unique to the test run.
func seedUser(t *testing.T, gdb *gorm.DB, name, password string) *models.User {
	t.Helper()
	hashed, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &models.User{
		Email:        uuid.NewString() + "@test.local",
		Name:         name,
		PasswordHash: hashed,
		Role:         "user",
		Group:        "default",
		IsActive:     true,
	}
	if err := gdb.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() {
		gdb.Where("user_id = ?", u.ID).Delete(&models.DeviceBooking{})
		gdb.Delete(&models.User{}, u.ID)
	})
	return u
}

func seedDevice(t *testing.T, gdb *gorm.DB) *models.Device {
	t.Helper()
	code := "dev-" + uuid.NewString()[:8]
	d := &models.Device{Code: &code, Name: "Ultrasound"}
	if err := gdb.Create(d).Error; err != nil {
		t.Fatalf("create device: %v", err)
	}
	t.Cleanup(func() {
		gdb.Where("device_id = ?", d.ID).Delete(&models.DeviceBooking{})
		gdb.Delete(&models.Device{}, d.ID)
	})
	return d
}

func seedBooking(t *testing.T, gdb *gorm.DB, d *models.Device, u *models.User, status string) *models.DeviceBooking {
	t.Helper()
	b := &models.DeviceBooking{
		DeviceID:    d.ID,
		DeviceName:  d.Name,
		UserID:      u.ID,
		AccountName: u.Name,
		CodeBA:      "BA-001",
		NameBA:      "Tran",
		UsageDay:    "2024-06-01",
		UsageTime:   "08:00-09:00",
		Priority:    "normal",
		Status:      status,
	}
	if err := gdb.Create(b).Error; err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return b
}

func testAuthHandler(gdb *gorm.DB) *AuthHandler {
	cfg := &config.Config{Env: "test", JWTSecret: "secret"}
	issuer := auth.NewIssuer(cfg.JWTSecret, 15*time.Minute, 24*time.Hour)
	format := audit.NewFormatter(audit.DefaultLabels(), audit.DefaultLocale)
	return NewAuthHandler(gdb, cfg, issuer, audit.Nop, format)
}

func postJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, into any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	if err := json.Unmarshal(env.Data, into); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

func TestUserHandler_ResetPasswordThenLogin(t *testing.T) {
	gdb := liveDB(t)
	target := seedUser(t, gdb, "Alice", "old-password")

	format := audit.NewFormatter(audit.DefaultLabels(), audit.DefaultLocale)
	users := NewUserHandler(gdb, audit.Nop, format, "", false)
	authH := testAuthHandler(gdb)

	r := gin.New()
	r.POST("/users/:id/reset-password", as(1, "admin"), users.ResetPassword)
	r.POST("/auth/login", authH.Login)

	path := "/users/" + strconv.FormatUint(uint64(target.ID), 10) + "/reset-password"
	w := postJSON(r, http.MethodPost, path, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("reset status = %d, body %s", w.Code, w.Body.String())
	}

	var reset struct {
		UserID   uint   `json:"userId"`
		Password string `json:"password"`
	}
	decodeData(t, w, &reset)
	if reset.UserID != target.ID || len(reset.Password) != auth.GeneratedPasswordLength {
		t.Fatalf("reset = %+v", reset)
	}

	var stored models.User
	if err := gdb.First(&stored, target.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.PasswordHash == reset.Password {
		t.Fatal("plaintext password was stored")
	}
	if !auth.VerifyPassword(stored.PasswordHash, reset.Password) {
		t.Error("stored hash does not match the returned password")
	}
	if auth.VerifyPassword(stored.PasswordHash, "old-password") {
		t.Error("old password still verifies")
	}
	if stored.RefreshToken != nil {
		t.Error("reset kept the old session")
	}

	tests := []struct {
		name     string
		password string
		want     int
	}{
		{"old password", "old-password", http.StatusUnauthorized},
		{"new password", reset.Password, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(r, http.MethodPost, "/auth/login", LoginRequest{Email: target.Email, Password: tt.password})
			if w.Code != tt.want {
				t.Fatalf("login status = %d, want %d, body %s", w.Code, tt.want, w.Body.String())
			}
			if tt.want != http.StatusOK {
				return
			}
			var session struct {
				AccessToken  string `json:"accessToken"`
				RefreshToken string `json:"refreshToken"`
			}
			decodeData(t, w, &session)
			if session.AccessToken == "" || session.RefreshToken == "" {
				t.Errorf("session = %+v", session)
			}
		})
	}
}

func TestAuthHandler_RefreshTokenReuseEndsSession(t *testing.T) {
	gdb := liveDB(t)
	u := seedUser(t, gdb, "Alice", "secret-pw")

	authH := testAuthHandler(gdb)
	r := gin.New()
	r.POST("/auth/login", authH.Login)
	r.POST("/auth/refresh-token", authH.Refresh)

	w := postJSON(r, http.MethodPost, "/auth/login", LoginRequest{Email: u.Email, Password: "secret-pw"})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d", w.Code)
	}
	var first auth.Pair
	decodeData(t, w, &first)

	w = postJSON(r, http.MethodPost, "/auth/refresh-token", RefreshRequest{RefreshToken: first.RefreshToken})
	if w.Code != http.StatusOK {
		t.Fatalf("refresh status = %d, body %s", w.Code, w.Body.String())
	}

	w = postJSON(r, http.MethodPost, "/auth/refresh-token", RefreshRequest{RefreshToken: first.RefreshToken})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("reuse status = %d, want 401", w.Code)
	}

	var stored models.User
	gdb.First(&stored, u.ID)
	if stored.RefreshToken != nil {
		t.Error("session survived refresh token reuse")
	}
}

func TestDeleteDevice(t *testing.T) {
	gdb := liveDB(t)
	owner := seedUser(t, gdb, "Alice", "secret-pw")

	tests := []struct {
		name     string
		bookings []string
		wantCode string
	}{
		{"never booked", nil, ""},
		{"pending booking", []string{"pending"}, "device_in_use"},
		{"approved booking", []string{"approved"}, "device_in_use"},
		{"only history", []string{"rejected", "completed"}, "device_in_use"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := seedDevice(t, gdb)
			for _, st := range tt.bookings {
				seedBooking(t, gdb, d, owner, st)
			}

			err := deleteDevice(gdb, d.ID)

			var count int64
			gdb.Model(&models.DeviceBooking{}).Where("device_id = ?", d.ID).Count(&count)
			if count != int64(len(tt.bookings)) {
				t.Errorf("bookings left = %d, want %d", count, len(tt.bookings))
			}

			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("deleteDevice() error = %v", err)
				}
				if gdb.First(&models.Device{}, d.ID).Error == nil {
					t.Error("device still exists")
				}
				return
			}
			if !httperr.IsBusiness(err, tt.wantCode) {
				t.Fatalf("deleteDevice() error = %v, want %s", err, tt.wantCode)
			}
			if gdb.First(&models.Device{}, d.ID).Error != nil {
				t.Error("refused delete removed the device")
			}
		})
	}
}

func TestRenameSyncsBookingAccountName(t *testing.T) {
	gdb := liveDB(t)
	format := audit.NewFormatter(audit.DefaultLabels(), audit.DefaultLocale)

	tests := []struct {
		name  string
		route func(u *models.User) (*gin.Engine, string)
	}{
		{
			name: "admin update",
			route: func(u *models.User) (*gin.Engine, string) {
				r := gin.New()
				r.PUT("/users/:id", as(1, "admin"), NewUserHandler(gdb, audit.Nop, format, "", false).Update)
				return r, "/users/" + strconv.FormatUint(uint64(u.ID), 10)
			},
		},
		{
			name: "own profile",
			route: func(u *models.User) (*gin.Engine, string) {
				r := gin.New()
				r.PUT("/auth/profile", as(u.ID, "user"), NewMeHandler(gdb, audit.Nop, format, false).UpdateMe)
				return r, "/auth/profile"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := seedUser(t, gdb, "Alice", "secret-pw")
			other := seedUser(t, gdb, "Bob", "secret-pw")
			d := seedDevice(t, gdb)
			mine := seedBooking(t, gdb, d, u, "pending")
			theirs := seedBooking(t, gdb, d, other, "pending")

			r, path := tt.route(u)
			w := postJSON(r, http.MethodPut, path, gin.H{"name": "  Alice Nguyen "})
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
			}

			var got models.DeviceBooking
			gdb.First(&got, mine.ID)
			if got.AccountName != "Alice Nguyen" {
				t.Errorf("accountName = %q", got.AccountName)
			}
			gdb.First(&got, theirs.ID)
			if got.AccountName != "Bob" {
				t.Errorf("other user's booking renamed to %q", got.AccountName)
			}
		})
	}
}
