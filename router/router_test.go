package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/hotel-backoffice/config"
	"github.com/yeremiapane/hotel-backoffice/controllers"
	"github.com/yeremiapane/hotel-backoffice/database"
	"github.com/yeremiapane/hotel-backoffice/hub"
	"github.com/yeremiapane/hotel-backoffice/services"
	"github.com/yeremiapane/hotel-backoffice/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	adminEmail    = "admin@hotel.test"
	adminPassword = "supersecret"
)

// setupRouter builds the full engine on an in-memory database seeded with
// an admin and the default room types.
func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	controllers.RegisterValidators()
	utils.ConfigureJWT("router-test-secret", time.Hour)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))
	require.NoError(t, database.Seed(db, database.SeedOptions{AdminEmail: adminEmail, AdminPassword: adminPassword}))

	events := hub.New()
	svc := services.New(db, services.Options{TaxRate: 0.10, InvoiceDueDays: 7, Events: events})
	return SetupRouter(Deps{Services: svc, Hub: events, DB: db, Config: config.Default()})
}

func call(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w.Code, resp
}

func data(resp map[string]interface{}) map[string]interface{} {
	d, _ := resp["data"].(map[string]interface{})
	return d
}

func id(m map[string]interface{}) string {
	return strconv.Itoa(int(m["id"].(float64)))
}

func login(t *testing.T, r *gin.Engine, email, password string) string {
	t.Helper()
	code, resp := call(t, r, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, code, resp["message"])
	assert.Equal(t, "Login successful", resp["message"])
	token, _ := data(resp)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func register(t *testing.T, r *gin.Engine, name, email string) {
	t.Helper()
	code, resp := call(t, r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "guestpass1",
	})
	require.Equal(t, http.StatusCreated, code, resp["message"])
	assert.Equal(t, "Guest", data(resp)["role"])
}

func TestOperationsRoutes(t *testing.T) {
	r := setupRouter(t)

	code, resp := call(t, r, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "pong", resp["message"])

	code, resp = call(t, r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", resp["status"])
	checks := resp["checks"].(map[string]interface{})
	assert.Equal(t, "ok", checks["database"])
	assert.EqualValues(t, 0, checks["live_clients"])

	code, resp = call(t, r, http.MethodGet, "/api/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "route not found", resp["message"])

	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestAuthenticationAndRoleGating(t *testing.T) {
	r := setupRouter(t)
	register(t, r, "Gina Guest", "gina@guest.test")

	code, resp := call(t, r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Gina Again", "email": "gina@guest.test", "password": "guestpass1",
	})
	assert.Equal(t, http.StatusConflict, code, resp["message"])

	code, resp = call(t, r, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "gina@guest.test", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid credentials", resp["message"])

	token := login(t, r, "gina@guest.test", "guestpass1")

	code, resp = call(t, r, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Authorization header missing", resp["message"])

	code, _ = call(t, r, http.MethodGet, "/api/auth/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, resp = call(t, r, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "gina@guest.test", data(resp)["email"])

	// guests reach their own routes only
	code, _ = call(t, r, http.MethodGet, "/api/roomtypes", token, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = call(t, r, http.MethodGet, "/api/user", token, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = call(t, r, http.MethodPost, "/api/rooms", token, map[string]interface{}{"room_number": "900", "room_type_id": 1})
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = call(t, r, http.MethodGet, "/api/maintenancerequest", token, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = call(t, r, http.MethodGet, "/api/dashboard/summary", token, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, resp = call(t, r, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Logout successful", resp["message"])

	code, _ = call(t, r, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

// TestStayLifecycle walks a booking from creation to a settled invoice:
// 1. admin adds a room, guest books it
// 2. front desk confirms and checks the guest in
// 3. checkout issues the invoice and queues housekeeping
// 4. payment settles the invoice and completes the stay
func TestStayLifecycle(t *testing.T) {
	r := setupRouter(t)
	adminToken := login(t, r, adminEmail, adminPassword)
	register(t, r, "Gina Guest", "gina@guest.test")
	guestToken := login(t, r, "gina@guest.test", "guestpass1")

	roomTypeID := createRoomTest(t, r, adminToken)
	reservationID := bookStayTest(t, r, guestToken, roomTypeID)
	checkInTest(t, r, adminToken, guestToken, reservationID)
	invoiceID := checkOutTest(t, r, adminToken, guestToken, reservationID)
	settleInvoiceTest(t, r, adminToken, guestToken, reservationID, invoiceID)
}

func createRoomTest(t *testing.T, r *gin.Engine, token string) float64 {
	code, resp := call(t, r, http.MethodGet, "/api/roomtypes", token, nil)
	require.Equal(t, http.StatusOK, code)
	types := resp["data"].([]interface{})
	require.Len(t, types, 3)
	standard := types[0].(map[string]interface{})
	require.Equal(t, "Standard", standard["name"])

	code, resp = call(t, r, http.MethodPost, "/api/rooms", token, map[string]interface{}{
		"room_number": "101", "floor": 1, "room_type_id": standard["id"],
	})
	require.Equal(t, http.StatusCreated, code, resp["message"])
	return standard["id"].(float64)
}

func bookStayTest(t *testing.T, r *gin.Engine, token string, roomTypeID float64) string {
	today := utils.BeginningOfDay(time.Now())
	code, resp := call(t, r, http.MethodPost, "/api/reservations", token, map[string]interface{}{
		"room_type_id":     roomTypeID,
		"check_in_date":    today.Format(utils.DateLayout),
		"check_out_date":   today.AddDate(0, 0, 2).Format(utils.DateLayout),
		"number_of_guests": 2,
	})
	require.Equal(t, http.StatusCreated, code, resp["message"])
	stay := data(resp)
	assert.Equal(t, "Pending", stay["status"])
	assert.Equal(t, "101", stay["room_number"])
	assert.Equal(t, 160.0, stay["total_price"])

	code, resp = call(t, r, http.MethodGet, "/api/reservations/number/"+stay["reservation_number"].(string), token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, stay["id"], data(resp)["id"])
	return id(stay)
}

func checkInTest(t *testing.T, r *gin.Engine, adminToken, guestToken, reservationID string) {
	code, _ := call(t, r, http.MethodPost, "/api/reservations/"+reservationID+"/confirm", guestToken, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, resp := call(t, r, http.MethodPost, "/api/reservations/"+reservationID+"/confirm", adminToken, nil)
	require.Equal(t, http.StatusOK, code, resp["message"])
	assert.Equal(t, "Confirmed", data(resp)["status"])

	code, resp = call(t, r, http.MethodPost, "/api/reservations/"+reservationID+"/checkin", adminToken, nil)
	require.Equal(t, http.StatusOK, code, resp["message"])
	assert.Equal(t, "CheckedIn", data(resp)["status"])

	code, resp = call(t, r, http.MethodGet, "/api/rooms?status=Occupied", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, resp["data"], 1)
}

func checkOutTest(t *testing.T, r *gin.Engine, adminToken, guestToken, reservationID string) string {
	code, resp := call(t, r, http.MethodPost, "/api/reservations/"+reservationID+"/checkout", adminToken, nil)
	require.Equal(t, http.StatusOK, code, resp["message"])
	out := data(resp)
	invoice := out["invoice"].(map[string]interface{})
	assert.Equal(t, 160.0, invoice["amount"])
	assert.Equal(t, 16.0, invoice["tax"])
	assert.Equal(t, 176.0, invoice["total"])
	assert.NotNil(t, out["cleaning_task"])

	code, resp = call(t, r, http.MethodGet, "/api/cleaningtask?status=Dirty", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, resp["data"], 1)

	code, resp = call(t, r, http.MethodGet, "/api/invoice/reservation/"+reservationID, guestToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, invoice["invoice_number"], data(resp)["invoice_number"])
	return id(invoice)
}

func settleInvoiceTest(t *testing.T, r *gin.Engine, adminToken, guestToken, reservationID, invoiceID string) {
	code, _ := call(t, r, http.MethodPost, "/api/invoice/"+invoiceID+"/payments", guestToken, map[string]interface{}{"amount": 176, "method": "Cash"})
	assert.Equal(t, http.StatusForbidden, code)

	code, resp := call(t, r, http.MethodPost, "/api/invoice/"+invoiceID+"/payments", adminToken, map[string]interface{}{"amount": 100, "method": "CreditCard"})
	require.Equal(t, http.StatusCreated, code, resp["message"])
	assert.Equal(t, 76.0, data(resp)["invoice"].(map[string]interface{})["balance"])

	code, resp = call(t, r, http.MethodPost, "/api/invoice/"+invoiceID+"/payments", adminToken, map[string]interface{}{"amount": 76, "method": "Cash"})
	require.Equal(t, http.StatusCreated, code, resp["message"])

	code, resp = call(t, r, http.MethodGet, "/api/invoice/"+invoiceID+"/balance", guestToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, data(resp)["is_paid"])
	assert.Equal(t, 0.0, data(resp)["balance"])

	code, resp = call(t, r, http.MethodGet, "/api/reservations/"+reservationID, guestToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Completed", data(resp)["status"])

	code, resp = call(t, r, http.MethodGet, "/api/dashboard/summary", adminToken, nil)
	require.Equal(t, http.StatusOK, code, resp["message"])
}
