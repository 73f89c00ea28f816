package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/HapoSeiz/AlertShip/internal/geo"
	"github.com/HapoSeiz/AlertShip/internal/models"
	"github.com/HapoSeiz/AlertShip/pkg/config"
	"github.com/HapoSeiz/AlertShip/pkg/i18n"
	"github.com/HapoSeiz/AlertShip/pkg/middleware"
	"github.com/HapoSeiz/AlertShip/pkg/notification"
	"github.com/HapoSeiz/AlertShip/pkg/sse"
	"github.com/HapoSeiz/AlertShip/pkg/util"
)

// stubPlaces returns canned Gurgaon data for the draft endpoints.
type stubPlaces struct{}

func (stubPlaces) Predictions(ctx context.Context, query, token string) ([]geo.Prediction, error) {
	return []geo.Prediction{{PlaceID: "p1", Description: "Sector 15, Gurgaon"}}, nil
}

func (stubPlaces) Details(ctx context.Context, placeID, token string) (*geo.Place, error) {
	return &geo.Place{
		PlaceID: placeID,
		Components: []geo.AddressComponent{
			{LongName: "Sector 15", ShortName: "Sector 15", Types: []string{"sublocality_level_1", "sublocality"}},
			{LongName: "Gurgaon", ShortName: "Gurgaon", Types: []string{"locality"}},
			{LongName: "Haryana", ShortName: "HR", Types: []string{"administrative_area_level_1"}},
			{LongName: "122001", ShortName: "122001", Types: []string{"postal_code"}},
		},
		Location: geo.Coordinates{Lat: 28.45, Lng: 77.02},
	}, nil
}

func (stubPlaces) ReverseGeocode(ctx context.Context, coords geo.Coordinates) (*geo.Place, error) {
	return &geo.Place{
		Components: []geo.AddressComponent{
			{LongName: "DLF Phase 2", ShortName: "DLF 2", Types: []string{"neighborhood"}},
			{LongName: "Gurgaon", ShortName: "Gurgaon", Types: []string{"locality"}},
			{LongName: "Haryana", ShortName: "HR", Types: []string{"administrative_area_level_1"}},
		},
		Location: geo.Coordinates{Lat: coords.Lat, Lng: coords.Lng},
	}, nil
}

type testApp struct {
	engine *gin.Engine
	h      *Handlers
	db     *gorm.DB
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	util.Sig().Reset()

	config.GlobalConfig = &config.Config{
		Addr:       ":0",
		BaseURL:    "http://localhost:8080",
		APIPrefix:  "/api",
		AuthPrefix: "/auth",
		PlacesRate: "100-S",
	}

	db, err := util.CreateDatabaseInstance(&gorm.Config{}, "sqlite", "")
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))

	support, err := i18n.New("../../locales")
	require.NoError(t, err)

	workflow := geo.NewWorkflow(stubPlaces{}, time.Minute)
	hub := sse.NewHub(time.Minute)
	mailer := notification.NewMailNotification(notification.MailConfig{})

	h := NewHandlers(db, workflow, hub, support, mailer, nil)

	engine := gin.New()
	engine.Use(sessions.Sessions("alertship", cookie.NewStore([]byte("test-secret"))))
	engine.Use(middleware.Language())
	h.Register(engine)
	engine.NoRoute(middleware.LocaleRewrite(engine))

	return &testApp{engine: engine, h: h, db: db}
}

func (a *testApp) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func validReport() gin.H {
	return gin.H{
		"type": "electricity", "description": "No power since morning",
		"locality": "Sector 15", "city": "Gurgaon", "state": "Haryana",
		"pinCode": "122001", "lat": 28.45, "lng": 77.02, "locationSource": "search",
	}
}

func TestCreateReportRequiresCoordinates(t *testing.T) {
	app := newTestApp(t)

	body := validReport()
	delete(body, "lat")
	delete(body, "lng")

	w := app.do(t, http.MethodPost, "/api/outageReports", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	out := decode(t, w)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "Location required", out["error"])

	var count int64
	app.db.Model(&models.OutageReport{}).Count(&count)
	assert.Zero(t, count)
}

func TestCreateReportLocationRequiredIsLocalized(t *testing.T) {
	app := newTestApp(t)

	body := validReport()
	delete(body, "lat")

	w := app.do(t, http.MethodPost, "/api/outageReports?lang=hi", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "स्थान आवश्यक है", decode(t, w)["error"])
}

func TestCreateReportFieldValidation(t *testing.T) {
	app := newTestApp(t)

	body := validReport()
	body["type"] = "gas"
	body["pinCode"] = "1220"
	body["description"] = ""

	w := app.do(t, http.MethodPost, "/api/outageReports", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	out := decode(t, w)
	fields := out["fields"].(map[string]any)
	assert.Contains(t, fields, "type")
	assert.Contains(t, fields, "pinCode")
	assert.Contains(t, fields, "description")
}

func TestCreateAndBrowseReports(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodPost, "/api/outageReports", validReport())
	require.Equal(t, http.StatusCreated, w.Code)
	out := decode(t, w)
	assert.Equal(t, true, out["success"])
	assert.NotEmpty(t, out["id"])

	delhi := validReport()
	delhi["city"] = "Delhi"
	delhi["type"] = "water"
	w = app.do(t, http.MethodPost, "/api/outageReports", delhi)
	require.Equal(t, http.StatusCreated, w.Code)

	w = app.do(t, http.MethodGet, "/api/outageReports", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["reports"], 2)

	w = app.do(t, http.MethodGet, "/api/outageReports?city=Gurgaon", nil)
	require.Equal(t, http.StatusOK, w.Code)
	reports := decode(t, w)["reports"].([]any)
	require.Len(t, reports, 1)
	assert.Equal(t, "Gurgaon", reports[0].(map[string]any)["city"])
}

func TestLatestReportsNoCacheAndCap(t *testing.T) {
	app := newTestApp(t)

	for i := 0; i < 6; i++ {
		body := validReport()
		body["description"] = fmt.Sprintf("outage %d", i)
		w := app.do(t, http.MethodPost, "/api/outageReports", body)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := app.do(t, http.MethodGet, "/api/latest-reports", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store, no-cache, must-revalidate, proxy-revalidate", w.Header().Get("Cache-Control"))
	assert.Equal(t, "no-cache", w.Header().Get("Pragma"))
	assert.Equal(t, "0", w.Header().Get("Expires"))
	assert.Equal(t, "no-store", w.Header().Get("Surrogate-Control"))
	assert.Len(t, decode(t, w)["reports"], models.LatestReportsLimit)
}

func TestReportDoubleSubmitGuard(t *testing.T) {
	app := newTestApp(t)

	body := validReport()
	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/outageReports", jsonBody(t, body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "form-1")
	app.engine.ServeHTTP(first, req)
	require.Equal(t, http.StatusCreated, first.Code)

	second := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/outageReports", jsonBody(t, body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "form-1")
	app.engine.ServeHTTP(second, req)
	assert.Equal(t, http.StatusConflict, second.Code)

	var count int64
	app.db.Model(&models.OutageReport{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(v))
	return &buf
}

func TestReportFromDraftUsesServerCoordinates(t *testing.T) {
	app := newTestApp(t)

	draft := app.h.workflow.NewDraft()
	_, err := app.h.workflow.UseBrowserLocation(context.Background(), draft.ID,
		geo.Coordinates{Lat: 28.46, Lng: 77.03})
	require.NoError(t, err)

	body := gin.H{
		"type": "water", "description": "Low pressure",
		"draftId": draft.ID,
		// Client-sent coordinates are ignored in favor of the draft's.
		"lat": 1.0, "lng": 2.0, "pinCode": "122001",
	}
	w := app.do(t, http.MethodPost, "/api/outageReports", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var report models.OutageReport
	require.NoError(t, app.db.First(&report).Error)
	assert.Equal(t, 28.46, report.Lat)
	assert.Equal(t, 77.03, report.Lng)
	assert.Equal(t, "browser", report.Source)
	assert.Equal(t, "DLF Phase 2", report.Locality)

	// The draft is discarded after submission.
	_, err = app.h.workflow.Get(draft.ID)
	assert.Error(t, err)
}

func TestDraftEndpoints(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodPost, "/api/location/drafts", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	draft := decode(t, w)["draft"].(map[string]any)
	id := draft["id"].(string)
	require.NotEmpty(t, id)

	w = app.do(t, http.MethodPost, "/api/location/drafts/"+id+"/search", gin.H{"query": "Gu"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodPost, "/api/location/drafts/"+id+"/search", gin.H{"query": "Sector 15 Gur"})
	require.Equal(t, http.StatusOK, w.Code)
	results := decode(t, w)["results"].([]any)
	require.Len(t, results, 1)

	w = app.do(t, http.MethodPost, "/api/location/drafts/"+id+"/select", gin.H{"placeId": "p1"})
	require.Equal(t, http.StatusOK, w.Code)
	got := decode(t, w)["draft"].(map[string]any)
	assert.Equal(t, "Sector 15", got["locality"])
	assert.Equal(t, "Gurgaon", got["city"])
	assert.Equal(t, "122001", got["pinCode"])
	assert.Equal(t, 28.45, got["lat"])
	assert.Equal(t, "search", got["locationSource"])

	w = app.do(t, http.MethodPost, "/api/location/drafts/"+id+"/clear", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got = decode(t, w)["draft"].(map[string]any)
	assert.Nil(t, got["lat"])
	assert.Equal(t, "none", got["locationSource"])

	w = app.do(t, http.MethodGet, "/api/location/drafts/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, ck := range w.Result().Cookies() {
		if ck.Name == "alertship" {
			return ck
		}
	}
	return nil
}

func TestSignupLoginVerifyFlow(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodPost, "/api/auth/signup", gin.H{
		"name": "Test User", "email": "user@example.com",
		"password": "secret123", "confirmPassword": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Unverified login is refused.
	w = app.do(t, http.MethodPost, "/api/auth/login", gin.H{
		"email": "user@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	user, err := models.GetUserByEmail(app.db, "user@example.com")
	require.NoError(t, err)
	token, err := models.IssueToken(app.db, user, models.TokenVerifyEmail)
	require.NoError(t, err)

	w = app.do(t, http.MethodGet, "/api/auth/verify?token="+token.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodPost, "/api/auth/login", gin.H{
		"email": "user@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	ck := sessionCookie(w)
	require.NotNil(t, ck)

	w = app.do(t, http.MethodGet, "/api/auth/info", nil, ck)
	require.Equal(t, http.StatusOK, w.Code)
	info := decode(t, w)["user"].(map[string]any)
	assert.Equal(t, "user@example.com", info["email"])
	assert.NotNil(t, info["lastLoginAt"])

	w = app.do(t, http.MethodGet, "/api/auth/info", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(t, http.MethodGet, "/api/auth/logout", nil, ck)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSignupRejectsBadInput(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodPost, "/api/auth/signup", gin.H{
		"name": "X", "email": "spam@mailinator.com",
		"password": "secret123", "confirmPassword": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodPost, "/api/auth/signup", gin.H{
		"name": "X", "email": "user@example.com",
		"password": "secret123", "confirmPassword": "different",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	fields := decode(t, w)["fields"].(map[string]any)
	assert.Contains(t, fields, "confirmPassword")
}

func TestPasswordResetFlow(t *testing.T) {
	app := newTestApp(t)

	user, err := models.CreateUser(app.db, "user@example.com", "Test", "secret123")
	require.NoError(t, err)
	require.NoError(t, models.MarkVerified(app.db, user))

	w := app.do(t, http.MethodPost, "/api/auth/password-reset", gin.H{"email": "user@example.com"})
	require.Equal(t, http.StatusOK, w.Code)

	// Unknown accounts get the same generic answer.
	w = app.do(t, http.MethodPost, "/api/auth/password-reset", gin.H{"email": "nobody@example.com"})
	require.Equal(t, http.StatusOK, w.Code)

	var token models.EmailToken
	require.NoError(t, app.db.Where("user_id = ? AND kind = ?", user.ID, models.TokenPasswordReset).
		First(&token).Error)

	w = app.do(t, http.MethodPost, "/api/auth/password-reset/confirm", gin.H{
		"token": token.Token, "password": "newpass456",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodPost, "/api/auth/login", gin.H{
		"email": "user@example.com", "password": "newpass456",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	w = app.do(t, http.MethodPost, "/api/auth/login", gin.H{
		"email": "user@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedPagesRedirectAnonymous(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodGet, "/dashboard", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = app.do(t, http.MethodGet, "/hi/report", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/hi", w.Header().Get("Location"))
}

func TestLocalePrefixedHomePage(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodGet, "/hi", nil)
	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)
	assert.Equal(t, "hi", out["locale"])
	assert.Equal(t, "आपके आस-पास की कटौती", out["title"])

	w = app.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "en", decode(t, w)["locale"])

	// An unsupported prefix is a plain 404.
	w = app.do(t, http.MethodGet, "/xx/nothing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDashboardRoutesRequireAuth(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodGet, "/api/dashboard/locations", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = app.do(t, http.MethodPost, "/api/dashboard/subscriptions", gin.H{"city": "Gurgaon"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func loginTestUser(t *testing.T, app *testApp) *http.Cookie {
	t.Helper()
	user, err := models.CreateUser(app.db, "member@example.com", "Member", "secret123")
	require.NoError(t, err)
	require.NoError(t, models.MarkVerified(app.db, user))
	w := app.do(t, http.MethodPost, "/api/auth/login", gin.H{
		"email": "member@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	ck := sessionCookie(w)
	require.NotNil(t, ck)
	return ck
}

func TestSavedLocationLifecycle(t *testing.T) {
	app := newTestApp(t)
	ck := loginTestUser(t, app)

	w := app.do(t, http.MethodPost, "/api/dashboard/locations", gin.H{
		"label": "Home", "locality": "Sector 15", "city": "Gurgaon",
		"state": "Haryana", "pinCode": "122001", "lat": 28.45, "lng": 77.02,
	}, ck)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	loc := decode(t, w)["location"].(map[string]any)

	w = app.do(t, http.MethodGet, "/api/dashboard/locations", nil, ck)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["locations"], 1)

	w = app.do(t, http.MethodDelete,
		fmt.Sprintf("/api/dashboard/locations/%v", loc["id"]), nil, ck)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodGet, "/api/dashboard/locations", nil, ck)
	assert.Empty(t, decode(t, w)["locations"])
}

func TestSubscriptionLifecycle(t *testing.T) {
	app := newTestApp(t)
	ck := loginTestUser(t, app)

	w := app.do(t, http.MethodPost, "/api/dashboard/subscriptions",
		gin.H{"city": "Gurgaon", "type": "water"}, ck)
	require.Equal(t, http.StatusCreated, w.Code)

	w = app.do(t, http.MethodPost, "/api/dashboard/subscriptions",
		gin.H{"city": "Gurgaon", "type": "water"}, ck)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = app.do(t, http.MethodPost, "/api/dashboard/subscriptions",
		gin.H{"city": "Gurgaon", "type": "gas"}, ck)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodGet, "/api/dashboard/subscriptions", nil, ck)
	subs := decode(t, w)["subscriptions"].([]any)
	require.Len(t, subs, 1)

	id := subs[0].(map[string]any)["id"]
	w = app.do(t, http.MethodDelete, fmt.Sprintf("/api/dashboard/subscriptions/%v", id), nil, ck)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthCheck(t *testing.T) {
	app := newTestApp(t)
	w := app.do(t, http.MethodGet, "/api/system/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestGoogleLoginUnconfigured(t *testing.T) {
	app := newTestApp(t)
	w := app.do(t, http.MethodPost, "/api/auth/google", gin.H{"idToken": "tok"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestResendVerificationCooldown(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodPost, "/api/auth/signup", gin.H{
		"name": "Test", "email": "user@example.com",
		"password": "secret123", "confirmPassword": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Signup just mailed a link; an instant resend hits the cooldown.
	w = app.do(t, http.MethodPost, "/api/auth/resend-verification",
		gin.H{"email": "user@example.com"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	user, err := models.GetUserByEmail(app.db, "user@example.com")
	require.NoError(t, err)
	past := time.Now().Add(-2 * models.ResendCooldown)
	require.NoError(t, app.db.Model(user).Update("last_verify_mail", past).Error)

	w = app.do(t, http.MethodPost, "/api/auth/resend-verification",
		gin.H{"email": "user@example.com"})
	assert.Equal(t, http.StatusOK, w.Code)

	// Unknown addresses get the generic answer.
	w = app.do(t, http.MethodPost, "/api/auth/resend-verification",
		gin.H{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusOK, w.Code)
}
