package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/projectx/accounts/internal/api"
	"github.com/projectx/accounts/internal/api/handler"
	"github.com/projectx/accounts/internal/api/middleware"
	"github.com/projectx/accounts/internal/core/service"
	"github.com/projectx/accounts/internal/infrastructure/db/memory"
)

type memGuard struct {
	mu   sync.Mutex
	used map[string]bool
}

func (g *memGuard) Consume(_ context.Context, jti string, _ time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.used[jti] {
		return true, nil
	}
	g.used[jti] = true
	return false, nil
}

type testApp struct {
	e    *echo.Echo
	repo *memory.AccountRepository
}

func newTestApp() *testApp {
	repo := memory.NewAccountRepository()
	accounts := service.NewAccountService(repo, bcrypt.MinCost, zerolog.Nop())
	tokens := service.NewTokenService(repo, &memGuard{used: map[string]bool{}}, "secret", time.Minute, time.Hour)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = api.NewHTTPErrorHandler(zerolog.Nop())
	e.Use(middleware.Auth(tokens))

	accountHandler := handler.NewAccountHandler(accounts)
	tokenHandler := handler.NewTokenHandler(tokens)
	pingHandler := handler.NewPingHandler()

	e.POST("/accounts", accountHandler.Create)
	e.GET("/accounts", accountHandler.List)
	e.GET("/accounts/me", accountHandler.Me)
	e.GET("/accounts/:id", accountHandler.Retrieve)
	e.PATCH("/accounts/:id", accountHandler.Update)
	e.DELETE("/accounts/:id", accountHandler.Delete)
	e.POST("/auth/token", tokenHandler.Obtain)
	e.POST("/auth/token/refresh", tokenHandler.Refresh)
	e.GET("/ping", pingHandler.Ping)

	return &testApp{e: e, repo: repo}
}

func (a *testApp) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"status_code"`
	Error      string `json:"error"`
	Detail     string `json:"detail"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	return env
}

func (a *testApp) register(t *testing.T, username, email, password string) map[string]any {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/accounts",
		`{"username":"`+username+`","email":"`+email+`","password":"`+password+`"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", username, rec.Code, rec.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	return body
}

func (a *testApp) obtainToken(t *testing.T, username, password string) (access, refresh string) {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/auth/token",
		`{"username":"`+username+`","password":"`+password+`"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("obtain token for %s: status %d body %s", username, rec.Code, rec.Body.String())
	}
	var body struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode token response: %v", err)
	}
	return body.Access, body.Refresh
}

func (a *testApp) promote(t *testing.T, username string) {
	t.Helper()
	account, err := a.repo.FindByUsername(context.Background(), username)
	if err != nil {
		t.Fatalf("find %s: %v", username, err)
	}
	account.IsAdmin = true
	if _, err := a.repo.Update(context.Background(), account); err != nil {
		t.Fatalf("promote %s: %v", username, err)
	}
}

func TestRegistration(t *testing.T) {
	app := newTestApp()

	rec := app.do(t, http.MethodPost, "/accounts",
		`{"username":"testUser","email":"test@example.com","password":"SuperSecrete","first_name":"First","last_name":"Last","phone":"01777333777"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["id"] == "" || body["id"] == nil {
		t.Fatalf("missing id in response: %v", body)
	}
	if body["username"] != "testUser" || body["email"] != "test@example.com" || body["phone"] != "01777333777" {
		t.Fatalf("unexpected fields: %v", body)
	}

	// Credential material never appears in responses.
	raw := rec.Body.String()
	if strings.Contains(raw, "password") || strings.Contains(raw, "SuperSecrete") {
		t.Fatalf("credential material leaked: %s", raw)
	}
}

func TestRegistration_ExistingUsername(t *testing.T) {
	app := newTestApp()
	app.register(t, "existing", "existing@user.com", "existing_password")

	rec := app.do(t, http.MethodPost, "/accounts",
		`{"username":"existing","email":"new@user.com","password":"SuperSecrete"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	env := decodeEnvelope(t, rec)
	if env.Success || env.StatusCode != 400 {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if env.Detail != "'username' A user with that username already exists." {
		t.Fatalf("detail = %q", env.Detail)
	}
}

func TestRegistration_InvalidPhone(t *testing.T) {
	app := newTestApp()

	rec := app.do(t, http.MethodPost, "/accounts",
		`{"username":"u","email":"u@example.com","password":"p","phone":"12345"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Detail != "'phone' Must be a valid phone number of bangladesh" {
		t.Fatalf("detail = %q", env.Detail)
	}
}

func TestRegistration_UnknownFieldsIgnored(t *testing.T) {
	app := newTestApp()

	rec := app.do(t, http.MethodPost, "/accounts",
		`{"username":"u","email":"u@example.com","password":"p","is_admin":true,"bogus":1}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["is_admin"] != false {
		t.Fatalf("is_admin must not be settable at registration: %v", body)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	app := newTestApp()
	app.register(t, "existing", "existing@user.com", "SuperSecrete")

	access, refresh := app.obtainToken(t, "existing", "SuperSecrete")
	if access == "" || refresh == "" {
		t.Fatalf("expected non-empty token pair")
	}

	rec := app.do(t, http.MethodGet, "/accounts/me", "", access)
	if rec.Code != http.StatusOK {
		t.Fatalf("me with token: status %d", rec.Code)
	}
}

func TestToken_WrongPassword(t *testing.T) {
	app := newTestApp()
	app.register(t, "existing", "existing@user.com", "SuperSecrete")

	rec := app.do(t, http.MethodPost, "/auth/token",
		`{"username":"existing","password":"nope"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Detail != "No active account found with the given credentials" {
		t.Fatalf("detail = %q", env.Detail)
	}
}

func TestTokenRefresh_SingleUse(t *testing.T) {
	app := newTestApp()
	app.register(t, "existing", "existing@user.com", "SuperSecrete")
	_, refresh := app.obtainToken(t, "existing", "SuperSecrete")

	rec := app.do(t, http.MethodPost, "/auth/token/refresh", `{"refresh":"`+refresh+`"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = app.do(t, http.MethodPost, "/auth/token/refresh", `{"refresh":"`+refresh+`"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("replayed refresh: status %d, want 401", rec.Code)
	}
}

func TestMe(t *testing.T) {
	app := newTestApp()
	app.register(t, "alice", "alice@example.com", "pass")

	rec := app.do(t, http.MethodGet, "/accounts/me", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous me: status %d, want 401", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Detail != "Authentication credentials were not provided." {
		t.Fatalf("detail = %q", env.Detail)
	}

	access, _ := app.obtainToken(t, "alice", "pass")
	rec = app.do(t, http.MethodGet, "/accounts/me", "", access)
	if rec.Code != http.StatusOK {
		t.Fatalf("authenticated me: status %d", rec.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["username"] != "alice" {
		t.Fatalf("me returned %v", body)
	}
}

func TestList_AdminOnly(t *testing.T) {
	app := newTestApp()
	app.register(t, "user1", "user1@example.com", "pass")
	app.register(t, "user2", "user2@example.com", "pass")
	app.register(t, "root", "root@example.com", "pass")
	app.promote(t, "root")

	// Anonymous: authentication required.
	rec := app.do(t, http.MethodGet, "/accounts", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous list: status %d, want 401", rec.Code)
	}

	// Regular account: forbidden.
	userAccess, _ := app.obtainToken(t, "user1", "pass")
	rec = app.do(t, http.MethodGet, "/accounts", "", userAccess)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("regular list: status %d, want 403", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Detail != "You do not have permission to perform this action." {
		t.Fatalf("detail = %q", env.Detail)
	}

	// Admin: full listing with total count.
	adminAccess, _ := app.obtainToken(t, "root", "pass")
	rec = app.do(t, http.MethodGet, "/accounts", "", adminAccess)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin list: status %d", rec.Code)
	}
	var page struct {
		Count   int `json:"count"`
		Results []struct {
			Username string `json:"username"`
		} `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.Count != 3 {
		t.Fatalf("count = %d, want 3", page.Count)
	}
	if page.Results[0].Username != "root" {
		t.Fatalf("unexpected ordering: %v", page.Results)
	}
}

func TestSearch(t *testing.T) {
	app := newTestApp()
	app.register(t, "user1", "user1@example.com", "pass")
	app.register(t, "user2", "user2@example.com", "pass")
	app.register(t, "root", "root@example.com", "pass")
	app.promote(t, "root")

	adminAccess, _ := app.obtainToken(t, "root", "pass")
	rec := app.do(t, http.MethodGet, "/accounts?search=user1", "", adminAccess)
	if rec.Code != http.StatusOK {
		t.Fatalf("search: status %d", rec.Code)
	}

	var page struct {
		Count   int `json:"count"`
		Results []struct {
			Username string `json:"username"`
		} `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.Count != 1 || page.Results[0].Username != "user1" {
		t.Fatalf("search result: %+v", page)
	}
}

func TestRetrieve_OwnershipBoundary(t *testing.T) {
	app := newTestApp()
	alice := app.register(t, "alice", "alice@example.com", "pass")
	bob := app.register(t, "bob", "bob@example.com", "pass")

	aliceAccess, _ := app.obtainToken(t, "alice", "pass")

	rec := app.do(t, http.MethodGet, "/accounts/"+alice["id"].(string), "", aliceAccess)
	if rec.Code != http.StatusOK {
		t.Fatalf("own retrieve: status %d", rec.Code)
	}

	rec = app.do(t, http.MethodGet, "/accounts/"+bob["id"].(string), "", aliceAccess)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("cross retrieve: status %d, want 403", rec.Code)
	}
}

func TestPasswordChange(t *testing.T) {
	app := newTestApp()
	account := app.register(t, "existing", "existing@user.com", "existing_password")
	url := "/accounts/" + account["id"].(string)

	// Anonymous password change is rejected as unauthenticated.
	rec := app.do(t, http.MethodPatch, url, `{"password":"halum"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous patch: status %d, want 401", rec.Code)
	}

	access, _ := app.obtainToken(t, "existing", "existing_password")
	rec = app.do(t, http.MethodPatch, url, `{"password":"halum"}`, access)
	if rec.Code != http.StatusOK {
		t.Fatalf("self patch: status %d body %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "halum") {
		t.Fatalf("plaintext password echoed: %s", rec.Body.String())
	}

	// The new credential is live.
	app.obtainToken(t, "existing", "halum")
}

func TestDelete(t *testing.T) {
	app := newTestApp()
	alice := app.register(t, "alice", "alice@example.com", "pass")
	bob := app.register(t, "bob", "bob@example.com", "pass")

	aliceAccess, _ := app.obtainToken(t, "alice", "pass")

	rec := app.do(t, http.MethodDelete, "/accounts/"+bob["id"].(string), "", aliceAccess)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("cross delete: status %d, want 403", rec.Code)
	}

	rec = app.do(t, http.MethodDelete, "/accounts/"+alice["id"].(string), "", aliceAccess)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("self delete: status %d", rec.Code)
	}

	// The record is gone for good.
	rec = app.do(t, http.MethodGet, "/accounts/me", "", aliceAccess)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("me after delete: status %d, want 404", rec.Code)
	}
}

func TestPing(t *testing.T) {
	app := newTestApp()
	app.register(t, "alice", "alice@example.com", "pass")

	rec := app.do(t, http.MethodGet, "/ping", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("ping: status %d", rec.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["status"] != "ok" || body["is_authenticated"] != false {
		t.Fatalf("anonymous ping: %v", body)
	}

	access, _ := app.obtainToken(t, "alice", "pass")
	rec = app.do(t, http.MethodGet, "/ping", "", access)
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["is_authenticated"] != true {
		t.Fatalf("authenticated ping: %v", body)
	}
}
