package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kycdesk/config"
	"kycdesk/database"
	"kycdesk/handlers"
	"kycdesk/middleware"
	"kycdesk/services"
	"kycdesk/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return newTestServerWithStore(t, session.NewMemoryStore())
}

func newTestServerWithStore(t *testing.T, store session.Store) *httptest.Server {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	signer, err := session.NewTokenSigner("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	manager := session.NewManager(store, signer, time.Hour)

	auth := services.NewAuthService(db, manager, services.AdminCredentials{Email: "admin@admin.com", Password: "admin2025"})
	h := handlers.NewHandlers(auth, services.NewAccountService(db), services.NewTransactionService(db), &config.Config{SessionTTL: time.Hour})

	srv := httptest.NewServer(SetupRoutes(h, auth, middleware.NewRateLimiter(1000, 1000)))
	t.Cleanup(srv.Close)
	return srv
}

type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func newClient(t *testing.T, srv *httptest.Server) *client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &client{t: t, base: srv.URL, http: &http.Client{Jar: jar}}
}

type response struct {
	status int
	body   []byte
}

func (r response) object(t *testing.T) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(r.body, &out), "body: %s", r.body)
	return out
}

func (r response) list(t *testing.T) []interface{} {
	t.Helper()
	var out []interface{}
	require.NoError(t, json.Unmarshal(r.body, &out), "body: %s", r.body)
	return out
}

func (c *client) do(method, path, body string, header ...string) response {
	c.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, c.base+path, reader)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return response{status: resp.StatusCode, body: b}
}

func (c *client) login(email, password string) response {
	return c.do(http.MethodPost, "/api/login", fmt.Sprintf(`{"email":%q,"password":%q}`, email, password))
}

func (c *client) register(email, password string) uint {
	c.t.Helper()
	res := c.do(http.MethodPost, "/api/register", fmt.Sprintf(`{"email":%q,"password":%q}`, email, password))
	require.Equal(c.t, http.StatusCreated, res.status, "body: %s", res.body)
	user := res.object(c.t)["user"].(map[string]interface{})
	return uint(user["id"].(float64))
}

func adminClient(t *testing.T, srv *httptest.Server) *client {
	t.Helper()
	admin := newClient(t, srv)
	res := admin.login("admin@admin.com", "admin2025")
	require.Equal(t, http.StatusOK, res.status, "body: %s", res.body)
	return admin
}

func approvedClient(t *testing.T, srv *httptest.Server, admin *client, email string) (*client, uint) {
	t.Helper()
	c := newClient(t, srv)
	id := c.register(email, "pw123")
	res := admin.do(http.MethodPost, fmt.Sprintf("/api/users/%d/approve", id), "")
	require.Equal(t, http.StatusOK, res.status, "body: %s", res.body)
	res = c.login(email, "pw123")
	require.Equal(t, http.StatusOK, res.status, "body: %s", res.body)
	return c, id
}

func TestRegistrationApprovalScenario(t *testing.T) {
	srv := newTestServer(t)
	user := newClient(t, srv)
	admin := adminClient(t, srv)

	res := user.do(http.MethodPost, "/api/register", `{
		"email": "a@x.com",
		"password": "pw123",
		"full_name": "Ana Souza",
		"cpf": "123.456.789-00",
		"monthly_income": 4200.5,
		"investment_types": "stocks,crypto",
		"lgpd_accepted": true
	}`)
	require.Equal(t, http.StatusCreated, res.status, "body: %s", res.body)
	body := res.object(t)
	assert.Equal(t, true, body["success"])
	registered := body["user"].(map[string]interface{})
	assert.Equal(t, "pending", registered["status"])
	assert.Equal(t, []interface{}{"crypto", "stocks"}, registered["investment_types"])
	assert.NotContains(t, string(res.body), "password")
	userID := uint(registered["id"].(float64))

	res = user.login("a@x.com", "pw123")
	assert.Equal(t, http.StatusForbidden, res.status)
	assert.Equal(t, false, res.object(t)["success"])

	res = admin.do(http.MethodPost, fmt.Sprintf("/api/users/%d/approve", userID), "")
	require.Equal(t, http.StatusOK, res.status, "body: %s", res.body)

	res = user.do(http.MethodPost, "/api/login", `{"username":"a@x.com","password":"pw123"}`)
	require.Equal(t, http.StatusOK, res.status, "body: %s", res.body)
	body = res.object(t)
	assert.NotEmpty(t, body["token"])
	assert.Equal(t, "approved", body["user"].(map[string]interface{})["status"])

	res = user.do(http.MethodGet, "/api/check-auth", "")
	require.Equal(t, http.StatusOK, res.status)
	body = res.object(t)
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, "a@x.com", body["user"].(map[string]interface{})["email"])
	assert.Equal(t, "Ana Souza", body["user"].(map[string]interface{})["full_name"])
}

func TestRegisterFailures(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t, srv)
	c.register("a@x.com", "pw123")

	res := c.do(http.MethodPost, "/api/register", `{"email":"a@x.com","password":"other","full_name":"Other"}`)
	assert.Equal(t, http.StatusConflict, res.status)
	assert.Equal(t, false, res.object(t)["success"])

	for _, body := range []string{
		`{"email":"","password":"pw"}`,
		`{"email":"b@x.com"}`,
		`{"email":"b@x.com","password":"pw","investment_types":["lottery"]}`,
		`not json`,
	} {
		res = c.do(http.MethodPost, "/api/register", body)
		assert.Equal(t, http.StatusBadRequest, res.status, "body: %s", body)
	}
}

func TestDepositApprovalScenario(t *testing.T) {
	srv := newTestServer(t)
	admin := adminClient(t, srv)
	user, userID := approvedClient(t, srv, admin, "a@x.com")

	res := user.do(http.MethodPost, "/api/deposit", `{"amount":100}`)
	require.Equal(t, http.StatusCreated, res.status, "body: %s", res.body)
	txn := res.object(t)["transaction"].(map[string]interface{})
	assert.Equal(t, "pending", txn["status"])
	assert.Equal(t, "deposit", txn["type"])
	assert.Equal(t, 100.0, txn["amount"])
	assert.Equal(t, float64(userID), txn["user_id"])
	assert.Nil(t, txn["approval_date"])
	txnID := uint(txn["id"].(float64))

	res = admin.do(http.MethodPost, fmt.Sprintf("/api/transactions/%d/approve", txnID), "")
	require.Equal(t, http.StatusOK, res.status, "body: %s", res.body)
	approved := res.object(t)["transaction"].(map[string]interface{})
	assert.Equal(t, "approved", approved["status"])
	assert.NotNil(t, approved["approval_date"])

	res = user.do(http.MethodGet, "/api/transactions", "")
	require.Equal(t, http.StatusOK, res.status)
	list := res.list(t)
	require.Len(t, list, 1)
	assert.Equal(t, "approved", list[0].(map[string]interface{})["status"])

	res = user.do(http.MethodPost, "/api/withdraw", `{"amount":25.75}`)
	require.Equal(t, http.StatusCreated, res.status, "body: %s", res.body)
	assert.Equal(t, "withdrawal", res.object(t)["transaction"].(map[string]interface{})["type"])
}

func TestInvalidAmountsCreateNothing(t *testing.T) {
	srv := newTestServer(t)
	admin := adminClient(t, srv)
	user, _ := approvedClient(t, srv, admin, "a@x.com")

	for _, body := range []string{`{"amount":0}`, `{"amount":-5}`, `{"amount":"100"}`, `{"amount":null}`, `{}`, `{"amount":true}`} {
		res := user.do(http.MethodPost, "/api/deposit", body)
		assert.Equal(t, http.StatusBadRequest, res.status, "body: %s", body)
		res = user.do(http.MethodPost, "/api/withdraw", body)
		assert.Equal(t, http.StatusBadRequest, res.status, "body: %s", body)
	}

	res := admin.do(http.MethodGet, "/api/transactions", "")
	require.Equal(t, http.StatusOK, res.status)
	assert.Empty(t, res.list(t))
}

func TestTransactionGuards(t *testing.T) {
	srv := newTestServer(t)
	admin := adminClient(t, srv)
	user, userID := approvedClient(t, srv, admin, "a@x.com")
	anon := newClient(t, srv)

	res := anon.do(http.MethodPost, "/api/deposit", `{"amount":1}`)
	assert.Equal(t, http.StatusUnauthorized, res.status)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, string(res.body))

	res = admin.do(http.MethodPost, "/api/deposit", `{"amount":1}`)
	assert.Equal(t, http.StatusUnauthorized, res.status)

	res = anon.do(http.MethodGet, "/api/transactions", "")
	assert.Equal(t, http.StatusUnauthorized, res.status)

	res = user.do(http.MethodPost, "/api/transactions/1/approve", "")
	assert.Equal(t, http.StatusUnauthorized, res.status)

	res = admin.do(http.MethodPost, "/api/transactions/999/reject", "")
	assert.Equal(t, http.StatusNotFound, res.status)
	assert.Equal(t, "Transaction not found", res.object(t)["message"])

	res = admin.do(http.MethodPost, fmt.Sprintf("/api/users/%d/reject", userID), "")
	require.Equal(t, http.StatusOK, res.status)
	res = user.do(http.MethodPost, "/api/deposit", `{"amount":1}`)
	assert.Equal(t, http.StatusForbidden, res.status)
}

func TestUserListScenario(t *testing.T) {
	srv := newTestServer(t)
	anon := newClient(t, srv)
	admin := adminClient(t, srv)
	anon.register("a@x.com", "pw123")
	anon.register("b@x.com", "pw123")

	res := anon.do(http.MethodGet, "/api/users", "")
	assert.Equal(t, http.StatusUnauthorized, res.status)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, string(res.body))

	res = admin.do(http.MethodGet, "/api/users", "")
	require.Equal(t, http.StatusOK, res.status)
	users := res.list(t)
	require.Len(t, users, 2)
	assert.NotContains(t, strings.ToLower(string(res.body)), "password")
	assert.Equal(t, "a@x.com", users[0].(map[string]interface{})["email"])

	res = admin.do(http.MethodGet, "/api/users?page=2&limit=1", "")
	require.Equal(t, http.StatusOK, res.status)
	paged := res.list(t)
	require.Len(t, paged, 1)
	assert.Equal(t, "b@x.com", paged[0].(map[string]interface{})["email"])

	res = admin.do(http.MethodPost, "/api/users/abc/approve", "")
	assert.Equal(t, http.StatusNotFound, res.status)
	res = admin.do(http.MethodPost, "/api/users/999/approve", "")
	assert.Equal(t, http.StatusNotFound, res.status)
	assert.Equal(t, "User not found", res.object(t)["message"])
}

func TestAdminSession(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t, srv)

	res := c.login("admin@admin.com", "wrong")
	assert.Equal(t, http.StatusUnauthorized, res.status)
	assert.Equal(t, "Invalid credentials", res.object(t)["message"])

	res = c.login("admin@admin.com", "admin2025")
	require.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, map[string]interface{}{"email": "admin@admin.com", "is_admin": true}, res.object(t)["user"])

	res = c.do(http.MethodGet, "/api/check-auth", "")
	require.Equal(t, http.StatusOK, res.status)
	body := res.object(t)
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, true, body["user"].(map[string]interface{})["is_admin"])

	res = c.do(http.MethodGet, "/api/users", "")
	require.Equal(t, http.StatusOK, res.status)
	assert.Empty(t, res.list(t), "admin login must not create a user record")
}

func TestLogoutInvalidatesToken(t *testing.T) {
	srv := newTestServer(t)
	admin := adminClient(t, srv)
	user, _ := approvedClient(t, srv, admin, "a@x.com")

	res := user.login("a@x.com", "pw123")
	require.Equal(t, http.StatusOK, res.status)
	token := res.object(t)["token"].(string)

	bearer := newClient(t, srv)
	res = bearer.do(http.MethodGet, "/api/check-auth", "", "Authorization", "Bearer "+token)
	assert.Equal(t, true, res.object(t)["authenticated"])

	res = user.do(http.MethodPost, "/api/logout", "")
	require.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, true, res.object(t)["success"])

	res = user.do(http.MethodGet, "/api/check-auth", "")
	require.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, map[string]interface{}{"authenticated": false}, res.object(t))

	res = bearer.do(http.MethodGet, "/api/check-auth", "", "Authorization", "Bearer "+token)
	assert.Equal(t, false, res.object(t)["authenticated"])

	res = newClient(t, srv).do(http.MethodPost, "/api/logout", "")
	assert.Equal(t, http.StatusOK, res.status)
}

func TestDeleteUserCascade(t *testing.T) {
	srv := newTestServer(t)
	admin := adminClient(t, srv)
	alice, aliceID := approvedClient(t, srv, admin, "alice@x.com")
	bob, _ := approvedClient(t, srv, admin, "bob@x.com")

	require.Equal(t, http.StatusCreated, alice.do(http.MethodPost, "/api/deposit", `{"amount":10}`).status)
	require.Equal(t, http.StatusCreated, alice.do(http.MethodPost, "/api/withdraw", `{"amount":5}`).status)
	require.Equal(t, http.StatusCreated, bob.do(http.MethodPost, "/api/deposit", `{"amount":7}`).status)

	res := admin.do(http.MethodGet, "/api/transactions", "")
	require.Len(t, res.list(t), 3)

	res = admin.do(http.MethodDelete, fmt.Sprintf("/api/users/%d", aliceID), "")
	assert.Equal(t, http.StatusNoContent, res.status)
	assert.Empty(t, res.body)

	res = admin.do(http.MethodGet, "/api/transactions", "")
	assert.Len(t, res.list(t), 1)

	res = admin.do(http.MethodDelete, fmt.Sprintf("/api/users/%d", aliceID), "")
	assert.Equal(t, http.StatusNotFound, res.status)

	// alice's cookie now points at a deleted user
	res = alice.do(http.MethodGet, "/api/check-auth", "")
	assert.Equal(t, false, res.object(t)["authenticated"])
	res = alice.do(http.MethodGet, "/api/transactions", "")
	assert.Equal(t, http.StatusUnauthorized, res.status)
}

func TestHealthAndRequestID(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))
}

func TestUndecodableRedisSessionIsDropped(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Skipf("skip: miniredis unavailable in this environment: %v", err)
	}
	t.Cleanup(mr.Close)

	cli := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cli.Close() })
	store, err := session.NewRedisStore(cli, "0000000000000000000000000000000000000000000000000000000000000000")
	require.NoError(t, err)

	srv := newTestServerWithStore(t, store)
	admin := adminClient(t, srv)

	corrupt := func() {
		keys := mr.Keys()
		require.Len(t, keys, 1)
		require.NoError(t, mr.Set(keys[0], "00112233445566778899aabbccddeeff00112233"))
	}

	corrupt()
	res := admin.do(http.MethodGet, "/api/check-auth", "")
	require.Equal(t, http.StatusOK, res.status, "body: %s", res.body)
	assert.Equal(t, false, res.object(t)["authenticated"])
	assert.Empty(t, mr.Keys())

	res = admin.login("admin@admin.com", "admin2025")
	require.Equal(t, http.StatusOK, res.status, "body: %s", res.body)

	corrupt()
	res = admin.do(http.MethodPost, "/api/logout", "")
	assert.Equal(t, http.StatusOK, res.status, "body: %s", res.body)

	res = admin.login("admin@admin.com", "admin2025")
	require.Equal(t, http.StatusOK, res.status, "body: %s", res.body)
	corrupt()
	res = admin.login("admin@admin.com", "admin2025")
	require.Equal(t, http.StatusOK, res.status, "body: %s", res.body)
	assert.Len(t, mr.Keys(), 1)
}
