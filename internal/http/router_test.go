package http_test

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/notesaas/notehub/internal/auth"
	"github.com/notesaas/notehub/internal/config"
	"github.com/notesaas/notehub/internal/domain/user"
	notehub "github.com/notesaas/notehub/internal/http"
	"github.com/notesaas/notehub/internal/http/handlers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() config.Config {
	return config.Config{
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTTTLMinutes:      60,
		CORSAllowedOrigins: []string{"*"},
		AuthRateLimit:      1000,
		AuthRateWindowSecs: 60,
	}
}

// newTestAPI builds the full router over the in-memory repositories.
func newTestAPI(t *testing.T) *gin.Engine {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return notehub.NewRouter(log, nil, testConfig(), nil)
}

type apiClient struct {
	t     *testing.T
	r     *gin.Engine
	token string
}

func (c *apiClient) do(method, path, body string) *httptest.ResponseRecorder {
	c.t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	w := httptest.NewRecorder()
	c.r.ServeHTTP(w, req)
	return w
}

func (c *apiClient) signup(name, email, password string) {
	c.t.Helper()

	body := fmt.Sprintf(`{"name":%q,"email":%q,"password":%q}`, name, email, password)
	w := c.do(http.MethodPost, "/signup", body)

	if w.Code != http.StatusOK {
		c.t.Fatalf("signup %s: got status %d, body=%s", email, w.Code, w.Body.String())
	}
}

func (c *apiClient) login(email, password string) handlers.LoginResponse {
	c.t.Helper()

	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	w := c.do(http.MethodPost, "/login", body)

	if w.Code != http.StatusOK {
		c.t.Fatalf("login %s: got status %d, body=%s", email, w.Code, w.Body.String())
	}

	var resp handlers.LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		c.t.Fatalf("decode login response: %v", err)
	}

	c.token = resp.Token
	return resp
}

type noteResp struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	TenantID  string `json:"tenantId"`
	UpdatedAt string `json:"updatedAt"`
}

func (c *apiClient) createNote(title string) (noteResp, *httptest.ResponseRecorder) {
	c.t.Helper()

	w := c.do(http.MethodPost, "/notes", fmt.Sprintf(`{"title":%q,"content":"body"}`, title))

	var n noteResp
	if w.Code == http.StatusOK {
		if err := json.Unmarshal(w.Body.Bytes(), &n); err != nil {
			c.t.Fatalf("decode note: %v", err)
		}
	}
	return n, w
}

func TestFreePlanLimitAndUpgradeFlow(t *testing.T) {
	api := newTestAPI(t)
	c := &apiClient{t: t, r: api}

	c.signup("Acme", "owner@acme.test", "secret1")
	login := c.login("owner@acme.test", "secret1")

	if login.Tenant.Slug == nil || login.Tenant.Plan == nil {
		t.Fatalf("login should carry tenant info, got %+v", login.Tenant)
	}
	if *login.Tenant.Plan != "FREE" {
		t.Fatalf("new tenant plan = %q, want FREE", *login.Tenant.Plan)
	}

	for i := 1; i <= 3; i++ {
		_, w := c.createNote(fmt.Sprintf("note %d", i))
		if w.Code != http.StatusOK {
			t.Fatalf("note %d: got status %d, body=%s", i, w.Code, w.Body.String())
		}
	}

	// the fourth note trips the free plan cap
	_, w := c.createNote("note 4")
	if w.Code != http.StatusForbidden {
		t.Fatalf("over limit: got status %d, want 403, body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "plan_limit_reached") {
		t.Fatalf("missing plan_limit_reached code: %s", w.Body.String())
	}

	w = c.do(http.MethodPost, "/tenants/"+*login.Tenant.Slug+"/upgrade", "")
	if w.Code != http.StatusOK {
		t.Fatalf("upgrade: got status %d, body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Upgraded to Pro") {
		t.Fatalf("missing upgrade confirmation: %s", w.Body.String())
	}

	// limit is lifted immediately, no stale cached plan
	_, w = c.createNote("note 4 again")
	if w.Code != http.StatusOK {
		t.Fatalf("post-upgrade create: got status %d, body=%s", w.Code, w.Body.String())
	}

	// second upgrade is a no-op success
	w = c.do(http.MethodPost, "/tenants/"+*login.Tenant.Slug+"/upgrade", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Already on Pro") {
		t.Fatalf("repeat upgrade: got status %d, body=%s", w.Code, w.Body.String())
	}
}

func TestTenantIsolation(t *testing.T) {
	api := newTestAPI(t)

	acme := &apiClient{t: t, r: api}
	acme.signup("Acme", "owner@acme.test", "secret1")
	acmeLogin := acme.login("owner@acme.test", "secret1")

	globex := &apiClient{t: t, r: api}
	globex.signup("Globex", "owner@globex.test", "secret1")
	globex.login("owner@globex.test", "secret1")

	secret, w := acme.createNote("acme secret")
	if w.Code != http.StatusOK {
		t.Fatalf("create: got status %d, body=%s", w.Code, w.Body.String())
	}

	// listing never crosses the tenant boundary
	w = globex.do(http.MethodGet, "/notes", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list: got status %d, body=%s", w.Code, w.Body.String())
	}
	var notes []noteResp
	if err := json.Unmarshal(w.Body.Bytes(), &notes); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(notes) != 0 {
		t.Fatalf("globex sees %d foreign notes", len(notes))
	}

	// direct access by id looks like the note does not exist
	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		w = globex.do(method, "/notes/"+secret.ID, "")
		if w.Code != http.StatusNotFound {
			t.Fatalf("%s foreign note: got status %d, want 404", method, w.Code)
		}
	}

	w = globex.do(http.MethodPut, "/notes/"+secret.ID, `{"title":"hijack"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("update foreign note: got status %d, want 404", w.Code)
	}

	// one admin cannot upgrade the other's tenant
	w = globex.do(http.MethodPost, "/tenants/"+*acmeLogin.Tenant.Slug+"/upgrade", "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("cross-tenant upgrade: got status %d, want 403, body=%s", w.Code, w.Body.String())
	}
}

func TestNoteLifecycle(t *testing.T) {
	api := newTestAPI(t)
	c := &apiClient{t: t, r: api}

	c.signup("Acme", "owner@acme.test", "secret1")
	c.login("owner@acme.test", "secret1")

	created, w := c.createNote("draft")
	if w.Code != http.StatusOK {
		t.Fatalf("create: got status %d, body=%s", w.Code, w.Body.String())
	}

	w = c.do(http.MethodPut, "/notes/"+created.ID, `{"title":"final","content":"done"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update: got status %d, body=%s", w.Code, w.Body.String())
	}

	var updated noteResp
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode updated: %v", err)
	}
	if updated.Title != "final" {
		t.Fatalf("title = %q, want final", updated.Title)
	}
	if updated.UpdatedAt == created.UpdatedAt {
		t.Fatal("updatedAt not refreshed by update")
	}

	w = c.do(http.MethodDelete, "/notes/"+created.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete: got status %d, body=%s", w.Code, w.Body.String())
	}

	w = c.do(http.MethodGet, "/notes/"+created.ID, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after delete: got status %d, want 404", w.Code)
	}
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	api := newTestAPI(t)
	anon := &apiClient{t: t, r: api}

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/notes"},
		{http.MethodPost, "/tenants/acme/upgrade"},
	}

	for _, p := range paths {
		w := anon.do(p.method, p.path, "")
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: got status %d, want 401", p.method, p.path, w.Code)
		}
	}
}

func TestMemberCannotUpgrade(t *testing.T) {
	api := newTestAPI(t)
	c := &apiClient{t: t, r: api}

	c.signup("Acme", "owner@acme.test", "secret1")
	login := c.login("owner@acme.test", "secret1")

	// mint a MEMBER token in the same tenant with the secret the router
	// signs with
	member := &apiClient{t: t, r: api}
	member.token = memberToken(t, c.token)

	w := member.do(http.MethodPost, "/tenants/"+*login.Tenant.Slug+"/upgrade", "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("member upgrade: got status %d, want 403, body=%s", w.Code, w.Body.String())
	}
}

func memberToken(t *testing.T, adminToken string) string {
	t.Helper()

	m := auth.NewManager("test-secret-key", time.Hour)

	claims, err := m.VerifyToken(adminToken)
	if err != nil {
		t.Fatalf("verify admin token: %v", err)
	}

	token, err := m.GenerateToken("member-1", claims.TenantID, user.RoleMember)
	if err != nil {
		t.Fatalf("mint member token: %v", err)
	}
	return token
}

func TestHealthEndpoints(t *testing.T) {
	api := newTestAPI(t)
	c := &apiClient{t: t, r: api}

	for _, path := range []string{"/", "/health", "/readyz"} {
		w := c.do(http.MethodGet, path, "")
		if w.Code != http.StatusOK {
			t.Fatalf("GET %s: got status %d", path, w.Code)
		}
	}
}
