package http_handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/streamview/auth-service/internal/application/session"
	"github.com/streamview/auth-service/internal/infrastructure/memory"
	"github.com/streamview/auth-service/internal/infrastructure/security"
	"github.com/streamview/auth-service/internal/transport/http/middleware"
	"github.com/streamview/auth-service/internal/transport/http/response"
	"github.com/streamview/auth-service/internal/transport/http/router"
)

type testEnv struct {
	srv    *httptest.Server
	svc    *session.Service
	signer *security.JWTSigner
	users  *memory.UserRepo
}

// newTestEnv wires the real service against the in-memory repo and a
// real signer, mounted on the production router.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := memory.NewUserRepo()
	signer := security.NewJWTSigner("test-access", "test-refresh", "auth-service")
	hasher := security.NewBcryptHasher(4)

	svc := session.NewService(users, hasher, signer, memory.NoopPublisher{}, session.Config{
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	})

	mux, err := router.New(router.Deps{
		Auth:    NewAuthHandler(svc, false),
		Health:  NewHealthHandler(nil),
		AuthMW:  middleware.Auth(signer, response.WriteError),
		AdminMW: middleware.RequireAdmin(response.WriteError),
	})
	if err != nil {
		t.Fatalf("router: %v", err)
	}

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, svc: svc, signer: signer, users: users}
}

func mustJSONBody(t *testing.T, v any) io.Reader {
	t.Helper()

	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json marshal: %v", err)
	}
	return bytes.NewReader(b)
}

func mustReadJSON(t *testing.T, r io.Reader, out any) {
	t.Helper()

	raw, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("decode json failed; body=%s", string(raw))
	}
}

func readCookie(res *http.Response, name string) *http.Cookie {
	for _, c := range res.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// do sends a request with the given cookies and returns the response.
func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, cookies ...*http.Cookie) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, e.srv.URL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return res
}

// signup registers a user and returns its id plus the session cookies.
func (e *testEnv) signup(t *testing.T, name, email, password string) (string, *http.Cookie, *http.Cookie) {
	t.Helper()

	res := e.do(t, http.MethodPost, "/auth/signup", mustJSONBody(t, map[string]string{
		"name": name, "email": email, "password": password,
	}))
	defer res.Body.Close()

	if res.StatusCode != http.StatusCreated {
		t.Fatalf("signup status=%d", res.StatusCode)
	}

	var out struct {
		UserID string `json:"userId"`
	}
	mustReadJSON(t, res.Body, &out)

	access := readCookie(res, security.AccessCookieName)
	refresh := readCookie(res, security.RefreshCookieName)
	if access == nil || refresh == nil {
		t.Fatalf("expected both session cookies on signup")
	}
	return out.UserID, access, refresh
}

func errorCode(t *testing.T, res *http.Response) string {
	t.Helper()

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	mustReadJSON(t, res.Body, &body)
	return body.Error.Code
}
