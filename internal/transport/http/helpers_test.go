package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kolejker/OsaltServer/internal/auth"
	"github.com/kolejker/OsaltServer/internal/config"
	"github.com/kolejker/OsaltServer/internal/core"
	"github.com/kolejker/OsaltServer/internal/store/sqlite"
)

const testAdminToken = "admin-secret"

type testServer struct {
	router *gin.Engine
	engine *core.Engine
	auth   *auth.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	logger := zerolog.Nop()
	engine, err := core.NewEngine(core.Options{}, nil, &logger)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	cfg := config.Default()
	cfg.MaxBodyBytes = 4096
	cfg.AdminToken = testAdminToken

	tokens := &auth.TokenConfig{Secret: []byte("test-secret"), Issuer: "test"}
	authService := auth.NewService(st, engine, tokens, auth.DefaultLoginOptions(), &logger)

	return &testServer{
		router: NewRouter(engine, authService, &cfg, &logger),
		engine: engine,
		auth:   authService,
	}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	s.router.ServeHTTP(resp, req)
	return resp
}

func (s *testServer) register(t *testing.T, username string) {
	t.Helper()
	if _, err := s.auth.Register(context.Background(), username, "password"); err != nil {
		t.Fatalf("failed to register %s: %v", username, err)
	}
}

// login performs a bancho login and returns the minted token.
func (s *testServer) login(t *testing.T, username string) string {
	t.Helper()

	body := username + "\n" + auth.PasswordDigest("password") + "\nclient\n"
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	resp := s.do(req)
	if resp.Code != http.StatusOK {
		t.Fatalf("login status %d", resp.Code)
	}
	token := resp.Header().Get(HeaderServerToken)
	if token == "" {
		t.Fatalf("login for %s returned no token", username)
	}
	return token
}

func adminRequest(method, path string, body []byte) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+testAdminToken)
	return req
}
