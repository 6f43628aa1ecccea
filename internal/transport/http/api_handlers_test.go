package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kolejker/OsaltServer/internal/proto"
)

func TestRegisterEndpoint(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "created", body: `{"username":"alice","password":"password"}`, want: http.StatusCreated},
		{name: "duplicate", body: `{"username":"alice","password":"password"}`, want: http.StatusConflict},
		{name: "bad username", body: `{"username":"a!","password":"password"}`, want: http.StatusBadRequest},
		{name: "short password", body: `{"username":"bob","password":"123"}`, want: http.StatusBadRequest},
		{name: "not json", body: `username=bob`, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/register", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			resp := s.do(req)
			if resp.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, resp.Code, resp.Body.String())
			}
		})
	}
}

func TestRegisteredUserCanLogIn(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/register", bytes.NewBufferString(`{"username":"alice","password":"password"}`))
	req.Header.Set("Content-Type", "application/json")
	if resp := s.do(req); resp.Code != http.StatusCreated {
		t.Fatalf("register failed: %d", resp.Code)
	}

	s.login(t, "alice")
}

func TestAdminEndpointsRequireToken(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(httptest.NewRequest(http.MethodGet, "/api/sessions", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	req.Header.Set("Authorization", "Bearer nope")
	if resp := s.do(req); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", resp.Code)
	}
}

func TestAdminDisabledWithoutConfiguredToken(t *testing.T) {
	logger := zerolog.Nop()
	handler := AdminMiddleware("", &logger)
	s := newTestServer(t)
	s.router.GET("/probe", handler, func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer anything")
	if resp := s.do(req); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestListUsersAndSessions(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "alice")
	s.register(t, "bob")
	s.login(t, "alice")

	resp := s.do(adminRequest(http.MethodGet, "/api/users", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var users []UserResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &users); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}

	resp = s.do(adminRequest(http.MethodGet, "/api/sessions", nil))
	var sessions []SessionResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &sessions); err != nil {
		t.Fatalf("decode sessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0].Username != "alice" {
		t.Fatalf("unexpected sessions: %+v", sessions)
	}
}

func TestKickAndNotify(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "alice")
	s.register(t, "bob")
	aliceToken := s.login(t, "alice")
	bobToken := s.login(t, "bob")

	alice, _ := s.engine.Registry().Get(aliceToken)
	bob, _ := s.engine.Registry().Get(bobToken)
	bob.Drain()

	resp := s.do(adminRequest(http.MethodPost, "/api/notify", []byte(`{"message":"restart soon"}`)))
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.Code)
	}
	if !bytes.Equal(bob.Drain(), proto.Notification("restart soon")) {
		t.Fatalf("bob did not receive the notification")
	}

	path := "/api/sessions/" + strconv.Itoa(int(alice.UserID))
	resp = s.do(adminRequest(http.MethodDelete, path, nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !bytes.Equal(bob.Drain(), proto.UserQuit(alice.UserID, 0)) {
		t.Fatalf("bob was not told alice quit")
	}

	if resp := s.do(adminRequest(http.MethodDelete, path, nil)); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second kick, got %d", resp.Code)
	}
	if resp := s.do(adminRequest(http.MethodDelete, "/api/sessions/abc", nil)); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", resp.Code)
	}
}
