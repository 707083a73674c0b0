package devserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vera-byte/bookmandu/internal/config"
	"github.com/vera-byte/bookmandu/internal/mockdb"
	"github.com/vera-byte/bookmandu/internal/module"
	"github.com/vera-byte/bookmandu/pkg/model"

	"go.uber.org/zap"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := New(context.Background(), config.MockConfig{
		Host:      "127.0.0.1",
		Port:      "0",
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
	}, "http://localhost:5173", zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestHealthReportsEveryModule(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Status  string            `json:"status"`
		Modules map[string]string `json:"modules"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "healthy" {
		t.Fatalf("status = %q", body.Status)
	}
	for _, name := range []string{"auth", "catalog", "commerce", "engagement"} {
		if body.Modules[name] != "healthy" {
			t.Errorf("module %s = %q", name, body.Modules[name])
		}
	}
}

func TestModulesListedInRegistrationOrder(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/modules", nil))

	var infos []module.Info
	if err := json.Unmarshal(rec.Body.Bytes(), &infos); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []string{"auth", "catalog", "commerce", "engagement"}
	if len(infos) != len(want) {
		t.Fatalf("got %d modules", len(infos))
	}
	for i, name := range want {
		if infos[i].Name != name {
			t.Errorf("modules[%d] = %s, want %s", i, infos[i].Name, name)
		}
	}
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cart", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	_, port, _ := net.SplitHostPort(ln.Addr().String())
	ln.Close()

	s := newTestServer(t)
	s.cfg.Port = port

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	url := "http://" + s.Addr() + "/health"
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never came up: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func loginToken(t *testing.T, s *Server, email, password string) string {
	t.Helper()
	body, _ := json.Marshal(model.LoginRequest{Email: email, Password: password})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp model.LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	return resp.Token
}

func TestRejectedWritesCarryStatusAndMessage(t *testing.T) {
	s := newTestServer(t)
	token := loginToken(t, s, mockdb.MemberEmail, mockdb.MemberPassword)

	tests := []struct {
		method, path string
		status       int
		message      string
	}{
		{http.MethodDelete, "/api/cart/999", http.StatusNotFound, "Cart item not found"},
		{http.MethodDelete, "/api/wishlist/999", http.StatusNotFound, "Book is not in wishlist"},
		{http.MethodDelete, "/api/order/999", http.StatusNotFound, "Order not found"},
		{http.MethodPut, "/api/Notification/999/mark-as-read", http.StatusNotFound, "Notification not found"},
		{http.MethodDelete, "/api/cart", http.StatusOK, "Cart cleared"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)

		var body model.ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s %s: decode: %v", tt.method, tt.path, err)
		}
		if rec.Code != tt.status || body.Message != tt.message {
			t.Fatalf("%s %s = %d %q, want %d %q", tt.method, tt.path, rec.Code, body.Message, tt.status, tt.message)
		}
	}
}

func TestWrongPasswordIsUnauthorized(t *testing.T) {
	s := newTestServer(t)
	body, _ := json.Marshal(model.LoginRequest{Email: mockdb.MemberEmail, Password: "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized || !bytes.Contains(rec.Body.Bytes(), []byte("Invalid email or password")) {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
}
