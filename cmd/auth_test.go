package cmd

import (
	"bufio"
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vera-byte/bookmandu/internal/config"
	"github.com/vera-byte/bookmandu/internal/devserver"
	"github.com/vera-byte/bookmandu/internal/guard"
	"github.com/vera-byte/bookmandu/internal/mockdb"
	"github.com/vera-byte/bookmandu/internal/wishlist"

	"go.uber.org/zap"
)

func startBackend(t *testing.T) string {
	t.Helper()
	srv, err := devserver.New(context.Background(), config.MockConfig{
		Host:      "127.0.0.1",
		Port:      "0",
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
	}, "http://localhost:5173", zap.NewNop())
	if err != nil {
		t.Fatalf("devserver: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

// newTestApp 连接到测试后端的内存会话
func newTestApp(t *testing.T, backendURL, input string) (*app, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	a := &app{
		cfg: &config.Config{
			Backend: config.BackendConfig{URL: backendURL, Timeout: 5 * time.Second},
			Session: config.SessionConfig{Store: "memory"},
		},
		logger: zap.NewNop(),
		out:    out,
		errOut: errOut,
		in:     bufio.NewReader(strings.NewReader(input)),
		local:  wishlist.New(),
	}
	if err := a.connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(a.close)
	return a, out, errOut
}

func withLoginFlags(t *testing.T, email, password string) {
	t.Helper()
	loginFlags.email, loginFlags.password = email, password
	t.Cleanup(func() { loginFlags.email, loginFlags.password = "", "" })
}

func TestGuestWrongPasswordShowsBackendMessage(t *testing.T) {
	a, _, errOut := newTestApp(t, startBackend(t), "")
	withLoginFlags(t, mockdb.MemberEmail, "wrong")

	err := runLogin(context.Background(), a, nil)
	if err == nil {
		t.Fatal("expected login to fail")
	}
	msg, ok := userMessage(err, a.takeExpired())
	if !ok || msg != "Error: Invalid email or password" {
		t.Fatalf("message = %q, %v", msg, ok)
	}
	if errOut.Len() != 0 {
		t.Fatalf("no session existed, nothing should be reported as expired: %q", errOut.String())
	}
	if to := a.takeRedirect(); to != "" {
		t.Fatalf("redirect = %q, want none", to)
	}
}

func TestWrongPasswordWhileLoggedInEndsSession(t *testing.T) {
	a, _, errOut := newTestApp(t, startBackend(t), "")
	ctx := context.Background()

	withLoginFlags(t, mockdb.MemberEmail, mockdb.MemberPassword)
	if err := runLogin(ctx, a, nil); err != nil {
		t.Fatalf("login: %v", err)
	}

	loginFlags.password = "wrong"
	err := runLogin(ctx, a, nil)
	msg, _ := userMessage(err, a.takeExpired())
	if !strings.Contains(msg, "Invalid email or password") || !strings.Contains(msg, "bookmandu login") {
		t.Fatalf("message = %q", msg)
	}
	if a.session.User() != nil {
		t.Fatal("session should be cleared by the 401")
	}
	if strings.Count(errOut.String(), "Session expired") != 1 {
		t.Fatalf("stderr = %q", errOut.String())
	}
	if to := a.takeRedirect(); to != guard.LoginPath {
		t.Fatalf("redirect = %q", to)
	}
}

func TestShellReportsRejectedLogin(t *testing.T) {
	input := strings.Join([]string{
		"login -e " + mockdb.MemberEmail + " -p 'not it'",
		"login -e " + mockdb.MemberEmail + ` -p member\123`,
		"exit",
	}, "\n") + "\n"
	a, out, errOut := newTestApp(t, startBackend(t), input)

	prev := current
	current = a
	RootCmd.SetOut(out)
	RootCmd.SetErr(errOut)
	t.Cleanup(func() {
		current = prev
		RootCmd.SetOut(nil)
		RootCmd.SetErr(nil)
		RootCmd.SetArgs(nil)
	})

	if err := runShell(context.Background(), a, nil); err != nil {
		t.Fatalf("shell: %v", err)
	}
	if !strings.Contains(errOut.String(), "Error: Invalid email or password") {
		t.Fatalf("stderr = %q", errOut.String())
	}
	if strings.Contains(errOut.String(), "Session expired") {
		t.Fatalf("guest login failure reported as expiry: %q", errOut.String())
	}
	if !strings.Contains(out.String(), "Welcome, member") {
		t.Fatalf("escaped password should log in, stdout = %q", out.String())
	}
}

func TestShellRejectsUnterminatedQuote(t *testing.T) {
	a, _, errOut := newTestApp(t, startBackend(t), "reviews add 9 --comment \"oops\nexit\n")
	if err := runShell(context.Background(), a, nil); err != nil {
		t.Fatalf("shell: %v", err)
	}
	if !strings.Contains(errOut.String(), "Error:") {
		t.Fatalf("stderr = %q", errOut.String())
	}
}
