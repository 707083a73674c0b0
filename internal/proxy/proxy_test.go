package proxy

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vera-byte/bookmandu/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// serve 通过真实监听的服务器访问路由，ReverseProxy 需要可关闭通知的连接
func serve(t *testing.T, h http.Handler) string {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv.URL
}

func get(t *testing.T, url string, header http.Header) (int, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestForwardsAPIPathsUnchanged(t *testing.T) {
	var gotPath, gotAuth, gotHost string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.RequestURI()
		gotAuth = r.Header.Get("Authorization")
		gotHost = r.Host
		w.WriteHeader(http.StatusTeapot)
	}))
	defer upstream.Close()

	router, err := NewRouter(Options{Target: upstream.URL}, zap.NewNop())
	if err != nil {
		t.Fatalf("router: %v", err)
	}

	base := serve(t, router)
	code, _ := get(t, base+"/api/books/3?x=1", http.Header{"Authorization": {"Bearer t"}})

	if code != http.StatusTeapot {
		t.Fatalf("status = %d", code)
	}
	if gotPath != "/api/books/3?x=1" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotAuth != "Bearer t" {
		t.Fatalf("authorization not forwarded: %q", gotAuth)
	}
	if gotHost != strings.TrimPrefix(upstream.URL, "http://") {
		t.Fatalf("host = %q, should be rewritten to target", gotHost)
	}
}

func TestUpstreamFailureIsProxyError(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	target := upstream.URL
	upstream.Close()

	router, err := NewRouter(Options{Target: target}, zap.NewNop())
	if err != nil {
		t.Fatalf("router: %v", err)
	}
	code, body := get(t, serve(t, router)+"/api/books", nil)
	if code != http.StatusInternalServerError || body != "Proxy Error" {
		t.Fatalf("got %d %q", code, body)
	}
}

func TestNonAPIPathsNotForwarded(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected upstream call %s", r.URL.Path)
	}))
	defer upstream.Close()

	router, _ := NewRouter(Options{Target: upstream.URL}, zap.NewNop())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestRateLimitedProxy(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer upstream.Close()

	router, _ := NewRouter(Options{Target: upstream.URL, Limiter: middleware.NewMemoryRateLimiter(1, time.Minute)}, zap.NewNop())
	base := serve(t, router)
	codes := make([]int, 2)
	for i := range codes {
		codes[i], _ = get(t, base+"/api/books", nil)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}
}

func TestRejectsRelativeTarget(t *testing.T) {
	if _, err := NewHandler("localhost:5036", nil, zap.NewNop()); err == nil {
		t.Fatalf("expected error")
	}
}
