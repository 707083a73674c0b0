package cmd

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/vera-byte/bookmandu/internal/guard"
	"github.com/vera-byte/bookmandu/internal/httpclient"

	"github.com/gin-gonic/gin"
)

func TestResetFlagsRestoresDefaults(t *testing.T) {
	if err := cartAddCmd.Flags().Set("quantity", "4"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := booksListCmd.Flags().Set("search", "muna"); err != nil {
		t.Fatalf("set: %v", err)
	}

	resetFlags(RootCmd)

	if cartFlags.quantity != 1 {
		t.Fatalf("quantity = %d, want default 1", cartFlags.quantity)
	}
	if bookFlags.search != "" {
		t.Fatalf("search = %q, want empty", bookFlags.search)
	}
	if cartAddCmd.Flags().Changed("quantity") {
		t.Fatal("flag should no longer be marked changed")
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		cleared bool
		want    string
		ok      bool
	}{
		{"login required", &guard.RedirectError{Route: "/cart", Level: guard.Authenticated, To: guard.LoginPath}, false, "Please log in first", true},
		{"role required", &guard.RedirectError{Route: "/admin", Level: guard.Admin, To: guard.LoginPath}, false, "requires admin access", true},
		{"backend message", &httpclient.APIError{Op: "Failed to place order", Kind: httpclient.KindClient, Message: "Cart is empty"}, false, "Error: Cart is empty", true},
		{"wrapped backend message", fmt.Errorf("cmd: %w", &httpclient.APIError{Kind: httpclient.KindServer, Message: "Failed to fetch books"}), false, "Error: Failed to fetch books", true},
		{"session cleared", &httpclient.APIError{Kind: httpclient.KindUnauthorized, Message: "Invalid token"}, true, "Error: Invalid token\nRun 'bookmandu login' to continue.", true},
		{"rejected credentials", &httpclient.APIError{Kind: httpclient.KindUnauthorized, Message: "Invalid email or password"}, false, "Error: Invalid email or password", true},
		{"bare unauthorized", httpclient.ErrSessionInvalidated, true, "Run 'bookmandu login' to continue.", true},
		{"not implemented", fmt.Errorf("markAllAsRead: %w", httpclient.ErrNotImplemented), false, "Error: markAllAsRead", true},
		{"other", errors.New("disk full"), false, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := userMessage(tt.err, tt.cleared)
			if ok != tt.ok || !strings.Contains(got, tt.want) {
				t.Fatalf("userMessage = %q, %v; want substring %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestUnauthorizedHintOnlyWhenSessionCleared(t *testing.T) {
	err := &httpclient.APIError{Kind: httpclient.KindUnauthorized, Message: "Invalid email or password"}
	if msg, _ := userMessage(err, false); strings.Contains(msg, "bookmandu login") {
		t.Fatalf("hint shown without a cleared session: %q", msg)
	}
}

func TestRouteDetailsSortedByPath(t *testing.T) {
	details := getRouteDetails(gin.RoutesInfo{
		{Method: "POST", Path: "/api/cart", Handler: "commerce.addToCart"},
		{Method: "GET", Path: "/api/books", Handler: "catalog.list"},
		{Method: "GET", Path: "/api/cart", Handler: "commerce.getCart"},
	})
	var got []string
	for _, d := range details {
		got = append(got, d.Method+" "+d.Path)
	}
	want := []string{"GET /api/books", "GET /api/cart", "POST /api/cart"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("routes = %v, want %v", got, want)
	}
}

func TestEveryCommandIsReachable(t *testing.T) {
	for _, path := range [][]string{
		{"login"}, {"logout"}, {"register"}, {"whoami"},
		{"books", "list"}, {"books", "show"}, {"books", "upload-image"},
		{"authors", "list"}, {"genres", "create"}, {"publishers", "update"},
		{"cart", "show"}, {"wishlist", "add"}, {"order", "place"}, {"order", "completed"},
		{"reviews", "add"}, {"notifications", "read-all"}, {"announcements", "deactivate"},
		{"discounts", "add"}, {"staff", "register"}, {"members", "list"},
		{"admin", "dashboard"}, {"staff-dashboard", "process"},
		{"proxy"}, {"mock-backend"}, {"shell"},
	} {
		c, rest, err := RootCmd.Find(path)
		if err != nil || len(rest) != 0 || c.Name() != path[len(path)-1] {
			t.Fatalf("command %v not found (got %v, rest %v, err %v)", path, c.Name(), rest, err)
		}
	}
}
