package guard

import (
	"errors"
	"testing"

	"github.com/vera-byte/bookmandu/internal/session"
	"github.com/vera-byte/bookmandu/pkg/model"
)

type fixedViewer struct{ s *session.Session }

func (v fixedViewer) User() *session.Session { return v.s }

func TestPredicates(t *testing.T) {
	tests := []struct {
		name          string
		s             *session.Session
		authenticated bool
		admin         bool
		staff         bool
	}{
		{name: "absent", s: nil},
		{name: "admin", s: &session.Session{Token: "t", Role: model.RoleAdmin}, authenticated: true, admin: true},
		{name: "staff", s: &session.Session{Token: "t", Role: model.RoleStaff}, authenticated: true, staff: true},
		{name: "member", s: &session.Session{Token: "t", Role: model.RoleMember}, authenticated: true},
		{name: "token without role", s: &session.Session{Token: "t"}, authenticated: true},
		{name: "admin role without token", s: &session.Session{Role: model.RoleAdmin}},
		{name: "lowercase admin", s: &session.Session{Token: "t", Role: "admin"}, authenticated: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAuthenticated(tt.s); got != tt.authenticated {
				t.Fatalf("IsAuthenticated = %v, want %v", got, tt.authenticated)
			}
			if got := IsAdmin(tt.s); got != tt.admin {
				t.Fatalf("IsAdmin = %v, want %v", got, tt.admin)
			}
			if got := IsStaff(tt.s); got != tt.staff {
				t.Fatalf("IsStaff = %v, want %v", got, tt.staff)
			}
		})
	}
}

func TestCheckRedirects(t *testing.T) {
	member := fixedViewer{&session.Session{Token: "t", Username: "m", Role: model.RoleMember, UserID: "1"}}
	admin := fixedViewer{&session.Session{Token: "t", Username: "a", Role: model.RoleAdmin, UserID: "2"}}

	if err := CheckRoute("/admin", admin); err != nil {
		t.Fatalf("admin should reach dashboard: %v", err)
	}

	err := CheckRoute("/admin", member)
	if !errors.Is(err, ErrRedirect) {
		t.Fatalf("member should be redirected, got %v", err)
	}
	var re *RedirectError
	if !errors.As(err, &re) || re.To != LoginPath {
		t.Fatalf("redirect target = %+v", re)
	}

	if err := CheckRoute("/cart", fixedViewer{}); !errors.Is(err, ErrRedirect) {
		t.Fatalf("anonymous cart should redirect")
	}
	if err := CheckRoute("/", fixedViewer{}); err != nil {
		t.Fatalf("catalog is public: %v", err)
	}
	if err := CheckRoute("/unknown", fixedViewer{}); err == nil {
		t.Fatalf("unlisted routes require login")
	}
	if err := Check("/staff", Staff, nil); err == nil {
		t.Fatalf("nil viewer must be denied")
	}
}

func TestCheckEvaluatesEachTime(t *testing.T) {
	v := &fixedViewer{}
	if err := CheckRoute("/staff", v); err == nil {
		t.Fatalf("expected redirect before login")
	}
	v.s = &session.Session{Token: "t", Role: model.RoleStaff}
	if err := CheckRoute("/staff", v); err != nil {
		t.Fatalf("expected access after login: %v", err)
	}
}
