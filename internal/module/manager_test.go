package module

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type fakeModule struct {
	name     string
	initErr  error
	stopErr  error
	stopped  *[]string
	routeHit bool
}

func (f *fakeModule) Name() string { return f.name }
func (f *fakeModule) Description() string { return f.name + " module" }

func (f *fakeModule) Initialize(context.Context, *Env) error { return f.initErr }

func (f *fakeModule) RegisterRoutes(api *gin.RouterGroup) error {
	f.routeHit = true
	return nil
}

func (f *fakeModule) HealthCheck(context.Context) error { return nil }

func (f *fakeModule) Shutdown(context.Context) error {
	*f.stopped = append(*f.stopped, f.name)
	return f.stopErr
}

func TestManagerKeepsRegistrationOrder(t *testing.T) {
	var stopped []string
	m := NewManager(zap.NewNop())
	for _, name := range []string{"auth", "catalog", "commerce"} {
		if err := m.Register(&fakeModule{name: name, stopped: &stopped}); err != nil {
			t.Fatalf("Register(%s): %v", name, err)
		}
	}

	list := m.List()
	if len(list) != 3 || list[0].Name != "auth" || list[2].Name != "commerce" {
		t.Fatalf("List = %+v", list)
	}
	if list[1].Description != "catalog module" {
		t.Fatalf("description = %q", list[1].Description)
	}
}

func TestManagerRejectsDuplicate(t *testing.T) {
	var stopped []string
	m := NewManager(zap.NewNop())
	if err := m.Register(&fakeModule{name: "auth", stopped: &stopped}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := m.Register(&fakeModule{name: "auth", stopped: &stopped}); err == nil {
		t.Fatal("expected duplicate registration error")
	}
}

func TestManagerInitializeStopsAtFirstError(t *testing.T) {
	var stopped []string
	boom := errors.New("boom")
	m := NewManager(zap.NewNop())
	_ = m.Register(&fakeModule{name: "a", stopped: &stopped})
	_ = m.Register(&fakeModule{name: "b", initErr: boom, stopped: &stopped})

	err := m.InitializeAll(context.Background(), &Env{})
	if !errors.Is(err, boom) {
		t.Fatalf("InitializeAll = %v, want wrapped boom", err)
	}
	if !strings.Contains(err.Error(), "module b") {
		t.Fatalf("error should name the module: %v", err)
	}
}

func TestManagerRegistersRoutesForEveryModule(t *testing.T) {
	var stopped []string
	a := &fakeModule{name: "a", stopped: &stopped}
	b := &fakeModule{name: "b", stopped: &stopped}
	m := NewManager(zap.NewNop())
	_ = m.Register(a)
	_ = m.Register(b)

	gin.SetMode(gin.TestMode)
	if err := m.RegisterRoutes(gin.New().Group("/api")); err != nil {
		t.Fatalf("RegisterRoutes: %v", err)
	}
	if !a.routeHit || !b.routeHit {
		t.Fatal("every module should register routes")
	}
}

func TestManagerShutdownReverseOrderJoinsErrors(t *testing.T) {
	var stopped []string
	errA, errC := errors.New("a failed"), errors.New("c failed")
	m := NewManager(zap.NewNop())
	_ = m.Register(&fakeModule{name: "a", stopErr: errA, stopped: &stopped})
	_ = m.Register(&fakeModule{name: "b", stopped: &stopped})
	_ = m.Register(&fakeModule{name: "c", stopErr: errC, stopped: &stopped})

	err := m.ShutdownAll(context.Background())
	if strings.Join(stopped, ",") != "c,b,a" {
		t.Fatalf("shutdown order = %v, want c,b,a", stopped)
	}
	if !errors.Is(err, errA) || !errors.Is(err, errC) {
		t.Fatalf("ShutdownAll = %v, want both errors", err)
	}
}
