package dashboard

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vera-byte/bookmandu/internal/config"
	"github.com/vera-byte/bookmandu/internal/devserver"
	"github.com/vera-byte/bookmandu/internal/httpclient"
	"github.com/vera-byte/bookmandu/internal/mockdb"
	"github.com/vera-byte/bookmandu/internal/session"
	"github.com/vera-byte/bookmandu/pkg/client"
	"github.com/vera-byte/bookmandu/pkg/model"

	"go.uber.org/zap"
)

func backend(t *testing.T) string {
	t.Helper()
	srv, err := devserver.New(context.Background(), config.MockConfig{JWTSecret: "k", TokenTTL: time.Hour}, "*", zap.NewNop())
	if err != nil {
		t.Fatalf("devserver: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

func loginAs(t *testing.T, baseURL, email, password string) *client.Client {
	t.Helper()
	ctx := context.Background()
	sc := session.NewContext(session.NewMemoryStore(), nil)
	api := client.New(httpclient.New(httpclient.Config{BaseURL: baseURL}, sc, nil))
	resp, err := api.Auth.Login(ctx, email, password)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := sc.Login(ctx, session.FromLogin(resp)); err != nil {
		t.Fatalf("session: %v", err)
	}
	return api
}

func TestLoadAdmin(t *testing.T) {
	api := loginAs(t, backend(t), mockdb.AdminEmail, mockdb.AdminPassword)
	d, err := LoadAdmin(context.Background(), api)
	if err != nil {
		t.Fatalf("LoadAdmin: %v", err)
	}
	if len(d.Books) != 3 || len(d.Authors) != 2 || len(d.Genres) != 2 || len(d.Publishers) != 1 {
		t.Fatalf("catalog counts wrong: %+v", d)
	}
	if len(d.Staff) != 1 || len(d.Members) != 1 || len(d.Announcements) != 1 {
		t.Fatalf("account counts wrong: %+v", d)
	}
}

func TestLoadAdminFailsForMember(t *testing.T) {
	api := loginAs(t, backend(t), mockdb.MemberEmail, mockdb.MemberPassword)
	_, err := LoadAdmin(context.Background(), api)
	if err == nil || err.Error() != "Insufficient permissions" {
		t.Fatalf("expected permission error, got %v", err)
	}
}

func TestStaffProcessThenRefetch(t *testing.T) {
	ctx := context.Background()
	base := backend(t)

	member := loginAs(t, base, mockdb.MemberEmail, mockdb.MemberPassword)
	books, err := member.Books.List(ctx)
	if err != nil {
		t.Fatalf("books: %v", err)
	}
	if err := member.Cart.Add(ctx, books[0].BookID, 1); err != nil {
		t.Fatalf("cart: %v", err)
	}
	order, err := member.Orders.Place(ctx, model.PlaceOrderRequest{
		ShippingAddress: model.Address{Street: "New Road", City: "Kathmandu", Country: "Nepal"},
	})
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	staff := loginAs(t, base, mockdb.StaffEmail, mockdb.StaffPassword)
	panel := NewPanel[Staff](func(ctx context.Context) (*Staff, error) { return LoadStaff(ctx, staff) }, nil)
	snap, err := panel.Mount(ctx)
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	if len(snap.Pending()) != 1 {
		t.Fatalf("pending = %d, want 1", len(snap.Pending()))
	}

	snap, err = panel.Mutate(ctx, func(ctx context.Context) error {
		return staff.Orders.Process(ctx, model.ProcessOrderRequest{
			OrderID:      order.OrderID,
			MembershipID: "MEM-0001",
			ClaimCode:    order.ClaimCode,
		})
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(snap.Pending()) != 0 || len(snap.Orders) != 1 {
		t.Fatalf("after process: pending=%d orders=%d", len(snap.Pending()), len(snap.Orders))
	}
}

func TestPanelDiscardsAfterUnmount(t *testing.T) {
	release := make(chan struct{})
	p := NewPanel[int](func(context.Context) (*int, error) {
		<-release
		v := 1
		return &v, nil
	}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := p.Mount(context.Background())
		done <- err
	}()

	for !p.Mounted() {
		time.Sleep(time.Millisecond)
	}
	p.Unmount()
	close(release)

	if err := <-done; !errors.Is(err, ErrDiscarded) {
		t.Fatalf("err = %v, want ErrDiscarded", err)
	}
	if data, _ := p.Snapshot(); data != nil {
		t.Fatal("unmounted panel must not keep data")
	}
}

func TestPanelKeepsNewestRefresh(t *testing.T) {
	var calls int32
	slow := make(chan struct{})
	p := NewPanel[int32](func(context.Context) (*int32, error) {
		n := atomic.AddInt32(&calls, 1)
		if n == 2 {
			<-slow
		}
		return &n, nil
	}, nil)

	if _, err := p.Mount(context.Background()); err != nil {
		t.Fatalf("mount: %v", err)
	}

	older := make(chan error, 1)
	go func() {
		_, err := p.Refresh(context.Background())
		older <- err
	}()
	for atomic.LoadInt32(&calls) < 2 {
		time.Sleep(time.Millisecond)
	}

	newest, err := p.Refresh(context.Background())
	if err != nil || *newest != 3 {
		t.Fatalf("newest refresh = %v, %v", newest, err)
	}
	close(slow)
	if err := <-older; !errors.Is(err, ErrDiscarded) {
		t.Fatalf("older refresh err = %v, want ErrDiscarded", err)
	}
	if data, _ := p.Snapshot(); *data != 3 {
		t.Fatalf("snapshot = %d, want 3", *data)
	}
}

func TestPanelMutationErrorSkipsRefetch(t *testing.T) {
	var loads int32
	p := NewPanel[int32](func(context.Context) (*int32, error) {
		n := atomic.AddInt32(&loads, 1)
		return &n, nil
	}, nil)
	if _, err := p.Mount(context.Background()); err != nil {
		t.Fatalf("mount: %v", err)
	}
	boom := errors.New("rejected")
	if _, err := p.Mutate(context.Background(), func(context.Context) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if atomic.LoadInt32(&loads) != 1 {
		t.Fatalf("loads = %d, want 1", loads)
	}
}

func TestRefreshBeforeMountIsDiscarded(t *testing.T) {
	p := NewPanel[int](func(context.Context) (*int, error) {
		t.Fatal("loader must not run")
		return nil, nil
	}, nil)
	if _, err := p.Refresh(context.Background()); !errors.Is(err, ErrDiscarded) {
		t.Fatalf("err = %v", err)
	}
}
