package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/vera-byte/bookmandu/pkg/model"
)

var admin = Session{Token: "tok-1", Username: "alice", Role: model.RoleAdmin, UserID: "u-1"}

// countingStore 统计 Remove 调用次数
type countingStore struct {
	Store
	mu      sync.Mutex
	removes map[string]int
	failSet string
}

func newCountingStore() *countingStore {
	return &countingStore{Store: NewMemoryStore(), removes: make(map[string]int)}
}

func (s *countingStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	s.removes[key]++
	s.mu.Unlock()
	return s.Store.Remove(ctx, key)
}

func (s *countingStore) Set(ctx context.Context, key, value string) error {
	if key == s.failSet {
		return errors.New("disk full")
	}
	return s.Store.Set(ctx, key, value)
}

func (s *countingStore) count(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removes[key]
}

func tempSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "session.db"))
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func assertKeysAbsent(t *testing.T, st Store) {
	t.Helper()
	ctx := context.Background()
	for _, key := range Keys {
		if _, err := st.Get(ctx, key); !errors.Is(err, ErrNotFound) {
			t.Fatalf("key %s should be absent, got err=%v", key, err)
		}
	}
}

func TestLoginPersistsAllKeys(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	sc := NewContext(st, nil)

	if err := sc.Login(ctx, admin); err != nil {
		t.Fatalf("login: %v", err)
	}
	if got := sc.User(); got == nil || *got != admin {
		t.Fatalf("user = %+v, want %+v", got, admin)
	}

	want := map[string]string{KeyToken: "tok-1", KeyUsername: "alice", KeyRole: "Admin", KeyUserID: "u-1"}
	for key, v := range want {
		got, err := st.Get(ctx, key)
		if err != nil || got != v {
			t.Fatalf("%s = %q (%v), want %q", key, got, err, v)
		}
	}
}

func TestLoginLogoutSequences(t *testing.T) {
	ctx := context.Background()
	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": tempSQLite(t),
	}
	for name, st := range stores {
		t.Run(name, func(t *testing.T) {
			sc := NewContext(st, nil)
			for i := 0; i < 3; i++ {
				if err := sc.Login(ctx, admin); err != nil {
					t.Fatalf("login: %v", err)
				}
				if err := sc.Logout(ctx); err != nil {
					t.Fatalf("logout: %v", err)
				}
				assertKeysAbsent(t, st)
				if sc.User() != nil {
					t.Fatalf("user should be nil after logout")
				}
			}
			// 未登录时登出同样安全
			if err := sc.Logout(ctx); err != nil {
				t.Fatalf("logout without session: %v", err)
			}
			assertKeysAbsent(t, st)
		})
	}
}

func TestLoginRejectsIncompleteSession(t *testing.T) {
	sc := NewContext(NewMemoryStore(), nil)
	partial := admin
	partial.Role = ""
	if err := sc.Login(context.Background(), partial); !errors.Is(err, ErrIncomplete) {
		t.Fatalf("want ErrIncomplete, got %v", err)
	}
	if sc.User() != nil {
		t.Fatalf("user should stay absent")
	}
}

func TestLoginRollsBackOnWriteFailure(t *testing.T) {
	ctx := context.Background()
	st := newCountingStore()
	st.failSet = KeyRole
	sc := NewContext(st, nil)

	if err := sc.Login(ctx, admin); err == nil {
		t.Fatalf("expected persist error")
	}
	assertKeysAbsent(t, st)
	if sc.User() != nil {
		t.Fatalf("user should be absent after failed login")
	}
}

func TestLoadRehydratesFullSession(t *testing.T) {
	ctx := context.Background()
	st := tempSQLite(t)
	if err := NewContext(st, nil).Login(ctx, admin); err != nil {
		t.Fatalf("login: %v", err)
	}

	// 新进程启动
	sc := NewContext(st, nil)
	got, err := sc.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got == nil || *got != admin {
		t.Fatalf("loaded %+v, want %+v", got, admin)
	}
	if u := sc.User(); u == nil || *u != admin {
		t.Fatalf("user = %+v", u)
	}
}

func TestLoadTreatsPartialStateAsAbsent(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]string
	}{
		{name: "token only", values: map[string]string{KeyToken: "t"}},
		{name: "token without role", values: map[string]string{KeyToken: "t", KeyUsername: "bob", KeyUserID: "u"}},
		{name: "unknown role", values: map[string]string{KeyToken: "t", KeyUsername: "bob", KeyUserID: "u", KeyRole: "Root"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			st := NewMemoryStore()
			for k, v := range tt.values {
				st.Set(ctx, k, v)
			}
			sc := NewContext(st, nil)
			got, err := sc.Load(ctx)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if got != nil || sc.User() != nil {
				t.Fatalf("partial state must load as absent, got %+v", got)
			}
			assertKeysAbsent(t, st)

			tok, err := sc.Token(ctx)
			if err != nil || tok != "" {
				t.Fatalf("token = %q (%v), want empty", tok, err)
			}
		})
	}
}

func TestInvalidateClearsExactlyOnce(t *testing.T) {
	ctx := context.Background()
	st := newCountingStore()
	sc := NewContext(st, nil)
	if err := sc.Login(ctx, admin); err != nil {
		t.Fatalf("login: %v", err)
	}

	var events []Event
	var evMu sync.Mutex
	sc.Subscribe(func(ev Event) {
		evMu.Lock()
		events = append(events, ev)
		evMu.Unlock()
	})

	var wg sync.WaitGroup
	var cleared int
	var clearedMu sync.Mutex
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := sc.Invalidate(ctx, "401")
			if err != nil {
				t.Errorf("invalidate: %v", err)
				return
			}
			if ok {
				clearedMu.Lock()
				cleared++
				clearedMu.Unlock()
			}
		}()
	}
	wg.Wait()

	if cleared != 1 {
		t.Fatalf("cleared %d times, want 1", cleared)
	}
	if st.count(KeyToken) != 1 || st.count(KeyRole) != 1 {
		t.Fatalf("token removed %d times, role removed %d times, want 1 each", st.count(KeyToken), st.count(KeyRole))
	}
	assertKeysAbsent(t, st)
	if len(events) != 1 || events[0].Kind != EventInvalidated || events[0].Username != "alice" {
		t.Fatalf("events = %+v", events)
	}
}

func TestTokenReadsStoreEachTime(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	sc := NewContext(st, nil)
	if err := sc.Login(ctx, admin); err != nil {
		t.Fatalf("login: %v", err)
	}
	st.Set(ctx, KeyToken, "rotated")
	tok, err := sc.Token(ctx)
	if err != nil || tok != "rotated" {
		t.Fatalf("token = %q (%v), want rotated", tok, err)
	}
}

func TestOpen(t *testing.T) {
	if _, err := Open(Options{Type: "etcd"}); err == nil {
		t.Fatalf("expected error for unknown store")
	}
	if _, err := Open(Options{Type: "sqlite"}); err == nil {
		t.Fatalf("expected error for missing path")
	}
	st, err := Open(Options{Type: "memory"})
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	st.Close()
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("BOOKMANDU_TEST_REDIS")
	if addr == "" {
		t.Skip("BOOKMANDU_TEST_REDIS not set")
	}
	ctx := context.Background()
	st := NewRedisStore(RedisOptions{Addr: addr, Prefix: "bookmandu:test:" + t.Name() + ":"})
	t.Cleanup(func() { st.Close() })
	if err := st.Ping(ctx); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}

	sc := NewContext(st, nil)
	if err := sc.Login(ctx, admin); err != nil {
		t.Fatalf("login: %v", err)
	}
	got, err := NewContext(st, nil).Load(ctx)
	if err != nil || got == nil || *got != admin {
		t.Fatalf("load = %+v (%v)", got, err)
	}
	if err := sc.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	assertKeysAbsent(t, st)
}
