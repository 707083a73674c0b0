package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate 隔离 HOME 与 .env，避免读取开发机上的配置
func isolate(t *testing.T) Options {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("BOOKMANDU_BACKEND_URL", "")
	os.Unsetenv("BOOKMANDU_BACKEND_URL")
	t.Setenv("REACT_APP_BACKEND_URL", "")
	os.Unsetenv("REACT_APP_BACKEND_URL")
	return Options{EnvFile: filepath.Join(dir, "missing.env")}
}

func TestLoadDefaults(t *testing.T) {
	opts := isolate(t)
	cfg, err := Load(opts)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend.URL != "http://localhost:5036" {
		t.Fatalf("backend url = %q", cfg.Backend.URL)
	}
	if cfg.Backend.Timeout != 0 {
		t.Fatalf("timeout = %v, want 0", cfg.Backend.Timeout)
	}
	if cfg.Session.Store != "sqlite" || filepath.Base(cfg.Session.Path) != "session.db" {
		t.Fatalf("session = %+v", cfg.Session)
	}
	if cfg.Log.Level != "warn" {
		t.Fatalf("log level = %q", cfg.Log.Level)
	}
	if cfg.Proxy.Target != cfg.Backend.URL {
		t.Fatalf("proxy target should follow backend url, got %q", cfg.Proxy.Target)
	}
	if cfg.Mock.TokenTTL != time.Hour {
		t.Fatalf("token ttl = %v", cfg.Mock.TokenTTL)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{name: "legacy variable", env: map[string]string{"REACT_APP_BACKEND_URL": "http://api.example:8080/"}, want: "http://api.example:8080"},
		{name: "prefixed variable wins", env: map[string]string{"REACT_APP_BACKEND_URL": "http://legacy:1", "BOOKMANDU_BACKEND_URL": "http://new:2"}, want: "http://new:2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load(opts)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if cfg.Backend.URL != tt.want {
				t.Fatalf("backend url = %q, want %q", cfg.Backend.URL, tt.want)
			}
		})
	}
}

func TestLoadFileAndOverrides(t *testing.T) {
	opts := isolate(t)
	file := filepath.Join(t.TempDir(), "config.yaml")
	content := "backend:\n  url: http://file:9000\n  timeout: 5s\nsession:\n  store: memory\nlog:\n  level: debug\n"
	if err := os.WriteFile(file, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	opts.File = file
	opts.Overrides = map[string]interface{}{"log.level": "error"}

	cfg, err := Load(opts)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend.URL != "http://file:9000" || cfg.Backend.Timeout != 5*time.Second {
		t.Fatalf("backend = %+v", cfg.Backend)
	}
	if cfg.Session.Store != "memory" {
		t.Fatalf("store = %q", cfg.Session.Store)
	}
	if cfg.Log.Level != "error" {
		t.Fatalf("flag override lost, level = %q", cfg.Log.Level)
	}
}

func TestLoadEnvFile(t *testing.T) {
	opts := isolate(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte("BOOKMANDU_SESSION_STORE=memory\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("BOOKMANDU_SESSION_STORE") })
	opts.EnvFile = envFile

	cfg, err := Load(opts)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Session.Store != "memory" {
		t.Fatalf("store = %q, want memory", cfg.Session.Store)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	opts := isolate(t)
	opts.Overrides = map[string]interface{}{"session.store": "etcd"}
	if _, err := Load(opts); err == nil {
		t.Fatalf("expected validation error")
	}

	opts.Overrides = nil
	opts.File = filepath.Join(t.TempDir(), "absent.yaml")
	if _, err := Load(opts); err == nil {
		t.Fatalf("explicit missing file should fail")
	}
}
