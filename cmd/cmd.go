package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/vera-byte/bookmandu/internal/config"
	"github.com/vera-byte/bookmandu/internal/guard"
	"github.com/vera-byte/bookmandu/internal/httpclient"
	"github.com/vera-byte/bookmandu/internal/logging"
	"github.com/vera-byte/bookmandu/internal/session"
	"github.com/vera-byte/bookmandu/internal/wishlist"
	"github.com/vera-byte/bookmandu/pkg/client"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd 根命令
var RootCmd = &cobra.Command{
	Use:   "bookmandu",
	Short: "Bookmandu bookstore client",
	Long: `Bookmandu is a command-line client for the Bookmandu bookstore API.
It also ships a development reverse proxy and an in-memory mock backend.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// 全局命令行参数
var flags struct {
	configFile   string
	envFile      string
	backend      string
	logLevel     string
	sessionStore string
}

func init() {
	pf := RootCmd.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "config file (default ./config/config.yaml or ~/.bookmandu/config.yaml)")
	pf.StringVar(&flags.envFile, "env-file", "", "dotenv file to load before reading the environment (default .env)")
	pf.StringVar(&flags.backend, "backend", "", "backend base URL")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&flags.sessionStore, "session-store", "", "session store: sqlite, redis, memory")
}

// app 一次进程内共享的运行状态
// shell 模式下跨命令复用，会话上下文与本地收藏夹都挂在这里
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	out    io.Writer
	errOut io.Writer
	in     *bufio.Reader

	store   session.Store
	session *session.Context
	http    *httpclient.Client
	api     *client.Client
	local   *wishlist.List

	mu       sync.Mutex
	redirect string
	expired  bool
	shell    bool
}

var current *app

// Execute 执行根命令
// 接口错误与守卫拒绝直接打印并以状态码1退出，其余错误返回给调用方
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := RootCmd.ExecuteContext(ctx)
	if current != nil {
		current.close()
	}
	if err == nil {
		return nil
	}
	cleared := current != nil && current.takeExpired()
	if msg, ok := userMessage(err, cleared); ok {
		fmt.Fprintln(os.Stderr, msg)
		stop()
		os.Exit(1)
	}
	return err
}

func setup(cmd *cobra.Command, _ []string) error {
	if current != nil {
		return nil
	}

	overrides := make(map[string]interface{})
	if flags.backend != "" {
		overrides["backend.url"] = flags.backend
	}
	if flags.logLevel != "" {
		overrides["log.level"] = flags.logLevel
	}
	if flags.sessionStore != "" {
		overrides["session.store"] = flags.sessionStore
	}

	cfg, err := config.Load(config.Options{File: flags.configFile, EnvFile: flags.envFile, Overrides: overrides})
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}

	current = &app{
		cfg:    cfg,
		logger: logger,
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
		in:     bufio.NewReader(cmd.InOrStdin()),
		local:  wishlist.New(),
	}
	logger.Debug("Configuration loaded", zap.String("backend", cfg.Backend.URL), zap.String("session_store", cfg.Session.Store))
	return nil
}

// connect 打开会话存储并构建HTTP客户端，只执行一次
func (a *app) connect(ctx context.Context) error {
	if a.api != nil {
		return nil
	}

	store, err := session.Open(session.Options{
		Type: a.cfg.Session.Store,
		Path: a.cfg.Session.Path,
		Redis: session.RedisOptions{
			Addr:     a.cfg.Session.RedisAddr,
			DB:       a.cfg.Session.RedisDB,
			Password: a.cfg.Session.RedisPassword,
			Prefix:   a.cfg.Session.RedisPrefix,
		},
	})
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}

	sc := session.NewContext(store, a.logger.Named("session"))
	if _, err := sc.Load(ctx); err != nil {
		store.Close()
		return fmt.Errorf("load session: %w", err)
	}

	hc := httpclient.New(httpclient.Config{
		BaseURL: a.cfg.Backend.URL,
		Timeout: a.cfg.Backend.Timeout,
	}, sc, a.logger.Named("http"))
	hc.OnSessionInvalidated(a.onSessionInvalidated)

	a.store = store
	a.session = sc
	a.http = hc
	a.api = client.New(hc)
	return nil
}

// onSessionInvalidated 401 的全局处理：销毁会话，提示一次，跳转登录
func (a *app) onSessionInvalidated(ctx context.Context, ev httpclient.SessionInvalidatedEvent) {
	cleared, err := a.session.Invalidate(ctx, ev.Method+" "+ev.URL)
	if err != nil {
		a.logger.Error("Failed to clear session", zap.Error(err))
		return
	}
	if !cleared {
		return
	}
	fmt.Fprintln(a.errOut, "Session expired. Please log in again.")
	a.mu.Lock()
	a.expired = true
	a.mu.Unlock()
	a.setRedirect(guard.LoginPath)
}

// takeExpired 本次命令是否因401清除了会话，读取后复位
func (a *app) takeExpired() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	expired := a.expired
	a.expired = false
	return expired
}

func (a *app) setRedirect(to string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.redirect = to
}

// takeRedirect 取出并清除待处理的跳转
func (a *app) takeRedirect() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	to := a.redirect
	a.redirect = ""
	return to
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("Failed to close session store", zap.Error(err))
		}
		a.store = nil
		a.api = nil
	}
	_ = a.logger.Sync()
}

// runFunc 已连接后端的命令实现
type runFunc func(ctx context.Context, a *app, args []string) error

// connected 连接后端但不做守卫检查
func connected(run runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a := current
		a.out = cmd.OutOrStdout()
		if err := a.connect(cmd.Context()); err != nil {
			return err
		}
		return run(cmd.Context(), a, args)
	}
}

// guarded 先按路由表检查访问级别，再执行命令
func guarded(route string, run runFunc) func(*cobra.Command, []string) error {
	return connected(func(ctx context.Context, a *app, args []string) error {
		if err := guard.CheckRoute(route, a.session); err != nil {
			a.logger.Debug("Route guard rejected", zap.String("route", route), zap.Error(err))
			a.setRedirect(guard.LoginPath)
			return err
		}
		return run(ctx, a, args)
	})
}

// userMessage 面向用户的错误文本
// cleared 表示401已清除会话并提示过，此时追加重新登录的提示
func userMessage(err error, cleared bool) (string, bool) {
	var redirect *guard.RedirectError
	if errors.As(err, &redirect) {
		if redirect.Level == guard.Authenticated {
			return "Please log in first: bookmandu login", true
		}
		return fmt.Sprintf("This view requires %s access. Log in with a suitable account: bookmandu login", redirect.Level), true
	}
	var apiErr *httpclient.APIError
	if errors.As(err, &apiErr) {
		msg := "Error: " + apiErr.Message
		if cleared && apiErr.Kind == httpclient.KindUnauthorized {
			msg += "\nRun 'bookmandu login' to continue."
		}
		return msg, true
	}
	if httpclient.IsUnauthorized(err) {
		return "Run 'bookmandu login' to continue.", true
	}
	if errors.Is(err, httpclient.ErrNotImplemented) {
		return "Error: " + err.Error(), true
	}
	return "", false
}
