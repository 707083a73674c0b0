package cmd

import (
	"fmt"
	"io"
	"net"
	"sort"

	"github.com/vera-byte/bookmandu/internal/devserver"
	"github.com/vera-byte/bookmandu/internal/middleware"
	"github.com/vera-byte/bookmandu/internal/proxy"
	"github.com/vera-byte/bookmandu/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// proxyCmd 开发代理，把 /api 转发到后端
var proxyCmd = &cobra.Command{
	Use:   "proxy",
	Short: "Run the development reverse proxy",
	Long: `Forward every /api request to the configured backend target.
Certificate verification is skipped so a self-signed local backend works.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a := current
		cfg := a.cfg

		opts := proxy.Options{
			Target:      cfg.Proxy.Target,
			AllowOrigin: cfg.Proxy.AllowOrigin,
		}
		if cfg.RateLimit.Enabled {
			limiter, err := middleware.NewRateLimiter(cfg.RateLimit)
			if err != nil {
				return fmt.Errorf("create rate limiter: %w", err)
			}
			opts.Limiter = limiter
		}

		router, err := proxy.NewRouter(opts, a.logger.Named("proxy"))
		if err != nil {
			return err
		}

		addr := net.JoinHostPort("", cfg.Proxy.Port)
		printRouteDetailsTable(a.out, getRouteDetails(router.Routes()))
		fmt.Fprintf(a.out, "\nProxying %s/* to %s on %s\n", proxy.PathPrefix, cfg.Proxy.Target, addr)
		a.logger.Info("Starting proxy", zap.String("addr", addr), zap.String("target", cfg.Proxy.Target), zap.Bool("rate_limit", cfg.RateLimit.Enabled))
		return server.Run(cmd.Context(), addr, router, a.logger.Named("proxy"))
	},
}

// mockBackendCmd 内存模拟后端
var mockBackendCmd = &cobra.Command{
	Use:   "mock-backend",
	Short: "Run the in-memory Bookmandu backend",
	Long: `Serve the Bookmandu API from memory with seeded accounts:
  admin@bookmandu.com / admin123
  staff@bookmandu.com / staff123
  member@bookmandu.com / member123`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a := current
		srv, err := devserver.New(cmd.Context(), a.cfg.Mock, a.cfg.Proxy.AllowOrigin, a.logger.Named("mock"))
		if err != nil {
			return err
		}

		printRouteDetailsTable(a.out, getRouteDetails(srv.Routes()))
		fmt.Fprintf(a.out, "\nMock backend listening on %s\n", srv.Addr())
		a.logger.Info("Starting mock backend", zap.String("addr", srv.Addr()))
		return srv.Run(cmd.Context())
	},
}

// RouteDetail 路由详细信息
type RouteDetail struct {
	Method  string
	Path    string
	Handler string
}

// getRouteDetails 获取路由详细信息，按路径排序
// routes: gin 路由信息
// 返回值: []RouteDetail 路由详细信息列表
func getRouteDetails(routes gin.RoutesInfo) []RouteDetail {
	details := make([]RouteDetail, 0, len(routes))
	for _, route := range routes {
		details = append(details, RouteDetail{
			Method:  route.Method,
			Path:    route.Path,
			Handler: route.Handler,
		})
	}
	sort.SliceStable(details, func(i, j int) bool {
		if details[i].Path != details[j].Path {
			return details[i].Path < details[j].Path
		}
		return details[i].Method < details[j].Method
	})
	return details
}

// printRouteDetailsTable 输出路由详细信息表格
func printRouteDetailsTable(w io.Writer, details []RouteDetail) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Method", "Path", "Handler"})

	for _, detail := range details {
		// 截断过长的处理器名称
		table.Append([]string{detail.Method, detail.Path, truncate(detail.Handler, 60)})
	}

	table.SetBorder(false)
	table.SetCenterSeparator("|")
	table.SetColumnSeparator("|")
	table.SetRowSeparator("-")
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	fmt.Fprintln(w, "\nRoute Details:")
	table.Render()
}

func init() {
	RootCmd.AddCommand(proxyCmd, mockBackendCmd)
}
