package dashboard

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrDiscarded 结果到达时面板已卸载或已有更新的加载
var ErrDiscarded = errors.New("dashboard: result discarded")

// Loader 面板数据加载函数
type Loader[T any] func(ctx context.Context) (*T, error)

// Panel 持有一个视图的数据
// 每次加载分配一个代号；卸载或发起新加载后，旧代号的结果被丢弃。
// 进行中的请求不会被取消。
type Panel[T any] struct {
	load   Loader[T]
	logger *zap.Logger

	mu      sync.Mutex
	gen     uint64
	mounted bool
	data    *T
	err     error
}

// NewPanel 创建面板
func NewPanel[T any](load Loader[T], logger *zap.Logger) *Panel[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Panel[T]{load: load, logger: logger}
}

// Mount 挂载并加载数据
func (p *Panel[T]) Mount(ctx context.Context) (*T, error) {
	p.mu.Lock()
	p.mounted = true
	p.mu.Unlock()
	return p.Refresh(ctx)
}

// Unmount 卸载，之后到达的结果全部丢弃
func (p *Panel[T]) Unmount() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mounted = false
	p.gen++
	p.data, p.err = nil, nil
}

// Mounted 是否处于挂载状态
func (p *Panel[T]) Mounted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mounted
}

// Refresh 重新加载
// 返回 ErrDiscarded 表示结果未被采用
func (p *Panel[T]) Refresh(ctx context.Context) (*T, error) {
	p.mu.Lock()
	if !p.mounted {
		p.mu.Unlock()
		return nil, ErrDiscarded
	}
	p.gen++
	gen := p.gen
	p.mu.Unlock()

	data, err := p.load(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.mounted || gen != p.gen {
		p.logger.Debug("Discarding stale panel result", zap.Uint64("generation", gen))
		return nil, ErrDiscarded
	}
	p.data, p.err = data, err
	return data, err
}

// Mutate 执行一次写操作，成功后重新加载
func (p *Panel[T]) Mutate(ctx context.Context, fn func(ctx context.Context) error) (*T, error) {
	if err := fn(ctx); err != nil {
		return nil, err
	}
	return p.Refresh(ctx)
}

// Snapshot 最近一次采用的结果
func (p *Panel[T]) Snapshot() (*T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.data, p.err
}
