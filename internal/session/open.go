package session

import (
	"fmt"
)

// Options 存储后端选择
type Options struct {
	// Type 存储类型: sqlite, redis, memory
	Type  string
	Path  string
	Redis RedisOptions
}

// Open 根据配置打开会话存储
func Open(opts Options) (Store, error) {
	switch opts.Type {
	case "", "sqlite":
		if opts.Path == "" {
			return nil, fmt.Errorf("session path is required for sqlite store")
		}
		return NewSQLiteStore(opts.Path)
	case "redis":
		return NewRedisStore(opts.Redis), nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported session store type: %s", opts.Type)
	}
}
