package session

import (
	"context"
	"errors"
	"sync"
)

// 持久化会话使用的键名，与浏览器端 localStorage 保持一致
const (
	KeyToken    = "token"
	KeyUsername = "username"
	KeyRole     = "userRole"
	KeyUserID   = "userId"
)

// Keys 会话的全部持久化键
var Keys = []string{KeyToken, KeyUsername, KeyRole, KeyUserID}

// ErrNotFound 键不存在
var ErrNotFound = errors.New("session key not found")

// Store 持久化键值存储
// 无过期、无加密；具体实现决定持久化范围
type Store interface {
	// Get 读取键值，不存在时返回 ErrNotFound
	Get(ctx context.Context, key string) (string, error)
	// Set 写入键值
	Set(ctx context.Context, key, value string) error
	// Remove 删除键，键不存在不视为错误
	Remove(ctx context.Context, key string) error
	// Close 释放底层资源
	Close() error
}

// MemoryStore 内存实现，进程退出即丢失
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *MemoryStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// lookup 读取键值，不存在返回空串
func lookup(ctx context.Context, store Store, key string) (string, error) {
	v, err := store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return v, err
}
