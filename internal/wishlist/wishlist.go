// Package wishlist 未登录时使用的本地收藏夹
//
// 仅存在于进程内存，不与后端收藏夹同步。
package wishlist

import (
	"sync"

	"github.com/vera-byte/bookmandu/pkg/model"
)

// List 本地收藏夹，按加入顺序保存，同一本书只保留一条
type List struct {
	mu    sync.RWMutex
	items []model.WishlistItem
}

// New 创建空收藏夹
func New() *List { return &List{} }

// Add 加入一本书，已存在时返回false
func (l *List) Add(item model.WishlistItem) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, it := range l.items {
		if it.BookID == item.BookID {
			return false
		}
	}
	l.items = append(l.items, item)
	return true
}

// AddBook 由图书记录加入
func (l *List) AddBook(b model.Book) bool {
	return l.Add(model.WishlistItem{
		BookID:       b.BookID,
		BookTitle:    b.BookTitle,
		AuthorName:   b.AuthorName,
		Price:        b.Price,
		BookImageURL: b.BookImageURL,
	})
}

// Remove 移除，不存在时返回false
func (l *List) Remove(bookID int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, it := range l.items {
		if it.BookID == bookID {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return true
		}
	}
	return false
}

func (l *List) Contains(bookID int) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, it := range l.items {
		if it.BookID == bookID {
			return true
		}
	}
	return false
}

func (l *List) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = nil
}

// Items 当前内容的副本
func (l *List) Items() []model.WishlistItem {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]model.WishlistItem, len(l.items))
	copy(out, l.items)
	return out
}

func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}
