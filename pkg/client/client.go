// Package client 提供 Bookmandu 后端各资源的服务封装
//
// 每个方法恰好发出一个请求，请求与响应都经过结构校验，
// 失败统一返回 *httpclient.APIError。
package client

import (
	"context"

	"github.com/vera-byte/bookmandu/internal/httpclient"
)

// Doer 发送后端调用
type Doer interface {
	Do(ctx context.Context, call httpclient.Call) error
	BaseURL() string
}

// Client 全部资源服务的集合
type Client struct {
	Auth          *AuthService
	Books         *BookService
	Authors       *AuthorService
	Genres        *GenreService
	Publishers    *PublisherService
	Users         *UserService
	Cart          *CartService
	Wishlist      *WishlistService
	Orders        *OrderService
	Reviews       *ReviewService
	Discounts     *DiscountService
	Notifications *NotificationService
	Announcements *AnnouncementService
}

// New 基于共享HTTP客户端创建服务集合
func New(d Doer) *Client {
	return &Client{
		Auth:          &AuthService{d: d},
		Books:         &BookService{d: d},
		Authors:       &AuthorService{d: d},
		Genres:        &GenreService{d: d},
		Publishers:    &PublisherService{d: d},
		Users:         &UserService{d: d},
		Cart:          &CartService{d: d},
		Wishlist:      &WishlistService{d: d},
		Orders:        &OrderService{d: d},
		Reviews:       &ReviewService{d: d},
		Discounts:     &DiscountService{d: d},
		Notifications: &NotificationService{d: d},
		Announcements: &AnnouncementService{d: d},
	}
}
