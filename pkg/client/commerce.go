package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/vera-byte/bookmandu/internal/httpclient"
	"github.com/vera-byte/bookmandu/pkg/model"
)

// CartService 购物车服务，购物车由服务端按用户保存
type CartService struct {
	d Doer
}

// Get 获取当前用户购物车
func (s *CartService) Get(ctx context.Context) (*model.Cart, error) {
	var cart model.Cart
	err := s.d.Do(ctx, httpclient.Call{Op: "Failed to load cart items", Method: http.MethodGet, Path: "/api/cart", Result: &cart})
	if err != nil {
		return nil, err
	}
	if cart.Items == nil {
		cart.Items = []model.CartItem{}
	}
	return &cart, nil
}

// Add 加入购物车，quantity 小于1时按1处理
func (s *CartService) Add(ctx context.Context, bookID, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	return s.d.Do(ctx, httpclient.Call{
		Op:     "Failed to add to cart",
		Method: http.MethodPost,
		Path:   "/api/cart",
		Body:   model.AddToCartRequest{BookID: bookID, Quantity: quantity},
	})
}

// UpdateItem 修改条目数量
func (s *CartService) UpdateItem(ctx context.Context, cartItemID, quantity int) error {
	return s.d.Do(ctx, httpclient.Call{
		Op:     "Failed to update quantity",
		Method: http.MethodPut,
		Path:   fmt.Sprintf("/api/cart/%d", cartItemID),
		Body:   model.UpdateCartItemRequest{Quantity: quantity},
	})
}

// Remove 移除条目
func (s *CartService) Remove(ctx context.Context, cartItemID int) error {
	return s.d.Do(ctx, httpclient.Call{Op: "Failed to remove item", Method: http.MethodDelete, Path: fmt.Sprintf("/api/cart/%d", cartItemID)})
}

// Clear 清空购物车
func (s *CartService) Clear(ctx context.Context) error {
	return s.d.Do(ctx, httpclient.Call{Op: "Failed to clear cart", Method: http.MethodDelete, Path: "/api/cart"})
}

// WishlistService 服务端收藏夹
type WishlistService struct {
	d Doer
}

type wishlistBody struct {
	BookID int `json:"bookId" validate:"required"`
}

func (s *WishlistService) List(ctx context.Context) ([]model.WishlistItem, error) {
	var out []model.WishlistItem
	err := s.d.Do(ctx, httpclient.Call{Op: "Failed to fetch wishlist", Method: http.MethodGet, Path: "/api/wishlist", Result: &out})
	return out, err
}

func (s *WishlistService) Add(ctx context.Context, bookID int) error {
	return s.d.Do(ctx, httpclient.Call{Op: "Failed to add to wishlist", Method: http.MethodPost, Path: "/api/wishlist", Body: wishlistBody{bookID}})
}

func (s *WishlistService) Remove(ctx context.Context, bookID int) error {
	return s.d.Do(ctx, httpclient.Call{Op: "Failed to remove from wishlist", Method: http.MethodDelete, Path: fmt.Sprintf("/api/wishlist/%d", bookID)})
}

// OrderService 订单服务
type OrderService struct {
	d Doer
}

// Place 由当前购物车下单
func (s *OrderService) Place(ctx context.Context, req model.PlaceOrderRequest) (*model.Order, error) {
	var order model.Order
	err := s.d.Do(ctx, httpclient.Call{Op: "Failed to place order", Method: http.MethodPost, Path: "/api/order", Body: req, Result: &order})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// List 当前用户的订单
func (s *OrderService) List(ctx context.Context) ([]model.Order, error) {
	var out []model.Order
	err := s.d.Do(ctx, httpclient.Call{Op: "Failed to fetch orders", Method: http.MethodGet, Path: "/api/order", Result: &out})
	return out, err
}

func (s *OrderService) Get(ctx context.Context, orderID int) (*model.Order, error) {
	var order model.Order
	err := s.d.Do(ctx, httpclient.Call{Op: "Failed to fetch order", Method: http.MethodGet, Path: fmt.Sprintf("/api/order/%d", orderID), Result: &order})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *OrderService) Cancel(ctx context.Context, orderID int) error {
	return s.d.Do(ctx, httpclient.Call{Op: "Failed to cancel order", Method: http.MethodDelete, Path: fmt.Sprintf("/api/order/%d", orderID)})
}

// Process 员工凭会员号与取货码核销订单
func (s *OrderService) Process(ctx context.Context, req model.ProcessOrderRequest) error {
	return s.d.Do(ctx, httpclient.Call{Op: "Failed to process order", Method: http.MethodPost, Path: "/api/order/process", Body: req})
}

// All 全部订单，员工使用
func (s *OrderService) All(ctx context.Context) ([]model.Order, error) {
	var out []model.Order
	err := s.d.Do(ctx, httpclient.Call{Op: "Failed to fetch orders", Method: http.MethodGet, Path: "/api/order/all", Result: &out})
	return out, err
}

// Completed 当前用户已完成的订单
func (s *OrderService) Completed(ctx context.Context) ([]model.Order, error) {
	orders, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return model.FilterOrders(orders, model.Order.IsCompleted), nil
}
