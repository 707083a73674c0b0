package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// 订单状态
const (
	OrderPending   = "Pending"
	OrderCompleted = "Completed"
	OrderCancelled = "Cancelled"
)

// CartItem 购物车条目
type CartItem struct {
	CartItemID   int     `json:"cartItemId" validate:"required"`
	BookID       int     `json:"bookId"`
	BookTitle    string  `json:"bookTitle"`
	Price        float64 `json:"price" validate:"gte=0"`
	Quantity     int     `json:"quantity" validate:"gte=0"`
	BookImageURL string  `json:"bookImageUrl,omitempty"`
}

// LineTotal 单行金额 price * quantity
func (i CartItem) LineTotal() decimal.Decimal {
	return decimal.NewFromFloat(i.Price).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart 购物车，服务端按用户持久化
type Cart struct {
	Items []CartItem `json:"items" validate:"dive"`
}

// Subtotal 购物车小计
func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Count 商品总数量
func (c Cart) Count() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// AddToCartRequest 加入购物车请求
type AddToCartRequest struct {
	BookID   int `json:"bookId" validate:"required"`
	Quantity int `json:"quantity" validate:"gte=1"`
}

// UpdateCartItemRequest 修改购物车条目请求
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"gte=1"`
}

// WishlistItem 收藏夹条目
type WishlistItem struct {
	BookID       int     `json:"bookId" validate:"required"`
	BookTitle    string  `json:"bookTitle"`
	AuthorName   string  `json:"authorName,omitempty"`
	Price        float64 `json:"price"`
	BookImageURL string  `json:"bookImageUrl,omitempty"`
}

// Address 收货地址
type Address struct {
	Street  string `json:"street" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country" validate:"required"`
}

// PaymentMethod 支付信息
type PaymentMethod struct {
	CardNumber string `json:"cardNumber"`
	ExpiryDate string `json:"expiryDate"`
	CVV        string `json:"cvv"`
	NameOnCard string `json:"nameOnCard"`
}

// PlaceOrderRequest 下单请求
type PlaceOrderRequest struct {
	ShippingAddress Address       `json:"shippingAddress"`
	PaymentMethod   PaymentMethod `json:"paymentMethod"`
}

// OrderItem 订单明细
type OrderItem struct {
	BookID    int     `json:"bookId"`
	BookTitle string  `json:"bookTitle"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// Order 订单
type Order struct {
	OrderID    int         `json:"orderId" validate:"required"`
	UserID     string      `json:"userId,omitempty"`
	OrderDate  Time        `json:"orderDate"`
	TotalPrice float64     `json:"totalPrice"`
	Status     string      `json:"status"`
	ClaimCode  string      `json:"claimCode,omitempty"`
	Items      []OrderItem `json:"items,omitempty"`
}

// IsCompleted 订单是否已完成
func (o Order) IsCompleted() bool {
	return strings.EqualFold(o.Status, OrderCompleted)
}

// IsPending 订单是否待处理
func (o Order) IsPending() bool {
	return strings.EqualFold(o.Status, OrderPending)
}

// ProcessOrderRequest 员工核销订单请求
type ProcessOrderRequest struct {
	OrderID      int    `json:"orderId" validate:"required"`
	MembershipID string `json:"membershipId" validate:"required"`
	ClaimCode    string `json:"claimCode" validate:"required"`
}

// FilterOrders 按条件过滤订单
func FilterOrders(orders []Order, keep func(Order) bool) []Order {
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}
