// Package commerce 模拟后端的购物车、收藏夹与订单模块
package commerce

import (
	"context"
	"errors"
	"net/http"

	"github.com/vera-byte/bookmandu/internal/middleware"
	"github.com/vera-byte/bookmandu/internal/mockdb"
	"github.com/vera-byte/bookmandu/internal/module"
	"github.com/vera-byte/bookmandu/pkg/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Module 交易模块
type Module struct {
	db     *mockdb.DB
	issuer *middleware.TokenIssuer
	logger *zap.Logger
}

// New 创建交易模块
func New() *Module { return &Module{} }

func (m *Module) Name() string { return "commerce" }

func (m *Module) Description() string {
	return "Shopping cart, wishlist and order fulfilment"
}

func (m *Module) Initialize(_ context.Context, env *module.Env) error {
	if env.DB == nil || env.Issuer == nil {
		return errors.New("commerce module requires db and token issuer")
	}
	m.db = env.DB
	m.issuer = env.Issuer
	m.logger = env.Logger.Named("commerce")
	return nil
}

// RegisterRoutes 全部接口需要登录；订单核销与全量订单仅员工和管理员
func (m *Module) RegisterRoutes(api *gin.RouterGroup) error {
	auth := middleware.Auth(m.issuer)

	cart := api.Group("/cart", auth)
	cart.GET("", m.getCart)
	cart.POST("", m.addToCart)
	cart.PUT("/:id", m.updateCartItem)
	cart.DELETE("/:id", m.removeCartItem)
	cart.DELETE("", m.clearCart)

	wishlist := api.Group("/wishlist", auth)
	wishlist.GET("", m.getWishlist)
	wishlist.POST("", m.addToWishlist)
	wishlist.DELETE("/:id", m.removeFromWishlist)

	staff := middleware.RequireRole(model.RoleStaff, model.RoleAdmin)
	orders := api.Group("/order", auth)
	orders.POST("", m.placeOrder)
	orders.GET("", m.listOrders)
	orders.GET("/all", staff, m.allOrders)
	orders.POST("/process", staff, m.processOrder)
	orders.GET("/:id", m.getOrder)
	orders.DELETE("/:id", m.cancelOrder)
	return nil
}

func (m *Module) HealthCheck(context.Context) error { return nil }

func (m *Module) Shutdown(context.Context) error { return nil }

func (m *Module) getCart(c *gin.Context) {
	userID := module.User(c).UserID
	var items []model.CartItem
	m.db.View(func(t *mockdb.Tables) {
		for _, item := range t.Carts[userID] {
			// 价格与封面以目录为准
			if b, ok := t.Book(item.BookID); ok {
				item.BookTitle = b.BookTitle
				item.Price = b.Price
				item.BookImageURL = b.BookImageURL
			}
			items = append(items, item)
		}
	})
	if items == nil {
		items = []model.CartItem{}
	}
	c.JSON(http.StatusOK, model.Cart{Items: items})
}

func (m *Module) addToCart(c *gin.Context) {
	var req model.AddToCartRequest
	if !module.Bind(c, &req) {
		return
	}
	userID := module.User(c).UserID

	err := m.db.Update(func(t *mockdb.Tables) error {
		book, ok := t.Books[req.BookID]
		if !ok {
			return module.NewError(http.StatusNotFound, "Book not found")
		}
		items := t.Carts[userID]
		for i := range items {
			if items[i].BookID == req.BookID {
				if items[i].Quantity+req.Quantity > book.StockQuantity {
					return module.NewError(http.StatusBadRequest, "Not enough stock available")
				}
				items[i].Quantity += req.Quantity
				return nil
			}
		}
		if req.Quantity > book.StockQuantity {
			return module.NewError(http.StatusBadRequest, "Not enough stock available")
		}
		t.Carts[userID] = append(items, model.CartItem{
			CartItemID: t.NextID(),
			BookID:     book.BookID,
			BookTitle:  book.BookTitle,
			Price:      book.Price,
			Quantity:   req.Quantity,
		})
		return nil
	})
	if err != nil {
		module.Abort(c, err)
		return
	}
	module.OK(c, "Item added to cart")
}

func (m *Module) updateCartItem(c *gin.Context) {
	id, ok := module.IntParam(c, "id")
	if !ok {
		return
	}
	var req model.UpdateCartItemRequest
	if !module.Bind(c, &req) {
		return
	}
	userID := module.User(c).UserID

	err := m.db.Update(func(t *mockdb.Tables) error {
		items := t.Carts[userID]
		for i := range items {
			if items[i].CartItemID != id {
				continue
			}
			if book, ok := t.Books[items[i].BookID]; ok && req.Quantity > book.StockQuantity {
				return module.NewError(http.StatusBadRequest, "Not enough stock available")
			}
			items[i].Quantity = req.Quantity
			return nil
		}
		return module.NewError(http.StatusNotFound, "Cart item not found")
	})
	if err != nil {
		module.Abort(c, err)
		return
	}
	module.OK(c, "Cart updated successfully")
}

func (m *Module) removeCartItem(c *gin.Context) {
	id, ok := module.IntParam(c, "id")
	if !ok {
		return
	}
	userID := module.User(c).UserID
	err := m.db.Update(func(t *mockdb.Tables) error {
		items := t.Carts[userID]
		for i := range items {
			if items[i].CartItemID == id {
				t.Carts[userID] = append(items[:i], items[i+1:]...)
				return nil
			}
		}
		return module.NewError(http.StatusNotFound, "Cart item not found")
	})
	if err != nil {
		module.Abort(c, err)
		return
	}
	module.OK(c, "Item removed from cart")
}

func (m *Module) clearCart(c *gin.Context) {
	userID := module.User(c).UserID
	m.db.Mutate(func(t *mockdb.Tables) {
		delete(t.Carts, userID)
	})
	module.OK(c, "Cart cleared")
}

type wishlistBody struct {
	BookID int `json:"bookId" validate:"required"`
}

func (m *Module) getWishlist(c *gin.Context) {
	userID := module.User(c).UserID
	out := []model.WishlistItem{}
	m.db.View(func(t *mockdb.Tables) {
		for _, id := range t.Wishlists[userID] {
			if b, ok := t.Book(id); ok {
				out = append(out, model.WishlistItem{
					BookID:       b.BookID,
					BookTitle:    b.BookTitle,
					AuthorName:   b.AuthorName,
					Price:        b.Price,
					BookImageURL: b.BookImageURL,
				})
			}
		}
	})
	c.JSON(http.StatusOK, out)
}

func (m *Module) addToWishlist(c *gin.Context) {
	var req wishlistBody
	if !module.Bind(c, &req) {
		return
	}
	userID := module.User(c).UserID
	err := m.db.Update(func(t *mockdb.Tables) error {
		if _, ok := t.Books[req.BookID]; !ok {
			return module.NewError(http.StatusNotFound, "Book not found")
		}
		for _, id := range t.Wishlists[userID] {
			if id == req.BookID {
				return module.NewError(http.StatusBadRequest, "Book is already in wishlist")
			}
		}
		t.Wishlists[userID] = append(t.Wishlists[userID], req.BookID)
		return nil
	})
	if err != nil {
		module.Abort(c, err)
		return
	}
	module.OK(c, "Book added to wishlist")
}

func (m *Module) removeFromWishlist(c *gin.Context) {
	bookID, ok := module.IntParam(c, "id")
	if !ok {
		return
	}
	userID := module.User(c).UserID
	err := m.db.Update(func(t *mockdb.Tables) error {
		ids := t.Wishlists[userID]
		for i, id := range ids {
			if id == bookID {
				t.Wishlists[userID] = append(ids[:i], ids[i+1:]...)
				return nil
			}
		}
		return module.NewError(http.StatusNotFound, "Book is not in wishlist")
	})
	if err != nil {
		module.Abort(c, err)
		return
	}
	module.OK(c, "Book removed from wishlist")
}
