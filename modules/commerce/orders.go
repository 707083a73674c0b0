package commerce

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/vera-byte/bookmandu/internal/mockdb"
	"github.com/vera-byte/bookmandu/internal/module"
	"github.com/vera-byte/bookmandu/pkg/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BulkThreshold 单笔订单达到该数量时享受批量折扣
const BulkThreshold = 5

var bulkRate = decimal.RequireFromString("0.05")

// orderTotal 订单金额，总数量达到 BulkThreshold 时减免 5%
func orderTotal(items []model.OrderItem) decimal.Decimal {
	total := decimal.Zero
	count := 0
	for _, it := range items {
		total = total.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
		count += it.Quantity
	}
	if count >= BulkThreshold {
		total = total.Sub(total.Mul(bulkRate))
	}
	return total.Round(2)
}

func newClaimCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (m *Module) placeOrder(c *gin.Context) {
	var req model.PlaceOrderRequest
	if !module.Bind(c, &req) {
		return
	}
	user := module.User(c)
	now := m.db.Now()

	var order model.Order
	err := m.db.Update(func(t *mockdb.Tables) error {
		cart := t.Carts[user.UserID]
		if len(cart) == 0 {
			return module.NewError(http.StatusBadRequest, "Cart is empty")
		}

		items := make([]model.OrderItem, 0, len(cart))
		for _, ci := range cart {
			book, ok := t.Books[ci.BookID]
			if !ok {
				return module.NewError(http.StatusBadRequest, fmt.Sprintf("Book %d is no longer available", ci.BookID))
			}
			if ci.Quantity > book.StockQuantity {
				return module.NewError(http.StatusBadRequest, fmt.Sprintf("Not enough stock for %s", book.BookTitle))
			}
			price := decimal.NewFromFloat(book.Price)
			if d, ok := t.ActiveDiscount(book.BookID, now); ok {
				off := decimal.NewFromFloat(d.Percentage).Div(decimal.NewFromInt(100))
				price = price.Sub(price.Mul(off)).Round(2)
			}
			items = append(items, model.OrderItem{
				BookID:    book.BookID,
				BookTitle: book.BookTitle,
				Price:     price.InexactFloat64(),
				Quantity:  ci.Quantity,
			})
		}

		for _, it := range items {
			b := t.Books[it.BookID]
			b.StockQuantity -= it.Quantity
			t.Books[it.BookID] = b
		}

		total := orderTotal(items)
		order = model.Order{
			OrderID:    t.NextID(),
			UserID:     user.UserID,
			OrderDate:  model.NewTime(now),
			TotalPrice: total.InexactFloat64(),
			Status:     model.OrderPending,
			ClaimCode:  newClaimCode(),
			Items:      items,
		}
		t.Orders[order.OrderID] = order
		delete(t.Carts, user.UserID)
		t.Notify(user.UserID, fmt.Sprintf("Order #%d placed. Your claim code is %s.", order.OrderID, order.ClaimCode), now)
		return nil
	})
	if err != nil {
		module.Abort(c, err)
		return
	}
	m.logger.Info("Order placed", zap.Int("order_id", order.OrderID), zap.String("user_id", user.UserID))
	c.JSON(http.StatusCreated, order)
}

func sortedOrders(t *mockdb.Tables, keep func(model.Order) bool) []model.Order {
	out := []model.Order{}
	for _, o := range t.Orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID > out[j].OrderID })
	return out
}

func (m *Module) listOrders(c *gin.Context) {
	userID := module.User(c).UserID
	var out []model.Order
	m.db.View(func(t *mockdb.Tables) {
		out = sortedOrders(t, func(o model.Order) bool { return o.UserID == userID })
	})
	c.JSON(http.StatusOK, out)
}

func (m *Module) allOrders(c *gin.Context) {
	var out []model.Order
	m.db.View(func(t *mockdb.Tables) {
		out = sortedOrders(t, func(model.Order) bool { return true })
	})
	c.JSON(http.StatusOK, out)
}

func (m *Module) getOrder(c *gin.Context) {
	id, ok := module.IntParam(c, "id")
	if !ok {
		return
	}
	user := module.User(c)
	var (
		order model.Order
		found bool
	)
	m.db.View(func(t *mockdb.Tables) {
		order, found = t.Orders[id]
	})
	if !found || (order.UserID != user.UserID && user.Role == model.RoleMember) {
		module.Fail(c, http.StatusNotFound, "Order not found")
		return
	}
	c.JSON(http.StatusOK, order)
}

func (m *Module) cancelOrder(c *gin.Context) {
	id, ok := module.IntParam(c, "id")
	if !ok {
		return
	}
	user := module.User(c)
	now := m.db.Now()
	err := m.db.Update(func(t *mockdb.Tables) error {
		order, found := t.Orders[id]
		if !found || order.UserID != user.UserID {
			return module.NewError(http.StatusNotFound, "Order not found")
		}
		if !order.IsPending() {
			return module.NewError(http.StatusBadRequest, "Only pending orders can be cancelled")
		}
		for _, it := range order.Items {
			if b, ok := t.Books[it.BookID]; ok {
				b.StockQuantity += it.Quantity
				t.Books[it.BookID] = b
			}
		}
		order.Status = model.OrderCancelled
		t.Orders[id] = order
		t.Notify(user.UserID, fmt.Sprintf("Order #%d was cancelled.", id), now)
		return nil
	})
	if err != nil {
		module.Abort(c, err)
		return
	}
	module.OK(c, "Order cancelled successfully")
}

// processOrder 员工凭会员号与取货码核销订单
func (m *Module) processOrder(c *gin.Context) {
	var req model.ProcessOrderRequest
	if !module.Bind(c, &req) {
		return
	}
	now := m.db.Now()
	err := m.db.Update(func(t *mockdb.Tables) error {
		order, found := t.Orders[req.OrderID]
		if !found {
			return module.NewError(http.StatusNotFound, "Order not found")
		}
		owner, ok := t.Users[order.UserID]
		if !ok || owner.MembershipID != req.MembershipID || !strings.EqualFold(order.ClaimCode, req.ClaimCode) {
			return module.NewError(http.StatusBadRequest, "Invalid membership ID or claim code")
		}
		if !order.IsPending() {
			return module.NewError(http.StatusBadRequest, "Order is not pending")
		}
		order.Status = model.OrderCompleted
		t.Orders[order.OrderID] = order
		t.Notify(order.UserID, fmt.Sprintf("Order #%d has been picked up. Thank you!", order.OrderID), now)
		return nil
	})
	if err != nil {
		module.Abort(c, err)
		return
	}
	m.logger.Info("Order processed", zap.Int("order_id", req.OrderID))
	module.OK(c, "Order processed successfully")
}
