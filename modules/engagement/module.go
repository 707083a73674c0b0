// Package engagement 模拟后端的书评、折扣、通知与公告模块
package engagement

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/vera-byte/bookmandu/internal/middleware"
	"github.com/vera-byte/bookmandu/internal/mockdb"
	"github.com/vera-byte/bookmandu/internal/module"
	"github.com/vera-byte/bookmandu/pkg/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Module 互动模块
type Module struct {
	db     *mockdb.DB
	issuer *middleware.TokenIssuer
	logger *zap.Logger
}

// New 创建互动模块
func New() *Module { return &Module{} }

func (m *Module) Name() string { return "engagement" }

func (m *Module) Description() string {
	return "Reviews, discounts, notifications and announcements"
}

func (m *Module) Initialize(_ context.Context, env *module.Env) error {
	if env.DB == nil || env.Issuer == nil {
		return errors.New("engagement module requires db and token issuer")
	}
	m.db = env.DB
	m.issuer = env.Issuer
	m.logger = env.Logger.Named("engagement")
	return nil
}

func (m *Module) RegisterRoutes(api *gin.RouterGroup) error {
	auth := middleware.Auth(m.issuer)
	admin := middleware.RequireRole(model.RoleAdmin)

	api.POST("/review", auth, middleware.RequireRole(model.RoleMember), m.addReview)
	api.GET("/review/:id", m.reviewsByBook)

	api.GET("/discount", m.allDiscounts)
	api.GET("/discount/:id", m.discountByBook)
	api.POST("/discount", auth, admin, m.addDiscount)

	api.GET("/Notification/:id", auth, m.notifications)
	api.PUT("/Notification/:id/mark-as-read", auth, m.markAsRead)

	api.GET("/announcement/active", m.activeAnnouncements)
	api.POST("/announcement", auth, admin, m.createAnnouncement)
	api.PUT("/announcement/:id", auth, admin, m.updateAnnouncement)
	api.PUT("/announcement/:id/deactivate", auth, admin, m.deactivateAnnouncement)
	return nil
}

func (m *Module) HealthCheck(context.Context) error { return nil }

func (m *Module) Shutdown(context.Context) error { return nil }

// addReview 只有买过该书（订单已完成）的会员可以评论
func (m *Module) addReview(c *gin.Context) {
	var req model.Review
	if !module.Bind(c, &req) {
		return
	}
	user := module.User(c)
	now := m.db.Now()
	err := m.db.Update(func(t *mockdb.Tables) error {
		if _, ok := t.Books[req.BookID]; !ok {
			return module.NewError(http.StatusNotFound, "Book not found")
		}
		if !purchased(t, user.UserID, req.BookID) {
			return module.NewError(http.StatusBadRequest, "You can only review books you have purchased")
		}
		req.ReviewID = t.NextID()
		req.UserName = user.Username
		req.CreatedAt = model.NewTime(now)
		t.Reviews = append(t.Reviews, req)
		refreshRating(t, req.BookID)
		return nil
	})
	if err != nil {
		module.Abort(c, err)
		return
	}
	module.OK(c, "Review added successfully")
}

func purchased(t *mockdb.Tables, userID string, bookID int) bool {
	for _, o := range t.Orders {
		if o.UserID != userID || !o.IsCompleted() {
			continue
		}
		for _, it := range o.Items {
			if it.BookID == bookID {
				return true
			}
		}
	}
	return false
}

func refreshRating(t *mockdb.Tables, bookID int) {
	sum, n := 0, 0
	for _, r := range t.Reviews {
		if r.BookID == bookID {
			sum += r.Rating
			n++
		}
	}
	if b, ok := t.Books[bookID]; ok && n > 0 {
		b.Rating = float64(sum) / float64(n)
		t.Books[bookID] = b
	}
}

func (m *Module) reviewsByBook(c *gin.Context) {
	bookID, ok := module.IntParam(c, "id")
	if !ok {
		return
	}
	out := []model.Review{}
	m.db.View(func(t *mockdb.Tables) {
		for _, r := range t.Reviews {
			if r.BookID == bookID {
				out = append(out, r)
			}
		}
	})
	c.JSON(http.StatusOK, out)
}

func (m *Module) allDiscounts(c *gin.Context) {
	out := []model.Discount{}
	now := m.db.Now()
	m.db.View(func(t *mockdb.Tables) {
		for _, d := range t.Discounts {
			_, active := t.ActiveDiscount(d.BookID, now)
			d.IsOnSale = active
			out = append(out, d)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].DiscountID < out[j].DiscountID })
	c.JSON(http.StatusOK, out)
}

func (m *Module) discountByBook(c *gin.Context) {
	bookID, ok := module.IntParam(c, "id")
	if !ok {
		return
	}
	var (
		d     model.Discount
		found bool
	)
	m.db.View(func(t *mockdb.Tables) {
		d, found = t.ActiveDiscount(bookID, m.db.Now())
	})
	if !found {
		module.Fail(c, http.StatusNotFound, "No active discount for this book")
		return
	}
	d.IsOnSale = true
	c.JSON(http.StatusOK, d)
}

func (m *Module) addDiscount(c *gin.Context) {
	var req model.Discount
	if !module.Bind(c, &req) {
		return
	}
	if !req.EndDate.IsZero() && req.EndDate.Before(req.StartDate.Time) {
		module.Fail(c, http.StatusBadRequest, "End date must be after start date")
		return
	}
	err := m.db.Update(func(t *mockdb.Tables) error {
		if _, ok := t.Books[req.BookID]; !ok {
			return module.NewError(http.StatusNotFound, "Book not found")
		}
		req.DiscountID = t.NextID()
		t.Discounts[req.DiscountID] = req
		return nil
	})
	if err != nil {
		module.Abort(c, err)
		return
	}
	module.OK(c, "Discount added successfully")
}

// notifications 只能读取自己的通知
func (m *Module) notifications(c *gin.Context) {
	user := module.User(c)
	if c.Param("id") != user.UserID {
		module.Fail(c, http.StatusForbidden, "Cannot read another user's notifications")
		return
	}
	out := []model.Notification{}
	m.db.View(func(t *mockdb.Tables) {
		for _, n := range t.Notifications {
			if n.UserID == user.UserID {
				out = append(out, n)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].NotificationID > out[j].NotificationID })
	c.JSON(http.StatusOK, out)
}

func (m *Module) markAsRead(c *gin.Context) {
	id, ok := module.IntParam(c, "id")
	if !ok {
		return
	}
	user := module.User(c)
	err := m.db.Update(func(t *mockdb.Tables) error {
		n, exists := t.Notifications[id]
		if !exists || n.UserID != user.UserID {
			return module.NewError(http.StatusNotFound, "Notification not found")
		}
		n.IsRead = true
		t.Notifications[id] = n
		return nil
	})
	if err != nil {
		module.Abort(c, err)
		return
	}
	module.OK(c, "Notification marked as read")
}

func announcementLive(a model.AnnouncementRecord, now time.Time) bool {
	if !a.IsActive {
		return false
	}
	if a.Type != model.AnnouncementTimed {
		return true
	}
	if !a.StartTime.IsZero() && now.Before(a.StartTime.Time) {
		return false
	}
	if !a.EndTime.IsZero() && now.After(a.EndTime.Time) {
		return false
	}
	return true
}

func (m *Module) activeAnnouncements(c *gin.Context) {
	out := []model.AnnouncementRecord{}
	now := m.db.Now()
	m.db.View(func(t *mockdb.Tables) {
		for _, a := range t.Announcements {
			if announcementLive(a, now) {
				out = append(out, a)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].AnnouncementID > out[j].AnnouncementID })
	c.JSON(http.StatusOK, out)
}

func bindAnnouncement(c *gin.Context) (model.AnnouncementInput, bool) {
	var in model.AnnouncementInput
	if !module.Bind(c, &in) {
		return in, false
	}
	if in.Type == model.AnnouncementTimed && (in.StartTime == nil || in.EndTime == nil || in.StartTime.IsZero() || in.EndTime.IsZero()) {
		module.Fail(c, http.StatusBadRequest, "Timed announcements require start and end time")
		return in, false
	}
	return in, true
}

func applyInput(a model.AnnouncementRecord, in model.AnnouncementInput) model.AnnouncementRecord {
	a.Title = in.Title
	a.Content = in.Content
	a.Type = in.Type
	a.StartTime, a.EndTime = model.Time{}, model.Time{}
	if in.StartTime != nil {
		a.StartTime = *in.StartTime
	}
	if in.EndTime != nil {
		a.EndTime = *in.EndTime
	}
	return a
}

func (m *Module) createAnnouncement(c *gin.Context) {
	in, ok := bindAnnouncement(c)
	if !ok {
		return
	}
	var rec model.AnnouncementRecord
	m.db.Mutate(func(t *mockdb.Tables) {
		rec = applyInput(model.AnnouncementRecord{AnnouncementID: t.NextID(), IsActive: true}, in)
		t.Announcements[rec.AnnouncementID] = rec
	})
	c.JSON(http.StatusCreated, rec)
}

func (m *Module) updateAnnouncement(c *gin.Context) {
	id, ok := module.IntParam(c, "id")
	if !ok {
		return
	}
	in, ok := bindAnnouncement(c)
	if !ok {
		return
	}
	err := m.db.Update(func(t *mockdb.Tables) error {
		prev, found := t.Announcements[id]
		if !found {
			return errAnnouncementNotFound
		}
		t.Announcements[id] = applyInput(prev, in)
		return nil
	})
	if err != nil {
		module.Abort(c, err)
		return
	}
	module.OK(c, "Announcement updated successfully")
}

var errAnnouncementNotFound = module.NewError(http.StatusNotFound, "Announcement not found")

func (m *Module) deactivateAnnouncement(c *gin.Context) {
	id, ok := module.IntParam(c, "id")
	if !ok {
		return
	}
	err := m.db.Update(func(t *mockdb.Tables) error {
		a, found := t.Announcements[id]
		if !found {
			return errAnnouncementNotFound
		}
		a.IsActive = false
		t.Announcements[id] = a
		return nil
	})
	if err != nil {
		module.Abort(c, err)
		return
	}
	module.OK(c, "Announcement deactivated")
}
