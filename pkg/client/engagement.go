package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/vera-byte/bookmandu/internal/httpclient"
	"github.com/vera-byte/bookmandu/pkg/model"
)

// ReviewService 书评服务
type ReviewService struct {
	d Doer
}

func (s *ReviewService) Add(ctx context.Context, r model.Review) error {
	return s.d.Do(ctx, httpclient.Call{Op: "Failed to add review", Method: http.MethodPost, Path: "/api/review", Body: r})
}

func (s *ReviewService) ByBook(ctx context.Context, bookID int) ([]model.Review, error) {
	var out []model.Review
	err := s.d.Do(ctx, httpclient.Call{Op: "Failed to fetch reviews", Method: http.MethodGet, Path: fmt.Sprintf("/api/review/%d", bookID), Result: &out})
	return out, err
}

// DiscountService 折扣服务
type DiscountService struct {
	d Doer
}

func (s *DiscountService) Add(ctx context.Context, d model.Discount) error {
	return s.d.Do(ctx, httpclient.Call{Op: "Failed to add discount", Method: http.MethodPost, Path: "/api/discount", Body: d})
}

func (s *DiscountService) ByBook(ctx context.Context, bookID int) (*model.Discount, error) {
	var out model.Discount
	err := s.d.Do(ctx, httpclient.Call{Op: "Failed to fetch discount", Method: http.MethodGet, Path: fmt.Sprintf("/api/discount/%d", bookID), Result: &out})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *DiscountService) All(ctx context.Context) ([]model.Discount, error) {
	var out []model.Discount
	err := s.d.Do(ctx, httpclient.Call{Op: "Failed to fetch discounts", Method: http.MethodGet, Path: "/api/discount", Result: &out})
	return out, err
}

// NotificationService 会员通知服务
type NotificationService struct {
	d Doer
}

// List 指定用户的通知
func (s *NotificationService) List(ctx context.Context, userID string) ([]model.Notification, error) {
	if userID == "" {
		return nil, &httpclient.APIError{Op: "Failed to fetch notifications", Kind: httpclient.KindInvalid, Message: "user id is required"}
	}
	var out []model.Notification
	err := s.d.Do(ctx, httpclient.Call{Op: "Failed to fetch notifications", Method: http.MethodGet, Path: "/api/Notification/" + userID, Result: &out})
	return out, err
}

// MarkAsRead 标记单条已读
func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID int) error {
	return s.d.Do(ctx, httpclient.Call{
		Op:     "Failed to mark notification as read",
		Method: http.MethodPut,
		Path:   fmt.Sprintf("/api/Notification/%d/mark-as-read", notificationID),
	})
}

// MarkAllAsRead 后端没有对应接口，始终返回 ErrNotImplemented，不发请求
func (s *NotificationService) MarkAllAsRead(ctx context.Context) error {
	return fmt.Errorf("markAllAsRead: %w", httpclient.ErrNotImplemented)
}

// AnnouncementService 公告服务
type AnnouncementService struct {
	d Doer
}

// Active 当前有效公告，announcementId 重命名为 id
func (s *AnnouncementService) Active(ctx context.Context) ([]model.Announcement, error) {
	var records []model.AnnouncementRecord
	err := s.d.Do(ctx, httpclient.Call{Op: "Failed to fetch announcements", Method: http.MethodGet, Path: "/api/announcement/active", Result: &records})
	if err != nil {
		return nil, err
	}
	out := make([]model.Announcement, 0, len(records))
	for _, r := range records {
		out = append(out, r.ToAnnouncement())
	}
	return out, nil
}

func (s *AnnouncementService) Create(ctx context.Context, a model.Announcement) error {
	return s.d.Do(ctx, httpclient.Call{
		Op:     "Failed to create announcement",
		Method: http.MethodPost,
		Path:   "/api/announcement",
		Body:   model.NewAnnouncementInput(a),
	})
}

func (s *AnnouncementService) Update(ctx context.Context, id int, a model.Announcement) error {
	return s.d.Do(ctx, httpclient.Call{
		Op:     "Failed to update announcement",
		Method: http.MethodPut,
		Path:   fmt.Sprintf("/api/announcement/%d", id),
		Body:   model.NewAnnouncementInput(a),
	})
}

func (s *AnnouncementService) Deactivate(ctx context.Context, id int) error {
	return s.d.Do(ctx, httpclient.Call{Op: "Failed to deactivate announcement", Method: http.MethodPut, Path: fmt.Sprintf("/api/announcement/%d/deactivate", id)})
}
