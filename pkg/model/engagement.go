package model

// 公告类型
const (
	AnnouncementLive  = "Live"
	AnnouncementTimed = "Timed"
)

// Review 图书评论
type Review struct {
	ReviewID  int    `json:"reviewId,omitempty"`
	BookID    int    `json:"bookId" validate:"required"`
	UserName  string `json:"userName,omitempty"`
	Rating    int    `json:"rating" validate:"min=1,max=5"`
	Comment   string `json:"comment"`
	CreatedAt Time   `json:"createdAt"`
}

// Discount 折扣
type Discount struct {
	DiscountID  int     `json:"discountId,omitempty"`
	Type        string  `json:"type" validate:"required"`
	Description string  `json:"description"`
	Percentage  float64 `json:"percentage" validate:"gte=0,lte=100"`
	BookID      int     `json:"bookId" validate:"required"`
	StartDate   Time    `json:"startDate"`
	EndDate     Time    `json:"endDate"`
	IsOnSale    bool    `json:"isOnSale"`
}

// Announcement 公告（客户端字段命名）
type Announcement struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Type      string `json:"type"`
	StartTime Time   `json:"startTime"`
	EndTime   Time   `json:"endTime"`
	IsActive  bool   `json:"isActive"`
}

// AnnouncementRecord 公告（后端字段命名）
type AnnouncementRecord struct {
	AnnouncementID int    `json:"announcementId" validate:"required"`
	Title          string `json:"title" validate:"required"`
	Content        string `json:"content"`
	Type           string `json:"type" validate:"required,oneof=Live Timed"`
	StartTime      Time   `json:"startTime"`
	EndTime        Time   `json:"endTime"`
	IsActive       bool   `json:"isActive"`
}

// ToAnnouncement 后端记录转换为客户端结构
func (r AnnouncementRecord) ToAnnouncement() Announcement {
	return Announcement{
		ID:        r.AnnouncementID,
		Title:     r.Title,
		Content:   r.Content,
		Type:      r.Type,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		IsActive:  r.IsActive,
	}
}

// AnnouncementInput 创建/更新公告请求
// 仅 Timed 类型携带起止时间，Live 类型发送null
type AnnouncementInput struct {
	Title     string `json:"title" validate:"required"`
	Content   string `json:"content" validate:"required"`
	Type      string `json:"type" validate:"required,oneof=Live Timed"`
	StartTime *Time  `json:"startTime"`
	EndTime   *Time  `json:"endTime"`
}

// NewAnnouncementInput 根据公告类型构造请求体
func NewAnnouncementInput(a Announcement) AnnouncementInput {
	in := AnnouncementInput{
		Title:   a.Title,
		Content: a.Content,
		Type:    a.Type,
	}
	if a.Type == AnnouncementTimed {
		start, end := a.StartTime, a.EndTime
		in.StartTime = &start
		in.EndTime = &end
	}
	return in
}

// Notification 会员通知
type Notification struct {
	NotificationID int    `json:"notificationId" validate:"required"`
	UserID         string `json:"userId,omitempty"`
	Message        string `json:"message"`
	IsRead         bool   `json:"isRead"`
	CreatedAt      Time   `json:"createdAt"`
}

// UnreadCount 未读通知数量
func UnreadCount(items []Notification) int {
	n := 0
	for _, item := range items {
		if !item.IsRead {
			n++
		}
	}
	return n
}
