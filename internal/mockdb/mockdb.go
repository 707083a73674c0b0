// Package mockdb 是模拟后端的内存数据表
package mockdb

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vera-byte/bookmandu/pkg/model"

	"golang.org/x/crypto/bcrypt"
)

// User 账号记录
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash []byte
	Role         model.Role
	MembershipID string
	JoinDate     time.Time
}

// CheckPassword 校验密码
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) == nil
}

// Account 转换为对外账号信息
func (u *User) Account() model.Account {
	return model.Account{
		ID:           u.ID,
		UserName:     u.Username,
		Email:        u.Email,
		JoinDate:     model.NewTime(u.JoinDate),
		MembershipID: u.MembershipID,
	}
}

// Tables 全部数据表，只能在 View/Update 回调内访问
type Tables struct {
	Users         map[string]*User
	Books         map[int]model.Book
	Authors       map[int]model.Author
	Genres        map[int]model.Genre
	Publishers    map[int]model.Publisher
	Carts         map[string][]model.CartItem
	Wishlists     map[string][]int
	Orders        map[int]model.Order
	Reviews       []model.Review
	Discounts     map[int]model.Discount
	Notifications map[int]model.Notification
	Announcements map[int]model.AnnouncementRecord
	Images        map[string][]byte

	seq     int
	members int
}

// NextID 生成自增ID，所有表共享序列
func (t *Tables) NextID() int {
	t.seq++
	return t.seq
}

// UserByEmail 按邮箱查找，忽略大小写
func (t *Tables) UserByEmail(email string) (*User, bool) {
	for _, u := range t.Users {
		if strings.EqualFold(u.Email, email) {
			return u, true
		}
	}
	return nil, false
}

// UsersByRole 指定角色的用户，按加入时间排序
func (t *Tables) UsersByRole(role model.Role) []*User {
	var out []*User
	for _, u := range t.Users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].JoinDate.Equal(out[j].JoinDate) {
			return out[i].JoinDate.Before(out[j].JoinDate)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// AddUser 创建账号，会员自动分配会员号
func (t *Tables) AddUser(username, email, password string, role model.Role, now time.Time) (*User, error) {
	if _, exists := t.UserByEmail(email); exists {
		return nil, fmt.Errorf("email %s already registered", email)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	u := &User{
		ID:           fmt.Sprintf("u-%d", t.NextID()),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		JoinDate:     now,
	}
	if role == model.RoleMember {
		t.members++
		u.MembershipID = fmt.Sprintf("MEM-%04d", t.members)
	}
	t.Users[u.ID] = u
	return u, nil
}

// Book 按ID读取并补全作者、类别、出版社名称
func (t *Tables) Book(id int) (model.Book, bool) {
	b, ok := t.Books[id]
	if !ok {
		return model.Book{}, false
	}
	b.AuthorName = t.Authors[b.AuthorID].AuthorName
	b.GenreName = t.Genres[b.GenreID].GenreName
	b.PublisherName = t.Publishers[b.PublisherID].PublisherName
	return b, true
}

// BookList 全部图书，按ID排序
func (t *Tables) BookList() []model.Book {
	out := make([]model.Book, 0, len(t.Books))
	for id := range t.Books {
		b, _ := t.Book(id)
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookID < out[j].BookID })
	return out
}

// Notify 给用户发送通知
func (t *Tables) Notify(userID, message string, now time.Time) {
	id := t.NextID()
	t.Notifications[id] = model.Notification{
		NotificationID: id,
		UserID:         userID,
		Message:        message,
		CreatedAt:      model.NewTime(now),
	}
}

// ActiveDiscount 图书当前生效的折扣
func (t *Tables) ActiveDiscount(bookID int, now time.Time) (model.Discount, bool) {
	for _, d := range t.Discounts {
		if d.BookID != bookID {
			continue
		}
		if !d.StartDate.IsZero() && now.Before(d.StartDate.Time) {
			continue
		}
		if !d.EndDate.IsZero() && now.After(d.EndDate.Time) {
			continue
		}
		return d, true
	}
	return model.Discount{}, false
}

// DB 带读写锁的内存数据库
type DB struct {
	mu  sync.RWMutex
	t   *Tables
	now func() time.Time
}

// New 创建空数据库
func New() *DB {
	return &DB{
		now: time.Now,
		t: &Tables{
			Users:         make(map[string]*User),
			Books:         make(map[int]model.Book),
			Authors:       make(map[int]model.Author),
			Genres:        make(map[int]model.Genre),
			Publishers:    make(map[int]model.Publisher),
			Carts:         make(map[string][]model.CartItem),
			Wishlists:     make(map[string][]int),
			Orders:        make(map[int]model.Order),
			Discounts:     make(map[int]model.Discount),
			Notifications: make(map[int]model.Notification),
			Announcements: make(map[int]model.AnnouncementRecord),
			Images:        make(map[string][]byte),
		},
	}
}

// Now 当前时间
func (db *DB) Now() time.Time { return db.now() }

// View 只读访问
func (db *DB) View(fn func(t *Tables)) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	fn(db.t)
}

// Mutate 不会失败的写访问
func (db *DB) Mutate(fn func(t *Tables)) {
	db.mu.Lock()
	defer db.mu.Unlock()
	fn(db.t)
}

// Update 读写访问，回调返回错误时已做的修改不会回滚
func (db *DB) Update(fn func(t *Tables) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return fn(db.t)
}
