// Package dashboard 管理员与员工看板的数据加载
package dashboard

import (
	"context"

	"github.com/vera-byte/bookmandu/pkg/client"
	"github.com/vera-byte/bookmandu/pkg/model"

	"golang.org/x/sync/errgroup"
)

// Admin 管理员看板快照
type Admin struct {
	Books         []model.Book
	Authors       []model.Author
	Genres        []model.Genre
	Publishers    []model.Publisher
	Staff         []model.Account
	Members       []model.Account
	Announcements []model.Announcement
}

// LoadAdmin 并发拉取看板的七类数据
// 所有请求都结束后才返回；任一失败时返回最先发生的错误，已成功的结果丢弃
func LoadAdmin(ctx context.Context, api *client.Client) (*Admin, error) {
	var (
		out Admin
		g   errgroup.Group
	)
	g.Go(func() (err error) { out.Books, err = api.Books.List(ctx); return })
	g.Go(func() (err error) { out.Authors, err = api.Authors.List(ctx); return })
	g.Go(func() (err error) { out.Genres, err = api.Genres.List(ctx); return })
	g.Go(func() (err error) { out.Publishers, err = api.Publishers.List(ctx); return })
	g.Go(func() (err error) { out.Staff, err = api.Users.Staff(ctx); return })
	g.Go(func() (err error) { out.Members, err = api.Users.Members(ctx); return })
	g.Go(func() (err error) { out.Announcements, err = api.Announcements.Active(ctx); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

// Staff 员工看板快照
type Staff struct {
	Books  []model.Book
	Orders []model.Order
}

// Pending 待核销订单
func (s *Staff) Pending() []model.Order {
	return model.FilterOrders(s.Orders, model.Order.IsPending)
}

// LoadStaff 拉取图书与全部订单
func LoadStaff(ctx context.Context, api *client.Client) (*Staff, error) {
	var (
		out Staff
		g   errgroup.Group
	)
	g.Go(func() (err error) { out.Books, err = api.Books.List(ctx); return })
	g.Go(func() (err error) { out.Orders, err = api.Orders.All(ctx); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}
