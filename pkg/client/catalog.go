package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/vera-byte/bookmandu/internal/httpclient"
	"github.com/vera-byte/bookmandu/pkg/model"
)

// BookService 图书服务
type BookService struct {
	d Doer
}

// List 获取全部图书
func (s *BookService) List(ctx context.Context) ([]model.Book, error) {
	var books []model.Book
	err := s.d.Do(ctx, httpclient.Call{
		Op:     "Failed to fetch books",
		Method: http.MethodGet,
		Path:   "/api/books",
		Result: &books,
	})
	return books, err
}

// Get 获取图书详情
func (s *BookService) Get(ctx context.Context, id int) (*model.Book, error) {
	var book model.Book
	err := s.d.Do(ctx, httpclient.Call{
		Op:     "Failed to fetch book details",
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/api/books/%d", id),
		Result: &book,
	})
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// Create 新增图书
func (s *BookService) Create(ctx context.Context, in model.BookInput) (*model.Book, error) {
	var book model.Book
	err := s.d.Do(ctx, httpclient.Call{
		Op:     "Failed to create book",
		Method: http.MethodPost,
		Path:   "/api/books",
		Body:   in,
		Result: &book,
	})
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// Update 修改图书
func (s *BookService) Update(ctx context.Context, id int, in model.BookInput) error {
	in.BookID = id
	return s.d.Do(ctx, httpclient.Call{
		Op:     "Failed to update book",
		Method: http.MethodPut,
		Path:   fmt.Sprintf("/api/books/%d", id),
		Body:   in,
	})
}

// Delete 删除图书
func (s *BookService) Delete(ctx context.Context, id int) error {
	return s.d.Do(ctx, httpclient.Call{
		Op:     "Failed to delete book",
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("/api/books/%d", id),
	})
}

type uploadImageResponse struct {
	ImageURL string `json:"imageUrl" validate:"required"`
}

// UploadImage 上传封面，返回图片地址
// 参数:
//   - id: 图书ID
//   - name: 文件名
//   - r: 文件内容
func (s *BookService) UploadImage(ctx context.Context, id int, name string, r io.Reader) (string, error) {
	var resp uploadImageResponse
	err := s.d.Do(ctx, httpclient.Call{
		Op:     "Failed to upload book image",
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/api/books/%d/upload-image", id),
		File:   &httpclient.File{Param: "file", Name: name, Reader: r},
		Result: &resp,
	})
	return resp.ImageURL, err
}

// Catalog 分页目录，page 从1开始
func (s *BookService) Catalog(ctx context.Context, page, pageSize int) (*model.CatalogPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	var out model.CatalogPage
	err := s.d.Do(ctx, httpclient.Call{
		Op:     "Failed to fetch books",
		Method: http.MethodGet,
		Path:   "/api/books/catalog",
		Query:  map[string]string{"page": strconv.Itoa(page), "pageSize": strconv.Itoa(pageSize)},
		Result: &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Filter 按条件筛选图书
func (s *BookService) Filter(ctx context.Context, f model.BookFilter) ([]model.Book, error) {
	var books []model.Book
	err := s.d.Do(ctx, httpclient.Call{
		Op:     "Failed to fetch books",
		Method: http.MethodGet,
		Path:   "/api/books/filter",
		Query:  f.Params(),
		Result: &books,
	})
	return books, err
}

// AuthorService 作者服务
type AuthorService struct {
	d Doer
}

type authorBody struct {
	AuthorName string `json:"authorName" validate:"required"`
}

func (s *AuthorService) List(ctx context.Context) ([]model.Author, error) {
	var out []model.Author
	err := s.d.Do(ctx, httpclient.Call{Op: "Failed to fetch authors", Method: http.MethodGet, Path: "/api/authors", Result: &out})
	return out, err
}

func (s *AuthorService) Create(ctx context.Context, name string) (*model.Author, error) {
	var out model.Author
	err := s.d.Do(ctx, httpclient.Call{Op: "Failed to create author", Method: http.MethodPost, Path: "/api/authors", Body: authorBody{name}, Result: &out})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AuthorService) Update(ctx context.Context, id int, name string) error {
	return s.d.Do(ctx, httpclient.Call{Op: "Failed to update author", Method: http.MethodPut, Path: fmt.Sprintf("/api/authors/%d", id), Body: authorBody{name}})
}

func (s *AuthorService) Delete(ctx context.Context, id int) error {
	return s.d.Do(ctx, httpclient.Call{Op: "Failed to delete author", Method: http.MethodDelete, Path: fmt.Sprintf("/api/authors/%d", id)})
}

// GenreService 类别服务
type GenreService struct {
	d Doer
}

type genreBody struct {
	GenreName string `json:"genreName" validate:"required"`
}

func (s *GenreService) List(ctx context.Context) ([]model.Genre, error) {
	var out []model.Genre
	err := s.d.Do(ctx, httpclient.Call{Op: "Failed to fetch genres", Method: http.MethodGet, Path: "/api/genres", Result: &out})
	return out, err
}

func (s *GenreService) Create(ctx context.Context, name string) (*model.Genre, error) {
	var out model.Genre
	err := s.d.Do(ctx, httpclient.Call{Op: "Failed to create genre", Method: http.MethodPost, Path: "/api/genres", Body: genreBody{name}, Result: &out})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *GenreService) Update(ctx context.Context, id int, name string) error {
	return s.d.Do(ctx, httpclient.Call{Op: "Failed to update genre", Method: http.MethodPut, Path: fmt.Sprintf("/api/genres/%d", id), Body: genreBody{name}})
}

func (s *GenreService) Delete(ctx context.Context, id int) error {
	return s.d.Do(ctx, httpclient.Call{Op: "Failed to delete genre", Method: http.MethodDelete, Path: fmt.Sprintf("/api/genres/%d", id)})
}

// PublisherService 出版社服务
type PublisherService struct {
	d Doer
}

// PublisherInput 出版社请求体
type PublisherInput struct {
	PublisherName    string `json:"publisherName" validate:"required"`
	PublisherCountry string `json:"publisherCountry"`
}

func (s *PublisherService) List(ctx context.Context) ([]model.Publisher, error) {
	var out []model.Publisher
	err := s.d.Do(ctx, httpclient.Call{Op: "Failed to fetch publishers", Method: http.MethodGet, Path: "/api/publishers", Result: &out})
	return out, err
}

func (s *PublisherService) Create(ctx context.Context, name, country string) (*model.Publisher, error) {
	var out model.Publisher
	err := s.d.Do(ctx, httpclient.Call{
		Op:     "Failed to create publisher",
		Method: http.MethodPost,
		Path:   "/api/publishers",
		Body:   PublisherInput{PublisherName: name, PublisherCountry: country},
		Result: &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *PublisherService) Update(ctx context.Context, id int, in PublisherInput) error {
	return s.d.Do(ctx, httpclient.Call{Op: "Failed to update publisher", Method: http.MethodPut, Path: fmt.Sprintf("/api/publishers/%d", id), Body: in})
}

func (s *PublisherService) Delete(ctx context.Context, id int) error {
	return s.d.Do(ctx, httpclient.Call{Op: "Failed to delete publisher", Method: http.MethodDelete, Path: fmt.Sprintf("/api/publishers/%d", id)})
}
