package model

import "strconv"

// Book 图书记录，与后端字段一一对应
type Book struct {
	BookID        int     `json:"bookId" validate:"required"`
	BookTitle     string  `json:"bookTitle" validate:"required"`
	ISBN          string  `json:"isbn"`
	Description   string  `json:"description"`
	Language      string  `json:"language,omitempty"`
	Price         float64 `json:"price" validate:"gte=0"`
	StockQuantity int     `json:"stockQuantity" validate:"gte=0"`
	AuthorID      int     `json:"authorId"`
	AuthorName    string  `json:"authorName,omitempty"`
	GenreID       int     `json:"genreId"`
	GenreName     string  `json:"genreName,omitempty"`
	PublisherID   int     `json:"publisherId"`
	PublisherName string  `json:"publisherName,omitempty"`
	PublishDate   Time    `json:"publishDate"`
	ArrivalDate   Time    `json:"arrivalDate"`
	Rating        float64 `json:"rating,omitempty"`
	BookImageURL  string  `json:"bookImageUrl,omitempty"`
}

// BookInput 创建/更新图书请求
type BookInput struct {
	BookID        int     `json:"bookId,omitempty"`
	BookTitle     string  `json:"bookTitle" validate:"required"`
	ISBN          string  `json:"isbn" validate:"required"`
	Description   string  `json:"description"`
	Price         float64 `json:"price" validate:"gte=0"`
	StockQuantity int     `json:"stockQuantity" validate:"gte=0"`
	AuthorID      int     `json:"authorId" validate:"required"`
	GenreID       int     `json:"genreId" validate:"required"`
	PublisherID   int     `json:"publisherId" validate:"required"`
	PublishDate   Time    `json:"publishDate"`
	ArrivalDate   Time    `json:"arrivalDate"`
}

// BookFilter 图书筛选条件，零值字段不参与查询
type BookFilter struct {
	Search      string
	AuthorID    int
	GenreID     int
	PublisherID int
	MinPrice    float64
	MaxPrice    float64
	SortBy      string
}

// Params 转换为查询参数
func (f BookFilter) Params() map[string]string {
	params := make(map[string]string)
	if f.Search != "" {
		params["search"] = f.Search
	}
	if f.AuthorID > 0 {
		params["authorId"] = strconv.Itoa(f.AuthorID)
	}
	if f.GenreID > 0 {
		params["genreId"] = strconv.Itoa(f.GenreID)
	}
	if f.PublisherID > 0 {
		params["publisherId"] = strconv.Itoa(f.PublisherID)
	}
	if f.MinPrice > 0 {
		params["minPrice"] = strconv.FormatFloat(f.MinPrice, 'f', -1, 64)
	}
	if f.MaxPrice > 0 {
		params["maxPrice"] = strconv.FormatFloat(f.MaxPrice, 'f', -1, 64)
	}
	if f.SortBy != "" {
		params["sortBy"] = f.SortBy
	}
	return params
}

// CatalogPage 分页目录
type CatalogPage struct {
	Items      []Book `json:"items"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	TotalCount int    `json:"totalCount"`
}

// Author 作者
type Author struct {
	AuthorID   int    `json:"authorId" validate:"required"`
	AuthorName string `json:"authorName" validate:"required"`
}

// Genre 类别
type Genre struct {
	GenreID   int    `json:"genreId" validate:"required"`
	GenreName string `json:"genreName" validate:"required"`
}

// Publisher 出版社
type Publisher struct {
	PublisherID      int    `json:"publisherId" validate:"required"`
	PublisherName    string `json:"publisherName" validate:"required"`
	PublisherCountry string `json:"publisherCountry"`
}
