package catalog

import (
	"net/http"
	"sort"
	"strings"

	"github.com/vera-byte/bookmandu/internal/mockdb"
	"github.com/vera-byte/bookmandu/pkg/model"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
)

func (m *Module) catalogPage(c *gin.Context) {
	page := cast.ToInt(c.DefaultQuery("page", "1"))
	size := cast.ToInt(c.DefaultQuery("pageSize", "10"))
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 10
	}

	var books []model.Book
	m.db.View(func(t *mockdb.Tables) {
		books = t.BookList()
	})

	start := (page - 1) * size
	if start > len(books) {
		start = len(books)
	}
	end := start + size
	if end > len(books) {
		end = len(books)
	}
	c.JSON(http.StatusOK, model.CatalogPage{
		Items:      books[start:end],
		Page:       page,
		PageSize:   size,
		TotalCount: len(books),
	})
}

func (m *Module) filterBooks(c *gin.Context) {
	f := model.BookFilter{
		Search:      strings.ToLower(strings.TrimSpace(c.Query("search"))),
		AuthorID:    cast.ToInt(c.Query("authorId")),
		GenreID:     cast.ToInt(c.Query("genreId")),
		PublisherID: cast.ToInt(c.Query("publisherId")),
		MinPrice:    cast.ToFloat64(c.Query("minPrice")),
		MaxPrice:    cast.ToFloat64(c.Query("maxPrice")),
		SortBy:      c.Query("sortBy"),
	}

	var all []model.Book
	m.db.View(func(t *mockdb.Tables) {
		all = t.BookList()
	})

	out := make([]model.Book, 0, len(all))
	for _, b := range all {
		if matches(b, f) {
			out = append(out, b)
		}
	}
	sortBooks(out, f.SortBy)
	c.JSON(http.StatusOK, out)
}

func matches(b model.Book, f model.BookFilter) bool {
	if f.Search != "" {
		hay := strings.ToLower(b.BookTitle + " " + b.ISBN + " " + b.Description + " " + b.AuthorName)
		if !strings.Contains(hay, f.Search) {
			return false
		}
	}
	if f.AuthorID > 0 && b.AuthorID != f.AuthorID {
		return false
	}
	if f.GenreID > 0 && b.GenreID != f.GenreID {
		return false
	}
	if f.PublisherID > 0 && b.PublisherID != f.PublisherID {
		return false
	}
	if f.MinPrice > 0 && b.Price < f.MinPrice {
		return false
	}
	if f.MaxPrice > 0 && b.Price > f.MaxPrice {
		return false
	}
	return true
}

func sortBooks(books []model.Book, by string) {
	var less func(a, b model.Book) bool
	switch by {
	case "price_asc":
		less = func(a, b model.Book) bool { return a.Price < b.Price }
	case "price_desc":
		less = func(a, b model.Book) bool { return a.Price > b.Price }
	case "title":
		less = func(a, b model.Book) bool { return strings.ToLower(a.BookTitle) < strings.ToLower(b.BookTitle) }
	case "newest":
		less = func(a, b model.Book) bool { return a.PublishDate.After(b.PublishDate.Time) }
	default:
		return
	}
	sort.SliceStable(books, func(i, j int) bool { return less(books[i], books[j]) })
}
