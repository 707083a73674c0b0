// Package catalog 模拟后端的图书目录模块
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/vera-byte/bookmandu/internal/middleware"
	"github.com/vera-byte/bookmandu/internal/mockdb"
	"github.com/vera-byte/bookmandu/internal/module"
	"github.com/vera-byte/bookmandu/pkg/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MaxImageSize 封面图片大小上限
const MaxImageSize = 5 << 20

// Module 目录模块：图书、作者、类别、出版社
type Module struct {
	db     *mockdb.DB
	issuer *middleware.TokenIssuer
	logger *zap.Logger
}

// New 创建目录模块
func New() *Module { return &Module{} }

func (m *Module) Name() string { return "catalog" }

func (m *Module) Description() string {
	return "Books, authors, genres and publishers"
}

func (m *Module) Initialize(_ context.Context, env *module.Env) error {
	if env.DB == nil || env.Issuer == nil {
		return errors.New("catalog module requires db and token issuer")
	}
	m.db = env.DB
	m.issuer = env.Issuer
	m.logger = env.Logger.Named("catalog")
	return nil
}

// RegisterRoutes 读接口公开，写接口仅管理员
func (m *Module) RegisterRoutes(api *gin.RouterGroup) error {
	admin := []gin.HandlerFunc{middleware.Auth(m.issuer), middleware.RequireRole(model.RoleAdmin)}

	api.GET("/books", m.listBooks)
	api.GET("/books/catalog", m.catalogPage)
	api.GET("/books/filter", m.filterBooks)
	api.GET("/books/:id", m.getBook)
	api.POST("/books", append(admin, m.createBook)...)
	api.PUT("/books/:id", append(admin, m.updateBook)...)
	api.DELETE("/books/:id", append(admin, m.deleteBook)...)
	api.POST("/books/:id/upload-image", append(admin, m.uploadImage)...)
	api.GET("/images/:name", m.serveImage)

	m.registerLookups(api, admin)
	return nil
}

func (m *Module) HealthCheck(context.Context) error { return nil }

func (m *Module) Shutdown(context.Context) error { return nil }

func (m *Module) listBooks(c *gin.Context) {
	var books []model.Book
	m.db.View(func(t *mockdb.Tables) {
		books = t.BookList()
	})
	c.JSON(http.StatusOK, books)
}

func (m *Module) getBook(c *gin.Context) {
	id, ok := module.IntParam(c, "id")
	if !ok {
		return
	}
	var (
		book  model.Book
		found bool
	)
	m.db.View(func(t *mockdb.Tables) {
		book, found = t.Book(id)
	})
	if !found {
		module.Fail(c, http.StatusNotFound, "Book not found")
		return
	}
	c.JSON(http.StatusOK, book)
}

var (
	errBadReference = module.NewError(http.StatusBadRequest, "Author, genre or publisher does not exist")
	errBookNotFound = module.NewError(http.StatusNotFound, "Book not found")
)

func checkReferences(t *mockdb.Tables, in model.BookInput) error {
	_, a := t.Authors[in.AuthorID]
	_, g := t.Genres[in.GenreID]
	_, p := t.Publishers[in.PublisherID]
	if !a || !g || !p {
		return errBadReference
	}
	return nil
}

func bookFromInput(id int, in model.BookInput, prev model.Book) model.Book {
	prev.BookID = id
	prev.BookTitle = in.BookTitle
	prev.ISBN = in.ISBN
	prev.Description = in.Description
	prev.Price = in.Price
	prev.StockQuantity = in.StockQuantity
	prev.AuthorID = in.AuthorID
	prev.GenreID = in.GenreID
	prev.PublisherID = in.PublisherID
	prev.PublishDate = in.PublishDate
	prev.ArrivalDate = in.ArrivalDate
	return prev
}

func (m *Module) createBook(c *gin.Context) {
	var in model.BookInput
	if !module.Bind(c, &in) {
		return
	}
	var book model.Book
	err := m.db.Update(func(t *mockdb.Tables) error {
		if err := checkReferences(t, in); err != nil {
			return err
		}
		id := t.NextID()
		t.Books[id] = bookFromInput(id, in, model.Book{})
		book, _ = t.Book(id)
		return nil
	})
	if err != nil {
		module.Abort(c, err)
		return
	}
	m.logger.Info("Book created", zap.Int("id", book.BookID))
	c.JSON(http.StatusCreated, book)
}

func (m *Module) updateBook(c *gin.Context) {
	id, ok := module.IntParam(c, "id")
	if !ok {
		return
	}
	var in model.BookInput
	if !module.Bind(c, &in) {
		return
	}
	err := m.db.Update(func(t *mockdb.Tables) error {
		prev, exists := t.Books[id]
		if !exists {
			return errBookNotFound
		}
		if err := checkReferences(t, in); err != nil {
			return err
		}
		t.Books[id] = bookFromInput(id, in, prev)
		return nil
	})
	if err != nil {
		module.Abort(c, err)
		return
	}
	module.OK(c, "Book updated successfully")
}

func (m *Module) deleteBook(c *gin.Context) {
	id, ok := module.IntParam(c, "id")
	if !ok {
		return
	}
	err := m.db.Update(func(t *mockdb.Tables) error {
		if _, exists := t.Books[id]; !exists {
			return errBookNotFound
		}
		delete(t.Books, id)
		return nil
	})
	if err != nil {
		module.Abort(c, err)
		return
	}
	module.OK(c, "Book deleted successfully")
}

func (m *Module) uploadImage(c *gin.Context) {
	id, ok := module.IntParam(c, "id")
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		module.Fail(c, http.StatusBadRequest, "No file uploaded")
		return
	}
	if fh.Size > MaxImageSize {
		module.Fail(c, http.StatusBadRequest, "File is too large")
		return
	}
	f, err := fh.Open()
	if err != nil {
		module.Fail(c, http.StatusBadRequest, "Unreadable file")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, MaxImageSize))
	if err != nil {
		module.Fail(c, http.StatusBadRequest, "Unreadable file")
		return
	}

	name := fmt.Sprintf("%d%s", id, filepath.Ext(fh.Filename))
	imageURL := "/api/images/" + name
	err = m.db.Update(func(t *mockdb.Tables) error {
		book, exists := t.Books[id]
		if !exists {
			return errBookNotFound
		}
		t.Images[name] = data
		book.BookImageURL = imageURL
		t.Books[id] = book
		return nil
	})
	if err != nil {
		module.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imageUrl": imageURL})
}

func (m *Module) serveImage(c *gin.Context) {
	var data []byte
	m.db.View(func(t *mockdb.Tables) {
		data = t.Images[c.Param("name")]
	})
	if data == nil {
		module.Fail(c, http.StatusNotFound, "Image not found")
		return
	}
	c.Data(http.StatusOK, http.DetectContentType(data), data)
}
