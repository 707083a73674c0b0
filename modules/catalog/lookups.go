package catalog

import (
	"net/http"
	"sort"

	"github.com/vera-byte/bookmandu/internal/mockdb"
	"github.com/vera-byte/bookmandu/internal/module"
	"github.com/vera-byte/bookmandu/pkg/model"

	"github.com/gin-gonic/gin"
)

// lookup 作者、类别、出版社共用的增删改查
type lookup[T any] struct {
	path   string
	label  string
	table  func(t *mockdb.Tables) map[int]T
	decode func(c *gin.Context) (T, bool)
	withID func(v T, id int) T
	inUse  func(b model.Book, id int) bool
}

type authorBody struct {
	AuthorName string `json:"authorName" validate:"required"`
}

type genreBody struct {
	GenreName string `json:"genreName" validate:"required"`
}

type publisherBody struct {
	PublisherName    string `json:"publisherName" validate:"required"`
	PublisherCountry string `json:"publisherCountry"`
}

func (m *Module) registerLookups(api *gin.RouterGroup, admin []gin.HandlerFunc) {
	registerLookup(m, api, admin, lookup[model.Author]{
		path:  "/authors",
		label: "Author",
		table: func(t *mockdb.Tables) map[int]model.Author { return t.Authors },
		decode: func(c *gin.Context) (model.Author, bool) {
			var b authorBody
			ok := module.Bind(c, &b)
			return model.Author{AuthorName: b.AuthorName}, ok
		},
		withID: func(v model.Author, id int) model.Author { v.AuthorID = id; return v },
		inUse:  func(b model.Book, id int) bool { return b.AuthorID == id },
	})
	registerLookup(m, api, admin, lookup[model.Genre]{
		path:  "/genres",
		label: "Genre",
		table: func(t *mockdb.Tables) map[int]model.Genre { return t.Genres },
		decode: func(c *gin.Context) (model.Genre, bool) {
			var b genreBody
			ok := module.Bind(c, &b)
			return model.Genre{GenreName: b.GenreName}, ok
		},
		withID: func(v model.Genre, id int) model.Genre { v.GenreID = id; return v },
		inUse:  func(b model.Book, id int) bool { return b.GenreID == id },
	})
	registerLookup(m, api, admin, lookup[model.Publisher]{
		path:  "/publishers",
		label: "Publisher",
		table: func(t *mockdb.Tables) map[int]model.Publisher { return t.Publishers },
		decode: func(c *gin.Context) (model.Publisher, bool) {
			var b publisherBody
			ok := module.Bind(c, &b)
			return model.Publisher{PublisherName: b.PublisherName, PublisherCountry: b.PublisherCountry}, ok
		},
		withID: func(v model.Publisher, id int) model.Publisher { v.PublisherID = id; return v },
		inUse:  func(b model.Book, id int) bool { return b.PublisherID == id },
	})
}

func registerLookup[T any](m *Module, api *gin.RouterGroup, admin []gin.HandlerFunc, l lookup[T]) {
	api.GET(l.path, func(c *gin.Context) {
		var out []T
		m.db.View(func(t *mockdb.Tables) {
			ids := make([]int, 0, len(l.table(t)))
			for id := range l.table(t) {
				ids = append(ids, id)
			}
			sort.Ints(ids)
			out = make([]T, 0, len(ids))
			for _, id := range ids {
				out = append(out, l.table(t)[id])
			}
		})
		c.JSON(http.StatusOK, out)
	})

	api.POST(l.path, append(admin, func(c *gin.Context) {
		v, ok := l.decode(c)
		if !ok {
			return
		}
		m.db.Mutate(func(t *mockdb.Tables) {
			id := t.NextID()
			v = l.withID(v, id)
			l.table(t)[id] = v
		})
		c.JSON(http.StatusCreated, v)
	})...)

	api.PUT(l.path+"/:id", append(admin, func(c *gin.Context) {
		id, ok := module.IntParam(c, "id")
		if !ok {
			return
		}
		v, ok := l.decode(c)
		if !ok {
			return
		}
		err := m.db.Update(func(t *mockdb.Tables) error {
			if _, found := l.table(t)[id]; !found {
				return module.NewError(http.StatusNotFound, l.label+" not found")
			}
			l.table(t)[id] = l.withID(v, id)
			return nil
		})
		if err != nil {
			module.Abort(c, err)
			return
		}
		module.OK(c, l.label+" updated successfully")
	})...)

	api.DELETE(l.path+"/:id", append(admin, func(c *gin.Context) {
		id, ok := module.IntParam(c, "id")
		if !ok {
			return
		}
		err := m.db.Update(func(t *mockdb.Tables) error {
			if _, found := l.table(t)[id]; !found {
				return module.NewError(http.StatusNotFound, l.label+" not found")
			}
			for _, b := range t.Books {
				if l.inUse(b, id) {
					return module.NewError(http.StatusBadRequest, l.label+" is referenced by existing books")
				}
			}
			delete(l.table(t), id)
			return nil
		})
		if err != nil {
			module.Abort(c, err)
			return
		}
		module.OK(c, l.label+" deleted successfully")
	})...)
}
