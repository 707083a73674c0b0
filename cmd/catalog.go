package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/vera-byte/bookmandu/pkg/client"
	"github.com/vera-byte/bookmandu/pkg/model"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

// bookFlags 图书命令参数
// 更新时空字符串表示保留原值，所以数值字段也按字符串接收
var bookFlags struct {
	page     int
	pageSize int

	search    string
	author    int
	genre     int
	publisher int
	minPrice  float64
	maxPrice  float64
	sort      string

	title       string
	isbn        string
	description string
	price       string
	stock       string
	authorID    string
	genreID     string
	publisherID string
	publishDate string
	arrivalDate string
}

var booksCmd = &cobra.Command{
	Use:     "books",
	Aliases: []string{"book"},
	Short:   "Browse and manage books",
}

var booksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the catalog, or filter it when any filter flag is set",
	Args:  cobra.NoArgs,
	RunE: guarded("/", func(ctx context.Context, a *app, _ []string) error {
		f := model.BookFilter{
			Search:      bookFlags.search,
			AuthorID:    bookFlags.author,
			GenreID:     bookFlags.genre,
			PublisherID: bookFlags.publisher,
			MinPrice:    bookFlags.minPrice,
			MaxPrice:    bookFlags.maxPrice,
			SortBy:      bookFlags.sort,
		}
		if len(f.Params()) > 0 {
			books, err := a.api.Books.Filter(ctx, f)
			if err != nil {
				return err
			}
			renderBooks(a, "Books", books)
			return nil
		}

		page, err := a.api.Books.Catalog(ctx, bookFlags.page, bookFlags.pageSize)
		if err != nil {
			return err
		}
		renderBooks(a, fmt.Sprintf("Books (page %d, %d total)", page.Page, page.TotalCount), page.Items)
		return nil
	}),
}

var booksShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a book with its reviews and discount",
	Args:  cobra.ExactArgs(1),
	RunE: guarded("/books/:id", func(ctx context.Context, a *app, args []string) error {
		id, err := parseID("book id", args[0])
		if err != nil {
			return err
		}
		b, err := a.api.Books.Get(ctx, id)
		if err != nil {
			return err
		}

		fields := [][2]string{
			{"ID", strconv.Itoa(b.BookID)},
			{"Title", b.BookTitle},
			{"ISBN", b.ISBN},
			{"Author", b.AuthorName},
			{"Genre", b.GenreName},
			{"Publisher", b.PublisherName},
			{"Price", "$" + model.FormatPrice(b.Price)},
			{"Stock", strconv.Itoa(b.StockQuantity)},
			{"Published", model.FormatDate(b.PublishDate)},
			{"Arrived", model.FormatDate(b.ArrivalDate)},
			{"Rating", fmt.Sprintf("%.1f", b.Rating)},
			{"Image", model.ImageURL(a.http.BaseURL(), b.BookImageURL)},
		}
		// 没有折扣时后端返回404，这里只做展示不报错
		if d, err := a.api.Discounts.ByBook(ctx, id); err == nil {
			fields = append(fields, [2]string{"Discount", fmt.Sprintf("%s%% off (%s, until %s)", cast.ToString(d.Percentage), d.Type, model.FormatDate(d.EndDate))})
		}
		if b.Description != "" {
			fields = append(fields, [2]string{"Description", truncate(b.Description, 120)})
		}
		renderFields(a.out, b.BookTitle, fields)

		reviews, err := a.api.Reviews.ByBook(ctx, id)
		if err != nil {
			return err
		}
		renderReviews(a, reviews)
		return nil
	}),
}

var booksCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a book",
	Args:  cobra.NoArgs,
	RunE: guarded("/admin", func(ctx context.Context, a *app, _ []string) error {
		var in model.BookInput
		if err := applyBookFlags(&in); err != nil {
			return err
		}
		b, err := a.api.Books.Create(ctx, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Book created with id %d.\n", b.BookID)
		return nil
	}),
}

var booksUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a book, keeping fields whose flags are not set",
	Args:  cobra.ExactArgs(1),
	RunE: guarded("/admin", func(ctx context.Context, a *app, args []string) error {
		id, err := parseID("book id", args[0])
		if err != nil {
			return err
		}
		b, err := a.api.Books.Get(ctx, id)
		if err != nil {
			return err
		}
		in := model.BookInput{
			BookID:        b.BookID,
			BookTitle:     b.BookTitle,
			ISBN:          b.ISBN,
			Description:   b.Description,
			Price:         b.Price,
			StockQuantity: b.StockQuantity,
			AuthorID:      b.AuthorID,
			GenreID:       b.GenreID,
			PublisherID:   b.PublisherID,
			PublishDate:   b.PublishDate,
			ArrivalDate:   b.ArrivalDate,
		}
		if err := applyBookFlags(&in); err != nil {
			return err
		}
		if err := a.api.Books.Update(ctx, id, in); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Book updated.")
		return nil
	}),
}

var booksDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a book",
	Args:  cobra.ExactArgs(1),
	RunE: guarded("/admin", func(ctx context.Context, a *app, args []string) error {
		id, err := parseID("book id", args[0])
		if err != nil {
			return err
		}
		if err := a.api.Books.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Book deleted.")
		return nil
	}),
}

var booksUploadImageCmd = &cobra.Command{
	Use:   "upload-image <id> <file>",
	Short: "Upload a cover image",
	Args:  cobra.ExactArgs(2),
	RunE: guarded("/admin", func(ctx context.Context, a *app, args []string) error {
		id, err := parseID("book id", args[0])
		if err != nil {
			return err
		}
		f, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer f.Close()

		url, err := a.api.Books.UploadImage(ctx, id, filepath.Base(args[1]), f)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Image uploaded: %s\n", model.ImageURL(a.http.BaseURL(), url))
		return nil
	}),
}

// applyBookFlags 把已设置的参数写入请求体
func applyBookFlags(in *model.BookInput) error {
	var err error
	set := func(raw string, apply func(string) error) {
		if err == nil && raw != "" {
			err = apply(raw)
		}
	}
	set(bookFlags.title, func(s string) error { in.BookTitle = s; return nil })
	set(bookFlags.isbn, func(s string) error { in.ISBN = s; return nil })
	set(bookFlags.description, func(s string) error { in.Description = s; return nil })
	set(bookFlags.price, func(s string) (e error) { in.Price, e = cast.ToFloat64E(s); return })
	set(bookFlags.stock, func(s string) (e error) { in.StockQuantity, e = cast.ToIntE(s); return })
	set(bookFlags.authorID, func(s string) (e error) { in.AuthorID, e = parseID("author id", s); return })
	set(bookFlags.genreID, func(s string) (e error) { in.GenreID, e = parseID("genre id", s); return })
	set(bookFlags.publisherID, func(s string) (e error) { in.PublisherID, e = parseID("publisher id", s); return })
	set(bookFlags.publishDate, func(s string) error {
		t, e := cast.ToTimeE(s)
		in.PublishDate = model.NewTime(t)
		return e
	})
	set(bookFlags.arrivalDate, func(s string) error {
		t, e := cast.ToTimeE(s)
		in.ArrivalDate = model.NewTime(t)
		return e
	})
	return err
}

func renderBooks(a *app, title string, books []model.Book) {
	rows := make([][]string, 0, len(books))
	for _, b := range books {
		rows = append(rows, []string{
			strconv.Itoa(b.BookID),
			truncate(b.BookTitle, 40),
			b.AuthorName,
			b.GenreName,
			"$" + model.FormatPrice(b.Price),
			strconv.Itoa(b.StockQuantity),
		})
	}
	renderTable(a.out, title, []string{"ID", "Title", "Author", "Genre", "Price", "Stock"}, rows)
}

func renderReviews(a *app, reviews []model.Review) {
	rows := make([][]string, 0, len(reviews))
	for _, r := range reviews {
		rows = append(rows, []string{r.UserName, fmt.Sprintf("%d/5", r.Rating), truncate(r.Comment, 60), model.FormatDate(r.CreatedAt)})
	}
	renderTable(a.out, "Reviews", []string{"User", "Rating", "Comment", "Date"}, rows)
}

// namedResource 作者与类别只有一个名称字段，命令结构相同
type namedResource struct {
	use    string
	plural string
	list   func(ctx context.Context, api *client.Client) ([][]string, error)
	create func(ctx context.Context, api *client.Client, name string) (int, error)
	update func(ctx context.Context, api *client.Client, id int, name string) error
	delete func(ctx context.Context, api *client.Client, id int) error
}

func (r namedResource) command() *cobra.Command {
	parent := &cobra.Command{
		Use:   r.plural,
		Short: "Browse and manage " + r.plural,
	}
	label := r.use + " id"

	parent.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List " + r.plural,
			Args:  cobra.NoArgs,
			RunE: guarded("/", func(ctx context.Context, a *app, _ []string) error {
				rows, err := r.list(ctx, a.api)
				if err != nil {
					return err
				}
				renderTable(a.out, "", []string{"ID", "Name"}, rows)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "create <name>",
			Short: "Create a " + r.use,
			Args:  cobra.ExactArgs(1),
			RunE: guarded("/admin", func(ctx context.Context, a *app, args []string) error {
				id, err := r.create(ctx, a.api, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Created %s %d.\n", r.use, id)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "update <id> <name>",
			Short: "Rename a " + r.use,
			Args:  cobra.ExactArgs(2),
			RunE: guarded("/admin", func(ctx context.Context, a *app, args []string) error {
				id, err := parseID(label, args[0])
				if err != nil {
					return err
				}
				if err := r.update(ctx, a.api, id, args[1]); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Updated %s %d.\n", r.use, id)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a " + r.use,
			Args:  cobra.ExactArgs(1),
			RunE: guarded("/admin", func(ctx context.Context, a *app, args []string) error {
				id, err := parseID(label, args[0])
				if err != nil {
					return err
				}
				if err := r.delete(ctx, a.api, id); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Deleted %s %d.\n", r.use, id)
				return nil
			}),
		},
	)
	return parent
}

var authorsCmd = namedResource{
	use:    "author",
	plural: "authors",
	list: func(ctx context.Context, api *client.Client) ([][]string, error) {
		items, err := api.Authors.List(ctx)
		rows := make([][]string, 0, len(items))
		for _, it := range items {
			rows = append(rows, []string{strconv.Itoa(it.AuthorID), it.AuthorName})
		}
		return rows, err
	},
	create: func(ctx context.Context, api *client.Client, name string) (int, error) {
		it, err := api.Authors.Create(ctx, name)
		if err != nil {
			return 0, err
		}
		return it.AuthorID, nil
	},
	update: func(ctx context.Context, api *client.Client, id int, name string) error {
		return api.Authors.Update(ctx, id, name)
	},
	delete: func(ctx context.Context, api *client.Client, id int) error {
		return api.Authors.Delete(ctx, id)
	},
}.command()

var genresCmd = namedResource{
	use:    "genre",
	plural: "genres",
	list: func(ctx context.Context, api *client.Client) ([][]string, error) {
		items, err := api.Genres.List(ctx)
		rows := make([][]string, 0, len(items))
		for _, it := range items {
			rows = append(rows, []string{strconv.Itoa(it.GenreID), it.GenreName})
		}
		return rows, err
	},
	create: func(ctx context.Context, api *client.Client, name string) (int, error) {
		it, err := api.Genres.Create(ctx, name)
		if err != nil {
			return 0, err
		}
		return it.GenreID, nil
	},
	update: func(ctx context.Context, api *client.Client, id int, name string) error {
		return api.Genres.Update(ctx, id, name)
	},
	delete: func(ctx context.Context, api *client.Client, id int) error {
		return api.Genres.Delete(ctx, id)
	},
}.command()

var publisherFlags struct {
	country string
}

var publishersCmd = &cobra.Command{
	Use:   "publishers",
	Short: "Browse and manage publishers",
}

var publishersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List publishers",
	Args:  cobra.NoArgs,
	RunE: guarded("/", func(ctx context.Context, a *app, _ []string) error {
		items, err := a.api.Publishers.List(ctx)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(items))
		for _, p := range items {
			rows = append(rows, []string{strconv.Itoa(p.PublisherID), p.PublisherName, p.PublisherCountry})
		}
		renderTable(a.out, "", []string{"ID", "Name", "Country"}, rows)
		return nil
	}),
}

var publishersCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a publisher",
	Args:  cobra.ExactArgs(1),
	RunE: guarded("/admin", func(ctx context.Context, a *app, args []string) error {
		p, err := a.api.Publishers.Create(ctx, args[0], publisherFlags.country)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Created publisher %d.\n", p.PublisherID)
		return nil
	}),
}

var publishersUpdateCmd = &cobra.Command{
	Use:   "update <id> <name>",
	Short: "Update a publisher",
	Args:  cobra.ExactArgs(2),
	RunE: guarded("/admin", func(ctx context.Context, a *app, args []string) error {
		id, err := parseID("publisher id", args[0])
		if err != nil {
			return err
		}
		in := client.PublisherInput{PublisherName: args[1], PublisherCountry: publisherFlags.country}
		if err := a.api.Publishers.Update(ctx, id, in); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Updated publisher %d.\n", id)
		return nil
	}),
}

var publishersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a publisher",
	Args:  cobra.ExactArgs(1),
	RunE: guarded("/admin", func(ctx context.Context, a *app, args []string) error {
		id, err := parseID("publisher id", args[0])
		if err != nil {
			return err
		}
		if err := a.api.Publishers.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Deleted publisher %d.\n", id)
		return nil
	}),
}

func init() {
	lf := booksListCmd.Flags()
	lf.IntVar(&bookFlags.page, "page", 1, "catalog page")
	lf.IntVar(&bookFlags.pageSize, "page-size", 10, "catalog page size")
	lf.StringVarP(&bookFlags.search, "search", "s", "", "search title, ISBN or description")
	lf.IntVar(&bookFlags.author, "author", 0, "filter by author id")
	lf.IntVar(&bookFlags.genre, "genre", 0, "filter by genre id")
	lf.IntVar(&bookFlags.publisher, "publisher", 0, "filter by publisher id")
	lf.Float64Var(&bookFlags.minPrice, "min-price", 0, "minimum price")
	lf.Float64Var(&bookFlags.maxPrice, "max-price", 0, "maximum price")
	lf.StringVar(&bookFlags.sort, "sort", "", "sort order: title, price_asc, price_desc, newest")

	for _, c := range []*cobra.Command{booksCreateCmd, booksUpdateCmd} {
		f := c.Flags()
		f.StringVar(&bookFlags.title, "title", "", "book title")
		f.StringVar(&bookFlags.isbn, "isbn", "", "ISBN")
		f.StringVar(&bookFlags.description, "description", "", "description")
		f.StringVar(&bookFlags.price, "price", "", "price")
		f.StringVar(&bookFlags.stock, "stock", "", "stock quantity")
		f.StringVar(&bookFlags.authorID, "author-id", "", "author id")
		f.StringVar(&bookFlags.genreID, "genre-id", "", "genre id")
		f.StringVar(&bookFlags.publisherID, "publisher-id", "", "publisher id")
		f.StringVar(&bookFlags.publishDate, "publish-date", "", "publish date, e.g. 2024-01-31")
		f.StringVar(&bookFlags.arrivalDate, "arrival-date", "", "arrival date, e.g. 2024-01-31")
	}

	for _, c := range []*cobra.Command{publishersCreateCmd, publishersUpdateCmd} {
		c.Flags().StringVar(&publisherFlags.country, "country", "", "publisher country")
	}

	booksCmd.AddCommand(booksListCmd, booksShowCmd, booksCreateCmd, booksUpdateCmd, booksDeleteCmd, booksUploadImageCmd)
	publishersCmd.AddCommand(publishersListCmd, publishersCreateCmd, publishersUpdateCmd, publishersDeleteCmd)
	RootCmd.AddCommand(booksCmd, authorsCmd, genresCmd, publishersCmd)
}
