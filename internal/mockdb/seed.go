package mockdb

import (
	"time"

	"github.com/vera-byte/bookmandu/pkg/model"
)

// 预置账号
const (
	AdminEmail     = "admin@bookmandu.com"
	AdminPassword  = "admin123"
	StaffEmail     = "staff@bookmandu.com"
	StaffPassword  = "staff123"
	MemberEmail    = "member@bookmandu.com"
	MemberPassword = "member123"
)

// Seed 写入预置账号与示例目录
func (db *DB) Seed() error {
	now := db.now()
	return db.Update(func(t *Tables) error {
		accounts := []struct {
			name, email, password string
			role                  model.Role
		}{
			{"admin", AdminEmail, AdminPassword, model.RoleAdmin},
			{"staff", StaffEmail, StaffPassword, model.RoleStaff},
			{"member", MemberEmail, MemberPassword, model.RoleMember},
		}
		for _, a := range accounts {
			if _, err := t.AddUser(a.name, a.email, a.password, a.role, now); err != nil {
				return err
			}
		}

		authorID := t.NextID()
		t.Authors[authorID] = model.Author{AuthorID: authorID, AuthorName: "Laxmi Prasad Devkota"}
		author2 := t.NextID()
		t.Authors[author2] = model.Author{AuthorID: author2, AuthorName: "Parijat"}

		genreID := t.NextID()
		t.Genres[genreID] = model.Genre{GenreID: genreID, GenreName: "Poetry"}
		genre2 := t.NextID()
		t.Genres[genre2] = model.Genre{GenreID: genre2, GenreName: "Fiction"}

		pubID := t.NextID()
		t.Publishers[pubID] = model.Publisher{PublisherID: pubID, PublisherName: "Sajha Prakashan", PublisherCountry: "Nepal"}

		books := []model.Book{
			{BookTitle: "Muna Madan", ISBN: "9789937000011", Price: 10.00, StockQuantity: 20, AuthorID: authorID, GenreID: genreID},
			{BookTitle: "Shirishko Phool", ISBN: "9789937000028", Price: 12.50, StockQuantity: 8, AuthorID: author2, GenreID: genre2},
			{BookTitle: "Sulochana", ISBN: "9789937000035", Price: 7.25, StockQuantity: 0, AuthorID: authorID, GenreID: genre2},
		}
		for i, b := range books {
			b.BookID = t.NextID()
			b.PublisherID = pubID
			b.Language = "Nepali"
			b.PublishDate = model.NewTime(time.Date(1936+i*10, time.January, 1, 0, 0, 0, 0, time.UTC))
			b.ArrivalDate = model.NewTime(now.AddDate(0, 0, -i*30))
			t.Books[b.BookID] = b
		}

		annID := t.NextID()
		t.Announcements[annID] = model.AnnouncementRecord{
			AnnouncementID: annID,
			Title:          "Welcome",
			Content:        "Bookmandu is open.",
			Type:           model.AnnouncementLive,
			IsActive:       true,
		}
		return nil
	})
}
