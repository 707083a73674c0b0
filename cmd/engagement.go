package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/vera-byte/bookmandu/pkg/model"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

var reviewFlags struct {
	rating  int
	comment string
}

var reviewsCmd = &cobra.Command{
	Use:     "reviews",
	Aliases: []string{"review"},
	Short:   "Read and write book reviews",
}

var reviewsListCmd = &cobra.Command{
	Use:   "list <book-id>",
	Short: "List reviews of a book",
	Args:  cobra.ExactArgs(1),
	RunE: guarded("/books/:id", func(ctx context.Context, a *app, args []string) error {
		id, err := parseID("book id", args[0])
		if err != nil {
			return err
		}
		reviews, err := a.api.Reviews.ByBook(ctx, id)
		if err != nil {
			return err
		}
		renderReviews(a, reviews)
		return nil
	}),
}

var reviewsAddCmd = &cobra.Command{
	Use:   "add <book-id>",
	Short: "Review a book from a completed order",
	Args:  cobra.ExactArgs(1),
	RunE: guarded("/order", func(ctx context.Context, a *app, args []string) error {
		id, err := parseID("book id", args[0])
		if err != nil {
			return err
		}
		r := model.Review{BookID: id, Rating: reviewFlags.rating, Comment: reviewFlags.comment}
		if err := a.api.Reviews.Add(ctx, r); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Review added. Thank you!")
		return nil
	}),
}

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notification"},
	Short:   "Read your notifications",
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications",
	Args:  cobra.NoArgs,
	RunE: guarded("/notifications", func(ctx context.Context, a *app, _ []string) error {
		items, err := a.api.Notifications.List(ctx, a.session.User().UserID)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(items))
		for _, n := range items {
			state := "read"
			if !n.IsRead {
				state = "new"
			}
			rows = append(rows, []string{strconv.Itoa(n.NotificationID), model.FormatDateTime(n.CreatedAt), state, n.Message})
		}
		renderTable(a.out, fmt.Sprintf("Notifications (%d unread)", model.UnreadCount(items)), []string{"ID", "Date", "State", "Message"}, rows)
		return nil
	}),
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read <id>",
	Short: "Mark a notification as read",
	Args:  cobra.ExactArgs(1),
	RunE: guarded("/notifications", func(ctx context.Context, a *app, args []string) error {
		id, err := parseID("notification id", args[0])
		if err != nil {
			return err
		}
		if err := a.api.Notifications.MarkAsRead(ctx, id); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Marked as read.")
		return nil
	}),
}

var notificationsReadAllCmd = &cobra.Command{
	Use:   "read-all",
	Short: "Mark every notification as read",
	Args:  cobra.NoArgs,
	RunE: guarded("/notifications", func(ctx context.Context, a *app, _ []string) error {
		return a.api.Notifications.MarkAllAsRead(ctx)
	}),
}

var announcementFlags struct {
	title   string
	content string
	kind    string
	start   string
	end     string
}

var announcementsCmd = &cobra.Command{
	Use:     "announcements",
	Aliases: []string{"announcement"},
	Short:   "Show and manage announcements",
}

var announcementsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active announcements",
	Args:  cobra.NoArgs,
	RunE: guarded("/", func(ctx context.Context, a *app, _ []string) error {
		items, err := a.api.Announcements.Active(ctx)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(items))
		for _, it := range items {
			window := "-"
			if it.Type == model.AnnouncementTimed {
				window = model.FormatDateTime(it.StartTime) + " to " + model.FormatDateTime(it.EndTime)
			}
			rows = append(rows, []string{strconv.Itoa(it.ID), it.Type, it.Title, truncate(it.Content, 60), window})
		}
		renderTable(a.out, "Announcements", []string{"ID", "Type", "Title", "Content", "Window"}, rows)
		return nil
	}),
}

// announcementFromFlags 类型默认 Live；Timed 必须给出起止时间
func announcementFromFlags() (model.Announcement, error) {
	an := model.Announcement{
		Title:   announcementFlags.title,
		Content: announcementFlags.content,
		Type:    announcementFlags.kind,
	}
	if an.Type == "" {
		an.Type = model.AnnouncementLive
	}
	if an.Type != model.AnnouncementTimed {
		return an, nil
	}
	start, err := cast.ToTimeE(announcementFlags.start)
	if err != nil {
		return an, fmt.Errorf("invalid --start %q: %w", announcementFlags.start, err)
	}
	end, err := cast.ToTimeE(announcementFlags.end)
	if err != nil {
		return an, fmt.Errorf("invalid --end %q: %w", announcementFlags.end, err)
	}
	an.StartTime, an.EndTime = model.NewTime(start), model.NewTime(end)
	return an, nil
}

var announcementsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Publish an announcement",
	Args:  cobra.NoArgs,
	RunE: guarded("/admin", func(ctx context.Context, a *app, _ []string) error {
		an, err := announcementFromFlags()
		if err != nil {
			return err
		}
		if err := a.api.Announcements.Create(ctx, an); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Announcement published.")
		return nil
	}),
}

var announcementsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Replace an announcement",
	Args:  cobra.ExactArgs(1),
	RunE: guarded("/admin", func(ctx context.Context, a *app, args []string) error {
		id, err := parseID("announcement id", args[0])
		if err != nil {
			return err
		}
		an, err := announcementFromFlags()
		if err != nil {
			return err
		}
		if err := a.api.Announcements.Update(ctx, id, an); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Announcement updated.")
		return nil
	}),
}

var announcementsDeactivateCmd = &cobra.Command{
	Use:   "deactivate <id>",
	Short: "Take an announcement down",
	Args:  cobra.ExactArgs(1),
	RunE: guarded("/admin", func(ctx context.Context, a *app, args []string) error {
		id, err := parseID("announcement id", args[0])
		if err != nil {
			return err
		}
		if err := a.api.Announcements.Deactivate(ctx, id); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Announcement deactivated.")
		return nil
	}),
}

var discountFlags struct {
	kind        string
	description string
	percentage  float64
	start       string
	end         string
}

var discountsCmd = &cobra.Command{
	Use:     "discounts",
	Aliases: []string{"discount"},
	Short:   "Show and manage discounts",
}

func renderDiscounts(a *app, items []model.Discount) {
	rows := make([][]string, 0, len(items))
	for _, d := range items {
		rows = append(rows, []string{
			strconv.Itoa(d.DiscountID),
			strconv.Itoa(d.BookID),
			d.Type,
			cast.ToString(d.Percentage) + "%",
			model.FormatDate(d.StartDate),
			model.FormatDate(d.EndDate),
			strconv.FormatBool(d.IsOnSale),
		})
	}
	renderTable(a.out, "Discounts", []string{"ID", "Book", "Type", "Off", "From", "Until", "On sale"}, rows)
}

var discountsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all discounts",
	Args:  cobra.NoArgs,
	RunE: guarded("/", func(ctx context.Context, a *app, _ []string) error {
		items, err := a.api.Discounts.All(ctx)
		if err != nil {
			return err
		}
		renderDiscounts(a, items)
		return nil
	}),
}

var discountsShowCmd = &cobra.Command{
	Use:   "show <book-id>",
	Short: "Show the active discount of a book",
	Args:  cobra.ExactArgs(1),
	RunE: guarded("/", func(ctx context.Context, a *app, args []string) error {
		id, err := parseID("book id", args[0])
		if err != nil {
			return err
		}
		d, err := a.api.Discounts.ByBook(ctx, id)
		if err != nil {
			return err
		}
		renderDiscounts(a, []model.Discount{*d})
		return nil
	}),
}

var discountsAddCmd = &cobra.Command{
	Use:   "add <book-id>",
	Short: "Put a book on sale",
	Args:  cobra.ExactArgs(1),
	RunE: guarded("/admin", func(ctx context.Context, a *app, args []string) error {
		id, err := parseID("book id", args[0])
		if err != nil {
			return err
		}
		d := model.Discount{
			BookID:      id,
			Type:        discountFlags.kind,
			Description: discountFlags.description,
			Percentage:  discountFlags.percentage,
		}
		start := time.Now()
		if discountFlags.start != "" {
			if start, err = cast.ToTimeE(discountFlags.start); err != nil {
				return fmt.Errorf("invalid --start %q: %w", discountFlags.start, err)
			}
		}
		end := start.AddDate(0, 0, 7)
		if discountFlags.end != "" {
			if end, err = cast.ToTimeE(discountFlags.end); err != nil {
				return fmt.Errorf("invalid --end %q: %w", discountFlags.end, err)
			}
		}
		d.StartDate, d.EndDate = model.NewTime(start), model.NewTime(end)
		if err := a.api.Discounts.Add(ctx, d); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Discount added.")
		return nil
	}),
}

func init() {
	reviewsAddCmd.Flags().IntVarP(&reviewFlags.rating, "rating", "r", 5, "rating from 1 to 5")
	reviewsAddCmd.Flags().StringVarP(&reviewFlags.comment, "comment", "c", "", "review text")
	reviewsCmd.AddCommand(reviewsListCmd, reviewsAddCmd)

	notificationsCmd.AddCommand(notificationsListCmd, notificationsReadCmd, notificationsReadAllCmd)

	for _, c := range []*cobra.Command{announcementsCreateCmd, announcementsUpdateCmd} {
		f := c.Flags()
		f.StringVar(&announcementFlags.title, "title", "", "title")
		f.StringVar(&announcementFlags.content, "content", "", "content")
		f.StringVar(&announcementFlags.kind, "type", model.AnnouncementLive, "Live or Timed")
		f.StringVar(&announcementFlags.start, "start", "", "start time for Timed announcements")
		f.StringVar(&announcementFlags.end, "end", "", "end time for Timed announcements")
	}
	announcementsCmd.AddCommand(announcementsListCmd, announcementsCreateCmd, announcementsUpdateCmd, announcementsDeactivateCmd)

	af := discountsAddCmd.Flags()
	af.StringVar(&discountFlags.kind, "type", "Seasonal", "discount type")
	af.StringVar(&discountFlags.description, "description", "", "description")
	af.Float64Var(&discountFlags.percentage, "percentage", 10, "percentage off")
	af.StringVar(&discountFlags.start, "start", "", "start date (default now)")
	af.StringVar(&discountFlags.end, "end", "", "end date (default one week from start)")
	discountsCmd.AddCommand(discountsListCmd, discountsShowCmd, discountsAddCmd)

	RootCmd.AddCommand(reviewsCmd, notificationsCmd, announcementsCmd, discountsCmd)
}
