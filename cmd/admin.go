package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/vera-byte/bookmandu/internal/dashboard"
	"github.com/vera-byte/bookmandu/pkg/model"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var staffFlags struct {
	username string
	email    string
	password string
}

var processFlags struct {
	membershipID string
	claimCode    string
}

func renderAccounts(a *app, title string, accounts []model.Account, withMembership bool) {
	header := []string{"ID", "Username", "Email", "Joined"}
	if withMembership {
		header = append(header, "Membership")
	}
	rows := make([][]string, 0, len(accounts))
	for _, acc := range accounts {
		row := []string{acc.ID, acc.UserName, acc.Email, model.FormatDate(acc.JoinDate)}
		if withMembership {
			row = append(row, acc.MembershipID)
		}
		rows = append(rows, row)
	}
	renderTable(a.out, title, header, rows)
}

var staffCmd = &cobra.Command{
	Use:   "staff",
	Short: "Manage staff accounts",
}

var staffListCmd = &cobra.Command{
	Use:   "list",
	Short: "List staff accounts",
	Args:  cobra.NoArgs,
	RunE: guarded("/admin", func(ctx context.Context, a *app, _ []string) error {
		staff, err := a.api.Users.Staff(ctx)
		if err != nil {
			return err
		}
		renderAccounts(a, "Staff", staff, false)
		return nil
	}),
}

var staffRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a staff account",
	Args:  cobra.NoArgs,
	RunE: guarded("/admin", func(ctx context.Context, a *app, _ []string) error {
		username, err := a.orPrompt(staffFlags.username, "Username: ")
		if err != nil {
			return err
		}
		email, err := a.orPrompt(staffFlags.email, "Email: ")
		if err != nil {
			return err
		}
		password := staffFlags.password
		if password == "" {
			if password, err = a.promptPassword("Password: "); err != nil {
				return err
			}
		}
		req := model.RegisterStaffRequest{Username: username, Email: email, Password: password}
		if err := a.api.Users.RegisterStaff(ctx, req); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Staff account %s created.\n", username)
		return nil
	}),
}

var membersCmd = &cobra.Command{
	Use:   "members",
	Short: "Browse member accounts",
}

var membersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List members",
	Args:  cobra.NoArgs,
	RunE: guarded("/admin", func(ctx context.Context, a *app, _ []string) error {
		members, err := a.api.Users.Members(ctx)
		if err != nil {
			return err
		}
		renderAccounts(a, "Members", members, true)
		return nil
	}),
}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administrator views",
}

var adminDashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Load every admin panel at once",
	Args:  cobra.NoArgs,
	RunE: guarded("/admin", func(ctx context.Context, a *app, _ []string) error {
		panel := dashboard.NewPanel[dashboard.Admin](func(ctx context.Context) (*dashboard.Admin, error) {
			return dashboard.LoadAdmin(ctx, a.api)
		}, a.logger.Named("dashboard"))
		defer panel.Unmount()

		d, err := panel.Mount(ctx)
		if err != nil {
			return err
		}

		renderBooks(a, fmt.Sprintf("Books (%d)", len(d.Books)), d.Books)

		rows := make([][]string, 0, len(d.Authors))
		for _, it := range d.Authors {
			rows = append(rows, []string{strconv.Itoa(it.AuthorID), it.AuthorName})
		}
		renderTable(a.out, fmt.Sprintf("Authors (%d)", len(d.Authors)), []string{"ID", "Name"}, rows)

		rows = make([][]string, 0, len(d.Genres))
		for _, it := range d.Genres {
			rows = append(rows, []string{strconv.Itoa(it.GenreID), it.GenreName})
		}
		renderTable(a.out, fmt.Sprintf("Genres (%d)", len(d.Genres)), []string{"ID", "Name"}, rows)

		rows = make([][]string, 0, len(d.Publishers))
		for _, it := range d.Publishers {
			rows = append(rows, []string{strconv.Itoa(it.PublisherID), it.PublisherName, it.PublisherCountry})
		}
		renderTable(a.out, fmt.Sprintf("Publishers (%d)", len(d.Publishers)), []string{"ID", "Name", "Country"}, rows)

		renderAccounts(a, fmt.Sprintf("Staff (%d)", len(d.Staff)), d.Staff, false)
		renderAccounts(a, fmt.Sprintf("Members (%d)", len(d.Members)), d.Members, true)

		rows = make([][]string, 0, len(d.Announcements))
		for _, it := range d.Announcements {
			rows = append(rows, []string{strconv.Itoa(it.ID), it.Type, it.Title})
		}
		renderTable(a.out, fmt.Sprintf("Announcements (%d)", len(d.Announcements)), []string{"ID", "Type", "Title"}, rows)
		return nil
	}),
}

var staffDashboardCmd = &cobra.Command{
	Use:   "staff-dashboard",
	Short: "Staff counter views",
}

func newStaffPanel(a *app) *dashboard.Panel[dashboard.Staff] {
	return dashboard.NewPanel[dashboard.Staff](func(ctx context.Context) (*dashboard.Staff, error) {
		return dashboard.LoadStaff(ctx, a.api)
	}, a.logger.Named("dashboard"))
}

func renderStaffDashboard(a *app, d *dashboard.Staff) {
	renderOrders(a, "Pending orders", d.Pending())
	low := make([]model.Book, 0)
	for _, b := range d.Books {
		if b.StockQuantity < 5 {
			low = append(low, b)
		}
	}
	renderBooks(a, "Low stock", low)
}

var staffDashboardShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show pending orders and low stock",
	Args:  cobra.NoArgs,
	RunE: guarded("/staff", func(ctx context.Context, a *app, _ []string) error {
		panel := newStaffPanel(a)
		defer panel.Unmount()

		d, err := panel.Mount(ctx)
		if err != nil {
			return err
		}
		renderStaffDashboard(a, d)
		return nil
	}),
}

var staffDashboardProcessCmd = &cobra.Command{
	Use:   "process <order-id>",
	Short: "Hand over an order after checking membership ID and claim code",
	Args:  cobra.ExactArgs(1),
	RunE: guarded("/staff", func(ctx context.Context, a *app, args []string) error {
		id, err := parseID("order id", args[0])
		if err != nil {
			return err
		}
		membershipID, err := a.orPrompt(processFlags.membershipID, "Membership ID: ")
		if err != nil {
			return err
		}
		claimCode, err := a.orPrompt(processFlags.claimCode, "Claim code: ")
		if err != nil {
			return err
		}

		panel := newStaffPanel(a)
		defer panel.Unmount()
		if _, err := panel.Mount(ctx); err != nil {
			return err
		}

		req := model.ProcessOrderRequest{OrderID: id, MembershipID: membershipID, ClaimCode: claimCode}
		d, err := panel.Mutate(ctx, func(ctx context.Context) error {
			return a.api.Orders.Process(ctx, req)
		})
		if err != nil {
			return err
		}
		a.logger.Info("Order processed", zap.Int("order_id", id))
		fmt.Fprintf(a.out, "Order %d processed.\n", id)
		renderStaffDashboard(a, d)
		return nil
	}),
}

func init() {
	sf := staffRegisterCmd.Flags()
	sf.StringVarP(&staffFlags.username, "username", "u", "", "display name")
	sf.StringVarP(&staffFlags.email, "email", "e", "", "account email")
	sf.StringVarP(&staffFlags.password, "password", "p", "", "account password (prompted when omitted)")
	staffCmd.AddCommand(staffListCmd, staffRegisterCmd)

	membersCmd.AddCommand(membersListCmd)
	adminCmd.AddCommand(adminDashboardCmd)

	pf := staffDashboardProcessCmd.Flags()
	pf.StringVarP(&processFlags.membershipID, "membership-id", "m", "", "member's membership ID")
	pf.StringVarP(&processFlags.claimCode, "claim-code", "c", "", "order claim code")
	staffDashboardCmd.AddCommand(staffDashboardShowCmd, staffDashboardProcessCmd)

	RootCmd.AddCommand(staffCmd, membersCmd, adminCmd, staffDashboardCmd)
}
