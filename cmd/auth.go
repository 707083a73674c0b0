package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/vera-byte/bookmandu/internal/guard"
	"github.com/vera-byte/bookmandu/internal/middleware"
	"github.com/vera-byte/bookmandu/internal/session"
	"github.com/vera-byte/bookmandu/pkg/model"

	"github.com/spf13/cobra"
)

var loginFlags struct {
	email    string
	password string
}

var registerFlags struct {
	username string
	email    string
	password string
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and persist the session",
	Args:  cobra.NoArgs,
	RunE:  connected(runLogin),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the local session",
	Args:  cobra.NoArgs,
	RunE: connected(func(ctx context.Context, a *app, _ []string) error {
		if err := a.session.Logout(ctx); err != nil {
			return err
		}
		a.local.Clear()
		fmt.Fprintln(a.out, "Logged out.")
		return nil
	}),
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a member account",
	Args:  cobra.NoArgs,
	RunE: guarded("/register", func(ctx context.Context, a *app, _ []string) error {
		username, err := a.orPrompt(registerFlags.username, "Username: ")
		if err != nil {
			return err
		}
		email, err := a.orPrompt(registerFlags.email, "Email: ")
		if err != nil {
			return err
		}
		password := registerFlags.password
		if password == "" {
			if password, err = a.promptPassword("Password: "); err != nil {
				return err
			}
		}
		if err := a.api.Auth.Register(ctx, model.RegisterRequest{Username: username, Email: email, Password: password}); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Registration successful. You can now log in.")
		return nil
	}),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	Args:  cobra.NoArgs,
	RunE: guarded("/profile", func(_ context.Context, a *app, _ []string) error {
		u := a.session.User()
		fields := [][2]string{
			{"Username", u.Username},
			{"Role", string(u.Role)},
			{"User ID", u.UserID},
			{"Backend", a.http.BaseURL()},
		}
		// 仅用于展示，不校验签名
		if claims, err := middleware.PeekClaims(u.Token); err == nil && claims.ExpiresAt != nil {
			exp := claims.ExpiresAt.Time
			fields = append(fields, [2]string{"Token expires", exp.Local().Format("2006-01-02 15:04")})
			if time.Now().After(exp) {
				fields = append(fields, [2]string{"Status", "expired, the next request will end the session"})
			}
		}
		renderFields(a.out, "Session", fields)
		return nil
	}),
}

func init() {
	loginCmd.Flags().StringVarP(&loginFlags.email, "email", "e", "", "account email")
	loginCmd.Flags().StringVarP(&loginFlags.password, "password", "p", "", "account password (prompted when omitted)")

	registerCmd.Flags().StringVarP(&registerFlags.username, "username", "u", "", "display name")
	registerCmd.Flags().StringVarP(&registerFlags.email, "email", "e", "", "account email")
	registerCmd.Flags().StringVarP(&registerFlags.password, "password", "p", "", "account password (prompted when omitted)")

	RootCmd.AddCommand(loginCmd, logoutCmd, registerCmd, whoamiCmd)
}

func runLogin(ctx context.Context, a *app, _ []string) error {
	email, err := a.orPrompt(loginFlags.email, "Email: ")
	if err != nil {
		return err
	}
	password := loginFlags.password
	if password == "" {
		if password, err = a.promptPassword("Password: "); err != nil {
			return err
		}
	}

	resp, err := a.api.Auth.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := a.session.Login(ctx, session.FromLogin(resp)); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Welcome, %s (%s).\n", resp.Username, resp.Role)
	switch {
	case guard.IsAdmin(a.session.User()):
		fmt.Fprintln(a.out, "Open the admin dashboard with: bookmandu admin dashboard")
	case guard.IsStaff(a.session.User()):
		fmt.Fprintln(a.out, "Open the staff dashboard with: bookmandu staff-dashboard show")
	}
	return nil
}
