package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/vera-byte/bookmandu/internal/guard"

	"github.com/google/shlex"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive session that keeps the client state between commands",
	Long: `Run client commands one per line without the program prefix, e.g. "books list".
A rejected route or an expired session drops straight into the login prompt.
Type "exit" or "quit" to leave.`,
	Args: cobra.NoArgs,
	RunE: connected(runShell),
}

func init() {
	RootCmd.AddCommand(shellCmd)
}

func runShell(ctx context.Context, a *app, _ []string) error {
	a.shell = true
	defer func() { a.shell = false }()

	fmt.Fprintln(a.out, "Welcome to Bookmandu.")
	if u := a.session.User(); u != nil {
		fmt.Fprintf(a.out, "Logged in as %s (%s).\n", u.Username, u.Role)
	} else {
		fmt.Fprintln(a.out, "Browsing as a guest. Type \"login\" to sign in.")
	}
	fmt.Fprintln(a.out, "Type \"help\" for commands, \"exit\" to quit.")

	for ctx.Err() == nil {
		line, err := a.prompt("\n> ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		args, err := shlex.Split(line)
		if err != nil {
			fmt.Fprintln(a.errOut, "Error:", err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "exit", "quit":
			return nil
		case "shell":
			fmt.Fprintln(a.errOut, "Already in the shell.")
			continue
		}

		RootCmd.SetArgs(args)
		err = RootCmd.ExecuteContext(ctx)
		resetFlags(RootCmd)
		if err != nil {
			printShellError(a, err)
		}

		if a.takeRedirect() == guard.LoginPath {
			fmt.Fprintln(a.out, "Redirecting to login.")
			if err := runLogin(ctx, a, nil); err != nil {
				printShellError(a, err)
			}
		}
	}
	return nil
}

// printShellError 会话被清除时随后会进入登录流程，不再追加登录提示
func printShellError(a *app, err error) {
	if msg, ok := userMessage(err, false); ok {
		fmt.Fprintln(a.errOut, msg)
		return
	}
	fmt.Fprintln(a.errOut, "Error:", err)
}

// resetFlags 把本次命令改过的参数恢复为默认值
func resetFlags(root *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if !f.Changed {
			return
		}
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		c.Flags().VisitAll(reset)
		c.PersistentFlags().VisitAll(reset)
		for _, sub := range c.Commands() {
			walk(sub)
		}
	}
	walk(root)
}
