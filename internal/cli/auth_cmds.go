package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error
				if password, err = prompt(app.in, app.out, "Password: "); err != nil {
					return err
				}
			}
			user, err := app.auth.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			success(app.out, "Logged in as %s", renderUser(user))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newRegisterCmd(app *App) *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error
				if password, err = prompt(app.in, app.out, "Password: "); err != nil {
					return err
				}
			}
			if err := app.auth.Register(cmd.Context(), name, email, password); err != nil {
				return err
			}
			success(app.out, "Registered %s. Log in with `tasks login --email %s`.", email, email)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.auth.Logout(); err != nil {
				return err
			}
			success(app.out, "Logged out")
			return nil
		},
	}
}

// whoami has no stored identity to read, so it proves the stored session by
// making an authenticated call.
func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Check whether the stored session is still valid",
		RunE: func(cmd *cobra.Command, args []string) error {
			stored, err := app.auth.HasStoredSession()
			if err != nil {
				return err
			}
			if !stored {
				fmt.Fprintln(app.out, "Not logged in")
				return nil
			}
			list, err := app.tasks.Fetch(cmd.Context())
			if err != nil {
				return err
			}
			msg := fmt.Sprintf("Logged in at %s (%d tasks)", app.baseURL(), len(list))
			if expiry, ok := app.sessions.AccessTokenExpiry(); ok {
				msg += fmt.Sprintf(", access token valid until %s", expiry.Local().Format("15:04:05"))
			}
			success(app.out, "%s", msg)
			return nil
		},
	}
}

func prompt(in io.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.ToLower(label), ": "), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
