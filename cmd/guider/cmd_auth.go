package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/neexbeast/travelguider/internal/session"
)

func newLoginCmd(a *app) *cobra.Command {
	var email string
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(email) == "" {
				return errors.New("--email is required")
			}
			password, err := readPassword(a.in, a.out, passwordStdin)
			if err != nil {
				return err
			}

			token, err := a.client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := a.session.SetToken(cmd.Context(), token); err != nil {
				return err
			}

			if exp, ok := session.ExpiresAt(token); ok {
				fmt.Fprintf(a.out, "Signed in as %s (profile %s) until %s\n", email, a.session.ClientID(), exp.Local().Format("2006-01-02 15:04"))
			} else {
				fmt.Fprintf(a.out, "Signed in as %s (profile %s)\n", email, a.session.ClientID())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

// readPassword prompts without echo on a terminal and reads one line otherwise.
func readPassword(in io.Reader, out io.Writer, fromStdin bool) (string, error) {
	if f, ok := in.(*os.File); ok && !fromStdin && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(out, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("empty password")
	}
	return password, nil
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.session.ClearToken(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Signed out of profile %s\n", a.session.ClientID())
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := a.session.GetToken(cmd.Context())
			if err != nil {
				return err
			}
			if token == "" {
				return errors.New(`not signed in; run "guider login"`)
			}
			me, err := a.client.Me(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s <%s>", me.Name, me.Email)
			if me.Role != "" {
				fmt.Fprintf(a.out, " [%s]", me.Role)
			}
			fmt.Fprintln(a.out)
			return nil
		},
	}
}
