package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/neexbeast/travelguider/internal/backend"
	"github.com/neexbeast/travelguider/internal/config"
	"github.com/neexbeast/travelguider/internal/session"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	session *session.Session
	client  *backend.Client
	in      io.Reader
	out     io.Writer
}

type rootOptions struct {
	configPath string
	profile    string
	backendURL string
	verbose    bool
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	opts := &rootOptions{}
	a := &app{in: in, out: out}

	root := &cobra.Command{
		Use:   "guider",
		Short: "guider plans Sri Lanka trips against the tourism backend",
		Long: `guider talks to the tourism REST backend from the terminal.

Sign in once with "guider login"; the token is kept in a local credentials
file until it expires or you run "guider logout".`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(opts, errOut)
		},
	}

	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&opts.profile, "profile", "default", "credentials profile to use")
	root.PersistentFlags().StringVar(&opts.backendURL, "backend", "", "backend base URL (overrides config)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log requests to stderr")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newPlanCmd(a),
		newCSVCmd(a),
		newDashboardCmd(a),
	)
	return root
}

func (a *app) init(opts *rootOptions, errOut io.Writer) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.backendURL != "" {
		cfg.Backend.BaseURL = opts.backendURL
	}
	if err := cfg.ValidateCLI(); err != nil {
		return err
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	a.cfg = cfg
	a.log = slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))
	a.session = session.New(session.NewFileStore(cfg.CredentialsFile), opts.profile)
	a.client = backend.NewClient(cfg.Backend.BaseURL, a.session,
		backend.WithTimeout(cfg.Backend.Timeout),
		backend.WithLogger(a.log),
	)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", describe(err))
		os.Exit(1)
	}
}
