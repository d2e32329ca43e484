package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
	"golang.org/x/text/message"

	"github.com/mark-chris/checklist/internal/api"
	"github.com/mark-chris/checklist/internal/config"
	"github.com/mark-chris/checklist/internal/i18n"
	"github.com/mark-chris/checklist/internal/keychain"
	"github.com/mark-chris/checklist/internal/logging"
	"github.com/mark-chris/checklist/internal/session"
)

// keychainFactory allows injecting a mock keychain in tests
var keychainFactory func() keychain.Keychain = func() keychain.Keychain {
	return keychain.NewSystemKeychain(keychain.DefaultService)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "checklist",
		Short:         "Work with checklist projects and tasks from the terminal",
		Long:          "checklist talks to a checklist backend: sign in, finish onboarding, and manage projects, tasks, users and invitations.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(),
		newConfigCmd(),
		newLoginCmd(),
		newRegisterCmd(),
		newLogoutCmd(),
		newStatusCmd(),
		newProfileCmd(),
		newOnboardingCmd(),
		newDashboardCmd(),
		newProjectsCmd(),
		newTasksCmd(),
		newInviteCmd(),
		newUsersCmd(),
	)
	return root
}

// app is what every backend command needs, built from the effective config
type app struct {
	cfg     *config.Config
	store   session.Store
	client  *api.AuthenticatedClient
	logger  *zap.Logger
	printer *message.Printer
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewWithWriter(cfg.Logging.Level, cmd.ErrOrStderr())
	if cfg.IsInsecure() {
		logger.Warn("server URL uses plain http; credentials are sent unencrypted", zap.String("url", cfg.Server.URL))
	}

	store := session.NewKeychainStore(keychainFactory())
	client := api.NewAuthenticatedClient(cfg.Server.URL, store, api.WithLogger(logger))
	client.OnSessionExpired(func() {
		logger.Info("session expired; stored credentials removed")
	})

	return &app{
		cfg:     cfg,
		store:   store,
		client:  client,
		logger:  logger,
		printer: i18n.Printer(cfg.UI.Language),
	}, nil
}

// say prints a localized line
func (a *app) say(cmd *cobra.Command, key string, args ...any) {
	cmd.Println(a.printer.Sprintf(key, args...))
}

// describe renders err for the terminal. A missing login is reported as
// such even when the backend wrapped it in a 401.
func describe(p *message.Printer, err error) string {
	if errors.Is(err, api.ErrSessionExpired) {
		return p.Sprintf(i18n.MsgSessionExpired)
	}
	if errors.Is(err, api.ErrNotAuthenticated) {
		return p.Sprintf(i18n.MsgNotAuthenticated)
	}
	return i18n.Describe(p, err)
}

// prompter reads answers from the command's input. Secrets are read
// without echo when the input is a terminal.
type prompter struct {
	in       *bufio.Reader
	out      io.Writer
	fd       int
	terminal bool
}

func newPrompter(cmd *cobra.Command) *prompter {
	p := &prompter{in: bufio.NewReader(cmd.InOrStdin()), out: cmd.OutOrStdout()}
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
		p.terminal = true
	}
	return p
}

func (p *prompter) line(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	s, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimRight(s, "\r\n"), nil
}

func (p *prompter) secret(label string) (string, error) {
	if !p.terminal {
		return p.line(label)
	}
	fmt.Fprintf(p.out, "%s: ", label)
	b, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out) // newline after password
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return string(b), nil
}

func (p *prompter) confirm(label string) bool {
	answer, err := p.line(label + " [y/N]")
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "j", "ja":
		return true
	default:
		return false
	}
}

// askIfEmpty prompts for *v unless it was given on the command line
func (p *prompter) askIfEmpty(v *string, label string, secret bool) error {
	if *v != "" {
		return nil
	}
	var (
		s   string
		err error
	)
	if secret {
		s, err = p.secret(label)
	} else {
		s, err = p.line(label)
	}
	if err != nil {
		return err
	}
	*v = s
	return nil
}
