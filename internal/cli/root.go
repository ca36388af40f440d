// Package cli is the presentation layer: a cobra command tree over the
// chamada services. Errors surface here as user-facing messages; nothing
// below this package prints.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chamada-app/chamadactl/internal/cli/request"
	"github.com/chamada-app/chamadactl/internal/config"
	"github.com/chamada-app/chamadactl/internal/domain"
	"github.com/chamada-app/chamadactl/internal/localstate"
	"github.com/chamada-app/chamadactl/internal/repository"
	"github.com/chamada-app/chamadactl/internal/service"
)

type App struct {
	conf         *config.AppConfig
	store        *localstate.Store
	auth         *service.AuthService
	chamadas     *service.ChamadaService
	presences    *service.PresenceService
	presenceRepo *repository.PresenceRepository

	in  *bufio.Reader
	out io.Writer
}

func NewApp(
	conf *config.AppConfig,
	store *localstate.Store,
	auth *service.AuthService,
	chamadas *service.ChamadaService,
	presences *service.PresenceService,
	presenceRepo *repository.PresenceRepository,
) *App {
	return &App{
		conf:         conf,
		store:        store,
		auth:         auth,
		chamadas:     chamadas,
		presences:    presences,
		presenceRepo: presenceRepo,
		in:           bufio.NewReader(os.Stdin),
		out:          os.Stdout,
	}
}

// RootCommand assembles the full command tree.
func (a *App) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "chamadactl",
		Short:         "Attendance confirmation client for the chamada backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		a.loginCommand(),
		a.logoutCommand(),
		a.whoamiCommand(),
		a.chamadaCommand(),
		a.presenceCommand(),
		a.confirmCommand(),
	)

	return root
}

func (a *App) loginCommand() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate as an administrator",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if username == "" {
				username = a.prompt("Username: ")
			}
			if password == "" {
				password = a.prompt("Password: ")
			}

			req := request.LoginRequest{Username: username, Password: password}
			if err := req.Validate(); err != nil {
				return err
			}

			session, err := a.auth.Login(cmd.Context(), req.Username, req.Password)
			if err != nil {
				if errors.Is(err, service.ErrWrongCredentials) {
					return errors.New("invalid username or password")
				}

				return err
			}

			fmt.Fprintf(a.out, "logged in as %s\n", displayName(session.User))

			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "admin username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "admin password")

	return cmd
}

func (a *App) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.auth.Logout(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintln(a.out, "logged out")

			return nil
		},
	}
}

func (a *App) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated administrator",
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := a.requireSession(cmd)
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "%s (%s)\n", displayName(session.User), session.User.Username)

			return nil
		},
	}
}

// requireSession restores the persisted admin session or explains how to
// get one.
func (a *App) requireSession(cmd *cobra.Command) (domain.AdminSession, error) {
	session, err := a.auth.Restore(cmd.Context())
	if err != nil {
		if errors.Is(err, service.ErrNotLoggedIn) {
			return domain.AdminSession{}, errors.New("not logged in; run `chamadactl login` first")
		}
		if errors.Is(err, service.ErrSessionExpired) {
			return domain.AdminSession{}, errors.New("session expired; run `chamadactl login` again")
		}

		return domain.AdminSession{}, err
	}

	return session, nil
}

func (a *App) prompt(label string) string {
	fmt.Fprint(a.out, label)
	line, _ := a.in.ReadString('\n')

	return strings.TrimSpace(line)
}

func displayName(user domain.AdminProfile) string {
	if user.Name != "" {
		return user.Name
	}

	return user.Username
}
