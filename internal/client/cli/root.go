package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/bookcase/internal/buildinfo"
	"github.com/dmitrijs2005/bookcase/internal/client/config"
	"github.com/dmitrijs2005/bookcase/internal/flagx"
	"github.com/spf13/cobra"
)

func (a *App) getStatus() string {
	if a.session.DropExpired(context.Background()) {
		fmt.Fprintln(a.out, "Session expired, please log in again")
	}

	s := ""
	if sess := a.session.Session(); sess.IsAuthenticated() {
		s = sess.Username + " "
	}
	if m := a.Mode(); m != "" {
		s = s + string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", strings.TrimSpace(s))
	}
	return s
}

// newApp is a test seam for NewApp.
var newApp = NewApp

// Execute runs the bookcase command line with args (no program name).
// Flags consumed by the config layer are removed before cobra sees them.
func Execute(ctx context.Context, cfg *config.Config, args []string) error {
	root := newRootCmd(cfg)
	root.SetArgs(flagx.StripArgs(args, config.FlagNames))
	return root.ExecuteContext(ctx)
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bookcase",
		Short: "Search, collect and review books",
		Long: `bookcase is a terminal client for the book review service.

Without a subcommand it starts an interactive shell; type 'help' there
for the list of commands. Configuration comes from BOOKCASE_* environment
variables, a .env file, a JSON file (-c) and flags (-a, -d, -t, -b, -i, -l).`,
		Version:      buildinfo.Version(),
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, cfg, func(ctx context.Context, a *App) error {
				a.Run(ctx)
				return nil
			})
		},
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "whoami",
			Short: "Print the logged-in user",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(cmd, cfg, func(ctx context.Context, a *App) error {
					return a.WhoAmI(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "search <query>",
			Short: "Search the book catalog",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, cfg, func(ctx context.Context, a *App) error {
					return a.Search(ctx, args)
				})
			},
		},
		&cobra.Command{
			Use:   "books",
			Short: "List books known to the backend",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(cmd, cfg, func(ctx context.Context, a *App) error {
					return a.Books(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "logout",
			Short: "Forget the stored credential",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(cmd, cfg, func(ctx context.Context, a *App) error {
					return a.Logout(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "oauth-url",
			Short: "Print the Google sign-in URL",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(cmd, cfg, func(ctx context.Context, a *App) error {
					fmt.Fprintln(a.out, a.authService.OAuthLoginURL())
					return nil
				})
			},
		},
	)

	return rootCmd
}

// withApp builds an App for one command, points its I/O at the command's
// streams and closes it afterwards.
func withApp(cmd *cobra.Command, cfg *config.Config, fn func(ctx context.Context, a *App) error) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(ctx); err != nil {
			a.logger.Warn(ctx, "close failed", "error", err)
		}
	}()

	a.out = cmd.OutOrStdout()
	if in := cmd.InOrStdin(); in != nil {
		a.reader.Reset(in)
	}

	return fn(ctx, a)
}
