package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/Sahithee-Vadali/Roxiler-Systems-client/internal/api"
	"github.com/Sahithee-Vadali/Roxiler-Systems-client/internal/domain"
	"github.com/Sahithee-Vadali/Roxiler-Systems-client/internal/form"
	"github.com/Sahithee-Vadali/Roxiler-Systems-client/internal/view"
	"github.com/Sahithee-Vadali/Roxiler-Systems-client/pkg/health"
)

var (
	// ErrUnknownCommand is returned by Exec for an unrecognized subcommand.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrNotLoggedIn is returned by subcommands that need a session.
	ErrNotLoggedIn = errors.New("not logged in: run storerate login")

	// ErrWrongRole is returned when the session's role cannot use a subcommand.
	ErrWrongRole = errors.New("not allowed for this role")

	// ErrUnhealthy is returned by status when a dependency check fails.
	ErrUnhealthy = errors.New("one or more dependencies are down")
)

// CommandError is a failed subcommand together with the message to show.
type CommandError struct {
	Message string
	Err     error
}

func (e *CommandError) Error() string { return e.Message }

func (e *CommandError) Unwrap() error { return e.Err }

func failed(err error, fallback string) error {
	return &CommandError{Message: api.Message(err, fallback), Err: err}
}

type subcommand struct {
	usage string
	about string
	run   func(a *App, ctx context.Context, args []string) error
}

func subcommands() map[string]subcommand {
	return map[string]subcommand{
		"login":           {"login [-email e] [-password p]", "sign in and store the session", (*App).cmdLogin},
		"logout":          {"logout", "remove the stored session", (*App).cmdLogout},
		"whoami":          {"whoami", "show the signed-in account", (*App).cmdWhoami},
		"stores":          {"stores [-search term]", "list or search stores", (*App).cmdStores},
		"rate":            {fmt.Sprintf("rate <store id> <%d-%d>", domain.MinRating, domain.MaxRating), "rate a store (USER)", (*App).cmdRate},
		"owner-stores":    {"owner-stores", "show your stores and their ratings (OWNER)", (*App).cmdOwnerStores},
		"admin-dashboard": {"admin-dashboard", "show totals and top stores (ADMIN)", (*App).cmdAdminDashboard},
		"admin-users":     {"admin-users [-role ROLE]", "list users (ADMIN)", (*App).cmdAdminUsers},
		"admin-stores":    {"admin-stores", "list stores with averages (ADMIN)", (*App).cmdAdminStores},
		"status":          {"status [-json]", "check the API and session storage", (*App).cmdStatus},
	}
}

// Usage prints the subcommand list.
func Usage(w io.Writer) {
	subs := subcommands()
	names := make([]string, 0, len(subs))
	for name := range subs {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "usage: storerate [command]")
	fmt.Fprintln(w, "Without a command an interactive session starts.")
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(tw, "  %s\t%s\n", subs[name].usage, subs[name].about)
	}
	_ = tw.Flush()
}

// Exec runs one subcommand against the stored session and shuts the
// application down.
func (a *App) Exec(ctx context.Context, args []string) error {
	defer func() { _ = a.Shutdown() }()

	if len(args) == 0 {
		return fmt.Errorf("%w: none given", ErrUnknownCommand)
	}
	sub, ok := subcommands()[args[0]]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownCommand, args[0])
	}

	// status reports on session storage itself, so it must not depend on it.
	if args[0] != "status" {
		if _, err := a.sessions.Init(ctx); err != nil {
			return fmt.Errorf("restore session: %w", err)
		}
	}
	return sub.run(a, ctx, args[1:])
}

func (a *App) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

func (a *App) requireRole(name string, role domain.Role) (*domain.Session, error) {
	s, ok := a.sessions.Current()
	if !ok {
		return nil, ErrNotLoggedIn
	}
	if s.Role != role {
		return nil, fmt.Errorf("%s: %w %s, needs %s", name, ErrWrongRole, s.Role, role)
	}
	return s, nil
}

func (a *App) cmdLogin(ctx context.Context, args []string) error {
	fs := a.flags("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	if *email == "" {
		if *email, err = a.prompter.Line(form.LabelEmail, ""); err != nil {
			return err
		}
	}
	if *password == "" {
		if *password, err = a.prompter.Secret(form.LabelLoginPassword); err != nil {
			return err
		}
	}

	s, err := a.sessions.Login(ctx, strings.TrimSpace(*email), *password)
	if err != nil {
		return failed(err, MsgLoginFailed)
	}
	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", s.Name, s.Role)
	return nil
}

func (a *App) cmdLogout(ctx context.Context, _ []string) error {
	if err := a.sessions.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, MsgLoggedOut)
	return nil
}

func (a *App) cmdWhoami(context.Context, []string) error {
	s, ok := a.sessions.Current()
	if !ok {
		return ErrNotLoggedIn
	}
	fmt.Fprintf(a.out, "%s <%s> %s\n", s.Name, s.Email, s.Role)
	return nil
}

// cmdStores needs no session: the store list is public.
func (a *App) cmdStores(ctx context.Context, args []string) error {
	fs := a.flags("stores")
	term := fs.String("search", "", "filter by name or address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	v := view.NewUserView(a.client, a.notifier, a.logger)
	if err := v.Search(ctx, *term); err != nil {
		return failed(err, MsgSearchErr)
	}
	v.Render(a.out)
	return nil
}

func (a *App) cmdRate(ctx context.Context, args []string) error {
	if _, err := a.requireRole("rate", domain.RoleUser); err != nil {
		return err
	}
	if len(args) != 2 {
		return fmt.Errorf("usage: %s", subcommands()["rate"].usage)
	}
	value, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("rating %q is not a number", args[1])
	}

	if err := a.client.RateStore(ctx, domain.ID(args[0]), value); err != nil {
		return failed(err, view.MsgRateErr)
	}
	fmt.Fprintln(a.out, view.MsgRated)
	return nil
}

func (a *App) cmdOwnerStores(ctx context.Context, _ []string) error {
	if _, err := a.requireRole("owner-stores", domain.RoleOwner); err != nil {
		return err
	}

	v := view.NewOwnerView(a.client, a.logger)
	if err := v.Load(ctx); err != nil {
		return failed(err, MsgLoadErr)
	}
	v.Render(a.out)
	return nil
}

func (a *App) cmdAdminDashboard(ctx context.Context, _ []string) error {
	if _, err := a.requireRole("admin-dashboard", domain.RoleAdmin); err != nil {
		return err
	}

	stats, err := a.client.Dashboard(ctx)
	if err != nil {
		return failed(err, MsgLoadErr)
	}
	view.RenderDashboardStats(a.out, stats)
	return nil
}

func (a *App) cmdAdminUsers(ctx context.Context, args []string) error {
	if _, err := a.requireRole("admin-users", domain.RoleAdmin); err != nil {
		return err
	}
	fs := a.flags("admin-users")
	role := fs.String("role", "", "only list users with this role")
	if err := fs.Parse(args); err != nil {
		return err
	}

	filter := domain.UserFilter{Role: domain.Role(strings.ToUpper(strings.TrimSpace(*role)))}
	if filter.Role != "" && !domain.IsValidRole(string(filter.Role)) {
		return fmt.Errorf("invalid role %q", *role)
	}

	users, err := a.client.ListUsers(ctx, filter)
	if err != nil {
		return failed(err, MsgLoadErr)
	}
	view.RenderUserList(a.out, users)
	return nil
}

func (a *App) cmdAdminStores(ctx context.Context, _ []string) error {
	if _, err := a.requireRole("admin-stores", domain.RoleAdmin); err != nil {
		return err
	}

	stores, err := a.client.ListAdminStores(ctx)
	if err != nil {
		return failed(err, MsgLoadErr)
	}
	view.RenderStoreList(a.out, stores)
	return nil
}

func (a *App) cmdStatus(ctx context.Context, args []string) error {
	fs := a.flags("status")
	asJSON := fs.Bool("json", false, "print the report as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	report := a.health.Check(ctx)
	write := writeReport
	if *asJSON {
		write = writeReportJSON
	}
	if err := write(a.out, report); err != nil {
		return err
	}
	if report.Status != health.StatusUp {
		return ErrUnhealthy
	}
	return nil
}
