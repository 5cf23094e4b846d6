package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Sahithee-Vadali/Roxiler-Systems-client/internal/api"
	"github.com/Sahithee-Vadali/Roxiler-Systems-client/internal/domain"
	"github.com/Sahithee-Vadali/Roxiler-Systems-client/internal/form"
	"github.com/Sahithee-Vadali/Roxiler-Systems-client/internal/session"
	"github.com/Sahithee-Vadali/Roxiler-Systems-client/internal/view"
	"github.com/Sahithee-Vadali/Roxiler-Systems-client/pkg/health"
	"github.com/Sahithee-Vadali/Roxiler-Systems-client/pkg/logger"
)

// Shell notification texts.
const (
	MsgLoginFailed = "Login failed"
	MsgLoadErr     = "Error loading data"
	MsgSearchErr   = "Error loading stores"
	MsgLoggedOut   = "Logged out"
	MsgCancelled   = "Cancelled"
)

var (
	errQuit  = errors.New("quit")
	errUsage = errors.New("usage")
)

type command struct {
	name  string
	args  string
	about string
	run   func(sh *shell, ctx context.Context, args []string) error
}

// shell is the interactive loop. It owns the current screen and the
// lifetime context of that screen, which is canceled whenever the screen
// is replaced.
type shell struct {
	sessions *session.Manager
	router   *view.Router
	prompter *form.Prompter
	notifier view.Notifier
	health   *health.Registry
	out      io.Writer
	logger   *slog.Logger

	current view.View
	viewCtx context.Context
	cancel  context.CancelFunc
}

func newShell(a *App) *shell {
	return &shell{
		sessions: a.sessions,
		router:   a.router,
		prompter: a.prompter,
		notifier: a.notifier,
		health:   a.health,
		out:      a.out,
		logger:   a.logger,
	}
}

func (sh *shell) run(ctx context.Context) error {
	defer func() {
		if sh.cancel != nil {
			sh.cancel()
		}
	}()

	sh.switchView(ctx)
	for ctx.Err() == nil {
		var err error
		if sh.current.Kind() == view.KindLogin {
			err = sh.login(ctx)
		} else {
			err = sh.dispatch(ctx)
		}

		switch {
		case errors.Is(err, errQuit), errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}
	}
	return nil
}

// switchView replaces the screen with the one for the current session.
func (sh *shell) switchView(ctx context.Context) {
	if sh.cancel != nil {
		sh.cancel()
	}

	s, _ := sh.sessions.Current()
	sh.current = sh.router.View(s)
	sh.viewCtx, sh.cancel = context.WithCancel(ctx)
	if s != nil {
		sh.viewCtx = logger.WithUserID(sh.viewCtx, s.UserID.String())
	}
	log := logger.WithContext(sh.viewCtx, sh.logger).With(slog.String("view", sh.current.Kind().String()))
	sh.viewCtx = logger.NewContext(sh.viewCtx, log)

	log.Debug("view switched")
	sh.refresh()
}

func (sh *shell) refresh() {
	if err := sh.current.Load(sh.viewCtx); err != nil {
		sh.notify(view.SeverityError, api.Message(err, MsgLoadErr))
	}
	sh.render()
}

func (sh *shell) render() {
	if s, ok := sh.sessions.Current(); ok {
		view.Header(sh.out, s)
	}
	sh.current.Render(sh.out)
	fmt.Fprintln(sh.out)
}

func (sh *shell) notify(sev view.Severity, msg string) {
	sh.notifier.Notify(view.Notification{Severity: sev, Message: msg})
}

// login reads credentials until a login succeeds. Cancelling either
// prompt leaves the program.
func (sh *shell) login(ctx context.Context) error {
	email, err := sh.prompter.Line(form.LabelEmail, "")
	if err != nil {
		return quitOnCancel(err)
	}
	password, err := sh.prompter.Secret(form.LabelLoginPassword)
	if err != nil {
		return quitOnCancel(err)
	}

	if _, err := sh.sessions.Login(sh.viewCtx, strings.TrimSpace(email), password); err != nil {
		sh.logger.Debug("login failed", slog.String("error", err.Error()))
		if lv, ok := sh.current.(*view.LoginView); ok {
			lv.SetAlert(api.Message(err, MsgLoginFailed))
		}
		sh.render()
		return nil
	}

	sh.switchView(ctx)
	return nil
}

func quitOnCancel(err error) error {
	if errors.Is(err, form.ErrCancelled) {
		return errQuit
	}
	return err
}

func (sh *shell) dispatch(ctx context.Context) error {
	line, err := sh.prompter.ReadCommand(sh.current.Kind().String() + "> ")
	if err != nil {
		return err
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	for _, c := range sh.commands() {
		if c.name != name {
			continue
		}
		err := c.run(sh, ctx, args)
		switch {
		case errors.Is(err, errUsage):
			sh.notify(view.SeverityError, strings.TrimSpace("usage: "+c.name+" "+c.args))
			return nil
		case errors.Is(err, form.ErrCancelled):
			sh.notify(view.SeverityInfo, MsgCancelled)
			return nil
		default:
			return err
		}
	}

	sh.notify(view.SeverityError, fmt.Sprintf("unknown command %q, type help for a list", name))
	return nil
}

// commands lists what the current screen accepts.
func (sh *shell) commands() []command {
	cmds := []command{
		{"help", "", "list commands", (*shell).help},
		{"refresh", "", "reload the screen", (*shell).reload},
		{"whoami", "", "show the signed-in account", (*shell).whoami},
		{"metrics", "", "print client request metrics", (*shell).metrics},
		{"status", "", "check the API and session storage", (*shell).status},
		{"logout", "", "sign out", (*shell).logout},
		{"quit", "", "leave the program", (*shell).quit},
	}

	switch sh.current.Kind() {
	case view.KindAdmin:
		cmds = append(cmds,
			command{"dashboard", "", "show totals and top stores", (*shell).dashboard},
			command{"users", "", "list users", (*shell).users},
			command{"stores", "", "list stores", (*shell).stores},
			command{"add-user", "", "create a user", (*shell).addUser},
			command{"edit-user", "<id>", "edit a user", (*shell).editUser},
			command{"delete-user", "<id>", "delete a user", (*shell).deleteUser},
			command{"add-store", "", "create a store", (*shell).addStore},
			command{"edit-store", "<id>", "edit a store", (*shell).editStore},
			command{"delete-store", "<id>", "delete a store and its ratings", (*shell).deleteStore},
		)
	case view.KindUser:
		cmds = append(cmds,
			command{"search", "[term]", "search stores by name or address", (*shell).search},
			command{"rate", fmt.Sprintf("<store id> <%d-%d>", domain.MinRating, domain.MaxRating), "rate a store", (*shell).rate},
		)
	}
	return cmds
}

func (sh *shell) help(context.Context, []string) error {
	tw := tabwriter.NewWriter(sh.out, 0, 0, 2, ' ', 0)
	for _, c := range sh.commands() {
		fmt.Fprintf(tw, "  %s %s\t%s\n", c.name, c.args, c.about)
	}
	return tw.Flush()
}

func (sh *shell) reload(context.Context, []string) error {
	sh.refresh()
	return nil
}

func (sh *shell) whoami(context.Context, []string) error {
	if s, ok := sh.sessions.Current(); ok {
		view.Header(sh.out, s)
		fmt.Fprintf(sh.out, "  %s\n", s.Email)
	}
	return nil
}

func (sh *shell) metrics(context.Context, []string) error {
	if err := writeMetrics(sh.out, prometheus.DefaultGatherer); err != nil {
		sh.logger.Error("failed to write metrics", slog.String("error", err.Error()))
		sh.notify(view.SeverityError, "Error reading metrics")
	}
	return nil
}

func (sh *shell) status(ctx context.Context, _ []string) error {
	return writeReport(sh.out, sh.health.Check(ctx))
}

func (sh *shell) logout(ctx context.Context, _ []string) error {
	if err := sh.sessions.Logout(ctx); err != nil {
		sh.logger.Error("failed to clear stored session", slog.String("error", err.Error()))
	}
	sh.notify(view.SeverityInfo, MsgLoggedOut)
	sh.switchView(ctx)
	return nil
}

func (sh *shell) quit(context.Context, []string) error {
	return errQuit
}

// --- admin ---

func (sh *shell) admin() *view.AdminView {
	v, _ := sh.current.(*view.AdminView)
	return v
}

func (sh *shell) dashboard(context.Context, []string) error {
	sh.admin().RenderDashboard(sh.out)
	return nil
}

func (sh *shell) users(context.Context, []string) error {
	sh.admin().RenderUsers(sh.out)
	return nil
}

func (sh *shell) stores(context.Context, []string) error {
	sh.admin().RenderStores(sh.out)
	return nil
}

func (sh *shell) addUser(context.Context, []string) error {
	f := form.NewUserForm()
	if err := sh.prompter.FillUser(f); err != nil {
		return err
	}
	if sh.admin().CreateUser(sh.viewCtx, f) == nil {
		sh.admin().RenderUsers(sh.out)
	}
	return nil
}

func (sh *shell) editUser(_ context.Context, args []string) error {
	id, err := oneID(args)
	if err != nil {
		return err
	}
	u, ok := sh.admin().FindUser(id)
	if !ok {
		sh.notify(view.SeverityError, fmt.Sprintf("No user with id %s", id))
		return nil
	}

	f := form.EditUserForm(u)
	if err := sh.prompter.FillUser(f); err != nil {
		return err
	}
	if sh.admin().UpdateUser(sh.viewCtx, f) == nil {
		sh.admin().RenderUsers(sh.out)
	}
	return nil
}

func (sh *shell) deleteUser(_ context.Context, args []string) error {
	id, err := oneID(args)
	if err != nil {
		return err
	}
	err = sh.admin().DeleteUser(sh.viewCtx, id)
	switch {
	case errors.Is(err, view.ErrDeclined):
		return form.ErrCancelled
	case err == nil:
		sh.admin().RenderUsers(sh.out)
	}
	return nil
}

func (sh *shell) addStore(context.Context, []string) error {
	f := form.NewStoreForm()
	if err := sh.prompter.FillStore(f, sh.admin().Owners()); err != nil {
		return err
	}
	if sh.admin().CreateStore(sh.viewCtx, f) == nil {
		sh.admin().RenderStores(sh.out)
	}
	return nil
}

func (sh *shell) editStore(_ context.Context, args []string) error {
	id, err := oneID(args)
	if err != nil {
		return err
	}
	s, ok := sh.admin().FindStore(id)
	if !ok {
		sh.notify(view.SeverityError, fmt.Sprintf("No store with id %s", id))
		return nil
	}

	f := form.EditStoreForm(s)
	if err := sh.prompter.FillStore(f, sh.admin().Owners()); err != nil {
		return err
	}
	if sh.admin().UpdateStore(sh.viewCtx, f) == nil {
		sh.admin().RenderStores(sh.out)
	}
	return nil
}

func (sh *shell) deleteStore(_ context.Context, args []string) error {
	id, err := oneID(args)
	if err != nil {
		return err
	}
	err = sh.admin().DeleteStore(sh.viewCtx, id)
	switch {
	case errors.Is(err, view.ErrDeclined):
		return form.ErrCancelled
	case err == nil:
		sh.admin().RenderStores(sh.out)
	}
	return nil
}

func oneID(args []string) (domain.ID, error) {
	if len(args) != 1 {
		return "", errUsage
	}
	return domain.ID(args[0]), nil
}

// --- end-user ---

func (sh *shell) user() *view.UserView {
	v, _ := sh.current.(*view.UserView)
	return v
}

func (sh *shell) search(_ context.Context, args []string) error {
	term := strings.Join(args, " ")
	if err := sh.user().Search(sh.viewCtx, term); err != nil {
		sh.notify(view.SeverityError, api.Message(err, MsgSearchErr))
		return nil
	}
	sh.user().Render(sh.out)
	return nil
}

func (sh *shell) rate(_ context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	value, err := strconv.Atoi(args[1])
	if err != nil {
		return errUsage
	}
	if sh.user().Rate(sh.viewCtx, domain.ID(args[0]), value) == nil {
		sh.user().Render(sh.out)
	}
	return nil
}
