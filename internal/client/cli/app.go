package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/dmitrijs2005/briefly/internal/client/client"
	"github.com/dmitrijs2005/briefly/internal/client/config"
	"github.com/dmitrijs2005/briefly/internal/client/metrics"
	"github.com/dmitrijs2005/briefly/internal/client/repositories/session"
	"github.com/dmitrijs2005/briefly/internal/client/services"
	"github.com/dmitrijs2005/briefly/internal/filex"
	"github.com/dmitrijs2005/briefly/internal/logging"
)

// App wires configuration, local storage, the API client and the services
// behind the interactive client.
type App struct {
	config    *config.Config
	db        *sql.DB
	api       *client.HTTPClient
	session   *services.SessionStore
	summaries *services.SummarySync
	guard     *RouteGuard
	metrics   *metrics.Metrics
	log       logging.Logger

	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens the session database under c.DatabasePath and builds the
// client stack. Diagnostics go to stderr at c.LogLevel.
func NewApp(ctx context.Context, c *config.Config, in io.Reader, out io.Writer) (*App, error) {
	log, err := logging.New(os.Stderr, c.LogLevel)
	if err != nil {
		return nil, err
	}

	dbPath, err := filex.EnsureParentDir(c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error preparing database directory: %w", err)
	}

	db, err := client.InitDatabase(ctx, dbPath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	m := metrics.New()
	api, err := client.NewHTTPClient(client.Config{
		BaseURL:  c.ServerURL,
		Timeout:  c.RequestTimeout,
		Observer: m,
		Logger:   log,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a := newApp(c, api, session.NewSQLiteStorage(db), m, log, in, out)
	a.db = db
	return a, nil
}

func newApp(c *config.Config, api *client.HTTPClient, storage session.Storage, m *metrics.Metrics,
	log logging.Logger, in io.Reader, out io.Writer) *App {

	store := services.NewSessionStore(api, storage, log)
	api.SetTokenSource(store)

	a := &App{
		config:    c,
		api:       api,
		session:   store,
		summaries: services.NewSummarySync(api, store, log),
		metrics:   m,
		log:       log,
		reader:    bufio.NewReader(in),
		out:       out,
	}
	a.guard = NewRouteGuard(store, a.onRouteChange)
	return a
}

// Run restores the persisted session and runs the REPL until the user
// exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	fmt.Fprintln(a.out, "Welcome to Briefly (type 'help' for commands)")

	state := a.verify(ctx)
	if state == services.StateAuthenticated {
		user, _ := a.session.User()
		fmt.Fprintf(a.out, "Welcome back, %s!\n", user.DisplayName())
		report(a.List(ctx))
	}

	runREPL(ctx, a, a.status, a.reader)
	return nil
}

// Close releases the API client and the database.
func (a *App) Close() error {
	a.guard.Close()
	err := a.api.Close()
	if a.db != nil {
		err = errors.Join(err, a.db.Close())
	}
	return err
}

func (a *App) verify(ctx context.Context) services.State {
	var state services.State
	_ = a.withLoading("Checking session", func() error {
		state = a.session.Verify(ctx)
		return nil
	})
	return state
}

func (a *App) decision() Decision {
	return a.guard.Decision()
}

func (a *App) status() string {
	user, ok := a.session.User()
	if !ok {
		return ""
	}
	return fmt.Sprintf(" (%s)", user.Email)
}

func (a *App) onRouteChange(from, to Decision) {
	a.log.Debug(context.Background(), "route changed", "from", from, "to", to)
	if from == DecisionRender && to == DecisionLogin {
		a.summaries.Reset()
		fmt.Fprintln(a.out, "You are logged out. Type 'login' to sign in again.")
	}
}

// withLoading shows msg while fn runs and always clears it afterwards.
func (a *App) withLoading(msg string, fn func() error) error {
	fmt.Fprintf(a.out, "%s...", msg)
	defer fmt.Fprint(a.out, "\r\033[K")
	return fn()
}

// check expires the session when the backend rejected the token (401) or
// there was no usable token at call time.
func (a *App) check(ctx context.Context, err error) error {
	var apiErr *client.APIError
	if (errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized) ||
		errors.Is(err, client.ErrUnauthenticated) {
		a.session.Expire(ctx, err.Error())
	}
	return err
}
