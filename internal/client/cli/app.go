package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/mealkeeper/internal/client/client"
	"github.com/dmitrijs2005/mealkeeper/internal/client/config"
	"github.com/dmitrijs2005/mealkeeper/internal/client/metrics"
	otelexport "github.com/dmitrijs2005/mealkeeper/internal/client/metrics/export/otel"
	"github.com/dmitrijs2005/mealkeeper/internal/client/repositories/credentials"
	"github.com/dmitrijs2005/mealkeeper/internal/client/services"
	"github.com/dmitrijs2005/mealkeeper/internal/logging"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

type App struct {
	config   *config.Config
	log      logging.Logger
	store    credentials.Store
	session  *services.SessionManager
	meals    *services.MealService
	counters *metrics.Counters

	reader   *sdkmetric.ManualReader
	provider *sdkmetric.MeterProvider
	exporter *otelexport.Exporter

	in  *bufio.Reader
	out io.Writer
}

// NewApp opens the credential store and builds the session stack from c.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.New(c.LogLevel, os.Stderr)

	store, err := credentials.Open(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("open credential store: %w", err)
	}

	api := client.New(c.APIBaseURL,
		client.WithTimeout(c.RequestTimeout),
		client.WithLogger(log),
	)

	a, err := build(c, log, store, api, bufio.NewReader(os.Stdin), os.Stdout)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return a, nil
}

func build(c *config.Config, log logging.Logger, store credentials.Store, api *client.APIClient, in *bufio.Reader, out io.Writer) (*App, error) {
	a := &App{
		config:   c,
		log:      log,
		store:    store,
		counters: metrics.New(),
		in:       in,
		out:      out,
	}

	a.session = services.NewSessionManager(api, store,
		services.WithNavigator(a.navigator()),
		services.WithLogger(log),
		services.WithMetrics(a.counters),
		services.WithRefreshTimeout(c.RefreshTimeout),
		services.WithRefreshWaitTimeout(c.RefreshWaitTimeout),
	)
	a.meals = services.NewMealService(api, a.session)

	if err := a.initMetrics(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) navigator() services.Navigator {
	return services.NavigatorFuncs{
		Login: func() { fmt.Fprintln(a.out, "You are logged out. Type 'login' to sign in.") },
		Home:  func() { fmt.Fprintln(a.out, "Type 'meals' to see your meals.") },
	}
}

// Run restores the stored session and serves commands until the user exits
// or input ends.
func (a *App) Run(ctx context.Context) error {
	defer a.Close(ctx)

	fmt.Fprintln(a.out, "Welcome to mealkeeper CLI (type 'help' for commands)")

	if err := a.session.CheckStatus(ctx); err != nil {
		a.log.Warn(ctx, "restore session", "error", err)
	}
	a.report(nil)

	runREPL(ctx, a, a.getStatus, a.in)
	return nil
}

// Close releases the metrics pipeline and the credential store.
func (a *App) Close(ctx context.Context) {
	if err := a.exporter.Close(); err != nil {
		a.log.Warn(ctx, "unregister metrics", "error", err)
	}
	if a.provider != nil {
		if err := a.provider.Shutdown(ctx); err != nil {
			a.log.Warn(ctx, "shutdown meter provider", "error", err)
		}
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn(ctx, "close credential store", "error", err)
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.Snapshot().Status == services.StatusAuthenticated
}

func (a *App) getStatus() string {
	snap := a.session.Snapshot()
	if snap.Status != services.StatusAuthenticated || snap.Profile == nil {
		return "(logged out)"
	}
	if snap.IsRefreshing {
		return fmt.Sprintf("(%s, refreshing)", snap.Profile.Username)
	}
	return fmt.Sprintf("(%s)", snap.Profile.Username)
}

// report prints the session's pending error message if there is one,
// otherwise err. The pending message is cleared once shown.
func (a *App) report(err error) {
	if msg := a.session.Snapshot().LastError; msg != "" {
		fmt.Fprintln(a.out, msg)
		a.session.ClearError()
		return
	}
	if err != nil {
		fmt.Fprintln(a.out, "Error:", errorText(err))
	}
}

func errorText(err error) string {
	switch {
	case errors.Is(err, services.ErrNotAuthenticated):
		return "not logged in"
	case errors.Is(err, services.ErrRefreshWaitTimeout):
		return "session refresh is taking too long, try again"
	case errors.Is(err, client.ErrUnavailable):
		return "server is unreachable"
	}
	return client.Message(err)
}
