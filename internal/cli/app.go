package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/jrsteele09/go-college-portal/apiclient"
	"github.com/jrsteele09/go-college-portal/auth"
	"github.com/jrsteele09/go-college-portal/internal/config"
	"github.com/jrsteele09/go-college-portal/navigation"
	"github.com/jrsteele09/go-college-portal/portal"
	"github.com/jrsteele09/go-college-portal/sessions"
	"github.com/jrsteele09/go-college-portal/sessions/filestore"
	"github.com/jrsteele09/go-college-portal/sessions/redisstore"
	"github.com/pkg/errors"
)

// settings are the global flags resolved against the environment
type settings struct {
	apiURL      string
	sessionFile string
	json        bool
}

// app is everything a command needs: the session, the resource API and
// where to write
type app struct {
	session *auth.Service
	api     *portal.API
	out     io.Writer
	json    bool
	close   func() error
}

func newApp(ctx context.Context, s settings, out, guidance io.Writer) (*app, error) {
	store, closeStore, err := openStore(ctx, cfg, s.sessionFile)
	if err != nil {
		return nil, err
	}
	session, err := auth.New(ctx, s.apiURL, store,
		auth.WithNavigator(guide{w: guidance}),
		auth.WithClientOptions(
			apiclient.WithTimeout(cfg.GetRequestTimeout()),
			apiclient.WithUserAgent(cfg.GetUserAgent()),
		),
	)
	if err != nil {
		_ = closeStore()
		return nil, err
	}
	return &app{
		session: session,
		api:     portal.New(session.Client()),
		out:     out,
		json:    s.json,
		close:   closeStore,
	}, nil
}

// Close waits for background refreshes and releases the store
func (a *app) Close() error {
	a.session.WaitForRefresh()
	return a.close()
}

// openStore picks the session store: an explicit file wins, then the
// configured backend
func openStore(ctx context.Context, c config.SessionConfig, file string) (sessions.Store, func() error, error) {
	noop := func() error { return nil }
	if file == "" && c.GetSessionBackend() == config.SessionBackendRedis {
		store, err := redisstore.Open(ctx, redisstore.Config{
			Addr:     c.GetRedisAddr(),
			Password: c.GetRedisPassword(),
			DB:       c.GetRedisDB(),
			Profile:  c.GetSessionProfile(),
		})
		if err != nil {
			return nil, noop, errors.Wrap(err, "[openStore] redis session store")
		}
		return store, store.Close, nil
	}
	if file == "" {
		file = c.GetSessionFile()
	}
	store, err := filestore.Open(file)
	if err != nil {
		return nil, noop, errors.Wrap(err, "[openStore] session file")
	}
	return store, noop, nil
}

// guide turns navigation into a hint for the user
type guide struct {
	w io.Writer
}

var _ navigation.Navigator = guide{}

func (g guide) Navigate(to navigation.Destination) {
	fmt.Fprintln(g.w, hint(to))
}

func hint(to navigation.Destination) string {
	switch to {
	case navigation.Login:
		return "Please log in: portal login"
	case navigation.Admin:
		return "Admin dashboard: portal dashboard"
	case navigation.Faculty:
		return "Faculty dashboard: portal dashboard"
	case navigation.Student:
		return "Student dashboard: portal dashboard"
	}
	return "Home: portal courses"
}
