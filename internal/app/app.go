package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"crimewatch/internal/retention"
	"crimewatch/pkg/auth"
	"crimewatch/pkg/bot"
	"crimewatch/pkg/chat"
	"crimewatch/pkg/config"
	"crimewatch/pkg/store"
)

// App encapsulates the server components and lifecycle.
type App struct {
	eff       config.EffectiveConfigResult
	version   string
	commit    string
	buildDate string

	identity  *bootIdentity
	srv       *http.Server
	stopPrune context.CancelFunc
}

type bootIdentity struct {
	svc       *auth.IdentityService
	responder *bot.Responder
	typist    *chat.Typist
}

// New initializes resources that do not require a running context: config
// validation, runtime keys and the store. Call Run to start the HTTP
// server and block until shutdown.
func New(eff config.EffectiveConfigResult, version, commit, buildDate string) (*App, error) {
	_ = godotenv.Load(".env")

	if err := validateConfig(eff); err != nil {
		return nil, err
	}

	rc := &config.RuntimeConfig{
		SessionSecret: eff.Config.Security.Session.Secret,
		SessionTTL:    eff.Config.Security.Session.TTL.Duration(),
		AdminKeys:     map[string]struct{}{},
	}
	for _, k := range eff.Config.Security.AdminKeys {
		rc.AdminKeys[k] = struct{}{}
	}
	config.SetRuntime(rc)

	if err := store.Open(eff.DBPath); err != nil {
		return nil, fmt.Errorf("failed to open pebble at %s: %w", eff.DBPath, err)
	}

	a := &App{
		eff:       eff,
		version:   version,
		commit:    commit,
		buildDate: buildDate,
		identity: &bootIdentity{
			svc:       auth.NewIdentityService(eff.Config.Security.MinPasswordLen),
			responder: bot.NewResponder(),
			typist:    chat.NewTypist(eff.Config.Chat.BotDelay.Duration()),
		},
	}
	return a, nil
}

// Run starts the retention scheduler and the HTTP server, and blocks until
// ctx is canceled or a fatal server error occurs.
func (a *App) Run(ctx context.Context) error {
	stop, err := retention.Start(ctx, a.eff.Config.Retention)
	if err != nil {
		return err
	}
	a.stopPrune = stop

	a.printBanner()

	errCh := a.startHTTP(ctx)

	select {
	case <-ctx.Done():
		a.shutdown()
		return nil
	case err := <-errCh:
		a.shutdown()
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (a *App) shutdown() {
	if a.stopPrune != nil {
		a.stopPrune()
	}
	a.identity.typist.Close()
	store.Events().Close()
	if a.srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.srv.Shutdown(ctx)
	}
	_ = store.Close()
}
