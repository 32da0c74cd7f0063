// Package api assembles the versioned HTTP surface.
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"crimewatch/pkg/api/handlers"
	"crimewatch/pkg/auth"
	"crimewatch/pkg/bot"
	"crimewatch/pkg/chat"
)

// Options carries the collaborators and limits the endpoints need.
type Options struct {
	Identity        *auth.IdentityService
	Responder       *bot.Responder
	Typist          *chat.Typist
	HistoryLimit    int
	FeedLimit       int
	MaxMessageBytes int64
}

// NewHandler builds the /v1 API router.
func NewHandler(opts Options) http.Handler {
	r := mux.NewRouter()
	v1 := r.PathPrefix("/v1").Subrouter()
	handlers.RegisterChat(v1, handlers.ChatDeps{
		Responder:       opts.Responder,
		Typist:          opts.Typist,
		HistoryLimit:    opts.HistoryLimit,
		MaxMessageBytes: opts.MaxMessageBytes,
	})
	handlers.RegisterReports(v1, handlers.ReportDeps{FeedLimit: opts.FeedLimit})
	handlers.RegisterStations(v1)
	handlers.RegisterAccount(v1, handlers.AccountDeps{Identity: opts.Identity})
	handlers.RegisterViews(v1)
	return r
}
