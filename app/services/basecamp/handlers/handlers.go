// Package handlers manages the different versions of the API.
package handlers

import (
	"context"
	"expvar"
	"net/http"
	"net/http/pprof"
	"os"

	"github.com/basecamplabs/basecamp/app/services/basecamp/handlers/debug/checkgrp"
	v1 "github.com/basecamplabs/basecamp/app/services/basecamp/handlers/v1"
	"github.com/basecamplabs/basecamp/app/services/basecamp/handlers/v1/progressgrp"
	"github.com/basecamplabs/basecamp/business/core/board"
	"github.com/basecamplabs/basecamp/business/core/faucet"
	"github.com/basecamplabs/basecamp/business/core/ledger"
	"github.com/basecamplabs/basecamp/business/core/progress"
	"github.com/basecamplabs/basecamp/business/core/verify"
	"github.com/basecamplabs/basecamp/business/web/mid"
	"github.com/basecamplabs/basecamp/foundation/events"
	"github.com/basecamplabs/basecamp/foundation/web"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MuxConfig contains all the mandatory systems required by handlers.
type MuxConfig struct {
	Shutdown chan os.Signal
	Log      *zap.SugaredLogger
	Mainnet  *verify.Core
	Testnet  *verify.Core
	Faucet   *faucet.Core
	Ledger   ledger.Core
	Progress *progress.Core
	Board    board.Core
	Minter   progressgrp.BadgeMinter
	Evts     *events.Feed
}

// PublicMux constructs a http.Handler with all application routes defined.
func PublicMux(cfg MuxConfig) http.Handler {

	// Construct the web.App which holds all routes as well as common Middleware.
	app := web.NewApp(
		cfg.Shutdown,
		mid.Logger(cfg.Log),
		mid.Errors(cfg.Log),
		mid.Metrics(),
		mid.Cors("*"),
		mid.Panics(),
	)

	// Accept CORS 'OPTIONS' preflight requests if config has been provided.
	// Don't forget to apply the CORS middleware to the routes that need it.
	h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return nil
	}
	app.Handle(http.MethodOptions, "", "/*", h, mid.Cors("*"))

	// Load the v1 routes.
	v1.PublicRoutes(app, v1.Config{
		Log:      cfg.Log,
		Mainnet:  cfg.Mainnet,
		Testnet:  cfg.Testnet,
		Faucet:   cfg.Faucet,
		Ledger:   cfg.Ledger,
		Progress: cfg.Progress,
		Board:    cfg.Board,
		Minter:   cfg.Minter,
		Evts:     cfg.Evts,
	})

	return app
}

// DebugStandardLibraryMux registers all the debug routes from the standard library
// into a new mux bypassing the use of the DefaultServerMux. Using the
// DefaultServerMux would be a security risk since a dependency could inject a
// handler into our service without us knowing it.
func DebugStandardLibraryMux() *http.ServeMux {
	mux := http.NewServeMux()

	// Register all the standard library debug endpoints.
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/debug/vars", expvar.Handler())

	return mux
}

// DebugMux registers all the debug standard library routes and then custom
// debug application routes for the service. This bypassing the use of the
// DefaultServerMux. Using the DefaultServerMux would be a security risk since
// a dependency could inject a handler into our service without us knowing it.
func DebugMux(build string, log *zap.SugaredLogger, db *gorm.DB) http.Handler {
	mux := DebugStandardLibraryMux()

	// Register debug check endpoints.
	cgh := checkgrp.Handlers{
		Build: build,
		Log:   log,
		DB:    db,
	}
	mux.HandleFunc("/debug/readiness", cgh.Readiness)
	mux.HandleFunc("/debug/liveness", cgh.Liveness)

	return mux
}
