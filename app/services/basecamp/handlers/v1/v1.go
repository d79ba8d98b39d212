// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/basecamplabs/basecamp/app/services/basecamp/handlers/v1/boardgrp"
	"github.com/basecamplabs/basecamp/app/services/basecamp/handlers/v1/faucetgrp"
	"github.com/basecamplabs/basecamp/app/services/basecamp/handlers/v1/progressgrp"
	"github.com/basecamplabs/basecamp/app/services/basecamp/handlers/v1/verifygrp"
	"github.com/basecamplabs/basecamp/business/core/board"
	"github.com/basecamplabs/basecamp/business/core/faucet"
	"github.com/basecamplabs/basecamp/business/core/ledger"
	"github.com/basecamplabs/basecamp/business/core/progress"
	"github.com/basecamplabs/basecamp/business/core/verify"
	"github.com/basecamplabs/basecamp/foundation/events"
	"github.com/basecamplabs/basecamp/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
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

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	vgh := verifygrp.Handlers{
		Log:     cfg.Log,
		Mainnet: cfg.Mainnet,
		Testnet: cfg.Testnet,
	}
	app.Handle(http.MethodPost, version, "/mainnet/verify", vgh.VerifyMainnet)
	app.Handle(http.MethodPost, version, "/testnet/verify", vgh.VerifyTestnet)

	fgh := faucetgrp.Handlers{
		Log:    cfg.Log,
		Faucet: cfg.Faucet,
	}
	app.Handle(http.MethodPost, version, "/testnet/faucet", fgh.RequestPayout)
	app.Handle(http.MethodGet, version, "/faucet/eligibility/:wallet", fgh.Eligibility)
	app.Handle(http.MethodGet, version, "/faucet/balance", fgh.Balances)

	pgh := progressgrp.Handlers{
		Log:      cfg.Log,
		Ledger:   cfg.Ledger,
		Progress: cfg.Progress,
		Minter:   cfg.Minter,
	}
	app.Handle(http.MethodPost, version, "/users", pgh.Onboard)
	app.Handle(http.MethodGet, version, "/users/:wallet", pgh.Query)
	app.Handle(http.MethodDelete, version, "/users/:wallet", pgh.Delete)
	app.Handle(http.MethodPost, version, "/users/:wallet/badge", pgh.AwardBadge)
	app.Handle(http.MethodPost, version, "/progress/milestone", pgh.Milestone)
	app.Handle(http.MethodPost, version, "/progress/transfer", pgh.Transfer)

	bgh := boardgrp.Handlers{
		Log:   cfg.Log,
		Board: cfg.Board,
		Evts:  cfg.Evts,
	}
	app.Handle(http.MethodGet, version, "/messages", bgh.Query)
	app.Handle(http.MethodPost, version, "/messages", bgh.Post)
	app.Handle(http.MethodGet, version, "/events", bgh.Events)
}
