// Package progressgrp maintains the group of handlers for user and
// curriculum progress access.
package progressgrp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/basecamplabs/basecamp/business/core/ledger"
	"github.com/basecamplabs/basecamp/business/core/progress"
	"github.com/basecamplabs/basecamp/business/web/errs"
	"github.com/basecamplabs/basecamp/foundation/chain"
	"github.com/basecamplabs/basecamp/foundation/web"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// BadgeMinter mints the completion badge to a wallet on the mainnet
// network.
type BadgeMinter interface {
	MintBadge(ctx context.Context, to common.Address) (common.Hash, error)
}

// Handlers manages the set of user and progress endpoints.
type Handlers struct {
	Log      *zap.SugaredLogger
	Ledger   ledger.Core
	Progress *progress.Core
	Minter   BadgeMinter
}

// Onboard creates the ledger records for a new wallet.
func (h Handlers) Onboard(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var app newUser
	if err := web.Decode(r, &app); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	if !common.IsHexAddress(app.Wallet) {
		err := fmt.Errorf("wallet [%s] is not a valid address", app.Wallet)
		return errs.NewReason(err, http.StatusBadRequest, "InvalidAddress")
	}

	if err := h.Ledger.Onboard(ctx, app.Wallet); err != nil {
		if errors.Is(err, ledger.ErrExists) {
			return errs.NewTrusted(err, http.StatusConflict)
		}
		return fmt.Errorf("onboarding wallet[%s]: %w", app.Wallet, err)
	}

	resp := struct {
		Wallet string `json:"wallet"`
	}{
		Wallet: ledger.Normalize(app.Wallet),
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// Query returns the counters, completion flags and raw milestones for a
// wallet.
func (h Handlers) Query(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	wallet := web.Param(r, "wallet")

	user, err := h.Ledger.User(ctx, wallet)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return errs.NewTrusted(err, http.StatusNotFound)
		}
		return fmt.Errorf("querying wallet[%s]: %w", wallet, err)
	}

	prg, err := h.Ledger.Progress(ctx, wallet)
	if err != nil {
		return fmt.Errorf("querying progress[%s]: %w", wallet, err)
	}

	resp := userResponse{
		User:     user,
		Progress: prg,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Delete removes the ledger records for a wallet.
func (h Handlers) Delete(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	wallet := web.Param(r, "wallet")

	if err := h.Ledger.Remove(ctx, wallet); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return errs.NewTrusted(err, http.StatusNotFound)
		}
		return fmt.Errorf("deleting wallet[%s]: %w", wallet, err)
	}

	return web.Respond(ctx, w, nil, http.StatusNoContent)
}

// Milestone records a single milestone flag and re-derives the completion
// state for the wallet.
func (h Handlers) Milestone(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var app milestoneReport
	if err := web.Decode(r, &app); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	m, err := ledger.ParseMilestone(app.Milestone)
	if err != nil {
		return errs.NewReason(err, http.StatusBadRequest, "UnknownMilestone")
	}

	if err := h.Progress.ReportMilestone(ctx, app.Wallet, m, app.Value); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return errs.NewTrusted(err, http.StatusNotFound)
		}
		return fmt.Errorf("reporting milestone[%s]: %w", app.Milestone, err)
	}

	user, err := h.Ledger.User(ctx, app.Wallet)
	if err != nil {
		return fmt.Errorf("reading completion: %w", err)
	}

	return web.Respond(ctx, w, user, http.StatusOK)
}

// Transfer books one confirmed practice transfer for the wallet.
func (h Handlers) Transfer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var app transferReport
	if err := web.Decode(r, &app); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	if err := h.Progress.RecordTransfer(ctx, app.Wallet, progress.Direction(app.Direction)); err != nil {
		switch {
		case errors.Is(err, progress.ErrUnknownDirection):
			return errs.NewTrusted(err, http.StatusBadRequest)
		case errors.Is(err, ledger.ErrNotFound):
			return errs.NewTrusted(err, http.StatusNotFound)
		}
		return fmt.Errorf("recording transfer: %w", err)
	}

	user, err := h.Ledger.User(ctx, app.Wallet)
	if err != nil {
		return fmt.Errorf("reading counters: %w", err)
	}

	return web.Respond(ctx, w, user, http.StatusOK)
}

// AwardBadge mints the completion badge to a wallet that has finished the
// whole curriculum.
func (h Handlers) AwardBadge(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	wallet := web.Param(r, "wallet")
	if !common.IsHexAddress(wallet) {
		err := fmt.Errorf("wallet [%s] is not a valid address", wallet)
		return errs.NewReason(err, http.StatusBadRequest, "InvalidAddress")
	}

	user, err := h.Ledger.User(ctx, wallet)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return errs.NewTrusted(err, http.StatusNotFound)
		}
		return fmt.Errorf("querying wallet[%s]: %w", wallet, err)
	}

	if !user.CompletedAll {
		err := fmt.Errorf("wallet [%s] has not completed the curriculum", wallet)
		return errs.NewReason(err, http.StatusForbidden, "CurriculumIncomplete")
	}

	tx, err := h.Minter.MintBadge(ctx, common.HexToAddress(wallet))
	if err != nil {
		if errors.Is(err, chain.ErrTimeout) {
			return errs.NewReason(err, http.StatusGatewayTimeout, "Timeout")
		}
		return fmt.Errorf("minting badge for wallet[%s]: %w", wallet, err)
	}

	h.Log.Infow("badge minted", "traceid", v.TraceID, "wallet", wallet, "tx", tx.Hex())

	resp := struct {
		Success bool   `json:"success"`
		TxHash  string `json:"tx_hash"`
	}{
		Success: true,
		TxHash:  tx.Hex(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
