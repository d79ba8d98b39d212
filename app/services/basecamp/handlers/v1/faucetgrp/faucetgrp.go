// Package faucetgrp maintains the group of handlers for faucet access.
package faucetgrp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/basecamplabs/basecamp/business/core/faucet"
	"github.com/basecamplabs/basecamp/business/web/errs"
	"github.com/basecamplabs/basecamp/foundation/chain"
	"github.com/basecamplabs/basecamp/foundation/validate"
	"github.com/basecamplabs/basecamp/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of faucet endpoints.
type Handlers struct {
	Log    *zap.SugaredLogger
	Faucet *faucet.Core
}

type payoutRequest struct {
	Wallet string `json:"user_address" validate:"required"`
}

// Validate checks the payload against the declared rules.
func (r payoutRequest) Validate() error {
	return validate.Check(r)
}

// RequestPayout sends the fixed faucet amount to a new wallet.
func (h Handlers) RequestPayout(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var app payoutRequest
	if err := web.Decode(r, &app); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	dis, err := h.Faucet.Disburse(ctx, app.Wallet)
	if err != nil {
		return payoutError(err)
	}

	h.Log.Infow("faucet payout", "traceid", v.TraceID, "wallet", dis.Wallet, "tx", dis.TxHash.Hex())

	resp := struct {
		Success bool   `json:"success"`
		Msg     string `json:"msg"`
		TxHash  string `json:"tx_hash"`
		Amount  string `json:"amount"`
	}{
		Success: true,
		Msg:     "test tokens sent",
		TxHash:  dis.TxHash.Hex(),
		Amount:  dis.Amount.String(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Eligibility reports whether a wallet can still receive a payout.
func (h Handlers) Eligibility(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	wallet := web.Param(r, "wallet")

	eligible, err := h.Faucet.Eligible(ctx, wallet)
	if err != nil {
		switch {
		case errors.Is(err, faucet.ErrInvalidAddress):
			return errs.NewReason(err, http.StatusBadRequest, "InvalidAddress")
		case errors.Is(err, faucet.ErrLedgerRead):
			return errs.NewReason(err, http.StatusInternalServerError, "LedgerReadFailure")
		}
		return fmt.Errorf("checking eligibility: %w", err)
	}

	resp := struct {
		Wallet   string `json:"wallet"`
		Eligible bool   `json:"eligible"`
	}{
		Wallet:   wallet,
		Eligible: eligible,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Balances reports the ledger tracked payout balance and the on-chain
// token balance of the faucet account.
func (h Handlers) Balances(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	ledgerBal, onChain, err := h.Faucet.Balances(ctx)
	if err != nil {
		if errors.Is(err, faucet.ErrLedgerRead) {
			return errs.NewReason(err, http.StatusInternalServerError, "LedgerReadFailure")
		}
		return fmt.Errorf("reading balances: %w", err)
	}

	resp := struct {
		Ledger  int64  `json:"ledger_balance"`
		OnChain string `json:"onchain_balance"`
	}{
		Ledger:  ledgerBal,
		OnChain: onChain.String(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// =============================================================================

// payoutError maps the engine preconditions to trusted responses with the
// reason codes clients branch on.
func payoutError(err error) error {
	switch {
	case errors.Is(err, faucet.ErrInvalidAddress):
		return errs.NewReason(err, http.StatusBadRequest, "InvalidAddress")
	case errors.Is(err, faucet.ErrAlreadyClaimed):
		return errs.NewReason(err, http.StatusConflict, "AlreadyClaimed")
	case errors.Is(err, faucet.ErrLimitReached), errors.Is(err, faucet.ErrFaucetEmpty):
		return errs.NewReason(err, http.StatusForbidden, "FaucetEmptyOrLimitReached")
	case errors.Is(err, faucet.ErrLedgerRead):
		return errs.NewReason(err, http.StatusInternalServerError, "LedgerReadFailure")
	case errors.Is(err, faucet.ErrInsufficientFunds):
		return errs.NewReason(err, http.StatusServiceUnavailable, "FaucetInsufficientOnChainBalance")
	case errors.Is(err, chain.ErrTimeout):
		return errs.NewReason(err, http.StatusGatewayTimeout, "Timeout")
	}

	return fmt.Errorf("disbursing payout: %w", err)
}
