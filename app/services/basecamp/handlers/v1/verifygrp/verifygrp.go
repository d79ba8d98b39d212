// Package verifygrp maintains the group of handlers for transaction
// verification access.
package verifygrp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/basecamplabs/basecamp/business/core/verify"
	"github.com/basecamplabs/basecamp/business/web/errs"
	"github.com/basecamplabs/basecamp/foundation/chain"
	"github.com/basecamplabs/basecamp/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of verification endpoints.
type Handlers struct {
	Log     *zap.SugaredLogger
	Mainnet *verify.Core
	Testnet *verify.Core
}

// VerifyMainnet checks a claimed payment to the operator wallet on the
// mainnet network.
func (h Handlers) VerifyMainnet(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return h.handle(ctx, w, r, h.Mainnet, "mainnet")
}

// VerifyTestnet checks a claimed practice transfer on the testnet network.
func (h Handlers) VerifyTestnet(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return h.handle(ctx, w, r, h.Testnet, "testnet")
}

// =============================================================================

func (h Handlers) handle(ctx context.Context, w http.ResponseWriter, r *http.Request, core *verify.Core, network string) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var app verifyRequest
	if err := web.Decode(r, &app); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	result, err := core.Verify(ctx, toCoreRequest(app))
	if err != nil {
		if errors.Is(err, chain.ErrTimeout) {
			return errs.NewReason(err, http.StatusGatewayTimeout, "Timeout")
		}
		return fmt.Errorf("verifying %s transaction: %w", network, err)
	}

	if !result.Verified {
		err := fmt.Errorf("transaction rejected: %s", result.Reason)
		return errs.NewReason(err, http.StatusBadRequest, string(result.Reason))
	}

	h.Log.Infow("transfer verified", "traceid", v.TraceID, "network", network,
		"tx", result.TxHash, "asset", result.Asset, "block", result.Block)

	return web.Respond(ctx, w, toAppResult(result), http.StatusOK)
}
