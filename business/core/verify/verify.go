// Package verify implements the transaction verification engine. A single
// engine serves both networks; the differences between them live in the
// profile, not in the decision logic.
package verify

import (
	"context"
	"errors"
	"fmt"

	"github.com/basecamplabs/basecamp/foundation/chain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// ChainReader is the chain access the engine needs. The production
// implementation is the chain client; tests provide fakes.
type ChainReader interface {
	Receipt(ctx context.Context, txHash string) (*types.Receipt, error)
	Transaction(ctx context.Context, txHash string) (chain.Tx, error)
	TransferEvents(receipt *types.Receipt) []chain.TransferEvent
}

// Core manages the verification of claimed transfers against the chain.
type Core struct {
	log     *zap.SugaredLogger
	profile Profile
	reader  ChainReader
}

// NewCore constructs a core for verification api access.
func NewCore(log *zap.SugaredLogger, profile Profile, reader ChainReader) *Core {
	return &Core{
		log:     log,
		profile: profile,
		reader:  reader,
	}
}

// Verify checks that the claimed transfer actually happened on chain, went
// to the expected recipient, came from the expected sender, used the
// expected asset and, when the profile enforces it, met the minimum amount.
// Malformed requests come back as a rejected result, never as an error;
// errors are reserved for chain access failures.
func (c *Core) Verify(ctx context.Context, req Request) (Result, error) {
	if req.Sender == "" || req.TxHash == "" || req.Asset == "" || req.MinAmount == nil || req.MinAmount.Sign() <= 0 {
		return reject(req, ReasonMissingParameter), nil
	}
	if c.profile.RequireRecipient && req.Recipient == "" {
		return reject(req, ReasonMissingParameter), nil
	}

	receipt, err := c.reader.Receipt(ctx, req.TxHash)
	if err != nil {
		if errors.Is(err, chain.ErrNotFound) {
			return reject(req, ReasonNotFound), nil
		}
		return Result{}, fmt.Errorf("fetching receipt %s: %w", req.TxHash, err)
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return reject(req, ReasonTransactionFailed), nil
	}

	tx, err := c.reader.Transaction(ctx, req.TxHash)
	if err != nil {
		if errors.Is(err, chain.ErrNotFound) {
			return reject(req, ReasonNotFound), nil
		}
		return Result{}, fmt.Errorf("fetching transaction %s: %w", req.TxHash, err)
	}

	sender := common.HexToAddress(req.Sender)
	recipient := c.expectedRecipient(req)

	switch req.Asset {
	case AssetNative:
		if tx.To != recipient {
			return reject(req, ReasonWrongRecipient), nil
		}
		if tx.From != sender {
			return reject(req, ReasonSenderMismatch), nil
		}

		// Native transfers are not amount checked. The trust model
		// treats them as out-of-band payments.

	case AssetToken:
		if tx.To != c.profile.TokenContract {
			return reject(req, ReasonNotTokenTransaction), nil
		}

		events := c.reader.TransferEvents(receipt)
		if len(events) == 0 {
			return reject(req, ReasonNoTransferFound), nil
		}

		var found bool
		for _, event := range events {
			if event.To != recipient {
				continue
			}

			if event.From != sender {
				return reject(req, ReasonSenderMismatch), nil
			}
			if c.profile.EnforceMinAmount && event.Value.Cmp(req.MinAmount) < 0 {
				return reject(req, ReasonInsufficientAmount), nil
			}

			found = true
			break
		}

		if !found {
			return reject(req, ReasonTransferNotToWallet), nil
		}

	default:
		return reject(req, ReasonUnsupportedAsset), nil
	}

	result := Result{
		Verified: true,
		Block:    receipt.BlockNumber.Uint64(),
		Asset:    req.Asset,
		TxHash:   req.TxHash,
	}

	return result, nil
}

// =============================================================================

// expectedRecipient resolves who the transfer must have gone to. Profiles
// either pin the recipient to the configured operator or take it from the
// request.
func (c *Core) expectedRecipient(req Request) common.Address {
	if c.profile.RequireRecipient {
		return common.HexToAddress(req.Recipient)
	}

	return c.profile.Operator
}

func reject(req Request, reason Reason) Result {
	return Result{
		Reason: reason,
		Asset:  req.Asset,
		TxHash: req.TxHash,
	}
}
