package verifygrp

import (
	"encoding/json"
	"math/big"
	"strings"

	"github.com/basecamplabs/basecamp/business/core/verify"
)

// verifyRequest is the payload a client submits to have a transfer checked.
// The required-field rules live in the engine so a missing value comes back
// as the MissingParameter reason rather than a generic validation error.
type verifyRequest struct {
	Sender    string      `json:"address_from"`
	Recipient string      `json:"address_to"`
	TxHash    string      `json:"tx_hash"`
	Asset     string      `json:"asset"`
	Amount    json.Number `json:"amount"`
}

// verifyResponse is the payload returned for a verified transfer.
type verifyResponse struct {
	Success  bool   `json:"success"`
	Verified bool   `json:"verified"`
	TxHash   string `json:"tx_hash"`
	Asset    string `json:"asset"`
	Block    uint64 `json:"block"`
}

// toCoreRequest converts the app layer payload into the engine request.
// The legacy asset names remain accepted alongside the canonical ones.
func toCoreRequest(app verifyRequest) verify.Request {
	var asset verify.Asset
	switch strings.ToUpper(app.Asset) {
	case "", "ETH", string(verify.AssetNative):
		asset = verify.AssetNative
	case "USDC", string(verify.AssetToken):
		asset = verify.AssetToken
	default:
		asset = verify.Asset(strings.ToUpper(app.Asset))
	}

	var minAmount *big.Int
	if app.Amount != "" {
		if v, ok := new(big.Int).SetString(app.Amount.String(), 10); ok {
			minAmount = v
		}
	}

	return verify.Request{
		Sender:    app.Sender,
		Recipient: app.Recipient,
		TxHash:    app.TxHash,
		Asset:     asset,
		MinAmount: minAmount,
	}
}

func toAppResult(result verify.Result) verifyResponse {
	return verifyResponse{
		Success:  true,
		Verified: true,
		TxHash:   result.TxHash,
		Asset:    string(result.Asset),
		Block:    result.Block,
	}
}
