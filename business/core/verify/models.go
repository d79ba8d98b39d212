package verify

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Asset identifies what kind of transfer a request claims.
type Asset string

// The set of supported assets.
const (
	AssetNative Asset = "NATIVE"
	AssetToken  Asset = "TOKEN"
)

// Reason identifies why a request was rejected.
type Reason string

// The set of rejection reasons a result can carry.
const (
	ReasonMissingParameter    Reason = "MissingParameter"
	ReasonNotFound            Reason = "NotFound"
	ReasonTransactionFailed   Reason = "TransactionFailed"
	ReasonWrongRecipient      Reason = "WrongRecipient"
	ReasonSenderMismatch      Reason = "SenderMismatch"
	ReasonNotTokenTransaction Reason = "NotTokenTransaction"
	ReasonNoTransferFound     Reason = "NoTransferFound"
	ReasonTransferNotToWallet Reason = "TransferNotToWallet"
	ReasonInsufficientAmount  Reason = "InsufficientAmount"
	ReasonUnsupportedAsset    Reason = "UnsupportedAsset"
)

// Profile carries the network specific settings for one verification
// target. The decision logic never branches on the network name.
type Profile struct {
	Name             string
	TokenContract    common.Address
	Operator         common.Address
	RequireRecipient bool
	EnforceMinAmount bool
}

// Request represents a claimed transfer to check against the chain.
type Request struct {
	Sender    string
	Recipient string
	TxHash    string
	Asset     Asset
	MinAmount *big.Int
}

// Result represents the outcome of a verification.
type Result struct {
	Verified bool
	Reason   Reason
	Block    uint64
	Asset    Asset
	TxHash   string
}
