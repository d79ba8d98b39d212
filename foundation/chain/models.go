package chain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Tx represents the fields of a confirmed transaction the verification
// engine needs to inspect.
type Tx struct {
	Hash  common.Hash
	From  common.Address
	To    common.Address
	Value *big.Int
}

// TransferEvent represents a decoded token transfer log entry.
type TransferEvent struct {
	From  common.Address
	To    common.Address
	Value *big.Int
}

// TransferEvents decodes the token transfer events emitted by the specified
// token contract from the receipt logs. Logs from other contracts and with
// other signatures are ignored.
func TransferEvents(tokenContract common.Address, receipt *types.Receipt) []TransferEvent {
	var events []TransferEvent

	for _, l := range receipt.Logs {
		if l.Address != tokenContract {
			continue
		}

		// A transfer log carries the signature topic plus the two
		// indexed addresses.
		if len(l.Topics) != 3 || l.Topics[0] != transferEventID {
			continue
		}

		events = append(events, TransferEvent{
			From:  common.BytesToAddress(l.Topics[1].Bytes()),
			To:    common.BytesToAddress(l.Topics[2].Bytes()),
			Value: new(big.Int).SetBytes(l.Data),
		})
	}

	return events
}
