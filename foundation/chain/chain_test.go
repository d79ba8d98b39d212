package chain_test

import (
	"math/big"
	"testing"

	"github.com/basecamplabs/basecamp/foundation/chain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

// =============================================================================

var (
	tokenAddr = common.HexToAddress("0x5555555555555555555555555555555555555555")
	otherAddr = common.HexToAddress("0x6666666666666666666666666666666666666666")
	fromAddr  = common.HexToAddress("0x7777777777777777777777777777777777777777")
	toAddr    = common.HexToAddress("0x8888888888888888888888888888888888888888")
)

var transferID = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

func transferLog(contract common.Address, from common.Address, to common.Address, value *big.Int) *types.Log {
	return &types.Log{
		Address: contract,
		Topics: []common.Hash{
			transferID,
			common.BytesToHash(from.Bytes()),
			common.BytesToHash(to.Bytes()),
		},
		Data: common.LeftPadBytes(value.Bytes(), 32),
	}
}

// =============================================================================

func Test_TransferEvents(t *testing.T) {
	type table struct {
		name string
		logs []*types.Log
		want int
	}

	tt := []table{
		{
			name: "single transfer",
			logs: []*types.Log{
				transferLog(tokenAddr, fromAddr, toAddr, big.NewInt(1_000_000)),
			},
			want: 1,
		},
		{
			name: "transfer from another contract is skipped",
			logs: []*types.Log{
				transferLog(otherAddr, fromAddr, toAddr, big.NewInt(1_000_000)),
			},
			want: 0,
		},
		{
			name: "approval style event with two topics is skipped",
			logs: []*types.Log{
				{
					Address: tokenAddr,
					Topics:  []common.Hash{transferID, common.BytesToHash(fromAddr.Bytes())},
					Data:    common.LeftPadBytes(big.NewInt(1).Bytes(), 32),
				},
			},
			want: 0,
		},
		{
			name: "mixed logs keep only matching transfers",
			logs: []*types.Log{
				transferLog(otherAddr, fromAddr, toAddr, big.NewInt(5)),
				transferLog(tokenAddr, fromAddr, toAddr, big.NewInt(10)),
				transferLog(tokenAddr, toAddr, fromAddr, big.NewInt(20)),
			},
			want: 2,
		},
	}

	t.Log("Given the need to decode token transfer events from receipts.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a receipt with a %s.", testID, tst.name)
			{
				f := func(t *testing.T) {
					receipt := types.Receipt{Logs: tst.logs}

					events := chain.TransferEvents(tokenAddr, &receipt)
					if len(events) != tst.want {
						t.Fatalf("\t%s\tTest %d:\tShould decode %d events, got %d.", failed, testID, tst.want, len(events))
					}
					t.Logf("\t%s\tTest %d:\tShould decode %d events.", success, testID, tst.want)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_TransferEventFields(t *testing.T) {
	t.Log("Given the need to read the fields of a decoded transfer.")
	{
		t.Logf("\tTest 0:\tWhen decoding a single transfer event.")
		{
			receipt := types.Receipt{Logs: []*types.Log{
				transferLog(tokenAddr, fromAddr, toAddr, big.NewInt(1_000_000)),
			}}

			events := chain.TransferEvents(tokenAddr, &receipt)
			if len(events) != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould decode one event, got %d.", failed, len(events))
			}
			t.Logf("\t%s\tTest 0:\tShould decode one event.", success)

			event := events[0]
			if event.From != fromAddr {
				t.Fatalf("\t%s\tTest 0:\tShould decode the sender, got %s.", failed, event.From.Hex())
			}
			t.Logf("\t%s\tTest 0:\tShould decode the sender.", success)

			if event.To != toAddr {
				t.Fatalf("\t%s\tTest 0:\tShould decode the recipient, got %s.", failed, event.To.Hex())
			}
			t.Logf("\t%s\tTest 0:\tShould decode the recipient.", success)

			if event.Value.Cmp(big.NewInt(1_000_000)) != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould decode the value, got %s.", failed, event.Value)
			}
			t.Logf("\t%s\tTest 0:\tShould decode the value.", success)
		}
	}
}
