package verify_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/basecamplabs/basecamp/business/core/verify"
	"github.com/basecamplabs/basecamp/foundation/chain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// =============================================================================

var (
	operator  = common.HexToAddress("0x1111111111111111111111111111111111111111")
	student   = common.HexToAddress("0x2222222222222222222222222222222222222222")
	partner   = common.HexToAddress("0x3333333333333333333333333333333333333333")
	stranger  = common.HexToAddress("0x4444444444444444444444444444444444444444")
	tokenAddr = common.HexToAddress("0x5555555555555555555555555555555555555555")
)

// fakeReader serves a single transaction from memory.
type fakeReader struct {
	receipt *types.Receipt
	tx      chain.Tx
	events  []chain.TransferEvent
	missing bool
}

func (f fakeReader) Receipt(ctx context.Context, txHash string) (*types.Receipt, error) {
	if f.missing {
		return nil, chain.ErrNotFound
	}
	return f.receipt, nil
}

func (f fakeReader) Transaction(ctx context.Context, txHash string) (chain.Tx, error) {
	if f.missing {
		return chain.Tx{}, chain.ErrNotFound
	}
	return f.tx, nil
}

func (f fakeReader) TransferEvents(receipt *types.Receipt) []chain.TransferEvent {
	return f.events
}

func goodReceipt() *types.Receipt {
	return &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		BlockNumber: big.NewInt(12345),
	}
}

func mainnetProfile() verify.Profile {
	return verify.Profile{
		Name:             "mainnet",
		TokenContract:    tokenAddr,
		Operator:         operator,
		RequireRecipient: false,
		EnforceMinAmount: true,
	}
}

func testnetProfile() verify.Profile {
	return verify.Profile{
		Name:             "testnet",
		TokenContract:    tokenAddr,
		RequireRecipient: true,
		EnforceMinAmount: false,
	}
}

// =============================================================================

func Test_VerifyNative(t *testing.T) {
	type table struct {
		name    string
		profile verify.Profile
		reader  fakeReader
		req     verify.Request
		want    bool
		reason  verify.Reason
	}

	tt := []table{
		{
			name:    "payment to operator",
			profile: mainnetProfile(),
			reader: fakeReader{
				receipt: goodReceipt(),
				tx:      chain.Tx{From: student, To: operator, Value: big.NewInt(5)},
			},
			req: verify.Request{
				Sender:    student.Hex(),
				TxHash:    "0xaa",
				Asset:     verify.AssetNative,
				MinAmount: big.NewInt(1),
			},
			want: true,
		},
		{
			name:    "mixed case sender still matches",
			profile: mainnetProfile(),
			reader: fakeReader{
				receipt: goodReceipt(),
				tx:      chain.Tx{From: student, To: operator, Value: big.NewInt(5)},
			},
			req: verify.Request{
				Sender:    "0x2222222222222222222222222222222222222222",
				TxHash:    "0xaa",
				Asset:     verify.AssetNative,
				MinAmount: big.NewInt(1),
			},
			want: true,
		},
		{
			name:    "payment to the wrong wallet",
			profile: mainnetProfile(),
			reader: fakeReader{
				receipt: goodReceipt(),
				tx:      chain.Tx{From: student, To: stranger, Value: big.NewInt(5)},
			},
			req: verify.Request{
				Sender:    student.Hex(),
				TxHash:    "0xaa",
				Asset:     verify.AssetNative,
				MinAmount: big.NewInt(1),
			},
			want:   false,
			reason: verify.ReasonWrongRecipient,
		},
		{
			name:    "payment from the wrong wallet",
			profile: mainnetProfile(),
			reader: fakeReader{
				receipt: goodReceipt(),
				tx:      chain.Tx{From: stranger, To: operator, Value: big.NewInt(5)},
			},
			req: verify.Request{
				Sender:    student.Hex(),
				TxHash:    "0xaa",
				Asset:     verify.AssetNative,
				MinAmount: big.NewInt(1),
			},
			want:   false,
			reason: verify.ReasonSenderMismatch,
		},
		{
			name:    "unknown transaction hash",
			profile: mainnetProfile(),
			reader:  fakeReader{missing: true},
			req: verify.Request{
				Sender:    student.Hex(),
				TxHash:    "0xdead",
				Asset:     verify.AssetNative,
				MinAmount: big.NewInt(1),
			},
			want:   false,
			reason: verify.ReasonNotFound,
		},
		{
			name:    "reverted transaction",
			profile: mainnetProfile(),
			reader: fakeReader{
				receipt: &types.Receipt{Status: types.ReceiptStatusFailed, BlockNumber: big.NewInt(12345)},
				tx:      chain.Tx{From: student, To: operator, Value: big.NewInt(5)},
			},
			req: verify.Request{
				Sender:    student.Hex(),
				TxHash:    "0xaa",
				Asset:     verify.AssetNative,
				MinAmount: big.NewInt(1),
			},
			want:   false,
			reason: verify.ReasonTransactionFailed,
		},
		{
			name:    "missing sender",
			profile: mainnetProfile(),
			reader:  fakeReader{receipt: goodReceipt()},
			req: verify.Request{
				TxHash:    "0xaa",
				Asset:     verify.AssetNative,
				MinAmount: big.NewInt(1),
			},
			want:   false,
			reason: verify.ReasonMissingParameter,
		},
		{
			name:    "missing amount",
			profile: mainnetProfile(),
			reader:  fakeReader{receipt: goodReceipt()},
			req: verify.Request{
				Sender: student.Hex(),
				TxHash: "0xaa",
				Asset:  verify.AssetNative,
			},
			want:   false,
			reason: verify.ReasonMissingParameter,
		},
		{
			name:    "unsupported asset",
			profile: mainnetProfile(),
			reader: fakeReader{
				receipt: goodReceipt(),
				tx:      chain.Tx{From: student, To: operator, Value: big.NewInt(5)},
			},
			req: verify.Request{
				Sender:    student.Hex(),
				TxHash:    "0xaa",
				Asset:     verify.Asset("DOGE"),
				MinAmount: big.NewInt(1),
			},
			want:   false,
			reason: verify.ReasonUnsupportedAsset,
		},
	}

	log := zap.NewNop().Sugar()

	t.Log("Given the need to verify claimed native transfers.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen checking a %s.", testID, tst.name)
			{
				f := func(t *testing.T) {
					core := verify.NewCore(log, tst.profile, tst.reader)

					result, err := core.Verify(context.Background(), tst.req)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to run the verification: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to run the verification.", success, testID)

					if result.Verified != tst.want {
						t.Fatalf("\t%s\tTest %d:\tShould have verified=%v, got %v.", failed, testID, tst.want, result.Verified)
					}
					t.Logf("\t%s\tTest %d:\tShould have verified=%v.", success, testID, tst.want)

					if result.Reason != tst.reason {
						t.Fatalf("\t%s\tTest %d:\tShould have reason %q, got %q.", failed, testID, tst.reason, result.Reason)
					}
					t.Logf("\t%s\tTest %d:\tShould have reason %q.", success, testID, tst.reason)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_VerifyToken(t *testing.T) {
	type table struct {
		name    string
		profile verify.Profile
		reader  fakeReader
		req     verify.Request
		want    bool
		reason  verify.Reason
	}

	toToken := chain.Tx{From: student, To: tokenAddr, Value: big.NewInt(0)}

	tt := []table{
		{
			name:    "token payment to operator",
			profile: mainnetProfile(),
			reader: fakeReader{
				receipt: goodReceipt(),
				tx:      toToken,
				events: []chain.TransferEvent{
					{From: student, To: operator, Value: big.NewInt(2_000_000)},
				},
			},
			req: verify.Request{
				Sender:    student.Hex(),
				TxHash:    "0xbb",
				Asset:     verify.AssetToken,
				MinAmount: big.NewInt(1_000_000),
			},
			want: true,
		},
		{
			name:    "practice transfer to a chosen wallet",
			profile: testnetProfile(),
			reader: fakeReader{
				receipt: goodReceipt(),
				tx:      toToken,
				events: []chain.TransferEvent{
					{From: student, To: partner, Value: big.NewInt(1)},
				},
			},
			req: verify.Request{
				Sender:    student.Hex(),
				Recipient: partner.Hex(),
				TxHash:    "0xbb",
				Asset:     verify.AssetToken,
				MinAmount: big.NewInt(1_000_000),
			},
			want: true,
		},
		{
			name:    "amount below the minimum is rejected on mainnet",
			profile: mainnetProfile(),
			reader: fakeReader{
				receipt: goodReceipt(),
				tx:      toToken,
				events: []chain.TransferEvent{
					{From: student, To: operator, Value: big.NewInt(10)},
				},
			},
			req: verify.Request{
				Sender:    student.Hex(),
				TxHash:    "0xbb",
				Asset:     verify.AssetToken,
				MinAmount: big.NewInt(1_000_000),
			},
			want:   false,
			reason: verify.ReasonInsufficientAmount,
		},
		{
			name:    "amount below the minimum is accepted on testnet",
			profile: testnetProfile(),
			reader: fakeReader{
				receipt: goodReceipt(),
				tx:      toToken,
				events: []chain.TransferEvent{
					{From: student, To: partner, Value: big.NewInt(10)},
				},
			},
			req: verify.Request{
				Sender:    student.Hex(),
				Recipient: partner.Hex(),
				TxHash:    "0xbb",
				Asset:     verify.AssetToken,
				MinAmount: big.NewInt(1_000_000),
			},
			want: true,
		},
		{
			name:    "transaction not sent to the token contract",
			profile: mainnetProfile(),
			reader: fakeReader{
				receipt: goodReceipt(),
				tx:      chain.Tx{From: student, To: stranger, Value: big.NewInt(0)},
			},
			req: verify.Request{
				Sender:    student.Hex(),
				TxHash:    "0xbb",
				Asset:     verify.AssetToken,
				MinAmount: big.NewInt(1_000_000),
			},
			want:   false,
			reason: verify.ReasonNotTokenTransaction,
		},
		{
			name:    "token transaction without transfer events",
			profile: mainnetProfile(),
			reader: fakeReader{
				receipt: goodReceipt(),
				tx:      toToken,
			},
			req: verify.Request{
				Sender:    student.Hex(),
				TxHash:    "0xbb",
				Asset:     verify.AssetToken,
				MinAmount: big.NewInt(1_000_000),
			},
			want:   false,
			reason: verify.ReasonNoTransferFound,
		},
		{
			name:    "transfer went to somebody else",
			profile: testnetProfile(),
			reader: fakeReader{
				receipt: goodReceipt(),
				tx:      toToken,
				events: []chain.TransferEvent{
					{From: student, To: stranger, Value: big.NewInt(1)},
				},
			},
			req: verify.Request{
				Sender:    student.Hex(),
				Recipient: partner.Hex(),
				TxHash:    "0xbb",
				Asset:     verify.AssetToken,
				MinAmount: big.NewInt(1_000_000),
			},
			want:   false,
			reason: verify.ReasonTransferNotToWallet,
		},
		{
			name:    "transfer came from somebody else",
			profile: testnetProfile(),
			reader: fakeReader{
				receipt: goodReceipt(),
				tx:      toToken,
				events: []chain.TransferEvent{
					{From: stranger, To: partner, Value: big.NewInt(1)},
				},
			},
			req: verify.Request{
				Sender:    student.Hex(),
				Recipient: partner.Hex(),
				TxHash:    "0xbb",
				Asset:     verify.AssetToken,
				MinAmount: big.NewInt(1_000_000),
			},
			want:   false,
			reason: verify.ReasonSenderMismatch,
		},
		{
			name:    "missing recipient where the profile requires one",
			profile: testnetProfile(),
			reader: fakeReader{
				receipt: goodReceipt(),
				tx:      toToken,
			},
			req: verify.Request{
				Sender:    student.Hex(),
				TxHash:    "0xbb",
				Asset:     verify.AssetToken,
				MinAmount: big.NewInt(1_000_000),
			},
			want:   false,
			reason: verify.ReasonMissingParameter,
		},
	}

	log := zap.NewNop().Sugar()

	t.Log("Given the need to verify claimed token transfers.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen checking a %s.", testID, tst.name)
			{
				f := func(t *testing.T) {
					core := verify.NewCore(log, tst.profile, tst.reader)

					result, err := core.Verify(context.Background(), tst.req)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to run the verification: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to run the verification.", success, testID)

					if result.Verified != tst.want {
						t.Fatalf("\t%s\tTest %d:\tShould have verified=%v, got %v.", failed, testID, tst.want, result.Verified)
					}
					t.Logf("\t%s\tTest %d:\tShould have verified=%v.", success, testID, tst.want)

					if result.Reason != tst.reason {
						t.Fatalf("\t%s\tTest %d:\tShould have reason %q, got %q.", failed, testID, tst.reason, result.Reason)
					}
					t.Logf("\t%s\tTest %d:\tShould have reason %q.", success, testID, tst.reason)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_VerifyIdempotent(t *testing.T) {
	log := zap.NewNop().Sugar()

	reader := fakeReader{
		receipt: goodReceipt(),
		tx:      chain.Tx{From: student, To: operator, Value: big.NewInt(5)},
	}
	core := verify.NewCore(log, mainnetProfile(), reader)

	req := verify.Request{
		Sender:    student.Hex(),
		TxHash:    "0xaa",
		Asset:     verify.AssetNative,
		MinAmount: big.NewInt(1),
	}

	t.Log("Given the need to check the same transaction repeatedly.")
	{
		t.Logf("\tTest 0:\tWhen verifying the same request twice.")
		{
			first, err := core.Verify(context.Background(), req)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to run the first verification: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to run the first verification.", success)

			second, err := core.Verify(context.Background(), req)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to run the second verification: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to run the second verification.", success)

			if first != second {
				t.Fatalf("\t%s\tTest 0:\tShould get the same result both times.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould get the same result both times.", success)
		}
	}
}

func Test_VerifyChainError(t *testing.T) {
	log := zap.NewNop().Sugar()

	core := verify.NewCore(log, mainnetProfile(), errorReader{})

	req := verify.Request{
		Sender:    student.Hex(),
		TxHash:    "0xaa",
		Asset:     verify.AssetNative,
		MinAmount: big.NewInt(1),
	}

	t.Log("Given the need to surface chain access failures.")
	{
		t.Logf("\tTest 0:\tWhen the receipt lookup times out.")
		{
			_, err := core.Verify(context.Background(), req)
			if err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould get an error back.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould get an error back.", success)

			if !errors.Is(err, chain.ErrTimeout) {
				t.Fatalf("\t%s\tTest 0:\tShould keep the timeout in the error chain: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould keep the timeout in the error chain.", success)
		}
	}
}

// errorReader fails every chain call with a timeout.
type errorReader struct{}

func (errorReader) Receipt(ctx context.Context, txHash string) (*types.Receipt, error) {
	return nil, chain.ErrTimeout
}

func (errorReader) Transaction(ctx context.Context, txHash string) (chain.Tx, error) {
	return chain.Tx{}, chain.ErrTimeout
}

func (errorReader) TransferEvents(receipt *types.Receipt) []chain.TransferEvent {
	return nil
}
