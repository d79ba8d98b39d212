// Package faucet implements the test token disbursement engine. Each wallet
// receives at most one payout and every payout spends from the shared bot
// wallet balance, which can never be driven negative.
package faucet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/basecamplabs/basecamp/business/core/ledger"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// DefaultAmount is one whole token at six decimals.
const DefaultAmount = 1_000_000

// Set of error variables for the disbursement preconditions.
var (
	ErrInvalidAddress    = errors.New("invalid wallet address")
	ErrAlreadyClaimed    = errors.New("wallet already received a payout")
	ErrLimitReached      = errors.New("wallet received as many transfers as it sent")
	ErrFaucetEmpty       = errors.New("no payout balance left in the ledger")
	ErrLedgerRead        = errors.New("ledger accounting unavailable")
	ErrInsufficientFunds = errors.New("faucet account token balance too low")
)

// TokenSender is the chain access the engine needs. The production
// implementation is the chain client; tests provide fakes.
type TokenSender interface {
	TokenBalance(ctx context.Context, owner common.Address) (*big.Int, error)
	SendToken(ctx context.Context, to common.Address, amount *big.Int) (common.Hash, error)
	FaucetAddress() common.Address
}

// EventHandler is a function the engine uses to publish activity.
type EventHandler func(v string, args ...any)

// Config represents the mandatory settings to run the engine.
type Config struct {
	Log       *zap.SugaredLogger
	Ledger    ledger.Core
	Sender    TokenSender
	Amount    *big.Int
	EvHandler EventHandler
}

// Disbursement represents a completed payout.
type Disbursement struct {
	Wallet string
	TxHash common.Hash
	Amount *big.Int
}

// Core manages the disbursement of test tokens to new wallets.
type Core struct {
	log    *zap.SugaredLogger
	ledger ledger.Core
	sender TokenSender
	amount *big.Int
	ev     EventHandler

	// claimed is a process lifetime fast path only. The durable claim
	// flag in the ledger is the source of truth across restarts.
	mu      sync.Mutex
	claimed map[string]bool
}

// NewCore constructs a core for disbursement api access.
func NewCore(cfg Config) *Core {
	amount := cfg.Amount
	if amount == nil {
		amount = big.NewInt(DefaultAmount)
	}

	ev := cfg.EvHandler
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	return &Core{
		log:     cfg.Log,
		ledger:  cfg.Ledger,
		sender:  cfg.Sender,
		amount:  amount,
		ev:      ev,
		claimed: make(map[string]bool),
	}
}

// Disburse pays the fixed amount of test tokens to the specified wallet
// once all preconditions hold. The ledger balance is reserved before the
// broadcast and released again if the broadcast fails, so concurrent
// payouts can never overspend the shared balance.
func (c *Core) Disburse(ctx context.Context, wallet string) (Disbursement, error) {
	if !common.IsHexAddress(wallet) {
		return Disbursement{}, ErrInvalidAddress
	}
	key := ledger.Normalize(wallet)

	c.mu.Lock()
	already := c.claimed[key]
	c.mu.Unlock()
	if already {
		return Disbursement{}, ErrAlreadyClaimed
	}

	user, err := c.ledger.User(ctx, key)
	if err != nil {
		return Disbursement{}, fmt.Errorf("%w: %s", ErrLedgerRead, err)
	}

	if user.FaucetClaimed {
		c.markClaimed(key)
		return Disbursement{}, ErrAlreadyClaimed
	}

	if user.PracticeReceived >= user.PracticeSent {
		return Disbursement{}, ErrLimitReached
	}

	bal, err := c.ledger.BotBalance(ctx)
	if err != nil {
		return Disbursement{}, fmt.Errorf("%w: %s", ErrLedgerRead, err)
	}
	if bal < 1 {
		return Disbursement{}, ErrFaucetEmpty
	}

	// The on-chain balance of the faucet account is checked on top of the
	// ledger balance. The two numbers track different things and either
	// one can run out first.
	onChain, err := c.sender.TokenBalance(ctx, c.sender.FaucetAddress())
	if err != nil {
		return Disbursement{}, fmt.Errorf("reading faucet token balance: %w", err)
	}
	if onChain.Cmp(c.amount) < 0 {
		return Disbursement{}, ErrInsufficientFunds
	}

	// Reserve the payout before broadcasting. The guarded decrement is
	// the serialization point across concurrent requests.
	if err := c.ledger.ReserveBotFunds(ctx); err != nil {
		if errors.Is(err, ledger.ErrInsufficientBalance) {
			return Disbursement{}, ErrFaucetEmpty
		}
		return Disbursement{}, fmt.Errorf("%w: %s", ErrLedgerRead, err)
	}

	to := common.HexToAddress(wallet)
	txHash, err := c.sender.SendToken(ctx, to, c.amount)
	if err != nil {
		if relErr := c.ledger.ReleaseBotFunds(ctx); relErr != nil {
			c.log.Errorw("faucet: failed to release reserved funds", "wallet", key, "ERROR", relErr)
		}
		return Disbursement{}, fmt.Errorf("broadcasting payout: %w", err)
	}

	// The wallet is claimed from the moment the broadcast succeeds.
	c.markClaimed(key)

	// The funds moved on chain. A bookkeeping failure past this point is
	// a consistency violation that must never be retried, since a retry
	// could double pay.
	if err := c.ledger.CommitDisbursement(ctx, key); err != nil {
		c.log.Errorw("faucet: ACCOUNTING INCONSISTENCY, payout broadcast but bookkeeping failed",
			"wallet", key, "tx", txHash.Hex(), "ERROR", err)
	}

	c.ev("faucet: sent %s base units to %s in tx %s", c.amount, key, txHash.Hex())

	return Disbursement{
		Wallet: key,
		TxHash: txHash,
		Amount: c.amount,
	}, nil
}

// Eligible reports whether a wallet can still receive a payout based on
// its practice transfer counters.
func (c *Core) Eligible(ctx context.Context, wallet string) (bool, error) {
	if !common.IsHexAddress(wallet) {
		return false, ErrInvalidAddress
	}

	user, err := c.ledger.User(ctx, ledger.Normalize(wallet))
	if err != nil {
		return false, fmt.Errorf("%w: %s", ErrLedgerRead, err)
	}

	return user.PracticeReceived < user.PracticeSent, nil
}

// Balances reports the ledger tracked payout balance and the on-chain
// token balance of the faucet account.
func (c *Core) Balances(ctx context.Context) (int64, *big.Int, error) {
	bal, err := c.ledger.BotBalance(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %s", ErrLedgerRead, err)
	}

	onChain, err := c.sender.TokenBalance(ctx, c.sender.FaucetAddress())
	if err != nil {
		return 0, nil, fmt.Errorf("reading faucet token balance: %w", err)
	}

	return bal, onChain, nil
}

// =============================================================================

func (c *Core) markClaimed(key string) {
	c.mu.Lock()
	c.claimed[key] = true
	c.mu.Unlock()
}
