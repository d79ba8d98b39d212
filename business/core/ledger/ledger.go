// Package ledger provides typed access to the per wallet curriculum records
// and the shared bot wallet accounting row. Every record is addressed by a
// lower-cased wallet address so lookups stay case-insensitive.
package ledger

import (
	"context"
	"errors"
	"strings"

	"github.com/basecamplabs/basecamp/business/core/ledger/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Set of error variables for the ledger operations.
var (
	ErrNotFound            = db.ErrNotFound
	ErrExists              = db.ErrExists
	ErrInsufficientBalance = db.ErrInsufficientBalance
	ErrUnknownMilestone    = errors.New("unknown milestone field")
)

// Core manages the set of APIs for ledger access.
type Core struct {
	log   *zap.SugaredLogger
	store db.Store
}

// NewCore constructs a core for ledger api access.
func NewCore(log *zap.SugaredLogger, gdb *gorm.DB) Core {
	return Core{
		log:   log,
		store: db.NewStore(log, gdb),
	}
}

// Migrate creates or updates the ledger tables.
func (c Core) Migrate() error {
	return c.store.Migrate()
}

// Onboard creates the info and progress records for a new wallet. The two
// records only ever exist together.
func (c Core) Onboard(ctx context.Context, wallet string) error {
	return c.store.CreateUser(ctx, Normalize(wallet))
}

// Remove deletes the info and progress records for a wallet.
func (c Core) Remove(ctx context.Context, wallet string) error {
	return c.store.DeleteUser(ctx, Normalize(wallet))
}

// User retrieves the accounting counters and completion flags for a wallet.
func (c Core) User(ctx context.Context, wallet string) (User, error) {
	info, err := c.store.QueryUserInfo(ctx, Normalize(wallet))
	if err != nil {
		return User{}, err
	}

	return toUser(info), nil
}

// Progress retrieves the raw milestone flags for a wallet.
func (c Core) Progress(ctx context.Context, wallet string) (Progress, error) {
	dbPrg, err := c.store.QueryUserProgress(ctx, Normalize(wallet))
	if err != nil {
		return nil, err
	}

	return toProgress(dbPrg), nil
}

// SetMilestone updates a single milestone flag for a wallet. Only fields
// from the closed milestone set can be addressed.
func (c Core) SetMilestone(ctx context.Context, wallet string, milestone Milestone, value bool) error {
	column, exists := milestoneColumns[milestone]
	if !exists {
		return ErrUnknownMilestone
	}

	return c.store.SetProgressField(ctx, Normalize(wallet), column, value)
}

// SetCompletion marks a category completion flag true for a wallet.
// Completion flags are write-once-true and never cleared.
func (c Core) SetCompletion(ctx context.Context, wallet string, category Category) error {
	column, exists := categoryColumns[category]
	if !exists {
		return ErrUnknownMilestone
	}

	return c.store.SetInfoFlag(ctx, Normalize(wallet), column)
}

// SetCompletedAll marks the aggregate completion flag true for a wallet.
func (c Core) SetCompletedAll(ctx context.Context, wallet string) error {
	return c.store.SetInfoFlag(ctx, Normalize(wallet), "completed_all")
}

// AddPracticeSent records one confirmed outbound practice transfer.
func (c Core) AddPracticeSent(ctx context.Context, wallet string) error {
	return c.store.AddPracticeSent(ctx, Normalize(wallet))
}

// AddPracticeReceived records one confirmed inbound practice transfer.
func (c Core) AddPracticeReceived(ctx context.Context, wallet string) error {
	return c.store.AddPracticeReceived(ctx, Normalize(wallet))
}

// EnsureBot creates the shared bot wallet row with the specified starting
// balance if it does not exist yet.
func (c Core) EnsureBot(ctx context.Context, balance int64) error {
	return c.store.EnsureBot(ctx, balance)
}

// BotBalance retrieves the remaining payout balance of the bot wallet.
func (c Core) BotBalance(ctx context.Context) (int64, error) {
	return c.store.BotBalance(ctx)
}

// ReserveBotFunds takes one payout from the bot wallet balance ahead of a
// broadcast. Reservations serialize on the shared row, so two concurrent
// payouts can never spend the same balance.
func (c Core) ReserveBotFunds(ctx context.Context) error {
	return c.store.ReserveBotFunds(ctx)
}

// ReleaseBotFunds returns a reserved payout after a failed broadcast.
func (c Core) ReleaseBotFunds(ctx context.Context) error {
	return c.store.ReleaseBotFunds(ctx)
}

// CommitDisbursement applies the recipient side bookkeeping of a payout:
// the received counter and the durable claim flag update together.
func (c Core) CommitDisbursement(ctx context.Context, wallet string) error {
	return c.store.CommitDisbursement(ctx, Normalize(wallet))
}

// Normalize lower-cases a wallet address so every comparison and lookup in
// the ledger is case-insensitive.
func Normalize(wallet string) string {
	return strings.ToLower(wallet)
}
