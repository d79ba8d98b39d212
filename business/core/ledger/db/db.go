package db

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Set of error variables for the store operations. A missing row is kept
// distinct from any other store failure so callers can choose between a
// terminal rejection and a retry.
var (
	ErrNotFound            = errors.New("record not found")
	ErrExists              = errors.New("record already exists")
	ErrInsufficientBalance = errors.New("insufficient bot wallet balance")
)

// Store manages the set of database operations for the ledger.
type Store struct {
	log *zap.SugaredLogger
	db  *gorm.DB
}

// NewStore constructs a store for ledger database access.
func NewStore(log *zap.SugaredLogger, db *gorm.DB) Store {
	return Store{
		log: log,
		db:  db,
	}
}

// Migrate creates or updates the ledger tables.
func (s Store) Migrate() error {
	return s.db.AutoMigrate(&UserInfo{}, &UserProgress{}, &BotWallet{})
}

// CreateUser inserts the info and progress rows for a wallet together. The
// two rows only ever exist as a pair.
func (s Store) CreateUser(ctx context.Context, wallet string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&UserInfo{Wallet: wallet}).Error; err != nil {
			return err
		}
		if err := tx.Create(&UserProgress{Wallet: wallet}).Error; err != nil {
			return err
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrExists
		}
		return fmt.Errorf("creating user %q: %w", wallet, err)
	}

	return nil
}

// DeleteUser removes the info and progress rows for a wallet together.
func (s Store) DeleteUser(ctx context.Context, wallet string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&UserProgress{}, "wallet = ?", wallet).Error; err != nil {
			return err
		}
		if err := tx.Delete(&UserInfo{}, "wallet = ?", wallet).Error; err != nil {
			return err
		}
		return nil
	})

	if err != nil {
		return fmt.Errorf("deleting user %q: %w", wallet, err)
	}

	return nil
}

// QueryUserInfo retrieves the info row for the specified wallet.
func (s Store) QueryUserInfo(ctx context.Context, wallet string) (UserInfo, error) {
	var info UserInfo
	if err := s.db.WithContext(ctx).First(&info, "wallet = ?", wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return UserInfo{}, ErrNotFound
		}
		return UserInfo{}, fmt.Errorf("querying info for %q: %w", wallet, err)
	}

	return info, nil
}

// QueryUserProgress retrieves the progress row for the specified wallet.
func (s Store) QueryUserProgress(ctx context.Context, wallet string) (UserProgress, error) {
	var progress UserProgress
	if err := s.db.WithContext(ctx).First(&progress, "wallet = ?", wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return UserProgress{}, ErrNotFound
		}
		return UserProgress{}, fmt.Errorf("querying progress for %q: %w", wallet, err)
	}

	return progress, nil
}

// SetProgressField updates a single milestone column on the progress row.
// The column name must come from the closed set the ledger package owns.
func (s Store) SetProgressField(ctx context.Context, wallet string, column string, value bool) error {
	result := s.db.WithContext(ctx).
		Model(&UserProgress{}).
		Where("wallet = ?", wallet).
		Update(column, value)

	if result.Error != nil {
		return fmt.Errorf("updating %s for %q: %w", column, wallet, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// SetInfoFlag sets a single completion column on the info row to true.
// Completion flags are write-once-true and are never cleared here.
func (s Store) SetInfoFlag(ctx context.Context, wallet string, column string) error {
	result := s.db.WithContext(ctx).
		Model(&UserInfo{}).
		Where("wallet = ?", wallet).
		Update(column, true)

	if result.Error != nil {
		return fmt.Errorf("updating %s for %q: %w", column, wallet, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// AddPracticeSent increments the sent counter for the specified wallet.
func (s Store) AddPracticeSent(ctx context.Context, wallet string) error {
	return s.addCounter(ctx, wallet, "practice_sent")
}

// AddPracticeReceived increments the received counter for the specified wallet.
func (s Store) AddPracticeReceived(ctx context.Context, wallet string) error {
	return s.addCounter(ctx, wallet, "practice_received")
}

// EnsureBot creates the shared bot wallet row with the specified starting
// balance if it does not exist yet.
func (s Store) EnsureBot(ctx context.Context, balance int64) error {
	bot := BotWallet{Wallet: BotWalletID, Balance: balance}
	if err := s.db.WithContext(ctx).FirstOrCreate(&bot, "wallet = ?", BotWalletID).Error; err != nil {
		return fmt.Errorf("ensuring bot wallet row: %w", err)
	}

	return nil
}

// BotBalance retrieves the remaining payout balance of the bot wallet.
func (s Store) BotBalance(ctx context.Context) (int64, error) {
	var bot BotWallet
	if err := s.db.WithContext(ctx).First(&bot, "wallet = ?", BotWalletID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("querying bot wallet: %w", err)
	}

	return bot.Balance, nil
}

// ReserveBotFunds decrements the bot wallet balance by one payout as a
// single guarded update. Concurrent reservations serialize on this row, so
// the balance can never be driven negative.
func (s Store) ReserveBotFunds(ctx context.Context) error {
	result := s.db.WithContext(ctx).
		Model(&BotWallet{}).
		Where("wallet = ? AND balance >= ?", BotWalletID, 1).
		Update("balance", gorm.Expr("balance - ?", 1))

	if result.Error != nil {
		return fmt.Errorf("reserving bot funds: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientBalance
	}

	return nil
}

// ReleaseBotFunds returns a reserved payout to the bot wallet balance. It
// compensates a reservation whose broadcast never happened.
func (s Store) ReleaseBotFunds(ctx context.Context) error {
	result := s.db.WithContext(ctx).
		Model(&BotWallet{}).
		Where("wallet = ?", BotWalletID).
		Update("balance", gorm.Expr("balance + ?", 1))

	if result.Error != nil {
		return fmt.Errorf("releasing bot funds: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// CommitDisbursement applies the recipient side bookkeeping of a payout in
// a single transaction: the received counter increments and the durable
// claim flag is set together.
func (s Store) CommitDisbursement(ctx context.Context, wallet string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&UserInfo{}).
			Where("wallet = ?", wallet).
			Updates(map[string]any{
				"practice_received": gorm.Expr("practice_received + ?", 1),
				"faucet_claimed":    true,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("committing disbursement for %q: %w", wallet, err)
	}

	return nil
}

// =============================================================================

func (s Store) addCounter(ctx context.Context, wallet string, column string) error {
	result := s.db.WithContext(ctx).
		Model(&UserInfo{}).
		Where("wallet = ?", wallet).
		Update(column, gorm.Expr(column+" + ?", 1))

	if result.Error != nil {
		return fmt.Errorf("incrementing %s for %q: %w", column, wallet, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
