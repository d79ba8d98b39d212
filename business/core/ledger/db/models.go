// Package db contains the gorm models and low level store access for the
// curriculum ledger database.
package db

import "time"

// BotWalletID is the well-known identifier for the shared faucet accounting
// row. It can never collide with a user row because user rows are keyed by
// hex addresses.
const BotWalletID = "bot-wallet"

// UserInfo represents the accounting counters and derived completion flags
// for a single wallet.
type UserInfo struct {
	Wallet            string `gorm:"primaryKey"`
	PracticeSent      int    `gorm:"not null;default:0"`
	PracticeReceived  int    `gorm:"not null;default:0"`
	FaucetClaimed     bool   `gorm:"not null;default:false"`
	CompletedPractice bool   `gorm:"not null;default:false"`
	CompletedTheory   bool   `gorm:"not null;default:false"`
	CompletedSecurity bool   `gorm:"not null;default:false"`
	CompletedAll      bool   `gorm:"not null;default:false"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName overrides the gorm naming convention.
func (UserInfo) TableName() string {
	return "user_info"
}

// UserProgress represents the raw milestone flags for a single wallet.
type UserProgress struct {
	Wallet    string `gorm:"primaryKey"`
	Faucet    bool   `gorm:"not null;default:false"`
	Send      bool   `gorm:"not null;default:false"`
	Receive   bool   `gorm:"not null;default:false"`
	Mint      bool   `gorm:"not null;default:false"`
	Launch    bool   `gorm:"not null;default:false"`
	Lab1      bool   `gorm:"not null;default:false"`
	Lab2      bool   `gorm:"not null;default:false"`
	Lab3      bool   `gorm:"not null;default:false"`
	Lab4      bool   `gorm:"not null;default:false"`
	Lab5      bool   `gorm:"not null;default:false"`
	Theory1   bool   `gorm:"not null;default:false"`
	Theory2   bool   `gorm:"not null;default:false"`
	Theory3   bool   `gorm:"not null;default:false"`
	Theory4   bool   `gorm:"not null;default:false"`
	Theory5   bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the gorm naming convention.
func (UserProgress) TableName() string {
	return "user_progress"
}

// BotWallet represents the single shared ledger row tracking how many
// payouts the faucet account has left.
type BotWallet struct {
	Wallet    string `gorm:"primaryKey"`
	Balance   int64  `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

// TableName overrides the gorm naming convention.
func (BotWallet) TableName() string {
	return "bot_wallet"
}
