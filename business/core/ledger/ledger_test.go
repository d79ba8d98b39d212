package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/basecamplabs/basecamp/business/core/ledger"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

const wallet = "0xEEEEEEEEEEEEEEEEEEEEEEEEEEEEEEEEEEEEEEEE"

// =============================================================================

func newTestCore(t *testing.T) ledger.Core {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("accessing test database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	core := ledger.NewCore(zap.NewNop().Sugar(), db)
	if err := core.Migrate(); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	return core
}

// =============================================================================

func Test_Onboarding(t *testing.T) {
	ctx := context.Background()

	t.Log("Given the need to manage wallet records.")
	{
		t.Logf("\tTest 0:\tWhen onboarding a new wallet.")
		{
			core := newTestCore(t)

			if err := core.Onboard(ctx, wallet); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to onboard: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to onboard.", success)

			user, err := core.User(ctx, wallet)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to read the wallet back: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to read the wallet back.", success)

			if user.Wallet != ledger.Normalize(wallet) {
				t.Fatalf("\t%s\tTest 0:\tShould store the wallet lower-cased, got %q.", failed, user.Wallet)
			}
			t.Logf("\t%s\tTest 0:\tShould store the wallet lower-cased.", success)

			prg, err := core.Progress(ctx, wallet)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould have a progress record as well: %v", failed, err)
			}
			for m, v := range prg {
				if v {
					t.Fatalf("\t%s\tTest 0:\tShould start with milestone %s false.", failed, m)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould start with every milestone false.", success)
		}

		t.Logf("\tTest 1:\tWhen onboarding the same wallet twice.")
		{
			core := newTestCore(t)

			if err := core.Onboard(ctx, wallet); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to onboard: %v", failed, err)
			}

			// Casing variants address the same record.
			err := core.Onboard(ctx, "0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee")
			if !errors.Is(err, ledger.ErrExists) {
				t.Fatalf("\t%s\tTest 1:\tShould reject the duplicate with ErrExists: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould reject the duplicate with ErrExists.", success)
		}

		t.Logf("\tTest 2:\tWhen querying an unknown wallet.")
		{
			core := newTestCore(t)

			if _, err := core.User(ctx, wallet); !errors.Is(err, ledger.ErrNotFound) {
				t.Fatalf("\t%s\tTest 2:\tShould come back with ErrNotFound: %v", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould come back with ErrNotFound.", success)
		}

		t.Logf("\tTest 3:\tWhen removing a wallet.")
		{
			core := newTestCore(t)

			if err := core.Onboard(ctx, wallet); err != nil {
				t.Fatalf("\t%s\tTest 3:\tShould be able to onboard: %v", failed, err)
			}

			if err := core.Remove(ctx, wallet); err != nil {
				t.Fatalf("\t%s\tTest 3:\tShould be able to remove the wallet: %v", failed, err)
			}
			t.Logf("\t%s\tTest 3:\tShould be able to remove the wallet.", success)

			if _, err := core.User(ctx, wallet); !errors.Is(err, ledger.ErrNotFound) {
				t.Fatalf("\t%s\tTest 3:\tShould not find the wallet afterwards: %v", failed, err)
			}
			t.Logf("\t%s\tTest 3:\tShould not find the wallet afterwards.", success)
		}
	}
}

func Test_Milestones(t *testing.T) {
	ctx := context.Background()

	t.Log("Given the need to track milestone flags.")
	{
		t.Logf("\tTest 0:\tWhen setting and clearing a milestone.")
		{
			core := newTestCore(t)

			if err := core.Onboard(ctx, wallet); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to onboard: %v", failed, err)
			}

			if err := core.SetMilestone(ctx, wallet, ledger.MilestoneMint, true); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to set a milestone: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to set a milestone.", success)

			prg, err := core.Progress(ctx, wallet)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to read the milestones: %v", failed, err)
			}
			if !prg[ledger.MilestoneMint] {
				t.Fatalf("\t%s\tTest 0:\tShould read the milestone back as true.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould read the milestone back as true.", success)

			if err := core.SetMilestone(ctx, wallet, ledger.MilestoneMint, false); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to clear a milestone: %v", failed, err)
			}

			prg, err = core.Progress(ctx, wallet)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to read the milestones: %v", failed, err)
			}
			if prg[ledger.MilestoneMint] {
				t.Fatalf("\t%s\tTest 0:\tShould read the milestone back as false.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould read the milestone back as false.", success)
		}

		t.Logf("\tTest 1:\tWhen addressing a milestone outside the set.")
		{
			core := newTestCore(t)

			err := core.SetMilestone(ctx, wallet, ledger.Milestone("drop table"), true)
			if !errors.Is(err, ledger.ErrUnknownMilestone) {
				t.Fatalf("\t%s\tTest 1:\tShould reject with ErrUnknownMilestone: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould reject with ErrUnknownMilestone.", success)
		}

		t.Logf("\tTest 2:\tWhen setting a milestone for an unknown wallet.")
		{
			core := newTestCore(t)

			err := core.SetMilestone(ctx, wallet, ledger.MilestoneMint, true)
			if !errors.Is(err, ledger.ErrNotFound) {
				t.Fatalf("\t%s\tTest 2:\tShould reject with ErrNotFound: %v", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould reject with ErrNotFound.", success)
		}
	}
}

func Test_BotWallet(t *testing.T) {
	ctx := context.Background()

	t.Log("Given the need to account for the shared bot wallet.")
	{
		t.Logf("\tTest 0:\tWhen reserving and releasing funds.")
		{
			core := newTestCore(t)

			if err := core.EnsureBot(ctx, 2); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to seed the bot wallet: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to seed the bot wallet.", success)

			// Seeding again must not reset the balance.
			if err := core.EnsureBot(ctx, 50); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to call the seed again: %v", failed, err)
			}
			bal, err := core.BotBalance(ctx)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to read the balance: %v", failed, err)
			}
			if bal != 2 {
				t.Fatalf("\t%s\tTest 0:\tShould have kept the original balance, got %d.", failed, bal)
			}
			t.Logf("\t%s\tTest 0:\tShould have kept the original balance.", success)

			if err := core.ReserveBotFunds(ctx); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to reserve funds: %v", failed, err)
			}
			if err := core.ReserveBotFunds(ctx); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to reserve funds twice: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to reserve funds twice.", success)

			if err := core.ReserveBotFunds(ctx); !errors.Is(err, ledger.ErrInsufficientBalance) {
				t.Fatalf("\t%s\tTest 0:\tShould reject a reservation at zero: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould reject a reservation at zero.", success)

			if err := core.ReleaseBotFunds(ctx); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to release funds: %v", failed, err)
			}

			bal, err = core.BotBalance(ctx)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to read the balance: %v", failed, err)
			}
			if bal != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould have a balance of 1 after the release, got %d.", failed, bal)
			}
			t.Logf("\t%s\tTest 0:\tShould have a balance of 1 after the release.", success)
		}

		t.Logf("\tTest 1:\tWhen committing a disbursement.")
		{
			core := newTestCore(t)

			if err := core.Onboard(ctx, wallet); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to onboard: %v", failed, err)
			}

			if err := core.CommitDisbursement(ctx, wallet); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to commit the bookkeeping: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould be able to commit the bookkeeping.", success)

			user, err := core.User(ctx, wallet)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to read the wallet: %v", failed, err)
			}
			if !user.FaucetClaimed || user.PracticeReceived != 1 {
				t.Fatalf("\t%s\tTest 1:\tShould have the claim flag and counter together, got claimed=%v received=%d.",
					failed, user.FaucetClaimed, user.PracticeReceived)
			}
			t.Logf("\t%s\tTest 1:\tShould have the claim flag and counter together.", success)
		}
	}
}
