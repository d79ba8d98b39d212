// Package progress implements the completion engine. Category and overall
// completion flags are derived from the raw milestone values on every
// update and only ever transition from false to true.
package progress

import (
	"context"
	"errors"
	"fmt"

	"github.com/basecamplabs/basecamp/business/core/ledger"
	"go.uber.org/zap"
)

// ErrUnknownDirection is returned when a transfer report carries a
// direction outside the known set.
var ErrUnknownDirection = errors.New("unknown transfer direction")

// Direction identifies which way a confirmed practice transfer moved.
type Direction string

// The set of transfer directions.
const (
	DirectionSent     Direction = "sent"
	DirectionReceived Direction = "received"
)

// The fixed milestone sets behind each category. A category completes when
// every milestone in its set is true.
var (
	practiceSet = []ledger.Milestone{
		ledger.MilestoneFaucet,
		ledger.MilestoneSend,
		ledger.MilestoneReceive,
		ledger.MilestoneMint,
		ledger.MilestoneLaunch,
	}
	securitySet = []ledger.Milestone{
		ledger.MilestoneLab1,
		ledger.MilestoneLab2,
		ledger.MilestoneLab3,
		ledger.MilestoneLab4,
		ledger.MilestoneLab5,
	}
	theorySet = []ledger.Milestone{
		ledger.MilestoneTheory1,
		ledger.MilestoneTheory2,
		ledger.MilestoneTheory3,
		ledger.MilestoneTheory4,
		ledger.MilestoneTheory5,
	}
)

// EventHandler is a function the engine uses to publish activity.
type EventHandler func(v string, args ...any)

// Core manages the derivation of completion state from milestones.
type Core struct {
	log    *zap.SugaredLogger
	ledger ledger.Core
	ev     EventHandler
}

// NewCore constructs a core for progress api access.
func NewCore(log *zap.SugaredLogger, lgr ledger.Core, ev EventHandler) *Core {
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	return &Core{
		log:    log,
		ledger: lgr,
		ev:     ev,
	}
}

// ReportMilestone updates a single milestone flag and re-derives the
// completion state for the wallet.
func (c *Core) ReportMilestone(ctx context.Context, wallet string, milestone ledger.Milestone, value bool) error {
	if err := c.ledger.SetMilestone(ctx, wallet, milestone, value); err != nil {
		return fmt.Errorf("setting milestone %s: %w", milestone, err)
	}

	return c.ReevaluateCompletion(ctx, wallet)
}

// RecordTransfer books one confirmed practice transfer for the wallet: the
// matching counter increments, the matching milestone is set and the
// completion state is re-derived.
func (c *Core) RecordTransfer(ctx context.Context, wallet string, direction Direction) error {
	switch direction {
	case DirectionSent:
		if err := c.ledger.AddPracticeSent(ctx, wallet); err != nil {
			return fmt.Errorf("recording sent transfer: %w", err)
		}
		return c.ReportMilestone(ctx, wallet, ledger.MilestoneSend, true)

	case DirectionReceived:
		if err := c.ledger.AddPracticeReceived(ctx, wallet); err != nil {
			return fmt.Errorf("recording received transfer: %w", err)
		}
		return c.ReportMilestone(ctx, wallet, ledger.MilestoneReceive, true)
	}

	return ErrUnknownDirection
}

// ReevaluateCompletion derives the category and overall completion flags
// from the current milestone values. Flags only transition from false to
// true; nothing here ever clears one. The call succeeds when the reads
// succeed, even if an individual flag write fails.
func (c *Core) ReevaluateCompletion(ctx context.Context, wallet string) error {
	prg, err := c.ledger.Progress(ctx, wallet)
	if err != nil {
		return fmt.Errorf("reading progress: %w", err)
	}

	user, err := c.ledger.User(ctx, wallet)
	if err != nil {
		return fmt.Errorf("reading completion: %w", err)
	}

	practice := c.evalCategory(ctx, wallet, ledger.CategoryPractice, user.CompletedPractice, practiceSet, prg)
	security := c.evalCategory(ctx, wallet, ledger.CategorySecurity, user.CompletedSecurity, securitySet, prg)
	theory := c.evalCategory(ctx, wallet, ledger.CategoryTheory, user.CompletedTheory, theorySet, prg)

	if !user.CompletedAll && practice && security && theory {
		if err := c.ledger.SetCompletedAll(ctx, wallet); err != nil {
			c.log.Errorw("progress: failed to write completed_all", "wallet", wallet, "ERROR", err)
			return nil
		}
		c.ev("progress: %s completed the whole curriculum", wallet)
	}

	return nil
}

// =============================================================================

// evalCategory returns whether the category is complete after this pass.
// An already true flag stays true regardless of the current milestones.
func (c *Core) evalCategory(ctx context.Context, wallet string, category ledger.Category, done bool, set []ledger.Milestone, prg ledger.Progress) bool {
	if done {
		return true
	}

	for _, m := range set {
		if !prg[m] {
			return false
		}
	}

	// A failed write must not stop the evaluation of the remaining
	// categories, but it does leave this one incomplete for now.
	if err := c.ledger.SetCompletion(ctx, wallet, category); err != nil {
		c.log.Errorw("progress: failed to write completion flag",
			"wallet", wallet, "category", category, "ERROR", err)
		return false
	}

	c.ev("progress: %s completed the %s track", wallet, category)

	return true
}
