package ledger

import (
	"github.com/basecamplabs/basecamp/business/core/ledger/db"
)

// Milestone identifies a single curriculum progress flag.
type Milestone string

// The closed set of milestones a caller can report. Addressing anything
// outside this set is a caller bug surfaced as ErrUnknownMilestone.
const (
	MilestoneFaucet  Milestone = "faucet"
	MilestoneSend    Milestone = "send"
	MilestoneReceive Milestone = "receive"
	MilestoneMint    Milestone = "mint"
	MilestoneLaunch  Milestone = "launch"
	MilestoneLab1    Milestone = "lab1"
	MilestoneLab2    Milestone = "lab2"
	MilestoneLab3    Milestone = "lab3"
	MilestoneLab4    Milestone = "lab4"
	MilestoneLab5    Milestone = "lab5"
	MilestoneTheory1 Milestone = "theory1"
	MilestoneTheory2 Milestone = "theory2"
	MilestoneTheory3 Milestone = "theory3"
	MilestoneTheory4 Milestone = "theory4"
	MilestoneTheory5 Milestone = "theory5"
)

// milestoneColumns maps each milestone to its progress table column.
var milestoneColumns = map[Milestone]string{
	MilestoneFaucet:  "faucet",
	MilestoneSend:    "send",
	MilestoneReceive: "receive",
	MilestoneMint:    "mint",
	MilestoneLaunch:  "launch",
	MilestoneLab1:    "lab1",
	MilestoneLab2:    "lab2",
	MilestoneLab3:    "lab3",
	MilestoneLab4:    "lab4",
	MilestoneLab5:    "lab5",
	MilestoneTheory1: "theory1",
	MilestoneTheory2: "theory2",
	MilestoneTheory3: "theory3",
	MilestoneTheory4: "theory4",
	MilestoneTheory5: "theory5",
}

// ParseMilestone converts an external field name into a milestone from the
// closed set.
func ParseMilestone(field string) (Milestone, error) {
	m := Milestone(field)
	if _, exists := milestoneColumns[m]; !exists {
		return "", ErrUnknownMilestone
	}

	return m, nil
}

// Category identifies a derived completion flag.
type Category string

// The set of categories whose completion is derived from milestones.
const (
	CategoryPractice Category = "practice"
	CategoryTheory   Category = "theory"
	CategorySecurity Category = "security"
)

// categoryColumns maps each category to its info table column.
var categoryColumns = map[Category]string{
	CategoryPractice: "completed_practice",
	CategoryTheory:   "completed_theory",
	CategorySecurity: "completed_security",
}

// User represents the accounting counters and completion flags for a wallet.
type User struct {
	Wallet            string `json:"wallet"`
	PracticeSent      int    `json:"practice_sent"`
	PracticeReceived  int    `json:"practice_received"`
	FaucetClaimed     bool   `json:"faucet_claimed"`
	CompletedPractice bool   `json:"completed_practice"`
	CompletedTheory   bool   `json:"completed_theory"`
	CompletedSecurity bool   `json:"completed_security"`
	CompletedAll      bool   `json:"completed_all"`
}

// Progress represents the raw milestone flags for a wallet.
type Progress map[Milestone]bool

// =============================================================================

func toUser(info db.UserInfo) User {
	return User{
		Wallet:            info.Wallet,
		PracticeSent:      info.PracticeSent,
		PracticeReceived:  info.PracticeReceived,
		FaucetClaimed:     info.FaucetClaimed,
		CompletedPractice: info.CompletedPractice,
		CompletedTheory:   info.CompletedTheory,
		CompletedSecurity: info.CompletedSecurity,
		CompletedAll:      info.CompletedAll,
	}
}

func toProgress(dbPrg db.UserProgress) Progress {
	return Progress{
		MilestoneFaucet:  dbPrg.Faucet,
		MilestoneSend:    dbPrg.Send,
		MilestoneReceive: dbPrg.Receive,
		MilestoneMint:    dbPrg.Mint,
		MilestoneLaunch:  dbPrg.Launch,
		MilestoneLab1:    dbPrg.Lab1,
		MilestoneLab2:    dbPrg.Lab2,
		MilestoneLab3:    dbPrg.Lab3,
		MilestoneLab4:    dbPrg.Lab4,
		MilestoneLab5:    dbPrg.Lab5,
		MilestoneTheory1: dbPrg.Theory1,
		MilestoneTheory2: dbPrg.Theory2,
		MilestoneTheory3: dbPrg.Theory3,
		MilestoneTheory4: dbPrg.Theory4,
		MilestoneTheory5: dbPrg.Theory5,
	}
}
