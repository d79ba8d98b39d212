package progressgrp

import (
	"github.com/basecamplabs/basecamp/business/core/ledger"
	"github.com/basecamplabs/basecamp/foundation/validate"
)

type newUser struct {
	Wallet string `json:"wallet" validate:"required"`
}

// Validate checks the payload against the declared rules.
func (n newUser) Validate() error {
	return validate.Check(n)
}

type milestoneReport struct {
	Wallet    string `json:"wallet" validate:"required"`
	Milestone string `json:"milestone" validate:"required"`
	Value     bool   `json:"value"`
}

// Validate checks the payload against the declared rules.
func (m milestoneReport) Validate() error {
	return validate.Check(m)
}

type transferReport struct {
	Wallet    string `json:"wallet" validate:"required"`
	Direction string `json:"direction" validate:"required,oneof=sent received"`
}

// Validate checks the payload against the declared rules.
func (t transferReport) Validate() error {
	return validate.Check(t)
}

type userResponse struct {
	User     ledger.User              `json:"user"`
	Progress map[ledger.Milestone]bool `json:"progress"`
}
