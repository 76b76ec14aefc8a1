/*
Package rewards holds the point policies of the loyalty program.

PURPOSE:
  Keeps the tunable business numbers out of the conversation engine:
  - RedemptionPolicy: per-operation bound on how many points staff may
    redeem in one go
  - EarnPolicy: conversion from a purchase total to points, for staff
    deciding how many points a purchase is worth

PRECISION:
  Purchase totals are money, so the earn conversion runs on
  decimal.Decimal and floors to whole points. Balances themselves are
  always integers.

SEE ALSO:
  - dialog/engine.go: Applies RedemptionPolicy at the redeem step
  - api/handlers.go: Exposes the earn conversion as a quote endpoint
*/
package rewards

import (
	"github.com/shopspring/decimal"

	"github.com/roastery/loyaltybot/loyalty"
)

// =============================================================================
// REDEMPTION POLICY
// =============================================================================

// RedemptionPolicy bounds a single redemption operation.
type RedemptionPolicy struct {
	Max int64
}

// DefaultRedemption mirrors the shop's standing rule: at most 30 points
// per redemption.
var DefaultRedemption = RedemptionPolicy{Max: 30}

// Validate checks a requested redemption amount against the bound.
func (p RedemptionPolicy) Validate(amount int64) error {
	if amount < 1 || amount > p.Max {
		return &loyalty.AmountRangeError{Amount: amount, Min: 1, Max: p.Max}
	}
	return nil
}

// =============================================================================
// EARN POLICY
// =============================================================================

// EarnPolicy converts a purchase total into points: floor(total * Rate).
type EarnPolicy struct {
	Rate decimal.Decimal // points per currency unit
}

// NewEarnPolicy parses the rate from its config string form. An
// unparseable or negative rate yields a zero policy (no points earned).
func NewEarnPolicy(rate string) EarnPolicy {
	r, err := decimal.NewFromString(rate)
	if err != nil || r.IsNegative() {
		return EarnPolicy{Rate: decimal.Zero}
	}
	return EarnPolicy{Rate: r}
}

// PointsForPurchase returns the whole points a purchase total earns.
// Negative totals earn nothing.
func (p EarnPolicy) PointsForPurchase(total decimal.Decimal) int64 {
	if total.IsNegative() {
		return 0
	}
	return total.Mul(p.Rate).Floor().IntPart()
}
