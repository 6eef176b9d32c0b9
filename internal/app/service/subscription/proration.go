package subscription

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrNoCommitmentRemaining = errors.New("subscription has no committed months remaining")

// MonthsRemaining counts the unused committed months at the given instant.
// A partially elapsed month counts as remaining: the commitment is owed in
// whole months, so fractions round up against the buyer.
func MonthsRemaining(billingAnchor time.Time, committedMonths int, now time.Time) int {
	if committedMonths <= 0 {
		return 0
	}
	commitmentEnd := billingAnchor.AddDate(0, committedMonths, 0)
	if !now.Before(commitmentEnd) {
		return 0
	}
	if now.Before(billingAnchor) {
		return committedMonths
	}

	remaining := 0
	for m := committedMonths - 1; m >= 0; m-- {
		if now.Before(billingAnchor.AddDate(0, m+1, 0)) {
			remaining++
		} else {
			break
		}
	}
	return remaining
}

// ProratedAmountDue is the fee owed for the remaining committed months:
// monthsRemaining x monthlyPrice, computed exactly in minor units.
func ProratedAmountDue(monthlyPrice int64, monthsRemaining int) int64 {
	if monthsRemaining <= 0 || monthlyPrice <= 0 {
		return 0
	}
	return decimal.NewFromInt(monthlyPrice).
		Mul(decimal.NewFromInt(int64(monthsRemaining))).
		IntPart()
}
