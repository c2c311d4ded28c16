// Package pricing computes subscription order amounts.
//
// A subscription month is priced as a fixed 30 delivery days. Gateway
// amounts are denominated in paise, rounded half-up from the rupee total.
package pricing

import (
	"github.com/shopspring/decimal"

	pkgerrors "github.com/milkoapp/milko-backend/pkg/errors"
)

// DaysPerMonth is the billing approximation of a subscription month.
const DaysPerMonth = 30

var paiseFactor = decimal.NewFromInt(100)

// Quote is the priced breakdown of a subscription order.
type Quote struct {
	PricePerLitre decimal.Decimal
	LitresPerDay  decimal.Decimal
	TotalDays     int
	AmountRupees  decimal.Decimal
	AmountPaise   int64
}

// ComputeQuote prices a subscription: price per litre times litres per
// day times 30 days per month of duration.
func ComputeQuote(pricePerLitre, litresPerDay decimal.Decimal, durationMonths int) (*Quote, error) {
	if pricePerLitre.Sign() <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price per litre must be positive")
	}
	if litresPerDay.Sign() <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "litres per day must be positive")
	}
	if durationMonths <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "duration months must be positive")
	}

	totalDays := durationMonths * DaysPerMonth
	rupees := pricePerLitre.Mul(litresPerDay).Mul(decimal.NewFromInt(int64(totalDays)))
	paise := rupees.Mul(paiseFactor).Round(0)

	return &Quote{
		PricePerLitre: pricePerLitre,
		LitresPerDay:  litresPerDay,
		TotalDays:     totalDays,
		AmountRupees:  rupees,
		AmountPaise:   paise.IntPart(),
	}, nil
}
