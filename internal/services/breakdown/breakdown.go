// Package breakdown computes what a trade is worth: gross value at the desk rate,
// the service charge and the amount payable.
package breakdown

import (
	"errors"

	"tradedesk/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
	ErrInvalidQuantity = errors.New("quantity must not be negative")
	ErrInvalidRate     = errors.New("rate must be greater than zero")
	ErrInvalidCharge   = errors.New("charge percent must be between 0 and 100")
	ErrInvalidSide     = errors.New("side must be buy or sell")
	ErrNothingPayable  = errors.New("payable amount must be greater than zero")
)

// FiatPlaces is the precision of every fiat value in a breakdown.
const FiatPlaces = 2

var hundred = decimal.NewFromInt(100)

type Input struct {
	Side          string
	Amount        decimal.Decimal
	Quantity      int
	Rate          decimal.Decimal
	ChargePercent decimal.Decimal
	ChargeCap     decimal.Decimal
}

type Breakdown struct {
	Side          string          `json:"side"`
	Amount        decimal.Decimal `json:"amount"`
	Quantity      int             `json:"quantity"`
	Rate          decimal.Decimal `json:"rate"`
	Gross         decimal.Decimal `json:"gross"`
	ChargePercent decimal.Decimal `json:"charge_percent"`
	ChargeCap     decimal.Decimal `json:"charge_cap"`
	ServiceCharge decimal.Decimal `json:"service_charge"`
	Payable       decimal.Decimal `json:"payable"`
}

// Compute prices a trade. Sells deduct the service charge from the gross value,
// buys add it on top.
func Compute(in Input) (Breakdown, error) {
	if in.Side != models.SideSell && in.Side != models.SideBuy {
		return Breakdown{}, ErrInvalidSide
	}
	if in.Quantity < 0 {
		return Breakdown{}, ErrInvalidQuantity
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if !in.Amount.IsPositive() {
		return Breakdown{}, ErrInvalidAmount
	}
	// Rates and charges are stored as fiat columns.
	in.Rate = in.Rate.Round(FiatPlaces)
	in.ChargeCap = in.ChargeCap.Round(FiatPlaces)
	in.ChargePercent = in.ChargePercent.Round(FiatPlaces)
	if !in.Rate.IsPositive() {
		return Breakdown{}, ErrInvalidRate
	}
	if !ValidCharge(in.ChargePercent) {
		return Breakdown{}, ErrInvalidCharge
	}

	gross := in.Amount.
		Mul(decimal.NewFromInt(int64(in.Quantity))).
		Mul(in.Rate).
		Round(FiatPlaces)

	charge := gross.Mul(in.ChargePercent).Div(hundred).Round(FiatPlaces)
	if in.ChargeCap.IsPositive() && charge.GreaterThan(in.ChargeCap) {
		charge = in.ChargeCap
	}

	payable := gross.Sub(charge)
	if in.Side == models.SideBuy {
		payable = gross.Add(charge)
	}
	if !payable.IsPositive() {
		return Breakdown{}, ErrNothingPayable
	}

	return Breakdown{
		Side:          in.Side,
		Amount:        in.Amount,
		Quantity:      in.Quantity,
		Rate:          in.Rate,
		Gross:         gross,
		ChargePercent: in.ChargePercent,
		ChargeCap:     in.ChargeCap,
		ServiceCharge: charge,
		Payable:       payable,
	}, nil
}

// ValidCharge reports whether p is a usable service charge percentage.
func ValidCharge(p decimal.Decimal) bool {
	return !p.IsNegative() && p.LessThan(hundred)
}

// Recompute prices a partial approval: same side, quantity and charge, reviewed
// amount and optionally a different rate.
func Recompute(b Breakdown, amount decimal.Decimal, rate *decimal.Decimal) (Breakdown, error) {
	in := Input{
		Side:          b.Side,
		Amount:        amount,
		Quantity:      b.Quantity,
		Rate:          b.Rate,
		ChargePercent: b.ChargePercent,
		ChargeCap:     b.ChargeCap,
	}
	if rate != nil {
		in.Rate = *rate
	}
	return Compute(in)
}
