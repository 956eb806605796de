package coinremitter

import (
	"context"
	"errors"
	"github.com/shopspring/decimal"
	"strings"
)

var ErrUnsupportedCurrency = errors.New("unsupported currency")

// RateSource prices one unit of coin in the fiat currency.
type RateSource interface {
	Rate(ctx context.Context, coin, fiat string) (decimal.Decimal, error)
}

type StaticRates map[string]map[string]decimal.Decimal

// DefaultRates are the demo USD quotes.
func DefaultRates() StaticRates {
	return StaticRates{
		"USD": {
			"BTC":  decimal.NewFromInt(65000),
			"ETH":  decimal.NewFromInt(3500),
			"LTC":  decimal.NewFromInt(80),
			"DOGE": decimal.RequireFromString("0.15"),
			"USDT": decimal.NewFromInt(1),
		},
	}
}

func (r StaticRates) Rate(_ context.Context, coin, fiat string) (decimal.Decimal, error) {
	byCoin, ok := r[strings.ToUpper(fiat)]
	if !ok {
		return decimal.Zero, ErrUnsupportedCurrency
	}
	rate, ok := byCoin[strings.ToUpper(coin)]
	if !ok || !rate.IsPositive() {
		return decimal.Zero, ErrUnsupportedCurrency
	}
	return rate, nil
}

// CryptoPrecision is the number of decimal places quoted on invoices.
const CryptoPrecision = 8

func convert(fiat, rate decimal.Decimal) decimal.Decimal {
	return fiat.DivRound(rate, CryptoPrecision)
}
