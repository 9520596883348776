package utils

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var decimalOneHundred = decimal.NewFromInt(100)

// CalculateSplit divides a sale price between the provider (consignor) and the
// shop. The provider amount is salePrice * splitPercentage / 100 rounded to two
// decimals with banker's rounding (round half to even); the shop amount is the
// remainder by subtraction, so the two always add back to the sale price exactly.
//
// Preconditions are programmer errors and panic: salePrice must be >= 0 and
// splitPercentage within [0, 100]. Safe for concurrent use (pure function).
func CalculateSplit(salePrice decimal.Decimal, splitPercentage decimal.Decimal) (providerAmount decimal.Decimal, shopAmount decimal.Decimal) {
	if salePrice.IsNegative() {
		panic(fmt.Sprintf("CalculateSplit: negative sale price %s", salePrice))
	}
	if splitPercentage.IsNegative() || splitPercentage.GreaterThan(decimalOneHundred) {
		panic(fmt.Sprintf("CalculateSplit: split percentage %s out of [0,100]", splitPercentage))
	}

	providerAmount = salePrice.Mul(splitPercentage).Div(decimalOneHundred).RoundBank(2)
	shopAmount = salePrice.Sub(providerAmount)
	return providerAmount, shopAmount
}
