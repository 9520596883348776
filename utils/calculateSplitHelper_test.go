package utils

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCalculateSplit(t *testing.T) {
	cases := []struct {
		price    string
		percent  string
		provider string
		shop     string
	}{
		// exact .xx5 midpoint must round half to even, not away from zero
		{"25.75", "30", "7.72", "18.03"},
		{"99.99", "60", "59.99", "40.00"},
		{"150.00", "40", "60.00", "90.00"},
		{"100.00", "50", "50.00", "50.00"},
		{"0.00", "50", "0.00", "0.00"},
		{"10.00", "0", "0.00", "10.00"},
		{"10.00", "100", "10.00", "0.00"},
		{"0.01", "50", "0.00", "0.01"},
		{"33.33", "33.33", "11.11", "22.22"},
	}

	for _, c := range cases {
		provider, shop := CalculateSplit(dec(c.price), dec(c.percent))
		if !provider.Equal(dec(c.provider)) {
			t.Errorf("CalculateSplit(%s, %s) provider = %s, want %s", c.price, c.percent, provider, c.provider)
		}
		if !shop.Equal(dec(c.shop)) {
			t.Errorf("CalculateSplit(%s, %s) shop = %s, want %s", c.price, c.percent, shop, c.shop)
		}
	}
}

// provider + shop must reconstruct the sale price exactly, with no residue,
// for any price/percentage combination.
func TestCalculateSplitSumInvariant(t *testing.T) {
	prices := []string{"0", "0.01", "0.99", "1", "9.99", "25.75", "33.33", "99.99", "100", "1234.56", "99999.99", "100000"}
	percents := []string{"0", "0.01", "12.5", "30", "33.33", "40", "50", "60", "66.67", "99.99", "100"}

	for _, p := range prices {
		for _, pct := range percents {
			price := dec(p)
			provider, shop := CalculateSplit(price, dec(pct))
			if !provider.Add(shop).Equal(price) {
				t.Fatalf("split of %s at %s%%: %s + %s != %s", p, pct, provider, shop, p)
			}
			if provider.IsNegative() || shop.IsNegative() {
				t.Fatalf("split of %s at %s%% produced a negative share (%s / %s)", p, pct, provider, shop)
			}
		}
	}
}

func TestCalculateSplitPanicsOnBadInput(t *testing.T) {
	assertPanics := func(name string, f func()) {
		defer func() {
			if recover() == nil {
				t.Errorf("%s: expected panic", name)
			}
		}()
		f()
	}

	assertPanics("negative price", func() {
		CalculateSplit(dec("-1"), dec("50"))
	})
	assertPanics("percent above 100", func() {
		CalculateSplit(dec("10"), dec("100.01"))
	})
	assertPanics("negative percent", func() {
		CalculateSplit(dec("10"), dec("-0.01"))
	})
}
