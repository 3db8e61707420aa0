package domain

import (
	"errors"
	"regexp"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits carried by Money.
const MoneyScale = 3

// MaxMoney is the largest amount accepted by the amount grammar (9999999999.999).
const MaxMoney Money = 9_999_999_999_999

var ErrMoneyFormat = errors.New("amount must have at most 10 integer and 3 fractional digits")

// amountPattern accepts 1-10 integer digits with an optional 1-3 digit fraction.
// Signs, exponents and a leading or trailing dot are rejected.
var amountPattern = regexp.MustCompile(`^\d{1,10}(\.\d{1,3})?$`)

// Money is an amount expressed in thousandths of the currency unit.
type Money int64

// ParseMoney parses a decimal string that satisfies the amount grammar.
// Zero is accepted; callers decide whether zero is meaningful.
func ParseMoney(s string) (Money, error) {
	if !amountPattern.MatchString(s) {
		return 0, ErrMoneyFormat
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrMoneyFormat
	}

	return Money(d.Shift(MoneyScale).IntPart()), nil
}

// MoneyFromDecimal converts d to Money. It fails when d carries more than
// three fractional digits or is out of range.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	shifted := d.Shift(MoneyScale)
	if !shifted.IsInteger() || shifted.IsNegative() {
		return 0, ErrMoneyFormat
	}
	if shifted.GreaterThan(decimal.NewFromInt(int64(MaxMoney))) {
		return 0, ErrMoneyFormat
	}

	return Money(shifted.IntPart()), nil
}

func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -MoneyScale)
}

func (m Money) String() string {
	return m.Decimal().StringFixed(MoneyScale)
}

// MarshalJSON renders Money as a JSON number with exactly three decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}
