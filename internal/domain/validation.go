package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DateTimeLayout = "2006-01-02T15:04:05"
	DateLayout     = "2006-01-02"
)

var (
	dateTimePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}$`)
	datePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	idPattern       = regexp.MustCompile(`^\d{1,18}$`)
	mobilePattern   = regexp.MustCompile(`^[7-9][0-9]{9}$`)
	emailPattern    = regexp.MustCompile(`^([a-zA-Z\d.-]+)@([a-zA-Z\d-]+)\.([a-zA-Z]{2,8})(\.[a-zA-Z]{2,8})?$`)
)

// ParseExpenseDateTime parses a YYYY-MM-DDTHH:mm:ss timestamp as UTC and
// rejects values later than now.
func ParseExpenseDateTime(s string, now time.Time) (time.Time, error) {
	if !dateTimePattern.MatchString(s) {
		return time.Time{}, ErrInvalidDateTimeFormat
	}

	t, err := time.ParseInLocation(DateTimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidDateTimeValue
	}

	if t.After(now) {
		return time.Time{}, ErrFutureDateTimeNotAllowed
	}

	return t, nil
}

// ParseFilterDate parses a YYYY-MM-DD query date. Dates after the UTC day of
// now are rejected.
func ParseFilterDate(s string, now time.Time) (time.Time, error) {
	if !datePattern.MatchString(s) {
		return time.Time{}, ErrInvalidDateFormat
	}

	d, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidDateValue
	}

	today := now.UTC().Truncate(24 * time.Hour)
	if d.After(today) {
		return time.Time{}, ErrFutureDateNotAllowed
	}

	return d, nil
}

// ParseID parses a positive decimal identifier. Leading zeros are allowed.
func ParseID(s string) (int64, bool) {
	if !idPattern.MatchString(s) {
		return 0, false
	}

	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}

	return id, true
}

// ParsePercentage parses a split percentage in (0, 100].
func ParsePercentage(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, ErrInvalidSplitPercentage
	}

	if !d.IsPositive() || d.GreaterThan(hundred) {
		return decimal.Zero, ErrInvalidSplitPercentage
	}

	return d, nil
}

func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

func ValidateMobileNumber(mobile string) error {
	if !mobilePattern.MatchString(mobile) {
		return ErrInvalidMobileNumber
	}
	return nil
}
