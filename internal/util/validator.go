package util

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date format used for lease and charge dates.
const DateLayout = "2006-01-02"

var maxAmount = decimal.NewFromInt(10_000_000)

// ValidateAmount requires a positive amount with at most two decimals below the cap.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be positive, got %s", amount)
	}
	if amount.GreaterThanOrEqual(maxAmount) {
		return fmt.Errorf("amount too large, got %s", amount)
	}
	if !amount.Equal(amount.Round(2)) {
		return fmt.Errorf("amount has more than two decimals, got %s", amount)
	}
	return nil
}

// ValidateNonNegative is ValidateAmount for values that may be zero (deposits).
func ValidateNonNegative(amount decimal.Decimal) error {
	if amount.IsZero() {
		return nil
	}
	return ValidateAmount(amount)
}

// ValidateDate requires YYYY-MM-DD.
func ValidateDate(dateStr string) error {
	if dateStr == "" {
		return fmt.Errorf("date is empty")
	}
	_, err := time.Parse(DateLayout, dateStr)
	if err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}
	return nil
}

// ValidateCategory requires a short, non-empty label.
func ValidateCategory(category string) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return fmt.Errorf("category is empty")
	}
	if len(category) > 32 {
		return fmt.Errorf("category too long, max 32 characters")
	}
	return nil
}

// Today returns the current calendar date in DateLayout.
func Today() string {
	return time.Now().Format(DateLayout)
}
