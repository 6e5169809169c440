package util

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateAmount_Positive(t *testing.T) {
	testCases := []string{"0.01", "1", "100.5", "1200", "9999999.99"}

	for _, s := range testCases {
		if err := ValidateAmount(decimal.RequireFromString(s)); err != nil {
			t.Errorf("ValidateAmount(%s) error = %v, want nil", s, err)
		}
	}
}

func TestValidateAmount_Zero(t *testing.T) {
	if err := ValidateAmount(decimal.Zero); err == nil {
		t.Error("ValidateAmount(0) error = nil, want error")
	}
}

func TestValidateAmount_Negative(t *testing.T) {
	testCases := []string{"-0.01", "-100", "-9999.99"}

	for _, s := range testCases {
		if err := ValidateAmount(decimal.RequireFromString(s)); err == nil {
			t.Errorf("ValidateAmount(%s) error = nil, want error", s)
		}
	}
}

func TestValidateAmount_TooLarge(t *testing.T) {
	if err := ValidateAmount(decimal.NewFromInt(100000000)); err == nil {
		t.Error("ValidateAmount(100000000) error = nil, want error")
	}
}

func TestValidateAmount_TooPrecise(t *testing.T) {
	if err := ValidateAmount(decimal.RequireFromString("10.005")); err == nil {
		t.Error("ValidateAmount(10.005) error = nil, want error")
	}
}

func TestValidateNonNegative(t *testing.T) {
	if err := ValidateNonNegative(decimal.Zero); err != nil {
		t.Errorf("ValidateNonNegative(0) error = %v, want nil", err)
	}
	if err := ValidateNonNegative(decimal.NewFromInt(-1)); err == nil {
		t.Error("ValidateNonNegative(-1) error = nil, want error")
	}
}

func TestValidateDate_Valid(t *testing.T) {
	testCases := []string{
		"2024-01-01",
		"2024-12-31",
		"2026-01-05",
	}

	for _, date := range testCases {
		if err := ValidateDate(date); err != nil {
			t.Errorf("ValidateDate(%q) error = %v, want nil", date, err)
		}
	}
}

func TestValidateDate_InvalidFormat(t *testing.T) {
	testCases := []string{
		"",
		"2024/01/01",
		"01-01-2024",
		"2024-1-1",
		"not-a-date",
		"2024-13-01",
		"2024-01-32",
	}

	for _, date := range testCases {
		if err := ValidateDate(date); err == nil {
			t.Errorf("ValidateDate(%q) error = nil, want error", date)
		}
	}
}

func TestValidateCategory_Valid(t *testing.T) {
	testCases := []string{"rent", "utilities", "late fee", "parking", "deposit"}

	for _, category := range testCases {
		if err := ValidateCategory(category); err != nil {
			t.Errorf("ValidateCategory(%q) error = %v, want nil", category, err)
		}
	}
}

func TestValidateCategory_Empty(t *testing.T) {
	if err := ValidateCategory("   "); err == nil {
		t.Error("ValidateCategory(blank) error = nil, want error")
	}
}

func TestValidateCategory_TooLong(t *testing.T) {
	if err := ValidateCategory("a category label that is much longer than allowed"); err == nil {
		t.Error("ValidateCategory() with long string error = nil, want error")
	}
}
