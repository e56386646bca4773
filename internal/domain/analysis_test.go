package domain

import (
	"testing"
	"time"
)

func analysisBond(name, value, rate string, maturity Date) Bond {
	return Bond{
		IssueName:    name,
		TotalValue:   mustDecimalFromString(value),
		InterestRate: mustDecimalFromString(rate),
		MaturityDate: maturity,
	}
}

func TestFutureValue(t *testing.T) {
	today := NewDate(2024, time.January, 1)

	testCases := []struct {
		name     string
		value    string
		rate     string
		maturity Date
		expected string
	}{
		{"one year at five percent", "1000", "5", NewDate(2024, time.December, 31), "1050.00"},
		{"matures today", "1000", "5", today, "1000.00"},
		{"zero rate", "1000", "0", NewDate(2030, time.January, 1), "1000.00"},
		{"already matured", "1000", "5", NewDate(2023, time.January, 1), "950.00"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fv, err := FutureValue(mustDecimalFromString(tc.value), mustDecimalFromString(tc.rate), tc.maturity, today)
			if err != nil {
				t.Fatalf("FutureValue failed: %v", err)
			}
			rounded, err := fv.Round(2)
			if err != nil {
				t.Fatalf("Round failed: %v", err)
			}
			if rounded.String() != tc.expected {
				t.Errorf("expected %s, got %s", tc.expected, rounded.String())
			}
		})
	}
}

func TestFutureValue_DistantMaturity(t *testing.T) {
	today := NewDate(2026, time.October, 19)

	fv, err := FutureValue(NewDecimalFromInt(1000), NewDecimalFromInt(5), NewDate(2400, time.January, 1), today)
	if err != nil {
		t.Fatalf("FutureValue failed: %v", err)
	}
	rounded, err := fv.Round(2)
	if err != nil {
		t.Fatalf("Round failed: %v", err)
	}
	if rounded.String() != "19672.47" {
		t.Errorf("expected 19672.47, got %s", rounded.String())
	}

	analysis, err := AnalyzePortfolio([]Bond{
		analysisBond("Perpetual-ish", "1000", "5", NewDate(2400, time.January, 1)),
	}, today)
	if err != nil {
		t.Fatalf("AnalyzePortfolio failed: %v", err)
	}
	if analysis.FutureValue.String() != "19672.47" {
		t.Errorf("expected future value 19672.47, got %s", analysis.FutureValue)
	}
}

func TestAnalyzePortfolio_Empty(t *testing.T) {
	analysis, err := AnalyzePortfolio(nil, Today())
	if err != nil {
		t.Fatalf("AnalyzePortfolio failed: %v", err)
	}

	if !analysis.AverageInterestRate.IsZero() {
		t.Errorf("expected zero average rate, got %s", analysis.AverageInterestRate)
	}
	if !analysis.TotalValue.IsZero() {
		t.Errorf("expected zero total, got %s", analysis.TotalValue)
	}
	if !analysis.FutureValue.IsZero() {
		t.Errorf("expected zero future value, got %s", analysis.FutureValue)
	}
	if analysis.NearestMaturityBond != nil {
		t.Errorf("expected no nearest bond, got %q", *analysis.NearestMaturityBond)
	}
}

func TestAnalyzePortfolio(t *testing.T) {
	today := NewDate(2024, time.January, 1)
	bonds := []Bond{
		analysisBond("Long bond", "2000", "4", NewDate(2030, time.June, 1)),
		analysisBond("Short bond", "1000", "5", NewDate(2024, time.December, 31)),
		analysisBond("Same day bond", "500", "3", NewDate(2024, time.December, 31)),
	}

	analysis, err := AnalyzePortfolio(bonds, today)
	if err != nil {
		t.Fatalf("AnalyzePortfolio failed: %v", err)
	}

	if analysis.AverageInterestRate.String() != "4.00" {
		t.Errorf("expected average 4.00, got %s", analysis.AverageInterestRate)
	}
	if analysis.TotalValue.String() != "3500.00" {
		t.Errorf("expected total 3500.00, got %s", analysis.TotalValue)
	}
	if analysis.NearestMaturityBond == nil || *analysis.NearestMaturityBond != "Short bond" {
		t.Errorf("expected the first bond with the earliest maturity, got %v", analysis.NearestMaturityBond)
	}

	// 2000 * (1 + 0.04 * 2343/365) + 1050 + 515
	if analysis.FutureValue.String() != "4078.53" {
		t.Errorf("expected future value 4078.53, got %s", analysis.FutureValue)
	}
}

func TestAnalyzePortfolio_AverageIsRounded(t *testing.T) {
	today := NewDate(2024, time.January, 1)
	bonds := []Bond{
		analysisBond("A", "100", "1", today),
		analysisBond("B", "100", "1", today),
		analysisBond("C", "100", "2", today),
	}

	analysis, err := AnalyzePortfolio(bonds, today)
	if err != nil {
		t.Fatalf("AnalyzePortfolio failed: %v", err)
	}
	if analysis.AverageInterestRate.String() != "1.33" {
		t.Errorf("expected 1.33, got %s", analysis.AverageInterestRate)
	}
}
