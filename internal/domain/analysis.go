package domain

import "fmt"

var (
	hundred      = NewDecimalFromInt(100)
	daysInYear   = NewDecimalFromInt(365)
	one          = NewDecimalFromInt(1)
	resultPlaces = int32(2)
)

// PortfolioAnalysis summarizes one user's holdings.
type PortfolioAnalysis struct {
	AverageInterestRate Decimal `json:"average_interest_rate"`
	NearestMaturityBond *string `json:"nearest_maturity_bond"`
	TotalValue          Decimal `json:"total_value"`
	FutureValue         Decimal `json:"future_value"`
}

// FutureValue projects value with simple interest up to maturity:
// value * (1 + rate/100 * days/365). Past maturities shrink the value.
func FutureValue(value, interestRate Decimal, maturity, today Date) (Decimal, error) {
	days := NewDecimalFromInt(today.DaysUntil(maturity))

	years, err := days.Div(daysInYear)
	if err != nil {
		return Zero, err
	}
	rate, err := interestRate.Div(hundred)
	if err != nil {
		return Zero, err
	}
	growth, err := rate.Mul(years)
	if err != nil {
		return Zero, err
	}
	factor, err := one.Add(growth)
	if err != nil {
		return Zero, err
	}
	return value.Mul(factor)
}

// AnalyzePortfolio computes the average interest rate, the bond with the
// nearest maturity, the total value and the summed future value. An empty
// portfolio yields zeros and no nearest bond.
func AnalyzePortfolio(bonds []Bond, today Date) (PortfolioAnalysis, error) {
	analysis := PortfolioAnalysis{
		AverageInterestRate: Zero,
		TotalValue:          Zero,
		FutureValue:         Zero,
	}
	if len(bonds) == 0 {
		return analysis, nil
	}

	rateSum := Zero
	total := Zero
	future := Zero
	nearest := 0
	var err error

	for i := range bonds {
		b := &bonds[i]
		if rateSum, err = rateSum.Add(b.InterestRate); err != nil {
			return analysis, fmt.Errorf("summing interest rates: %w", err)
		}
		if total, err = total.Add(b.TotalValue); err != nil {
			return analysis, fmt.Errorf("summing total value: %w", err)
		}

		fv, err := FutureValue(b.TotalValue, b.InterestRate, b.MaturityDate, today)
		if err != nil {
			return analysis, fmt.Errorf("future value of bond %s: %w", b.ID, err)
		}
		if future, err = future.Add(fv); err != nil {
			return analysis, fmt.Errorf("summing future value: %w", err)
		}

		if b.MaturityDate.Before(bonds[nearest].MaturityDate) {
			nearest = i
		}
	}

	average, err := rateSum.Div(NewDecimalFromInt(int64(len(bonds))))
	if err != nil {
		return analysis, fmt.Errorf("averaging interest rates: %w", err)
	}

	if analysis.AverageInterestRate, err = average.Round(resultPlaces); err != nil {
		return analysis, err
	}
	if analysis.TotalValue, err = total.Round(resultPlaces); err != nil {
		return analysis, err
	}
	if analysis.FutureValue, err = future.Round(resultPlaces); err != nil {
		return analysis, err
	}
	name := bonds[nearest].IssueName
	analysis.NearestMaturityBond = &name

	return analysis, nil
}
