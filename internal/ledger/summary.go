package ledger

import (
	"math"
	"time"

	"dealerbook/backend/internal/domain"
)

// The two summary scopes intentionally disagree, faithfully to the book's
// historical behaviour. Dealer scope folds Returns and Cartage into the
// payments figure and recomputes Return value as quantity x rate;
// business scope keeps Returns as their stored totalAmount in a separate
// bucket and subtracts them from the outstanding figure. See DESIGN.md.

// DealerSummary aggregates an already-selected, already-filtered dealer
// transaction set from the viewpoint of that dealer.
func DealerSummary(txs []domain.Transaction, dealer string) domain.Summary {
	var s domain.Summary
	for _, t := range txs {
		credit, debit := Contribution(t, dealer)
		switch t.Type {
		case domain.TypeSale:
			s.TotalSales += credit
			s.GrossUnitsSold += t.Quantity.Value()
		case domain.TypePayment, domain.TypeCartage:
			s.TotalPayments += debit
		case domain.TypeReturn:
			s.TotalPayments += debit
			s.TotalReturns += debit
			s.UnitsReturned += t.Quantity.Value()
		case domain.TypeTransfer:
			s.TotalSales += credit
			s.TotalPayments += debit
		}
	}
	s.Outstanding = s.TotalSales - s.TotalPayments
	s.NetUnitsSold = s.GrossUnitsSold - s.UnitsReturned
	finishPercentages(&s)
	return s
}

// BusinessSummary aggregates the whole book under a filter: the dashboard
// figures. Transfers cancel out business-wide and are excluded; company-paid
// cartage counts as sales, dealer-paid cartage as payments.
func BusinessSummary(txs []domain.Transaction, f domain.Filter, now time.Time) domain.Summary {
	var s domain.Summary
	for _, t := range ApplyFilter(txs, f, now) {
		switch t.Type {
		case domain.TypeSale:
			s.TotalSales += t.TotalAmount.Value()
			s.GrossUnitsSold += t.Quantity.Value()
		case domain.TypePayment:
			s.TotalPayments += t.Amount.Value()
		case domain.TypeCartage:
			switch t.PaidBy {
			case domain.PaidByCompany:
				s.TotalSales += t.Amount.Value()
			case domain.PaidByDealer:
				s.TotalPayments += t.Amount.Value()
			}
		case domain.TypeReturn:
			s.TotalReturns += t.TotalAmount.Value()
			s.UnitsReturned += t.Quantity.Value()
		}
	}
	s.Outstanding = s.TotalSales - s.TotalPayments - s.TotalReturns
	s.NetUnitsSold = s.GrossUnitsSold - s.UnitsReturned
	finishPercentages(&s)
	return s
}

func finishPercentages(s *domain.Summary) {
	s.PaymentPercent = Percent(s.TotalPayments, s.TotalSales)
	s.OutstandingPercent = Percent(s.Outstanding, s.TotalSales)
}

// Percent returns part/whole as a percentage rounded to one decimal, and 0
// when the whole is not positive.
func Percent(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return math.Round(part/whole*1000) / 10
}
