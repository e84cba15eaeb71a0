package ledger

import (
	"testing"

	"dealerbook/backend/internal/domain"
)

func TestUnitsFold(t *testing.T) {
	txs := []domain.Transaction{
		sale("2026-01-01", "Acme", "Urea", 5, 100, 500),
		{
			Date: "2026-01-10", Type: domain.TypeReturn, Dealer: "Acme", Product: "Urea",
			Quantity: domain.FlexInt(2), Rate: domain.FlexFloat(100),
		},
		{
			Date: "2026-01-20", Type: domain.TypeTransfer,
			SourceDealer: "Acme", DestinationDealer: "Beta", Product: "Urea",
			Quantity: domain.FlexInt(3), Rate: domain.FlexFloat(100),
		},
	}
	u := NewUnits(txs)

	if got := u.Available("Acme", "Urea"); got != 0 {
		t.Fatalf("Acme available = %d, want 0 after 5-2-3", got)
	}
	if got := u.Available("Beta", "Urea"); got != 3 {
		t.Fatalf("Beta available = %d, want 3", got)
	}
}

func TestUnitsNegativeHistoryClampsToZero(t *testing.T) {
	txs := []domain.Transaction{
		sale("2026-01-01", "Acme", "Urea", 2, 100, 200),
		{
			Date: "2026-01-10", Type: domain.TypeReturn, Dealer: "Acme", Product: "Urea",
			Quantity: domain.FlexInt(5), Rate: domain.FlexFloat(100),
		},
	}
	u := NewUnits(txs)

	if got := u.Raw("Acme", "Urea"); got != -3 {
		t.Fatalf("Raw = %d, want -3", got)
	}
	if got := u.Available("Acme", "Urea"); got != 0 {
		t.Fatalf("Available = %d, want 0", got)
	}
}

func TestUnitsClamp(t *testing.T) {
	u := NewUnits([]domain.Transaction{
		sale("2026-01-01", "Acme", "Urea", 4, 100, 400),
	})

	if got, adjusted := u.Clamp("Acme", "Urea", 10); got != 4 || !adjusted {
		t.Fatalf("Clamp(10) = (%d, %v), want (4, true)", got, adjusted)
	}
	if got, adjusted := u.Clamp("Acme", "Urea", 4); got != 4 || adjusted {
		t.Fatalf("Clamp(4) = (%d, %v), want (4, false)", got, adjusted)
	}
	if got, adjusted := u.Clamp("Acme", "DAP", 1); got != 0 || !adjusted {
		t.Fatalf("Clamp on unheld product = (%d, %v), want (0, true)", got, adjusted)
	}
}

func TestUnitsIgnoresBlankDealerOrProduct(t *testing.T) {
	u := NewUnits([]domain.Transaction{
		sale("2026-01-01", "  ", "Urea", 5, 100, 500),
		sale("2026-01-01", "Acme", "", 5, 100, 500),
	})
	if got := u.Available("", "Urea"); got != 0 {
		t.Fatalf("blank dealer accumulated %d units", got)
	}
	if got := u.Available("Acme", ""); got != 0 {
		t.Fatalf("blank product accumulated %d units", got)
	}
}
