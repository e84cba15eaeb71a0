package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"dealerbook/backend/internal/domain"
	"dealerbook/backend/internal/store"
	"dealerbook/backend/internal/store/memory"
)

func newTestService() *Service {
	svc := New(memory.New())
	svc.now = func() time.Time {
		return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func seedBook(t *testing.T, svc *Service) {
	t.Helper()
	ctx := context.Background()

	if _, err := svc.CreateDealer(ctx, domain.Dealer{Name: "Acme Traders"}); err != nil {
		t.Fatalf("seed dealer: %v", err)
	}
	if _, err := svc.CreateDealer(ctx, domain.Dealer{Name: "Beta Agro"}); err != nil {
		t.Fatalf("seed dealer: %v", err)
	}
	if _, err := svc.CreateProduct(ctx, domain.Product{Name: "Urea", Size: "50", Unit: "kg"}); err != nil {
		t.Fatalf("seed product: %v", err)
	}

	for _, tx := range []domain.Transaction{
		{
			Date: "2026-01-05", Type: domain.TypeSale, Dealer: "Acme Traders", Product: "Urea",
			Quantity: domain.FlexInt(10), Rate: domain.FlexFloat(100), TotalAmount: domain.FlexFloat(1000),
		},
		{
			Date: "2026-01-12", Type: domain.TypePayment, Dealer: "Acme Traders",
			Amount: domain.FlexFloat(600), PaymentMode: domain.ModeCash,
		},
	} {
		if _, _, err := svc.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("seed transaction: %v", err)
		}
	}
}

func TestCreateTransactionAssignsID(t *testing.T) {
	svc := newTestService()
	seedBook(t, svc)

	txs, err := svc.ListTransactions(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}
	for _, tx := range txs {
		if tx.ID == "" {
			t.Fatalf("transaction stored without id: %+v", tx)
		}
	}
}

func TestCreateTransactionRejectsUnknownType(t *testing.T) {
	svc := newTestService()

	_, _, err := svc.CreateTransaction(context.Background(), domain.Transaction{
		Date: "2026-01-01", Type: "Loan", Dealer: "Acme Traders",
	})
	if !errors.Is(err, store.ErrInvalidRecord) {
		t.Fatalf("expected invalid record error, got %v", err)
	}
}

func TestCreateTransactionRejectsSelfTransfer(t *testing.T) {
	svc := newTestService()

	_, _, err := svc.CreateTransaction(context.Background(), domain.Transaction{
		Date: "2026-01-01", Type: domain.TypeTransfer,
		SourceDealer: "Acme", DestinationDealer: " ACME ",
		Product: "Urea", Quantity: domain.FlexInt(1), Rate: domain.FlexFloat(100),
	})
	if !errors.Is(err, store.ErrInvalidRecord) {
		t.Fatalf("expected self-transfer rejection, got %v", err)
	}
}

func TestCreateReturnClampsQuantity(t *testing.T) {
	svc := newTestService()
	seedBook(t, svc)
	ctx := context.Background()

	created, warning, err := svc.CreateTransaction(ctx, domain.Transaction{
		Date: "2026-02-01", Type: domain.TypeReturn, Dealer: "Acme Traders", Product: "Urea",
		Quantity: domain.FlexInt(25), Rate: domain.FlexFloat(100), TotalAmount: domain.FlexFloat(2500),
	})
	if err != nil {
		t.Fatalf("create return: %v", err)
	}
	if warning == "" {
		t.Fatalf("expected a clamp warning")
	}
	if created.Quantity.Value() != 10 {
		t.Fatalf("quantity = %d, want clamped to 10", created.Quantity.Value())
	}
	if created.TotalAmount.Value() != 1000 {
		t.Fatalf("total = %v, want recomputed 1000", created.TotalAmount.Value())
	}
}

func TestCreateTransferClampsAgainstSourceHolding(t *testing.T) {
	svc := newTestService()
	seedBook(t, svc)
	ctx := context.Background()

	created, warning, err := svc.CreateTransaction(ctx, domain.Transaction{
		Date: "2026-02-01", Type: domain.TypeTransfer,
		SourceDealer: "Beta Agro", DestinationDealer: "Acme Traders",
		Product: "Urea", Quantity: domain.FlexInt(5), Rate: domain.FlexFloat(100),
	})
	if err != nil {
		t.Fatalf("create transfer: %v", err)
	}
	// Beta holds nothing, so the transfer collapses to zero units.
	if warning == "" || created.Quantity.Value() != 0 {
		t.Fatalf("transfer from empty holding: qty=%d warning=%q", created.Quantity.Value(), warning)
	}
}

func TestListTransactionsBackfillsIDs(t *testing.T) {
	snap := memory.New()
	ctx := context.Background()
	if err := snap.SaveTransactions(ctx, []domain.Transaction{
		{Date: "2026-01-05", Type: domain.TypeSale, Dealer: "Acme", TotalAmount: domain.FlexFloat(100)},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	svc := New(snap)
	txs, err := svc.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if txs[0].ID == "" {
		t.Fatalf("id not backfilled")
	}

	// The repaired id must be persisted, not regenerated on each read.
	again, err := svc.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("second list: %v", err)
	}
	if again[0].ID != txs[0].ID {
		t.Fatalf("backfilled id changed between reads: %q vs %q", txs[0].ID, again[0].ID)
	}
}

func TestListTransactionsFilteredUsesServiceClock(t *testing.T) {
	svc := newTestService()
	seedBook(t, svc)
	ctx := context.Background()

	// The service clock is pinned to 2026-03-15; both seed rows are in
	// January, so a relative preset anchored to that clock excludes them.
	txs, err := svc.ListTransactionsFiltered(ctx, domain.Filter{DateRange: domain.RangeThisMonth})
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if len(txs) != 0 {
		t.Fatalf("expected no transactions in the clock's month, got %d", len(txs))
	}

	svc.now = func() time.Time {
		return time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC)
	}
	txs, err = svc.ListTransactionsFiltered(ctx, domain.Filter{DateRange: domain.RangeThisMonth})
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected both January rows, got %d", len(txs))
	}
}

func TestUpdateAndDeleteTransaction(t *testing.T) {
	svc := newTestService()
	seedBook(t, svc)
	ctx := context.Background()

	txs, _ := svc.ListTransactions(ctx)
	target := txs[0]

	target.TotalAmount = domain.FlexFloat(1500)
	updated, err := svc.UpdateTransaction(ctx, target.ID, target)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.TotalAmount.Value() != 1500 || updated.ID != target.ID {
		t.Fatalf("update result: %+v", updated)
	}

	if err := svc.DeleteTransaction(ctx, target.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DeleteTransaction(ctx, target.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("second delete should be not found, got %v", err)
	}

	if _, err := svc.UpdateTransaction(ctx, "missing", target); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("update of missing id should be not found, got %v", err)
	}
}

func TestCreateDealerRejectsDuplicateName(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.CreateDealer(ctx, domain.Dealer{Name: "Acme Traders"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.CreateDealer(ctx, domain.Dealer{Name: "  acme traders "})
	if !errors.Is(err, store.ErrInvalidRecord) {
		t.Fatalf("expected duplicate rejection, got %v", err)
	}
}

func TestDealerLedger(t *testing.T) {
	svc := newTestService()
	seedBook(t, svc)
	ctx := context.Background()

	dl, err := svc.DealerLedger(ctx, " ACME traders ", domain.Filter{})
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	if dl.Dealer.Name != "Acme Traders" {
		t.Fatalf("resolved dealer = %q", dl.Dealer.Name)
	}
	if len(dl.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(dl.Rows))
	}
	if dl.Rows[1].Balance != 400 {
		t.Fatalf("final balance = %v, want 400", dl.Rows[1].Balance)
	}
	if dl.Summary.Outstanding != 400 {
		t.Fatalf("summary outstanding = %v, want 400", dl.Summary.Outstanding)
	}
	if !strings.Contains(dl.Rows[0].DisplayDescription, "Urea") {
		t.Fatalf("sale description not resolved: %q", dl.Rows[0].DisplayDescription)
	}
}

func TestDealerLedgerUnknownDealer(t *testing.T) {
	svc := newTestService()
	seedBook(t, svc)

	_, err := svc.DealerLedger(context.Background(), "Nobody", domain.Filter{})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDealerDirectoryOrdersByOutstanding(t *testing.T) {
	svc := newTestService()
	seedBook(t, svc)
	ctx := context.Background()

	if _, _, err := svc.CreateTransaction(ctx, domain.Transaction{
		Date: "2026-01-06", Type: domain.TypeSale, Dealer: "Beta Agro", Product: "Urea",
		Quantity: domain.FlexInt(20), Rate: domain.FlexFloat(100), TotalAmount: domain.FlexFloat(2000),
	}); err != nil {
		t.Fatalf("seed beta sale: %v", err)
	}

	dir, err := svc.DealerDirectory(ctx, domain.Filter{})
	if err != nil {
		t.Fatalf("directory: %v", err)
	}
	if len(dir.Dealers) != 2 {
		t.Fatalf("expected 2 dealers, got %d", len(dir.Dealers))
	}
	if dir.Dealers[0].Dealer.Name != "Beta Agro" || dir.Dealers[0].Outstanding != 2000 {
		t.Fatalf("top standing = %+v", dir.Dealers[0])
	}
	if dir.Dealers[1].Outstanding != 400 {
		t.Fatalf("second standing = %+v", dir.Dealers[1])
	}
	if dir.Summary.TotalSales != 3000 {
		t.Fatalf("business sales = %v, want 3000", dir.Summary.TotalSales)
	}
}

func TestCartageRecords(t *testing.T) {
	svc := newTestService()
	seedBook(t, svc)
	ctx := context.Background()

	for _, tx := range []domain.Transaction{
		{Date: "2026-01-15", Type: domain.TypeCartage, Dealer: "Acme Traders", Amount: domain.FlexFloat(50), PaidBy: domain.PaidByCompany, BiltyNumber: "BLT-1"},
		{Date: "2026-01-16", Type: domain.TypeCartage, Dealer: "Beta Agro", Amount: domain.FlexFloat(30), PaidBy: domain.PaidByDealer, BiltyNumber: "BLT-2"},
	} {
		if _, _, err := svc.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("seed cartage: %v", err)
		}
	}

	report, err := svc.CartageRecords(ctx, domain.Filter{})
	if err != nil {
		t.Fatalf("cartage: %v", err)
	}
	if report.Total != 80 || report.CompanyPaid != 50 || report.DealerPaid != 30 {
		t.Fatalf("cartage totals = %+v", report)
	}
	if len(report.Transactions) != 2 {
		t.Fatalf("expected 2 cartage rows, got %d", len(report.Transactions))
	}
}

func TestAvailableUnitsIgnoresFilter(t *testing.T) {
	svc := newTestService()
	seedBook(t, svc)

	units, err := svc.AvailableUnits(context.Background(), "acme traders", "Urea")
	if err != nil {
		t.Fatalf("available units: %v", err)
	}
	if units.Available != 10 {
		t.Fatalf("available = %d, want 10", units.Available)
	}
}

func TestBusinessSummaryWithDateFilter(t *testing.T) {
	svc := newTestService()
	seedBook(t, svc)

	sum, err := svc.BusinessSummary(context.Background(), domain.Filter{
		DateRange: domain.RangeCustom,
		From:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		To:        time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	// The payment on the 12th falls outside the window.
	if sum.TotalSales != 1000 || sum.TotalPayments != 0 {
		t.Fatalf("windowed summary = %+v", sum)
	}
}
