package ledger

import (
	"testing"
	"time"

	"dealerbook/backend/internal/domain"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func sale(date, dealer, product string, qty int, rate, total float64) domain.Transaction {
	return domain.Transaction{
		Date: date, Type: domain.TypeSale, Dealer: dealer, Product: product,
		Quantity: domain.FlexInt(qty), Rate: domain.FlexFloat(rate), TotalAmount: domain.FlexFloat(total),
	}
}

func payment(date, dealer string, amount float64) domain.Transaction {
	return domain.Transaction{
		Date: date, Type: domain.TypePayment, Dealer: dealer, Amount: domain.FlexFloat(amount),
	}
}

func TestContributionSaleUsesStoredTotal(t *testing.T) {
	// A sale whose stored total disagrees with qty x rate still credits the
	// stored figure; only returns recompute.
	s := sale("2026-01-01", "Acme", "Urea", 10, 100, 950)
	credit, debit := Contribution(s, "Acme")
	if credit != 950 || debit != 0 {
		t.Fatalf("sale contribution = (%v, %v), want (950, 0)", credit, debit)
	}
}

func TestContributionReturnRecomputes(t *testing.T) {
	r := domain.Transaction{
		Date: "2026-01-05", Type: domain.TypeReturn, Dealer: "Acme", Product: "Urea",
		Quantity: domain.FlexInt(3), Rate: domain.FlexFloat(100), TotalAmount: domain.FlexFloat(999),
	}
	credit, debit := Contribution(r, "Acme")
	if credit != 0 || debit != 300 {
		t.Fatalf("return contribution = (%v, %v), want (0, 300)", credit, debit)
	}
}

func TestContributionTransferSides(t *testing.T) {
	tr := domain.Transaction{
		Date: "2026-01-10", Type: domain.TypeTransfer,
		SourceDealer: "Acme", DestinationDealer: "Beta", Product: "Urea",
		Quantity: domain.FlexInt(5), Rate: domain.FlexFloat(50),
	}

	if credit, debit := Contribution(tr, "acme "); credit != 0 || debit != 250 {
		t.Fatalf("source contribution = (%v, %v), want (0, 250)", credit, debit)
	}
	if credit, debit := Contribution(tr, "Beta"); credit != 250 || debit != 0 {
		t.Fatalf("destination contribution = (%v, %v), want (250, 0)", credit, debit)
	}
	if credit, debit := Contribution(tr, "Gamma"); credit != 0 || debit != 0 {
		t.Fatalf("bystander contribution = (%v, %v), want (0, 0)", credit, debit)
	}
}

func TestContributionSelfTransferIsNoOp(t *testing.T) {
	tr := domain.Transaction{
		Date: "2026-01-10", Type: domain.TypeTransfer,
		SourceDealer: "Acme", DestinationDealer: " ACME ", Product: "Urea",
		Quantity: domain.FlexInt(5), Rate: domain.FlexFloat(50),
	}
	if credit, debit := Contribution(tr, "Acme"); credit != 0 || debit != 0 {
		t.Fatalf("self-transfer contribution = (%v, %v), want (0, 0)", credit, debit)
	}
}

func TestContributionCarryForwardIsNoOp(t *testing.T) {
	cf := domain.Transaction{
		Date: "2026-01-01", Type: domain.TypeCarryForward, Dealer: "Acme",
		Amount: domain.FlexFloat(5000), TotalAmount: domain.FlexFloat(5000),
	}
	if credit, debit := Contribution(cf, "Acme"); credit != 0 || debit != 0 {
		t.Fatalf("carry forward contribution = (%v, %v), want (0, 0)", credit, debit)
	}
}

func TestBuildLedgerRunningBalance(t *testing.T) {
	txs := []domain.Transaction{
		payment("2026-01-12", "Acme", 600),
		sale("2026-01-05", "Acme", "Urea", 10, 100, 1000),
	}

	rows := BuildLedger(txs, "Acme", domain.Filter{}, testNow, nil)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Type != domain.TypeSale {
		t.Fatalf("expected date-ascending order, first row is %s", rows[0].Type)
	}
	if rows[0].Balance != 1000 {
		t.Fatalf("balance after sale = %v, want 1000", rows[0].Balance)
	}
	if rows[1].Balance != 400 {
		t.Fatalf("balance after payment = %v, want 400", rows[1].Balance)
	}

	var credits, debits float64
	for _, r := range rows {
		credits += r.Credit
		debits += r.Debit
	}
	if got := credits - debits; got != rows[len(rows)-1].Balance {
		t.Fatalf("final balance %v != credits-debits %v", rows[len(rows)-1].Balance, got)
	}
}

func TestBuildLedgerIncludesInboundTransfers(t *testing.T) {
	txs := []domain.Transaction{
		sale("2026-01-05", "Acme", "Urea", 10, 100, 1000),
		{
			Date: "2026-01-20", Type: domain.TypeTransfer,
			SourceDealer: "Acme", DestinationDealer: "Beta", Product: "Urea",
			Quantity: domain.FlexInt(2), Rate: domain.FlexFloat(100),
		},
	}

	rows := BuildLedger(txs, "Beta", domain.Filter{}, testNow, nil)
	if len(rows) != 1 {
		t.Fatalf("expected the inbound transfer only, got %d rows", len(rows))
	}
	if rows[0].Credit != 200 || rows[0].Balance != 200 {
		t.Fatalf("inbound transfer row = credit %v balance %v, want 200/200", rows[0].Credit, rows[0].Balance)
	}
}

func TestSortByDateKeepsSameDayOrder(t *testing.T) {
	txs := []domain.Transaction{
		{ID: "a", Date: "2026-01-05", Type: domain.TypeSale},
		{ID: "b", Date: "2026-01-05", Type: domain.TypePayment},
		{ID: "c", Date: "2026-01-01", Type: domain.TypeSale},
	}
	sorted := SortByDate(txs)
	if sorted[0].ID != "c" || sorted[1].ID != "a" || sorted[2].ID != "b" {
		t.Fatalf("unexpected order: %s %s %s", sorted[0].ID, sorted[1].ID, sorted[2].ID)
	}
	if txs[0].ID != "a" {
		t.Fatalf("input slice was reordered")
	}
}

func TestDescribeResolvesProductLabel(t *testing.T) {
	products := []domain.Product{{Name: "Urea", Size: "50", Unit: "kg"}}

	s := sale("2026-01-01", "Acme", "Urea", 10, 100, 1000)
	if got := Describe(s, products); got != "Urea - 50kg" {
		t.Fatalf("sale description = %q", got)
	}

	// Unknown product falls back to the stored name, never errors.
	s.Product = "DAP"
	if got := Describe(s, products); got != "DAP" {
		t.Fatalf("unknown product description = %q", got)
	}

	s.Product = ""
	if got := Describe(s, products); got != "-" {
		t.Fatalf("empty product description = %q", got)
	}
}

func TestDescribePaymentModes(t *testing.T) {
	products := []domain.Product{}

	p := payment("2026-01-01", "Acme", 100)
	p.PaymentMode = domain.ModeBankTransfer
	p.BankAccount = "Main Current - MCB"
	if got := Describe(p, products); got != "Main Current - MCB" {
		t.Fatalf("bank payment description = %q", got)
	}

	p.PaymentMode = domain.ModeCash
	p.Description = "cash at office"
	if got := Describe(p, products); got != "cash at office" {
		t.Fatalf("cash payment description = %q", got)
	}
}

func TestSameDealerFoldsCaseAndSpace(t *testing.T) {
	if !SameDealer("  Acme Traders ", "acme traders") {
		t.Fatalf("expected names to match")
	}
	if SameDealer("", "") {
		t.Fatalf("empty names must never match")
	}
}
