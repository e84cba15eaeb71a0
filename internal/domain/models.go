package domain

import "time"

// Transaction is the central record of the book: a tagged union keyed by
// Type. Only the fields relevant to a given type are populated; the JSON
// field names match the snapshot format produced by the legacy browser app,
// so existing stored arrays load unchanged.
type Transaction struct {
	ID                string    `json:"id,omitempty"`
	Date              string    `json:"date"`
	Type              string    `json:"type"`
	Dealer            string    `json:"dealer,omitempty"`
	SourceDealer      string    `json:"sourceDealer,omitempty"`
	DestinationDealer string    `json:"destinationDealer,omitempty"`
	Product           string    `json:"product,omitempty"`
	Quantity          FlexInt   `json:"quantity,omitempty"`
	Rate              FlexFloat `json:"rate,omitempty"`
	TotalAmount       FlexFloat `json:"totalAmount,omitempty"`
	Amount            FlexFloat `json:"amount,omitempty"`
	PaymentMode       string    `json:"paymentMode,omitempty"`
	BankAccount       string    `json:"bankAccount,omitempty"`
	TransactionID     string    `json:"transactionId,omitempty"`
	SlipNumber        string    `json:"slipNumber,omitempty"`
	BankSlipNumber    string    `json:"bankSlipNumber,omitempty"`
	CheqNumber        string    `json:"cheqNumber,omitempty"`
	ReceiverName      string    `json:"receiverName,omitempty"`
	AccountTitle      string    `json:"accountTitle,omitempty"`
	AdjustIn          string    `json:"adjustIn,omitempty"`
	PaidBy            string    `json:"paidBy,omitempty"`
	PaidByDealer      string    `json:"paidByDealer,omitempty"`
	Warehouse         string    `json:"warehouse,omitempty"`
	BiltyNumber       string    `json:"biltyNumber,omitempty"`
	CarryForwardYear  string    `json:"carryForwardYear,omitempty"`
	Description       string    `json:"description,omitempty"`
}

// Source returns the dealer a Transfer moves stock out of. Older records
// carry it in sourceDealer rather than dealer, so both are honoured.
func (t Transaction) Source() string {
	if t.Dealer != "" {
		return t.Dealer
	}
	return t.SourceDealer
}

type Dealer struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
}

type Product struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Size     string `json:"size,omitempty"`
	Unit     string `json:"unit,omitempty"`
	Category string `json:"category,omitempty"`
}

// Label is the display form used in ledgers and exports: "name - size+unit"
// when both size and unit are present, the bare name otherwise.
func (p Product) Label() string {
	if p.Size != "" && p.Unit != "" {
		return p.Name + " - " + p.Size + p.Unit
	}
	return p.Name
}

type BankAccount struct {
	ID              string `json:"id,omitempty"`
	AccountTitle    string `json:"accountTitle"`
	AccountNumber   string `json:"accountNumber,omitempty"`
	Bank            string `json:"bank,omitempty"`
	AccountWithBank string `json:"accountWithBank,omitempty"`
}

const (
	TypeSale         = "Sale"
	TypePayment      = "Payment"
	TypeReturn       = "Return"
	TypeCartage      = "Cartage"
	TypeTransfer     = "Transfer"
	TypeCarryForward = "Carry Forward"
)

const (
	ModeBankTransfer = "Bank Transfer"
	ModeNetBanking   = "Net Banking"
	ModeThirdParty   = "Third Party"
	ModeCheq         = "Cheq"
	ModeCash         = "Cash"
	ModeAdjustment   = "Adjustment"
)

const (
	PaidByCompany = "Company"
	PaidByDealer  = "Dealer"
)

// Date-range presets accepted by Filter.
const (
	RangeAllTime   = "allTime"
	RangeToday     = "today"
	RangeYesterday = "yesterday"
	RangeThisWeek  = "thisWeek"
	RangeThisMonth = "thisMonth"
	RangeThisYear  = "thisYear"
	RangeCustom    = "custom"
)

// Filter narrows a transaction selection. Zero values ("" / "all") leave the
// corresponding dimension unfiltered. PaymentChannel matches the bank account
// of a Payment or dealer-paid Cartage, or the receiver name of a
// Cheq/Cash/Adjustment payment.
type Filter struct {
	DateRange      string    `json:"dateRange,omitempty"`
	From           time.Time `json:"from,omitempty"`
	To             time.Time `json:"to,omitempty"`
	Dealer         string    `json:"dealer,omitempty"`
	Type           string    `json:"type,omitempty"`
	Product        string    `json:"product,omitempty"`
	PaymentChannel string    `json:"paymentChannel,omitempty"`
}

// LedgerRow is one line of a dealer's ledger: the transaction plus its signed
// contribution and the running balance after it.
type LedgerRow struct {
	Transaction
	DisplayDescription string  `json:"displayDescription"`
	Credit             float64 `json:"credit"`
	Debit              float64 `json:"debit"`
	Balance            float64 `json:"balance"`
}

// Summary is the card-level aggregate block shown on the dashboard and on a
// dealer's ledger page.
type Summary struct {
	TotalSales         float64 `json:"totalSales"`
	TotalPayments      float64 `json:"totalPayments"`
	TotalReturns       float64 `json:"totalReturns"`
	Outstanding        float64 `json:"outstanding"`
	PaymentPercent     float64 `json:"paymentPercent"`
	OutstandingPercent float64 `json:"outstandingPercent"`
	GrossUnitsSold     int     `json:"grossUnitsSold"`
	UnitsReturned      int     `json:"unitsReturned"`
	NetUnitsSold       int     `json:"netUnitsSold"`
}

type DealerLedger struct {
	Dealer  Dealer      `json:"dealer"`
	Summary Summary     `json:"summary"`
	Rows    []LedgerRow `json:"rows"`
}

// DealerStanding is one row of the dealer directory: the dealer plus their
// dealer-scoped totals under the active filter.
type DealerStanding struct {
	Dealer      Dealer  `json:"dealer"`
	Sales       float64 `json:"sales"`
	Payments    float64 `json:"payments"`
	Returns     float64 `json:"returns"`
	Outstanding float64 `json:"outstanding"`
}

type DealerDirectory struct {
	Dealers []DealerStanding `json:"dealers"`
	Summary Summary          `json:"summary"`
}

// PaymentGroup aggregates payments landing in one bank account or with one
// receiver.
type PaymentGroup struct {
	Name          string  `json:"name"`
	AccountNumber string  `json:"accountNumber,omitempty"`
	Amount        float64 `json:"amount"`
}

// PaymentsReport breaks the payment stream down by channel, mirroring the
// payments overview page.
type PaymentsReport struct {
	TotalPayments   float64        `json:"totalPayments"`
	CompanyAccounts float64        `json:"companyAccounts"`
	Person          float64        `json:"person"`
	ThirdParty      float64        `json:"thirdParty"`
	Adjustments     float64        `json:"adjustments"`
	Groups          []PaymentGroup `json:"groups"`
	Transactions    []Transaction  `json:"transactions"`
}

// CartageReport lists cartage records under the active filter with the
// total split by who bore the cost.
type CartageReport struct {
	Total        float64       `json:"total"`
	CompanyPaid  float64       `json:"companyPaid"`
	DealerPaid   float64       `json:"dealerPaid"`
	Transactions []Transaction `json:"transactions"`
}

type AvailableUnits struct {
	Dealer    string `json:"dealer"`
	Product   string `json:"product"`
	Available int    `json:"available"`
}
