package ledger

import "dealerbook/backend/internal/domain"

// Units tracks net inventory units per dealer per product across the FULL
// transaction history: sales add, returns subtract, transfers move units
// from source to destination. It backs the entry-form clamping for Return
// and Transfer quantities.
type Units struct {
	held map[string]map[string]int
}

// NewUnits folds the complete, unfiltered history. Filtered views must not
// be used here: availability is a property of the whole record set.
func NewUnits(txs []domain.Transaction) *Units {
	u := &Units{held: make(map[string]map[string]int)}
	for _, t := range txs {
		switch t.Type {
		case domain.TypeSale:
			u.add(t.Dealer, t.Product, t.Quantity.Value())
		case domain.TypeReturn:
			u.add(t.Dealer, t.Product, -t.Quantity.Value())
		case domain.TypeTransfer:
			u.add(t.Source(), t.Product, -t.Quantity.Value())
			u.add(t.DestinationDealer, t.Product, t.Quantity.Value())
		}
	}
	return u
}

func (u *Units) add(dealer, product string, qty int) {
	d := Norm(dealer)
	if d == "" || product == "" {
		return
	}
	if u.held[d] == nil {
		u.held[d] = make(map[string]int)
	}
	u.held[d][product] += qty
}

// Raw returns the true fold result, which can be negative when the history
// is inconsistent. Subsequent arithmetic must run on this value so errors
// do not compound silently.
func (u *Units) Raw(dealer, product string) int {
	return u.held[Norm(dealer)][product]
}

// Available is the entry-form view of Raw: never negative.
func (u *Units) Available(dealer, product string) int {
	if n := u.Raw(dealer, product); n > 0 {
		return n
	}
	return 0
}

// Clamp limits a requested Return/Transfer quantity to what the dealer
// holds. The second return is true when the request was reduced.
func (u *Units) Clamp(dealer, product string, requested int) (int, bool) {
	available := u.Available(dealer, product)
	if requested > available {
		return available, true
	}
	return requested, false
}
