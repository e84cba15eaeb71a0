package ledger

import (
	"time"

	"dealerbook/backend/internal/domain"
)

const dayLayout = "2006-01-02"

// ParseDay reads a stored transaction date. The snapshot format is
// "YYYY-MM-DD"; full timestamps from older records are tolerated. Anything
// unreadable parses to the zero time, which sorts first and never matches a
// bounded range.
func ParseDay(raw string) time.Time {
	if t, err := time.Parse(dayLayout, raw); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	return time.Time{}
}

// ResolveRange turns a filter's date preset into a concrete [from, to] day
// range relative to now. The second return is false for unbounded selections
// (allTime, or a custom preset without both endpoints). Weeks start on
// Sunday, matching the filter options the book always offered.
func ResolveRange(f domain.Filter, now time.Time) (from, to time.Time, bounded bool) {
	day := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	today := day(now)

	switch f.DateRange {
	case domain.RangeToday:
		return today, today, true
	case domain.RangeYesterday:
		y := today.AddDate(0, 0, -1)
		return y, y, true
	case domain.RangeThisWeek:
		start := today.AddDate(0, 0, -int(today.Weekday()))
		return start, start.AddDate(0, 0, 6), true
	case domain.RangeThisMonth:
		start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, -1), true
	case domain.RangeThisYear:
		start := time.Date(today.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
		return start, time.Date(today.Year(), 12, 31, 0, 0, 0, 0, time.UTC), true
	case domain.RangeCustom:
		if f.From.IsZero() || f.To.IsZero() {
			return time.Time{}, time.Time{}, false
		}
		return day(f.From), day(f.To), true
	}
	return time.Time{}, time.Time{}, false
}

// MatchFilter reports whether one transaction passes every dimension of the
// filter. The date comparison is day-granular and inclusive on both ends.
func MatchFilter(t domain.Transaction, f domain.Filter, now time.Time) bool {
	if from, to, bounded := ResolveRange(f, now); bounded {
		d := ParseDay(t.Date)
		if d.Before(from) || d.After(to) {
			return false
		}
	}
	if !wildcard(f.Dealer) && !SameDealer(t.Dealer, f.Dealer) && !SameDealer(t.SourceDealer, f.Dealer) {
		return false
	}
	if !wildcard(f.Type) && t.Type != f.Type {
		return false
	}
	if !wildcard(f.Product) && t.Product != f.Product {
		return false
	}
	if !wildcard(f.PaymentChannel) && !matchChannel(t, f.PaymentChannel) {
		return false
	}
	return true
}

// matchChannel follows the payments filter of the transactions page: a
// Payment matches on its bank account or receiver, a dealer-paid Cartage on
// its bank account.
func matchChannel(t domain.Transaction, channel string) bool {
	switch t.Type {
	case domain.TypePayment:
		return t.BankAccount == channel || t.ReceiverName == channel
	case domain.TypeCartage:
		return t.PaidBy == domain.PaidByDealer && t.BankAccount == channel
	}
	return false
}

// ApplyFilter keeps the matching transactions in input order. The reference
// time anchors the relative presets; callers pass the wall clock.
func ApplyFilter(txs []domain.Transaction, f domain.Filter, now time.Time) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(txs))
	for _, t := range txs {
		if MatchFilter(t, f, now) {
			out = append(out, t)
		}
	}
	return out
}

func wildcard(v string) bool {
	return v == "" || v == "all"
}
