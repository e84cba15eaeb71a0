package ledger

import (
	"sort"
	"time"

	"dealerbook/backend/internal/domain"
)

// PaymentsBreakdown builds the payments overview: only Payment transactions,
// filtered, grouped by the account or person the money landed with, plus
// per-channel totals (company bank accounts, cash/cheq receivers, third
// parties, adjustments).
func PaymentsBreakdown(txs []domain.Transaction, f domain.Filter, now time.Time, accounts []domain.BankAccount) domain.PaymentsReport {
	report := domain.PaymentsReport{Transactions: []domain.Transaction{}}
	groups := make(map[string]*domain.PaymentGroup)

	for _, t := range ApplyFilter(txs, f, now) {
		if t.Type != domain.TypePayment {
			continue
		}
		amount := t.Amount.Value()
		report.TotalPayments += amount
		report.Transactions = append(report.Transactions, t)

		switch t.PaymentMode {
		case domain.ModeBankTransfer, domain.ModeNetBanking:
			if t.BankAccount != "" {
				report.CompanyAccounts += amount
			}
		case domain.ModeCash, domain.ModeCheq:
			report.Person += amount
		case domain.ModeThirdParty:
			report.ThirdParty += amount
		case domain.ModeAdjustment:
			report.Adjustments += amount
		}

		key := groupKey(t)
		g, ok := groups[key]
		if !ok {
			g = &domain.PaymentGroup{Name: key, AccountNumber: accountNumber(key, accounts)}
			groups[key] = g
		}
		g.Amount += amount
	}

	report.Groups = make([]domain.PaymentGroup, 0, len(groups))
	for _, g := range groups {
		report.Groups = append(report.Groups, *g)
	}
	sort.Slice(report.Groups, func(i, j int) bool {
		if report.Groups[i].Amount == report.Groups[j].Amount {
			return report.Groups[i].Name < report.Groups[j].Name
		}
		return report.Groups[i].Amount > report.Groups[j].Amount
	})
	return report
}

func groupKey(t domain.Transaction) string {
	for _, candidate := range []string{t.BankAccount, t.ReceiverName, t.AccountTitle} {
		if candidate != "" {
			return candidate
		}
	}
	return "Other"
}

func accountNumber(name string, accounts []domain.BankAccount) string {
	for _, a := range accounts {
		if a.AccountWithBank == name || a.AccountTitle == name {
			return a.AccountNumber
		}
	}
	return ""
}
