// Package export renders a dealer ledger as an xlsx workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"dealerbook/backend/internal/domain"
)

const sheet = "Ledger"

var columns = []string{"Date", "Type", "Description", "Mode", "TID", "Quantity", "Rate", "Debit", "Credit", "Balance"}

// WriteLedger writes the workbook: four summary lines, a blank row, then the
// ledger table. Payment modes are shortened the way the printed ledgers
// always showed them.
func WriteLedger(w io.Writer, dl domain.DealerLedger) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetCellValue(sheet, "A1", "Dealer")
	f.SetCellValue(sheet, "B1", dl.Dealer.Name)
	f.SetCellValue(sheet, "A2", "Total Sales")
	f.SetCellValue(sheet, "B2", dl.Summary.TotalSales)
	f.SetCellValue(sheet, "A3", "Total Payments")
	f.SetCellValue(sheet, "B3", dl.Summary.TotalPayments)
	f.SetCellValue(sheet, "A4", "Outstanding")
	f.SetCellValue(sheet, "B4", dl.Summary.Outstanding)

	const headerRow = 6
	for i, name := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return err
		}
		f.SetCellValue(sheet, cell, name)
	}

	for i, row := range dl.Rows {
		values := []interface{}{
			row.Date,
			row.Type,
			row.DisplayDescription,
			modeLabel(row.PaymentMode),
			reference(row.Transaction),
			row.Quantity.Value(),
			row.Rate.Value(),
			row.Debit,
			row.Credit,
			row.Balance,
		}
		for j, v := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, headerRow+1+i)
			if err != nil {
				return err
			}
			f.SetCellValue(sheet, cell, v)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func modeLabel(mode string) string {
	switch mode {
	case domain.ModeBankTransfer:
		return "Online"
	case domain.ModeNetBanking:
		return "Net"
	case "":
		return "-"
	default:
		return mode
	}
}

// reference picks the first identifying number a payment carries.
func reference(t domain.Transaction) string {
	for _, v := range []string{t.CheqNumber, t.SlipNumber, t.TransactionID, t.ReceiverName} {
		if v != "" {
			return v
		}
	}
	return "-"
}
