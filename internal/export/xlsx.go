package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/simonvc/ledgercore/internal/ledger"
	"github.com/xuri/excelize/v2"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	TrialBalanceSheet = "Trial Balance"
	BalanceSheetSheet = "Balance Sheet"
)

// sheet writes rows top to bottom on one worksheet.
type sheet struct {
	f      *excelize.File
	name   string
	row    int
	bold   int
	amount int
}

func newWorkbook(name string) (*sheet, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", name); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	format := "#,##0.00;-#,##0.00"
	amount, err := f.NewStyle(&excelize.Style{CustomNumFmt: &format})
	if err != nil {
		return nil, err
	}
	return &sheet{f: f, name: name, bold: bold, amount: amount}, nil
}

// add appends a row. Decimals become numeric cells with the amount format.
func (s *sheet) add(heading bool, values ...any) error {
	s.row++
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, s.row)
		if err != nil {
			return err
		}
		style := 0
		switch x := v.(type) {
		case decimal.Decimal:
			v = x.InexactFloat64()
			style = s.amount
		case ledger.Date:
			v = x.String()
		}
		if err := s.f.SetCellValue(s.name, cell, v); err != nil {
			return err
		}
		if heading {
			style = s.bold
		}
		if style != 0 {
			if err := s.f.SetCellStyle(s.name, cell, cell, style); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *sheet) blank() { s.row++ }

// TrialBalance renders one row per account plus a totals row.
func TrialBalance(tb *ledger.TrialBalance) (*excelize.File, error) {
	s, err := newWorkbook(TrialBalanceSheet)
	if err != nil {
		return nil, err
	}
	if err := s.add(true, "Code", "Account", "Type", "Normal", "Debit", "Credit", "Balance"); err != nil {
		return nil, err
	}
	for _, r := range tb.Rows {
		if err := s.add(false, r.AccountCode, r.AccountName, string(r.AccountType), string(r.NormalBalance), r.Debit, r.Credit, r.Balance); err != nil {
			return nil, err
		}
	}
	if err := s.add(true, "", "Total", "", "", tb.TotalDebit, tb.TotalCredit, ""); err != nil {
		return nil, err
	}
	if !tb.DateTo.IsZero() {
		s.blank()
		if err := s.add(false, "As of", tb.DateTo); err != nil {
			return nil, err
		}
	}
	s.f.SetColWidth(s.name, "B", "B", 36)
	return s.f, nil
}

// BalanceSheet renders the three sections with subtotals.
func BalanceSheet(bs *ledger.BalanceSheet) (*excelize.File, error) {
	s, err := newWorkbook(BalanceSheetSheet)
	if err != nil {
		return nil, err
	}
	sections := []struct {
		label string
		rows  []ledger.BalanceSheetRow
		total decimal.Decimal
	}{
		{ledger.TypeAsset.Label(), bs.Assets, bs.TotalAssets},
		{ledger.TypeLiability.Label(), bs.Liabilities, bs.TotalLiabilities},
		{ledger.TypeEquity.Label(), bs.Equity, bs.TotalEquity},
	}
	for i, sec := range sections {
		if i > 0 {
			s.blank()
		}
		if err := s.add(true, sec.label); err != nil {
			return nil, err
		}
		for _, r := range sec.rows {
			if err := s.add(false, r.AccountCode, r.AccountName, r.Amount); err != nil {
				return nil, err
			}
		}
		if err := s.add(true, "", fmt.Sprintf("Total %s", sec.label), sec.total); err != nil {
			return nil, err
		}
	}
	s.blank()
	if err := s.add(true, "", "Liabilities + Equity", bs.TotalLiabilities.Add(bs.TotalEquity)); err != nil {
		return nil, err
	}
	s.f.SetColWidth(s.name, "B", "B", 36)
	return s.f, nil
}

// Write streams the workbook and closes it.
func Write(w io.Writer, f *excelize.File) error {
	defer f.Close()
	_, err := f.WriteTo(w)
	return err
}
