package excel

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/nurpe/contracts-ledger/internal/model"
)

const bestClientsSheet = "Best clients"

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) BestClients(report model.ClientsReport) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", bestClientsSheet); err != nil {
		return nil, err
	}
	if err := g.writeBestClients(file, bestClientsSheet, report); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeBestClients(file *excelize.File, sheet string, report model.ClientsReport) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Report")
	set("B1", "Best clients")
	set("A2", "Period start")
	set("B2", formatDate(report.PeriodStart))
	set("A3", "Period end")
	set("B3", formatDate(report.PeriodEnd))
	set("A4", "Limit")
	set("B4", report.Limit)
	set("A5", "Total paid")
	set("B5", formatAmount(sumPaid(report.Clients)))

	tableRow := 7
	headers := []string{"Rank", "Profile ID", "Full name", "Paid"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}

	for i, client := range report.Clients {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), i+1)
		set(fmt.Sprintf("B%d", row), client.ID)
		set(fmt.Sprintf("C%d", row), client.FullName)
		set(fmt.Sprintf("D%d", row), formatAmount(client.Paid))
	}

	_ = file.SetColWidth(sheet, "A", "A", 16)
	_ = file.SetColWidth(sheet, "B", "B", 14)
	_ = file.SetColWidth(sheet, "C", "C", 40)
	_ = file.SetColWidth(sheet, "D", "D", 16)
	return nil
}

func sumPaid(clients []model.ClientTotal) decimal.Decimal {
	total := decimal.Zero
	for _, client := range clients {
		total = total.Add(client.Paid)
	}
	return total
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatAmount(value decimal.Decimal) string {
	return value.StringFixed(2)
}
