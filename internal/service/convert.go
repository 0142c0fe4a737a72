package service

import (
	"github.com/mmynk/tablewise/internal/calculator"
	"github.com/mmynk/tablewise/internal/models"
	"github.com/mmynk/tablewise/pkg/api"
)

func toModelItems(items []api.OrderItem) []models.OrderItem {
	if items == nil {
		return nil
	}
	out := make([]models.OrderItem, len(items))
	for i, item := range items {
		out[i] = models.OrderItem{Name: item.Name, Qty: item.Qty, Price: item.Price}
	}
	return out
}

func toModelPayments(payments []api.Payment) []models.Payment {
	out := make([]models.Payment, len(payments))
	for i, p := range payments {
		out[i] = models.Payment{Name: p.Name, Qty: p.Qty}
	}
	return out
}

func toAPILine(line models.OrderLine) api.OrderLine {
	return api.OrderLine{
		ID:      line.ID,
		Name:    line.Name,
		Qty:     line.Qty,
		Price:   line.Price,
		Time:    line.Time,
		PaidQty: line.PaidQty,
	}
}

func toAPILines(lines []models.OrderLine) []api.OrderLine {
	out := make([]api.OrderLine, len(lines))
	for i, line := range lines {
		out[i] = toAPILine(line)
	}
	return out
}

func toAPITable(table *models.Table) api.Table {
	return api.Table{
		PendingOrders:   toAPILines(table.PendingOrders),
		ConfirmedOrders: toAPILines(table.ConfirmedOrders),
	}
}

func toAPISummary(s calculator.Summary) api.TableSummary {
	return api.TableSummary{
		Pending:     s.Pending,
		Confirmed:   s.Confirmed,
		Revenue:     s.Revenue,
		Paid:        s.Paid,
		Outstanding: s.Outstanding,
	}
}

func toAPIRecord(record *models.ArchiveRecord) *api.ArchiveRecord {
	if record == nil {
		return nil
	}
	return &api.ArchiveRecord{
		ID:          record.ID,
		TableID:     record.TableID,
		Date:        record.Date,
		TotalAmount: record.TotalAmount,
		Items:       toAPILines(record.Items),
	}
}

func toAPIProduct(p models.Product) api.Product {
	return api.Product{ID: p.ID, Name: p.Name, Price: p.Price, Category: p.Category}
}
