package calculator

import "github.com/mmynk/tablewise/internal/models"

// Summary is the running bill for one open table.
type Summary struct {
	// Pending is the number of lines still awaiting confirmation.
	// Pending lines are never billed.
	Pending int `json:"pending"`

	// Confirmed is the number of distinct confirmed lines.
	Confirmed int `json:"confirmed"`

	// Revenue is Σ price × qty over confirmed lines.
	Revenue float64 `json:"revenue"`

	// Paid is Σ price × paidQty over confirmed lines.
	Paid float64 `json:"paid"`

	// Outstanding is Revenue - Paid. Negative when a line was overpaid.
	Outstanding float64 `json:"outstanding"`
}

// Revenue computes the billable total of lines: Σ price × qty.
func Revenue(lines []models.OrderLine) float64 {
	var total float64
	for _, line := range lines {
		total += line.Amount()
	}
	return total
}

// Paid computes the amount already paid on lines: Σ price × paidQty.
func Paid(lines []models.OrderLine) float64 {
	var total float64
	for _, line := range lines {
		total += line.Price * float64(line.PaidQty)
	}
	return total
}

// Summarize computes the running bill for a table.
func Summarize(table *models.Table) Summary {
	if table == nil {
		return Summary{}
	}

	revenue := Revenue(table.ConfirmedOrders)
	paid := Paid(table.ConfirmedOrders)

	return Summary{
		Pending:     len(table.PendingOrders),
		Confirmed:   len(table.ConfirmedOrders),
		Revenue:     revenue,
		Paid:        paid,
		Outstanding: revenue - paid,
	}
}
