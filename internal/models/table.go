package models

// Tables maps a table ID to its open billing session.
type Tables map[string]*Table

// Table is an active billing session for one physical table.
// A table exists only while it holds at least one unarchived order line.
type Table struct {
	// PendingOrders are lines awaiting confirmation, in ticket order.
	// Every placement becomes its own line, even for a repeated name.
	PendingOrders []OrderLine `json:"pendingOrders"`

	// ConfirmedOrders are lines accepted into the bill, one per distinct name.
	ConfirmedOrders []OrderLine `json:"confirmedOrders"`
}

// NewTable returns an empty table with non-nil order slices, so it
// serializes as `[]` rather than `null`.
func NewTable() *Table {
	return &Table{
		PendingOrders:   []OrderLine{},
		ConfirmedOrders: []OrderLine{},
	}
}

// FindPending returns the index of the pending line with the given ID, or -1.
func (t *Table) FindPending(orderID string) int {
	for i, o := range t.PendingOrders {
		if o.ID == orderID {
			return i
		}
	}
	return -1
}

// FindConfirmed returns the index of the confirmed line with the given name, or -1.
func (t *Table) FindConfirmed(name string) int {
	for i, o := range t.ConfirmedOrders {
		if o.Name == name {
			return i
		}
	}
	return -1
}

// OrderLine is one item/quantity/price entry on a table.
type OrderLine struct {
	// ID is unique within the table (UUID format in production).
	ID string `json:"id"`

	// Name is the item name; confirmed lines are merged by it.
	Name string `json:"name"`

	Qty   int     `json:"qty"`
	Price float64 `json:"price"`

	// Time is the placement time in Unix milliseconds.
	Time int64 `json:"time"`

	// PaidQty is how many units of a confirmed line have been paid for.
	// Not clamped to Qty: overpayment is recorded as-is.
	PaidQty int `json:"paidQty"`
}

// Amount returns price × qty for the line.
func (o OrderLine) Amount() float64 {
	return o.Price * float64(o.Qty)
}

// OrderItem is a single item in a PlaceOrder request.
type OrderItem struct {
	Name  string  `json:"name" validate:"required"`
	Qty   int     `json:"qty" validate:"gt=0"`
	Price float64 `json:"price" validate:"gte=0"`
}

// Payment records that Qty units of the confirmed line Name were paid.
type Payment struct {
	Name string `json:"name"`
	Qty  int    `json:"qty"`
}
