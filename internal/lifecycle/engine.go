// Package lifecycle implements the order line state machine on a loaded Tables snapshot.
//
// Every operation mutates the snapshot in place and performs no I/O; callers load the
// snapshot, apply one operation and save it back under the store's writer lock.
package lifecycle

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mmynk/tablewise/internal/calculator"
	"github.com/mmynk/tablewise/internal/idgen"
	"github.com/mmynk/tablewise/internal/models"
)

// Engine applies order lifecycle operations.
type Engine struct {
	ids      idgen.Generator
	now      func() time.Time
	validate *validator.Validate
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the clock used for order and archive timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an Engine that draws ids from ids.
func NewEngine(ids idgen.Generator, opts ...Option) *Engine {
	e := &Engine{
		ids:      ids,
		now:      time.Now,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type placeOrderInput struct {
	TableID string             `validate:"required"`
	Items   []models.OrderItem `validate:"required,min=1,dive"`
}

// PlaceOrder appends one pending line per item, creating the table if needed.
// Items are never merged at this stage.
func (e *Engine) PlaceOrder(tables models.Tables, tableID string, items []models.OrderItem) ([]models.OrderLine, error) {
	if err := e.validate.Struct(placeOrderInput{TableID: tableID, Items: items}); err != nil {
		return nil, validationError(err)
	}

	table, ok := tables[tableID]
	if !ok {
		table = models.NewTable()
		tables[tableID] = table
	}

	placedAt := e.now().UnixMilli()
	placed := make([]models.OrderLine, 0, len(items))
	for _, item := range items {
		line := models.OrderLine{
			ID:    e.ids.NewID(),
			Name:  item.Name,
			Qty:   item.Qty,
			Price: item.Price,
			Time:  placedAt,
		}
		table.PendingOrders = append(table.PendingOrders, line)
		placed = append(placed, line)
	}

	return placed, nil
}

// ConfirmOrder moves a pending line into the bill.
// A confirmed line with the same name absorbs the quantity and keeps its own price;
// otherwise the line is appended with PaidQty reset to zero.
// It returns the confirmed line as it now stands in the bill.
func (e *Engine) ConfirmOrder(tables models.Tables, tableID, orderID string) (models.OrderLine, error) {
	table, ok := tables[tableID]
	if !ok {
		return models.OrderLine{}, fmt.Errorf("%w: table %q", ErrNotFound, tableID)
	}

	idx := table.FindPending(orderID)
	if idx == -1 {
		return models.OrderLine{}, fmt.Errorf("%w: order %q on table %q", ErrNotFound, orderID, tableID)
	}

	order := table.PendingOrders[idx]
	table.PendingOrders = append(table.PendingOrders[:idx], table.PendingOrders[idx+1:]...)

	if existing := table.FindConfirmed(order.Name); existing != -1 {
		table.ConfirmedOrders[existing].Qty += order.Qty
		return table.ConfirmedOrders[existing], nil
	}

	order.PaidQty = 0
	table.ConfirmedOrders = append(table.ConfirmedOrders, order)
	return order, nil
}

// UnconfirmOrder moves the confirmed line at position back to the end of the
// pending list unchanged. A merged line moves back as a single line.
func (e *Engine) UnconfirmOrder(tables models.Tables, tableID string, position int) (models.OrderLine, error) {
	table, ok := tables[tableID]
	if !ok {
		return models.OrderLine{}, fmt.Errorf("%w: table %q", ErrNotFound, tableID)
	}

	if position < 0 || position >= len(table.ConfirmedOrders) {
		return models.OrderLine{}, fmt.Errorf("%w: confirmed position %d on table %q", ErrNotFound, position, tableID)
	}

	order := table.ConfirmedOrders[position]
	table.ConfirmedOrders = append(table.ConfirmedOrders[:position], table.ConfirmedOrders[position+1:]...)
	table.PendingOrders = append(table.PendingOrders, order)

	return order, nil
}

// RecordPartialPayment adds each payment's qty to the paidQty of the confirmed
// line with the same name. Payments for unknown names, payments with a
// non-positive qty, and payments for a table that does not exist are skipped.
// PaidQty is not clamped to Qty.
// It returns the number of payments applied.
func (e *Engine) RecordPartialPayment(tables models.Tables, tableID string, payments []models.Payment) int {
	table, ok := tables[tableID]
	if !ok {
		return 0
	}

	applied := 0
	for _, p := range payments {
		if p.Qty <= 0 {
			continue
		}
		idx := table.FindConfirmed(p.Name)
		if idx == -1 {
			continue
		}
		table.ConfirmedOrders[idx].PaidQty += p.Qty
		applied++
	}

	return applied
}

// CloseTable builds the archive record for a table and removes the table from
// the snapshot. Pending lines are discarded and never billed.
// It returns false if the table does not exist.
func (e *Engine) CloseTable(tables models.Tables, tableID string) (*models.ArchiveRecord, bool) {
	table, ok := tables[tableID]
	if !ok {
		return nil, false
	}

	items := make([]models.OrderLine, len(table.ConfirmedOrders))
	copy(items, table.ConfirmedOrders)

	record := &models.ArchiveRecord{
		ID:          e.ids.NewID(),
		TableID:     tableID,
		Date:        e.now().UTC().Format(time.RFC3339Nano),
		TotalAmount: calculator.Revenue(items),
		Items:       items,
	}

	delete(tables, tableID)
	return record, true
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", strings.TrimPrefix(fe.Namespace(), "placeOrderInput."), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}
