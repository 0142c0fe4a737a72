package service

import (
	"context"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mmynk/tablewise/internal/calculator"
	"github.com/mmynk/tablewise/internal/events"
	"github.com/mmynk/tablewise/internal/lifecycle"
	"github.com/mmynk/tablewise/internal/metrics"
	"github.com/mmynk/tablewise/internal/models"
	"github.com/mmynk/tablewise/internal/storage"
	"github.com/mmynk/tablewise/pkg/api"
)

// Ensure OrderService implements api.OrderServiceHandler
var _ api.OrderServiceHandler = (*OrderService)(nil)

// OrderService implements the Connect OrderService.
// Every call is one load/compute/save round trip on the Tables collection.
type OrderService struct {
	store   *storage.Store
	engine  *lifecycle.Engine
	events  events.Publisher
	metrics *metrics.Metrics
}

// OrderServiceOption configures an OrderService.
type OrderServiceOption func(*OrderService)

// WithPublisher sets the publisher for lifecycle events.
func WithPublisher(p events.Publisher) OrderServiceOption {
	return func(s *OrderService) {
		s.events = p
	}
}

// WithMetrics sets the metrics collectors.
func WithMetrics(m *metrics.Metrics) OrderServiceOption {
	return func(s *OrderService) {
		s.metrics = m
	}
}

// NewOrderService creates a new OrderService with the given store and engine.
func NewOrderService(store *storage.Store, engine *lifecycle.Engine, opts ...OrderServiceOption) *OrderService {
	s := &OrderService{
		store:  store,
		engine: engine,
		events: events.NopPublisher{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.New(prometheus.NewRegistry())
	}
	return s
}

// PlaceOrder adds one pending line per item to a table, creating it if needed.
func (s *OrderService) PlaceOrder(ctx context.Context, req *connect.Request[api.PlaceOrderRequest]) (*connect.Response[api.PlaceOrderResponse], error) {
	tableID := req.Msg.TableID
	slog.Info("PlaceOrder request received",
		"table_id", tableID,
		"items_count", len(req.Msg.Items),
	)

	items := toModelItems(req.Msg.Items)

	var placed []models.OrderLine
	err := s.store.UpdateTables(ctx, func(tables models.Tables) error {
		var err error
		placed, err = s.engine.PlaceOrder(tables, tableID, items)
		return err
	})
	if err != nil {
		return nil, s.fail("PlaceOrder", tableID, err)
	}

	s.metrics.OrdersPlaced.Add(float64(len(placed)))
	s.publish(ctx, events.New(events.OrderPlaced, tableID, placed))

	slog.Info("Orders placed", "table_id", tableID, "count", len(placed))

	return connect.NewResponse(&api.PlaceOrderResponse{
		Orders: toAPILines(placed),
	}), nil
}

// ConfirmOrder moves a pending line into the table's bill.
func (s *OrderService) ConfirmOrder(ctx context.Context, req *connect.Request[api.ConfirmOrderRequest]) (*connect.Response[api.ConfirmOrderResponse], error) {
	tableID, orderID := req.Msg.TableID, req.Msg.OrderID
	slog.Info("ConfirmOrder request received", "table_id", tableID, "order_id", orderID)

	if tableID == "" || orderID == "" {
		return nil, s.fail("ConfirmOrder", tableID, fmt.Errorf("%w: tableId and orderId are required", lifecycle.ErrValidation))
	}

	var confirmed models.OrderLine
	err := s.store.UpdateTables(ctx, func(tables models.Tables) error {
		var err error
		confirmed, err = s.engine.ConfirmOrder(tables, tableID, orderID)
		return err
	})
	if err != nil {
		return nil, s.fail("ConfirmOrder", tableID, err)
	}

	s.metrics.OrdersConfirmed.Inc()
	s.publish(ctx, events.New(events.OrderConfirmed, tableID, confirmed))

	slog.Info("Order confirmed",
		"table_id", tableID,
		"order_id", orderID,
		"name", confirmed.Name,
		"confirmed_qty", confirmed.Qty,
	)

	return connect.NewResponse(&api.ConfirmOrderResponse{
		Order: toAPILine(confirmed),
	}), nil
}

// UnconfirmOrder moves a confirmed line, by position, back to pending.
func (s *OrderService) UnconfirmOrder(ctx context.Context, req *connect.Request[api.UnconfirmOrderRequest]) (*connect.Response[api.UnconfirmOrderResponse], error) {
	tableID, position := req.Msg.TableID, req.Msg.Position
	slog.Info("UnconfirmOrder request received", "table_id", tableID, "position", position)

	if tableID == "" {
		return nil, s.fail("UnconfirmOrder", tableID, fmt.Errorf("%w: tableId is required", lifecycle.ErrValidation))
	}

	var moved models.OrderLine
	err := s.store.UpdateTables(ctx, func(tables models.Tables) error {
		var err error
		moved, err = s.engine.UnconfirmOrder(tables, tableID, position)
		return err
	})
	if err != nil {
		return nil, s.fail("UnconfirmOrder", tableID, err)
	}

	s.metrics.OrdersReturned.Inc()
	s.publish(ctx, events.New(events.OrderUnconfirmed, tableID, moved))

	slog.Info("Order unconfirmed", "table_id", tableID, "order_id", moved.ID, "name", moved.Name)

	return connect.NewResponse(&api.UnconfirmOrderResponse{
		Order: toAPILine(moved),
	}), nil
}

// RecordPayment records partial payments against confirmed lines by name.
// Unknown names are skipped.
func (s *OrderService) RecordPayment(ctx context.Context, req *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error) {
	tableID := req.Msg.TableID
	slog.Info("RecordPayment request received",
		"table_id", tableID,
		"payments_count", len(req.Msg.Payments),
	)

	if tableID == "" {
		return nil, s.fail("RecordPayment", tableID, fmt.Errorf("%w: tableId is required", lifecycle.ErrValidation))
	}

	payments := toModelPayments(req.Msg.Payments)

	var applied int
	err := s.store.UpdateTables(ctx, func(tables models.Tables) error {
		applied = s.engine.RecordPartialPayment(tables, tableID, payments)
		return nil
	})
	if err != nil {
		return nil, s.fail("RecordPayment", tableID, err)
	}

	s.metrics.PaymentsRecorded.Add(float64(applied))
	if applied > 0 {
		s.publish(ctx, events.New(events.PaymentRecorded, tableID, payments))
	}

	if applied < len(payments) {
		slog.Debug("Payments skipped for unknown items",
			"table_id", tableID,
			"skipped", len(payments)-applied,
		)
	}
	slog.Info("Payments recorded", "table_id", tableID, "applied", applied)

	return connect.NewResponse(&api.RecordPaymentResponse{
		Applied: applied,
	}), nil
}

// CloseTable archives the table's confirmed lines as a sale and removes the table.
// Closing a table that does not exist succeeds and changes nothing.
func (s *OrderService) CloseTable(ctx context.Context, req *connect.Request[api.CloseTableRequest]) (*connect.Response[api.CloseTableResponse], error) {
	tableID := req.Msg.TableID
	slog.Info("CloseTable request received", "table_id", tableID)

	if tableID == "" {
		return nil, s.fail("CloseTable", tableID, fmt.Errorf("%w: tableId is required", lifecycle.ErrValidation))
	}

	record, err := s.store.ArchiveTable(ctx, tableID, func(tables models.Tables) *models.ArchiveRecord {
		record, _ := s.engine.CloseTable(tables, tableID)
		return record
	})
	if err != nil {
		return nil, s.fail("CloseTable", tableID, err)
	}

	if record == nil {
		slog.Info("CloseTable: table not open, nothing to archive", "table_id", tableID)
		return connect.NewResponse(&api.CloseTableResponse{Closed: false}), nil
	}

	s.metrics.TablesClosed.Inc()
	s.metrics.Revenue.Add(record.TotalAmount)
	s.publish(ctx, events.New(events.TableClosed, tableID, record))

	slog.Info("Table closed",
		"table_id", tableID,
		"record_id", record.ID,
		"total_amount", record.TotalAmount,
		"items_count", len(record.Items),
	)

	return connect.NewResponse(&api.CloseTableResponse{
		Closed: true,
		Record: toAPIRecord(record),
	}), nil
}

// ListTables returns every open table with its running bill.
func (s *OrderService) ListTables(ctx context.Context, req *connect.Request[api.ListTablesRequest]) (*connect.Response[api.ListTablesResponse], error) {
	slog.Info("ListTables request received")

	tables := s.store.LoadTables(ctx)

	resp := &api.ListTablesResponse{
		Tables:    make(map[string]api.Table, len(tables)),
		Summaries: make(map[string]api.TableSummary, len(tables)),
	}
	for id, table := range tables {
		if table == nil {
			continue
		}
		resp.Tables[id] = toAPITable(table)
		resp.Summaries[id] = toAPISummary(calculator.Summarize(table))
	}

	slog.Info("ListTables successful", "count", len(resp.Tables))

	return connect.NewResponse(resp), nil
}

// ListSales returns the sales ledger and the sum of its frozen totals.
func (s *OrderService) ListSales(ctx context.Context, req *connect.Request[api.ListSalesRequest]) (*connect.Response[api.ListSalesResponse], error) {
	slog.Info("ListSales request received")

	sales := s.store.LoadSales(ctx)

	resp := &api.ListSalesResponse{
		Sales: make([]api.ArchiveRecord, len(sales)),
	}
	for i := range sales {
		resp.Sales[i] = *toAPIRecord(&sales[i])
		resp.TotalRevenue += sales[i].TotalAmount
	}

	slog.Info("ListSales successful", "count", len(sales), "total_revenue", resp.TotalRevenue)

	return connect.NewResponse(resp), nil
}

func (s *OrderService) fail(op, tableID string, err error) error {
	if isStorageError(err) {
		s.metrics.StorageErrors.WithLabelValues(op).Inc()
		slog.Error(op+" failed", "table_id", tableID, "error", err)
	} else {
		slog.Warn(op+" rejected", "table_id", tableID, "error", err)
	}
	return toConnectError(err)
}

func (s *OrderService) publish(ctx context.Context, event events.Event) {
	if err := s.events.Publish(ctx, event); err != nil {
		slog.Warn("Failed to publish event",
			"type", event.Type,
			"table_id", event.TableID,
			"error", err,
		)
	}
}
