package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tablewise/internal/events"
	"github.com/mmynk/tablewise/pkg/api"
)

func placeOrder(t *testing.T, ts *testServer, tableID string, items ...api.OrderItem) []api.OrderLine {
	t.Helper()
	resp, err := ts.orders.PlaceOrder(context.Background(), connect.NewRequest(&api.PlaceOrderRequest{
		TableID: tableID,
		Items:   items,
	}))
	require.NoError(t, err)
	return resp.Msg.Orders
}

func confirm(t *testing.T, ts *testServer, tableID, orderID string) api.OrderLine {
	t.Helper()
	resp, err := ts.orders.ConfirmOrder(context.Background(), connect.NewRequest(&api.ConfirmOrderRequest{
		TableID: tableID,
		OrderID: orderID,
	}))
	require.NoError(t, err)
	return resp.Msg.Order
}

func TestOrderLifecycle(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()

	placed := placeOrder(t, ts, "5", api.OrderItem{Name: "Cola", Qty: 2, Price: 50})
	require.Len(t, placed, 1)
	assert.Equal(t, "Cola", placed[0].Name)
	assert.Equal(t, fixedNow.UnixMilli(), placed[0].Time)

	confirmed := confirm(t, ts, "5", placed[0].ID)
	assert.Equal(t, 2, confirmed.Qty)
	assert.Equal(t, 0, confirmed.PaidQty)

	tables, err := ts.orders.ListTables(ctx, adminRequest(t, ts, &api.ListTablesRequest{}))
	require.NoError(t, err)
	require.Contains(t, tables.Msg.Tables, "5")
	assert.Empty(t, tables.Msg.Tables["5"].PendingOrders)
	assert.Len(t, tables.Msg.Tables["5"].ConfirmedOrders, 1)
	assert.Equal(t, api.TableSummary{Confirmed: 1, Revenue: 100, Outstanding: 100}, tables.Msg.Summaries["5"])

	closed, err := ts.orders.CloseTable(ctx, connect.NewRequest(&api.CloseTableRequest{TableID: "5"}))
	require.NoError(t, err)
	require.True(t, closed.Msg.Closed)
	require.NotNil(t, closed.Msg.Record)
	assert.Equal(t, "5", closed.Msg.Record.TableID)
	assert.Equal(t, 100.0, closed.Msg.Record.TotalAmount)
	assert.Equal(t, "2026-03-14T16:30:00Z", closed.Msg.Record.Date)
	require.Len(t, closed.Msg.Record.Items, 1)
	assert.Equal(t, "Cola", closed.Msg.Record.Items[0].Name)

	tables, err = ts.orders.ListTables(ctx, adminRequest(t, ts, &api.ListTablesRequest{}))
	require.NoError(t, err)
	assert.NotContains(t, tables.Msg.Tables, "5")

	sales, err := ts.orders.ListSales(ctx, adminRequest(t, ts, &api.ListSalesRequest{}))
	require.NoError(t, err)
	require.Len(t, sales.Msg.Sales, 1)
	assert.Equal(t, 100.0, sales.Msg.TotalRevenue)
	assert.Equal(t, closed.Msg.Record.ID, sales.Msg.Sales[0].ID)

	assert.Equal(t, []events.Type{events.OrderPlaced, events.OrderConfirmed, events.TableClosed}, ts.publisher.types())
	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.OrdersPlaced))
	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.OrdersConfirmed))
	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.TablesClosed))
	assert.Equal(t, 100.0, testutil.ToFloat64(ts.metrics.Revenue))
}

func TestPlaceOrder_InvalidArgument(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  *api.PlaceOrderRequest
	}{
		{"missing table", &api.PlaceOrderRequest{Items: []api.OrderItem{{Name: "Cola", Qty: 1, Price: 50}}}},
		{"no items", &api.PlaceOrderRequest{TableID: "1"}},
		{"zero qty", &api.PlaceOrderRequest{TableID: "1", Items: []api.OrderItem{{Name: "Cola", Qty: 0, Price: 50}}}},
		{"negative price", &api.PlaceOrderRequest{TableID: "1", Items: []api.OrderItem{{Name: "Cola", Qty: 1, Price: -1}}}},
		{"missing name", &api.PlaceOrderRequest{TableID: "1", Items: []api.OrderItem{{Qty: 1, Price: 50}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.orders.PlaceOrder(ctx, connect.NewRequest(tt.req))
			requireCode(t, err, connect.CodeInvalidArgument)
		})
	}

	// Nothing was persisted by the rejected calls.
	assert.Empty(t, ts.store.LoadTables(ctx))
}

func TestConfirmOrder_Errors(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()

	placed := placeOrder(t, ts, "3", api.OrderItem{Name: "Tea", Qty: 1, Price: 10})

	_, err := ts.orders.ConfirmOrder(ctx, connect.NewRequest(&api.ConfirmOrderRequest{TableID: "3"}))
	requireCode(t, err, connect.CodeInvalidArgument)

	_, err = ts.orders.ConfirmOrder(ctx, connect.NewRequest(&api.ConfirmOrderRequest{TableID: "9", OrderID: placed[0].ID}))
	requireCode(t, err, connect.CodeNotFound)

	_, err = ts.orders.ConfirmOrder(ctx, connect.NewRequest(&api.ConfirmOrderRequest{TableID: "3", OrderID: "nope"}))
	requireCode(t, err, connect.CodeNotFound)

	confirm(t, ts, "3", placed[0].ID)

	// A line can only be confirmed once.
	_, err = ts.orders.ConfirmOrder(ctx, connect.NewRequest(&api.ConfirmOrderRequest{TableID: "3", OrderID: placed[0].ID}))
	requireCode(t, err, connect.CodeNotFound)
}

func TestConfirmOrder_MergesByName(t *testing.T) {
	ts := setupTestServer(t)

	first := placeOrder(t, ts, "2", api.OrderItem{Name: "Cola", Qty: 1, Price: 50})
	second := placeOrder(t, ts, "2", api.OrderItem{Name: "Cola", Qty: 3, Price: 60})

	confirm(t, ts, "2", first[0].ID)
	merged := confirm(t, ts, "2", second[0].ID)

	assert.Equal(t, first[0].ID, merged.ID)
	assert.Equal(t, 4, merged.Qty)
	assert.Equal(t, 50.0, merged.Price)

	table := ts.store.LoadTables(context.Background())["2"]
	require.NotNil(t, table)
	assert.Len(t, table.ConfirmedOrders, 1)
	assert.Empty(t, table.PendingOrders)
}

func TestConfirmOrder_Concurrent(t *testing.T) {
	ts := setupTestServer(t)

	const n = 10
	items := make([]api.OrderItem, n)
	for i := range items {
		items[i] = api.OrderItem{Name: fmt.Sprintf("Dish %d", i), Qty: 1, Price: 10}
	}
	placed := placeOrder(t, ts, "8", items...)
	require.Len(t, placed, n)

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for _, line := range placed {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := ts.orders.ConfirmOrder(context.Background(), connect.NewRequest(&api.ConfirmOrderRequest{
				TableID: "8",
				OrderID: id,
			}))
			errs <- err
		}(line.ID)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	table := ts.store.LoadTables(context.Background())["8"]
	require.NotNil(t, table)
	assert.Len(t, table.ConfirmedOrders, n)
	assert.Empty(t, table.PendingOrders)
}

func TestUnconfirmOrder(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()

	placed := placeOrder(t, ts, "4",
		api.OrderItem{Name: "Soup", Qty: 1, Price: 40},
		api.OrderItem{Name: "Bread", Qty: 2, Price: 5},
	)
	confirm(t, ts, "4", placed[0].ID)
	confirm(t, ts, "4", placed[1].ID)

	resp, err := ts.orders.UnconfirmOrder(ctx, connect.NewRequest(&api.UnconfirmOrderRequest{TableID: "4", Position: 0}))
	require.NoError(t, err)
	assert.Equal(t, "Soup", resp.Msg.Order.Name)

	table := ts.store.LoadTables(ctx)["4"]
	require.NotNil(t, table)
	require.Len(t, table.PendingOrders, 1)
	assert.Equal(t, placed[0].ID, table.PendingOrders[0].ID)
	require.Len(t, table.ConfirmedOrders, 1)
	assert.Equal(t, "Bread", table.ConfirmedOrders[0].Name)

	_, err = ts.orders.UnconfirmOrder(ctx, connect.NewRequest(&api.UnconfirmOrderRequest{TableID: "4", Position: 5}))
	requireCode(t, err, connect.CodeNotFound)

	_, err = ts.orders.UnconfirmOrder(ctx, connect.NewRequest(&api.UnconfirmOrderRequest{TableID: "4", Position: -1}))
	requireCode(t, err, connect.CodeNotFound)

	_, err = ts.orders.UnconfirmOrder(ctx, connect.NewRequest(&api.UnconfirmOrderRequest{TableID: "missing"}))
	requireCode(t, err, connect.CodeNotFound)

	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.OrdersReturned))
}

func TestRecordPayment(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()

	placed := placeOrder(t, ts, "6", api.OrderItem{Name: "Kebab", Qty: 2, Price: 120})
	confirm(t, ts, "6", placed[0].ID)

	resp, err := ts.orders.RecordPayment(ctx, connect.NewRequest(&api.RecordPaymentRequest{
		TableID: "6",
		Payments: []api.Payment{
			{Name: "Kebab", Qty: 1},
			{Name: "Ghost", Qty: 4},
		},
	}))
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Msg.Applied)

	// Overpayment is recorded as-is.
	_, err = ts.orders.RecordPayment(ctx, connect.NewRequest(&api.RecordPaymentRequest{
		TableID:  "6",
		Payments: []api.Payment{{Name: "Kebab", Qty: 5}},
	}))
	require.NoError(t, err)

	table := ts.store.LoadTables(ctx)["6"]
	require.NotNil(t, table)
	assert.Equal(t, 6, table.ConfirmedOrders[0].PaidQty)

	t.Run("unknown table applies nothing", func(t *testing.T) {
		resp, err := ts.orders.RecordPayment(ctx, connect.NewRequest(&api.RecordPaymentRequest{
			TableID:  "nowhere",
			Payments: []api.Payment{{Name: "Kebab", Qty: 1}},
		}))
		require.NoError(t, err)
		assert.Equal(t, 0, resp.Msg.Applied)
		assert.NotContains(t, ts.store.LoadTables(ctx), "nowhere")
	})

	t.Run("missing table id", func(t *testing.T) {
		_, err := ts.orders.RecordPayment(ctx, connect.NewRequest(&api.RecordPaymentRequest{}))
		requireCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("negative qty is skipped", func(t *testing.T) {
		resp, err := ts.orders.RecordPayment(ctx, connect.NewRequest(&api.RecordPaymentRequest{
			TableID:  "6",
			Payments: []api.Payment{{Name: "Kebab", Qty: -3}},
		}))
		require.NoError(t, err)
		assert.Equal(t, 0, resp.Msg.Applied)
		assert.Equal(t, 6, ts.store.LoadTables(ctx)["6"].ConfirmedOrders[0].PaidQty)
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(ts.metrics.PaymentsRecorded))
}

func TestCloseTable_Missing(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()

	resp, err := ts.orders.CloseTable(ctx, connect.NewRequest(&api.CloseTableRequest{TableID: "42"}))
	require.NoError(t, err)
	assert.False(t, resp.Msg.Closed)
	assert.Nil(t, resp.Msg.Record)
	assert.Empty(t, ts.store.LoadSales(ctx))
	assert.Empty(t, ts.publisher.types())

	_, err = ts.orders.CloseTable(ctx, connect.NewRequest(&api.CloseTableRequest{}))
	requireCode(t, err, connect.CodeInvalidArgument)
}

func TestCloseTable_PendingNotBilled(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()

	placed := placeOrder(t, ts, "1",
		api.OrderItem{Name: "Steak", Qty: 1, Price: 300},
		api.OrderItem{Name: "Wine", Qty: 2, Price: 90},
	)
	confirm(t, ts, "1", placed[0].ID)

	resp, err := ts.orders.CloseTable(ctx, connect.NewRequest(&api.CloseTableRequest{TableID: "1"}))
	require.NoError(t, err)
	require.True(t, resp.Msg.Closed)
	assert.Equal(t, 300.0, resp.Msg.Record.TotalAmount)
	require.Len(t, resp.Msg.Record.Items, 1)
	assert.Equal(t, "Steak", resp.Msg.Record.Items[0].Name)
}

func TestAdminProcedures_RequireToken(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()

	_, err := ts.orders.ListTables(ctx, connect.NewRequest(&api.ListTablesRequest{}))
	requireCode(t, err, connect.CodeUnauthenticated)

	_, err = ts.orders.ListSales(ctx, connect.NewRequest(&api.ListSalesRequest{}))
	requireCode(t, err, connect.CodeUnauthenticated)

	req := connect.NewRequest(&api.ListSalesRequest{})
	req.Header().Set("Authorization", "Bearer not-a-token")
	_, err = ts.orders.ListSales(ctx, req)
	requireCode(t, err, connect.CodeUnauthenticated)

	_, err = ts.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Password: "wrong"}))
	requireCode(t, err, connect.CodeUnauthenticated)

	_, err = ts.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{}))
	requireCode(t, err, connect.CodeInvalidArgument)
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	ts := setupTestServer(t)
	ts.publisher.mu.Lock()
	ts.publisher.err = errors.New("broker down")
	ts.publisher.mu.Unlock()

	placed := placeOrder(t, ts, "11", api.OrderItem{Name: "Cola", Qty: 1, Price: 50})
	require.Len(t, placed, 1)

	table := ts.store.LoadTables(context.Background())["11"]
	require.NotNil(t, table)
	assert.Len(t, table.PendingOrders, 1)
}
