// Package api defines the Tablewise RPC contract: request and response messages,
// procedure names, and typed Connect handlers and clients. Messages are plain Go
// structs carried as JSON.
package api

// OrderItem is one item in a PlaceOrder request.
type OrderItem struct {
	Name  string  `json:"name"`
	Qty   int     `json:"qty"`
	Price float64 `json:"price"`
}

// OrderLine is a pending or confirmed line on a table.
type OrderLine struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Qty     int     `json:"qty"`
	Price   float64 `json:"price"`
	Time    int64   `json:"time"`
	PaidQty int     `json:"paidQty"`
}

// Table is an open billing session.
type Table struct {
	PendingOrders   []OrderLine `json:"pendingOrders"`
	ConfirmedOrders []OrderLine `json:"confirmedOrders"`
}

// TableSummary is the running bill for a table.
type TableSummary struct {
	Pending     int     `json:"pending"`
	Confirmed   int     `json:"confirmed"`
	Revenue     float64 `json:"revenue"`
	Paid        float64 `json:"paid"`
	Outstanding float64 `json:"outstanding"`
}

// Payment marks Qty units of the confirmed line Name as paid.
type Payment struct {
	Name string `json:"name"`
	Qty  int    `json:"qty"`
}

// ArchiveRecord is a closed bill.
type ArchiveRecord struct {
	ID          string      `json:"id"`
	TableID     string      `json:"tableId"`
	Date        string      `json:"date"`
	TotalAmount float64     `json:"totalAmount"`
	Items       []OrderLine `json:"items"`
}

// Product is a menu entry.
type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category,omitempty"`
}

type PlaceOrderRequest struct {
	TableID string      `json:"tableId"`
	Items   []OrderItem `json:"items"`
}

type PlaceOrderResponse struct {
	Orders []OrderLine `json:"orders"`
}

type ConfirmOrderRequest struct {
	TableID string `json:"tableId"`
	OrderID string `json:"orderId"`
}

type ConfirmOrderResponse struct {
	Order OrderLine `json:"order"`
}

type UnconfirmOrderRequest struct {
	TableID  string `json:"tableId"`
	Position int    `json:"position"`
}

type UnconfirmOrderResponse struct {
	Order OrderLine `json:"order"`
}

type RecordPaymentRequest struct {
	TableID  string    `json:"tableId"`
	Payments []Payment `json:"payments"`
}

type RecordPaymentResponse struct {
	Applied int `json:"applied"`
}

type CloseTableRequest struct {
	TableID string `json:"tableId"`
}

// CloseTableResponse reports Closed=false when the table did not exist.
type CloseTableResponse struct {
	Closed bool           `json:"closed"`
	Record *ArchiveRecord `json:"record,omitempty"`
}

type ListTablesRequest struct{}

type ListTablesResponse struct {
	Tables    map[string]Table        `json:"tables"`
	Summaries map[string]TableSummary `json:"summaries"`
}

type ListSalesRequest struct{}

type ListSalesResponse struct {
	Sales        []ArchiveRecord `json:"sales"`
	TotalRevenue float64         `json:"totalRevenue"`
}

type ListMenuRequest struct{}

type ListMenuResponse struct {
	Products []Product `json:"products"`
}

type AddProductRequest struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category,omitempty"`
}

type AddProductResponse struct {
	Product Product `json:"product"`
}

type DeleteProductRequest struct {
	ID string `json:"id"`
}

type DeleteProductResponse struct{}

type LoginRequest struct {
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}
