package models

// ArchiveRecord is a closed bill in the sales ledger.
// It is immutable once written; TotalAmount is computed once at close time.
type ArchiveRecord struct {
	// ID is the unique identifier for the record (UUID format).
	ID string `json:"id"`

	// TableID is the table the bill was closed on.
	TableID string `json:"tableId"`

	// Date is the close time, RFC 3339 in UTC.
	Date string `json:"date"`

	// TotalAmount is Σ price × qty over Items.
	TotalAmount float64 `json:"totalAmount"`

	// Items is a snapshot of the table's confirmed lines at close time.
	Items []OrderLine `json:"items"`
}
