// Package models defines the core domain models for Tablewise.
//
// # Collections
//
// Three independent collections are persisted, each as one document:
//   - Tables: open billing sessions keyed by table ID (see Table)
//   - Menu: the product list (see Product)
//   - Sales: the append-only ledger of closed bills (see ArchiveRecord)
//
// # Order line lifecycle
//
// An OrderLine moves Pending -> Confirmed -> (PartiallyPaid)* -> Archived.
// Confirmed lines can be moved back to pending until the table is closed.
// Pending lines still present at close time are dropped, never archived.
//
// # Design Principles
//
// 1. **Whole snapshots**: collections are loaded and saved as a unit, never patched
// 2. **JSON field names**: tags match the documents written by earlier deployments
// 3. **Frozen archives**: an ArchiveRecord is never recomputed once written
package models
