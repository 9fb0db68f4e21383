package records

import "context"

// Store is the remote CRUD collection.
type Store interface {
	// List returns every record in store order.
	List(ctx context.Context) ([]Record, error)

	// Create submits a new record and returns it with its store-assigned ID.
	// Any status other than 201 is an error.
	Create(ctx context.Context, rec NewRecord) (*Record, error)

	// Update sends a partial body and returns the fields the store echoed.
	Update(ctx context.Context, id int64, patch Patch) (*Partial, error)

	// Delete removes a record.
	Delete(ctx context.Context, id int64) error

	// Get returns one record including its weather fields.
	Get(ctx context.Context, id int64) (*Record, error)

	// ExportCSV returns the store's CSV rendering of the whole collection.
	ExportCSV(ctx context.Context) ([]byte, error)
}
