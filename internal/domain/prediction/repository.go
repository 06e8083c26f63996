package prediction

import "context"

// Store is a storage backend for prediction records
type Store interface {
	// Name identifies the backend in logs and metrics
	Name() string

	// Create persists rec and returns the stored copy. A nil record with a nil
	// error means the backend accepted the call without confirming the write.
	Create(ctx context.Context, rec *Record) (*Record, error)

	// List returns every stored record, newest first
	List(ctx context.Context) ([]Record, error)
}

// RemoteStore is a networked store keeping the full history
type RemoteStore interface {
	Store

	// Latest returns the newest record or ErrNotFound
	Latest(ctx context.Context) (*Record, error)

	// Delete removes a record by id
	Delete(ctx context.Context, id string) error

	// Ping checks connectivity
	Ping(ctx context.Context) error
}

// Source names where a history was read from
type Source string

const (
	SourceRemote   Source = "remote"
	SourceFallback Source = "fallback"
	SourceNone     Source = "none"
)

// History is the result of a read through the persistence gateway
type History struct {
	Records []Record
	Source  Source
}

// Latest returns the head of the history
func (h History) Latest() (*Record, bool) {
	if len(h.Records) == 0 {
		return nil, false
	}
	rec := h.Records[0]
	return &rec, true
}
