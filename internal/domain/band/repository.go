package band

import "context"

// ListFilter narrows a listing of active bands.
type ListFilter struct {
	// NameContains is matched case-insensitively as a substring of the band name.
	NameContains string
	OwnerID      *int64
	ExcludeIDs   []int64
}

// BandRepository defines the persistence contract for bands.
type BandRepository interface {
	// FindByID retrieves a band regardless of its active flag.
	FindByID(ctx context.Context, id int64) (*Band, error)

	// ListActive retrieves active bands matching the filter, ordered by name.
	ListActive(ctx context.Context, filter ListFilter) ([]*Band, error)

	// Save persists a new band and assigns its ID.
	Save(ctx context.Context, band *Band) error

	// Update persists changes to an existing band.
	Update(ctx context.Context, band *Band) error
}
