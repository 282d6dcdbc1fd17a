package band

import (
	"time"

	"github.com/gigbook/service-booking/internal/domain"
)

const (
	maxNameLength = 100
	maxRating     = 5.0
)

// Band is a performer that can be booked for events, optionally owned by a user.
type Band struct {
	id              int64
	name            string
	genre           *string
	numberOfMembers *int
	contactPerson   *string
	phone           *string
	website         *string
	rating          *float64
	isActive        bool
	priceCents      *int64
	ownerID         *int64
	createdAt       time.Time
	updatedAt       time.Time
}

// Params holds the mutable attributes of a band.
type Params struct {
	Name            string
	Genre           *string
	NumberOfMembers *int
	ContactPerson   *string
	Phone           *string
	Website         *string
	Rating          *float64
	IsActive        *bool
	PriceCents      *int64
}

// NewBand creates an active band owned by ownerID.
func NewBand(ownerID int64, p Params) (*Band, error) {
	if err := validateName(p.Name); err != nil {
		return nil, err
	}
	if err := validateAttributes(p); err != nil {
		return nil, err
	}

	active := true
	if p.IsActive != nil {
		active = *p.IsActive
	}

	now := time.Now().UTC()
	return &Band{
		name:            p.Name,
		genre:           p.Genre,
		numberOfMembers: p.NumberOfMembers,
		contactPerson:   p.ContactPerson,
		phone:           p.Phone,
		website:         p.Website,
		rating:          p.Rating,
		isActive:        active,
		priceCents:      p.PriceCents,
		ownerID:         &ownerID,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// Reconstruct rebuilds a Band from persistence data (no validation).
func Reconstruct(
	id int64,
	name string,
	genre *string,
	numberOfMembers *int,
	contactPerson, phone, website *string,
	rating *float64,
	isActive bool,
	priceCents *int64,
	ownerID *int64,
	createdAt, updatedAt time.Time,
) *Band {
	return &Band{
		id:              id,
		name:            name,
		genre:           genre,
		numberOfMembers: numberOfMembers,
		contactPerson:   contactPerson,
		phone:           phone,
		website:         website,
		rating:          rating,
		isActive:        isActive,
		priceCents:      priceCents,
		ownerID:         ownerID,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// --- Getters ---

func (b *Band) ID() int64              { return b.id }
func (b *Band) Name() string           { return b.name }
func (b *Band) Genre() *string         { return b.genre }
func (b *Band) NumberOfMembers() *int  { return b.numberOfMembers }
func (b *Band) ContactPerson() *string { return b.contactPerson }
func (b *Band) Phone() *string         { return b.phone }
func (b *Band) Website() *string       { return b.website }
func (b *Band) Rating() *float64       { return b.rating }
func (b *Band) IsActive() bool         { return b.isActive }
func (b *Band) PriceCents() *int64     { return b.priceCents }
func (b *Band) OwnerID() *int64        { return b.ownerID }
func (b *Band) CreatedAt() time.Time   { return b.createdAt }
func (b *Band) UpdatedAt() time.Time   { return b.updatedAt }

// --- Behavior ---

// AssignID records the identifier generated by the store on insert.
func (b *Band) AssignID(id int64) {
	b.id = id
}

// IsOwnedBy reports whether userID owns the band. Unowned bands belong to nobody.
func (b *Band) IsOwnedBy(userID int64) bool {
	return b.ownerID != nil && *b.ownerID == userID
}

// ApplyUpdate merges non-empty attributes into the band.
func (b *Band) ApplyUpdate(p Params) error {
	if p.Name != "" {
		if err := validateName(p.Name); err != nil {
			return err
		}
	}
	if err := validateAttributes(p); err != nil {
		return err
	}

	if p.Name != "" {
		b.name = p.Name
	}
	if p.Genre != nil {
		b.genre = p.Genre
	}
	if p.NumberOfMembers != nil {
		b.numberOfMembers = p.NumberOfMembers
	}
	if p.ContactPerson != nil {
		b.contactPerson = p.ContactPerson
	}
	if p.Phone != nil {
		b.phone = p.Phone
	}
	if p.Website != nil {
		b.website = p.Website
	}
	if p.Rating != nil {
		b.rating = p.Rating
	}
	if p.IsActive != nil {
		b.isActive = *p.IsActive
	}
	if p.PriceCents != nil {
		b.priceCents = p.PriceCents
	}
	b.updatedAt = time.Now().UTC()
	return nil
}

func validateName(name string) error {
	if name == "" {
		return domain.NewValidationError("band_name is required")
	}
	if len(name) > maxNameLength {
		return domain.NewValidationError("band_name must be at most 100 characters")
	}
	return nil
}

func validateAttributes(p Params) error {
	if p.Rating != nil && (*p.Rating < 0 || *p.Rating > maxRating) {
		return domain.NewValidationError("rating must be between 0 and 5")
	}
	if p.NumberOfMembers != nil && *p.NumberOfMembers < 0 {
		return domain.NewValidationError("number_of_members must not be negative")
	}
	if p.PriceCents != nil && *p.PriceCents < 0 {
		return domain.NewValidationErrorWithCode(domain.CodeInvalidAmount, "price must not be negative")
	}
	return nil
}
