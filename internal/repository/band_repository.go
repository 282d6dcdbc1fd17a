package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/gigbook/service-booking/internal/domain"
	bandDomain "github.com/gigbook/service-booking/internal/domain/band"
)

// BandModel is the GORM model for the bands table.
type BandModel struct {
	ID              int64     `gorm:"column:band_id;primaryKey;autoIncrement"`
	BandName        string    `gorm:"size:100;not null"`
	Genre           *string   `gorm:"size:50"`
	NumberOfMembers *int      `gorm:""`
	ContactPerson   *string   `gorm:"size:100"`
	Phone           *string   `gorm:"size:20"`
	Website         *string   `gorm:"size:200"`
	Rating          *float64  `gorm:"type:numeric(3,2)"`
	IsActive        bool      `gorm:"not null"`
	Price           *float64  `gorm:"type:numeric(10,2)"`
	UserID          *int64    `gorm:"index"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BandModel) TableName() string {
	return "bands"
}

// GormBandRepository is the GORM-based implementation of BandRepository.
type GormBandRepository struct {
	db *gorm.DB
}

// NewGormBandRepository creates a new GormBandRepository.
func NewGormBandRepository(db *gorm.DB) *GormBandRepository {
	return &GormBandRepository{db: db}
}

// FindByID retrieves a band by its identifier.
func (r *GormBandRepository) FindByID(ctx context.Context, id int64) (*bandDomain.Band, error) {
	var model BandModel
	if err := conn(ctx, r.db).Where("band_id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Band", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("failed to find band by ID: %w", err)
	}
	return toDomainBand(&model), nil
}

// ListActive retrieves active bands matching the filter, ordered by name.
func (r *GormBandRepository) ListActive(ctx context.Context, filter bandDomain.ListFilter) ([]*bandDomain.Band, error) {
	q := conn(ctx, r.db).Where("is_active = ?", true)
	if filter.NameContains != "" {
		q = q.Where("LOWER(band_name) LIKE ?", "%"+escapeLike(strings.ToLower(filter.NameContains))+"%")
	}
	if filter.OwnerID != nil {
		q = q.Where("user_id = ?", *filter.OwnerID)
	}
	if len(filter.ExcludeIDs) > 0 {
		q = q.Where("band_id NOT IN ?", filter.ExcludeIDs)
	}

	var models []BandModel
	if err := q.Order("band_name ASC").Order("band_id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list bands: %w", err)
	}

	bands := make([]*bandDomain.Band, len(models))
	for i := range models {
		bands[i] = toDomainBand(&models[i])
	}
	return bands, nil
}

// Save persists a new band and assigns its ID.
func (r *GormBandRepository) Save(ctx context.Context, b *bandDomain.Band) error {
	model := toBandModel(b)
	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		if mapped := classifyWriteError(err, domain.NewConflictError("band already exists")); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to save band: %w", err)
	}
	b.AssignID(model.ID)
	return nil
}

// Update persists changes to an existing band.
func (r *GormBandRepository) Update(ctx context.Context, b *bandDomain.Band) error {
	model := toBandModel(b)
	result := conn(ctx, r.db).
		Model(&BandModel{}).
		Where("band_id = ?", model.ID).
		Updates(map[string]interface{}{
			"band_name":         model.BandName,
			"genre":             model.Genre,
			"number_of_members": model.NumberOfMembers,
			"contact_person":    model.ContactPerson,
			"phone":             model.Phone,
			"website":           model.Website,
			"rating":            model.Rating,
			"is_active":         model.IsActive,
			"price":             model.Price,
			"updated_at":        model.UpdatedAt,
		})
	if result.Error != nil {
		if mapped := classifyWriteError(result.Error, domain.NewConflictError("band already exists")); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to update band: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Band", strconv.FormatInt(model.ID, 10))
	}
	return nil
}

// escapeLike makes user input match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// --- Conversion Helpers ---

func toBandModel(b *bandDomain.Band) *BandModel {
	return &BandModel{
		ID:              b.ID(),
		BandName:        b.Name(),
		Genre:           b.Genre(),
		NumberOfMembers: b.NumberOfMembers(),
		ContactPerson:   b.ContactPerson(),
		Phone:           b.Phone(),
		Website:         b.Website(),
		Rating:          b.Rating(),
		IsActive:        b.IsActive(),
		Price:           domain.AmountPtr(b.PriceCents()),
		UserID:          b.OwnerID(),
		CreatedAt:       b.CreatedAt(),
		UpdatedAt:       b.UpdatedAt(),
	}
}

func toDomainBand(m *BandModel) *bandDomain.Band {
	return bandDomain.Reconstruct(
		m.ID,
		m.BandName,
		m.Genre,
		m.NumberOfMembers,
		m.ContactPerson,
		m.Phone,
		m.Website,
		m.Rating,
		m.IsActive,
		domain.CentsPtr(m.Price),
		m.UserID,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
