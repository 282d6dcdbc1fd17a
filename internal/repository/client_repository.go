package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/gigbook/service-booking/internal/domain"
	clientDomain "github.com/gigbook/service-booking/internal/domain/client"
)

// ClientModel is the GORM model for the clients table.
type ClientModel struct {
	ID        int64     `gorm:"column:client_id;primaryKey;autoIncrement"`
	Name      string    `gorm:"size:100;not null;index:idx_clients_name_phone"`
	Phone     string    `gorm:"size:20;not null;index:idx_clients_name_phone"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ClientModel) TableName() string {
	return "clients"
}

// GormClientRepository is the GORM-based implementation of ClientRepository.
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository.
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByID retrieves a client by its identifier.
func (r *GormClientRepository) FindByID(ctx context.Context, id int64) (*clientDomain.Client, error) {
	var model ClientModel
	if err := conn(ctx, r.db).Where("client_id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Client", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("failed to find client by ID: %w", err)
	}
	return toDomainClient(&model), nil
}

// FindByNameAndPhone returns the oldest exact match, or nil when none exists.
func (r *GormClientRepository) FindByNameAndPhone(ctx context.Context, name, phone string) (*clientDomain.Client, error) {
	var models []ClientModel
	if err := conn(ctx, r.db).
		Where("name = ? AND phone = ?", name, phone).
		Order("client_id ASC").
		Limit(1).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find client by name and phone: %w", err)
	}
	if len(models) == 0 {
		return nil, nil
	}
	return toDomainClient(&models[0]), nil
}

// Save persists a new client and assigns its ID.
func (r *GormClientRepository) Save(ctx context.Context, c *clientDomain.Client) error {
	model := &ClientModel{
		Name:      c.Name(),
		Phone:     c.Phone(),
		CreatedAt: c.CreatedAt(),
	}
	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		if mapped := classifyWriteError(err, domain.NewConflictError("client already exists")); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to save client: %w", err)
	}
	c.AssignID(model.ID)
	return nil
}

func toDomainClient(m *ClientModel) *clientDomain.Client {
	return clientDomain.Reconstruct(m.ID, m.Name, m.Phone, m.CreatedAt)
}
