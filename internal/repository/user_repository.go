package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/gigbook/service-booking/internal/domain"
	userDomain "github.com/gigbook/service-booking/internal/domain/user"
)

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Username  string    `gorm:"size:100;uniqueIndex;not null"`
	Password  string    `gorm:"size:255;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (UserModel) TableName() string {
	return "users"
}

// GormUserRepository is the GORM-based implementation of UserRepository.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID retrieves a user by its identifier.
func (r *GormUserRepository) FindByID(ctx context.Context, id int64) (*userDomain.User, error) {
	var model UserModel
	if err := conn(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("User", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return toDomainUser(&model), nil
}

// FindByUsername retrieves a user by its unique username.
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*userDomain.User, error) {
	var model UserModel
	if err := conn(ctx, r.db).Where("username = ?", username).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("User", username)
		}
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}
	return toDomainUser(&model), nil
}

// List retrieves all users ordered by ID.
func (r *GormUserRepository) List(ctx context.Context) ([]*userDomain.User, error) {
	var models []UserModel
	if err := conn(ctx, r.db).Order("id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users := make([]*userDomain.User, len(models))
	for i := range models {
		users[i] = toDomainUser(&models[i])
	}
	return users, nil
}

// Save persists a new user and assigns its ID.
func (r *GormUserRepository) Save(ctx context.Context, u *userDomain.User) error {
	model := &UserModel{
		Username:  u.Username(),
		Password:  u.PasswordHash(),
		CreatedAt: u.CreatedAt(),
		UpdatedAt: u.UpdatedAt(),
	}
	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		taken := &domain.DomainError{Kind: domain.KindConflict, Code: domain.CodeUsernameTaken, Message: "Username already exists"}
		if mapped := classifyWriteError(err, taken); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to save user: %w", err)
	}
	u.AssignID(model.ID)
	return nil
}

func toDomainUser(m *UserModel) *userDomain.User {
	return userDomain.Reconstruct(m.ID, m.Username, m.Password, m.CreatedAt, m.UpdatedAt)
}
