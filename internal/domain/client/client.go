package client

import (
	"context"
	"time"

	"github.com/gigbook/service-booking/internal/domain"
)

// Client is the party requesting a booking. It is not a registered user.
type Client struct {
	id        int64
	name      string
	phone     string
	createdAt time.Time
}

// NewClient creates a client from a name and phone, both required.
func NewClient(name, phone string) (*Client, error) {
	if name == "" || phone == "" {
		return nil, domain.NewValidationErrorWithCode(domain.CodeMissingClientInfo, "client name and phone are required")
	}
	return &Client{
		name:      name,
		phone:     phone,
		createdAt: time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a Client from persistence data (no validation).
func Reconstruct(id int64, name, phone string, createdAt time.Time) *Client {
	return &Client{id: id, name: name, phone: phone, createdAt: createdAt}
}

func (c *Client) ID() int64            { return c.id }
func (c *Client) Name() string         { return c.name }
func (c *Client) Phone() string        { return c.phone }
func (c *Client) CreatedAt() time.Time { return c.createdAt }

// AssignID records the identifier generated by the store on insert.
func (c *Client) AssignID(id int64) { c.id = id }

// ClientRepository defines the persistence contract for clients.
type ClientRepository interface {
	FindByID(ctx context.Context, id int64) (*Client, error)

	// FindByNameAndPhone returns the first exact match, or nil with no error when none exists.
	FindByNameAndPhone(ctx context.Context, name, phone string) (*Client, error)

	Save(ctx context.Context, client *Client) error
}
