package application

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gigbook/service-booking/internal/domain"
	clientDomain "github.com/gigbook/service-booking/internal/domain/client"
)

const missingClientInfoMessage = "Client information is required. Please provide either client_id or client details (client_name, phone_number)"

// ClientResolver finds or creates clients by their exact (name, phone) pair.
type ClientResolver struct {
	repo   clientDomain.ClientRepository
	logger *zap.Logger
}

// NewClientResolver creates a new ClientResolver.
func NewClientResolver(repo clientDomain.ClientRepository, logger *zap.Logger) *ClientResolver {
	return &ClientResolver{repo: repo, logger: logger}
}

// Resolve returns the client with exactly this name and phone, creating it if needed.
// No trimming or case folding is applied.
func (r *ClientResolver) Resolve(ctx context.Context, name, phone string) (*clientDomain.Client, error) {
	if name == "" || phone == "" {
		return nil, domain.NewValidationErrorWithCode(domain.CodeMissingClientInfo, missingClientInfoMessage)
	}

	existing, err := r.repo.FindByNameAndPhone(ctx, name, phone)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	c, err := clientDomain.NewClient(name, phone)
	if err != nil {
		return nil, err
	}
	if err := r.repo.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save client: %w", err)
	}

	r.logger.Info("client created", zap.Int64("client_id", c.ID()))
	return c, nil
}

// ResolveReference picks the client for a booking request: a complete name and
// phone pair wins, otherwise clientID must reference an existing client.
func (r *ClientResolver) ResolveReference(ctx context.Context, clientID *int64, name, phone string) (*clientDomain.Client, error) {
	if name != "" && phone != "" {
		return r.Resolve(ctx, name, phone)
	}
	if clientID == nil || *clientID <= 0 {
		return nil, domain.NewValidationErrorWithCode(domain.CodeMissingClientInfo, missingClientInfoMessage)
	}
	return r.FindByID(ctx, *clientID)
}

// FindByID returns an existing client.
func (r *ClientResolver) FindByID(ctx context.Context, id int64) (*clientDomain.Client, error) {
	return r.repo.FindByID(ctx, id)
}
