package application

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gigbook/service-booking/internal/domain"
	userDomain "github.com/gigbook/service-booking/internal/domain/user"
	"github.com/gigbook/service-booking/internal/platform/auth"
)

// CredentialsRequest is the body of register and login.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserService handles accounts and logins.
type UserService struct {
	users  userDomain.UserRepository
	tokens TokenIssuer
	logger *zap.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users userDomain.UserRepository, tokens TokenIssuer, logger *zap.Logger) *UserService {
	return &UserService{users: users, tokens: tokens, logger: logger}
}

// Register creates an account with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, req CredentialsRequest) (*UserDTO, error) {
	if req.Username == "" || req.Password == "" {
		return nil, domain.NewValidationError("Username and password are required")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	u, err := userDomain.NewUser(req.Username, hash)
	if err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.Int64("user_id", u.ID()), zap.String("username", u.Username()))
	dto := toUserDTO(u)
	return &dto, nil
}

// Login verifies credentials and issues a token. Unknown users and wrong
// passwords are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, req CredentialsRequest) (*LoginDTO, error) {
	if req.Username == "" || req.Password == "" {
		return nil, domain.NewValidationError("Username and password are required")
	}

	u, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return nil, invalidCredentials()
		}
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash(), req.Password) {
		return nil, invalidCredentials()
	}

	token, err := s.tokens.Generate(u.ID(), u.Username())
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("user logged in", zap.Int64("user_id", u.ID()))
	return &LoginDTO{User: toUserDTO(u), Token: token}, nil
}

// ListUsers returns every account without credentials.
func (s *UserService) ListUsers(ctx context.Context) ([]UserDTO, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UserDTO, len(users))
	for i, u := range users {
		out[i] = toUserDTO(u)
	}
	return out, nil
}

// UserExists reports whether an account with the id is still present.
func (s *UserService) UserExists(ctx context.Context, id int64) (bool, error) {
	if _, err := s.users.FindByID(ctx, id); err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func invalidCredentials() error {
	return domain.NewUnauthorizedError(domain.CodeInvalidCredentials, "Invalid username or password")
}
