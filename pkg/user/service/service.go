// Package service implements the user registry business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	apperrors "github.com/greenpay/aptopay-middleware/pkg/app/errors"
	"github.com/greenpay/aptopay-middleware/pkg/user"
	"github.com/greenpay/aptopay-middleware/pkg/userstore"
	"github.com/greenpay/aptopay-middleware/pkg/wallet"
)

var (
	ErrWalletAlreadyRegistered = errors.New("wallet address already registered")
	ErrNameTaken               = errors.New("username already taken")
)

// Store is the narrow data-access interface for the user registry service.
type Store interface {
	CreateUser(ctx context.Context, u *user.User) (*user.User, error)
	GetUser(ctx context.Context, opts ...userstore.QueryOption) (*user.User, error)
	UserExists(ctx context.Context, walletAddress string) (bool, error)
	NameExists(ctx context.Context, name string) (bool, error)
	ListUsers(ctx context.Context) ([]*user.User, error)
}

// Service defines the interface for the user registry
type Service interface {
	// Register creates a user binding a wallet address to a unique username.
	Register(ctx context.Context, req *user.RegisterRequest) (*user.User, error)
	// GetByName resolves a username to its user.
	GetByName(ctx context.Context, name string) (*user.User, error)
	// List returns all registered users, the username directory.
	List(ctx context.Context) ([]*user.User, error)
}

type userService struct {
	store    Store
	validate *validator.Validate
	logger   *zap.Logger
}

// NewService creates a new user registry service
func NewService(store Store, logger *zap.Logger) Service {
	return &userService{
		store:    store,
		validate: validator.New(),
		logger:   logger,
	}
}

func (s *userService) Register(ctx context.Context, req *user.RegisterRequest) (*user.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.BadRequestError(err, "name must be letters only and walletAddress is required")
	}

	addr := wallet.NormalizeAddress(req.WalletAddress)
	if err := wallet.ValidateAddress(addr); err != nil {
		return nil, apperrors.BadRequestError(err, "invalid walletAddress")
	}

	// Usernames are matched case-insensitively; the lowercase form is stored.
	name := strings.ToLower(req.Name)

	exists, err := s.store.UserExists(ctx, addr)
	if err != nil {
		return nil, apperrors.GeneralError(fmt.Errorf("failed to check wallet: %w", err))
	}
	if exists {
		return nil, apperrors.ConflictError(ErrWalletAlreadyRegistered, "wallet address already registered")
	}

	taken, err := s.store.NameExists(ctx, name)
	if err != nil {
		return nil, apperrors.GeneralError(fmt.Errorf("failed to check username: %w", err))
	}
	if taken {
		return nil, apperrors.ConflictError(ErrNameTaken, "username already taken")
	}

	created, err := s.store.CreateUser(ctx, &user.User{
		WalletAddress: addr,
		Name:          name,
	})
	if err != nil {
		return nil, apperrors.GeneralError(fmt.Errorf("failed to create user: %w", err))
	}

	return created, nil
}

func (s *userService) GetByName(ctx context.Context, name string) (*user.User, error) {
	if name == "" {
		return nil, apperrors.BadRequestError(nil, "name is required")
	}

	usr, err := s.store.GetUser(ctx, userstore.WithName(strings.ToLower(name)))
	if err != nil {
		if errors.Is(err, userstore.ErrUserNotFound) {
			return nil, apperrors.ResourceNotFoundError(err, "user not found")
		}
		return nil, apperrors.GeneralError(fmt.Errorf("failed to get user %q: %w", name, err))
	}

	return usr, nil
}

func (s *userService) List(ctx context.Context) ([]*user.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, apperrors.GeneralError(fmt.Errorf("failed to list users: %w", err))
	}
	return users, nil
}
