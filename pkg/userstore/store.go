// Package userstore persists registered wallet users.
package userstore

import (
	"context"
	"errors"

	"github.com/greenpay/aptopay-middleware/pkg/user"
)

// ErrUserNotFound is returned when a user lookup finds no matching record.
var ErrUserNotFound = errors.New("user not found")

// Store defines the interface for user persistence.
type Store interface {
	CreateUser(ctx context.Context, u *user.User) (*user.User, error)
	GetUser(ctx context.Context, opts ...QueryOption) (*user.User, error)
	UserExists(ctx context.Context, walletAddress string) (bool, error)
	NameExists(ctx context.Context, name string) (bool, error)
	ListUsers(ctx context.Context) ([]*user.User, error)
	// AppendReward appends an entry to the user's reward history.
	AppendReward(ctx context.Context, walletAddress string, entry user.RewardEntry) error
}

// QueryOptions defines options for querying users.
type QueryOptions struct {
	WalletAddress *string
	Name          *string
}

// QueryOption is a functional option for querying users.
type QueryOption func(*QueryOptions)

// WithWalletAddress sets the wallet address filter.
func WithWalletAddress(walletAddress string) QueryOption {
	return func(opts *QueryOptions) {
		opts.WalletAddress = &walletAddress
	}
}

// WithName sets the username filter.
func WithName(name string) QueryOption {
	return func(opts *QueryOptions) {
		opts.Name = &name
	}
}
