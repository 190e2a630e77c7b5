package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	apperrors "github.com/greenpay/aptopay-middleware/pkg/app/errors"
	"github.com/greenpay/aptopay-middleware/pkg/user"
	"github.com/greenpay/aptopay-middleware/pkg/userstore"
)

type fakeStore struct {
	byWallet map[string]*user.User
	byName   map[string]*user.User
	nextID   int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		byWallet: map[string]*user.User{},
		byName:   map[string]*user.User{},
	}
}

func (f *fakeStore) CreateUser(_ context.Context, u *user.User) (*user.User, error) {
	f.nextID++
	stored := *u
	stored.ID = f.nextID
	f.byWallet[stored.WalletAddress] = &stored
	f.byName[stored.Name] = &stored
	return &stored, nil
}

func (f *fakeStore) GetUser(_ context.Context, opts ...userstore.QueryOption) (*user.User, error) {
	options := &userstore.QueryOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.WalletAddress != nil {
		if u, ok := f.byWallet[*options.WalletAddress]; ok {
			return u, nil
		}
	}
	if options.Name != nil {
		if u, ok := f.byName[*options.Name]; ok {
			return u, nil
		}
	}
	return nil, userstore.ErrUserNotFound
}

func (f *fakeStore) UserExists(_ context.Context, walletAddress string) (bool, error) {
	_, ok := f.byWallet[walletAddress]
	return ok, nil
}

func (f *fakeStore) NameExists(_ context.Context, name string) (bool, error) {
	_, ok := f.byName[name]
	return ok, nil
}

func (f *fakeStore) ListUsers(_ context.Context) ([]*user.User, error) {
	out := make([]*user.User, 0, len(f.byWallet))
	for _, u := range f.byWallet {
		out = append(out, u)
	}
	return out, nil
}

func TestUserService_Register(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, zap.NewNop())

	u, err := svc.Register(context.Background(), &user.RegisterRequest{
		WalletAddress: "0xAbC123",
		Name:          "Alice",
	})
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	if u.WalletAddress != "0xabc123" {
		t.Errorf("expected lowercased wallet, got %q", u.WalletAddress)
	}
	if u.Name != "alice" {
		t.Errorf("expected lowercased name, got %q", u.Name)
	}
	if u.ID == 0 {
		t.Error("expected assigned user id")
	}
}

func TestUserService_Register_DuplicateWallet(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, zap.NewNop())

	if _, err := svc.Register(context.Background(), &user.RegisterRequest{WalletAddress: "0xaa", Name: "alice"}); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	_, err := svc.Register(context.Background(), &user.RegisterRequest{WalletAddress: "0xAA", Name: "bob"})
	if err == nil {
		t.Fatal("expected conflict, got nil")
	}
	if !apperrors.Is(err, apperrors.CategoryDataConflict) {
		t.Fatalf("expected CategoryDataConflict, got %v", err)
	}
}

func TestUserService_Register_DuplicateName(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, zap.NewNop())

	if _, err := svc.Register(context.Background(), &user.RegisterRequest{WalletAddress: "0xaa", Name: "alice"}); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	_, err := svc.Register(context.Background(), &user.RegisterRequest{WalletAddress: "0xbb", Name: "ALICE"})
	if err == nil {
		t.Fatal("expected conflict, got nil")
	}
	if !apperrors.Is(err, apperrors.CategoryDataConflict) {
		t.Fatalf("expected CategoryDataConflict, got %v", err)
	}
}

func TestUserService_Register_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  *user.RegisterRequest
	}{
		{"missing wallet", &user.RegisterRequest{Name: "alice"}},
		{"missing name", &user.RegisterRequest{WalletAddress: "0xaa"}},
		{"name with digits", &user.RegisterRequest{WalletAddress: "0xaa", Name: "alice123"}},
		{"name with spaces", &user.RegisterRequest{WalletAddress: "0xaa", Name: "alice smith"}},
		{"malformed wallet", &user.RegisterRequest{WalletAddress: "abc", Name: "alice"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewService(newFakeStore(), zap.NewNop())
			_, err := svc.Register(context.Background(), tc.req)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !apperrors.Is(err, apperrors.CategoryDataError) {
				t.Fatalf("expected CategoryDataError, got %v", err)
			}
		})
	}
}

func TestUserService_GetByName(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, zap.NewNop())

	if _, err := svc.Register(context.Background(), &user.RegisterRequest{WalletAddress: "0xaa", Name: "alice"}); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	u, err := svc.GetByName(context.Background(), "Alice")
	if err != nil {
		t.Fatalf("GetByName() failed: %v", err)
	}
	if u.WalletAddress != "0xaa" {
		t.Errorf("expected wallet 0xaa, got %q", u.WalletAddress)
	}
}

func TestUserService_GetByName_NotFound(t *testing.T) {
	svc := NewService(newFakeStore(), zap.NewNop())

	_, err := svc.GetByName(context.Background(), "nobody")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !apperrors.Is(err, apperrors.CategoryResourceNotFound) {
		t.Fatalf("expected CategoryResourceNotFound, got %v", err)
	}
}

func TestUserService_List(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, zap.NewNop())

	for _, u := range []user.RegisterRequest{
		{WalletAddress: "0xaa", Name: "alice"},
		{WalletAddress: "0xbb", Name: "bob"},
	} {
		if _, err := svc.Register(context.Background(), &u); err != nil {
			t.Fatalf("Register() failed: %v", err)
		}
	}

	users, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
}
