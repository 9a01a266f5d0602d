package usecase

import (
	"context"
	"errors"

	"github.com/azizikri/coupon-distributor/internal/auth"
	"github.com/azizikri/coupon-distributor/internal/domain"
	"github.com/azizikri/coupon-distributor/internal/repository"
)

// UserService covers registration, login and the user directory.
type UserService struct {
	store  repository.Store
	tokens *auth.Manager
}

func NewUserService(store repository.Store, tokens *auth.Manager) *UserService {
	return &UserService{store: store, tokens: tokens}
}

type LoginResult struct {
	Token        string
	ExpiresIn    int64
	Name         string
	Capabilities domain.Capability
}

// Register creates a self-service account holding only the sign-in and claim
// capabilities. Elevated bits are granted by an admin afterwards.
func (s *UserService) Register(ctx context.Context, name, account, password string) (domain.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}
	user := domain.User{
		Name:         name,
		Account:      account,
		PasswordHash: hash,
		Capabilities: domain.MergeCapabilities(domain.CapSignIn, domain.CapClaim),
	}
	if err := s.store.CreateUser(ctx, &user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Login verifies the credential and issues a bearer token carrying the
// capability mask. Unknown account and wrong password are indistinguishable
// to the caller.
func (s *UserService) Login(ctx context.Context, account, password string) (LoginResult, error) {
	user, err := s.store.GetUserByAccount(ctx, account)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return LoginResult{}, domain.ErrBadCredentials
		}
		return LoginResult{}, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return LoginResult{}, domain.ErrBadCredentials
	}
	if !user.Capabilities.Has(domain.CapSignIn) {
		return LoginResult{}, domain.ErrForbidden
	}

	token, err := s.tokens.Issue(user.ID, user.Capabilities)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{
		Token:        token,
		ExpiresIn:    int64(s.tokens.TTL().Seconds()),
		Name:         user.Name,
		Capabilities: user.Capabilities,
	}, nil
}

func (s *UserService) Profile(ctx context.Context, ident domain.Identity) (domain.User, error) {
	return s.store.GetUserByID(ctx, ident.UserID)
}

// UpdateProfile lets a user change their own name and password, nothing else.
func (s *UserService) UpdateProfile(ctx context.Context, ident domain.Identity, name, password *string) error {
	upd := repository.UserUpdate{Name: name}
	if password != nil && *password != "" {
		hash, err := auth.HashPassword(*password)
		if err != nil {
			return err
		}
		upd.PasswordHash = &hash
	}
	return s.store.UpdateUser(ctx, ident.UserID, upd)
}

// AddUser provisions an account with an explicit capability mask. Admin only.
func (s *UserService) AddUser(ctx context.Context, ident domain.Identity, name, account, password string, caps *domain.Capability) (domain.User, error) {
	if !ident.Capabilities.Has(domain.CapAdmin) {
		return domain.User{}, domain.ErrForbidden
	}

	grant := domain.CapSignIn
	if caps != nil {
		grant = *caps
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}
	user := domain.User{
		Name:         name,
		Account:      account,
		PasswordHash: hash,
		Capabilities: grant,
	}
	if err := s.store.CreateUser(ctx, &user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, ident domain.Identity, offset, limit int) ([]domain.User, int64, error) {
	if !ident.Capabilities.Has(domain.CapAdmin) {
		return nil, 0, domain.ErrForbidden
	}
	users, err := s.store.ListUsers(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// UpdateUser edits any user, including the capability mask. Admin only.
func (s *UserService) UpdateUser(ctx context.Context, ident domain.Identity, id int64, name, account, password *string, caps *domain.Capability) error {
	if !ident.Capabilities.Has(domain.CapAdmin) {
		return domain.ErrForbidden
	}
	upd := repository.UserUpdate{Name: name, Account: account, Capabilities: caps}
	if password != nil && *password != "" {
		hash, err := auth.HashPassword(*password)
		if err != nil {
			return err
		}
		upd.PasswordHash = &hash
	}
	return s.store.UpdateUser(ctx, id, upd)
}

func (s *UserService) DeleteUser(ctx context.Context, ident domain.Identity, id int64) error {
	if !ident.Capabilities.Has(domain.CapAdmin) {
		return domain.ErrForbidden
	}
	return s.store.DeleteUser(ctx, id)
}
