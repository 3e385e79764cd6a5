package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidCredentials collapses unknown-email and bad-password failures
// into a single error so callers cannot distinguish which occurred.
var ErrInvalidCredentials = errors.New("account: invalid credentials")

var ErrInvalidUserType = errors.New("account: user type must be customer or photographer")

// PasswordHasher is the opaque hash/verify capability the service consumes.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
}

type Service struct {
	store  Store
	hasher PasswordHasher
	clock  func() time.Time
}

func NewService(store Store, hasher PasswordHasher) *Service {
	return &Service{store: store, hasher: hasher, clock: time.Now}
}

type RegisterInput struct {
	Email    string
	FullName string
	Password string
	UserType UserType
}

// Register creates a new active, non-admin account with a hashed password.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Account, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || in.Password == "" || strings.TrimSpace(in.FullName) == "" {
		return Account{}, errors.New("account: email, full name and password are required")
	}
	if !in.UserType.Valid() {
		return Account{}, ErrInvalidUserType
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return Account{}, err
	}

	now := s.clock().UTC()
	a := Account{
		ID:             uuid.NewString(),
		Email:          email,
		FullName:       strings.TrimSpace(in.FullName),
		HashedPassword: hash,
		UserType:       in.UserType,
		IsActive:       true,
		IsAdmin:        false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.Create(ctx, a); err != nil {
		return Account{}, err
	}
	return a, nil
}

// Authenticate verifies an email/password pair against the store.
// Unknown email and wrong password both return ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Account, error) {
	a, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Account{}, ErrInvalidCredentials
		}
		return Account{}, err
	}
	if !s.hasher.Verify(a.HashedPassword, password) {
		return Account{}, ErrInvalidCredentials
	}
	return a, nil
}

// FindOrCreateByIdentity resolves an account for an externally verified
// identity (Google sign-in). Unknown identities are provisioned as customer
// accounts with an unusable random password.
func (s *Service) FindOrCreateByIdentity(ctx context.Context, email, fullName string) (Account, error) {
	a, err := s.store.FindByEmail(ctx, email)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Account{}, err
	}

	// The hash of a random UUID can never be matched by a password login.
	hash, err := s.hasher.Hash(uuid.NewString())
	if err != nil {
		return Account{}, err
	}
	now := s.clock().UTC()
	a = Account{
		ID:             uuid.NewString(),
		Email:          strings.ToLower(email),
		FullName:       fullName,
		HashedPassword: hash,
		UserType:       UserTypeCustomer,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.Create(ctx, a); err != nil {
		return Account{}, err
	}
	return a, nil
}
