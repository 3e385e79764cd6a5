package account

import (
	"context"
	"errors"
	"testing"
)

// plainHasher avoids bcrypt cost in unit tests.
type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "h:" + plain, nil }
func (plainHasher) Verify(hash, plain string) bool    { return hash == "h:"+plain }

func newTestService() (*Service, *MemoryStore) {
	store := NewMemoryStore()
	return NewService(store, plainHasher{}), store
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a, err := svc.Register(ctx, RegisterInput{
		Email:    "Alice@Example.com",
		FullName: "Alice",
		Password: "s3cret",
		UserType: UserTypeCustomer,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if a.Email != "alice@example.com" {
		t.Fatalf("expected lowercased email, got %q", a.Email)
	}
	if !a.IsActive || a.IsAdmin {
		t.Fatalf("expected active non-admin account, got %+v", a)
	}

	got, err := svc.Authenticate(ctx, "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != a.ID {
		t.Fatalf("expected same account back")
	}
}

func TestAuthenticateCollapsesFailures(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{
		Email: "bob@example.com", FullName: "Bob", Password: "pw", UserType: UserTypePhotographer,
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, unknownErr := svc.Authenticate(ctx, "nobody@example.com", "pw")
	_, badPwErr := svc.Authenticate(ctx, "bob@example.com", "wrong")

	if !errors.Is(unknownErr, ErrInvalidCredentials) || !errors.Is(badPwErr, ErrInvalidCredentials) {
		t.Fatalf("expected both failures to be ErrInvalidCredentials, got %v / %v", unknownErr, badPwErr)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	in := RegisterInput{Email: "c@example.com", FullName: "C", Password: "pw", UserType: UserTypeCustomer}
	if _, err := svc.Register(ctx, in); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, in); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterRejectsUnknownUserType(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Register(context.Background(), RegisterInput{
		Email: "d@example.com", FullName: "D", Password: "pw", UserType: "reseller",
	})
	if !errors.Is(err, ErrInvalidUserType) {
		t.Fatalf("expected ErrInvalidUserType, got %v", err)
	}
}

func TestFindOrCreateByIdentityProvisionsCustomer(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	a, err := svc.FindOrCreateByIdentity(ctx, "new@example.com", "New User")
	if err != nil {
		t.Fatalf("find or create: %v", err)
	}
	if a.UserType != UserTypeCustomer {
		t.Fatalf("expected provisioned customer, got %q", a.UserType)
	}

	// Second call resolves the same account instead of creating another.
	again, err := svc.FindOrCreateByIdentity(ctx, "new@example.com", "New User")
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if again.ID != a.ID {
		t.Fatalf("expected same account, got %s vs %s", again.ID, a.ID)
	}

	if _, err := store.FindByEmail(ctx, "new@example.com"); err != nil {
		t.Fatalf("store lookup: %v", err)
	}
}
