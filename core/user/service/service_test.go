package service

import (
	"context"
	"errors"
	"testing"

	"github.com/ncobase/todox/config"
	"github.com/ncobase/todox/core/user/data/repository"
	"github.com/ncobase/todox/core/user/structs"
	"github.com/ncobase/todox/logging/logger"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log := logger.StdLogger()
	if _, err := log.Init(&config.Logger{Level: 2, Format: "json", Output: "stderr"}); err != nil {
		t.Fatalf("logger init: %v", err)
	}
	return log
}

// staticTenants answers Exists from a fixed set.
type staticTenants map[string]bool

func (s staticTenants) Exists(_ context.Context, id string) (bool, error) {
	return s[id], nil
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	return New(newTestLogger(t), repository.NewMemoryUserRepository(), staticTenants{"tenant-a": true, "tenant-b": true})
}

func TestCreateChecksTenant(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, "tenant-a", &structs.CreateUserRequest{Name: "Alice", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if user.ID == "" {
		t.Error("Create() returned empty id")
	}
	if user.TenantID != "tenant-a" {
		t.Errorf("tenant = %q, want %q", user.TenantID, "tenant-a")
	}

	if _, err := svc.Create(ctx, "tenant-ghost", &structs.CreateUserRequest{Name: "Bob", Email: "bob@example.com"}); !errors.Is(err, ErrTenantNotFound) {
		t.Errorf("Create() in unknown tenant error = %v, want ErrTenantNotFound", err)
	}
}

func TestCreateRejectsDuplicateEmailInTenant(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "tenant-a", &structs.CreateUserRequest{Name: "Alice", Email: "alice@example.com"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Create(ctx, "tenant-a", &structs.CreateUserRequest{Name: "Alias", Email: "alice@example.com"}); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("Create() duplicate email error = %v, want ErrEmailTaken", err)
	}
	// The same address in another tenant is a different mailbox owner.
	if _, err := svc.Create(ctx, "tenant-b", &structs.CreateUserRequest{Name: "Alice", Email: "alice@example.com"}); err != nil {
		t.Errorf("Create() in other tenant error = %v", err)
	}
}

func TestInTenant(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, "tenant-a", &structs.CreateUserRequest{Name: "Alice", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	ok, err := svc.InTenant(ctx, user.ID, "tenant-a")
	if err != nil || !ok {
		t.Errorf("InTenant(own tenant) = %v, %v, want true, nil", ok, err)
	}
	ok, err = svc.InTenant(ctx, user.ID, "tenant-b")
	if err != nil || ok {
		t.Errorf("InTenant(other tenant) = %v, %v, want false, nil", ok, err)
	}
	ok, err = svc.InTenant(ctx, "missing", "tenant-a")
	if err != nil || ok {
		t.Errorf("InTenant(unknown user) = %v, %v, want false, nil", ok, err)
	}
}

func TestResolveEmail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, "tenant-a", &structs.CreateUserRequest{Name: "Alice", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	email, err := svc.ResolveEmail(ctx, user.ID)
	if err != nil {
		t.Fatalf("ResolveEmail() error = %v", err)
	}
	if email != "alice@example.com" {
		t.Errorf("email = %q, want %q", email, "alice@example.com")
	}

	if _, err := svc.ResolveEmail(ctx, "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("ResolveEmail(unknown) error = %v, want ErrUserNotFound", err)
	}
}
