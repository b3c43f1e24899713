package service

import (
	"context"
	"errors"
	"testing"

	"github.com/clearcut/entitlement-system/internal/core/domain"
)

func TestListUsersAdminOnly(t *testing.T) {
	repo := newStubUserRepo()
	alice, _ := repo.Create(context.Background(), &domain.User{Email: "alice@example.com"})
	admin, _ := repo.Create(context.Background(), &domain.User{Email: "admin@example.com"})
	repo.byID[admin.ID].IsAdmin = true

	svc := NewUserService(repo)

	if _, err := svc.List(context.Background(), alice.ID); !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("non-admin list err = %v, want ErrAccessDenied", err)
	}

	users, err := svc.List(context.Background(), admin.ID)
	if err != nil {
		t.Fatalf("admin list failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("listed %d users, want 2", len(users))
	}
}

func TestGetUserSelfOrAdmin(t *testing.T) {
	repo := newStubUserRepo()
	alice, _ := repo.Create(context.Background(), &domain.User{Email: "alice@example.com"})
	bob, _ := repo.Create(context.Background(), &domain.User{Email: "bob@example.com"})
	admin, _ := repo.Create(context.Background(), &domain.User{Email: "admin@example.com"})
	repo.byID[admin.ID].IsAdmin = true

	svc := NewUserService(repo)

	if _, err := svc.Get(context.Background(), alice.ID, alice.ID); err != nil {
		t.Fatalf("self get failed: %v", err)
	}
	if _, err := svc.Get(context.Background(), alice.ID, bob.ID); !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("cross-user get err = %v, want ErrAccessDenied", err)
	}
	got, err := svc.Get(context.Background(), admin.ID, bob.ID)
	if err != nil {
		t.Fatalf("admin get failed: %v", err)
	}
	if got.ID != bob.ID {
		t.Fatalf("admin get returned %s, want %s", got.ID, bob.ID)
	}
}
