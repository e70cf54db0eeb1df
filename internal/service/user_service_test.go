package service

import (
	"errors"
	"testing"

	"github.com/glowbook/salon-backend/internal/repository"
	"github.com/glowbook/salon-backend/internal/security"
)

func newUserServiceFixture(t *testing.T) (*UserService, *authFixture) {
	t.Helper()
	fx := newAuthFixture(t)
	return NewUserService(fx.users), fx
}

func TestUserServiceUpdateProfile(t *testing.T) {
	svc, fx := newUserServiceFixture(t)
	res := fx.register(t, "user@example.com", "Str0ngPass")

	if _, err := svc.UpdateProfile(res.User.ID, UpdateProfileInput{}); !errors.Is(err, ErrNoProfileUpdates) {
		t.Fatalf("expected ErrNoProfileUpdates, got %v", err)
	}

	empty := "   "
	if _, err := svc.UpdateProfile(res.User.ID, UpdateProfileInput{FirstName: &empty}); err == nil {
		t.Fatal("expected error for blank first name")
	}

	first, phone := "Grace", "+1 555 0100"
	updated, err := svc.UpdateProfile(res.User.ID, UpdateProfileInput{FirstName: &first, Phone: &phone})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.FirstName != "Grace" || updated.Phone != "+1 555 0100" {
		t.Fatalf("unexpected profile: %+v", updated)
	}
	if updated.LastName != "Lovelace" {
		t.Fatalf("untouched field changed: %+v", updated)
	}
	if updated.PasswordHash != "" {
		t.Fatal("password hash leaked through profile update")
	}
}

func TestUserServiceChangePassword(t *testing.T) {
	svc, fx := newUserServiceFixture(t)
	res := fx.register(t, "user@example.com", "Str0ngPass")

	if err := svc.ChangePassword(res.User.ID, "Str0ngPass", "weak"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if err := svc.ChangePassword(res.User.ID, "WrongPass1", "An0therPass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := svc.ChangePassword(res.User.ID, "Str0ngPass", "Str0ngPass"); !errors.Is(err, ErrSamePassword) {
		t.Fatalf("expected ErrSamePassword, got %v", err)
	}

	if err := svc.ChangePassword(res.User.ID, "Str0ngPass", "An0therPass"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	stored := fx.users.items[res.User.ID]
	ok, err := security.VerifyPassword(stored.PasswordHash, "An0therPass")
	if err != nil || !ok {
		t.Fatalf("new password not verifiable: ok=%v err=%v", ok, err)
	}
	if _, err := fx.auth.Login("user@example.com", "Str0ngPass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password should no longer log in, got %v", err)
	}
}

func TestUserServiceDeactivateAndActivate(t *testing.T) {
	svc, fx := newUserServiceFixture(t)
	res := fx.register(t, "user@example.com", "Str0ngPass")

	if err := svc.Deactivate(res.User.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := fx.auth.Login("user@example.com", "Str0ngPass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("deactivated login: expected ErrInvalidCredentials, got %v", err)
	}

	if err := svc.Activate(res.User.ID); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if _, err := fx.auth.Login("user@example.com", "Str0ngPass"); err != nil {
		t.Fatalf("reactivated login: %v", err)
	}
}

func TestUserServiceListPagedStripsHashes(t *testing.T) {
	svc, fx := newUserServiceFixture(t)
	fx.register(t, "one@example.com", "Str0ngPass")
	fx.register(t, "two@example.com", "Str0ngPass")

	res, err := svc.ListPaged(repository.PageRequest{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(res.Items) != 2 {
		t.Fatalf("expected 2 users, got %d", len(res.Items))
	}
	for _, u := range res.Items {
		if u.PasswordHash != "" {
			t.Fatalf("password hash leaked in listing for %s", u.Email)
		}
	}
}
