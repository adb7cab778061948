package services

import (
	"errors"
	"testing"

	"report-approval-api/models"
)

func TestCreateUserDefaults(t *testing.T) {
	db := openTestDB(t)
	svc := NewUserService(db)

	if _, err := svc.CreateUser(&CreateUserInput{Email: "x@example.com"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation without password, got %v", err)
	}

	user, err := svc.CreateUser(&CreateUserInput{
		FullName: "New Engineer",
		Email:    "new@example.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Role != "Engineer" {
		t.Errorf("default role = %q, want Engineer", user.Role)
	}
	if user.Status != models.UserStatusPending {
		t.Errorf("new account status = %q, want Pending", user.Status)
	}
	if !user.CheckPassword("secret123") {
		t.Error("stored password hash does not verify")
	}
	if user.CheckPassword("wrong") {
		t.Error("wrong password verified")
	}
}

func TestUpdateUserStatus(t *testing.T) {
	db := openTestDB(t)
	svc := NewUserService(db)
	u := seedUser(t, db, "Pending Person", "p@example.com", "Engineer", models.UserStatusPending)

	if err := svc.UpdateUserStatus(u.UserID, models.UserStatusActive); err != nil {
		t.Fatalf("activate: %v", err)
	}
	got, err := svc.GetByEmail("p@example.com")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Status != models.UserStatusActive {
		t.Fatalf("status = %q, want Active", got.Status)
	}

	if err := svc.UpdateUserStatus(9999, models.UserStatusActive); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := svc.GetByEmail("nobody@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestGetUsersByRoleGroupsActiveUsers(t *testing.T) {
	db := openTestDB(t)
	svc := NewUserService(db)

	seedUser(t, db, "Ada Admin", "admin@example.com", "Admin", models.UserStatusActive)
	seedUser(t, db, "Eve Engineer", "eve@example.com", "Engineer", models.UserStatusActive)
	seedUser(t, db, "Tara Manning", "tm@example.com", "Automation Manager", models.UserStatusActive)
	seedUser(t, db, "Pat Morgan", "pm@example.com", "Project_Manager", models.UserStatusActive)
	seedUser(t, db, "Gone Person", "gone@example.com", "Engineer", models.UserStatusInactive)

	grouped, err := svc.GetUsersByRole()
	if err != nil {
		t.Fatalf("GetUsersByRole: %v", err)
	}

	want := map[string]int{"Admin": 1, "Engineer": 1, "TM": 1, "PM": 1}
	for key, n := range want {
		if len(grouped[key]) != n {
			t.Errorf("group %s has %d users, want %d", key, len(grouped[key]), n)
		}
	}
	if len(grouped["TM"]) == 1 && grouped["TM"][0].Email != "tm@example.com" {
		t.Errorf("TM group = %v", grouped["TM"])
	}
}
