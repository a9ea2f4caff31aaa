package service

import (
	"encoding/base64"
	"errors"
	"testing"

	"todo_server/internal/models"
	"todo_server/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// mockUsers is a lightweight in-test mock for repository.Users.
type mockUsers struct {
	CreateUserFn func(u models.User) error
	GetUserFn    func(username string) (models.User, bool)

	created []models.User
	gets    []string
}

func (m *mockUsers) CreateUser(u models.User) error {
	m.created = append(m.created, u)
	return m.CreateUserFn(u)
}

func (m *mockUsers) GetUser(username string) (models.User, bool) {
	m.gets = append(m.gets, username)
	return m.GetUserFn(username)
}

// --- SignUp tests ---

func TestAuthService_SignUp_HashesWithConfiguredCost(t *testing.T) {
	mock := &mockUsers{CreateUserFn: func(models.User) error { return nil }}
	svc := NewAuthService(mock, DefaultBcryptCost)

	if err := svc.SignUp("alice", "s3cr3t"); err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	if len(mock.created) != 1 {
		t.Fatalf("expected 1 CreateUser call, got %d", len(mock.created))
	}
	u := mock.created[0]
	if u.Username != "alice" {
		t.Errorf("expected username 'alice', got %q", u.Username)
	}
	if u.PasswordHash == "s3cr3t" {
		t.Errorf("expected hashed password not equal to raw password")
	}
	cost, err := bcrypt.Cost([]byte(u.PasswordHash))
	if err != nil || cost != 4 {
		t.Errorf("expected bcrypt cost 4, got %d (%v)", cost, err)
	}
	if !VerifyPassword(u.PasswordHash, "s3cr3t") {
		t.Errorf("stored hash does not verify with original password")
	}
}

func TestAuthService_SignUp_PropagatesConflict(t *testing.T) {
	mock := &mockUsers{CreateUserFn: func(models.User) error { return repository.ErrUserExists }}
	svc := NewAuthService(mock, DefaultBcryptCost)

	if err := svc.SignUp("alice", "pw"); !errors.Is(err, repository.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_SignUp_EmptyPassword(t *testing.T) {
	mock := &mockUsers{CreateUserFn: func(models.User) error {
		t.Fatal("CreateUser should not be called for empty password")
		return nil
	}}
	svc := NewAuthService(mock, DefaultBcryptCost)

	if err := svc.SignUp("bob", ""); !errors.Is(err, ErrEmptyPassword) {
		t.Fatalf("expected ErrEmptyPassword, got %v", err)
	}
}

func TestNewAuthService_OutOfRangeCostFallsBack(t *testing.T) {
	for _, cost := range []int{0, 3, 99} {
		if svc := NewAuthService(&mockUsers{}, cost); svc.cost != DefaultBcryptCost {
			t.Errorf("cost %d: got %d, want %d", cost, svc.cost, DefaultBcryptCost)
		}
	}
}

// --- Authenticate tests ---

func TestAuthService_Authenticate(t *testing.T) {
	svc := NewAuthService(nil, DefaultBcryptCost)
	hash, err := svc.HashPassword("letmein")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	stored := models.User{Username: "diana", PasswordHash: hash}
	svc.users = &mockUsers{GetUserFn: func(username string) (models.User, bool) {
		if username == "diana" {
			return stored, true
		}
		return models.User{}, false
	}}

	cases := []struct {
		name     string
		username string
		password string
		wantOK   bool
	}{
		{"valid", "diana", "letmein", true},
		{"wrong password", "diana", "nope", false},
		{"unknown user", "ghost", "letmein", false},
		{"empty password", "diana", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u, ok := svc.Authenticate(tc.username, tc.password)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if ok && u.Username != "diana" {
				t.Fatalf("unexpected user %+v", u)
			}
		})
	}
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	if VerifyPassword("not-a-bcrypt-hash", "pw") {
		t.Fatalf("malformed hash must not verify")
	}
}

// --- DecodeBasic tests ---

func TestDecodeBasic(t *testing.T) {
	enc := func(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

	cases := []struct {
		name     string
		header   string
		wantUser string
		wantPass string
		wantOK   bool
	}{
		{"valid", "Basic " + enc("testuser:testpass"), "testuser", "testpass", true},
		{"known vector", "Basic dGVzdHVzZXI6dGVzdHBhc3M=", "testuser", "testpass", true},
		{"empty password", "Basic " + enc("user:"), "user", "", true},
		{"lowercase scheme", "basic " + enc("u:p"), "", "", false},
		{"bearer", "Bearer abc", "", "", false},
		{"no space", "Basic" + enc("u:p"), "", "", false},
		{"bad base64", "Basic !!!", "", "", false},
		{"no colon", "Basic " + enc("userpass"), "", "", false},
		{"two colons", "Basic " + enc("u:p:x"), "", "", false},
		{"invalid utf8", "Basic " + base64.StdEncoding.EncodeToString([]byte{0xff, ':', 0xfe}), "", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u, p, ok := DecodeBasic(tc.header)
			if ok != tc.wantOK || u != tc.wantUser || p != tc.wantPass {
				t.Fatalf("DecodeBasic(%q) = %q, %q, %v", tc.header, u, p, ok)
			}
		})
	}
}
