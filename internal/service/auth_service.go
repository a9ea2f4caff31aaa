package service

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"todo_server/internal/models"
	"todo_server/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is deliberately at bcrypt's minimum to keep registration
// and per-request verification fast for demos and tests. It is not a
// production setting.
const DefaultBcryptCost = bcrypt.MinCost

const basicPrefix = "Basic "

var ErrEmptyPassword = errors.New("password is empty")

// AuthService handles registration and credential checks.
type AuthService struct {
	users repository.Users
	cost  int
}

func NewAuthService(users repository.Users, cost int) *AuthService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &AuthService{users: users, cost: cost}
}

// SignUp hashes password and creates a new user. A taken username yields
// repository.ErrUserExists.
func (s *AuthService) SignUp(username, password string) error {
	hash, err := s.HashPassword(password)
	if err != nil {
		return err
	}
	return s.users.CreateUser(models.User{Username: username, PasswordHash: hash})
}

// Authenticate returns the user only if it exists and the password verifies.
func (s *AuthService) Authenticate(username, password string) (models.User, bool) {
	u, ok := s.users.GetUser(username)
	if !ok || !VerifyPassword(u.PasswordHash, password) {
		return models.User{}, false
	}
	return u, true
}

func (s *AuthService) HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches hash. A malformed hash
// never verifies.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// DecodeBasic extracts credentials from an Authorization header value. The
// prefix is case-sensitive and the decoded text must be valid UTF-8 holding
// exactly one ':'.
func DecodeBasic(header string) (username, password string, ok bool) {
	encoded, found := strings.CutPrefix(header, basicPrefix)
	if !found {
		return "", "", false
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || !utf8.Valid(raw) {
		return "", "", false
	}
	creds := string(raw)
	if strings.Count(creds, ":") != 1 {
		return "", "", false
	}
	username, password, _ = strings.Cut(creds, ":")
	return username, password, true
}
