// Package auth covers the account lifecycle and the request-side session
// plumbing: signup/login against stored accounts, signed session tokens
// and the middleware that resolves them.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"crimewatch/pkg/logger"
	"crimewatch/pkg/models"
	"crimewatch/pkg/store"
)

// Credential and account errors surfaced to the client verbatim.
var (
	ErrEmailInUse        = errors.New("email already in use")
	ErrInvalidCredential = errors.New("invalid email or password")
	ErrWeakPassword      = errors.New("password is too weak")
)

// DefaultMinPasswordLen applies when no limit is configured.
const DefaultMinPasswordLen = 6

// Identity is the account adapter the HTTP layer talks to. It owns
// password hashing and the initial profile document.
type IdentityService struct {
	minPasswordLen int
}

// NewIdentityService returns a service enforcing the given minimum
// password length, or DefaultMinPasswordLen when min <= 0.
func NewIdentityService(min int) *IdentityService {
	if min <= 0 {
		min = DefaultMinPasswordLen
	}
	return &IdentityService{minPasswordLen: min}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup registers a new account and its profile document. Emails are
// case-insensitive.
func (s *IdentityService) Signup(email, password, name, phone string) (models.Identity, error) {
	email = normalizeEmail(email)
	if len(password) < s.minPasswordLen {
		return models.Identity{}, ErrWeakPassword
	}
	taken, err := store.EmailTaken(email)
	if err != nil {
		return models.Identity{}, err
	}
	if taken {
		return models.Identity{}, ErrEmailInUse
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.Identity{}, err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	acct := models.Account{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		Phone:        phone,
		PasswordHash: string(hash),
		CreatedAt:    now,
	}
	if err := store.SaveAccount(acct); err != nil {
		return models.Identity{}, err
	}
	if err := store.SaveProfile(acct.ID, models.UserProfile{
		Name:      name,
		Email:     email,
		Phone:     phone,
		CreatedAt: now,
		Reports:   []models.ReportRef{},
	}); err != nil {
		return models.Identity{}, err
	}
	logger.Info("account_created", "user", acct.ID)
	return acct.Identity(), nil
}

// Login verifies credentials. A missing account and a wrong password are
// indistinguishable to the caller.
func (s *IdentityService) Login(email, password string) (models.Identity, error) {
	acct, err := store.GetAccountByEmail(normalizeEmail(email))
	if err == store.ErrNotFound {
		return models.Identity{}, ErrInvalidCredential
	}
	if err != nil {
		return models.Identity{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)) != nil {
		logger.Warn("login_rejected", "user", acct.ID)
		return models.Identity{}, ErrInvalidCredential
	}
	logger.Info("login_ok", "user", acct.ID)
	return acct.Identity(), nil
}

// GetProfile loads a user's profile, or store.ErrNotFound.
func (s *IdentityService) GetProfile(userID string) (models.UserProfile, error) {
	return store.GetProfile(userID)
}

// ProfilePatch carries the updatable profile fields; nil means unchanged.
type ProfilePatch struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

// UpdateProfile applies a partial update. Email and the report index are
// not client-writable.
func (s *IdentityService) UpdateProfile(userID string, patch ProfilePatch) (models.UserProfile, error) {
	p, err := store.GetProfile(userID)
	if err != nil {
		return models.UserProfile{}, err
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Phone != nil {
		p.Phone = *patch.Phone
	}
	if err := store.SaveProfile(userID, p); err != nil {
		return models.UserProfile{}, err
	}
	return p, nil
}
