package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	pkgcrypto "github.com/and161185/helpdesk/internal/crypto"
	"github.com/and161185/helpdesk/internal/errs"
	"github.com/and161185/helpdesk/internal/model"
	"github.com/and161185/helpdesk/internal/repository"
)

// MinPasswordLen is the minimum password length in characters.
const MinPasswordLen = 6

// AuthService defines account and session operations.
type AuthService interface {
	// Register creates an account and signs it in.
	Register(ctx context.Context, email, password string) (model.AuthResult, error)
	// Login verifies credentials and opens a new session.
	Login(ctx context.Context, email, password string) (model.AuthResult, error)
	// Logout deletes the session, if any.
	Logout(ctx context.Context, token string) error
	// Me returns the identity behind token.
	Me(ctx context.Context, token string) (model.Identity, error)
}

type AuthServiceImpl struct {
	store    repository.Store
	sessions *SessionValidator

	hash     func(password string) (string, error)
	verify   func(password, encoded string) (bool, error)
	newToken func() (string, error)
}

var _ AuthService = (*AuthServiceImpl)(nil)

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(store repository.Store, sessions *SessionValidator) *AuthServiceImpl {
	return &AuthServiceImpl{
		store:    store,
		sessions: sessions,
		hash:     pkgcrypto.HashPassword,
		verify:   pkgcrypto.VerifyPassword,
		newToken: pkgcrypto.NewSessionToken,
	}
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register validates input, then creates the user and its first session in
// one transaction.
func (s *AuthServiceImpl) Register(ctx context.Context, email, password string) (model.AuthResult, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return model.AuthResult{}, ErrCredentialsRequired
	}
	if utf8.RuneCountInString(password) < MinPasswordLen {
		return model.AuthResult{}, ErrPasswordTooShort
	}

	pwdHash, err := s.hash(password)
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("hash password: %w", err)
	}
	token, err := s.newToken()
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("session token: %w", err)
	}

	var res model.AuthResult
	err = s.store.InTx(ctx, func(ctx context.Context, r repository.Repos) error {
		exists, err := r.Users().ExistsByEmail(ctx, email)
		if err != nil {
			return err
		}
		if exists {
			return ErrEmailTaken
		}
		u, err := r.Users().Create(ctx, email, pwdHash)
		if errors.Is(err, errs.ErrAlreadyExists) {
			// a concurrent insert may pass the pre-check and hit the unique index
			return ErrEmailTaken
		}
		if err != nil {
			return err
		}
		if _, err := r.Sessions().Create(ctx, u.ID, token); err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		res = model.AuthResult{Token: token, Email: u.Email, IsAdmin: u.IsAdmin}
		return nil
	})
	if err != nil {
		return model.AuthResult{}, err
	}
	return res, nil
}

// Login authenticates by email and password. Unknown email and wrong password
// are reported identically.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (model.AuthResult, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return model.AuthResult{}, ErrBadCredentials
	}

	var u *model.User
	err := s.store.InTx(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		u, err = r.Users().GetByEmail(ctx, email)
		return err
	})
	if errors.Is(err, errs.ErrNotFound) {
		return model.AuthResult{}, ErrBadCredentials
	}
	if err != nil {
		return model.AuthResult{}, err
	}

	// argon2 runs outside any transaction
	ok, err := s.verify(password, u.PwdHash)
	if err != nil && !errors.Is(err, pkgcrypto.ErrMalformedHash) {
		return model.AuthResult{}, err
	}
	if !ok {
		return model.AuthResult{}, ErrBadCredentials
	}

	token, err := s.newToken()
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("session token: %w", err)
	}
	err = s.store.InTx(ctx, func(ctx context.Context, r repository.Repos) error {
		_, err := r.Sessions().Create(ctx, u.ID, token)
		return err
	})
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("create session: %w", err)
	}
	return model.AuthResult{Token: token, Email: u.Email, IsAdmin: u.IsAdmin}, nil
}

// Logout removes the session identified by token. An empty or unknown token is a no-op.
func (s *AuthServiceImpl) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.store.InTx(ctx, func(ctx context.Context, r repository.Repos) error {
		return r.Sessions().Delete(ctx, token)
	})
}

// Me resolves token to the current identity.
func (s *AuthServiceImpl) Me(ctx context.Context, token string) (model.Identity, error) {
	if token == "" {
		return model.Identity{}, ErrNotAuthenticated
	}
	id, ok, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		return model.Identity{}, err
	}
	if !ok {
		return model.Identity{}, ErrSessionExpired
	}
	return id, nil
}
