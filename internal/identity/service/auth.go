package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/driftlock/identity/internal/identity/domain"
	"github.com/driftlock/identity/internal/identity/store"
	"github.com/driftlock/identity/pkg/cryptox"
	"github.com/driftlock/identity/pkg/idx"
	"github.com/driftlock/identity/pkg/jwtx"
	"github.com/driftlock/identity/pkg/slogx"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRefresh     = errors.New("invalid refresh token")
	ErrUserNotFound       = errors.New("user not found")
)

// dummyPasswordHash is a throwaway bcrypt hash (of "password", cost 10)
// compared against when a login's email lookup misses, so that misses
// and mismatches take comparable time.
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// AuthService implements registration, login and token refresh.
type AuthService struct {
	Store      store.Store
	Codec      *jwtx.Codec
	BcryptCost int
}

// Register creates a new user with the default role. Tokens are not
// issued here; the client logs in afterwards. The insert runs inside a
// transaction so concurrent registrations with the same email resolve
// to exactly one winner via the unique index.
func (s *AuthService) Register(
	ctx context.Context,
	name, email, password string,
) (domain.User, error) {
	log := slogx.FromContext(ctx)

	hash, err := cryptox.HashPassword(password, s.BcryptCost)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, err
	}

	user := domain.User{
		ID:           idx.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		log.Error("failed to create user", slog.Any("error", err))
		return domain.User{}, err
	}

	log.Info("user registered", slog.String("user_id", user.ID))
	return user, nil
}

// Login verifies credentials and issues a token pair. Unknown emails and
// wrong passwords both map to ErrInvalidCredentials so callers cannot
// probe which addresses are registered.
func (s *AuthService) Login(
	ctx context.Context,
	email, password string,
) (domain.User, domain.TokenPair, error) {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = cryptox.VerifyPassword(password, dummyPasswordHash)
			return domain.User{}, domain.TokenPair{}, ErrInvalidCredentials
		}
		return domain.User{}, domain.TokenPair{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrMismatch) {
			return domain.User{}, domain.TokenPair{}, ErrInvalidCredentials
		}
		return domain.User{}, domain.TokenPair{}, err
	}

	pair, err := s.issueTokenPair(user)
	if err != nil {
		log.Error("failed to issue tokens", slog.Any("error", err))
		return domain.User{}, domain.TokenPair{}, err
	}

	log.Info("user logged in", slog.String("user_id", user.ID))
	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a fresh access token. The
// user is re-read so the embedded role reflects later changes and a
// deleted account surfaces as ErrUserNotFound. The refresh token itself
// is not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.Codec.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", ErrInvalidRefresh
	}

	user, err := s.Store.Users().GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	return s.Codec.IssueAccessToken(user.ID, user.Role)
}

func (s *AuthService) issueTokenPair(user domain.User) (domain.TokenPair, error) {
	access, err := s.Codec.IssueAccessToken(user.ID, user.Role)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := s.Codec.IssueRefreshToken(user.ID)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
